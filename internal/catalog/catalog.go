// Package catalog is the data access layer of the streaming catalog: the
// viewer, release and session operations exposed by the CLI.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"streaming-db/internal/config"
	"streaming-db/internal/database"
)

type Catalog struct {
	store    *database.Store
	policies config.Policies
	logger   *zap.Logger
}

func New(store *database.Store, policies config.Policies, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		store:    store,
		policies: policies,
		logger:   logger.Named("catalog"),
	}
}

func (c *Catalog) inTx(ctx context.Context, fn func(*database.Tx) error) error {
	return c.store.WithConn(ctx, func(conn *database.Conn) error {
		return conn.ExecuteTx(ctx, fn)
	})
}

// withoutForeignKeys runs one statement with referential-integrity checks
// relaxed on its connection.
func (c *Catalog) withoutForeignKeys(ctx context.Context, query string, args ...interface{}) error {
	return c.store.WithConn(ctx, func(conn *database.Conn) error {
		return conn.WithoutForeignKeys(ctx, func() error {
			_, err := conn.ExecContext(ctx, query, args...)
			return err
		})
	})
}

func (c *Catalog) selectRows(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return c.store.WithConn(ctx, func(conn *database.Conn) error {
		return conn.SelectContext(ctx, dest, query, args...)
	})
}
