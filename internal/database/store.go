package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"streaming-db/internal/config"
)

// Store is the database handle shared by the loader and the catalog.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	logger  *zap.Logger
}

// Open connects to the configured backend and verifies the connection.
func Open(ctx context.Context, cfg config.Database, logger *zap.Logger) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := dialect.DSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse %s dsn: %w", dialect.Name(), err)
	}

	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name(), err)
	}
	dialect.Configure(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name(), err)
	}

	return NewStore(db, dialect, logger), nil
}

// NewStore wraps an already opened handle.
func NewStore(db *sqlx.DB, dialect Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logger.Named("store"),
	}
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WithConn pins one connection for the duration of fn and releases it on
// every exit path.
func (s *Store) WithConn(ctx context.Context, fn func(*Conn) error) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(&Conn{conn: conn, dialect: s.dialect, logger: s.logger})
}

// Conn is a single pinned connection.
type Conn struct {
	conn    *sqlx.Conn
	dialect Dialect
	logger  *zap.Logger
}

func (c *Conn) Dialect() Dialect {
	return c.dialect
}

func (c *Conn) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	query = c.dialect.Rebind(query)
	begin := time.Now()
	res, err := c.conn.ExecContext(ctx, query, args...)
	trace(c.logger, query, begin, err)
	return res, err
}

func (c *Conn) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query = c.dialect.Rebind(query)
	begin := time.Now()
	err := c.conn.GetContext(ctx, dest, query, args...)
	trace(c.logger, query, begin, err)
	return err
}

func (c *Conn) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query = c.dialect.Rebind(query)
	begin := time.Now()
	err := c.conn.SelectContext(ctx, dest, query, args...)
	trace(c.logger, query, begin, err)
	return err
}

// ExecuteTx runs fn in a transaction on this connection. The transaction is
// rolled back when fn returns an error or panics, and committed otherwise.
func (c *Conn) ExecuteTx(ctx context.Context, fn func(*Tx) error) (err error) {
	tx, err := c.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("commit: %w", commitErr)
		}
	}()

	err = fn(&Tx{tx: tx, dialect: c.dialect, logger: c.logger})
	return err
}

// WithoutForeignKeys disables referential-integrity checks on this
// connection while fn runs. Checks are restored on every exit path, even
// when ctx has been cancelled, because the connection goes back to the pool.
func (c *Conn) WithoutForeignKeys(ctx context.Context, fn func() error) (err error) {
	if _, err := c.ExecContext(ctx, c.dialect.DisableForeignKeys()); err != nil {
		return fmt.Errorf("disable foreign key checks: %w", err)
	}

	defer func() {
		_, enableErr := c.ExecContext(context.WithoutCancel(ctx), c.dialect.EnableForeignKeys())
		if enableErr != nil && err == nil {
			err = fmt.Errorf("enable foreign key checks: %w", enableErr)
		}
	}()

	return fn()
}

// Tx is a transaction on a pinned connection.
type Tx struct {
	tx      *sqlx.Tx
	dialect Dialect
	logger  *zap.Logger
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	query = t.dialect.Rebind(query)
	begin := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	trace(t.logger, query, begin, err)
	return res, err
}

func (t *Tx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query = t.dialect.Rebind(query)
	begin := time.Now()
	err := t.tx.GetContext(ctx, dest, query, args...)
	trace(t.logger, query, begin, err)
	return err
}

func (t *Tx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query = t.dialect.Rebind(query)
	begin := time.Now()
	err := t.tx.SelectContext(ctx, dest, query, args...)
	trace(t.logger, query, begin, err)
	return err
}
