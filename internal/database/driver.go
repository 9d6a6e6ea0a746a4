package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"streaming-db/internal/config"
)

// Dialect captures what differs between the supported backends. Queries are
// written once with `backtick` identifiers and ? placeholders; Rebind turns
// them into the backend's own syntax.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(dsn string) (string, error)
	Rebind(query string) string
	DisableForeignKeys() string
	EnableForeignKeys() string
	DateTimeType() string
	Configure(db *sqlx.DB, cfg config.Database)
}

// DialectFor resolves a configured driver name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "mysql":
		return MySQLDialect{}, nil
	case "postgres":
		return PostgresDialect{}, nil
	case "sqlite":
		return SQLiteDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver: %q", name)
}

func trace(logger *zap.Logger, query string, begin time.Time, err error) {
	if ce := logger.Check(zap.DebugLevel, "sql"); ce != nil {
		fields := []zap.Field{
			zap.String("query", query),
			zap.Duration("elapsed", time.Since(begin)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		ce.Write(fields...)
	}
}
