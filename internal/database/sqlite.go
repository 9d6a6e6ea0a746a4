package database

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"streaming-db/internal/config"
)

// SQLiteDialect backs local files and the test suite. SQLite accepts
// backtick identifiers, so queries need no rewriting.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string       { return "sqlite" }
func (SQLiteDialect) DriverName() string { return "sqlite3" }

// DSN turns on foreign key enforcement, which SQLite leaves off by default.
func (SQLiteDialect) DSN(dsn string) (string, error) {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn, nil
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1", nil
	}
	return dsn + "?_foreign_keys=1", nil
}

func (SQLiteDialect) Rebind(query string) string { return query }

// The pragma is a no-op inside a transaction, which is why checks are
// toggled on the pinned connection before any transaction begins.
func (SQLiteDialect) DisableForeignKeys() string { return "PRAGMA foreign_keys = OFF" }
func (SQLiteDialect) EnableForeignKeys() string  { return "PRAGMA foreign_keys = ON" }
func (SQLiteDialect) DateTimeType() string       { return "DATETIME" }

// Configure keeps a single long-lived connection: an in-memory database
// lives and dies with its connection.
func (SQLiteDialect) Configure(db *sqlx.DB, cfg config.Database) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
}
