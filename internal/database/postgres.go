package database

import (
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"streaming-db/internal/config"
)

// PostgresDialect talks to PostgreSQL through pgx's database/sql driver.
type PostgresDialect struct{}

func (PostgresDialect) Name() string       { return "postgres" }
func (PostgresDialect) DriverName() string { return "pgx" }

func (PostgresDialect) DSN(dsn string) (string, error) {
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", err
	}
	return dsn, nil
}

// Rebind quotes identifiers with double quotes and numbers the placeholders.
func (PostgresDialect) Rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, strings.ReplaceAll(query, "`", `"`))
}

// Replica mode skips foreign key triggers for the session. It needs a role
// allowed to set session_replication_role.
func (PostgresDialect) DisableForeignKeys() string {
	return "SET session_replication_role = replica"
}

func (PostgresDialect) EnableForeignKeys() string {
	return "SET session_replication_role = DEFAULT"
}

func (PostgresDialect) DateTimeType() string { return "TIMESTAMP" }

func (PostgresDialect) Configure(db *sqlx.DB, cfg config.Database) {
	configurePool(db, cfg)
}
