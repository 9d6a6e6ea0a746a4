package database

import (
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"streaming-db/internal/config"
)

// MySQLDialect is the default backend.
type MySQLDialect struct{}

func (MySQLDialect) Name() string       { return "mysql" }
func (MySQLDialect) DriverName() string { return "mysql" }

// DSN rejects malformed data source names before a connection is attempted.
func (MySQLDialect) DSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	return cfg.FormatDSN(), nil
}

// Rebind is the identity: backticks and ? are native.
func (MySQLDialect) Rebind(query string) string { return query }

func (MySQLDialect) DisableForeignKeys() string { return "SET FOREIGN_KEY_CHECKS=0" }
func (MySQLDialect) EnableForeignKeys() string  { return "SET FOREIGN_KEY_CHECKS=1" }
func (MySQLDialect) DateTimeType() string       { return "DATETIME" }

func (MySQLDialect) Configure(db *sqlx.DB, cfg config.Database) {
	configurePool(db, cfg)
}

func configurePool(db *sqlx.DB, cfg config.Database) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
