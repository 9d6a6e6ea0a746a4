package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streaming-db/internal/database"
	"streaming-db/internal/testutil"
)

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"mysql", "postgres", "sqlite"} {
		d, err := database.DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}

	_, err := database.DialectFor("mongodb")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "SELECT title FROM `Release` WHERE rid = ? AND genre = ?"

	assert.Equal(t, q, database.MySQLDialect{}.Rebind(q))
	assert.Equal(t, q, database.SQLiteDialect{}.Rebind(q))
	assert.Equal(t, `SELECT title FROM "Release" WHERE rid = $1 AND genre = $2`, database.PostgresDialect{}.Rebind(q))
}

func TestDSN(t *testing.T) {
	dsn, err := database.SQLiteDialect{}.DSN("catalog.db")
	require.NoError(t, err)
	assert.Equal(t, "catalog.db?_foreign_keys=1", dsn)

	dsn, err = database.SQLiteDialect{}.DSN("file:catalog.db?cache=shared")
	require.NoError(t, err)
	assert.Equal(t, "file:catalog.db?cache=shared&_foreign_keys=1", dsn)

	dsn, err = database.SQLiteDialect{}.DSN("catalog.db?_fk=0")
	require.NoError(t, err)
	assert.Equal(t, "catalog.db?_fk=0", dsn)

	_, err = database.MySQLDialect{}.DSN("test:password@tcp(127.0.0.1:3306)/cs122a")
	assert.NoError(t, err)
	_, err = database.MySQLDialect{}.DSN("not a dsn")
	assert.Error(t, err)

	_, err = database.PostgresDialect{}.DSN("postgres://user:pw@localhost:5432/catalog")
	assert.NoError(t, err)
}

func createItems(ctx context.Context, conn *database.Conn) error {
	_, err := conn.ExecContext(ctx, "CREATE TABLE `items` (id INT PRIMARY KEY)")
	return err
}

func countItems(t *testing.T, ctx context.Context, conn *database.Conn) int {
	t.Helper()
	var n int
	require.NoError(t, conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM `items`"))
	return n
}

func TestExecuteTx(t *testing.T) {
	store := testutil.NewTestDB(t)
	ctx := context.Background()

	err := store.WithConn(ctx, func(conn *database.Conn) error {
		require.NoError(t, createItems(ctx, conn))

		err := conn.ExecuteTx(ctx, func(tx *database.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO `items` (id) VALUES (?)", 1)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countItems(t, ctx, conn))

		boom := errors.New("boom")
		err = conn.ExecuteTx(ctx, func(tx *database.Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO `items` (id) VALUES (?)", 2); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, countItems(t, ctx, conn))

		assert.Panics(t, func() {
			conn.ExecuteTx(ctx, func(tx *database.Tx) error {
				tx.ExecContext(ctx, "INSERT INTO `items` (id) VALUES (?)", 3)
				panic("bad row")
			})
		})
		assert.Equal(t, 1, countItems(t, ctx, conn))
		return nil
	})
	require.NoError(t, err)
}

func TestWithoutForeignKeys(t *testing.T) {
	store := testutil.NewTestDB(t)
	ctx := context.Background()

	enabled := func(conn *database.Conn) int {
		var on int
		require.NoError(t, conn.GetContext(ctx, &on, "PRAGMA foreign_keys"))
		return on
	}

	err := store.WithConn(ctx, func(conn *database.Conn) error {
		assert.Equal(t, 1, enabled(conn))

		err := conn.WithoutForeignKeys(ctx, func() error {
			assert.Equal(t, 0, enabled(conn))
			return errors.New("insert failed")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, enabled(conn))
		return nil
	})
	require.NoError(t, err)
}
