package testutil

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"streaming-db/internal/config"
	"streaming-db/internal/database"
	"streaming-db/internal/schema"
)

// NewTestDB opens a private in-memory SQLite database.
func NewTestDB(t testing.TB) *database.Store {
	t.Helper()

	dialect := database.SQLiteDialect{}
	dsn, err := dialect.DSN(":memory:")
	require.NoError(t, err)

	db, err := sqlx.Open(dialect.DriverName(), dsn)
	require.NoError(t, err)
	dialect.Configure(db, config.Database{})

	store := database.NewStore(db, dialect, zaptest.NewLogger(t))
	t.Cleanup(func() { store.Close() })

	return store
}

// NewTestStore opens an in-memory database with every table created and empty.
func NewTestStore(t testing.TB) *database.Store {
	t.Helper()

	store := NewTestDB(t)
	err := store.WithConn(context.Background(), func(conn *database.Conn) error {
		return schema.Recreate(context.Background(), conn)
	})
	require.NoError(t, err)

	return store
}

// NewSeededStore opens an in-memory database holding Fixtures.
func NewSeededStore(t testing.TB) *database.Store {
	t.Helper()

	store := NewTestStore(t)
	Seed(t, store, Fixtures())
	return store
}

// Seed inserts rows table by table in schema order. Empty strings bind as NULL.
func Seed(t testing.TB, store *database.Store, rows map[string][][]string) {
	t.Helper()

	ctx := context.Background()
	err := store.WithConn(ctx, func(conn *database.Conn) error {
		return conn.ExecuteTx(ctx, func(tx *database.Tx) error {
			for _, table := range schema.Tables() {
				for _, row := range rows[table.Name] {
					args := make([]interface{}, len(row))
					for i, v := range row {
						if v != "" {
							args[i] = v
						}
					}
					if _, err := tx.ExecContext(ctx, table.InsertStatement(), args...); err != nil {
						return err
					}
				}
			}
			return nil
		})
	})
	require.NoError(t, err)
}

// WriteCSV writes one <Table>.csv per entry of rows into dir.
func WriteCSV(t testing.TB, dir string, rows map[string][][]string) {
	t.Helper()

	for name, records := range rows {
		f, err := os.Create(filepath.Join(dir, name+".csv"))
		require.NoError(t, err)

		w := csv.NewWriter(f)
		require.NoError(t, w.WriteAll(records))
		require.NoError(t, f.Close())
	}
}

// Fixtures is a small catalog. Release 100 has two reviews, 101 has one and
// 102 has none. Viewer 1 watched episode (102,1) twice and viewer 2 once;
// episode (102,2) was never watched. User 10 is a producer, not a viewer.
func Fixtures() map[string][][]string {
	return map[string][][]string{
		"User": {
			{"1", "ada@example.com", "2023-05-01", "ada", "1 Main St", "Irvine", "CA", "92612", "Drama,Comedy"},
			{"2", "ben@example.com", "2023-06-12", "ben", "2 Oak Ave", "Austin", "TX", "73301", ""},
			{"3", "cy@example.com", "2023-07-20", "cy", "3 Pine Rd", "Seattle", "WA", "98101", "Action"},
			{"10", "paula@studio.com", "2022-01-01", "paula", "", "", "", "", ""},
		},
		"Producer": {
			{"10", "Independent producer", "Paula Films"},
		},
		"Viewer": {
			{"1", "monthly", "Ada", "Lovelace"},
			{"2", "free", "Ben", "Stone"},
			{"3", "yearly", "Cy", ""},
		},
		"Release": {
			{"100", "10", "Arrival", "SciFi", "2016-11-11"},
			{"101", "10", "Brave", "Animation", "2012-06-22"},
			{"102", "", "Cosmos", "Documentary", "2014-03-09"},
		},
		"Movie": {
			{"100", "https://example.com/arrival"},
			{"101", "https://example.com/brave"},
		},
		"Series": {
			{"102", "A journey through space and time"},
		},
		"Video": {
			{"100", "1", "Arrival", "116"},
			{"101", "1", "Brave", "93"},
			{"102", "1", "Standing Up", "44"},
			{"102", "2", "Molecules", ""},
		},
		"Session": {
			{"1", "1", "100", "1", "2024-01-05 10:00:00", "2024-01-05 12:00:00", "1080p", "desktop"},
			{"2", "1", "102", "1", "2024-01-06 09:00:00", "2024-01-06 09:45:00", "720p", "mobile"},
			{"3", "2", "102", "1", "2024-01-07 20:00:00", "2024-01-07 20:30:00", "480p", "mobile"},
			{"4", "1", "102", "1", "2024-01-08 21:00:00", "2024-01-08 21:40:00", "1080p", "desktop"},
			{"5", "3", "101", "1", "2024-01-10 10:00:00", "2024-01-10 11:30:00", "720p", "desktop"},
		},
		"Review": {
			{"1", "1", "100", "5", "Loved it", "2024-01-05 13:00:00"},
			{"2", "2", "100", "4", "", "2024-01-06 08:00:00"},
			{"3", "1", "101", "3", "Fine", "2024-01-09 18:00:00"},
		},
	}
}
