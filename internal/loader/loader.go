package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"streaming-db/internal/config"
	"streaming-db/internal/database"
	"streaming-db/internal/schema"
)

// Loader recreates the schema and bulk-loads it from a folder of CSV files
// named after the tables.
type Loader struct {
	store  *database.Store
	cfg    config.Import
	logger *zap.Logger
}

func New(store *database.Store, cfg config.Import, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{store: store, cfg: cfg, logger: logger.Named("loader")}
}

// Import drops and recreates every table, then loads each <Table>.csv found
// in folder inside a single transaction. Missing files are skipped. Any bad
// row rolls the whole load back, leaving the new schema empty.
func (l *Loader) Import(ctx context.Context, folder string) (*Report, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("open import folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("import folder %s is not a directory", folder)
	}

	report := &Report{}
	err = l.store.WithConn(ctx, func(conn *database.Conn) error {
		if err := schema.Recreate(ctx, conn); err != nil {
			return fmt.Errorf("recreate schema: %w", err)
		}
		l.logger.Info("Schema recreated", zap.Int("tables", len(schema.Tables())))

		return conn.ExecuteTx(ctx, func(tx *database.Tx) error {
			for _, table := range schema.Tables() {
				stats, err := l.loadTable(ctx, tx, folder, table)
				if err != nil {
					return err
				}
				report.Tables = append(report.Tables, stats)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for _, stats := range report.Tables {
		if stats.Skipped {
			l.logger.Info("No CSV file, table left empty", zap.String("table", stats.Table))
			continue
		}
		l.logger.Info("Table loaded", stats.fields()...)
	}
	l.logger.Info("Import finished", zap.Int64("rows", report.Rows()))

	return report, nil
}

func (l *Loader) loadTable(ctx context.Context, tx *database.Tx, folder string, table schema.Table) (*TableStats, error) {
	stats := newTableStats(table.Name)

	f, err := os.Open(filepath.Join(folder, table.Name+".csv"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			stats.Skipped = true
			return stats, nil
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(table.Columns)

	if l.cfg.HeaderRow {
		if _, err := reader.Read(); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%s.csv header: %w", table.Name, err)
		}
	}

	query := table.InsertStatement()
	start := time.Now()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s.csv: %w", table.Name, err)
		}

		opStartTime := time.Now()
		if _, err := tx.ExecContext(ctx, query, nullable(record)...); err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%s.csv line %d: %w", table.Name, line, err)
		}
		stats.record(time.Since(opStartTime))
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// nullable binds empty fields as NULL.
func nullable(record []string) []interface{} {
	args := make([]interface{}, len(record))
	for i, v := range record {
		if v != "" {
			args[i] = v
		}
	}
	return args
}
