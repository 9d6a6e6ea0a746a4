package loader

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"
)

// TableStats records how one table's CSV file was loaded.
type TableStats struct {
	Table    string
	Rows     int64
	Skipped  bool
	Duration time.Duration
	latency  *hdrhistogram.Histogram
}

func newTableStats(table string) *TableStats {
	// Max latency of 10 seconds, significant figures of 3
	return &TableStats{
		Table:   table,
		latency: hdrhistogram.New(1, 10000000000, 3),
	}
}

func (s *TableStats) record(elapsed time.Duration) {
	s.Rows++
	s.latency.RecordValue(elapsed.Nanoseconds())
}

// Percentile returns the insert latency at q (0-100).
func (s *TableStats) Percentile(q float64) time.Duration {
	return time.Duration(s.latency.ValueAtQuantile(q))
}

func (s *TableStats) Max() time.Duration {
	return time.Duration(s.latency.Max())
}

func (s *TableStats) fields() []zap.Field {
	return []zap.Field{
		zap.String("table", s.Table),
		zap.Int64("rows", s.Rows),
		zap.Duration("duration", s.Duration),
		zap.Duration("p50", s.Percentile(50)),
		zap.Duration("p99", s.Percentile(99)),
		zap.Duration("max", s.Max()),
	}
}

// Report summarises one import.
type Report struct {
	Tables []*TableStats
}

// Rows is the total number of rows inserted.
func (r *Report) Rows() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}
