package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/tweetarchive/internal/domain/ingest"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

type Metrics struct {
	outcomes      *CounterVec
	recordLatency *HistogramVec
	writeOps      *HistogramVec
	duplicates    *CounterVec
	runs          *CounterVec
	dbStats       *GaugeVec
}

func New() *Metrics {
	return &Metrics{
		outcomes: NewCounterVec(
			"tweetarchive_records_total",
			"Records processed by outcome.",
			[]string{"outcome"},
		),
		recordLatency: NewHistogramVec(
			"tweetarchive_record_seconds",
			"Time to build and persist one record.",
			[]string{"outcome"},
			nil,
		),
		writeOps: NewHistogramVec(
			"tweetarchive_write_seconds",
			"Unit-of-work transaction time.",
			[]string{"op", "status"},
			nil,
		),
		duplicates: NewCounterVec(
			"tweetarchive_duplicates_total",
			"Unique-key rejections by operation.",
			[]string{"op"},
		),
		runs: NewCounterVec(
			"tweetarchive_run_records_total",
			"Found and saved totals across reconciler runs.",
			[]string{"kind"},
		),
		dbStats: NewGaugeVec(
			"tweetarchive_db_pool",
			"database/sql pool statistics.",
			[]string{"stat"},
		),
	}
}

func (m *Metrics) ObserveOutcome(outcome ingest.Outcome, dur time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.Inc(outcome.String())
	m.recordLatency.Observe(dur.Seconds(), outcome.String())
}

func (m *Metrics) ObserveWriteOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.writeOps.Observe(dur.Seconds(), strings.TrimSpace(op), strings.TrimSpace(status))
}

func (m *Metrics) IncDuplicate(op string) {
	if m == nil {
		return
	}
	m.duplicates.Inc(strings.TrimSpace(op))
}

func (m *Metrics) ObserveRun(found, saved int) {
	if m == nil {
		return
	}
	m.runs.Add(float64(found), "found")
	m.runs.Add(float64(saved), "saved")
}

// Outcomes returns the running count for one outcome.
func (m *Metrics) Outcomes(outcome ingest.Outcome) float64 {
	if m == nil {
		return 0
	}
	return m.outcomes.Value(outcome.String())
}

// CollectDBStats snapshots the connection pool once.
func (m *Metrics) CollectDBStats(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	stats := sqlDB.Stats()
	m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
	m.dbStats.Set(float64(stats.InUse), "in_use")
	m.dbStats.Set(float64(stats.Idle), "idle")
	m.dbStats.Set(float64(stats.WaitCount), "wait_count")
	m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.outcomes,
		m.recordLatency,
		m.writeOps,
		m.duplicates,
		m.runs,
		m.dbStats,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile dumps the exposition text to path, for scraping by a
// node-exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WritePrometheus(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
