// Package observability provides SQLite-native monitoring for the conversion
// service: a domain event log, a buffered metrics timeseries, and HTTP
// request logging.
//
// All components write to a shared observability database, kept separate
// from any application data to avoid write contention. Call Init() on the
// shared *sql.DB first, then pass it to the individual constructors.
//
// Persistence is async and non-blocking: a failing store is logged and
// dropped rather than applying backpressure to conversions.
package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/pressops/docsmith/dbopen"
)

// Metric is a single timeseries datapoint.
type Metric struct {
	Name      string
	Timestamp time.Time
	Value     float64
	Labels    map[string]string // optional key/value pairs
	Unit      string            // "milliseconds", "bytes", "count", "pages"
}

// MetricsManager buffers metrics and flushes them to SQLite in batches.
type MetricsManager struct {
	db            *sql.DB
	bufferSize    int
	flushInterval time.Duration
	buffer        []*Metric
	mu            sync.Mutex
	stop          chan struct{}
	done          chan struct{}
}

// NewMetricsManager creates a manager that flushes metrics in batches.
// Recommended defaults: bufferSize=100, flushInterval=5s.
func NewMetricsManager(db *sql.DB, bufferSize int, flushInterval time.Duration) *MetricsManager {
	mm := &MetricsManager{
		db:            db,
		bufferSize:    bufferSize,
		flushInterval: flushInterval,
		buffer:        make([]*Metric, 0, bufferSize),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go mm.flushLoop()
	return mm
}

// Record queues a metric for async persistence. Non-blocking.
func (mm *MetricsManager) Record(m *Metric) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.buffer = append(mm.buffer, m)
	if len(mm.buffer) >= mm.bufferSize {
		mm.flushLocked()
	}
}

// RecordSimple is a convenience helper for metrics without labels.
func (mm *MetricsManager) RecordSimple(name string, value float64, unit string) {
	mm.Record(&Metric{
		Name:      name,
		Timestamp: time.Now(),
		Value:     value,
		Unit:      unit,
	})
}

// RecordRuntime samples Go process health (goroutines, heap, GC) into the
// timeseries. Intended to be called on a ticker from main.
func (mm *MetricsManager) RecordRuntime() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	mm.RecordSimple(MetricGoroutinesCount, float64(runtime.NumGoroutine()), "count")
	mm.RecordSimple(MetricMemoryAllocMB, float64(mem.Alloc)/1024/1024, "megabytes")
	mm.RecordSimple(MetricGCCount, float64(mem.NumGC), "count")
}

// Query retrieves metrics filtered by name and limit, newest first.
// Pass empty metricName for all metrics; limit<=0 means unbounded.
func (mm *MetricsManager) Query(metricName string, limit int) ([]*Metric, error) {
	q := "SELECT metric_name, timestamp, value, labels, unit FROM metrics_timeseries WHERE 1=1"
	args := make([]any, 0, 2)

	if metricName != "" {
		q += " AND metric_name = ?"
		args = append(args, metricName)
	}
	q += " ORDER BY timestamp DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := mm.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []*Metric
	for rows.Next() {
		var name, unit string
		var ts int64
		var value float64
		var labelsJSON sql.NullString

		if err := rows.Scan(&name, &ts, &value, &labelsJSON, &unit); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		m := &Metric{Name: name, Timestamp: time.Unix(ts, 0), Value: value, Unit: unit}
		if labelsJSON.Valid {
			var labels map[string]string
			if json.Unmarshal([]byte(labelsJSON.String), &labels) == nil {
				m.Labels = labels
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close flushes remaining metrics and stops the background goroutine.
func (mm *MetricsManager) Close() error {
	close(mm.stop)
	<-mm.done
	return nil
}

func (mm *MetricsManager) flushLoop() {
	defer close(mm.done)
	ticker := time.NewTicker(mm.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-mm.stop:
			mm.mu.Lock()
			mm.flushLocked()
			mm.mu.Unlock()
			return
		case <-ticker.C:
			mm.mu.Lock()
			mm.flushLocked()
			mm.mu.Unlock()
		}
	}
}

func (mm *MetricsManager) flushLocked() {
	if len(mm.buffer) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := dbopen.RunTx(ctx, mm.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO metrics_timeseries (metric_name, timestamp, value, labels, unit) VALUES (?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, m := range mm.buffer {
			var labelsJSON sql.NullString
			if len(m.Labels) > 0 {
				if b, err := json.Marshal(m.Labels); err == nil {
					labelsJSON = sql.NullString{String: string(b), Valid: true}
				}
			}
			if _, err := stmt.ExecContext(ctx, m.Name, m.Timestamp.Unix(), m.Value, labelsJSON, m.Unit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Batch is dropped, not retried; the store must never apply
		// backpressure to conversions.
		slog.Error("observability metrics: flush", "error", err)
	}
	mm.buffer = mm.buffer[:0]
}

// Standard metric name constants.
const (
	MetricConversionDurationMs = "conversion_duration_ms"
	MetricOCRPagesCount        = "ocr_pages_count"
	MetricUploadBytes          = "upload_bytes"
	MetricGoroutinesCount      = "goroutines_count"
	MetricMemoryAllocMB        = "memory_alloc_mb"
	MetricGCCount              = "gc_count"
)
