package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressops/docsmith/dbopen"
	"github.com/pressops/docsmith/idgen"
)

// ConversionEvent records the outcome of one conversion request.
type ConversionEvent struct {
	Operation    string // e.g. "pdf-to-word", "extract-text"
	Filename     string
	InputBytes   int64
	OutputBytes  int64
	Pages        int
	Source       string // "text", "ocr" or empty for non-extraction ops
	DurationMs   int64
	Success      bool
	ErrorMessage string
}

// EventLogger writes conversion events and manages retention cleanup.
type EventLogger struct {
	db    *sql.DB
	newID idgen.Generator
}

// EventLoggerOption configures an EventLogger.
type EventLoggerOption func(*EventLogger)

// WithEventIDGenerator sets a custom ID generator for event IDs.
func WithEventIDGenerator(gen idgen.Generator) EventLoggerOption {
	return func(l *EventLogger) { l.newID = gen }
}

// NewEventLogger creates a logger backed by the given observability database.
func NewEventLogger(db *sql.DB, opts ...EventLoggerOption) *EventLogger {
	l := &EventLogger{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// LogConversion records a conversion event. Non-blocking: errors are logged
// via slog but do not propagate, so a failing observability store never
// blocks a conversion.
func (l *EventLogger) LogConversion(ctx context.Context, event ConversionEvent) {
	eventID := l.newID()
	_, err := dbopen.Exec(ctx, l.db, `
		INSERT INTO conversion_events (
			event_id, operation, filename, input_bytes, output_bytes,
			pages, source, duration_ms, success, error_message, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		eventID, event.Operation, event.Filename, event.InputBytes, event.OutputBytes,
		event.Pages, event.Source, event.DurationMs, event.Success, event.ErrorMessage,
		time.Now().Unix())
	if err != nil {
		slog.Error("observability event log failed", "error", err, "operation", event.Operation)
	}
}

// RetentionConfig specifies per-table retention in days. Zero means no cleanup.
type RetentionConfig struct {
	HTTPLogsDays   int
	EventsDays     int
	MetricsDays    int
	RunVacuumAfter bool
}

// Cleanup deletes records exceeding the retention thresholds.
func Cleanup(ctx context.Context, db *sql.DB, cfg RetentionConfig) error {
	now := time.Now().Unix()

	type cleanupTarget struct {
		table  string
		column string
		days   int
	}
	targets := []cleanupTarget{
		{"http_request_logs", "created_at", cfg.HTTPLogsDays},
		{"conversion_events", "created_at", cfg.EventsDays},
		{"metrics_timeseries", "timestamp", cfg.MetricsDays},
	}

	for _, t := range targets {
		if t.days <= 0 {
			continue
		}
		cutoff := now - int64(t.days*86400)
		q := fmt.Sprintf("DELETE FROM %s WHERE %s < ?", t.table, t.column)
		if _, err := dbopen.Exec(ctx, db, q, cutoff); err != nil {
			return fmt.Errorf("cleanup %s: %w", t.table, err)
		}
	}

	if cfg.RunVacuumAfter {
		if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("vacuum: %w", err)
		}
	}
	return nil
}
