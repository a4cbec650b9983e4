package observability

import "database/sql"

// Schema contains the complete DDL for the observability tables.
// Call Init(db) to apply it, or use this constant to embed in your own
// schema management.
const Schema = `
-- Conversion Events
CREATE TABLE IF NOT EXISTS conversion_events (
    event_id TEXT PRIMARY KEY,
    operation TEXT NOT NULL,
    filename TEXT,
    input_bytes INTEGER,
    output_bytes INTEGER,
    pages INTEGER,
    source TEXT,
    duration_ms INTEGER,
    success INTEGER NOT NULL DEFAULT 1,
    error_message TEXT,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_conversion_events_op
    ON conversion_events(operation, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_conversion_events_time
    ON conversion_events(created_at DESC);

-- Metrics Timeseries
CREATE TABLE IF NOT EXISTS metrics_timeseries (
    metric_id TEXT PRIMARY KEY DEFAULT ('met_' || hex(randomblob(16))),
    metric_name TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    value REAL NOT NULL,
    labels TEXT,
    unit TEXT,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_metrics_name_time
    ON metrics_timeseries(metric_name, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_metrics_timestamp
    ON metrics_timeseries(timestamp DESC);

-- HTTP Request Logs
CREATE TABLE IF NOT EXISTS http_request_logs (
    log_id TEXT PRIMARY KEY DEFAULT ('hrl_' || hex(randomblob(16))),
    method TEXT NOT NULL,
    path TEXT NOT NULL,
    status_code INTEGER,
    duration_ms INTEGER,
    request_id TEXT,
    ip_address TEXT,
    user_agent TEXT,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_http_logs_time ON http_request_logs(created_at DESC);

-- Metadata registry
CREATE TABLE IF NOT EXISTS _observability_metadata (
    table_name TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
    description TEXT
);
INSERT OR IGNORE INTO _observability_metadata (table_name, description) VALUES
    ('conversion_events', 'Per-request conversion outcomes'),
    ('metrics_timeseries', 'Timeseries metric datapoints'),
    ('http_request_logs', 'HTTP request logs');
`

// Init applies the observability schema to the given database.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
