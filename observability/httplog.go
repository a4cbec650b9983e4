package observability

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pressops/docsmith/dbopen"
)

// RequestLogger returns chi middleware that writes one row per request to
// the http_request_logs table. Writes happen off the request goroutine so a
// slow observability store never delays a response.
func RequestLogger(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			method := r.Method
			path := r.URL.Path
			status := ww.Status()
			durationMs := time.Since(start).Milliseconds()
			requestID := middleware.GetReqID(r.Context())
			remoteAddr := r.RemoteAddr
			userAgent := r.UserAgent()

			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_, err := dbopen.Exec(ctx, db, `
					INSERT INTO http_request_logs (
						method, path, status_code, duration_ms,
						request_id, ip_address, user_agent, created_at
					) VALUES (?,?,?,?,?,?,?,?)`,
					method, path, status, durationMs,
					requestID, remoteAddr, userAgent, time.Now().Unix())
				if err != nil {
					slog.Warn("http request log failed", "error", err, "path", path)
				}
			}()
		})
	}
}
