package shield

import "net/http"

// HeaderConfig defines the security headers applied to every response.
// Empty fields are skipped.
type HeaderConfig struct {
	CSP                 string
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
}

// DefaultHeaders returns a configuration suited to a JSON/file-download API:
// no scripts, no framing, no sniffing.
func DefaultHeaders() HeaderConfig {
	return HeaderConfig{
		CSP:                 "default-src 'none'; frame-ancestors 'none'",
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
	}
}

// SecurityHeaders returns middleware that sets the configured headers on
// every response.
func SecurityHeaders(cfg HeaderConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.XContentTypeOptions != "" {
				w.Header().Set("X-Content-Type-Options", cfg.XContentTypeOptions)
			}
			if cfg.XFrameOptions != "" {
				w.Header().Set("X-Frame-Options", cfg.XFrameOptions)
			}
			if cfg.ReferrerPolicy != "" {
				w.Header().Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			if cfg.CSP != "" {
				w.Header().Set("Content-Security-Policy", cfg.CSP)
			}
			next.ServeHTTP(w, r)
		})
	}
}
