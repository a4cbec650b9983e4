// Package shield provides HTTP hardening middleware for the conversion
// service: security headers, per-IP rate limiting, and HEAD handling.
//
// Usage:
//
//	r := chi.NewRouter()
//	rl := shield.NewRateLimiter(db)
//	rl.StartReloader(done)
//	for _, mw := range shield.DefaultStack(rl) {
//	    r.Use(mw)
//	}
package shield

import "net/http"

// DefaultStack returns the standard middleware stack, ordered
// HeadToGet → SecurityHeaders → RateLimiter. Pass a nil limiter to skip
// rate limiting.
func DefaultStack(rl *RateLimiter) []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
	}
	if rl != nil {
		stack = append(stack, rl.Middleware)
	}
	return stack
}

// HeadToGet converts HEAD requests to GET so that route handlers registered
// with r.Get() respond with 200 instead of 405. net/http strips the body
// for HEAD responses.
func HeadToGet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			r.Method = http.MethodGet
		}
		next.ServeHTTP(w, r)
	})
}
