package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// HTTPRecorder receives per-request measurements.
type HTTPRecorder interface {
	RecordHTTP(method, route string, status int, duration time.Duration)
}

// Logging returns middleware that logs request processing time and, when rec
// is not nil, records it as a metric.
func Logging(rec HTTPRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)

			slog.Debug("request processed",
				"method", r.Method,
				"route", route,
				"status", sw.status,
				"session_id", GetSessionID(r.Context()),
				"duration", elapsed,
			)
			if rec != nil {
				rec.RecordHTTP(r.Method, route, sw.status, elapsed)
			}
		})
	}
}
