package middleware

import (
	"net/http"
	"time"
)

// RequestRecorder receives gateway request outcomes. Implemented by the
// telemetry metrics collector.
type RequestRecorder interface {
	RecordRequest(route, method string, status int, duration time.Duration)
}

// MetricsMiddleware records per-request metrics: route pattern, method,
// status code, and duration.
func MetricsMiddleware(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			recorder.RecordRequest(
				NormalizeRoute(r.URL.Path),
				r.Method,
				rw.statusCode,
				time.Since(start),
			)
		})
	}
}
