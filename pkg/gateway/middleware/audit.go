package middleware

import (
	"net/http"
	"strings"
	"time"

	"macrolog-hq/ceres/pkg/audit"
)

// AuditMiddleware records an audit trail entry for every completed
// request. The recorder writes asynchronously, so request handling never
// blocks on audit storage. A nil recorder disables auditing.
func AuditMiddleware(recorder *audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := NormalizeRoute(r.URL.Path)
			recorder.Record(&audit.Record{
				RequestID:  GetRequestID(r.Context()),
				Time:       start.UTC(),
				Method:     r.Method,
				Path:       r.URL.Path,
				Route:      route,
				Query:      auditQuery(route, r),
				Status:     rw.statusCode,
				DurationMs: time.Since(start).Milliseconds(),
				ClientIP:   r.RemoteAddr,
				UserAgent:  r.UserAgent(),
				Error:      errorCategory(rw.statusCode),
			})
		})
	}
}

// auditQuery extracts the caller's lookup subject for the routes that
// carry one: the search term, food ID, or barcode.
func auditQuery(route string, r *http.Request) string {
	switch route {
	case "/search":
		return r.URL.Query().Get("q")
	case "/food/{foodID}":
		return strings.TrimPrefix(r.URL.Path, "/food/")
	case "/barcode/{code}":
		return strings.TrimPrefix(r.URL.Path, "/barcode/")
	}
	return ""
}

// errorCategory maps a response status to a coarse error label for audit
// records. Successful requests produce an empty category.
func errorCategory(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= 400:
		return "bad_request"
	default:
		return ""
	}
}
