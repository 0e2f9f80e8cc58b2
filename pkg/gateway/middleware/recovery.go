package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a
// 500 response in the gateway's error envelope, carrying the panic value
// as the message. The stack trace is logged, never sent to the client.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(r.Context())
				stack := debug.Stack()

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)

				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "Internal server error",
					"message": fmt.Sprint(err),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
