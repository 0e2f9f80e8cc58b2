package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"macrolog-hq/ceres/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware generates a unique request ID for each request and
// adds it to the context and response headers. If the client provides a
// request ID in the X-Request-ID header, it is used instead of generating
// a new one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = generateRequestID()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// generateRequestID generates a unique request ID using cryptographic
// random bytes: 16 bytes, 32 hex characters.
func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; use a
		// fixed marker rather than panicking in the request path
		return "fallback-request-id"
	}
	return hex.EncodeToString(b)
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}
