package logging

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// requestIDKey is the context key for the request ID.
	requestIDKey contextKey = "request_id"
)

// WithRequestID returns a new context carrying the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from the context, returning
// an empty string if none is set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// extractContextFields collects known context values as slog key-value
// pairs.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, "request_id", id)
	}
	return fields
}
