package audit

import (
	"context"
	"time"
)

// Record represents the audit trail for a single gateway request. It
// captures request metadata and outcome, never request credentials or
// upstream tokens.
type Record struct {
	// ID is a UUID v4 assigned when the record is created.
	ID string `json:"id"`

	// RequestID is the per-request identifier from the gateway.
	RequestID string `json:"request_id"`

	// Time is when the request was received.
	Time time.Time `json:"time"`

	// Method is the HTTP method.
	Method string `json:"method"`

	// Path is the request path as received.
	Path string `json:"path"`

	// Route is the route pattern that served the request
	// (e.g., "/food/{foodID}").
	Route string `json:"route"`

	// Query is the search term or barcode, when the route carries one.
	Query string `json:"query,omitempty"`

	// Status is the HTTP status code returned to the client.
	Status int `json:"status"`

	// DurationMs is the total request duration in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// ClientIP is the remote address of the caller.
	ClientIP string `json:"client_ip"`

	// UserAgent is the caller's User-Agent header.
	UserAgent string `json:"user_agent,omitempty"`

	// Error holds the error category when the request failed
	// (e.g., "not_found", "upstream_error").
	Error string `json:"error,omitempty"`
}

// Query defines filter parameters for querying audit records.
type Query struct {
	// StartTime is the inclusive lower bound on Record.Time.
	StartTime *time.Time `json:"start_time,omitempty"`

	// EndTime is the inclusive upper bound on Record.Time.
	EndTime *time.Time `json:"end_time,omitempty"`

	// Route filters by route pattern.
	Route string `json:"route,omitempty"`

	// Status filters by HTTP status code.
	Status int `json:"status,omitempty"`

	// Limit is the maximum number of records to return. Zero means the
	// backend default.
	Limit int `json:"limit,omitempty"`

	// Offset skips N records.
	Offset int `json:"offset,omitempty"`
}

// Storage defines the interface for audit storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists an audit record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves audit records matching the query filters, newest
	// first. Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of audit records matching the query
	// filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records older than the cutoff time. Returns
	// the number of records deleted. Used for retention enforcement.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
