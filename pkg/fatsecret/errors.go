package fatsecret

import "fmt"

// ConfigError represents a client configuration error.
// This occurs when the upstream credentials are absent or invalid before
// any request is attempted.
type ConfigError struct {
	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("fatsecret configuration error for field %q: %s", e.Field, e.Message)
}

// AuthError represents a failed token exchange with the upstream OAuth
// endpoint (non-2xx from the token URL).
type AuthError struct {
	// StatusCode is the HTTP status returned by the token endpoint
	StatusCode int

	// Message is the response body from the token endpoint
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("fatsecret token exchange failed (status %d): %s", e.StatusCode, e.Message)
}

// APIError represents a non-2xx response from an upstream API operation.
type APIError struct {
	// Operation is the upstream method that failed (e.g. "foods.search")
	Operation string

	// StatusCode is the HTTP status code returned upstream
	StatusCode int

	// Message is the error response body (if any)
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("fatsecret %s failed (status %d): %s", e.Operation, e.StatusCode, e.Message)
}

// NotFoundError indicates a barcode that the upstream database confirmed
// absent. It is distinct from APIError so callers can map it to a 404
// rather than a generic upstream failure.
type NotFoundError struct {
	// Barcode is the barcode that was not found
	Barcode string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("barcode %q not found in the fatsecret database", e.Barcode)
}

// ValidationError represents invalid caller-supplied input, detected before
// any upstream call is made.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ParseError represents a malformed upstream response.
type ParseError struct {
	// Operation is the upstream method whose response failed to parse
	Operation string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("fatsecret %s response parse error: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
