package audit

import "fmt"

// StorageError represents an error from the storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite")
	Operation string // Operation that failed ("store", "query", "delete", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// RecorderError represents an error during audit recording.
type RecorderError struct {
	RecordID string // Audit record ID
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *RecorderError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("recorder error [record_id=%s]: %v", e.RecordID, e.Cause)
	}
	return fmt.Sprintf("recorder error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RecorderError) Unwrap() error {
	return e.Cause
}

// RetentionError represents an error during retention enforcement.
type RetentionError struct {
	RetentionDays int   // Configured retention period
	Cause         error // Underlying error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [retention_days=%d]: %v", e.RetentionDays, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}
