// Package gateway provides the HTTP surface of the nutrition proxy: JSON
// response helpers and the mapping from upstream client errors to the
// error envelopes callers see.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"macrolog-hq/ceres/pkg/fatsecret"
)

// ErrorBody is the JSON error envelope returned on every failure.
type ErrorBody struct {
	// Error is the short error name shown to callers.
	Error string `json:"error"`

	// Message carries optional detail. Never upstream status codes and
	// never credential material.
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteRawJSON writes a pre-encoded JSON payload verbatim. Used for
// upstream search results, which pass through untouched.
func WriteRawJSON(w http.ResponseWriter, statusCode int, data []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// WriteError maps an upstream client error to the caller-facing envelope
// and writes it. Upstream status codes and operation detail go to the log
// only; the body stays generic.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classifyError(err)

	logLevel := slog.LevelError
	if status < 500 {
		logLevel = slog.LevelWarn
	}
	slog.Log(r.Context(), logLevel, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
	)

	_ = WriteJSON(w, status, body)
}

// classifyError maps the fatsecret error taxonomy to a response status
// and envelope.
func classifyError(err error) (int, ErrorBody) {
	var validationErr *fatsecret.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, ErrorBody{Error: validationErr.Message}
	}

	var notFoundErr *fatsecret.NotFoundError
	if errors.As(err, &notFoundErr) {
		return http.StatusNotFound, ErrorBody{
			Error:   "Barcode not found",
			Message: "This barcode is not in our database",
		}
	}

	var configErr *fatsecret.ConfigError
	if errors.As(err, &configErr) {
		return http.StatusInternalServerError, ErrorBody{
			Error:   "Internal server error",
			Message: "FatSecret API credentials not configured",
		}
	}

	var authErr *fatsecret.AuthError
	if errors.As(err, &authErr) {
		return http.StatusInternalServerError, ErrorBody{
			Error:   "Internal server error",
			Message: "Failed to authenticate with the nutrition provider",
		}
	}

	var apiErr *fatsecret.APIError
	if errors.As(err, &apiErr) {
		return http.StatusInternalServerError, ErrorBody{
			Error:   "Internal server error",
			Message: "The nutrition provider request failed",
		}
	}

	var parseErr *fatsecret.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusInternalServerError, ErrorBody{
			Error:   "Internal server error",
			Message: "The nutrition provider returned an unexpected response",
		}
	}

	return http.StatusInternalServerError, ErrorBody{
		Error:   "Internal server error",
		Message: err.Error(),
	}
}
