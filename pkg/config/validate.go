package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "gateway.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. All field errors are collected and returned together.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any rules fail. Missing upstream credentials are not
// a validation error: the gateway starts and reports them via /health.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateGateway(&cfg.Gateway)...)
	errs = append(errs, validateFatSecret(&cfg.FatSecret)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateGateway(cfg *GatewayConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "gateway.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "gateway.listen_address",
			Message: fmt.Sprintf("invalid host:port address: %v", err),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "gateway.read_timeout",
			Message: "must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "gateway.write_timeout",
			Message: "must not be negative",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "gateway.max_header_bytes",
			Message: "must not be negative",
		})
	}

	if cfg.CORS.AllowedOrigin == "" {
		errs = append(errs, FieldError{
			Field:   "gateway.cors.allowed_origin",
			Message: "allowed origin is required",
		})
	}

	return errs
}

func validateFatSecret(cfg *FatSecretConfig) []FieldError {
	var errs []FieldError

	for field, value := range map[string]string{
		"fatsecret.oauth_url": cfg.OAuthURL,
		"fatsecret.api_url":   cfg.APIURL,
	} {
		if value == "" {
			errs = append(errs, FieldError{Field: field, Message: "URL is required"})
			continue
		}
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("invalid URL %q", value),
			})
		}
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "fatsecret.timeout",
			Message: "must not be negative",
		})
	}
	if cfg.TokenCache.ExpiryMargin < 0 {
		errs = append(errs, FieldError{
			Field:   "fatsecret.token_cache.expiry_margin",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q (debug, info, warn, error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q (json, text)", cfg.Logging.Format),
		})
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "path must start with /",
		})
	}

	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	if cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite_path",
			Message: "database path is required when audit is enabled",
		})
	}
	if cfg.Buffer <= 0 {
		errs = append(errs, FieldError{
			Field:   "audit.buffer",
			Message: "buffer size must be positive",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "must not be negative",
		})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
			})
		}
	}

	return errs
}
