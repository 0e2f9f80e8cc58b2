package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"macrolog-hq/ceres/pkg/config"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in plain text format.
	FormatText LogFormat = "text"
)

// Logger provides structured logging with credential redaction.
type Logger struct {
	// slog is the underlying structured logger
	slog *slog.Logger

	// redactor scrubs credentials from log fields
	redactor *Redactor

	// level is the minimum log level
	level slog.Level

	// format is the output format
	format LogFormat
}

// New creates a new Logger from the telemetry logging configuration.
// The writer defaults to os.Stdout when nil.
func New(cfg config.LoggingConfig, writer io.Writer) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	redactor := NewRedactor()

	return &Logger{
		slog:     slog.New(newRedactingHandler(handler, redactor)),
		redactor: redactor,
		level:    level,
		format:   format,
	}, nil
}

// Slog returns the underlying slog.Logger for packages that take one
// directly, including slog.SetDefault. Its handler redacts credentials,
// so records logged through it are scrubbed the same way as records
// logged through this Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext logs a debug message with fields from the context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, append(extractContextFields(ctx), args...)...)
}

// InfoContext logs an info message with fields from the context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, append(extractContextFields(ctx), args...)...)
}

// WarnContext logs a warning message with fields from the context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, append(extractContextFields(ctx), args...)...)
}

// ErrorContext logs an error message with fields from the context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, append(extractContextFields(ctx), args...)...)
}

// log is the internal logging method that handles credential redaction.
func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	// Fast path: if level is disabled, return immediately
	if !l.slog.Enabled(ctx, level) {
		return
	}

	if l.redactor != nil {
		args = l.redactor.RedactArgs(args...)
	}

	l.slog.Log(ctx, level, msg, args...)
}

// With creates a new logger with additional fields.
func (l *Logger) With(args ...any) *Logger {
	if l.redactor != nil {
		args = l.redactor.RedactArgs(args...)
	}

	return &Logger{
		slog:     l.slog.With(args...),
		redactor: l.redactor,
		level:    l.level,
		format:   l.format,
	}
}

// WithContext creates a new logger carrying fields extracted from the
// context (request_id).
func (l *Logger) WithContext(ctx context.Context) *Logger {
	args := extractContextFields(ctx)
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch formatStr {
	case "json", "JSON", "":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}
