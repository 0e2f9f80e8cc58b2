package logging

import (
	"context"
	"log/slog"
)

// redactingHandler wraps a slog.Handler and scrubs credential material
// from every record before it reaches the sink. It sits under the logger
// returned by New, so redaction also covers packages that log through
// slog.Default() once that logger is installed as the default.
type redactingHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

func newRedactingHandler(inner slog.Handler, redactor *Redactor) *redactingHandler {
	return &redactingHandler{inner: inner, redactor: redactor}
}

// Enabled implements slog.Handler.
func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler. The message and every attribute are
// redacted before the record is passed on.
func (h *redactingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, h.redactor.RedactString(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(h.redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs implements slog.Handler. Pre-bound attributes are redacted at
// bind time.
func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = h.redactAttr(attr)
	}
	return &redactingHandler{inner: h.inner.WithAttrs(redacted), redactor: h.redactor}
}

// WithGroup implements slog.Handler.
func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

// redactAttr applies key-sensitive masking and string scrubbing to one
// attribute, recursing into groups. Error values are flattened to their
// redacted message so an upstream response echoed into an error cannot
// carry a token through.
func (h *redactingHandler) redactAttr(attr slog.Attr) slog.Attr {
	if isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, "***")
	}

	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, h.redactor.RedactString(value.String()))
	case slog.KindGroup:
		members := value.Group()
		redacted := make([]any, 0, len(members))
		for _, member := range members {
			redacted = append(redacted, h.redactAttr(member))
		}
		return slog.Group(attr.Key, redacted...)
	default:
		if err, ok := value.Any().(error); ok {
			return slog.String(attr.Key, h.redactor.RedactString(err.Error()))
		}
		return attr
	}
}
