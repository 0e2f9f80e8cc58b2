package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// Redactor scrubs credentials from log fields. The gateway handles two
// secrets, the upstream OAuth client secret and the bearer tokens minted
// from it, and neither may ever reach a log line.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a Redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*redactPattern{
			{
				name:        "bearer_token",
				regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
				replacement: "Bearer ***",
			},
			{
				name:        "basic_auth",
				regex:       regexp.MustCompile(`Basic\s+[a-zA-Z0-9+/]+=*`),
				replacement: "Basic ***",
			},
			{
				name:        "access_token_field",
				regex:       regexp.MustCompile(`(access_token|client_secret)["':=\s]+[a-zA-Z0-9\-._~+/]+=*`),
				replacement: "$1=***",
			},
		},
	}
}

// RedactString redacts credentials from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// RedactArgs redacts credentials from variadic log arguments.
// Args are in the form: key1, value1, key2, value2, ...
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = redactValue(redacted[i])
			continue
		}

		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

// isSensitiveKey checks if a key name indicates credential material.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"password", "secret", "token",
		"auth", "authorization",
		"api_key", "apikey",
		"client_secret",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}

	return false
}

// redactValue redacts a sensitive value completely.
func redactValue(value any) any {
	switch v := value.(type) {
	case string:
		if v == "" {
			return ""
		}
		return "***"
	case fmt.Stringer:
		return "***"
	default:
		return "***"
	}
}
