package middleware

import (
	"net/http"
	"strings"
)

// CORSConfig contains configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigin is the value for Access-Control-Allow-Origin.
	// Use "*" to allow all origins.
	AllowedOrigin string

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string

	// AllowedHeaders is the list of allowed HTTP headers.
	AllowedHeaders []string
}

// DefaultCORSConfig returns a default CORS configuration.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigin:  "*",
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}
}

// CORSMiddleware adds Cross-Origin Resource Sharing headers to every
// response, success and failure alike, and answers preflight OPTIONS
// requests with an empty 200 before routing.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig()
	}

	allowMethods := strings.Join(config.AllowedMethods, ", ")
	allowHeaders := strings.Join(config.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", config.AllowedOrigin)
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)

			// Preflight requests short-circuit with an empty 200.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
