package config

import "time"

// Config is the root configuration structure for Ceres.
// It contains all configuration sections for the gateway server, the
// upstream FatSecret client, telemetry, and the audit trail.
type Config struct {
	// Gateway contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Gateway GatewayConfig `yaml:"gateway"`

	// FatSecret contains upstream API credentials and endpoints.
	FatSecret FatSecretConfig `yaml:"fatsecret"`

	// Telemetry contains observability configuration for logging and
	// metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit contains configuration for the optional request audit trail.
	Audit AuditConfig `yaml:"audit"`
}

// GatewayConfig contains configuration for the HTTP gateway server.
type GatewayConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration. The gateway serves browser-based
// callers, so every response (success or failure) carries CORS headers.
type CORSConfig struct {
	// AllowedOrigin is the Access-Control-Allow-Origin value.
	// Default: "*"
	AllowedOrigin string `yaml:"allowed_origin"`

	// AllowedMethods is the Access-Control-Allow-Methods value.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is the Access-Control-Allow-Headers value.
	// Default: ["Content-Type"]
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// FatSecretConfig contains upstream API configuration.
type FatSecretConfig struct {
	// ClientID is the OAuth2 client ID. Required for upstream calls;
	// when absent the gateway still serves /health with
	// fatSecretConfigured=false.
	ClientID string `yaml:"client_id"`

	// ClientSecret is the OAuth2 client secret. Never logged.
	ClientSecret string `yaml:"client_secret"`

	// OAuthURL is the token endpoint.
	// Default: "https://oauth.fatsecret.com/connect/token"
	OAuthURL string `yaml:"oauth_url"`

	// APIURL is the REST endpoint.
	// Default: "https://platform.fatsecret.com/rest/server.api"
	APIURL string `yaml:"api_url"`

	// Timeout is the per-request timeout for upstream calls.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// TokenCache controls bearer token reuse between requests.
	TokenCache TokenCacheConfig `yaml:"token_cache"`
}

// TokenCacheConfig controls the expiry-aware token cache.
type TokenCacheConfig struct {
	// Enabled turns token reuse on. When false every request performs a
	// fresh client-credentials exchange.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// ExpiryMargin is subtracted from a token's lifetime so a token close
	// to expiry is never served.
	// Default: 60s
	ExpiryMargin time.Duration `yaml:"expiry_margin"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "ceres"
	Namespace string `yaml:"namespace"`
}

// AuditConfig contains configuration for the request audit trail.
type AuditConfig struct {
	// Enabled turns audit recording on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SQLitePath is the audit database file path.
	// Default: "data/audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// Buffer is the async recorder channel size. A full buffer drops
	// records rather than blocking requests.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// RetentionDays is how long audit records are kept.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for retention pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}
