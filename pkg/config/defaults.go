package config

import "time"

// Default values for configuration fields.
const (
	// Gateway defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSAllowedOrigin = "*"

	// FatSecret defaults
	DefaultOAuthURL                = "https://oauth.fatsecret.com/connect/token"
	DefaultAPIURL                  = "https://platform.fatsecret.com/rest/server.api"
	DefaultFatSecretTimeout        = 30 * time.Second
	DefaultTokenCacheEnabled       = true
	DefaultTokenCacheExpiryMargin  = 60 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel    = "info"
	DefaultLoggingFormat   = "json"
	DefaultMetricsEnabled  = true
	DefaultMetricsPath     = "/metrics"
	DefaultMetricsNamespace = "ceres"

	// Audit defaults
	DefaultAuditSQLitePath    = "data/audit.db"
	DefaultAuditBuffer        = 1000
	DefaultAuditRetentionDays = 90
	DefaultAuditPruneSchedule = "0 3 * * *"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Gateway
	if cfg.Gateway.ListenAddress == "" {
		cfg.Gateway.ListenAddress = DefaultListenAddress
	}
	if cfg.Gateway.ReadTimeout == 0 {
		cfg.Gateway.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Gateway.WriteTimeout == 0 {
		cfg.Gateway.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Gateway.IdleTimeout == 0 {
		cfg.Gateway.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Gateway.ShutdownTimeout == 0 {
		cfg.Gateway.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Gateway.MaxHeaderBytes == 0 {
		cfg.Gateway.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS
	if cfg.Gateway.CORS.AllowedOrigin == "" {
		cfg.Gateway.CORS.AllowedOrigin = DefaultCORSAllowedOrigin
	}
	if len(cfg.Gateway.CORS.AllowedMethods) == 0 {
		cfg.Gateway.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Gateway.CORS.AllowedHeaders) == 0 {
		cfg.Gateway.CORS.AllowedHeaders = []string{"Content-Type"}
	}

	// FatSecret
	if cfg.FatSecret.OAuthURL == "" {
		cfg.FatSecret.OAuthURL = DefaultOAuthURL
	}
	if cfg.FatSecret.APIURL == "" {
		cfg.FatSecret.APIURL = DefaultAPIURL
	}
	if cfg.FatSecret.Timeout == 0 {
		cfg.FatSecret.Timeout = DefaultFatSecretTimeout
	}
	if cfg.FatSecret.TokenCache.Enabled == nil {
		enabled := DefaultTokenCacheEnabled
		cfg.FatSecret.TokenCache.Enabled = &enabled
	}
	if cfg.FatSecret.TokenCache.ExpiryMargin == 0 {
		cfg.FatSecret.TokenCache.ExpiryMargin = DefaultTokenCacheExpiryMargin
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		enabled := DefaultMetricsEnabled
		cfg.Telemetry.Metrics.Enabled = &enabled
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Audit
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultAuditSQLitePath
	}
	if cfg.Audit.Buffer == 0 {
		cfg.Audit.Buffer = DefaultAuditBuffer
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultAuditRetentionDays
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = DefaultAuditPruneSchedule
	}
}
