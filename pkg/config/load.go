package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention CERES_SECTION_FIELD (e.g., CERES_GATEWAY_LISTEN_ADDRESS) and
// always take precedence over file-based configuration.
//
// A missing file is not an error when credentials are supplied through the
// environment: the defaults provide a complete configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config

	if _, statErr := os.Stat(path); statErr == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &Config{}
		ApplyDefaults(cfg)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies CERES_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Gateway overrides
	if val := os.Getenv("CERES_GATEWAY_LISTEN_ADDRESS"); val != "" {
		cfg.Gateway.ListenAddress = val
	}
	if val := os.Getenv("CERES_GATEWAY_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Gateway.ReadTimeout = d
		}
	}
	if val := os.Getenv("CERES_GATEWAY_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Gateway.WriteTimeout = d
		}
	}
	if val := os.Getenv("CERES_GATEWAY_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Gateway.IdleTimeout = d
		}
	}
	if val := os.Getenv("CERES_GATEWAY_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Gateway.MaxHeaderBytes = i
		}
	}

	// FatSecret overrides
	if val := os.Getenv("CERES_FATSECRET_CLIENT_ID"); val != "" {
		cfg.FatSecret.ClientID = val
	}
	if val := os.Getenv("CERES_FATSECRET_CLIENT_SECRET"); val != "" {
		cfg.FatSecret.ClientSecret = val
	}
	if val := os.Getenv("CERES_FATSECRET_OAUTH_URL"); val != "" {
		cfg.FatSecret.OAuthURL = val
	}
	if val := os.Getenv("CERES_FATSECRET_API_URL"); val != "" {
		cfg.FatSecret.APIURL = val
	}
	if val := os.Getenv("CERES_FATSECRET_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.FatSecret.Timeout = d
		}
	}
	if val := os.Getenv("CERES_FATSECRET_TOKEN_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.FatSecret.TokenCache.Enabled = &b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("CERES_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CERES_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CERES_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}
	if val := os.Getenv("CERES_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}

	// Audit overrides
	if val := os.Getenv("CERES_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("CERES_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLitePath = val
	}
	if val := os.Getenv("CERES_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}
	if val := os.Getenv("CERES_AUDIT_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.PruneSchedule = val
	}
}
