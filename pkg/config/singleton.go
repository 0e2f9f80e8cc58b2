package config

import (
	"fmt"
	"sync"
)

var (
	instance *Config
	mu       sync.RWMutex
	once     sync.Once
)

// Initialize loads the configuration from the given path and stores it as
// the process-wide instance. It is safe to call multiple times; only the
// first call loads the file.
func Initialize(path string) error {
	var initErr error
	once.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize config: %w", err)
			return
		}
		mu.Lock()
		instance = cfg
		mu.Unlock()
	})
	return initErr
}

// GetConfig returns the process-wide configuration instance. It returns an
// error if Initialize has not been called.
func GetConfig() (*Config, error) {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nil, fmt.Errorf("config not initialized: call Initialize first")
	}
	return instance, nil
}

// MustGetConfig returns the process-wide configuration instance, panicking
// if Initialize has not been called. Intended for use in main after
// initialization has already succeeded.
func MustGetConfig() *Config {
	cfg, err := GetConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}

// SetConfig replaces the process-wide configuration instance. Used by the
// file watcher after a successful reload and by tests.
func SetConfig(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}

// ReloadConfig re-reads the configuration from the given path, validates
// it, and replaces the process-wide instance. The previous instance is
// kept if the reload fails.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}
	SetConfig(cfg)
	return cfg, nil
}
