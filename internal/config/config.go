package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the storecore configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Indexes  IndexesConfig  `yaml:"indexes"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds database-file and retention settings.
type DatabaseConfig struct {
	Path            string `yaml:"path"`             // on-disk database file; empty = none configured (CLI requires --db)
	LongestRollback uint64 `yaml:"longest_rollback"` // k: retention window in slots, must be >= 1
}

// IndexesConfig controls whether permanent indexes are installed at
// long-lived startup.
type IndexesConfig struct {
	DeferNonEssential bool `yaml:"defer_non_essential"` // skip non-essential indexes (spec.md §4.E)
}

// LoggingConfig holds structured-logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // log file path, empty = stderr
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "",
			LongestRollback: 2160,
		},
		Indexes: IndexesConfig{
			DeferNonEssential: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Env vars take precedence over file values but not over explicit flags.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("STORECORE_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("STORECORE_LONGEST_ROLLBACK"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Database.LongestRollback = n
		}
	}
	if v := os.Getenv("STORECORE_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Logging.Level = v
		}
	}
	if v := os.Getenv("STORECORE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Logging.Level = "debug"
		}
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Database.LongestRollback < 1 {
		return errors.New("database.longest_rollback must be >= 1")
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got: %s)", c.Logging.Level)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
