// Package config provides configuration management for the catalog server.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultDataDir         = "./data"
	DefaultStore           = StoreFile
	DefaultAllowedOrigin   = "http://localhost:4321"
	DefaultCollateLocale   = "und"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvDataDir         = "APP_DATA_DIR"
	EnvStore           = "APP_STORE"
	EnvAdminKey        = "APP_ADMIN_KEY"      //nolint:gosec // env var name, not a credential
	EnvAdminKeyHash    = "APP_ADMIN_KEY_HASH" //nolint:gosec // env var name, not a credential
	EnvAllowedOrigin   = "APP_ALLOWED_ORIGIN"
	EnvCollateLocale   = "APP_COLLATE_LOCALE"
	EnvConfigFile      = "APP_CONFIG_FILE"
)

// Config holds the application configuration. Values come from defaults,
// then an optional YAML file, then environment variables.
type Config struct {
	// Server settings.
	ServerPort      int           `env:"APP_SERVER_PORT"      yaml:"server_port"`
	LogLevel        string        `env:"APP_LOG_LEVEL"        yaml:"log_level"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	MetricsEnabled  bool          `env:"APP_METRICS_ENABLED"  yaml:"metrics_enabled"`

	// Storage: one JSON file per category under DataDir, or in memory.
	DataDir string `env:"APP_DATA_DIR" yaml:"data_dir"`
	Store   string `env:"APP_STORE"    yaml:"store"`

	// Admin credential; either or both may be set.
	AdminKey     string `env:"APP_ADMIN_KEY"      yaml:"admin_key"`
	AdminKeyHash string `env:"APP_ADMIN_KEY_HASH" yaml:"admin_key_hash"`

	// Single origin allowed by CORS and the browse WebSocket.
	AllowedOrigin string `env:"APP_ALLOWED_ORIGIN" yaml:"allowed_origin"`

	// BCP 47 tag used to collate titles.
	CollateLocale string `env:"APP_COLLATE_LOCALE" yaml:"collate_locale"`

	ConfigFile string `env:"APP_CONFIG_FILE" yaml:"-"`
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidStore           = errors.New("store must be one of: file, memory")
	ErrMissingDataDir         = errors.New("data dir must be set when store is file")
	ErrMissingAdminKey        = errors.New("admin key or admin key hash must be set")
	ErrInvalidAllowedOrigin   = errors.New("allowed origin must not be empty")
	ErrInvalidCollateLocale   = errors.New("collate locale must be a valid BCP 47 tag")
)

// Default returns a Config holding the default values.
func Default() *Config {
	return &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		DataDir:         DefaultDataDir,
		Store:           DefaultStore,
		AllowedOrigin:   DefaultAllowedOrigin,
		CollateLocale:   DefaultCollateLocale,
	}
}

// Load reads configuration from defaults, the file named by APP_CONFIG_FILE
// if any, and environment variables, in increasing priority.
func Load() (*Config, error) {
	cfg := Default()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if cfg.ConfigFile != "" {
		if err := cfg.loadFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
		// Environment wins over the file.
		if err := env.Parse(cfg); err != nil {
			return nil, fmt.Errorf("loading config from environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if c.AdminKey == "" && c.AdminKeyHash == "" {
		return ErrMissingAdminKey
	}

	if c.AllowedOrigin == "" {
		return ErrInvalidAllowedOrigin
	}

	if _, err := language.Parse(c.CollateLocale); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCollateLocale, c.CollateLocale)
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateStore validates the storage backend selection.
func (c *Config) validateStore() error {
	switch c.Store {
	case StoreFile:
		if c.DataDir == "" {
			return ErrMissingDataDir
		}
	case StoreMemory:
	default:
		return ErrInvalidStore
	}
	return nil
}

// Locale returns the collation locale. Invalid tags fall back to language.Und.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.CollateLocale)
	if err != nil {
		return language.Und
	}
	return tag
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
