// Package config loads the application configuration from YAML files,
// merging file values over component defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"refetch/internal/notify"
	mongoprov "refetch/internal/provider/mongo"
	"refetch/internal/querycache"
)

// Config holds the application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Cache    CacheConfig    `yaml:"cache"`
	Provider ProviderConfig `yaml:"provider"`
	Notifier NotifierConfig `yaml:"notifier"`
	Server   ServerConfig   `yaml:"server"`
}

// CacheConfig holds the query cache and controller defaults.
type CacheConfig struct {
	querycache.Config `yaml:",inline"`

	// Debounce is the trailing-edge window applied to debounced filter
	// updates.
	Debounce time.Duration `yaml:"debounce"`

	// RetryCount is the number of times a failed page fetch is retried
	// before the error is surfaced.
	RetryCount int `yaml:"retryCount"`
}

// ProviderConfig selects and configures the page fetch backend.
type ProviderConfig struct {
	// Kind selects the backend: "memory" or "mongo".
	Kind string `yaml:"kind"`

	Mongo mongoprov.Config `yaml:"mongo"`
}

// NotifierConfig selects and configures the notification sink.
type NotifierConfig struct {
	// Kind selects the sink: "log" or "nats".
	Kind string `yaml:"kind"`

	Nats notify.NatsConfig `yaml:"nats"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DefaultConfig returns the configuration with every component at its
// default values.
func DefaultConfig() *Config {
	return &Config{
		Logging: DefaultLoggingConfig(),
		Cache: CacheConfig{
			Config:     querycache.DefaultConfig(),
			Debounce:   500 * time.Millisecond,
			RetryCount: 0,
		},
		Provider: ProviderConfig{
			Kind:  "memory",
			Mongo: mongoprov.DefaultConfig(),
		},
		Notifier: NotifierConfig{
			Kind: "log",
			Nats: notify.DefaultNatsConfig(),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load reads the configuration file at path over the defaults. A missing
// file is not an error: the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for values that cannot be served.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	switch c.Provider.Kind {
	case "memory", "mongo":
	default:
		return fmt.Errorf("invalid provider kind: %s", c.Provider.Kind)
	}

	switch c.Notifier.Kind {
	case "log", "nats":
	default:
		return fmt.Errorf("invalid notifier kind: %s", c.Notifier.Kind)
	}

	if c.Cache.Debounce < 0 {
		return fmt.Errorf("cache debounce must not be negative")
	}
	if c.Cache.RetryCount < 0 {
		return fmt.Errorf("cache retryCount must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	return nil
}
