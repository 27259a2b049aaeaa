package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Provider.Kind)
	assert.Equal(t, "log", cfg.Notifier.Kind)
	assert.Equal(t, 500*time.Millisecond, cfg.Cache.Debounce)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
provider:
  kind: mongo
  mongo:
    uri: mongodb://db:27017
    database: records
cache:
  staleTime: 30s
  debounce: 250ms
  retryCount: 2
notifier:
  kind: nats
  nats:
    subject: errors.list
server:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Provider.Kind)
	assert.Equal(t, "mongodb://db:27017", cfg.Provider.Mongo.URI)
	assert.Equal(t, "records", cfg.Provider.Mongo.Database)
	assert.Equal(t, 30*time.Second, cfg.Cache.StaleTime)
	assert.Equal(t, 250*time.Millisecond, cfg.Cache.Debounce)
	assert.Equal(t, 2, cfg.Cache.RetryCount)
	assert.Equal(t, "nats", cfg.Notifier.Kind)
	assert.Equal(t, "errors.list", cfg.Notifier.Nats.Subject)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	// Untouched sections keep their defaults.
	assert.Equal(t, 100, cfg.Cache.PromotionCeiling)
	assert.True(t, cfg.Logging.Console.Enabled)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [oops"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown provider kind",
			mutate:  func(c *Config) { c.Provider.Kind = "redis" },
			wantErr: "invalid provider kind",
		},
		{
			name:    "unknown notifier kind",
			mutate:  func(c *Config) { c.Notifier.Kind = "smtp" },
			wantErr: "invalid notifier kind",
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Cache.Debounce = -time.Second },
			wantErr: "debounce",
		},
		{
			name:    "empty server addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: "addr",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
