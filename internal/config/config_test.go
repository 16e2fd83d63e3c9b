package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
tracker:
  cache_path: `+filepath.Join(t.TempDir(), "cache", "tracker.db")+`
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "sqlite", cfg.Tracker.CacheDriver)
	assert.Equal(t, 4*time.Second, cfg.Tracker.DismissAfter)
	assert.Equal(t, 10*time.Second, cfg.Tracker.RequestTimeout)
	assert.Equal(t, 72*time.Hour, cfg.JWT.ExpireTime)
	assert.DirExists(t, filepath.Dir(cfg.Tracker.CachePath))
}

func TestLoadConfig_TrackerSection(t *testing.T) {
	dir := writeConfig(t, `
tracker:
  remote_url: https://api.example.test
  token: abc
  cache_driver: redis
  dismiss_after: 3s
  timezone: Europe/Berlin
  metrics_addr: 127.0.0.1:9464
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.Tracker.RemoteURL)
	assert.Equal(t, "abc", cfg.Tracker.Token)
	assert.Equal(t, "redis", cfg.Tracker.CacheDriver)
	assert.Equal(t, 3*time.Second, cfg.Tracker.DismissAfter)

	loc, err := cfg.Tracker.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
	assert.Equal(t, "127.0.0.1:9464", cfg.Tracker.MetricsAddr)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Mode: "debug"},
			Database:  DatabaseConfig{Driver: "mysql"},
			RateLimit: RateLimitConfig{MaxRequests: 100, WindowMinutes: 1},
			Tracker:   TrackerConfig{CacheDriver: "sqlite", DismissAfter: 4 * time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"postgres driver", func(c *Config) { c.Database.Driver = "postgres" }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"unknown cache", func(c *Config) { c.Tracker.CacheDriver = "memcached" }, true},
		{"dismiss too short", func(c *Config) { c.Tracker.DismissAfter = time.Second }, true},
		{"dismiss too long", func(c *Config) { c.Tracker.DismissAfter = 10 * time.Second }, true},
		{"zero rate limit", func(c *Config) { c.RateLimit.MaxRequests = 0 }, true},
		{"zero rate window", func(c *Config) { c.RateLimit.WindowMinutes = 0 }, true},
		{"weak secret in release", func(c *Config) { c.Server.Mode = "release"; c.JWT.Secret = "short" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
