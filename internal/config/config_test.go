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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 10.0, cfg.API.RateLimit)
	assert.Equal(t, 20, cfg.API.RateBurst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "adaptlearn", cfg.Tracing.ServiceName)
}

func TestLoad_FileTrimsTrailingSlash(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://learn.example.com/api/
  timeout: 3s
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://learn.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api:\n  base_url: http://from-file:1/api\n")
	t.Setenv("ADAPTLEARN_API_BASE_URL", "http://from-env:2/api")
	t.Setenv("ADAPTLEARN_DB_PATH", "/tmp/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:2/api", cfg.API.BaseURL)
	assert.Equal(t, "/tmp/x.db", cfg.DB.Path)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			API: APIConfig{BaseURL: "http://localhost/api", Timeout: time.Second, RateLimit: 1, RateBurst: 1},
			Log: LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }, false},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://host/api" }, false},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, false},
		{"zero rate", func(c *Config) { c.API.RateLimit = 0 }, false},
		{"zero burst", func(c *Config) { c.API.RateBurst = 0 }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"tracing without endpoint", func(c *Config) { c.Tracing.Enabled = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
