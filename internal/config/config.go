package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ADAPTLEARN_API_BASE_URL.
const EnvPrefix = "ADAPTLEARN"

// Config holds all client configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// APIConfig configures the backend HTTP client.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second
	RateBurst int           `mapstructure:"rate_burst"`
}

// DBConfig locates the local SQLite file.
type DBConfig struct {
	Path string `mapstructure:"path"` // "" = default data dir
}

// LogConfig configures the file logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // "" = <data dir>/logs/adaptlearn.log
}

// TracingConfig configures the optional OpenTelemetry exporter.
type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
	ServiceName       string `mapstructure:"service_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.rate_burst", 20)
	v.SetDefault("db.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", "adaptlearn")
}

// Load reads configuration from path (or the default config dir when path is
// empty), applies ADAPTLEARN_* environment overrides and validates the result.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case path != "":
			return nil, fmt.Errorf("config file %s: %w", path, err)
		case errors.As(err, &notFound):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.RateLimit <= 0 {
		return fmt.Errorf("api.rate_limit must be positive, got %v", c.API.RateLimit)
	}
	if c.API.RateBurst < 1 {
		return fmt.Errorf("api.rate_burst must be at least 1, got %d", c.API.RateBurst)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	if c.Tracing.Enabled && c.Tracing.CollectorEndpoint == "" {
		return errors.New("tracing.collector_endpoint is required when tracing is enabled")
	}
	return nil
}

// Dir returns $XDG_CONFIG_HOME/adaptlearn, falling back to ~/.config/adaptlearn.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "adaptlearn"), nil
}
