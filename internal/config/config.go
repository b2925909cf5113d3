// Package config loads client configuration from defaults, an optional YAML
// file, an optional .env file, and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Token store drivers.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the complete client configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Token      TokenConfig      `yaml:"token"`
	Log        LogConfig        `yaml:"log"`
	Pagination PaginationConfig `yaml:"pagination"`
	Session    SessionConfig    `yaml:"session"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// APIConfig configures the remote REST API gateway.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" env:"COURSE_API_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"COURSE_API_TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" env:"COURSE_API_RATE_LIMIT"`
	Burst     int           `yaml:"burst" env:"COURSE_API_BURST"`
	UserAgent string        `yaml:"user_agent" env:"COURSE_API_USER_AGENT"`
}

// TokenConfig selects where the auth token is persisted.
type TokenConfig struct {
	Driver   string `yaml:"driver" env:"COURSE_TOKEN_DRIVER"`
	Path     string `yaml:"path" env:"COURSE_TOKEN_PATH"`
	RedisURL string `yaml:"redis_url" env:"COURSE_TOKEN_REDIS_URL"`
	Key      string `yaml:"key" env:"COURSE_TOKEN_KEY"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"COURSE_LOG_LEVEL"`
	Format string `yaml:"format" env:"COURSE_LOG_FORMAT"`
}

// PaginationConfig configures list fetching.
type PaginationConfig struct {
	PageSize int `yaml:"page_size" env:"COURSE_PAGE_SIZE"`
}

// SessionConfig configures the token verification schedule.
type SessionConfig struct {
	VerifySchedule string `yaml:"verify_schedule" env:"COURSE_SESSION_VERIFY_SCHEDULE"`
}

// MetricsConfig configures the optional metrics listener.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"COURSE_METRICS_ADDR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:5000/api",
			Timeout:   30 * time.Second,
			UserAgent: "courseclient/1.0",
		},
		Token: TokenConfig{
			Driver: DriverFile,
			Path:   defaultTokenPath(),
			Key:    "token",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Pagination: PaginationConfig{
			PageSize: 10,
		},
		Session: SessionConfig{
			VerifySchedule: "@every 15m",
		},
	}
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "courseclient", "storage.json")
}

// Load builds the configuration. path may be empty, in which case no YAML
// file is read. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: api.base_url must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("config: api.base_url scheme must be http or https")
	}
	if parsed.User != nil {
		return fmt.Errorf("config: api.base_url must not include user info")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("config: api.timeout must not be negative")
	}
	if c.API.RateLimit < 0 || c.API.Burst < 0 {
		return fmt.Errorf("config: api.rate_limit and api.burst must not be negative")
	}
	if c.Pagination.PageSize <= 0 {
		return fmt.Errorf("config: pagination.page_size must be positive")
	}

	switch c.Token.Driver {
	case DriverFile:
		if strings.TrimSpace(c.Token.Path) == "" {
			return fmt.Errorf("config: token.path is required for the file driver")
		}
	case DriverRedis:
		if strings.TrimSpace(c.Token.RedisURL) == "" {
			return fmt.Errorf("config: token.redis_url is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown token driver %q", c.Token.Driver)
	}
	return nil
}
