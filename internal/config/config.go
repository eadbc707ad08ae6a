// Package config loads the feed-proxy configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/client"
	"github.com/Sternrassler/essential-feed/pkg/logging"
	"github.com/caarlos0/env/v11"
)

// Store backends selectable through STORE.
const (
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// DefaultFeedURL is the public feed endpoint used when FEED_URL is unset.
const DefaultFeedURL = "https://essentialdeveloper.com/feed-case-study/test-api/feed"

// Config holds the feed-proxy settings.
type Config struct {
	FeedURL string `env:"FEED_URL" envDefault:"https://essentialdeveloper.com/feed-case-study/test-api/feed"`
	Port    int    `env:"PORT" envDefault:"8080"`

	Store       string `env:"STORE" envDefault:"sqlite"`
	RedisURL    string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"feed.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	UserAgent       string        `env:"USER_AGENT" envDefault:"essential-feed/0.1.0"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	MaxAttempts     int           `env:"MAX_ATTEMPTS" envDefault:"0"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"5m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads the process environment and validates the result.
func Load() (Config, error) {
	return LoadFrom(environ())
}

// LoadFrom parses the given environment instead of the process one.
func LoadFrom(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and backend-specific requirements.
func (c Config) Validate() error {
	u, err := url.Parse(c.FeedURL)
	if err != nil {
		return fmt.Errorf("FEED_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("FEED_URL must be an absolute http(s) URL (got %q)", c.FeedURL)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535 (got %d)", c.Port)
	}

	switch c.Store {
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for store %q", c.Store)
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for store %q", c.Store)
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for store %q", c.Store)
		}
	default:
		return fmt.Errorf("STORE must be one of redis, sqlite, postgres (got %q)", c.Store)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("USER_AGENT is required")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be >= 0 (got %s)", c.HTTPTimeout)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("MAX_ATTEMPTS must be >= 0 (got %d)", c.MaxAttempts)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be >= 0 (got %s)", c.RefreshInterval)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// ParsedFeedURL returns FeedURL as a URL. Call only on a validated Config.
func (c Config) ParsedFeedURL() *url.URL {
	u, _ := url.Parse(c.FeedURL)
	return u
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ClientConfig derives the HTTP client configuration. MaxAttempts = 0 keeps
// the per-class retry schedule.
func (c Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.UserAgent)
	cfg.Timeout = c.HTTPTimeout
	if c.MaxAttempts > 0 {
		cfg.Retry = client.DefaultRetryConfig()
		cfg.Retry.MaxAttempts = c.MaxAttempts
	}
	return cfg
}

// LoggingConfig derives the logger configuration.
func (c Config) LoggingConfig() logging.Config {
	level, _ := logging.ParseLevel(c.LogLevel)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Pretty = c.LogPretty
	return cfg
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
