// Package application holds the process-level configuration and wiring
// shared by the CLI commands.
package application

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/statforge/propgrade/internal/persistence/postgres"
	"github.com/statforge/propgrade/internal/provider"
)

// Config is the single file-based configuration for the service. Durations
// are plain integers in the unit named by the key, so a config file never
// needs Go duration syntax.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Postgres PostgresConfig `yaml:"postgres"`
	Cache    CacheConfig    `yaml:"cache"`
	Grading  GradingConfig  `yaml:"grading"`
	Features FeaturesConfig `yaml:"features"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// ProviderConfig tunes the stats-feed client.
type ProviderConfig struct {
	BaseURL               string  `yaml:"base_url"`
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
	RatePerSecond         float64 `yaml:"rate_per_second"`
	Burst                 int     `yaml:"burst"`
	MaxRetries            int     `yaml:"max_retries"`
	RetryBackoffMS        int     `yaml:"retry_backoff_ms"`
	BreakerWindowSeconds  int     `yaml:"breaker_window_seconds"`
}

// ClientConfig converts to the provider client's typed config.
func (c ProviderConfig) ClientConfig() provider.Config {
	return provider.Config{
		BaseURL:        c.BaseURL,
		RequestTimeout: time.Duration(c.RequestTimeoutSeconds) * time.Second,
		RatePerSecond:  c.RatePerSecond,
		Burst:          c.Burst,
		MaxRetries:     c.MaxRetries,
		RetryBackoff:   time.Duration(c.RetryBackoffMS) * time.Millisecond,
		BreakerWindow:  time.Duration(c.BreakerWindowSeconds) * time.Second,
	}
}

// PostgresConfig tunes the relational store connection.
type PostgresConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	QueryTimeoutSeconds    int    `yaml:"query_timeout_seconds"`
}

// StoreConfig converts to the storage layer's typed config.
func (c PostgresConfig) StoreConfig() postgres.Config {
	return postgres.Config{
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute,
		QueryTimeout:    time.Duration(c.QueryTimeoutSeconds) * time.Second,
	}
}

// CacheConfig tunes the Redis game-data cache. Disabled means the batch
// runs with per-batch memoization only.
type CacheConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Addr              string `yaml:"addr"`
	Password          string `yaml:"password"`
	DB                int    `yaml:"db"`
	DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
}

// DefaultTTL converts the configured seconds to a duration.
func (c CacheConfig) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// GradingConfig tunes the grading batch.
type GradingConfig struct {
	Workers  int `yaml:"workers"`
	MaxProps int `yaml:"max_props"`
}

// FeaturesConfig tunes the feature-building batch.
type FeaturesConfig struct {
	Workers    int   `yaml:"workers"`
	WindowDays []int `yaml:"window_days"`
}

// MonitorConfig tunes the HTTP surface that exposes health and metrics.
type MonitorConfig struct {
	Addr string `yaml:"addr"`
}

// LoadConfig reads and validates the YAML configuration. Missing tunables
// fall back to defaults so a minimal file with just the Postgres DSN runs.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// applyEnv lets deployments override the credentials-bearing settings
// without editing the config file.
func (c *Config) applyEnv() {
	if dsn := os.Getenv("PROPGRADE_POSTGRES_DSN"); dsn != "" {
		c.Postgres.DSN = dsn
	}
	if addr := os.Getenv("PROPGRADE_REDIS_ADDR"); addr != "" {
		c.Cache.Addr = addr
	}
	if password := os.Getenv("PROPGRADE_REDIS_PASSWORD"); password != "" {
		c.Cache.Password = password
	}
}

func (c *Config) applyDefaults() {
	defaults := provider.DefaultConfig()
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = defaults.BaseURL
	}
	if c.Provider.RequestTimeoutSeconds == 0 {
		c.Provider.RequestTimeoutSeconds = int(defaults.RequestTimeout / time.Second)
	}
	if c.Provider.RatePerSecond == 0 {
		c.Provider.RatePerSecond = defaults.RatePerSecond
	}
	if c.Provider.Burst == 0 {
		c.Provider.Burst = defaults.Burst
	}
	if c.Provider.MaxRetries == 0 {
		c.Provider.MaxRetries = defaults.MaxRetries
	}
	if c.Provider.RetryBackoffMS == 0 {
		c.Provider.RetryBackoffMS = int(defaults.RetryBackoff / time.Millisecond)
	}
	if c.Provider.BreakerWindowSeconds == 0 {
		c.Provider.BreakerWindowSeconds = int(defaults.BreakerWindow / time.Second)
	}
	if c.Postgres.MaxOpenConns == 0 {
		c.Postgres.MaxOpenConns = 10
	}
	if c.Postgres.MaxIdleConns == 0 {
		c.Postgres.MaxIdleConns = 5
	}
	if c.Postgres.ConnMaxLifetimeMinutes == 0 {
		c.Postgres.ConnMaxLifetimeMinutes = 30
	}
	if c.Postgres.QueryTimeoutSeconds == 0 {
		c.Postgres.QueryTimeoutSeconds = 10
	}
	if c.Cache.DefaultTTLSeconds == 0 {
		c.Cache.DefaultTTLSeconds = 6 * 60 * 60
	}
	if c.Grading.Workers == 0 {
		c.Grading.Workers = 8
	}
	if c.Grading.MaxProps == 0 {
		c.Grading.MaxProps = 5000
	}
	if c.Features.Workers == 0 {
		c.Features.Workers = 8
	}
	if len(c.Features.WindowDays) == 0 {
		c.Features.WindowDays = []int{7, 15, 30}
	}
	if c.Monitor.Addr == "" {
		c.Monitor.Addr = ":9090"
	}
}

// Validate rejects configurations that would fail at runtime in
// confusing ways.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required when cache is enabled")
	}
	if c.Grading.Workers < 1 {
		return fmt.Errorf("grading.workers must be at least 1")
	}
	if c.Features.Workers < 1 {
		return fmt.Errorf("features.workers must be at least 1")
	}
	for _, days := range c.Features.WindowDays {
		if days < 1 {
			return fmt.Errorf("features.window_days entries must be positive, got %d", days)
		}
	}
	return nil
}
