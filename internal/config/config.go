// Package config loads and validates tasksched's configuration: the sqlite
// store path and its busy-retry policy, logging level/format, whether
// Prometheus metrics are enabled, and the optional NATS fan-out URL.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// StoreConfig configures the sqlite-backed TaskStore.
type StoreConfig struct {
	Path      string          `yaml:"path"`
	BusyRetry BusyRetryConfig `yaml:"busy_retry"`
}

// BusyRetryConfig tunes the backoff policy used for SQLITE_BUSY contention.
type BusyRetryConfig struct {
	Mode       string        `yaml:"mode"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxRetries int           `yaml:"max_retries"`
}

// LoggingConfig configures the slog-based Logger collaborator.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig toggles the Prometheus recorder and its scrape listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// NotifyConfig configures optional fan-out of scheduler lifecycle events.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
}

// Load reads and parses the YAML configuration file at path, overlaying any
// values found in .env/.env.local (existing process environment variables
// win), applying defaults, and validating the result.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied, including
// the store path "./tasksched.db".
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./tasksched.db"
	}
	if cfg.Store.BusyRetry.Mode == "" {
		cfg.Store.BusyRetry.Mode = string(RetryBackoffLinear)
	}
	if cfg.Store.BusyRetry.Initial <= 0 {
		cfg.Store.BusyRetry.Initial = 50 * time.Millisecond
	}
	if cfg.Store.BusyRetry.Max <= 0 {
		cfg.Store.BusyRetry.Max = 2 * time.Second
	}
	if cfg.Store.BusyRetry.MaxRetries <= 0 {
		cfg.Store.BusyRetry.MaxRetries = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = string(LogLevelInfo)
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = string(LogFormatText)
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9090"
	}
}

func validate(cfg *Config) error {
	if NormalizeLogLevel(cfg.Logging.Level) == "" {
		return fmt.Errorf("logging.level: unknown value %q", cfg.Logging.Level)
	}
	if NormalizeLogFormat(cfg.Logging.Format) == "" {
		return fmt.Errorf("logging.format: unknown value %q", cfg.Logging.Format)
	}
	if NormalizeRetryBackoff(cfg.Store.BusyRetry.Mode) == "" {
		return fmt.Errorf("store.busy_retry.mode: unknown value %q", cfg.Store.BusyRetry.Mode)
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	return nil
}

// loadEnvFiles loads .env/.env.local via godotenv, stopping at the first
// file found. Missing files are not an error — most deployments configure
// purely through the YAML file or real environment variables.
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
		return
	}
}
