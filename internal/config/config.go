// Package config loads runtime configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when the config file or a field is absent.
const (
	DefaultListen          = ":8099"
	DefaultDatabasePath    = "data/rental-calendar-hub.db"
	DefaultLogLevel        = "info"
	DefaultSyncIntervalMin = 30
	DefaultInitialDelaySec = 10
	DefaultFetchTimeoutSec = 30
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen"`

	// DatabasePath is the SQLite database file location.
	DatabasePath string `yaml:"database_path"`

	// LogLevel controls logger verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// SyncIntervalMin is the fixed interval between scheduled sync batches.
	SyncIntervalMin int `yaml:"sync_interval_min"`

	// InitialSyncDelaySec delays the first batch after startup so the
	// process is fully up before outbound fetches begin.
	InitialSyncDelaySec int `yaml:"initial_sync_delay_sec"`

	// FetchTimeoutSec bounds each outbound feed fetch so one unreachable
	// feed cannot stall a batch indefinitely.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"`
}

// Default returns an in-memory default configuration.
func Default() *Config {
	return &Config{
		Listen:              DefaultListen,
		DatabasePath:        DefaultDatabasePath,
		LogLevel:            DefaultLogLevel,
		SyncIntervalMin:     DefaultSyncIntervalMin,
		InitialSyncDelaySec: DefaultInitialDelaySec,
		FetchTimeoutSec:     DefaultFetchTimeoutSec,
	}
}

// Load reads configuration from the YAML file at path, then applies
// environment overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides config fields from RCH_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("RCH_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("RCH_DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("RCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RCH_SYNC_INTERVAL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SyncIntervalMin = n
		}
	}
	if v := os.Getenv("RCH_FETCH_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FetchTimeoutSec = n
		}
	}
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.SyncIntervalMin < 1 {
		c.SyncIntervalMin = DefaultSyncIntervalMin
	}
	if c.FetchTimeoutSec < 1 {
		c.FetchTimeoutSec = DefaultFetchTimeoutSec
	}
	if c.InitialSyncDelaySec < 0 {
		c.InitialSyncDelaySec = DefaultInitialDelaySec
	}
	return nil
}

// SyncInterval returns the batch interval as a duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMin) * time.Minute
}

// InitialSyncDelay returns the startup delay before the first batch.
func (c *Config) InitialSyncDelay() time.Duration {
	return time.Duration(c.InitialSyncDelaySec) * time.Second
}

// FetchTimeout returns the per-fetch HTTP timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}
