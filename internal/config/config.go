// Package config handles configuration for the server, including defaults,
// a YAML file overlay and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// EnvConfigPath names the environment variable that may point at a YAML
// config file when --config is not given.
const EnvConfigPath = "NEVROTH_CONFIG"

// Config holds runtime settings for the nevroth server.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// DatabaseDriver is either "sqlite3" or "postgres".
	DatabaseDriver string `yaml:"database_driver"`
	DatabaseDSN    string `yaml:"database_dsn"`

	// SecretKey signs access tokens (HS256). Do not use the default in prod.
	SecretKey      string        `yaml:"secret_key"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`

	// HabitEditWindow bounds how long after its last change a day's
	// progress status may still be flipped.
	HabitEditWindow time.Duration `yaml:"habit_edit_window"`
	// RequiredHabits is how many habits a user selects at once.
	RequiredHabits int `yaml:"required_habits"`
	// Timezone decides which calendar day "today" is (IANA name or "Local").
	Timezone string `yaml:"timezone"`

	MessageRetention time.Duration `yaml:"message_retention"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval"`

	// SendBuffer is the outbound frame queue length per websocket.
	SendBuffer int `yaml:"send_buffer"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDriver = "sqlite3"
	c.DatabaseDSN = "nevroth.db"
	c.SecretKey = "secretKey"
	c.AccessTokenTTL = 24 * time.Hour
	c.HabitEditWindow = 5 * time.Minute
	c.RequiredHabits = 3
	c.Timezone = "UTC"
	c.MessageRetention = 30 * 24 * time.Hour
	c.CleanupInterval = time.Hour
	c.SendBuffer = 256
	c.Log = LogConfig{Level: "info", Format: "text"}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional YAML file and finally from command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs, flagged, configPath := newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		if err := parseYAML(cfg, *configPath); err != nil {
			return nil, err
		}
	}

	applyFlags(fs, flagged, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	switch c.DatabaseDriver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("access token ttl must be positive"))
	}
	if c.HabitEditWindow <= 0 {
		errs = append(errs, errors.New("habit edit window must be positive"))
	}
	if c.RequiredHabits <= 0 {
		errs = append(errs, errors.New("required habits must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.MessageRetention <= 0 || c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("message retention and cleanup interval must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send buffer must be positive"))
	}

	return errors.Join(errs...)
}

// Location resolves Timezone. "Local" and "" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
