// Package config loads feet's settings from a JSON file and lets FEET_*
// environment variables override individual fields.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

var ErrUnknownLogLevel = errors.New("unknown log level")

type Config struct {
	DataDir      string        `json:"data_dir" env:"FEET_DATA_DIR"`
	DBPath       string        `json:"db_path,omitempty" env:"FEET_DB_PATH"`
	LogLevel     string        `json:"log_level" env:"FEET_LOG_LEVEL"`
	LogFile      string        `json:"log_file,omitempty" env:"FEET_LOG_FILE"`
	SensorPath   string        `json:"sensor_path,omitempty" env:"FEET_SENSOR_PATH"`
	Media        bool          `json:"media" env:"FEET_MEDIA"`
	MusicApps    []string      `json:"music_apps,omitempty" env:"FEET_MUSIC_APPS" envSeparator:","`
	PollInterval time.Duration `json:"poll_interval" env:"FEET_POLL_INTERVAL"`

	path string
}

// Dir returns $XDG_CONFIG_HOME/feet, falling back to ~/.config/feet.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "feet"), nil
}

func Default() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataDir:      dir,
		LogLevel:     "info",
		Media:        true,
		PollInterval: 2 * time.Second,
		path:         filepath.Join(dir, "config.json"),
	}, nil
}

// Load reads the config file in the default location.
func Load() (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	return LoadFile(cfg.path)
}

// LoadFile reads path (a missing file means defaults) and then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q: %w", c.LogLevel, ErrUnknownLogLevel)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval %s must not be negative", c.PollInterval)
	}
	return nil
}

// Path is the file this config was loaded from and is saved to.
func (c *Config) Path() string { return c.path }

// Database returns the SQLite path, defaulting to <data dir>/feet.db.
func (c *Config) Database() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "feet.db")
}

// Log returns the log destination: a file path, or "-" for stderr.
func (c *Config) Log() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "feet.log")
}

// Save writes the config back to its file with owner-only permissions.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(c.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
