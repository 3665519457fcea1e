// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultFormat        = "plain"
	DefaultReportMaxAge  = "720h"
	DefaultReportsKept   = 200
	DefaultWatchDebounce = "250ms"
)

// Config represents the qtcompat tool configuration.
type Config struct {
	Backend   string          `toml:"backend"` // Configured rendering backend name ("" = none)
	Log       LogConfig       `toml:"log"`
	Output    OutputConfig    `toml:"output"`
	History   HistoryConfig   `toml:"history"`
	Watch     WatchConfig     `toml:"watch"`
	Simulate  SimulateConfig  `toml:"simulate"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// OutputConfig holds default output settings.
type OutputConfig struct {
	Format string `toml:"format"` // plain, json, yaml
}

// HistoryConfig holds report history retention settings.
type HistoryConfig struct {
	MaxAge     Duration `toml:"max_age"`     // Prune reports older than this (0 = keep forever)
	MaxReports int      `toml:"max_reports"` // Max reports kept (0 = unlimited)
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"` // Re-resolve debounce after a config change
}

// SimulateConfig holds default simulated candidate sets for runs without a
// real binding installed.
type SimulateConfig struct {
	With      []string `toml:"with"`      // Candidates registered as installed
	Preloaded []string `toml:"preloaded"` // Candidates reported as already loaded
}

// ClipboardConfig holds clipboard settings (TUI only).
type ClipboardConfig struct {
	Command string `toml:"command"` // Auto-detected if empty
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Backend: "",
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		History: HistoryConfig{
			MaxAge:     mustDuration(DefaultReportMaxAge),
			MaxReports: DefaultReportsKept,
		},
		Watch: WatchConfig{
			Debounce: mustDuration(DefaultWatchDebounce),
		},
		Simulate: SimulateConfig{
			With:      nil,
			Preloaded: nil,
		},
		Clipboard: ClipboardConfig{
			Command: "", // Auto-detect
		},
	}
}

func mustDuration(s string) Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return Duration(d)
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "qtcompat", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "qtcompat")
}

// HistoryPath returns the path to the report history JSONL file.
func HistoryPath() string {
	return filepath.Join(DataPath(), "reports.jsonl")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Log.Level)
	}

	switch c.Output.Format {
	case "plain", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q, must be one of: plain, json, yaml", c.Output.Format)
	}

	if c.History.MaxReports < 0 {
		return fmt.Errorf("max_reports must not be negative, got %d", c.History.MaxReports)
	}
	if c.History.MaxAge < 0 {
		return fmt.Errorf("max_age must not be negative, got %s", c.History.MaxAge)
	}

	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}
