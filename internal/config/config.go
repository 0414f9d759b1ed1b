// Package config handles configuration loading, validation, and management for focusfollow.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the application configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Focus tunes the profile applied while the app runs.
	Focus FocusConfig `toml:"focus" json:"focus" yaml:"focus"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Autostart configuration.
	Autostart AutostartConfig `toml:"autostart" json:"autostart" yaml:"autostart"`
}

// FocusConfig holds the focus-follows-mouse profile.
type FocusConfig struct {
	// TrackingDelayMs is the activation delay applied at startup.
	TrackingDelayMs uint64 `toml:"tracking_delay_ms" json:"tracking_delay_ms" yaml:"tracking_delay_ms"`

	// RaiseOnFocus raises tracked windows where the platform supports it.
	RaiseOnFocus bool `toml:"raise_on_focus" json:"raise_on_focus" yaml:"raise_on_focus"`

	// EnableOnStart leaves tracking on after startup. When false the app
	// starts with the menu item unchecked and tracking off.
	EnableOnStart bool `toml:"enable_on_start" json:"enable_on_start" yaml:"enable_on_start"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is stdout, stderr, file or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path used for file output.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// AutostartConfig holds launch-at-login configuration.
type AutostartConfig struct {
	// Enabled registers the app to start at login.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Focus: FocusConfig{
			TrackingDelayMs: 100,
			RaiseOnFocus:    false,
			EnableOnStart:   true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "file",
		},
	}
}

// ConfigPath returns the default configuration file path.
// FOCUSFOLLOW_CONFIG overrides it.
func ConfigPath() string {
	if v := os.Getenv("FOCUSFOLLOW_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Load reads configuration from path, or from ConfigPath when path is
// empty. A missing file yields the defaults. Environment overrides are
// applied and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides.
// Variables are prefixed with FOCUSFOLLOW_.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FOCUSFOLLOW_TRACKING_DELAY_MS"); v != "" {
		if d, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Focus.TrackingDelayMs = d
		}
	}
	if v := os.Getenv("FOCUSFOLLOW_RAISE_ON_FOCUS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Focus.RaiseOnFocus = b
		}
	}
	if v := os.Getenv("FOCUSFOLLOW_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("FOCUSFOLLOW_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// SaveConfig writes cfg as TOML to path, replacing the file atomically.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# focusfollow configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode TOML: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
