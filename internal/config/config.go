package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/PixPMusic/gopher-cc/internal/midi"
)

// Environment overrides
const (
	EnvConfigPath = "GOPHERCC_CONFIG"
	EnvLogLevel   = "GOPHERCC_LOG_LEVEL"
)

// ErrInvalid is returned when a config value cannot be used
var ErrInvalid = errors.New("invalid config")

// Config holds tool settings. Device choice and channel are deliberately
// not stored; they reset on every start.
type Config struct {
	Driver             string `json:"driver"`    // rtmidi, portmidi, coremidi or winmm
	LogLevel           string `json:"log_level"` // debug, info, warn, error
	EnumerateTimeoutMS int    `json:"enumerate_timeout_ms"`
	OpenTimeoutMS      int    `json:"open_timeout_ms"`
	SendTimeoutMS      int    `json:"send_timeout_ms"`
}

// Default returns the config used when no file exists
func Default() *Config {
	opts := midi.DefaultOptions()
	return &Config{
		Driver:             midi.DefaultDriver,
		LogLevel:           "info",
		EnumerateTimeoutMS: int(opts.EnumerateTimeout / time.Millisecond),
		OpenTimeoutMS:      int(opts.OpenTimeout / time.Millisecond),
		SendTimeoutMS:      int(opts.SendTimeout / time.Millisecond),
	}
}

// configDir returns the platform-appropriate config directory
func configDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "gopher-cc"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from its default location
func Load() (*Config, bool, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, false, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Missing files and missing fields fall
// back to defaults; found reports whether the file existed.
func LoadFile(path string) (cfg *Config, found bool, err error) {
	cfg = Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, false, err
	default:
		found = true
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, true, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, found, err
	}
	return cfg, found, nil
}

// Validate checks that every setting can be used
func (c *Config) Validate() error {
	if !midi.IsKnownDriver(c.Driver) {
		return fmt.Errorf("%w: driver %q (known: %v)", ErrInvalid, c.Driver, midi.DriverNames())
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	for name, ms := range map[string]int{
		"enumerate_timeout_ms": c.EnumerateTimeoutMS,
		"open_timeout_ms":      c.OpenTimeoutMS,
		"send_timeout_ms":      c.SendTimeoutMS,
	} {
		if ms <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, name, ms)
		}
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (zapcore.Level, error) {
	var level zapcore.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// MIDIOptions converts the timeouts for midi.NewManager
func (c *Config) MIDIOptions() midi.Options {
	return midi.Options{
		EnumerateTimeout: time.Duration(c.EnumerateTimeoutMS) * time.Millisecond,
		OpenTimeout:      time.Duration(c.OpenTimeoutMS) * time.Millisecond,
		SendTimeout:      time.Duration(c.SendTimeoutMS) * time.Millisecond,
	}
}

// Save writes the config to its default location
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating the directory if needed
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
