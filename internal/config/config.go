// Package config loads the gomeasure YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/units"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "GOMEASURE_CONFIG"

// Config is the root configuration
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Measure MeasureConfig `yaml:"measure"`
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
}

// DisplayConfig controls how values are rendered
type DisplayConfig struct {
	System     units.System `yaml:"system"`
	Unit       units.Unit   `yaml:"unit"` // defaults to the system's default unit
	Decimals   int          `yaml:"decimals"`
	FeetInches bool         `yaml:"feetInches"`
}

// MeasureConfig tunes the measuring tools
type MeasureConfig struct {
	OrientationThreshold float64 `yaml:"orientationThreshold"` // degrees
	DPI                  float64 `yaml:"dpi"`                  // used by preset calibrations
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address        string `yaml:"address"`
	RequestLogging bool   `yaml:"requestLogging"`
	BodyLimit      string `yaml:"bodyLimit"`
}

// WatchConfig contains script watch settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the default configuration
func Default() *Config {
	cfg := defaults()
	_ = cfg.Validate()
	return cfg
}

// defaults leaves the display unit empty so it follows the configured system
func defaults() *Config {
	return &Config{
		Display: DisplayConfig{
			System:     units.Imperial,
			Decimals:   format.DefaultDecimals,
			FeetInches: false,
		},
		Measure: MeasureConfig{
			OrientationThreshold: geometry.DefaultOrientationThreshold,
			DPI:                  96,
		},
		Server: ServerConfig{
			Address:        "127.0.0.1:8089",
			RequestLogging: true,
			BodyLimit:      "1M",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load reads the configuration at path on top of the defaults.
// An empty path falls back to $GOMEASURE_CONFIG; with neither set the defaults are returned.
// A missing file named by the environment is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironmentOverrides lets environment variables override config values
func (c *Config) applyEnvironmentOverrides() {
	if addr := os.Getenv("GOMEASURE_ADDR"); addr != "" {
		c.Server.Address = addr
	}
	if d := os.Getenv("GOMEASURE_DECIMALS"); d != "" {
		if n, err := strconv.Atoi(d); err == nil {
			c.Display.Decimals = n
		}
	}
}

// Validate checks the configuration and fills in derived defaults
func (c *Config) Validate() error {
	system, err := units.ParseSystem(string(c.Display.System))
	if err != nil {
		return fmt.Errorf("display.system: %w", err)
	}
	c.Display.System = system

	if c.Display.Unit == "" {
		c.Display.Unit = units.DefaultUnit(system)
	}
	unit, err := units.ParseUnit(string(c.Display.Unit))
	if err != nil {
		return fmt.Errorf("display.unit: %w", err)
	}
	c.Display.Unit = unit

	if c.Display.Decimals < 0 || c.Display.Decimals > 10 {
		return fmt.Errorf("display.decimals must be between 0 and 10, got %d", c.Display.Decimals)
	}
	if c.Measure.OrientationThreshold < 0 || c.Measure.OrientationThreshold >= 45 {
		return fmt.Errorf("measure.orientationThreshold must be in [0, 45), got %v", c.Measure.OrientationThreshold)
	}
	if c.Measure.DPI <= 0 {
		return fmt.Errorf("measure.dpi must be positive, got %v", c.Measure.DPI)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", c.Watch.Debounce)
	}
	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
