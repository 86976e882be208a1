// Package config provides configuration loading for the gauge analysis
// tools. Threshold values live in the config and are threaded explicitly
// into every analysis call; nothing reads them from global state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Thresholds holds the critical point detection configuration.
type Thresholds struct {
	// RiseCritical is the critical total rise in feet.
	RiseCritical float64 `yaml:"rise_critical"`

	// RateCritical is the critical sustained rate in feet/hour.
	RateCritical float64 `yaml:"rate_critical"`

	// DebounceHours is the minimum spacing between notifications.
	DebounceHours int `yaml:"debounce_hours"`

	// WindowRadiusHours is the radius of the reading window extracted
	// around each first critical point.
	WindowRadiusHours int `yaml:"window_radius_hours"`

	// FloorHeight is an optional base river level used to short-circuit
	// scanning; zero disables it.
	FloorHeight float64 `yaml:"floor_height"`
}

// DataFile describes one raw gauge data file. Year is only needed for the
// weekly format, which does not carry one.
type DataFile struct {
	Path string `yaml:"path"`
	Year int    `yaml:"year,omitempty"`
}

// Config is the full configuration for an analysis run.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`
	DataFiles  []DataFile `yaml:"data_files"`
	SlidesFile string     `yaml:"slides_file"`
	OutputDir  string     `yaml:"output_dir"`
	CacheDB    string     `yaml:"cache_db"`
}

// Default returns the configuration used for the Indian River analysis when
// no config file is given.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			RiseCritical:      2.5,
			RateCritical:      0.5,
			DebounceHours:     12,
			WindowRadiusHours: 24,
		},
		DataFiles: []DataFile{
			{Path: "ir_data_clean/irva_utc_072014-022016_hx_format.txt"},
			{Path: "ir_data_clean/irva_akdt_022016-102019_arch_format.txt"},
		},
		SlidesFile: "known_slides/known_slides.json",
		OutputDir:  "other_output",
		CacheDB:    "other_output/reading_sets.db",
	}
}

// Load reads and validates a YAML config file. Fields left unset fall back
// to the defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the analysis cannot run with.
func (c *Config) Validate() error {
	if c.Thresholds.RiseCritical <= 0 {
		return fmt.Errorf("rise_critical must be positive, got %v", c.Thresholds.RiseCritical)
	}
	if c.Thresholds.RateCritical <= 0 {
		return fmt.Errorf("rate_critical must be positive, got %v", c.Thresholds.RateCritical)
	}
	if c.Thresholds.DebounceHours < 0 {
		return fmt.Errorf("debounce_hours must not be negative, got %d", c.Thresholds.DebounceHours)
	}
	if c.Thresholds.WindowRadiusHours <= 0 {
		return fmt.Errorf("window_radius_hours must be positive, got %d", c.Thresholds.WindowRadiusHours)
	}
	if len(c.DataFiles) == 0 {
		return fmt.Errorf("no data_files configured")
	}
	for _, df := range c.DataFiles {
		if df.Path == "" {
			return fmt.Errorf("data file with empty path")
		}
	}
	if c.SlidesFile == "" {
		return fmt.Errorf("slides_file not configured")
	}
	return nil
}
