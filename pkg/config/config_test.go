package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	content := `
thresholds:
  rise_critical: 3.0
  rate_critical: 0.7
data_files:
  - path: ir_data_clean/irva_utc_072014-022016_hx_format.txt
  - path: current_data/irva_utc_102620.txt
    year: 2020
slides_file: known_slides/known_slides.json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Thresholds.RiseCritical != 3.0 {
		t.Errorf("rise_critical = %v, want 3.0", cfg.Thresholds.RiseCritical)
	}
	if cfg.Thresholds.RateCritical != 0.7 {
		t.Errorf("rate_critical = %v, want 0.7", cfg.Thresholds.RateCritical)
	}
	// Fields the file doesn't set keep their defaults.
	if cfg.Thresholds.DebounceHours != 12 {
		t.Errorf("debounce_hours = %d, want default 12", cfg.Thresholds.DebounceHours)
	}
	if cfg.Thresholds.WindowRadiusHours != 24 {
		t.Errorf("window_radius_hours = %d, want default 24", cfg.Thresholds.WindowRadiusHours)
	}
	if len(cfg.DataFiles) != 2 {
		t.Fatalf("expected 2 data files, got %d", len(cfg.DataFiles))
	}
	if cfg.DataFiles[1].Year != 2020 {
		t.Errorf("second data file year = %d, want 2020", cfg.DataFiles[1].Year)
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rise", func(c *Config) { c.Thresholds.RiseCritical = 0 }},
		{"negative rate", func(c *Config) { c.Thresholds.RateCritical = -0.5 }},
		{"negative debounce", func(c *Config) { c.Thresholds.DebounceHours = -1 }},
		{"zero radius", func(c *Config) { c.Thresholds.WindowRadiusHours = 0 }},
		{"no data files", func(c *Config) { c.DataFiles = nil }},
		{"empty data file path", func(c *Config) { c.DataFiles[0].Path = "" }},
		{"no slides file", func(c *Config) { c.SlidesFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
