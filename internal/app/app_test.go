package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ehmatthes/sitka-irg-analysis/internal/analysis"
	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
	"github.com/ehmatthes/sitka-irg-analysis/pkg/config"
)

// writeHxFile writes an hx-format data file with hourly readings starting
// 2014-07-14 00:00 UTC. Heights are flat at 20 ft, ramp 0.6 ft/hr from hour
// 30 to hour 45, then hold.
func writeHxFile(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Indian River at Sitka\nGauge height\nStage only\nDate,Type Source,Stage\n")
	base := time.Date(2014, time.July, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		height := 20.0
		switch {
		case i > 45:
			height = 20.0 + 0.6*15
		case i > 30:
			height = 20.0 + 0.6*float64(i-30)
		}
		fmt.Fprintf(&b, "%s,RZ,%.2f\n", base.Add(time.Duration(i)*time.Hour).Format("2006-01-02 15:04:05"), height)
	}

	path := filepath.Join(dir, "irva_utc_test_hx_format.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("writing data file: %v", err)
	}
	return path
}

func writeSlidesFile(t *testing.T, dir string) string {
	t.Helper()
	catalog := `[
  {"dt_slide": "2014-07-15 11:30:00+00:00", "name": "Test Slide 7/2014", "desc_location": "Test location"},
  {"dt_slide": "2013-01-01 00:00:00+00:00", "name": "Old Slide 1/2013", "desc_location": "Before the record"}
]`
	path := filepath.Join(dir, "known_slides.json")
	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatalf("writing slides file: %v", err)
	}
	return path
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataFiles = []config.DataFile{{Path: writeHxFile(t, dir)}}
	cfg.SlidesFile = writeSlidesFile(t, dir)
	cfg.OutputDir = ""
	cfg.CacheDB = ""

	a := New(cfg, zap.NewNop().Sugar())
	params := analysis.DetectorParams{
		RiseCritical:  cfg.Thresholds.RiseCritical,
		RateCritical:  cfg.Thresholds.RateCritical,
		DebounceHours: cfg.Thresholds.DebounceHours,
	}

	result, err := a.Analyze(context.Background(), params, cfg.Thresholds.WindowRadiusHours)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	// Hourly readings with a 0.6 ft/hr ramp: the five-hour lookback first
	// exceeds a 2.5 ft rise at hour 35 of the series.
	if len(result.Windows) != 1 {
		t.Fatalf("expected 1 critical window, got %d", len(result.Windows))
	}
	wantAnchor := time.Date(2014, time.July, 15, 11, 0, 0, 0, time.UTC)
	if !result.Windows[0].Anchor.Time.Equal(wantAnchor) {
		t.Errorf("anchor at %s, want %s", result.Windows[0].Anchor.Time, wantAnchor)
	}

	s := result.Summary
	if s.NotificationsIssued != 1 {
		t.Errorf("notifications = %d, want 1", s.NotificationsIssued)
	}
	if s.TruePositives != 1 || s.FalsePositives != 0 || s.FalseNegatives != 0 {
		t.Errorf("TP/FP/FN = %d/%d/%d, want 1/0/0", s.TruePositives, s.FalsePositives, s.FalseNegatives)
	}
	if s.OutOfRangeEvents != 1 {
		t.Errorf("out of range events = %d, want 1 (the 2013 slide)", s.OutOfRangeEvents)
	}
	if len(s.LeadTimes) != 1 || s.LeadTimes[0].Minutes() != 30 {
		t.Errorf("lead times = %v, want one 30-minute lead", s.LeadTimes)
	}

	if len(result.ReadingSets) != 1 {
		t.Fatalf("expected 1 reading set, got %d", len(result.ReadingSets))
	}
	if got := result.ReadingSets[0].Label; got != "critical_20140715T1100" {
		t.Errorf("reading set label = %s, want critical_20140715T1100", got)
	}
}

func TestNearestReading(t *testing.T) {
	base := time.Date(2019, time.September, 19, 0, 0, 0, 0, time.UTC)
	readings := make([]gauge.Reading, 10)
	for i := range readings {
		readings[i] = gauge.Reading{Time: base.Add(time.Duration(i) * time.Hour)}
	}

	tests := []struct {
		name   string
		t      time.Time
		wantOK bool
		want   time.Time
	}{
		{"exact match", base.Add(3 * time.Hour), true, base.Add(3 * time.Hour)},
		{"rounds down", base.Add(3*time.Hour + 20*time.Minute), true, base.Add(3 * time.Hour)},
		{"rounds up", base.Add(3*time.Hour + 40*time.Minute), true, base.Add(4 * time.Hour)},
		{"before range", base.Add(-time.Hour), false, time.Time{}},
		{"after range", base.Add(20 * time.Hour), false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nearestReading(readings, tt.t)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Time.Equal(tt.want) {
				t.Errorf("nearest = %s, want %s", got.Time, tt.want)
			}
		})
	}
}
