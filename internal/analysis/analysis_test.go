package analysis

import (
	"testing"
	"time"

	"github.com/ehmatthes/sitka-irg-analysis/internal/slides"
)

// TestTenDayScenario runs the whole engine over a constructed 10-day series
// with two sharp rises: one coincident with a known slide and one isolated.
// The run should issue two notifications, one true positive and one false
// positive, and miss nothing.
func TestTenDayScenario(t *testing.T) {
	const (
		ramp1Start = 200
		ramp2Start = 700
		rampLen    = 12 // 3 ft over 3 hours
		holdLen    = 48
		fallLen    = 60
	)
	heightAt := func(i int) float64 {
		for _, start := range []int{ramp1Start, ramp2Start} {
			switch {
			case i >= start && i < start+rampLen:
				return 20.0 + 0.25*float64(i-start)
			case i >= start+rampLen && i < start+rampLen+holdLen:
				return 23.0
			case i >= start+rampLen+holdLen && i < start+rampLen+holdLen+fallLen:
				return 23.0 - 0.05*float64(i-start-rampLen-holdLen)
			}
		}
		return 20.0
	}
	readings := makeSeries(960, heightAt)

	// The slide hits at the top of the first rise.
	slideTime := readings[ramp1Start+rampLen].Time
	knownSlides := []slides.Event{makeEvent("Test Slide", slideTime)}

	params := DetectorParams{RiseCritical: 2.5, RateCritical: 0.5, DebounceHours: 12}
	firsts, err := Detect(readings, params)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(firsts) != 2 {
		t.Fatalf("expected 2 first critical points, got %d", len(firsts))
	}

	var windows []Window
	for _, point := range firsts {
		window, err := ExtractWindow(point, readings, 24)
		if err != nil {
			t.Fatalf("ExtractWindow returned error: %v", err)
		}
		windows = append(windows, window)
	}

	agg := NewAggregator()
	agg.AddSeries(readings)

	outcomes, stats := Classify(windows, knownSlides, agg.AnalyzedRange())
	agg.AddOutcomes(outcomes, stats)
	summary := agg.Summarize()

	if summary.NotificationsIssued != 2 {
		t.Errorf("notifications issued = %d, want 2", summary.NotificationsIssued)
	}
	if summary.TruePositives != 1 {
		t.Errorf("true positives = %d, want 1", summary.TruePositives)
	}
	if summary.FalsePositives != 1 {
		t.Errorf("false positives = %d, want 1", summary.FalsePositives)
	}
	if summary.FalseNegatives != 0 {
		t.Errorf("false negatives = %d, want 0", summary.FalseNegatives)
	}
	if len(summary.LeadTimes) != 1 {
		t.Fatalf("expected 1 lead time, got %d", len(summary.LeadTimes))
	}
	// First critical point fires at +2.5h into the rise; the slide hits at
	// +3h, so the notification gives 30 minutes of warning.
	if summary.LeadTimes[0].Duration != 30*time.Minute {
		t.Errorf("lead time = %v, want 30m", summary.LeadTimes[0].Duration)
	}
}

func TestAggregatorMerge(t *testing.T) {
	readings1 := makeSeries(100, func(i int) float64 { return 20.0 })
	readings2 := makeSeries(100, func(i int) float64 { return 20.0 })
	for i := range readings2 {
		readings2[i].Time = readings2[i].Time.Add(30 * 24 * time.Hour)
	}

	worker1 := NewAggregator()
	worker1.AddSeries(readings1)
	worker1.AddOutcomes([]Outcome{
		{Kind: OutcomeFalsePositive, Point: readings1[50]},
	}, ClassifyStats{})

	worker2 := NewAggregator()
	worker2.AddSeries(readings2)
	event := makeEvent("Merged Slide", readings2[40].Time)
	worker2.AddOutcomes([]Outcome{
		{Kind: OutcomeTruePositive, Point: readings2[30], Event: &event, LeadTime: 150 * time.Minute},
	}, ClassifyStats{UnresolvedInWindow: 1})

	merged := NewAggregator()
	merged.Merge(worker1)
	merged.Merge(worker2)
	summary := merged.Summarize()

	if summary.NotificationsIssued != 2 {
		t.Errorf("notifications issued = %d, want 2", summary.NotificationsIssued)
	}
	if summary.TruePositives != 1 || summary.FalsePositives != 1 {
		t.Errorf("TP/FP = %d/%d, want 1/1", summary.TruePositives, summary.FalsePositives)
	}
	if summary.UnresolvedInWindow != 1 {
		t.Errorf("UnresolvedInWindow = %d, want 1", summary.UnresolvedInWindow)
	}
	if !summary.EarliestReading.Equal(readings1[0].Time) {
		t.Errorf("earliest reading = %s, want %s", summary.EarliestReading, readings1[0].Time)
	}
	if !summary.LatestReading.Equal(readings2[99].Time) {
		t.Errorf("latest reading = %s, want %s", summary.LatestReading, readings2[99].Time)
	}
	if summary.LeadTimes[0].Minutes() != 150 {
		t.Errorf("lead time = %d minutes, want 150", summary.LeadTimes[0].Minutes())
	}
}
