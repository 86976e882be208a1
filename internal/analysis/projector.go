package analysis

import (
	"fmt"
	"time"

	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
)

// Direction selects which way a threshold projection runs.
type Direction string

const (
	// ProjectForward projects future timestamps past the last known reading:
	// "how high would the river have to get to become critical".
	ProjectForward Direction = "forward"

	// ProjectBackward projects over the trailing span of known readings:
	// "how close did the river get to critical".
	ProjectBackward Direction = "backward"
)

// ProjectorParams holds the configuration for a threshold projection.
type ProjectorParams struct {
	// RiseCritical and RateCritical are the same thresholds the detector
	// uses; together they fix the lookback horizon at
	// RiseCritical/RateCritical hours.
	RiseCritical float64
	RateCritical float64

	// StepMinutes is the spacing between projected timestamps.
	StepMinutes int

	// Count is the number of timestamps to project.
	Count int
}

// DefaultProjectorParams returns the projection settings used for the Indian
// River gauge: 15-minute steps over 12 hours.
func DefaultProjectorParams() ProjectorParams {
	return ProjectorParams{
		RiseCritical: 2.5,
		RateCritical: 0.5,
		StepMinutes:  15,
		Count:        48,
	}
}

// Project computes, for each of Count timestamps spaced StepMinutes apart,
// the minimal river height that would itself be a critical point at that
// timestamp, relative to the trailing lookback window.
//
// Each projected height is the minimum height over the trailing window plus
// RiseCritical, raised to the sustained-rate floor when that total-rise
// height alone would not imply an average slope of at least RateCritical.
//
// Forward projection starts after the last known reading and is recursive:
// each projected point becomes eligible as a predecessor for later points.
// Backward projection walks timestamps ending at the last known reading and
// draws only on real readings. Both directions use the identical two-step
// minimum/rate-floor rule.
func Project(readings []gauge.Reading, direction Direction, params ProjectorParams) ([]gauge.Reading, error) {
	if len(readings) == 0 {
		return nil, fmt.Errorf("%w: no readings to project from", ErrInsufficientData)
	}

	lookbackHours := params.RiseCritical / params.RateCritical
	lookback := time.Duration(lookbackHours * float64(time.Hour))
	step := time.Duration(params.StepMinutes) * time.Minute
	last := readings[len(readings)-1]

	projected := make([]gauge.Reading, 0, params.Count)
	for k := 1; k <= params.Count; k++ {
		var t time.Time
		var window []gauge.Reading
		switch direction {
		case ProjectForward:
			t = last.Time.Add(time.Duration(k) * step)
			window = readingsInRange(readings, t.Add(-lookback), t)
			window = append(window, readingsInRange(projected, t.Add(-lookback), t)...)
		case ProjectBackward:
			t = last.Time.Add(-time.Duration(params.Count-k) * step)
			window = readingsInRange(readings, t.Add(-lookback), t)
		default:
			return nil, fmt.Errorf("unknown projection direction %q", direction)
		}

		if len(window) == 0 {
			return nil, fmt.Errorf("%w: no readings within %v of %s",
				ErrInsufficientData, lookback, t.Format(time.RFC3339))
		}

		height := minHeight(window) + params.RiseCritical

		// The total-rise floor guarantees the rise, but not the slope: if
		// the implied average rate from the start of the window is below
		// critical, raise the height to the sustained-rate floor.
		avgRate := (height - window[0].Height) / lookbackHours
		if avgRate < params.RateCritical {
			height = window[0].Height + lookbackHours*params.RateCritical
		}

		projected = append(projected, gauge.Reading{Time: t, Height: height})
	}
	return projected, nil
}

// readingsInRange returns the readings with timestamps in [start, end).
// The input must be in ascending order.
func readingsInRange(readings []gauge.Reading, start, end time.Time) []gauge.Reading {
	var out []gauge.Reading
	for _, r := range readings {
		if r.Time.Before(start) {
			continue
		}
		if !r.Time.Before(end) {
			break
		}
		out = append(out, r)
	}
	return out
}

func minHeight(readings []gauge.Reading) float64 {
	min := readings[0].Height
	for _, r := range readings[1:] {
		if r.Height < min {
			min = r.Height
		}
	}
	return min
}
