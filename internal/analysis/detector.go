// Package analysis implements the critical point detection, windowing,
// classification, and threshold projection engine for Indian River stream
// gauge data.
//
// A critical point is a reading at which the river has risen by at least a
// critical amount at a sustained critical rate. Detected critical points are
// debounced into "first critical points", one per notification, then
// correlated against the known slide catalog to score true/false
// positives/negatives and notification lead times.
package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
)

// DetectorParams holds the threshold configuration for critical point
// detection. Thresholds are always supplied explicitly by the caller; there
// is no package-level threshold state, so parameter sweeps can run detection
// concurrently with different values.
type DetectorParams struct {
	// RiseCritical is the total rise, in feet, that qualifies as critical.
	RiseCritical float64

	// RateCritical is the sustained rate, in feet/hour, that qualifies as
	// critical. A pair of readings is critical only if the rise meets
	// RiseCritical AND the slope between them exceeds RateCritical.
	RateCritical float64

	// DebounceHours is the minimum spacing between consecutively accepted
	// first critical points. A dense critical region collapses to one
	// notification per event.
	DebounceHours int

	// FloorHeight optionally short-circuits the scan for readings below
	// FloorHeight + RiseCritical. This is a scanning optimization for data
	// with a known base river level, not a correctness requirement; zero
	// disables it.
	FloorHeight float64
}

// DefaultDetectorParams returns the threshold values used for the Indian
// River gauge analysis.
func DefaultDetectorParams() DetectorParams {
	return DetectorParams{
		RiseCritical:  2.5,
		RateCritical:  0.5,
		DebounceHours: 12,
		FloorHeight:   0,
	}
}

// LookbackSamples returns the number of prior samples that could contain a
// qualifying interval at the given sampling rate: the longest a qualifying
// rise could take is RiseCritical/RateCritical hours.
func (p DetectorParams) LookbackSamples(readingsPerHour int) int {
	return int(math.Ceil(p.RiseCritical/p.RateCritical)) * readingsPerHour
}

// LookbackHours returns the lookback horizon in hours.
func (p DetectorParams) LookbackHours() float64 {
	return p.RiseCritical / p.RateCritical
}

// Detect scans a series for critical points and returns the debounced "first
// critical point" sequence, one point per notification. It is a pure
// function over its inputs.
//
// The series must be sampled at a constant interval; the sampling rate is
// inferred from the gap between the first two readings and validated over
// the whole series. Returns ErrNonUniformSampling if the interval varies and
// ErrInsufficientData if the series is no longer than the lookback window.
func Detect(readings []gauge.Reading, params DetectorParams) ([]gauge.Reading, error) {
	points, err := CriticalPoints(readings, params)
	if err != nil {
		return nil, err
	}
	return FirstCriticalPoints(points, params.DebounceHours), nil
}

// CriticalPoints returns every critical point in a series, without
// debouncing. A reading is critical if any reading in the preceding lookback
// window is at least RiseCritical feet lower and the slope between the pair
// exceeds RateCritical. The scan walks prior readings from nearest to
// farthest and the first qualifying pair wins.
func CriticalPoints(readings []gauge.Reading, params DetectorParams) ([]gauge.Reading, error) {
	rate, err := gauge.ReadingRate(readings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	if err := validateUniformSampling(readings); err != nil {
		return nil, err
	}

	lookback := params.LookbackSamples(rate)
	if len(readings) <= lookback {
		return nil, fmt.Errorf("%w: %d readings, lookback needs %d",
			ErrInsufficientData, len(readings), lookback+1)
	}

	var points []gauge.Reading
	for i := lookback; i < len(readings); i++ {
		reading := readings[i]
		if params.FloorHeight > 0 && reading.Height < params.FloorHeight+params.RiseCritical {
			continue
		}
		for j := i - 1; j >= i-lookback; j-- {
			prev := readings[j]
			if reading.Rise(prev) >= params.RiseCritical && reading.Slope(prev) > params.RateCritical {
				points = append(points, reading)
				break
			}
		}
	}
	return points, nil
}

// FirstCriticalPoints debounces a chronological critical point sequence:
// a point is accepted only if it is more than debounceHours after the
// previously accepted point, or if none has been accepted yet.
func FirstCriticalPoints(points []gauge.Reading, debounceHours int) []gauge.Reading {
	debounce := time.Duration(debounceHours) * time.Hour

	var firsts []gauge.Reading
	for _, point := range points {
		if len(firsts) == 0 || point.Time.Sub(firsts[len(firsts)-1].Time) > debounce {
			firsts = append(firsts, point)
		}
	}
	return firsts
}

// validateUniformSampling checks that every consecutive pair of readings is
// spaced at the same interval as the first pair. The original analysis
// trusted the first gap alone, which silently computes a wrong lookback size
// when a series has gaps.
func validateUniformSampling(readings []gauge.Reading) error {
	interval, err := gauge.SamplingInterval(readings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	for i := 2; i < len(readings); i++ {
		gap := readings[i].Time.Sub(readings[i-1].Time)
		if gap != interval {
			return fmt.Errorf("%w: %v between %s and %s, expected %v",
				ErrNonUniformSampling, gap,
				readings[i-1].Time.Format(time.RFC3339),
				readings[i].Time.Format(time.RFC3339), interval)
		}
	}
	return nil
}
