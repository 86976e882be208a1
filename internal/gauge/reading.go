// Package gauge provides the stream gauge reading model and the parsers for
// the various formats the Indian River gauge data has been published in.
package gauge

import (
	"fmt"
	"time"
)

// Reading represents a single stream gauge reading: a river height in feet
// at a moment in time. Timestamps are always UTC.
type Reading struct {
	Time   time.Time `json:"time" msgpack:"time"`
	Height float64   `json:"height" msgpack:"height"`
}

// Rise returns the height gained since prev, in feet. Negative if the river
// dropped. prev is assumed to be the earlier reading.
func (r Reading) Rise(prev Reading) float64 {
	return r.Height - prev.Height
}

// Slope returns the absolute rate of change between prev and r, in feet/hour.
// prev is assumed to be the earlier reading.
func (r Reading) Slope(prev Reading) float64 {
	dHeight := r.Height - prev.Height
	dHours := r.Time.Sub(prev.Time).Hours()
	return abs(dHeight / dHours)
}

// Formatted returns a neat human-readable string for the reading.
func (r Reading) Formatted() string {
	return fmt.Sprintf("%s - %.2f", r.Time.Format("01/02/2006 15:04:05"), r.Height)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// ReadingRate returns the sampling rate in readings/hour, inferred from the
// gap between the first two readings. It is 1 for hourly data and 4 for
// 15-minute data.
func ReadingRate(readings []Reading) (int, error) {
	if len(readings) < 2 {
		return 0, fmt.Errorf("need at least 2 readings to infer sampling rate, have %d", len(readings))
	}
	interval := readings[1].Time.Sub(readings[0].Time)
	if interval <= 0 {
		return 0, fmt.Errorf("readings not in ascending order: %s then %s",
			readings[0].Time.Format(time.RFC3339), readings[1].Time.Format(time.RFC3339))
	}
	rate := int(time.Hour / interval)
	if rate < 1 {
		rate = 1
	}
	return rate, nil
}

// SamplingInterval returns the gap between the first two readings.
func SamplingInterval(readings []Reading) (time.Duration, error) {
	if len(readings) < 2 {
		return 0, fmt.Errorf("need at least 2 readings to infer sampling interval, have %d", len(readings))
	}
	interval := readings[1].Time.Sub(readings[0].Time)
	if interval <= 0 {
		return 0, fmt.Errorf("readings not in ascending order: %s then %s",
			readings[0].Time.Format(time.RFC3339), readings[1].Time.Format(time.RFC3339))
	}
	return interval, nil
}

// RecentReadings returns the trailing hours worth of readings from a series.
// If the series is shorter than the requested span, the whole series is
// returned.
func RecentReadings(readings []Reading, hours int) []Reading {
	rate, err := ReadingRate(readings)
	if err != nil {
		return readings
	}
	n := hours * rate
	if n >= len(readings) {
		return readings
	}
	return readings[len(readings)-n:]
}
