package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
)

// Window is a contiguous sub-sequence of a reading series centered on an
// anchor reading, used for focused plotting and for classification scope.
// The readings are a view into the backing series and are never mutated.
type Window struct {
	Anchor   gauge.Reading
	Readings []gauge.Reading
}

// Start returns the timestamp of the first reading in the window.
func (w Window) Start() time.Time {
	return w.Readings[0].Time
}

// End returns the timestamp of the last reading in the window.
func (w Window) End() time.Time {
	return w.Readings[len(w.Readings)-1].Time
}

// Contains reports whether t falls within the window, inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start()) && !t.After(w.End())
}

// ExtractWindow returns the sub-series within radiusHours of the anchor
// reading. Near the edges of the series the window is clamped to the
// available readings, so it may hold fewer than 2*radiusHours*rate readings.
// Returns ErrAnchorNotFound if the anchor is not a member of the series.
func ExtractWindow(anchor gauge.Reading, readings []gauge.Reading, radiusHours int) (Window, error) {
	rate, err := gauge.ReadingRate(readings)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}

	idx := sort.Search(len(readings), func(i int) bool {
		return !readings[i].Time.Before(anchor.Time)
	})
	if idx == len(readings) || !readings[idx].Time.Equal(anchor.Time) {
		return Window{}, fmt.Errorf("%w: %s", ErrAnchorNotFound, anchor.Formatted())
	}

	offset := radiusHours * rate
	start := idx - offset
	if start < 0 {
		start = 0
	}
	end := idx + offset
	if end > len(readings) {
		end = len(readings)
	}

	return Window{Anchor: readings[idx], Readings: readings[start:end]}, nil
}
