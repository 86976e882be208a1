package analysis

import (
	"time"

	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
	"github.com/ehmatthes/sitka-irg-analysis/internal/slides"
)

// Aggregator accumulates classification outcomes across an analysis run. It
// is the single mutable component of the engine: create one per run (or one
// per worker, merged afterward), feed it incrementally, and read it exactly
// once at the end via Summarize.
type Aggregator struct {
	notificationsIssued int
	unresolvedInWindow  int

	associatedPoints   []gauge.Reading
	unassociatedPoints []gauge.Reading
	missedEvents       []slides.Event
	outOfRangeEvents   []slides.Event
	leadTimes          []LeadTime

	earliestReading time.Time
	latestReading   time.Time
}

// LeadTime is the notification lead time for one associated slide event.
type LeadTime struct {
	Event    slides.Event  `json:"event"`
	Duration time.Duration `json:"duration"`
}

// Minutes returns the lead time in whole minutes. Negative means the slide
// preceded the critical point.
func (lt LeadTime) Minutes() int {
	return int(lt.Duration.Minutes())
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddSeries extends the analyzed range to cover a processed series.
func (a *Aggregator) AddSeries(readings []gauge.Reading) {
	if len(readings) == 0 {
		return
	}
	first, last := readings[0].Time, readings[len(readings)-1].Time
	if a.earliestReading.IsZero() || first.Before(a.earliestReading) {
		a.earliestReading = first
	}
	if a.latestReading.IsZero() || last.After(a.latestReading) {
		a.latestReading = last
	}
}

// AddOutcomes accumulates one classification pass.
func (a *Aggregator) AddOutcomes(outcomes []Outcome, stats ClassifyStats) {
	for _, outcome := range outcomes {
		switch outcome.Kind {
		case OutcomeTruePositive:
			a.notificationsIssued++
			a.associatedPoints = append(a.associatedPoints, outcome.Point)
			a.leadTimes = append(a.leadTimes, LeadTime{Event: *outcome.Event, Duration: outcome.LeadTime})
		case OutcomeFalsePositive:
			a.notificationsIssued++
			a.unassociatedPoints = append(a.unassociatedPoints, outcome.Point)
		case OutcomeFalseNegative:
			a.missedEvents = append(a.missedEvents, *outcome.Event)
		}
	}
	a.unresolvedInWindow += stats.UnresolvedInWindow
	a.outOfRangeEvents = append(a.outOfRangeEvents, stats.OutOfRange...)
}

// Merge folds another aggregator into this one. Each worker in a parallel
// run owns its own Aggregator; merging afterward keeps the single-writer
// discipline.
func (a *Aggregator) Merge(other *Aggregator) {
	a.notificationsIssued += other.notificationsIssued
	a.unresolvedInWindow += other.unresolvedInWindow
	a.associatedPoints = append(a.associatedPoints, other.associatedPoints...)
	a.unassociatedPoints = append(a.unassociatedPoints, other.unassociatedPoints...)
	a.missedEvents = append(a.missedEvents, other.missedEvents...)
	a.outOfRangeEvents = append(a.outOfRangeEvents, other.outOfRangeEvents...)
	a.leadTimes = append(a.leadTimes, other.leadTimes...)
	if !other.earliestReading.IsZero() &&
		(a.earliestReading.IsZero() || other.earliestReading.Before(a.earliestReading)) {
		a.earliestReading = other.earliestReading
	}
	if !other.latestReading.IsZero() &&
		(a.latestReading.IsZero() || other.latestReading.After(a.latestReading)) {
		a.latestReading = other.latestReading
	}
}

// AnalyzedRange returns the union of reading timestamps seen so far.
func (a *Aggregator) AnalyzedRange() TimeRange {
	return TimeRange{Start: a.earliestReading, End: a.latestReading}
}

// Summary is the stable, serializable report structure produced at the end
// of a run.
type Summary struct {
	NotificationsIssued int `json:"notifications_issued"`
	TruePositives       int `json:"true_positives"`
	FalsePositives      int `json:"false_positives"`
	FalseNegatives      int `json:"false_negatives"`
	OutOfRangeEvents    int `json:"out_of_range_events"`
	UnresolvedInWindow  int `json:"unresolved_in_window"`

	AssociatedPoints   []gauge.Reading `json:"associated_points,omitempty"`
	UnassociatedPoints []gauge.Reading `json:"unassociated_points,omitempty"`
	MissedEvents       []slides.Event  `json:"missed_events,omitempty"`
	OutOfRange         []slides.Event  `json:"out_of_range,omitempty"`
	LeadTimes          []LeadTime      `json:"lead_times,omitempty"`

	EarliestReading time.Time `json:"earliest_reading"`
	LatestReading   time.Time `json:"latest_reading"`
}

// Summarize produces the final report for the run. No component reads
// partially-aggregated state mid-run; this is the single read point.
func (a *Aggregator) Summarize() Summary {
	return Summary{
		NotificationsIssued: a.notificationsIssued,
		TruePositives:       len(a.associatedPoints),
		FalsePositives:      len(a.unassociatedPoints),
		FalseNegatives:      len(a.missedEvents),
		OutOfRangeEvents:    len(a.outOfRangeEvents),
		UnresolvedInWindow:  a.unresolvedInWindow,
		AssociatedPoints:    a.associatedPoints,
		UnassociatedPoints:  a.unassociatedPoints,
		MissedEvents:        a.missedEvents,
		OutOfRange:          a.outOfRangeEvents,
		LeadTimes:           a.leadTimes,
		EarliestReading:     a.earliestReading,
		LatestReading:       a.latestReading,
	}
}
