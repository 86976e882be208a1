package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
	"github.com/ehmatthes/sitka-irg-analysis/internal/slides"
)

// OutcomeKind classifies a critical point or a known slide event.
type OutcomeKind string

const (
	// OutcomeTruePositive is a first critical point with an associated slide.
	OutcomeTruePositive OutcomeKind = "true_positive"

	// OutcomeFalsePositive is a first critical point with no slide in its window.
	OutcomeFalsePositive OutcomeKind = "false_positive"

	// OutcomeFalseNegative is a slide within the analyzed range that no
	// window claimed.
	OutcomeFalseNegative OutcomeKind = "false_negative"
)

// Outcome is one classification result. Point is set for true and false
// positives, Event for true positives and false negatives. LeadTime is the
// notification lead time for a true positive: the time between the first
// critical point and the slide. A negative lead time means the slide
// preceded the critical point, i.e. it was detected after the fact.
type Outcome struct {
	Kind     OutcomeKind
	Point    gauge.Reading
	Event    *slides.Event
	LeadTime time.Duration
}

// TimeRange is an inclusive timestamp range.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, inclusive.
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && !t.After(tr.End)
}

// ClassifyStats carries the classification side counts that are not
// per-outcome: events inside an already-associated window that went
// unresolved, and events outside the analyzed range, which are excluded from
// scoring rather than counted as false negatives.
type ClassifyStats struct {
	UnresolvedInWindow int
	OutOfRange         []slides.Event
}

// Classify correlates critical point windows against the known slide catalog.
//
// Windows are processed in order. Each window claims the first unclaimed
// event whose timestamp falls within it, producing a true positive with the
// notification lead time; a window with no such event produces a false
// positive for its anchor. A window holds at most one association:
// additional unclaimed events inside an associated window are counted in
// ClassifyStats.UnresolvedInWindow and remain eligible for later windows.
//
// After all windows are processed, unclaimed events within analyzed become
// false negatives; unclaimed events outside analyzed are reported in
// ClassifyStats.OutOfRange.
func Classify(windows []Window, events []slides.Event, analyzed TimeRange) ([]Outcome, ClassifyStats) {
	claimed := make(map[uuid.UUID]bool, len(events))
	var outcomes []Outcome
	var stats ClassifyStats

	for _, window := range windows {
		var match *slides.Event
		for i := range events {
			event := &events[i]
			if claimed[event.ID] || !window.Contains(event.Time) {
				continue
			}
			if match == nil {
				match = event
				continue
			}
			// Known limitation: one association per window. Flag the rest
			// instead of silently dropping them.
			stats.UnresolvedInWindow++
		}

		if match == nil {
			outcomes = append(outcomes, Outcome{
				Kind:  OutcomeFalsePositive,
				Point: window.Anchor,
			})
			continue
		}

		claimed[match.ID] = true
		outcomes = append(outcomes, Outcome{
			Kind:     OutcomeTruePositive,
			Point:    window.Anchor,
			Event:    match,
			LeadTime: match.Time.Sub(window.Anchor.Time),
		})
	}

	for i := range events {
		event := &events[i]
		if claimed[event.ID] {
			continue
		}
		if analyzed.Contains(event.Time) {
			outcomes = append(outcomes, Outcome{
				Kind:  OutcomeFalseNegative,
				Event: event,
			})
		} else {
			stats.OutOfRange = append(stats.OutOfRange, *event)
		}
	}

	return outcomes, stats
}
