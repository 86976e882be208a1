// Package report renders analysis results as text tables for the console and
// as JSON for downstream aggregation.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"

	"github.com/ehmatthes/sitka-irg-analysis/internal/analysis"
)

// WriteSummary renders a run summary as console text, mirroring the
// questions the analysis is meant to answer: how many notifications were
// issued, how many slides they caught, what got missed, and what the
// notification times looked like.
func WriteSummary(w io.Writer, s analysis.Summary) {
	fmt.Fprintf(w, "\n--- Analysis summary ---\n")
	fmt.Fprintf(w, "Analyzed readings from %s to %s\n",
		s.EarliestReading.Format("01/02/2006 15:04"), s.LatestReading.Format("01/02/2006 15:04"))

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Notifications issued:\t%d\n", s.NotificationsIssued)
	fmt.Fprintf(tw, "True positives:\t%d\n", s.TruePositives)
	fmt.Fprintf(tw, "False positives:\t%d\n", s.FalsePositives)
	fmt.Fprintf(tw, "False negatives:\t%d\n", s.FalseNegatives)
	fmt.Fprintf(tw, "Events out of range:\t%d\n", s.OutOfRangeEvents)
	if s.UnresolvedInWindow > 0 {
		fmt.Fprintf(tw, "Unresolved events in associated windows:\t%d\n", s.UnresolvedInWindow)
	}
	tw.Flush()

	if len(s.LeadTimes) > 0 {
		fmt.Fprintf(w, "\nNotification times:\n")
		for _, lt := range s.LeadTimes {
			if lt.Minutes() < 0 {
				fmt.Fprintf(w, "  %s: %d minutes (detected after the fact)\n", lt.Event.Name, lt.Minutes())
			} else {
				fmt.Fprintf(w, "  %s: %d minutes\n", lt.Event.Name, lt.Minutes())
			}
		}
		mean, median := LeadTimeStats(s)
		fmt.Fprintf(w, "  Mean: %.0f minutes, median: %.0f minutes\n", mean, median)
	}

	if len(s.MissedEvents) > 0 {
		fmt.Fprintf(w, "\nSlides missed (no critical point):\n")
		for _, event := range s.MissedEvents {
			fmt.Fprintf(w, "  %s - %s\n", event.Name, event.Time.Format("01/02/2006 15:04:05"))
		}
	}

	if len(s.UnassociatedPoints) > 0 {
		fmt.Fprintf(w, "\nNotifications with no associated slide:\n")
		for _, point := range s.UnassociatedPoints {
			fmt.Fprintf(w, "  %s\n", point.Formatted())
		}
	}

	if len(s.OutOfRange) > 0 {
		fmt.Fprintf(w, "\nSlides outside the analyzed range (not scored):\n")
		for _, event := range s.OutOfRange {
			fmt.Fprintf(w, "  %s - %s\n", event.Name, event.Time.Format("01/02/2006 15:04:05"))
		}
	}
}

// LeadTimeStats returns the mean and median notification lead time in
// minutes across a summary's true positives.
func LeadTimeStats(s analysis.Summary) (mean, median float64) {
	if len(s.LeadTimes) == 0 {
		return 0, 0
	}
	minutes := make([]float64, len(s.LeadTimes))
	for i, lt := range s.LeadTimes {
		minutes[i] = lt.Duration.Minutes()
	}
	sort.Float64s(minutes)
	return stat.Mean(minutes, nil), stat.Quantile(0.5, stat.Empirical, minutes, nil)
}
