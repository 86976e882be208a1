package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
)

// Trial records the outcome of one parameter sweep trial: one combination of
// critical rise and rate, with its classification counts and notification
// times.
type Trial struct {
	Name              string  `json:"alpha_name"`
	RiseCritical      float64 `json:"critical_rise"`
	RateCritical      float64 `json:"critical_slope"`
	TruePositives     int     `json:"true_positives"`
	FalsePositives    int     `json:"false_positives"`
	FalseNegatives    int     `json:"false_negatives"`
	NotificationTimes []int   `json:"notification_times"`
}

// WriteTrials renders the sweep results as a table, one row per trial. This
// is the tabular stand-in for a proper ROC curve.
func WriteTrials(w io.Writer, trials []Trial) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Trial\tR_C\tM_C\tTP\tFP\tFN\tNotification Times")
	for _, trial := range trials {
		times := append([]int(nil), trial.NotificationTimes...)
		sort.Ints(times)
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t%d\t%d\t%v\n",
			trial.Name, trial.RiseCritical, trial.RateCritical,
			trial.TruePositives, trial.FalsePositives, trial.FalseNegatives, times)
	}
	tw.Flush()
}

// SaveTrials writes the sweep results to a JSON file so they can be analyzed
// separately from the (slow) sweep itself.
func SaveTrials(path string, trials []Trial) error {
	data, err := json.MarshalIndent(trials, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sweep results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sweep results: %w", err)
	}
	return nil
}

// LoadTrials reads sweep results back from a JSON file.
func LoadTrials(path string) ([]Trial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep results: %w", err)
	}
	var trials []Trial
	if err := json.Unmarshal(data, &trials); err != nil {
		return nil, fmt.Errorf("decoding sweep results: %w", err)
	}
	return trials, nil
}
