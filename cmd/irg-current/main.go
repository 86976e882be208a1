// irg-current fetches the most recent publicly-available data for the Indian
// River stream gauge, scans the trailing window for critical points, and
// emits the forward and backward threshold projection curves: how high the
// river would have to get to become critical, and how close it got.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ehmatthes/sitka-irg-analysis/internal/analysis"
	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
	"github.com/ehmatthes/sitka-irg-analysis/internal/log"
)

func main() {
	url := flag.String("url", gauge.DefaultHydrographURL, "NWS hydrograph XML endpoint")
	cachedFile := flag.String("cached-file", "", "Read hydrograph XML from this file instead of fetching")
	hours := flag.Int("hours", 48, "Trailing hours of readings to analyze")
	rise := flag.Float64("rise", 2.5, "Critical rise in feet")
	rate := flag.Float64("rate", 0.5, "Critical rate in feet/hour")
	stepMinutes := flag.Int("step", 15, "Projection step in minutes")
	count := flag.Int("count", 48, "Number of projected points per curve")
	outDir := flag.String("out", "", "Directory for projection CSV files (stdout summary only if omitted)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), *url, *cachedFile, *hours, *rise, *rate, *stepMinutes, *count, *outDir); err != nil {
		log.Errorf("Current data analysis failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, url, cachedFile string, hours int, rise, rate float64, stepMinutes, count int, outDir string) error {
	data, err := loadHydrograph(ctx, url, cachedFile)
	if err != nil {
		return err
	}

	readings, err := gauge.ParseHydrograph(data)
	if err != nil {
		return err
	}
	log.Infof("Parsed %d observed readings", len(readings))

	recent := gauge.RecentReadings(readings, hours)
	last := recent[len(recent)-1]
	fmt.Printf("Latest reading: %s\n", last.Formatted())

	params := analysis.DetectorParams{
		RiseCritical:  rise,
		RateCritical:  rate,
		DebounceHours: 12,
	}
	firsts, err := analysis.Detect(recent, params)
	if err != nil {
		return err
	}
	if len(firsts) == 0 {
		fmt.Println("No critical points in the current data.")
	}
	for _, point := range firsts {
		fmt.Printf("Critical point: %s\n", point.Formatted())
	}

	projParams := analysis.ProjectorParams{
		RiseCritical: rise,
		RateCritical: rate,
		StepMinutes:  stepMinutes,
		Count:        count,
	}
	forecast, err := analysis.Project(recent, analysis.ProjectForward, projParams)
	if err != nil {
		return err
	}
	retrospective, err := analysis.Project(recent, analysis.ProjectBackward, projParams)
	if err != nil {
		return err
	}

	fmt.Printf("Critical threshold at +%d min: %.2f ft (currently %.2f ft)\n",
		stepMinutes*count, forecast[len(forecast)-1].Height, last.Height)

	if outDir == "" {
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeCurveCSV(filepath.Join(outDir, "critical_forecast.csv"), forecast); err != nil {
		return err
	}
	if err := writeCurveCSV(filepath.Join(outDir, "critical_retrospective.csv"), retrospective); err != nil {
		return err
	}
	log.Infof("Wrote projection curves to %s", outDir)
	return nil
}

func loadHydrograph(ctx context.Context, url, cachedFile string) ([]byte, error) {
	if cachedFile != "" {
		data, err := os.ReadFile(cachedFile)
		if err == nil {
			log.Info("Read gauge data from file")
			return data, nil
		}
		log.Warnf("Couldn't read cached data, fetching fresh: %v", err)
	}
	log.Info("Fetching fresh gauge data")
	return gauge.FetchHydrograph(ctx, nil, url)
}

// writeCurveCSV writes a projection curve as time,height rows for the
// plotting collaborator.
func writeCurveCSV(path string, curve []gauge.Reading) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating curve file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "height_ft"}); err != nil {
		return err
	}
	for _, r := range curve {
		if err := w.Write([]string{r.Time.Format("2006-01-02 15:04:05"), strconv.FormatFloat(r.Height, 'f', 2, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
