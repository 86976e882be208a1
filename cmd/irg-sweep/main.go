// irg-sweep varies the critical rise and rate thresholds over a grid and
// tabulates the classification outcomes for each combination. The goal is to
// find parameters that minimize false positives while keeping the true
// positives and their notification times.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ehmatthes/sitka-irg-analysis/internal/analysis"
	"github.com/ehmatthes/sitka-irg-analysis/internal/app"
	"github.com/ehmatthes/sitka-irg-analysis/internal/log"
	"github.com/ehmatthes/sitka-irg-analysis/internal/report"
	"github.com/ehmatthes/sitka-irg-analysis/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file (built-in defaults if omitted)")
	riseMin := flag.Float64("rise-min", 1.5, "Lowest critical rise to try, in feet")
	riseMax := flag.Float64("rise-max", 3.5, "Highest critical rise to try, in feet")
	riseStep := flag.Float64("rise-step", 0.5, "Critical rise step, in feet")
	rateMin := flag.Float64("rate-min", 0.3, "Lowest critical rate to try, in feet/hour")
	rateMax := flag.Float64("rate-max", 0.7, "Highest critical rate to try, in feet/hour")
	rateStep := flag.Float64("rate-step", 0.1, "Critical rate step, in feet/hour")
	workers := flag.Int("workers", 4, "Number of trials to run concurrently")
	out := flag.String("out", "other_output/all_results.json", "Path for JSON sweep results")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Default()
	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)
		if err != nil {
			log.Errorf("Failed to load configuration: %v", err)
			os.Exit(1)
		}
	}

	grid := buildGrid(*riseMin, *riseMax, *riseStep, *rateMin, *rateMax, *rateStep)
	log.Infof("Sweeping %d threshold combinations", len(grid))

	trials, err := runSweep(context.Background(), cfg, grid, *workers)
	if err != nil {
		log.Errorf("Sweep failed: %v", err)
		os.Exit(1)
	}

	report.WriteTrials(os.Stdout, trials)
	if *out != "" {
		if err := report.SaveTrials(*out, trials); err != nil {
			log.Errorf("Failed to save sweep results: %v", err)
			os.Exit(1)
		}
		log.Infof("Wrote sweep results to %s", *out)
	}
}

type gridPoint struct {
	rise float64
	rate float64
}

func buildGrid(riseMin, riseMax, riseStep, rateMin, rateMax, rateStep float64) []gridPoint {
	var grid []gridPoint
	// Float accumulation drift: a half-step tolerance keeps the endpoints in.
	for rise := riseMin; rise <= riseMax+riseStep/2; rise += riseStep {
		for rate := rateMin; rate <= rateMax+rateStep/2; rate += rateStep {
			grid = append(grid, gridPoint{rise: rise, rate: rate})
		}
	}
	return grid
}

// runSweep runs one analysis trial per grid point. Each trial threads its own
// threshold values through the pipeline and owns its own aggregation, so
// trials are safe to run concurrently.
func runSweep(ctx context.Context, cfg *config.Config, grid []gridPoint, workers int) ([]report.Trial, error) {
	application := app.New(cfg, log.GetSugaredLogger())
	trials := make([]report.Trial, len(grid))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, point := range grid {
		g.Go(func() error {
			params := analysis.DetectorParams{
				RiseCritical:  point.rise,
				RateCritical:  point.rate,
				DebounceHours: cfg.Thresholds.DebounceHours,
				FloorHeight:   cfg.Thresholds.FloorHeight,
			}
			result, err := application.Analyze(ctx, params, cfg.Thresholds.WindowRadiusHours)
			if err != nil {
				return fmt.Errorf("trial %s (rise=%.2f rate=%.2f): %w", alphaName(i), point.rise, point.rate, err)
			}

			trial := report.Trial{
				Name:           alphaName(i),
				RiseCritical:   point.rise,
				RateCritical:   point.rate,
				TruePositives:  result.Summary.TruePositives,
				FalsePositives: result.Summary.FalsePositives,
				FalseNegatives: result.Summary.FalseNegatives,
			}
			for _, lt := range result.Summary.LeadTimes {
				trial.NotificationTimes = append(trial.NotificationTimes, lt.Minutes())
			}
			trials[i] = trial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trials, nil
}

// alphaName returns spreadsheet-style trial names: A..Z, AA, AB, ...
func alphaName(i int) string {
	name := ""
	for {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	return name
}
