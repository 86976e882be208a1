// irg-analysis processes historical Indian River stream gauge data: it flags
// every point where the river met the critical rise and rate thresholds,
// correlates those critical periods with known landslides, and summarizes
// how many notifications would have been issued and how much warning each
// slide would have had.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/ehmatthes/sitka-irg-analysis/internal/app"
	"github.com/ehmatthes/sitka-irg-analysis/internal/log"
	"github.com/ehmatthes/sitka-irg-analysis/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file (built-in defaults if omitted)")
	rise := flag.Float64("rise", 0, "Override critical rise in feet")
	rate := flag.Float64("rate", 0, "Override critical rate in feet/hour")
	debounce := flag.Int("debounce", 0, "Override notification debounce in hours")
	radius := flag.Int("radius", 0, "Override window radius in hours")
	outputDir := flag.String("output-dir", "", "Override output directory")
	useCachedData := flag.Bool("use-cached-data", false, "Classify cached reading sets; don't parse raw data files")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("irg-analysis %s\n", version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if *rise > 0 {
		cfg.Thresholds.RiseCritical = *rise
	}
	if *rate > 0 {
		cfg.Thresholds.RateCritical = *rate
	}
	if *debounce > 0 {
		cfg.Thresholds.DebounceHours = *debounce
	}
	if *radius > 0 {
		cfg.Thresholds.WindowRadiusHours = *radius
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	application := app.New(cfg, log.GetSugaredLogger())
	if *useCachedData {
		err = application.RunCached(context.Background())
	} else {
		err = application.Run(context.Background())
	}
	if err != nil {
		log.Errorf("Analysis failed: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile string) (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}
