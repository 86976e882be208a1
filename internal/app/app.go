// Package app wires the analysis pipeline together: parse the configured
// gauge data files, detect critical points, extract windows, classify them
// against the known slide catalog, and aggregate the results into a run
// summary.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ehmatthes/sitka-irg-analysis/internal/analysis"
	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
	"github.com/ehmatthes/sitka-irg-analysis/internal/report"
	"github.com/ehmatthes/sitka-irg-analysis/internal/slides"
	"github.com/ehmatthes/sitka-irg-analysis/internal/storage"
	"github.com/ehmatthes/sitka-irg-analysis/pkg/config"
)

// App represents the historical analysis application.
type App struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
}

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.SugaredLogger) *App {
	return &App{cfg: cfg, logger: logger}
}

// RunResult is everything one analysis pass produces: the summary for
// reporting, the critical point windows for focused plotting, and the
// reading sets for persistence.
type RunResult struct {
	Summary     analysis.Summary
	Windows     []analysis.Window
	ReadingSets []storage.ReadingSet
}

// fileResult holds the per-file detection output gathered by one worker.
type fileResult struct {
	readings []gauge.Reading
	windows  []analysis.Window
}

// Analyze runs the full detection and classification pipeline over the
// configured data files with the given thresholds. Files are processed
// concurrently; each worker only reads its own series, and the per-file
// results are merged in configured file order before classification so the
// output is reproducible no matter how the workers were scheduled.
func (a *App) Analyze(ctx context.Context, params analysis.DetectorParams, radiusHours int) (*RunResult, error) {
	knownSlides, err := slides.LoadCatalog(a.cfg.SlidesFile)
	if err != nil {
		return nil, err
	}
	a.logger.Infof("Loaded %d known slide events", len(knownSlides))

	results := make([]fileResult, len(a.cfg.DataFiles))
	g, ctx := errgroup.WithContext(ctx)
	for i, df := range a.cfg.DataFiles {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res, err := a.processFile(df, params, radiusHours)
			if err != nil {
				return fmt.Errorf("processing %s: %w", df.Path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := analysis.NewAggregator()
	var windows []analysis.Window
	for _, res := range results {
		agg.AddSeries(res.readings)
		windows = append(windows, res.windows...)
	}
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Anchor.Time.Before(windows[j].Anchor.Time)
	})

	outcomes, stats := analysis.Classify(windows, knownSlides, agg.AnalyzedRange())
	agg.AddOutcomes(outcomes, stats)

	result := &RunResult{
		Summary: agg.Summarize(),
		Windows: windows,
	}
	result.ReadingSets = a.buildReadingSets(results, outcomes)
	return result, nil
}

// processFile parses one gauge data file and detects its critical point
// windows.
func (a *App) processFile(df config.DataFile, params analysis.DetectorParams, radiusHours int) (fileResult, error) {
	readings, err := a.readDataFile(df)
	if err != nil {
		return fileResult{}, err
	}
	a.logger.Infof("Read %d readings from %s", len(readings), df.Path)

	firsts, err := analysis.Detect(readings, params)
	if err != nil {
		return fileResult{}, err
	}
	a.logger.Infof("Found %d first critical points in %s", len(firsts), df.Path)

	res := fileResult{readings: readings}
	for _, point := range firsts {
		window, err := analysis.ExtractWindow(point, readings, radiusHours)
		if err != nil {
			return fileResult{}, err
		}
		res.windows = append(res.windows, window)
	}
	return res, nil
}

func (a *App) readDataFile(df config.DataFile) ([]gauge.Reading, error) {
	if df.Year > 0 {
		return gauge.ReadWeeklyFormat(df.Path, df.Year, true)
	}
	return gauge.ReadGaugeFile(df.Path)
}

// buildReadingSets collects the reading sets worth persisting: one per
// critical point window, plus one around each missed slide so those periods
// can be plotted too.
func (a *App) buildReadingSets(results []fileResult, outcomes []analysis.Outcome) []storage.ReadingSet {
	var sets []storage.ReadingSet
	for _, res := range results {
		for _, window := range res.windows {
			sets = append(sets, storage.ReadingSet{
				Label:    "critical_" + window.Anchor.Time.Format("20060102T1504"),
				Anchor:   window.Anchor,
				Readings: window.Readings,
			})
		}
	}

	for _, outcome := range outcomes {
		if outcome.Kind != analysis.OutcomeFalseNegative {
			continue
		}
		for _, res := range results {
			anchor, ok := nearestReading(res.readings, outcome.Event.Time)
			if !ok {
				continue
			}
			window, err := analysis.ExtractWindow(anchor, res.readings, a.cfg.Thresholds.WindowRadiusHours)
			if err != nil {
				continue
			}
			sets = append(sets, storage.ReadingSet{
				Label:    "slide_" + anchor.Time.Format("20060102T1504"),
				Anchor:   anchor,
				Readings: window.Readings,
			})
			break
		}
	}
	return sets
}

// nearestReading returns the reading closest in time to t, if t falls within
// the series range.
func nearestReading(readings []gauge.Reading, t time.Time) (gauge.Reading, bool) {
	if len(readings) == 0 || t.Before(readings[0].Time) || t.After(readings[len(readings)-1].Time) {
		return gauge.Reading{}, false
	}
	idx := sort.Search(len(readings), func(i int) bool {
		return !readings[i].Time.Before(t)
	})
	if idx == len(readings) {
		return readings[len(readings)-1], true
	}
	if idx == 0 {
		return readings[0], true
	}
	if t.Sub(readings[idx-1].Time) <= readings[idx].Time.Sub(t) {
		return readings[idx-1], true
	}
	return readings[idx], true
}

// Run executes the complete historical analysis: analyze, persist reading
// sets, and write the summary report.
func (a *App) Run(ctx context.Context) error {
	params := analysis.DetectorParams{
		RiseCritical:  a.cfg.Thresholds.RiseCritical,
		RateCritical:  a.cfg.Thresholds.RateCritical,
		DebounceHours: a.cfg.Thresholds.DebounceHours,
		FloorHeight:   a.cfg.Thresholds.FloorHeight,
	}

	result, err := a.Analyze(ctx, params, a.cfg.Thresholds.WindowRadiusHours)
	if err != nil {
		return err
	}

	if err := a.persist(ctx, result); err != nil {
		return err
	}

	report.WriteSummary(os.Stdout, result.Summary)
	return a.writeSummaryJSON(result.Summary)
}

// RunCached re-runs classification over previously cached reading sets
// instead of parsing the raw data files.
func (a *App) RunCached(ctx context.Context) error {
	cache, err := storage.OpenCache(a.cfg.CacheDB, a.logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	sets, err := cache.LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return fmt.Errorf("no cached reading sets in %s", a.cfg.CacheDB)
	}
	a.logger.Infof("Loaded %d cached reading sets", len(sets))

	knownSlides, err := slides.LoadCatalog(a.cfg.SlidesFile)
	if err != nil {
		return err
	}

	agg := analysis.NewAggregator()
	var windows []analysis.Window
	for _, set := range sets {
		agg.AddSeries(set.Readings)
		windows = append(windows, analysis.Window{Anchor: set.Anchor, Readings: set.Readings})
	}

	outcomes, stats := analysis.Classify(windows, knownSlides, agg.AnalyzedRange())
	agg.AddOutcomes(outcomes, stats)

	report.WriteSummary(os.Stdout, agg.Summarize())
	return nil
}

func (a *App) persist(ctx context.Context, result *RunResult) error {
	if a.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, set := range result.ReadingSets {
		if err := storage.SaveReadingSet(a.cfg.OutputDir, set); err != nil {
			return err
		}
	}

	if a.cfg.CacheDB != "" {
		cache, err := storage.OpenCache(a.cfg.CacheDB, a.logger)
		if err != nil {
			return err
		}
		defer cache.Close()
		for _, set := range result.ReadingSets {
			if err := cache.Save(ctx, set); err != nil {
				return err
			}
		}
	}
	a.logger.Infof("Persisted %d reading sets to %s", len(result.ReadingSets), a.cfg.OutputDir)
	return nil
}

func (a *App) writeSummaryJSON(summary analysis.Summary) error {
	if a.cfg.OutputDir == "" {
		return nil
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	path := filepath.Join(a.cfg.OutputDir, "summary.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
