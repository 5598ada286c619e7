// Command beatpca extracts heartbeats from a WFDB database, groups them by
// beat class and reports how much of their variance a PCA captures.
//
// Usage:
//
//	beatpca [flags]
//
// Settings come from an optional YAML file (-config); flags given on the
// command line override it.
//
// Examples:
//
//	beatpca -data ./mitdb
//	beatpca -data ./mitdb -components 20 -plot-dir out -model out/model.json
//	beatpca -config beatpca.yaml -workers 8 -cache .beatcache -metrics out/beatpca.prom
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-ecg/ecg/beat"
	"github.com/cwbudde/algo-ecg/ecg/cache"
	"github.com/cwbudde/algo-ecg/ecg/pipeline"
	"github.com/cwbudde/algo-ecg/ecg/plot"
	"github.com/cwbudde/algo-ecg/ecg/wfdb"
)

// Exit codes.
const (
	exitOK    = 0
	exitRun   = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	modelPath  string
	plotDir    string
	metrics    string
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("beatpca", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.modelPath, "model", "", "write the fitted model as JSON to this file")
	fs.StringVar(&o.plotDir, "plot-dir", "", "write scatter.png and variance.png into this directory")
	fs.StringVar(&o.metrics, "metrics", "", "write Prometheus text metrics to this file")
	fs.BoolVar(&o.verbose, "v", false, "log progress per record")

	dataDir := fs.String("data", "", "record database directory (overrides data_dir)")
	pattern := fs.String("pattern", "", "record glob inside the data directory (overrides pattern)")
	components := fs.Int("components", 0, "number of principal components (overrides n_components)")
	classCap := fs.Int("cap", 0, "beats kept per class, negative for all (overrides class_cap)")
	workers := fs.Int("workers", 0, "records processed in parallel (overrides workers)")
	cacheDir := fs.String("cache", "", "segmentation cache directory (overrides cache_dir)")
	sampling := fs.String("sampling", "", "class balancing: first or random (overrides sampling)")
	seed := fs.Uint64("seed", 0, "seed of random sampling (overrides seed)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: beatpca [flags]\n\n")
		fmt.Fprintf(stderr, "Segments annotated beats of a WFDB database and fits a PCA on them.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  beatpca -data ./mitdb\n")
		fmt.Fprintf(stderr, "  beatpca -data ./mitdb -components 20 -plot-dir out\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := pipeline.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(o.configPath); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitUsage
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataDir = *dataDir
		case "pattern":
			cfg.Pattern = *pattern
		case "components":
			cfg.NComponents = *components
		case "cap":
			cfg.ClassCap = *classCap
		case "workers":
			cfg.Workers = *workers
		case "cache":
			cfg.CacheDir = *cacheDir
		case "sampling":
			cfg.Sampling = *sampling
		case "seed":
			cfg.Seed = *seed
		}
	})
	if cfg.DataDir == "" {
		fmt.Fprintf(stderr, "error: no data directory (set -data or data_dir)\n")
		return exitUsage
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := analyze(ctx, cfg, o, logger, stdout); err != nil {
		logger.Error("run failed", slog.Any("error", err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, pipeline.ErrInvalidConfig) {
			return exitUsage
		}
		return exitRun
	}
	return exitOK
}

func analyze(ctx context.Context, cfg pipeline.Config, o options, logger *slog.Logger, stdout io.Writer) error {
	db := wfdb.Open(cfg.DataDir, wfdb.WithPattern(cfg.Pattern), wfdb.WithAnnotator(cfg.Annotator))

	reg := prometheus.NewRegistry()
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(pipeline.NewMetrics(reg)),
	}
	if cfg.CacheDir != "" {
		store, err := cache.Open(cfg.CacheDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing cache", slog.Any("error", err))
			}
		}()
		opts = append(opts, pipeline.WithCache(store))
	}

	p, err := pipeline.New(cfg, db, opts...)
	if err != nil {
		return err
	}
	res, runErr := p.Run(ctx)
	if res != nil {
		if err := printReport(stdout, res); err != nil {
			return err
		}
	}
	if o.metrics != "" {
		if err := prometheus.WriteToTextfile(o.metrics, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if o.modelPath != "" {
		if err := writeModel(o.modelPath, res); err != nil {
			return err
		}
	}
	if o.plotDir != "" {
		if err := writePlots(o.plotDir, res); err != nil {
			return err
		}
	}
	return nil
}

func printReport(w io.Writer, res *pipeline.Result) error {
	rep := res.Report
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Record\tN\tS\tF\tV\tU\tBoundary\tUnmapped\tLF before\tLF after\tStatus\n")
	fmt.Fprintf(tw, "------\t-\t-\t-\t-\t-\t--------\t--------\t---------\t--------\t------\n")
	for _, r := range rep.Records {
		status := "ok"
		switch {
		case r.Skipped():
			status = "skipped: " + r.Err.Error()
		case r.Cached:
			status = "cached"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.4f\t%.4f\t%s\n",
			r.Name,
			r.Beats[beat.N], r.Beats[beat.S], r.Beats[beat.F], r.Beats[beat.V], r.Beats[beat.U],
			r.Stats.BoundarySkips, r.Stats.UnmappedTotal(),
			r.LowFreqBefore, r.LowFreqAfter,
			status)
	}
	fmt.Fprintf(tw, "\n")

	fmt.Fprintf(tw, "Class\tSegmented\tRetained\n")
	fmt.Fprintf(tw, "-----\t---------\t--------\n")
	for _, c := range beat.Classes {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c, rep.Segmented[c], rep.Retained[c])
	}

	if res.Model != nil {
		fmt.Fprintf(tw, "\nComponent\tRatio\tCumulative\n")
		fmt.Fprintf(tw, "---------\t-----\t----------\n")
		for i, r := range res.Variance.Ratios {
			fmt.Fprintf(tw, "%d\t%.6f\t%.6f\n", i+1, r, res.Variance.Cumulative[i])
		}
		fmt.Fprintf(tw, "\nrows\t%d\n", rep.Rows)
		fmt.Fprintf(tw, "window\t%d\n", rep.Window)
		fmt.Fprintf(tw, "explained\t%.6f\n", res.Variance.Total)
		for _, th := range []float64{0.9, 0.95, 0.99} {
			if k := res.Variance.ComponentsFor(th); k > 0 {
				fmt.Fprintf(tw, "components for %.0f%%\t%d\n", th*100, k)
			}
		}
	}
	return tw.Flush()
}

func writeModel(path string, res *pipeline.Result) error {
	data, err := json.MarshalIndent(struct {
		Model    any `json:"model"`
		Variance any `json:"variance"`
	}{res.Model, res.Variance}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

func writePlots(dir string, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if res.Model.K() >= 2 {
		err := plot.WriteFile(filepath.Join(dir, "scatter.png"), func(w io.Writer) error {
			return plot.Scatter(w, res.Projections, plot.WithTitle("PC1 / PC2 by beat class"))
		})
		if err != nil {
			return err
		}
	}
	return plot.WriteFile(filepath.Join(dir, "variance.png"), func(w io.Writer) error {
		return plot.Variance(w, res.Variance, plot.WithTitle("Explained variance"))
	})
}
