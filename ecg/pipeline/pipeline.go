// Package pipeline runs the beat extraction and PCA analysis over a record
// database.
//
// A run discovers records, then loads, filters and segments them on a
// bounded worker pool. Per-record results are merged in discovery order, so
// the outcome does not depend on the number of workers. The merged beats
// are balanced per class, aggregated into one matrix and reduced with PCA.
//
// Records that cannot be decoded, are too short to filter or lack the
// configured lead are skipped and reported. Configuration errors, a missing
// database and failures after segmentation end the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-ecg/ecg"
	"github.com/cwbudde/algo-ecg/ecg/beat"
	"github.com/cwbudde/algo-ecg/ecg/cache"
	"github.com/cwbudde/algo-ecg/ecg/filter"
	"github.com/cwbudde/algo-ecg/measure/bandpower"
	"github.com/cwbudde/algo-ecg/stats/pca"
)

// RecordSource lists and loads records. *wfdb.Database implements it.
type RecordSource interface {
	Records(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (*ecg.Record, []ecg.Annotation, error)
}

// VersionedSource is a RecordSource that can identify the stored content of
// a record. The version becomes part of the cache key, so a record rewritten
// in place is segmented again. *wfdb.Database implements it.
type VersionedSource interface {
	RecordSource
	Version(ctx context.Context, name string) (string, error)
}

// Pipeline holds everything a run needs. It keeps no state between runs
// apart from what the optional cache stores.
type Pipeline struct {
	cfg         Config
	src         RecordSource
	seg         *beat.Segmenter
	log         *slog.Logger
	metrics     *Metrics
	cache       *cache.Store
	fingerprint uint64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for progress and skipped records.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCache reuses per-record segmentation results stored in s and stores
// new ones there.
func WithCache(s *cache.Store) Option {
	return func(p *Pipeline) { p.cache = s }
}

// New validates cfg and returns a pipeline reading from src.
func New(cfg Config, src RecordSource, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	labels, err := cfg.LabelTable()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	fp, err := cache.Fingerprint(cfg.segmentKey())
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:         cfg,
		src:         src,
		seg:         &beat.Segmenter{Left: cfg.WindowLeft, Right: cfg.WindowRight, Labels: labels},
		log:         slog.Default(),
		fingerprint: fp,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the validated configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run executes the whole analysis. On failures after segmentation the
// returned Result is non-nil and carries the Report gathered so far.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ds, rep, err := p.Segment(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{Report: rep}

	var balanced *beat.Dataset
	switch p.cfg.Sampling {
	case SamplingRandom:
		balanced = ds.Sample(p.cfg.ClassCap, p.cfg.Seed)
	default:
		balanced = ds.Cap(p.cfg.ClassCap)
	}
	rep.Retained = balanced.Counts()
	p.log.Info("classes balanced", slog.String("retained", rep.Retained.String()))

	if err := balanced.Require(p.cfg.RequiredClasses...); err != nil {
		return res, err
	}

	tm, err := beat.Aggregate(balanced)
	if err != nil {
		return res, err
	}
	res.Matrix = tm
	rep.Rows, rep.Window = len(tm.Rows), tm.Cols

	k := p.cfg.NComponents
	if len(tm.Rows) < k {
		return res, fmt.Errorf("%w: %d beats for %d components: %w",
			beat.ErrInsufficientData, len(tm.Rows), k, pca.ErrDimensionMismatch)
	}
	model, err := pca.Fit(tm.Rows, k)
	if err != nil {
		return res, err
	}
	res.Model = model

	for _, c := range beat.Classes {
		proj, err := model.Transform(tm.Class(c))
		if err != nil {
			return res, fmt.Errorf("pipeline: projecting class %s: %w", c, err)
		}
		res.Projections[c] = proj
	}
	res.Variance = pca.Report(model)
	p.metrics.observeModel(len(tm.Rows), res.Variance.Total)

	p.log.Info("model fitted",
		slog.Int("rows", len(tm.Rows)),
		slog.Int("components", k),
		slog.Float64("explained", res.Variance.Total))
	return res, nil
}

// outcome is the private result slot of one record.
type outcome struct {
	report RecordReport
	beats  *beat.Dataset
}

// Segment discovers, loads, filters and segments every record and merges
// the beats in discovery order.
func (p *Pipeline) Segment(ctx context.Context) (*beat.Dataset, *Report, error) {
	names, err := p.src.Records(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("pipeline: %w", ErrNoRecords)
	}

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]outcome, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := p.processRecord(gctx, name)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	// errgroup cancels gctx only on error; a parent cancelled while the
	// last workers finished still has to stop the run.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	ds := &beat.Dataset{}
	rep := &Report{Records: make([]RecordReport, len(names)), Window: p.cfg.Window()}
	for i, out := range outcomes {
		rep.Records[i] = out.report
		if out.beats != nil {
			ds.Merge(out.beats)
		}
		rep.Stats.Add(out.report.Stats)
	}
	rep.Segmented = ds.Counts()

	p.log.Info("segmentation done",
		slog.Int("records", len(names)),
		slog.Int("skipped", len(rep.SkippedRecords())),
		slog.String("beats", rep.Segmented.String()),
		slog.Int("boundary_skips", rep.Stats.BoundarySkips),
		slog.Int("unmapped", rep.Stats.UnmappedTotal()))
	return ds, rep, nil
}

// cachedRecord is the stored form of a segmented record.
type cachedRecord struct {
	Beats         [beat.NumClasses][][]float64
	Stats         beat.Stats
	LowFreqBefore float64
	LowFreqAfter  float64
}

func (o *outcome) fill(c cachedRecord) {
	o.beats = &beat.Dataset{}
	for _, cls := range beat.Classes {
		for _, b := range c.Beats[cls] {
			o.beats.Append(cls, b)
		}
	}
	o.report.Beats = o.beats.Counts()
	o.report.Stats = c.Stats
	o.report.LowFreqBefore, o.report.LowFreqAfter = c.LowFreqBefore, c.LowFreqAfter
}

// processRecord returns an error only for failures that end the run. Data
// errors are stored in the report of the record.
func (p *Pipeline) processRecord(ctx context.Context, name string) (outcome, error) {
	start := time.Now()
	out := outcome{report: RecordReport{Name: name}}

	key := p.cacheKey(ctx, name)
	if key != nil {
		var c cachedRecord
		ok, err := p.cache.Get(key, &c)
		if err != nil {
			p.log.Warn("cache lookup failed", slog.String("record", name), slog.Any("error", err))
		}
		if ok {
			out.fill(c)
			out.report.Cached = true
			p.finishRecord(out.report, start)
			return out, nil
		}
	}

	c, err := p.segmentRecord(ctx, name)
	if err != nil {
		if isFatal(ctx, err) {
			return out, err
		}
		out.report.Err = err
		p.metrics.observeRecord(statusSkipped, time.Since(start))
		p.log.Warn("record skipped", slog.String("record", name), slog.Any("error", err))
		return out, nil
	}

	out.fill(c)

	if key != nil {
		if err := p.cache.Put(key, c); err != nil {
			p.log.Warn("cache store failed", slog.String("record", name), slog.Any("error", err))
		}
	}
	p.finishRecord(out.report, start)
	return out, nil
}

// cacheKey returns the cache key of record name, or nil when the cache is
// disabled or the record version cannot be determined.
func (p *Pipeline) cacheKey(ctx context.Context, name string) []byte {
	if p.cache == nil {
		return nil
	}
	id := name
	if vs, ok := p.src.(VersionedSource); ok {
		v, err := vs.Version(ctx, name)
		if err != nil {
			p.log.Warn("record version unknown, cache bypassed", slog.String("record", name), slog.Any("error", err))
			return nil
		}
		id = name + "\x00" + v
	}
	return cache.Key(p.fingerprint, id)
}

func (p *Pipeline) finishRecord(r RecordReport, start time.Time) {
	status := statusProcessed
	if r.Cached {
		status = statusCached
	}
	p.metrics.observeRecord(status, time.Since(start))
	p.metrics.observeSegments(r.Beats, r.Stats)
	p.log.Info("record segmented",
		slog.String("record", r.Name),
		slog.Bool("cached", r.Cached),
		slog.Int("beats", r.Beats.Total()),
		slog.Int("boundary_skips", r.Stats.BoundarySkips))
}

// segmentRecord loads, filters and segments one record.
func (p *Pipeline) segmentRecord(ctx context.Context, name string) (cachedRecord, error) {
	var c cachedRecord

	rec, anns, err := p.src.Load(ctx, name)
	if err != nil {
		return c, err
	}
	lead, err := rec.Lead(p.cfg.Lead)
	if err != nil {
		return c, err
	}

	bp, err := filter.NewBandpassConfig(rec.SampleRate, p.cfg.Filter())
	if err != nil {
		return c, fmt.Errorf("record %s: %w", name, err)
	}
	filtered, err := bp.Apply(lead)
	if err != nil {
		return c, fmt.Errorf("record %s: %w", name, err)
	}

	if p.cfg.QualityCheck {
		if c.LowFreqBefore, err = bandpower.Fraction(lead, rec.SampleRate, 0, p.cfg.HighpassHz); err != nil {
			return c, fmt.Errorf("record %s: quality check: %w", name, err)
		}
		if c.LowFreqAfter, err = bandpower.Fraction(filtered, rec.SampleRate, 0, p.cfg.HighpassHz); err != nil {
			return c, fmt.Errorf("record %s: quality check: %w", name, err)
		}
	}

	ds, st := p.seg.Segment(filtered, anns)
	for _, cls := range beat.Classes {
		c.Beats[cls] = ds.Beats(cls)
	}
	c.Stats = st
	return c, nil
}

// isFatal reports whether a record error must end the run: cancellation
// and filter settings that cannot be designed.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, filter.ErrInvalidFilterConfiguration)
}
