// Package plot renders the PCA results as PNG charts.
package plot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/cwbudde/algo-ecg/ecg/beat"
	"github.com/cwbudde/algo-ecg/stats/pca"
)

var (
	// ErrNoData is returned when there is nothing to draw.
	ErrNoData = errors.New("plot: no data")
	// ErrTooFewComponents is returned for a scatter of fewer than two
	// principal components.
	ErrTooFewComponents = errors.New("plot: scatter needs two components")
)

// Class colors of the scatter plot.
var classColors = [beat.NumClasses]drawing.Color{
	beat.N: drawing.ColorRed,
	beat.S: drawing.ColorBlue,
	beat.F: drawing.ColorGreen,
	beat.V: {R: 0, G: 191, B: 191, A: 255},
	beat.U: drawing.ColorBlack,
}

type config struct {
	width, height int
	title         string
}

// Option configures a chart.
type Option func(*config)

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(c *config) { c.width, c.height = width, height }
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

func newConfig(opts []Option) config {
	c := config{width: 800, height: 600}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Scatter draws the first two principal components of every class with
// beats, one colored dot series per class.
func Scatter(w io.Writer, proj [beat.NumClasses][][]float64, opts ...Option) error {
	cfg := newConfig(opts)

	var series []chart.Series
	for _, c := range beat.Classes {
		rows := proj[c]
		if len(rows) == 0 {
			continue
		}
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for i, r := range rows {
			if len(r) < 2 {
				return fmt.Errorf("%w: class %s has %d", ErrTooFewComponents, c, len(r))
			}
			xs[i], ys[i] = r[0], r[1]
		}
		series = append(series, chart.ContinuousSeries{
			Name:    c.String(),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    classColors[c],
			},
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}

	graph := chart.Chart{
		Title:  cfg.title,
		Width:  cfg.width,
		Height: cfg.height,
		XAxis:  chart.XAxis{Name: "PC1"},
		YAxis:  chart.YAxis{Name: "PC2"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("plot: scatter: %w", err)
	}
	return nil
}

// Variance draws the explained variance ratio of each component and the
// cumulative ratio against the component number.
func Variance(w io.Writer, rep pca.VarianceReport, opts ...Option) error {
	cfg := newConfig(opts)
	if len(rep.Ratios) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(rep.Ratios))
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	// A single component has no x extent to scale.
	xRange := &chart.ContinuousRange{Min: 0, Max: float64(len(xs) + 1)}

	graph := chart.Chart{
		Title:  cfg.title,
		Width:  cfg.width,
		Height: cfg.height,
		XAxis:  chart.XAxis{Name: "component", Range: xRange},
		YAxis:  chart.YAxis{Name: "explained variance ratio", Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "cumulative",
				XValues: xs,
				YValues: rep.Cumulative,
				Style:   chart.Style{StrokeColor: drawing.ColorBlue, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "per component",
				XValues: xs,
				YValues: rep.Ratios,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    drawing.ColorRed,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("plot: variance: %w", err)
	}
	return nil
}

// WriteFile renders a chart into the file at path.
func WriteFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render(f)
}
