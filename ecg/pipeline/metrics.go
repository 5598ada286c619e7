package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/algo-ecg/ecg/beat"
)

// Record outcomes used as the "status" label.
const (
	statusProcessed = "processed"
	statusCached    = "cached"
	statusSkipped   = "skipped"
)

// Metrics counts the work of a pipeline. A nil *Metrics records nothing.
type Metrics struct {
	records       *prometheus.CounterVec
	beats         *prometheus.CounterVec
	boundarySkips prometheus.Counter
	unmapped      *prometheus.CounterVec
	recordSeconds prometheus.Histogram
	rows          prometheus.Gauge
	explained     prometheus.Gauge
}

// NewMetrics registers the pipeline metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "beatpca_records_total",
			Help: "Records handled, by outcome.",
		}, []string{"status"}),
		beats: f.NewCounterVec(prometheus.CounterOpts{
			Name: "beatpca_beats_segmented_total",
			Help: "Beats extracted before class capping, by class.",
		}, []string{"class"}),
		boundarySkips: f.NewCounter(prometheus.CounterOpts{
			Name: "beatpca_boundary_skips_total",
			Help: "Annotations whose window crossed the signal edges.",
		}),
		unmapped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "beatpca_unmapped_annotations_total",
			Help: "Annotations without a beat class, by symbol.",
		}, []string{"symbol"}),
		recordSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "beatpca_record_duration_seconds",
			Help:    "Time to load, filter and segment one record.",
			Buckets: prometheus.DefBuckets,
		}),
		rows: f.NewGauge(prometheus.GaugeOpts{
			Name: "beatpca_training_rows",
			Help: "Rows of the matrix the model was fitted on.",
		}),
		explained: f.NewGauge(prometheus.GaugeOpts{
			Name: "beatpca_explained_variance_ratio",
			Help: "Share of the variance captured by the fitted components.",
		}),
	}
}

func (m *Metrics) observeRecord(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(status).Inc()
	if status != statusSkipped {
		m.recordSeconds.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) observeSegments(counts beat.Counts, st beat.Stats) {
	if m == nil {
		return
	}
	for _, c := range beat.Classes {
		m.beats.WithLabelValues(c.String()).Add(float64(counts[c]))
	}
	m.boundarySkips.Add(float64(st.BoundarySkips))
	for sym, n := range st.Unmapped {
		m.unmapped.WithLabelValues(sym).Add(float64(n))
	}
}

func (m *Metrics) observeModel(rows int, explained float64) {
	if m == nil {
		return
	}
	m.rows.Set(float64(rows))
	m.explained.Set(explained)
}
