package pipeline

import (
	"github.com/cwbudde/algo-ecg/ecg/beat"
	"github.com/cwbudde/algo-ecg/stats/pca"
)

// RecordReport describes the outcome of one record.
type RecordReport struct {
	Name   string
	Cached bool
	// Err is set when the record was skipped.
	Err   error
	Beats beat.Counts
	Stats beat.Stats
	// LowFreqBefore and LowFreqAfter are the shares of lead power below the
	// high-pass cutoff before and after filtering. Both are zero when the
	// quality check is off.
	LowFreqBefore float64
	LowFreqAfter  float64
}

// Skipped reports whether the record contributed nothing.
func (r RecordReport) Skipped() bool { return r.Err != nil }

// Report summarizes a run. It is filled progressively, so a run that fails
// after segmentation still returns the counts gathered so far.
type Report struct {
	// Records lists every discovered record in discovery order.
	Records []RecordReport
	// Segmented counts the beats per class before balancing.
	Segmented beat.Counts
	// Retained counts the beats per class after balancing.
	Retained beat.Counts
	// Stats accumulates boundary skips and unmapped symbols of all records.
	Stats beat.Stats
	// Rows is the height of the training matrix; Window its width.
	Rows   int
	Window int
}

// SkippedRecords returns the reports of the records that failed.
func (r *Report) SkippedRecords() []RecordReport {
	var out []RecordReport
	for _, rec := range r.Records {
		if rec.Skipped() {
			out = append(out, rec)
		}
	}
	return out
}

// Result is the output of a complete run.
type Result struct {
	Model *pca.Model
	// Projections holds the projected beats of each class, indexed by
	// beat.Class. Classes without beats have an empty slice.
	Projections [beat.NumClasses][][]float64
	Variance    pca.VarianceReport
	Matrix      *beat.TrainingMatrix
	Report      *Report
}
