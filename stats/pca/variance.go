package pca

// VarianceReport summarizes how much variance the leading components capture.
type VarianceReport struct {
	Ratios     []float64 `json:"ratios"`
	Cumulative []float64 `json:"cumulative"`
	Total      float64   `json:"total"`
}

// Cumulative returns the running sum of ratios. The result has the same
// length as ratios and never decreases for non-negative input.
func Cumulative(ratios []float64) []float64 {
	out := make([]float64, len(ratios))
	sum := 0.0
	for i, r := range ratios {
		sum += r
		out[i] = sum
	}
	return out
}

// Report builds the variance summary of a fitted model.
func Report(m *Model) VarianceReport {
	ratios := append([]float64(nil), m.ExplainedVarianceRatio...)
	cum := Cumulative(ratios)
	total := 0.0
	if len(cum) > 0 {
		total = cum[len(cum)-1]
	}
	return VarianceReport{Ratios: ratios, Cumulative: cum, Total: total}
}

// ComponentsFor returns the smallest number of components whose cumulative
// ratio reaches threshold, or 0 if the report never reaches it.
func (r VarianceReport) ComponentsFor(threshold float64) int {
	for i, c := range r.Cumulative {
		if c >= threshold {
			return i + 1
		}
	}
	return 0
}
