// Package pca implements principal component analysis for row-major
// sample matrices.
//
// [Fit] centers the columns, decomposes the centered matrix with a singular
// value decomposition and keeps the leading K directions. Features are not
// scaled. [Model.Transform] projects any matrix with the fitted number of
// columns onto those directions, so a model fitted on pooled data can
// project each subgroup separately.
package pca

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDimensionMismatch reports a component count outside
	// [1, min(samples, features)] or rows of the wrong length.
	ErrDimensionMismatch = errors.New("pca: dimension mismatch")
	// ErrInsufficientSamples is returned when fewer than two rows are fitted.
	ErrInsufficientSamples = errors.New("pca: at least two samples required")
	// ErrDecomposition is returned when the SVD does not converge.
	ErrDecomposition = errors.New("pca: decomposition failed")
)

// Model is a fitted projection.
type Model struct {
	// Components holds K unit-length directions of length NFeatures, in
	// order of decreasing explained variance. Each direction's largest
	// magnitude loading is positive.
	Components [][]float64 `json:"components"`
	// Mean is the per-feature mean subtracted before projection.
	Mean []float64 `json:"mean"`
	// ExplainedVariance is the variance of the data along each component
	// (squared singular value divided by n-1).
	ExplainedVariance []float64 `json:"explained_variance"`
	// ExplainedVarianceRatio is ExplainedVariance divided by the total
	// variance of the data.
	ExplainedVarianceRatio []float64 `json:"explained_variance_ratio"`
	// TotalVariance is the sum of the per-feature sample variances.
	TotalVariance float64 `json:"total_variance"`
	NSamples      int     `json:"n_samples"`
	NFeatures     int     `json:"n_features"`
}

// K returns the number of components.
func (m *Model) K() int { return len(m.Components) }

// Fit computes a k-component model from rows.
func Fit(rows [][]float64, k int) (*Model, error) {
	n := len(rows)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientSamples, n)
	}
	d := len(rows[0])
	if d == 0 {
		return nil, fmt.Errorf("%w: rows have no features", ErrDimensionMismatch)
	}
	if k < 1 || k > min(n, d) {
		return nil, fmt.Errorf("%w: %d components requested, at most min(%d samples, %d features)",
			ErrDimensionMismatch, k, n, d)
	}

	a, err := dense(rows, d)
	if err != nil {
		return nil, err
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(a, nil); !ok {
		return nil, ErrDecomposition
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	m := &Model{
		Components:             make([][]float64, k),
		Mean:                   make([]float64, d),
		ExplainedVariance:      make([]float64, k),
		ExplainedVarianceRatio: make([]float64, k),
		TotalVariance:          floats.Sum(vars),
		NSamples:               n,
		NFeatures:              d,
	}

	col := make([]float64, n)
	for j := range d {
		mat.Col(col, j, a)
		m.Mean[j] = stat.Mean(col, nil)
	}

	for c := range k {
		v := mat.Col(nil, c, &vecs)
		flipSign(v)
		m.Components[c] = v

		// Rounding can leave tiny negative values for a rank-deficient tail.
		m.ExplainedVariance[c] = math.Max(vars[c], 0)
		if m.TotalVariance > 0 {
			m.ExplainedVarianceRatio[c] = m.ExplainedVariance[c] / m.TotalVariance
		}
	}
	return m, nil
}

// FitTransform fits a model on rows and returns it with the projected rows.
func FitTransform(rows [][]float64, k int) (*Model, [][]float64, error) {
	m, err := Fit(rows, k)
	if err != nil {
		return nil, nil, err
	}
	out, err := m.Transform(rows)
	if err != nil {
		return nil, nil, err
	}
	return m, out, nil
}

// Transform centers rows with the fitted mean and projects them onto the
// components. The result has one row of length K per input row. An empty
// input yields an empty result.
func (m *Model) Transform(rows [][]float64) ([][]float64, error) {
	if len(rows) == 0 {
		return [][]float64{}, nil
	}

	x, err := dense(rows, m.NFeatures)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		floats.Sub(x.RawRowView(i), m.Mean)
	}

	w := mat.NewDense(m.K(), m.NFeatures, nil)
	for c, comp := range m.Components {
		w.SetRow(c, comp)
	}

	var y mat.Dense
	y.Mul(x, w.T())

	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = mat.Row(nil, i, &y)
	}
	return out, nil
}

// dense copies rows into a new n×d matrix, checking every row length.
func dense(rows [][]float64, d int) (*mat.Dense, error) {
	a := mat.NewDense(len(rows), d, nil)
	for i, r := range rows {
		if len(r) != d {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(r), d)
		}
		a.SetRow(i, r)
	}
	return a, nil
}

// flipSign makes the largest-magnitude entry of v positive so repeated fits
// return identical directions.
func flipSign(v []float64) {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	if v[best] < 0 {
		floats.Scale(-1, v)
	}
}
