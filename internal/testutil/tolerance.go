package testutil

import (
	"math"
	"testing"
)

// RequireNearlyEqual fails t if |got-want| > eps.
func RequireNearlyEqual(t *testing.T, got, want, eps float64) {
	t.Helper()
	if d := math.Abs(got - want); d > eps || math.IsNaN(d) {
		t.Fatalf("got %v, want %v (diff %v > eps %v)", got, want, d, eps)
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], d, eps)
		}
	}
}

// RequireRowsNearlyEqual compares two row-major matrices element-wise.
func RequireRowsNearlyEqual(t *testing.T, got, want [][]float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("row count mismatch: got %d, want %d", len(got), len(want))
	}
	for r := range got {
		if len(got[r]) != len(want[r]) {
			t.Fatalf("row %d: length %d, want %d", r, len(got[r]), len(want[r]))
		}
		for c := range got[r] {
			if d := math.Abs(got[r][c] - want[r][c]); d > eps {
				t.Fatalf("[%d][%d]: got %v, want %v (diff %v > eps %v)", r, c, got[r][c], want[r][c], d, eps)
			}
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}
