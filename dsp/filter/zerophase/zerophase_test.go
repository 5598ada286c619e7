package zerophase

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ecg/dsp/filter/biquad"
	"github.com/cwbudde/algo-ecg/dsp/filter/design/pass"
	"github.com/cwbudde/algo-ecg/internal/testutil"
)

// twoTap is y = (x[n] + x[n-1]) / 2; run forward and backward it becomes the
// symmetric kernel [0.25 0.5 0.25].
var twoTap = []biquad.Coefficients{{B0: 0.5, B1: 0.5}}

func TestDefaultPadLen(t *testing.T) {
	tests := []struct {
		order int
		want  int
	}{
		{1, 6}, {2, 9}, {3, 12}, {4, 15}, {5, 18},
	}
	for _, tc := range tests {
		got := DefaultPadLen(pass.ButterworthLP(20, tc.order, 360))
		if got != tc.want {
			t.Fatalf("order %d: pad length %d, want %d", tc.order, got, tc.want)
		}
	}
}

func TestExtend_Even(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	got := extend(x, 2, PadEven)
	want := []float64{3, 2, 1, 2, 3, 4, 5, 4, 3}
	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

func TestExtend_OddAndConstant(t *testing.T) {
	x := []float64{1, 2, 4}
	testutil.RequireSliceNearlyEqual(t, extend(x, 1, PadOdd), []float64{0, 1, 2, 4, 6}, 0)
	testutil.RequireSliceNearlyEqual(t, extend(x, 2, PadConstant), []float64{1, 1, 1, 2, 4, 4, 4}, 0)
}

func TestFilter_SymmetricKernel(t *testing.T) {
	x := []float64{0, 1, 4, 2, -3, 5, 7, 1, 0, 2, 6, -1, 3, 2, 8}

	got, err := Filter(twoTap, x)
	if err != nil {
		t.Fatal(err)
	}

	n := len(x)
	at := func(i int) float64 {
		switch {
		case i < 0:
			return x[-i]
		case i >= n:
			return x[2*(n-1)-i]
		}
		return x[i]
	}
	want := make([]float64, n)
	for i := range want {
		want[i] = 0.25*at(i-1) + 0.5*at(i) + 0.25*at(i+1)
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestFilter_PreservesLengthAndInput(t *testing.T) {
	hp := pass.ButterworthHP(0.5, 3, 360)
	x := testutil.DeterministicNoise(7, 1, 1000)
	orig := append([]float64(nil), x...)

	y, err := Filter(hp, x)
	if err != nil {
		t.Fatal(err)
	}
	if len(y) != len(x) {
		t.Fatalf("length %d, want %d", len(y), len(x))
	}
	testutil.RequireFinite(t, y)
	testutil.RequireSliceNearlyEqual(t, x, orig, 0)
}

func TestFilter_ConstantSignal(t *testing.T) {
	x := testutil.DC(1.5, 2000)

	lp, err := Filter(pass.ButterworthLP(20, 3, 360), x)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, lp, x, 1e-9)

	hp, err := Filter(pass.ButterworthHP(0.5, 3, 360), x)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, hp, testutil.DC(0, len(x)), 1e-9)
}

func TestFilter_PassbandSineHasNoPhaseShift(t *testing.T) {
	const fs = 360.0
	x := testutil.DeterministicSine(5, fs, 1, 3600)

	y, err := Filter(pass.ButterworthLP(20, 3, fs), x)
	if err != nil {
		t.Fatal(err)
	}

	// |H(5 Hz)|^4 is 0.99954, so the interior tracks the input closely and in phase.
	for i := 360; i < len(x)-360; i++ {
		if d := math.Abs(y[i] - x[i]); d > 2e-3 {
			t.Fatalf("sample %d: |y-x|=%v", i, d)
		}
	}
}

func TestFilter_StopbandSineIsRemoved(t *testing.T) {
	const fs = 360.0
	x := testutil.DeterministicSine(60, fs, 1, 3600)

	y, err := Filter(pass.ButterworthLP(20, 3, fs), x)
	if err != nil {
		t.Fatal(err)
	}
	for i := 360; i < len(x)-360; i++ {
		if math.Abs(y[i]) > 1e-2 {
			t.Fatalf("sample %d: residual %v", i, y[i])
		}
	}
}

func TestFilter_Errors(t *testing.T) {
	if _, err := Filter(nil, []float64{1, 2, 3}); !errors.Is(err, ErrNoSections) {
		t.Fatalf("expected ErrNoSections, got %v", err)
	}

	lp := pass.ButterworthLP(20, 3, 360)
	if _, err := Filter(lp, make([]float64, 12)); !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("expected ErrSignalTooShort, got %v", err)
	}
	if _, err := Filter(lp, make([]float64, 13)); err != nil {
		t.Fatalf("13 samples should be accepted: %v", err)
	}
	if _, err := Filter(lp, make([]float64, 5), WithPadLen(2)); err != nil {
		t.Fatalf("custom pad length: %v", err)
	}
	if _, err := Filter(lp, make([]float64, 3), WithPadType(PadNone)); err != nil {
		t.Fatalf("no padding: %v", err)
	}

	y, err := Filter(lp, nil)
	if err != nil || len(y) != 0 {
		t.Fatalf("empty input: %v, %v", y, err)
	}
}

func TestPadType_String(t *testing.T) {
	if PadEven.String() != "even" || PadNone.String() != "none" || PadType(9).String() != "PadType(9)" {
		t.Fatal("unexpected pad type names")
	}
}
