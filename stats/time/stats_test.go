package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ecg/internal/testutil"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		want   Stats
	}{
		{
			name:   "empty",
			signal: nil,
			want:   Stats{},
		},
		{
			name:   "dc",
			signal: testutil.DC(-2, 8),
			want: Stats{
				Length: 8, DC: -2, RMS: 2, Min: -2, Max: -2,
				Peak: 2, CrestFactor: 1,
			},
		},
		{
			name:   "square",
			signal: []float64{1, -1, 1, -1},
			want: Stats{
				Length: 4, RMS: 1, StdDev: 1, Min: -1, MinPos: 1, Max: 1,
				Peak: 1, Range: 2, CrestFactor: 1,
			},
		},
		{
			name:   "silent",
			signal: make([]float64, 3),
			want:   Stats{Length: 3},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(tc.signal)
			if got.Length != tc.want.Length || got.MinPos != tc.want.MinPos || got.MaxPos != tc.want.MaxPos {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			testutil.RequireSliceNearlyEqual(t,
				[]float64{got.DC, got.RMS, got.StdDev, got.Min, got.Max, got.Peak, got.Range, got.CrestFactor},
				[]float64{tc.want.DC, tc.want.RMS, tc.want.StdDev, tc.want.Min, tc.want.Max, tc.want.Peak, tc.want.Range, tc.want.CrestFactor},
				1e-12)
		})
	}
}

func TestRMS_Sine(t *testing.T) {
	x := testutil.DeterministicSine(5, 1000, 3, 1000)
	testutil.RequireNearlyEqual(t, RMS(x), 3/math.Sqrt2, 1e-9)
	testutil.RequireNearlyEqual(t, DC(x), 0, 1e-9)
	if RMS(nil) != 0 || DC(nil) != 0 {
		t.Fatal("empty signal")
	}
}
