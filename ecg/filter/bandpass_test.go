package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ecg/internal/testutil"
)

func TestNewBandpass_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		fs   float64
		opts []Option
	}{
		{"zero rate", 0, nil},
		{"negative rate", -360, nil},
		{"nan rate", math.NaN(), nil},
		{"lowpass at nyquist", 40, []Option{WithLowpass(20)}},
		{"lowpass above nyquist", 30, nil},
		{"zero highpass", 360, []Option{WithHighpass(0)}},
		{"negative lowpass", 360, []Option{WithLowpass(-1)}},
		{"inverted band", 360, []Option{WithHighpass(30), WithLowpass(20)}},
		{"zero order", 360, []Option{WithOrder(0)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBandpass(tc.fs, tc.opts...)
			if !errors.Is(err, ErrInvalidFilterConfiguration) {
				t.Fatalf("expected ErrInvalidFilterConfiguration, got %v", err)
			}
		})
	}
}

func TestNewBandpass_Defaults(t *testing.T) {
	bp, err := NewBandpass(360)
	if err != nil {
		t.Fatal(err)
	}
	if bp.Config() != DefaultConfig() {
		t.Fatalf("config %+v, want %+v", bp.Config(), DefaultConfig())
	}
	if bp.SampleRate() != 360 {
		t.Fatalf("sample rate %v", bp.SampleRate())
	}
	if bp.MinLength() != 13 {
		t.Fatalf("MinLength=%d, want 13", bp.MinLength())
	}
}

func TestBandpass_Gain(t *testing.T) {
	bp, err := NewBandpass(360)
	if err != nil {
		t.Fatal(err)
	}

	// Each cutoff is -3 dB per pass, -6 dB after forward-backward.
	testutil.RequireNearlyEqual(t, bp.Gain(20), 0.5, 0.01)
	testutil.RequireNearlyEqual(t, bp.Gain(0.5), 0.5, 0.01)
	testutil.RequireNearlyEqual(t, bp.Gain(8), 1, 0.01)
	if g := bp.Gain(0.05); g > 1e-5 {
		t.Fatalf("gain at 0.05 Hz = %v", g)
	}
	if g := bp.Gain(60); g > 1e-3 {
		t.Fatalf("gain at 60 Hz = %v", g)
	}
}

func TestBandpass_ApplyRemovesWanderAndKeepsLength(t *testing.T) {
	const fs = 360.0
	clean, peaks := testutil.SyntheticECG(fs, 10800, 180, 288, 0)
	wander, _ := testutil.SyntheticECG(fs, 10800, 180, 288, 0.5)
	for i := range wander {
		wander[i] += 2.0 // electrode offset
	}

	bp, err := NewBandpass(fs)
	if err != nil {
		t.Fatal(err)
	}

	y, err := bp.Apply(wander)
	if err != nil {
		t.Fatal(err)
	}
	if len(y) != len(wander) {
		t.Fatalf("length %d, want %d", len(y), len(wander))
	}
	testutil.RequireFinite(t, y)

	ref, err := bp.Apply(clean)
	if err != nil {
		t.Fatal(err)
	}

	// Away from the edges the wander and offset are gone.
	for i := 1800; i < len(y)-1800; i++ {
		if d := math.Abs(y[i] - ref[i]); d > 0.05 {
			t.Fatalf("sample %d: residual wander %v", i, d)
		}
	}

	// Zero phase: the R peaks stay where they were.
	for _, p := range peaks[2 : len(peaks)-2] {
		best := p
		for i := p - 10; i <= p+10; i++ {
			if y[i] > y[best] {
				best = i
			}
		}
		if best < p-1 || best > p+1 {
			t.Fatalf("R peak moved from %d to %d", p, best)
		}
	}
}

func TestBandpass_ApplyShortSignal(t *testing.T) {
	bp, err := NewBandpass(360)
	if err != nil {
		t.Fatal(err)
	}
	_, err = bp.Apply(make([]float64, bp.MinLength()-1))
	if !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("expected ErrSignalTooShort, got %v", err)
	}
	if _, err := bp.Apply(make([]float64, bp.MinLength())); err != nil {
		t.Fatalf("MinLength samples rejected: %v", err)
	}
}
