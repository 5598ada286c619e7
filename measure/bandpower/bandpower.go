// Package bandpower estimates how the power of a signal is distributed over
// frequency bands.
//
// The estimate is a single Hann-windowed periodogram of the whole signal,
// zero-padded to a power of two. It is meant for coarse quality checks such
// as "how much of this lead is baseline wander", not for precise spectral
// analysis.
package bandpower

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-ecg/dsp/spectrum"
	"github.com/cwbudde/algo-ecg/dsp/window"
)

var (
	// ErrEmptySignal is returned for a signal without samples.
	ErrEmptySignal = errors.New("bandpower: empty signal")
	// ErrInvalidSampleRate is returned for a non-positive or non-finite
	// sampling rate.
	ErrInvalidSampleRate = errors.New("bandpower: sample rate must be positive")
	// ErrInvalidBand is returned by Fraction for a negative lower edge or
	// an empty band.
	ErrInvalidBand = errors.New("bandpower: invalid band")
)

// Spectrum is a one-sided power spectral density estimate.
type Spectrum struct {
	SampleRate float64
	// Resolution is the bin spacing in Hz.
	Resolution float64
	// Power holds one value per bin from DC to Nyquist.
	Power []float64
}

// Estimate computes the spectrum of x sampled at fs. The mean of x is
// removed first, so a DC offset does not count as low-frequency power.
func Estimate(x []float64, fs float64) (*Spectrum, error) {
	if len(x) == 0 {
		return nil, ErrEmptySignal
	}
	if !(fs > 0) || math.IsInf(fs, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, fs)
	}

	n := nextPow2(len(x))
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	buf := make([]float64, len(x))
	for i, v := range x {
		buf[i] = v - mean
	}
	coeffs := window.Generate(window.TypeHann, len(x), window.WithPeriodic())
	buf, err := window.ApplyCoefficients(buf, coeffs)
	if err != nil {
		return nil, err
	}

	in := make([]complex128, n)
	for i, v := range buf {
		in[i] = complex(v, 0)
	}
	out := make([]complex128, n)

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("bandpower: fft plan of size %d: %w", n, err)
	}
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("bandpower: fft: %w", err)
	}

	psd := spectrum.OneSided(spectrum.Power(out))
	if norm := fs * window.PowerGain(coeffs) * float64(len(x)); norm > 0 {
		for i := range psd {
			psd[i] /= norm
		}
	}
	return &Spectrum{SampleRate: fs, Resolution: fs / float64(n), Power: psd}, nil
}

// Band returns the power in [lo, hi) Hz.
func (s *Spectrum) Band(lo, hi float64) float64 {
	sum := 0.0
	for k, p := range s.Power {
		f := float64(k) * s.Resolution
		if f >= lo && f < hi {
			sum += p
		}
	}
	return sum * s.Resolution
}

// Total returns the power over all bins.
func (s *Spectrum) Total() float64 {
	sum := 0.0
	for _, p := range s.Power {
		sum += p
	}
	return sum * s.Resolution
}

// Fraction returns the share of the power of x that lies in [lo, hi) Hz.
// A signal without power yields 0.
func Fraction(x []float64, fs, lo, hi float64) (float64, error) {
	if lo < 0 || !(hi > lo) {
		return 0, fmt.Errorf("%w: [%v, %v)", ErrInvalidBand, lo, hi)
	}
	s, err := Estimate(x, fs)
	if err != nil {
		return 0, err
	}
	total := s.Total()
	if total == 0 {
		return 0, nil
	}
	return s.Band(lo, hi) / total, nil
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
