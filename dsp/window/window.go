// Package window generates tapering windows for spectral estimates.
package window

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

var errMismatchedLength = errors.New("window: samples and coefficients must have same length")

func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeHamming:
		return "hamming"
	case TypeBlackman:
		return "blackman"
	default:
		return "unknown"
	}
}

type config struct {
	periodic bool
}

// Option configures window generation.
type Option func(*config)

// WithPeriodic generates the periodic (DFT-even) variant, which is the
// usual choice when the window feeds an FFT.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]float64, length)
	den := float64(length - 1)
	if cfg.periodic {
		den = float64(length)
	}
	for i := range out {
		x := 0.0
		if den > 0 {
			x = float64(i) / den
		}
		out[i] = eval(t, x)
	}
	return out
}

// Apply multiplies buf in place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// ApplyCoefficients multiplies samples with coefficients into a new slice.
func ApplyCoefficients(samples, coeffs []float64) ([]float64, error) {
	if len(samples) != len(coeffs) {
		return nil, errMismatchedLength
	}
	out := make([]float64, len(samples))
	vecmath.MulBlock(out, samples, coeffs)
	return out, nil
}

// PowerGain returns the mean squared coefficient, the factor by which the
// window scales the power of white noise.
func PowerGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range coeffs {
		sum += c * c
	}
	return sum / float64(len(coeffs))
}

// eval returns the window value at normalized position x in [0, 1].
func eval(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(2*math.Pi*x)
	case TypeHamming:
		return 0.54 - 0.46*math.Cos(2*math.Pi*x)
	case TypeBlackman:
		return 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
	default:
		return 1
	}
}
