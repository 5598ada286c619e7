// Package zerophase runs IIR cascades forward and backward so the combined
// response has zero phase and a squared magnitude.
//
// The signal is extended at both ends before filtering and each pass starts
// from the steady state of its first input sample, which keeps edge
// transients out of the returned samples. With [PadEven] and the default pad
// length this reproduces the classic filtfilt routine sample for sample.
package zerophase

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ecg/dsp/filter/biquad"
)

var (
	// ErrSignalTooShort is returned when the signal is not longer than the pad length.
	ErrSignalTooShort = errors.New("zerophase: signal must be longer than the pad length")
	// ErrNoSections is returned for an empty cascade.
	ErrNoSections = errors.New("zerophase: no filter sections")
)

// PadType selects how the signal is extended beyond its edges.
type PadType int

const (
	// PadEven mirrors the signal about its edge samples, excluding the edge itself.
	PadEven PadType = iota
	// PadOdd mirrors point-symmetrically: 2*x[0] - x[k].
	PadOdd
	// PadConstant repeats the edge sample.
	PadConstant
	// PadNone disables extension.
	PadNone
)

// String returns the pad type name.
func (p PadType) String() string {
	switch p {
	case PadEven:
		return "even"
	case PadOdd:
		return "odd"
	case PadConstant:
		return "constant"
	case PadNone:
		return "none"
	default:
		return fmt.Sprintf("PadType(%d)", int(p))
	}
}

type config struct {
	pad    PadType
	padLen int // < 0 selects the default
}

// Option configures Filter.
type Option func(*config)

// WithPadType selects the edge extension. Default is PadEven.
func WithPadType(p PadType) Option {
	return func(cfg *config) { cfg.pad = p }
}

// WithPadLen overrides the number of samples added at each end.
// Negative values restore the default.
func WithPadLen(n int) Option {
	return func(cfg *config) { cfg.padLen = n }
}

// DefaultPadLen returns 3*(2*len(sections)+1-z), where z is the number of
// first-order sections. For a single-stage Butterworth design this equals
// 3*(order+1).
func DefaultPadLen(sections []biquad.Coefficients) int {
	zb, za := 0, 0
	for _, c := range sections {
		if c.B2 == 0 {
			zb++
		}
		if c.A2 == 0 {
			za++
		}
	}

	return 3 * (2*len(sections) + 1 - min(zb, za))
}

// Filter applies the cascade forward and backward to x and returns a new
// slice of the same length. x is not modified.
func Filter(sections []biquad.Coefficients, x []float64, opts ...Option) ([]float64, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	cfg := config{pad: PadEven, padLen: -1}
	for _, o := range opts {
		o(&cfg)
	}

	padLen := cfg.padLen
	if padLen < 0 {
		padLen = DefaultPadLen(sections)
	}
	if cfg.pad == PadNone {
		padLen = 0
	}

	if len(x) == 0 {
		return []float64{}, nil
	}
	if len(x) <= padLen {
		return nil, fmt.Errorf("%w: %d samples, pad length %d", ErrSignalTooShort, len(x), padLen)
	}

	ext := extend(x, padLen, cfg.pad)
	chain := biquad.NewChain(sections)

	chain.SetSteadyState(ext[0])
	chain.ProcessBlock(ext)

	reverse(ext)
	chain.SetSteadyState(ext[0])
	chain.ProcessBlock(ext)
	reverse(ext)

	out := make([]float64, len(x))
	copy(out, ext[padLen:padLen+len(x)])

	return out, nil
}

// extend returns x with n extra samples on each side. Requires n < len(x).
func extend(x []float64, n int, pad PadType) []float64 {
	last := len(x) - 1
	ext := make([]float64, len(x)+2*n)
	copy(ext[n:], x)

	for i := 0; i < n; i++ {
		// ext[n-1-i] mirrors x[i+1]; ext[n+len(x)+i] mirrors x[last-1-i].
		l, r := x[i+1], x[last-1-i]
		switch pad {
		case PadOdd:
			l = 2*x[0] - l
			r = 2*x[last] - r
		case PadConstant:
			l, r = x[0], x[last]
		}
		ext[n-1-i] = l
		ext[n+len(x)+i] = r
	}

	return ext
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
