// Package filter conditions ECG leads before beat extraction.
//
// [Bandpass] removes baseline wander with a Butterworth high-pass and
// high-frequency noise with a Butterworth low-pass. Both stages run
// forward-backward with even edge padding, so the QRS complexes are not
// shifted in time and the output has the input's length.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-ecg/dsp/filter/biquad"
	"github.com/cwbudde/algo-ecg/dsp/filter/design/pass"
	"github.com/cwbudde/algo-ecg/dsp/filter/zerophase"
)

// Defaults of DefaultConfig.
const (
	DefaultHighpassHz = 0.5
	DefaultLowpassHz  = 20.0
	DefaultOrder      = 3
)

var (
	// ErrInvalidFilterConfiguration reports a sampling rate, cutoff or order
	// for which no filter can be designed.
	ErrInvalidFilterConfiguration = errors.New("filter: invalid filter configuration")
	// ErrSignalTooShort is returned for leads shorter than the edge padding.
	ErrSignalTooShort = zerophase.ErrSignalTooShort
)

// Config holds the band edges and the per-stage Butterworth order.
type Config struct {
	HighpassHz float64
	LowpassHz  float64
	Order      int
}

// Option mutates a Config.
type Option func(*Config)

// WithHighpass sets the baseline-removal cutoff in Hz.
func WithHighpass(hz float64) Option {
	return func(cfg *Config) { cfg.HighpassHz = hz }
}

// WithLowpass sets the noise-removal cutoff in Hz.
func WithLowpass(hz float64) Option {
	return func(cfg *Config) { cfg.LowpassHz = hz }
}

// WithOrder sets the Butterworth order of each stage.
func WithOrder(order int) Option {
	return func(cfg *Config) { cfg.Order = order }
}

// DefaultConfig returns 0.5–20 Hz with third-order stages.
func DefaultConfig() Config {
	return Config{
		HighpassHz: DefaultHighpassHz,
		LowpassHz:  DefaultLowpassHz,
		Order:      DefaultOrder,
	}
}

// Validate checks the configuration independently of a sampling rate.
func (c Config) Validate() error {
	switch {
	case c.Order < 1:
		return fmt.Errorf("%w: order %d", ErrInvalidFilterConfiguration, c.Order)
	case !(c.HighpassHz > 0) || math.IsInf(c.HighpassHz, 0):
		return fmt.Errorf("%w: highpass cutoff %v Hz", ErrInvalidFilterConfiguration, c.HighpassHz)
	case !(c.LowpassHz > 0) || math.IsInf(c.LowpassHz, 0):
		return fmt.Errorf("%w: lowpass cutoff %v Hz", ErrInvalidFilterConfiguration, c.LowpassHz)
	case c.HighpassHz >= c.LowpassHz:
		return fmt.Errorf("%w: highpass cutoff %v Hz not below lowpass cutoff %v Hz",
			ErrInvalidFilterConfiguration, c.HighpassHz, c.LowpassHz)
	}
	return nil
}

// Bandpass is a designed high-pass/low-pass pair for one sampling rate.
// It holds no runtime state and is safe for concurrent use.
type Bandpass struct {
	cfg        Config
	sampleRate float64
	highpass   []biquad.Coefficients
	lowpass    []biquad.Coefficients
}

// NewBandpass designs both stages for sampleRate. Cutoffs are checked
// against the Nyquist frequency sampleRate/2.
func NewBandpass(sampleRate float64, opts ...Option) (*Bandpass, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return NewBandpassConfig(sampleRate, cfg)
}

// NewBandpassConfig is NewBandpass with an explicit Config.
func NewBandpassConfig(sampleRate float64, cfg Config) (*Bandpass, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sampling rate %v Hz", ErrInvalidFilterConfiguration, sampleRate)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nyquist := sampleRate / 2
	if cfg.LowpassHz >= nyquist {
		return nil, fmt.Errorf("%w: lowpass cutoff %v Hz at or above Nyquist %v Hz",
			ErrInvalidFilterConfiguration, cfg.LowpassHz, nyquist)
	}

	bp := &Bandpass{
		cfg:        cfg,
		sampleRate: sampleRate,
		highpass:   pass.ButterworthHP(cfg.HighpassHz, cfg.Order, sampleRate),
		lowpass:    pass.ButterworthLP(cfg.LowpassHz, cfg.Order, sampleRate),
	}
	if bp.highpass == nil || bp.lowpass == nil {
		return nil, fmt.Errorf("%w: cannot design order %d at %v Hz", ErrInvalidFilterConfiguration, cfg.Order, sampleRate)
	}
	return bp, nil
}

// SampleRate returns the design sampling rate.
func (b *Bandpass) SampleRate() float64 { return b.sampleRate }

// Config returns the design parameters.
func (b *Bandpass) Config() Config { return b.cfg }

// MinLength returns the shortest signal Apply accepts.
func (b *Bandpass) MinLength() int {
	return max(zerophase.DefaultPadLen(b.highpass), zerophase.DefaultPadLen(b.lowpass)) + 1
}

// Apply returns the high-passed, then low-passed copy of x.
// The input is left untouched.
func (b *Bandpass) Apply(x []float64) ([]float64, error) {
	y, err := zerophase.Filter(b.highpass, x, zerophase.WithPadType(zerophase.PadEven))
	if err != nil {
		return nil, fmt.Errorf("filter: highpass stage: %w", err)
	}
	y, err = zerophase.Filter(b.lowpass, y, zerophase.WithPadType(zerophase.PadEven))
	if err != nil {
		return nil, fmt.Errorf("filter: lowpass stage: %w", err)
	}
	return y, nil
}

// Gain returns the magnitude response of Apply at freqHz. Forward-backward
// filtering squares each stage's magnitude.
func (b *Bandpass) Gain(freqHz float64) float64 {
	hp := biquad.NewChain(b.highpass).MagnitudeSquared(freqHz, b.sampleRate)
	lp := biquad.NewChain(b.lowpass).MagnitudeSquared(freqHz, b.sampleRate)
	return hp * lp
}
