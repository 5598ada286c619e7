// Package pass designs high- and low-pass filter cascades.
//
// Designs are returned as biquad coefficient slices that can be fed to
// [biquad.NewChain] or to the zero-phase runner in dsp/filter/zerophase.
// Analog prototypes are mapped with the bilinear transform, pre-warped so the
// digital -3 dB point lands exactly on the requested cutoff.
package pass

import (
	"github.com/cwbudde/algo-ecg/dsp/filter/biquad"
)

// ButterworthLP designs a lowpass Butterworth cascade.
//
// For odd orders, the final section is first-order (B2=A2=0). Invalid
// parameters (order < 1, cutoff outside (0, Nyquist)) yield nil.
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	k, ok := bilinearK(freq, sampleRate)
	if order <= 0 || !ok {
		return nil
	}
	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		sections = append(sections, lowpassSection(k, butterworthQ(order, i)))
	}
	if order%2 != 0 {
		sections = append(sections, firstOrderLP(k))
	}
	return sections
}

// ButterworthHP designs a highpass Butterworth cascade.
//
// For odd orders, the final section is first-order (B2=A2=0). Invalid
// parameters (order < 1, cutoff outside (0, Nyquist)) yield nil.
func ButterworthHP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	k, ok := bilinearK(freq, sampleRate)
	if order <= 0 || !ok {
		return nil
	}
	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		sections = append(sections, highpassSection(k, butterworthQ(order, i)))
	}
	if order%2 != 0 {
		sections = append(sections, firstOrderHP(k))
	}
	return sections
}
