// Package biquad provides second-order IIR filter sections and cascades.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Sections are cascaded via
// [Chain] for higher-order designs such as the Butterworth high- and
// low-pass filters used to condition ECG leads.
//
// Besides plain processing, sections and chains can be primed with the
// steady-state delay line for a constant input ([Section.SetSteadyState],
// [Chain.SetSteadyState]). Forward-backward filtering relies on this to
// suppress the start-up transient at the signal edges.
//
// Coefficient design lives in dsp/filter/design/pass.
package biquad
