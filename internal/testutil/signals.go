// Package testutil holds deterministic signal generators and tolerance
// assertions shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude]
// with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ramp returns 0, 1, ..., length-1 scaled by step.
func Ramp(step float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = step * float64(i)
	}
	return out
}

// SyntheticECG renders a lead with one P-QRS-T complex every period samples,
// the R peak of the k-th beat at offset + k*period, riding on a slow
// baseline wander of wanderAmp mV at 0.3 Hz. It returns the samples and the
// R-peak positions.
func SyntheticECG(sampleRate float64, length, offset, period int, wanderAmp float64) ([]float64, []int) {
	out := make([]float64, length)
	var peaks []int
	for p := offset; p < length; p += period {
		peaks = append(peaks, p)
	}

	sec := func(n int) float64 { return float64(n) / sampleRate }
	for i := range out {
		out[i] = wanderAmp * math.Sin(2*math.Pi*0.3*sec(i))
	}
	for _, p := range peaks {
		lo := max(0, p-int(0.4*sampleRate))
		hi := min(length, p+int(0.6*sampleRate))
		for i := lo; i < hi; i++ {
			dt := sec(i - p)
			out[i] += 0.12*gauss(dt, -0.18, 0.025) -
				0.10*gauss(dt, -0.025, 0.008) +
				1.00*gauss(dt, 0, 0.010) -
				0.25*gauss(dt, 0.025, 0.010) +
				0.30*gauss(dt, 0.28, 0.045)
		}
	}
	return out, peaks
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}
