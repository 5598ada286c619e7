// Package time computes time-domain statistics of a lead.
package time

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds time-domain signal statistics.
type Stats struct {
	Length int
	DC     float64 // mean
	RMS    float64
	StdDev float64 // population
	Min    float64
	MinPos int
	Max    float64
	MaxPos int
	Peak   float64 // max(|max|, |min|)
	Range  float64 // max - min
	// CrestFactor is Peak / RMS, 0 for a silent signal.
	CrestFactor float64
}

// Calculate computes all statistics of signal. An empty signal yields the
// zero Stats.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	s := Stats{Length: n}
	s.MinPos = floats.MinIdx(signal)
	s.MaxPos = floats.MaxIdx(signal)
	s.Min = signal[s.MinPos]
	s.Max = signal[s.MaxPos]
	s.Peak = math.Max(math.Abs(s.Min), math.Abs(s.Max))
	s.Range = s.Max - s.Min

	mean, variance := stat.PopMeanVariance(signal, nil)
	s.DC = mean
	s.StdDev = math.Sqrt(variance)
	s.RMS = RMS(signal)
	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
	}
	return s
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
}

// DC returns the mean of the signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return stat.Mean(signal, nil)
}
