// Package spectrum turns complex FFT output into real-valued spectra.
package spectrum

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

// Power returns |X[k]|^2 for each complex spectrum bin. Scratch buffers are
// pooled, so in steady state this allocates only the output slice.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	vecmath.Power(out, re, im)
	scratchPool.Put(buf)
	return out
}

// Magnitude returns |X[k]| for each complex spectrum bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	vecmath.Magnitude(out, re, im)
	scratchPool.Put(buf)
	return out
}

// OneSided folds a full-length power spectrum of a real signal onto bins
// 0..n/2, doubling every bin except DC and (for even n) Nyquist.
func OneSided(power []float64) []float64 {
	n := len(power)
	if n == 0 {
		return nil
	}
	half := n/2 + 1
	out := make([]float64, half)
	copy(out, power[:half])
	for k := 1; k < half; k++ {
		if n%2 == 0 && k == n/2 {
			continue
		}
		out[k] *= 2
	}
	return out
}
