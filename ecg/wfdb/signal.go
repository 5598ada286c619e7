package wfdb

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncatedSignal is returned when a signal file holds fewer samples
// than its header declares.
var ErrTruncatedSignal = errors.New("wfdb: truncated signal file")

// DecodeSamples decodes frames of nsig interleaved signals stored in the
// given format. frames is the number of frames to decode; 0 decodes every
// complete frame in data. The result holds one slice of raw ADC values per
// signal.
func DecodeSamples(data []byte, format, nsig, frames int) ([][]int, error) {
	if nsig < 1 {
		return nil, fmt.Errorf("%w: %d signals", ErrMalformedHeader, nsig)
	}
	avail, err := valuesIn(len(data), format)
	if err != nil {
		return nil, err
	}
	if frames == 0 {
		frames = avail / nsig
	}
	total := frames * nsig
	if total > avail {
		return nil, fmt.Errorf("%w: %d samples declared, %d present", ErrTruncatedSignal, total, avail)
	}

	out := make([][]int, nsig)
	for i := range out {
		out[i] = make([]int, frames)
	}
	put := func(k, v int) { out[k%nsig][k/nsig] = v }

	switch format {
	case 16:
		for k := range total {
			put(k, int(int16(binary.LittleEndian.Uint16(data[2*k:]))))
		}
	case 80:
		for k := range total {
			put(k, int(data[k])-128)
		}
	case 212:
		for k := 0; k < total; k += 2 {
			b := data[3*k/2:]
			put(k, signExtend12(int(b[0])|int(b[1]&0x0f)<<8))
			if k+1 < total {
				put(k+1, signExtend12(int(b[2])|int(b[1]&0xf0)<<4))
			}
		}
	}
	return out, nil
}

// EncodeSamples is the inverse of DecodeSamples. All signals must have the
// same length. Values outside the range of the format are truncated to its
// bit width.
func EncodeSamples(signals [][]int, format int) ([]byte, error) {
	nsig := len(signals)
	if nsig == 0 {
		return nil, nil
	}
	frames := len(signals[0])
	for i, s := range signals {
		if len(s) != frames {
			return nil, fmt.Errorf("wfdb: signal %d has %d samples, want %d", i, len(s), frames)
		}
	}
	total := frames * nsig
	at := func(k int) int { return signals[k%nsig][k/nsig] }

	switch format {
	case 16:
		out := make([]byte, 2*total)
		for k := range total {
			binary.LittleEndian.PutUint16(out[2*k:], uint16(int16(at(k))))
		}
		return out, nil
	case 80:
		out := make([]byte, total)
		for k := range total {
			out[k] = byte(at(k) + 128)
		}
		return out, nil
	case 212:
		out := make([]byte, (3*total+1)/2)
		for k := 0; k < total; k += 2 {
			b := out[3*k/2:]
			s0 := at(k)
			b[0] = byte(s0)
			b[1] = byte(s0>>8) & 0x0f
			if k+1 < total {
				s1 := at(k + 1)
				b[1] |= byte(s1>>4) & 0xf0
				b[2] = byte(s1)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: signal format %d", ErrUnsupportedFormat, format)
	}
}

// valuesIn returns how many complete samples n bytes hold.
func valuesIn(n, format int) (int, error) {
	switch format {
	case 16:
		return n / 2, nil
	case 80:
		return n, nil
	case 212:
		return 2 * n / 3, nil
	default:
		return 0, fmt.Errorf("%w: signal format %d", ErrUnsupportedFormat, format)
	}
}

func signExtend12(v int) int {
	if v >= 0x800 {
		return v - 0x1000
	}
	return v
}
