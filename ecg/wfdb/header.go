// Package wfdb reads records in the PhysioNet WFDB layout: a text header
// (.hea) that describes one or more signal files (.dat) and a binary MIT
// annotation file per annotator (.atr by default).
//
// Only single-segment records with signal formats 16, 80 and 212 are
// supported, which covers the MIT-BIH family of databases.
package wfdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultSampleRate is used when the header omits the sampling frequency.
const DefaultSampleRate = 250.0

// DefaultGain is the ADC gain in units per physical unit when the header
// omits it or gives zero.
const DefaultGain = 200.0

var (
	// ErrMalformedHeader reports a header line that cannot be parsed.
	ErrMalformedHeader = errors.New("wfdb: malformed header")
	// ErrUnsupportedFormat reports a signal format or record layout this
	// package does not decode.
	ErrUnsupportedFormat = errors.New("wfdb: unsupported format")
)

// Header is the parsed content of a .hea file.
type Header struct {
	Name       string
	SampleRate float64
	// NumSamples is the number of samples per signal, or 0 when the header
	// leaves it to the signal file length.
	NumSamples int
	Signals    []SignalSpec
}

// SignalSpec describes one signal line of a header.
type SignalSpec struct {
	File        string
	Format      int
	ByteOffset  int
	Gain        float64
	Baseline    int
	Units       string
	ADCRes      int
	ADCZero     int
	InitValue   int
	Checksum    int
	BlockSize   int
	Description string
}

// Physical converts a raw ADC value to physical units.
func (s SignalSpec) Physical(adu int) float64 {
	return float64(adu-s.Baseline) / s.Gain
}

// ParseHeader reads a single-segment header. Comment lines (starting with
// '#') and blank lines are ignored.
func ParseHeader(r io.Reader) (*Header, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("wfdb: reading header: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty header", ErrMalformedHeader)
	}

	h, nsig, err := parseRecordLine(lines[0])
	if err != nil {
		return nil, err
	}
	if len(lines)-1 < nsig {
		return nil, fmt.Errorf("%w: %d signal lines, record line declares %d", ErrMalformedHeader, len(lines)-1, nsig)
	}
	h.Signals = make([]SignalSpec, nsig)
	for i := range nsig {
		s, err := parseSignalLine(lines[1+i])
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
		h.Signals[i] = s
	}
	return h, nil
}

// parseRecordLine parses "name[/nseg] nsig [fs[/counterfreq[(base)]] [nsamp [time [date]]]]".
func parseRecordLine(line string) (*Header, int, error) {
	f := strings.Fields(line)
	if len(f) < 2 {
		return nil, 0, fmt.Errorf("%w: record line %q", ErrMalformedHeader, line)
	}
	h := &Header{Name: f[0], SampleRate: DefaultSampleRate}
	if strings.Contains(f[0], "/") {
		return nil, 0, fmt.Errorf("%w: multi-segment record %q", ErrUnsupportedFormat, f[0])
	}
	nsig, err := strconv.Atoi(f[1])
	if err != nil || nsig < 0 {
		return nil, 0, fmt.Errorf("%w: signal count %q", ErrMalformedHeader, f[1])
	}
	if len(f) > 2 {
		fs := f[2]
		if i := strings.IndexAny(fs, "/("); i >= 0 {
			fs = fs[:i]
		}
		v, err := strconv.ParseFloat(fs, 64)
		if err != nil || !(v > 0) {
			return nil, 0, fmt.Errorf("%w: sampling frequency %q", ErrMalformedHeader, f[2])
		}
		h.SampleRate = v
	}
	if len(f) > 3 {
		n, err := strconv.Atoi(f[3])
		if err != nil || n < 0 {
			return nil, 0, fmt.Errorf("%w: sample count %q", ErrMalformedHeader, f[3])
		}
		h.NumSamples = n
	}
	return h, nsig, nil
}

// parseSignalLine parses
// "file format[xspf][:skew][+offset] [gain[(baseline)][/units] [adcres [adczero [initval [checksum [blocksize [desc...]]]]]]]".
func parseSignalLine(line string) (SignalSpec, error) {
	f := strings.Fields(line)
	if len(f) < 2 {
		return SignalSpec{}, fmt.Errorf("%w: signal line %q", ErrMalformedHeader, line)
	}
	s := SignalSpec{File: f[0], Gain: DefaultGain, Units: "mV"}

	format, err := parseFormat(f[1], &s)
	if err != nil {
		return SignalSpec{}, err
	}
	s.Format = format

	baselineSet := false
	if len(f) > 2 {
		baselineSet, err = parseGain(f[2], &s)
		if err != nil {
			return SignalSpec{}, err
		}
	}
	ints := []*int{&s.ADCRes, &s.ADCZero, &s.InitValue, &s.Checksum, &s.BlockSize}
	for i, dst := range ints {
		if len(f) <= 3+i {
			break
		}
		v, err := strconv.Atoi(f[3+i])
		if err != nil {
			return SignalSpec{}, fmt.Errorf("%w: field %d %q", ErrMalformedHeader, 3+i, f[3+i])
		}
		*dst = v
	}
	if !baselineSet {
		s.Baseline = s.ADCZero
	}
	if len(f) > 8 {
		s.Description = strings.Join(f[8:], " ")
	}
	return s, nil
}

func parseFormat(field string, s *SignalSpec) (int, error) {
	spec := field
	if i := strings.IndexByte(spec, '+'); i >= 0 {
		off, err := strconv.Atoi(spec[i+1:])
		if err != nil || off < 0 {
			return 0, fmt.Errorf("%w: byte offset in %q", ErrMalformedHeader, field)
		}
		s.ByteOffset = off
		spec = spec[:i]
	}
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		spec = spec[:i]
	}
	if i := strings.IndexByte(spec, 'x'); i >= 0 {
		if spec[i+1:] != "1" {
			return 0, fmt.Errorf("%w: multiple samples per frame in %q", ErrUnsupportedFormat, field)
		}
		spec = spec[:i]
	}
	format, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("%w: format %q", ErrMalformedHeader, field)
	}
	switch format {
	case 16, 80, 212:
		return format, nil
	default:
		return 0, fmt.Errorf("%w: signal format %d", ErrUnsupportedFormat, format)
	}
}

// parseGain parses "gain[(baseline)][/units]" and reports whether a
// baseline was given.
func parseGain(field string, s *SignalSpec) (bool, error) {
	spec := field
	if i := strings.IndexByte(spec, '/'); i >= 0 {
		s.Units = spec[i+1:]
		spec = spec[:i]
	}
	baselineSet := false
	if i := strings.IndexByte(spec, '('); i >= 0 {
		j := strings.IndexByte(spec, ')')
		if j < i {
			return false, fmt.Errorf("%w: gain %q", ErrMalformedHeader, field)
		}
		b, err := strconv.Atoi(spec[i+1 : j])
		if err != nil {
			return false, fmt.Errorf("%w: baseline in %q", ErrMalformedHeader, field)
		}
		s.Baseline = b
		baselineSet = true
		spec = spec[:i]
	}
	g, err := strconv.ParseFloat(spec, 64)
	if err != nil || g < 0 {
		return false, fmt.Errorf("%w: gain %q", ErrMalformedHeader, field)
	}
	if g > 0 {
		s.Gain = g
	}
	return baselineSet, nil
}
