// Package ecg defines the record and annotation types shared by the readers,
// the beat segmenter and the batch pipeline.
package ecg

import (
	"errors"
	"fmt"
)

// ErrLeadOutOfRange is returned when a record has no lead at the requested index.
var ErrLeadOutOfRange = errors.New("ecg: lead index out of range")

// Record is a decoded multi-lead recording. Leads hold physical units
// (typically mV) and share the sampling rate. A Record is not modified after
// it has been read.
type Record struct {
	Name       string
	SampleRate float64
	Leads      [][]float64
	LeadNames  []string
	Units      []string
}

// NumSamples returns the length of the first lead, or 0 for an empty record.
func (r *Record) NumSamples() int {
	if len(r.Leads) == 0 {
		return 0
	}
	return len(r.Leads[0])
}

// Lead returns the samples of lead i.
func (r *Record) Lead(i int) ([]float64, error) {
	if i < 0 || i >= len(r.Leads) {
		return nil, fmt.Errorf("%w: %d of %d in record %q", ErrLeadOutOfRange, i, len(r.Leads), r.Name)
	}
	return r.Leads[i], nil
}

// Annotation marks a beat (or another event) at a sample index with a
// single-token symbol such as "N" or "V".
type Annotation struct {
	Sample int
	Symbol string
	Aux    string
}
