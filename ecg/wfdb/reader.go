package wfdb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-ecg/ecg"
)

// DefaultAnnotator is the annotation file extension read by default.
const DefaultAnnotator = "atr"

// Reader loads records and their annotations from a directory.
type Reader struct {
	Dir       string
	Annotator string
}

// NewReader returns a reader for dir using the default annotator.
func NewReader(dir string) *Reader {
	return &Reader{Dir: dir, Annotator: DefaultAnnotator}
}

// ReadHeader parses the header of record name.
func (r *Reader) ReadHeader(name string) (*Header, error) {
	f, err := os.Open(filepath.Join(r.Dir, name+".hea"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := ParseHeader(f)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", name, err)
	}
	return h, nil
}

// ReadRecord reads the header and every signal of record name and converts
// the samples to physical units.
func (r *Reader) ReadRecord(name string) (*ecg.Record, error) {
	h, err := r.ReadHeader(name)
	if err != nil {
		return nil, err
	}
	if len(h.Signals) == 0 {
		return nil, fmt.Errorf("record %s: %w: no signals", name, ErrMalformedHeader)
	}

	rec := &ecg.Record{
		Name:       name,
		SampleRate: h.SampleRate,
		Leads:      make([][]float64, len(h.Signals)),
		LeadNames:  make([]string, len(h.Signals)),
		Units:      make([]string, len(h.Signals)),
	}

	// Signals sharing a file are interleaved in it, in header order.
	groups := make(map[string][]int)
	var files []string
	for i, s := range h.Signals {
		if _, ok := groups[s.File]; !ok {
			files = append(files, s.File)
		}
		groups[s.File] = append(groups[s.File], i)
		rec.LeadNames[i] = s.Description
		rec.Units[i] = s.Units
	}

	frames := -1
	for _, file := range files {
		idx := groups[file]
		first := h.Signals[idx[0]]
		for _, i := range idx[1:] {
			if h.Signals[i].Format != first.Format || h.Signals[i].ByteOffset != first.ByteOffset {
				return nil, fmt.Errorf("record %s: %w: mixed formats in %s", name, ErrUnsupportedFormat, file)
			}
		}

		data, err := os.ReadFile(filepath.Join(r.Dir, file))
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", name, err)
		}
		if first.ByteOffset > len(data) {
			return nil, fmt.Errorf("record %s: %w: offset %d beyond %s", name, ErrTruncatedSignal, first.ByteOffset, file)
		}
		raw, err := DecodeSamples(data[first.ByteOffset:], first.Format, len(idx), h.NumSamples)
		if err != nil {
			return nil, fmt.Errorf("record %s: %s: %w", name, file, err)
		}

		for j, i := range idx {
			spec := h.Signals[i]
			lead := make([]float64, len(raw[j]))
			for k, v := range raw[j] {
				lead[k] = spec.Physical(v)
			}
			rec.Leads[i] = lead
		}
		if frames >= 0 && len(raw[0]) != frames {
			return nil, fmt.Errorf("record %s: %w: signal files differ in length", name, ErrTruncatedSignal)
		}
		frames = len(raw[0])
	}
	return rec, nil
}

// ReadAnnotations reads the annotation file of record name.
func (r *Reader) ReadAnnotations(name string) ([]ecg.Annotation, error) {
	ext := r.Annotator
	if ext == "" {
		ext = DefaultAnnotator
	}
	data, err := os.ReadFile(filepath.Join(r.Dir, name+"."+ext))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", name, err)
	}
	anns, err := DecodeAnnotations(data)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", name, err)
	}
	return anns, nil
}
