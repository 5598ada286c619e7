package beat

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ecg/ecg"
)

// Default window around the annotated beat position, in samples.
const (
	DefaultLeft  = 80
	DefaultRight = 120
)

// ErrInvalidWindow is returned for a window with non-positive length.
var ErrInvalidWindow = errors.New("beat: invalid window")

// Stats describes what a segmentation pass skipped.
type Stats struct {
	// Annotations is the number of annotations considered (all but the
	// first and the last).
	Annotations int
	// BoundarySkips counts windows that crossed the signal edges.
	BoundarySkips int
	// Unmapped counts annotations per symbol that had no class.
	Unmapped map[string]int
}

// UnmappedTotal returns the number of annotations without a class.
func (s Stats) UnmappedTotal() int {
	n := 0
	for _, v := range s.Unmapped {
		n += v
	}
	return n
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Annotations += other.Annotations
	s.BoundarySkips += other.BoundarySkips
	for sym, n := range other.Unmapped {
		if s.Unmapped == nil {
			s.Unmapped = make(map[string]int)
		}
		s.Unmapped[sym] += n
	}
}

// Segmenter extracts the window [p-Left, p+Right) around each annotation.
type Segmenter struct {
	Left   int
	Right  int
	Labels LabelTable
}

// NewSegmenter returns a segmenter using the default label table.
func NewSegmenter(left, right int) (*Segmenter, error) {
	s := &Segmenter{Left: left, Right: right, Labels: DefaultLabelTable()}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the window geometry.
func (s *Segmenter) Validate() error {
	if s.Left < 0 || s.Right < 0 || s.Left+s.Right <= 0 {
		return fmt.Errorf("%w: left=%d right=%d", ErrInvalidWindow, s.Left, s.Right)
	}
	return nil
}

// Window returns the beat vector length Left+Right.
func (s *Segmenter) Window() int {
	return s.Left + s.Right
}

// Segment cuts beats out of signal at the annotated positions and groups
// them by class. The first and the last annotation are never used. Windows
// crossing the signal edges and symbols missing from the label table are
// skipped and reported in Stats. Every returned beat is a fresh copy of
// exactly Window() samples.
func (s *Segmenter) Segment(signal []float64, anns []ecg.Annotation) (*Dataset, Stats) {
	ds := &Dataset{}
	st := Stats{}

	for i := 1; i < len(anns)-1; i++ {
		st.Annotations++
		p := anns[i].Sample
		lo, hi := p-s.Left, p+s.Right
		if lo < 0 || hi > len(signal) {
			st.BoundarySkips++
			continue
		}

		c, ok := s.Labels.Lookup(anns[i].Symbol)
		if !ok {
			if st.Unmapped == nil {
				st.Unmapped = make(map[string]int)
			}
			st.Unmapped[anns[i].Symbol]++
			continue
		}

		beat := make([]float64, hi-lo)
		copy(beat, signal[lo:hi])
		ds.Append(c, beat)
	}
	return ds, st
}
