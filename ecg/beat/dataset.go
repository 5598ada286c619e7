package beat

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// ErrInsufficientData is returned when a required class has no beats.
var ErrInsufficientData = errors.New("beat: insufficient data")

// Counts holds one number per class, indexed by Class.
type Counts [NumClasses]int

// Total returns the sum over all classes.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// String formats the counts as "N=.. S=.. F=.. V=.. U=..".
func (c Counts) String() string {
	var b strings.Builder
	for i, cls := range Classes {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%d", cls, c[cls])
	}
	return b.String()
}

// InsufficientDataError lists the per-class counts of a dataset that failed
// a class requirement. It matches ErrInsufficientData with errors.Is.
type InsufficientDataError struct {
	Missing []Class
	Counts  Counts
}

func (e *InsufficientDataError) Error() string {
	names := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		names[i] = c.String()
	}
	return fmt.Sprintf("beat: insufficient data: no beats for class %s (%s)", strings.Join(names, ","), e.Counts)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Dataset collects beat vectors per class in discovery order.
// The zero value is an empty dataset ready for use.
type Dataset struct {
	beats [NumClasses][][]float64
}

// Append adds a beat to class c. The vector is stored, not copied.
// c must be one of Classes; Append panics otherwise.
func (d *Dataset) Append(c Class, beat []float64) {
	if !c.Valid() {
		panic(fmt.Sprintf("beat: Append to invalid class %d", int(c)))
	}
	d.beats[c] = append(d.beats[c], beat)
}

// Merge appends every beat of other after the beats already held, class by
// class. Merging per-record datasets in record order reproduces a
// sequential segmentation run.
func (d *Dataset) Merge(other *Dataset) {
	for _, c := range Classes {
		d.beats[c] = append(d.beats[c], other.beats[c]...)
	}
}

// Beats returns the beats of class c, nil for an invalid class. The slice
// must not be modified.
func (d *Dataset) Beats(c Class) [][]float64 {
	if !c.Valid() {
		return nil
	}
	return d.beats[c]
}

// Len returns the number of beats in class c.
func (d *Dataset) Len(c Class) int {
	return len(d.Beats(c))
}

// Counts returns the beat count of every class.
func (d *Dataset) Counts() Counts {
	var n Counts
	for _, c := range Classes {
		n[c] = len(d.beats[c])
	}
	return n
}

// Cap returns a dataset holding the first min(limit, Len(c)) beats of each
// class, in order. A negative limit keeps everything.
func (d *Dataset) Cap(limit int) *Dataset {
	out := &Dataset{}
	for _, c := range Classes {
		n := len(d.beats[c])
		if limit >= 0 && limit < n {
			n = limit
		}
		out.beats[c] = slices.Clip(d.beats[c][:n])
	}
	return out
}

// Sample returns a dataset holding min(limit, Len(c)) beats of each class
// drawn uniformly without replacement from a generator seeded with seed. The
// selected beats keep their original relative order, and equal seeds select
// equal subsets. A negative limit keeps everything.
func (d *Dataset) Sample(limit int, seed uint64) *Dataset {
	out := &Dataset{}
	for _, c := range Classes {
		src := d.beats[c]
		if limit < 0 || limit >= len(src) {
			out.beats[c] = slices.Clip(src)
			continue
		}
		rng := rand.New(rand.NewPCG(seed, uint64(c)))
		idx := rng.Perm(len(src))[:limit]
		slices.Sort(idx)
		picked := make([][]float64, limit)
		for i, j := range idx {
			picked[i] = src[j]
		}
		out.beats[c] = picked
	}
	return out
}

// Require returns an *InsufficientDataError if any of the given classes is
// empty.
func (d *Dataset) Require(classes ...Class) error {
	var missing []Class
	for _, c := range classes {
		if len(d.beats[c]) == 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &InsufficientDataError{Missing: missing, Counts: d.Counts()}
	}
	return nil
}
