package beat

import "fmt"

// Range is the half-open row interval [Start, End) a class occupies in a
// TrainingMatrix.
type Range struct {
	Start, End int
}

// Len returns the number of rows in the range.
func (r Range) Len() int { return r.End - r.Start }

// TrainingMatrix is the row-wise concatenation of all classes in the order
// [N, S, F, V, U]. Rows alias the dataset's beat vectors and must be
// treated as read-only.
type TrainingMatrix struct {
	Rows   [][]float64
	Ranges [NumClasses]Range
	Cols   int
}

// Aggregate concatenates the classes of d in fixed class order and records
// each class's row range. All beats must have the same length.
func Aggregate(d *Dataset) (*TrainingMatrix, error) {
	tm := &TrainingMatrix{Cols: -1}
	total := d.Counts().Total()
	tm.Rows = make([][]float64, 0, total)

	for _, c := range Classes {
		start := len(tm.Rows)
		for i, row := range d.Beats(c) {
			if tm.Cols < 0 {
				tm.Cols = len(row)
			}
			if len(row) != tm.Cols {
				return nil, fmt.Errorf("beat: class %s row %d has %d samples, want %d", c, i, len(row), tm.Cols)
			}
			tm.Rows = append(tm.Rows, row)
		}
		tm.Ranges[c] = Range{Start: start, End: len(tm.Rows)}
	}
	if tm.Cols < 0 {
		tm.Cols = 0
	}
	return tm, nil
}

// Class returns the rows of class c.
func (tm *TrainingMatrix) Class(c Class) [][]float64 {
	r := tm.Ranges[c]
	return tm.Rows[r.Start:r.End:r.End]
}

// Split slices a row-aligned derived matrix (for example a projection of
// Rows) back into per-class blocks.
func (tm *TrainingMatrix) Split(rows [][]float64) ([NumClasses][][]float64, error) {
	var out [NumClasses][][]float64
	if len(rows) != len(tm.Rows) {
		return out, fmt.Errorf("beat: split %d rows, matrix has %d", len(rows), len(tm.Rows))
	}
	for _, c := range Classes {
		r := tm.Ranges[c]
		out[c] = rows[r.Start:r.End:r.End]
	}
	return out, nil
}
