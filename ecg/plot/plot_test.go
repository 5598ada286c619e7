package plot

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-ecg/ecg/beat"
	"github.com/cwbudde/algo-ecg/stats/pca"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func projections() [beat.NumClasses][][]float64 {
	var p [beat.NumClasses][][]float64
	p[beat.N] = [][]float64{{0, 0, 1}, {1, 2, 0}, {2, 1, 0}}
	p[beat.V] = [][]float64{{-3, 4, 0}, {-2, 5, 1}}
	return p
}

func TestScatter(t *testing.T) {
	var buf bytes.Buffer
	if err := Scatter(&buf, projections(), WithTitle("PCA"), WithSize(400, 300)); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestScatter_Errors(t *testing.T) {
	var empty [beat.NumClasses][][]float64
	if err := Scatter(io.Discard, empty); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	var narrow [beat.NumClasses][][]float64
	narrow[beat.S] = [][]float64{{1}, {2}}
	if err := Scatter(io.Discard, narrow); !errors.Is(err, ErrTooFewComponents) {
		t.Fatalf("expected ErrTooFewComponents, got %v", err)
	}
}

func TestVariance(t *testing.T) {
	rep := pca.VarianceReport{
		Ratios:     []float64{0.5, 0.25, 0.125},
		Cumulative: []float64{0.5, 0.75, 0.875},
		Total:      0.875,
	}
	var buf bytes.Buffer
	if err := Variance(&buf, rep); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output is not a PNG")
	}

	if err := Variance(io.Discard, pca.VarianceReport{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scatter.png")
	err := WriteFile(path, func(w io.Writer) error {
		return Scatter(w, projections())
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatal("file is not a PNG")
	}

	if err := WriteFile(filepath.Join(t.TempDir(), "missing", "x.png"), func(io.Writer) error { return nil }); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
