package beat

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-ecg/ecg"
	"github.com/cwbudde/algo-ecg/internal/testutil"
)

func annotations(symbol string, positions ...int) []ecg.Annotation {
	out := make([]ecg.Annotation, len(positions))
	for i, p := range positions {
		out[i] = ecg.Annotation{Sample: p, Symbol: symbol}
	}
	return out
}

func TestSegment_FlatSignalFiveAnnotations(t *testing.T) {
	sig := testutil.DC(0.25, 1000)
	anns := annotations("N", 100, 300, 500, 700, 900)

	seg, err := NewSegmenter(DefaultLeft, DefaultRight)
	if err != nil {
		t.Fatal(err)
	}
	ds, st := seg.Segment(sig, anns)

	if got := ds.Counts(); got != (Counts{N: 3}) {
		t.Fatalf("counts %v, want N=3 only", got)
	}
	for i, b := range ds.Beats(N) {
		if len(b) != DefaultLeft+DefaultRight {
			t.Fatalf("beat %d: length %d", i, len(b))
		}
		testutil.RequireSliceNearlyEqual(t, b, testutil.DC(0.25, 200), 0)
	}
	if st.Annotations != 3 || st.BoundarySkips != 0 || st.UnmappedTotal() != 0 {
		t.Fatalf("stats %+v", st)
	}
}

func TestSegment_WindowStartingBeforeSignalIsSkipped(t *testing.T) {
	sig := testutil.Ramp(1, 1000)
	// The second annotation's window would start at -5.
	anns := annotations("N", 10, 75, 300, 500, 700, 990)

	seg, _ := NewSegmenter(80, 120)
	ds, st := seg.Segment(sig, anns)

	if st.BoundarySkips != 1 {
		t.Fatalf("boundary skips %d, want 1", st.BoundarySkips)
	}
	if ds.Len(N) != 3 {
		t.Fatalf("N beats %d, want 3", ds.Len(N))
	}
	for i, p := range []int{300, 500, 700} {
		b := ds.Beats(N)[i]
		if b[0] != float64(p-80) || b[len(b)-1] != float64(p+119) {
			t.Fatalf("beat %d spans [%v, %v], want [%d, %d]", i, b[0], b[len(b)-1], p-80, p+119)
		}
	}
}

func TestSegment_WindowEndingAtSignalEnd(t *testing.T) {
	sig := testutil.Ramp(1, 400)
	seg, _ := NewSegmenter(80, 120)

	// p+Right == len(signal) is in range, one more is not.
	ds, st := seg.Segment(sig, annotations("V", 0, 280, 281, 399))
	if ds.Len(V) != 1 || st.BoundarySkips != 1 {
		t.Fatalf("V=%d skips=%d, want 1 and 1", ds.Len(V), st.BoundarySkips)
	}
	if got := ds.Beats(V)[0]; got[len(got)-1] != 399 {
		t.Fatalf("last sample %v, want 399", got[len(got)-1])
	}
}

func TestSegment_ClassesAndUnmappedSymbols(t *testing.T) {
	sig := testutil.DC(1, 3000)
	symbols := []string{"N", "A", "V", "+", "F", "/", "~", "+", "S", "N"}
	anns := make([]ecg.Annotation, len(symbols))
	for i, s := range symbols {
		anns[i] = ecg.Annotation{Sample: 200 + 250*i, Symbol: s}
	}

	seg, _ := NewSegmenter(80, 120)
	ds, st := seg.Segment(sig, anns)

	want := Counts{S: 2, V: 1, F: 1, U: 1}
	if got := ds.Counts(); got != want {
		t.Fatalf("counts %v, want %v", got, want)
	}
	if !reflect.DeepEqual(st.Unmapped, map[string]int{"+": 2, "~": 1}) {
		t.Fatalf("unmapped %v", st.Unmapped)
	}
	if st.UnmappedTotal() != 3 {
		t.Fatalf("unmapped total %d", st.UnmappedTotal())
	}
}

func TestSegment_Deterministic(t *testing.T) {
	sig := testutil.DeterministicNoise(3, 1, 5000)
	var anns []ecg.Annotation
	for i, s := range []string{"N", "V", "N", "A", "N", "F", "Q", "N", "V", "N"} {
		anns = append(anns, ecg.Annotation{Sample: 50 + 480*i, Symbol: s})
	}

	seg, _ := NewSegmenter(80, 120)
	a, sa := seg.Segment(sig, anns)
	b, sb := seg.Segment(sig, anns)
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(sa, sb) {
		t.Fatal("segmentation is not deterministic")
	}
}

func TestSegment_BeatsAreCopies(t *testing.T) {
	sig := testutil.DC(1, 1000)
	seg, _ := NewSegmenter(10, 10)
	ds, _ := seg.Segment(sig, annotations("N", 100, 200, 300))
	sig[195] = 42
	if ds.Beats(N)[0][5] != 1 {
		t.Fatal("beat aliases the signal")
	}
}

func TestSegment_TooFewAnnotations(t *testing.T) {
	seg, _ := NewSegmenter(80, 120)
	for n := 0; n <= 2; n++ {
		ds, st := seg.Segment(testutil.DC(0, 1000), annotations("N", []int{300, 500, 700}[:n]...))
		if ds.Counts().Total() != 0 || st.Annotations != 0 {
			t.Fatalf("%d annotations: %v %+v", n, ds.Counts(), st)
		}
	}
}

func TestNewSegmenter_InvalidWindow(t *testing.T) {
	for _, w := range [][2]int{{0, 0}, {-1, 10}, {10, -1}} {
		if _, err := NewSegmenter(w[0], w[1]); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("window %v: expected ErrInvalidWindow, got %v", w, err)
		}
	}
}

func TestStats_Add(t *testing.T) {
	var total Stats
	total.Add(Stats{Annotations: 3, BoundarySkips: 1, Unmapped: map[string]int{"+": 1}})
	total.Add(Stats{Annotations: 2, Unmapped: map[string]int{"+": 2, "|": 1}})
	if total.Annotations != 5 || total.BoundarySkips != 1 || total.Unmapped["+"] != 3 || total.Unmapped["|"] != 1 {
		t.Fatalf("sum %+v", total)
	}
}
