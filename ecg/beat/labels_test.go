package beat

import (
	"reflect"
	"testing"
)

func TestDefaultLabelTable(t *testing.T) {
	tbl := DefaultLabelTable()
	tests := []struct {
		symbol string
		want   Class
		ok     bool
	}{
		{"N", N, true},
		{"A", S, true},
		{"a", S, true},
		{"S", S, true},
		{"J", S, true},
		{"F", F, true},
		{"V", V, true},
		{"Q", U, true},
		{"U", U, true},
		{"/", U, true},
		{"p", U, true},
		{"L", 0, false},
		{"+", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		got, ok := tbl.Lookup(tc.symbol)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("Lookup(%q) = %v, %v; want %v, %v", tc.symbol, got, ok, tc.want, tc.ok)
		}
	}
	if got := tbl.Symbols(S); !reflect.DeepEqual(got, []string{"A", "J", "S", "a"}) {
		t.Fatalf("S symbols %v", got)
	}
}

func TestNewLabelTable_Errors(t *testing.T) {
	if _, err := NewLabelTable(map[Class][]string{N: {"N"}, V: {"N"}}); err == nil {
		t.Fatal("expected error for symbol in two classes")
	}
	if _, err := NewLabelTable(map[Class][]string{N: {""}}); err == nil {
		t.Fatal("expected error for empty symbol")
	}
	if _, err := NewLabelTable(map[Class][]string{Class(7): {"x"}}); err == nil {
		t.Fatal("expected error for invalid class")
	}
	tbl, err := NewLabelTable(map[Class][]string{N: {"N", "L", "R", "N"}})
	if err != nil {
		t.Fatalf("duplicate symbol within one class should be accepted: %v", err)
	}
	if len(tbl) != 3 {
		t.Fatalf("table size %d", len(tbl))
	}
}

func TestClass_TextRoundTrip(t *testing.T) {
	for _, c := range Classes {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Class
		if err := back.UnmarshalText(text); err != nil || back != c {
			t.Fatalf("%s: got %v, %v", c, back, err)
		}
	}
	if _, err := ParseClass("x"); err == nil {
		t.Fatal("expected error for unknown class")
	}
	if c, err := ParseClass("v"); err != nil || c != V {
		t.Fatalf("ParseClass(v) = %v, %v", c, err)
	}
	if Class(9).String() != "Class(9)" || Class(9).Valid() {
		t.Fatal("out-of-range class")
	}
}
