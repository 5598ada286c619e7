package beat

import (
	"fmt"
	"slices"
)

// LabelTable maps annotation symbols to beat classes. Several symbols may
// share a class; symbols absent from the table have no class.
type LabelTable map[string]Class

// DefaultLabelTable returns the AAMI-style grouping
//
//	N: N
//	S: A a S J
//	F: F
//	V: V
//	U: Q U / p
func DefaultLabelTable() LabelTable {
	t, _ := NewLabelTable(map[Class][]string{
		N: {"N"},
		S: {"A", "a", "S", "J"},
		F: {"F"},
		V: {"V"},
		U: {"Q", "U", "/", "p"},
	})
	return t
}

// NewLabelTable builds a table from class → symbols groups. A symbol listed
// under two classes, an empty symbol or an invalid class is an error.
func NewLabelTable(groups map[Class][]string) (LabelTable, error) {
	t := make(LabelTable)
	for _, c := range Classes {
		for _, sym := range groups[c] {
			if sym == "" {
				return nil, fmt.Errorf("beat: empty symbol for class %s", c)
			}
			if prev, ok := t[sym]; ok && prev != c {
				return nil, fmt.Errorf("beat: symbol %q mapped to both %s and %s", sym, prev, c)
			}
			t[sym] = c
		}
	}
	for c := range groups {
		if !c.Valid() {
			return nil, fmt.Errorf("beat: invalid class %d in label table", int(c))
		}
	}
	return t, nil
}

// Lookup resolves a symbol to its class.
func (t LabelTable) Lookup(symbol string) (Class, bool) {
	c, ok := t[symbol]
	return c, ok
}

// Symbols returns the sorted symbols mapped to class c.
func (t LabelTable) Symbols(c Class) []string {
	var out []string
	for sym, cls := range t {
		if cls == c {
			out = append(out, sym)
		}
	}
	slices.Sort(out)
	return out
}
