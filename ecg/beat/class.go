// Package beat cuts fixed-length heartbeat windows out of filtered ECG leads,
// groups them by clinical class and assembles the class-ordered training
// matrix for dimensionality reduction.
package beat

import (
	"fmt"
	"strings"
)

// Class is one of the five beat groups. The zero value is N.
type Class int

// Beat classes in their fixed aggregation order.
const (
	N Class = iota // normal
	S              // supraventricular ectopic
	F              // fusion
	V              // ventricular ectopic
	U              // unknown / paced
)

// NumClasses is the number of beat classes.
const NumClasses = 5

// Classes lists every class in aggregation order [N, S, F, V, U].
var Classes = [NumClasses]Class{N, S, F, V, U}

var classNames = [NumClasses]string{"N", "S", "F", "V", "U"}

// String returns the one-letter class name.
func (c Class) String() string {
	if c.Valid() {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Valid reports whether c is one of the five classes.
func (c Class) Valid() bool {
	return c >= N && c <= U
}

// ParseClass parses a one-letter class name, ignoring case.
func ParseClass(s string) (Class, error) {
	for i, name := range classNames {
		if strings.EqualFold(s, name) {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("beat: unknown class %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("beat: invalid class %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(text []byte) error {
	v, err := ParseClass(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
