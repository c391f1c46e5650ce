package algebra

import (
	"fmt"
	"strings"
)

// Mode selects how a new element merges with a working shape.
type Mode int

const (
	// Add unions the element into the working shape. On an empty working
	// shape it seeds it.
	Add Mode = iota + 1
	// Subtract removes the element from the working shape.
	Subtract
	// Intersect keeps only the overlap with the element.
	Intersect
	// Replace discards the working shape and keeps the element.
	Replace
	// Private realizes the element without merging it.
	Private
)

var modeNames = map[Mode]string{
	Add:       "add",
	Subtract:  "subtract",
	Intersect: "intersect",
	Replace:   "replace",
	Private:   "private",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode resolves a mode name such as "add" or "SUBTRACT".
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}
