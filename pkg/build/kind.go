package build

import (
	"fmt"

	"github.com/chazu/contour/pkg/algebra"
)

// Kind selects what a builder accumulates.
type Kind int

const (
	// Line builders accumulate edges; their result is a wire.
	Line Kind = iota + 1
	// Sketch builders accumulate planar faces.
	Sketch
	// Part builders accumulate solids.
	Part
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Sketch:
		return "sketch"
	case Part:
		return "part"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// dimension is the dimension of the shapes a builder of this kind combines.
func (k Kind) dimension() int {
	switch k {
	case Line:
		return 1
	case Sketch:
		return 2
	}
	return 3
}

// supports reports whether mode may be used when combining into a builder
// of kind k.
func (k Kind) supports(mode algebra.Mode) bool {
	if k == Line {
		return mode == algebra.Add || mode == algebra.Replace || mode == algebra.Private
	}
	return mode.Valid()
}

// canHost reports whether a builder of kind k may contain a child of kind c.
func (k Kind) canHost(c Kind) bool {
	switch k {
	case Line:
		return c == Line
	case Sketch:
		return c == Line || c == Sketch
	case Part:
		return c == Line || c == Sketch || c == Part
	}
	return false
}

// Scope selects which generations a selector returns.
type Scope int

const (
	// Last selects only the most recent generation.
	Last Scope = iota + 1
	// All selects every generation in insertion order.
	All
)

func (s Scope) String() string {
	switch s {
	case Last:
		return "last"
	case All:
		return "all"
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}
