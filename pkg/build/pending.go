package build

import (
	"github.com/chazu/contour/pkg/algebra"
	"github.com/chazu/contour/pkg/kernel"
)

// Element is a realized shape recorded by a builder.
type Element struct {
	Shape      kernel.Shape
	Generation int
	Mode       algebra.Mode
}

// PendingSet is the ordered, generation-tagged history of the elements a
// builder has realized. The zero value is ready to use.
type PendingSet struct {
	gen   int
	elems []Element
}

// BeginGeneration starts a new generation and returns its number.
func (p *PendingSet) BeginGeneration() int {
	p.gen++
	return p.gen
}

// Generation returns the current generation, zero before the first.
func (p *PendingSet) Generation() int { return p.gen }

// Record tags s with the current generation.
func (p *PendingSet) Record(s kernel.Shape, mode algebra.Mode) Element {
	e := Element{Shape: s, Generation: p.gen, Mode: mode}
	p.elems = append(p.elems, e)
	return e
}

// Len returns the number of recorded elements.
func (p *PendingSet) Len() int { return len(p.elems) }

// Select returns a snapshot of the elements in scope. Selecting Last
// before any generation has begun is a ContextStateError.
func (p *PendingSet) Select(scope Scope) ([]Element, error) {
	switch scope {
	case All:
		return append([]Element(nil), p.elems...), nil
	case Last:
		if p.gen == 0 {
			return nil, stateErrorf("select", "no generation to select from")
		}
		var out []Element
		for i := len(p.elems) - 1; i >= 0 && p.elems[i].Generation == p.gen; i-- {
			out = append(out, p.elems[i])
		}
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out, nil
	}
	return nil, stateErrorf("select", "invalid scope %s", scope)
}
