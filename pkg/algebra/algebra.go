package algebra

import (
	"fmt"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
)

// Combine merges element into working according to mode and returns the
// new working shape. The operands are never modified. Kernel failures are
// returned as they are; subtracting from or intersecting with an empty
// working shape is a GeometryError.
func Combine(k kernel.Kernel, working, element kernel.Shape, mode Mode) (kernel.Shape, error) {
	if element == nil && mode != Private {
		return nil, kernel.Errorf(mode.String(), "nil element")
	}
	switch mode {
	case Add:
		if kernel.IsEmpty(working) {
			return element, nil
		}
		return k.Boolean(kernel.Union, working, element)
	case Subtract:
		if kernel.IsEmpty(working) {
			return nil, kernel.Errorf("subtract", "nothing to subtract from")
		}
		return k.Boolean(kernel.Difference, working, element)
	case Intersect:
		if kernel.IsEmpty(working) {
			return nil, kernel.Errorf("intersect", "nothing to intersect with")
		}
		return k.Boolean(kernel.Intersection, working, element)
	case Replace:
		return element, nil
	case Private:
		return working, nil
	}
	return nil, fmt.Errorf("combine: invalid mode %s", mode)
}

// Union folds shapes left to right with Add.
func Union(k kernel.Kernel, shapes ...kernel.Shape) (kernel.Shape, error) {
	return fold(k, Add, shapes)
}

// Difference removes each tool from base in turn.
func Difference(k kernel.Kernel, base kernel.Shape, tools ...kernel.Shape) (kernel.Shape, error) {
	return fold(k, Subtract, append([]kernel.Shape{base}, tools...))
}

// Common keeps the region common to all shapes.
func Common(k kernel.Kernel, shapes ...kernel.Shape) (kernel.Shape, error) {
	return fold(k, Intersect, shapes)
}

func fold(k kernel.Kernel, mode Mode, shapes []kernel.Shape) (kernel.Shape, error) {
	if len(shapes) == 0 {
		return k.Compound(), nil
	}
	acc := shapes[0]
	for i, s := range shapes[1:] {
		var err error
		if acc, err = Combine(k, acc, s, mode); err != nil {
			return nil, fmt.Errorf("%s operand %d: %w", mode, i+1, err)
		}
	}
	return acc, nil
}

// Compose returns the location that applies b and then a.
func Compose(a, b geom.Location) geom.Location {
	return a.Mul(b)
}

// Moved returns a copy of s relocated by loc.
func Moved(k kernel.Kernel, s kernel.Shape, loc geom.Location) (kernel.Shape, error) {
	return k.Transform(s, loc)
}

// MovedAll relocates every shape by loc.
func MovedAll(k kernel.Kernel, shapes []kernel.Shape, loc geom.Location) ([]kernel.Shape, error) {
	out := make([]kernel.Shape, len(shapes))
	for i, s := range shapes {
		m, err := k.Transform(s, loc)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// Locations places a copy of s at each location and returns them as one
// compound.
func Locations(k kernel.Kernel, s kernel.Shape, locs ...geom.Location) (kernel.Shape, error) {
	copies := make([]kernel.Shape, 0, len(locs))
	for _, l := range locs {
		m, err := k.Transform(s, l)
		if err != nil {
			return nil, err
		}
		copies = append(copies, m)
	}
	return k.Compound(copies...), nil
}

// FrameOn is face's frame with loc applied in the face's own coordinates:
// the identity gives the face plane itself, Pos(0, 0, d) lifts it along
// the face normal.
func FrameOn(f kernel.Face, loc geom.Location) geom.Plane {
	return f.Plane().Location().Mul(loc).Plane()
}

// OnPlane maps a profile drawn in XY coordinates onto p.
func OnPlane(k kernel.Kernel, profile kernel.Shape, p geom.Plane) (kernel.Shape, error) {
	return k.Transform(profile, p.Location())
}

// OnFace maps a profile drawn in XY coordinates onto the face frame, after
// applying loc within that frame.
func OnFace(k kernel.Kernel, profile kernel.Shape, f kernel.Face, loc geom.Location) (kernel.Shape, error) {
	return OnPlane(k, profile, FrameOn(f, loc))
}
