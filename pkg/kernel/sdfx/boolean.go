package sdfx

import (
	"math"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Boolean combines two shapes of the same dimension. Unions of disjoint
// or mixed-dimension operands become compounds so exact measures survive;
// a difference that removes nothing or an empty intersection is an error.
func (k *Kernel) Boolean(op kernel.BooleanOp, a, b kernel.Shape) (kernel.Shape, error) {
	name := op.String()
	if a == nil || b == nil {
		return nil, kernel.Errorf(name, "nil operand")
	}
	switch ea, eb := kernel.IsEmpty(a), kernel.IsEmpty(b); {
	case op == kernel.Union && ea:
		return b, nil
	case op == kernel.Union && eb:
		return a, nil
	case ea || eb:
		return nil, kernel.Errorf(name, "operand is empty")
	}

	da, db := kernel.Dimension(a), kernel.Dimension(b)
	if da != db {
		if op == kernel.Union {
			return k.Compound(a, b), nil
		}
		return nil, kernel.Errorf(name, "cannot combine a %d-dimensional shape with a %d-dimensional one", da, db)
	}

	var (
		out kernel.Shape
		err error
	)
	switch da {
	case 1:
		if op != kernel.Union {
			return nil, kernel.Errorf(name, "curves only support union")
		}
		out = k.Compound(a, b)
	case 2:
		out, err = k.faceBoolean(op, a, b)
	default:
		out, err = k.solidBoolean(op, a, b)
	}
	if err != nil {
		k.log.Debug("boolean failed", "op", name, "err", err)
		return nil, err
	}
	return out, nil
}

func ownFaces(op string, fs []kernel.Face) ([]*face, error) {
	out := make([]*face, len(fs))
	for i, f := range fs {
		ff, ok := f.(*face)
		if !ok {
			return nil, kernel.Errorf(op, "face %T was not made by this kernel", f)
		}
		out[i] = ff
	}
	return out, nil
}

func ownSolids(op string, ss []kernel.Solid) ([]*solid, error) {
	out := make([]*solid, len(ss))
	for i, s := range ss {
		sv, ok := s.(*solid)
		if !ok {
			return nil, kernel.Errorf(op, "solid %T was not made by this kernel", s)
		}
		out[i] = sv
	}
	return out, nil
}

func solidField(ss []*solid) sdf.SDF3 {
	if len(ss) == 1 {
		return ss[0].s
	}
	fields := make([]sdf.SDF3, len(ss))
	for i, s := range ss {
		fields[i] = s.s
	}
	return sdf.Union3D(fields...)
}

func solidBounds(ss []*solid) bounds {
	var b bounds
	for _, s := range ss {
		b = b.union(s.box)
	}
	return b
}

// boundaryTolerance is how far from a result's zero set an operand's edge
// or face may sit and still count as part of the result's boundary.
func (k *Kernel) boundaryTolerance(b bounds) float64 {
	return math.Max(1e-3*b.diagonal(), 10*k.opts.tolerance)
}

func (k *Kernel) solidBoolean(op kernel.BooleanOp, a, b kernel.Shape) (kernel.Shape, error) {
	name := op.String()
	sa, err := ownSolids(name, a.Solids())
	if err != nil {
		return nil, err
	}
	sb, err := ownSolids(name, b.Solids())
	if err != nil {
		return nil, err
	}
	fa, fb := solidField(sa), solidField(sb)
	ba, bb := solidBounds(sa), solidBounds(sb)
	overlap := ba.intersect(bb)

	var (
		field sdf.SDF3
		box   bounds
		cut   *solidCut
	)
	switch op {
	case kernel.Union:
		if !overlap.set {
			return k.Compound(a, b), nil
		}
		field, box = sdf.Union3D(fa, fb), ba.union(bb)
	case kernel.Difference:
		removed := sdf.Intersect3D(fa, fb)
		if !covers3(removed, overlap, k.opts.samples) {
			return nil, kernel.Errorf(name, "tool does not intersect the shape")
		}
		field, box = sdf.Difference3D(fa, fb), ba
		cut = &solidCut{base: sa, removed: removed, box: overlap}
	case kernel.Intersection:
		if !overlap.set {
			return nil, kernel.Errorf(name, "shapes do not overlap")
		}
		field, box = sdf.Intersect3D(fa, fb), overlap
		if !covers3(field, box, k.opts.samples) {
			return nil, kernel.Errorf(name, "intersection is empty")
		}
	default:
		return nil, kernel.Errorf(name, "unknown operation")
	}

	out := &solid{id: k.nextID(), s: field, box: box, cut: cut}
	tol := k.boundaryTolerance(box)
	for _, s := range append(sa, sb...) {
		for _, f := range s.faces {
			if math.Abs(field.Evaluate(facePoint(f))) <= tol {
				out.faces = append(out.faces, f)
			}
		}
		for _, e := range s.edges {
			if math.Abs(field.Evaluate(e.c.point(0.5))) <= tol {
				out.edges = append(out.edges, e)
			}
		}
	}
	return out, nil
}

// facePoint is a representative global point of f.
func facePoint(f *face) v3.Vec {
	if f.exact {
		return f.plane.FromLocal(f.centroid)
	}
	return f.plane.FromLocal(f.local.min.Add(f.local.max).MulScalar(0.5))
}

func (k *Kernel) faceBoolean(op kernel.BooleanOp, a, b kernel.Shape) (kernel.Shape, error) {
	name := op.String()
	fa, err := ownFaces(name, a.Faces())
	if err != nil {
		return nil, err
	}
	fb, err := ownFaces(name, b.Faces())
	if err != nil {
		return nil, err
	}
	frame := fa[0].plane

	var all bounds
	for _, f := range append(fa, fb...) {
		all = all.union(f.bounds())
	}
	tol := k.opts.tolerance * math.Max(1, all.diagonal())
	for _, f := range append(fa, fb...) {
		if !frame.Coplanar(f.plane, tol) {
			if op == kernel.Union {
				return k.Compound(a, b), nil
			}
			return nil, kernel.Errorf(name, "faces are not coplanar")
		}
	}

	ra, boxA := regionsIn(fa, frame)
	rb, boxB := regionsIn(fb, frame)
	overlap := boxA.intersect(boxB)

	var (
		region sdf.SDF2
		box    bounds
		cut    *faceCut
	)
	switch op {
	case kernel.Union:
		if !overlap.set {
			return k.Compound(a, b), nil
		}
		region, box = sdf.Union2D(ra, rb), boxA.union(boxB)
	case kernel.Difference:
		removed := sdf.Intersect2D(ra, rb)
		if !covers2(removed, overlap, k.opts.samples) {
			return nil, kernel.Errorf(name, "tool does not intersect the face")
		}
		region, box = sdf.Difference2D(ra, rb), boxA
		cut = &faceCut{base: fa, removed: removed, box: overlap}
	case kernel.Intersection:
		if !overlap.set {
			return nil, kernel.Errorf(name, "faces do not overlap")
		}
		region, box = sdf.Intersect2D(ra, rb), overlap
		if !covers2(region, box, k.opts.samples) {
			return nil, kernel.Errorf(name, "intersection is empty")
		}
	default:
		return nil, kernel.Errorf(name, "unknown operation")
	}

	out := &face{id: k.nextID(), plane: frame, region: region, local: box, cut: cut}
	btol := k.boundaryTolerance(box)
	for _, f := range append(fa, fb...) {
		for _, e := range f.edges {
			if math.Abs(region.Evaluate(local2(frame, e.c.point(0.5)))) <= btol {
				out.edges = append(out.edges, e)
			}
		}
	}
	return out, nil
}

func regionsIn(fs []*face, frame geom.Plane) (sdf.SDF2, bounds) {
	var box bounds
	regions := make([]sdf.SDF2, len(fs))
	for i, f := range fs {
		regions[i] = regionIn(f, frame)
		box = box.union(boundsIn(f, frame))
	}
	if len(regions) == 1 {
		return regions[0], box
	}
	return sdf.Union2D(regions...), box
}

// cells2 splits b into n cells along X and Y. Boxes that are flat along
// either axis have no cells.
func cells2(b bounds, n int) (v2.Vec, bool) {
	size := b.size()
	if !b.set || n <= 0 || size.X <= 0 || size.Y <= 0 {
		return v2.Vec{}, false
	}
	return v2.Vec{X: size.X / float64(n), Y: size.Y / float64(n)}, true
}

// cells3 splits b into n cells along every axis, so a box that is thin
// along one axis is still resolved along it.
func cells3(b bounds, n int) (v3.Vec, bool) {
	size := b.size()
	if !b.set || n <= 0 || size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return v3.Vec{}, false
	}
	return size.MulScalar(1 / float64(n)), true
}

// scan2 calls visit with the center of every cell until it returns false.
func scan2(b bounds, cell v2.Vec, n int, visit func(p v2.Vec) bool) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p := v2.Vec{X: b.min.X + (float64(i)+0.5)*cell.X, Y: b.min.Y + (float64(j)+0.5)*cell.Y}
			if !visit(p) {
				return
			}
		}
	}
}

// scan3 calls visit with the center of every cell until it returns false.
func scan3(b bounds, cell v3.Vec, n int, visit func(p v3.Vec) bool) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for l := 0; l < n; l++ {
				p := v3.Vec{
					X: b.min.X + (float64(i)+0.5)*cell.X,
					Y: b.min.Y + (float64(j)+0.5)*cell.Y,
					Z: b.min.Z + (float64(l)+0.5)*cell.Z,
				}
				if !visit(p) {
					return
				}
			}
		}
	}
}

// sampleArea counts grid cells whose centers lie inside s.
func sampleArea(s sdf.SDF2, b bounds, n int) float64 {
	cell, ok := cells2(b, n)
	if !ok {
		return 0
	}
	count := 0
	scan2(b, cell, n, func(p v2.Vec) bool {
		if s.Evaluate(p) <= 0 {
			count++
		}
		return true
	})
	return float64(count) * cell.X * cell.Y
}

// sampleVolume counts grid cells whose centers lie inside s.
func sampleVolume(s sdf.SDF3, b bounds, n int) float64 {
	cell, ok := cells3(b, n)
	if !ok {
		return 0
	}
	count := 0
	scan3(b, cell, n, func(p v3.Vec) bool {
		if s.Evaluate(p) <= 0 {
			count++
		}
		return true
	})
	return float64(count) * cell.X * cell.Y * cell.Z
}

// covers2 reports whether any cell center of b lies inside s. It walks the
// same grid as sampleArea and stops at the first hit.
func covers2(s sdf.SDF2, b bounds, n int) bool {
	cell, ok := cells2(b, n)
	if !ok {
		return false
	}
	hit := false
	scan2(b, cell, n, func(p v2.Vec) bool {
		hit = s.Evaluate(p) <= 0
		return !hit
	})
	return hit
}

// covers3 reports whether any cell center of b lies inside s. It walks the
// same grid as sampleVolume and stops at the first hit.
func covers3(s sdf.SDF3, b bounds, n int) bool {
	cell, ok := cells3(b, n)
	if !ok {
		return false
	}
	hit := false
	scan3(b, cell, n, func(p v3.Vec) bool {
		hit = s.Evaluate(p) <= 0
		return !hit
	})
	return hit
}
