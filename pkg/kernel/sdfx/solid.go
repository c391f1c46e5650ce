package sdfx

import (
	"math"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// solid wraps an sdf.SDF3 in global coordinates. Only planar faces are
// tracked as topology; curved lateral surfaces exist in the field alone.
type solid struct {
	id     uint64
	s      sdf.SDF3
	box    bounds
	faces  []*face
	edges  []*edge
	volume float64
	exact  bool
	cut    *solidCut
}

// solidCut records what a difference removed: its volume is the base's
// volume less the part of the tool inside it, sampled over the overlap box
// alone.
type solidCut struct {
	base    []*solid
	removed sdf.SDF3
	box     bounds
}

func (s *solid) Kind() kernel.ShapeKind { return kernel.KindSolid }
func (s *solid) ID() uint64             { return s.id }

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) { return s.box.arrays() }

func (s *solid) Vertices() []v3.Vec {
	var pts []v3.Vec
	for _, e := range s.edges {
		pts = append(pts, e.Vertices()...)
	}
	return dedupe(pts, 1e-7)
}

func (s *solid) Edges() []kernel.Edge {
	out := make([]kernel.Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e
	}
	return out
}

func (s *solid) Faces() []kernel.Face {
	out := make([]kernel.Face, len(s.faces))
	for i, f := range s.faces {
		out[i] = f
	}
	return out
}

func (s *solid) Solids() []kernel.Solid { return []kernel.Solid{s} }

// Extrude sweeps a face along its normal by amount (negative runs
// against the normal).
func (k *Kernel) Extrude(f kernel.Face, amount float64) (kernel.Solid, error) {
	ff, ok := f.(*face)
	if !ok {
		return nil, kernel.Errorf("extrude", "face %T was not made by this kernel", f)
	}
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, kernel.Errorf("extrude", "amount must be finite and non-zero, got %g", amount)
	}
	local := sdf.Transform3D(sdf.Extrude3D(ff.region, math.Abs(amount)), sdf.Translate3d(v3.Vec{Z: amount / 2}))
	field := sdf.Transform3D(local, ff.plane.Location().Matrix())
	return k.sweep(ff, amount, field), nil
}

// sweep assembles the topology of an extrusion of f whose field is given.
func (k *Kernel) sweep(f *face, amount float64, field sdf.SDF3) *solid {
	d := f.plane.ZDir.MulScalar(amount)
	moved := k.mapFace(f, sdf.Translate3d(d), false)

	// Each cap keeps the orientation whose normal points out of the solid.
	near, far := f, moved
	if amount > 0 {
		near = k.flipped(f)
	} else {
		far = k.flipped(moved)
	}

	faces := []*face{near, far}
	edges := append(append([]*edge(nil), near.edges...), far.edges...)
	for _, v := range f.Vertices() {
		edges = append(edges, &edge{id: k.nextID(), c: segment{a: v, b: v.Add(d)}})
	}
	for _, e := range f.edges {
		if side := k.sideFace(f, e, d); side != nil {
			faces = append(faces, side)
		}
	}
	s := &solid{
		id:    k.nextID(),
		s:     field,
		box:   f.bounds().union(moved.bounds()),
		faces: faces,
		edges: edges,
	}
	if f.exact {
		s.volume = f.area * math.Abs(amount)
		s.exact = true
	}
	return s
}

// sideFace is the planar lateral face swept by a straight boundary edge,
// oriented away from the face's interior. Curved edges sweep curved
// surfaces, which are not tracked.
func (k *Kernel) sideFace(f *face, e *edge, d v3.Vec) *face {
	a, b := e.start(), e.end()
	if !straight(e) || geom.Near(a, b, geom.Tolerance) {
		return nil
	}
	x := b.Sub(a).Normalize()
	out := x.Cross(f.plane.ZDir).Normalize()
	trial := geom.Lerp(a, b, 0.5).Add(out.MulScalar(1e-4 * math.Max(1, f.local.diagonal())))
	if f.region.Evaluate(local2(f.plane, trial)) < 0 {
		out = out.Neg()
	}
	p := geom.Plane{Origin: a, XDir: x, ZDir: out}
	quad := []v3.Vec{p.ToLocal(a), p.ToLocal(b), p.ToLocal(b.Add(d)), p.ToLocal(a.Add(d))}
	side, err := k.polygonFace(p, quad)
	if err != nil {
		return nil
	}
	return side
}

// straight reports whether an edge is a line segment.
func straight(e *edge) bool {
	a, b := e.start(), e.end()
	tol := 1e-9 * math.Max(1, b.Sub(a).Length())
	for _, u := range []float64{0.25, 0.5, 0.75} {
		if !geom.Near(e.c.point(u), geom.Lerp(a, b, u), tol) {
			return false
		}
	}
	return true
}

// box realizes a centered box; the field comes from sdf.Box3D and the
// topology from an extruded rectangle.
func (k *Kernel) box(l, w, h float64) (*solid, error) {
	field, err := sdf.Box3D(v3.Vec{X: l, Y: w, Z: h}, 0)
	if err != nil {
		return nil, &kernel.GeometryError{Op: "box", Message: "sdf.Box3D failed", Err: err}
	}
	base, err := k.rectangle(geom.XY.Offset(-h/2), l, w)
	if err != nil {
		return nil, err
	}
	s := k.sweep(base, h, field)
	s.volume, s.exact = l*w*h, true
	return s, nil
}

// cylinder realizes a cylinder along Z centered on the origin.
func (k *Kernel) cylinder(r, h float64) (*solid, error) {
	field, err := sdf.Cylinder3D(h, r, 0)
	if err != nil {
		return nil, &kernel.GeometryError{Op: "cylinder", Message: "sdf.Cylinder3D failed", Err: err}
	}
	base, err := k.disc(geom.XY.Offset(-h/2), r)
	if err != nil {
		return nil, err
	}
	s := k.sweep(base, h, field)
	s.volume, s.exact = math.Pi*r*r*h, true
	return s, nil
}

// rectangle is a w×h face centered on the plane origin.
func (k *Kernel) rectangle(p geom.Plane, w, h float64) (*face, error) {
	return k.polygonFace(p, []v3.Vec{
		{X: -w / 2, Y: -h / 2}, {X: w / 2, Y: -h / 2}, {X: w / 2, Y: h / 2}, {X: -w / 2, Y: h / 2},
	})
}

// disc is a circular face centered on the plane origin.
func (k *Kernel) disc(p geom.Plane, r float64) (*face, error) {
	e := &edge{id: k.nextID(), c: arc{center: p.Origin, x: p.XDir, y: p.YDir(), radius: r, sweep: 2 * math.Pi}}
	return k.newFace(p, &wire{id: k.nextID(), edges: []*edge{e}}, nil)
}

// regularPolygon is inscribed in a circle of radius r with a vertex on +X.
func (k *Kernel) regularPolygon(p geom.Plane, r float64, sides int) (*face, error) {
	pts := make([]v3.Vec, sides)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(sides)
		pts[i] = v3.Vec{X: r * math.Cos(t), Y: r * math.Sin(t)}
	}
	return k.polygonFace(p, pts)
}

// polygonFace joins plane-local points into a closed straight loop.
func (k *Kernel) polygonFace(p geom.Plane, local []v3.Vec) (*face, error) {
	loop := &wire{id: k.nextID()}
	for i := range local {
		a := p.FromLocal(local[i])
		b := p.FromLocal(local[(i+1)%len(local)])
		loop.edges = append(loop.edges, &edge{id: k.nextID(), c: segment{a: a, b: b}})
	}
	return k.newFace(p, loop, nil)
}
