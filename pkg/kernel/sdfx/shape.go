package sdfx

import (
	"math"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Edge  = (*edge)(nil)
	_ kernel.Wire  = (*wire)(nil)
	_ kernel.Face  = (*face)(nil)
	_ kernel.Solid = (*solid)(nil)
	_ kernel.Shape = (*compound)(nil)
)

// bounds is an axis-aligned box. The zero value is empty.
type bounds struct {
	min, max v3.Vec
	set      bool
}

func (b bounds) include(p v3.Vec) bounds {
	if !b.set {
		return bounds{min: p, max: p, set: true}
	}
	b.min = v3.Vec{X: math.Min(b.min.X, p.X), Y: math.Min(b.min.Y, p.Y), Z: math.Min(b.min.Z, p.Z)}
	b.max = v3.Vec{X: math.Max(b.max.X, p.X), Y: math.Max(b.max.Y, p.Y), Z: math.Max(b.max.Z, p.Z)}
	return b
}

func (b bounds) union(o bounds) bounds {
	if !o.set {
		return b
	}
	return b.include(o.min).include(o.max)
}

func (b bounds) intersect(o bounds) bounds {
	if !b.set || !o.set {
		return bounds{}
	}
	r := bounds{
		min: v3.Vec{X: math.Max(b.min.X, o.min.X), Y: math.Max(b.min.Y, o.min.Y), Z: math.Max(b.min.Z, o.min.Z)},
		max: v3.Vec{X: math.Min(b.max.X, o.max.X), Y: math.Min(b.max.Y, o.max.Y), Z: math.Min(b.max.Z, o.max.Z)},
		set: true,
	}
	if r.min.X > r.max.X || r.min.Y > r.max.Y || r.min.Z > r.max.Z {
		return bounds{}
	}
	return r
}

func (b bounds) corners() []v3.Vec {
	if !b.set {
		return nil
	}
	out := make([]v3.Vec, 0, 8)
	for _, x := range []float64{b.min.X, b.max.X} {
		for _, y := range []float64{b.min.Y, b.max.Y} {
			for _, z := range []float64{b.min.Z, b.max.Z} {
				out = append(out, v3.Vec{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

func (b bounds) mapped(m sdf.M44) bounds {
	var out bounds
	for _, c := range b.corners() {
		out = out.include(m.MulPosition(c))
	}
	return out
}

func (b bounds) size() v3.Vec { return b.max.Sub(b.min) }

func (b bounds) diagonal() float64 {
	if !b.set {
		return 0
	}
	return b.size().Length()
}

func (b bounds) arrays() (min, max [3]float64) {
	return [3]float64{b.min.X, b.min.Y, b.min.Z}, [3]float64{b.max.X, b.max.Y, b.max.Z}
}

// dedupe keeps the first of any points closer than tol.
func dedupe(pts []v3.Vec, tol float64) []v3.Vec {
	out := make([]v3.Vec, 0, len(pts))
	for _, p := range pts {
		dup := false
		for _, q := range out {
			if geom.Near(p, q, tol) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// --- edge ---

type edge struct {
	id uint64
	c  curve
}

// curveSamples is the sample count used for curve bounding boxes.
const curveSamples = 64

func (e *edge) Kind() kernel.ShapeKind { return kernel.KindEdge }
func (e *edge) ID() uint64             { return e.id }

func (e *edge) BoundingBox() (min, max [3]float64) {
	return e.bounds().arrays()
}

func (e *edge) bounds() bounds {
	var b bounds
	for i := 0; i <= curveSamples; i++ {
		b = b.include(e.c.point(float64(i) / curveSamples))
	}
	return b
}

func (e *edge) start() v3.Vec { return e.c.point(0) }
func (e *edge) end() v3.Vec   { return e.c.point(1) }

func (e *edge) Vertices() []v3.Vec {
	if e.Closed() {
		return []v3.Vec{e.start()}
	}
	return []v3.Vec{e.start(), e.end()}
}

func (e *edge) Edges() []kernel.Edge   { return []kernel.Edge{e} }
func (e *edge) Faces() []kernel.Face   { return nil }
func (e *edge) Solids() []kernel.Solid { return nil }

func (e *edge) PositionAt(u float64) v3.Vec { return e.c.point(clamp01(u)) }
func (e *edge) TangentAt(u float64) v3.Vec  { return unitTangent(e.c, clamp01(u)) }

func (e *edge) Closed() bool {
	return geom.Near(e.start(), e.end(), 1e-9*math.Max(1, e.c.length()))
}

func clamp01(u float64) float64 { return math.Max(0, math.Min(1, u)) }

// --- wire ---

type wire struct {
	id    uint64
	edges []*edge
}

func (w *wire) Kind() kernel.ShapeKind { return kernel.KindWire }
func (w *wire) ID() uint64             { return w.id }

func (w *wire) BoundingBox() (min, max [3]float64) { return w.bounds().arrays() }

func (w *wire) bounds() bounds {
	var b bounds
	for _, e := range w.edges {
		b = b.union(e.bounds())
	}
	return b
}

func (w *wire) Vertices() []v3.Vec {
	var pts []v3.Vec
	for _, e := range w.edges {
		pts = append(pts, e.Vertices()...)
	}
	return dedupe(pts, 1e-7)
}

func (w *wire) Edges() []kernel.Edge {
	out := make([]kernel.Edge, len(w.edges))
	for i, e := range w.edges {
		out[i] = e
	}
	return out
}

func (w *wire) Faces() []kernel.Face   { return nil }
func (w *wire) Solids() []kernel.Solid { return nil }

func (w *wire) length() float64 {
	var sum float64
	for _, e := range w.edges {
		sum += e.c.length()
	}
	return sum
}

// locate maps a wire parameter onto an edge and its parameter, spacing
// edges by length.
func (w *wire) locate(u float64) (*edge, float64) {
	u = clamp01(u)
	total := w.length()
	target := u * total
	for i, e := range w.edges {
		l := e.c.length()
		if target <= l || i == len(w.edges)-1 {
			if l == 0 {
				return e, 0
			}
			return e, clamp01(target / l)
		}
		target -= l
	}
	return nil, 0
}

func (w *wire) PositionAt(u float64) v3.Vec {
	e, t := w.locate(u)
	if e == nil {
		return geom.Origin
	}
	return e.c.point(t)
}

func (w *wire) TangentAt(u float64) v3.Vec {
	e, t := w.locate(u)
	if e == nil {
		return geom.Origin
	}
	return unitTangent(e.c, t)
}

func (w *wire) Closed() bool {
	if len(w.edges) == 0 {
		return false
	}
	return geom.Near(w.edges[0].start(), w.edges[len(w.edges)-1].end(), 1e-7*math.Max(1, w.bounds().diagonal()))
}

// --- compound ---

type compound struct {
	id     uint64
	shapes []kernel.Shape
}

func (c *compound) Kind() kernel.ShapeKind { return kernel.KindCompound }
func (c *compound) ID() uint64             { return c.id }

func (c *compound) BoundingBox() (min, max [3]float64) {
	var b bounds
	for _, s := range c.shapes {
		lo, hi := s.BoundingBox()
		b = b.include(v3.Vec{X: lo[0], Y: lo[1], Z: lo[2]}).include(v3.Vec{X: hi[0], Y: hi[1], Z: hi[2]})
	}
	return b.arrays()
}

func (c *compound) Vertices() []v3.Vec {
	var pts []v3.Vec
	for _, s := range c.shapes {
		pts = append(pts, s.Vertices()...)
	}
	return dedupe(pts, 1e-7)
}

func (c *compound) Edges() []kernel.Edge {
	var out []kernel.Edge
	for _, s := range c.shapes {
		out = append(out, s.Edges()...)
	}
	return out
}

func (c *compound) Faces() []kernel.Face {
	var out []kernel.Face
	for _, s := range c.shapes {
		out = append(out, s.Faces()...)
	}
	return out
}

func (c *compound) Solids() []kernel.Solid {
	var out []kernel.Solid
	for _, s := range c.shapes {
		out = append(out, s.Solids()...)
	}
	return out
}
