// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Curves are exact parametric objects. Faces carry exact boundary loops
// (measured with Green's theorem) alongside a 2D SDF in their own frame,
// and solids carry a 3D SDF. Booleans combine the fields; their measures
// are sampled on a grid and cached.
package sdfx

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/primitive"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Defaults, mirrored by the config package.
const (
	DefaultTolerance        = 1e-7
	DefaultSampleResolution = 96
	DefaultMeshCells        = 120
	DefaultCacheSize        = 256
	DefaultArcStepDegrees   = 2.0
)

type options struct {
	tolerance float64
	samples   int
	meshCells int
	cacheSize int
	arcStep   float64 // radians
	logger    *slog.Logger
}

// Option configures a Kernel.
type Option func(*options)

// WithTolerance sets the linear tolerance used to join edges and test
// coplanarity. It scales with the size of the geometry involved.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// WithSampleResolution sets the grid resolution used to measure boolean
// results.
func WithSampleResolution(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.samples = n
		}
	}
}

// WithMeshCells controls marching cubes tessellation resolution.
func WithMeshCells(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.meshCells = n
		}
	}
}

// WithCacheSize bounds the number of cached sampled measures.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithArcStep sets the angular step, in degrees, used to polygonize arcs.
func WithArcStep(deg float64) Option {
	return func(o *options) {
		if deg > 0 {
			o.arcStep = deg * math.Pi / 180
		}
	}
}

// WithLogger sets the kernel's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type measureKey struct {
	id     uint64
	metric kernel.Metric
}

// Kernel implements kernel.Kernel using sdfx. It is safe for concurrent
// use; shapes are immutable.
type Kernel struct {
	opts  options
	ids   atomic.Uint64
	cache *lru.Cache[measureKey, float64]
	log   *slog.Logger
}

// New returns a new Kernel.
func New(opts ...Option) *Kernel {
	o := options{
		tolerance: DefaultTolerance,
		samples:   DefaultSampleResolution,
		meshCells: DefaultMeshCells,
		cacheSize: DefaultCacheSize,
		arcStep:   DefaultArcStepDegrees * math.Pi / 180,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	cache, err := lru.New[measureKey, float64](o.cacheSize)
	if err != nil {
		// WithCacheSize only admits positive sizes.
		panic(fmt.Sprintf("sdfx: measure cache of size %d: %v", o.cacheSize, err))
	}
	return &Kernel{opts: o, cache: cache, log: o.logger.With("component", "kernel")}
}

func (k *Kernel) nextID() uint64 { return k.ids.Add(1) }

func (k *Kernel) newEdge(c curve) *edge { return &edge{id: k.nextID(), c: c} }

// Construct realizes a validated descriptor.
func (k *Kernel) Construct(d primitive.Descriptor) (kernel.Shape, error) {
	s, err := k.construct(d)
	if err != nil {
		k.log.Debug("construct failed", "kind", d.Kind().String(), "err", err)
		return nil, err
	}
	k.log.Debug("construct", "kind", d.Kind().String(), "id", s.ID())
	return s, nil
}

func (k *Kernel) construct(d primitive.Descriptor) (kernel.Shape, error) {
	op := d.Kind().String()
	switch p := d.(type) {
	case primitive.Line:
		return k.newEdge(segment{a: p.Points[0], b: p.Points[1]}), nil

	case primitive.Polyline:
		w := &wire{id: k.nextID()}
		n := len(p.Points)
		for i := 0; i+1 < n; i++ {
			w.edges = append(w.edges, k.newEdge(segment{a: p.Points[i], b: p.Points[i+1]}))
		}
		if p.Close && !geom.Near(p.Points[0], p.Points[n-1], geom.Tolerance) {
			w.edges = append(w.edges, k.newEdge(segment{a: p.Points[n-1], b: p.Points[0]}))
		}
		return w, nil

	case primitive.PolarLine:
		var dir v3.Vec
		if p.Angle != nil {
			a := *p.Angle * math.Pi / 180
			dir = v3.Vec{X: math.Cos(a), Y: math.Sin(a)}
		} else {
			dir = p.Direction.Normalize()
		}
		return k.newEdge(segment{a: p.Start, b: p.Start.Add(dir.MulScalar(p.Length))}), nil

	case primitive.RadiusArc:
		apex := sagittaApex(p.Start, p.End, radiusSagitta(p.Start, p.End, p.Radius))
		return k.arcEdge(op, p.Start, apex, p.End)

	case primitive.SagittaArc:
		return k.arcEdge(op, p.Start, sagittaApex(p.Start, p.End, p.Sagitta), p.End)

	case primitive.TangentArc:
		if p.TangentAtEnd {
			a, ok := tangentArc(p.Points[1], p.Points[0], p.Tangent.Neg())
			if !ok {
				return nil, kernel.Errorf(op, "tangent is parallel to the chord")
			}
			return k.newEdge(reversed{c: a}), nil
		}
		a, ok := tangentArc(p.Points[0], p.Points[1], p.Tangent)
		if !ok {
			return nil, kernel.Errorf(op, "tangent is parallel to the chord")
		}
		return k.newEdge(a), nil

	case primitive.ThreePointArc:
		return k.arcEdge(op, p.Points[0], p.Points[1], p.Points[2])

	case primitive.CenterArc:
		return k.newEdge(arc{
			center: p.Center,
			x:      geom.UnitX,
			y:      geom.UnitY,
			radius: p.Radius,
			start:  p.StartAngle * math.Pi / 180,
			sweep:  p.ArcSize * math.Pi / 180,
		}), nil

	case primitive.Spline:
		pts := append([]v3.Vec(nil), p.Points...)
		h, err := newSpline(pts, append([]v3.Vec(nil), p.Tangents...), p.TangentScalars)
		if err != nil {
			return nil, &kernel.GeometryError{Op: op, Message: "cannot fit spline", Err: err}
		}
		return k.newEdge(h), nil

	case primitive.Helix:
		axis := p.Direction.Normalize()
		x := geom.Perpendicular(axis)
		angle := 2 * math.Pi * p.Height / p.Pitch
		if p.LeftHand {
			angle = -angle
		}
		return k.newEdge(helix{
			center: p.Center,
			axis:   axis,
			x:      x,
			y:      axis.Cross(x),
			radius: p.Radius,
			height: p.Height,
			angle:  angle,
			taper:  math.Tan(p.ConeAngle * math.Pi / 180),
		}), nil

	case primitive.Rectangle:
		return k.rectangle(geom.XY, p.Width, p.Height)
	case primitive.Circle:
		return k.disc(geom.XY, p.Radius)
	case primitive.RegularPolygon:
		return k.regularPolygon(geom.XY, p.Radius, p.Sides)
	case primitive.Box:
		return k.box(p.Length, p.Width, p.Height)
	case primitive.Cylinder:
		return k.cylinder(p.Radius, p.Height)
	}
	return nil, kernel.Errorf(op, "unsupported descriptor %T", d)
}

func (k *Kernel) arcEdge(op string, p1, p2, p3 v3.Vec) (kernel.Shape, error) {
	a, ok := arcThrough(p1, p2, p3)
	if !ok {
		return nil, kernel.Errorf(op, "points %s, %s and %s are collinear", geom.Format(p1), geom.Format(p2), geom.Format(p3))
	}
	return k.newEdge(a), nil
}

// Compound groups shapes without combining them. Nil shapes are skipped.
func (k *Kernel) Compound(shapes ...kernel.Shape) kernel.Shape {
	out := make([]kernel.Shape, 0, len(shapes))
	for _, s := range shapes {
		if s != nil {
			out = append(out, s)
		}
	}
	return &compound{id: k.nextID(), shapes: out}
}

// MakeWire chains edges end to start, reversing edges where needed. No
// edges give an empty wire; edges that do not form one chain fail.
func (k *Kernel) MakeWire(edges []kernel.Edge) (kernel.Wire, error) {
	es, err := k.ownEdges("make_wire", edges)
	if err != nil {
		return nil, err
	}
	if len(es) == 0 {
		return &wire{id: k.nextID()}, nil
	}
	chains := k.chain(es, k.tolerance(es))
	if len(chains) != 1 {
		return nil, kernel.Errorf("make_wire", "edges form %d separate chains", len(chains))
	}
	return &wire{id: k.nextID(), edges: chains[0]}, nil
}

// ownEdges unwraps edges made by this kernel; wires contribute their edges.
func (k *Kernel) ownEdges(op string, edges []kernel.Edge) ([]*edge, error) {
	out := make([]*edge, 0, len(edges))
	for _, e := range edges {
		switch v := e.(type) {
		case *edge:
			out = append(out, v)
		case *wire:
			out = append(out, v.edges...)
		default:
			return nil, kernel.Errorf(op, "edge %T was not made by this kernel", e)
		}
	}
	return out, nil
}

// tolerance scales the base tolerance with the size of the edges.
func (k *Kernel) tolerance(es []*edge) float64 {
	var b bounds
	for _, e := range es {
		b = b.union(e.bounds())
	}
	return k.opts.tolerance * math.Max(1, b.diagonal())
}

// chain groups edges into maximal end-to-start chains, preserving the
// first edge's direction and reversing others as needed.
func (k *Kernel) chain(es []*edge, tol float64) [][]*edge {
	remaining := append([]*edge(nil), es...)
	take := func(i int) *edge {
		e := remaining[i]
		remaining = append(remaining[:i], remaining[i+1:]...)
		return e
	}
	rev := func(e *edge) *edge { return k.newEdge(reversed{c: e.c}) }

	var chains [][]*edge
	for len(remaining) > 0 {
		cur := []*edge{take(0)}
		if cur[0].Closed() {
			chains = append(chains, cur)
			continue
		}
		for grown := true; grown; {
			grown = false
			head, tail := cur[0].start(), cur[len(cur)-1].end()
			if geom.Near(head, tail, tol) {
				break
			}
			for i, e := range remaining {
				switch {
				case geom.Near(e.start(), tail, tol):
					cur = append(cur, take(i))
				case geom.Near(e.end(), tail, tol):
					cur = append(cur, rev(take(i)))
				case geom.Near(e.end(), head, tol):
					cur = append([]*edge{take(i)}, cur...)
				case geom.Near(e.start(), head, tol):
					cur = append([]*edge{rev(take(i))}, cur...)
				default:
					continue
				}
				grown = true
				break
			}
		}
		chains = append(chains, cur)
	}
	return chains
}

// ToMesh converts a shape to a triangle mesh using marching cubes. Faces
// are meshed as thin slabs; curves cannot be meshed.
func (k *Kernel) ToMesh(s kernel.Shape) (*kernel.Mesh, error) {
	field, err := k.meshField(s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.opts.meshCells)
	triangles := render.ToTriangles(field, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

func (k *Kernel) meshField(s kernel.Shape) (sdf.SDF3, error) {
	if solids := s.Solids(); len(solids) > 0 {
		ss, err := ownSolids("mesh", solids)
		if err != nil {
			return nil, err
		}
		return solidField(ss), nil
	}
	faces := s.Faces()
	if len(faces) == 0 {
		return nil, kernel.Errorf("mesh", "%s has no faces or solids to tessellate", s.Kind())
	}
	ff, err := ownFaces("mesh", faces)
	if err != nil {
		return nil, err
	}
	fields := make([]sdf.SDF3, len(ff))
	for i, f := range ff {
		// Marching cubes needs a few cells across the slab to find it.
		thick := math.Max(3*f.local.diagonal()/float64(k.opts.meshCells), 1e-3)
		slab := sdf.Extrude3D(f.region, thick)
		fields[i] = sdf.Transform3D(slab, f.plane.Location().Matrix())
	}
	if len(fields) == 1 {
		return fields[0], nil
	}
	return sdf.Union3D(fields...), nil
}
