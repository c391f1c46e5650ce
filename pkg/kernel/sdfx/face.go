package sdfx

import (
	"math"
	"sort"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"
)

// face is a planar region. region and local live in plane coordinates;
// edges and loops are global. Loop-built faces carry exact measures;
// boolean results are measured by sampling region.
type face struct {
	id       uint64
	plane    geom.Plane
	loops    []*wire
	edges    []*edge
	region   sdf.SDF2
	local    bounds
	area     float64
	centroid v3.Vec
	exact    bool
	cut      *faceCut
}

// faceCut is the planar counterpart of solidCut. removed and box are in the
// result's frame.
type faceCut struct {
	base    []*face
	removed sdf.SDF2
	box     bounds
}

func (f *face) Kind() kernel.ShapeKind { return kernel.KindFace }
func (f *face) ID() uint64             { return f.id }
func (f *face) Plane() geom.Plane      { return f.plane }

func (f *face) BoundingBox() (min, max [3]float64) { return f.bounds().arrays() }

func (f *face) bounds() bounds {
	var b bounds
	if len(f.edges) > 0 {
		for _, e := range f.edges {
			b = b.union(e.bounds())
		}
		return b
	}
	for _, c := range f.local.corners() {
		b = b.include(f.plane.FromLocal(c))
	}
	return b
}

func (f *face) Vertices() []v3.Vec {
	var pts []v3.Vec
	for _, e := range f.edges {
		pts = append(pts, e.Vertices()...)
	}
	return dedupe(pts, 1e-7)
}

func (f *face) Edges() []kernel.Edge {
	out := make([]kernel.Edge, len(f.edges))
	for i, e := range f.edges {
		out[i] = e
	}
	return out
}

func (f *face) Faces() []kernel.Face   { return []kernel.Face{f} }
func (f *face) Solids() []kernel.Solid { return nil }

func local2(p geom.Plane, g v3.Vec) v2.Vec {
	l := p.ToLocal(g)
	return v2.Vec{X: l.X, Y: l.Y}
}

// greens integrates a closed loop in plane coordinates and returns the
// signed area and the first moments about the local axes.
func greens(w *wire, p geom.Plane) (area, mx, my float64) {
	y := p.YDir()
	for _, e := range w.edges {
		c := e.c
		f := func(u float64) (x, yy, dx, dy float64) {
			q := c.point(u).Sub(p.Origin)
			d := c.deriv(u)
			return q.Dot(p.XDir), q.Dot(y), d.Dot(p.XDir), d.Dot(y)
		}
		area += integrate(func(u float64) float64 {
			x, yy, dx, dy := f(u)
			return (x*dy - yy*dx) / 2
		}, quadNodes)
		mx += integrate(func(u float64) float64 {
			x, _, _, dy := f(u)
			return x * x * dy / 2
		}, quadNodes)
		my += integrate(func(u float64) float64 {
			_, yy, dx, _ := f(u)
			return -yy * yy * dx / 2
		}, quadNodes)
	}
	return area, mx, my
}

// polygon approximates a loop with chords in plane coordinates.
func (k *Kernel) polygon(w *wire, p geom.Plane) []v2.Vec {
	var pts []v2.Vec
	for _, e := range w.edges {
		n := e.c.segments(k.opts.arcStep)
		for i := 0; i < n; i++ {
			q := local2(p, e.c.point(float64(i)/float64(n)))
			if len(pts) > 0 && q.Sub(pts[len(pts)-1]).Length() < 1e-12 {
				continue
			}
			pts = append(pts, q)
		}
	}
	if len(pts) > 1 && pts[0].Sub(pts[len(pts)-1]).Length() < 1e-12 {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func polygonBounds(pts []v2.Vec) bounds {
	var b bounds
	for _, q := range pts {
		b = b.include(v3.Vec{X: q.X, Y: q.Y})
	}
	return b
}

// newFace builds a face from an outer loop and holes lying in p.
func (k *Kernel) newFace(p geom.Plane, outer *wire, holes []*wire) (*face, error) {
	poly := k.polygon(outer, p)
	region, err := sdf.Polygon2D(poly)
	if err != nil {
		return nil, &kernel.GeometryError{Op: "make_face", Message: "outer loop is degenerate", Err: err}
	}
	a, mx, my := greens(outer, p)
	sign := math.Copysign(1, a)
	area, sx, sy := math.Abs(a), sign*mx, sign*my

	loops := []*wire{outer}
	edges := append([]*edge(nil), outer.edges...)
	for _, h := range holes {
		hp, err := sdf.Polygon2D(k.polygon(h, p))
		if err != nil {
			return nil, &kernel.GeometryError{Op: "make_face", Message: "hole loop is degenerate", Err: err}
		}
		region = sdf.Difference2D(region, hp)
		ha, hmx, hmy := greens(h, p)
		hs := math.Copysign(1, ha)
		area -= math.Abs(ha)
		sx -= hs * hmx
		sy -= hs * hmy
		loops = append(loops, h)
		edges = append(edges, h.edges...)
	}
	if area <= 0 {
		return nil, kernel.Errorf("make_face", "face has no area")
	}
	return &face{
		id:       k.nextID(),
		plane:    p,
		loops:    loops,
		edges:    edges,
		region:   region,
		local:    polygonBounds(poly),
		area:     area,
		centroid: v3.Vec{X: sx / area, Y: sy / area},
		exact:    true,
	}, nil
}

// fitPlane finds the plane through pts by principal components. The normal
// is oriented towards +Z, then +Y, then +X so that faces drawn in the XY
// plane face up whatever their winding.
func fitPlane(pts []v3.Vec, tol float64) (geom.Plane, error) {
	if len(pts) < 3 {
		return geom.Plane{}, kernel.Errorf("fit_plane", "need at least 3 points, got %d", len(pts))
	}
	var mean v3.Vec
	for _, p := range pts {
		mean = mean.Add(p)
	}
	mean = mean.MulScalar(1 / float64(len(pts)))
	cov := mat.NewSymDense(3, nil)
	for _, p := range pts {
		d := p.Sub(mean)
		c := [3]float64{d.X, d.Y, d.Z}
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				cov.SetSym(i, j, cov.At(i, j)+c[i]*c[j])
			}
		}
	}
	var es mat.EigenSym
	if !es.Factorize(cov, true) {
		return geom.Plane{}, kernel.Errorf("fit_plane", "eigen decomposition failed")
	}
	vals := es.Values(nil)
	if vals[1] <= 1e-12*math.Max(vals[2], 1e-300) {
		return geom.Plane{}, kernel.Errorf("fit_plane", "points are collinear")
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	n := orient(v3.Vec{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}.Normalize())

	origin := n.MulScalar(n.Dot(mean))
	p, err := geom.NewPlane(origin, geom.Origin, n)
	if err != nil {
		return geom.Plane{}, &kernel.GeometryError{Op: "fit_plane", Message: "bad normal", Err: err}
	}
	for _, q := range pts {
		if math.Abs(p.Distance(q)) > tol {
			return geom.Plane{}, kernel.Errorf("fit_plane", "points are not coplanar (%s is %.3g off the plane)", geom.Format(q), p.Distance(q))
		}
	}
	return p, nil
}

func orient(n v3.Vec) v3.Vec {
	const eps = 1e-9
	switch {
	case math.Abs(n.Z) > eps:
		if n.Z < 0 {
			return n.Neg()
		}
	case math.Abs(n.Y) > eps:
		if n.Y < 0 {
			return n.Neg()
		}
	case n.X < 0:
		return n.Neg()
	}
	return n
}

func (k *Kernel) samplePoints(edges []*edge) []v3.Vec {
	var pts []v3.Vec
	for _, e := range edges {
		n := e.c.segments(k.opts.arcStep)
		for i := 0; i <= n; i++ {
			pts = append(pts, e.c.point(float64(i)/float64(n)))
		}
	}
	return pts
}

// MakeFace chains edges into closed loops and builds one face per outer
// loop; loops inside another loop become holes.
func (k *Kernel) MakeFace(edges []kernel.Edge) (kernel.Shape, error) {
	es, err := k.ownEdges("make_face", edges)
	if err != nil {
		return nil, err
	}
	if len(es) == 0 {
		return nil, kernel.Errorf("make_face", "no edges")
	}
	tol := k.tolerance(es)
	chains := k.chain(es, tol)
	loops := make([]*wire, 0, len(chains))
	for _, c := range chains {
		w := &wire{id: k.nextID(), edges: c}
		if !geom.Near(c[0].start(), c[len(c)-1].end(), tol) {
			return nil, kernel.Errorf("make_face", "edges do not form closed loops (open chain from %s to %s)",
				geom.Format(c[0].start()), geom.Format(c[len(c)-1].end()))
		}
		loops = append(loops, w)
	}
	p, err := fitPlane(k.samplePoints(es), tol)
	if err != nil {
		return nil, err
	}

	type loopInfo struct {
		w    *wire
		poly []v2.Vec
		area float64
	}
	infos := make([]loopInfo, len(loops))
	for i, w := range loops {
		a, _, _ := greens(w, p)
		infos[i] = loopInfo{w: w, poly: k.polygon(w, p), area: math.Abs(a)}
	}
	sort.SliceStable(infos, func(i, j int) bool { return infos[i].area > infos[j].area })

	type group struct {
		outer  loopInfo
		region sdf.SDF2
		holes  []*wire
	}
	var groups []*group
	for _, li := range infos {
		var host *group
		for _, g := range groups {
			if len(li.poly) > 0 && g.region.Evaluate(li.poly[0]) < 0 {
				host = g
			}
		}
		if host != nil {
			host.holes = append(host.holes, li.w)
			continue
		}
		r, err := sdf.Polygon2D(li.poly)
		if err != nil {
			return nil, &kernel.GeometryError{Op: "make_face", Message: "degenerate loop", Err: err}
		}
		groups = append(groups, &group{outer: li, region: r})
	}

	faces := make([]kernel.Shape, 0, len(groups))
	for _, g := range groups {
		f, err := k.newFace(p, g.outer.w, g.holes)
		if err != nil {
			return nil, err
		}
		faces = append(faces, f)
	}
	if len(faces) == 1 {
		return faces[0], nil
	}
	return k.Compound(faces...), nil
}

// MakeHull builds the convex hull face of the edges' sample points.
func (k *Kernel) MakeHull(edges []kernel.Edge) (kernel.Face, error) {
	es, err := k.ownEdges("make_hull", edges)
	if err != nil {
		return nil, err
	}
	if len(es) == 0 {
		return nil, kernel.Errorf("make_hull", "no edges")
	}
	pts := k.samplePoints(es)
	p, err := fitPlane(pts, k.tolerance(es))
	if err != nil {
		return nil, err
	}
	flat := make([]v2.Vec, len(pts))
	for i, q := range pts {
		flat[i] = local2(p, q)
	}
	hull := convexHull(flat)
	if len(hull) < 3 {
		return nil, kernel.Errorf("make_hull", "hull is degenerate")
	}
	loop := &wire{id: k.nextID()}
	for i := range hull {
		a := p.FromLocal(v3.Vec{X: hull[i].X, Y: hull[i].Y})
		j := (i + 1) % len(hull)
		b := p.FromLocal(v3.Vec{X: hull[j].X, Y: hull[j].Y})
		loop.edges = append(loop.edges, &edge{id: k.nextID(), c: segment{a: a, b: b}})
	}
	return k.newFace(p, loop, nil)
}

// convexHull is Andrew's monotone chain; the result is counter-clockwise
// without repeating the first point.
func convexHull(pts []v2.Vec) []v2.Vec {
	ps := append([]v2.Vec(nil), pts...)
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].X != ps[j].X {
			return ps[i].X < ps[j].X
		}
		return ps[i].Y < ps[j].Y
	})
	cross := func(o, a, b v2.Vec) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	const eps = 1e-12
	var lower, upper []v2.Vec
	for _, p := range ps {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= eps {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(ps) - 1; i >= 0; i-- {
		p := ps[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= eps {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	if len(lower) < 2 {
		return lower
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// flipped returns f with its normal reversed; the region is mirrored in
// local Y so every global point keeps its meaning.
func (k *Kernel) flipped(f *face) *face {
	out := *f
	out.id = k.nextID()
	out.plane = geom.Plane{Origin: f.plane.Origin, XDir: f.plane.XDir, ZDir: f.plane.ZDir.Neg()}
	out.region = sdf.Transform2D(f.region, sdf.Scale2d(v2.Vec{X: 1, Y: -1}))
	out.local = bounds{
		min: v3.Vec{X: f.local.min.X, Y: -f.local.max.Y},
		max: v3.Vec{X: f.local.max.X, Y: -f.local.min.Y},
		set: f.local.set,
	}
	out.centroid = v3.Vec{X: f.centroid.X, Y: -f.centroid.Y}
	return &out
}

// frameMap returns the 2D transform taking from-local coordinates to
// to-local coordinates for two coplanar frames.
func frameMap(from, to geom.Plane) sdf.M33 {
	t := local2(to, from.Origin)
	theta := math.Atan2(from.XDir.Dot(to.YDir()), from.XDir.Dot(to.XDir))
	m := sdf.Translate2d(t).Mul(rotation2(theta))
	if from.ZDir.Dot(to.ZDir) < 0 {
		m = m.Mul(sdf.Scale2d(v2.Vec{X: 1, Y: -1}))
	}
	return m
}

// rotation2 is a counter-clockwise rotation by theta radians, checked
// against a reference vector like geom's 3D rotations.
func rotation2(theta float64) sdf.M33 {
	r := sdf.Rotate2d(theta)
	got := r.MulPosition(v2.Vec{X: 1})
	if math.Abs(got.X-math.Cos(theta)) < 1e-9 && math.Abs(got.Y-math.Sin(theta)) < 1e-9 {
		return r
	}
	return sdf.Rotate2d(-theta)
}

// regionIn expresses f's region in the coordinates of plane to.
func regionIn(f *face, to geom.Plane) sdf.SDF2 {
	if f.plane == to {
		return f.region
	}
	return sdf.Transform2D(f.region, frameMap(f.plane, to))
}

func boundsIn(f *face, to geom.Plane) bounds {
	var b bounds
	for _, c := range f.local.corners() {
		b = b.include(to.ToLocal(f.plane.FromLocal(c)))
	}
	b.min.Z, b.max.Z = 0, 0
	return b
}
