package sdfx

import (
	"math"

	"github.com/chazu/contour/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"
)

// curve is an exact parametric curve on u in [0, 1].
type curve interface {
	point(u float64) v3.Vec
	deriv(u float64) v3.Vec
	length() float64
	// segments is how many chords approximate the curve when polygonizing
	// with the given angular step (radians).
	segments(step float64) int
}

// quadNodes is the Gauss-Legendre order used for curve integrals.
const quadNodes = 24

func integrate(f func(float64) float64, n int) float64 {
	return quad.Fixed(f, 0, 1, n, nil, 0)
}

func speedLength(c curve, n int) float64 {
	return integrate(func(u float64) float64 { return c.deriv(u).Length() }, n)
}

// segment is a straight line from a to b.
type segment struct {
	a, b v3.Vec
}

func (s segment) point(u float64) v3.Vec { return geom.Lerp(s.a, s.b, u) }
func (s segment) deriv(float64) v3.Vec   { return s.b.Sub(s.a) }
func (s segment) length() float64        { return s.b.Sub(s.a).Length() }
func (s segment) segments(float64) int   { return 1 }

// arc is a circular arc around center in the plane spanned by the
// orthonormal pair (x, y). Angles are radians.
type arc struct {
	center       v3.Vec
	x, y         v3.Vec
	radius       float64
	start, sweep float64
}

func (a arc) angle(u float64) float64 { return a.start + a.sweep*u }

func (a arc) point(u float64) v3.Vec {
	t := a.angle(u)
	return a.center.Add(a.x.MulScalar(a.radius * math.Cos(t))).Add(a.y.MulScalar(a.radius * math.Sin(t)))
}

func (a arc) deriv(u float64) v3.Vec {
	t := a.angle(u)
	k := a.radius * a.sweep
	return a.x.MulScalar(-k * math.Sin(t)).Add(a.y.MulScalar(k * math.Cos(t)))
}

func (a arc) length() float64 { return a.radius * math.Abs(a.sweep) }

func (a arc) segments(step float64) int {
	return max(4, int(math.Ceil(math.Abs(a.sweep)/step)))
}

// arcThrough returns the arc from p1 through p2 to p3.
func arcThrough(p1, p2, p3 v3.Vec) (arc, bool) {
	a := p1.Sub(p3)
	b := p2.Sub(p3)
	axb := a.Cross(b)
	den := 2 * axb.Dot(axb)
	if den < 1e-24 {
		return arc{}, false
	}
	num := b.MulScalar(a.Dot(a)).Sub(a.MulScalar(b.Dot(b))).Cross(axb)
	center := p3.Add(num.MulScalar(1 / den))

	n := p2.Sub(p1).Cross(p3.Sub(p1)).Normalize()
	r := p1.Sub(center).Length()
	x := p1.Sub(center).Normalize()
	y := n.Cross(x)
	end := angleIn(p3.Sub(center), x, y)
	return arc{center: center, x: x, y: y, radius: r, sweep: end}, true
}

// angleIn measures v in the (x, y) frame on [0, 2π).
func angleIn(v, x, y v3.Vec) float64 {
	t := math.Atan2(v.Dot(y), v.Dot(x))
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}

// sagittaApex is the apex of an arc whose height above the chord
// midpoint is |s|; positive s bulges to the left of start->end in XY.
func sagittaApex(start, end v3.Vec, s float64) v3.Vec {
	mid := geom.Lerp(start, end, 0.5)
	d := end.Sub(start).Normalize()
	left := v3.Vec{X: -d.Y, Y: d.X}
	if s < 0 {
		left = left.Neg()
	}
	return mid.Add(left.MulScalar(math.Abs(s)))
}

// radiusSagitta converts an arc radius into the sagitta of its chord.
func radiusSagitta(start, end v3.Vec, r float64) float64 {
	half := end.Sub(start).Length() / 2
	s := math.Abs(r) - math.Sqrt(math.Max(0, r*r-half*half))
	if r < 0 {
		return -s
	}
	return s
}

// tangentArc is tangent to t at p1 and passes through p2.
func tangentArc(p1, p2, t v3.Vec) (arc, bool) {
	d := p2.Sub(p1)
	t = t.Normalize()
	n := t.Cross(d)
	if n.Length() < 1e-12*math.Max(1, d.Length()) {
		return arc{}, false
	}
	n = n.Normalize()
	w := n.Cross(t)
	r := d.Dot(d) / (2 * d.Dot(w))
	center := p1.Add(w.MulScalar(r))
	x := w.Neg()
	y := n.Cross(x)
	end := angleIn(p2.Sub(center), x, y)
	return arc{center: center, x: x, y: y, radius: r, sweep: end}, true
}

// hermite is a C1 piecewise cubic through pts, with derivatives ders taken
// with respect to the chord-length parameter whose knots are s.
type hermite struct {
	pts  []v3.Vec
	ders []v3.Vec
	s    []float64
}

func (h hermite) total() float64 { return h.s[len(h.s)-1] }

// locate maps u to a span index and the local parameter on that span.
func (h hermite) locate(u float64) (int, float64) {
	target := u * h.total()
	i := 0
	for i < len(h.s)-2 && target > h.s[i+1] {
		i++
	}
	span := h.s[i+1] - h.s[i]
	return i, (target - h.s[i]) / span
}

func (h hermite) point(u float64) v3.Vec {
	i, t := h.locate(u)
	span := h.s[i+1] - h.s[i]
	t2, t3 := t*t, t*t*t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h.pts[i].MulScalar(h00).
		Add(h.ders[i].MulScalar(h10 * span)).
		Add(h.pts[i+1].MulScalar(h01)).
		Add(h.ders[i+1].MulScalar(h11 * span))
}

func (h hermite) deriv(u float64) v3.Vec {
	i, t := h.locate(u)
	span := h.s[i+1] - h.s[i]
	t2 := t * t
	d00 := 6*t2 - 6*t
	d10 := 3*t2 - 4*t + 1
	d01 := -6*t2 + 6*t
	d11 := 3*t2 - 2*t
	ds := h.pts[i].MulScalar(d00).
		Add(h.ders[i].MulScalar(d10 * span)).
		Add(h.pts[i+1].MulScalar(d01)).
		Add(h.ders[i+1].MulScalar(d11 * span)).
		MulScalar(1 / span)
	return ds.MulScalar(h.total())
}

func (h hermite) length() float64 {
	var sum float64
	for i := 0; i+1 < len(h.s); i++ {
		u0 := h.s[i] / h.total()
		u1 := h.s[i+1] / h.total()
		sum += (u1 - u0) * integrate(func(t float64) float64 {
			return h.deriv(u0 + (u1-u0)*t).Length()
		}, quadNodes)
	}
	return sum
}

func (h hermite) segments(float64) int { return 32 * (len(h.pts) - 1) }

// newSpline fits a chord-length cubic spline. tangents is empty, holds the
// two end tangents, or one per point; scalars scale the tangents.
func newSpline(pts, tangents []v3.Vec, scalars []float64) (hermite, error) {
	n := len(pts)
	s := make([]float64, n)
	for i := 1; i < n; i++ {
		s[i] = s[i-1] + pts[i].Sub(pts[i-1]).Length()
	}
	unit := make([]v3.Vec, len(tangents))
	for i, t := range tangents {
		k := 1.0
		if len(scalars) == len(tangents) {
			k = scalars[i]
		}
		unit[i] = t.Normalize().MulScalar(k)
	}
	if len(unit) == n {
		return hermite{pts: pts, ders: unit, s: s}, nil
	}

	a := mat.NewDense(n, n, nil)
	b := mat.NewDense(n, 3, nil)
	setRow := func(i int, v v3.Vec) {
		b.Set(i, 0, v.X)
		b.Set(i, 1, v.Y)
		b.Set(i, 2, v.Z)
	}
	h := func(i int) float64 { return s[i+1] - s[i] }
	delta := func(i int) v3.Vec { return pts[i+1].Sub(pts[i]) }

	if len(unit) == 2 {
		a.Set(0, 0, 1)
		setRow(0, unit[0])
		a.Set(n-1, n-1, 1)
		setRow(n-1, unit[1])
	} else {
		a.Set(0, 0, 2)
		a.Set(0, 1, 1)
		setRow(0, delta(0).MulScalar(3/h(0)))
		a.Set(n-1, n-2, 1)
		a.Set(n-1, n-1, 2)
		setRow(n-1, delta(n-2).MulScalar(3/h(n-2)))
	}
	for i := 1; i < n-1; i++ {
		a.Set(i, i-1, h(i))
		a.Set(i, i, 2*(h(i-1)+h(i)))
		a.Set(i, i+1, h(i-1))
		rhs := delta(i - 1).MulScalar(h(i) / h(i-1)).Add(delta(i).MulScalar(h(i-1) / h(i))).MulScalar(3)
		setRow(i, rhs)
	}

	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		return hermite{}, err
	}
	ders := make([]v3.Vec, n)
	for i := range ders {
		ders[i] = v3.Vec{X: x.At(i, 0), Y: x.At(i, 1), Z: x.At(i, 2)}
	}
	return hermite{pts: pts, ders: ders, s: s}, nil
}

// helix winds around axis; angle is the total signed winding in radians.
type helix struct {
	center, axis, x, y v3.Vec
	radius, height     float64
	angle, taper       float64
}

func (h helix) point(u float64) v3.Vec {
	z := h.height * u
	r := h.radius + z*h.taper
	t := h.angle * u
	return h.center.Add(h.axis.MulScalar(z)).
		Add(h.x.MulScalar(r * math.Cos(t))).
		Add(h.y.MulScalar(r * math.Sin(t)))
}

func (h helix) deriv(u float64) v3.Vec {
	z := h.height * u
	r := h.radius + z*h.taper
	t := h.angle * u
	radial := h.x.MulScalar(math.Cos(t)).Add(h.y.MulScalar(math.Sin(t)))
	around := h.x.MulScalar(-math.Sin(t)).Add(h.y.MulScalar(math.Cos(t)))
	return h.axis.MulScalar(h.height).
		Add(radial.MulScalar(h.taper * h.height)).
		Add(around.MulScalar(r * h.angle))
}

func (h helix) length() float64 {
	turns := math.Abs(h.angle) / (2 * math.Pi)
	return speedLength(h, max(quadNodes, int(math.Ceil(turns*16))))
}

func (h helix) segments(step float64) int {
	return max(8, int(math.Ceil(math.Abs(h.angle)/step)))
}

// reversed runs c backwards.
type reversed struct {
	c curve
}

func (r reversed) point(u float64) v3.Vec    { return r.c.point(1 - u) }
func (r reversed) deriv(u float64) v3.Vec    { return r.c.deriv(1 - u).Neg() }
func (r reversed) length() float64           { return r.c.length() }
func (r reversed) segments(step float64) int { return r.c.segments(step) }

// mapped is c under an isometry (rigid motion or reflection).
type mapped struct {
	c curve
	m sdf.M44
}

func (m mapped) point(u float64) v3.Vec { return m.m.MulPosition(m.c.point(u)) }

func (m mapped) deriv(u float64) v3.Vec {
	return m.m.MulPosition(m.c.deriv(u)).Sub(m.m.MulPosition(geom.Origin))
}

func (m mapped) length() float64           { return m.c.length() }
func (m mapped) segments(step float64) int { return m.c.segments(step) }

// unitTangent normalizes c's derivative, falling back to a central
// difference where the derivative vanishes.
func unitTangent(c curve, u float64) v3.Vec {
	d := c.deriv(u)
	if d.Length() > 1e-12 {
		return d.Normalize()
	}
	const h = 1e-6
	a := c.point(math.Max(0, u-h))
	b := c.point(math.Min(1, u+h))
	return b.Sub(a).Normalize()
}
