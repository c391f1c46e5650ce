package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Location is an immutable rigid transform (rotation + translation).
// The zero value behaves as the identity.
type Location struct {
	m   sdf.M44
	set bool
}

// Identity returns the location that leaves everything in place.
func Identity() Location {
	return Location{m: sdf.Identity3d(), set: true}
}

// FromMatrix wraps an sdfx matrix. The caller guarantees it is rigid.
func FromMatrix(m sdf.M44) Location {
	return Location{m: m, set: true}
}

// Pos returns a pure translation.
func Pos(x, y, z float64) Location {
	return FromMatrix(sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// PosV returns a pure translation by v.
func PosV(v v3.Vec) Location {
	return FromMatrix(sdf.Translate3d(v))
}

// Rot returns a rotation by Euler angles in degrees, applied about X, then Y,
// then Z (the order used by the kernel's Rotate).
func Rot(x, y, z float64) Location {
	rx := rotation(UnitX, x*math.Pi/180)
	ry := rotation(UnitY, y*math.Pi/180)
	rz := rotation(UnitZ, z*math.Pi/180)
	return FromMatrix(rz.Mul(ry).Mul(rx))
}

// RotAbout returns a rotation of deg degrees about an axis (right hand rule).
func RotAbout(a Axis, deg float64) Location {
	r := rotation(a.Direction, deg*math.Pi/180)
	to := sdf.Translate3d(a.Origin)
	from := sdf.Translate3d(a.Origin.Neg())
	return FromMatrix(to.Mul(r).Mul(from))
}

// rotation builds a rotation about dir by angle radians with the right hand
// rule, checked against a reference vector so the result does not depend
// on the sign convention of the underlying matrix constructor.
func rotation(dir v3.Vec, angle float64) sdf.M44 {
	dir = dir.Normalize()
	r := sdf.Rotate3d(dir, angle)
	trial := Perpendicular(dir)
	want := trial.MulScalar(math.Cos(angle)).Add(dir.Cross(trial).MulScalar(math.Sin(angle)))
	if Near(r.MulPosition(trial), want, 1e-9) {
		return r
	}
	return sdf.Rotate3d(dir, -angle)
}

func (l Location) matrix() sdf.M44 {
	if !l.set {
		return sdf.Identity3d()
	}
	return l.m
}

// Matrix exposes the underlying sdfx matrix for kernels.
func (l Location) Matrix() sdf.M44 {
	return l.matrix()
}

// Mul composes l with o: o is applied first, then l.
func (l Location) Mul(o Location) Location {
	return FromMatrix(l.matrix().Mul(o.matrix()))
}

// Compose multiplies locations left to right: Compose(a, b, c) == a·b·c,
// so c is applied first.
func Compose(locs ...Location) Location {
	out := Identity()
	for _, l := range locs {
		out = out.Mul(l)
	}
	return out
}

// Inverse returns the location that undoes l.
func (l Location) Inverse() Location {
	return FromMatrix(l.matrix().Inverse())
}

// Point maps a point.
func (l Location) Point(p v3.Vec) v3.Vec {
	return l.matrix().MulPosition(p)
}

// Direction maps a free vector (translation is ignored).
func (l Location) Direction(d v3.Vec) v3.Vec {
	m := l.matrix()
	return m.MulPosition(d).Sub(m.MulPosition(Origin))
}

// Position is the image of the origin.
func (l Location) Position() v3.Vec { return l.Point(Origin) }

// XDir is the image of +X.
func (l Location) XDir() v3.Vec { return l.Direction(UnitX) }

// YDir is the image of +Y.
func (l Location) YDir() v3.Vec { return l.Direction(UnitY) }

// ZDir is the image of +Z.
func (l Location) ZDir() v3.Vec { return l.Direction(UnitZ) }

// Plane returns the XY plane of the frame described by l.
func (l Location) Plane() Plane {
	return Plane{Origin: l.Position(), XDir: l.XDir().Normalize(), ZDir: l.ZDir().Normalize()}
}

// Equal compares two locations by the images of the origin and unit axes.
func (l Location) Equal(o Location, tol float64) bool {
	return Near(l.Position(), o.Position(), tol) &&
		Near(l.XDir(), o.XDir(), tol) &&
		Near(l.YDir(), o.YDir(), tol) &&
		Near(l.ZDir(), o.ZDir(), tol)
}

func (l Location) String() string {
	return fmt.Sprintf("Location(pos=%s, x=%s, z=%s)", Format(l.Position()), Format(l.XDir()), Format(l.ZDir()))
}

// frame returns the matrix that maps the global XY frame onto the frame with
// the given origin and orthonormal x and z directions.
func frame(origin, xDir, zDir v3.Vec) sdf.M44 {
	var r1 sdf.M44
	axis := UnitZ.Cross(zDir)
	switch {
	case axis.Length() > 1e-12:
		r1 = rotation(axis, math.Acos(clamp1(UnitZ.Dot(zDir))))
	case zDir.Z > 0:
		r1 = sdf.Identity3d()
	default:
		r1 = rotation(UnitX, math.Pi)
	}
	x1 := r1.MulPosition(UnitX)
	angle := math.Atan2(x1.Cross(xDir).Dot(zDir), x1.Dot(xDir))
	r2 := rotation(zDir, angle)
	return sdf.Translate3d(origin).Mul(r2).Mul(r1)
}
