package geom

import (
	"fmt"
	"math"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Axis is a located direction.
type Axis struct {
	Origin    v3.Vec
	Direction v3.Vec
}

// Standard axes through the origin.
var (
	AxisX = Axis{Direction: UnitX}
	AxisY = Axis{Direction: UnitY}
	AxisZ = Axis{Direction: UnitZ}
)

// Plane is a right-handed planar frame. XDir and ZDir are unit length and
// orthogonal; YDir is derived.
type Plane struct {
	Origin v3.Vec
	XDir   v3.Vec
	ZDir   v3.Vec
}

// Standard planes through the origin.
var (
	XY = Plane{XDir: UnitX, ZDir: UnitZ}
	YZ = Plane{XDir: UnitY, ZDir: UnitX}
	ZX = Plane{XDir: UnitZ, ZDir: UnitY}
	XZ = Plane{XDir: UnitX, ZDir: UnitY.Neg()}
)

// NewPlane builds a plane from an origin, an x direction and a normal. A zero
// x direction is replaced by a deterministic perpendicular to the normal; a
// non-zero one is projected into the plane.
func NewPlane(origin, xDir, zDir v3.Vec) (Plane, error) {
	if IsZero(zDir, 1e-12) {
		return Plane{}, fmt.Errorf("plane normal must be non-zero")
	}
	z := zDir.Normalize()
	var x v3.Vec
	if IsZero(xDir, 1e-12) {
		x = Perpendicular(z)
	} else {
		x = xDir.Sub(z.MulScalar(xDir.Dot(z)))
		if IsZero(x, 1e-12) {
			return Plane{}, fmt.Errorf("plane x direction %s is parallel to normal %s", Format(xDir), Format(zDir))
		}
		x = x.Normalize()
	}
	return Plane{Origin: origin, XDir: x, ZDir: z}, nil
}

// PlaneNamed resolves "XY", "YZ", "ZX" and "XZ" (case-insensitive).
func PlaneNamed(name string) (Plane, error) {
	switch strings.ToUpper(name) {
	case "XY":
		return XY, nil
	case "YZ":
		return YZ, nil
	case "ZX":
		return ZX, nil
	case "XZ":
		return XZ, nil
	}
	return Plane{}, fmt.Errorf("unknown plane %q, expected XY, YZ, ZX or XZ", name)
}

// YDir completes the right-handed frame.
func (p Plane) YDir() v3.Vec {
	return p.ZDir.Cross(p.XDir)
}

// Location maps plane-local coordinates to global coordinates.
func (p Plane) Location() Location {
	return FromMatrix(frame(p.Origin, p.XDir, p.ZDir))
}

// ToLocal expresses a global point in plane coordinates.
func (p Plane) ToLocal(pt v3.Vec) v3.Vec {
	d := pt.Sub(p.Origin)
	return v3.Vec{X: d.Dot(p.XDir), Y: d.Dot(p.YDir()), Z: d.Dot(p.ZDir)}
}

// FromLocal maps plane coordinates to a global point.
func (p Plane) FromLocal(pt v3.Vec) v3.Vec {
	return p.Origin.
		Add(p.XDir.MulScalar(pt.X)).
		Add(p.YDir().MulScalar(pt.Y)).
		Add(p.ZDir.MulScalar(pt.Z))
}

// Moved applies a location to the frame.
func (p Plane) Moved(l Location) Plane {
	return Plane{
		Origin: l.Point(p.Origin),
		XDir:   l.Direction(p.XDir).Normalize(),
		ZDir:   l.Direction(p.ZDir).Normalize(),
	}
}

// Offset shifts the plane along its normal.
func (p Plane) Offset(d float64) Plane {
	p.Origin = p.Origin.Add(p.ZDir.MulScalar(d))
	return p
}

// Distance is the signed distance of pt above the plane.
func (p Plane) Distance(pt v3.Vec) float64 {
	return pt.Sub(p.Origin).Dot(p.ZDir)
}

// Reflect mirrors a point through the plane.
func (p Plane) Reflect(pt v3.Vec) v3.Vec {
	return pt.Sub(p.ZDir.MulScalar(2 * p.Distance(pt)))
}

// ReflectDir mirrors a free vector through the plane.
func (p Plane) ReflectDir(v v3.Vec) v3.Vec {
	return v.Sub(p.ZDir.MulScalar(2 * v.Dot(p.ZDir)))
}

// Coplanar reports whether o describes the same geometric plane (either
// orientation).
func (p Plane) Coplanar(o Plane, tol float64) bool {
	if math.Abs(math.Abs(p.ZDir.Dot(o.ZDir))-1) > tol {
		return false
	}
	return math.Abs(p.Distance(o.Origin)) <= tol
}

func (p Plane) String() string {
	return fmt.Sprintf("Plane(origin=%s, x=%s, z=%s)", Format(p.Origin), Format(p.XDir), Format(p.ZDir))
}
