package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerance is the default linear tolerance used when comparing points.
const Tolerance = 1e-9

// Unit vectors.
var (
	Origin = v3.Vec{}
	UnitX  = v3.Vec{X: 1}
	UnitY  = v3.Vec{Y: 1}
	UnitZ  = v3.Vec{Z: 1}
)

// V returns a vector from two or three coordinates.
func V(x, y float64, z ...float64) v3.Vec {
	v := v3.Vec{X: x, Y: y}
	if len(z) > 0 {
		v.Z = z[0]
	}
	return v
}

// Near reports whether a and b coincide within tol.
func Near(a, b v3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// IsZero reports whether v has no magnitude within tol.
func IsZero(v v3.Vec, tol float64) bool {
	return v.Length() <= tol
}

// Lerp interpolates linearly between a (t=0) and b (t=1).
func Lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Perpendicular returns a deterministic unit vector normal to d.
func Perpendicular(d v3.Vec) v3.Vec {
	d = d.Normalize()
	ref := UnitX
	if math.Abs(d.Dot(UnitX)) > 0.9 {
		ref = UnitY
	}
	return ref.Sub(d.MulScalar(ref.Dot(d))).Normalize()
}

// Format renders a vector with a fixed precision for logs and errors.
func Format(v v3.Vec) string {
	return fmt.Sprintf("(%.6g, %.6g, %.6g)", v.X, v.Y, v.Z)
}

// clamp1 keeps cosines inside the domain of math.Acos.
func clamp1(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
