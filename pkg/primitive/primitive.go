// Package primitive defines the immutable descriptors a caller hands to a
// builder: one struct per primitive kind behind a sealed Descriptor
// interface. Descriptors carry parameters only; kernels realize them.
//
// Coordinates are builder-local. Curve primitives accept 3D points; 2D
// callers leave Z at zero.
package primitive

import (
	"encoding/json"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind tags a descriptor.
type Kind int

const (
	KindLine Kind = iota + 1
	KindPolyline
	KindPolarLine
	KindRadiusArc
	KindSagittaArc
	KindTangentArc
	KindThreePointArc
	KindCenterArc
	KindSpline
	KindHelix
	KindRectangle
	KindCircle
	KindRegularPolygon
	KindBox
	KindCylinder
)

var kindNames = map[Kind]string{
	KindLine:           "Line",
	KindPolyline:       "Polyline",
	KindPolarLine:      "PolarLine",
	KindRadiusArc:      "RadiusArc",
	KindSagittaArc:     "SagittaArc",
	KindTangentArc:     "TangentArc",
	KindThreePointArc:  "ThreePointArc",
	KindCenterArc:      "CenterArc",
	KindSpline:         "Spline",
	KindHelix:          "Helix",
	KindRectangle:      "Rectangle",
	KindCircle:         "Circle",
	KindRegularPolygon: "RegularPolygon",
	KindBox:            "Box",
	KindCylinder:       "Cylinder",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Dimension is 1 for curves, 2 for planar faces and 3 for solids.
func (k Kind) Dimension() int {
	switch k {
	case KindRectangle, KindCircle, KindRegularPolygon:
		return 2
	case KindBox, KindCylinder:
		return 3
	default:
		return 1
	}
}

// Descriptor is implemented only by the types in this package.
type Descriptor interface {
	Kind() Kind
	descriptor()
}

// Line is a straight segment between exactly two points.
type Line struct {
	Points []v3.Vec
}

// Polyline joins three or more points with straight segments. Close adds
// a segment from the last point back to the first.
type Polyline struct {
	Points []v3.Vec
	Close  bool
}

// PolarLine starts at Start and runs Length along either Angle (degrees
// from +X in the XY plane) or Direction. Exactly one must be set.
type PolarLine struct {
	Start     v3.Vec
	Length    float64
	Angle     *float64
	Direction *v3.Vec
}

// RadiusArc joins Start and End with a circular arc of the given radius.
// The sign of Radius picks the side of the chord the arc bulges to.
type RadiusArc struct {
	Start  v3.Vec
	End    v3.Vec
	Radius float64
}

// SagittaArc joins Start and End with an arc whose apex sits Sagitta away
// from the chord midpoint. Positive values bulge to the left of the chord.
type SagittaArc struct {
	Start   v3.Vec
	End     v3.Vec
	Sagitta float64
}

// TangentArc is tangent to Tangent at the first point and passes through
// the second. TangentAtEnd moves the tangency to the second point.
type TangentArc struct {
	Points       []v3.Vec
	Tangent      v3.Vec
	TangentAtEnd bool
}

// ThreePointArc passes through exactly three points in order.
type ThreePointArc struct {
	Points []v3.Vec
}

// CenterArc is an XY-plane arc around Center. Angles are in degrees; a
// negative ArcSize runs clockwise.
type CenterArc struct {
	Center     v3.Vec
	Radius     float64
	StartAngle float64
	ArcSize    float64
}

// Spline interpolates Points. Tangents holds either two end tangents or one
// per point; TangentScalars, when present, scales each tangent.
type Spline struct {
	Points         []v3.Vec
	Tangents       []v3.Vec
	TangentScalars []float64
}

// Helix winds around Direction through Center. ConeAngle in degrees opens
// the helix into a cone.
type Helix struct {
	Pitch     float64
	Height    float64
	Radius    float64
	Center    v3.Vec
	Direction v3.Vec
	ConeAngle float64
	LeftHand  bool
}

// Rectangle is a face centered on the local origin.
type Rectangle struct {
	Width  float64
	Height float64
}

// Circle is a disc centered on the local origin.
type Circle struct {
	Radius float64
}

// RegularPolygon is inscribed in a circle of Radius with a vertex on +X.
type RegularPolygon struct {
	Radius float64
	Sides  int
}

// Box is a solid centered on the local origin.
type Box struct {
	Length float64
	Width  float64
	Height float64
}

// Cylinder is a solid along local Z, centered on the origin.
type Cylinder struct {
	Radius float64
	Height float64
}

func (Line) Kind() Kind           { return KindLine }
func (Polyline) Kind() Kind       { return KindPolyline }
func (PolarLine) Kind() Kind      { return KindPolarLine }
func (RadiusArc) Kind() Kind      { return KindRadiusArc }
func (SagittaArc) Kind() Kind     { return KindSagittaArc }
func (TangentArc) Kind() Kind     { return KindTangentArc }
func (ThreePointArc) Kind() Kind  { return KindThreePointArc }
func (CenterArc) Kind() Kind      { return KindCenterArc }
func (Spline) Kind() Kind         { return KindSpline }
func (Helix) Kind() Kind          { return KindHelix }
func (Rectangle) Kind() Kind      { return KindRectangle }
func (Circle) Kind() Kind         { return KindCircle }
func (RegularPolygon) Kind() Kind { return KindRegularPolygon }
func (Box) Kind() Kind            { return KindBox }
func (Cylinder) Kind() Kind       { return KindCylinder }

func (Line) descriptor()           {}
func (Polyline) descriptor()       {}
func (PolarLine) descriptor()      {}
func (RadiusArc) descriptor()      {}
func (SagittaArc) descriptor()     {}
func (TangentArc) descriptor()     {}
func (ThreePointArc) descriptor()  {}
func (CenterArc) descriptor()      {}
func (Spline) descriptor()         {}
func (Helix) descriptor()          {}
func (Rectangle) descriptor()      {}
func (Circle) descriptor()         {}
func (RegularPolygon) descriptor() {}
func (Box) descriptor()            {}
func (Cylinder) descriptor()       {}

// Pts is shorthand for a point list.
func Pts(points ...v3.Vec) []v3.Vec { return points }

// AtAngle returns a PolarLine along an angle in degrees.
func AtAngle(start v3.Vec, length, angle float64) PolarLine {
	return PolarLine{Start: start, Length: length, Angle: &angle}
}

// Toward returns a PolarLine along a direction.
func Toward(start v3.Vec, length float64, dir v3.Vec) PolarLine {
	return PolarLine{Start: start, Length: length, Direction: &dir}
}

// Describe renders a descriptor's parameters as canonical JSON, prefixed by
// its kind. Equal descriptors describe identically.
func Describe(d Descriptor) string {
	b, err := json.Marshal(d)
	if err != nil {
		return d.Kind().String()
	}
	return d.Kind().String() + string(b)
}
