// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx) realize primitive descriptors into edges, faces
// and solids and provide booleans, transforms and measurement behind this
// interface, so builders never depend on a concrete backend.
package kernel

import (
	"errors"
	"fmt"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ShapeKind classifies a realized shape.
type ShapeKind int

const (
	KindEdge ShapeKind = iota + 1
	KindWire
	KindFace
	KindSolid
	KindCompound
)

func (k ShapeKind) String() string {
	switch k {
	case KindEdge:
		return "edge"
	case KindWire:
		return "wire"
	case KindFace:
		return "face"
	case KindSolid:
		return "solid"
	case KindCompound:
		return "compound"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// Shape is an opaque, immutable handle to a kernel object.
// Implementations wrap their internal representation.
type Shape interface {
	Kind() ShapeKind
	// ID is unique per realized shape within one kernel.
	ID() uint64
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	Vertices() []v3.Vec
	Edges() []Edge
	Faces() []Face
	Solids() []Solid
}

// Curve is a shape parameterised on u in [0, 1].
type Curve interface {
	Shape
	// PositionAt returns the point at u.
	PositionAt(u float64) v3.Vec
	// TangentAt returns the unit tangent at u.
	TangentAt(u float64) v3.Vec
	Closed() bool
}

// Edge is a single curve.
type Edge interface {
	Curve
}

// Wire is an ordered chain of edges.
type Wire interface {
	Curve
}

// Face is a bounded planar region.
type Face interface {
	Shape
	// Plane is the face's frame; its normal is ZDir.
	Plane() geom.Plane
}

// Solid is a closed volume.
type Solid interface {
	Shape
}

// BooleanOp selects a set operation.
type BooleanOp int

const (
	Union BooleanOp = iota + 1
	Difference
	Intersection
)

func (op BooleanOp) String() string {
	switch op {
	case Union:
		return "union"
	case Difference:
		return "difference"
	case Intersection:
		return "intersection"
	}
	return fmt.Sprintf("BooleanOp(%d)", int(op))
}

// Metric selects a measurement.
type Metric int

const (
	Length Metric = iota + 1
	Area
	Volume
)

func (m Metric) String() string {
	switch m {
	case Length:
		return "length"
	case Area:
		return "area"
	case Volume:
		return "volume"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// ErrGeometry matches every GeometryError via errors.Is.
var ErrGeometry = errors.New("geometry error")

// GeometryError reports a construction or operation the kernel rejects as
// geometrically impossible.
type GeometryError struct {
	Op      string
	Message string
	Err     error
}

func (e *GeometryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrGeometry) match.
func (e *GeometryError) Is(target error) bool { return target == ErrGeometry }

// Errorf builds a GeometryError for op.
func Errorf(op, format string, args ...any) *GeometryError {
	return &GeometryError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// Kernel is the geometry kernel adapter.
// Descriptors passed to Construct must already be valid (see
// primitive.Validate); kernels may assume it.
type Kernel interface {
	// Construct realizes a descriptor: an Edge or Wire for curves, a Face
	// for planar primitives, a Solid for solid primitives.
	Construct(d primitive.Descriptor) (Shape, error)

	// Topology
	MakeWire(edges []Edge) (Wire, error)
	MakeFace(edges []Edge) (Shape, error) // a Face, or a compound of faces
	MakeHull(edges []Edge) (Face, error)
	Extrude(f Face, amount float64) (Solid, error)
	Compound(shapes ...Shape) Shape

	// Boolean operations
	Boolean(op BooleanOp, a, b Shape) (Shape, error)

	// Transforms
	Transform(s Shape, loc geom.Location) (Shape, error)
	Mirror(s Shape, about geom.Plane) (Shape, error)

	Measure(s Shape, m Metric) (float64, error)

	// Mesh output
	ToMesh(s Shape) (*Mesh, error)
}

// IsEmpty reports whether s is nil or holds no geometry.
func IsEmpty(s Shape) bool {
	if s == nil {
		return true
	}
	return len(s.Edges()) == 0 && len(s.Faces()) == 0 && len(s.Solids()) == 0
}

// Dimension is 1 for curves, 2 for faces and 3 for solids, judged by the
// highest-dimensional content of s; 0 for empty shapes.
func Dimension(s Shape) int {
	switch {
	case s == nil:
		return 0
	case len(s.Solids()) > 0:
		return 3
	case len(s.Faces()) > 0:
		return 2
	case len(s.Edges()) > 0:
		return 1
	}
	return 0
}
