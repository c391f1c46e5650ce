// Package joint positions bodies relative to one another. A joint is a
// frame fixed to a body; connecting two joints relocates the second body
// so that its joint frame lands on the first, optionally turned or slid by
// the joint's degree of freedom.
//
// For joints j (on body A) and o (on body B) connected with transform t:
//
//	B.Location = A.Location · j.Relative · t · o.Relative⁻¹
package joint

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ValidationError reports a joint parameter outside its allowed range or an
// unsupported pairing. It matches primitive.ErrInvalid.
type ValidationError struct {
	Joint   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("joint %q: %s", e.Joint, e.Message)
}

// Is lets errors.Is(err, primitive.ErrInvalid) match.
func (e *ValidationError) Is(target error) bool { return target == primitive.ErrInvalid }

func invalid(label, format string, args ...any) *ValidationError {
	return &ValidationError{Joint: label, Message: fmt.Sprintf(format, args...)}
}

// ErrDuplicateLabel is returned when a body already has a joint by that name.
var ErrDuplicateLabel = errors.New("duplicate joint label")

// Body is a shape with a placement. Joints attach to bodies and moving a
// joint's body moves the joint with it.
type Body struct {
	Name     string
	Shape    kernel.Shape
	Location geom.Location
	joints   map[string]Joint
}

// NewBody places s at the identity.
func NewBody(name string, s kernel.Shape) *Body {
	return &Body{Name: name, Shape: s, Location: geom.Identity(), joints: make(map[string]Joint)}
}

// Joint returns the joint with the given label.
func (b *Body) Joint(label string) (Joint, bool) {
	j, ok := b.joints[label]
	return j, ok
}

// Placed returns the body's shape moved to its location.
func (b *Body) Placed(k kernel.Kernel) (kernel.Shape, error) {
	return k.Transform(b.Shape, b.Location)
}

func (b *Body) attach(j Joint) error {
	if _, ok := b.joints[j.Label()]; ok {
		return fmt.Errorf("%w: %q on %s", ErrDuplicateLabel, j.Label(), b.Name)
	}
	b.joints[j.Label()] = j
	return nil
}

// Joint is a labelled frame fixed to a body.
type Joint interface {
	Label() string
	Body() *Body
	// Relative is the joint frame in its body's coordinates.
	Relative() geom.Location
	// Location is the joint frame in global coordinates.
	Location() geom.Location
}

type base struct {
	label    string
	body     *Body
	relative geom.Location
}

func (j *base) Label() string           { return j.label }
func (j *base) Body() *Body             { return j.body }
func (j *base) Relative() geom.Location { return j.relative }
func (j *base) Location() geom.Location { return j.body.Location.Mul(j.relative) }

func newBase(label string, to *Body, global geom.Location) (base, error) {
	if to == nil {
		return base{}, invalid(label, "joint needs a body")
	}
	return base{label: label, body: to, relative: to.Location.Inverse().Mul(global)}, nil
}

// connect relocates other's body onto j's frame through t.
func connect(j, other Joint, t geom.Location) {
	other.Body().Location = geom.Compose(j.Body().Location, j.Relative(), t, other.Relative().Inverse())
}

// ConnectOption sets the degree of freedom used by a connection.
type ConnectOption func(*params)

type params struct {
	angle    *float64
	position *float64
}

// Angle sets a revolute angle in degrees.
func Angle(deg float64) ConnectOption {
	return func(p *params) { p.angle = &deg }
}

// Position sets a linear position along the joint axis.
func Position(d float64) ConnectOption {
	return func(p *params) { p.position = &d }
}

func collect(opts []ConnectOption) params {
	var p params
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Range is a closed interval of allowed values.
type Range struct {
	Min, Max float64
}

func (r Range) contains(v float64) bool { return r.Min <= v && v <= r.Max }

func (r Range) String() string { return fmt.Sprintf("[%g, %g]", r.Min, r.Max) }

func checkRange(label, what string, v float64, r Range) error {
	if math.IsNaN(v) || !r.contains(v) {
		return invalid(label, "%s %g is outside %s", what, v, r)
	}
	return nil
}

// axisFrame is the joint frame on an axis, with its x direction along ref.
func axisFrame(label string, a geom.Axis, ref v3.Vec) (geom.Plane, error) {
	if geom.IsZero(a.Direction, 1e-12) {
		return geom.Plane{}, invalid(label, "axis direction must be non-zero")
	}
	if !geom.IsZero(ref, 1e-12) && math.Abs(ref.Normalize().Dot(a.Direction.Normalize())) > 1e-9 {
		return geom.Plane{}, invalid(label, "angle reference %s must be normal to the axis", geom.Format(ref))
	}
	return geom.NewPlane(a.Origin, ref, a.Direction)
}
