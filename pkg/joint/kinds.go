package joint

import (
	"math"

	"github.com/chazu/contour/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Rigid fixes two bodies to one another.
type Rigid struct {
	base
}

// NewRigid attaches a rigid joint to body at a global location.
func NewRigid(label string, body *Body, at geom.Location) (*Rigid, error) {
	b, err := newBase(label, body, at)
	if err != nil {
		return nil, err
	}
	j := &Rigid{base: b}
	if err := body.attach(j); err != nil {
		return nil, err
	}
	return j, nil
}

// ConnectTo moves other's body onto j. Against a revolute joint Angle picks
// the hinge angle; against a linear joint Position picks the slide. Both
// default to zero.
func (j *Rigid) ConnectTo(other Joint, opts ...ConnectOption) error {
	p := collect(opts)
	t := geom.Identity()
	switch o := other.(type) {
	case *Rigid:
	case *Revolute:
		if p.angle != nil {
			if err := checkRange(o.label, "angle", *p.angle, o.Range); err != nil {
				return err
			}
			t = geom.Rot(0, 0, -*p.angle)
		}
	case *Linear:
		if p.position != nil {
			if err := checkRange(o.label, "position", *p.position, o.Range); err != nil {
				return err
			}
			t = geom.Pos(0, 0, -*p.position)
		}
	default:
		return invalid(j.label, "cannot connect a rigid joint to %T", other)
	}
	connect(j, other, t)
	return nil
}

// Revolute turns a body about an axis like a hinge.
type Revolute struct {
	base
	Axis  geom.Axis
	Range Range
	// Angle is the angle of the last connection, in degrees.
	Angle float64
}

// RevoluteOption configures a revolute joint.
type RevoluteOption func(*revoluteConfig)

type revoluteConfig struct {
	ref    v3.Vec
	limits Range
}

// AngleReference sets the direction, normal to the axis, that angles are
// measured from.
func AngleReference(ref v3.Vec) RevoluteOption {
	return func(c *revoluteConfig) { c.ref = ref }
}

// AngularRange limits the hinge angle in degrees. The default is [0, 360].
func AngularRange(lo, hi float64) RevoluteOption {
	return func(c *revoluteConfig) { c.limits = Range{Min: lo, Max: hi} }
}

// NewRevolute attaches a hinge about axis, given in global coordinates.
func NewRevolute(label string, body *Body, axis geom.Axis, opts ...RevoluteOption) (*Revolute, error) {
	c := revoluteConfig{limits: Range{Min: 0, Max: 360}}
	for _, opt := range opts {
		opt(&c)
	}
	if c.limits.Min > c.limits.Max {
		return nil, invalid(label, "angular range %s is empty", c.limits)
	}
	frame, err := axisFrame(label, axis, c.ref)
	if err != nil {
		return nil, err
	}
	b, err := newBase(label, body, frame.Location())
	if err != nil {
		return nil, err
	}
	j := &Revolute{base: b, Axis: axis, Range: c.limits, Angle: c.limits.Min}
	if err := body.attach(j); err != nil {
		return nil, err
	}
	return j, nil
}

// ConnectTo moves other's body onto the hinge, turned by Angle (default the
// bottom of the range).
func (j *Revolute) ConnectTo(other *Rigid, opts ...ConnectOption) error {
	p := collect(opts)
	angle := j.Range.Min
	if p.angle != nil {
		angle = *p.angle
	}
	if err := checkRange(j.label, "angle", angle, j.Range); err != nil {
		return err
	}
	j.Angle = angle
	connect(j, other, geom.Rot(0, 0, angle))
	return nil
}

// Linear slides a body along an axis.
type Linear struct {
	base
	Axis  geom.Axis
	Range Range
	// Position is the position of the last connection.
	Position float64
}

// NewLinear attaches a slide along axis, given in global coordinates. The
// range defaults to [0, +Inf).
func NewLinear(label string, body *Body, axis geom.Axis, limits *Range) (*Linear, error) {
	r := Range{Min: 0, Max: math.Inf(1)}
	if limits != nil {
		r = *limits
	}
	if r.Min > r.Max {
		return nil, invalid(label, "linear range %s is empty", r)
	}
	frame, err := axisFrame(label, axis, v3.Vec{})
	if err != nil {
		return nil, err
	}
	b, err := newBase(label, body, frame.Location())
	if err != nil {
		return nil, err
	}
	j := &Linear{base: b, Axis: axis, Range: r, Position: r.Min}
	if err := body.attach(j); err != nil {
		return nil, err
	}
	return j, nil
}

// ConnectTo slides other's body to Position along the axis. Connecting to a
// revolute joint also turns it by Angle (default the bottom of its range).
func (j *Linear) ConnectTo(other Joint, opts ...ConnectOption) error {
	p := collect(opts)
	pos := 0.0
	if p.position != nil {
		if err := checkRange(j.label, "position", *p.position, j.Range); err != nil {
			return err
		}
		pos = *p.position
	}
	angle := 0.0
	switch o := other.(type) {
	case *Rigid:
	case *Revolute:
		angle = -o.Range.Min
		if p.angle != nil {
			if err := checkRange(o.label, "angle", *p.angle, o.Range); err != nil {
				return err
			}
			angle = -*p.angle
		}
	default:
		return invalid(j.label, "cannot connect a linear joint to %T", other)
	}
	j.Position = pos
	connect(j, other, geom.Pos(0, 0, pos).Mul(geom.Rot(0, 0, angle)))
	return nil
}
