package engine

import (
	"fmt"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/joint"
	zygo "github.com/glycerine/zygomys/zygo"
)

// sexpBody wraps a placed shape that joints attach to.
type sexpBody struct {
	b *joint.Body
}

func (s *sexpBody) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(body %q %s)", s.b.Name, s.b.Location)
}
func (s *sexpBody) Type() *zygo.RegisteredType { return nil }

// sexpJoint wraps a joint attached to a body.
type sexpJoint struct {
	j joint.Joint
}

func (s *sexpJoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(joint %q on %q)", s.j.Label(), s.j.Body().Name)
}
func (s *sexpJoint) Type() *zygo.RegisteredType { return nil }

func toBody(s zygo.Sexp) (*joint.Body, error) {
	if v, ok := s.(*sexpBody); ok {
		return v.b, nil
	}
	return nil, fmt.Errorf("expected body, got %s", describe(s))
}

func toJoint(s zygo.Sexp) (joint.Joint, error) {
	if v, ok := s.(*sexpJoint); ok {
		return v.j, nil
	}
	return nil, fmt.Errorf("expected joint, got %s", describe(s))
}

// ---------------------------------------------------------------------------
// (body shape "name"), (placed body)
// ---------------------------------------------------------------------------

func builtinBody(_ *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(2, "shape and name"); err != nil {
		return nil, err
	}
	s, err := toShape(a.positional[0])
	if err != nil {
		return nil, err
	}
	name, err := toString(a.positional[1])
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	return &sexpBody{b: joint.NewBody(name, s)}, nil
}

func builtinPlaced(in *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(1, "body"); err != nil {
		return nil, err
	}
	b, err := toBody(a.positional[0])
	if err != nil {
		return nil, err
	}
	s, err := b.Placed(in.k)
	if err != nil {
		return nil, err
	}
	return &sexpShape{s: s}, nil
}

// ---------------------------------------------------------------------------
// (rigid-joint body "label" :at loc)
// (revolute-joint body "label" origin direction :range (list 0 90) :reference v)
// (linear-joint body "label" origin direction :range (list 0 10))
// ---------------------------------------------------------------------------

// jointTarget reads the body and label every joint builtin starts with.
func jointTarget(a kwArgs, usage string) (*joint.Body, string, error) {
	if err := a.need(2, usage); err != nil {
		return nil, "", err
	}
	b, err := toBody(a.positional[0])
	if err != nil {
		return nil, "", err
	}
	label, err := toString(a.positional[1])
	if err != nil {
		return nil, "", fmt.Errorf("label: %w", err)
	}
	return b, label, nil
}

// jointAxis reads an axis from the third and fourth positional arguments.
func jointAxis(a kwArgs) (geom.Axis, error) {
	origin, err := toVec(a.positional[2])
	if err != nil {
		return geom.Axis{}, fmt.Errorf("axis origin: %w", err)
	}
	dir, err := toVec(a.positional[3])
	if err != nil {
		return geom.Axis{}, fmt.Errorf("axis direction: %w", err)
	}
	return geom.Axis{Origin: origin, Direction: dir}, nil
}

// jointRange reads :range as a two-number list.
func jointRange(a kwArgs) (*joint.Range, error) {
	v, ok := a.kw["range"]
	if !ok {
		return nil, nil
	}
	items, err := sexpListToSlice(v)
	if err != nil || len(items) != 2 {
		return nil, fmt.Errorf(":range expects a list of two numbers, got %s", describe(v))
	}
	lo, err := toFloat64(items[0])
	if err != nil {
		return nil, fmt.Errorf(":range: %w", err)
	}
	hi, err := toFloat64(items[1])
	if err != nil {
		return nil, fmt.Errorf(":range: %w", err)
	}
	return &joint.Range{Min: lo, Max: hi}, nil
}

func builtinRigidJoint(_ *interp, a kwArgs) (zygo.Sexp, error) {
	b, label, err := jointTarget(a, "body and label")
	if err != nil {
		return nil, err
	}
	at := geom.Identity()
	if v, ok := a.kw["at"]; ok {
		if at, err = toLocation(v); err != nil {
			return nil, fmt.Errorf(":at: %w", err)
		}
	}
	j, err := joint.NewRigid(label, b, at)
	if err != nil {
		return nil, err
	}
	return &sexpJoint{j: j}, nil
}

func builtinRevoluteJoint(_ *interp, a kwArgs) (zygo.Sexp, error) {
	const usage = "body, label, axis origin and axis direction"
	b, label, err := jointTarget(a, usage)
	if err != nil {
		return nil, err
	}
	if err := a.need(4, usage); err != nil {
		return nil, err
	}
	axis, err := jointAxis(a)
	if err != nil {
		return nil, err
	}
	var opts []joint.RevoluteOption
	r, err := jointRange(a)
	if err != nil {
		return nil, err
	}
	if r != nil {
		opts = append(opts, joint.AngularRange(r.Min, r.Max))
	}
	if _, ok := a.kw["reference"]; ok {
		ref, err := a.vec("reference", geom.UnitX)
		if err != nil {
			return nil, err
		}
		opts = append(opts, joint.AngleReference(ref))
	}
	j, err := joint.NewRevolute(label, b, axis, opts...)
	if err != nil {
		return nil, err
	}
	return &sexpJoint{j: j}, nil
}

func builtinLinearJoint(_ *interp, a kwArgs) (zygo.Sexp, error) {
	const usage = "body, label, axis origin and axis direction"
	b, label, err := jointTarget(a, usage)
	if err != nil {
		return nil, err
	}
	if err := a.need(4, usage); err != nil {
		return nil, err
	}
	axis, err := jointAxis(a)
	if err != nil {
		return nil, err
	}
	r, err := jointRange(a)
	if err != nil {
		return nil, err
	}
	j, err := joint.NewLinear(label, b, axis, r)
	if err != nil {
		return nil, err
	}
	return &sexpJoint{j: j}, nil
}

// ---------------------------------------------------------------------------
// (connect joint other :angle 45 :position 2)
// ---------------------------------------------------------------------------

// builtinConnect moves other's body onto joint and returns that body.
func builtinConnect(_ *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(2, "joint and the joint to move onto it"); err != nil {
		return nil, err
	}
	j, err := toJoint(a.positional[0])
	if err != nil {
		return nil, err
	}
	other, err := toJoint(a.positional[1])
	if err != nil {
		return nil, err
	}
	var opts []joint.ConnectOption
	if _, ok := a.kw["angle"]; ok {
		deg, err := a.float("angle", 0)
		if err != nil {
			return nil, err
		}
		opts = append(opts, joint.Angle(deg))
	}
	if _, ok := a.kw["position"]; ok {
		d, err := a.float("position", 0)
		if err != nil {
			return nil, err
		}
		opts = append(opts, joint.Position(d))
	}

	switch j := j.(type) {
	case *joint.Rigid:
		err = j.ConnectTo(other, opts...)
	case *joint.Linear:
		err = j.ConnectTo(other, opts...)
	case *joint.Revolute:
		rigid, ok := other.(*joint.Rigid)
		if !ok {
			return nil, fmt.Errorf("a revolute joint connects to a rigid joint, got %s", describe(a.positional[1]))
		}
		err = j.ConnectTo(rigid, opts...)
	default:
		return nil, fmt.Errorf("unsupported joint %T", j)
	}
	if err != nil {
		return nil, err
	}
	return &sexpBody{b: other.Body()}, nil
}
