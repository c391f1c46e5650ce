package primitive

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalid matches every ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid primitive")

// Rules named by ValidationError.
const (
	RuleArity     = "arity"
	RuleDistinct  = "distinct-points"
	RuleDirection = "angle-or-direction"
	RuleRadius    = "radius-reach"
	RulePositive  = "positive"
	RuleFinite    = "finite"
	RuleRange     = "range"
	RuleTangents  = "tangents"
)

// pointTolerance is the distance below which two points are the same point.
const pointTolerance = 1e-9

// ValidationError reports a descriptor that breaks one of its kind's rules.
type ValidationError struct {
	Kind    Kind
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%s): %s", e.Kind, e.Rule, e.Message)
}

// Is lets errors.Is(err, ErrInvalid) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(k Kind, rule, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: k, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// Validate checks a descriptor's arity and geometric sanity. It never
// touches a kernel, so a nil result is the only way a descriptor reaches
// one.
func Validate(d Descriptor) error {
	if d == nil {
		return &ValidationError{Rule: RuleArity, Message: "nil descriptor"}
	}
	var err *ValidationError
	switch p := d.(type) {
	case Line:
		err = validateLine(p)
	case Polyline:
		err = validatePolyline(p)
	case PolarLine:
		err = validatePolarLine(p)
	case RadiusArc:
		err = validateRadiusArc(p)
	case SagittaArc:
		err = validateSagittaArc(p)
	case TangentArc:
		err = validateTangentArc(p)
	case ThreePointArc:
		err = validateThreePointArc(p)
	case CenterArc:
		err = validateCenterArc(p)
	case Spline:
		err = validateSpline(p)
	case Helix:
		err = validateHelix(p)
	case Rectangle:
		err = firstInvalid(positive(KindRectangle, "width", p.Width), positive(KindRectangle, "height", p.Height))
	case Circle:
		err = positive(KindCircle, "radius", p.Radius)
	case RegularPolygon:
		err = validateRegularPolygon(p)
	case Box:
		err = firstInvalid(
			positive(KindBox, "length", p.Length),
			positive(KindBox, "width", p.Width),
			positive(KindBox, "height", p.Height),
		)
	case Cylinder:
		err = firstInvalid(positive(KindCylinder, "radius", p.Radius), positive(KindCylinder, "height", p.Height))
	default:
		return &ValidationError{Kind: d.Kind(), Rule: RuleArity, Message: fmt.Sprintf("unsupported descriptor %T", d)}
	}
	if err != nil {
		return err
	}
	return nil
}

func validateLine(p Line) *ValidationError {
	if len(p.Points) != 2 {
		return invalid(KindLine, RuleArity, "needs exactly 2 points, got %d", len(p.Points))
	}
	if err := finitePoints(KindLine, p.Points...); err != nil {
		return err
	}
	if same(p.Points[0], p.Points[1]) {
		return invalid(KindLine, RuleDistinct, "start and end coincide")
	}
	return nil
}

func validatePolyline(p Polyline) *ValidationError {
	if len(p.Points) < 3 {
		return invalid(KindPolyline, RuleArity, "needs at least 3 points, got %d", len(p.Points))
	}
	if err := finitePoints(KindPolyline, p.Points...); err != nil {
		return err
	}
	for i := 1; i < len(p.Points); i++ {
		if same(p.Points[i-1], p.Points[i]) {
			return invalid(KindPolyline, RuleDistinct, "points %d and %d coincide", i-1, i)
		}
	}
	return nil
}

func validatePolarLine(p PolarLine) *ValidationError {
	if p.Angle == nil && p.Direction == nil {
		return invalid(KindPolarLine, RuleDirection, "needs an angle or a direction")
	}
	if p.Angle != nil && p.Direction != nil {
		return invalid(KindPolarLine, RuleDirection, "takes an angle or a direction, not both")
	}
	if err := finitePoints(KindPolarLine, p.Start); err != nil {
		return err
	}
	if !finite(p.Length) || p.Length == 0 {
		return invalid(KindPolarLine, RulePositive, "length must be non-zero, got %g", p.Length)
	}
	if p.Angle != nil && !finite(*p.Angle) {
		return invalid(KindPolarLine, RuleFinite, "angle is not finite")
	}
	if p.Direction != nil {
		if err := finitePoints(KindPolarLine, *p.Direction); err != nil {
			return err
		}
		if p.Direction.Length() <= pointTolerance {
			return invalid(KindPolarLine, RuleDirection, "direction must be non-zero")
		}
	}
	return nil
}

func validateRadiusArc(p RadiusArc) *ValidationError {
	if err := finitePoints(KindRadiusArc, p.Start, p.End); err != nil {
		return err
	}
	if same(p.Start, p.End) {
		return invalid(KindRadiusArc, RuleDistinct, "start and end coincide")
	}
	if !finite(p.Radius) {
		return invalid(KindRadiusArc, RuleFinite, "radius is not finite")
	}
	half := p.End.Sub(p.Start).Length() / 2
	if math.Abs(p.Radius) < half {
		return invalid(KindRadiusArc, RuleRadius, "radius %g cannot span a chord of %g", math.Abs(p.Radius), 2*half)
	}
	return nil
}

func validateSagittaArc(p SagittaArc) *ValidationError {
	if err := finitePoints(KindSagittaArc, p.Start, p.End); err != nil {
		return err
	}
	if same(p.Start, p.End) {
		return invalid(KindSagittaArc, RuleDistinct, "start and end coincide")
	}
	if !finite(p.Sagitta) || p.Sagitta == 0 {
		return invalid(KindSagittaArc, RulePositive, "sagitta must be non-zero, got %g", p.Sagitta)
	}
	return nil
}

func validateTangentArc(p TangentArc) *ValidationError {
	if len(p.Points) != 2 {
		return invalid(KindTangentArc, RuleArity, "needs exactly 2 points, got %d", len(p.Points))
	}
	if err := finitePoints(KindTangentArc, append([]v3.Vec{p.Tangent}, p.Points...)...); err != nil {
		return err
	}
	if same(p.Points[0], p.Points[1]) {
		return invalid(KindTangentArc, RuleDistinct, "points coincide")
	}
	if p.Tangent.Length() <= pointTolerance {
		return invalid(KindTangentArc, RuleTangents, "tangent must be non-zero")
	}
	return nil
}

func validateThreePointArc(p ThreePointArc) *ValidationError {
	if len(p.Points) != 3 {
		return invalid(KindThreePointArc, RuleArity, "needs exactly 3 points, got %d", len(p.Points))
	}
	if err := finitePoints(KindThreePointArc, p.Points...); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if same(p.Points[i], p.Points[j]) {
				return invalid(KindThreePointArc, RuleDistinct, "points %d and %d coincide", i, j)
			}
		}
	}
	return nil
}

func validateCenterArc(p CenterArc) *ValidationError {
	if err := finitePoints(KindCenterArc, p.Center); err != nil {
		return err
	}
	if err := positive(KindCenterArc, "radius", p.Radius); err != nil {
		return err
	}
	if !finite(p.StartAngle) || !finite(p.ArcSize) {
		return invalid(KindCenterArc, RuleFinite, "angles must be finite")
	}
	if p.ArcSize == 0 || math.Abs(p.ArcSize) > 360 {
		return invalid(KindCenterArc, RuleRange, "arc size must be in (0, 360] degrees, got %g", p.ArcSize)
	}
	return nil
}

func validateSpline(p Spline) *ValidationError {
	if len(p.Points) < 2 {
		return invalid(KindSpline, RuleArity, "needs at least 2 points, got %d", len(p.Points))
	}
	if err := finitePoints(KindSpline, p.Points...); err != nil {
		return err
	}
	for i := 1; i < len(p.Points); i++ {
		if same(p.Points[i-1], p.Points[i]) {
			return invalid(KindSpline, RuleDistinct, "points %d and %d coincide", i-1, i)
		}
	}
	switch n := len(p.Tangents); {
	case n == 0:
		if len(p.TangentScalars) > 0 {
			return invalid(KindSpline, RuleTangents, "tangent scalars given without tangents")
		}
		return nil
	case n != 2 && n != len(p.Points):
		return invalid(KindSpline, RuleTangents, "needs 2 tangents or one per point (%d), got %d", len(p.Points), n)
	}
	if err := finitePoints(KindSpline, p.Tangents...); err != nil {
		return err
	}
	for i, t := range p.Tangents {
		if t.Length() <= pointTolerance {
			return invalid(KindSpline, RuleTangents, "tangent %d is zero", i)
		}
	}
	if len(p.TangentScalars) > 0 && len(p.TangentScalars) != len(p.Tangents) {
		return invalid(KindSpline, RuleTangents, "needs one scalar per tangent (%d), got %d", len(p.Tangents), len(p.TangentScalars))
	}
	for i, s := range p.TangentScalars {
		if !finite(s) || s == 0 {
			return invalid(KindSpline, RuleTangents, "tangent scalar %d must be non-zero, got %g", i, s)
		}
	}
	return nil
}

func validateHelix(p Helix) *ValidationError {
	if err := firstInvalid(positive(KindHelix, "pitch", p.Pitch), positive(KindHelix, "radius", p.Radius)); err != nil {
		return err
	}
	if !finite(p.Height) || p.Height == 0 {
		return invalid(KindHelix, RulePositive, "height must be non-zero, got %g", p.Height)
	}
	if err := finitePoints(KindHelix, p.Center, p.Direction); err != nil {
		return err
	}
	if p.Direction.Length() <= pointTolerance {
		return invalid(KindHelix, RuleDirection, "direction must be non-zero")
	}
	if !finite(p.ConeAngle) || math.Abs(p.ConeAngle) >= 90 {
		return invalid(KindHelix, RuleRange, "cone angle must be inside (-90, 90) degrees, got %g", p.ConeAngle)
	}
	return nil
}

func validateRegularPolygon(p RegularPolygon) *ValidationError {
	if err := positive(KindRegularPolygon, "radius", p.Radius); err != nil {
		return err
	}
	if p.Sides < 3 {
		return invalid(KindRegularPolygon, RuleArity, "needs at least 3 sides, got %d", p.Sides)
	}
	return nil
}

// positive checks that the field name of a k descriptor is a finite,
// strictly positive number.
func positive(k Kind, name string, v float64) *ValidationError {
	if !finite(v) {
		return invalid(k, RuleFinite, "%s is not finite", name)
	}
	if v <= 0 {
		return invalid(k, RulePositive, "%s must be positive, got %g", name, v)
	}
	return nil
}

// firstInvalid returns the first non-nil error, in field order.
func firstInvalid(errs ...*ValidationError) *ValidationError {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func finitePoints(k Kind, pts ...v3.Vec) *ValidationError {
	for i, p := range pts {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return invalid(k, RuleFinite, "point %d is not finite", i)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func same(a, b v3.Vec) bool {
	return a.Sub(b).Length() <= pointTolerance
}
