package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/contour/pkg/algebra"
	"github.com/chazu/contour/pkg/build"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Go values carried through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec wraps a point or direction.
type sexpVec struct {
	v v3.Vec
}

func (s *sexpVec) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec %g %g %g)", s.v.X, s.v.Y, s.v.Z)
}
func (s *sexpVec) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a realized kernel shape.
type sexpShape struct {
	s kernel.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.s == nil {
		return "(shape nil)"
	}
	return fmt.Sprintf("(shape %s #%d)", s.s.Kind(), s.s.ID())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpLocation wraps a rigid transform.
type sexpLocation struct {
	loc geom.Location
}

func (s *sexpLocation) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(location %s)", s.loc)
}
func (s *sexpLocation) Type() *zygo.RegisteredType { return nil }

// sexpBuilder is the handle returned by the begin-* builtins. Every
// builder operation takes it as its first argument.
type sexpBuilder struct {
	b *build.Builder
}

func (s *sexpBuilder) SexpString(ps *zygo.PrintState) string {
	state := "open"
	if s.b.Done() {
		state = "closed"
	}
	return fmt.Sprintf("(%s-builder %s)", s.b.Kind(), state)
}
func (s *sexpBuilder) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker preprocessSource puts in front of keyword names.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds a call's arguments split into keyword and positional parts.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// keyword with nothing after it is a flag with a null value.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// need fails unless at least n positional arguments were given.
func (a kwArgs) need(n int, usage string) error {
	if len(a.positional) < n {
		return fmt.Errorf("expected %s, got %d arguments", usage, len(a.positional))
	}
	return nil
}

// float returns keyword name as a number, or def when it is absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// flag returns keyword name as a boolean. A bare keyword counts as true.
func (a kwArgs) flag(name string) (bool, error) {
	v, ok := a.kw[name]
	if !ok {
		return false, nil
	}
	if v == zygo.SexpNull {
		return true, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

// vec returns keyword name as a vector, or def when it is absent.
func (a kwArgs) vec(name string, def v3.Vec) (v3.Vec, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	p, err := toVec(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// mode returns the :mode keyword, or def when it is absent.
func (a kwArgs) mode(def algebra.Mode) (algebra.Mode, error) {
	v, ok := a.kw["mode"]
	if !ok {
		return def, nil
	}
	name, err := toKeywordString(v)
	if err != nil {
		return 0, fmt.Errorf("mode: %w", err)
	}
	return algebra.ParseMode(name)
}

// scope returns the :scope keyword, defaulting to every generation.
func (a kwArgs) scope() (build.Scope, error) {
	v, ok := a.kw["scope"]
	if !ok {
		return build.All, nil
	}
	name, err := toKeywordString(v)
	if err != nil {
		return 0, fmt.Errorf("scope: %w", err)
	}
	switch strings.ToLower(name) {
	case "last":
		return build.Last, nil
	case "all":
		return build.All, nil
	}
	return 0, fmt.Errorf("unknown scope %q, expected last or all", name)
}

// plane returns the :plane keyword, or def when it is absent.
func (a kwArgs) plane(def geom.Plane) (geom.Plane, error) {
	v, ok := a.kw["plane"]
	if !ok {
		return def, nil
	}
	name, err := toKeywordString(v)
	if err != nil {
		return geom.Plane{}, fmt.Errorf("plane: %w", err)
	}
	return geom.PlaneNamed(name)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toInt extracts a whole number.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(s))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %s", describe(s))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Both :xy and "xy" yield "xy".
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %s", describe(s))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toVec(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec); ok {
		return v.v, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec, got %s", describe(s))
}

// toVecs extracts every argument as a vector.
func toVecs(args []zygo.Sexp) ([]v3.Vec, error) {
	out := make([]v3.Vec, 0, len(args))
	for i, a := range args {
		v, err := toVec(a)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func toShape(s zygo.Sexp) (kernel.Shape, error) {
	if v, ok := s.(*sexpShape); ok && v.s != nil {
		return v.s, nil
	}
	return nil, fmt.Errorf("expected shape, got %s", describe(s))
}

// toShapes extracts shapes from arguments; list arguments are flattened so
// selector results can be passed directly.
func toShapes(args []zygo.Sexp) ([]kernel.Shape, error) {
	var out []kernel.Shape
	for _, a := range args {
		if items, err := sexpListToSlice(a); err == nil {
			nested, err := toShapes(items)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}
		s, err := toShape(a)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func toCurve(s zygo.Sexp) (kernel.Curve, error) {
	shape, err := toShape(s)
	if err != nil {
		return nil, err
	}
	c, ok := shape.(kernel.Curve)
	if !ok {
		return nil, fmt.Errorf("expected edge or wire, got %s", shape.Kind())
	}
	return c, nil
}

func toLocation(s zygo.Sexp) (geom.Location, error) {
	if v, ok := s.(*sexpLocation); ok {
		return v.loc, nil
	}
	return geom.Location{}, fmt.Errorf("expected location, got %s", describe(s))
}

func toBuilder(s zygo.Sexp) (*build.Builder, error) {
	if v, ok := s.(*sexpBuilder); ok {
		return v.b, nil
	}
	return nil, fmt.Errorf("expected builder handle from begin-line, begin-sketch or begin-part, got %s", describe(s))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", describe(s))
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Go to Sexp
// ---------------------------------------------------------------------------

func num(f float64) zygo.Sexp { return &zygo.SexpFloat{Val: f} }

func shapeList(shapes []kernel.Shape) zygo.Sexp {
	items := make([]zygo.Sexp, len(shapes))
	for i, s := range shapes {
		items[i] = &sexpShape{s: s}
	}
	return zygo.MakeList(items)
}

func vecList(vs []v3.Vec) zygo.Sexp {
	items := make([]zygo.Sexp, len(vs))
	for i, v := range vs {
		items[i] = &sexpVec{v: v}
	}
	return zygo.MakeList(items)
}
