package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/chazu/contour/pkg/algebra"
	"github.com/chazu/contour/pkg/build"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/primitive"
	"github.com/chazu/contour/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// interp is the per-evaluation state the builtins operate on.
type interp struct {
	session  *build.Session
	k        kernel.Kernel
	log      *slog.Logger
	shown    []tessellate.Item
	warnings []EvalWarning
}

// builtin implements one script function. Errors are prefixed with the
// function's name by registerBuiltins.
type builtin func(in *interp, a kwArgs) (zygo.Sexp, error)

// builtins maps script names to implementations. Names use underscores;
// preprocessSource turns begin-sketch into begin_sketch before evaluation.
var builtins = map[string]builtin{
	// vectors
	"vec":      builtinVec,
	"vadd":     vecPair(v3.Vec.Add),
	"vsub":     vecPair(v3.Vec.Sub),
	"vscale":   builtinVScale,
	"midpoint": vecPair(func(a, b v3.Vec) v3.Vec { return geom.Lerp(a, b, 0.5) }),

	// contexts
	"begin_line":   beginBuilder(build.Line),
	"begin_sketch": beginBuilder(build.Sketch),
	"begin_part":   beginBuilder(build.Part),
	"end":          builtinEnd,

	// elements
	"line":            element(2, "builder and 2 points", descLine),
	"polyline":        element(3, "builder and at least 3 points", descPolyline),
	"polar_line":      element(3, "builder, start and length", descPolarLine),
	"radius_arc":      element(4, "builder, start, end and radius", descRadiusArc),
	"sagitta_arc":     element(4, "builder, start, end and sagitta", descSagittaArc),
	"tangent_arc":     element(3, "builder and 2 points", descTangentArc),
	"three_point_arc": element(4, "builder and 3 points", descThreePointArc),
	"center_arc":      element(5, "builder, center, radius, start angle and arc size", descCenterArc),
	"spline":          element(3, "builder and at least 2 points", descSpline),
	"helix":           element(4, "builder, pitch, height and radius", descHelix),
	"rectangle":       element(3, "builder, width and height", descRectangle),
	"circle":          element(2, "builder and radius", descCircle),
	"regular_polygon": element(3, "builder, radius and sides", descRegularPolygon),
	"box":             element(4, "builder, length, width and height", descBox),
	"cylinder":        element(3, "builder, radius and height", descCylinder),
	"add":             builtinAdd,

	// operations
	"make_face": fromEdges((*build.Builder).MakeFace),
	"make_hull": fromEdges((*build.Builder).MakeHull),
	"extrude":   builtinExtrude,
	"mirror":    builtinMirror,

	// selectors
	"edges":    builtinEdges,
	"vertices": builtinVertices,
	"faces":    builtinFaces,
	"item":     builtinItem,
	"count":    builtinCount,

	// queries
	"at":      curveQuery(func(c kernel.Curve, u float64) zygo.Sexp { return &sexpVec{v: c.PositionAt(u)} }),
	"tangent": curveQuery(func(c kernel.Curve, u float64) zygo.Sexp { return &sexpVec{v: c.TangentAt(u)} }),
	"area":    measure(kernel.Area),
	"length":  measure(kernel.Length),
	"volume":  measure(kernel.Volume),

	// algebra
	"pos":       locationOf(geom.Pos),
	"rot":       locationOf(geom.Rot),
	"compose":   builtinCompose,
	"move":      builtinMove,
	"union":     booleanOf(algebra.Union),
	"subtract":  booleanOf(func(k kernel.Kernel, s ...kernel.Shape) (kernel.Shape, error) { return algebra.Difference(k, s[0], s[1:]...) }),
	"intersect": booleanOf(algebra.Common),

	// joints
	"body":           builtinBody,
	"placed":         builtinPlaced,
	"rigid_joint":    builtinRigidJoint,
	"revolute_joint": builtinRevoluteJoint,
	"linear_joint":   builtinLinearJoint,
	"connect":        builtinConnect,

	"show": builtinShow,
}

// registerBuiltins installs every contour builtin into env. Source must be
// run through preprocessSource first so keywords are recognizable.
func registerBuiltins(env *zygo.Zlisp, in *interp) {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn := builtins[name]
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			out, err := fn(in, parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return out, nil
		})
	}
}

// ---------------------------------------------------------------------------
// (vec 1 2 3), (vadd a b), (vscale v 2), (midpoint a b)
// ---------------------------------------------------------------------------

func builtinVec(_ *interp, a kwArgs) (zygo.Sexp, error) {
	if n := len(a.positional); n != 2 && n != 3 {
		return nil, fmt.Errorf("expected 2 or 3 coordinates, got %d", n)
	}
	var c [3]float64
	for i, p := range a.positional {
		f, err := toFloat64(p)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		c[i] = f
	}
	return &sexpVec{v: geom.V(c[0], c[1], c[2])}, nil
}

func vecPair(fn func(a, b v3.Vec) v3.Vec) builtin {
	return func(_ *interp, a kwArgs) (zygo.Sexp, error) {
		if len(a.positional) != 2 {
			return nil, fmt.Errorf("expected 2 vectors, got %d arguments", len(a.positional))
		}
		x, err := toVec(a.positional[0])
		if err != nil {
			return nil, err
		}
		y, err := toVec(a.positional[1])
		if err != nil {
			return nil, err
		}
		return &sexpVec{v: fn(x, y)}, nil
	}
}

func builtinVScale(_ *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(2, "vector and factor"); err != nil {
		return nil, err
	}
	v, err := toVec(a.positional[0])
	if err != nil {
		return nil, err
	}
	f, err := toFloat64(a.positional[1])
	if err != nil {
		return nil, err
	}
	return &sexpVec{v: v.MulScalar(f)}, nil
}

// ---------------------------------------------------------------------------
// (begin-sketch :plane :xz :mode :subtract :seed true :name "profile")
// (end h)
// ---------------------------------------------------------------------------

func beginBuilder(kind build.Kind) builtin {
	return func(in *interp, a kwArgs) (zygo.Sexp, error) {
		var opts []build.BuilderOption
		plane, err := a.plane(geom.XY)
		if err != nil {
			return nil, err
		}
		offset, err := a.float("offset", 0)
		if err != nil {
			return nil, err
		}
		opts = append(opts, build.WithPlane(plane.Offset(offset)))
		mode, err := a.mode(algebra.Add)
		if err != nil {
			return nil, err
		}
		opts = append(opts, build.WithMode(mode))
		seed, err := a.flag("seed")
		if err != nil {
			return nil, err
		}
		if seed {
			opts = append(opts, build.SeedFromParent())
		}
		if v, ok := a.kw["name"]; ok {
			name, err := toString(v)
			if err != nil {
				return nil, fmt.Errorf("name: %w", err)
			}
			opts = append(opts, build.WithName(name))
		}
		b, err := in.session.Enter(kind, opts...)
		if err != nil {
			return nil, err
		}
		return &sexpBuilder{b: b}, nil
	}
}

func builtinEnd(in *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(1, "builder"); err != nil {
		return nil, err
	}
	b, err := toBuilder(a.positional[0])
	if err != nil {
		return nil, err
	}
	s, err := in.session.Exit(b)
	if err != nil {
		return nil, err
	}
	return &sexpShape{s: s}, nil
}

// ---------------------------------------------------------------------------
// Elements: (circle h 5 :mode :subtract)
// ---------------------------------------------------------------------------

// descriptor builds an element description from the positional arguments
// that follow the builder handle.
type descriptor func(args []zygo.Sexp, a kwArgs) (primitive.Descriptor, error)

// element adapts a descriptor into a builtin that adds the element to the
// builder given as the first argument.
func element(n int, usage string, desc descriptor) builtin {
	return func(in *interp, a kwArgs) (zygo.Sexp, error) {
		if err := a.need(n, usage); err != nil {
			return nil, err
		}
		b, err := toBuilder(a.positional[0])
		if err != nil {
			return nil, err
		}
		mode, err := a.mode(algebra.Add)
		if err != nil {
			return nil, err
		}
		d, err := desc(a.positional[1:], a)
		if err != nil {
			return nil, err
		}
		s, err := b.Add(d, mode)
		if err != nil {
			return nil, err
		}
		return &sexpShape{s: s}, nil
	}
}

func floats(args []zygo.Sexp, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		f, err := toFloat64(args[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[i] = f
	}
	return out, nil
}

func descLine(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	pts, err := toVecs(args)
	if err != nil {
		return nil, err
	}
	return primitive.Line{Points: pts}, nil
}

func descPolyline(args []zygo.Sexp, a kwArgs) (primitive.Descriptor, error) {
	pts, err := toVecs(args)
	if err != nil {
		return nil, err
	}
	closed, err := a.flag("close")
	if err != nil {
		return nil, err
	}
	return primitive.Polyline{Points: pts, Close: closed}, nil
}

func descPolarLine(args []zygo.Sexp, a kwArgs) (primitive.Descriptor, error) {
	start, err := toVec(args[0])
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	length, err := toFloat64(args[1])
	if err != nil {
		return nil, fmt.Errorf("length: %w", err)
	}
	d := primitive.PolarLine{Start: start, Length: length}
	if _, ok := a.kw["angle"]; ok {
		angle, err := a.float("angle", 0)
		if err != nil {
			return nil, err
		}
		d.Angle = &angle
	}
	if _, ok := a.kw["direction"]; ok {
		dir, err := a.vec("direction", geom.UnitX)
		if err != nil {
			return nil, err
		}
		d.Direction = &dir
	}
	return d, nil
}

func descRadiusArc(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	pts, err := toVecs(args[:2])
	if err != nil {
		return nil, err
	}
	r, err := toFloat64(args[2])
	if err != nil {
		return nil, fmt.Errorf("radius: %w", err)
	}
	return primitive.RadiusArc{Start: pts[0], End: pts[1], Radius: r}, nil
}

func descSagittaArc(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	pts, err := toVecs(args[:2])
	if err != nil {
		return nil, err
	}
	s, err := toFloat64(args[2])
	if err != nil {
		return nil, fmt.Errorf("sagitta: %w", err)
	}
	return primitive.SagittaArc{Start: pts[0], End: pts[1], Sagitta: s}, nil
}

func descTangentArc(args []zygo.Sexp, a kwArgs) (primitive.Descriptor, error) {
	pts, err := toVecs(args)
	if err != nil {
		return nil, err
	}
	if _, ok := a.kw["tangent"]; !ok {
		return nil, fmt.Errorf("missing :tangent")
	}
	tangent, err := a.vec("tangent", geom.Origin)
	if err != nil {
		return nil, err
	}
	atEnd, err := a.flag("at-end")
	if err != nil {
		return nil, err
	}
	return primitive.TangentArc{Points: pts, Tangent: tangent, TangentAtEnd: atEnd}, nil
}

func descThreePointArc(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	pts, err := toVecs(args)
	if err != nil {
		return nil, err
	}
	return primitive.ThreePointArc{Points: pts}, nil
}

func descCenterArc(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	center, err := toVec(args[0])
	if err != nil {
		return nil, fmt.Errorf("center: %w", err)
	}
	f, err := floats(args[1:], "radius", "start angle", "arc size")
	if err != nil {
		return nil, err
	}
	return primitive.CenterArc{Center: center, Radius: f[0], StartAngle: f[1], ArcSize: f[2]}, nil
}

func descSpline(args []zygo.Sexp, a kwArgs) (primitive.Descriptor, error) {
	pts, err := toVecs(args)
	if err != nil {
		return nil, err
	}
	d := primitive.Spline{Points: pts}
	if v, ok := a.kw["tangents"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, fmt.Errorf("tangents: %w", err)
		}
		if d.Tangents, err = toVecs(items); err != nil {
			return nil, fmt.Errorf("tangents: %w", err)
		}
	}
	if v, ok := a.kw["scalars"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, fmt.Errorf("scalars: %w", err)
		}
		for i, it := range items {
			f, err := toFloat64(it)
			if err != nil {
				return nil, fmt.Errorf("scalar %d: %w", i+1, err)
			}
			d.TangentScalars = append(d.TangentScalars, f)
		}
	}
	return d, nil
}

func descHelix(args []zygo.Sexp, a kwArgs) (primitive.Descriptor, error) {
	f, err := floats(args, "pitch", "height", "radius")
	if err != nil {
		return nil, err
	}
	d := primitive.Helix{Pitch: f[0], Height: f[1], Radius: f[2]}
	if d.Center, err = a.vec("center", geom.Origin); err != nil {
		return nil, err
	}
	if d.Direction, err = a.vec("direction", geom.UnitZ); err != nil {
		return nil, err
	}
	if d.ConeAngle, err = a.float("cone-angle", 0); err != nil {
		return nil, err
	}
	if d.LeftHand, err = a.flag("left-hand"); err != nil {
		return nil, err
	}
	return d, nil
}

func descRectangle(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	f, err := floats(args, "width", "height")
	if err != nil {
		return nil, err
	}
	return primitive.Rectangle{Width: f[0], Height: f[1]}, nil
}

func descCircle(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	f, err := floats(args, "radius")
	if err != nil {
		return nil, err
	}
	return primitive.Circle{Radius: f[0]}, nil
}

func descRegularPolygon(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	r, err := toFloat64(args[0])
	if err != nil {
		return nil, fmt.Errorf("radius: %w", err)
	}
	sides, err := toInt(args[1])
	if err != nil {
		return nil, fmt.Errorf("sides: %w", err)
	}
	return primitive.RegularPolygon{Radius: r, Sides: sides}, nil
}

func descBox(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	f, err := floats(args, "length", "width", "height")
	if err != nil {
		return nil, err
	}
	return primitive.Box{Length: f[0], Width: f[1], Height: f[2]}, nil
}

func descCylinder(args []zygo.Sexp, _ kwArgs) (primitive.Descriptor, error) {
	f, err := floats(args, "radius", "height")
	if err != nil {
		return nil, err
	}
	return primitive.Cylinder{Radius: f[0], Height: f[1]}, nil
}

// (add h shape :mode :subtract)
func builtinAdd(in *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(2, "builder and shape"); err != nil {
		return nil, err
	}
	b, err := toBuilder(a.positional[0])
	if err != nil {
		return nil, err
	}
	s, err := toShape(a.positional[1])
	if err != nil {
		return nil, err
	}
	mode, err := a.mode(algebra.Add)
	if err != nil {
		return nil, err
	}
	if err := b.AddShape(s, mode); err != nil {
		return nil, err
	}
	return &sexpShape{s: s}, nil
}

// ---------------------------------------------------------------------------
// Operations: (make-face h), (extrude h 10), (mirror h :about :yz)
// ---------------------------------------------------------------------------

func fromEdges(op func(*build.Builder, algebra.Mode) (kernel.Shape, error)) builtin {
	return func(in *interp, a kwArgs) (zygo.Sexp, error) {
		if err := a.need(1, "builder"); err != nil {
			return nil, err
		}
		b, err := toBuilder(a.positional[0])
		if err != nil {
			return nil, err
		}
		mode, err := a.mode(algebra.Add)
		if err != nil {
			return nil, err
		}
		s, err := op(b, mode)
		if err != nil {
			return nil, err
		}
		return &sexpShape{s: s}, nil
	}
}

func builtinExtrude(in *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(2, "builder and amount"); err != nil {
		return nil, err
	}
	b, err := toBuilder(a.positional[0])
	if err != nil {
		return nil, err
	}
	amount, err := toFloat64(a.positional[1])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	mode, err := a.mode(algebra.Add)
	if err != nil {
		return nil, err
	}
	s, err := b.Extrude(amount, mode)
	if err != nil {
		return nil, err
	}
	return &sexpShape{s: s}, nil
}

func builtinMirror(in *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(1, "builder"); err != nil {
		return nil, err
	}
	b, err := toBuilder(a.positional[0])
	if err != nil {
		return nil, err
	}
	about := geom.YZ
	if v, ok := a.kw["about"]; ok {
		name, err := toKeywordString(v)
		if err != nil {
			return nil, fmt.Errorf("about: %w", err)
		}
		if about, err = geom.PlaneNamed(name); err != nil {
			return nil, err
		}
	}
	var shapes []kernel.Shape
	if v, ok := a.kw["shapes"]; ok {
		if shapes, err = toShapes([]zygo.Sexp{v}); err != nil {
			return nil, fmt.Errorf("shapes: %w", err)
		}
	}
	mode, err := a.mode(algebra.Add)
	if err != nil {
		return nil, err
	}
	copies, err := b.Mirror(shapes, about, mode)
	if err != nil {
		return nil, err
	}
	return shapeList(copies), nil
}

// ---------------------------------------------------------------------------
// Selectors: (edges h :scope :last), (item xs 0), (count xs)
// ---------------------------------------------------------------------------

// selector resolves the builder and scope shared by every selector.
func selector(a kwArgs) (*build.Builder, build.Scope, error) {
	if err := a.need(1, "builder"); err != nil {
		return nil, 0, err
	}
	b, err := toBuilder(a.positional[0])
	if err != nil {
		return nil, 0, err
	}
	scope, err := a.scope()
	return b, scope, err
}

func builtinEdges(_ *interp, a kwArgs) (zygo.Sexp, error) {
	b, scope, err := selector(a)
	if err != nil {
		return nil, err
	}
	edges, err := b.Edges(scope)
	if err != nil {
		return nil, err
	}
	shapes := make([]kernel.Shape, len(edges))
	for i, e := range edges {
		shapes[i] = e
	}
	return shapeList(shapes), nil
}

func builtinVertices(_ *interp, a kwArgs) (zygo.Sexp, error) {
	b, scope, err := selector(a)
	if err != nil {
		return nil, err
	}
	vs, err := b.Vertices(scope)
	if err != nil {
		return nil, err
	}
	return vecList(vs), nil
}

func builtinFaces(_ *interp, a kwArgs) (zygo.Sexp, error) {
	b, scope, err := selector(a)
	if err != nil {
		return nil, err
	}
	faces, err := b.Faces(scope)
	if err != nil {
		return nil, err
	}
	shapes := make([]kernel.Shape, len(faces))
	for i, f := range faces {
		shapes[i] = f
	}
	return shapeList(shapes), nil
}

func builtinItem(_ *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(2, "list and index"); err != nil {
		return nil, err
	}
	items, err := sexpListToSlice(a.positional[0])
	if err != nil {
		return nil, err
	}
	i, err := toInt(a.positional[1])
	if err != nil {
		return nil, err
	}
	if i < 0 {
		i += len(items)
	}
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("index %d out of range for %d items", i, len(items))
	}
	return items[i], nil
}

func builtinCount(_ *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(1, "list"); err != nil {
		return nil, err
	}
	items, err := sexpListToSlice(a.positional[0])
	if err != nil {
		return nil, err
	}
	return &zygo.SexpInt{Val: int64(len(items))}, nil
}

// ---------------------------------------------------------------------------
// Queries: (at wire 0.5), (area shape)
// ---------------------------------------------------------------------------

func curveQuery(fn func(kernel.Curve, float64) zygo.Sexp) builtin {
	return func(_ *interp, a kwArgs) (zygo.Sexp, error) {
		if err := a.need(2, "curve and parameter"); err != nil {
			return nil, err
		}
		c, err := toCurve(a.positional[0])
		if err != nil {
			return nil, err
		}
		u, err := toFloat64(a.positional[1])
		if err != nil {
			return nil, err
		}
		if u < 0 || u > 1 {
			return nil, fmt.Errorf("parameter %g outside [0, 1]", u)
		}
		return fn(c, u), nil
	}
}

func measure(m kernel.Metric) builtin {
	return func(in *interp, a kwArgs) (zygo.Sexp, error) {
		if err := a.need(1, "shape"); err != nil {
			return nil, err
		}
		s, err := toShape(a.positional[0])
		if err != nil {
			return nil, err
		}
		v, err := in.k.Measure(s, m)
		if err != nil {
			return nil, err
		}
		return num(v), nil
	}
}

// ---------------------------------------------------------------------------
// Algebra: (move shape (compose (pos 0 0 5) (rot 0 0 45)))
// ---------------------------------------------------------------------------

func locationOf(fn func(x, y, z float64) geom.Location) builtin {
	return func(_ *interp, a kwArgs) (zygo.Sexp, error) {
		if err := a.need(3, "x, y and z"); err != nil {
			return nil, err
		}
		f, err := floats(a.positional, "x", "y", "z")
		if err != nil {
			return nil, err
		}
		return &sexpLocation{loc: fn(f[0], f[1], f[2])}, nil
	}
}

func builtinCompose(_ *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(1, "at least one location"); err != nil {
		return nil, err
	}
	locs := make([]geom.Location, len(a.positional))
	for i, p := range a.positional {
		l, err := toLocation(p)
		if err != nil {
			return nil, err
		}
		locs[i] = l
	}
	return &sexpLocation{loc: geom.Compose(locs...)}, nil
}

func builtinMove(in *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(2, "shape and location"); err != nil {
		return nil, err
	}
	s, err := toShape(a.positional[0])
	if err != nil {
		return nil, err
	}
	loc, err := toLocation(a.positional[1])
	if err != nil {
		return nil, err
	}
	moved, err := algebra.Moved(in.k, s, loc)
	if err != nil {
		return nil, err
	}
	return &sexpShape{s: moved}, nil
}

func booleanOf(fn func(kernel.Kernel, ...kernel.Shape) (kernel.Shape, error)) builtin {
	return func(in *interp, a kwArgs) (zygo.Sexp, error) {
		shapes, err := toShapes(a.positional)
		if err != nil {
			return nil, err
		}
		if len(shapes) < 2 {
			return nil, fmt.Errorf("expected at least 2 shapes, got %d", len(shapes))
		}
		s, err := fn(in.k, shapes...)
		if err != nil {
			return nil, err
		}
		return &sexpShape{s: s}, nil
	}
}

// ---------------------------------------------------------------------------
// (show shape "name"), (show body)
// ---------------------------------------------------------------------------

// A body is shown at its current placement, under its own name unless one
// is given.
func builtinShow(in *interp, a kwArgs) (zygo.Sexp, error) {
	if err := a.need(1, "shape or body"); err != nil {
		return nil, err
	}
	var item tessellate.Item
	if b, ok := a.positional[0].(*sexpBody); ok {
		item = tessellate.FromBodies(b.b)[0]
	} else {
		s, err := toShape(a.positional[0])
		if err != nil {
			return nil, err
		}
		item.Shape = s
	}
	if len(a.positional) > 1 {
		name, err := toString(a.positional[1])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		item.Name = name
	}
	s := item.Shape
	if kernel.Dimension(s) < 2 {
		in.warnings = append(in.warnings, EvalWarning{
			Message: fmt.Sprintf("show: %s %q has no surface and will not be meshed", s.Kind(), item.Name),
		})
	}
	in.shown = append(in.shown, item)
	in.log.Debug("show", "name", item.Name, "kind", s.Kind().String())
	return a.positional[0], nil
}
