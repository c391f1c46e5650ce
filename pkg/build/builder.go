package build

import (
	"errors"
	"log/slog"

	"github.com/chazu/contour/pkg/algebra"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/graph"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Builder is one frame of a session's builder stack. It owns a working
// shape, a pending set and, for sketches and parts, the pending edges and
// faces that later operations consume.
type Builder struct {
	session *Session
	kind    Kind
	parent  *Builder
	plane   geom.Plane
	mode    algebra.Mode
	seed    bool
	name    string
	log     *slog.Logger

	working kernel.Shape
	node    graph.NodeID // history node of the working shape
	pending PendingSet
	manual  bool

	edges   []kernel.Edge
	faces   []kernel.Face
	sources []graph.NodeID // history nodes that contributed edges or faces

	done   bool
	result kernel.Shape
}

// Kind returns what the builder accumulates.
func (b *Builder) Kind() Kind { return b.kind }

// Plane returns the builder's plane in its parent's coordinates.
func (b *Builder) Plane() geom.Plane { return b.plane }

// Mode returns how the builder's result combines into its parent.
func (b *Builder) Mode() algebra.Mode { return b.mode }

// Parent returns the enclosing builder, or nil at the top level.
func (b *Builder) Parent() *Builder { return b.parent }

// Session returns the session that owns the builder.
func (b *Builder) Session() *Session { return b.session }

// Generation returns the current generation number.
func (b *Builder) Generation() int { return b.pending.Generation() }

// Done reports whether the builder has exited or been aborted.
func (b *Builder) Done() bool { return b.done }

func (b *Builder) kernel() kernel.Kernel   { return b.session.k }
func (b *Builder) history() *graph.History { return b.session.history }

// check fails unless b is the innermost open builder.
func (b *Builder) check(op string) error {
	if b.done {
		return stateErrorf(op, "%s builder has exited", b.kind)
	}
	if b.session.Active() != b {
		return stateErrorf(op, "%s builder is not the active builder", b.kind)
	}
	return nil
}

// accepts checks that a shape of dimension dim may be added under mode.
func (b *Builder) accepts(op string, dim int, mode algebra.Mode) error {
	if !mode.Valid() {
		return stateErrorf(op, "invalid mode %s", mode)
	}
	switch {
	case dim == b.kind.dimension():
		if !b.kind.supports(mode) {
			return stateErrorf(op, "mode %s is not supported by %s builders", mode, b.kind)
		}
		return nil
	case dim == 1 && b.kind != Line, dim == 2 && b.kind == Part:
		return nil
	case dim == 0:
		return stateErrorf(op, "cannot add an empty shape")
	}
	return stateErrorf(op, "a %s builder cannot hold %d-dimensional shapes", b.kind, dim)
}

// staged is a shape waiting to be integrated, with its history node.
type staged struct {
	shape kernel.Shape
	node  graph.NodeID
}

// integrate merges items into the builder as one generation. Shapes of the
// builder's own dimension combine into the working shape; curves and faces
// below it become pending edges and faces. Nothing is changed unless every
// item succeeds.
func (b *Builder) integrate(op string, items []staged, mode algebra.Mode) error {
	k := b.kernel()
	working := b.working
	var (
		steps   []kernel.Shape
		edges   []kernel.Edge
		faces   []kernel.Face
		sources []graph.NodeID
	)
	for _, it := range items {
		dim := kernel.Dimension(it.shape)
		if err := b.accepts(op, dim, mode); err != nil {
			return err
		}
		switch {
		case dim == b.kind.dimension():
			w, err := algebra.Combine(k, working, it.shape, mode)
			if err != nil {
				return err
			}
			working = w
			steps = append(steps, w)
		case mode != algebra.Private && dim == 1:
			edges = append(edges, it.shape.Edges()...)
			sources = append(sources, it.node)
		case mode != algebra.Private && dim == 2:
			faces = append(faces, it.shape.Faces()...)
			sources = append(sources, it.node)
		}
	}

	if !b.manual {
		b.pending.BeginGeneration()
	}
	h := b.history()
	si := 0
	for _, it := range items {
		b.pending.Record(it.shape, mode)
		if kernel.Dimension(it.shape) != b.kind.dimension() {
			continue
		}
		if mode != algebra.Private {
			b.node = h.Record(graph.NodeCombine, steps[si].ID(),
				graph.CombineData{Builder: b.kind.String(), Mode: mode.String()}, b.node, it.node)
		}
		si++
	}
	b.working = working
	b.edges = append(b.edges, edges...)
	b.faces = append(b.faces, faces...)
	b.sources = append(b.sources, sources...)
	b.log.Debug(op, "mode", mode.String(), "generation", b.pending.Generation(), "elements", len(items))
	return nil
}

// Add validates d, realizes it with the kernel and merges it under mode.
// An invalid descriptor fails before the kernel is called.
func (b *Builder) Add(d primitive.Descriptor, mode algebra.Mode) (kernel.Shape, error) {
	if err := b.check("add"); err != nil {
		return nil, err
	}
	if err := primitive.Validate(d); err != nil {
		return nil, err
	}
	if err := b.accepts("add", d.Kind().Dimension(), mode); err != nil {
		return nil, err
	}
	s, err := b.kernel().Construct(d)
	if err != nil {
		b.log.Debug("construct failed", "kind", d.Kind().String(), "err", err)
		return nil, err
	}
	node := b.history().Record(graph.NodeElement, s.ID(), graph.ElementData{
		Builder:    b.kind.String(),
		Primitive:  d.Kind().String(),
		Descriptor: primitive.Describe(d),
		Generation: b.nextGeneration(),
	})
	if err := b.integrate("add", []staged{{shape: s, node: node}}, mode); err != nil {
		return nil, err
	}
	return s, nil
}

// AddShape merges an already realized shape under mode.
func (b *Builder) AddShape(s kernel.Shape, mode algebra.Mode) error {
	if err := b.check("add_shape"); err != nil {
		return err
	}
	if s == nil {
		return stateErrorf("add_shape", "nil shape")
	}
	node := b.history().Record(graph.NodeShape, s.ID(), graph.ShapeData{
		Builder:    b.kind.String(),
		ShapeKind:  s.Kind().String(),
		Generation: b.nextGeneration(),
	})
	return b.integrate("add_shape", []staged{{shape: s, node: node}}, mode)
}

// nextGeneration is the generation the next integrated item will carry.
func (b *Builder) nextGeneration() int {
	if b.manual {
		return b.pending.Generation()
	}
	return b.pending.Generation() + 1
}

// BeginGeneration starts a new generation and switches the builder to
// explicit stepping: later adds join this generation until the next call.
func (b *Builder) BeginGeneration() (int, error) {
	if err := b.check("begin_generation"); err != nil {
		return 0, err
	}
	b.manual = true
	return b.pending.BeginGeneration(), nil
}

// Batch runs fn with every add inside it recorded as one generation.
func (b *Builder) Batch(fn func() error) error {
	if err := b.check("batch"); err != nil {
		return err
	}
	prev := b.manual
	b.manual = true
	b.pending.BeginGeneration()
	defer func() { b.manual = prev }()
	return fn()
}

// Elements returns the recorded elements in scope.
func (b *Builder) Elements(scope Scope) ([]Element, error) {
	return b.pending.Select(scope)
}

// Edges returns the edges of the elements in scope, in order.
func (b *Builder) Edges(scope Scope) ([]kernel.Edge, error) {
	elems, err := b.pending.Select(scope)
	if err != nil {
		return nil, err
	}
	var out []kernel.Edge
	for _, e := range elems {
		out = append(out, e.Shape.Edges()...)
	}
	return out, nil
}

// Vertices returns each element's vertices in order. Vertices shared by
// neighbouring elements appear once per element.
func (b *Builder) Vertices(scope Scope) ([]v3.Vec, error) {
	elems, err := b.pending.Select(scope)
	if err != nil {
		return nil, err
	}
	var out []v3.Vec
	for _, e := range elems {
		out = append(out, e.Shape.Vertices()...)
	}
	return out, nil
}

// Faces returns the faces of the elements in scope, in order.
func (b *Builder) Faces(scope Scope) ([]kernel.Face, error) {
	elems, err := b.pending.Select(scope)
	if err != nil {
		return nil, err
	}
	var out []kernel.Face
	for _, e := range elems {
		out = append(out, e.Shape.Faces()...)
	}
	return out, nil
}

// Solids returns the solids of the elements in scope, in order.
func (b *Builder) Solids(scope Scope) ([]kernel.Solid, error) {
	elems, err := b.pending.Select(scope)
	if err != nil {
		return nil, err
	}
	var out []kernel.Solid
	for _, e := range elems {
		out = append(out, e.Shape.Solids()...)
	}
	return out, nil
}

// Shape returns the working shape in builder coordinates. Before anything
// has been combined it is an empty compound.
func (b *Builder) Shape() kernel.Shape {
	if b.working == nil {
		return b.kernel().Compound()
	}
	return b.working
}

// Wire chains a line builder's working edges into a wire.
func (b *Builder) Wire() (kernel.Wire, error) {
	if b.kind != Line {
		return nil, stateErrorf("wire", "%s builders have no wire", b.kind)
	}
	var edges []kernel.Edge
	if b.working != nil {
		edges = b.working.Edges()
	}
	return b.kernel().MakeWire(edges)
}

// PendingEdges returns the edges waiting for MakeFace or MakeHull.
func (b *Builder) PendingEdges() []kernel.Edge { return append([]kernel.Edge(nil), b.edges...) }

// PendingFaces returns the faces waiting for Extrude.
func (b *Builder) PendingFaces() []kernel.Face { return append([]kernel.Face(nil), b.faces...) }

// Result returns the finalized shape, in the parent's coordinates, once the
// builder has exited.
func (b *Builder) Result() (kernel.Shape, error) {
	if b.result == nil {
		return nil, stateErrorf("result", "%s builder has not exited", b.kind)
	}
	return b.result, nil
}

// finalize freezes the working shape into the builder's result and maps it
// into the parent's coordinates.
func (b *Builder) finalize() (kernel.Shape, error) {
	k := b.kernel()
	var local kernel.Shape
	switch b.kind {
	case Line:
		var edges []kernel.Edge
		if b.working != nil {
			edges = b.working.Edges()
		}
		w, err := k.MakeWire(edges)
		switch {
		case err == nil:
			local = w
		case errors.Is(err, kernel.ErrGeometry):
			// Edges that do not form a single chain stay loose.
			shapes := make([]kernel.Shape, len(edges))
			for i, e := range edges {
				shapes[i] = e
			}
			local = k.Compound(shapes...)
		default:
			return nil, err
		}
	default:
		if kernel.IsEmpty(b.working) {
			local = k.Compound()
		} else {
			local = b.working
		}
	}

	out, err := b.toParent(local)
	if err != nil {
		return nil, err
	}
	h := b.history()
	b.node = h.Record(graph.NodeResult, out.ID(), graph.ResultData{Builder: b.kind.String(), Plane: b.plane.String()}, b.node)
	if b.name != "" {
		if err := h.Name(b.node, b.name); err != nil {
			b.log.Warn("cannot name result", "name", b.name, "err", err)
		}
	}
	return out, nil
}

func (b *Builder) toParent(s kernel.Shape) (kernel.Shape, error) {
	if b.plane == geom.XY {
		return s, nil
	}
	return b.kernel().Transform(s, b.plane.Location())
}

func (b *Builder) fromParent(s kernel.Shape) (kernel.Shape, error) {
	if b.plane == geom.XY {
		return s, nil
	}
	return b.kernel().Transform(s, b.plane.Location().Inverse())
}

// fold receives a child's result. Same-kind children combine into the
// working shape under the child's mode; lines become pending edges and
// sketches pending faces.
func (b *Builder) fold(c *Builder, result kernel.Shape) error {
	as := "working"
	switch {
	case c.kind == Line && b.kind != Line:
		as = "pending-edges"
	case c.kind == Sketch && b.kind == Part:
		as = "pending-faces"
	}
	node := b.history().Record(graph.NodeFold, result.ID(), graph.FoldData{
		Child:  c.kind.String(),
		Parent: b.kind.String(),
		Mode:   c.mode.String(),
		As:     as,
	}, c.node)

	if kernel.IsEmpty(result) {
		if !b.manual {
			b.pending.BeginGeneration()
		}
		b.pending.Record(result, c.mode)
		return nil
	}
	if err := b.integrate("fold", []staged{{shape: result, node: node}}, c.mode); err != nil {
		return err
	}
	return nil
}

// seedFromParent moves the parent's pending edges and faces into b.
func (b *Builder) seedFromParent() error {
	p := b.parent
	if p == nil {
		return stateErrorf("enter", "no parent builder to seed from")
	}
	if len(p.edges) == 0 && (len(p.faces) == 0 || b.kind == Line) {
		return nil
	}
	k := b.kernel()
	var items []staged
	node := b.history().Record(graph.NodeOperation, 0, graph.OperationData{Builder: b.kind.String(), Op: "seed"}, p.sources...)
	if len(p.edges) > 0 {
		shapes := make([]kernel.Shape, len(p.edges))
		for i, e := range p.edges {
			shapes[i] = e
		}
		items = append(items, staged{shape: k.Compound(shapes...), node: node})
	}
	if len(p.faces) > 0 && b.kind != Line {
		shapes := make([]kernel.Shape, len(p.faces))
		for i, f := range p.faces {
			shapes[i] = f
		}
		items = append(items, staged{shape: k.Compound(shapes...), node: node})
	}
	for i := range items {
		local, err := b.fromParent(items[i].shape)
		if err != nil {
			return err
		}
		items[i].shape = local
	}
	if err := b.integrate("seed", items, algebra.Add); err != nil {
		return err
	}
	p.edges = nil
	if b.kind != Line {
		p.faces = nil
	}
	p.sources = nil
	return nil
}
