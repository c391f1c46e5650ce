package build

import (
	"github.com/chazu/contour/pkg/algebra"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/graph"
	"github.com/chazu/contour/pkg/kernel"
)

// MakeFace builds faces from the sketch's pending edges and combines them
// into the working shape under mode. The pending edges are consumed.
func (b *Builder) MakeFace(mode algebra.Mode) (kernel.Shape, error) {
	return b.fromEdges("make_face", mode, func(edges []kernel.Edge) (kernel.Shape, error) {
		return b.kernel().MakeFace(edges)
	})
}

// MakeHull builds the convex hull of the sketch's pending edges and
// combines it under mode. The pending edges are consumed.
func (b *Builder) MakeHull(mode algebra.Mode) (kernel.Shape, error) {
	return b.fromEdges("make_hull", mode, func(edges []kernel.Edge) (kernel.Shape, error) {
		return b.kernel().MakeHull(edges)
	})
}

func (b *Builder) fromEdges(op string, mode algebra.Mode, fn func([]kernel.Edge) (kernel.Shape, error)) (kernel.Shape, error) {
	if err := b.check(op); err != nil {
		return nil, err
	}
	if b.kind != Sketch {
		return nil, stateErrorf(op, "only sketch builders can %s, not %s", op, b.kind)
	}
	if err := b.accepts(op, 2, mode); err != nil {
		return nil, err
	}
	if len(b.edges) == 0 {
		return nil, stateErrorf(op, "no pending edges")
	}
	s, err := fn(b.edges)
	if err != nil {
		return nil, err
	}
	node := b.history().Record(graph.NodeOperation, s.ID(), graph.OperationData{Builder: b.kind.String(), Op: op}, b.sources...)
	if err := b.commit(op, s, node, mode); err != nil {
		return nil, err
	}
	b.edges, b.sources = nil, nil
	return s, nil
}

// Extrude sweeps every pending face by amount along its normal and combines
// the solids under mode. A negative amount extrudes against the normal. The
// pending faces are consumed.
func (b *Builder) Extrude(amount float64, mode algebra.Mode) (kernel.Shape, error) {
	const op = "extrude"
	if err := b.check(op); err != nil {
		return nil, err
	}
	if b.kind != Part {
		return nil, stateErrorf(op, "only part builders can extrude, not %s", b.kind)
	}
	if err := b.accepts(op, 3, mode); err != nil {
		return nil, err
	}
	if len(b.faces) == 0 {
		return nil, stateErrorf(op, "no pending faces")
	}
	k := b.kernel()
	solids := make([]kernel.Shape, 0, len(b.faces))
	for _, f := range b.faces {
		s, err := k.Extrude(f, amount)
		if err != nil {
			return nil, err
		}
		solids = append(solids, s)
	}
	s, err := algebra.Union(k, solids...)
	if err != nil {
		return nil, err
	}
	node := b.history().Record(graph.NodeOperation, s.ID(), graph.OperationData{
		Builder: b.kind.String(),
		Op:      op,
		Params:  map[string]float64{"amount": amount},
	}, b.sources...)
	if err := b.commit(op, s, node, mode); err != nil {
		return nil, err
	}
	b.faces, b.sources = nil, nil
	return s, nil
}

// Mirror reflects shapes about a plane in builder coordinates and adds the
// copies under mode as one generation. With no shapes, a line mirrors the
// edges of its working shape and sketches and parts mirror the working
// shape itself. Private and replaced elements are not mirrored.
func (b *Builder) Mirror(shapes []kernel.Shape, about geom.Plane, mode algebra.Mode) ([]kernel.Shape, error) {
	const op = "mirror"
	if err := b.check(op); err != nil {
		return nil, err
	}
	if len(shapes) == 0 {
		switch {
		case kernel.IsEmpty(b.working):
		case b.kind == Line:
			for _, e := range b.working.Edges() {
				shapes = append(shapes, e)
			}
		default:
			shapes = []kernel.Shape{b.working}
		}
	}
	if len(shapes) == 0 {
		return nil, stateErrorf(op, "nothing to mirror")
	}
	k := b.kernel()
	h := b.history()
	items := make([]staged, 0, len(shapes))
	out := make([]kernel.Shape, 0, len(shapes))
	for _, s := range shapes {
		if err := b.accepts(op, kernel.Dimension(s), mode); err != nil {
			return nil, err
		}
		m, err := k.Mirror(s, about)
		if err != nil {
			return nil, err
		}
		var src []graph.NodeID
		if n, ok := h.Provenance(s.ID()); ok {
			src = append(src, n.ID)
		}
		node := h.Record(graph.NodeOperation, m.ID(), graph.OperationData{Builder: b.kind.String(), Op: op}, src...)
		items = append(items, staged{shape: m, node: node})
		out = append(out, m)
	}
	if err := b.integrate(op, items, mode); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Builder) commit(op string, s kernel.Shape, node graph.NodeID, mode algebra.Mode) error {
	return b.integrate(op, []staged{{shape: s, node: node}}, mode)
}
