package sdfx

import (
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform returns a relocated copy of s.
func (k *Kernel) Transform(s kernel.Shape, loc geom.Location) (kernel.Shape, error) {
	return k.remap("transform", s, loc.Matrix(), false)
}

// Mirror reflects s through a plane. Faces keep their local coordinates
// and reverse their normals.
func (k *Kernel) Mirror(s kernel.Shape, about geom.Plane) (kernel.Shape, error) {
	return k.remap("mirror", s, mirrorMatrix(about), true)
}

// mirrorMatrix reflects through p: into p's frame, flip Z, back out.
func mirrorMatrix(p geom.Plane) sdf.M44 {
	l := p.Location().Matrix()
	return l.Mul(sdf.Scale3d(v3.Vec{X: 1, Y: 1, Z: -1})).Mul(l.Inverse())
}

func (k *Kernel) remap(op string, s kernel.Shape, m sdf.M44, reflect bool) (kernel.Shape, error) {
	switch v := s.(type) {
	case nil:
		return nil, kernel.Errorf(op, "nil shape")
	case *edge:
		return k.mapEdge(v, m), nil
	case *wire:
		return k.mapWire(v, m), nil
	case *face:
		return k.mapFace(v, m, reflect), nil
	case *solid:
		return k.mapSolid(v, m, reflect), nil
	case *compound:
		out := make([]kernel.Shape, len(v.shapes))
		for i, c := range v.shapes {
			r, err := k.remap(op, c, m, reflect)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return &compound{id: k.nextID(), shapes: out}, nil
	}
	return nil, kernel.Errorf(op, "shape %T was not made by this kernel", s)
}

func (k *Kernel) mapEdge(e *edge, m sdf.M44) *edge {
	return &edge{id: k.nextID(), c: mapped{c: e.c, m: m}}
}

func (k *Kernel) mapWire(w *wire, m sdf.M44) *wire {
	out := &wire{id: k.nextID(), edges: make([]*edge, len(w.edges))}
	for i, e := range w.edges {
		out.edges[i] = k.mapEdge(e, m)
	}
	return out
}

func mapDir(m sdf.M44, d v3.Vec) v3.Vec {
	return m.MulPosition(d).Sub(m.MulPosition(geom.Origin))
}

// mapPlane carries a frame through m. A reflection would make the frame
// left-handed, so the normal is reversed to keep local X and Y meaning
// the same points.
func mapPlane(p geom.Plane, m sdf.M44, reflect bool) geom.Plane {
	z := mapDir(m, p.ZDir).Normalize()
	if reflect {
		z = z.Neg()
	}
	return geom.Plane{Origin: m.MulPosition(p.Origin), XDir: mapDir(m, p.XDir).Normalize(), ZDir: z}
}

func (k *Kernel) mapFace(f *face, m sdf.M44, reflect bool) *face {
	out := *f
	out.id = k.nextID()
	out.plane = mapPlane(f.plane, m, reflect)
	out.loops = make([]*wire, len(f.loops))
	for i, w := range f.loops {
		out.loops[i] = k.mapWire(w, m)
	}
	if len(f.loops) > 0 {
		out.edges = nil
		for _, w := range out.loops {
			out.edges = append(out.edges, w.edges...)
		}
	} else {
		out.edges = make([]*edge, len(f.edges))
		for i, e := range f.edges {
			out.edges[i] = k.mapEdge(e, m)
		}
	}
	return &out
}

func (k *Kernel) mapSolid(s *solid, m sdf.M44, reflect bool) *solid {
	out := &solid{
		id:     k.nextID(),
		s:      sdf.Transform3D(s.s, m),
		box:    s.box.mapped(m),
		volume: s.volume,
		exact:  s.exact,
		cut:    s.cut,
	}
	for _, f := range s.faces {
		out.faces = append(out.faces, k.mapFace(f, m, reflect))
	}
	for _, e := range s.edges {
		out.edges = append(out.edges, k.mapEdge(e, m))
	}
	return out
}
