package sdfx

import (
	"math"

	"github.com/chazu/contour/pkg/kernel"
)

// Measure returns the length of curves, the area of faces or the volume
// of solids. Exact values come from the construction; boolean results are
// sampled once and cached by shape identity. A difference is measured as
// its base less the sampled overlap with the tool.
func (k *Kernel) Measure(s kernel.Shape, m kernel.Metric) (float64, error) {
	if s == nil {
		return 0, kernel.Errorf(m.String(), "nil shape")
	}
	switch m {
	case kernel.Length:
		if kernel.Dimension(s) > 1 {
			return 0, kernel.Errorf("length", "%s is not a curve", s.Kind())
		}
		es, err := k.ownEdges("length", s.Edges())
		if err != nil {
			return 0, err
		}
		var sum float64
		for _, e := range es {
			sum += e.c.length()
		}
		return sum, nil

	case kernel.Area:
		if kernel.Dimension(s) == 3 {
			return 0, kernel.Errorf("area", "surface area of solids is not supported")
		}
		faces := s.Faces()
		if len(faces) == 0 {
			return 0, kernel.Errorf("area", "%s has no faces", s.Kind())
		}
		fs, err := ownFaces("area", faces)
		if err != nil {
			return 0, err
		}
		var sum float64
		for _, f := range fs {
			sum += k.faceArea(f)
		}
		return sum, nil

	case kernel.Volume:
		solids := s.Solids()
		if len(solids) == 0 {
			return 0, kernel.Errorf("volume", "%s has no solids", s.Kind())
		}
		ss, err := ownSolids("volume", solids)
		if err != nil {
			return 0, err
		}
		var sum float64
		for _, sv := range ss {
			sum += k.solidVolume(sv)
		}
		return sum, nil
	}
	return 0, kernel.Errorf(m.String(), "unknown metric")
}

func (k *Kernel) faceArea(f *face) float64 {
	if f.exact {
		return f.area
	}
	return k.sampled(measureKey{id: f.id, metric: kernel.Area}, func() float64 {
		if c := f.cut; c != nil {
			var base float64
			for _, b := range c.base {
				base += k.faceArea(b)
			}
			return math.Max(base-sampleArea(c.removed, c.box, k.opts.samples), 0)
		}
		return sampleArea(f.region, f.local, k.opts.samples)
	})
}

func (k *Kernel) solidVolume(s *solid) float64 {
	if s.exact {
		return s.volume
	}
	return k.sampled(measureKey{id: s.id, metric: kernel.Volume}, func() float64 {
		if c := s.cut; c != nil {
			var base float64
			for _, b := range c.base {
				base += k.solidVolume(b)
			}
			return math.Max(base-sampleVolume(c.removed, c.box, k.opts.samples), 0)
		}
		return sampleVolume(s.s, s.box, k.opts.samples)
	})
}

func (k *Kernel) sampled(key measureKey, compute func() float64) float64 {
	if v, ok := k.cache.Get(key); ok {
		return v
	}
	v := compute()
	k.cache.Add(key, v)
	k.log.Debug("sampled measure", "id", key.id, "metric", key.metric.String(), "value", v)
	return v
}
