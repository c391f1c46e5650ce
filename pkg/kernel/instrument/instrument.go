// Package instrument wraps a kernel.Kernel with Prometheus metrics. Every
// call is counted by operation and outcome and timed.
package instrument

import (
	"time"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/primitive"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Outcome labels.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Kernel forwards to an inner kernel and records metrics.
type Kernel struct {
	inner    kernel.Kernel
	calls    *prom.CounterVec
	duration *prom.HistogramVec
}

// New registers the kernel metrics with reg and returns the wrapper. A nil
// registry gets a private one.
func New(inner kernel.Kernel, reg prom.Registerer) *Kernel {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	k := &Kernel{
		inner: inner,
		calls: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contour",
			Subsystem: "kernel",
			Name:      "calls_total",
			Help:      "Kernel calls by operation and outcome",
		}, []string{"op", "result"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "contour",
			Subsystem: "kernel",
			Name:      "call_duration_seconds",
			Help:      "Duration of kernel calls by operation",
			Buckets:   prom.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"op"}),
	}
	reg.MustRegister(k.calls, k.duration)
	return k
}

// Calls returns the counter vector, labelled by op and result.
func (k *Kernel) Calls() *prom.CounterVec { return k.calls }

func (k *Kernel) observe(op string, start time.Time, err error) {
	k.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	res := ResultSuccess
	if err != nil {
		res = ResultFailed
	}
	k.calls.WithLabelValues(op, res).Inc()
}

func (k *Kernel) Construct(d primitive.Descriptor) (kernel.Shape, error) {
	start := time.Now()
	s, err := k.inner.Construct(d)
	k.observe("construct", start, err)
	return s, err
}

func (k *Kernel) MakeWire(edges []kernel.Edge) (kernel.Wire, error) {
	start := time.Now()
	w, err := k.inner.MakeWire(edges)
	k.observe("make_wire", start, err)
	return w, err
}

func (k *Kernel) MakeFace(edges []kernel.Edge) (kernel.Shape, error) {
	start := time.Now()
	s, err := k.inner.MakeFace(edges)
	k.observe("make_face", start, err)
	return s, err
}

func (k *Kernel) MakeHull(edges []kernel.Edge) (kernel.Face, error) {
	start := time.Now()
	f, err := k.inner.MakeHull(edges)
	k.observe("make_hull", start, err)
	return f, err
}

func (k *Kernel) Extrude(f kernel.Face, amount float64) (kernel.Solid, error) {
	start := time.Now()
	s, err := k.inner.Extrude(f, amount)
	k.observe("extrude", start, err)
	return s, err
}

func (k *Kernel) Compound(shapes ...kernel.Shape) kernel.Shape {
	start := time.Now()
	s := k.inner.Compound(shapes...)
	k.observe("compound", start, nil)
	return s
}

func (k *Kernel) Boolean(op kernel.BooleanOp, a, b kernel.Shape) (kernel.Shape, error) {
	start := time.Now()
	s, err := k.inner.Boolean(op, a, b)
	k.observe(op.String(), start, err)
	return s, err
}

func (k *Kernel) Transform(s kernel.Shape, loc geom.Location) (kernel.Shape, error) {
	start := time.Now()
	out, err := k.inner.Transform(s, loc)
	k.observe("transform", start, err)
	return out, err
}

func (k *Kernel) Mirror(s kernel.Shape, about geom.Plane) (kernel.Shape, error) {
	start := time.Now()
	out, err := k.inner.Mirror(s, about)
	k.observe("mirror", start, err)
	return out, err
}

func (k *Kernel) Measure(s kernel.Shape, m kernel.Metric) (float64, error) {
	start := time.Now()
	v, err := k.inner.Measure(s, m)
	k.observe("measure_"+m.String(), start, err)
	return v, err
}

func (k *Kernel) ToMesh(s kernel.Shape) (*kernel.Mesh, error) {
	start := time.Now()
	m, err := k.inner.ToMesh(s)
	k.observe("mesh", start, err)
	return m, err
}
