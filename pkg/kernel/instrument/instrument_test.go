package instrument

import (
	"testing"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/kernel/sdfx"
	"github.com/chazu/contour/pkg/primitive"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsCallsByOutcome(t *testing.T) {
	reg := prom.NewRegistry()
	k := New(sdfx.New(), reg)

	a, err := k.Construct(primitive.Box{Length: 1, Width: 1, Height: 1})
	require.NoError(t, err)
	b, err := k.Construct(primitive.Box{Length: 1, Width: 1, Height: 1})
	require.NoError(t, err)
	far, err := k.Transform(b, geom.Pos(10, 0, 0))
	require.NoError(t, err)

	_, err = k.Boolean(kernel.Difference, a, far)
	require.Error(t, err)
	_, err = k.Measure(a, kernel.Volume)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(k.Calls().WithLabelValues("construct", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(k.Calls().WithLabelValues("transform", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(k.Calls().WithLabelValues("difference", ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(k.Calls().WithLabelValues("measure_volume", ResultSuccess)))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 2)
}

func TestNilRegistry(t *testing.T) {
	k := New(sdfx.New(), nil)
	_, err := k.Construct(primitive.Circle{Radius: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(k.Calls().WithLabelValues("construct", ResultSuccess)))
}
