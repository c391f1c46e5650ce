package algebra

import (
	"errors"
	"testing"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/kernel/sdfx"
	"github.com/chazu/contour/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func mustConstruct(t *testing.T, k kernel.Kernel, d primitive.Descriptor) kernel.Shape {
	t.Helper()
	s, err := k.Construct(d)
	require.NoError(t, err)
	return s
}

func volume(t *testing.T, k kernel.Kernel, s kernel.Shape) float64 {
	t.Helper()
	v, err := k.Measure(s, kernel.Volume)
	require.NoError(t, err)
	return v
}

func TestCombineSeedsEmptyWorkingShape(t *testing.T) {
	k := sdfx.New()
	box := mustConstruct(t, k, primitive.Box{Length: 1, Width: 1, Height: 1})

	got, err := Combine(k, nil, box, Add)
	require.NoError(t, err)
	assert.Same(t, box, got)

	got, err = Combine(k, k.Compound(), box, Add)
	require.NoError(t, err)
	assert.Same(t, box, got)
}

func TestCombineOnEmptyFails(t *testing.T) {
	k := sdfx.New()
	box := mustConstruct(t, k, primitive.Box{Length: 1, Width: 1, Height: 1})
	for _, m := range []Mode{Subtract, Intersect} {
		_, err := Combine(k, nil, box, m)
		assert.True(t, errors.Is(err, kernel.ErrGeometry), "%s on empty: err = %v", m, err)
	}
}

func TestCombineReplaceAndPrivate(t *testing.T) {
	k := sdfx.New()
	a := mustConstruct(t, k, primitive.Box{Length: 1, Width: 1, Height: 1})
	b := mustConstruct(t, k, primitive.Cylinder{Radius: 1, Height: 1})

	got, err := Combine(k, a, b, Replace)
	require.NoError(t, err)
	assert.Same(t, b, got)

	got, err = Combine(k, a, b, Private)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = Combine(k, a, b, Mode(42))
	assert.Error(t, err)
}

func TestDifference(t *testing.T) {
	k := sdfx.New(sdfx.WithSampleResolution(64))
	base := mustConstruct(t, k, primitive.Box{Length: 10, Width: 10, Height: 10})
	tool := mustConstruct(t, k, primitive.Box{Length: 4, Width: 4, Height: 20})

	cut, err := Difference(k, base, tool)
	require.NoError(t, err)
	assert.Less(t, volume(t, k, cut), volume(t, k, base))
	assert.InEpsilon(t, 1000-160, volume(t, k, cut), 0.03)

	far, err := Moved(k, tool, geom.Pos(50, 0, 0))
	require.NoError(t, err)
	_, err = Difference(k, base, far)
	var gerr *kernel.GeometryError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "difference", gerr.Op)
}

func TestUnionAndCommon(t *testing.T) {
	k := sdfx.New(sdfx.WithSampleResolution(64))
	a := mustConstruct(t, k, primitive.Box{Length: 2, Width: 2, Height: 2})
	b, err := Moved(k, mustConstruct(t, k, primitive.Box{Length: 2, Width: 2, Height: 2}), geom.Pos(1, 0, 0))
	require.NoError(t, err)

	u, err := Union(k, a, b)
	require.NoError(t, err)
	assert.InEpsilon(t, 12, volume(t, k, u), 0.03)

	i, err := Common(k, a, b)
	require.NoError(t, err)
	assert.InEpsilon(t, 4, volume(t, k, i), 0.03)

	empty, err := Union(k)
	require.NoError(t, err)
	assert.True(t, kernel.IsEmpty(empty))
}

func TestComposeOrderLaw(t *testing.T) {
	k := sdfx.New()
	s := mustConstruct(t, k, primitive.Polyline{Points: primitive.Pts(geom.V(1, 0), geom.V(2, 1), geom.V(0, 3))})
	a := geom.Compose(geom.Rot(0, 0, 90), geom.Pos(0, 0, 1))
	b := geom.Compose(geom.Pos(3, -1, 0), geom.Rot(30, 0, 0))

	inner, err := Moved(k, s, b)
	require.NoError(t, err)
	seq, err := Moved(k, inner, a)
	require.NoError(t, err)
	once, err := Moved(k, s, Compose(a, b))
	require.NoError(t, err)

	if diff := cmp.Diff(seq.Vertices(), once.Vertices(), approx); diff != "" {
		t.Errorf("sequential and composed placement differ (-seq +composed):\n%s", diff)
	}
	// The operand is untouched.
	if diff := cmp.Diff([]v3.Vec{geom.V(1, 0), geom.V(2, 1), geom.V(0, 3)}, s.Vertices(), approx); diff != "" {
		t.Errorf("operand moved (-want +got):\n%s", diff)
	}
}

func TestLocations(t *testing.T) {
	k := sdfx.New()
	disc := mustConstruct(t, k, primitive.Circle{Radius: 1})
	grid, err := Locations(k, disc, geom.Pos(-5, 0, 0), geom.Pos(5, 0, 0), geom.Pos(0, 5, 0))
	require.NoError(t, err)
	assert.Len(t, grid.Faces(), 3)
}

func TestFrameOnFace(t *testing.T) {
	k := sdfx.New()
	sq := mustConstruct(t, k, primitive.Rectangle{Width: 2, Height: 2})
	up, err := Moved(k, sq, geom.Compose(geom.Pos(0, 0, 5), geom.Rot(90, 0, 0)))
	require.NoError(t, err)
	f := up.Faces()[0]

	p := FrameOn(f, geom.Identity())
	if diff := cmp.Diff(f.Plane(), p, approx); diff != "" {
		t.Errorf("identity frame differs from face plane (-face +frame):\n%s", diff)
	}

	lifted := FrameOn(f, geom.Pos(0, 0, 2))
	want := f.Plane().Origin.Add(f.Plane().ZDir.MulScalar(2))
	if diff := cmp.Diff(want, lifted.Origin, approx); diff != "" {
		t.Errorf("lifted origin (-want +got):\n%s", diff)
	}

	disc := mustConstruct(t, k, primitive.Circle{Radius: 0.5})
	placed, err := OnFace(k, disc, f, geom.Identity())
	require.NoError(t, err)
	if diff := cmp.Diff(f.Plane().ZDir, placed.Faces()[0].Plane().ZDir, approx); diff != "" {
		t.Errorf("profile normal (-want +got):\n%s", diff)
	}
}

func TestOnPlane(t *testing.T) {
	k := sdfx.New()
	disc := mustConstruct(t, k, primitive.Circle{Radius: 1})
	placed, err := OnPlane(k, disc, geom.YZ)
	require.NoError(t, err)
	if diff := cmp.Diff(geom.UnitX, placed.Faces()[0].Plane().ZDir, approx); diff != "" {
		t.Errorf("normal (-want +got):\n%s", diff)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Add, Subtract, Intersect, Replace, Private} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseMode(" SUBTRACT ")
	require.NoError(t, err)
	assert.Equal(t, Subtract, got)

	_, err = ParseMode("xor")
	assert.Error(t, err)
	assert.False(t, Mode(0).Valid())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}
