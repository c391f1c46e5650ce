package joint

import (
	"errors"
	"testing"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel/sdfx"
	"github.com/chazu/contour/pkg/primitive"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func assertPoint(t *testing.T, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("point mismatch (-want +got):\n%s", diff)
	}
}

func TestRigidConnectAlignsFrames(t *testing.T) {
	base := NewBody("base", nil)
	lid := NewBody("lid", nil)
	top, err := NewRigid("top", base, geom.Pos(0, 0, 5).Mul(geom.Rot(0, 0, 30)))
	require.NoError(t, err)
	under, err := NewRigid("under", lid, geom.Pos(1, 2, 0))
	require.NoError(t, err)

	require.NoError(t, top.ConnectTo(under))
	assert.True(t, under.Location().Equal(top.Location(), 1e-9),
		"connected frames differ: %s vs %s", under.Location(), top.Location())
}

func TestConnectFollowsParentLocation(t *testing.T) {
	base := NewBody("base", nil)
	base.Location = geom.Pos(10, 0, 0)
	arm := NewBody("arm", nil)
	j, err := NewRigid("mount", base, geom.Pos(10, 0, 1))
	require.NoError(t, err)
	o, err := NewRigid("foot", arm, geom.Identity())
	require.NoError(t, err)

	require.NoError(t, j.ConnectTo(o))
	assertPoint(t, geom.V(10, 0, 1), arm.Location.Position())
}

func TestRevoluteHinge(t *testing.T) {
	frame := NewBody("frame", nil)
	door := NewBody("door", nil)
	hinge, err := NewRevolute("hinge", frame, geom.AxisZ, AngleReference(geom.UnitX))
	require.NoError(t, err)
	edge, err := NewRigid("edge", door, geom.Identity())
	require.NoError(t, err)

	tests := []struct {
		angle float64
		want  [3]float64
	}{
		{0, [3]float64{1, 0, 0}},
		{90, [3]float64{0, 1, 0}},
		{180, [3]float64{-1, 0, 0}},
	}
	for _, tt := range tests {
		require.NoError(t, hinge.ConnectTo(edge, Angle(tt.angle)))
		p := door.Location.Point(geom.V(1, 0))
		assertPoint(t, tt.want, [3]float64{p.X, p.Y, p.Z})
		assert.Equal(t, tt.angle, hinge.Angle)
	}
}

func TestRevoluteRange(t *testing.T) {
	frame := NewBody("frame", nil)
	door := NewBody("door", nil)
	hinge, err := NewRevolute("hinge", frame, geom.AxisZ, AngularRange(-45, 45))
	require.NoError(t, err)
	edge, err := NewRigid("edge", door, geom.Identity())
	require.NoError(t, err)

	err = hinge.ConnectTo(edge, Angle(90))
	require.Error(t, err)
	assert.True(t, errors.Is(err, primitive.ErrInvalid))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "hinge", ve.Joint)

	require.NoError(t, hinge.ConnectTo(edge))
	assert.Equal(t, -45.0, hinge.Angle, "angle defaults to the bottom of the range")
}

func TestLinearSlide(t *testing.T) {
	rail := NewBody("rail", nil)
	cart := NewBody("cart", nil)
	slide, err := NewLinear("slide", rail, geom.AxisX, &Range{Min: 0, Max: 10})
	require.NoError(t, err)
	wheel, err := NewRigid("wheel", cart, geom.Identity())
	require.NoError(t, err)

	require.NoError(t, slide.ConnectTo(wheel, Position(3)))
	assertPoint(t, geom.V(3, 0, 0), cart.Location.Position())

	err = slide.ConnectTo(wheel, Position(11))
	assert.ErrorIs(t, err, primitive.ErrInvalid)
	assert.Equal(t, 3.0, slide.Position, "a rejected connection keeps the last position")
}

func TestLinearDefaultRangeRejectsNegative(t *testing.T) {
	rail := NewBody("rail", nil)
	cart := NewBody("cart", nil)
	slide, err := NewLinear("slide", rail, geom.AxisZ, nil)
	require.NoError(t, err)
	wheel, err := NewRigid("wheel", cart, geom.Identity())
	require.NoError(t, err)

	assert.ErrorIs(t, slide.ConnectTo(wheel, Position(-1)), primitive.ErrInvalid)
	require.NoError(t, slide.ConnectTo(wheel, Position(1e6)))
}

func TestJointConstructionErrors(t *testing.T) {
	b := NewBody("b", nil)
	_, err := NewRigid("a", b, geom.Identity())
	require.NoError(t, err)

	_, err = NewRigid("a", b, geom.Identity())
	assert.ErrorIs(t, err, ErrDuplicateLabel)

	_, err = NewRevolute("tilted", b, geom.AxisZ, AngleReference(geom.V(1, 0, 1)))
	assert.ErrorIs(t, err, primitive.ErrInvalid)

	_, err = NewRevolute("empty", b, geom.AxisZ, AngularRange(10, 0))
	assert.ErrorIs(t, err, primitive.ErrInvalid)

	_, err = NewRigid("orphan", nil, geom.Identity())
	assert.ErrorIs(t, err, primitive.ErrInvalid)
}

func TestPlacedMovesShape(t *testing.T) {
	k := sdfx.New()
	box, err := k.Construct(primitive.Box{Length: 2, Width: 2, Height: 2})
	require.NoError(t, err)

	base := NewBody("base", nil)
	block := NewBody("block", box)
	top, err := NewRigid("top", base, geom.Pos(0, 0, 10))
	require.NoError(t, err)
	bottom, err := NewRigid("bottom", block, geom.Pos(0, 0, -1))
	require.NoError(t, err)
	require.NoError(t, top.ConnectTo(bottom))

	placed, err := block.Placed(k)
	require.NoError(t, err)
	min, max := placed.BoundingBox()
	assert.InDelta(t, 10.0, min[2], 1e-9)
	assert.InDelta(t, 12.0, max[2], 1e-9)
}
