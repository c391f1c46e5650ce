package geom

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func assertVec(t *testing.T, want, got v3.Vec) {
	t.Helper()
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("vector mismatch (-want +got):\n%s", diff)
	}
}

func TestPosAndRot(t *testing.T) {
	assertVec(t, V(11, 22, 33), Pos(10, 20, 30).Point(V(1, 2, 3)))
	assertVec(t, V(0, 1, 0), Rot(0, 0, 90).Point(V(1, 0, 0)))
	assertVec(t, V(0, 0, 1), Rot(90, 0, 0).Point(V(0, 1, 0)))
	assertVec(t, V(0, 0, -1), Rot(-90, 0, 0).Point(V(0, 1, 0)))
}

func TestComposeOrderLaw(t *testing.T) {
	a := Rot(10, 20, 30)
	b := Pos(5, -3, 2)
	c := RotAbout(Axis{Origin: V(1, 1, 0), Direction: V(0, 1, 1)}, 40)
	points := []v3.Vec{Origin, V(1, 2, 3), V(-4, 0.5, 7)}

	for _, p := range points {
		assertVec(t, a.Point(b.Point(p)), a.Mul(b).Point(p))
		assertVec(t, a.Mul(b).Mul(c).Point(p), a.Mul(b.Mul(c)).Point(p))
		assertVec(t, a.Mul(b.Mul(c)).Point(p), Compose(a, b, c).Point(p))
	}
	assert.False(t, a.Mul(b).Equal(b.Mul(a), 1e-6), "composition should not commute")
}

func TestInverse(t *testing.T) {
	l := Compose(Pos(1, 2, 3), Rot(15, 25, 35))
	p := V(7, -2, 4)
	assertVec(t, p, l.Inverse().Point(l.Point(p)))
	assert.True(t, l.Mul(l.Inverse()).Equal(Identity(), 1e-9))
}

func TestZeroLocationIsIdentity(t *testing.T) {
	var l Location
	assertVec(t, V(1, 2, 3), l.Point(V(1, 2, 3)))
	assert.True(t, l.Equal(Identity(), 1e-12))
}

func TestRotAboutAxis(t *testing.T) {
	l := RotAbout(Axis{Origin: V(1, 0, 0), Direction: UnitZ}, 180)
	assertVec(t, V(2, 0, 0), l.Point(Origin))
}

func TestPlaneLocation(t *testing.T) {
	tests := []struct {
		name  string
		plane Plane
	}{
		{"XY", XY},
		{"YZ", YZ},
		{"ZX", ZX},
		{"XZ", XZ},
		{"flipped", Plane{Origin: V(1, 2, 3), XDir: UnitX, ZDir: UnitZ.Neg()}},
		{"oblique", mustPlane(t, V(3, -1, 2), V(1, 1, 0), V(0, 1, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := tt.plane.Location()
			assertVec(t, tt.plane.Origin, loc.Position())
			assertVec(t, tt.plane.XDir, loc.XDir())
			assertVec(t, tt.plane.YDir(), loc.YDir())
			assertVec(t, tt.plane.ZDir, loc.ZDir())

			local := V(0.5, -2, 1.25)
			assertVec(t, tt.plane.FromLocal(local), loc.Point(local))
			assertVec(t, local, tt.plane.ToLocal(tt.plane.FromLocal(local)))
		})
	}
}

func TestNewPlaneErrors(t *testing.T) {
	_, err := NewPlane(Origin, UnitX, Origin)
	require.Error(t, err)
	_, err = NewPlane(Origin, UnitZ, UnitZ)
	require.Error(t, err)

	p, err := NewPlane(Origin, Origin, UnitZ)
	require.NoError(t, err)
	assert.InDelta(t, 0, p.XDir.Dot(p.ZDir), 1e-12)
}

func TestPlaneMovedMatchesLocation(t *testing.T) {
	l := Compose(Pos(0, 0, 5), Rot(0, 45, 0))
	p := XY.Moved(l)
	assertVec(t, l.Position(), p.Origin)
	assertVec(t, l.ZDir(), p.ZDir)
	assert.True(t, p.Location().Equal(l, 1e-9))
}

func TestReflect(t *testing.T) {
	assertVec(t, V(-1, 2, 3), YZ.Reflect(V(1, 2, 3)))
	assertVec(t, V(-1, 0, 0), YZ.ReflectDir(UnitX))
	off := YZ.Offset(2)
	assertVec(t, V(3, 0, 0), off.Reflect(V(1, 0, 0)))
}

func TestCoplanar(t *testing.T) {
	assert.True(t, XY.Coplanar(Plane{Origin: V(4, 5, 0), XDir: UnitY, ZDir: UnitZ.Neg()}, 1e-9))
	assert.False(t, XY.Coplanar(XY.Offset(1), 1e-9))
	assert.False(t, XY.Coplanar(YZ, 1e-9))
}

func TestPlaneNamed(t *testing.T) {
	p, err := PlaneNamed("yz")
	require.NoError(t, err)
	assert.Equal(t, YZ, p)
	_, err = PlaneNamed("diagonal")
	require.Error(t, err)
}

func TestPerpendicular(t *testing.T) {
	for _, d := range []v3.Vec{UnitX, UnitY, UnitZ, V(1, 1, 1), V(-3, 0.1, 2)} {
		p := Perpendicular(d)
		assert.InDelta(t, 0, p.Dot(d), 1e-12)
		assert.InDelta(t, 1, p.Length(), 1e-12)
	}
	assert.InDelta(t, math.Sqrt2, V(1, 1).Length(), 1e-12)
}

func mustPlane(t *testing.T, o, x, z v3.Vec) Plane {
	t.Helper()
	p, err := NewPlane(o, x, z)
	require.NoError(t, err)
	return p
}
