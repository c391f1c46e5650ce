package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/primitive"
)

// construct realizes a descriptor or fails the test.
func construct(t *testing.T, k *Kernel, d primitive.Descriptor) kernel.Shape {
	t.Helper()
	s, err := k.Construct(d)
	if err != nil {
		t.Fatalf("Construct(%s) failed: %v", d.Kind(), err)
	}
	return s
}

func TestBox(t *testing.T) {
	k := New(WithMeshCells(48))
	box := construct(t, k, primitive.Box{Length: 100, Width: 50, Height: 25})
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.VertexCount() == 0 {
		t.Fatal("expected non-zero vertex count")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestBoxTopology(t *testing.T) {
	k := New()
	box := construct(t, k, primitive.Box{Length: 4, Width: 2, Height: 1})
	if got := len(box.Faces()); got != 6 {
		t.Errorf("box faces = %d, want 6", got)
	}
	if got := len(box.Edges()); got != 12 {
		t.Errorf("box edges = %d, want 12", got)
	}
	if got := len(box.Vertices()); got != 8 {
		t.Errorf("box vertices = %d, want 8", got)
	}
	min, max := box.BoundingBox()
	wantMin, wantMax := [3]float64{-2, -1, -0.5}, [3]float64{2, 1, 0.5}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > 1e-9 || math.Abs(max[i]-wantMax[i]) > 1e-9 {
			t.Errorf("box bounds = %v %v, want centered 4x2x1", min, max)
			break
		}
	}
	// Every face normal points away from the center.
	for _, f := range box.Faces() {
		p := f.Plane()
		if p.ZDir.Dot(p.Origin) <= 0 {
			t.Errorf("face normal %s points inward (origin %s)", geom.Format(p.ZDir), geom.Format(p.Origin))
		}
	}
}

func TestCylinder(t *testing.T) {
	k := New(WithMeshCells(48))
	cyl := construct(t, k, primitive.Cylinder{Radius: 10, Height: 50})
	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if got := len(cyl.Edges()); got != 3 {
		t.Errorf("cylinder edges = %d, want 3 (two circles and a seam)", got)
	}
	v, err := k.Measure(cyl, kernel.Volume)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if want := math.Pi * 100 * 50; math.Abs(v-want) > 1e-9 {
		t.Errorf("volume = %g, want %g", v, want)
	}
}

func TestDifference(t *testing.T) {
	k := New(WithMeshCells(48))

	box := construct(t, k, primitive.Box{Length: 100, Width: 100, Height: 100})
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	cyl := construct(t, k, primitive.Cylinder{Radius: 20, Height: 120})
	diff, err := k.Boolean(kernel.Difference, box, cyl)
	if err != nil {
		t.Fatalf("Boolean(difference) failed: %v", err)
	}
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	// A box with a hole should have more triangles than a plain box.
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}

	v, err := k.Measure(diff, kernel.Volume)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	want := 1e6 - math.Pi*400*100
	if math.Abs(v-want)/want > 0.02 {
		t.Errorf("sampled volume = %g, want about %g", v, want)
	}
}

// differenceVolume subtracts tool, placed at loc, from base and measures
// the result.
func differenceVolume(t *testing.T, k *Kernel, base, tool primitive.Descriptor, loc geom.Location) float64 {
	t.Helper()
	b := construct(t, k, base)
	moved, err := k.Transform(construct(t, k, tool), loc)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	diff, err := k.Boolean(kernel.Difference, b, moved)
	if err != nil {
		t.Fatalf("Boolean(difference) failed: %v", err)
	}
	v, err := k.Measure(diff, kernel.Volume)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	return v
}

func TestThinOverlapDifference(t *testing.T) {
	k := New()
	slab := primitive.Box{Length: 10, Width: 10, Height: 1}
	// The overlap is 0.01 thick, far below one cell of the slab's bounds.
	v := differenceVolume(t, k, slab, slab, geom.Pos(0, 0, 0.99))
	if math.Abs(v-99) > 0.01 {
		t.Errorf("volume = %g, want 99", v)
	}
}

func TestNarrowDrillDifference(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
	}{
		{"r0.02", 0.02},
		{"r0.05", 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New()
			v := differenceVolume(t, k,
				primitive.Box{Length: 10, Width: 10, Height: 10},
				primitive.Cylinder{Radius: tt.radius, Height: 20},
				geom.Identity())
			if v >= 1000 {
				t.Fatalf("volume = %g, want less than the uncut 1000", v)
			}
			removed := math.Pi * tt.radius * tt.radius * 10
			if got := 1000 - v; math.Abs(got-removed)/removed > 0.02 {
				t.Errorf("removed volume = %g, want about %g", got, removed)
			}
		})
	}
}

func TestNarrowFaceDifference(t *testing.T) {
	k := New()
	sq := construct(t, k, primitive.Rectangle{Width: 10, Height: 10})
	hole := construct(t, k, primitive.Circle{Radius: 0.05})
	diff, err := k.Boolean(kernel.Difference, sq, hole)
	if err != nil {
		t.Fatalf("Boolean(difference) failed: %v", err)
	}
	a, err := k.Measure(diff, kernel.Area)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	removed := math.Pi * 0.05 * 0.05
	if got := 100 - a; math.Abs(got-removed)/removed > 0.02 {
		t.Errorf("removed area = %g, want about %g", got, removed)
	}
}

func TestDisjointDifferenceFails(t *testing.T) {
	k := New()
	a := construct(t, k, primitive.Box{Length: 1, Width: 1, Height: 1})
	b := construct(t, k, primitive.Box{Length: 1, Width: 1, Height: 1})
	far, err := k.Transform(b, geom.Pos(5, 0, 0))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if _, err := k.Boolean(kernel.Difference, a, far); !isGeometryError(err) {
		t.Fatalf("difference of disjoint boxes: err = %v, want GeometryError", err)
	}
	if _, err := k.Boolean(kernel.Intersection, a, far); !isGeometryError(err) {
		t.Fatalf("intersection of disjoint boxes: err = %v, want GeometryError", err)
	}
	u, err := k.Boolean(kernel.Union, a, far)
	if err != nil {
		t.Fatalf("union failed: %v", err)
	}
	v, _ := k.Measure(u, kernel.Volume)
	if math.Abs(v-2) > 1e-12 {
		t.Errorf("disjoint union volume = %g, want exactly 2", v)
	}
}

func TestUnion(t *testing.T) {
	k := New(WithMeshCells(48))
	a := construct(t, k, primitive.Box{Length: 50, Width: 50, Height: 50})
	b := construct(t, k, primitive.Cylinder{Radius: 20, Height: 80})
	u, err := k.Boolean(kernel.Union, a, b)
	if err != nil {
		t.Fatalf("Boolean(union) failed: %v", err)
	}
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	_, max := u.BoundingBox()
	if math.Abs(max[2]-40) > 1e-9 {
		t.Errorf("union top = %g, want 40 from the cylinder", max[2])
	}
}

func TestCurvesCannotBeMeshed(t *testing.T) {
	k := New()
	line := construct(t, k, primitive.Line{Points: primitive.Pts(geom.V(0, 0), geom.V(1, 0))})
	if _, err := k.ToMesh(line); !isGeometryError(err) {
		t.Fatalf("ToMesh(edge) err = %v, want GeometryError", err)
	}
}

func TestFaceMesh(t *testing.T) {
	k := New(WithMeshCells(32))
	f := construct(t, k, primitive.Circle{Radius: 1})
	mesh, err := k.ToMesh(f)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("face mesh is empty")
	}
}

func TestCacheSizeOption(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{"explicit", 8, 8},
		{"zero keeps default", 0, DefaultCacheSize},
		{"negative keeps default", -4, DefaultCacheSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New(WithCacheSize(tt.size))
			if k.opts.cacheSize != tt.want {
				t.Fatalf("cache size = %d, want %d", k.opts.cacheSize, tt.want)
			}
			box := construct(t, k, primitive.Box{Length: 2, Width: 2, Height: 2})
			cyl := construct(t, k, primitive.Cylinder{Radius: 0.5, Height: 4})
			diff, err := k.Boolean(kernel.Difference, box, cyl)
			if err != nil {
				t.Fatalf("Boolean(difference) failed: %v", err)
			}
			first, _ := k.Measure(diff, kernel.Volume)
			if k.cache.Len() == 0 {
				t.Fatal("sampled volume was not cached")
			}
			again, _ := k.Measure(diff, kernel.Volume)
			if first != again {
				t.Errorf("cached volume = %g, want %g", again, first)
			}
		})
	}
}
