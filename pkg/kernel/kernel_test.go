package kernel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Compile-time interface check with a stub kernel ---

// stubShape is a minimal Shape implementation for testing.
type stubShape struct {
	kind         ShapeKind
	minBB, maxBB [3]float64
	edges        []Edge
	faces        []Face
	solids       []Solid
}

func (s *stubShape) Kind() ShapeKind                    { return s.kind }
func (s *stubShape) ID() uint64                         { return 1 }
func (s *stubShape) BoundingBox() (min, max [3]float64) { return s.minBB, s.maxBB }
func (s *stubShape) Vertices() []v3.Vec                 { return nil }
func (s *stubShape) Edges() []Edge                      { return s.edges }
func (s *stubShape) Faces() []Face                      { return s.faces }
func (s *stubShape) Solids() []Solid                    { return s.solids }

// stubEdge adds the curve methods.
type stubEdge struct{ stubShape }

func (e *stubEdge) PositionAt(u float64) v3.Vec { return v3.Vec{X: u} }
func (e *stubEdge) TangentAt(float64) v3.Vec    { return v3.Vec{X: 1} }
func (e *stubEdge) Closed() bool                { return false }

// stubFace adds the face frame.
type stubFace struct{ stubShape }

func (f *stubFace) Plane() geom.Plane { return geom.XY }

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Construct(d primitive.Descriptor) (Shape, error) {
	if b, ok := d.(primitive.Box); ok {
		return &stubShape{kind: KindSolid, maxBB: [3]float64{b.Length, b.Width, b.Height}}, nil
	}
	return &stubEdge{stubShape{kind: KindEdge}}, nil
}

func (k *stubKernel) MakeWire([]Edge) (Wire, error)        { return &stubEdge{stubShape{kind: KindWire}}, nil }
func (k *stubKernel) MakeFace([]Edge) (Shape, error)       { return &stubShape{kind: KindFace}, nil }
func (k *stubKernel) MakeHull([]Edge) (Face, error)        { return nil, Errorf("hull", "unsupported") }
func (k *stubKernel) Extrude(Face, float64) (Solid, error) { return &stubShape{kind: KindSolid}, nil }
func (k *stubKernel) Compound(...Shape) Shape              { return &stubShape{kind: KindCompound} }

func (k *stubKernel) Boolean(_ BooleanOp, a, _ Shape) (Shape, error)     { return a, nil }
func (k *stubKernel) Transform(s Shape, _ geom.Location) (Shape, error) { return s, nil }
func (k *stubKernel) Mirror(s Shape, _ geom.Plane) (Shape, error)       { return s, nil }
func (k *stubKernel) Measure(Shape, Metric) (float64, error)            { return 0, nil }

func (k *stubKernel) ToMesh(_ Shape) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubShape)(nil)
var _ Edge = (*stubEdge)(nil)
var _ Face = (*stubFace)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Construct(primitive.Box{Length: 10, Width: 20, Height: 30})
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, _ := k.Construct(primitive.Box{Length: 1, Width: 1, Height: 1})
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}

// --- Errors and classification ---

func TestGeometryError(t *testing.T) {
	cause := fmt.Errorf("solver diverged")
	err := fmt.Errorf("combine: %w", &GeometryError{Op: "difference", Message: "no overlap", Err: cause})

	if !errors.Is(err, ErrGeometry) {
		t.Error("errors.Is(err, ErrGeometry) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("GeometryError should unwrap to its cause")
	}
	var gerr *GeometryError
	if !errors.As(err, &gerr) || gerr.Op != "difference" {
		t.Fatalf("errors.As failed or wrong op: %v", err)
	}
	want := "combine: difference: no overlap: solver diverged"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if got := Errorf("extrude", "amount %g", 0.0).Error(); got != "extrude: amount 0" {
		t.Errorf("Errorf() = %q", got)
	}
}

func TestIsEmptyAndDimension(t *testing.T) {
	edge := &stubEdge{stubShape{kind: KindEdge}}
	edge.edges = []Edge{edge}
	face := &stubFace{stubShape{kind: KindFace, edges: []Edge{edge}}}
	face.faces = []Face{face}
	solid := &stubShape{kind: KindSolid, edges: []Edge{edge}, faces: []Face{face}}
	solid.solids = []Solid{solid}

	tests := []struct {
		name  string
		shape Shape
		empty bool
		dim   int
	}{
		{"nil", nil, true, 0},
		{"empty compound", &stubShape{kind: KindCompound}, true, 0},
		{"empty wire", &stubShape{kind: KindWire}, true, 0},
		{"edge", edge, false, 1},
		{"face", face, false, 2},
		{"solid", solid, false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.shape); got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.empty)
			}
			if got := Dimension(tt.shape); got != tt.dim {
				t.Errorf("Dimension() = %d, want %d", got, tt.dim)
			}
		})
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{KindCompound.String(), "compound"},
		{ShapeKind(42).String(), "ShapeKind(42)"},
		{Difference.String(), "difference"},
		{Area.String(), "area"},
		{Metric(0).String(), "Metric(0)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
