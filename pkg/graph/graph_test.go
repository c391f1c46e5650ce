package graph

import (
	"encoding/json"
	"testing"
)

func TestNewHistory(t *testing.T) {
	h := New()
	if h.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if h.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if h.NodeCount() != 0 {
		t.Errorf("empty history should have 0 nodes, got %d", h.NodeCount())
	}
}

func TestRecordAndLookup(t *testing.T) {
	h := New()

	el := h.Record(NodeElement, 7, ElementData{Builder: "line", Primitive: "line", Generation: 1})
	res := h.Record(NodeResult, 9, ResultData{Builder: "line"}, el)
	h.AddRoot(res)

	if h.NodeCount() != 2 {
		t.Errorf("node count = %d, want 2", h.NodeCount())
	}
	if err := h.Name(res, "outline"); err != nil {
		t.Fatalf("Name failed: %v", err)
	}

	found := h.Lookup("outline")
	if found == nil {
		t.Fatal("Lookup('outline') returned nil")
	}
	if found.ID != res {
		t.Errorf("lookup returned wrong node")
	}
	if must := h.MustLookup("outline"); must.ID != res {
		t.Errorf("MustLookup returned wrong node")
	}
	if h.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}

	n, ok := h.Provenance(7)
	if !ok || n.ID != el {
		t.Errorf("Provenance(7) = %v, %v; want the element node", n, ok)
	}
	if _, ok := h.Provenance(8); ok {
		t.Error("Provenance should miss for unknown shapes")
	}

	children := h.Children(h.Get(res))
	if len(children) != 1 || children[0].ID != el {
		t.Errorf("children = %v, want the element node", children)
	}
}

func TestNameConflicts(t *testing.T) {
	h := New()
	a := h.Record(NodeElement, 0, ElementData{Primitive: "line"})
	b := h.Record(NodeElement, 0, ElementData{Primitive: "line"})
	if err := h.Name(a, "x"); err != nil {
		t.Fatal(err)
	}
	if err := h.Name(b, "x"); err == nil {
		t.Error("naming a second node with a used name should fail")
	}
	if err := h.Name(NewNodeID("missing"), "y"); err == nil {
		t.Error("naming a missing node should fail")
	}
	// Renaming releases the old name.
	if err := h.Name(a, "z"); err != nil {
		t.Fatal(err)
	}
	if h.Lookup("x") != nil {
		t.Error("old name should be released")
	}
}

func TestMustLookupPanics(t *testing.T) {
	h := New()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic on missing name")
		}
	}()
	h.MustLookup("missing")
}

func TestIdenticalStepsGetDistinctIDs(t *testing.T) {
	h := New()
	a := h.Record(NodeElement, 0, ElementData{Primitive: "line"})
	b := h.Record(NodeElement, 0, ElementData{Primitive: "line"})
	if a == b {
		t.Error("repeated identical steps should not collapse into one node")
	}
	if len(h.Order) != 2 {
		t.Errorf("order = %d entries, want 2", len(h.Order))
	}
}

func TestAncestors(t *testing.T) {
	h := New()
	e1 := h.Record(NodeElement, 0, ElementData{Primitive: "line"})
	e2 := h.Record(NodeElement, 0, ElementData{Primitive: "line"})
	c1 := h.Record(NodeCombine, 0, CombineData{Mode: "add"}, e1)
	c2 := h.Record(NodeCombine, 0, CombineData{Mode: "add"}, c1, e2)
	r := h.Record(NodeResult, 0, ResultData{}, c2)

	anc := h.Ancestors(h.Get(r))
	if len(anc) != 4 {
		t.Fatalf("ancestors = %d, want 4", len(anc))
	}
	if anc[0].ID != c2 {
		t.Errorf("nearest ancestor should be the last combine")
	}
	if got := len(h.OfKind(NodeCombine)); got != 2 {
		t.Errorf("OfKind(combine) = %d, want 2", got)
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("session/line")
	b := NewNodeID("session/line")
	if a != b {
		t.Error("same key should produce same NodeID")
	}
	if a == NewNodeID("session/sketch") {
		t.Error("different keys should produce different NodeIDs")
	}
}

func TestNodeIDZero(t *testing.T) {
	var id NodeID
	if !id.IsZero() {
		t.Error("zero-value NodeID should be zero")
	}
	if NewNodeID("something").IsZero() {
		t.Error("non-zero NodeID should not be zero")
	}
}

func TestZeroChildrenAreDropped(t *testing.T) {
	h := New()
	e := h.Record(NodeElement, 0, ElementData{})
	c := h.Record(NodeCombine, 0, CombineData{Mode: "add"}, NodeID{}, e)
	if got := len(h.Get(c).Children); got != 1 {
		t.Errorf("children = %d, want 1", got)
	}
}

func TestHistoryJSON(t *testing.T) {
	h := New()
	e := h.Record(NodeElement, 1, ElementData{Primitive: "circle"})
	h.AddRoot(e)
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	nodes, ok := decoded["nodes"].(map[string]any)
	if !ok || len(nodes) != 1 {
		t.Fatalf("nodes = %v, want one entry keyed by hex ID", decoded["nodes"])
	}
	if _, ok := nodes[e.String()]; !ok {
		t.Errorf("node key should be %s", e)
	}
}

func TestStringers(t *testing.T) {
	if NodeElement.String() != "element" {
		t.Errorf("NodeElement.String() = %q", NodeElement.String())
	}
	if NodeFold.String() != "fold" {
		t.Errorf("NodeFold.String() = %q", NodeFold.String())
	}
	if NodeKind(99).String() != "unknown" {
		t.Errorf("NodeKind(99).String() = %q", NodeKind(99).String())
	}
	id := NewNodeID("test")
	if len(id.Short()) != 12 { // 6 bytes = 12 hex chars
		t.Errorf("Short() len = %d, want 12", len(id.Short()))
	}
}

func TestNodeDataInterface(t *testing.T) {
	var _ NodeData = ElementData{}
	var _ NodeData = ShapeData{}
	var _ NodeData = CombineData{}
	var _ NodeData = OperationData{}
	var _ NodeData = FoldData{}
	var _ NodeData = ResultData{}
}
