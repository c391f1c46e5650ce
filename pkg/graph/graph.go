package graph

import "fmt"

// History is the construction history of one session. Nodes are never
// modified after they are added.
type History struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Order     []NodeID          `json:"order"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Version   uint64            `json:"version"`

	shapes map[uint64]NodeID
}

// New creates an empty History.
func New() *History {
	return &History{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		shapes:    make(map[uint64]NodeID),
	}
}

// Record appends a node of the given kind and returns its ID. The ID is
// derived from the node's content and its position in the history.
func (h *History) Record(kind NodeKind, shapeID uint64, data NodeData, children ...NodeID) NodeID {
	n := &Node{
		Kind:     kind,
		Seq:      len(h.Order),
		ShapeID:  shapeID,
		Children: compact(children),
		Data:     data,
	}
	n.ID = contentID(n)
	h.AddNode(n)
	return n.ID
}

func compact(ids []NodeID) []NodeID {
	var out []NodeID
	for _, id := range ids {
		if !id.IsZero() {
			out = append(out, id)
		}
	}
	return out
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (h *History) AddNode(n *Node) {
	if _, exists := h.Nodes[n.ID]; !exists {
		h.Order = append(h.Order, n.ID)
	}
	h.Nodes[n.ID] = n
	if n.Name != "" {
		h.NameIndex[n.Name] = n.ID
	}
	if n.ShapeID != 0 {
		if h.shapes == nil {
			h.shapes = make(map[uint64]NodeID)
		}
		h.shapes[n.ShapeID] = n.ID
	}
	h.Version++
}

// AddRoot registers a node ID as a root of the graph.
func (h *History) AddRoot(id NodeID) {
	h.Roots = append(h.Roots, id)
}

// Name assigns a user-visible name to an existing node.
func (h *History) Name(id NodeID, name string) error {
	n, ok := h.Nodes[id]
	if !ok {
		return fmt.Errorf("graph: no node %s", id.Short())
	}
	if prev, ok := h.NameIndex[name]; ok && prev != id {
		return fmt.Errorf("graph: name %q already names node %s", name, prev.Short())
	}
	if n.Name != "" {
		delete(h.NameIndex, n.Name)
	}
	n.Name = name
	h.NameIndex[name] = id
	return nil
}

// Lookup returns the node with the given user-assigned name, or nil.
func (h *History) Lookup(name string) *Node {
	id, ok := h.NameIndex[name]
	if !ok {
		return nil
	}
	return h.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (h *History) MustLookup(name string) *Node {
	n := h.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (h *History) Get(id NodeID) *Node {
	return h.Nodes[id]
}

// Provenance returns the node that produced the shape with the given
// kernel identity.
func (h *History) Provenance(shapeID uint64) (*Node, bool) {
	id, ok := h.shapes[shapeID]
	if !ok {
		return nil, false
	}
	return h.Nodes[id], true
}

// OfKind returns the nodes of one kind in recording order.
func (h *History) OfKind(kind NodeKind) []*Node {
	var out []*Node
	for _, id := range h.Order {
		if n := h.Nodes[id]; n != nil && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (h *History) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := h.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// Ancestors returns every node n was derived from, nearest first, each
// once.
func (h *History) Ancestors(n *Node) []*Node {
	seen := make(map[NodeID]bool)
	var out []*Node
	queue := append([]NodeID(nil), n.Children...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		if c := h.Nodes[id]; c != nil {
			out = append(out, c)
			queue = append(queue, c.Children...)
		}
	}
	return out
}

// NodeCount returns the total number of nodes.
func (h *History) NodeCount() int {
	return len(h.Nodes)
}
