package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// NodeKind enumerates the types of nodes in the history graph.
type NodeKind int

const (
	NodeElement   NodeKind = iota // primitive realized from a descriptor
	NodeShape                     // shape supplied directly by the caller
	NodeCombine                   // element merged into a working shape
	NodeOperation                 // make-face, make-hull, extrude, mirror
	NodeFold                      // child builder result handed to its parent
	NodeResult                    // finalized builder result
)

func (k NodeKind) String() string {
	switch k {
	case NodeElement:
		return "element"
	case NodeShape:
		return "shape"
	case NodeCombine:
		return "combine"
	case NodeOperation:
		return "operation"
	case NodeFold:
		return "fold"
	case NodeResult:
		return "result"
	default:
		return "unknown"
	}
}

// NodeID is a content-addressed identifier for history nodes.
type NodeID [32]byte

// NewNodeID hashes a path-like key.
func NewNodeID(key string) NodeID {
	return NodeID(sha256.Sum256([]byte(key)))
}

// IsZero reports whether id is the zero value.
func (id NodeID) IsZero() bool { return id == NodeID{} }

// Short returns the first 6 bytes in hex, for logs.
func (id NodeID) Short() string { return hex.EncodeToString(id[:6]) }

func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

// MarshalText encodes the ID as hex.
func (id NodeID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// Node is one step of construction history.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Seq      int      `json:"seq"`
	ShapeID  uint64   `json:"shape_id,omitempty"` // kernel identity of the produced shape
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// contentID derives a node's ID from everything except the ID itself.
func contentID(n *Node) NodeID {
	data, err := json.Marshal(n.Data)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", n.Data))
	}
	h := sha256.New()
	fmt.Fprintf(h, "%d\x00%s\x00%d\x00%d\x00", n.Kind, n.Name, n.Seq, n.ShapeID)
	h.Write(data)
	for _, c := range n.Children {
		h.Write(c[:])
	}
	var id NodeID
	copy(id[:], h.Sum(nil))
	return id
}
