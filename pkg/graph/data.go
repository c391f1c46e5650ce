package graph

// ElementData records a primitive realized from a descriptor.
type ElementData struct {
	Builder    string `json:"builder"`
	Primitive  string `json:"primitive"`
	Descriptor string `json:"descriptor"` // JSON parameters
	Generation int    `json:"generation"`
}

func (ElementData) nodeData() {}

// ShapeData records a shape added without a descriptor.
type ShapeData struct {
	Builder    string `json:"builder"`
	ShapeKind  string `json:"shape_kind"`
	Generation int    `json:"generation"`
}

func (ShapeData) nodeData() {}

// CombineData records a merge into a working shape. Children are the
// previous working shape (when there was one) and the element.
type CombineData struct {
	Builder string `json:"builder"`
	Mode    string `json:"mode"`
}

func (CombineData) nodeData() {}

// OperationData records a builder operation over pending elements.
type OperationData struct {
	Builder string             `json:"builder"`
	Op      string             `json:"op"`
	Params  map[string]float64 `json:"params,omitempty"`
}

func (OperationData) nodeData() {}

// FoldData records a child builder's result handed to its parent.
type FoldData struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
	Mode   string `json:"mode"`
	As     string `json:"as"` // "working", "pending-edges" or "pending-faces"
}

func (FoldData) nodeData() {}

// ResultData records a finalized builder result.
type ResultData struct {
	Builder string `json:"builder"`
	Plane   string `json:"plane"`
}

func (ResultData) nodeData() {}
