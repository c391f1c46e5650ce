package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding means the
// history is corrupt or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // history is inconsistent
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Validate runs the structural checks on a history and returns its
// findings. An empty slice means the history is sound. It never mutates h.
func Validate(h *History) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(h)...)
	errs = append(errs, validateReferences(h)...)
	errs = append(errs, validateNames(h)...)
	errs = append(errs, validateRoots(h)...)
	errs = append(errs, validateArity(h)...)
	return errs
}

// validateDAG checks for cycles using DFS with 3-color marking.
func validateDAG(h *History) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		if node, ok := h.Nodes[id]; ok {
			for _, childID := range node.Children {
				if visit(childID) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range h.Order {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child reference exists.
func validateReferences(h *History) []ValidationError {
	var errs []ValidationError
	for _, id := range h.Order {
		node := h.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := h.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that every NameIndex entry points at an existing
// node carrying that name.
func validateNames(h *History) []ValidationError {
	var errs []ValidationError
	for name, id := range h.NameIndex {
		node, ok := h.Nodes[id]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		case node.Name != name:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("name index entry %q disagrees with node name %q", name, node.Name),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that roots exist and warns about nodes no result
// was derived from (helper geometry, aborted builders).
func validateRoots(h *History) []ValidationError {
	var errs []ValidationError
	reachable := make(map[NodeID]bool)
	var queue []NodeID
	for _, rid := range h.Roots {
		if _, ok := h.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		node := h.Nodes[queue[0]]
		queue = queue[1:]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}
	if len(h.Roots) == 0 {
		return errs
	}
	for _, id := range h.Order {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%s node is not reachable from any result (orphan)", h.Nodes[id].Kind),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateArity checks the child counts each kind of node implies.
func validateArity(h *History) []ValidationError {
	var errs []ValidationError
	for _, id := range h.Order {
		node := h.Nodes[id]
		n := len(node.Children)
		var bad bool
		switch node.Kind {
		case NodeElement, NodeShape:
			bad = n != 0
		case NodeCombine:
			bad = n < 1 || n > 2
		case NodeFold, NodeResult:
			bad = n > 1
		}
		if bad {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%s node has %d children", node.Kind, n),
				Severity: SeverityError,
			})
		}
	}
	return errs
}
