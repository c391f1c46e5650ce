package build

import (
	"errors"
	"fmt"
)

// ErrContextState is the sentinel matched by every ContextStateError.
var ErrContextState = errors.New("invalid builder context state")

// ContextStateError reports an operation attempted in the wrong builder
// state: outside an active builder, on a builder of the wrong kind, or
// selecting the last generation before any exists.
type ContextStateError struct {
	Op      string
	Message string
}

func (e *ContextStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is makes errors.Is(err, ErrContextState) match.
func (e *ContextStateError) Is(target error) bool { return target == ErrContextState }

func stateErrorf(op, format string, args ...any) *ContextStateError {
	return &ContextStateError{Op: op, Message: fmt.Sprintf(format, args...)}
}
