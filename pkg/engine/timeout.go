package engine

import (
	"context"
	"fmt"
	"time"
)

// evalResult carries an evaluation's outcome out of its goroutine.
type evalResult struct {
	result *Result
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns an error if the
// evaluation exceeds the engine's timeout or ctx ends first. The generation
// counter discards results of evaluations a newer call has superseded.
//
// On timeout the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func (e *Engine) waitWithTimeout(ctx context.Context, ch <-chan evalResult, gen uint64) (*Result, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()

		if gen != current {
			e.log.Debug("discarding superseded evaluation", "generation", gen, "current", current)
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.result, res.errors, res.err

	case <-timer.C:
		e.log.Warn("evaluation timed out", "generation", gen, "timeout", e.timeout)
		return nil, nil, fmt.Errorf("evaluation timed out after %s", e.timeout)

	case <-ctx.Done():
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
	}
}
