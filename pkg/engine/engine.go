// Package engine evaluates contour scripts. It wraps zygomys in a sandboxed
// environment, exposes the builder contexts as Lisp builtins and returns the
// shapes a script shows together with its construction history.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/contour/pkg/build"
	"github.com/chazu/contour/pkg/graph"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/kernel/sdfx"
	"github.com/chazu/contour/pkg/tessellate"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a single evaluation unless WithTimeout says
// otherwise.
const DefaultTimeout = 5 * time.Second

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a non-fatal observation about a script that evaluated.
type EvalWarning struct {
	Line    int
	Message string
}

// Result is the output of a successful evaluation.
type Result struct {
	// Session identifies the build session the script ran in.
	Session uuid.UUID
	// Shown lists the shapes passed to show, in call order.
	Shown    []tessellate.Item
	History  *graph.History
	Warnings []EvalWarning
}

// Engine evaluates scripts against one kernel. It is safe for concurrent
// use; each call to Evaluate creates a fresh sandbox and build session.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	k       kernel.Kernel
	log     *slog.Logger
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithKernel sets the kernel scripts build with. The default is an sdfx
// kernel with default settings.
func WithKernel(k kernel.Kernel) Option {
	return func(e *Engine) {
		if k != nil {
			e.k = k
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTimeout sets the hard limit for one evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.k == nil {
		e.k = sdfx.New(sdfx.WithLogger(e.log))
	}
	return e
}

// Kernel returns the kernel scripts are evaluated against.
func (e *Engine) Kernel() kernel.Kernel { return e.k }

// Evaluate runs source in a fresh sandbox.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, cancellation, panic, superseded by a newer
//     call): returns nil + nil + error
func (e *Engine) Evaluate(ctx context.Context, source string) (*Result, []EvalError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", err)
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return e.waitWithTimeout(ctx, ch, gen)
}

// evaluate performs the zygomys evaluation in a fresh sandbox and session.
func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	session := build.NewSession(e.k, build.WithLogger(e.log))
	log := e.log.With("session", session.ID().String())

	// Empty source is a valid program that shows nothing.
	if strings.TrimSpace(source) == "" {
		return &Result{Session: session.ID(), History: session.History()}, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	in := &interp{session: session, k: e.k, log: log}
	registerBuiltins(env, in)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		abortOpen(session)
		log.Debug("evaluation failed", "error", err)
		return nil, parseZygomysError(err), nil
	}
	if open := openBuilders(session); len(open) > 0 {
		abortOpen(session)
		return nil, []EvalError{{
			Message: fmt.Sprintf("%d builder(s) never ended: %s", len(open), strings.Join(open, ", ")),
		}}, nil
	}

	if errs := checkHistory(session.History(), log); len(errs) > 0 {
		return nil, errs, nil
	}

	log.Debug("evaluated", "shown", len(in.shown), "nodes", session.History().NodeCount())
	return &Result{
		Session:  session.ID(),
		Shown:    in.shown,
		History:  session.History(),
		Warnings: in.warnings,
	}, nil, nil
}

// checkHistory runs the structural history checks. Errors mean the
// construction record is inconsistent and fail the evaluation; warnings
// (orphaned helper geometry) are only logged.
func checkHistory(h *graph.History, log *slog.Logger) []EvalError {
	var errs []EvalError
	for _, f := range graph.Validate(h) {
		if f.Severity != graph.SeverityError {
			log.Debug("history finding", "finding", f.Error())
			continue
		}
		errs = append(errs, EvalError{Message: "history: " + f.Error()})
	}
	return errs
}

// openBuilders lists the kinds of the builders still on the stack, outermost
// first.
func openBuilders(s *build.Session) []string {
	var kinds []string
	for b := s.Active(); b != nil; b = b.Parent() {
		kinds = append([]string{b.Kind().String()}, kinds...)
	}
	return kinds
}

// abortOpen pops every builder a failed script left open.
func abortOpen(s *build.Session) {
	b := s.Active()
	if b == nil {
		return
	}
	for b.Parent() != nil {
		b = b.Parent()
	}
	s.Abort(b)
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
