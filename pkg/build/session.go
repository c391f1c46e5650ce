package build

import (
	"fmt"
	"log/slog"

	"github.com/chazu/contour/pkg/algebra"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/graph"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/google/uuid"
)

// Session owns one model's builder stack and construction history.
type Session struct {
	id      uuid.UUID
	k       kernel.Kernel
	log     *slog.Logger
	stack   []*Builder
	history *graph.History
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHistory records into an existing history instead of a fresh one.
func WithHistory(h *graph.History) Option {
	return func(s *Session) {
		if h != nil {
			s.history = h
		}
	}
}

// NewSession returns an empty session over k.
func NewSession(k kernel.Kernel, opts ...Option) *Session {
	s := &Session{
		id:      uuid.New(),
		k:       k,
		log:     slog.Default(),
		history: graph.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", s.id.String())
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Kernel returns the session's kernel.
func (s *Session) Kernel() kernel.Kernel { return s.k }

// History returns the construction history recorded so far.
func (s *Session) History() *graph.History { return s.history }

// Active returns the innermost open builder, or nil.
func (s *Session) Active() *Builder {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns the number of open builders.
func (s *Session) Depth() int { return len(s.stack) }

// BuilderOption configures a builder at Enter.
type BuilderOption func(*Builder)

// WithPlane sets the builder's plane, in its parent's coordinates.
func WithPlane(p geom.Plane) BuilderOption {
	return func(b *Builder) { b.plane = p }
}

// WithMode sets how the builder's result combines into a parent of the
// same kind. The default is Add.
func WithMode(m algebra.Mode) BuilderOption {
	return func(b *Builder) { b.mode = m }
}

// SeedFromParent moves the parent's pending edges and faces into the new
// builder.
func SeedFromParent() BuilderOption {
	return func(b *Builder) { b.seed = true }
}

// WithName labels the builder's result in the history.
func WithName(name string) BuilderOption {
	return func(b *Builder) { b.name = name }
}

// Enter pushes a new builder. Nesting rules: a line may only contain
// lines, a sketch may contain lines and sketches, a part may contain
// anything.
func (s *Session) Enter(kind Kind, opts ...BuilderOption) (*Builder, error) {
	if kind < Line || kind > Part {
		return nil, stateErrorf("enter", "unknown builder kind %s", kind)
	}
	b := &Builder{
		session: s,
		kind:    kind,
		parent:  s.Active(),
		plane:   geom.XY,
		mode:    algebra.Add,
	}
	for _, opt := range opts {
		opt(b)
	}
	if !b.mode.Valid() {
		return nil, stateErrorf("enter", "invalid mode %s", b.mode)
	}
	if p := b.parent; p != nil {
		if !p.kind.canHost(kind) {
			return nil, stateErrorf("enter", "a %s builder cannot contain a %s builder", p.kind, kind)
		}
		if p.kind == kind && !kind.supports(b.mode) {
			return nil, stateErrorf("enter", "mode %s is not supported by %s builders", b.mode, kind)
		}
	}
	b.log = s.log.With("builder", kind.String(), "depth", len(s.stack)+1)
	if b.seed {
		if err := b.seedFromParent(); err != nil {
			return nil, err
		}
	}
	s.stack = append(s.stack, b)
	b.log.Debug("enter builder", "plane", b.plane.String(), "mode", b.mode.String())
	return b, nil
}

// Exit finalizes b, pops it, and folds its result into the parent builder
// if there is one. The returned shape is in the parent's coordinates. The
// frame is popped on every path, including errors; exiting a builder that
// still has open children aborts those children and fails.
func (s *Session) Exit(b *Builder) (kernel.Shape, error) {
	idx := s.indexOf(b)
	if idx < 0 {
		return nil, stateErrorf("exit", "%s builder is not open", b.kind)
	}
	if idx != len(s.stack)-1 {
		open := s.stack[len(s.stack)-1]
		s.unwind(idx)
		return nil, stateErrorf("exit", "%s builder exited while a %s builder inside it was still open", b.kind, open.kind)
	}
	s.stack = s.stack[:idx]
	b.done = true

	result, err := b.finalize()
	if err != nil {
		b.log.Warn("builder failed on exit", "err", err)
		return nil, err
	}
	b.result = result
	if b.parent != nil {
		if err := b.parent.fold(b, result); err != nil {
			b.log.Warn("fold into parent failed", "err", err)
			return nil, err
		}
	} else {
		s.history.AddRoot(b.node)
	}
	b.log.Debug("exit builder", "result", result.Kind().String(), "elements", b.pending.Len())
	return result, nil
}

// Abort pops b and every builder opened inside it without producing a
// result. Aborting a builder that is not open does nothing.
func (s *Session) Abort(b *Builder) {
	if idx := s.indexOf(b); idx >= 0 {
		s.unwind(idx)
	}
}

func (s *Session) unwind(idx int) {
	for i := len(s.stack) - 1; i >= idx; i-- {
		f := s.stack[i]
		f.done = true
		f.log.Warn("builder aborted", "elements", f.pending.Len())
	}
	s.stack = s.stack[:idx]
}

func (s *Session) indexOf(b *Builder) int {
	for i, f := range s.stack {
		if f == b {
			return i
		}
	}
	return -1
}

// Build enters a builder, runs fn and exits. The builder is popped whether
// fn returns an error or panics; a panic is re-raised after cleanup.
func (s *Session) Build(kind Kind, fn func(*Builder) error, opts ...BuilderOption) (kernel.Shape, error) {
	b, err := s.Enter(kind, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			s.Abort(b)
			panic(r)
		}
	}()
	if err := fn(b); err != nil {
		s.Abort(b)
		return nil, fmt.Errorf("%s builder: %w", kind, err)
	}
	return s.Exit(b)
}
