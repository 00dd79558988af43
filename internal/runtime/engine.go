package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/pkg/domain"
)

// DefaultMaxSteps bounds a single run.
const DefaultMaxSteps = 32

// Engine runs a compiled Graph. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	graph    *Graph
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Chain(hooks)
	}
}

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewEngine creates an engine for g.
func NewEngine(g *Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:    g,
		logger:   logging.NewNop(),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the compiled graph.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Invoke runs the graph from its entry point until END. A panicking node
// aborts the run with a *NodePanicError; the state reached so far is returned.
func (e *Engine) Invoke(ctx context.Context, initial domain.State) (domain.State, error) {
	state := initial
	current := e.graph.entry

	for step := 0; current != domain.END; step++ {
		if step >= e.maxSteps {
			return state, fmt.Errorf("%w: %d", ErrStepLimit, e.maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		update, err := e.runNode(ctx, current, state)
		if err != nil {
			return state, err
		}
		state = state.Apply(update)

		next, err := e.next(ctx, current, state)
		if err != nil {
			return state, err
		}
		current = next.Next
		state = state.Apply(next.Update)
	}
	return state, nil
}

func (e *Engine) runNode(ctx context.Context, id string, state domain.State) (update domain.Update, err error) {
	fn := e.graph.nodes[id]
	e.emitNodeEnter(ctx, id)
	e.logger.Debug("node enter", "node", id)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("node panicked", "node", id, "panic", r)
			err = &NodePanicError{NodeID: id, Value: r}
		}
	}()

	update = fn(ctx, state)

	elapsed := time.Since(start)
	e.emitNodeLeave(ctx, id, update, elapsed)
	e.logger.Debug("node leave", "node", id, "fields", update.Fields(), "duration", elapsed)
	return update, nil
}

func (e *Engine) next(ctx context.Context, from string, state domain.State) (domain.Route, error) {
	if to, ok := e.graph.edges[from]; ok {
		return domain.To(to), nil
	}
	c := e.graph.routes[from]
	r := c.route(state)
	if !slices.Contains(c.targets, r.Next) {
		return r, fmt.Errorf("%w: %s -> %s", ErrInvalidRoute, from, r.Next)
	}
	e.logger.Debug("route", "from", from, "to", r.Next)
	if e.hooks.OnRoute != nil {
		e.hooks.OnRoute(ctx, &domain.RouteEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRoute},
			From:      from,
			To:        r.Next,
		})
	}
	return r, nil
}

func (e *Engine) emitNodeEnter(ctx context.Context, id string) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter},
		NodeID:    id,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, id string, u domain.Update, d time.Duration) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeLeave},
		NodeID:    id,
		Fields:    u.Fields(),
		Duration:  d,
		Failed:    u.ErrorMessage != nil,
	})
}
