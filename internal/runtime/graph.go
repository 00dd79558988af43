package runtime

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/querent/pkg/domain"
)

// NodeFunc is a workflow step. It reads the state and returns the fields it
// changes. Failures are reported through Update.ErrorMessage, never returned.
type NodeFunc func(ctx context.Context, s domain.State) domain.Update

// Builder defines a workflow graph.
type Builder struct {
	nodes  map[string]NodeFunc
	order  []string
	edges  map[string]string
	routes map[string]conditional
	entry  string
	errs   []error
}

type conditional struct {
	route   domain.RouteFunc
	targets []string
}

// NewBuilder creates an empty graph definition.
func NewBuilder() *Builder {
	return &Builder{
		nodes:  make(map[string]NodeFunc),
		edges:  make(map[string]string),
		routes: make(map[string]conditional),
	}
}

// AddNode registers a node.
func (b *Builder) AddNode(id string, fn NodeFunc) *Builder {
	if _, dup := b.nodes[id]; dup {
		b.errs = append(b.errs, fmt.Errorf("node %q registered twice", id))
		return b
	}
	if id == domain.END {
		b.errs = append(b.errs, fmt.Errorf("node id %q is reserved", id))
		return b
	}
	b.nodes[id] = fn
	b.order = append(b.order, id)
	return b
}

// AddEdge adds an unconditional edge.
func (b *Builder) AddEdge(from, to string) *Builder {
	if b.hasOutgoing(from) {
		b.errs = append(b.errs, fmt.Errorf("node %q already has an outgoing edge", from))
		return b
	}
	b.edges[from] = to
	return b
}

// AddConditionalEdges routes from a node through fn. The route must pick one
// of targets.
func (b *Builder) AddConditionalEdges(from string, fn domain.RouteFunc, targets ...string) *Builder {
	if b.hasOutgoing(from) {
		b.errs = append(b.errs, fmt.Errorf("node %q already has an outgoing edge", from))
		return b
	}
	b.routes[from] = conditional{route: fn, targets: targets}
	return b
}

// SetEntryPoint sets the first node.
func (b *Builder) SetEntryPoint(id string) *Builder {
	b.entry = id
	return b
}

func (b *Builder) hasOutgoing(id string) bool {
	_, e := b.edges[id]
	_, r := b.routes[id]
	return e || r
}

// Compile validates the definition and returns an immutable Graph.
func (b *Builder) Compile() (*Graph, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.entry == "" {
		return nil, ErrNoEntryPoint
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("entry node %q: %w", b.entry, ErrUnknownNode)
	}
	known := func(id string) bool {
		_, ok := b.nodes[id]
		return ok || id == domain.END
	}
	for from, to := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("edge source %q: %w", from, ErrUnknownNode)
		}
		if !known(to) {
			return nil, fmt.Errorf("edge %s -> %s: %w", from, to, ErrUnknownNode)
		}
	}
	for from, c := range b.routes {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("route source %q: %w", from, ErrUnknownNode)
		}
		if c.route == nil || len(c.targets) == 0 {
			return nil, fmt.Errorf("route from %q has no targets", from)
		}
		for _, to := range c.targets {
			if !known(to) {
				return nil, fmt.Errorf("route %s -> %s: %w", from, to, ErrUnknownNode)
			}
		}
	}
	for _, id := range b.order {
		if !b.hasOutgoing(id) {
			return nil, fmt.Errorf("node %q: %w", id, ErrDeadEnd)
		}
	}

	g := &Graph{
		entry:  b.entry,
		order:  append([]string(nil), b.order...),
		nodes:  make(map[string]NodeFunc, len(b.nodes)),
		edges:  make(map[string]string, len(b.edges)),
		routes: make(map[string]conditional, len(b.routes)),
	}
	for k, v := range b.nodes {
		g.nodes[k] = v
	}
	for k, v := range b.edges {
		g.edges[k] = v
	}
	for k, v := range b.routes {
		g.routes[k] = conditional{route: v.route, targets: append([]string(nil), v.targets...)}
	}
	return g, nil
}

// Graph is a validated workflow.
type Graph struct {
	entry  string
	order  []string
	nodes  map[string]NodeFunc
	edges  map[string]string
	routes map[string]conditional
}

// Edge describes a transition for introspection.
type Edge struct {
	From        string
	To          string
	Conditional bool
}

// Entry returns the entry node id.
func (g *Graph) Entry() string {
	return g.entry
}

// Nodes returns node ids in registration order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// Edges returns every possible transition, sorted by source then target.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for from, to := range g.edges {
		out = append(out, Edge{From: from, To: to})
	}
	for from, c := range g.routes {
		for _, to := range c.targets {
			out = append(out, Edge{From: from, To: to, Conditional: true})
		}
	}
	pos := make(map[string]int, len(g.order)+1)
	for i, id := range g.order {
		pos[id] = i
	}
	pos[domain.END] = len(g.order)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return pos[out[i].From] < pos[out[j].From]
		}
		return pos[out[i].To] < pos[out[j].To]
	})
	return out
}
