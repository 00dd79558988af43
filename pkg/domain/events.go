package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventRoute     EventType = "route"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	// Fields lists the state fields changed by the node. Only set on leave.
	Fields []string `json:"fields,omitempty"`
	// Duration is the time spent inside the node. Only set on leave.
	Duration time.Duration `json:"duration,omitempty"`
	// Failed is true when the node recorded an error.
	Failed bool `json:"failed,omitempty"`
}

// RouteEvent represents a conditional-edge decision.
type RouteEvent struct {
	EventBase
	From string `json:"from"`
	To   string `json:"to"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnRoute     func(context.Context, *RouteEvent)
}

// Chain returns hooks that call h first and then other.
func (h LifecycleHooks) Chain(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter: chainNode(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeLeave: chainNode(h.OnNodeLeave, other.OnNodeLeave),
		OnRoute:     chainRoute(h.OnRoute, other.OnRoute),
	}
}

func chainNode(a, b func(context.Context, *NodeEvent)) func(context.Context, *NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainRoute(a, b func(context.Context, *RouteEvent)) func(context.Context, *RouteEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *RouteEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
