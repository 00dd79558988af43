package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEntryPoint is returned by Compile when no entry node was set.
	ErrNoEntryPoint = errors.New("graph has no entry point")
	// ErrUnknownNode is returned when an edge or route references a missing node.
	ErrUnknownNode = errors.New("unknown node")
	// ErrDeadEnd is returned by Compile for a node without outgoing edges.
	ErrDeadEnd = errors.New("node has no outgoing edge")
	// ErrStepLimit is returned when a run exceeds the configured number of steps.
	ErrStepLimit = errors.New("step limit exceeded")
	// ErrInvalidRoute is returned when a route picks a target it did not declare.
	ErrInvalidRoute = errors.New("route picked an undeclared target")
)

// NodePanicError is returned by Invoke when a node panics.
type NodePanicError struct {
	NodeID string
	Value  any
}

func (e *NodePanicError) Error() string {
	return fmt.Sprintf("node %q panicked: %v", e.NodeID, e.Value)
}
