// Package runtime executes compiled workflow graphs over domain.State.
//
// A graph is built with a Builder, validated by Compile and run by Engine.Invoke.
// Nodes return domain.Update deltas that the engine merges into the state; static
// edges and conditional routes decide the next node until END is reached.
package runtime
