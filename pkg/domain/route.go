package domain

// END is the terminal pseudo-node.
const END = "__end__"

// Route is the decision of a conditional edge: the next node and the delta
// the engine applies before moving on. Route functions never mutate state.
type Route struct {
	Next   string
	Update Update
}

// RouteFunc picks the next node from the current state.
type RouteFunc func(State) Route

// To builds a route without a delta.
func To(next string) Route {
	return Route{Next: next}
}
