package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/querent/internal/nodes"
	"github.com/aretw0/querent/internal/presentation/graph"
	"github.com/aretw0/querent/internal/runtime"
	"github.com/aretw0/querent/pkg/domain"
)

func noop(_ context.Context, _ domain.State) domain.Update { return domain.Update{} }

func TestGenerateMermaid_Shapes(t *testing.T) {
	g, err := runtime.NewBuilder().
		AddNode("start-here", noop).
		AddNode(domain.NodeHandleError, noop).
		AddConditionalEdges("start-here", func(domain.State) domain.Route {
			return domain.Route{Next: domain.END}
		}, domain.NodeHandleError, domain.END).
		AddEdge(domain.NodeHandleError, domain.END).
		SetEntryPoint("start-here").
		Compile()
	require.NoError(t, err)

	got := graph.GenerateMermaid(g, nil)

	for _, want := range []string{
		"graph TD\n",
		`start_here(("start-here"))`,
		`handle_error{{"handle_error"}}`,
		`done(["END"])`,
		"start_here -.-> handle_error",
		"start_here -.-> done",
		"handle_error --> done",
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "classDef")
}

func TestGenerateMermaid_Workflow(t *testing.T) {
	g, err := nodes.Workflow(nodes.New(nodes.Deps{}))
	require.NoError(t, err)

	got := graph.GenerateMermaid(g, &graph.Overlay{
		VisitedNodes: []string{domain.NodeSanitizePrompt, domain.NodeClassifyIntent, domain.NodeSanitizePrompt},
		FailedNode:   domain.NodeClassifyIntent,
	})

	assert.Contains(t, got, `sanitize_prompt(("sanitize_prompt"))`)
	assert.Contains(t, got, "classify_intent -.-> retrieve_schema")
	assert.Contains(t, got, "sanitize_response --> done")
	assert.Equal(t, 1, strings.Count(got, "class sanitize_prompt visited;"))
	assert.Contains(t, got, "class classify_intent failed;")
}
