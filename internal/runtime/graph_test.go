package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/querent/internal/runtime"
	"github.com/aretw0/querent/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, domain.State) domain.Update { return domain.Update{} }

func TestBuilder_CompileValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() *runtime.Builder
		want  error
	}{
		{
			name:  "no entry point",
			build: func() *runtime.Builder { return runtime.NewBuilder().AddNode("a", noop).AddEdge("a", domain.END) },
			want:  runtime.ErrNoEntryPoint,
		},
		{
			name: "unknown entry",
			build: func() *runtime.Builder {
				return runtime.NewBuilder().AddNode("a", noop).AddEdge("a", domain.END).SetEntryPoint("x")
			},
			want: runtime.ErrUnknownNode,
		},
		{
			name: "unknown target",
			build: func() *runtime.Builder {
				return runtime.NewBuilder().AddNode("a", noop).AddEdge("a", "missing").SetEntryPoint("a")
			},
			want: runtime.ErrUnknownNode,
		},
		{
			name: "dead end",
			build: func() *runtime.Builder {
				return runtime.NewBuilder().AddNode("a", noop).AddNode("b", noop).AddEdge("a", "b").SetEntryPoint("a")
			},
			want: runtime.ErrDeadEnd,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Compile()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuilder_RejectsSecondOutgoingRule(t *testing.T) {
	_, err := runtime.NewBuilder().
		AddNode("a", noop).
		AddEdge("a", domain.END).
		AddConditionalEdges("a", func(domain.State) domain.Route { return domain.To(domain.END) }, domain.END).
		SetEntryPoint("a").
		Compile()
	assert.Error(t, err)
}

func TestGraph_Introspection(t *testing.T) {
	g, err := runtime.NewBuilder().
		AddNode("a", noop).
		AddNode("b", noop).
		AddNode("c", noop).
		AddConditionalEdges("a", func(domain.State) domain.Route { return domain.To("b") }, "c", "b").
		AddEdge("b", domain.END).
		AddEdge("c", domain.END).
		SetEntryPoint("a").
		Compile()
	require.NoError(t, err)

	assert.Equal(t, "a", g.Entry())
	assert.Equal(t, []string{"a", "b", "c"}, g.Nodes())
	assert.Equal(t, []runtime.Edge{
		{From: "a", To: "b", Conditional: true},
		{From: "a", To: "c", Conditional: true},
		{From: "b", To: domain.END},
		{From: "c", To: domain.END},
	}, g.Edges())
}
