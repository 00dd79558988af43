package nodes_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/querent/internal/nodes"
	"github.com/aretw0/querent/internal/retrieval"
	"github.com/aretw0/querent/internal/runtime"
	"github.com/aretw0/querent/internal/testutils"
	"github.com/aretw0/querent/pkg/domain"
	"github.com/aretw0/querent/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// scriptedModel answers each prompt kind with a fixed reply.
func scriptedModel(intent, sql, answer string) *testutils.MockGenerator {
	gen := new(testutils.MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Classify the user's query")
	})).Return(intent, nil)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "You are an expert SQL generator")
	})).Return(sql, nil)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "You are a helpful assistant")
	})).Return(answer, nil)
	return gen
}

func passThroughSanitizer() *testutils.MockSanitizer {
	san := new(testutils.MockSanitizer)
	san.On("SanitizePrompt", mock.Anything, mock.Anything).Return(ports.SanitizeResult{}, nil)
	san.On("SanitizeResponse", mock.Anything, mock.Anything).Return(ports.SanitizeResult{}, nil)
	return san
}

type fixture struct {
	gen  *testutils.MockGenerator
	emb  *testutils.MockEmbedder
	srch *testutils.MockSearcher
	eng  *testutils.MockQueryEngine
	san  *testutils.MockSanitizer
	path []string
}

func (f *fixture) run(t *testing.T, question string) domain.State {
	t.Helper()
	lookup, err := retrieval.LoadLookup(strings.NewReader(testutils.SchemaLookupJSON), nil)
	require.NoError(t, err)

	n := nodes.New(nodes.Deps{
		Generator: f.gen,
		Retriever: retrieval.NewRetriever(f.emb, f.srch, lookup),
		Engine:    f.eng,
		Sanitizer: f.san,
		Index:     ports.IndexRef{Endpoint: "endpoint", DeployedIndexID: "deployed"},
		Company:   "Acme",
		Tables:    nodes.Tables{Project: "acme", Dataset: "retail"},
	})
	g, err := nodes.Workflow(n)
	require.NoError(t, err)

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) { f.path = append(f.path, e.NodeID) },
	}
	out, err := runtime.NewEngine(g, runtime.WithLifecycleHooks(hooks)).Invoke(context.Background(), domain.NewState(question))
	require.NoError(t, err)
	return out
}

func newFixture(gen *testutils.MockGenerator) *fixture {
	return &fixture{
		gen:  gen,
		emb:  new(testutils.MockEmbedder),
		srch: new(testutils.MockSearcher),
		eng:  new(testutils.MockQueryEngine),
		san:  passThroughSanitizer(),
	}
}

func TestWorkflow_StoresInSingapore(t *testing.T) {
	f := newFixture(scriptedModel(
		"DATABASE_QUERY",
		"SELECT COUNT(*) AS store_count FROM acme.retail.stores WHERE LOWER(city) = LOWER('Singapore')",
		"There are 3 stores in Singapore.",
	))
	f.emb.On("Embed", mock.Anything, "How many stores are in Singapore?").Return([]float32{1, 0, 0}, nil)
	f.srch.On("Search", mock.Anything, mock.Anything, mock.Anything, retrieval.DefaultK).
		Return([]ports.Neighbor{{ID: "stores", Distance: 0.05}}, nil)
	f.eng.On("Run", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "acme.retail.stores")
	})).Return([]domain.Row{domain.NewRow([]string{"store_count"}, []any{int64(3)})}, nil)

	out := f.run(t, "How many stores are in Singapore?")

	assert.Equal(t, domain.IntentDatabaseQuery, out.Intent)
	assert.Contains(t, out.SchemaContext, "stores")
	assert.Contains(t, out.SQLQuery, "SELECT")
	assert.Contains(t, out.SQLQuery, "FROM")
	assert.Contains(t, out.SQLQuery, "acme.retail.stores")
	require.Len(t, out.QueryResults, 1)
	assert.NotEmpty(t, out.FinalResponse)
	assert.NotContains(t, out.FinalResponse, "SQL")
	assert.Empty(t, out.ErrorMessage)
	assert.True(t, out.ResponseSafety.Safe)
	assert.Equal(t, []string{
		domain.NodeSanitizePrompt, domain.NodeClassifyIntent, domain.NodeRetrieveSchema,
		domain.NodeGenerateSQL, domain.NodeExecuteSQL, domain.NodeGenerateResponse,
		domain.NodeSanitizeResponse,
	}, f.path)
}

func TestWorkflow_GeneralQuestionSkipsDatabase(t *testing.T) {
	for _, label := range []string{"GENERAL_QUESTION", "SMALL_TALK"} {
		t.Run(label, func(t *testing.T) {
			f := newFixture(scriptedModel(label, "", ""))

			out := f.run(t, "Just saying hi")

			assert.Equal(t, domain.IntentGeneralQuestion, out.Intent)
			assert.Equal(t, nodes.NoDataResponse, out.FinalResponse)
			assert.NotContains(t, f.path, domain.NodeRetrieveSchema)
			assert.NotContains(t, f.path, domain.NodeGenerateSQL)
			assert.NotContains(t, f.path, domain.NodeExecuteSQL)
			f.emb.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
			f.eng.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		})
	}
}

func TestWorkflow_RefusedSQLEndsInErrorHandler(t *testing.T) {
	f := newFixture(scriptedModel("DATABASE_QUERY", "SELECT 1 FROM acme.retail.stores; DELETE FROM acme.retail.stores", ""))
	f.emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	f.srch.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]ports.Neighbor{{ID: "stores"}}, nil)

	out := f.run(t, "Remove every store")

	assert.Equal(t, "Sorry, I encountered an issue: Query contains disallowed keywords: DELETE", out.FinalResponse)
	assert.Equal(t, domain.NodeHandleError, f.path[len(f.path)-1])
	f.eng.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestWorkflow_NoQueryEndsInErrorHandler(t *testing.T) {
	f := newFixture(scriptedModel("DATABASE_QUERY", "NO_QUERY", ""))
	f.emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	f.srch.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	out := f.run(t, "What is the meaning of sales?")

	assert.Contains(t, out.SchemaContext, "Use general knowledge of tables")
	assert.Equal(t, "Sorry, I encountered an issue: Could not generate a SQL query for this question.", out.FinalResponse)
	assert.NotContains(t, f.path, domain.NodeExecuteSQL)
}

func TestWorkflow_SanitizerFailureShortCircuits(t *testing.T) {
	gen := new(testutils.MockGenerator)
	f := newFixture(gen)
	f.san = new(testutils.MockSanitizer)
	f.san.On("SanitizePrompt", mock.Anything, mock.Anything).Return(ports.SanitizeResult{}, errors.New("unreachable"))

	out := f.run(t, "How many stores?")

	assert.Equal(t, "Sorry, I encountered an issue: Sanitization process error: unreachable", out.FinalResponse)
	assert.Equal(t, []string{domain.NodeSanitizePrompt, domain.NodeClassifyIntent, domain.NodeHandleError}, f.path)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestWorkflow_ExecutionErrorIsReported(t *testing.T) {
	f := newFixture(scriptedModel("DATABASE_QUERY", "SELECT x FROM acme.retail.stores", ""))
	f.emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	f.srch.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]ports.Neighbor{{ID: "stores"}}, nil)
	f.eng.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New("column x not found"))

	out := f.run(t, "x per store")

	assert.Equal(t, "Sorry, I encountered an issue: Failed to execute query: column x not found", out.FinalResponse)
	assert.Nil(t, out.QueryResults)
}
