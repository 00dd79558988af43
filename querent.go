package querent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/internal/nodes"
	"github.com/aretw0/querent/internal/retrieval"
	"github.com/aretw0/querent/internal/runtime"
	"github.com/aretw0/querent/pkg/domain"
	"github.com/aretw0/querent/pkg/ports"
)

// Agent is the high-level entry point of the library. It owns the compiled
// question workflow and the service handles its nodes use.
type Agent struct {
	runtime *runtime.Engine
	graph   *runtime.Graph

	deps      nodes.Deps
	embedder  ports.Embedder
	searcher  ports.VectorSearcher
	lookup    ports.SchemaLookup
	retriever nodes.SchemaRetriever
	hooks     domain.LifecycleHooks
	maxSteps  int
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithGenerator sets the generative model used for classification, SQL and answers.
func WithGenerator(g ports.Generator) Option {
	return func(a *Agent) {
		a.deps.Generator = g
	}
}

// WithEmbedder sets the embedding model used by schema retrieval.
func WithEmbedder(e ports.Embedder) Option {
	return func(a *Agent) {
		a.embedder = e
	}
}

// WithSearcher sets the vector index used by schema retrieval.
func WithSearcher(s ports.VectorSearcher) Option {
	return func(a *Agent) {
		a.searcher = s
	}
}

// WithSchemaLookup sets the table mapping fragment ids to descriptions.
func WithSchemaLookup(l ports.SchemaLookup) Option {
	return func(a *Agent) {
		a.lookup = l
	}
}

// WithRetriever replaces the embedding-based schema retriever entirely.
// WithEmbedder, WithSearcher and WithSchemaLookup are then ignored.
func WithRetriever(r nodes.SchemaRetriever) Option {
	return func(a *Agent) {
		a.retriever = r
	}
}

// WithIndex identifies the vector index to search.
func WithIndex(ref ports.IndexRef) Option {
	return func(a *Agent) {
		a.deps.Index = ref
	}
}

// WithTopK sets the number of schema fragments retrieved per question.
func WithTopK(k int) Option {
	return func(a *Agent) {
		a.deps.TopK = k
	}
}

// WithQueryEngine sets the warehouse that runs generated SQL.
func WithQueryEngine(q ports.QueryEngine) Option {
	return func(a *Agent) {
		a.deps.Engine = q
	}
}

// WithSanitizer sets the content gate for prompts and responses.
func WithSanitizer(s ports.Sanitizer) Option {
	return func(a *Agent) {
		a.deps.Sanitizer = s
	}
}

// WithMaxRows bounds the rows passed to the answer prompt.
func WithMaxRows(n int) Option {
	return func(a *Agent) {
		a.deps.MaxRows = n
	}
}

// WithCompany sets the company name used in the answer prompt.
func WithCompany(name string) Option {
	return func(a *Agent) {
		a.deps.Company = name
	}
}

// WithTables sets the warehouse tables the SQL prompt may reference.
func WithTables(project, dataset string, names ...string) Option {
	return func(a *Agent) {
		a.deps.Tables = nodes.Tables{Project: project, Dataset: dataset, Names: names}
	}
}

// WithTruncationHook is called whenever a result set is cut to the row limit.
func WithTruncationHook(fn func(total, limit int)) Option {
	return func(a *Agent) {
		a.deps.OnTruncate = fn
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls chain.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.hooks = a.hooks.Chain(hooks)
	}
}

// WithMaxSteps bounds the node executions of a single run.
func WithMaxSteps(n int) Option {
	return func(a *Agent) {
		a.maxSteps = n
	}
}

// WithLogger sets a custom structured logger for the agent.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// New builds the agent and compiles its workflow. Missing service handles
// are not an error here: the node that needs one records an error at run
// time and the question is answered by the error handler.
func New(opts ...Option) (*Agent, error) {
	a := &Agent{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}

	a.deps.Logger = a.logger
	if a.retriever == nil {
		tables := a.deps.Tables.Names
		if len(tables) == 0 {
			tables = retrieval.DefaultTables
		}
		a.retriever = retrieval.NewRetriever(a.embedder, a.searcher, a.lookup,
			retrieval.WithTables(tables...),
			retrieval.WithLogger(a.logger),
		)
	}
	a.deps.Retriever = a.retriever

	g, err := nodes.Workflow(nodes.New(a.deps))
	if err != nil {
		return nil, fmt.Errorf("compile workflow: %w", err)
	}
	a.graph = g

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(a.logger),
		runtime.WithLifecycleHooks(a.hooks),
	}
	if a.maxSteps > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithMaxSteps(a.maxSteps))
	}
	a.runtime = runtime.NewEngine(g, runtimeOpts...)
	return a, nil
}

// Ask answers one question. The returned state always carries either a
// final response or an error message; err is only set when the run itself
// broke (cancellation, a panicking node, an exhausted step budget).
func (a *Agent) Ask(ctx context.Context, question string) (domain.State, error) {
	if strings.TrimSpace(question) == "" {
		return domain.State{}, domain.ErrEmptyQuestion
	}
	return a.Invoke(ctx, domain.NewState(question))
}

// Invoke runs the workflow from an explicit initial state.
func (a *Agent) Invoke(ctx context.Context, initial domain.State) (domain.State, error) {
	return a.runtime.Invoke(ctx, initial)
}

// Graph returns the compiled workflow for visualization.
func (a *Agent) Graph() *runtime.Graph {
	return a.graph
}
