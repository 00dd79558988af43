// Package retrieval resolves a question into relevant schema descriptions.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/pkg/domain"
	"github.com/aretw0/querent/pkg/ports"
)

// DefaultK is the number of neighbors fetched per question.
const DefaultK = 5

// Separator joins schema fragments.
const Separator = "\n\n---\n\n"

// DefaultTables are named in the fallback context.
var DefaultTables = []string{"stores", "products", "sales_transactions"}

// FallbackContext is used when nothing relevant was found.
func FallbackContext(tables []string) string {
	if len(tables) == 0 {
		tables = DefaultTables
	}
	return "No specific schema context found relevant to the question. Use general knowledge of tables: " +
		strings.Join(tables, ", ") + "."
}

// Retriever embeds questions and looks up their nearest schema fragments.
type Retriever struct {
	embedder ports.Embedder
	searcher ports.VectorSearcher
	lookup   ports.SchemaLookup
	tables   []string
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTables overrides the tables named in the fallback context.
func WithTables(tables ...string) Option {
	return func(r *Retriever) {
		r.tables = tables
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetriever creates a Retriever. Any collaborator may be nil; Retrieve then
// fails with the matching sentinel error.
func NewRetriever(embedder ports.Embedder, searcher ports.VectorSearcher, lookup ports.SchemaLookup, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		searcher: searcher,
		lookup:   lookup,
		tables:   DefaultTables,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the descriptions of the k fragments closest to question,
// joined by Separator. An empty lookup or no resolvable match yields the
// fallback context rather than an error. k <= 0 means DefaultK.
func (r *Retriever) Retrieve(ctx context.Context, question string, index ports.IndexRef, k int) (string, error) {
	if k <= 0 {
		k = DefaultK
	}
	if r.lookup == nil || r.lookup.Len() == 0 {
		r.logger.Warn("cannot resolve schema fragments", "error", domain.ErrEmptyLookup)
		return FallbackContext(r.tables), nil
	}
	if !index.Valid() {
		return "", domain.ErrMissingIndex
	}
	if r.embedder == nil {
		return "", domain.ErrNoEmbedder
	}
	if r.searcher == nil {
		return "", domain.ErrNoSearcher
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	neighbors, err := r.searcher.Search(ctx, index, vector, k)
	if err != nil {
		return "", fmt.Errorf("search %s: %w", index.Endpoint, err)
	}

	var docs []string
	for _, n := range neighbors {
		d, ok := r.lookup.Description(n.ID)
		if !ok {
			r.logger.Warn("no description for schema fragment", "id", n.ID)
			continue
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		r.logger.Warn("no relevant schema descriptions retrieved", "neighbors", len(neighbors))
		return FallbackContext(r.tables), nil
	}
	joined := strings.Join(docs, Separator)
	r.logger.Debug("schema context retrieved", "fragments", len(docs), "length", len(joined))
	return joined, nil
}
