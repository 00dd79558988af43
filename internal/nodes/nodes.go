// Package nodes implements the steps and routes of the question workflow.
//
// Every node reads a domain.State and returns a domain.Update. Failures never
// escape a node: they are recorded in the update's ErrorMessage, which routes
// the run to HandleError.
package nodes

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/internal/sqltext"
	"github.com/aretw0/querent/pkg/ports"
)

// DefaultMaxRows bounds the rows handed to the response prompt.
const DefaultMaxRows = 50

// SchemaRetriever returns schema descriptions relevant to a question.
type SchemaRetriever interface {
	Retrieve(ctx context.Context, question string, index ports.IndexRef, k int) (string, error)
}

// Tables names the warehouse tables the SQL prompt may reference.
type Tables struct {
	Project string
	Dataset string
	Names   []string
}

// Qualified returns the fully qualified name of every table.
func (t Tables) Qualified() []string {
	out := make([]string, len(t.Names))
	for i, n := range t.Names {
		out[i] = sqltext.QualifiedTable(t.Project, t.Dataset, n)
	}
	return out
}

// Deps are the service handles used by the nodes. Any of them may be nil:
// the node that needs a missing handle records an error instead of running.
type Deps struct {
	Generator ports.Generator
	Retriever SchemaRetriever
	Engine    ports.QueryEngine
	Sanitizer ports.Sanitizer

	Index   ports.IndexRef
	TopK    int
	MaxRows int
	Company string
	Tables  Tables

	Logger *slog.Logger
	// OnTruncate is called when a result set exceeds MaxRows.
	OnTruncate func(total, limit int)
}

// Nodes binds the workflow steps to their service handles. It holds no
// per-run state and is safe for concurrent use.
type Nodes struct {
	Deps
}

// New applies defaults to deps.
func New(deps Deps) *Nodes {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.MaxRows <= 0 {
		deps.MaxRows = DefaultMaxRows
	}
	if deps.Company == "" {
		deps.Company = "the company"
	}
	if len(deps.Tables.Names) == 0 {
		deps.Tables.Names = []string{"stores", "products", "sales_transactions"}
	}
	return &Nodes{Deps: deps}
}

// sentence turns an error into a user-facing message: capitalized, with a
// final period.
func sentence(err error) string {
	msg := strings.TrimSuffix(err.Error(), ".")
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:] + "."
}
