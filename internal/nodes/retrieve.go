package nodes

import (
	"context"
	"errors"

	"github.com/aretw0/querent/pkg/domain"
)

var errNoRetriever = errors.New("schema retriever is not available")

// RetrieveSchema fetches the schema descriptions relevant to the question.
func (n *Nodes) RetrieveSchema(ctx context.Context, s domain.State) domain.Update {
	if n.Retriever == nil {
		return domain.Fail("Failed to retrieve schema information: " + errNoRetriever.Error())
	}
	schema, err := n.Retriever.Retrieve(ctx, s.Question, n.Index, n.TopK)
	if err != nil {
		n.Logger.Error("schema retrieval failed", "node", domain.NodeRetrieveSchema, "error", err)
		return domain.Fail("Failed to retrieve schema information: " + err.Error())
	}
	return domain.Update{SchemaContext: domain.Ptr(schema)}
}
