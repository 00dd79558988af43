package nodes

import (
	"context"
	"strings"

	"github.com/aretw0/querent/internal/sqltext"
	"github.com/aretw0/querent/pkg/domain"
)

// GenerateSQL asks the model for a statement answering the question. Only a
// Generated outcome sets SQLQuery.
func (n *Nodes) GenerateSQL(ctx context.Context, s domain.State) domain.Update {
	if strings.TrimSpace(s.SchemaContext) == "" {
		return domain.Fail("Cannot generate SQL without schema context.")
	}

	out, err := n.generate(ctx, sqlPrompt(s.Question, s.SchemaContext, n.Tables.Qualified()))
	if err != nil {
		n.Logger.Error("sql generation failed", "node", domain.NodeGenerateSQL, "error", err)
		return domain.Fail("LLM failed to generate SQL: " + err.Error())
	}

	outcome := sqltext.Classify(out)
	n.Logger.Debug("sql generated", "node", domain.NodeGenerateSQL, "outcome", outcome.Kind, "sql", out)
	if !outcome.OK() {
		return domain.Fail(outcome.Reason)
	}
	return domain.Update{SQLQuery: domain.Ptr(outcome.SQL)}
}
