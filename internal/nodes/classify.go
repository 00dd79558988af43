package nodes

import (
	"context"

	"github.com/aretw0/querent/pkg/domain"
)

// ClassifyIntent labels the question as a database query or a general
// question. On failure the previous intent is kept (general when unset) and
// an error is recorded.
func (n *Nodes) ClassifyIntent(ctx context.Context, s domain.State) domain.Update {
	if s.Failed() {
		n.Logger.Debug("skipping classification after earlier error", "node", domain.NodeClassifyIntent)
		return domain.Update{}
	}

	answer, err := n.generate(ctx, classifyPrompt(s.Question))
	if err != nil {
		prev := s.Intent
		if prev == "" {
			prev = domain.IntentGeneralQuestion
		}
		n.Logger.Warn("intent classification failed", "node", domain.NodeClassifyIntent, "error", err)
		return domain.Update{
			Intent:       domain.Ptr(prev),
			ErrorMessage: domain.Ptr("Intent classification error: " + err.Error()),
		}
	}

	intent := domain.ParseIntent(answer)
	n.Logger.Debug("intent classified", "node", domain.NodeClassifyIntent, "intent", intent, "raw", answer)

	u := domain.Update{Intent: domain.Ptr(intent)}
	if intent == domain.IntentGeneralQuestion {
		u.QueryResults = domain.Ptr([]domain.Row{})
	}
	return u
}

func (n *Nodes) generate(ctx context.Context, prompt string) (string, error) {
	if n.Generator == nil {
		return "", domain.ErrNoGenerator
	}
	return n.Generator.Generate(ctx, prompt)
}
