package nodes

import (
	"context"

	"github.com/aretw0/querent/pkg/domain"
)

// NoDataResponse is the answer for an empty result set.
const NoDataResponse = "I found no data matching your request."

// GenerateResponse phrases the result rows as an answer. Results that were
// never produced are an error; an empty result set gets NoDataResponse. The
// model is called only when there are rows.
func (n *Nodes) GenerateResponse(ctx context.Context, s domain.State) domain.Update {
	if s.QueryResults == nil {
		return domain.Fail("No query results available to generate response.")
	}
	if len(s.QueryResults) == 0 {
		return domain.Update{FinalResponse: domain.Ptr(NoDataResponse)}
	}

	answer, err := n.generate(ctx, responsePrompt(n.Company, s.Question, domain.FormatRows(s.QueryResults)))
	if err != nil {
		n.Logger.Error("response generation failed", "node", domain.NodeGenerateResponse, "error", err)
		return domain.Fail("LLM failed to generate the final response: " + err.Error())
	}
	return domain.Update{FinalResponse: domain.Ptr(answer)}
}

// HandleError turns the recorded error into the user-facing answer.
func HandleError(_ context.Context, s domain.State) domain.Update {
	msg := s.ErrorMessage
	if msg == "" {
		msg = "An unknown error occurred."
	}
	return domain.Update{FinalResponse: domain.Ptr("Sorry, I encountered an issue: " + msg)}
}
