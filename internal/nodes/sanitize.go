package nodes

import (
	"context"
	"errors"

	"github.com/aretw0/querent/pkg/domain"
	"github.com/aretw0/querent/pkg/ports"
)

var errNoSanitizer = errors.New("content sanitizer is not available")

// SanitizePrompt runs the question through the content sanitizer. A redacted
// question replaces the original and proceeds; a sanitizer failure keeps the
// original text, flags it unsafe and records an error.
func (n *Nodes) SanitizePrompt(ctx context.Context, s domain.State) domain.Update {
	original := s.Question
	u := domain.Update{OriginalQuestion: domain.Ptr(original)}

	res, err := n.sanitizePrompt(ctx, original)
	if err != nil {
		n.Logger.Warn("prompt sanitization failed", "node", domain.NodeSanitizePrompt, "error", err)
		u.Question = domain.Ptr(original)
		u.PromptSafety = &domain.Safety{Checked: true, Safe: false, Diagnostics: err.Error()}
		u.ErrorMessage = domain.Ptr("Sanitization process error: " + err.Error())
		return u
	}

	if res.Matched && res.FilteredText != "" {
		n.Logger.Info("prompt sanitized", "node", domain.NodeSanitizePrompt, "diagnostics", res.Diagnostics)
		u.Question = domain.Ptr(res.FilteredText)
		u.PromptSafety = &domain.Safety{Checked: true, Safe: false, Diagnostics: res.Diagnostics}
		return u
	}

	u.Question = domain.Ptr(original)
	u.PromptSafety = &domain.Safety{Checked: true, Safe: !res.Matched, Diagnostics: res.Diagnostics}
	return u
}

func (n *Nodes) sanitizePrompt(ctx context.Context, text string) (res ports.SanitizeResult, err error) {
	if n.Sanitizer == nil {
		return res, errNoSanitizer
	}
	return n.Sanitizer.SanitizePrompt(ctx, text)
}

// SanitizeResponse runs the final answer through the content sanitizer. When
// a filter fires the answer is replaced by its filtered text. A failure keeps
// the answer and flags it unsafe without recording an error.
func (n *Nodes) SanitizeResponse(ctx context.Context, s domain.State) domain.Update {
	var (
		res ports.SanitizeResult
		err = errNoSanitizer
	)
	if n.Sanitizer != nil {
		res, err = n.Sanitizer.SanitizeResponse(ctx, s.FinalResponse)
	}
	if err != nil {
		n.Logger.Warn("response sanitization failed", "node", domain.NodeSanitizeResponse, "error", err)
		return domain.Update{ResponseSafety: &domain.Safety{Checked: true, Safe: false, Diagnostics: err.Error()}}
	}

	u := domain.Update{ResponseSafety: &domain.Safety{Checked: true, Safe: !res.Matched, Diagnostics: res.Diagnostics}}
	if res.Matched && res.FilteredText != "" {
		n.Logger.Info("response sanitized", "node", domain.NodeSanitizeResponse, "diagnostics", res.Diagnostics)
		u.FinalResponse = domain.Ptr(res.FilteredText)
	}
	return u
}
