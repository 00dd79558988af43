package ports

import "context"

// SanitizeResult is the verdict of a content sanitizer.
type SanitizeResult struct {
	// Matched is true when a filter fired and FilteredText should be used.
	Matched bool
	// FilteredText is the redacted text. Only meaningful when Matched.
	FilteredText string
	// Diagnostics describes which filters fired.
	Diagnostics string
}

// Sanitizer inspects untrusted text in both directions.
type Sanitizer interface {
	SanitizePrompt(ctx context.Context, text string) (SanitizeResult, error)
	SanitizeResponse(ctx context.Context, text string) (SanitizeResult, error)
}
