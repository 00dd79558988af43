// Package guard is a local content sanitizer for prompts and responses.
//
// It validates input (size, UTF-8, control characters), de-identifies personal
// data by regular expression and masks configured blocked terms. A fired
// filter yields a Matched result with the rewritten text; invalid input is a
// sanitizer failure.
package guard

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/querent/pkg/ports"
)

// Sanitizer implements ports.Sanitizer.
type Sanitizer struct {
	patterns    []Pattern
	blocklist   []*regexp.Regexp
	blockTerms  []string
	maxInput    int
	maxResponse int
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithPatterns replaces DefaultPatterns.
func WithPatterns(patterns ...Pattern) Option {
	return func(s *Sanitizer) {
		s.patterns = patterns
	}
}

// WithBlocklist masks the given terms, case-insensitively.
func WithBlocklist(terms ...string) Option {
	return func(s *Sanitizer) {
		for _, t := range terms {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			s.blockTerms = append(s.blockTerms, t)
			s.blocklist = append(s.blocklist, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(t)))
		}
	}
}

// WithMaxInput overrides the prompt size limit. Zero keeps the default.
func WithMaxInput(n int) Option {
	return func(s *Sanitizer) {
		if n > 0 {
			s.maxInput = n
		}
	}
}

// WithMaxResponse limits responses. Zero means unlimited.
func WithMaxResponse(n int) Option {
	return func(s *Sanitizer) {
		s.maxResponse = n
	}
}

// New creates a Sanitizer.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{
		patterns: DefaultPatterns,
		maxInput: MaxInputSize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SanitizePrompt checks a user question.
func (s *Sanitizer) SanitizePrompt(ctx context.Context, text string) (ports.SanitizeResult, error) {
	return s.sanitize(ctx, text, s.maxInput)
}

// SanitizeResponse checks a generated answer.
func (s *Sanitizer) SanitizeResponse(ctx context.Context, text string) (ports.SanitizeResult, error) {
	return s.sanitize(ctx, text, s.maxResponse)
}

func (s *Sanitizer) sanitize(ctx context.Context, text string, limit int) (ports.SanitizeResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.SanitizeResult{}, err
	}
	clean, err := sanitizeText(text, limit)
	if err != nil {
		return ports.SanitizeResult{}, err
	}

	var diags []string
	if clean != text {
		diags = append(diags, "control characters removed")
	}

	for i, re := range s.blocklist {
		if re.MatchString(clean) {
			clean = re.ReplaceAllString(clean, "[BLOCKED]")
			diags = append(diags, "blocked term: "+s.blockTerms[i])
		}
	}

	redacted, fired := Redact(clean, s.patterns)
	if len(fired) > 0 {
		diags = append(diags, "pii: "+strings.Join(fired, ","))
	}

	if len(diags) == 0 {
		return ports.SanitizeResult{}, nil
	}
	return ports.SanitizeResult{
		Matched:      true,
		FilteredText: redacted,
		Diagnostics:  strings.Join(diags, "; "),
	}, nil
}

var _ ports.Sanitizer = (*Sanitizer)(nil)
