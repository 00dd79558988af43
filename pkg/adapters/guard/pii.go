package guard

import (
	"regexp"
	"strings"
)

// Pattern is a named PII detector. Matches are replaced by "[NAME]".
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

// DefaultPatterns detect common personal data. Order matters: card numbers
// are replaced before the looser phone pattern can claim their digits.
var DefaultPatterns = []Pattern{
	{Name: "EMAIL", Re: regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)},
	{Name: "CREDIT_CARD", Re: regexp.MustCompile(`\b\d(?:[ -]?\d){12,15}\b`)},
	{Name: "US_SSN", Re: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{Name: "PHONE", Re: regexp.MustCompile(`(?:\+\d{1,3}[ .\-]?)?(?:\(\d{2,4}\)[ .\-]?|\b\d{2,4}[ .\-])\d{3,4}[ .\-]\d{4}\b`)},
}

// CompilePatterns builds patterns from name -> expression pairs.
func CompilePatterns(exprs map[string]string) ([]Pattern, error) {
	out := make([]Pattern, 0, len(exprs))
	for name, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, Pattern{Name: strings.ToUpper(name), Re: re})
	}
	return out, nil
}

// Redact replaces every match of patterns and returns the names that fired.
func Redact(text string, patterns []Pattern) (string, []string) {
	var fired []string
	for _, p := range patterns {
		if !p.Re.MatchString(text) {
			continue
		}
		text = p.Re.ReplaceAllString(text, "["+p.Name+"]")
		fired = append(fired, p.Name)
	}
	return text, fired
}
