package domain

import "strings"

// Intent is the classification label of a question.
type Intent string

const (
	IntentDatabaseQuery   Intent = "DATABASE_QUERY"
	IntentGeneralQuestion Intent = "GENERAL_QUESTION"
)

// Label returns the human form used in prompts and logs.
func (i Intent) Label() string {
	switch i {
	case IntentDatabaseQuery:
		return "database query"
	case IntentGeneralQuestion:
		return "general question"
	default:
		return string(i)
	}
}

// ParseIntent maps a model answer to an Intent. Anything that is not a
// database query is a general question.
func ParseIntent(s string) Intent {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.Trim(norm, "\"'`.")
	norm = strings.ReplaceAll(norm, " ", "_")
	if norm == string(IntentDatabaseQuery) {
		return IntentDatabaseQuery
	}
	return IntentGeneralQuestion
}
