// Package sqltext inspects SQL produced by the generative model.
package sqltext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/querent/pkg/domain"
)

// NoQuery is the token the model answers with when it cannot produce SQL.
const NoQuery = "NO_QUERY"

const (
	MsgNoQuery    = "Could not generate a SQL query for this question."
	msgInvalidSQL = "Invalid SQL generated: %s"
	msgDisallowed = "Query contains disallowed keywords: %s"
)

// Denylist holds the mutating keywords that are never executed.
var Denylist = []string{"DROP", "DELETE", "UPDATE", "INSERT", "GRANT", "TRUNCATE", "ALTER"}

var fence = regexp.MustCompile("(?is)```(?:[a-z0-9_]*)?\\s*\\n?(.*?)\\n?\\s*```")

// ExtractFromMarkdown returns the content of the first fenced block, or the
// trimmed input when there is none.
func ExtractFromMarkdown(s string) string {
	if m := fence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// Classify turns raw model output into an Outcome. The sentinel token or a
// blank answer is Refused; text lacking SELECT and FROM is Rejected.
func Classify(output string) domain.Outcome {
	if strings.Contains(output, NoQuery) || strings.TrimSpace(output) == "" {
		return domain.RefusedSQL(MsgNoQuery)
	}
	upper := strings.ToUpper(output)
	if !strings.Contains(upper, "SELECT") || !strings.Contains(upper, "FROM") {
		return domain.RejectedSQL(fmt.Sprintf(msgInvalidSQL, output))
	}
	return domain.GeneratedSQL(strings.TrimSpace(output))
}

// Vet checks a statement against the denylist before execution. Matching is
// a case-insensitive substring test over the raw text, fences included, so
// fenced content cannot hide a keyword. It is advisory and not a security
// boundary: a column named "updated_at" is refused too.
func Vet(sql string) domain.Outcome {
	if kw, found := FindDisallowed(sql); found {
		return domain.RefusedSQL(fmt.Sprintf(msgDisallowed, kw))
	}
	return domain.GeneratedSQL(ExtractFromMarkdown(sql))
}

// FindDisallowed returns the first denylisted keyword contained in sql.
func FindDisallowed(sql string) (string, bool) {
	upper := strings.ToUpper(sql)
	for _, kw := range Denylist {
		if strings.Contains(upper, kw) {
			return kw, true
		}
	}
	return "", false
}

// QualifiedTable joins the non-empty parts of project.dataset.table.
func QualifiedTable(project, dataset, table string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{project, dataset, table} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}
