package domain

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	// Generated carries a statement ready for execution.
	Generated OutcomeKind = iota
	// Rejected means the statement is malformed.
	Rejected
	// Refused means the statement must not be produced or run.
	Refused
)

func (k OutcomeKind) String() string {
	switch k {
	case Generated:
		return "generated"
	case Rejected:
		return "rejected"
	case Refused:
		return "refused"
	default:
		return "unknown"
	}
}

// Outcome is the result of generating or vetting a SQL statement.
type Outcome struct {
	Kind OutcomeKind
	// SQL is set when Kind is Generated.
	SQL string
	// Reason is set when Kind is Rejected or Refused.
	Reason string
}

// GeneratedSQL builds a Generated outcome.
func GeneratedSQL(sql string) Outcome {
	return Outcome{Kind: Generated, SQL: sql}
}

// RejectedSQL builds a Rejected outcome.
func RejectedSQL(reason string) Outcome {
	return Outcome{Kind: Rejected, Reason: reason}
}

// RefusedSQL builds a Refused outcome.
func RefusedSQL(reason string) Outcome {
	return Outcome{Kind: Refused, Reason: reason}
}

// OK reports whether the outcome carries SQL.
func (o Outcome) OK() bool {
	return o.Kind == Generated
}
