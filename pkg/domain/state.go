package domain

// Safety describes the verdict of a sanitization gate.
type Safety struct {
	// Checked is false until a gate has inspected the text.
	Checked bool `json:"checked"`
	// Safe is true when the text passed through unchanged.
	Safe bool `json:"safe"`
	// Diagnostics explains a redaction or a gate failure.
	Diagnostics string `json:"diagnostics,omitempty"`
}

// State represents the snapshot of one question as it moves through the workflow.
// It is created fresh per question and discarded after a single traversal.
type State struct {
	// Question is the current, possibly sanitized, user text.
	Question string `json:"question"`
	// OriginalQuestion is the text as received, before sanitization.
	OriginalQuestion string `json:"original_question,omitempty"`
	// Intent is the classification label. Empty until classified.
	Intent Intent `json:"intent_type,omitempty"`
	// SchemaContext holds the retrieved schema descriptions.
	SchemaContext string `json:"schema_context,omitempty"`
	// SQLQuery is the generated statement.
	SQLQuery string `json:"sql_query,omitempty"`
	// QueryResults is nil until a query ran. An empty, non-nil slice means
	// the query ran and matched nothing.
	QueryResults []Row `json:"query_results"`
	// FinalResponse is the answer shown to the user.
	FinalResponse string `json:"final_response,omitempty"`
	// ErrorMessage is the first error encountered. It is sticky.
	ErrorMessage string `json:"error_message,omitempty"`

	PromptSafety   Safety `json:"prompt_safety"`
	ResponseSafety Safety `json:"response_safety"`
}

// NewState creates a clean state for a question.
func NewState(question string) State {
	return State{Question: question}
}

// Executed reports whether the executor produced a result set (possibly empty).
func (s State) Executed() bool {
	return s.QueryResults != nil
}

// Failed reports whether an error has been recorded.
func (s State) Failed() bool {
	return s.ErrorMessage != ""
}

// Answer returns the text to show the user: the final response, or the
// error message when no response was produced.
func (s State) Answer() string {
	if s.FinalResponse != "" {
		return s.FinalResponse
	}
	return s.ErrorMessage
}

// Apply merges an update into a copy of the state. Fields absent from the
// update are left untouched and no field is ever cleared. ErrorMessage keeps
// the first error: later errors are dropped.
func (s State) Apply(u Update) State {
	next := s
	if u.Question != nil {
		next.Question = *u.Question
	}
	if u.OriginalQuestion != nil {
		next.OriginalQuestion = *u.OriginalQuestion
	}
	if u.Intent != nil {
		next.Intent = *u.Intent
	}
	if u.SchemaContext != nil {
		next.SchemaContext = *u.SchemaContext
	}
	if u.SQLQuery != nil {
		next.SQLQuery = *u.SQLQuery
	}
	if u.QueryResults != nil {
		next.QueryResults = cloneRows(*u.QueryResults)
	}
	if u.FinalResponse != nil {
		next.FinalResponse = *u.FinalResponse
	}
	if u.ErrorMessage != nil && next.ErrorMessage == "" {
		next.ErrorMessage = *u.ErrorMessage
	}
	if u.PromptSafety != nil {
		next.PromptSafety = *u.PromptSafety
	}
	if u.ResponseSafety != nil {
		next.ResponseSafety = *u.ResponseSafety
	}
	return next
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}
