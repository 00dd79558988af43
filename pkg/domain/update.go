package domain

// Update is the set of fields a node changes. A nil field means "unchanged".
type Update struct {
	Question         *string
	OriginalQuestion *string
	Intent           *Intent
	SchemaContext    *string
	SQLQuery         *string
	QueryResults     *[]Row
	FinalResponse    *string
	ErrorMessage     *string
	PromptSafety     *Safety
	ResponseSafety   *Safety
}

// Ptr returns a pointer to v. It keeps Update literals short.
func Ptr[T any](v T) *T {
	return &v
}

// Fail returns an update that only records an error message.
func Fail(msg string) Update {
	return Update{ErrorMessage: &msg}
}

// Fields lists the names of the fields set in the update, using the
// state's JSON names. It is used for logging and events.
func (u Update) Fields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(u.Question != nil, "question")
	add(u.OriginalQuestion != nil, "original_question")
	add(u.Intent != nil, "intent_type")
	add(u.SchemaContext != nil, "schema_context")
	add(u.SQLQuery != nil, "sql_query")
	add(u.QueryResults != nil, "query_results")
	add(u.FinalResponse != nil, "final_response")
	add(u.ErrorMessage != nil, "error_message")
	add(u.PromptSafety != nil, "prompt_safety")
	add(u.ResponseSafety != nil, "response_safety")
	return fields
}

// IsEmpty checks if the update changes anything.
func (u Update) IsEmpty() bool {
	return len(u.Fields()) == 0
}
