package domain

// Node identifiers of the question workflow.
const (
	NodeSanitizePrompt   = "sanitize_prompt"
	NodeClassifyIntent   = "classify_intent"
	NodeRetrieveSchema   = "retrieve_schema"
	NodeGenerateSQL      = "generate_sql"
	NodeExecuteSQL       = "execute_sql"
	NodeGenerateResponse = "generate_response"
	NodeSanitizeResponse = "sanitize_response"
	NodeHandleError      = "handle_error"
)
