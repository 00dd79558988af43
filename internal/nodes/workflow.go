package nodes

import (
	"github.com/aretw0/querent/internal/runtime"
	"github.com/aretw0/querent/pkg/domain"
)

// Workflow wires the nodes into the question graph:
//
//	sanitize_prompt -> classify_intent -> (generate_response | retrieve_schema | handle_error)
//	retrieve_schema -> generate_sql -> (execute_sql | handle_error)
//	execute_sql -> (generate_response | handle_error)
//	generate_response -> sanitize_response -> END
//	handle_error -> END
func Workflow(n *Nodes) (*runtime.Graph, error) {
	return runtime.NewBuilder().
		AddNode(domain.NodeSanitizePrompt, n.SanitizePrompt).
		AddNode(domain.NodeClassifyIntent, n.ClassifyIntent).
		AddNode(domain.NodeRetrieveSchema, n.RetrieveSchema).
		AddNode(domain.NodeGenerateSQL, n.GenerateSQL).
		AddNode(domain.NodeExecuteSQL, n.ExecuteSQL).
		AddNode(domain.NodeGenerateResponse, n.GenerateResponse).
		AddNode(domain.NodeSanitizeResponse, n.SanitizeResponse).
		AddNode(domain.NodeHandleError, HandleError).
		SetEntryPoint(domain.NodeSanitizePrompt).
		AddEdge(domain.NodeSanitizePrompt, domain.NodeClassifyIntent).
		AddConditionalEdges(domain.NodeClassifyIntent, RouteByIntent,
			domain.NodeGenerateResponse, domain.NodeRetrieveSchema, domain.NodeHandleError).
		AddEdge(domain.NodeRetrieveSchema, domain.NodeGenerateSQL).
		AddConditionalEdges(domain.NodeGenerateSQL, ShouldExecuteSQL,
			domain.NodeExecuteSQL, domain.NodeHandleError).
		AddConditionalEdges(domain.NodeExecuteSQL, ShouldGenerateResponse,
			domain.NodeGenerateResponse, domain.NodeHandleError).
		AddEdge(domain.NodeGenerateResponse, domain.NodeSanitizeResponse).
		AddEdge(domain.NodeSanitizeResponse, domain.END).
		AddEdge(domain.NodeHandleError, domain.END).
		Compile()
}
