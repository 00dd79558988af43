package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/querent/internal/runtime"
	"github.com/aretw0/querent/pkg/domain"
)

// Topology is the read-only view of a compiled workflow.
type Topology interface {
	Entry() string
	Nodes() []string
	Edges() []runtime.Edge
}

// Overlay contains run data to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	// FailedNode is the node that recorded the run's error, if any.
	FailedNode string
}

// GenerateMermaid produces a Mermaid flowchart of the workflow.
// Shapes:
// - Entry: ((Circle))
// - Error handler: {{Hexagon}}
// - End: ([Stadium])
// - Default: [Rectangle]
// Conditional edges are dotted. Overlay styles are applied when provided.
func GenerateMermaid(g Topology, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, id := range g.Nodes() {
		opener, closer := "[", "]"
		switch {
		case id == g.Entry():
			opener, closer = "((", "))"
		case id == domain.NodeHandleError:
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, id, closer)
	}
	fmt.Fprintf(&sb, "    %s([\"END\"])\n", sanitizeMermaidID(domain.END))

	for _, e := range g.Edges() {
		arrow := "-->"
		if e.Conditional {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.FailedNode != "" {
			fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeMermaidID(overlay.FailedNode))
		}
	}

	return sb.String()
}

// sanitizeMermaidID turns node ids into Mermaid-safe identifiers. The
// reserved "end" keyword and the leading underscores of END are avoided.
func sanitizeMermaidID(id string) string {
	if id == domain.END {
		return "done"
	}
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
