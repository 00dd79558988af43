// Package graph renders the compiled workflow as a Mermaid flowchart.
package graph
