// Package mcp exposes the agent as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/internal/presentation/graph"
	"github.com/aretw0/querent/internal/runtime"
	"github.com/aretw0/querent/pkg/adapters/guard"
	"github.com/aretw0/querent/pkg/domain"
)

const graphURI = "querent://graph"

// AskArgs are the arguments of the ask_question tool.
type AskArgs struct {
	Question string `json:"question"`
}

// AskResult aligns with the HTTP AskResponse.
type AskResult struct {
	Answer string       `json:"answer" jsonschema_description:"Text to show the user"`
	State  domain.State `json:"state" jsonschema_description:"Final workflow state"`
}

// Agent defines the interface required by the MCP server.
type Agent interface {
	Ask(ctx context.Context, question string) (domain.State, error)
	Graph() *runtime.Graph
}

// Server wraps the Agent and exposes it as an MCP Server.
type Server struct {
	agent     Agent
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(agent Agent, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		agent:     agent,
		mcpServer: server.NewMCPServer("querent-mcp", strings.TrimSpace(version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool("ask_question",
		mcp.WithDescription("Answer a natural-language question about the sales data. The question is translated to SQL, run against the warehouse and summarized."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question, in plain language")),
		mcp.WithOutputSchema[AskResult](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	s.mcpServer.AddTool(mcp.NewTool("describe_workflow",
		mcp.WithDescription("Describe the question workflow as a Mermaid flowchart."),
	), s.handleDescribe)
}

func (s *Server) handleAsk(ctx context.Context, _ mcp.CallToolRequest, args AskArgs) (AskResult, error) {
	if err := guard.CheckInput(args.Question); err != nil {
		s.logger.Warn("MCP Ask: Input rejected", "error", err, "size", len(args.Question))
		return AskResult{}, fmt.Errorf("input rejected: %w", err)
	}
	if strings.TrimSpace(args.Question) == "" {
		return AskResult{}, domain.ErrEmptyQuestion
	}

	state, err := s.agent.Ask(ctx, args.Question)
	if err != nil {
		return AskResult{}, fmt.Errorf("agent execution: %w", err)
	}
	return AskResult{Answer: state.Answer(), State: state}, nil
}

func (s *Server) handleDescribe(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(graph.GenerateMermaid(s.agent.Graph(), nil)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Question Workflow",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		g := s.agent.Graph()
		jsonBytes, err := json.Marshal(map[string]any{
			"entry": g.Entry(),
			"nodes": g.Nodes(),
			"edges": g.Edges(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
