// Package http exposes the agent over HTTP with a chi router. Requests are
// validated against the embedded OpenAPI document.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/internal/presentation/graph"
	"github.com/aretw0/querent/internal/runtime"
	"github.com/aretw0/querent/pkg/adapters/guard"
	"github.com/aretw0/querent/pkg/domain"
)

// Agent defines the interface for the question workflow.
type Agent interface {
	Ask(ctx context.Context, question string) (domain.State, error)
	Graph() *runtime.Graph
}

// Server serves the question API.
type Server struct {
	Agent   Agent
	Streams *StreamManager
	Version string

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks are registered on the agent.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewHandler creates a new HTTP handler for the agent.
func NewHandler(agent Agent, opts ...Option) (http.Handler, error) {
	server := &Server{Agent: agent, Version: "dev"}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager()
	}
	if server.logger == nil {
		server.logger = logging.NewNop()
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := newRequestValidator(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiYAML)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(validator.middleware)
		r.Post("/ask", server.Ask)
		r.Get("/events", server.SubscribeEvents)
		r.Get("/graph", server.GetGraph)
		r.Get("/health", server.GetHealth)
		r.Get("/info", server.GetInfo)
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Querent API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	RunID    string `json:"run_id,omitempty"`
}

// AskResponse is the body of a finished run.
type AskResponse struct {
	RunID  string       `json:"run_id"`
	Answer string       `json:"answer"`
	State  domain.State `json:"state"`
}

// GraphResponse describes the workflow topology.
type GraphResponse struct {
	Entry   string      `json:"entry"`
	Nodes   []string    `json:"nodes"`
	Edges   []GraphEdge `json:"edges"`
	Mermaid string      `json:"mermaid"`
}

type GraphEdge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Conditional bool   `json:"conditional"`
}

// Ask handles the POST /ask request.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var body AskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("Ask: Invalid request body", "error", err)
		return
	}

	// Validate Input (Global Policy). Rewriting is left to the prompt sanitizer.
	question := body.Question
	if err := guard.CheckInput(question); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid input: %v", err))
		s.logger.Warn("Ask: Input rejected", "error", err, "size", len(body.Question))
		return
	}
	if strings.TrimSpace(question) == "" {
		writeError(w, http.StatusBadRequest, domain.ErrEmptyQuestion.Error())
		return
	}

	runID := body.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	state, err := s.Agent.Ask(WithRunID(r.Context(), runID), question)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, fmt.Sprintf("An unexpected error occurred during agent execution: %v", err))
		s.logger.Error("Ask failed", "error", err, "run_id", runID)
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{RunID: runID, Answer: state.Answer(), State: state})
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Agent.Graph()
	resp := GraphResponse{
		Entry:   g.Entry(),
		Nodes:   g.Nodes(),
		Mermaid: graph.GenerateMermaid(g, nil),
	}
	for _, e := range g.Edges() {
		resp.Edges = append(resp.Edges, GraphEdge{From: e.From, To: e.To, Conditional: e.Conditional})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "querent-http",
		"version":     strings.TrimSpace(s.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles the GET /events request (SSE). Events of the run
// named by run_id are forwarded until the client disconnects.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}
	runID := r.URL.Query().Get("run_id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(runID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected", "run_id", runID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
