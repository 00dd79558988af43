package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/querent"
	"github.com/aretw0/querent/internal/presentation/graph"
)

// GraphOptions configures the graph export.
type GraphOptions struct {
	ConfigPath string
	Debug      bool
	// Trace runs this question and highlights the nodes it visited.
	Trace string
}

// Graph writes the Mermaid flowchart of the workflow to w. The topology
// needs no configuration; a trace does.
func Graph(ctx context.Context, w io.Writer, opts GraphOptions) error {
	if opts.Trace == "" {
		agent, err := querent.New()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, graph.GenerateMermaid(agent.Graph(), nil))
		return err
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(opts.Debug, cfg.Log.Level)
	svc, err := BuildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	t := &trail{}
	agent, err := querent.New(AgentOptions(cfg, svc, logger, nil, t.hooks())...)
	if err != nil {
		return err
	}
	return traceGraph(ctx, w, agent, t, opts.Trace)
}

func traceGraph(ctx context.Context, w io.Writer, agent *querent.Agent, t *trail, question string) error {
	if _, err := agent.Ask(ctx, question); err != nil {
		return fmt.Errorf("trace run: %w", err)
	}
	t.mu.Lock()
	overlay := &graph.Overlay{VisitedNodes: t.visited, FailedNode: t.failed}
	t.mu.Unlock()

	_, err := io.WriteString(w, graph.GenerateMermaid(agent.Graph(), overlay))
	return err
}
