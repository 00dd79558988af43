package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/querent"
	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/pkg/adapters/mcp"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	ConfigPath string
	Debug      bool
	// Transport is "stdio" or "sse".
	Transport string
	Port      int
	Version   string
}

// ServeMCP runs the MCP server on the chosen transport.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	// Logs never go to Stdout: it carries JSON-RPC on the stdio transport.
	logger := logging.New(logging.ParseLevel(cfg.Log.Level))
	if opts.Debug {
		logger = createLogger(true, "")
	}
	log.SetOutput(os.Stderr)

	svc, err := BuildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	agent, err := querent.New(AgentOptions(cfg, svc, logger, nil)...)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(agent, opts.Version, logger)

	switch opts.Transport {
	case "", "stdio":
		logger.Info("Starting Querent MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting Querent MCP Server (SSE)", "port", opts.Port)
		return srv.ServeSSE(ctx, opts.Port)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
