package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aretw0/querent"
	"github.com/aretw0/querent/internal/presentation/tui"
)

// RunOptions contains all the configuration for the question command.
type RunOptions struct {
	ConfigPath string
	Debug      bool
	Headless   bool
	// Question is the joined command-line arguments. Empty starts the
	// interactive loop.
	Question string

	Input  io.Reader
	Output *os.File
}

// Run answers the question in opts, or reads questions from Input until
// "quit" when none was given.
func Run(ctx context.Context, opts RunOptions) error {
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

	agentOpts := AgentOptions(cfg, svc, logger, nil)
	if opts.Debug {
		agentOpts = append(agentOpts, querent.WithLifecycleHooks(createDebugHooks(logger)))
	}
	agent, err := querent.New(agentOpts...)
	if err != nil {
		return err
	}

	return drive(ctx, agent, opts)
}

// drive runs the single-shot or interactive surface against any Asker.
func drive(ctx context.Context, agent querent.Asker, opts RunOptions) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	in := opts.Input
	if in == nil {
		in = os.Stdin
	}

	r := querent.NewRunner(in, out)
	r.Headless = opts.Headless
	if !opts.Headless {
		r.Renderer = querent.ContentRenderer(tui.RendererFor(out))
	}

	if q := strings.TrimSpace(opts.Question); q != "" {
		// Once already reported a broken run on out.
		_ = r.Once(ctx, agent, q)
		return nil
	}

	if !opts.Headless && tui.IsInteractive(out) {
		tui.PrintBanner(out)
	}
	return handleExecutionError(r.Run(ctx, agent))
}
