package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/querent"
	"github.com/aretw0/querent/internal/metrics"
	httpadapter "github.com/aretw0/querent/pkg/adapters/http"
	"github.com/aretw0/querent/pkg/domain"
)

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	ConfigPath string
	Debug      bool
	// Addr overrides the configured listen address.
	Addr    string
	Version string
}

// Serve runs the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
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

	m := metrics.New()
	streams := httpadapter.NewStreamManager()
	agentOpts := AgentOptions(cfg, svc, logger, m, streams.Hooks())
	if opts.Debug {
		agentOpts = append(agentOpts, querent.WithLifecycleHooks(createDebugHooks(logger)))
	}
	agent, err := querent.New(agentOpts...)
	if err != nil {
		return err
	}

	handler, err := httpadapter.NewHandler(observed{agent, m},
		httpadapter.WithStreams(streams),
		httpadapter.WithMetrics(m.Handler()),
		httpadapter.WithVersion(opts.Version),
		httpadapter.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Querent Server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if cerr := srv.Close(); cerr != nil {
				return errors.Join(err, cerr)
			}
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		logger.Info("Querent Server stopped gracefully")
		return nil
	}
}

// observed records the outcome of every run in m.
type observed struct {
	*querent.Agent
	m *metrics.Metrics
}

func (o observed) Ask(ctx context.Context, question string) (domain.State, error) {
	state, err := o.Agent.Ask(ctx, question)
	o.m.ObserveRun(state, err)
	return state, err
}
