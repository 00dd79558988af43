package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/querent"
	"github.com/aretw0/querent/internal/config"
	"github.com/aretw0/querent/internal/metrics"
	"github.com/aretw0/querent/internal/retrieval"
	"github.com/aretw0/querent/pkg/adapters/gcs"
	"github.com/aretw0/querent/pkg/adapters/gemini"
	"github.com/aretw0/querent/pkg/adapters/guard"
	"github.com/aretw0/querent/pkg/adapters/memory"
	"github.com/aretw0/querent/pkg/adapters/pgvector"
	"github.com/aretw0/querent/pkg/adapters/redis"
	"github.com/aretw0/querent/pkg/adapters/warehouse"
	"github.com/aretw0/querent/pkg/domain"
	"github.com/aretw0/querent/pkg/ports"
)

const (
	memoryIndexEndpoint = "memory"
	memoryIndexID       = "local"
	pgvectorTable       = "schema_embeddings"
)

// Services are the collaborators built from configuration.
type Services struct {
	Generator ports.Generator
	Embedder  ports.Embedder
	Searcher  ports.VectorSearcher
	Lookup    ports.SchemaLookup
	Engine    ports.QueryEngine
	Sanitizer ports.Sanitizer
	Index     ports.IndexRef

	closers []io.Closer
}

// Close releases every connection opened by the services.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// opener resolves local paths and gs:// URIs.
type opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// BuildServices connects every collaborator named by cfg. A client that
// cannot be set up is logged and left nil, so the node that needs it
// rejects the question. Only malformed settings are returned as errors.
func BuildServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	return buildServices(ctx, cfg, logger, gcs.NewOpener())
}

func buildServices(ctx context.Context, cfg *config.Config, logger *slog.Logger, files opener) (*Services, error) {
	svc := &Services{}

	model, err := gemini.New(ctx, gemini.Config{
		APIKey:         cfg.Model.APIKey,
		Project:        cfg.Project,
		Location:       cfg.Region,
		ChatModel:      cfg.Model.Chat,
		EmbeddingModel: cfg.Model.Embedding,
		Temperature:    cfg.Model.Temperature,
		BaseURL:        cfg.Model.BaseURL,
	})
	if err != nil {
		logger.Warn("generative model unavailable", "error", err)
	} else {
		svc.Generator = model
		svc.Embedder = model
	}

	if cfg.Cache.RedisURL != "" && svc.Embedder != nil {
		client, err := redis.NewClientFromURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, client)
		svc.Embedder = redis.NewCachedEmbedder(svc.Embedder, client,
			redis.WithTTL(cfg.Cache.TTL),
			redis.WithPrefix(cfg.Cache.Prefix),
			redis.WithModel(cfg.Model.Embedding),
			redis.WithLogger(logger),
		)
	}

	if uri := cfg.Retrieval.SchemaLookupURI; uri != "" {
		lookup, err := retrieval.LoadLookupFrom(ctx, files.Open, uri, logger)
		if err != nil {
			logger.Warn("schema lookup unavailable, using fallback context", "uri", uri, "error", err)
		} else {
			svc.Lookup = lookup
		}
	}

	switch cfg.Retrieval.Backend {
	case config.BackendPgvector:
		svc.Index = ports.IndexRef{
			Endpoint:        orDefault(cfg.Retrieval.IndexEndpoint, pgvectorTable),
			DeployedIndexID: orDefault(cfg.Retrieval.DeployedIndexID, cfg.Dataset),
		}
		pool, err := pgvector.Connect(ctx, cfg.Retrieval.DatabaseURL)
		if err != nil {
			logger.Warn("vector search unavailable", "error", err)
			break
		}
		svc.closers = append(svc.closers, closerFunc(func() error { pool.Close(); return nil }))
		svc.Searcher = pgvector.New(pool)
	default:
		svc.Index = ports.IndexRef{
			Endpoint:        orDefault(cfg.Retrieval.IndexEndpoint, memoryIndexEndpoint),
			DeployedIndexID: orDefault(cfg.Retrieval.DeployedIndexID, memoryIndexID),
		}
		if path := cfg.Retrieval.EmbeddingsPath; path != "" {
			index, err := loadIndex(ctx, files, path)
			if err != nil {
				logger.Warn("embeddings unavailable", "path", path, "error", err)
			} else {
				logger.Debug("embeddings loaded", "path", path, "vectors", index.Len())
				svc.Searcher = index
			}
		}
	}

	if cfg.Warehouse.DSN == "" {
		logger.Warn("warehouse unavailable: no dsn configured", "env", "QUERENT_WAREHOUSE_DSN")
	} else {
		wh, err := warehouse.Open(cfg.Warehouse.Driver, cfg.Warehouse.DSN, warehouse.WithTimeout(cfg.Warehouse.Timeout))
		if err != nil {
			logger.Warn("warehouse unavailable", "driver", cfg.Warehouse.Driver, "error", err)
		} else {
			svc.closers = append(svc.closers, wh)
			svc.Engine = wh
		}
	}

	svc.Sanitizer = guard.New(
		guard.WithBlocklist(cfg.Guard.Blocklist...),
		guard.WithMaxInput(cfg.Guard.MaxInput),
		guard.WithMaxResponse(cfg.Guard.MaxResponse),
	)
	return svc, nil
}

func loadIndex(ctx context.Context, files opener, path string) (*memory.Index, error) {
	rc, err := files.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return memory.LoadJSONL(rc)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// AgentOptions turns services and configuration into agent options.
func AgentOptions(cfg *config.Config, svc *Services, logger *slog.Logger, m *metrics.Metrics, hooks ...domain.LifecycleHooks) []querent.Option {
	opts := []querent.Option{
		querent.WithLogger(logger),
		querent.WithGenerator(svc.Generator),
		querent.WithEmbedder(svc.Embedder),
		querent.WithSearcher(svc.Searcher),
		querent.WithSchemaLookup(svc.Lookup),
		querent.WithIndex(svc.Index),
		querent.WithTopK(cfg.Retrieval.TopK),
		querent.WithQueryEngine(svc.Engine),
		querent.WithSanitizer(svc.Sanitizer),
		querent.WithMaxRows(cfg.Warehouse.MaxRows),
		querent.WithCompany(cfg.Company),
		querent.WithTables(cfg.Project, cfg.Dataset, cfg.Warehouse.Tables...),
	}
	if m != nil {
		opts = append(opts,
			querent.WithLifecycleHooks(m.Hooks()),
			querent.WithTruncationHook(m.ObserveTruncation),
		)
	}
	for _, h := range hooks {
		opts = append(opts, querent.WithLifecycleHooks(h))
	}
	return opts
}

// loadConfig reads and validates the configuration.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat("querent.yaml"); err == nil {
			path = "querent.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}
