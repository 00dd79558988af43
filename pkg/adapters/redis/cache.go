// Package redis caches query embeddings in Redis.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/pkg/ports"
)

// CachedEmbedder implements ports.Embedder on top of another Embedder,
// keeping results in Redis. Cache failures never fail an Embed call.
type CachedEmbedder struct {
	next   ports.Embedder
	client *backend.Client
	model  string
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*CachedEmbedder)

// WithTTL sets the expiration of cached vectors.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedEmbedder) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *CachedEmbedder) {
		c.prefix = prefix
	}
}

// WithModel namespaces keys by embedding model so that vectors of
// different models never mix.
func WithModel(model string) Option {
	return func(c *CachedEmbedder) {
		c.model = model
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CachedEmbedder) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClientFromURL creates a Redis client from a redis:// or rediss:// URL.
func NewClientFromURL(url string) (*backend.Client, error) {
	opts, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return backend.NewClient(opts), nil
}

// NewCachedEmbedder wraps next with a Redis cache.
func NewCachedEmbedder(next ports.Embedder, client *backend.Client, opts ...Option) *CachedEmbedder {
	c := &CachedEmbedder{
		next:   next,
		client: client,
		prefix: "querent:embedding:",
		ttl:    time.Hour,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text, or computes and stores it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jerr := json.Unmarshal(data, &vec); jerr == nil && len(vec) > 0 {
			return vec, nil
		}
		c.logger.Warn("discarding corrupt cached embedding", "key", key)
	case errors.Is(err, backend.Nil):
	default:
		c.logger.Warn("embedding cache read failed", "error", err)
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(vec)
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
	return vec, nil
}

var _ ports.Embedder = (*CachedEmbedder)(nil)
