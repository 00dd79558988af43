// Package config loads the agent configuration from defaults, an optional
// YAML file, a .env file and the process environment, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the typed agent configuration.
type Config struct {
	Project string `mapstructure:"project"`
	Region  string `mapstructure:"region"`
	Dataset string `mapstructure:"dataset"`
	Company string `mapstructure:"company"`

	Model     ModelConfig     `mapstructure:"model"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Guard     GuardConfig     `mapstructure:"guard"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

type ModelConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Chat        string  `mapstructure:"chat"`
	Embedding   string  `mapstructure:"embedding"`
	Temperature float32 `mapstructure:"temperature"`
	BaseURL     string  `mapstructure:"base_url"`
}

type RetrievalConfig struct {
	// Backend is "memory" (embeddings JSONL loaded in process) or "pgvector".
	Backend         string `mapstructure:"backend"`
	IndexEndpoint   string `mapstructure:"index_endpoint"`
	DeployedIndexID string `mapstructure:"deployed_index_id"`
	SchemaLookupURI string `mapstructure:"schema_lookup_uri"`
	EmbeddingsPath  string `mapstructure:"embeddings_path"`
	DatabaseURL     string `mapstructure:"database_url"`
	TopK            int    `mapstructure:"top_k"`
}

type WarehouseConfig struct {
	Driver  string        `mapstructure:"driver"`
	DSN     string        `mapstructure:"dsn"`
	MaxRows int           `mapstructure:"max_rows"`
	Timeout time.Duration `mapstructure:"timeout"`
	Tables  []string      `mapstructure:"tables"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

type GuardConfig struct {
	Blocklist []string `mapstructure:"blocklist"`
	MaxInput  int      `mapstructure:"max_input"`
	// MaxResponse limits answers in bytes. Zero means unlimited.
	MaxResponse int `mapstructure:"max_response"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	BackendMemory   = "memory"
	BackendPgvector = "pgvector"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// envKeys maps environment variables to configuration keys. Several
// variables may feed the same key; later entries win.
var envKeys = []struct{ env, key string }{
	{"GOOGLE_CLOUD_PROJECT", "project"},
	{"GOOGLE_CLOUD_REGION", "region"},
	{"BQ_DATASET_ID", "dataset"},
	{"COMPANY_NAME", "company"},
	{"GOOGLE_API_KEY", "model.api_key"},
	{"GEMINI_API_KEY", "model.api_key"},
	{"GEMINI_MODEL_NAME", "model.chat"},
	{"EMBEDDING_MODEL_NAME", "model.embedding"},
	{"QUERENT_MODEL_TEMPERATURE", "model.temperature"},
	{"QUERENT_MODEL_BASE_URL", "model.base_url"},
	{"QUERENT_RETRIEVAL_BACKEND", "retrieval.backend"},
	{"VECTOR_SEARCH_INDEX_ENDPOINT_NAME", "retrieval.index_endpoint"},
	{"VECTOR_SEARCH_DEPLOYED_INDEX_ID", "retrieval.deployed_index_id"},
	{"SCHEMA_LOOKUP_GCS_URI", "retrieval.schema_lookup_uri"},
	{"EMBEDDINGS_GCS_JSONL_PATH", "retrieval.embeddings_path"},
	{"DATABASE_URL", "retrieval.database_url"},
	{"QUERENT_TOP_K", "retrieval.top_k"},
	{"QUERENT_WAREHOUSE_DRIVER", "warehouse.driver"},
	{"QUERENT_WAREHOUSE_DSN", "warehouse.dsn"},
	{"QUERENT_MAX_ROWS", "warehouse.max_rows"},
	{"QUERENT_WAREHOUSE_TIMEOUT", "warehouse.timeout"},
	{"QUERENT_TABLES", "warehouse.tables"},
	{"REDIS_URL", "cache.redis_url"},
	{"QUERENT_CACHE_TTL", "cache.ttl"},
	{"QUERENT_CACHE_PREFIX", "cache.prefix"},
	{"QUERENT_BLOCKLIST", "guard.blocklist"},
	{"QUERENT_MAX_INPUT_SIZE", "guard.max_input"},
	{"QUERENT_MAX_RESPONSE_SIZE", "guard.max_response"},
	{"QUERENT_ADDR", "server.addr"},
	{"QUERENT_LOG_LEVEL", "log.level"},
}

func defaults() map[string]any {
	return map[string]any{
		"company": "the company",
		"model": map[string]any{
			"chat":        "gemini-2.0-flash-001",
			"embedding":   "text-embedding-004",
			"temperature": 0.1,
		},
		"retrieval": map[string]any{
			"backend": BackendMemory,
			"top_k":   5,
		},
		"warehouse": map[string]any{
			"driver":   DriverPostgres,
			"max_rows": 50,
			"timeout":  "30s",
			"tables":   []any{"stores", "products", "sales_transactions"},
		},
		"cache": map[string]any{
			"ttl":    "24h",
			"prefix": "querent:embedding:",
		},
		"server": map[string]any{
			"addr": ":8080",
		},
		"log": map[string]any{
			"level": "info",
		},
	}
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	cfg, err := decode(defaults())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it. A .env file in the working directory is loaded when
// present and never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	raw := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		merge(raw, file)
	}

	for _, e := range envKeys {
		if v, ok := os.LookupEnv(e.env); ok && v != "" {
			set(raw, e.key, v)
		}
	}
	return decode(raw)
}

func decode(raw map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	for i, t := range cfg.Warehouse.Tables {
		cfg.Warehouse.Tables[i] = strings.TrimSpace(t)
	}
	for i, t := range cfg.Guard.Blocklist {
		cfg.Guard.Blocklist[i] = strings.TrimSpace(t)
	}
	return &cfg, nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if cur, ok := dst[k].(map[string]any); ok {
				merge(cur, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// set assigns value at a dotted key, creating intermediate maps.
func set(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Validate reports every missing or inconsistent value. Missing model
// credentials or warehouse DSN are not errors: the agent starts without
// those clients and the nodes that need them report it.
func (c *Config) Validate() error {
	var errs []error
	if c.Dataset == "" {
		errs = append(errs, errors.New("dataset is required (BQ_DATASET_ID)"))
	}
	switch c.Warehouse.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown warehouse driver %q", c.Warehouse.Driver))
	}
	if c.Guard.MaxResponse < 0 {
		errs = append(errs, fmt.Errorf("guard max_response must not be negative, got %d", c.Guard.MaxResponse))
	}
	if c.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval top_k must be positive, got %d", c.Retrieval.TopK))
	}
	if c.Warehouse.MaxRows <= 0 {
		errs = append(errs, fmt.Errorf("warehouse max_rows must be positive, got %d", c.Warehouse.MaxRows))
	}
	switch c.Retrieval.Backend {
	case BackendMemory:
	case BackendPgvector:
		if c.Retrieval.DatabaseURL == "" {
			errs = append(errs, errors.New("retrieval database_url is required for the pgvector backend (DATABASE_URL)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown retrieval backend %q", c.Retrieval.Backend))
	}
	return errors.Join(errs...)
}
