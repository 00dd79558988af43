package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/querent"
	"github.com/aretw0/querent/internal/config"
	"github.com/aretw0/querent/internal/logging"
	"github.com/aretw0/querent/internal/testutils"
	"github.com/aretw0/querent/pkg/adapters/memory"
	"github.com/aretw0/querent/pkg/adapters/redis"
	"github.com/aretw0/querent/pkg/domain"
	"github.com/aretw0/querent/pkg/ports"
)

type fakeFiles map[string]string

func (f fakeFiles) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	content, ok := f[uri]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Dataset = "retail"
	cfg.Model.APIKey = "test-key"
	cfg.Warehouse.Driver = "sqlite3"
	cfg.Warehouse.DSN = ":memory:"
	return cfg
}

func TestBuildServices_Memory(t *testing.T) {
	cfg := testConfig()
	cfg.Retrieval.SchemaLookupURI = "gs://bucket/schema.json"
	cfg.Retrieval.EmbeddingsPath = "gs://bucket/embeddings.jsonl"
	files := fakeFiles{
		"gs://bucket/schema.json":      testutils.SchemaLookupJSON,
		"gs://bucket/embeddings.jsonl": `{"id":"stores","embedding":[1,0]}` + "\n" + `{"id":"sales","embedding":[0,1]}`,
	}

	svc, err := buildServices(context.Background(), cfg, logging.NewNop(), files)
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, 3, svc.Lookup.Len())
	require.IsType(t, &memory.Index{}, svc.Searcher)
	assert.Equal(t, 2, svc.Searcher.(*memory.Index).Len())
	assert.True(t, svc.Index.Valid())
	assert.NotNil(t, svc.Engine)
	assert.NotNil(t, svc.Sanitizer)
	assert.Same(t, svc.Generator, svc.Embedder)
}

func TestBuildServices_MissingFilesFallBack(t *testing.T) {
	cfg := testConfig()
	cfg.Retrieval.SchemaLookupURI = "gs://bucket/missing.json"
	cfg.Retrieval.EmbeddingsPath = "gs://bucket/missing.jsonl"

	svc, err := buildServices(context.Background(), cfg, logging.NewNop(), fakeFiles{})
	require.NoError(t, err)
	defer svc.Close()

	assert.Nil(t, svc.Lookup)
	assert.Nil(t, svc.Searcher)
}

func TestBuildServices_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Cache.RedisURL = "redis://" + mr.Addr()

	svc, err := buildServices(context.Background(), cfg, logging.NewNop(), fakeFiles{})
	require.NoError(t, err)
	defer svc.Close()

	assert.IsType(t, &redis.CachedEmbedder{}, svc.Embedder)
}

func TestBuildServices_BadWarehouse(t *testing.T) {
	cfg := testConfig()
	cfg.Warehouse.Driver = "oracle"

	svc, err := buildServices(context.Background(), cfg, logging.NewNop(), fakeFiles{})
	require.NoError(t, err)
	defer svc.Close()
	assert.Nil(t, svc.Engine)
}

func TestBuildServices_MissingClientsDegrade(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset = "retail"
	require.NoError(t, cfg.Validate())

	svc, err := buildServices(context.Background(), cfg, logging.NewNop(), fakeFiles{})
	require.NoError(t, err)
	defer svc.Close()

	assert.Nil(t, svc.Generator)
	assert.Nil(t, svc.Engine)
	assert.NotNil(t, svc.Sanitizer)

	model := &scriptedModel{intent: "DATABASE_QUERY", sql: "SELECT COUNT(*) FROM stores"}
	agent, err := querent.New(append(AgentOptions(cfg, svc, logging.NewNop(), nil),
		querent.WithGenerator(model),
		querent.WithRetriever(fixedSchema("Table stores(store_id INTEGER).")),
	)...)
	require.NoError(t, err)

	state, err := agent.Ask(context.Background(), "How many stores are there?")
	require.NoError(t, err)
	assert.Equal(t, "Warehouse client is not available.", state.ErrorMessage)
	assert.Equal(t, "Sorry, I encountered an issue: Warehouse client is not available.", state.Answer())
}

func TestBuildServices_NoModelCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Model.APIKey = ""
	cfg.Project = ""

	svc, err := buildServices(context.Background(), cfg, logging.NewNop(), fakeFiles{})
	require.NoError(t, err)
	defer svc.Close()

	assert.Nil(t, svc.Generator)
	assert.Nil(t, svc.Embedder)
	assert.NotNil(t, svc.Engine)

	agent, err := querent.New(AgentOptions(cfg, svc, logging.NewNop(), nil)...)
	require.NoError(t, err)
	state, err := agent.Ask(context.Background(), "How many stores are there?")
	require.NoError(t, err)
	assert.NotEmpty(t, state.ErrorMessage)
	assert.True(t, strings.HasPrefix(state.Answer(), "Sorry, I encountered an issue: "))
}

type scriptedModel struct{ intent, sql string }

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "Classify the user's query") {
		return m.intent, nil
	}
	return m.sql, nil
}

type fixedSchema string

func (f fixedSchema) Retrieve(context.Context, string, ports.IndexRef, int) (string, error) {
	return string(f), nil
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "querent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: retail\n"), 0o644))

	t.Setenv("BQ_DATASET_ID", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("QUERENT_WAREHOUSE_DSN", "")

	cfg, err := loadConfig(path)
	require.NoError(t, err, "credentials and dsn are not required to start")
	assert.Equal(t, "retail", cfg.Dataset)

	t.Setenv("QUERENT_TOP_K", "0")
	_, err = loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

type stubAsker struct{ asked []string }

func (s *stubAsker) Ask(_ context.Context, q string) (domain.State, error) {
	s.asked = append(s.asked, q)
	return domain.State{FinalResponse: "answer: " + q}, nil
}

func TestDrive(t *testing.T) {
	out, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer out.Close()

	agent := &stubAsker{}
	err = drive(context.Background(), agent, RunOptions{
		Headless: true,
		Input:    strings.NewReader("one\nquit\n"),
		Output:   out,
	})
	require.NoError(t, err)

	err = drive(context.Background(), agent, RunOptions{
		Question: "  two words ",
		Output:   out,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two words"}, agent.asked)

	written, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Contains(t, string(written), "answer: one\n")
	assert.Contains(t, string(written), "Agent Response:\nanswer: two words")
	assert.NotContains(t, string(written), "Ask a question", "no banner outside a terminal")
}

func TestGraph(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Graph(context.Background(), &buf, GraphOptions{}))
	assert.Contains(t, buf.String(), "graph TD")
	assert.NotContains(t, buf.String(), "classDef")
}

func TestTraceGraph(t *testing.T) {
	tr := &trail{}
	agent, err := querent.New(
		querent.WithGenerator(ports.GeneratorFunc(func(context.Context, string) (string, error) {
			return "", errors.New("model down")
		})),
		querent.WithLifecycleHooks(tr.hooks()),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, traceGraph(context.Background(), &buf, agent, tr, "How many stores?"))

	assert.Contains(t, buf.String(), "class sanitize_prompt visited;")
	assert.Contains(t, buf.String(), "class handle_error visited;")
	assert.Contains(t, buf.String(), "class sanitize_prompt failed;")
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.NoError(t, handleExecutionError(io.EOF))
	assert.Error(t, handleExecutionError(errors.New("boom")))
}
