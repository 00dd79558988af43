package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/querent/internal/nodes"
	"github.com/aretw0/querent/internal/runtime"
	httpadapter "github.com/aretw0/querent/pkg/adapters/http"
	"github.com/aretw0/querent/pkg/domain"
)

type fakeAgent struct {
	hooks domain.LifecycleHooks
	ask   func(ctx context.Context, q string) (domain.State, error)
	asked []string
}

func (f *fakeAgent) Ask(ctx context.Context, q string) (domain.State, error) {
	f.asked = append(f.asked, q)
	if f.hooks.OnNodeEnter != nil {
		f.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
			EventBase: domain.EventBase{Type: domain.EventNodeEnter},
			NodeID:    domain.NodeSanitizePrompt,
		})
	}
	if f.ask != nil {
		return f.ask(ctx, q)
	}
	return domain.State{Question: q, FinalResponse: "There are 2 stores in Singapore."}, nil
}

func (f *fakeAgent) Graph() *runtime.Graph {
	g, err := nodes.Workflow(nodes.New(nodes.Deps{}))
	if err != nil {
		panic(err)
	}
	return g
}

func newHandler(t *testing.T, agent *fakeAgent, opts ...httpadapter.Option) http.Handler {
	t.Helper()
	h, err := httpadapter.NewHandler(agent, opts...)
	require.NoError(t, err)
	return h
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetSwagger(t *testing.T) {
	doc, err := httpadapter.GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/ask"))
}

func TestAsk(t *testing.T) {
	agent := &fakeAgent{}
	h := newHandler(t, agent)

	w := post(h, `{"question":"How many stores\u0007 are in Singapore?","run_id":"run-1"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp httpadapter.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, "There are 2 stores in Singapore.", resp.Answer)
	assert.Equal(t, []string{"How many stores\a are in Singapore?"}, agent.asked, "the question reaches the workflow unchanged")
}

func TestAsk_GeneratesRunID(t *testing.T) {
	w := post(newHandler(t, &fakeAgent{}), `{"question":"hi"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp httpadapter.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.RunID, 36)
}

func TestAsk_RejectsInvalidRequests(t *testing.T) {
	agent := &fakeAgent{}
	h := newHandler(t, agent)

	for name, body := range map[string]string{
		"missing question": `{}`,
		"empty question":   `{"question":""}`,
		"unknown field":    `{"question":"q","sql":"DROP TABLE stores"}`,
		"wrong type":       `{"question":42}`,
		"blank question":   `{"question":"   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := post(h, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, agent.asked)
}

func TestAsk_TooLarge(t *testing.T) {
	t.Setenv("QUERENT_MAX_INPUT_SIZE", "16")
	agent := &fakeAgent{}

	w := post(newHandler(t, agent), `{"question":"this question is far too long"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds")
	assert.Empty(t, agent.asked)
}

func TestAsk_RunFailure(t *testing.T) {
	agent := &fakeAgent{ask: func(context.Context, string) (domain.State, error) {
		return domain.State{}, errors.New("node exploded")
	}}

	w := post(newHandler(t, agent), `{"question":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "node exploded")
}

func TestGetGraph(t *testing.T) {
	w := httptest.NewRecorder()
	newHandler(t, &fakeAgent{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graph", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp httpadapter.GraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.NodeSanitizePrompt, resp.Entry)
	assert.Len(t, resp.Nodes, 8)
	assert.Contains(t, resp.Mermaid, "graph TD")
	assert.Contains(t, resp.Edges, httpadapter.GraphEdge{From: domain.NodeGenerateSQL, To: domain.NodeExecuteSQL, Conditional: true})
}

func TestHealthInfoAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "querent_runs_total 0\n")
	})
	h := newHandler(t, &fakeAgent{}, httpadapter.WithVersion("v1.2.3\n"), httpadapter.WithMetrics(metrics))

	for path, want := range map[string]string{
		"/health":       `"status":"ok"`,
		"/info":         `"version":"v1.2.3"`,
		"/metrics":      "querent_runs_total",
		"/openapi.yaml": "openapi: 3.0.3",
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}
}

func TestSubscribeEvents(t *testing.T) {
	streams := httpadapter.NewStreamManager()
	agent := &fakeAgent{hooks: streams.Hooks()}
	srv := httptest.NewServer(newHandler(t, agent, httpadapter.WithStreams(streams)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?run_id=run-7", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	askResp, err := http.Post(srv.URL+"/ask", "application/json",
		bytes.NewBufferString(`{"question":"How many stores?","run_id":"run-7"}`))
	require.NoError(t, err)
	askResp.Body.Close()
	require.Equal(t, http.StatusOK, askResp.StatusCode)

	var event string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: {") {
			event = lines.Text()
			break
		}
	}
	assert.Contains(t, event, `"node_id":"sanitize_prompt"`)
	assert.Contains(t, event, `"type":"node_enter"`)
}
