package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/querent/internal/metrics"
	"github.com/aretw0/querent/pkg/domain"
)

func TestHooks(t *testing.T) {
	m := metrics.New()
	h := m.Hooks()
	ctx := context.Background()

	h.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: domain.NodeGenerateSQL})
	h.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: domain.NodeGenerateSQL})
	h.OnNodeLeave(ctx, &domain.NodeEvent{NodeID: domain.NodeGenerateSQL, Duration: 20 * time.Millisecond, Failed: true})
	h.OnRoute(ctx, &domain.RouteEvent{From: domain.NodeGenerateSQL, To: domain.NodeHandleError})

	count, err := testutil.GatherAndCount(m.Registry, "querent_node_visits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(m.Registry, "querent_node_errors_total", "querent_route_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestObserveRun(t *testing.T) {
	m := metrics.New()

	m.ObserveRun(domain.State{FinalResponse: "There are 2 stores."}, nil)
	m.ObserveRun(domain.State{ErrorMessage: "boom"}, nil)
	m.ObserveRun(domain.State{}, errors.New("panic"))
	m.ObserveTruncation(120, 50)

	body := scrape(t, m)
	assert.Contains(t, body, `querent_runs_total{outcome="answered"} 1`)
	assert.Contains(t, body, `querent_runs_total{outcome="error"} 1`)
	assert.Contains(t, body, `querent_runs_total{outcome="failed"} 1`)
	assert.Contains(t, body, "querent_result_truncations_total 1")
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(b)
}
