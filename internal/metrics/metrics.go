// Package metrics exposes workflow activity as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/querent/pkg/domain"
)

// Run outcome labels.
const (
	OutcomeAnswered = "answered"
	OutcomeError    = "error"
	OutcomeFailed   = "failed"
)

// Metrics holds the collectors of one agent. Each instance owns its
// registry so several agents can live in one process.
type Metrics struct {
	Registry *prometheus.Registry

	nodeVisits   *prometheus.CounterVec
	nodeErrors   *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	routes       *prometheus.CounterVec
	runs         *prometheus.CounterVec
	truncations  prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		nodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querent_node_visits_total",
				Help: "Total number of node visits",
			},
			[]string{"node_id"},
		),
		nodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querent_node_errors_total",
				Help: "Node visits that recorded an error",
			},
			[]string{"node_id"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "querent_node_duration_seconds",
				Help:    "Time spent inside each node",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"node_id"},
		),
		routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querent_route_decisions_total",
				Help: "Conditional edge decisions",
			},
			[]string{"from", "to"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querent_runs_total",
				Help: "Completed question runs by outcome",
			},
			[]string{"outcome"},
		),
		truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "querent_result_truncations_total",
			Help: "Result sets cut down to the row limit",
		}),
	}
	m.Registry.MustRegister(
		m.nodeVisits, m.nodeErrors, m.nodeDuration, m.routes, m.runs, m.truncations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns lifecycle hooks that record node and route activity.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			m.nodeDuration.WithLabelValues(e.NodeID).Observe(e.Duration.Seconds())
			if e.Failed {
				m.nodeErrors.WithLabelValues(e.NodeID).Inc()
			}
		},
		OnRoute: func(_ context.Context, e *domain.RouteEvent) {
			m.routes.WithLabelValues(e.From, e.To).Inc()
		},
	}
}

// ObserveRun records the outcome of a finished run. err is the error
// returned by the engine, if any.
func (m *Metrics) ObserveRun(s domain.State, err error) {
	switch {
	case err != nil:
		m.runs.WithLabelValues(OutcomeFailed).Inc()
	case s.Failed():
		m.runs.WithLabelValues(OutcomeError).Inc()
	default:
		m.runs.WithLabelValues(OutcomeAnswered).Inc()
	}
}

// ObserveTruncation matches the nodes OnTruncate callback.
func (m *Metrics) ObserveTruncation(total, limit int) {
	m.truncations.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
