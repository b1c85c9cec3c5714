// Package metrics owns the prometheus collectors for the api process
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds every collector. A nil *Manager is valid and records nothing,
// which keeps tests and tools free of registry setup
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	quotaDecisions   *prometheus.CounterVec
	quotaDegraded    prometheus.Gauge
	quotaLocal       prometheus.Gauge
	predictions      *prometheus.CounterVec
	oracleFailures   *prometheus.CounterVec
	sourceFetches    *prometheus.CounterVec
	sourceLatency    *prometheus.HistogramVec
	aggregateRecords prometheus.Histogram
}

// Option configures a Manager
type Option func(*Manager)

// WithNamespace overrides the metric namespace (default grantwise)
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithRuntime adds the go and process collectors
func WithRuntime() Option {
	return func(m *Manager) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// New builds a Manager on its own registry
func New(opts ...Option) *Manager {
	m := &Manager{
		namespace: "grantwise",
		buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		registry:  prometheus.NewRegistry(),
	}
	for _, o := range opts {
		o(m)
	}
	auto := promauto.With(m.registry)

	m.quotaDecisions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "quota", Name: "decisions_total",
		Help: "Admission decisions by backend (store, local) and outcome (allowed, denied)",
	}, []string{"backend", "outcome"})
	m.quotaDegraded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "quota", Name: "degraded",
		Help: "1 while the ledger is serving from the in-memory table",
	})
	m.quotaLocal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "quota", Name: "local_entries",
		Help: "Entries held by the in-memory table after the last sweep",
	})
	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "prediction", Name: "total",
		Help: "Predictions served by path (oracle, heuristic)",
	}, []string{"path"})
	m.oracleFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "oracle", Name: "failures_total",
		Help: "Scoring oracle failures by error class",
	}, []string{"class"})
	m.sourceFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "source", Name: "fetch_total",
		Help: "Catalog source fetches by source and outcome",
	}, []string{"source", "outcome"})
	m.sourceLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "source", Name: "fetch_seconds",
		Help: "Catalog source fetch latency", Buckets: m.buckets,
	}, []string{"source"})
	m.aggregateRecords = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "aggregate", Name: "records",
		Help:    "Records returned per aggregated search after dedupe",
		Buckets: prometheus.ExponentialBuckets(1, 2, 9),
	})
	return m
}

// Registry exposes the underlying registry
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the exposition format; nil managers serve 404
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// QuotaDecision counts one admission decision
func (m *Manager) QuotaDecision(backend string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.quotaDecisions.WithLabelValues(backend, outcome).Inc()
}

// SetDegraded flips the degraded gauge
func (m *Manager) SetDegraded(on bool) {
	if m == nil {
		return
	}
	if on {
		m.quotaDegraded.Set(1)
		return
	}
	m.quotaDegraded.Set(0)
}

// SetLocalEntries records the in-memory table size
func (m *Manager) SetLocalEntries(n int) {
	if m == nil {
		return
	}
	m.quotaLocal.Set(float64(n))
}

// Prediction counts a served prediction by path
func (m *Manager) Prediction(path string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(path).Inc()
}

// OracleFailure counts an oracle failure by class
func (m *Manager) OracleFailure(class string) {
	if m == nil {
		return
	}
	m.oracleFailures.WithLabelValues(class).Inc()
}

// SourceFetch records one source fetch
func (m *Manager) SourceFetch(source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sourceFetches.WithLabelValues(source, outcome).Inc()
	m.sourceLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

// AggregateRecords observes the size of one aggregated result
func (m *Manager) AggregateRecords(n int) {
	if m == nil {
		return
	}
	m.aggregateRecords.Observe(float64(n))
}
