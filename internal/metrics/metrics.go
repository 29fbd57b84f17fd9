// Package metrics exposes prometheus collectors for provider chains and the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finai/internal/resilient"
)

const namespace = "finai"

// Metrics holds the application collectors
type Metrics struct {
	registry *prometheus.Registry

	providerFailures *prometheus.CounterVec
	fetchesServed    *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	ledgerTrades     *prometheus.CounterVec
}

// New creates and registers all collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_failures_total",
				Help:      "Remote provider calls that failed or returned an unusable shape",
			},
			[]string{"kind", "provider"},
		),
		fetchesServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_served_total",
				Help:      "Resilient fetches served, by the provider and source that satisfied them",
			},
			[]string{"kind", "provider", "source"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Time spent walking a provider chain",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind", "source"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "API requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		ledgerTrades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_trades_total",
				Help:      "Ledger trades by type and outcome",
			},
			[]string{"type", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.providerFailures,
		m.fetchesServed,
		m.fetchDuration,
		m.httpRequests,
		m.ledgerTrades,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ProviderFailed implements resilient.Observer
func (m *Metrics) ProviderFailed(kind, provider string) {
	m.providerFailures.WithLabelValues(kind, provider).Inc()
}

// Served implements resilient.Observer
func (m *Metrics) Served(kind, provider string, source resilient.Source, elapsed time.Duration) {
	m.fetchesServed.WithLabelValues(kind, provider, string(source)).Inc()
	m.fetchDuration.WithLabelValues(kind, string(source)).Observe(elapsed.Seconds())
}

// ObserveRequest counts one API request
func (m *Metrics) ObserveRequest(method, route string, status int) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveTrade counts one ledger trade attempt
func (m *Metrics) ObserveTrade(tradeType, outcome string) {
	m.ledgerTrades.WithLabelValues(tradeType, outcome).Inc()
}

var _ resilient.Observer = (*Metrics)(nil)
