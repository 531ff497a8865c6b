// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus collectors for provider attempts,
// research output, and the HTTP front end.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

// Filter reasons reported by the research pipeline.
const (
	ReasonEmpty    = "empty"
	ReasonSentinel = "sentinel"
)

// Metrics holds the collectors on a private registry so that several
// instances (one per test, say) never collide.
type Metrics struct {
	registry *prometheus.Registry

	providerAttempts *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	researchRecords  prometheus.Counter
	scrapeFiltered   *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proposal_provider_attempts_total",
				Help: "LLM provider attempts, labeled by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proposal_provider_latency_seconds",
				Help:    "LLM provider call latency, labeled by provider.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),
		researchRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proposal_research_records_total",
			Help: "Scrape records kept by the research pipeline.",
		}),
		scrapeFiltered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proposal_scrape_filtered_total",
				Help: "Scraped pages dropped by the validity filter, labeled by reason.",
			},
			[]string{"reason"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proposal_http_requests_total",
				Help: "HTTP requests served, labeled by route and status code.",
			},
			[]string{"route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proposal_http_request_duration_seconds",
				Help:    "HTTP request duration, labeled by route.",
				Buckets: []float64{0.01, 0.1, 1, 10, 60, 300, 600},
			},
			[]string{"route"},
		),
	}
	m.registry.MustRegister(
		m.providerAttempts,
		m.providerLatency,
		m.researchRecords,
		m.scrapeFiltered,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAttempt records one provider attempt. Nil receivers are no-ops so
// callers can run without metrics.
func (m *Metrics) ObserveAttempt(r types.ProviderResult) {
	if m == nil {
		return
	}
	p := string(r.Provider)
	m.providerAttempts.WithLabelValues(p, r.Outcome()).Inc()
	m.providerLatency.WithLabelValues(p).Observe(r.Elapsed.Seconds())
}

// ObserveRecord counts a kept research record.
func (m *Metrics) ObserveRecord() {
	if m == nil {
		return
	}
	m.researchRecords.Inc()
}

// ObserveFiltered counts a dropped scrape payload.
func (m *Metrics) ObserveFiltered(reason string) {
	if m == nil {
		return
	}
	m.scrapeFiltered.WithLabelValues(reason).Inc()
}

// ObserveHTTPRequest counts a served request and records how long it took.
func (m *Metrics) ObserveHTTPRequest(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
