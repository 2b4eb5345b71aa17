// Package metrics defines the Prometheus collectors for searches and the
// HTTP API and exposes a handler for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes recorded in pdfterms_searches_total.
const (
	OutcomeMatch       = "match"
	OutcomeNoMatch     = "no_match"
	OutcomeUnavailable = "unavailable"
	OutcomeCanceled    = "canceled"
	OutcomeError       = "error"
)

// Metrics holds all Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchesTotal        *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	PagesScannedTotal    *prometheus.CounterVec
	PagesMatchedTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfterms_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfterms_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdfterms_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfterms_searches_total",
				Help: "Total searches by mode and outcome (match, no_match, unavailable, canceled, error).",
			},
			[]string{"mode", "outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfterms_search_latency_seconds",
				Help:    "Document search latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),
		PagesScannedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfterms_pages_scanned_total",
				Help: "Total pages evaluated against a query.",
			},
			[]string{"mode"},
		),
		PagesMatchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfterms_pages_matched_total",
				Help: "Total pages that matched a query.",
			},
			[]string{"mode"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchesTotal,
		m.SearchLatency,
		m.PagesScannedTotal,
		m.PagesMatchedTotal,
	)
	return m
}

// ObserveSearch records one finished search.
func (m *Metrics) ObserveSearch(mode, outcome string, scanned, matched int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(mode, outcome).Inc()
	m.SearchLatency.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.PagesScannedTotal.WithLabelValues(mode).Add(float64(scanned))
	m.PagesMatchedTotal.WithLabelValues(mode).Add(float64(matched))
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler returns the scrape handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
