// Package metrics holds the service's Prometheus collectors.
//
// All methods are safe on a nil *Metrics, so components can run without
// instrumentation in tests and in the CLI.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hazmate/internal/domain"
)

const namespace = "hazmate"

// Outcome labels for AnalysesTotal.
const (
	OutcomeSuccess       = "success"
	OutcomeUpstreamError = "upstream_error"
	OutcomeParseError    = "parse_error"
	OutcomeConfigError   = "config_error"
	OutcomeError         = "error"
)

type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Analyses        *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	ArchiveFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers all collectors on reg. Pass a fresh prometheus.NewRegistry()
// in tests to avoid duplicate registration panics.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "route"}),
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Document analyses by vendor and outcome",
		}, []string{"vendor", "outcome"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_stage_duration_seconds",
			Help:      "Time spent in each pipeline stage, including the vendor call",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"vendor", "stage"}),
		ArchiveFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_failures_total",
			Help:      "Document archive uploads that failed",
		}),
		gatherer: reg,
	}
}

// Handler serves the registry this Metrics was built on.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveStage(vendor domain.Vendor, stage domain.Stage, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(string(vendor), string(stage)).Observe(elapsed.Seconds())
}

func (m *Metrics) CountAnalysis(vendor domain.Vendor, outcome string) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(string(vendor), outcome).Inc()
}

func (m *Metrics) CountArchiveFailure() {
	if m == nil {
		return
	}
	m.ArchiveFailures.Inc()
}

// Outcome classifies an analysis error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrUpstreamRequest):
		return OutcomeUpstreamError
	case errors.Is(err, domain.ErrResponseParse):
		return OutcomeParseError
	case errors.Is(err, domain.ErrConfiguration):
		return OutcomeConfigError
	default:
		return OutcomeError
	}
}
