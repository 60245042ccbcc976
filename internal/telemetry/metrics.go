package telemetry

import (
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for HTTP traffic and AI calls.
// Handlers receive a *Metrics explicitly; there is no ambient global.
type Metrics struct {
	registry       *prom.Registry
	requestTotal   *prom.CounterVec
	requestSeconds *prom.HistogramVec
	aiCallTotal    *prom.CounterVec
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prom.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "http_request_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"method", "route"}),
		aiCallTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "ai_calls_total",
			Help: "Total number of AI model calls",
		}, []string{"op", "success"}),
	}

	registry.MustRegister(m.requestTotal, m.requestSeconds, m.aiCallTotal)
	return m
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	m.requestTotal.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	m.requestSeconds.WithLabelValues(method, route).Observe(seconds)
}

// IncAICall records one AI model call outcome.
func (m *Metrics) IncAICall(op string, success bool) {
	m.aiCallTotal.WithLabelValues(op, fmt.Sprintf("%t", success)).Inc()
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
