package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the classifier's Prometheus collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	latency     prometheus.Histogram
	predictions *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_classify_requests_total",
			Help: "Classification requests by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "complaint_classify_duration_seconds",
			Help:    "Time spent producing a classification.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_predictions_total",
			Help: "Predicted departments.",
		}, []string{"department"}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.predictions)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// reject counts a request that never reached the model; it has no latency sample.
func (m *Metrics) reject() {
	m.requests.WithLabelValues("invalid").Inc()
}

func (m *Metrics) observe(outcome, department string, elapsed time.Duration) {
	m.requests.WithLabelValues(outcome).Inc()
	m.latency.Observe(elapsed.Seconds())
	if department != "" {
		m.predictions.WithLabelValues(department).Inc()
	}
}
