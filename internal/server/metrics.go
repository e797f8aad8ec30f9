package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "co2focus"

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	modelAvailable prometheus.Gauge
}

// NewMetrics registers the chart collectors plus the Go runtime collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "chart_requests_total",
				Help:      "Chart requests by figure and response status",
			},
			[]string{"figure", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "chart_request_duration_seconds",
				Help:      "Time spent building a chart response",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"figure"},
		),
		modelAvailable: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "model_available",
				Help:      "1 when the regression model loaded, 0 otherwise",
			},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.modelAvailable, collectors.NewGoCollector())
	return m
}

// Observe records one chart request.
func (m *Metrics) Observe(figure string, status int, elapsed time.Duration) {
	m.requests.With(prometheus.Labels{"figure": figure, "status": strconv.Itoa(status)}).Inc()
	m.duration.With(prometheus.Labels{"figure": figure}).Observe(elapsed.Seconds())
}

// SetModelAvailable updates the model gauge.
func (m *Metrics) SetModelAvailable(ok bool) {
	if ok {
		m.modelAvailable.Set(1)
		return
	}
	m.modelAvailable.Set(0)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the private registry, for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
