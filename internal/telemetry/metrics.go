// Package telemetry owns the process metrics registry and the tracer
// provider.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flemzord/abridge/internal/provider"
)

const namespace = "abridge"

// Metrics holds every collector on a private registry, so tests can build
// as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	chunks          prometheus.Histogram
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	backendRetries  *prometheus.CounterVec
	backendState    *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
}

// NewMetrics registers all collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Summarization requests by execution path and outcome.",
		}, []string{"path", "outcome"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end summarization latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"path"}),
		chunks: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_per_request",
			Help:      "Number of chunks summarized per request.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32},
		}),
		backendCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Backend summarization attempts by outcome.",
		}, []string{"backend", "outcome"}),
		backendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Latency of a single backend attempt.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"backend"}),
		backendRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_retries_total",
			Help:      "Retries scheduled after a transient backend failure.",
		}, []string{"backend"}),
		backendState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_state",
			Help:      "Backend health state: 0 healthy, 1 cooldown, 2 dead.",
		}, []string{"backend"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest implements pipeline.Recorder.
func (m *Metrics) ObserveRequest(path string, chunks int, elapsed time.Duration, err error) {
	if path == "" {
		path = "none"
	}
	m.requests.WithLabelValues(path, provider.Kind(err)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
	if chunks > 0 {
		m.chunks.Observe(float64(chunks))
	}
}

// ObserveCall implements provider.Observer.
func (m *Metrics) ObserveCall(backend string, elapsed time.Duration, err error) {
	m.backendCalls.WithLabelValues(backend, provider.Kind(err)).Inc()
	m.backendDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// ObserveRetry implements provider.Observer.
func (m *Metrics) ObserveRetry(backend string, _ error) {
	m.backendRetries.WithLabelValues(backend).Inc()
}

// SetBackendState records the health state of a backend.
func (m *Metrics) SetBackendState(backend string, state provider.HealthState) {
	m.backendState.WithLabelValues(backend).Set(float64(state))
}

// ObserveHTTP counts one served HTTP request.
func (m *Metrics) ObserveHTTP(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Interface guard.
var _ provider.Observer = (*Metrics)(nil)
