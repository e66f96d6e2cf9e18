// ABOUTME: Prometheus collectors for authentication, dispatch, and streams
// ABOUTME: Implements the observer hooks exposed by the auth and mcp packages

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promptmesh"

// Metrics holds the gateway's collectors.
type Metrics struct {
	authAttempts *prometheus.CounterVec
	rpcRequests  *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	streams      prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Total number of bearer token authentication attempts",
			},
			[]string{"result"},
		),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_requests_total",
				Help:      "Total number of dispatched JSON-RPC requests",
			},
			[]string{"method", "outcome"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_request_duration_seconds",
				Help:      "JSON-RPC dispatch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_connections",
			Help:      "Number of open event streams",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.authAttempts,
		m.rpcRequests,
		m.rpcDuration,
		m.streams,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// RecordAuthAttempt counts one authentication outcome.
func (m *Metrics) RecordAuthAttempt(result string) {
	m.authAttempts.WithLabelValues(result).Inc()
}

// ObserveRPC records one dispatched request.
func (m *Metrics) ObserveRPC(method, outcome string, d time.Duration) {
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

// StreamOpened increments the open stream gauge.
func (m *Metrics) StreamOpened() {
	m.streams.Inc()
}

// StreamClosed decrements the open stream gauge.
func (m *Metrics) StreamClosed() {
	m.streams.Dec()
}

// Handler serves the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
