package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	latencyHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	upstreamCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_upstream_requests_total",
			Help: "Calls made to the GitHub OAuth and REST endpoints",
		},
		[]string{"operation", "status"},
	)
	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "github_upstream_duration_seconds",
			Help:    "Latency of calls made to GitHub",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registerOnce sync.Once
)

// Init registers custom collectors. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestCounter, latencyHistogram, upstreamCounter, upstreamLatency)
	})
}

// ObserveRequest records metrics.
func ObserveRequest(path, method, status string, seconds float64) {
	requestCounter.WithLabelValues(path, method, status).Inc()
	latencyHistogram.WithLabelValues(path, method).Observe(seconds)
}

// ObserveUpstream records one call to GitHub. status is the HTTP status code
// or "error" when no response arrived.
func ObserveUpstream(operation, status string, seconds float64) {
	upstreamCounter.WithLabelValues(operation, status).Inc()
	upstreamLatency.WithLabelValues(operation).Observe(seconds)
}
