package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for outgoing requests. It
// satisfies httpservice.Observer.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	FailuresTotal   *prometheus.CounterVec

	// Snapshot for plain-text summaries - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values
type MetricsSnapshot struct {
	TotalRequests int64
	TotalFailures int64
	TotalDuration float64 // sum of all request durations
}

// NewMetrics creates a metrics collector registered with reg. A nil reg
// leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restkit_requests_total",
				Help: "Total number of requests that completed a round trip",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "restkit_request_duration_seconds",
				Help:    "Request round trip duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restkit_request_failures_total",
				Help: "Total number of failed requests by reason",
			},
			[]string{"method", "reason"},
		),
	}
}

// ObserveRequest records a completed round trip
func (m *Metrics) ObserveRequest(method string, statusCode int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.mu.Unlock()
}

// ObserveFailure records a failed request
func (m *Metrics) ObserveFailure(method, reason string) {
	m.FailuresTotal.WithLabelValues(method, reason).Inc()

	m.mu.Lock()
	m.snapshot.TotalFailures++
	m.mu.Unlock()
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
