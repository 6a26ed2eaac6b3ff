// Package metrics holds the Prometheus collectors for the HTTP surface and the
// outbound provider calls.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stream_relay"

// HTTPMetrics tracks inbound requests.
type HTTPMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	InFlightGauge   prometheus.Gauge
}

// NewHTTPMetrics creates and registers HTTP metrics on the given registry.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being processed.",
		}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.InFlightGauge)
	return m
}

// Middleware records request metrics. /metrics, /health and unmatched routes
// are skipped.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/metrics" || strings.HasPrefix(route, "/health") {
			c.Next()
			return
		}

		m.InFlightGauge.Inc()
		defer m.InFlightGauge.Dec()

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// ProviderMetrics tracks calls to the streaming provider.
type ProviderMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec
}

// NewProviderMetrics creates and registers provider call metrics.
func NewProviderMetrics(reg prometheus.Registerer) *ProviderMetrics {
	m := &ProviderMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total number of calls to the streaming provider.",
		}, []string{"operation", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls to the streaming provider in seconds.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.BreakerState)
	return m
}

// Observe records one provider call. status is the HTTP status or a negative
// sentinel for transport failures. Safe on a nil receiver.
func (m *ProviderMetrics) Observe(operation string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	if status < 0 {
		label = "unavailable"
	}
	m.RequestsTotal.WithLabelValues(operation, label).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetBreakerState records the breaker state. Safe on a nil receiver.
func (m *ProviderMetrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(state)
}
