// Package metrics exposes Prometheus collectors for the HTTP surface and the
// SOS pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "safewatch"

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	sosTriggersTotal     *prometheus.CounterVec
	sosDispatchDuration  prometheus.Histogram
	notificationsTotal   *prometheus.CounterVec
	notificationDuration *prometheus.HistogramVec
	rateLimitTotal       *prometheus.CounterVec
	rateLimitSwept       prometheus.Counter
}

// New registers every collector on registry. Pass prometheus.NewRegistry()
// in tests to keep them isolated.
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		sosTriggersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sos_triggers_total",
				Help:      "SOS requests by final outcome.",
			},
			[]string{"outcome"},
		),
		sosDispatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sos_dispatch_duration_seconds",
				Help:      "Wall time of one notification fan-out.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		notificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Per-contact notification sends by channel and result.",
			},
			[]string{"channel", "result"},
		),
		notificationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "notification_send_duration_seconds",
				Help:      "Latency of a single channel send.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"channel"},
		),
		rateLimitTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sos_rate_limit_decisions_total",
				Help:      "SOS limiter decisions.",
			},
			[]string{"decision"},
		),
		rateLimitSwept: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sos_rate_limit_windows_swept_total",
				Help:      "Expired limiter windows evicted from memory.",
			},
		),
	}
}

// NewDefault builds a registry that also carries the Go runtime and process
// collectors.
func NewDefault() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(registry)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) ObserveSOS(outcome string) {
	m.sosTriggersTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDispatch(duration time.Duration) {
	m.sosDispatchDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveSend(channel string, delivered bool, duration time.Duration) {
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	m.notificationsTotal.WithLabelValues(channel, result).Inc()
	m.notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveRateLimit(allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	m.rateLimitTotal.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveSweep(removed int) {
	m.rateLimitSwept.Add(float64(removed))
}
