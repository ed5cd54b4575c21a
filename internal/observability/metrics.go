package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gatekeeper.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	headersApplied  *prometheus.CounterVec
	hstsApplied     prometheus.Counter
	cspApplied      prometheus.Counter
	corsPreflight   prometheus.Counter
	corsAllowed     prometheus.Counter
	corsDenied      prometheus.Counter
	fieldsSanitized prometheus.Counter
	keysDerived     prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a new Metrics instance backed by its own
// registry, so tests can create instances without collector
// collisions on the global default.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gatekeeper"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"method", "status"},
	)

	m.headersApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "headers_applied_total",
			Help:      "Total number of times security headers were applied",
		},
		[]string{"header"},
	)

	m.hstsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "hsts_applied_total",
			Help:      "Total number of times the HSTS header was applied",
		},
	)

	m.cspApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "csp_applied_total",
			Help:      "Total number of times the CSP header was applied",
		},
	)

	m.corsPreflight = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cors",
			Name:      "preflight_total",
			Help:      "Total number of preflight requests short-circuited",
		},
	)

	m.corsAllowed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cors",
			Name:      "allowed_total",
			Help:      "Total number of requests with an allowed origin",
		},
	)

	m.corsDenied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cors",
			Name:      "denied_total",
			Help:      "Total number of requests whose origin was not allowed",
		},
	)

	m.fieldsSanitized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sanitize",
			Name:      "fields_total",
			Help:      "Total number of fields passed through the sanitizer",
		},
	)

	m.keysDerived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "keys_derived_total",
			Help:      "Total number of rate limit keys derived",
		},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.headersApplied,
		m.hstsApplied,
		m.cspApplied,
		m.corsPreflight,
		m.corsAllowed,
		m.corsDenied,
		m.fieldsSanitized,
		m.keysDerived,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(method string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(method, statusStr).Inc()
	m.requestDuration.WithLabelValues(method, statusStr).Observe(duration.Seconds())
}

// RecordHeaderApplied records that a security header was applied.
func (m *Metrics) RecordHeaderApplied(header string) {
	m.headersApplied.WithLabelValues(header).Inc()
}

// RecordHSTSApplied records that the HSTS header was applied.
func (m *Metrics) RecordHSTSApplied() {
	m.hstsApplied.Inc()
}

// RecordCSPApplied records that the CSP header was applied.
func (m *Metrics) RecordCSPApplied() {
	m.cspApplied.Inc()
}

// RecordPreflight records a short-circuited preflight request.
func (m *Metrics) RecordPreflight() {
	m.corsPreflight.Inc()
}

// RecordOriginDecision records the outcome of an origin policy check.
func (m *Metrics) RecordOriginDecision(allowed bool) {
	if allowed {
		m.corsAllowed.Inc()
	} else {
		m.corsDenied.Inc()
	}
}

// RecordFieldSanitized records one sanitizer invocation.
func (m *Metrics) RecordFieldSanitized() {
	m.fieldsSanitized.Inc()
}

// RecordKeyDerived records one rate limit key derivation.
func (m *Metrics) RecordKeyDerived() {
	m.keysDerived.Inc()
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
