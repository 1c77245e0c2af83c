package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smart_hospital_client"

// Metrics holds the client counters on a private registry so several
// instances can coexist in one process.
type Metrics struct {
	registry        *prometheus.Registry
	routeDecisions  *prometheus.CounterVec
	forcedLogouts   prometheus.Counter
	sessionActions  *prometheus.CounterVec
	staleResponses  *prometheus.CounterVec
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		routeDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_decisions_total",
			Help:      "Routing decisions by target page and session status.",
		}, []string{"page", "status"}),
		forcedLogouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_logouts_total",
			Help:      "Sessions cleared because the token carried an unusable role.",
		}),
		sessionActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_actions_total",
			Help:      "Session and dashboard actions by outcome.",
		}, []string{"action", "outcome"}),
		staleResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Completions discarded because the session moved on.",
		}, []string{"kind"}),
		requestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
	}
}

// RecordRoute counts a routing decision.
func (m *Metrics) RecordRoute(page, status string) {
	if m == nil {
		return
	}
	m.routeDecisions.WithLabelValues(page, status).Inc()
}

// RecordForcedLogout counts a session cleared for an invalid role.
func (m *Metrics) RecordForcedLogout() {
	if m == nil {
		return
	}
	m.forcedLogouts.Inc()
}

// RecordAction counts an action outcome such as ("login", "success").
func (m *Metrics) RecordAction(action, outcome string) {
	if m == nil {
		return
	}
	m.sessionActions.WithLabelValues(action, outcome).Inc()
}

// RecordStale counts a discarded late completion.
func (m *Metrics) RecordStale(kind string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(kind).Inc()
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
