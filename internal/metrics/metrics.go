// Package metrics registra las métricas Prometheus del servicio: tráfico
// HTTP más los contadores de dominio (decisiones de linking, exchanges de
// sesión, bookkeeping fallido).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los collectors del servicio. Los métodos Observe* son
// nil-safe: un *Metrics nil es un no-op, útil en tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	linkDecisions      *prometheus.CounterVec
	sessionExchanges   *prometheus.CounterVec
	triggerInvocations *prometheus.CounterVec
	bookkeepingErrors  prometheus.Counter
}

// New crea y registra los collectors sobre un registry propio.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		linkDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_decisions_total",
			Help: "Decisiones del linking engine por reason",
		}, []string{"reason"}),

		sessionExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_exchanges_total",
			Help: "Session exchanges por outcome (ok|unauthenticated|signout|signout_noop)",
		}, []string{"outcome"}),

		triggerInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trigger_invocations_total",
			Help: "Invocaciones de triggers por source y resultado",
		}, []string{"kind", "result"}),

		bookkeepingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeping_link_failures_total",
			Help: "Links best-effort descartados por error",
		}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.linkDecisions,
		m.sessionExchanges,
		m.triggerInvocations,
		m.bookkeepingErrors,
	)

	return m
}

// Handler expone el endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP registra una request terminada.
func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// ObserveLinkDecision registra una decisión del engine.
func (m *Metrics) ObserveLinkDecision(reason string) {
	if m == nil {
		return
	}
	m.linkDecisions.WithLabelValues(reason).Inc()
}

// ObserveSessionExchange registra el outcome de un exchange.
func (m *Metrics) ObserveSessionExchange(outcome string) {
	if m == nil {
		return
	}
	m.sessionExchanges.WithLabelValues(outcome).Inc()
}

// ObserveTrigger registra una invocación de trigger.
func (m *Metrics) ObserveTrigger(kind, result string) {
	if m == nil {
		return
	}
	m.triggerInvocations.WithLabelValues(kind, result).Inc()
}

// ObserveBookkeepingFailure registra un link best-effort fallido.
func (m *Metrics) ObserveBookkeepingFailure() {
	if m == nil {
		return
	}
	m.bookkeepingErrors.Inc()
}
