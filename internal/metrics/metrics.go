// Package metrics exposes Prometheus counters for authentication and
// authorization outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// AuthAttempts counts logins by method (credentials, federated, signup) and outcome.
	AuthAttempts *prometheus.CounterVec

	// SessionsIssued counts issued session tokens by resulting role.
	SessionsIssued *prometheus.CounterVec

	// AuthzDenials counts rejected requests by reason (unauthenticated, forbidden_role).
	AuthzDenials *prometheus.CounterVec

	// SuperOperatorOverrides counts token issuances where the stored role was overridden.
	SuperOperatorOverrides prometheus.Counter

	// Checkouts counts orders placed through checkout by outcome.
	Checkouts *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry, with Go runtime
// and process collectors included.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := newMetrics(reg)
	m.registry = reg
	return m
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafe_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
			[]string{"method", "outcome"},
		),
		SessionsIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafe_sessions_issued_total",
				Help: "Total number of session tokens issued",
			},
			[]string{"role"},
		),
		AuthzDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafe_authz_denials_total",
				Help: "Total number of requests rejected by authorization checks",
			},
			[]string{"reason"},
		),
		SuperOperatorOverrides: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cafe_super_operator_overrides_total",
				Help: "Total number of session issuances where the super-operator override changed the role",
			},
		),
		Checkouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafe_checkouts_total",
				Help: "Total number of checkout attempts",
			},
			[]string{"outcome"},
		),
	}
}

// RecordAuth increments the attempt counter for method with the outcome
// derived from err.
func (m *Metrics) RecordAuth(method string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.AuthAttempts.WithLabelValues(method, outcome).Inc()
}

// RecordSession counts one issued token.
func (m *Metrics) RecordSession(role string) {
	if m == nil {
		return
	}
	m.SessionsIssued.WithLabelValues(role).Inc()
}

// RecordDenial counts one rejected request.
func (m *Metrics) RecordDenial(reason string) {
	if m == nil {
		return
	}
	m.AuthzDenials.WithLabelValues(reason).Inc()
}

// RecordOverride counts one super-operator override.
func (m *Metrics) RecordOverride() {
	if m == nil {
		return
	}
	m.SuperOperatorOverrides.Inc()
}

// RecordCheckout counts one checkout with the given outcome.
func (m *Metrics) RecordCheckout(outcome string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
