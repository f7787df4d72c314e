package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels recorded for credential attempts.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Auth counts credential endpoint traffic. A nil *Auth records nothing.
type Auth struct {
	attempts    *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	gateFailure *prometheus.CounterVec
}

// NewAuth registers the auth counters on reg.
func NewAuth(reg prometheus.Registerer) *Auth {
	m := &Auth{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "projecthub",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Credential endpoint attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "projecthub",
			Subsystem: "auth",
			Name:      "rate_limited_total",
			Help:      "Credential attempts rejected by the rate limiter.",
		}, []string{"route"}),
		gateFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "projecthub",
			Subsystem: "auth",
			Name:      "gate_rejections_total",
			Help:      "Requests rejected by the bearer token gate.",
		}, []string{"code"}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.rateLimited, m.gateFailure)
	}
	return m
}

// ObserveAttempt records one register/login/refresh attempt.
func (m *Auth) ObserveAttempt(op, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(op, outcome).Inc()
}

// ObserveRateLimited records a throttled request.
func (m *Auth) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

// ObserveGateRejection records a request the gate turned away.
func (m *Auth) ObserveGateRejection(code string) {
	if m == nil {
		return
	}
	m.gateFailure.WithLabelValues(code).Inc()
}
