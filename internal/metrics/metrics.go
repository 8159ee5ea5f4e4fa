package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Registrations *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	TokensIssued  *prometheus.CounterVec
	EmailsSent    *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registration_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registration_logins_total",
			Help: "Login and token requests by outcome",
		}, []string{"outcome"}),
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registration_tokens_issued_total",
			Help: "JWTs issued by kind (access, refresh, reset)",
		}, []string{"kind"}),
		EmailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registration_emails_total",
			Help: "Outgoing e-mails by template and outcome",
		}, []string{"template", "outcome"}),
	}
}

// Registration records a registration attempt. Safe on a nil receiver.
func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

// Login records a login attempt. Safe on a nil receiver.
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// TokenIssued records an issued token. Safe on a nil receiver.
func (m *Metrics) TokenIssued(kind string) {
	if m == nil {
		return
	}
	m.TokensIssued.WithLabelValues(kind).Inc()
}

// EmailSent records an e-mail delivery attempt. Safe on a nil receiver.
func (m *Metrics) EmailSent(template, outcome string) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(template, outcome).Inc()
}
