// Package metrics exposes Prometheus counters for authentication outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeAccountExists      = "account_exists"
	OutcomeNotAuthenticated   = "not_authenticated"
	OutcomeNotFound           = "not_found"
	OutcomeError              = "error"
)

// Token resolution labels.
const (
	TokenAbsent        = "absent"
	TokenValid         = "valid"
	TokenMalformed     = "malformed"
	TokenBadSignature  = "signature_invalid"
	TokenExpired       = "expired"
	TokenUnknownReject = "rejected"
)

// Metrics owns a dedicated registry so tests and multiple instances never collide.
type Metrics struct {
	registry          *prometheus.Registry
	operations        *prometheus.CounterVec
	tokenResolutions  *prometheus.CounterVec
	corruptCredential prometheus.Counter
}

// New registers the service collectors plus the Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "operations_total",
			Help:      "Identity operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		tokenResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "token_resolutions_total",
			Help:      "Bearer token resolutions by result.",
		}, []string{"result"}),
		corruptCredential: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "corrupt_credentials_total",
			Help:      "Stored password hashes that could not be parsed during login.",
		}),
	}

	registry.MustRegister(
		m.operations,
		m.tokenResolutions,
		m.corruptCredential,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveOperation counts one identity operation outcome. Safe on a nil receiver.
func (m *Metrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveTokenResolution counts one bearer token resolution. Safe on a nil receiver.
func (m *Metrics) ObserveTokenResolution(result string) {
	if m == nil {
		return
	}
	m.tokenResolutions.WithLabelValues(result).Inc()
}

// ObserveCorruptCredential counts one unreadable stored hash. Safe on a nil receiver.
func (m *Metrics) ObserveCorruptCredential() {
	if m == nil {
		return
	}
	m.corruptCredential.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
