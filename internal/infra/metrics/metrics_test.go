package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveOperation("login", OutcomeSuccess)
	m.ObserveOperation("login", OutcomeInvalidCredentials)
	m.ObserveOperation("login", OutcomeInvalidCredentials)
	m.ObserveTokenResolution(TokenExpired)
	m.ObserveCorruptCredential()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("login", OutcomeInvalidCredentials)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenResolutions.WithLabelValues(TokenExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.corruptCredential))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveOperation("login", OutcomeSuccess)
		m.ObserveTokenResolution(TokenValid)
		m.ObserveCorruptCredential()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveOperation("register", OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `identity_operations_total{operation="register",outcome="success"} 1`)
}
