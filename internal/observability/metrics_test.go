package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test")
	require.NotNil(t, m)
	assert.NotNil(t, m.Registry())
}

func TestNewMetricsDefaultNamespace(t *testing.T) {
	m := NewMetrics("")

	m.RecordRequest(http.MethodGet, http.StatusOK, 10*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, "gatekeeper_requests_total")
}

func TestRecordRequest(t *testing.T) {
	m := NewMetrics("test")

	m.RecordRequest(http.MethodGet, http.StatusOK, 5*time.Millisecond)
	m.RecordRequest(http.MethodGet, http.StatusOK, 7*time.Millisecond)
	m.RecordRequest(http.MethodPost, http.StatusForbidden, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `test_requests_total{method="GET",status="200"} 2`)
	assert.Contains(t, body, `test_requests_total{method="POST",status="403"} 1`)
	assert.Contains(t, body, "test_request_duration_seconds_bucket")
}

func TestSecurityCounters(t *testing.T) {
	m := NewMetrics("test")

	m.RecordHeaderApplied("X-Frame-Options")
	m.RecordHSTSApplied()
	m.RecordCSPApplied()
	m.RecordPreflight()
	m.RecordOriginDecision(true)
	m.RecordOriginDecision(false)
	m.RecordFieldSanitized()
	m.RecordKeyDerived()

	body := scrape(t, m)
	assert.Contains(t, body, `test_security_headers_applied_total{header="X-Frame-Options"} 1`)
	assert.Contains(t, body, "test_security_hsts_applied_total 1")
	assert.Contains(t, body, "test_security_csp_applied_total 1")
	assert.Contains(t, body, "test_cors_preflight_total 1")
	assert.Contains(t, body, "test_cors_allowed_total 1")
	assert.Contains(t, body, "test_cors_denied_total 1")
	assert.Contains(t, body, "test_sanitize_fields_total 1")
	assert.Contains(t, body, "test_ratelimit_keys_derived_total 1")
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}
