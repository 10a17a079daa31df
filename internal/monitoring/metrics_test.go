package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.RegisterSessionGauge(func() int { return 4 })
	m.Acquisitions.WithLabelValues("reddit", Result(nil)).Inc()
	m.Exports.WithLabelValues("csv", Result(errors.New("x"))).Inc()
	m.ObserveHTTP(http.MethodGet, "/api/view", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Acquisitions.WithLabelValues("reddit", "ok")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `sentiboard_exports_total{format="csv",result="error"} 1`)
	assert.Contains(t, body, "sentiboard_sessions_active 4")
	assert.True(t, strings.Contains(body, `sentiboard_http_requests_total{method="GET",route="/api/view",status="200"} 1`))
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.PostsLabeled.WithLabelValues("Positive", "vader").Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PostsLabeled.WithLabelValues("Positive", "vader")))
}
