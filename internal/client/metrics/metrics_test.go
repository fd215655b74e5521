package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGateway(reg)

	m.Observe("list_users", "200", 20*time.Millisecond)
	m.Observe("list_users", "200", 30*time.Millisecond)
	m.Observe("delete_user", "500", time.Millisecond)
	m.SessionExpired()
	m.SetBreakerState("admin-api", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("list_users", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("delete_user", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsLost))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("admin-api")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestGateway_NilIsNoop(t *testing.T) {
	var m *Gateway
	m.Observe("x", "200", time.Second)
	m.SessionExpired()
	m.SetBreakerState("x", 1)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewGateway(reg).Observe("profile", "200", time.Millisecond)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `useradmin_api_requests_total{endpoint="profile",status="200"} 1`)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}
