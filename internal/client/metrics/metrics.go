// Package metrics holds the Prometheus collectors of the client and a small
// HTTP server that exposes them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway instruments calls to the admin API. A nil *Gateway is valid and
// records nothing.
type Gateway struct {
	Requests     *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	BreakerState *prometheus.GaugeVec
	SessionsLost prometheus.Counter
}

func NewGateway(reg prometheus.Registerer) *Gateway {
	f := promauto.With(reg)
	return &Gateway{
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "useradmin_api_requests_total",
				Help: "Admin API requests by endpoint and outcome",
			},
			[]string{"endpoint", "status"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "useradmin_api_request_duration_seconds",
				Help:    "Admin API request latency in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
		// 0=closed, 1=half-open, 2=open
		BreakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "useradmin_api_circuit_breaker_state",
				Help: "Circuit breaker state of the admin API client (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		SessionsLost: f.NewCounter(
			prometheus.CounterOpts{
				Name: "useradmin_api_session_expired_total",
				Help: "Responses that reported an expired or invalid session token",
			},
		),
	}
}

func (m *Gateway) Observe(endpoint, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, status).Inc()
	m.Duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Gateway) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Gateway) SessionExpired() {
	if m == nil {
		return
	}
	m.SessionsLost.Inc()
}
