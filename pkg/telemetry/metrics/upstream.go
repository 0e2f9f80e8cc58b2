package metrics

import (
	"strconv"
	"time"

	"macrolog-hq/ceres/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks metrics for calls the gateway makes to the
// FatSecret platform API.
//
// Metrics:
//   - ceres_upstream_requests_total: call count by operation and status
//   - ceres_upstream_request_duration_seconds: call latency histogram
//   - ceres_upstream_token_exchanges_total: OAuth token exchanges by result
//   - ceres_upstream_token_exchange_duration_seconds: exchange latency
type UpstreamMetrics struct {
	// Total upstream call count
	callsTotal *prometheus.CounterVec

	// Upstream call latency histogram
	callDuration *prometheus.HistogramVec

	// Token exchange count by result
	tokenExchangesTotal *prometheus.CounterVec

	// Token exchange latency histogram
	tokenExchangeDuration prometheus.Histogram
}

// NewUpstreamMetrics creates and registers upstream metrics with the
// provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of calls to the FatSecret platform API",
			},
			[]string{"operation", "status"},
		),

		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Latency of FatSecret platform API calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"operation"},
		),

		tokenExchangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "upstream",
				Name:      "token_exchanges_total",
				Help:      "Total number of OAuth token exchange attempts",
			},
			[]string{"result"},
		),

		tokenExchangeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "upstream",
				Name:      "token_exchange_duration_seconds",
				Help:      "Latency of OAuth token exchanges in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
	}

	registry.MustRegister(
		um.callsTotal,
		um.callDuration,
		um.tokenExchangesTotal,
		um.tokenExchangeDuration,
	)

	return um
}

// RecordCall records a call to the platform API. A status of 0 indicates
// a transport-level failure.
func (um *UpstreamMetrics) RecordCall(operation string, status int, duration time.Duration) {
	um.callsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	um.callDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTokenExchange records an OAuth token exchange attempt.
func (um *UpstreamMetrics) RecordTokenExchange(success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	um.tokenExchangesTotal.WithLabelValues(result).Inc()
	um.tokenExchangeDuration.Observe(duration.Seconds())
}
