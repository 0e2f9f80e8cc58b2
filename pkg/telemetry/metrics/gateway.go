package metrics

import (
	"strconv"
	"time"

	"macrolog-hq/ceres/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics tracks metrics for requests the gateway serves.
//
// Metrics:
//   - ceres_gateway_requests_total: request count by route, method, status
//   - ceres_gateway_request_duration_seconds: request duration histogram
type GatewayMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request duration histogram
	requestDuration *prometheus.HistogramVec
}

// NewGatewayMetrics creates and registers gateway metrics with the
// provided registry.
func NewGatewayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GatewayMetrics {
	gm := &GatewayMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total number of requests served by the gateway",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Duration of gateway requests in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"route", "method"},
		),
	}

	registry.MustRegister(
		gm.requestsTotal,
		gm.requestDuration,
	)

	return gm
}

// RecordRequest records metrics for a completed gateway request.
func (gm *GatewayMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	gm.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	gm.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
