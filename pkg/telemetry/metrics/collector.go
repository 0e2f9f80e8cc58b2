package metrics

import (
	"time"

	"macrolog-hq/ceres/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in the gateway.
// It manages metric registration and provides a unified interface for
// recording metrics across components.
//
// Subsystems:
//   - gateway: metrics about requests the gateway serves
//   - upstream: metrics about calls the gateway makes to FatSecret
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Gateway request metrics
	gatewayMetrics *GatewayMetrics

	// Upstream call metrics
	upstreamMetrics *UpstreamMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "ceres"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.gatewayMetrics = NewGatewayMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)

	return c
}

// enabled reports whether metric recording is active. A nil Enabled
// pointer means the default, which is on.
func (c *Collector) enabled() bool {
	return c.config.Enabled == nil || *c.config.Enabled
}

// RecordRequest records metrics for a completed gateway request.
//
// Parameters:
//   - route: route pattern served (e.g., "/search", "/food/{foodID}")
//   - method: HTTP method
//   - status: HTTP status code returned to the client
//   - duration: total request duration
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.gatewayMetrics.RecordRequest(route, method, status, duration)
}

// ObserveUpstream records metrics for a call to the FatSecret platform
// API. A status of 0 indicates a transport-level failure before any
// response was received.
func (c *Collector) ObserveUpstream(operation string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordCall(operation, status, duration)
}

// ObserveTokenExchange records an OAuth token exchange attempt.
func (c *Collector) ObserveTokenExchange(success bool, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordTokenExchange(success, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
