package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and the gateway's metric
// families. One collector is created at startup and shared by the HTTP
// layer, the stream translators, and the upstream client.
type Collector struct {
	registry *prometheus.Registry

	Request  *RequestMetrics
	Stream   *StreamMetrics
	Upstream *UpstreamMetrics
}

// Config controls metric naming.
type Config struct {
	// Enabled turns metric recording on. A disabled collector still
	// serves an empty registry.
	Enabled bool

	// Namespace prefixes every metric name. Default: "copilot"
	Namespace string

	// Subsystem is the second name segment. Default: "proxy"
	Subsystem string

	// RequestDurationBuckets overrides the histogram buckets for
	// request durations. Defaults cover 100ms to 5 minutes, which is
	// the realistic spread for streamed completions.
	RequestDurationBuckets []float64
}

// NewCollector creates a collector with all metric families registered.
// A nil registry gets a fresh one.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "copilot"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "proxy"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}
	}

	return &Collector{
		registry: registry,
		Request:  newRequestMetrics(cfg, registry),
		Stream:   newStreamMetrics(cfg, registry),
		Upstream: newUpstreamMetrics(cfg, registry),
	}
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
