package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the Copilot API and token exchanges.
type UpstreamMetrics struct {
	requestsTotal  *prometheus.CounterVec
	headerLatency  prometheus.Histogram
	tokenExchanges *prometheus.CounterVec
}

func newUpstreamMetrics(cfg Config, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Upstream Copilot API calls by HTTP status class",
			},
			[]string{"status"},
		),

		headerLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_header_latency_seconds",
				Help:      "Time to first response header from the upstream",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),

		tokenExchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_exchanges_total",
				Help:      "GitHub-to-Copilot token exchanges by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(um.requestsTotal, um.headerLatency, um.tokenExchanges)
	return um
}

// RecordUpstreamRequest records one upstream call.
func (um *UpstreamMetrics) RecordUpstreamRequest(statusClass string, headerLatency time.Duration) {
	um.requestsTotal.WithLabelValues(statusClass).Inc()
	um.headerLatency.Observe(headerLatency.Seconds())
}

// RecordTokenExchange records a token exchange outcome ("success" or "error").
func (um *UpstreamMetrics) RecordTokenExchange(outcome string) {
	um.tokenExchanges.WithLabelValues(outcome).Inc()
}
