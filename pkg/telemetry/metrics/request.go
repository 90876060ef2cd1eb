package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks the inbound HTTP surface.
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
}

func newRequestMetrics(cfg Config, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of proxied requests by endpoint, model, and status",
			},
			[]string{"endpoint", "model", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of proxied requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"endpoint", "model"},
		),

		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the per-session limiter",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration, rm.rateLimited)
	return rm
}

// RecordRequest records a completed request.
func (rm *RequestMetrics) RecordRequest(endpoint, model, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(endpoint, model, status).Inc()
	rm.requestDuration.WithLabelValues(endpoint, model).Observe(duration.Seconds())
}

// RecordRateLimited records a 429 rejection.
func (rm *RequestMetrics) RecordRateLimited(reason string) {
	rm.rateLimited.WithLabelValues(reason).Inc()
}
