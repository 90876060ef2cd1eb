package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StreamMetrics tracks the translation pipeline: live streams, emitted
// events, estimated tokens, and frames that failed to decode.
type StreamMetrics struct {
	activeStreams    prometheus.Gauge
	eventsTotal      *prometheus.CounterVec
	estimatedTokens  *prometheus.CounterVec
	frameParseErrors prometheus.Counter
}

func newStreamMetrics(cfg Config, registry *prometheus.Registry) *StreamMetrics {
	sm := &StreamMetrics{
		activeStreams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_streams",
				Help:      "Number of in-flight translated streams",
			},
		),

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_events_total",
				Help:      "Outbound stream events by dialect and event type",
			},
			[]string{"dialect", "event"},
		),

		estimatedTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "estimated_tokens_total",
				Help:      "Estimated completion tokens by model",
			},
			[]string{"model"},
		),

		frameParseErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "frame_parse_errors_total",
				Help:      "Upstream frames that failed to decode and were skipped",
			},
		),
	}

	registry.MustRegister(sm.activeStreams, sm.eventsTotal, sm.estimatedTokens, sm.frameParseErrors)
	return sm
}

// StreamStarted marks a stream as live.
func (sm *StreamMetrics) StreamStarted() {
	sm.activeStreams.Inc()
}

// StreamFinished marks a stream as done.
func (sm *StreamMetrics) StreamFinished() {
	sm.activeStreams.Dec()
}

// RecordEvent counts one outbound stream event.
func (sm *StreamMetrics) RecordEvent(dialect, event string) {
	sm.eventsTotal.WithLabelValues(dialect, event).Inc()
}

// RecordEstimatedTokens adds estimated completion tokens for a model.
func (sm *StreamMetrics) RecordEstimatedTokens(model string, tokens int) {
	if tokens > 0 {
		sm.estimatedTokens.WithLabelValues(model).Add(float64(tokens))
	}
}

// RecordFrameParseError counts a skipped malformed frame.
func (sm *StreamMetrics) RecordFrameParseError() {
	sm.frameParseErrors.Inc()
}
