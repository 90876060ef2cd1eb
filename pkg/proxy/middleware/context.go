package middleware

// contextKey is a custom type for context keys to avoid collisions.
// Request and session IDs live in telemetry/logging's context keys so the
// same values feed handler logs and the access log.
type contextKey string

const (
	// StartTimeKey stores the request start time for latency calculation.
	StartTimeKey contextKey = "start_time"
)
