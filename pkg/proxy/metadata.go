package proxy

import (
	"net/http"
	"time"
)

// RequestMetadata is the per-request record the handlers carry through
// logging and accounting.
type RequestMetadata struct {
	// RequestID is the unique identifier for the request.
	RequestID string

	// SessionID groups requests for limits and usage.
	SessionID string

	// Endpoint is the short handler name, e.g. "chat_completions".
	Endpoint string

	// Model is the requested (pre-resolution) model name.
	Model string

	// ResolvedModel is the model sent upstream.
	ResolvedModel string

	// Stream indicates whether streaming was requested.
	Stream bool

	// RemoteAddr is the client's address.
	RemoteAddr string

	// UserAgent is the client's user agent string.
	UserAgent string

	// Timestamp is when the request was received.
	Timestamp time.Time
}

// NewRequestMetadata builds metadata from the incoming request.
func NewRequestMetadata(r *http.Request, endpoint string) *RequestMetadata {
	return &RequestMetadata{
		RequestID:  ExtractRequestID(r),
		SessionID:  ExtractSessionID(r),
		Endpoint:   endpoint,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
		Timestamp:  time.Now(),
	}
}

// LogFields returns key-value pairs for structured logging.
func (m *RequestMetadata) LogFields() []any {
	fields := []any{
		"request_id", m.RequestID,
		"session_id", m.SessionID,
		"endpoint", m.Endpoint,
		"model", m.Model,
		"stream", m.Stream,
	}
	if m.ResolvedModel != "" && m.ResolvedModel != m.Model {
		fields = append(fields, "resolved_model", m.ResolvedModel)
	}
	return fields
}
