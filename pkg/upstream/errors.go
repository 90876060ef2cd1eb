package upstream

import (
	"fmt"
	"time"
)

// Error represents a non-success response or transport failure from the
// upstream. StatusCode is 0 when the failure happened before a response
// arrived.
type Error struct {
	// StatusCode is the upstream HTTP status (0 if not applicable).
	StatusCode int

	// Message is the error message, usually the upstream response body.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure: either no usable
// credential was available locally, or the upstream rejected the token.
type AuthError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream authentication failed: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// RateLimitError represents an upstream 429 with an optional retry-after
// hint.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("upstream rate limit exceeded (retry after %s): %s", e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("upstream rate limit exceeded: %s", e.Message)
}

// FrameParseError represents a single malformed SSE frame. It is recovered
// locally by the stream pipeline and never fatal to the stream.
type FrameParseError struct {
	// RawFrame is the frame payload that failed to parse.
	RawFrame string

	// Cause is the underlying parse error.
	Cause error
}

// Error implements the error interface.
func (e *FrameParseError) Error() string {
	return fmt.Sprintf("frame parse error: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *FrameParseError) Unwrap() error {
	return e.Cause
}

// StreamError represents an underlying connection drop mid-stream. Fatal to
// that one stream only.
type StreamError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stream error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("stream error: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}
