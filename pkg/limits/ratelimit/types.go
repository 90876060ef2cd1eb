package ratelimit

import "time"

// Config contains the per-session limits. Zero values mean no limit on
// that dimension.
type Config struct {
	// RequestsPerMinute limits requests per session per minute.
	RequestsPerMinute int

	// TokensPerMinute limits estimated tokens per session per minute.
	TokensPerMinute int
}

// CheckResult is the outcome of a rate limit check.
type CheckResult struct {
	// Limited indicates the session is over a limit.
	Limited bool

	// Reason explains which limit was hit (if Limited).
	Reason string

	// Remaining is how many requests remain in the request window.
	Remaining int64

	// RetryAfter suggests how long to wait before retrying.
	RetryAfter time.Duration
}
