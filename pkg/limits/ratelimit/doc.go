// Package ratelimit provides per-session sliding-window rate limiting for
// the proxy's caller-facing endpoints.
//
// Each session gets independent request and token windows. The sliding
// window prunes old buckets automatically, which avoids the reset spike a
// fixed window produces:
//
//	limiter := ratelimit.NewSessionLimiter(ratelimit.Config{
//	    RequestsPerMinute: 60,
//	    TokensPerMinute:   100000,
//	})
//	result := limiter.Check(sessionID)
//	if result.Limited {
//	    // Reject with Retry-After: result.RetryAfter
//	}
//
// All limiters are safe for concurrent use.
package ratelimit
