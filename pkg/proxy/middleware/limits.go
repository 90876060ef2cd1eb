package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/youssefadel94/github-copilot-proxy/pkg/limits/ratelimit"
	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy"
	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/telemetry/logging"
)

// RateLimitMetrics receives limiter rejections. Satisfied by
// *metrics.RequestMetrics; nil disables recording.
type RateLimitMetrics interface {
	RecordRateLimited(reason string)
}

// RateLimit rejects requests from sessions over their per-minute
// limits. Rejections are 429s in the OpenAI error format with a
// Retry-After hint; allowed requests carry X-RateLimit-Remaining.
func RateLimit(limiter *ratelimit.SessionLimiter, m RateLimitMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := proxy.ExtractSessionID(r)

			result := limiter.Check(sessionID)
			if result.Limited {
				if m != nil {
					m.RecordRateLimited(result.Reason)
				}
				if result.RetryAfter > 0 {
					seconds := int(math.Ceil(result.RetryAfter.Seconds()))
					w.Header().Set("Retry-After", strconv.Itoa(seconds))
				}
				errResp := types.NewErrorResponse(
					result.Reason,
					types.ErrorTypeRateLimitExceeded,
					"",
					"rate_limit_exceeded",
				)
				_ = proxy.WriteErrorResponse(w, errResp)
				return
			}

			if result.Remaining > 0 {
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
			}

			// The session ID is already resolved; stash it so handlers
			// and their logs reuse it instead of re-deriving.
			ctx := logging.WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
