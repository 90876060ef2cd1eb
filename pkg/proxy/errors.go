package proxy

import (
	"context"
	"errors"
	"fmt"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/upstream"
)

// HandleError converts internal error types to OpenAI-compatible error
// responses. Request validation errors keep their field and code;
// upstream failures surface as gateway errors so callers can tell
// local rejections from Copilot-side ones.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var authErr *upstream.AuthError
	if errors.As(err, &authErr) {
		return types.NewAuthenticationError(
			"Upstream authentication failed. Re-authenticate with GitHub and retry.",
			types.CodeAuthenticationFailed,
		)
	}

	var rateErr *upstream.RateLimitError
	if errors.As(err, &rateErr) {
		return types.NewErrorResponse(
			"Upstream rate limit exceeded.",
			types.ErrorTypeRateLimitExceeded,
			"",
			"rate_limit_exceeded",
		)
	}

	var streamErr *upstream.StreamError
	if errors.As(err, &streamErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Upstream stream failed: %v", streamErr.Unwrap()),
		)
	}

	var upErr *upstream.Error
	if errors.As(err, &upErr) {
		if upErr.StatusCode >= 500 {
			return types.NewBadGatewayError(
				fmt.Sprintf("Upstream returned %d: %s", upErr.StatusCode, upErr.Message),
			)
		}
		return types.NewInvalidRequestError(
			fmt.Sprintf("Upstream rejected the request (%d): %s", upErr.StatusCode, upErr.Message),
			"",
			types.CodeUpstreamError,
		)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewGatewayTimeoutError("Upstream request timed out.")
	}

	return types.NewServerError(
		"An internal error occurred. Please try again later.",
	)
}
