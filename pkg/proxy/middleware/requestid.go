package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/youssefadel94/github-copilot-proxy/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"
)

// RequestID assigns each request a unique ID, honoring a client-supplied
// X-Request-ID when present. The ID lands in the request context (under
// logging's request ID key, where handlers and the access log read it) and
// in the response headers so client and server logs correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
