package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/telemetry/logging"
)

// Recovery recovers from panics in handlers and returns a 500 in the
// OpenAI error format. The panic and stack trace are logged; clients
// never see internal details.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()

				fields := []any{
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				}
				fields = append(fields, logging.ContextFields(r.Context())...)
				slog.ErrorContext(r.Context(), "panic in handler", fields...)

				errResp := types.NewServerError(
					"An internal error occurred. Please try again later.",
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(errResp)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
