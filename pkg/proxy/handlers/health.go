package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// ReadyChecker reports whether the gateway can serve traffic. The auth
// layer satisfies this by attempting to produce a usable upstream token.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a liveness handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler answers readiness probes. Ready means an upstream
// credential is available; a gateway without one can only return 401s.
type ReadyHandler struct {
	checker ReadyChecker
}

// NewReadyHandler creates a readiness handler. A nil checker always
// reports ready.
func NewReadyHandler(checker ReadyChecker) *ReadyHandler {
	return &ReadyHandler{checker: checker}
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "ready"
	statusCode := http.StatusOK
	var detail string

	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.checker.Ready(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			detail = err.Error()
		}
	}

	body := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
	}
	if detail != "" {
		body["detail"] = detail
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
