package handlers

import (
	"log/slog"
	"net/http"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy"
)

// Models handles GET /v1/models, listing the canonical model identifiers
// derived from the alias table. Retired aliases still resolve but are not
// advertised.
func (g *Gateway) Models(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, g.resolver.Catalog()); err != nil {
		slog.ErrorContext(ctx, "failed to write model list", "error", err)
	}
}
