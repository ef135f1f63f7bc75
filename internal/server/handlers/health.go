package handlers

import (
	"net/http"

	"github.com/ashkam58/mathflix/internal/server/response"
)

// HandleHealth handles GET /health (liveness probe).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "mathflix-api",
		"version": h.app.Version(),
	})
}

// HandleReady handles GET /api/v1/ready. The service is ready once the
// catalog can be served, either freshly reconciled or from the last
// known-good list.
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	games, err := h.client.Games(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, "Catalog not available")
		return
	}
	h.catalogSize.Store(int64(len(games)))

	response.OK(w, map[string]any{
		"status": "ready",
		"games":  len(games),
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
		"websocket_clients": h.wsHub.ClientCount(),
	})
}
