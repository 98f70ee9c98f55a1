package handlers

import (
	"net/http"

	"github.com/agentstation/inkwell/internal/server/response"
	"github.com/agentstation/inkwell/pkg/refresh"
)

// catalogStatus summarizes the loaded catalog snapshot.
type catalogStatus struct {
	Version string `json:"version"`
	Sets    int    `json:"sets"`
	Cards   int    `json:"cards"`
}

// readiness is the body of GET /ready.
type readiness struct {
	Status      string         `json:"status"`
	Catalog     catalogStatus  `json:"catalog"`
	Refresh     refresh.Status `json:"refresh"`
	LastOutcome refresh.Status `json:"last_outcome"`
	CacheItems  int            `json:"cache_items"`
	WebSockets  int            `json:"websocket_clients"`
	SSEStreams  int            `json:"sse_clients"`
}

// HandleHealth is the liveness probe. It never touches the engine.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{"status": "healthy", "service": "inkwell-api"})
}

// HandleReady reports ready once a catalog with at least one set is
// loaded, along with refresh and realtime counters.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=handlers.readiness}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	sets := h.client.Sets()
	if len(sets) == 0 {
		response.ServiceUnavailable(w, "Catalog not loaded")
		return
	}
	response.OK(w, readiness{
		Status: "ready",
		Catalog: catalogStatus{
			Version: h.client.CatalogVersion(),
			Sets:    len(sets),
			Cards:   len(h.client.Cards()),
		},
		Refresh:     h.client.RefreshStatus(),
		LastOutcome: h.client.LastRefreshOutcome(),
		CacheItems:  h.cache.ItemCount(),
		WebSockets:  h.wsHub.ClientCount(),
		SSEStreams:  h.sseBroadcaster.ClientCount(),
	})
}
