package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/agentstation/inkwell/internal/server/response"
	"github.com/agentstation/inkwell/pkg/refresh"
)

// RefreshState reports the refresh coordinator.
type RefreshState struct {
	Status      refresh.Status `json:"status"`
	LastOutcome refresh.Status `json:"last_outcome"`
	LastSuccess *time.Time     `json:"last_success,omitempty"`
}

func (h *Handlers) refreshState() RefreshState {
	st := RefreshState{
		Status:      h.client.RefreshStatus(),
		LastOutcome: h.client.LastRefreshOutcome(),
	}
	if t := h.client.LastSuccessfulRefresh(); !t.IsZero() {
		st.LastSuccess = &t
	}
	return st
}

// HandleRefreshStatus handles GET /api/v1/refresh.
// @Summary Refresh status
// @Description Current refresh state, last outcome and last success
// @Tags refresh
// @Produce json
// @Success 200 {object} response.Response{data=RefreshState}
// @Router /refresh [get].
func (h *Handlers) HandleRefreshStatus(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.refreshState())
}

// HandleStartRefresh handles POST /api/v1/refresh.
// @Summary Start refresh
// @Description Starts a refresh of remote card metadata, or joins the running one.
// @Description With wait=true the response is sent when the refresh finishes.
// @Tags refresh
// @Produce json
// @Param wait query bool false "Wait for the refresh to finish"
// @Success 200 {object} response.Response{data=catalogs.MergeSummary}
// @Success 202 {object} response.Response{data=RefreshState}
// @Failure 503 {object} response.Response{error=response.Error}
// @Failure 504 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /refresh [post].
func (h *Handlers) HandleStartRefresh(w http.ResponseWriter, r *http.Request) {
	flight := h.client.Refresh(r.Context())

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		response.Accepted(w, h.refreshState())
		return
	}

	if err := flight.Wait(r.Context()); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, flight.Result().Summary())
}

// HandleCancelRefresh handles DELETE /api/v1/refresh.
// @Summary Cancel refresh
// @Description Abandons the running refresh without merging
// @Tags refresh
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security ApiKeyAuth
// @Router /refresh [delete].
func (h *Handlers) HandleCancelRefresh(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"canceled": h.client.CancelRefresh(),
	})
}

// HandleCheckUpdates handles GET /api/v1/refresh/check.
// @Summary Check for card data updates
// @Description Compares remote per-set card counts with the bundled catalog
// @Tags refresh
// @Produce json
// @Success 200 {object} response.Response{data=catalogs.UpdateReport}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /refresh/check [get].
func (h *Handlers) HandleCheckUpdates(w http.ResponseWriter, r *http.Request) {
	report, err := h.client.CheckUpdates(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, map[string]any{
		"report":      report,
		"has_updates": report.HasUpdates(),
	})
}
