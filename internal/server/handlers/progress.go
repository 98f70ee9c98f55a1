package handlers

import (
	"net/http"

	"github.com/agentstation/inkwell/internal/server/response"
	"github.com/agentstation/inkwell/pkg/progress"
)

// ProgressReport is every set's completion plus the overall figure.
type ProgressReport struct {
	Sets    []progress.Progress `json:"sets"`
	Overall progress.Progress   `json:"overall"`
}

// HandleListProgress handles GET /api/v1/progress.
// @Summary Set completion
// @Description Completion of every set in release order and overall
// @Tags progress
// @Produce json
// @Success 200 {object} response.Response{data=ProgressReport}
// @Router /progress [get].
func (h *Handlers) HandleListProgress(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, func() (any, error) {
		return ProgressReport{
			Sets:    h.client.AllProgress(),
			Overall: h.client.OverallProgress(),
		}, nil
	})
}

// HandleGetProgress handles GET /api/v1/progress/{name}.
// @Summary Completion of one set
// @Tags progress
// @Produce json
// @Param name path string true "Set name"
// @Success 200 {object} response.Response{data=progress.Progress}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /progress/{name} [get].
func (h *Handlers) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	h.cached(w, r, func() (any, error) {
		return h.client.SetProgress(name)
	})
}

// HandleEntitlement handles GET /api/v1/entitlement.
// @Summary Premium entitlement
// @Description Reports whether premium features are active. The server never enforces it.
// @Tags meta
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /entitlement [get].
func (h *Handlers) HandleEntitlement(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"premium_active": h.client.PremiumActive(),
	})
}
