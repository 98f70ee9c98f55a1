package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/server/filter"
	"github.com/agentstation/inkwell/internal/server/response"
	"github.com/agentstation/inkwell/pkg/ledger"
)

// QuantityRequest sets or adjusts owned copies. Exactly one field is used;
// Quantity wins when both are present.
type QuantityRequest struct {
	Quantity *int `json:"quantity,omitempty"`
	Delta    *int `json:"delta,omitempty"`
}

// WishlistRequest sets the wishlist flag. An empty body toggles it.
type WishlistRequest struct {
	Wishlisted *bool `json:"wishlisted,omitempty"`
}

// HandleListCollection handles GET /api/v1/collection.
// @Summary List collection
// @Description List owned cards with the same filters as /cards
// @Tags collection
// @Produce json
// @Success 200 {object} response.Response{data=filter.Page[query.Item]}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /collection [get].
func (h *Handlers) HandleListCollection(w http.ResponseWriter, r *http.Request) {
	h.listScope(w, r, inkwell.ScopeCollection)
}

// HandleListWishlist handles GET /api/v1/wishlist.
// @Summary List wishlist
// @Description List wishlisted cards, owned or not
// @Tags collection
// @Produce json
// @Success 200 {object} response.Response{data=filter.Page[query.Item]}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /wishlist [get].
func (h *Handlers) HandleListWishlist(w http.ResponseWriter, r *http.Request) {
	h.listScope(w, r, inkwell.ScopeWishlist)
}

func (h *Handlers) listScope(w http.ResponseWriter, r *http.Request, scope inkwell.Scope) {
	f, err := filter.ParseCardFilter(r, scope)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	f.Scope = scope
	h.cached(w, r, func() (any, error) {
		return filter.Paginate(f.Apply(h.client.Items(scope)), f), nil
	})
}

// HandleSetQuantity handles PUT /api/v1/collection/{id}.
// @Summary Set owned quantity
// @Description Set or adjust the owned copies of a card. Negative results clamp to 0.
// @Tags collection
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param body body QuantityRequest true "Quantity or delta"
// @Success 200 {object} response.Response{data=ledger.Entry}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /collection/{id} [put].
func (h *Handlers) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	var (
		entry ledger.Entry
		err   error
	)
	switch {
	case req.Quantity != nil:
		entry, err = h.client.SetOwnedQuantity(r.Context(), id, *req.Quantity)
	case req.Delta != nil:
		entry, err = h.client.AdjustQuantity(r.Context(), id, *req.Delta)
	default:
		response.BadRequest(w, "Missing quantity", "Provide quantity or delta")
		return
	}
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, entry)
}

// HandleWishlist handles POST and PUT /api/v1/wishlist/{id}.
// @Summary Toggle or set wishlist flag
// @Description POST without a body toggles the flag; a body sets it
// @Tags collection
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param body body WishlistRequest false "Explicit flag"
// @Success 200 {object} response.Response{data=ledger.Entry}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /wishlist/{id} [post].
func (h *Handlers) HandleWishlist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req WishlistRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", err.Error())
			return
		}
	}

	var (
		entry ledger.Entry
		err   error
	)
	if req.Wishlisted != nil {
		entry, err = h.client.SetWishlisted(r.Context(), id, *req.Wishlisted)
	} else {
		entry, err = h.client.ToggleWishlist(r.Context(), id)
	}
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, entry)
}
