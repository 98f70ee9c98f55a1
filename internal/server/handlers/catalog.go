package handlers

import (
	"net/http"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/server/filter"
	"github.com/agentstation/inkwell/internal/server/response"
	"github.com/agentstation/inkwell/pkg/query"
)

// HandleListSets handles GET /api/v1/sets.
// @Summary List sets
// @Description List every set in release order
// @Tags catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]catalogs.Set}
// @Router /sets [get].
func (h *Handlers) HandleListSets(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, func() (any, error) {
		return h.client.Sets(), nil
	})
}

// HandleGetSet handles GET /api/v1/sets/{name}.
// @Summary Get set
// @Description Get one set by name
// @Tags catalog
// @Produce json
// @Param name path string true "Set name"
// @Success 200 {object} response.Response{data=catalogs.Set}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /sets/{name} [get].
func (h *Handlers) HandleGetSet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	h.cached(w, r, func() (any, error) {
		return h.client.Set(name)
	})
}

// HandleGetSetCards handles GET /api/v1/sets/{name}/cards.
// @Summary List set cards
// @Description List the cards of a set with their ownership records
// @Tags catalog
// @Produce json
// @Param name path string true "Set name"
// @Success 200 {object} response.Response{data=filter.Page[query.Item]}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /sets/{name}/cards [get].
func (h *Handlers) HandleGetSetCards(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, err := filter.ParseCardFilter(r, inkwell.ScopeAll)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func() (any, error) {
		set, err := h.client.Set(name)
		if err != nil {
			return nil, err
		}
		f.Set = set.Name
		return filter.Paginate(f.Apply(h.client.Items(inkwell.ScopeAll)), f), nil
	})
}

// HandleListCards handles GET /api/v1/cards.
// @Summary List cards
// @Description Search, filter and sort cards of a scope
// @Tags catalog
// @Produce json
// @Param scope query string false "collection, wishlist or all (default all)"
// @Param q query string false "Search text over name and rules text"
// @Param type query string false "Card type"
// @Param ink query string false "Ink color"
// @Param variant query string false "Printing variant"
// @Param rarity query string false "Rarity"
// @Param set query string false "Set name"
// @Param min_cost query int false "Minimum ink cost"
// @Param max_cost query int false "Maximum ink cost"
// @Param sort query string false "recent, name, cost, rarity, set or relevance"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Page offset"
// @Success 200 {object} response.Response{data=filter.Page[query.Item]}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /cards [get].
func (h *Handlers) HandleListCards(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseCardFilter(r, inkwell.ScopeAll)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func() (any, error) {
		return filter.Paginate(f.Apply(h.client.Items(f.Scope)), f), nil
	})
}

// HandleGetCard handles GET /api/v1/cards/{id}.
// @Summary Get card
// @Description Get one card with its ownership record
// @Tags catalog
// @Produce json
// @Param id path string true "Card ID (SETCODE-NNN)"
// @Success 200 {object} response.Response{data=query.Item}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /cards/{id} [get].
func (h *Handlers) HandleGetCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.cached(w, r, func() (any, error) {
		card, err := h.client.Card(id)
		if err != nil {
			return nil, err
		}
		item := query.Item{Card: card}
		if e, ok := h.client.Entry(card.ID); ok {
			item.Quantity = e.Quantity
			item.Wishlisted = e.Wishlisted
			item.DateAdded = e.DateAdded
		}
		return item, nil
	})
}
