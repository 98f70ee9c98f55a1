// Package filter parses card listing query parameters for API endpoints.
package filter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/query"
)

// CardFilter contains all filter criteria for card listings.
type CardFilter struct {
	Scope inkwell.Scope
	Query query.Options

	// Narrowing filters applied after the query stages
	Set     string
	Rarity  catalogs.Rarity
	MinCost *int
	MaxCost *int

	// Pagination
	Limit  int
	Offset int
}

// ParseCardFilter extracts card filter parameters from an HTTP request.
// Unknown enum values are rejected with a validation error.
func ParseCardFilter(r *http.Request, defaultScope inkwell.Scope) (CardFilter, error) {
	q := r.URL.Query()

	f := CardFilter{
		Scope:  defaultScope,
		Set:    strings.TrimSpace(q.Get("set")),
		Limit:  parseIntOrDefault(q.Get("limit"), constants.DefaultPageSize),
		Offset: parseIntOrDefault(q.Get("offset"), 0),
	}
	f.Query.Text = strings.TrimSpace(q.Get("q"))

	var err error
	if s := q.Get("scope"); s != "" {
		if f.Scope, err = inkwell.ParseScope(s); err != nil {
			return f, err
		}
	}
	if f.Query.Type, err = query.ParseType(q.Get("type")); err != nil {
		return f, err
	}
	if f.Query.Ink, err = query.ParseInk(q.Get("ink")); err != nil {
		return f, err
	}
	if f.Query.Variant, err = query.ParseVariant(q.Get("variant")); err != nil {
		return f, err
	}
	if f.Query.Sort, err = query.ParseSort(q.Get("sort")); err != nil {
		return f, err
	}

	if s := q.Get("rarity"); s != "" && !strings.EqualFold(s, "all") {
		f.Rarity = catalogs.ParseRarity(s)
		if f.Rarity == catalogs.RarityUnknown {
			return f, errors.NewValidationError("rarity", s, "unknown rarity")
		}
	}
	if f.MinCost, err = parseOptionalInt("min_cost", q.Get("min_cost")); err != nil {
		return f, err
	}
	if f.MaxCost, err = parseOptionalInt("max_cost", q.Get("max_cost")); err != nil {
		return f, err
	}

	f.Limit = min(max(f.Limit, 1), constants.MaxPageSize)
	f.Offset = max(f.Offset, 0)
	return f, nil
}

// Apply runs the query stages, then the narrowing filters.
func (f CardFilter) Apply(items []query.Item) []query.Item {
	items = query.Apply(items, f.Query)
	if f.Set == "" && f.Rarity == "" && f.MinCost == nil && f.MaxCost == nil {
		return items
	}

	out := make([]query.Item, 0, len(items))
	for _, it := range items {
		if f.matches(it.Card) {
			out = append(out, it)
		}
	}
	return out
}

func (f CardFilter) matches(c catalogs.Card) bool {
	if f.Set != "" && !strings.EqualFold(c.SetName, f.Set) {
		return false
	}
	if f.Rarity != "" && c.Rarity != f.Rarity {
		return false
	}
	if f.MinCost != nil && c.Cost < *f.MinCost {
		return false
	}
	if f.MaxCost != nil && c.Cost > *f.MaxCost {
		return false
	}
	return true
}

// Page is one window of a listing.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Paginate cuts the filter's window out of items.
func Paginate[T any](items []T, f CardFilter) Page[T] {
	total := len(items)
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)
	page := items[start:end]
	if page == nil {
		page = []T{}
	}
	return Page[T]{Items: page, Total: total, Limit: f.Limit, Offset: f.Offset}
}

func parseOptionalInt(field, s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.NewValidationError(field, s, "must be an integer")
	}
	return &i, nil
}

func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}
