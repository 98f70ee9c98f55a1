// Package query searches, filters and sorts card listings.
//
// Stages always run in the same order: text search, type filter, ink filter,
// then sort. Every stage is a plain function over []Item so callers can also
// compose them by hand.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/errors"
)

// Item is a card joined with its ownership record.
type Item struct {
	Card       catalogs.Card `json:"card"`
	Quantity   int           `json:"quantity"`
	Wishlisted bool          `json:"wishlisted"`
	DateAdded  utc.Time      `json:"date_added,omitzero"`
}

// SortKey selects the listing order.
type SortKey string

// Sort keys.
const (
	SortNone      SortKey = ""          // keep input order
	SortRecent    SortKey = "recent"    // date added, newest first, undated last
	SortName      SortKey = "name"      // name ascending
	SortCost      SortKey = "cost"      // ink cost ascending
	SortRarity    SortKey = "rarity"    // rarity rank ascending
	SortSet       SortKey = "set"       // set name ascending
	SortRelevance SortKey = "relevance" // fuzzy score on the search text
)

// SortKeys lists the selectable sort keys.
var SortKeys = []SortKey{SortRecent, SortName, SortCost, SortRarity, SortSet, SortRelevance}

// Options is a full query. Zero values mean "no filter".
type Options struct {
	Text    string
	Type    catalogs.CardType
	Ink     catalogs.InkColor
	Variant catalogs.Variant
	Sort    SortKey
}

// Apply runs every stage over items and returns a new slice.
func Apply(items []Item, opts Options) []Item {
	out := Search(items, opts.Text)
	out = FilterType(out, opts.Type)
	out = FilterInk(out, opts.Ink)
	out = FilterVariant(out, opts.Variant)
	if opts.Sort == SortRelevance {
		return rank(out, opts.Text, true)
	}
	return Sort(out, opts.Sort)
}

// Search keeps items whose name or rules text contains text, ignoring case
// and accents. Empty text keeps everything.
func Search(items []Item, text string) []Item {
	text = strings.TrimSpace(text)
	if text == "" {
		return slices.Clone(items)
	}
	needle := fold(text)
	return filter(items, func(it Item) bool {
		return strings.Contains(fold(it.Card.FullName()), needle) ||
			strings.Contains(fold(it.Card.Text), needle)
	})
}

// FilterType keeps items of type t. An empty type keeps everything.
func FilterType(items []Item, t catalogs.CardType) []Item {
	if t == "" {
		return slices.Clone(items)
	}
	return filter(items, func(it Item) bool {
		return it.Card.Type == t
	})
}

// FilterInk keeps items whose ink set contains c. An empty color keeps
// everything.
func FilterInk(items []Item, c catalogs.InkColor) []Item {
	if c == "" {
		return slices.Clone(items)
	}
	return filter(items, func(it Item) bool {
		return it.Card.Inks.Contains(c)
	})
}

// FilterVariant keeps items printed as v. An empty variant keeps everything.
func FilterVariant(items []Item, v catalogs.Variant) []Item {
	if v == "" {
		return slices.Clone(items)
	}
	return filter(items, func(it Item) bool {
		return it.Card.Variant == v
	})
}

// Sort returns items ordered by key. The sort is stable, so equal keys keep
// their input order.
func Sort(items []Item, key SortKey) []Item {
	out := slices.Clone(items)
	switch key {
	case SortRecent:
		slices.SortStableFunc(out, byRecent)
	case SortName:
		slices.SortStableFunc(out, func(a, b Item) int {
			return strings.Compare(a.Card.Name, b.Card.Name)
		})
	case SortCost:
		slices.SortStableFunc(out, func(a, b Item) int {
			return cmp.Compare(a.Card.Cost, b.Card.Cost)
		})
	case SortRarity:
		slices.SortStableFunc(out, func(a, b Item) int {
			return cmp.Compare(a.Card.Rarity.Rank(), b.Card.Rarity.Rank())
		})
	case SortSet:
		slices.SortStableFunc(out, func(a, b Item) int {
			return strings.Compare(a.Card.SetName, b.Card.SetName)
		})
	}
	return out
}

// byRecent puts newer dates first and undated items after every dated one.
func byRecent(a, b Item) int {
	az, bz := a.DateAdded.IsZero(), b.DateAdded.IsZero()
	switch {
	case az && bz:
		return 0
	case az:
		return 1
	case bz:
		return -1
	}
	return b.DateAdded.Time.Compare(a.DateAdded.Time)
}

func filter(items []Item, keep func(Item) bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// ParseType parses a type filter. "all" and "" select every type.
func ParseType(s string) (catalogs.CardType, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	for _, t := range append(slices.Clone(catalogs.CardTypes), catalogs.CardTypeUnknown) {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", errors.NewValidationError("type", s, "unknown card type")
}

// ParseInk parses an ink filter. "all" and "" select every ink.
func ParseInk(s string) (catalogs.InkColor, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	if strings.EqualFold(s, string(catalogs.InkUnknown)) {
		return catalogs.InkUnknown, nil
	}
	c := catalogs.ParseInkColor(s)
	if c == catalogs.InkUnknown {
		return "", errors.NewValidationError("ink", s, "unknown ink color")
	}
	return c, nil
}

// ParseVariant parses a variant filter. "all" and "" select every variant.
func ParseVariant(s string) (catalogs.Variant, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	v := catalogs.ParseVariant(s)
	if v == catalogs.VariantUnknown && !strings.EqualFold(s, string(catalogs.VariantUnknown)) {
		return "", errors.NewValidationError("variant", s, "unknown variant")
	}
	return v, nil
}

// ParseSort parses a sort key. "" and "none" keep input order.
func ParseSort(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return SortNone, nil
	}
	if s == "recently-added" || s == "date" {
		return SortRecent, nil
	}
	for _, k := range SortKeys {
		if s == string(k) {
			return k, nil
		}
	}
	return SortNone, errors.NewValidationError("sort", s, "unknown sort key")
}
