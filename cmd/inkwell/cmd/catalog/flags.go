package catalog

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/server/filter"
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/query"
)

// filterFlags holds the card listing flags shared by cards and search.
type filterFlags struct {
	scope   string
	set     string
	cardTyp string
	ink     string
	variant string
	rarity  string
	sort    string
	minCost int
	maxCost int
	limit   int
}

func (f *filterFlags) register(cmd *cobra.Command, defaultScope inkwell.Scope) {
	flags := cmd.Flags()
	flags.StringVar(&f.scope, "scope", string(defaultScope), "cards to list: collection, wishlist, all")
	flags.StringVar(&f.set, "set", "", "only cards of this set")
	flags.StringVar(&f.cardTyp, "type", "", "card type: character, action, song, item, location")
	flags.StringVar(&f.ink, "ink", "", "ink color: amber, amethyst, emerald, ruby, sapphire, steel")
	flags.StringVar(&f.variant, "variant", "", "variant: normal, foil, enchanted, promo, epic, iconic")
	flags.StringVar(&f.rarity, "rarity", "", "rarity: common, uncommon, rare, super rare, legendary, ...")
	flags.StringVar(&f.sort, "sort", "", "sort order: name, cost, rarity, set, recent, relevance")
	flags.IntVar(&f.minCost, "min-cost", -1, "minimum ink cost")
	flags.IntVar(&f.maxCost, "max-cost", -1, "maximum ink cost")
	flags.IntVarP(&f.limit, "limit", "l", 0, "maximum number of cards to show (0 for all)")
}

// build turns the flags into a card filter. Enum values are parsed the same
// way the HTTP API parses its query parameters.
func (f *filterFlags) build(text string) (filter.CardFilter, error) {
	var (
		cf  filter.CardFilter
		err error
	)
	if cf.Scope, err = inkwell.ParseScope(f.scope); err != nil {
		return cf, err
	}
	cf.Query.Text = strings.TrimSpace(text)
	if cf.Query.Type, err = query.ParseType(f.cardTyp); err != nil {
		return cf, err
	}
	if cf.Query.Ink, err = query.ParseInk(f.ink); err != nil {
		return cf, err
	}
	if cf.Query.Variant, err = query.ParseVariant(f.variant); err != nil {
		return cf, err
	}
	if cf.Query.Sort, err = query.ParseSort(f.sort); err != nil {
		return cf, err
	}
	if f.rarity != "" && !strings.EqualFold(f.rarity, "all") {
		cf.Rarity = catalogs.ParseRarity(f.rarity)
		if cf.Rarity == catalogs.RarityUnknown {
			return cf, errors.NewValidationError("rarity", f.rarity, "unknown rarity")
		}
	}
	if f.minCost >= 0 {
		cf.MinCost = &f.minCost
	}
	if f.maxCost >= 0 {
		cf.MaxCost = &f.maxCost
	}
	if f.limit < 0 {
		return cf, errors.NewValidationError("limit", f.limit, "must not be negative")
	}
	cf.Set = strings.TrimSpace(f.set)
	cf.Limit = f.limit
	return cf, nil
}

// truncate applies the --limit flag.
func truncate(items []query.Item, limit int) []query.Item {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
