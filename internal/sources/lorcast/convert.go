package lorcast

import (
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/inkwell/pkg/catalogs"
)

// SetLookup resolves a Lorcast set code to a catalog set.
type SetLookup interface {
	SetByCode(code string) (catalogs.Set, bool)
}

// convertCard maps a Lorcast card to a remote update record. Cards whose
// collector number has no leading digits cannot be given an ID and are
// skipped.
func convertCard(c Card, sets SetLookup, now time.Time) (catalogs.RemoteCard, bool) {
	number, ok := collectorNumber(c.CollectorNumber)
	if !ok {
		return catalogs.RemoteCard{}, false
	}

	code := strings.ToUpper(c.Set.Code)
	setName := c.Set.Name
	if sets != nil {
		if set, found := sets.SetByCode(c.Set.Code); found {
			code, setName = set.Code, set.Name
		}
	}

	r := catalogs.RemoteCard{
		ID:        catalogs.UniqueID(code, number),
		SetName:   setName,
		Number:    &number,
		Cost:      c.Cost,
		Inkable:   c.Inkwell,
		Text:      nonEmpty(c.Text),
		Strength:  c.Strength,
		Willpower: c.Willpower,
		Lore:      c.Lore,
	}
	if c.Name != "" {
		name := c.Name
		r.Name = &name
	}
	if c.Version != nil {
		v := *c.Version
		r.Version = &v
	}
	if len(c.Type) > 0 {
		t := catalogs.ParseCardType(strings.Join(c.Type, " - "))
		r.Type = &t
	}
	if c.Ink != nil && *c.Ink != "" {
		r.Inks = catalogs.ParseInks(*c.Ink)
	}
	if c.Rarity != "" {
		rarity := catalogs.ParseRarity(c.Rarity)
		variant := variantOf(rarity)
		r.Rarity = &rarity
		r.Variant = &variant
	}
	if img := c.ImageURIs.Digital.Normal; img != "" {
		r.ImageURL = &img
	}
	r.Price = convertPrices(c.Prices, now)
	return r, true
}

// variantOf derives the printing variant from the rarity.
func variantOf(r catalogs.Rarity) catalogs.Variant {
	switch r {
	case catalogs.RarityEnchanted:
		return catalogs.VariantEnchanted
	case catalogs.RarityEpic:
		return catalogs.VariantEpic
	case catalogs.RarityIconic:
		return catalogs.VariantIconic
	case catalogs.RarityPromo:
		return catalogs.VariantPromo
	default:
		return catalogs.VariantNormal
	}
}

func convertPrices(p Prices, now time.Time) *catalogs.Price {
	usd, okUSD := parsePrice(p.USD)
	foil, okFoil := parsePrice(p.USDFoil)
	if !okUSD && !okFoil {
		return nil
	}
	price := &catalogs.Price{UpdatedAt: utc.New(now)}
	if okUSD {
		price.USD = &usd
	}
	if okFoil {
		price.FoilUSD = &foil
	}
	return price
}

func parsePrice(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// collectorNumber reads the leading digits of numbers such as "12" or "12a".
func collectorNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
