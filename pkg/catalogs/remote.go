package catalogs

import (
	"reflect"
	"slices"
)

// RemoteCard is one record from a remote metadata source. Every field other
// than ID is optional: nil means "no update", never "clear this field".
// SetName is required only when the card is not in the catalog yet.
type RemoteCard struct {
	ID        string    `json:"id"`
	SetName   string    `json:"set_name,omitempty"`
	Name      *string   `json:"name,omitempty"`
	Version   *string   `json:"version,omitempty"`
	Number    *int      `json:"number,omitempty"`
	Type      *CardType `json:"type,omitempty"`
	Cost      *int      `json:"cost,omitempty"`
	Inkable   *bool     `json:"inkable,omitempty"`
	Inks      Inks      `json:"ink,omitempty"`
	Rarity    *Rarity   `json:"rarity,omitempty"`
	Variant   *Variant  `json:"variant,omitempty"`
	Text      *string   `json:"text,omitempty"`
	Strength  *int      `json:"strength,omitempty"`
	Willpower *int      `json:"willpower,omitempty"`
	Lore      *int      `json:"lore,omitempty"`
	ImageURL  *string   `json:"image_url,omitempty"`
	Price     *Price    `json:"price,omitempty"`
}

// MergeResult summarizes one ApplyRemoteUpdate call.
type MergeResult struct {
	Updated   []CardChange `json:"updated"`   // Existing cards whose fields changed
	Added     []Card       `json:"added"`     // Cards appended because the catalog did not know them
	NewSets   []string     `json:"new_sets"`  // Sets created for appended cards
	Unchanged int          `json:"unchanged"` // Records that matched and changed nothing
	Rejected  int          `json:"rejected"`  // Records without an ID, or unknown cards without a set
}

// MergeSummary counts what a merge changed.
type MergeSummary struct {
	Updated   int      `json:"updated" yaml:"updated"`
	Added     int      `json:"added" yaml:"added"`
	NewSets   []string `json:"new_sets" yaml:"new_sets"`
	Unchanged int      `json:"unchanged" yaml:"unchanged"`
	Rejected  int      `json:"rejected" yaml:"rejected"`
}

// Summary counts the changes of r.
func (r MergeResult) Summary() MergeSummary {
	s := MergeSummary{
		Updated:   len(r.Updated),
		Added:     len(r.Added),
		NewSets:   r.NewSets,
		Unchanged: r.Unchanged,
		Rejected:  r.Rejected,
	}
	if s.NewSets == nil {
		s.NewSets = []string{}
	}
	return s
}

// CardChange pairs the previous and merged versions of a card.
type CardChange struct {
	Old Card `json:"old"`
	New Card `json:"new"`
}

// Changed reports whether the merge altered the catalog.
func (r MergeResult) Changed() bool {
	return len(r.Updated) > 0 || len(r.Added) > 0
}

// mergeCard applies the non-nil fields of r onto a copy of c.
func mergeCard(c Card, r RemoteCard) Card {
	out := c.Clone()
	setString(&out.Name, r.Name)
	setString(&out.Version, r.Version)
	setString(&out.Text, r.Text)
	setString(&out.ImageURL, r.ImageURL)
	if r.Number != nil {
		out.Number = *r.Number
	}
	if r.Type != nil {
		out.Type = *r.Type
	}
	if r.Cost != nil {
		out.Cost = *r.Cost
	}
	if r.Inkable != nil {
		out.Inkable = *r.Inkable
	}
	if len(r.Inks) > 0 {
		out.Inks = slices.Clone(r.Inks)
	}
	if r.Rarity != nil {
		out.Rarity = *r.Rarity
	}
	if r.Variant != nil {
		out.Variant = *r.Variant
	}
	if r.Strength != nil {
		out.Strength = cloneInt(r.Strength)
	}
	if r.Willpower != nil {
		out.Willpower = cloneInt(r.Willpower)
	}
	if r.Lore != nil {
		out.Lore = cloneInt(r.Lore)
	}
	if r.Price != nil {
		out.Price = mergePrice(out.Price, *r.Price)
	}
	return out
}

// mergePrice upserts the known amounts of in onto cur.
func mergePrice(cur *Price, in Price) *Price {
	var p Price
	if cur != nil {
		p = cur.Clone()
	}
	if in.USD != nil {
		p.USD = cloneFloat(in.USD)
	}
	if in.FoilUSD != nil {
		p.FoilUSD = cloneFloat(in.FoilUSD)
	}
	if !in.UpdatedAt.IsZero() {
		p.UpdatedAt = in.UpdatedAt
	}
	if p.USD == nil && p.FoilUSD == nil && p.UpdatedAt.IsZero() {
		return cur
	}
	return &p
}

// newCard builds a catalog card from a record the catalog has never seen.
func newCard(r RemoteCard) Card {
	c := mergeCard(Card{
		ID:      r.ID,
		SetName: r.SetName,
		Type:    CardTypeUnknown,
		Rarity:  RarityUnknown,
		Variant: VariantNormal,
	}, r)
	if c.Name == "" {
		c.Name = r.ID
	}
	return c
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func cardsEqual(a, b Card) bool {
	return reflect.DeepEqual(a, b)
}
