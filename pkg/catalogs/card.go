package catalogs

import (
	"fmt"
	"slices"

	"github.com/agentstation/utc"
)

// Set is a published group of cards.
type Set struct {
	Name          string   `json:"name" yaml:"name"`                                   // Unique display name
	Code          string   `json:"code" yaml:"code"`                                   // Three letter code used in card IDs (TFC, ROF, ...)
	RemoteCode    string   `json:"remote_code,omitempty" yaml:"remote_code,omitempty"` // Code used by the remote source
	DeclaredCount int      `json:"card_count" yaml:"card_count"`                       // Card count from set metadata
	ReleaseOrder  int      `json:"release_order" yaml:"release_order"`                 // Position in release order
	ReleaseDate   utc.Time `json:"release_date" yaml:"release_date"`                   // Release date (YYYY-MM-DD)
}

// Price holds live market prices in US dollars. Nil amounts are unknown.
type Price struct {
	USD       *float64 `json:"usd,omitempty" yaml:"usd,omitempty"`
	FoilUSD   *float64 `json:"usd_foil,omitempty" yaml:"usd_foil,omitempty"`
	UpdatedAt utc.Time `json:"updated_at" yaml:"updated_at"`
}

// Card is a single printing of a card in a set.
type Card struct {
	ID        string   `json:"id" yaml:"id"`                               // Stable identifier, SETCODE-NNN
	Name      string   `json:"name" yaml:"name"`                           // Character or card name
	Version   string   `json:"version,omitempty" yaml:"version,omitempty"` // Subtitle, e.g. "Brave Little Tailor"
	SetName   string   `json:"set_name" yaml:"set_name"`                   // Owning set
	Number    int      `json:"number" yaml:"number"`                       // Collector number inside the set
	Type      CardType `json:"type" yaml:"type"`
	Cost      int      `json:"cost" yaml:"cost"`
	Inkable   bool     `json:"inkable" yaml:"inkable"`
	Inks      Inks     `json:"ink" yaml:"ink"`
	Rarity    Rarity   `json:"rarity" yaml:"rarity"`
	Variant   Variant  `json:"variant" yaml:"variant"`
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"` // Rules text
	Strength  *int     `json:"strength,omitempty" yaml:"strength,omitempty"`
	Willpower *int     `json:"willpower,omitempty" yaml:"willpower,omitempty"`
	Lore      *int     `json:"lore,omitempty" yaml:"lore,omitempty"`
	ImageURL  string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Price     *Price   `json:"price,omitempty" yaml:"price,omitempty"` // Absent until refreshed
}

// FullName returns the name with its version subtitle, as printed.
func (c Card) FullName() string {
	if c.Version == "" {
		return c.Name
	}
	return c.Name + " - " + c.Version
}

// UniqueID formats the canonical identifier for a collector number in a set.
func UniqueID(setCode string, number int) string {
	return fmt.Sprintf("%s-%03d", setCode, number)
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	out := c
	out.Inks = slices.Clone(c.Inks)
	out.Strength = cloneInt(c.Strength)
	out.Willpower = cloneInt(c.Willpower)
	out.Lore = cloneInt(c.Lore)
	if c.Price != nil {
		p := c.Price.Clone()
		out.Price = &p
	}
	return out
}

// Clone returns a deep copy of the price.
func (p Price) Clone() Price {
	return Price{
		USD:       cloneFloat(p.USD),
		FoilUSD:   cloneFloat(p.FoilUSD),
		UpdatedAt: p.UpdatedAt,
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
