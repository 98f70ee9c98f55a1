// Package progress computes set completion from a catalog and the owned cards.
// Everything here is a pure function of its inputs.
package progress

import "github.com/agentstation/inkwell/pkg/catalogs"

// Catalog is the read side of the catalog store needed for progress.
type Catalog interface {
	Sets() []catalogs.Set
	EffectiveTotal(setName string) int
	SetOf(cardID string) (string, bool)
}

// Ownership exposes the distinct owned card IDs.
type Ownership interface {
	OwnedIDs() map[string]struct{}
}

// Progress is the completion of one set, or of all sets for Overall.
type Progress struct {
	SetName    string  `json:"set_name"`
	Collected  int     `json:"collected"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Complete reports whether every card of the set is owned.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Collected >= p.Total
}

// Option adjusts a single Calculate call.
type Option func(*config)

type config struct {
	total *int
}

// WithTotal overrides the set's effective total.
func WithTotal(total int) Option {
	return func(c *config) {
		c.total = &total
	}
}

// Calculate returns the progress of one set. Collected counts distinct owned
// cards that the catalog places in the set, capped at the total; owned IDs the
// catalog does not know never count.
func Calculate(cat Catalog, owned Ownership, setName string, opts ...Option) Progress {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	total := cat.EffectiveTotal(setName)
	if cfg.total != nil {
		total = max(*cfg.total, 0)
	}
	return newProgress(setName, collectedBySet(cat, owned)[setName], total)
}

// All returns the progress of every set in release order.
func All(cat Catalog, owned Ownership) []Progress {
	counts := collectedBySet(cat, owned)
	sets := cat.Sets()
	out := make([]Progress, 0, len(sets))
	for _, set := range sets {
		out = append(out, newProgress(set.Name, counts[set.Name], cat.EffectiveTotal(set.Name)))
	}
	return out
}

// Overall sums the per-set progress. Each set contributes at most its total.
func Overall(cat Catalog, owned Ownership) Progress {
	var collected, total int
	for _, p := range All(cat, owned) {
		collected += p.Collected
		total += p.Total
	}
	return newProgress("", collected, total)
}

// Percentage returns 100*collected/total, and 0 when total is 0.
func Percentage(collected, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(collected) / float64(total)
}

func newProgress(setName string, collected, total int) Progress {
	collected = min(collected, total)
	return Progress{
		SetName:    setName,
		Collected:  collected,
		Total:      total,
		Percentage: Percentage(collected, total),
	}
}

func collectedBySet(cat Catalog, owned Ownership) map[string]int {
	counts := make(map[string]int)
	for id := range owned.OwnedIDs() {
		if setName, ok := cat.SetOf(id); ok {
			counts[setName]++
		}
	}
	return counts
}
