// Package ledger records which cards a user owns and which they want.
//
// The Ledger is keyed by card identifier and is independent of catalog
// freshness. Every user action is applied atomically: the in-memory state only
// changes after the backing Store accepted the write.
package ledger

import (
	"context"

	"github.com/agentstation/utc"
)

// Entry is the ownership record of one card.
type Entry struct {
	CardID     string   `json:"card_id" yaml:"card_id"`
	Quantity   int      `json:"quantity" yaml:"quantity"`
	Wishlisted bool     `json:"wishlisted" yaml:"wishlisted"`
	DateAdded  utc.Time `json:"date_added" yaml:"date_added"` // First time owned or wishlisted
}

// Owned reports whether at least one copy is owned.
func (e Entry) Owned() bool {
	return e.Quantity > 0
}

// Active reports whether the entry belongs in the collection or the wishlist.
// Inactive entries are purged.
func (e Entry) Active() bool {
	return e.Quantity > 0 || e.Wishlisted
}

// Store persists ledger entries across runs.
type Store interface {
	// Load returns every persisted entry. A store that was never written
	// returns no entries and no error.
	Load(ctx context.Context) ([]Entry, error)
	// Put inserts or replaces the entry for e.CardID.
	Put(ctx context.Context, e Entry) error
	// Delete removes an entry; deleting a missing entry is not an error.
	Delete(ctx context.Context, cardID string) error
	// Close releases the store.
	Close() error
}
