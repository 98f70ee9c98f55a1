package inkwell

import (
	"context"

	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/logging"
	"github.com/agentstation/inkwell/pkg/query"
)

// Compile-time interface check to ensure proper implementation.
var _ Collection = (*client)(nil)

// Scope selects which cards a listing covers.
type Scope string

// Listing scopes.
const (
	ScopeCollection Scope = "collection" // cards with at least one copy
	ScopeWishlist   Scope = "wishlist"   // wishlisted cards, owned or not
	ScopeAll        Scope = "all"        // the whole catalog
)

// ParseScope parses a scope name. Empty selects the collection.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeCollection:
		return ScopeCollection, nil
	case ScopeWishlist, ScopeAll:
		return Scope(s), nil
	default:
		return "", errors.NewValidationError("scope", s, "must be collection, wishlist or all")
	}
}

// Collection records the user's cards. Writes to card IDs the catalog neither
// lists nor declares are rejected with a not found error and change nothing.
// Owned slots of sets without a bundled list are listed as stub cards until a
// refresh fills in their metadata.
type Collection interface {
	// SetOwnedQuantity sets owned copies; 0 clears ownership and keeps the wishlist flag
	SetOwnedQuantity(ctx context.Context, cardID string, qty int) (ledger.Entry, error)

	// AdjustQuantity adds delta to owned copies, never below 0
	AdjustQuantity(ctx context.Context, cardID string, delta int) (ledger.Entry, error)

	// ToggleWishlist flips the wishlist flag
	ToggleWishlist(ctx context.Context, cardID string) (ledger.Entry, error)

	// SetWishlisted sets the wishlist flag
	SetWishlisted(ctx context.Context, cardID string, wishlisted bool) (ledger.Entry, error)

	// Entry returns the ownership record of a card
	Entry(cardID string) (ledger.Entry, bool)

	// OwnedCards returns the cards with at least one copy
	OwnedCards() []catalogs.Card

	// WishlistCards returns the wishlisted cards joined with the catalog
	WishlistCards() []catalogs.Card

	// Items returns the cards of a scope joined with their ownership records
	Items(scope Scope) []query.Item
}

// SetOwnedQuantity sets the owned copies of a catalog card.
func (c *client) SetOwnedQuantity(ctx context.Context, cardID string, qty int) (ledger.Entry, error) {
	if err := c.checkCard(ctx, cardID, qty <= 0); err != nil {
		return ledger.Entry{}, err
	}
	return c.ledger.SetOwnedQuantity(ctx, cardID, qty)
}

// AdjustQuantity adds delta to the owned copies of a catalog card.
func (c *client) AdjustQuantity(ctx context.Context, cardID string, delta int) (ledger.Entry, error) {
	if err := c.checkCard(ctx, cardID, delta <= 0); err != nil {
		return ledger.Entry{}, err
	}
	return c.ledger.AdjustQuantity(ctx, cardID, delta)
}

// ToggleWishlist flips the wishlist flag of a catalog card.
func (c *client) ToggleWishlist(ctx context.Context, cardID string) (ledger.Entry, error) {
	e, _ := c.ledger.Entry(cardID)
	if err := c.checkCard(ctx, cardID, e.Wishlisted); err != nil {
		return ledger.Entry{}, err
	}
	return c.ledger.ToggleWishlist(ctx, cardID)
}

// SetWishlisted sets the wishlist flag of a catalog card.
func (c *client) SetWishlisted(ctx context.Context, cardID string, wishlisted bool) (ledger.Entry, error) {
	if err := c.checkCard(ctx, cardID, !wishlisted); err != nil {
		return ledger.Entry{}, err
	}
	return c.ledger.SetWishlisted(ctx, cardID, wishlisted)
}

// checkCard accepts catalog cards and declared slots of sets without a
// bundled list. A write that only lowers an existing record is accepted for
// any ID, so entries the catalog no longer knows can still be cleared.
func (c *client) checkCard(ctx context.Context, cardID string, lowering bool) error {
	if c.catalog.Declares(cardID) {
		return nil
	}
	if _, ok := c.ledger.Entry(cardID); ok && lowering {
		return nil
	}
	logging.FromContext(logging.WithCardID(ctx, cardID)).Warn().Msg("Rejected write for unknown card")
	return errors.NewNotFoundError("card", cardID)
}

// Entry returns the ownership record of a card.
func (c *client) Entry(cardID string) (ledger.Entry, bool) {
	return c.ledger.Entry(cardID)
}

// OwnedCards returns the owned cards ordered by card ID.
func (c *client) OwnedCards() []catalogs.Card {
	return c.join(c.ledger.Owned())
}

// WishlistCards returns the wishlisted cards ordered by card ID. Entries for
// cards the catalog no longer has are skipped.
func (c *client) WishlistCards() []catalogs.Card {
	return c.join(c.ledger.Wishlisted())
}

func (c *client) join(entries []ledger.Entry) []catalogs.Card {
	out := make([]catalogs.Card, 0, len(entries))
	for _, e := range entries {
		if card, ok := c.catalog.CardOrSlot(e.CardID); ok {
			out = append(out, card)
		}
	}
	return out
}

// Items returns the cards of a scope joined with their ownership records.
// Collection and wishlist items are ordered by card ID, the whole catalog in
// release order.
func (c *client) Items(scope Scope) []query.Item {
	var entries []ledger.Entry
	switch scope {
	case ScopeAll:
		cards := c.catalog.Cards()
		out := make([]query.Item, 0, len(cards))
		for _, card := range cards {
			out = append(out, c.item(card))
		}
		return out
	case ScopeWishlist:
		entries = c.ledger.Wishlisted()
	default:
		entries = c.ledger.Owned()
	}

	out := make([]query.Item, 0, len(entries))
	for _, e := range entries {
		card, ok := c.catalog.CardOrSlot(e.CardID)
		if !ok {
			continue
		}
		out = append(out, query.Item{Card: card, Quantity: e.Quantity, Wishlisted: e.Wishlisted, DateAdded: e.DateAdded})
	}
	return out
}

func (c *client) item(card catalogs.Card) query.Item {
	it := query.Item{Card: card}
	if e, ok := c.ledger.Entry(card.ID); ok {
		it.Quantity = e.Quantity
		it.Wishlisted = e.Wishlisted
		it.DateAdded = e.DateAdded
	}
	return it
}
