package inkwell

import (
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ Catalog = (*client)(nil)

// Catalog provides read access to the card catalog. Every result is a copy.
type Catalog interface {
	// CatalogVersion returns the bundled snapshot version
	CatalogVersion() string

	// Sets returns every set in release order
	Sets() []catalogs.Set

	// Set returns a set by name
	Set(name string) (catalogs.Set, error)

	// CardsInSet returns the cards of a set
	CardsInSet(setName string) ([]catalogs.Card, error)

	// Card returns a card by ID
	Card(id string) (catalogs.Card, error)

	// Cards returns every card in release order
	Cards() []catalogs.Card

	// LocalCardCount returns the bundled card count of a set, 0 without a full list
	LocalCardCount(setName string) int

	// HasLocalCards reports whether a full card list was bundled for the set
	HasLocalCards(setName string) bool

	// Store returns the underlying catalog store
	Store() *catalogs.Store
}

// CatalogVersion returns the bundled snapshot version.
func (c *client) CatalogVersion() string {
	return c.catalog.Version()
}

// Sets returns every set in release order.
func (c *client) Sets() []catalogs.Set {
	return c.catalog.Sets()
}

// Set returns a set by name.
func (c *client) Set(name string) (catalogs.Set, error) {
	set, ok := c.catalog.Set(name)
	if !ok {
		return catalogs.Set{}, errors.NewNotFoundError("set", name)
	}
	return set, nil
}

// CardsInSet returns the cards of a set, bundled cards first.
func (c *client) CardsInSet(setName string) ([]catalogs.Card, error) {
	if _, err := c.Set(setName); err != nil {
		return nil, err
	}
	return c.catalog.CardsInSet(setName), nil
}

// Card returns a card by ID.
func (c *client) Card(id string) (catalogs.Card, error) {
	card, ok := c.catalog.Card(id)
	if !ok {
		return catalogs.Card{}, errors.NewNotFoundError("card", id)
	}
	return card, nil
}

// Cards returns every card in release order.
func (c *client) Cards() []catalogs.Card {
	return c.catalog.Cards()
}

// LocalCardCount returns the bundled card count of a set.
func (c *client) LocalCardCount(setName string) int {
	return c.catalog.LocalCardCount(setName)
}

// HasLocalCards reports whether a full card list was bundled for the set.
func (c *client) HasLocalCards(setName string) bool {
	return c.catalog.HasLocalCards(setName)
}

// Store returns the underlying catalog store.
func (c *client) Store() *catalogs.Store {
	return c.catalog
}
