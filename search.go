package inkwell

import (
	"github.com/agentstation/inkwell/pkg/query"
)

// Compile-time interface check to ensure proper implementation.
var _ Searcher = (*client)(nil)

// Searcher runs filtered card listings.
type Searcher interface {
	// Search filters and sorts the cards of a scope
	Search(scope Scope, opts query.Options) []query.Item
}

// Search filters and sorts the cards of a scope.
func (c *client) Search(scope Scope, opts query.Options) []query.Item {
	return query.Apply(c.Items(scope), opts)
}
