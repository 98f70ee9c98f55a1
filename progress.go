package inkwell

import (
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/progress"
)

// Compile-time interface check to ensure proper implementation.
var _ Progress = (*client)(nil)

// Progress reports set completion.
type Progress interface {
	// SetProgress returns the completion of one set
	SetProgress(setName string, opts ...progress.Option) (progress.Progress, error)

	// AllProgress returns the completion of every set in release order
	AllProgress() []progress.Progress

	// OverallProgress sums the completion of all sets
	OverallProgress() progress.Progress
}

// SetProgress returns the completion of one set. The effective total is used
// unless progress.WithTotal overrides it.
func (c *client) SetProgress(setName string, opts ...progress.Option) (progress.Progress, error) {
	if _, ok := c.catalog.Set(setName); !ok {
		return progress.Progress{}, errors.NewNotFoundError("set", setName)
	}
	return progress.Calculate(c.catalog, c.ledger, setName, opts...), nil
}

// AllProgress returns the completion of every set in release order.
func (c *client) AllProgress() []progress.Progress {
	return progress.All(c.catalog, c.ledger)
}

// OverallProgress sums the completion of all sets.
func (c *client) OverallProgress() progress.Progress {
	return progress.Overall(c.catalog, c.ledger)
}
