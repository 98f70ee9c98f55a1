package inkwell

import (
	"context"
	"time"

	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/logging"
	"github.com/agentstation/inkwell/pkg/refresh"
)

// Compile-time interface check to ensure proper implementation.
var _ Refresher = (*client)(nil)

// Refresher controls the refresh of remote card metadata. At most one fetch
// runs at a time; every trigger joins the running one.
type Refresher interface {
	// Refresh starts a refresh, or joins the running one, without waiting
	Refresh(ctx context.Context) *refresh.Flight

	// RefreshAndWait starts or joins a refresh and waits for it
	RefreshAndWait(ctx context.Context) (catalogs.MergeResult, error)

	// RefreshIfStale starts a refresh when the last success is older than the freshness window
	RefreshIfStale(ctx context.Context) (*refresh.Flight, bool)

	// RefreshStatus returns the current refresh status
	RefreshStatus() refresh.Status

	// LastRefreshOutcome returns the terminal status of the last finished refresh
	LastRefreshOutcome() refresh.Status

	// CancelRefresh abandons the running refresh without merging
	CancelRefresh() bool

	// LastSuccessfulRefresh returns the time of the last success, zero if none
	LastSuccessfulRefresh() time.Time

	// CheckUpdates compares remote per-set card counts with the bundled catalog
	CheckUpdates(ctx context.Context) (catalogs.UpdateReport, error)
}

// SetCounter is implemented by remote sources that can list card counts per
// set without downloading every card.
type SetCounter interface {
	SetCounts(ctx context.Context) ([]catalogs.RemoteSetCount, error)
}

// Refresh starts a refresh, or joins the running one.
func (c *client) Refresh(ctx context.Context) *refresh.Flight {
	f, started := c.coordinator.Request(ctx)
	if started {
		logging.FromContext(ctx).Debug().Msg("Refresh started")
	}
	return f
}

// RefreshAndWait starts or joins a refresh and waits for it. Abandoning the
// wait through ctx does not cancel the refresh.
func (c *client) RefreshAndWait(ctx context.Context) (catalogs.MergeResult, error) {
	f := c.Refresh(ctx)
	if err := f.Wait(ctx); err != nil {
		return catalogs.MergeResult{}, err
	}
	return f.Result(), nil
}

// RefreshIfStale starts a refresh when the catalog was never refreshed or the
// last success is older than the freshness window. It reports whether a
// refresh is running afterwards.
func (c *client) RefreshIfStale(ctx context.Context) (*refresh.Flight, bool) {
	if !c.coordinator.Stale(c.options.freshnessWindow) {
		return nil, false
	}
	return c.Refresh(ctx), true
}

// RefreshStatus returns the current refresh status.
func (c *client) RefreshStatus() refresh.Status {
	return c.coordinator.Status()
}

// LastRefreshOutcome returns the terminal status of the last finished refresh.
func (c *client) LastRefreshOutcome() refresh.Status {
	return c.coordinator.LastOutcome()
}

// CancelRefresh abandons the running refresh.
func (c *client) CancelRefresh() bool {
	return c.coordinator.Cancel()
}

// LastSuccessfulRefresh returns the time of the last successful refresh.
func (c *client) LastSuccessfulRefresh() time.Time {
	return c.coordinator.LastSuccess()
}

// CheckUpdates compares remote per-set card counts with the bundled catalog.
func (c *client) CheckUpdates(ctx context.Context) (catalogs.UpdateReport, error) {
	counter, ok := c.fetcher.(SetCounter)
	if !ok {
		return catalogs.UpdateReport{}, &errors.ConfigError{
			Component: "remote",
			Message:   "remote source cannot list set counts",
		}
	}

	counts, err := counter.SetCounts(ctx)
	if err != nil {
		return catalogs.UpdateReport{}, err
	}
	return c.catalog.CompareCounts(counts), nil
}
