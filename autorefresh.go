package inkwell

import (
	"context"
	"time"

	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRefresher = (*client)(nil)

// AutoRefresher provides controls for the scheduled refresh.
type AutoRefresher interface {
	// AutoRefreshOn starts the scheduled refresh at the configured interval
	AutoRefreshOn() error

	// AutoRefreshOff stops the scheduled refresh
	AutoRefreshOff() error

	// AutoRefreshEnabled reports whether the scheduled refresh is running
	AutoRefreshEnabled() bool
}

// AutoRefreshOn starts the scheduled refresh. Every tick requests a refresh
// through the coordinator, so a tick that lands on a running manual refresh
// joins it instead of fetching again.
func (c *client) AutoRefreshOn() error {
	interval := c.options.autoRefreshInterval
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRefreshInterval",
			Value:   interval,
			Message: "refresh interval must be positive",
		}
	}

	// stop any running scheduler first
	if err := c.AutoRefreshOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	done := make(chan struct{})
	c.refreshTick = ticker
	c.stopCh = stop
	c.autoStopped = done

	go func() {
		defer close(done)
		ctx := context.Background()
		for {
			select {
			case <-ticker.C:
				if _, started := c.coordinator.Request(ctx); started {
					logging.Debug().Msg("Scheduled refresh started")
				}
			case <-stop:
				return
			}
		}
	}()

	logging.Debug().Dur("interval", interval).Msg("Auto refresh enabled")
	return nil
}

// AutoRefreshOff stops the scheduled refresh. A refresh that is already
// running is left to finish.
func (c *client) AutoRefreshOff() error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	if c.refreshTick == nil {
		return nil
	}
	c.refreshTick.Stop()
	close(c.stopCh)
	<-c.autoStopped

	c.refreshTick = nil
	c.stopCh = nil
	c.autoStopped = nil
	return nil
}

// AutoRefreshEnabled reports whether the scheduled refresh is running.
func (c *client) AutoRefreshEnabled() bool {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()
	return c.refreshTick != nil
}
