// Package inkwell provides the main entry point for the Inkwell Keeper
// collection engine. It wires the bundled card catalog, the ownership ledger,
// set completion progress, search and the background refresh of remote card
// metadata into one service object.
//
// The engine owns its state explicitly: every Client carries its own catalog,
// ledger and refresh coordinator, so several clients can live side by side in
// tests.
//
// Example usage:
//
//	// Create a client over the embedded catalog with a file-backed ledger
//	store, err := persistence.NewFileStore("collection.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ik, err := inkwell.New(inkwell.WithLedgerStore(store))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ik.Close()
//
//	// Record a card
//	if _, err := ik.SetOwnedQuantity(ctx, "TFC-001", 2); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Check set completion
//	p, err := ik.SetProgress("The First Chapter")
//	fmt.Printf("%d/%d (%.1f%%)\n", p.Collected, p.Total, p.Percentage)
package inkwell

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/logging"
	"github.com/agentstation/inkwell/pkg/refresh"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client manages a card catalog, a collection and the refresh of remote metadata.
type Client interface {

	// Catalog provides read access to sets and cards
	Catalog

	// Collection records owned copies and wishlist flags
	Collection

	// Progress reports set completion
	Progress

	// Searcher runs filtered card listings
	Searcher

	// Refresher controls the remote metadata refresh
	Refresher

	// AutoRefresher starts and stops the scheduled refresh
	AutoRefresher

	// Hooks provides access to event callback registration
	Hooks

	// PremiumActive reports the consumer entitlement. The engine never
	// enforces it.
	PremiumActive() bool

	// Close stops background work and closes the ledger store.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	catalog     *catalogs.Store
	migrator    *catalogs.Migrator
	ledger      *ledger.Ledger
	coordinator *refresh.Coordinator
	fetcher     refresh.Fetcher

	// auto refresh state
	autoMu      sync.Mutex
	refreshTick *time.Ticker  // ticker that triggers scheduled refreshes
	stopCh      chan struct{} // closed to stop the scheduler goroutine
	autoStopped chan struct{} // closed when the scheduler goroutine exited

	hooks *hooks

	closeOnce sync.Once
	closeErr  error
}

// New creates a new Client instance with the given options. A missing or
// malformed bundled catalog is a fatal error. A ledger that cannot be read is
// logged and replaced by an empty one.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	log := logging.Debug()
	log.Msg("Loading bundled catalog")

	bundle, err := catalogs.Load(o.catalogFS)
	if err != nil {
		return nil, err
	}
	store, err := catalogs.NewStore(bundle)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Str("version", store.Version()).
		Int("sets", len(store.Sets())).
		Int("cards", store.Len()).
		Msg("Bundled catalog loaded")

	c := &client{
		options:  o,
		catalog:  store,
		migrator: catalogs.NewMigrator(store, bundle.Migrations),
		ledger:   ledger.New(o.store, ledger.WithClock(o.now)),
		hooks:    newHooks(),
	}

	c.fetcher = o.fetcher
	if o.remote != nil {
		if c.fetcher, err = o.remote(store); err != nil {
			return nil, errors.NewConfigError("remote", "cannot create remote source", err)
		}
	}

	ctx := context.Background()
	c.loadLedger(ctx)
	c.ledger.OnChange(c.hooks.triggerEntryChanged)

	c.coordinator = refresh.NewCoordinator(c.fetcher, store,
		refresh.WithTimeout(o.refreshTimeout),
		refresh.WithClock(o.now),
		refresh.WithObserver(c.hooks.triggerRefreshStatus),
		refresh.WithMergeHook(c.hooks.triggerMerge),
	)

	if o.autoRefreshEnabled {
		if err := c.AutoRefreshOn(); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	return c, nil
}

// loadLedger reads the persisted collection and re-keys renamed cards.
func (c *client) loadLedger(ctx context.Context) {
	logger := logging.FromContext(ctx)

	if err := c.ledger.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("Ownership ledger unreadable, starting empty")
		return
	}

	result, err := c.ledger.Migrate(ctx, c.migrator.Resolve)
	if err != nil {
		logger.Warn().Err(err).Msg("Card ID migration failed")
		return
	}
	if len(result.Moved) > 0 || len(result.Unresolved) > 0 {
		logger.Info().
			Int("moved", len(result.Moved)).
			Strs("unresolved", result.Unresolved).
			Msg("Migrated collection card IDs")
	}
}

// PremiumActive reports the consumer entitlement.
func (c *client) PremiumActive() bool {
	return c.options.entitlement.PremiumActive()
}

// Close stops background work and closes the ledger store.
func (c *client) Close() error {
	c.closeOnce.Do(func() {
		_ = c.AutoRefreshOff()
		if c.coordinator != nil {
			_ = c.coordinator.Close()
		}
		c.closeErr = c.ledger.Close()
	})
	return c.closeErr
}
