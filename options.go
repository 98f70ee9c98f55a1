package inkwell

import (
	"io/fs"
	"os"
	"time"

	"github.com/agentstation/inkwell/internal/embedded"
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/refresh"
)

// options holds the client configuration.
type options struct {
	catalogFS fs.FS
	store     ledger.Store

	fetcher refresh.Fetcher
	remote  RemoteFactory

	refreshTimeout      time.Duration
	autoRefreshEnabled  bool
	autoRefreshInterval time.Duration
	freshnessWindow     time.Duration

	entitlement Entitlement
	now         func() time.Time
}

// RemoteFactory builds the remote fetcher once the bundled catalog is loaded,
// so the fetcher can map remote set codes to catalog sets.
type RemoteFactory func(cat *catalogs.Store) (refresh.Fetcher, error)

func defaults() *options {
	return &options{
		catalogFS:           embedded.Catalog(),
		refreshTimeout:      constants.DefaultRefreshTimeout,
		autoRefreshInterval: constants.DefaultRefreshInterval,
		freshnessWindow:     constants.DefaultFreshnessWindow,
		entitlement:         StaticEntitlement(false),
		now:                 time.Now,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithCatalogFS loads the bundled catalog from fsys instead of the embedded one.
func WithCatalogFS(fsys fs.FS) Option {
	return func(o *options) error {
		if fsys == nil {
			return &errors.ValidationError{Field: "catalogFS", Message: "catalog filesystem is nil"}
		}
		o.catalogFS = fsys
		return nil
	}
}

// WithCatalogDir loads the bundled catalog from a directory on disk.
func WithCatalogDir(dir string) Option {
	return func(o *options) error {
		info, err := os.Stat(dir)
		if err != nil {
			return errors.WrapIO("stat", dir, err)
		}
		if !info.IsDir() {
			return &errors.ValidationError{Field: "catalogDir", Value: dir, Message: "not a directory"}
		}
		o.catalogFS = os.DirFS(dir)
		return nil
	}
}

// WithLedgerStore persists ownership in store. Without it the ledger lives in
// memory only.
func WithLedgerStore(store ledger.Store) Option {
	return func(o *options) error {
		o.store = store
		return nil
	}
}

// WithFetcher configures the remote metadata source.
func WithFetcher(f refresh.Fetcher) Option {
	return func(o *options) error {
		o.fetcher = f
		return nil
	}
}

// WithRemote configures a remote source that needs the loaded catalog.
// It takes precedence over WithFetcher.
func WithRemote(factory RemoteFactory) Option {
	return func(o *options) error {
		o.remote = factory
		return nil
	}
}

// WithRefreshTimeout bounds every remote fetch.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "refreshTimeout", Value: d, Message: "timeout must be positive"}
		}
		o.refreshTimeout = d
		return nil
	}
}

// WithAutoRefresh configures whether the scheduled refresh starts with the client.
func WithAutoRefresh(enabled bool) Option {
	return func(o *options) error {
		o.autoRefreshEnabled = enabled
		return nil
	}
}

// WithAutoRefreshInterval configures how often the scheduled refresh runs.
func WithAutoRefreshInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval < constants.MinRefreshInterval {
			return &errors.ValidationError{
				Field:   "autoRefreshInterval",
				Value:   interval,
				Message: "interval must be at least " + constants.MinRefreshInterval.String(),
			}
		}
		o.autoRefreshInterval = interval
		return nil
	}
}

// WithFreshnessWindow sets the age after which RefreshIfStale fetches.
func WithFreshnessWindow(window time.Duration) Option {
	return func(o *options) error {
		o.freshnessWindow = window
		return nil
	}
}

// WithEntitlement configures the premium feature check reported to callers.
func WithEntitlement(e Entitlement) Option {
	return func(o *options) error {
		if e == nil {
			e = StaticEntitlement(false)
		}
		o.entitlement = e
		return nil
	}
}

// WithClock overrides the clock for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		o.now = now
		return nil
	}
}
