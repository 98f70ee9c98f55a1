// Package app provides the application context and dependency management
// for the inkwell CLI. It centralizes configuration, logging and the lazily
// created engine client.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/persistence"
	"github.com/agentstation/inkwell/internal/server"
	"github.com/agentstation/inkwell/internal/sources/lorcast"
	"github.com/agentstation/inkwell/internal/transport"
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/logging"
	"github.com/agentstation/inkwell/pkg/refresh"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the inkwell application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// client is created on first use
	mu     sync.Mutex
	client inkwell.Client
	opts   []inkwell.Option

	out io.Writer // command output, stdout when nil
}

// New creates a new App with the given version information. Without
// WithConfig the configuration is read from the default locations.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, err
		}
		a.config = config
	}
	if a.logger == nil {
		logger := NewLogger(a.config)
		a.logger = &logger
	}
	return a, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// ServerConfig returns the HTTP API configuration.
func (a *App) ServerConfig() server.Config { return a.config.Server }

// RemoteURL returns the remote card source API root.
func (a *App) RemoteURL() string { return a.config.RemoteURL }

// Client returns the engine client, creating it on first use. Only one
// client is ever created per App.
func (a *App) Client() (inkwell.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	store, err := a.openLedger(logging.WithLogger(context.Background(), a.logger))
	if err != nil {
		return nil, err
	}

	client, err := inkwell.New(a.clientOptions(store)...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a.logger.Debug().
		Str("catalog", client.CatalogVersion()).
		Str("ledger", a.config.LedgerPath).
		Str("driver", a.config.LedgerDriver).
		Msg("Client ready")

	a.client = client
	return client, nil
}

// openLedger opens the configured ownership store. Both stores move a
// damaged file aside and start empty instead of failing.
func (a *App) openLedger(ctx context.Context) (ledger.Store, error) {
	switch a.config.LedgerDriver {
	case DriverSQLite:
		return persistence.OpenSQLite(ctx, a.config.LedgerPath)
	default:
		return persistence.NewFileStore(a.config.LedgerPath)
	}
}

// clientOptions constructs engine options from the configuration.
func (a *App) clientOptions(store ledger.Store) []inkwell.Option {
	cfg := a.config
	opts := []inkwell.Option{
		inkwell.WithLedgerStore(store),
		inkwell.WithRefreshTimeout(cfg.RefreshTimeout),
		inkwell.WithAutoRefreshInterval(cfg.RefreshInterval),
		inkwell.WithFreshnessWindow(cfg.FreshnessWindow),
		inkwell.WithEntitlement(inkwell.StaticEntitlement(cfg.Premium)),
		inkwell.WithRemote(func(cat *catalogs.Store) (refresh.Fetcher, error) {
			client, err := lorcast.New(cat,
				lorcast.WithBaseURL(cfg.RemoteURL),
				lorcast.WithConcurrency(cfg.RemoteConcurrency),
				lorcast.WithTransport(a.remoteTransport()),
			)
			if err != nil {
				return nil, err
			}
			return client, nil
		}),
	}
	if cfg.CatalogDir != "" {
		opts = append(opts, inkwell.WithCatalogDir(cfg.CatalogDir))
	}
	return append(opts, a.opts...)
}

// remoteTransport builds the HTTP client of the remote source. Lorcast itself
// is anonymous; a key is only sent to mirrors that ask for one.
func (a *App) remoteTransport() *transport.Client {
	var opts []transport.Option
	if key := a.config.RemoteAPIKey; key != "" {
		opts = append(opts, transport.WithAPIKey(transport.ForScheme(a.config.RemoteAuth), key))
	}
	return transport.New(lorcast.SourceName, opts...)
}

// Shutdown stops background work and closes the ledger.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	client := a.client
	a.client = nil
	a.mu.Unlock()

	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close client during shutdown")
		return errors.WrapIO("close", a.config.LedgerPath, err)
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ValidationError{Field: "config", Message: "config is nil"}
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClientOptions appends engine options, applied after the configured
// ones. Tests use it to swap the catalog or the fetcher.
func WithClientOptions(opts ...inkwell.Option) Option {
	return func(a *App) error {
		a.opts = append(a.opts, opts...)
		return nil
	}
}

// WithOutput redirects command output to w.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
