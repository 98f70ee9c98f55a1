// Package serve provides the HTTP server command for the inkwell CLI.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/server"
)

// NewCommand creates the serve command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var autoRefresh bool

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the REST API server with WebSocket and SSE updates",
		Long: `Serve the collection over a REST API.

Features:
  - Catalog, collection, wishlist and progress endpoints under /api/v1
  - WebSocket (/api/v1/updates/ws) and SSE (/api/v1/updates/stream) events
    for card, collection and refresh changes
  - Response caching invalidated on every change
  - Per-IP rate limiting, API key on mutating routes, CORS
  - OpenAPI document at /api/v1/openapi.json
  - Graceful shutdown on SIGINT and SIGTERM

Flags override server.* config keys and INKWELL_SERVER_* variables.`,
		Example: `  # Start on the default port
  inkwell serve

  # Require an API key for writes and allow a web app origin
  inkwell serve --api-key s3cret --cors-origins https://collection.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.ServerConfig()
			applyFlags(cmd, &cfg)
			logger := app.Logger()

			client, err := app.Client()
			if err != nil {
				return err
			}

			srv, err := server.New(client, cfg, logger)
			if err != nil {
				return err
			}

			if autoRefresh {
				if err := client.AutoRefreshOn(); err != nil {
					return err
				}
				if _, started := client.RefreshIfStale(cmd.Context()); started {
					logger.Info().Msg("Catalog is stale, refresh started")
				}
			}

			logger.Info().
				Str("addr", cfg.Addr()).
				Str("prefix", cfg.PathPrefix).
				Bool("cors", cfg.CORSEnabled).
				Bool("auth", cfg.APIKey != "").
				Int("rate_limit", cfg.RateLimit).
				Dur("cache_ttl", cfg.CacheTTL).
				Bool("auto_refresh", autoRefresh).
				Msg("Starting API server")

			return srv.ListenAndServe(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "bind address")
	flags.Int("port", 0, "server port")
	flags.String("prefix", "", "API path prefix")
	flags.StringSlice("cors-origins", nil, "allowed CORS origins, * for any")
	flags.String("api-key", "", "API key required for mutating requests")
	flags.String("auth-header", "", "API key header name")
	flags.Int("rate-limit", -1, "requests per minute per IP (0 to disable)")
	flags.Duration("cache-ttl", 0, "response cache TTL")
	flags.Duration("write-timeout", 0, "HTTP write timeout")
	flags.BoolVar(&autoRefresh, "auto-refresh", true, "refresh card data on schedule while serving")
	return cmd
}

// applyFlags overrides cfg with the flags the user set.
func applyFlags(cmd *cobra.Command, cfg *server.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("prefix") {
		cfg.PathPrefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("cors-origins") {
		cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
		cfg.CORSEnabled = len(cfg.CORSOrigins) > 0
	}
	if flags.Changed("api-key") {
		cfg.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("auth-header") {
		cfg.AuthHeader, _ = flags.GetString("auth-header")
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit, _ = flags.GetInt("rate-limit")
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL, _ = flags.GetDuration("cache-ttl")
	}
	if flags.Changed("write-timeout") {
		cfg.WriteTimeout, _ = flags.GetDuration("write-timeout")
	}
}
