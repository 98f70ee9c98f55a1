// Package server provides the HTTP server for the Inkwell API.
package server

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/server/cache"
	"github.com/agentstation/inkwell/internal/server/events"
	"github.com/agentstation/inkwell/internal/server/events/adapters"
	"github.com/agentstation/inkwell/internal/server/sse"
	ws "github.com/agentstation/inkwell/internal/server/websocket"
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/refresh"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	client         inkwell.Client
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	started        atomic.Bool
	done           chan struct{}
}

// New creates a new server over client. A nil logger discards logs.
func New(client inkwell.Client, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = constants.DefaultCacheTTL
	}

	logger.Debug().Msg("Creating server instance")

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		client:         client,
		cache:          cache.New(cfg.CacheTTL, constants.DefaultCacheCleanup),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger: logger,
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.connectHooks()
	return s, nil
}

// connectHooks publishes engine events to the broker. Catalog and ledger
// changes also flush the response cache.
func (s *Server) connectHooks() {
	s.client.OnCardAdded(func(card catalogs.Card) {
		s.cache.Clear()
		s.broker.Publish(events.CardAdded, map[string]any{
			"card": card,
		})
	})

	s.client.OnCardUpdated(func(old, updated catalogs.Card) {
		s.cache.Clear()
		s.broker.Publish(events.CardUpdated, map[string]any{
			"old_card": old,
			"new_card": updated,
		})
	})

	s.client.OnRefreshStatus(func(st refresh.Status) {
		s.broker.Publish(events.RefreshStatus, st)
		s.logger.Debug().
			Stringer("status", st).
			Msg("Refresh status event published")
	})

	s.client.OnEntryChanged(func(old, updated ledger.Entry) {
		s.cache.Clear()
		s.broker.Publish(events.CollectionChanged, map[string]any{
			"card_id":   updated.CardID,
			"old_entry": old,
			"new_entry": updated,
		})
	})

	s.logger.Debug().Msg("Engine hooks connected to event broker")
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster).
// Calls after the first are no-ops.
func (s *Server) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.logger.Debug().Msg("Starting background services")

	started := make(chan struct{}, 3)
	for _, run := range []func(context.Context){s.broker.Run, s.wsHub.Run, s.sseBroadcaster.Run} {
		go func() {
			run(s.ctx)
			started <- struct{}{}
		}()
	}
	go func() {
		for range 3 {
			<-started
		}
		close(s.done)
	}()
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// ListenAndServe runs the HTTP server until ctx is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.Start()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("Inkwell API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = s.Shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("HTTP server shutdown incomplete")
	}
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the background services and waits for them up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()
	if !s.started.Load() {
		return nil
	}

	select {
	case <-s.done:
		s.logger.Info().Msg("Background services shut down")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker {
	return s.broker
}
