package server

import (
	"net/http"
	"time"

	"github.com/agentstation/inkwell/internal/server/handlers"
	"github.com/agentstation/inkwell/internal/server/middleware"
	"github.com/agentstation/inkwell/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.client,
		s.cache,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
	)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	p := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+p+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+p+"/ready", h.HandleReady)

	// Catalog
	mux.HandleFunc("GET "+p+"/sets", h.HandleListSets)
	mux.HandleFunc("GET "+p+"/sets/{name}", h.HandleGetSet)
	mux.HandleFunc("GET "+p+"/sets/{name}/cards", h.HandleGetSetCards)
	mux.HandleFunc("GET "+p+"/cards", h.HandleListCards)
	mux.HandleFunc("GET "+p+"/cards/{id}", h.HandleGetCard)

	// Collection
	mux.HandleFunc("GET "+p+"/collection", h.HandleListCollection)
	mux.HandleFunc("PUT "+p+"/collection/{id}", h.HandleSetQuantity)
	mux.HandleFunc("GET "+p+"/wishlist", h.HandleListWishlist)
	mux.HandleFunc("POST "+p+"/wishlist/{id}", h.HandleWishlist)
	mux.HandleFunc("PUT "+p+"/wishlist/{id}", h.HandleWishlist)

	// Progress
	mux.HandleFunc("GET "+p+"/progress", h.HandleListProgress)
	mux.HandleFunc("GET "+p+"/progress/{name}", h.HandleGetProgress)

	// Refresh
	mux.HandleFunc("GET "+p+"/refresh", h.HandleRefreshStatus)
	mux.HandleFunc("POST "+p+"/refresh", h.HandleStartRefresh)
	mux.HandleFunc("DELETE "+p+"/refresh", h.HandleCancelRefresh)
	mux.HandleFunc("GET "+p+"/refresh/check", h.HandleCheckUpdates)

	mux.HandleFunc("GET "+p+"/entitlement", h.HandleEntitlement)

	// Real-time endpoints
	mux.HandleFunc("GET "+p+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+p+"/updates/stream", h.HandleSSE)

	// OpenAPI specification endpoints
	mux.HandleFunc("GET "+p+"/openapi.json", h.HandleOpenAPIJSON)
	mux.HandleFunc("GET "+p+"/openapi.yaml", h.HandleOpenAPIYAML)

	// Stats
	mux.HandleFunc("GET "+p+"/stats", s.handleStats)

	// Anything else under the prefix gets the JSON envelope instead of the
	// mux's plain text 404.
	mux.HandleFunc(p+"/", func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found", r.Method+" "+r.URL.Path)
	})
}

// handleStats reports server runtime counters.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.cache.GetStats()
	response.OK(w, map[string]any{
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"cache": map[string]any{
			"items":  stats.ItemCount,
			"hits":   stats.Hits,
			"misses": stats.Misses,
		},
		"events": map[string]any{
			"published":   s.broker.EventsPublished(),
			"dropped":     s.broker.EventsDropped(),
			"queue_depth": s.broker.QueueDepth(),
			"subscribers": s.broker.SubscriberCount(),
		},
		"websocket_clients": s.wsHub.ClientCount(),
		"sse_clients":       s.sseBroadcaster.ClientCount(),
	})
}

// applyMiddleware wraps handler with middleware chain. The request ID is
// assigned first so every later layer can log it.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		}
		chain = append(chain, middleware.CORS(corsConfig))
	}

	if cfg.RateLimit > 0 {
		chain = append(chain, middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, time.Minute, s.logger)))
	}

	if cfg.APIKey != "" {
		authConfig := middleware.DefaultAuthConfig(cfg.APIKey)
		if cfg.AuthHeader != "" {
			authConfig.HeaderName = cfg.AuthHeader
		}
		chain = append(chain, middleware.Auth(authConfig, s.logger))
	}

	return middleware.Chain(chain...)(handler)
}
