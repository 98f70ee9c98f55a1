// Package handlers provides HTTP request handlers for the Inkwell API.
package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/server/cache"
	"github.com/agentstation/inkwell/internal/server/response"
	"github.com/agentstation/inkwell/internal/server/sse"
	ws "github.com/agentstation/inkwell/internal/server/websocket"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client         inkwell.Client
	cache          *cache.Cache
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
}

// New creates a new Handlers instance.
func New(
	client inkwell.Client,
	cache *cache.Cache,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		client:         client,
		cache:          cache,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
	}
}

// cached serves a GET response from the cache, keyed by the request URI,
// computing and storing it on a miss. Errors are never cached, nor are
// responses that a change flushed while they were computed.
func (h *Handlers) cached(w http.ResponseWriter, r *http.Request, compute func() (any, error)) {
	key := cache.Key(r.Method, r.URL.RequestURI())
	if data, ok := h.cache.Get(key); ok {
		w.Header().Set("X-Cache", "HIT")
		response.OK(w, data)
		return
	}

	gen := h.cache.Generation()
	data, err := compute()
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cache.SetAt(gen, key, data)
	w.Header().Set("X-Cache", "MISS")
	response.OK(w, data)
}
