// Package adapters connects the realtime transports to the event broker.
//
// Each subscriber numbers its events from 1, so a client that was dropped
// for reading too slowly can tell how much it missed.
package adapters

import (
	"strconv"
	"sync/atomic"

	"github.com/agentstation/inkwell/internal/server/events"
	"github.com/agentstation/inkwell/internal/server/sse"
	ws "github.com/agentstation/inkwell/internal/server/websocket"
)

// WebSocketSubscriber forwards broker events to every WebSocket client.
type WebSocketSubscriber struct {
	hub *ws.Hub
	seq atomic.Uint64
}

// NewWebSocketSubscriber creates a subscriber for hub.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send implements events.Subscriber.
func (s *WebSocketSubscriber) Send(event events.Event) error {
	s.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Seq:       s.seq.Add(1),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	return nil
}

// Close implements events.Subscriber. The hub stops with the server context.
func (s *WebSocketSubscriber) Close() error { return nil }

// SSESubscriber forwards broker events to every SSE stream, using the
// sequence number as the event ID.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
	seq         atomic.Uint64
}

// NewSSESubscriber creates a subscriber for broadcaster.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send implements events.Subscriber.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event: string(event.Type),
		ID:    strconv.FormatUint(s.seq.Add(1), 10),
		Data:  event.Data,
	})
	return nil
}

// Close implements events.Subscriber. The broadcaster stops with the server
// context.
func (s *SSESubscriber) Close() error { return nil }
