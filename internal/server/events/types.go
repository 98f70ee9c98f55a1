// Package events fans engine events out to the realtime transports.
//
// The engine hooks publish into one Broker; WebSocket and SSE subscribers
// receive every event in publish order.
package events

import "time"

// EventType represents the type of engine event.
type EventType string

// Event types.
const (
	// Catalog events (from refresh merges).
	CardAdded   EventType = "card.added"
	CardUpdated EventType = "card.updated"

	// Refresh lifecycle.
	RefreshStatus EventType = "refresh.status"

	// Ledger events.
	CollectionChanged EventType = "collection.changed"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event represents an engine event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
