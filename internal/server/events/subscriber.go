package events

// Subscriber is an interface for event consumers.
// Implementations adapt the event stream to one transport.
type Subscriber interface {
	// Send delivers an event. Implementations must not block.
	Send(Event) error

	// Close shuts the subscriber down.
	Close() error
}
