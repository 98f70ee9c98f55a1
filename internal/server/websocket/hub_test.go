package websocket

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case m, ok := <-c.send:
		return m, ok
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
		return Message{}, false
	}
}

// TestHub_Broadcast tests delivery to every registered client.
func TestHub_Broadcast(t *testing.T) {
	hub, _ := startHub(t)

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = NewClient(fmt.Sprintf("c-%d", i), hub, nil)
		hub.Register(clients[i])
	}
	if n := hub.ClientCount(); n != 3 {
		t.Fatalf("expected 3 clients, got %d", n)
	}

	hub.Broadcast(Message{Type: "card.added", Timestamp: time.Now(), Data: map[string]any{"id": "TFC-001"}})

	for _, c := range clients {
		if m, _ := receive(t, c); m.Type != "card.added" {
			t.Errorf("client %s: expected card.added, got %s", c.ID(), m.Type)
		}
	}
}

// TestHub_MessageOrdering tests that one client sees broadcasts in order.
func TestHub_MessageOrdering(t *testing.T) {
	hub, _ := startHub(t)
	c := NewClient("ordered", hub, nil)
	hub.Register(c)

	for i := range 50 {
		hub.Broadcast(Message{Type: fmt.Sprintf("m-%d", i)})
	}
	for i := range 50 {
		if m, _ := receive(t, c); m.Type != fmt.Sprintf("m-%d", i) {
			t.Fatalf("message %d out of order: %s", i, m.Type)
		}
	}
}

// TestHub_Unregister tests removal and idempotent unregister.
func TestHub_Unregister(t *testing.T) {
	hub, _ := startHub(t)
	c := NewClient("gone", hub, nil)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	if n := hub.ClientCount(); n != 0 {
		t.Errorf("expected 0 clients, got %d", n)
	}
	if _, ok := <-c.send; ok {
		t.Error("expected send channel to be closed")
	}
	if c.Send(Message{Type: "late"}) {
		t.Error("Send() to an unregistered client should fail")
	}
}

// TestHub_SlowClientDropped tests that a full client buffer disconnects the
// client without blocking others.
func TestHub_SlowClientDropped(t *testing.T) {
	hub, _ := startHub(t)
	slow := NewClient("slow", hub, nil)
	hub.Register(slow)

	for range clientBuffer {
		if !slow.Send(Message{Type: "fill"}) {
			t.Fatal("buffer filled early")
		}
	}
	hub.Broadcast(Message{Type: "overflow"})

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestHub_Shutdown tests that cancel closes every client.
func TestHub_Shutdown(t *testing.T) {
	hub, cancel := startHub(t)
	c := NewClient("c", hub, nil)
	hub.Register(c)

	cancel()

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed channel, got message")
		}
	case <-time.After(time.Second):
		t.Fatal("client not closed on shutdown")
	}
}

// TestHub_ConcurrentRegisterUnregister tests the client set under
// concurrent churn.
func TestHub_ConcurrentRegisterUnregister(t *testing.T) {
	hub, _ := startHub(t)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewClient(fmt.Sprintf("c-%d", i), hub, nil)
			hub.Register(c)
			hub.Broadcast(Message{Type: "churn"})
			if i%2 == 0 {
				hub.Unregister(c)
			}
		}()
	}
	wg.Wait()

	if n := hub.ClientCount(); n > 25 {
		t.Errorf("expected at most 25 clients, got %d", n)
	}
}
