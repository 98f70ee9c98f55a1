package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func readEvent(t *testing.T, lines *bufio.Scanner) (name, data string) {
	t.Helper()
	for lines.Scan() {
		line := lines.Text()
		if line == "" && name != "" {
			return name, data
		}
		if v, ok := strings.CutPrefix(line, "event: "); ok {
			name = v
		}
		if v, ok := strings.CutPrefix(line, "data: "); ok {
			data = v
		}
	}
	t.Fatal("stream ended")
	return "", ""
}

// TestBroadcaster_Stream tests connect, broadcast and client accounting.
func TestBroadcaster_Stream(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	if name, data := readEvent(t, lines); name != "connected" || !strings.Contains(data, "Inkwell") {
		t.Fatalf("unexpected first event %q %q", name, data)
	}
	if n := b.ClientCount(); n != 1 {
		t.Errorf("expected 1 client, got %d", n)
	}

	b.Broadcast(Event{Event: "refresh.status", ID: "7", Data: map[string]any{"state": "loading"}})
	name, data := readEvent(t, lines)
	if name != "refresh.status" || data != `{"state":"loading"}` {
		t.Errorf("unexpected event %q %q", name, data)
	}
}

// TestBroadcaster_Shutdown tests that open streams end and new ones are
// refused after Run returns.
func TestBroadcaster_Shutdown(t *testing.T) {
	b := NewBroadcaster(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)

	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	lines := bufio.NewScanner(resp.Body)
	readEvent(t, lines)

	cancel()

	ended := make(chan struct{})
	go func() {
		for lines.Scan() {
		}
		close(ended)
	}()
	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after shutdown")
	}

	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after shutdown, got %d", w.Code)
	}
}
