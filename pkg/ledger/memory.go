package ledger

import (
	"context"
	"sync"
)

// MemoryStore is a Store that keeps entries in a map. It is used when no
// durable store is configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(entries ...Entry) *MemoryStore {
	m := &MemoryStore{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		m.entries[e.CardID] = e
	}
	return m
}

// Load implements Store.
func (m *MemoryStore) Load(context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.entries))
	for _, id := range sortedIDs(m.entries) {
		out = append(out, m.entries[id])
	}
	return out, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.CardID] = e
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, cardID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, cardID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
