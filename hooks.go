package inkwell

import (
	"sync"

	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/refresh"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for engine events
type (
	// CardAddedHook is called when a refresh appends a card to the catalog
	CardAddedHook func(card catalogs.Card)

	// CardUpdatedHook is called when a refresh changes a catalog card
	CardUpdatedHook func(old, new catalogs.Card)

	// RefreshStatusHook is called on every refresh status change, in order
	RefreshStatusHook func(status refresh.Status)

	// EntryChangedHook is called when a user action changes an ownership record
	EntryChangedHook func(old, new ledger.Entry)
)

// Hooks registers event callbacks. Card and entry hooks run synchronously on
// the goroutine that made the change; refresh status hooks run on the
// coordinator's delivery goroutine.
type Hooks interface {
	OnCardAdded(fn CardAddedHook)
	OnCardUpdated(fn CardUpdatedHook)
	OnRefreshStatus(fn RefreshStatusHook)
	OnEntryChanged(fn EntryChangedHook)
}

// OnCardAdded registers a callback for cards appended by a refresh.
func (c *client) OnCardAdded(fn CardAddedHook) { c.hooks.OnCardAdded(fn) }

// OnCardUpdated registers a callback for cards changed by a refresh.
func (c *client) OnCardUpdated(fn CardUpdatedHook) { c.hooks.OnCardUpdated(fn) }

// OnRefreshStatus registers a callback for refresh status changes.
func (c *client) OnRefreshStatus(fn RefreshStatusHook) { c.hooks.OnRefreshStatus(fn) }

// OnEntryChanged registers a callback for ownership changes.
func (c *client) OnEntryChanged(fn EntryChangedHook) { c.hooks.OnEntryChanged(fn) }

// hooks manages event callbacks
type hooks struct {
	mu              sync.RWMutex
	onCardAdded     []CardAddedHook
	onCardUpdated   []CardUpdatedHook
	onRefreshStatus []RefreshStatusHook
	onEntryChanged  []EntryChangedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) OnCardAdded(fn CardAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCardAdded = append(h.onCardAdded, fn)
}

func (h *hooks) OnCardUpdated(fn CardUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCardUpdated = append(h.onCardUpdated, fn)
}

func (h *hooks) OnRefreshStatus(fn RefreshStatusHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRefreshStatus = append(h.onRefreshStatus, fn)
}

func (h *hooks) OnEntryChanged(fn EntryChangedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntryChanged = append(h.onEntryChanged, fn)
}

// triggerMerge fires card hooks for one merge result
func (h *hooks) triggerMerge(result catalogs.MergeResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, change := range result.Updated {
		for _, hook := range h.onCardUpdated {
			hook(change.Old, change.New)
		}
	}
	for _, card := range result.Added {
		for _, hook := range h.onCardAdded {
			hook(card)
		}
	}
}

func (h *hooks) triggerRefreshStatus(status refresh.Status) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onRefreshStatus {
		hook(status)
	}
}

func (h *hooks) triggerEntryChanged(old, new ledger.Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onEntryChanged {
		hook(old, new)
	}
}
