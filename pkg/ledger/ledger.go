package ledger

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/logging"
)

// Ledger is the in-memory ownership state backed by a Store.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]Entry
	store   Store
	now     func() time.Time

	hookMu   sync.RWMutex
	onChange []ChangeHook
}

// ChangeHook is called after a user action changed an entry. A purged entry
// is reported with a zero Quantity and Wishlisted false.
type ChangeHook func(prev, next Entry)

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock used for DateAdded.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates an empty ledger over store. A nil store keeps entries in memory.
func New(store Store, opts ...Option) *Ledger {
	if store == nil {
		store = NewMemoryStore()
	}
	l := &Ledger{
		entries: make(map[string]Entry),
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory state with the persisted entries. On a read
// error the ledger is left empty and still usable; the error is returned so
// the caller can log it.
func (l *Ledger) Load(ctx context.Context) error {
	entries, err := l.store.Load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]Entry, len(entries))
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.CardID == "" {
			continue
		}
		if e.Quantity < 0 {
			e.Quantity = 0
		}
		if !e.Active() {
			continue
		}
		l.entries[e.CardID] = e
	}
	logging.FromContext(ctx).Debug().Int("entries", len(l.entries)).Msg("Loaded ownership ledger")
	return nil
}

// SetOwnedQuantity sets the owned copies of a card. Negative quantities are
// clamped to 0. A quantity of 0 clears ownership and keeps the wishlist flag.
func (l *Ledger) SetOwnedQuantity(ctx context.Context, cardID string, qty int) (Entry, error) {
	if qty < 0 {
		logging.FromContext(ctx).Warn().
			Str("card_id", cardID).
			Int("quantity", qty).
			Msg("Negative quantity clamped to 0")
		qty = 0
	}
	return l.apply(ctx, cardID, func(e *Entry) {
		e.Quantity = qty
	})
}

// AdjustQuantity adds delta to the owned copies, never going below 0.
func (l *Ledger) AdjustQuantity(ctx context.Context, cardID string, delta int) (Entry, error) {
	return l.apply(ctx, cardID, func(e *Entry) {
		e.Quantity = max(e.Quantity+delta, 0)
	})
}

// ToggleWishlist flips the wishlist flag of a card.
func (l *Ledger) ToggleWishlist(ctx context.Context, cardID string) (Entry, error) {
	return l.apply(ctx, cardID, func(e *Entry) {
		e.Wishlisted = !e.Wishlisted
	})
}

// SetWishlisted sets the wishlist flag of a card.
func (l *Ledger) SetWishlisted(ctx context.Context, cardID string, wishlisted bool) (Entry, error) {
	return l.apply(ctx, cardID, func(e *Entry) {
		e.Wishlisted = wishlisted
	})
}

// OnChange registers a hook for entry changes.
func (l *Ledger) OnChange(fn ChangeHook) {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// apply runs one user action and then notifies hooks outside the lock.
func (l *Ledger) apply(ctx context.Context, cardID string, mutate func(*Entry)) (Entry, error) {
	if strings.TrimSpace(cardID) == "" {
		return Entry{}, &errors.ValidationError{Field: "card_id", Message: "card id is required"}
	}
	ctx = logging.WithCardID(ctx, cardID)

	prev, next, changed, err := l.write(ctx, cardID, mutate)
	if err != nil || !changed {
		return next, err
	}

	l.hookMu.RLock()
	hooks := slices.Clone(l.onChange)
	l.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(prev, next)
	}
	return next, nil
}

// write applies mutate under the write lock. The store write happens before
// the map update, so a failed write leaves no trace.
func (l *Ledger) write(ctx context.Context, cardID string, mutate func(*Entry)) (prev, next Entry, changed bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, existed := l.entries[cardID]
	next = prev
	next.CardID = cardID
	mutate(&next)

	if !next.Active() {
		// purge: the card is in neither view
		next.DateAdded = utc.Time{}
		if !existed {
			return prev, next, false, nil
		}
		if err := l.store.Delete(ctx, cardID); err != nil {
			return prev, prev, false, err
		}
		delete(l.entries, cardID)
		return prev, next, true, nil
	}

	if next.DateAdded.IsZero() {
		next.DateAdded = utc.New(l.now())
	}
	if existed && prev == next {
		return prev, next, false, nil
	}
	if err := l.store.Put(ctx, next); err != nil {
		return prev, prev, false, err
	}
	l.entries[cardID] = next
	return prev, next, true, nil
}

// Entry returns the record of a card.
func (l *Ledger) Entry(cardID string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[cardID]
	return e, ok
}

// Quantity returns the owned copies of a card.
func (l *Ledger) Quantity(cardID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries[cardID].Quantity
}

// Entries returns every active entry ordered by card ID.
func (l *Ledger) Entries() []Entry {
	return l.filter(func(Entry) bool { return true })
}

// Owned returns entries with at least one copy.
func (l *Ledger) Owned() []Entry {
	return l.filter(Entry.Owned)
}

// Wishlisted returns entries on the wishlist, owned or not.
func (l *Ledger) Wishlisted() []Entry {
	return l.filter(func(e Entry) bool { return e.Wishlisted })
}

// OwnedIDs returns the set of card IDs with at least one copy.
func (l *Ledger) OwnedIDs() map[string]struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make(map[string]struct{}, len(l.entries))
	for id, e := range l.entries {
		if e.Owned() {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// Len returns the number of active entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Close closes the backing store.
func (l *Ledger) Close() error {
	return l.store.Close()
}

func (l *Ledger) filter(keep func(Entry) bool) []Entry {
	l.mu.RLock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	l.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.CardID, b.CardID)
	})
	return out
}
