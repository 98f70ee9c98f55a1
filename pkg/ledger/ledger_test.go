package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/logging"
)

// failingStore fails loads or writes on demand.
type failingStore struct {
	*MemoryStore
	loadErr error
	putErr  error
}

func (f *failingStore) Load(ctx context.Context) ([]Entry, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.MemoryStore.Load(ctx)
}

func (f *failingStore) Put(ctx context.Context, e Entry) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryStore.Put(ctx, e)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSetOwnedQuantityKeepsWishlist(t *testing.T) {
	ctx := context.Background()
	l := New(nil)

	_, err := l.ToggleWishlist(ctx, "Card-001")
	require.NoError(t, err)
	_, err = l.SetOwnedQuantity(ctx, "Card-001", 3)
	require.NoError(t, err)
	assert.Len(t, l.Owned(), 1)

	e, err := l.SetOwnedQuantity(ctx, "Card-001", 0)
	require.NoError(t, err)
	assert.True(t, e.Wishlisted)
	assert.Equal(t, 0, e.Quantity)

	assert.Empty(t, l.Owned())
	require.Len(t, l.Wishlisted(), 1)
	assert.Equal(t, "Card-001", l.Wishlisted()[0].CardID)
}

func TestInactiveEntriesArePurged(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	l := New(store)

	_, err := l.SetOwnedQuantity(ctx, "TFC-001", 2)
	require.NoError(t, err)
	_, err = l.SetOwnedQuantity(ctx, "TFC-001", 0)
	require.NoError(t, err)

	_, ok := l.Entry("TFC-001")
	assert.False(t, ok)
	assert.Empty(t, l.Entries())

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestNegativeQuantityClamped(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)
	ctx := context.Background()
	l := New(nil)

	_, err := l.SetOwnedQuantity(ctx, "TFC-001", 4)
	require.NoError(t, err)
	e, err := l.SetOwnedQuantity(ctx, "TFC-001", -2)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Quantity)
	assert.True(t, tl.Contains("Negative quantity clamped"))

	e, err = l.AdjustQuantity(ctx, "TFC-002", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Quantity)
	e, err = l.AdjustQuantity(ctx, "TFC-002", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Quantity)
}

func TestDateAdded(t *testing.T) {
	ctx := context.Background()
	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	now := first
	l := New(nil, WithClock(func() time.Time { return now }))

	e, err := l.ToggleWishlist(ctx, "ROF-010")
	require.NoError(t, err)
	assert.Equal(t, first, e.DateAdded.Time)

	now = first.Add(time.Hour)
	e, err = l.SetOwnedQuantity(ctx, "ROF-010", 1)
	require.NoError(t, err)
	assert.Equal(t, first, e.DateAdded.Time, "date added is set once")

	// after a purge the card starts over
	_, _ = l.SetOwnedQuantity(ctx, "ROF-010", 0)
	_, _ = l.ToggleWishlist(ctx, "ROF-010")
	e, err = l.SetOwnedQuantity(ctx, "ROF-010", 1)
	require.NoError(t, err)
	assert.Equal(t, now, e.DateAdded.Time)
}

func TestFailedWriteLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	l := New(store)

	_, err := l.SetOwnedQuantity(ctx, "TFC-001", 1)
	require.NoError(t, err)

	store.putErr = errors.NewIOError("write", "ledger", errors.New("disk full"))
	prev, err := l.SetOwnedQuantity(ctx, "TFC-001", 5)
	require.Error(t, err)
	assert.Equal(t, 1, prev.Quantity)
	assert.Equal(t, 1, l.Quantity("TFC-001"))

	_, err = l.ToggleWishlist(ctx, "TFC-002")
	require.Error(t, err)
	_, ok := l.Entry("TFC-002")
	assert.False(t, ok)
}

func TestEmptyCardID(t *testing.T) {
	_, err := New(nil).SetOwnedQuantity(context.Background(), " ", 1)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	added := utc.New(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	t.Run("restores entries", func(t *testing.T) {
		store := NewMemoryStore(
			Entry{CardID: "A", Quantity: 2, DateAdded: added},
			Entry{CardID: "B", Wishlisted: true, DateAdded: added},
			Entry{CardID: "C"},
			Entry{CardID: "D", Quantity: -3, Wishlisted: true},
		)
		l := New(store)
		require.NoError(t, l.Load(ctx))

		assert.Equal(t, 3, l.Len())
		assert.Equal(t, 2, l.Quantity("A"))
		d, _ := l.Entry("D")
		assert.Equal(t, 0, d.Quantity)
		assert.Equal(t, map[string]struct{}{"A": {}}, l.OwnedIDs())
	})

	t.Run("read error leaves an empty ledger", func(t *testing.T) {
		store := &failingStore{MemoryStore: NewMemoryStore(), loadErr: errors.New("corrupt")}
		l := New(store)
		assert.Error(t, l.Load(ctx))
		assert.Equal(t, 0, l.Len())

		_, err := l.SetOwnedQuantity(ctx, "A", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, l.Len())
	})
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	early := utc.New(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	late := utc.New(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	store := NewMemoryStore(
		Entry{CardID: "old-ariel", Quantity: 1, DateAdded: early},
		Entry{CardID: "TFC-001", Quantity: 3, DateAdded: late},
		Entry{CardID: "old-stitch", Wishlisted: true, DateAdded: late},
		Entry{CardID: "mystery", Quantity: 1, DateAdded: late},
	)
	l := New(store)
	require.NoError(t, l.Load(ctx))

	aliases := map[string]string{"old-ariel": "TFC-001", "old-stitch": "TFC-002", "TFC-001": "TFC-001"}
	res, err := l.Migrate(ctx, func(id string) (string, bool) {
		next, ok := aliases[id]
		return next, ok
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"old-ariel": "TFC-001", "old-stitch": "TFC-002"}, res.Moved)
	assert.Equal(t, []string{"mystery"}, res.Unresolved)

	merged, ok := l.Entry("TFC-001")
	require.True(t, ok)
	assert.Equal(t, 3, merged.Quantity)
	assert.Equal(t, early, merged.DateAdded)

	stitch, ok := l.Entry("TFC-002")
	require.True(t, ok)
	assert.True(t, stitch.Wishlisted)

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(persisted))
	for _, e := range persisted {
		ids = append(ids, e.CardID)
	}
	assert.Equal(t, []string{"TFC-001", "TFC-002", "mystery"}, ids)
}

func TestFixedClockHelper(t *testing.T) {
	at := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	l := New(nil, WithClock(fixedClock(at)))
	e, err := l.SetWishlisted(context.Background(), "X", true)
	require.NoError(t, err)
	assert.Equal(t, at, e.DateAdded.Time)
}

func TestOnChange(t *testing.T) {
	ctx := context.Background()
	l := New(nil)

	type change struct{ prev, next Entry }
	var seen []change
	l.OnChange(func(prev, next Entry) {
		seen = append(seen, change{prev, next})
	})

	_, err := l.SetOwnedQuantity(ctx, "TFC-001", 2)
	require.NoError(t, err)
	_, err = l.SetOwnedQuantity(ctx, "TFC-001", 2) // no change
	require.NoError(t, err)
	_, err = l.SetOwnedQuantity(ctx, "TFC-001", 0) // purge
	require.NoError(t, err)
	_, err = l.SetOwnedQuantity(ctx, "TFC-404", 0) // nothing to purge
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, 0, seen[0].prev.Quantity)
	assert.Equal(t, 2, seen[0].next.Quantity)
	assert.Equal(t, 2, seen[1].prev.Quantity)
	assert.False(t, seen[1].next.Active())
}
