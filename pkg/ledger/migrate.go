package ledger

import (
	"context"
	"slices"

	"github.com/agentstation/inkwell/pkg/logging"
)

// MigrationResult lists the identifiers re-keyed by Migrate.
type MigrationResult struct {
	Moved      map[string]string // old ID -> new ID
	Unresolved []string          // IDs the resolver did not recognize
}

// Migrate re-keys entries whose card identifier changed between catalog
// versions. When two entries land on the same card the merged entry keeps the
// larger quantity, the wishlist flag of either, and the earliest DateAdded.
// Unresolved entries are kept as they are.
func (l *Ledger) Migrate(ctx context.Context, resolve func(id string) (string, bool)) (MigrationResult, error) {
	result := MigrationResult{Moved: make(map[string]string)}
	logger := logging.FromContext(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, old := range sortedIDs(l.entries) {
		next, ok := resolve(old)
		if !ok {
			result.Unresolved = append(result.Unresolved, old)
			continue
		}
		if next == old {
			continue
		}

		moved := l.entries[old]
		moved.CardID = next
		if target, exists := l.entries[next]; exists {
			moved = mergeEntries(target, moved)
		}

		if err := l.store.Put(ctx, moved); err != nil {
			return result, err
		}
		if err := l.store.Delete(ctx, old); err != nil {
			return result, err
		}
		delete(l.entries, old)
		l.entries[next] = moved
		result.Moved[old] = next

		logger.Info().Str("from", old).Str("to", next).Msg("Migrated ledger entry")
	}
	return result, nil
}

func mergeEntries(a, b Entry) Entry {
	out := a
	out.Quantity = max(a.Quantity, b.Quantity)
	out.Wishlisted = a.Wishlisted || b.Wishlisted
	if out.DateAdded.IsZero() || (!b.DateAdded.IsZero() && b.DateAdded.Time.Before(a.DateAdded.Time)) {
		out.DateAdded = b.DateAdded
	}
	return out
}

func sortedIDs(entries map[string]Entry) []string {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
