// Package catalogs holds the set and card registry of the engine.
//
// A Store is seeded from a bundled snapshot and is changed only by
// ApplyRemoteUpdate. Every change builds a new immutable snapshot that is
// swapped in atomically, so readers never observe a partially merged card and
// never take a lock.
package catalogs

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/agentstation/inkwell/pkg/errors"
)

// Store is a concurrent safe catalog of sets and cards.
type Store struct {
	current atomic.Pointer[snapshot]
	writeMu sync.Mutex // serializes merges
}

// snapshot is never modified after it is published.
type snapshot struct {
	version  string
	sets     []Set          // release order
	setIndex map[string]int // name -> index into sets
	cards    map[string]Card
	bySet    map[string][]string // set name -> card IDs, bundled first then appended
	local    map[string]int      // set name -> bundled card count, present only for full lists
}

// NewStore validates a bundle and builds a store from it.
func NewStore(b *Bundle) (*Store, error) {
	if b == nil || len(b.Sets) == 0 {
		return nil, &errors.ValidationError{Field: "sets", Message: "bundled catalog has no sets"}
	}

	snap := &snapshot{
		version:  b.Version,
		sets:     make([]Set, 0, len(b.Sets)),
		setIndex: make(map[string]int, len(b.Sets)),
		cards:    make(map[string]Card),
		bySet:    make(map[string][]string, len(b.Sets)),
		local:    make(map[string]int),
	}

	sets := slices.Clone(b.Sets)
	slices.SortStableFunc(sets, func(a, b Set) int {
		return a.ReleaseOrder - b.ReleaseOrder
	})
	for _, set := range sets {
		if set.Name == "" {
			return nil, &errors.ValidationError{Field: "sets.name", Message: "set name is required"}
		}
		if _, dup := snap.setIndex[set.Name]; dup {
			return nil, &errors.ValidationError{Field: "sets.name", Value: set.Name, Message: "duplicate set name"}
		}
		snap.setIndex[set.Name] = len(snap.sets)
		snap.sets = append(snap.sets, set)
	}

	for setName, cards := range b.Cards {
		if _, ok := snap.setIndex[setName]; !ok {
			return nil, &errors.ValidationError{Field: "cards", Value: setName, Message: "card list for unknown set"}
		}
		ids := make([]string, 0, len(cards))
		for _, card := range cards {
			if card.ID == "" {
				return nil, &errors.ValidationError{Field: "cards.id", Value: setName, Message: "card id is required"}
			}
			if _, dup := snap.cards[card.ID]; dup {
				return nil, &errors.ValidationError{Field: "cards.id", Value: card.ID, Message: "duplicate card id"}
			}
			card.SetName = setName
			snap.cards[card.ID] = card.Clone()
			ids = append(ids, card.ID)
		}
		snap.bySet[setName] = ids
		snap.local[setName] = len(ids)
	}

	s := &Store{}
	s.current.Store(snap)
	return s, nil
}

func (s *Store) load() *snapshot {
	return s.current.Load()
}

// Version returns the bundled snapshot version.
func (s *Store) Version() string {
	return s.load().version
}

// Sets returns all sets in release order.
func (s *Store) Sets() []Set {
	return slices.Clone(s.load().sets)
}

// Set returns a set by name.
func (s *Store) Set(name string) (Set, bool) {
	snap := s.load()
	i, ok := snap.setIndex[name]
	if !ok {
		return Set{}, false
	}
	return snap.sets[i], true
}

// SetByCode returns a set by its code or remote code.
func (s *Store) SetByCode(code string) (Set, bool) {
	for _, set := range s.load().sets {
		if set.Code == code || (set.RemoteCode != "" && set.RemoteCode == code) {
			return set, true
		}
	}
	return Set{}, false
}

// LocalCardCount returns the length of the bundled card list of a set, or 0.
func (s *Store) LocalCardCount(setName string) int {
	return s.load().local[setName]
}

// HasLocalCards reports whether a full card list was bundled for the set.
// Cards appended by remote updates never make this true.
func (s *Store) HasLocalCards(setName string) bool {
	_, ok := s.load().local[setName]
	return ok
}

// EffectiveTotal is the denominator for set completion: the bundled card
// count when a full list exists, otherwise the declared count.
func (s *Store) EffectiveTotal(setName string) int {
	snap := s.load()
	if n, ok := snap.local[setName]; ok {
		return n
	}
	if i, ok := snap.setIndex[setName]; ok {
		return snap.sets[i].DeclaredCount
	}
	return 0
}

// CardsInSet returns the cards of a set, bundled ones first.
func (s *Store) CardsInSet(setName string) []Card {
	snap := s.load()
	ids := snap.bySet[setName]
	out := make([]Card, 0, len(ids))
	for _, id := range ids {
		out = append(out, snap.cards[id].Clone())
	}
	return out
}

// Card returns a card by ID.
func (s *Store) Card(id string) (Card, bool) {
	c, ok := s.load().cards[id]
	if !ok {
		return Card{}, false
	}
	return c.Clone(), true
}

// SetOf returns the set name of a card. An ID without card metadata still
// resolves when it names a slot of a set that has no bundled list: the
// canonical SETCODE-NNN form with a number within the declared count.
func (s *Store) SetOf(cardID string) (string, bool) {
	snap := s.load()
	if c, ok := snap.cards[cardID]; ok {
		return c.SetName, true
	}
	return snap.declaredSlot(cardID)
}

// CardOrSlot returns a card by ID, or a stub for a declared slot carrying only
// the ID, set and collector number until a refresh supplies the metadata.
func (s *Store) CardOrSlot(id string) (Card, bool) {
	snap := s.load()
	if c, ok := snap.cards[id]; ok {
		return c.Clone(), true
	}
	setName, ok := snap.declaredSlot(id)
	if !ok {
		return Card{}, false
	}
	_, num, _ := splitUniqueID(id)
	return Card{
		ID:      id,
		Name:    id,
		SetName: setName,
		Number:  num,
		Type:    CardTypeUnknown,
		Rarity:  RarityUnknown,
		Variant: VariantNormal,
	}, true
}

// Declares reports whether cardID is a catalog card or a declared slot.
func (s *Store) Declares(cardID string) bool {
	_, ok := s.SetOf(cardID)
	return ok
}

func (snap *snapshot) declaredSlot(cardID string) (string, bool) {
	code, num, ok := splitUniqueID(cardID)
	if !ok || UniqueID(code, num) != cardID {
		return "", false
	}
	for _, set := range snap.sets {
		if set.Code != code {
			continue
		}
		// a bundled list is exact, so it leaves no undeclared slots
		if _, full := snap.local[set.Name]; full || num > set.DeclaredCount {
			return "", false
		}
		return set.Name, true
	}
	return "", false
}

// Cards returns every card, grouped by set in release order.
func (s *Store) Cards() []Card {
	snap := s.load()
	out := make([]Card, 0, len(snap.cards))
	for _, set := range snap.sets {
		for _, id := range snap.bySet[set.Name] {
			out = append(out, snap.cards[id].Clone())
		}
	}
	return out
}

// Len returns the number of cards.
func (s *Store) Len() int {
	return len(s.load().cards)
}

// ApplyRemoteUpdate merges remote records into the catalog. Matching cards get
// a field-level upsert, unknown cards are appended to their set, and the result
// is published as one new snapshot. Applying the same records again is a no-op.
func (s *Store) ApplyRemoteUpdate(records []RemoteCard) MergeResult {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.load()
	var result MergeResult

	// copy-on-write: maps are cloned lazily on the first change
	next := *cur
	cloned := false
	ensureClone := func() {
		if cloned {
			return
		}
		next.cards = maps.Clone(cur.cards)
		next.bySet = maps.Clone(cur.bySet)
		next.sets = slices.Clone(cur.sets)
		next.setIndex = maps.Clone(cur.setIndex)
		cloned = true
	}

	for _, r := range records {
		if r.ID == "" {
			result.Rejected++
			continue
		}

		if existing, ok := next.cards[r.ID]; ok {
			merged := mergeCard(existing, r)
			if cardsEqual(existing, merged) {
				result.Unchanged++
				continue
			}
			ensureClone()
			next.cards[r.ID] = merged
			result.Updated = append(result.Updated, CardChange{Old: existing.Clone(), New: merged.Clone()})
			continue
		}

		if r.SetName == "" {
			result.Rejected++
			continue
		}

		ensureClone()
		if _, ok := next.setIndex[r.SetName]; !ok {
			order := 1
			if n := len(next.sets); n > 0 {
				order = next.sets[n-1].ReleaseOrder + 1
			}
			next.setIndex[r.SetName] = len(next.sets)
			next.sets = append(next.sets, Set{Name: r.SetName, ReleaseOrder: order})
			result.NewSets = append(result.NewSets, r.SetName)
		}
		card := newCard(r)
		next.cards[r.ID] = card
		// append without aliasing the previous snapshot's backing array
		ids := next.bySet[r.SetName]
		next.bySet[r.SetName] = append(ids[:len(ids):len(ids)], r.ID)
		result.Added = append(result.Added, card.Clone())
	}

	if cloned {
		s.current.Store(&next)
	}
	return result
}
