package catalogs

import (
	"strconv"
	"strings"
)

// Migrations maps card identifiers that were renamed between catalog
// versions. Enchanted printings, for example, moved from their own IDs to
// numbered IDs inside their set.
type Migrations struct {
	Aliases map[string]string `json:"aliases" yaml:"aliases"` // old ID -> new ID
}

// Migrator resolves legacy card identifiers against a Store.
type Migrator struct {
	store   *Store
	aliases map[string]string
}

// NewMigrator creates a migrator for the given store and alias table.
func NewMigrator(store *Store, m Migrations) *Migrator {
	return &Migrator{store: store, aliases: m.Aliases}
}

// Resolve maps an identifier to the current catalog identifier. It tries, in
// order: the ID itself, the alias table, and a normalized SETCODE-NNN form
// (case and zero padding are forgiven, the code may be a remote set code).
// Declared slots of sets without a bundled list count as catalog identifiers.
func (m *Migrator) Resolve(id string) (string, bool) {
	if m.store.Declares(id) {
		return id, true
	}
	if next, ok := m.aliases[id]; ok {
		if m.store.Declares(next) {
			return next, true
		}
	}

	code, num, ok := splitUniqueID(id)
	if !ok {
		return "", false
	}
	set, ok := m.store.SetByCode(strings.ToUpper(code))
	if !ok {
		set, ok = m.store.SetByCode(code)
	}
	if !ok {
		return "", false
	}
	candidate := UniqueID(set.Code, num)
	if m.store.Declares(candidate) {
		return candidate, true
	}
	return "", false
}

func splitUniqueID(id string) (string, int, bool) {
	i := strings.LastIndexAny(id, "-_")
	if i <= 0 || i == len(id)-1 {
		return "", 0, false
	}
	num, err := strconv.Atoi(id[i+1:])
	if err != nil || num <= 0 {
		return "", 0, false
	}
	return id[:i], num, true
}
