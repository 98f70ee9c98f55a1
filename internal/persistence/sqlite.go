package persistence

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/utc"
	"github.com/mattn/go-sqlite3"

	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS collection (
	card_id    TEXT PRIMARY KEY,
	quantity   INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	wishlisted INTEGER NOT NULL DEFAULT 0,
	date_added TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore keeps the ledger in a SQLite database, one row per card.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Compile-time interface check.
var _ ledger.Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path. Use ":memory:" for a
// private in-memory database. A file that is not a SQLite database, or is
// corrupt, is moved aside together with its WAL files and replaced by an
// empty database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, &errors.ValidationError{Field: "path", Message: "ledger database path is required"}
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}

	db, err := openDB(ctx, path)
	if err != nil && path != ":memory:" && isCorrupt(err) {
		if _, qerr := quarantine(ctx, path, err, "-wal", "-shm"); qerr != nil {
			return nil, errors.Join(err, qerr)
		}
		db, err = openDB(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		_ = os.Chmod(path, constants.SecureFilePermissions)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	pragmas := []string{`PRAGMA busy_timeout = 5000;`}
	if path != ":memory:" {
		pragmas = append(pragmas, `PRAGMA journal_mode = WAL;`)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, errors.WrapIO("configure", path, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("ping", path, err)
	}
	return db, nil
}

// isCorrupt reports whether SQLite rejected the file itself.
func isCorrupt(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrNotADB || se.Code == sqlite3.ErrCorrupt
}

// Path returns the database location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load implements ledger.Store.
func (s *SQLiteStore) Load(ctx context.Context) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT card_id, quantity, wishlisted, date_added
		FROM collection
		ORDER BY card_id
	`)
	if err != nil {
		return nil, errors.WrapIO("query", s.path, err)
	}
	defer func() { _ = rows.Close() }()

	var out []ledger.Entry
	for rows.Next() {
		var (
			e     ledger.Entry
			wish  int
			added string
		)
		if err := rows.Scan(&e.CardID, &e.Quantity, &wish, &added); err != nil {
			return nil, errors.WrapIO("scan", s.path, err)
		}
		e.Wishlisted = wish != 0
		if added != "" {
			t, err := time.Parse(time.RFC3339Nano, added)
			if err != nil {
				return nil, errors.NewParseError("rfc3339", s.path, "bad date_added for "+e.CardID, err)
			}
			e.DateAdded = utc.New(t)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIO("query", s.path, err)
	}
	return out, nil
}

// Put implements ledger.Store.
func (s *SQLiteStore) Put(ctx context.Context, e ledger.Entry) error {
	added := ""
	if !e.DateAdded.IsZero() {
		added = e.DateAdded.Time.UTC().Format(time.RFC3339Nano)
	}
	wish := 0
	if e.Wishlisted {
		wish = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection (card_id, quantity, wishlisted, date_added)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			quantity = excluded.quantity,
			wishlisted = excluded.wishlisted,
			date_added = excluded.date_added
	`, e.CardID, e.Quantity, wish, added)
	if err != nil {
		return errors.WrapIO("upsert", s.path, err)
	}
	return nil
}

// Delete implements ledger.Store.
func (s *SQLiteStore) Delete(ctx context.Context, cardID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collection WHERE card_id = ?`, cardID); err != nil {
		return errors.WrapIO("delete", s.path, err)
	}
	return nil
}

// Close implements ledger.Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
