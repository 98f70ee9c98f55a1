// Package persistence provides durable ledger.Store implementations: a YAML
// file and a SQLite database.
package persistence

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/ledger"
)

// fileFormatVersion is written to every collection file.
const fileFormatVersion = 1

// collectionFile is the on-disk layout of a FileStore.
type collectionFile struct {
	Version int            `yaml:"version"`
	Entries []ledger.Entry `yaml:"entries"`
}

// FileStore keeps the ledger in a single YAML file. Every write rewrites the
// file through a temporary file and a rename, so a crash leaves either the old
// or the new content.
type FileStore struct {
	path string

	mu      sync.Mutex
	entries map[string]ledger.Entry
	loaded  bool
}

// Compile-time interface check.
var _ ledger.Store = (*FileStore)(nil)

// NewFileStore creates a store for path. The parent directory is created if
// needed; the file itself is created on the first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, &errors.ValidationError{Field: "path", Message: "ledger file path is required"}
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}
	return &FileStore{path: path, entries: make(map[string]ledger.Entry)}, nil
}

// Path returns the file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements ledger.Store. A missing file is an empty ledger. A file
// that does not parse is moved aside and the store continues empty.
func (s *FileStore) Load(ctx context.Context) ([]ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readLocked(ctx); err != nil {
		return nil, err
	}
	return s.sortedLocked(), nil
}

// Put implements ledger.Store.
func (s *FileStore) Put(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	prev, existed := s.entries[e.CardID]
	s.entries[e.CardID] = e
	if err := s.flushLocked(); err != nil {
		if existed {
			s.entries[e.CardID] = prev
		} else {
			delete(s.entries, e.CardID)
		}
		return err
	}
	return nil
}

// Delete implements ledger.Store.
func (s *FileStore) Delete(ctx context.Context, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	prev, existed := s.entries[cardID]
	if !existed {
		return nil
	}
	delete(s.entries, cardID)
	if err := s.flushLocked(); err != nil {
		s.entries[cardID] = prev
		return err
	}
	return nil
}

// Close implements ledger.Store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) sortedLocked() []ledger.Entry {
	out := make([]ledger.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b ledger.Entry) int {
		return strings.Compare(a.CardID, b.CardID)
	})
	return out
}

// ensureLoadedLocked reads the file before the first write of a store that
// was never loaded, so a write cannot drop entries it has not seen. Once a
// damaged file has been given up on, writes replace it.
func (s *FileStore) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if err := s.readLocked(ctx); err != nil && !s.loaded {
		return err
	}
	return nil
}

func (s *FileStore) readLocked(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.entries = make(map[string]ledger.Entry)
		s.loaded = true
		return nil
	}
	if err != nil {
		return errors.WrapIO("read", s.path, err)
	}

	var file collectionFile
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return s.resetLocked(ctx, errors.WrapParse("yaml", s.path, err))
		}
	}

	s.entries = make(map[string]ledger.Entry, len(file.Entries))
	for _, e := range file.Entries {
		if e.CardID == "" {
			continue
		}
		s.entries[e.CardID] = e
	}
	s.loaded = true
	return nil
}

// resetLocked gives up on a file that does not parse. The store is empty and
// loaded afterwards even when the file cannot be moved aside.
func (s *FileStore) resetLocked(ctx context.Context, cause error) error {
	s.entries = make(map[string]ledger.Entry)
	s.loaded = true
	if _, err := quarantine(ctx, s.path, cause); err != nil {
		return errors.Join(cause, err)
	}
	return nil
}

// flushLocked writes the full ledger.
func (s *FileStore) flushLocked() error {
	data, err := yaml.Marshal(collectionFile{Version: fileFormatVersion, Entries: s.sortedLocked()})
	if err != nil {
		return errors.WrapParse("yaml", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", s.path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapIO("sync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, constants.SecureFilePermissions); err != nil {
		cleanup()
		return errors.WrapIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return errors.WrapIO("rename", s.path, err)
	}
	return nil
}
