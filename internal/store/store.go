// Package store owns the canonical annotation store: one text file, one
// record per line. All mutating operations are read-modify-write over the
// whole file; the file is rewritten wholesale through a temp file and
// rename, never patched in place, so a failed write leaves the store as it
// was. Lines that fail to decode are preserved verbatim across mutations
// and surfaced as warnings, matching the legacy line-based behavior of
// never destroying what it cannot parse.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"linenote/internal/annotation"
	"linenote/internal/codec"
	"linenote/internal/logging"
)

var (
	// ErrNotFound is returned by keyed lookups and mutations when no
	// record matches the identity key.
	ErrNotFound = errors.New("annotation not found")

	// ErrInvalidInput is returned for invalid paths, ranges or empty text
	// on creation.
	ErrInvalidInput = errors.New("invalid input")
)

// Store is a file-backed canonical store. Safe for concurrent use within
// one process; cross-process coordination is the watcher/syncer's problem.
type Store struct {
	mu    sync.Mutex
	path  string
	codec codec.Codec
}

// New binds a store to a file path. The file need not exist yet; a missing
// file reads as an empty store.
func New(path string, c codec.Codec) *Store {
	return &Store{path: path, codec: c}
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the store. Decode failures are collected in the
// result, never fatal; only I/O failures return an error.
func (s *Store) Load() (codec.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (codec.Result, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return codec.Result{}, nil
		}
		return codec.Result{}, fmt.Errorf("read store %s: %w", s.path, err)
	}
	res := s.codec.DecodeFile(string(data))
	if len(res.Errors) > 0 {
		logging.StoreWarn("%s: %d undecodable line(s)", s.path, len(res.Errors))
	}
	return res, nil
}

// Save rewrites the store wholesale with the given records. Undecodable
// lines currently in the file are NOT preserved by this path; use Rewrite
// or the keyed mutation methods when the store may contain them.
func (s *Store) Save(records []*annotation.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records, nil)
}

// Rewrite replaces the store contents with records while carrying the given
// undecodable lines through verbatim. This is the sync write-back path.
func (s *Store) Rewrite(records []*annotation.Annotation, keepRaw []codec.DecodeError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records, keepRaw)
}

func (s *Store) save(records []*annotation.Annotation, keepRaw []codec.DecodeError) error {
	content := s.codec.EncodeFile(records)
	for _, bad := range keepRaw {
		content += bad.Raw + "\n"
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".annotations-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store: %w", err)
	}
	logging.Store("saved %s (%d records)", s.path, len(records))
	if len(keepRaw) > 0 {
		logging.StoreDebug("carried %d undecodable line(s) verbatim", len(keepRaw))
	}
	return nil
}

// mutate runs one read-modify-write cycle under the store lock. The
// transform returns the new record list and whether anything changed;
// undecodable lines ride along untouched.
func (s *Store) mutate(fn func(records []*annotation.Annotation) ([]*annotation.Annotation, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load()
	if err != nil {
		return err
	}
	records, changed, err := fn(res.Records)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.save(records, res.Errors)
}

// Add creates an annotation over [startLine, endLine] of filePath.
func (s *Store) Add(filePath string, startLine, endLine int, text string) (*annotation.Annotation, error) {
	if filePath == "" || filePath == annotation.GeneralPath {
		return nil, fmt.Errorf("%w: file path required (use AddGeneral for project notes)", ErrInvalidInput)
	}
	if startLine < 1 || endLine < startLine {
		return nil, fmt.Errorf("%w: bad range %d-%d", ErrInvalidInput, startLine, endLine)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty annotation text", ErrInvalidInput)
	}

	a := annotation.New(filePath, startLine, endLine, text)
	err := s.mutate(func(records []*annotation.Annotation) ([]*annotation.Annotation, bool, error) {
		return append(records, a), true, nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AddGeneral creates a file-less general note.
func (s *Store) AddGeneral(text string) (*annotation.Annotation, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty annotation text", ErrInvalidInput)
	}
	a := annotation.General(text)
	err := s.mutate(func(records []*annotation.Annotation) ([]*annotation.Annotation, bool, error) {
		return append(records, a), true, nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns the first record matching the identity key.
func (s *Store) Get(key string) (*annotation.Annotation, error) {
	res, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, a := range res.Records {
		if a.Key() == key {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// UpdateText replaces the text of the first record matching key.
func (s *Store) UpdateText(key, text string) error {
	if text == "" {
		return fmt.Errorf("%w: empty annotation text", ErrInvalidInput)
	}
	return s.mutate(func(records []*annotation.Annotation) ([]*annotation.Annotation, bool, error) {
		for i, a := range records {
			if a.Key() != key {
				continue
			}
			edited := *a
			edited.Text = text
			records[i] = &edited
			return records, true, nil
		}
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, key)
	})
}

// Delete removes the first record matching key.
func (s *Store) Delete(key string) error {
	return s.mutate(func(records []*annotation.Annotation) ([]*annotation.Annotation, bool, error) {
		for i, a := range records {
			if a.Key() == key {
				return append(records[:i], records[i+1:]...), true, nil
			}
		}
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, key)
	})
}

// DeleteForFile removes every record bound to filePath and reports how many
// were removed. Removing zero records is not an error.
func (s *Store) DeleteForFile(filePath string) (int, error) {
	removed := 0
	err := s.mutate(func(records []*annotation.Annotation) ([]*annotation.Annotation, bool, error) {
		kept := records[:0]
		for _, a := range records {
			if a.FilePath == filePath {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		return kept, removed > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ListForFile returns the records bound to filePath, in store order.
func (s *Store) ListForFile(filePath string) ([]*annotation.Annotation, error) {
	res, err := s.Load()
	if err != nil {
		return nil, err
	}
	var out []*annotation.Annotation
	for _, a := range res.Records {
		if a.FilePath == filePath {
			out = append(out, a)
		}
	}
	return out, nil
}

// Orphans returns records whose file no longer exists according to the
// exists predicate. General records are never orphans.
func (s *Store) Orphans(exists func(path string) bool) ([]*annotation.Annotation, error) {
	res, err := s.Load()
	if err != nil {
		return nil, err
	}
	var out []*annotation.Annotation
	for _, a := range res.Records {
		if !a.IsGeneral() && !exists(a.FilePath) {
			out = append(out, a)
		}
	}
	return out, nil
}

// DeleteOrphans removes every orphaned record and reports the count.
func (s *Store) DeleteOrphans(exists func(path string) bool) (int, error) {
	removed := 0
	err := s.mutate(func(records []*annotation.Annotation) ([]*annotation.Annotation, bool, error) {
		kept := records[:0]
		for _, a := range records {
			if !a.IsGeneral() && !exists(a.FilePath) {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		return kept, removed > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
