// Package session tracks open bulk-edit sessions. A session binds one
// rendered document path to the store it was rendered from; the registry is
// keyed by document path with single-owner semantics, so two edits of the
// same document cannot race each other's sync. The registry is always
// passed explicitly rather than held as package state.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"linenote/internal/logging"
)

var (
	// ErrSessionExists means the document path is already owned.
	ErrSessionExists = errors.New("session already open")

	// ErrSessionNotFound means no session owns the document path.
	ErrSessionNotFound = errors.New("session not found")
)

// Session is one open bulk-edit session.
type Session struct {
	ID        string
	DocPath   string
	StorePath string
	CreatedAt time.Time
}

// Registry holds the open sessions for one process.
type Registry struct {
	mu    sync.Mutex
	byDoc map[string]*Session
	now   func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byDoc: make(map[string]*Session),
		now:   time.Now,
	}
}

// Open registers a session owning docPath. Fails with ErrSessionExists when
// the path is already owned; the caller decides whether to reuse or abort.
func (r *Registry) Open(docPath, storePath string) (*Session, error) {
	if docPath == "" || storePath == "" {
		return nil, fmt.Errorf("document and store paths required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byDoc[docPath]; ok {
		return nil, fmt.Errorf("%w: %s (session %s)", ErrSessionExists, docPath, s.ID)
	}

	s := &Session{
		ID:        uuid.NewString(),
		DocPath:   docPath,
		StorePath: storePath,
		CreatedAt: r.now(),
	}
	r.byDoc[docPath] = s
	logging.Session("opened %s for %s", s.ID, docPath)
	return s, nil
}

// Lookup returns the session owning docPath.
func (r *Registry) Lookup(docPath string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byDoc[docPath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, docPath)
	}
	return s, nil
}

// Close releases the session owning docPath.
func (r *Registry) Close(docPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byDoc[docPath]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, docPath)
	}
	delete(r.byDoc, docPath)
	logging.Session("closed %s for %s", s.ID, docPath)
	return nil
}

// List returns all open sessions ordered by creation time.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.byDoc))
	for _, s := range r.byDoc {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].DocPath < out[j].DocPath
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
