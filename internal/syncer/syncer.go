// Package syncer orchestrates the round trip between the canonical store
// and the rendered document: store -> document for editing, and edited
// document -> store by identity key. A store's read-modify-write during
// sync is not atomic, so each Syncer carries a single in-flight guard: a
// second sync requested while one is running is rejected outright rather
// than interleaved. There is no cancellation mid-write; a sync either
// completes or fails with the store untouched.
package syncer

import (
	"context"
	"errors"
	"fmt"

	"linenote/internal/codec"
	"linenote/internal/document"
	"linenote/internal/excerpt"
	"linenote/internal/logging"
	"linenote/internal/reconcile"
	"linenote/internal/store"
)

// ErrSyncInFlight means a sync for this store is already running.
var ErrSyncInFlight = errors.New("sync already in flight for this store")

// Suppressor pauses and resumes change notifications for the store file.
// The watcher implements it; a nil suppressor is fine for one-shot CLI use.
type Suppressor interface {
	Suppress()
	Resume()
}

// Outcome reports one completed sync.
type Outcome struct {
	// Changed is true when the store was rewritten.
	Changed bool

	// Updated is how many records received new text.
	Updated int

	// DecodeErrors are store lines that failed to decode on the fresh read.
	DecodeErrors []codec.DecodeError

	// ExtractErrors are document constructs that failed extraction.
	ExtractErrors []document.ExtractError

	// Unmatched are extracted pairs that could not be applied, either
	// because no canonical record carries their key or because the pair is
	// an ambiguous multi-record general section. Reported, never applied.
	Unmatched []document.Pair
}

// Syncer binds one store to its render options and excerpt source.
type Syncer struct {
	store   *store.Store
	source  excerpt.Source
	opts    document.RenderOptions
	watcher Suppressor

	guard chan struct{}
}

// New creates a Syncer. source may be nil when excerpts are disabled.
func New(st *store.Store, source excerpt.Source, opts document.RenderOptions) *Syncer {
	return &Syncer{
		store:  st,
		source: source,
		opts:   opts,
		guard:  make(chan struct{}, 1),
	}
}

// SetWatcher registers the watcher to suppress during write-back.
func (s *Syncer) SetWatcher(w Suppressor) {
	s.watcher = w
}

// RenderDocument loads the store and renders the editable document.
// Decode errors are returned for warning display alongside the document.
func (s *Syncer) RenderDocument(ctx context.Context) (string, []codec.DecodeError, error) {
	res, err := s.store.Load()
	if err != nil {
		return "", nil, err
	}

	var fileLines map[string][]string
	if s.opts.IncludeExcerpts && s.source != nil {
		paths := make([]string, 0, len(res.Records))
		for _, a := range res.Records {
			if !a.IsGeneral() {
				paths = append(paths, a.FilePath)
			}
		}
		fileLines, err = excerpt.Prefetch(ctx, s.source, paths)
		if err != nil {
			return "", nil, err
		}
	}

	logging.Sync("rendered document for %s (%d records)", s.store.Path(), len(res.Records))
	return document.Render(res.Records, fileLines, s.opts), res.Errors, nil
}

// SyncDocument extracts edited bodies from docText and writes matching
// content updates back to the store. The read-reconcile-write cycle runs
// under the in-flight guard; the store file is rewritten wholesale, with
// the watcher suppressed so our own write does not bounce back as a change
// notification.
func (s *Syncer) SyncDocument(ctx context.Context, docText string) (*Outcome, error) {
	select {
	case s.guard <- struct{}{}:
	default:
		logging.SyncWarn("dropped concurrent sync for %s", s.store.Path())
		return nil, ErrSyncInFlight
	}
	defer func() { <-s.guard }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := logging.StartTimer(logging.CategorySync, "document sync")
	defer timer.Stop()

	extracted := document.Extract(docText)
	logging.SyncDebug("extracted %d pair(s), %d error(s)", len(extracted.Pairs), len(extracted.Errors))

	// Fresh read: the store may have moved since the document was rendered.
	res, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	rec := reconcile.Reconcile(res.Records, extracted.Pairs)
	out := &Outcome{
		Changed:       rec.Changed,
		DecodeErrors:  res.Errors,
		ExtractErrors: extracted.Errors,
		Unmatched:     rec.Unmatched,
	}
	for i := range rec.Updated {
		if rec.Updated[i] != res.Records[i] {
			out.Updated++
		}
	}

	if !rec.Changed {
		logging.Sync("no content changes for %s", s.store.Path())
		return out, nil
	}

	if s.watcher != nil {
		s.watcher.Suppress()
		defer s.watcher.Resume()
	}
	if err := s.store.Rewrite(rec.Updated, res.Errors); err != nil {
		return nil, fmt.Errorf("write back: %w", err)
	}
	logging.Sync("updated %d record(s) in %s", out.Updated, s.store.Path())
	return out, nil
}
