package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"linenote/internal/excerpt"
	"linenote/internal/logging"
	"linenote/internal/syncer"
	"linenote/internal/watch"
)

var watchOut string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep a live annotation document in sync with the store",
	Long: `Renders the annotation document to a file and then watches both sides:
edits to the document are synced back to the store, and store changes
(from other linenote invocations) re-render the document. Runs until
interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "annotations.md", "document file to keep in sync")
}

func runWatch(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	s := syncer.New(st, excerpt.FileSource{Root: workspace}, renderOptions(cfg))

	sess, err := sessionRegistry().Open(watchOut, st.Path())
	if err != nil {
		return err
	}
	defer sessionRegistry().Close(sess.DocPath) //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var docWatcher *watch.Watcher

	// writeDoc renders the current store into the watched file without
	// triggering our own document watcher.
	writeDoc := func() error {
		doc, decodeErrs, err := s.RenderDocument(ctx)
		if err != nil {
			return err
		}
		warnDecodeErrors(decodeErrs)
		if docWatcher != nil {
			docWatcher.Suppress()
			defer docWatcher.Resume()
		}
		return os.WriteFile(watchOut, []byte(doc), 0644)
	}

	if err := writeDoc(); err != nil {
		return err
	}
	fmt.Printf("✓ Watching %s (Ctrl-C to stop)\n", watchOut)

	onDocChange := func() {
		data, err := os.ReadFile(watchOut)
		if err != nil {
			logging.SyncWarn("watch: failed to read document: %v", err)
			return
		}
		outcome, err := s.SyncDocument(ctx, string(data))
		if errors.Is(err, syncer.ErrSyncInFlight) {
			logging.Sync("watch: sync already in flight, edit will settle on next change")
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
			return
		}
		reportOutcome(outcome)
		if outcome.Changed {
			// Re-render so excerpts and any normalized bodies stay fresh.
			if err := writeDoc(); err != nil {
				fmt.Fprintf(os.Stderr, "re-render failed: %v\n", err)
			}
		}
	}

	onStoreChange := func() {
		logging.Watch("store changed externally, re-rendering %s", watchOut)
		if err := writeDoc(); err != nil {
			fmt.Fprintf(os.Stderr, "re-render failed: %v\n", err)
		}
	}

	docWatcher, err = watch.New(watchOut, onDocChange)
	if err != nil {
		return err
	}
	storeWatcher, err := watch.New(st.Path(), onStoreChange)
	if err != nil {
		docWatcher.Stop()
		return err
	}
	s.SetWatcher(storeWatcher)

	if err := docWatcher.Start(ctx); err != nil {
		return err
	}
	if err := storeWatcher.Start(ctx); err != nil {
		docWatcher.Stop()
		return err
	}
	defer func() {
		docWatcher.Stop()
		storeWatcher.Stop()
	}()

	<-ctx.Done()

	stats := docWatcher.GetStats()
	fmt.Printf("\nStopped. %d event(s) seen, %d sync(s) dispatched.\n", stats.Events, stats.Dispatched)
	return nil
}
