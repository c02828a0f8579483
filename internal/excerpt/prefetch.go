package excerpt

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// prefetchWorkers bounds concurrent file reads during a render.
const prefetchWorkers = 8

// Prefetch loads the lines of every listed path concurrently. Paths that
// cannot be read are simply absent from the result. Duplicate paths are
// read once. The only possible error is context cancellation.
func Prefetch(ctx context.Context, src Source, paths []string) (map[string][]string, error) {
	seen := make(map[string]bool, len(paths))
	var mu sync.Mutex
	lines := make(map[string][]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchWorkers)

	for _, path := range paths {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true

		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if ls, ok := src.Lines(path); ok {
				mu.Lock()
				lines[path] = ls
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}
