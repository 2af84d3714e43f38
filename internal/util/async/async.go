// Package async provides bounded parallel execution for fanning one
// operation out over many inputs, used for the per-player log searches
// behind roster-wide session lookups.
package async

import (
	"context"
	"sync"
)

// Map runs fn over items with at most limit calls in flight and returns
// the results in item order. Each item's error lands in the matching
// slot of errs; a nil slot means that item succeeded. A limit below one
// is treated as one.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) (results []R, errs []error) {
	if limit < 1 {
		limit = 1
	}

	results = make([]R, len(items))
	errs = make([]error, len(items))

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = fn(ctx, item)
		}()
	}
	wg.Wait()

	return results, errs
}
