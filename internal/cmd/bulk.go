package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// defaultConcurrency bounds parallel requests in multi-ID commands.
const defaultConcurrency = 5

// bulkResult is the outcome for one ID. Results keep the order of the input.
type bulkResult struct {
	ID    int    `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	err error
}

// runBulk calls operation for every id with at most concurrency calls in
// flight. Individual failures do not stop the others; a cancelled context
// marks the IDs that never ran as failed.
func runBulk(ctx context.Context, ids []int, concurrency int, progress io.Writer, operation func(ctx context.Context, id int) error) []bulkResult {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	results := make([]bulkResult, len(ids))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i].ID = id
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i].err = err
				results[i].Error = err.Error()
				return nil
			}
			defer sem.Release(1)

			if err := operation(gctx, id); err != nil {
				results[i].err = err
				results[i].Error = err.Error()
			} else {
				results[i].OK = true
			}

			if progress != nil {
				mu.Lock()
				done++
				_, _ = fmt.Fprintf(progress, "\rProcessed %d/%d", done, len(ids))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if progress != nil && len(ids) > 0 {
		_, _ = fmt.Fprintln(progress)
	}
	return results
}

// countResults returns success and failure counts.
func countResults(results []bulkResult) (ok, failed int) {
	for _, r := range results {
		if r.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// firstFailure returns the first failed result's error, or nil.
func firstFailure(results []bulkResult) error {
	for _, r := range results {
		if !r.OK {
			return r.err
		}
	}
	return nil
}
