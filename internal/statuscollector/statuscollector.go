// Package statuscollector fans independent status collectors out
// concurrently, isolating each one's failure so it never blocks the
// others.
//
// Fan-out uses golang.org/x/sync/errgroup for the "launch N independent
// workers, wait for all" shape. Each goroutine always returns nil to
// the group (errgroup's fail-fast cancellation is not wanted here) and
// records its own outcome into a pre-sized, index-addressed results
// slice.
package statuscollector

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is one collector's outcome: its payload (kept opaque to the
// framework; concrete shapes live alongside each collector) or its Err.
type Result struct {
	Name    string
	Payload any
	Err     error
}

// Collector is the contract every status collector implements:
// collect(context, worktree_path, repo_root) -> Result or Error.
type Collector interface {
	Name() string
	Collect(ctx context.Context, worktreePath, repoRoot string) (any, error)
}

// Run launches every collector concurrently, waits for all (bounded by
// timeout), and returns one Result per collector in input order. A
// per-collector failure is recorded in that Result's Err field and
// never prevents the others from completing.
func Run(ctx context.Context, collectors []Collector, worktreePath, repoRoot string, timeout time.Duration) []Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]Result, len(collectors))
	g, gctx := errgroup.WithContext(ctx)

	for i, c := range collectors {
		i, c := i, c
		results[i].Name = c.Name()
		g.Go(func() error {
			payload, err := c.Collect(gctx, worktreePath, repoRoot)
			results[i].Payload = payload
			results[i].Err = err
			return nil // isolate failures: never propagate to the group
		})
	}

	_ = g.Wait()
	return results
}
