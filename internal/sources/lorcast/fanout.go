package lorcast

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// fanOut runs fn for every set with at most limit calls in flight and returns
// the results in input order. The first error cancels the remaining calls.
func fanOut[T any](ctx context.Context, limit int64, sets []Set, fn func(context.Context, Set) (T, error)) ([]T, error) {
	results := make([]T, len(sets))
	sem := semaphore.NewWeighted(limit)
	g, gctx := errgroup.WithContext(ctx)

	for i, s := range sets {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			r, err := fn(gctx, s)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
