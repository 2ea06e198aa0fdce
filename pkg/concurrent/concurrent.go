package concurrent

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every item with at most workers goroutines.
// Every item is processed; errors are joined in item order.
// workers <= 1 runs the items sequentially on the calling goroutine.
func ForEach[T any](ctx context.Context, items []T, workers int, action func(context.Context, T) error) error {
	errs := make([]error, len(items))

	if workers <= 1 {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			errs[i] = action(ctx, item)
		}
		return errors.Join(errs...)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, item := range items {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = action(gctx, item)
			return nil
		})
	}
	_ = group.Wait()

	return errors.Join(errs...)
}
