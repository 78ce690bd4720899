package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one item of a fan-out.
type Result[I, T any] struct {
	Item  I
	Value T
	Err   error
}

// fanOut calls fn for every item concurrently, at most limit at a time
// (limit <= 0 means unbounded), and waits for all of them. Results keep the
// order of items. A failing or panicking item only affects its own Result.
func fanOut[I, T any](ctx context.Context, limit int, items []I, fn func(context.Context, I) (T, error)) []Result[I, T] {
	results := make([]Result[I, T], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i].Item = item
			defer func() {
				if p := recover(); p != nil {
					results[i].Err = fmt.Errorf("panic: %v", p)
				}
			}()
			results[i].Value, results[i].Err = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
