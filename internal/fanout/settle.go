// Package fanout runs bounded concurrent work where every branch settles.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one branch, in input order.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Settle calls fn for every item with at most limit calls in flight and waits
// for all of them. A failing branch never cancels its siblings; failures are
// reported in the returned slice. A limit below 1 means unbounded.
func Settle[In, Out any](ctx context.Context, limit int, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	results := make([]Result[Out], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			v, err := fn(ctx, item)
			results[i] = Result[Out]{Index: i, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Partition splits settled results into successful values (input order kept)
// and errors.
func Partition[T any](results []Result[T]) ([]T, []error) {
	ok := make([]T, 0, len(results))
	var failed []error
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Err)
			continue
		}
		ok = append(ok, r.Value)
	}
	return ok, failed
}
