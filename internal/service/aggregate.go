package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fetchAll fans out one fetch per id with bounded concurrency and
// returns results in id order. Any failed fetch fails the whole batch;
// remaining fetches are cancelled through the group context.
func fetchAll[T any](ctx context.Context, ids []uint64, limit int, fetch func(context.Context, uint64) (T, error)) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	if limit <= 0 {
		limit = 1
	}

	results := make([]T, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, id := range ids {
		g.Go(func() error {
			item, err := fetch(ctx, id)
			if err != nil {
				return err
			}
			results[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
