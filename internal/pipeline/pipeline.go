package pipeline

import (
	"context"
	"runtime"
	"sync"
)

type Task[T any] func(ctx context.Context, item T) error

func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Run feeds items to a fixed pool of workers and collects every task error.
// Once ctx is done no further items are handed out and ctx.Err() is included
// in the result.
func Run[T any](ctx context.Context, items []T, workers int, fn Task[T]) []error {
	if len(items) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	workers = min(workers, len(items))

	jobs := make(chan T)
	errs := make(chan error, len(items)+1)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if err := fn(ctx, item); err != nil {
					errs <- err
				}
			}
		}()
	}

feed:
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			errs <- err
			break
		}
		select {
		case <-ctx.Done():
			errs <- ctx.Err()
			break feed
		case jobs <- item:
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	out := make([]error, 0, len(errs))
	for err := range errs {
		out = append(out, err)
	}
	return out
}
