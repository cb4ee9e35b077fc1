package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks, nil
}

// RunBatched runs worker over consecutive chunks of items with at most
// concurrency chunks in flight. results[i] belongs to chunk i. A chunk whose
// worker fails or panics is logged and left nil; the other chunks still
// complete. Only an invalid batch size or a cancelled context is returned
// as an error.
func RunBatched[T, R any](ctx context.Context, items []T, batchSize, concurrency int, worker func(context.Context, []T) (*R, error)) ([]*R, error) {
	chunks, err := Chunk(items, batchSize)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*R, len(chunks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, chunk := range chunks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					zap.L().Error("batch: worker panicked",
						zap.Int("batch", i),
						zap.Any("panic", r),
					)
				}
			}()

			if gCtx.Err() != nil {
				return nil
			}
			res, werr := worker(gCtx, chunk)
			if werr != nil {
				zap.L().Warn("batch: worker failed",
					zap.Int("batch", i),
					zap.Int("size", len(chunk)),
					zap.Error(werr),
				)
				return nil // Don't fail the group on individual errors.
			}
			// Each goroutine owns its own slot.
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Retry calls fn until it succeeds, at most retries+1 times, sleeping
// base*2^attempt between attempts. It stops early when ctx is done.
func Retry[T any](ctx context.Context, retries int, base time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt == retries {
			break
		}

		delay := base << attempt
		zap.L().Warn("retry: attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", retries+1, lastErr)
}
