package ai_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/tidymark/internal/ai"
)

func TestChunk(t *testing.T) {
	chunks, err := ai.Chunk([]int{1, 2, 3, 4, 5}, 2)
	assert.NilError(t, err)
	assert.DeepEqual(t, chunks, [][]int{{1, 2}, {3, 4}, {5}})

	_, err = ai.Chunk([]int{1}, 0)
	assert.Assert(t, errors.Is(err, ai.ErrInvalidBatchSize))
}

func TestRunBatched_IsolatesFailures(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	results, err := ai.RunBatched(context.Background(), items, 3, 2, func(_ context.Context, batch []int) (*int, error) {
		switch batch[0] {
		case 3:
			return nil, errors.New("provider exploded")
		case 6:
			panic("worker bug")
		}
		sum := 0
		for _, v := range batch {
			sum += v
		}
		return &sum, nil
	})

	assert.NilError(t, err)
	assert.Equal(t, len(results), 4)
	assert.Equal(t, *results[0], 0+1+2)
	assert.Assert(t, results[1] == nil)
	assert.Assert(t, results[2] == nil)
	assert.Equal(t, *results[3], 9)
}

func TestRunBatched_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	items := make([]int, 40)
	for i := range items {
		items[i] = i
	}

	var inFlight, peak int32
	results, err := ai.RunBatched(context.Background(), items, 4, 3, func(_ context.Context, batch []int) (*int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		// Later batches finish first
		time.Sleep(time.Duration(10-batch[0]/4) * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		first := batch[0]
		return &first, nil
	})

	assert.NilError(t, err)
	assert.Equal(t, len(results), 10)
	for i, r := range results {
		assert.Equal(t, *r, i*4)
	}
	assert.Assert(t, atomic.LoadInt32(&peak) <= 3)
}

func TestRunBatched_InvalidBatchSize(t *testing.T) {
	_, err := ai.RunBatched(context.Background(), []int{1}, 0, 1, func(context.Context, []int) (*int, error) {
		return nil, nil
	})
	assert.Assert(t, errors.Is(err, ai.ErrInvalidBatchSize))
}

func TestRetry(t *testing.T) {
	calls := 0
	v, err := ai.Retry(context.Background(), 2, time.Millisecond, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("429")
		}
		return "ok", nil
	})
	assert.NilError(t, err)
	assert.Equal(t, v, "ok")
	assert.Equal(t, calls, 3)

	calls = 0
	_, err = ai.Retry(context.Background(), 2, time.Millisecond, func(context.Context) (string, error) {
		calls++
		return "", errors.New("still failing")
	})
	assert.ErrorContains(t, err, "failed after 3 attempts")
	assert.ErrorContains(t, err, "still failing")
	assert.Equal(t, calls, 3)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := ai.Retry(ctx, 5, time.Hour, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("boom")
	})
	assert.Assert(t, errors.Is(err, context.Canceled))
	assert.Equal(t, calls, 1)
}
