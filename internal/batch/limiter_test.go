package batch

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterEnforcesMinimumInterval(t *testing.T) {
	limiter := NewLimiter(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}

	// Three dispatches need at least two full intervals between them.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestLimiterSerializesConcurrentWaiters(t *testing.T) {
	limiter := NewLimiter(15 * time.Millisecond)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		times []time.Time
		wg    sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Wait(ctx))
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, times, 4)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i := 1; i < len(times); i++ {
		// No two dispatches can be closer than the interval, minus a little
		// scheduling slop between grant and timestamp capture.
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), 10*time.Millisecond)
	}
}

func TestLimiterZeroIntervalIsNoOp(t *testing.T) {
	limiter := NewLimiter(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiterHonorsContextCancellation(t *testing.T) {
	limiter := NewLimiter(time.Hour)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}
