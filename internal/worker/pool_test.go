package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsJobs(t *testing.T) {
	pool := NewPool(2)

	var ran bool
	err := pool.Do(context.Background(), func() { ran = true })
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const size = 2
	pool := NewPool(size)

	var (
		current int32
		peak    int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Do(context.Background(), func() {
				running := atomic.AddInt32(&current, 1)
				for {
					observed := atomic.LoadInt32(&peak)
					if running <= observed || atomic.CompareAndSwapInt32(&peak, observed, running) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&current, -1)
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, int32(size))
}

func TestPoolRespectsContext(t *testing.T) {
	pool := NewPool(1)

	release := make(chan struct{})
	go func() {
		_ = pool.Do(context.Background(), func() { <-release })
	}()

	// Let the occupier grab the only slot.
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pool.Do(ctx, func() { t.Fatal("job must not run after context expiry") })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestPoolMinimumSize(t *testing.T) {
	assert.Equal(t, 1, NewPool(0).Size())
	assert.Equal(t, 4, NewPool(4).Size())
}
