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

func TestWorkingPoolExecutesJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkingPool(2, 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go pool.Start(ctx, &wg)

	var executed atomic.Int64
	done := make(chan struct{})
	require.NoError(t, pool.SubmitJob(func(context.Context) error {
		executed.Add(1)
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}

	cancel()
	wg.Wait()
	assert.Equal(t, int64(1), executed.Load())
}

func TestWorkingPoolSubmitAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkingPool(1, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go pool.Start(ctx, &wg)

	cancel()
	wg.Wait()

	// Submissions after shutdown must be rejected, not panic on the
	// closed channel.
	err := pool.SubmitJob(func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkingPoolSubmitDuringShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkingPool(2, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go pool.Start(ctx, &wg)

	var submitters sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		submitters.Add(1)
		go func() {
			defer submitters.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				err := pool.SubmitJob(func(context.Context) error { return nil })
				if err == ErrPoolClosed {
					return
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	cancel()
	wg.Wait()

	close(stop)
	submitters.Wait()
}

func TestWorkingPoolRecoversFromPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkingPool(1, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go pool.Start(ctx, &wg)

	done := make(chan struct{})
	require.NoError(t, pool.SubmitJob(func(context.Context) error {
		panic("boom")
	}))
	require.NoError(t, pool.SubmitJob(func(context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panicking job")
	}

	cancel()
	wg.Wait()
}
