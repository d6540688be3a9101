package resourcelock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AmenityService/pkg/resourcelock"
)

func TestAcquireRelease(t *testing.T) {
	l := resourcelock.New()

	release, err := l.Acquire(context.Background(), 1)
	require.NoError(t, err)
	release()

	// После освобождения ключ снова доступен
	release, err = l.Acquire(context.Background(), 1)
	require.NoError(t, err)
	release()
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	l := resourcelock.New()

	release1, err := l.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	release2, err := l.Acquire(ctx, 2)
	require.NoError(t, err)
	release2()
}

func TestSameKeySerializes(t *testing.T) {
	l := resourcelock.New()

	release, err := l.Acquire(context.Background(), 1)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := l.Acquire(context.Background(), 1)
		if err == nil {
			close(acquired)
			r()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire did not proceed after release")
	}
}

func TestAcquireContextTimeout(t *testing.T) {
	l := resourcelock.New()

	release, err := l.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAcquireContextCancel(t *testing.T) {
	l := resourcelock.New()

	release, err := l.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Acquire(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFIFOOrder(t *testing.T) {
	l := resourcelock.New()

	release, err := l.Acquire(context.Background(), 1)
	require.NoError(t, err)

	const waiters = 5

	var mu sync.Mutex
	order := make([]int, 0, waiters)
	var wg sync.WaitGroup
	started := make([]chan struct{}, waiters)

	for i := 0; i < waiters; i++ {
		started[i] = make(chan struct{})
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			close(started[n])
			r, err := l.Acquire(context.Background(), 1)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			r()
		}(i)
		<-started[i]
		// Пауза между запусками, чтобы порядок постановки в очередь был детерминирован
		time.Sleep(20 * time.Millisecond)
	}

	release()
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestMutualExclusionUnderContention(t *testing.T) {
	l := resourcelock.New()

	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), 7)
			if !assert.NoError(t, err) {
				return
			}
			defer release()
			counter++
		}()
	}

	wg.Wait()
	assert.Equal(t, 50, counter)
}
