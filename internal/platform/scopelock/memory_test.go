package scopelock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_SerializesSameScope(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	var inCritical, maxInCritical int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "clearance:p1/r1")
			require.NoError(t, err)
			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "two writers entered the same scope concurrently")
}

func TestMemoryLocker_DistinctScopesDoNotBlock(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "clearance:p1/r1")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := l.Lock(ctx, "clearance:p1/r2")
		assert.NoError(t, err)
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("distinct scope blocked behind unrelated lock")
	}
}

func TestMemoryLocker_ContextCancellation(t *testing.T) {
	l := NewMemoryLocker()

	unlock, err := l.Lock(context.Background(), "exclusion:p1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "exclusion:p1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	// The scope is usable again after the blocked waiter gave up.
	unlock2, err := l.Lock(context.Background(), "exclusion:p1")
	require.NoError(t, err)
	unlock2()
}
