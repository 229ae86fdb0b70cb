package scopelock

import (
	"context"
	"sync"
)

// MemoryLocker keys a mutex per scope. Suitable for single-instance
// deployments and tests; multi-instance deployments use RedisLocker.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*scopeMutex
}

type scopeMutex struct {
	mu   sync.Mutex
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*scopeMutex)}
}

// Lock blocks until the scope is free or ctx is done. Entries are dropped
// again once the last holder releases, so the map does not grow with every
// scope ever seen.
func (l *MemoryLocker) Lock(ctx context.Context, scopeKey string) (func(), error) {
	l.mu.Lock()
	sm, ok := l.locks[scopeKey]
	if !ok {
		sm = &scopeMutex{}
		l.locks[scopeKey] = sm
	}
	sm.refs++
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		sm.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() {
			sm.mu.Unlock()
			l.release(scopeKey, sm)
		}, nil
	case <-ctx.Done():
		// The goroutine will still acquire eventually; hand the slot
		// straight back so refs stay balanced.
		go func() {
			<-acquired
			sm.mu.Unlock()
			l.release(scopeKey, sm)
		}()
		return nil, ctx.Err()
	}
}

func (l *MemoryLocker) release(scopeKey string, sm *scopeMutex) {
	l.mu.Lock()
	sm.refs--
	if sm.refs == 0 {
		delete(l.locks, scopeKey)
	}
	l.mu.Unlock()
}
