package dispatch

import (
	"context"
	"sync"
)

// lockTable serializes submissions per device name. Waiters are granted the
// lock in arrival order; a waiter can abandon the queue while waiting but
// never once the lock is held.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*deviceLock
}

type deviceLock struct {
	mu      sync.Mutex
	held    bool
	waiters []chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*deviceLock)}
}

func (t *lockTable) acquire(ctx context.Context, name string) (func(), error) {
	t.mu.Lock()
	l, ok := t.locks[name]
	if !ok {
		l = &deviceLock{}
		t.locks[name] = l
	}
	t.mu.Unlock()

	l.mu.Lock()
	if !l.held {
		l.held = true
		l.mu.Unlock()
		return func() { l.release() }, nil
	}
	grant := make(chan struct{})
	l.waiters = append(l.waiters, grant)
	l.mu.Unlock()

	select {
	case <-grant:
		return func() { l.release() }, nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range l.waiters {
			if w == grant {
				l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
				l.mu.Unlock()
				return nil, ctx.Err()
			}
		}
		l.mu.Unlock()
		// the grant raced the cancellation; we own the lock now, so
		// pass it straight on
		l.release()
		return nil, ctx.Err()
	}
}

func (l *deviceLock) release() {
	l.mu.Lock()
	if len(l.waiters) > 0 {
		next := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.mu.Unlock()
		close(next)
		return
	}
	l.held = false
	l.mu.Unlock()
}
