// Package locks provides the per-transaction mutual exclusion used by the
// reservation coordinator. The locker is injected so the coordinator carries
// no hidden process-wide state.
package locks

import (
	"context"
	"sync"
)

// Locker serializes work on a string key. TryLock never blocks: ok reports
// whether the lock was acquired, and release must be called exactly once when
// it was.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), ok bool, err error)
}

// KeyedMutex is an in-process lock registry. Suitable for a single-instance
// deployment and for tests; multi-instance deployments use RedisLocker.
type KeyedMutex struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{held: make(map[string]struct{})}
}

func (m *KeyedMutex) TryLock(_ context.Context, key string) (func(), bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.held[key]; taken {
		return nil, false, nil
	}
	m.held[key] = struct{}{}

	release := func() {
		m.mu.Lock()
		delete(m.held, key)
		m.mu.Unlock()
	}
	return release, true, nil
}
