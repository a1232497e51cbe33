package favorites

import (
	"sync"

	"starwarsapi/internal/models"
)

type lockKey struct {
	userID int64
	target models.Target
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

// keyLocker hands out one mutex per key and drops it once no caller holds
// or waits on it.
type keyLocker struct {
	mu    sync.Mutex
	locks map[lockKey]*refMutex
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[lockKey]*refMutex)}
}

func (l *keyLocker) lock(key lockKey) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &refMutex{}
		l.locks[key] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()

	return func() {
		m.mu.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *keyLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
