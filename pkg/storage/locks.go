package storage

import "sync"

// Locks hands out one mutex per name, for guarding lazy initialisation of
// values kept in Storage.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocks creates an empty lock set.
func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// Lock returns the mutex for name, creating it on first use.
func (l *Locks) Lock(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[name]
	if !ok {
		m = new(sync.Mutex)
		l.locks[name] = m
	}
	return m
}
