package storage

import (
	"sync"
)

// Key identifies a typed slot in Storage. Declare keys as package-level
// variables; two keys are the same slot only if they are the same pointer.
type Key[T any] struct {
	name string
}

// NewKey creates a slot key. The name is used for diagnostics only.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

func (k *Key[T]) String() string {
	return k.name
}

type slot struct {
	value      any
	onShutdown func()
}

// Storage is a process-wide set of typed values with shutdown hooks.
// It is safe for concurrent use.
type Storage struct {
	mu       sync.RWMutex
	slots    map[any]*slot
	order    []any
	shutdown bool
}

// New creates empty storage.
func New() *Storage {
	return &Storage{slots: make(map[any]*slot)}
}

// Get returns the value stored under key.
func Get[T any](s *Storage, key *Key[T]) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	sl, ok := s.slots[key]
	if !ok {
		return zero, false
	}
	v, ok := sl.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set stores value under key. onShutdown, if not nil, runs with the value
// when the storage shuts down. Replacing a value runs the previous value's
// hook immediately. Set after Shutdown returns ErrShutdown.
func Set[T any](s *Storage, key *Key[T], value T, onShutdown func(T)) error {
	sl := &slot{value: value}
	if onShutdown != nil {
		sl.onShutdown = func() { onShutdown(value) }
	}

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return ErrShutdown
	}
	prev, existed := s.slots[key]
	s.slots[key] = sl
	if !existed {
		s.order = append(s.order, key)
	}
	s.mu.Unlock()

	if existed && prev.onShutdown != nil {
		prev.onShutdown()
	}
	return nil
}

// Has reports whether key holds a value.
func Has[T any](s *Storage, key *Key[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.slots[key]
	return ok
}

// Len returns the number of stored values.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

// Shutdown runs every hook once, last registered first, and clears the
// storage. Later calls do nothing.
func (s *Storage) Shutdown() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	order := s.order
	slots := s.slots
	s.order = nil
	s.slots = make(map[any]*slot)
	s.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		if sl := slots[order[i]]; sl.onShutdown != nil {
			sl.onShutdown()
		}
	}
}

// IsShutdown reports whether Shutdown was called.
func (s *Storage) IsShutdown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shutdown
}
