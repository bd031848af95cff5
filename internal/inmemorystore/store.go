package inmemorystore

import (
	"sync"
	"sync/atomic"
)

// Store is a typed wrapper around sync.Map that also tracks its size.
// The zero value is ready to use.
type Store[K comparable, V any] struct {
	m   sync.Map
	len atomic.Int64
}

// New creates a new, empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{}
}

// Load returns the value stored under key.
func (s *Store[K, V]) Load(key K) (V, bool) {
	v, ok := s.m.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Store sets the value for key.
func (s *Store[K, V]) Store(key K, value V) {
	if _, loaded := s.m.Swap(key, value); !loaded {
		s.len.Add(1)
	}
}

// LoadOrStore returns the existing value for key if present. Otherwise it
// stores value and returns it. loaded reports whether the value was present.
func (s *Store[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := s.m.LoadOrStore(key, value)
	if !loaded {
		s.len.Add(1)
	}
	return v.(V), loaded
}

// Delete removes key and returns the value it held.
func (s *Store[K, V]) Delete(key K) (V, bool) {
	v, loaded := s.m.LoadAndDelete(key)
	if !loaded {
		var zero V
		return zero, false
	}
	s.len.Add(-1)
	return v.(V), true
}

// Range calls fn for each entry until fn returns false. See sync.Map.Range
// for the consistency guarantees.
func (s *Store[K, V]) Range(fn func(key K, value V) bool) {
	s.m.Range(func(k, v any) bool {
		return fn(k.(K), v.(V))
	})
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	return int(s.len.Load())
}
