package inmemorystore

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Store is an in-memory table of values keyed by id, backed by sync.Map.
type Store[V any] struct {
	entries sync.Map // Key: id string, Value: V
	size    atomic.Int64
}

// New creates a new, empty store.
func New[V any]() *Store[V] {
	return &Store[V]{}
}

// Put stores v under id. It reports whether an existing entry was replaced.
func (s *Store[V]) Put(id string, v V) bool {
	_, replaced := s.entries.Swap(id, v)
	if !replaced {
		s.size.Add(1)
	}
	return replaced
}

// Get returns the entry stored under id.
func (s *Store[V]) Get(id string) (V, bool) {
	v, ok := s.entries.Load(id)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Delete removes the entry stored under id and returns it.
func (s *Store[V]) Delete(id string) (V, bool) {
	v, ok := s.entries.LoadAndDelete(id)
	if !ok {
		var zero V
		return zero, false
	}
	s.size.Add(-1)
	return v.(V), true
}

// Len returns the number of entries.
func (s *Store[V]) Len() int {
	return int(s.size.Load())
}

// All returns every entry, sorted by id.
func (s *Store[V]) All() []V {
	return s.Except("")
}

// Except returns every entry but the one stored under id, sorted by id.
func (s *Store[V]) Except(id string) []V {
	type entry struct {
		id string
		v  V
	}
	var entries []entry
	s.entries.Range(func(key, value any) bool {
		if k := key.(string); k != id || id == "" {
			entries = append(entries, entry{id: k, v: value.(V)})
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	out := make([]V, len(entries))
	for i, e := range entries {
		out[i] = e.v
	}
	return out
}
