// Package ordered provides insertion-ordered set and map containers.
//
// Resolution results must be reproducible run to run, so every collection
// the resolver hands out keeps the order in which entries were discovered.
// Neither type is safe for concurrent use.
package ordered

// Set is an insertion-ordered set. The zero value is ready to use.
type Set[T comparable] struct {
	index map[T]struct{}
	items []T
}

// NewSet creates a set holding items in order, dropping duplicates.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts v and reports whether it was not already present.
func (s *Set[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of entries.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the entries in insertion order.
func (s *Set[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Map is an insertion-ordered map where the first value stored for a key
// is kept. The zero value is ready to use.
type Map[K comparable, V any] struct {
	index map[K]V
	keys  []K
}

// PutIfAbsent stores v under k unless k is already present. It returns the
// value held for k afterwards and whether v was stored.
func (m *Map[K, V]) PutIfAbsent(k K, v V) (V, bool) {
	if m.index == nil {
		m.index = make(map[K]V)
	}
	if existing, ok := m.index[k]; ok {
		return existing, false
	}
	m.index[k] = v
	m.keys = append(m.keys, k)
	return v, true
}

// Get returns the value stored for k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.index[k]
	return v, ok
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// ToMap returns a plain map copy.
func (m *Map[K, V]) ToMap() map[K]V {
	out := make(map[K]V, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.index[k]
	}
	return out
}
