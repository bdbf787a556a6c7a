package openhash

import (
	"iter"
)

// Set is a hash set using open addressing with linear probing. It shares
// the engine of Map, with zero-size values.
type Set[K comparable] struct {
	t             *table[K, struct{}]
	rejectZeroKey bool
}

// NewSet returns a set able to hold expected keys before its first resize.
func NewSet[K comparable](expected int, opts ...Option) *Set[K] {
	return NewSetWithStrategy[K](expected, Natural[K](), opts...)
}

// NewSetWithStrategy is like NewSet, but hashes and compares keys with strategy.
func NewSetWithStrategy[K comparable](expected int, strategy Strategy[K], opts ...Option) *Set[K] {
	o := buildOptions(opts)
	return &Set[K]{
		t:             newTable[K, struct{}](expected, strategy, o),
		rejectZeroKey: o.rejectZeroKey,
	}
}

// SetFrom returns a set holding keys.
func SetFrom[K comparable](keys ...K) *Set[K] {
	s := NewSet[K](len(keys))
	s.AddAll(keys...)
	return s
}

func (s *Set[K]) Len() int          { return s.t.size }
func (s *Set[K]) IsEmpty() bool     { return s.t.size == 0 }
func (s *Set[K]) Contains(k K) bool { return s.t.find(k) >= 0 }

// Add adds k, reporting whether it was absent.
func (s *Set[K]) Add(k K) bool {
	checkZeroKey(s.rejectZeroKey, k)
	pos := s.t.find(k)
	if pos >= 0 {
		return false
	}
	s.t.insertAt(-pos-1, k, struct{}{})
	return true
}

// AddAll adds keys, reporting whether the set changed. A rejected zero key
// panics before any key is added.
func (s *Set[K]) AddAll(keys ...K) bool {
	for _, k := range keys {
		checkZeroKey(s.rejectZeroKey, k)
	}
	s.t.grow(s.Len() + len(keys))
	changed := false
	for _, k := range keys {
		if s.Add(k) {
			changed = true
		}
	}
	return changed
}

// Remove deletes k, reporting whether it was present.
func (s *Set[K]) Remove(k K) bool {
	_, found := s.t.remove(k)
	return found
}

// RemoveAll deletes keys, reporting whether the set changed.
func (s *Set[K]) RemoveAll(keys ...K) bool {
	changed := false
	for _, k := range keys {
		if s.Remove(k) {
			changed = true
		}
	}
	return changed
}

// RetainAll keeps only the keys also contained in other.
func (s *Set[K]) RetainAll(other *Set[K]) bool {
	changed := false
	it := s.Iterator()
	for it.HasNext() {
		k, err := it.Next()
		if err != nil {
			panic(err)
		}
		if !other.Contains(k) {
			if err := it.Remove(); err != nil {
				panic(err)
			}
			changed = true
		}
	}
	return changed
}

func (s *Set[K]) Clear() { s.t.clear() }

// Grow makes room for at least expected keys without further resizing.
func (s *Set[K]) Grow(expected int) { s.t.grow(expected) }

// Trim shrinks the table to the smallest capacity that holds the current keys.
func (s *Set[K]) Trim() bool { return s.t.trim(0) }

// TrimTo is like Trim, but keeps room for at least expected keys.
func (s *Set[K]) TrimTo(expected int) bool { return s.t.trim(expected) }

// Clone returns an independent copy of s.
func (s *Set[K]) Clone() *Set[K] {
	return &Set[K]{t: s.t.clone(), rejectZeroKey: s.rejectZeroKey}
}

// Equal reports whether s and other contain the same keys.
func (s *Set[K]) Equal(other *Set[K]) bool {
	if s == other {
		return true
	}
	if other == nil || s.Len() != other.Len() {
		return false
	}
	equal := true
	other.t.each(func(k K, _ struct{}) bool {
		equal = s.Contains(k)
		return equal
	})
	return equal
}

// HashCode returns the sum of the key hashes. Keys that are not equal to
// themselves, such as NaN, all contribute one fixed hash.
func (s *Set[K]) HashCode() uint64 {
	var h uint64
	s.t.each(func(k K, _ struct{}) bool {
		h += s.t.keyHash(k)
		return true
	})
	return h
}

// String formats s as [a, b, c] in iteration order.
func (s *Set[K]) String() string {
	return formatSeq(s.All())
}

// Range calls f for each key. It panics with ErrConcurrentModification
// if f adds or removes keys.
func (s *Set[K]) Range(f func(k K) bool) {
	s.t.each(func(k K, _ struct{}) bool { return f(k) })
}

func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) { s.Range(yield) }
}

// Iterator returns a fail-fast iterator over the keys of s.
func (s *Set[K]) Iterator() Iterator[K] {
	return &keyIterator[K, struct{}]{newTableIterator(s.t)}
}

func (s *Set[K]) ToSlice() []K {
	keys := make([]K, 0, s.Len())
	s.Range(func(k K) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}
