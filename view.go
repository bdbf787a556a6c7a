package openhash

import (
	"fmt"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
)

// Views hold nothing but a pointer to their Map. Every read goes to the
// backing table, and every removal goes through the probe engine, so a
// change made through one view is visible in the map and in every other
// view at once.

// KeySet is a live view of the keys of a Map.
type KeySet[K comparable, V comparable] struct {
	m *Map[K, V]
}

func (s KeySet[K, V]) Len() int          { return s.m.Len() }
func (s KeySet[K, V]) IsEmpty() bool     { return s.m.IsEmpty() }
func (s KeySet[K, V]) Contains(k K) bool { return s.m.ContainsKey(k) }

// Remove deletes k and its value from the map.
func (s KeySet[K, V]) Remove(k K) bool {
	_, found := s.m.t.remove(k)
	return found
}

// Clear empties the map.
func (s KeySet[K, V]) Clear() { s.m.Clear() }

// Add panics with ErrUnsupportedOperation: a key cannot be added without a value.
func (s KeySet[K, V]) Add(k K) bool {
	panic(errors.Wrap(ErrUnsupportedOperation, "add to a key set view"))
}

func (s KeySet[K, V]) Range(f func(k K) bool) {
	s.m.t.each(func(k K, _ V) bool { return f(k) })
}

func (s KeySet[K, V]) All() iter.Seq[K] {
	return func(yield func(K) bool) { s.Range(yield) }
}

func (s KeySet[K, V]) Iterator() Iterator[K] {
	return &keyIterator[K, V]{newTableIterator(s.m.t)}
}

func (s KeySet[K, V]) ToSlice() []K {
	keys := make([]K, 0, s.Len())
	s.Range(func(k K) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

func (s KeySet[K, V]) String() string {
	return formatSeq(s.All())
}

// ValueCollection is a live view of the values of a Map.
type ValueCollection[K comparable, V comparable] struct {
	m *Map[K, V]
}

func (c ValueCollection[K, V]) Len() int          { return c.m.Len() }
func (c ValueCollection[K, V]) IsEmpty() bool     { return c.m.IsEmpty() }
func (c ValueCollection[K, V]) Contains(v V) bool { return c.m.ContainsValue(v) }

// Remove deletes the first entry, in iteration order, whose value is v.
func (c ValueCollection[K, V]) Remove(v V) bool {
	it := c.Iterator()
	for it.HasNext() {
		got, err := it.Next()
		if err != nil {
			panic(err)
		}
		if got == v {
			if err := it.Remove(); err != nil {
				panic(err)
			}
			return true
		}
	}
	return false
}

// Clear empties the map.
func (c ValueCollection[K, V]) Clear() { c.m.Clear() }

// Add panics with ErrUnsupportedOperation: a value cannot be added without a key.
func (c ValueCollection[K, V]) Add(v V) bool {
	panic(errors.Wrap(ErrUnsupportedOperation, "add to a value collection view"))
}

func (c ValueCollection[K, V]) Range(f func(v V) bool) {
	c.m.t.each(func(_ K, v V) bool { return f(v) })
}

func (c ValueCollection[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) { c.Range(yield) }
}

func (c ValueCollection[K, V]) Iterator() Iterator[V] {
	return &valueIterator[K, V]{newTableIterator(c.m.t)}
}

func (c ValueCollection[K, V]) ToSlice() []V {
	values := make([]V, 0, c.Len())
	c.Range(func(v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

func (c ValueCollection[K, V]) String() string {
	return formatSeq(c.All())
}

// EntrySet is a live view of the entries of a Map.
type EntrySet[K comparable, V comparable] struct {
	m *Map[K, V]
}

func (s EntrySet[K, V]) Len() int      { return s.m.Len() }
func (s EntrySet[K, V]) IsEmpty() bool { return s.m.IsEmpty() }

// Contains reports whether e.Key maps to e.Value.
func (s EntrySet[K, V]) Contains(e Entry[K, V]) bool {
	pos := s.m.t.find(e.Key)
	return pos >= 0 && s.m.t.value[pos] == e.Value
}

// Remove deletes e.Key only if it maps to e.Value.
func (s EntrySet[K, V]) Remove(e Entry[K, V]) bool {
	pos := s.m.t.find(e.Key)
	if pos < 0 || s.m.t.value[pos] != e.Value {
		return false
	}
	s.m.t.removeAt(pos)
	return true
}

// Clear empties the map.
func (s EntrySet[K, V]) Clear() { s.m.Clear() }

// Add panics with ErrUnsupportedOperation; use Map.Put.
func (s EntrySet[K, V]) Add(e Entry[K, V]) bool {
	panic(errors.Wrap(ErrUnsupportedOperation, "add to an entry set view"))
}

func (s EntrySet[K, V]) Range(f func(e Entry[K, V]) bool) {
	s.m.t.each(func(k K, v V) bool { return f(Entry[K, V]{Key: k, Value: v}) })
}

func (s EntrySet[K, V]) All() iter.Seq[Entry[K, V]] {
	return func(yield func(Entry[K, V]) bool) { s.Range(yield) }
}

func (s EntrySet[K, V]) Iterator() Iterator[Entry[K, V]] {
	return &entryIterator[K, V]{newTableIterator(s.m.t)}
}

func (s EntrySet[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	s.Range(func(e Entry[K, V]) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v=%v", e.Key, e.Value)
		return true
	})
	b.WriteByte(']')
	return b.String()
}

// formatSeq formats the elements of seq as [a, b, c].
func formatSeq[T any](seq iter.Seq[T]) string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for v := range seq {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v", v)
	}
	b.WriteByte(']')
	return b.String()
}
