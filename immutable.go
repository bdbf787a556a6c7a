package openhash

import (
	"iter"

	"github.com/cockroachdb/errors"
)

func unsupported(op string) error {
	return errors.Wrapf(ErrUnsupportedOperation, "%s on an immutable container", op)
}

// ImmutableSet is a read-only Set. Its write methods panic with
// ErrUnsupportedOperation, and Remove on its iterators returns it.
type ImmutableSet[K comparable] struct {
	s *Set[K]
}

// SetOf returns an immutable set holding keys, compared with the Natural
// strategy. Use a SetBuilder for any other strategy.
func SetOf[K comparable](keys ...K) ImmutableSet[K] {
	return ImmutableSet[K]{s: SetFrom(keys...)}
}

// UnmodifiableSet returns an immutable copy of s.
func UnmodifiableSet[K comparable](s *Set[K]) ImmutableSet[K] {
	return ImmutableSet[K]{s: s.Clone()}
}

func (s ImmutableSet[K]) Len() int          { return s.s.Len() }
func (s ImmutableSet[K]) IsEmpty() bool     { return s.s.IsEmpty() }
func (s ImmutableSet[K]) Contains(k K) bool { return s.s.Contains(k) }
func (s ImmutableSet[K]) HashCode() uint64  { return s.s.HashCode() }
func (s ImmutableSet[K]) String() string    { return s.s.String() }
func (s ImmutableSet[K]) ToSlice() []K      { return s.s.ToSlice() }
func (s ImmutableSet[K]) Range(f func(k K) bool) {
	s.s.Range(f)
}
func (s ImmutableSet[K]) All() iter.Seq[K] { return s.s.All() }

// Equal reports whether s and other contain the same keys.
func (s ImmutableSet[K]) Equal(other ImmutableSet[K]) bool {
	return s.s.Equal(other.s)
}

// Mutable returns a mutable copy of s.
func (s ImmutableSet[K]) Mutable() *Set[K] { return s.s.Clone() }

func (s ImmutableSet[K]) Iterator() Iterator[K] {
	return readOnlyIterator[K]{s.s.Iterator()}
}

func (s ImmutableSet[K]) Add(k K) bool    { panic(unsupported("Add")) }
func (s ImmutableSet[K]) Remove(k K) bool { panic(unsupported("Remove")) }
func (s ImmutableSet[K]) Clear()          { panic(unsupported("Clear")) }

// SetBuilder accumulates keys for an ImmutableSet. Keys are compared with
// the builder's strategy, and every set it builds uses the same strategy
// and options.
type SetBuilder[K comparable] struct {
	s        *Set[K]
	strategy Strategy[K]
	opts     []Option
}

func NewSetBuilder[K comparable](opts ...Option) *SetBuilder[K] {
	return NewSetBuilderWithStrategy(Natural[K](), opts...)
}

func NewSetBuilderWithStrategy[K comparable](strategy Strategy[K], opts ...Option) *SetBuilder[K] {
	return &SetBuilder[K]{
		s:        NewSetWithStrategy[K](DefaultExpected, strategy, opts...),
		strategy: strategy,
		opts:     opts,
	}
}

func (b *SetBuilder[K]) Add(k K) *SetBuilder[K] {
	b.s.Add(k)
	return b
}

func (b *SetBuilder[K]) AddAll(keys ...K) *SetBuilder[K] {
	b.s.AddAll(keys...)
	return b
}

// Build returns an immutable set of the keys added so far. The builder can
// keep being used; later additions do not affect sets already built.
func (b *SetBuilder[K]) Build() ImmutableSet[K] {
	s := NewSetWithStrategy[K](b.s.Len(), b.strategy, b.opts...)
	b.s.Range(func(k K) bool {
		s.Add(k)
		return true
	})
	return ImmutableSet[K]{s: s}
}

// ImmutableMap is a read-only Map. Its write methods panic with
// ErrUnsupportedOperation, and Remove on its iterators returns it.
type ImmutableMap[K comparable, V comparable] struct {
	m *Map[K, V]
}

// MapOf returns an immutable map holding entries, with keys compared by the
// Natural strategy. Later entries win over earlier ones with an equal key.
// Use a MapBuilder for any other strategy.
func MapOf[K comparable, V comparable](entries ...Entry[K, V]) ImmutableMap[K, V] {
	m := New[K, V](len(entries))
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return ImmutableMap[K, V]{m: m}
}

// Unmodifiable returns an immutable copy of m.
func Unmodifiable[K comparable, V comparable](m *Map[K, V]) ImmutableMap[K, V] {
	return ImmutableMap[K, V]{m: m.Clone()}
}

func (m ImmutableMap[K, V]) Len() int                { return m.m.Len() }
func (m ImmutableMap[K, V]) IsEmpty() bool           { return m.m.IsEmpty() }
func (m ImmutableMap[K, V]) Get(k K) (V, bool)       { return m.m.Get(k) }
func (m ImmutableMap[K, V]) GetOrDefault(k K, d V) V { return m.m.GetOrDefault(k, d) }
func (m ImmutableMap[K, V]) ContainsKey(k K) bool    { return m.m.ContainsKey(k) }
func (m ImmutableMap[K, V]) ContainsValue(v V) bool  { return m.m.ContainsValue(v) }
func (m ImmutableMap[K, V]) HashCode() uint64        { return m.m.HashCode() }
func (m ImmutableMap[K, V]) String() string          { return m.m.String() }
func (m ImmutableMap[K, V]) All() iter.Seq2[K, V]    { return m.m.All() }
func (m ImmutableMap[K, V]) Range(f func(K, V) bool) { m.m.Range(f) }
func (m ImmutableMap[K, V]) Equal(o ImmutableMap[K, V]) bool {
	return m.m.Equal(o.m)
}

// Mutable returns a mutable copy of m.
func (m ImmutableMap[K, V]) Mutable() *Map[K, V] { return m.m.Clone() }

// Keys returns the keys in iteration order.
func (m ImmutableMap[K, V]) Keys() []K { return m.m.KeySet().ToSlice() }

// Iterator returns an iterator over the entries; its Remove is unsupported.
func (m ImmutableMap[K, V]) Iterator() Iterator[Entry[K, V]] {
	return readOnlyIterator[Entry[K, V]]{m.m.EntrySet().Iterator()}
}

func (m ImmutableMap[K, V]) Put(k K, v V) (V, bool) { panic(unsupported("Put")) }
func (m ImmutableMap[K, V]) Set(k K, v V)           { panic(unsupported("Set")) }
func (m ImmutableMap[K, V]) Remove(k K) (V, bool)   { panic(unsupported("Remove")) }
func (m ImmutableMap[K, V]) Clear()                 { panic(unsupported("Clear")) }

// MapBuilder accumulates entries for an ImmutableMap. Keys are compared with
// the builder's strategy, and every map it builds uses the same strategy
// and options.
type MapBuilder[K comparable, V comparable] struct {
	m        *Map[K, V]
	strategy Strategy[K]
	opts     []Option
}

func NewMapBuilder[K comparable, V comparable](opts ...Option) *MapBuilder[K, V] {
	return NewMapBuilderWithStrategy[K, V](Natural[K](), opts...)
}

func NewMapBuilderWithStrategy[K comparable, V comparable](strategy Strategy[K], opts ...Option) *MapBuilder[K, V] {
	return &MapBuilder[K, V]{
		m:        NewWithStrategy[K, V](DefaultExpected, strategy, opts...),
		strategy: strategy,
		opts:     opts,
	}
}

func (b *MapBuilder[K, V]) Put(k K, v V) *MapBuilder[K, V] {
	b.m.Set(k, v)
	return b
}

func (b *MapBuilder[K, V]) PutAll(other *Map[K, V]) *MapBuilder[K, V] {
	b.m.PutAll(other)
	return b
}

// Build returns an immutable map of the entries put so far. The builder can
// keep being used; later puts do not affect maps already built.
func (b *MapBuilder[K, V]) Build() ImmutableMap[K, V] {
	m := NewWithStrategy[K, V](b.m.Len(), b.strategy, b.opts...)
	m.PutAll(b.m)
	return ImmutableMap[K, V]{m: m}
}

type readOnlyIterator[T any] struct {
	Iterator[T]
}

func (readOnlyIterator[T]) Remove() error {
	return unsupported("iterator Remove")
}
