package openhash

import (
	"fmt"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
)

// Map is a hash map using open addressing with linear probing.
//
// Keys are compared with a Strategy (Natural by default). The zero key is
// an ordinary key stored outside the probed table, unless the map was
// created WithoutZeroKey.
//
// A Map is not safe for concurrent use. Structural changes made while
// iterating are detected on a best-effort basis and reported as
// ErrConcurrentModification.
type Map[K comparable, V comparable] struct {
	t             *table[K, V]
	defRetValue   V
	rejectZeroKey bool
}

// New returns a map able to hold expected entries before its first resize.
// Capacity is a hint, and "at least".
func New[K comparable, V comparable](expected int, opts ...Option) *Map[K, V] {
	return NewWithStrategy[K, V](expected, Natural[K](), opts...)
}

// NewWithStrategy is like New, but hashes and compares keys with strategy.
func NewWithStrategy[K comparable, V comparable](expected int, strategy Strategy[K], opts ...Option) *Map[K, V] {
	o := buildOptions(opts)
	return &Map[K, V]{
		t:             newTable[K, V](expected, strategy, o),
		rejectZeroKey: o.rejectZeroKey,
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.t.size
}

func (m *Map[K, V]) IsEmpty() bool {
	return m.t.size == 0
}

// DefaultReturnValue is the value returned by Get, Put and Remove when the
// key is absent. It is the zero value of V unless changed.
func (m *Map[K, V]) DefaultReturnValue() V {
	return m.defRetValue
}

func (m *Map[K, V]) SetDefaultReturnValue(v V) {
	m.defRetValue = v
}

// Get returns the value for k. If k is absent it returns the default return
// value and false.
func (m *Map[K, V]) Get(k K) (V, bool) {
	pos := m.t.find(k)
	if pos < 0 {
		return m.defRetValue, false
	}
	return m.t.value[pos], true
}

// GetOrDefault returns the value for k, or def if k is absent.
func (m *Map[K, V]) GetOrDefault(k K, def V) V {
	pos := m.t.find(k)
	if pos < 0 {
		return def
	}
	return m.t.value[pos]
}

func (m *Map[K, V]) ContainsKey(k K) bool {
	return m.t.find(k) >= 0
}

// ContainsValue reports whether some key maps to v. It scans the table.
func (m *Map[K, V]) ContainsValue(v V) bool {
	t := m.t
	if t.containsNullKey && t.value[t.n] == v {
		return true
	}
	for i := t.n - 1; i >= 0; i-- {
		if !isZero(t.key[i]) && t.value[i] == v {
			return true
		}
	}
	return false
}

func (m *Map[K, V]) checkKey(k K) {
	checkZeroKey(m.rejectZeroKey, k)
}

func checkZeroKey[K comparable](reject bool, k K) {
	if reject && isZero(k) {
		panic(errors.Wrapf(ErrInvalidArgument, "zero key %v not permitted", k))
	}
}

// Put sets k to v. It returns the previous value and true if k was present,
// otherwise the default return value and false.
func (m *Map[K, V]) Put(k K, v V) (V, bool) {
	m.checkKey(k)
	prev, found := m.t.insert(k, v)
	if !found {
		return m.defRetValue, false
	}
	return prev, true
}

// Set sets k to v.
func (m *Map[K, V]) Set(k K, v V) {
	m.checkKey(k)
	m.t.insert(k, v)
}

// PutAll copies every entry of other into m. If m rejects the zero key and
// other holds it, PutAll panics before copying anything.
func (m *Map[K, V]) PutAll(other *Map[K, V]) {
	if m == other {
		return
	}
	if other.t.containsNullKey {
		m.checkKey(other.t.key[other.t.n])
	}
	if other.Len() > m.Len() {
		m.t.grow(other.Len())
	}
	other.t.each(func(k K, v V) bool {
		m.Set(k, v)
		return true
	})
}

// PutIfAbsent sets k to v only if k is absent. It returns the value now
// associated with k and whether it was already present.
func (m *Map[K, V]) PutIfAbsent(k K, v V) (V, bool) {
	m.checkKey(k)
	pos := m.t.find(k)
	if pos >= 0 {
		return m.t.value[pos], true
	}
	m.t.insertAt(-pos-1, k, v)
	return v, false
}

// Replace sets k to v only if k is present, returning the previous value.
func (m *Map[K, V]) Replace(k K, v V) (V, bool) {
	pos := m.t.find(k)
	if pos < 0 {
		return m.defRetValue, false
	}
	prev := m.t.value[pos]
	m.t.value[pos] = v
	return prev, true
}

// ComputeIfAbsent returns the value for k, calling f to create and store it
// if k is absent. f must not modify m.
func (m *Map[K, V]) ComputeIfAbsent(k K, f func(k K) V) V {
	m.checkKey(k)
	pos := m.t.find(k)
	if pos >= 0 {
		return m.t.value[pos]
	}
	mc := m.t.modCount
	v := f(k)
	if m.t.modCount != mc {
		panic(errors.Wrap(ErrConcurrentModification, "ComputeIfAbsent function modified the map"))
	}
	m.t.insertAt(-pos-1, k, v)
	return v
}

// Merge stores v under k if k is absent. Otherwise it stores f(old, v);
// if f returns false, k is removed instead. Merge returns the new value and
// whether k is present afterwards. f must not modify m.
func (m *Map[K, V]) Merge(k K, v V, f func(old, v V) (V, bool)) (V, bool) {
	m.checkKey(k)
	pos := m.t.find(k)
	if pos < 0 {
		m.t.insertAt(-pos-1, k, v)
		return v, true
	}
	mc := m.t.modCount
	nv, keep := f(m.t.value[pos], v)
	if m.t.modCount != mc {
		panic(errors.Wrap(ErrConcurrentModification, "Merge function modified the map"))
	}
	if !keep {
		m.t.removeAt(pos)
		return m.defRetValue, false
	}
	m.t.value[pos] = nv
	return nv, true
}

// Remove deletes k. It returns the removed value and true, or the default
// return value and false if k was absent.
func (m *Map[K, V]) Remove(k K) (V, bool) {
	prev, found := m.t.remove(k)
	if !found {
		return m.defRetValue, false
	}
	return prev, true
}

// Delete deletes k if present.
func (m *Map[K, V]) Delete(k K) {
	m.t.remove(k)
}

// Clear removes all entries. The capacity is unchanged.
func (m *Map[K, V]) Clear() {
	m.t.clear()
}

// Grow makes room for at least expected entries without further resizing.
func (m *Map[K, V]) Grow(expected int) {
	m.t.grow(expected)
}

// Trim shrinks the table to the smallest capacity that holds the current
// entries. Removal never shrinks a table on its own.
func (m *Map[K, V]) Trim() bool {
	return m.t.trim(0)
}

// TrimTo is like Trim, but keeps room for at least expected entries.
func (m *Map[K, V]) TrimTo(expected int) bool {
	return m.t.trim(expected)
}

// Clone returns an independent copy of m.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{
		t:             m.t.clone(),
		defRetValue:   m.defRetValue,
		rejectZeroKey: m.rejectZeroKey,
	}
}

// Equal reports whether m and other hold the same key/value associations.
// Capacity and slot layout do not matter. Keys of other are looked up with
// m's strategy.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
	if m == other {
		return true
	}
	if other == nil || m.Len() != other.Len() {
		return false
	}
	equal := true
	other.t.each(func(k K, v V) bool {
		pos := m.t.find(k)
		if pos < 0 || m.t.value[pos] != v {
			equal = false
		}
		return equal
	})
	return equal
}

// HashCode returns the sum over all entries of the key hash xor the value
// hash, which does not depend on iteration order. Keys and values that are
// not equal to themselves, such as NaN, all contribute one fixed hash, so
// repeated calls agree even though such a map is never Equal to itself.
func (m *Map[K, V]) HashCode() uint64 {
	var h uint64
	m.t.each(func(k K, v V) bool {
		h += m.t.keyHash(k) ^ valueHash(v)
		return true
	})
	return h
}

// String formats m as {k1=v1, k2=v2} in iteration order.
func (m *Map[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	m.t.each(func(k K, v V) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v=%v", k, v)
		return true
	})
	b.WriteByte('}')
	return b.String()
}

// Range calls f sequentially for each key and value present in the map.
// If f returns false, range stops the iteration.
//
// Range panics with ErrConcurrentModification if f adds or removes keys.
// Use an Iterator to remove entries while iterating.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	m.t.each(f)
}

// All returns an iterator over key/value pairs, for use with range.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.t.each(yield)
	}
}

// Iterator returns a fail-fast iterator over the entries of m.
func (m *Map[K, V]) Iterator() *MapIterator[K, V] {
	return &MapIterator[K, V]{newTableIterator(m.t)}
}

// KeySet returns a live view of the keys of m.
func (m *Map[K, V]) KeySet() KeySet[K, V] {
	return KeySet[K, V]{m: m}
}

// Values returns a live view of the values of m.
func (m *Map[K, V]) Values() ValueCollection[K, V] {
	return ValueCollection[K, V]{m: m}
}

// EntrySet returns a live view of the entries of m.
func (m *Map[K, V]) EntrySet() EntrySet[K, V] {
	return EntrySet[K, V]{m: m}
}
