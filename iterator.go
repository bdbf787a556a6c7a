package openhash

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Iterator is a fail-fast iterator over a container or one of its views.
//
// Next returns ErrNoSuchElement once HasNext is false. Any structural change
// to the container that is not made through this iterator's Remove makes the
// next call to Next or Remove return ErrConcurrentModification.
type Iterator[T any] interface {
	HasNext() bool
	Next() (T, error)
	// Remove deletes the element most recently returned by Next.
	Remove() error
}

// Entry is a key/value pair as seen by an entry iterator. It is a copy; use
// MapIterator.SetValue to write a value back.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// fromWrapped marks that the current element came from the wrapped list
// rather than from the positional sweep.
const fromWrapped = math.MinInt

// tableIterator sweeps the zero key slot first, then slots n-1 down to 0.
//
// Removing through the iterator shifts later entries of the run backwards.
// Shifts never move an unvisited entry into unvisited territory except when
// the run wraps around the end of the table: an entry from a low slot can
// land in the high slot just vacated, which the sweep already passed.
// The iterator records the slots of those entries in wrapped, keeps them
// current as later removals shift them again, and returns them one by one
// once the sweep reaches slot 0. Wrapped entries are never looked up by
// key: a key that is not equal to itself, such as a NaN, can't be found.
type tableIterator[K comparable, V any] struct {
	t *table[K, V]

	pos  int // next slot to examine is pos-1; negative indexes wrapped
	last int // slot of the current element, -1 if none, fromWrapped
	cur  int // physical slot of the current element
	c    int // elements left to return

	mustReturnNullKey bool
	wrapped           []int // slots, -1 once removed

	expectedModCount int
}

func newTableIterator[K comparable, V any](t *table[K, V]) tableIterator[K, V] {
	return tableIterator[K, V]{
		t:                 t,
		pos:               t.n,
		last:              -1,
		cur:               -1,
		c:                 t.size,
		mustReturnNullKey: t.containsNullKey,
		expectedModCount:  t.modCount,
	}
}

func (it *tableIterator[K, V]) checkMod(op string) error {
	if it.t.modCount != it.expectedModCount {
		return errors.Wrapf(ErrConcurrentModification, "iterator %s", op)
	}
	return nil
}

func (it *tableIterator[K, V]) HasNext() bool {
	return it.c != 0
}

// nextSlot advances and returns the slot of the new current element.
func (it *tableIterator[K, V]) nextSlot() (int, error) {
	if err := it.checkMod("next"); err != nil {
		return -1, err
	}
	if it.c == 0 {
		return -1, ErrNoSuchElement
	}
	t := it.t
	it.c--
	if it.mustReturnNullKey {
		it.mustReturnNullKey = false
		it.last, it.cur = t.n, t.n
		return t.n, nil
	}
	for {
		it.pos--
		if it.pos < 0 {
			// Only wrapped entries are left.
			p := it.wrapped[-it.pos-1]
			it.last, it.cur = fromWrapped, p
			return p, nil
		}
		if !isZero(t.key[it.pos]) {
			it.last, it.cur = it.pos, it.pos
			return it.pos, nil
		}
	}
}

func (it *tableIterator[K, V]) Remove() error {
	if it.last == -1 {
		return errors.Wrap(ErrIllegalState, "remove without a current element")
	}
	if err := it.checkMod("remove"); err != nil {
		return err
	}
	t := it.t
	if it.last == t.n {
		t.removeNullKey()
	} else {
		if it.pos < 0 {
			it.wrapped[-it.pos-1] = -1
		}
		t.size--
		t.modCount++
		t.shiftKeys(it.cur, it.moved)
	}
	it.last, it.cur = -1, -1
	it.expectedModCount = t.modCount
	return nil
}

// moved follows an entry shifted by a removal made through the iterator.
// Once the sweep is over nothing new can wrap, but entries still waiting
// in wrapped may be shifted again.
func (it *tableIterator[K, V]) moved(from, to int) {
	for i, p := range it.wrapped {
		if p == from {
			it.wrapped[i] = to
			return
		}
	}
	if it.pos >= 0 && from < to {
		it.wrapped = append(it.wrapped, to)
	}
}

func (it *tableIterator[K, V]) setValue(v V) error {
	if it.last == -1 {
		return errors.Wrap(ErrIllegalState, "set value without a current element")
	}
	if err := it.checkMod("set value"); err != nil {
		return err
	}
	it.t.value[it.cur] = v
	return nil
}

// MapIterator iterates over the entries of a Map.
type MapIterator[K comparable, V comparable] struct {
	tableIterator[K, V]
}

// Next returns the next key and value.
func (it *MapIterator[K, V]) Next() (k K, v V, err error) {
	p, err := it.nextSlot()
	if err != nil {
		return k, v, err
	}
	return it.t.key[p], it.t.value[p], nil
}

// SetValue replaces the value of the entry most recently returned by Next.
// It is not a structural change.
func (it *MapIterator[K, V]) SetValue(v V) error {
	return it.setValue(v)
}

type keyIterator[K comparable, V any] struct {
	tableIterator[K, V]
}

func (it *keyIterator[K, V]) Next() (k K, err error) {
	p, err := it.nextSlot()
	if err != nil {
		return k, err
	}
	return it.t.key[p], nil
}

type valueIterator[K comparable, V any] struct {
	tableIterator[K, V]
}

func (it *valueIterator[K, V]) Next() (v V, err error) {
	p, err := it.nextSlot()
	if err != nil {
		return v, err
	}
	return it.t.value[p], nil
}

type entryIterator[K comparable, V any] struct {
	tableIterator[K, V]
}

func (it *entryIterator[K, V]) Next() (e Entry[K, V], err error) {
	p, err := it.nextSlot()
	if err != nil {
		return e, err
	}
	return Entry[K, V]{Key: it.t.key[p], Value: it.t.value[p]}, nil
}
