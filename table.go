package openhash

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// table is the open addressing engine shared by Map and Set.
//
// Keys and values live in parallel slices of length n+1. Slots [0, n) are
// probed linearly starting at mix(hash(k)) & mask. The zero value of K
// marks an empty slot, so the zero key itself cannot live in the probed
// part of the table; it is kept in slot n and tracked by containsNullKey.
//
// There are no tombstones. Removal closes the gap by shifting later
// entries of the same run backwards (see shiftKeys), so a run of non-empty
// slots always reaches every key whose home slot lies inside it.
type table[K comparable, V any] struct {
	key   []K
	value []V

	n       int // capacity of the probed part, always a power of 2
	mask    int
	maxFill int // growth threshold for entries in [0, n)
	size    int // including the zero key

	containsNullKey bool

	f        float64
	minN     int // capacity at creation, compaction never goes below it
	strategy Strategy[K]

	// modCount counts structural modifications. Iterators compare against it.
	modCount int

	logger *zap.Logger
}

func newTable[K comparable, V any](expected int, strategy Strategy[K], o options) *table[K, V] {
	checkExpected(expected)
	if strategy == nil {
		panic(errors.Wrap(ErrInvalidArgument, "nil strategy"))
	}
	n := tableSize(expected, o.loadFactor)
	t := &table[K, V]{
		f:        o.loadFactor,
		minN:     n,
		strategy: strategy,
		logger:   o.logger,
	}
	t.alloc(n)
	if debug {
		fmt.Println("new: underlying table length", n)
	}
	return t
}

func (t *table[K, V]) alloc(n int) {
	t.n = n
	t.mask = n - 1
	t.maxFill = maxFill(n, t.f)
	t.key = make([]K, n+1)
	t.value = make([]V, n+1)
}

// occupied is the number of entries in [0, n).
func (t *table[K, V]) occupied() int {
	if t.containsNullKey {
		return t.size - 1
	}
	return t.size
}

func (t *table[K, V]) home(k K) int {
	return int(mix(t.strategy.Hash(k))) & t.mask
}

// keyHash is the contribution of k to HashCode. The zero key never reaches
// the strategy and contributes 0.
func (t *table[K, V]) keyHash(k K) uint64 {
	if isZero(k) {
		return 0
	}
	return t.strategy.Hash(k)
}

func isZero[K comparable](k K) bool {
	var zero K
	return k == zero
}

// find returns the slot holding k, or -(p+1) where p is the slot an insert
// of k would use.
func (t *table[K, V]) find(k K) int {
	if isZero(k) {
		if t.containsNullKey {
			return t.n
		}
		return -(t.n + 1)
	}
	pos := t.home(k)
	for {
		curr := t.key[pos]
		if isZero(curr) {
			return -(pos + 1)
		}
		if t.strategy.Equal(k, curr) {
			return pos
		}
		pos = (pos + 1) & t.mask
	}
}

// insert sets k to v. It returns the previous value and true if k was
// already present.
func (t *table[K, V]) insert(k K, v V) (prev V, found bool) {
	pos := t.find(k)
	if pos >= 0 {
		prev = t.value[pos]
		t.value[pos] = v
		return prev, true
	}
	t.insertAt(-pos-1, k, v)
	return prev, false
}

// insertAt stores a key known to be absent. pos is the insertion point
// reported by find, which is stale if a rehash happens first.
func (t *table[K, V]) insertAt(pos int, k K, v V) {
	if pos == t.n {
		t.containsNullKey = true
	} else if t.occupied()+1 > t.maxFill {
		// Grow before writing, so a failed allocation leaves the table untouched.
		t.rehash(tableSize(t.size+1, t.f))
		pos = t.home(k)
		for !isZero(t.key[pos]) {
			pos = (pos + 1) & t.mask
		}
	}
	t.key[pos] = k
	t.value[pos] = v
	t.size++
	t.modCount++
	if debug {
		t.mustValidate()
	}
}

// remove deletes k, returning its value and true if it was present.
func (t *table[K, V]) remove(k K) (prev V, found bool) {
	pos := t.find(k)
	if pos < 0 {
		return prev, false
	}
	return t.removeAt(pos), true
}

func (t *table[K, V]) removeAt(pos int) V {
	v := t.value[pos]
	if pos == t.n {
		t.removeNullKey()
		return v
	}
	t.size--
	t.modCount++
	t.shiftKeys(pos, nil)
	if debug {
		t.mustValidate()
	}
	return v
}

func (t *table[K, V]) removeNullKey() {
	var zeroK K
	var zeroV V
	t.containsNullKey = false
	t.key[t.n] = zeroK
	t.value[t.n] = zeroV
	t.size--
	t.modCount++
}

// shiftKeys empties slot pos while keeping every key of the run that
// follows it reachable from its home slot.
//
// Walking forward from the hole at last, an entry at pos may move into last
// unless its home slot lies in the circular interval (last, pos]; in that
// case moving it before its home would make it unreachable. Each move opens
// a new hole at the old position, and the walk stops at the first empty
// slot.
//
// When moved is non-nil it is told about every entry that changes slot.
// An iterator uses it to follow entries that a removal carries from the low
// end of the table past the end of the run (from < to), into slots its
// sweep has already passed.
func (t *table[K, V]) shiftKeys(pos int, moved func(from, to int)) {
	var zeroK K
	var zeroV V
	for {
		last := pos
		pos = (last + 1) & t.mask
		var curr K
		for {
			curr = t.key[pos]
			if isZero(curr) {
				t.key[last] = zeroK
				t.value[last] = zeroV
				return
			}
			slot := t.home(curr)
			if last <= pos {
				if last >= slot || slot > pos {
					break
				}
			} else if last >= slot && slot > pos {
				break
			}
			pos = (pos + 1) & t.mask
		}
		t.key[last] = curr
		t.value[last] = t.value[pos]
		if moved != nil {
			moved(pos, last)
		}
	}
}

// rehash moves every entry into a fresh table of newN slots.
// Positions from the old mask mean nothing under the new one, so each entry
// is placed again by probing from its home slot.
func (t *table[K, V]) rehash(newN int) {
	oldKey, oldValue, oldN := t.key, t.value, t.n
	newMask := newN - 1
	newKey := make([]K, newN+1)
	newValue := make([]V, newN+1)

	i := oldN
	for j := t.occupied(); j > 0; j-- {
		i--
		for isZero(oldKey[i]) {
			i--
		}
		pos := int(mix(t.strategy.Hash(oldKey[i]))) & newMask
		for !isZero(newKey[pos]) {
			pos = (pos + 1) & newMask
		}
		newKey[pos] = oldKey[i]
		newValue[pos] = oldValue[i]
	}
	newKey[newN] = oldKey[oldN]
	newValue[newN] = oldValue[oldN]

	t.n = newN
	t.mask = newMask
	t.maxFill = maxFill(newN, t.f)
	t.key = newKey
	t.value = newValue

	t.logger.Debug("openhash: rehash",
		zap.Int("from", oldN),
		zap.Int("to", newN),
		zap.Int("size", t.size))
}

// grow makes room for expected entries without further rehashing.
func (t *table[K, V]) grow(expected int) {
	checkExpected(expected)
	needed := tableSize(expected, t.f)
	if needed <= t.n {
		return
	}
	t.logger.Debug("openhash: grow", zap.Int("expected", expected))
	t.rehash(needed)
	t.modCount++
}

// trim rehashes into the smallest table that holds max(expected, size)
// entries. It reports false only if the table needed to shrink and could not.
func (t *table[K, V]) trim(expected int) bool {
	checkExpected(expected)
	if expected < t.size {
		expected = t.size
	}
	l := tableSize(expected, t.f)
	if l < t.minN {
		l = t.minN
	}
	if l >= t.n || t.occupied() > maxFill(l, t.f) {
		return true
	}
	t.logger.Debug("openhash: trim", zap.Int("expected", expected))
	t.rehash(l)
	t.modCount++
	return true
}

func (t *table[K, V]) clear() {
	if t.size == 0 {
		return
	}
	clear(t.key)
	clear(t.value)
	t.size = 0
	t.containsNullKey = false
	t.modCount++
}

func (t *table[K, V]) clone() *table[K, V] {
	c := *t
	c.key = append([]K(nil), t.key...)
	c.value = append([]V(nil), t.value...)
	c.modCount = 0
	return &c
}

// each calls f for every entry in iteration order: the zero key first, then
// slots from n-1 down to 0. It panics with ErrConcurrentModification if f
// changes the table structurally.
func (t *table[K, V]) each(f func(k K, v V) bool) {
	expected := t.modCount
	check := func() {
		if t.modCount != expected {
			panic(errors.Wrap(ErrConcurrentModification, "table modified during Range"))
		}
	}
	if t.containsNullKey {
		if !f(t.key[t.n], t.value[t.n]) {
			return
		}
		check()
	}
	for i := t.n - 1; i >= 0; i-- {
		if isZero(t.key[i]) {
			continue
		}
		if !f(t.key[i], t.value[i]) {
			return
		}
		check()
	}
}

// validate checks the table invariants. It is used by tests, and on every
// mutation when debug is set.
func (t *table[K, V]) validate() error {
	if t.n&(t.n-1) != 0 || t.n < minCapacity {
		return errors.Newf("capacity %d is not a power of 2 >= %d", t.n, minCapacity)
	}
	if t.mask != t.n-1 {
		return errors.Newf("mask %d does not match capacity %d", t.mask, t.n)
	}
	if len(t.key) != t.n+1 || len(t.value) != t.n+1 {
		return errors.Newf("slot slices have len %d/%d, want %d", len(t.key), len(t.value), t.n+1)
	}
	if t.occupied() > t.maxFill {
		return errors.Newf("%d occupied slots exceed growth threshold %d", t.occupied(), t.maxFill)
	}
	count := 0
	for i := 0; i < t.n; i++ {
		k := t.key[i]
		if isZero(k) {
			continue
		}
		count++
		// Every slot from home to i must be non-empty.
		for p := t.home(k); p != i; p = (p + 1) & t.mask {
			if isZero(t.key[p]) {
				return errors.Newf("key %v at slot %d unreachable from home %d: slot %d is empty", k, i, t.home(k), p)
			}
		}
	}
	if count != t.occupied() {
		return errors.Newf("counted %d occupied slots, want %d", count, t.occupied())
	}
	return nil
}

func (t *table[K, V]) mustValidate() {
	if err := t.validate(); err != nil {
		panic(err)
	}
}

const debug = false
