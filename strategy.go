package openhash

import (
	"hash/maphash"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// Strategy supplies the hashing and equivalence used for keys.
// Hash must be consistent with Equal: keys that are Equal hash identically.
//
// The zero value of the key type never reaches a Strategy; it is kept in a
// dedicated slot outside the probed table. A Strategy must therefore treat
// the zero value as equal only to itself.
type Strategy[K any] interface {
	Hash(k K) uint64
	Equal(a, b K) bool
}

// StrategyFunc adapts a pair of functions to a Strategy.
type StrategyFunc[K any] struct {
	HashFunc  func(k K) uint64
	EqualFunc func(a, b K) bool
}

func (s StrategyFunc[K]) Hash(k K) uint64   { return s.HashFunc(k) }
func (s StrategyFunc[K]) Equal(a, b K) bool { return s.EqualFunc(a, b) }

// seed is shared by every natural strategy in the process, so equal
// containers report equal hash codes.
var seed = maphash.MakeSeed()

// nanHash is the hash of every value that is not equal to itself.
// maphash.Comparable hashes NaN randomly on each call.
const nanHash = 0x7ff8_0000_0000_0001

type natural[K comparable] struct{}

func (natural[K]) Hash(k K) uint64 {
	if k != k {
		return nanHash
	}
	return maphash.Comparable(seed, k)
}

func (natural[K]) Equal(a, b K) bool { return a == b }

// Natural returns the strategy based on Go equality (==).
//
// As with Go maps, a floating point NaN key is never equal to itself: each
// Set of a NaN adds a new entry, reachable only by iteration. Every key that
// is not equal to itself, including a struct or array holding a NaN, hashes
// to one fixed value, so such keys share a home slot and HashCode stays
// deterministic.
func Natural[K comparable]() Strategy[K] {
	return natural[K]{}
}

type identity[T any] struct{}

func (identity[T]) Hash(p *T) uint64   { return maphash.Comparable(seed, p) }
func (identity[T]) Equal(a, b *T) bool { return a == b }

// Identity returns a strategy comparing pointer keys by address.
func Identity[T any]() Strategy[*T] {
	return identity[T]{}
}

type integers[K constraints.Integer] struct{}

func (integers[K]) Hash(k K) uint64   { return uint64(k) }
func (integers[K]) Equal(a, b K) bool { return a == b }

// Integers returns a strategy that hashes an integer key to its own bits.
// The table mixes every hash before use, so this is cheap and still well
// distributed.
func Integers[K constraints.Integer]() Strategy[K] {
	return integers[K]{}
}

type stringsStrategy struct{}

func (stringsStrategy) Hash(k string) uint64   { return xxhash.Sum64String(k) }
func (stringsStrategy) Equal(a, b string) bool { return a == b }

// Strings returns a strategy for string keys based on xxhash.
func Strings() Strategy[string] {
	return stringsStrategy{}
}

type foldedStrings struct{}

func (foldedStrings) Hash(k string) uint64 { return xxhash.Sum64String(strings.ToLower(k)) }
func (foldedStrings) Equal(a, b string) bool {
	if a == b {
		return true
	}
	return strings.ToLower(a) == strings.ToLower(b)
}

// FoldedStrings returns a case-insensitive strategy for string keys.
func FoldedStrings() Strategy[string] {
	return foldedStrings{}
}

// valueHash is the per-value contribution to HashCode.
func valueHash[V comparable](v V) uint64 {
	if v != v {
		return nanHash
	}
	return maphash.Comparable(seed, v)
}
