package openhash

import (
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultLoadFactor is the load factor used unless WithLoadFactor is given.
	DefaultLoadFactor = 0.75
	// FastLoadFactor trades memory for shorter probe runs.
	FastLoadFactor = 0.5
	// FasterLoadFactor trades even more memory for even shorter probe runs.
	FasterLoadFactor = 0.25

	// DefaultExpected is the expected size used by the zero-argument constructors.
	DefaultExpected = 16

	// minCapacity is the smallest table we ever allocate.
	minCapacity = 16
	// maxCapacity keeps n+1 slots addressable by an int.
	maxCapacity = 1 << (bits.UintSize - 2)
)

// golden ratio, 2^64 / phi
const phi64 = 0x9E3779B97F4A7C15

// mix scrambles a strategy hash so that the low bits used for indexing
// depend on all of its bits. Identity-like hashes of small integers would
// otherwise land in long runs of adjacent slots.
func mix(x uint64) uint64 {
	h := x * phi64
	h ^= h >> 32
	return h ^ (h >> 16)
}

func nextPowerOfTwo(x int) int {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(x-1))
}

// maxFill is the growth threshold for a table of n slots. At least one slot
// always stays empty so that probing terminates.
func maxFill(n int, f float64) int {
	fill := int(float64(n) * f)
	if fill > n-1 {
		fill = n - 1
	}
	return fill
}

// tableSize returns the power-of-two capacity needed to hold expected
// entries without exceeding load factor f.
// The result is roughly 1/f times larger than expected, rounded up
// to a power of 2, which allows mask based indexing.
func tableSize(expected int, f float64) int {
	want := math.Ceil(float64(expected) / f)
	if want > maxCapacity {
		panic(errors.Wrapf(ErrInvalidArgument, "%d elements exceed the maximum table capacity", expected))
	}
	n := nextPowerOfTwo(int(want))
	if n < minCapacity {
		n = minCapacity
	}
	// float rounding can leave maxFill one short of expected
	for maxFill(n, f) < expected {
		if n >= maxCapacity {
			panic(errors.Wrapf(ErrInvalidArgument, "%d elements exceed the maximum table capacity", expected))
		}
		n <<= 1
	}
	// sanity check power of 2
	if n&(n-1) != 0 || n == 0 {
		panic("impossible")
	}
	return n
}

func checkLoadFactor(f float64) {
	if !(f > 0 && f < 1) {
		panic(errors.Wrapf(ErrInvalidArgument, "load factor %v must be in (0, 1)", f))
	}
}

func checkExpected(expected int) {
	if expected < 0 {
		panic(errors.Wrapf(ErrInvalidArgument, "expected size %d must be non-negative", expected))
	}
}
