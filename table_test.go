package openhash

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// phiInverse is the multiplicative inverse of phi64 mod 2^64.
var phiInverse = func() uint64 {
	inv := uint64(phi64)
	for i := 0; i < 6; i++ {
		inv *= 2 - phi64*inv
	}
	return inv
}()

// unmix inverts mix, so a test strategy can choose the home slot of a key.
func unmix(h uint64) uint64 {
	h ^= h>>16 ^ h>>32 ^ h>>48
	h ^= h >> 32
	return h * phiInverse
}

// slotKey is a key whose home slot is chosen by the test.
type slotKey struct {
	id   int
	home int
}

var slotStrategy = StrategyFunc[slotKey]{
	HashFunc:  func(k slotKey) uint64 { return unmix(uint64(k.home)) },
	EqualFunc: func(a, b slotKey) bool { return a == b },
}

func newSlotTable(expected int) *table[slotKey, int] {
	return newTable[slotKey, int](expected, slotStrategy, buildOptions(nil))
}

// layout returns the key id stored in each slot of [0, n), 0 for empty.
func layout(t *table[slotKey, int]) []int {
	ids := make([]int, t.n)
	for i := 0; i < t.n; i++ {
		ids[i] = t.key[i].id
	}
	return ids
}

func Test_mix_unmix(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		x := r.Uint64()
		if got := mix(unmix(x)); got != x {
			t.Fatalf("mix(unmix(0x%X)) = 0x%X", x, got)
		}
	}
}

func Test_tableSize(t *testing.T) {
	tests := []struct {
		expected int
		f        float64
		want     int
	}{
		{0, 0.75, 16},
		{1, 0.75, 16},
		{12, 0.75, 16},
		{13, 0.75, 32},
		{16, 0.75, 32},
		{100, 0.5, 256},
		{1000, 0.75, 2048},
		{3, 0.1, 32},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d at %v", tt.expected, tt.f), func(t *testing.T) {
			got := tableSize(tt.expected, tt.f)
			if got != tt.want {
				t.Errorf("tableSize() = %d, want %d", got, tt.want)
			}
			if maxFill(got, tt.f) < tt.expected {
				t.Errorf("maxFill(%d, %v) = %d, below %d", got, tt.f, maxFill(got, tt.f), tt.expected)
			}
		})
	}
}

func Test_table_shiftKeys(t *testing.T) {
	k := func(id, home int) slotKey { return slotKey{id: id, home: home} }

	tests := []struct {
		name   string
		insert []slotKey
		remove slotKey
		want   []int // ids by slot, 16 slots
	}{
		{
			name:   "no collision",
			insert: []slotKey{k(1, 3), k(2, 4)},
			remove: k(1, 3),
			want:   []int{0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "collision shifts back",
			insert: []slotKey{k(1, 3), k(2, 3), k(3, 3)},
			remove: k(1, 3),
			want:   []int{0, 0, 0, 2, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "entry at its home stays",
			insert: []slotKey{k(1, 3), k(2, 4), k(3, 3)},
			remove: k(1, 3),
			// 3 was displaced to 5 and moves into the hole at 3; 2 is at home.
			want: []int{0, 0, 0, 3, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "nothing may move",
			insert: []slotKey{k(1, 3), k(2, 4), k(3, 4)},
			remove: k(1, 3),
			// 2 may not move before its home 4; 3 at 5 has home 4, also stuck.
			want: []int{0, 0, 0, 0, 2, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "wrap around the end",
			insert: []slotKey{k(1, 14), k(2, 15), k(3, 14), k(4, 0)},
			remove: k(1, 14),
			// 3 wrapped to 0 and returns to 14; 4 follows from 1 to 0.
			want: []int{4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3, 2},
		},
		{
			name:   "wrapped entry whose home is after the hole",
			insert: []slotKey{k(1, 15), k(2, 0), k(3, 15)},
			remove: k(2, 0),
			// 3 sits at 1 with home 15, which lies outside (0, 1], so it moves to 0.
			want: []int{3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := newSlotTable(0)
			require.Equal(t, 16, tab.n)
			for i, key := range tt.insert {
				tab.insert(key, i+1)
			}
			require.NoError(t, tab.validate())

			_, found := tab.remove(tt.remove)
			require.True(t, found)
			require.NoError(t, tab.validate())

			if diff := cmp.Diff(tt.want, layout(tab)); diff != "" {
				t.Errorf("layout after remove mismatch (-want +got):\n%s", diff)
			}
			for _, key := range tt.insert {
				if key == tt.remove {
					continue
				}
				if tab.find(key) < 0 {
					t.Errorf("key %v unreachable after remove", key)
				}
			}
		})
	}
}

func Test_table_rehash(t *testing.T) {
	tab := newTable[int64, int64](0, Natural[int64](), buildOptions(nil))
	startN := tab.n
	threshold := tab.maxFill
	tab.insert(0, 42) // zero key lives outside the probed table
	for i := int64(1); i <= int64(threshold)+1; i++ {
		tab.insert(i, -i)
	}
	require.Greater(t, tab.n, startN, "inserting past the threshold must grow")
	require.NoError(t, tab.validate())
	require.True(t, tab.containsNullKey)
	require.Equal(t, int64(42), tab.value[tab.n])
	for i := int64(1); i <= int64(threshold)+1; i++ {
		pos := tab.find(i)
		require.GreaterOrEqual(t, pos, 0, "key %d", i)
		require.Equal(t, -i, tab.value[pos])
	}
}

func Test_table_trimAndGrow(t *testing.T) {
	tab := newTable[int64, int64](0, Natural[int64](), buildOptions(nil))
	for i := int64(1); i <= 1000; i++ {
		tab.insert(i, i)
	}
	big := tab.n
	for i := int64(11); i <= 1000; i++ {
		tab.remove(i)
	}
	require.Equal(t, big, tab.n, "removal must not shrink")

	mc := tab.modCount
	require.True(t, tab.trim(0))
	require.Less(t, tab.n, big)
	require.Equal(t, tab.minN, tab.n)
	require.NotEqual(t, mc, tab.modCount)
	require.NoError(t, tab.validate())

	tab.grow(5000)
	require.GreaterOrEqual(t, tab.maxFill, 5000)
	require.NoError(t, tab.validate())
	for i := int64(1); i <= 10; i++ {
		require.GreaterOrEqual(t, tab.find(i), 0)
	}

	n := tab.n
	tab.grow(10)
	require.Equal(t, n, tab.n, "grow never shrinks")
}

// Test_table_randomOps runs a long random sequence of inserts and removes,
// checking the invariants along the way and the contents against a runtime map.
func Test_table_randomOps(t *testing.T) {
	strategies := []struct {
		name string
		s    Strategy[int64]
	}{
		{"natural", Natural[int64]()},
		{"identity", identityHash},
		{"low bits", lowBitsHash},
	}
	for _, st := range strategies {
		t.Run(st.name, func(t *testing.T) {
			r := rand.New(rand.NewSource(int64(len(st.name))))
			tab := newTable[int64, int64](0, st.s, buildOptions(nil))
			want := make(map[int64]int64)
			for i := 0; i < 20_000; i++ {
				k := r.Int63n(600)
				switch r.Intn(3) {
				case 0, 1:
					tab.insert(k, int64(i))
					want[k] = int64(i)
				default:
					tab.remove(k)
					delete(want, k)
				}
				if i%500 == 0 {
					require.NoError(t, tab.validate())
				}
			}
			require.NoError(t, tab.validate())
			got := make(map[int64]int64)
			tab.each(func(k, v int64) bool {
				got[k] = v
				return true
			})
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("table contents mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
