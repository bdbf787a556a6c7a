package openhash

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestSet_AddRemove(t *testing.T) {
	tests := []struct {
		name   string
		add    []Key
		remove []Key
		want   []Key
	}{
		{"empty", nil, nil, nil},
		{"duplicates", []Key{1, 1, 2, 2, 2}, nil, []Key{1, 2}},
		{"zero key", []Key{0, 5}, []Key{5}, []Key{0}},
		{"remove absent", []Key{1, 2}, []Key{3}, []Key{1, 2}},
		{"with grows", list(0, 200, 1), list(0, 200, 2), list(1, 200, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet[Key](0)
			for _, k := range tt.add {
				s.Add(k)
			}
			for _, k := range tt.remove {
				s.Remove(k)
			}
			got := s.ToSlice()
			sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Set contents mismatch (-want +got):\n%s", diff)
			}
			require.Equal(t, len(tt.want), s.Len())
			require.Equal(t, len(tt.want) == 0, s.IsEmpty())
			require.NoError(t, s.t.validate())
		})
	}
}

func TestSet_Bulk(t *testing.T) {
	s := NewSet[Key](0)
	require.True(t, s.Add(7))
	require.False(t, s.Add(7))

	require.True(t, s.AddAll(list(0, 50, 1)...))
	require.False(t, s.AddAll(1, 2, 3))
	require.Equal(t, 50, s.Len())

	require.True(t, s.RemoveAll(list(0, 50, 5)...))
	require.False(t, s.RemoveAll(0, 5, 1000))
	require.Equal(t, 40, s.Len())

	require.True(t, s.RetainAll(SetFrom(list(0, 20, 1)...)))
	require.False(t, s.RetainAll(SetFrom(list(0, 20, 1)...)))
	require.Equal(t, 16, s.Len())
	for _, k := range list(0, 20, 1) {
		require.Equal(t, k%5 != 0, s.Contains(k), "key %d", k)
	}
	require.NoError(t, s.t.validate())
}

func TestSet_EqualHashCode(t *testing.T) {
	a := SetFrom[string]("x", "y", "z", "")
	b := NewSet[string](1000, WithLoadFactor(FastLoadFactor))
	for _, k := range []string{"", "z", "y", "x"} {
		b.Add(k)
	}
	require.True(t, a.Equal(b))
	require.Equal(t, a.HashCode(), b.HashCode())

	c := a.Clone()
	c.Remove("y")
	require.False(t, a.Equal(c))
	require.True(t, a.Contains("y"))
	require.False(t, a.Equal(nil))

	require.Equal(t, "[]", NewSet[int](0).String())
	require.Equal(t, "[3]", SetFrom(3).String())
}

func TestSet_ZeroKey(t *testing.T) {
	s := NewSet[Key](0, WithoutZeroKey())
	requirePanicIs(t, ErrInvalidArgument, func() { s.Add(0) })
	require.False(t, s.Contains(0))
	require.False(t, s.Remove(0))

	// AddAll rejects the whole batch, however late the zero key comes.
	s.AddAll(1, 2)
	n, mc := s.t.n, s.t.modCount
	requirePanicIs(t, ErrInvalidArgument, func() { s.AddAll(append(list(3, 100, 1), 0)...) })
	require.Equal(t, 2, s.Len())
	require.Equal(t, n, s.t.n, "no grow before the rejected key")
	require.Equal(t, mc, s.t.modCount)
	require.False(t, s.Contains(3))
	require.True(t, s.AddAll(list(3, 100, 1)...))
	require.Equal(t, 99, s.Len())

	plain := SetFrom[Key](0)
	require.True(t, plain.Contains(0))
	require.Equal(t, uint64(0), plain.HashCode())
}

func TestSet_ClearTrimGrow(t *testing.T) {
	s := NewSet[Key](0)
	s.Grow(10_000)
	big := s.t.n
	require.GreaterOrEqual(t, s.t.maxFill, 10_000)

	s.AddAll(1, 2, 3)
	require.True(t, s.Trim())
	require.Less(t, s.t.n, big)
	require.True(t, s.TrimTo(100))
	require.GreaterOrEqual(t, s.t.maxFill, 3)

	s.Clear()
	require.True(t, s.IsEmpty())
	require.False(t, s.Contains(1))
}

func TestSet_Random(t *testing.T) {
	for rep := 0; rep < *repFlag/10+1; rep++ {
		t.Run(fmt.Sprint(rep), func(t *testing.T) {
			r := rand.New(rand.NewSource(int64(rep)))
			s := NewSetWithStrategy[Key](r.Intn(100), lowBitsHash)
			want := newKeySet(nil)
			for i := 0; i < 2000; i++ {
				k := Key(r.Intn(300))
				if r.Intn(3) == 0 {
					require.Equal(t, want.contains(k), s.Remove(k))
					want.remove(k)
				} else {
					require.Equal(t, !want.contains(k), s.Add(k))
					want.add(k)
				}
			}
			require.Equal(t, want.len(), s.Len())
			got := s.ToSlice()
			sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
			if diff := cmp.Diff(want.elems(), got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Set contents mismatch (-want +got):\n%s", diff)
			}
			require.NoError(t, s.t.validate())
		})
	}
}
