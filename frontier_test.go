package spine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDominates(t *testing.T) {
	le := TotalOrder[int]()

	require.True(t, dominates(nil, nil, le), "empty a is trivially dominated")
	require.True(t, dominates(nil, []int{5}, le))
	require.False(t, dominates([]int{5}, nil, le), "non-empty a is never dominated by empty b")
	require.True(t, dominates([]int{3}, []int{1, 2}, le), "2 <= 3")
	require.False(t, dominates([]int{1}, []int{2, 3}, le), "nothing in b is <= 1")
}

func TestEqualAntichains(t *testing.T) {
	le := TotalOrder[int]()

	require.True(t, equalAntichains([]int{1, 2}, []int{2, 1}, le), "order within the antichain must not matter")
	require.False(t, equalAntichains([]int{1}, []int{2}, le))
	require.True(t, equalAntichains[int](nil, nil, le))
}

func TestCloneFrontier(t *testing.T) {
	require.Nil(t, cloneFrontier[int](nil))

	src := []int{1, 2, 3}
	got := cloneFrontier(src)
	require.Equal(t, src, got)

	got[0] = 99
	require.Equal(t, 1, src[0], "clone must not alias the source slice")
}
