package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// countLeaves walks a DefaultValue tree down to its DVZero leaves,
// the way a code generator reading this shape back would.
func countLeaves(v DefaultValue) int {
	if len(v.Elems) == 0 {
		return 1
	}
	n := 0
	for _, e := range v.Elems {
		n += countLeaves(e)
	}
	return n
}

func TestDefaultValueFixedArraySmallSizeIsOneTupleOfEight(t *testing.T) {
	def, safe := Default(NewFixedArray(Uint, 3))
	require.True(t, safe)
	require.Equal(t, DVTuple, def.Kind)
	require.Len(t, def.Elems, 8)
	for _, e := range def.Elems {
		require.Equal(t, DVZero, e.Kind)
	}
}

func TestDefaultValueFixedArrayGrowsNestedEightAryTree(t *testing.T) {
	// 9 slots need more than one level of 8-wide tuples: the original
	// compiler keeps wrapping in groups of 8 until chunk_size*8 >= N.
	def, safe := Default(NewFixedArray(Uint, 9))
	require.True(t, safe)
	require.Equal(t, DVTuple, def.Kind)
	require.Len(t, def.Elems, 8)
	require.Equal(t, DVTuple, def.Elems[0].Kind, "each branch should itself be an 8-wide tuple once N exceeds 8")
	require.GreaterOrEqual(t, countLeaves(def), 9)
}

func TestDefaultValueFixedArrayPropagatesElementSafety(t *testing.T) {
	_, safe := Default(NewFixedArray(NewMap(Uint, Bool), 9))
	require.False(t, safe)
}

func TestDefaultValueFixedArrayExactBoundary(t *testing.T) {
	// At exactly 8 slots, chunk_size*8 (=8) is not < 8, so no extra
	// wrapping happens: a single tuple of 8 leaves is already enough.
	def, _ := Default(NewFixedArray(Bool, 8))
	require.Equal(t, DVTuple, def.Kind)
	require.Len(t, def.Elems, 8)
	for _, e := range def.Elems {
		require.NotEqual(t, DVTuple, e.Kind)
	}
}
