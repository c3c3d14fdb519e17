package pareto

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/tuneinsight/concrete-optimizer/parameters"
)

func TestDefaultPoolsAreSortedByIncreasingLevel(t *testing.T) {
	for _, pool := range [][]parameters.DecompositionParameters{KS_BL, BR_BL} {
		require.NotEmpty(t, pool)
		require.True(t, slices.IsSortedFunc(pool, func(a, b parameters.DecompositionParameters) bool {
			return a.Level < b.Level
		}))
		require.LessOrEqual(t, len(pool), MaxPoolSize)
	}
}

func TestDefaultPoolsUseViableBaseLogs(t *testing.T) {
	for _, pool := range [][]parameters.DecompositionParameters{KS_BL, BR_BL} {
		for _, d := range pool {
			require.GreaterOrEqual(t, d.Log2Base, uint64(1))
			require.GreaterOrEqual(t, d.Level, uint64(1))
		}
	}
}

func TestNewCustomPool(t *testing.T) {
	pool, err := NewCustomPool(32)
	require.NoError(t, err)
	require.NotEmpty(t, pool)
	require.True(t, slices.IsSortedFunc(pool, func(a, b parameters.DecompositionParameters) bool {
		return a.Level < b.Level
	}))
}

func TestNewCustomPoolRejectsZeroModulus(t *testing.T) {
	_, err := NewCustomPool(0)
	require.Error(t, err)
}
