package glwe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/concrete-optimizer/parameters"
)

func TestMinimalVarianceIncreasesWithSecurityLevel(t *testing.T) {
	g, err := parameters.NewGlweParameters(10, 1)
	require.NoError(t, err)

	v128 := MinimalVariance(g, 64, 128)
	v256 := MinimalVariance(g, 64, 256)
	require.Greater(t, v256.Variance(), v128.Variance())
}

func TestMinimalVarianceDecreasesWithDimension(t *testing.T) {
	small, err := parameters.NewGlweParameters(10, 1)
	require.NoError(t, err)
	large, err := parameters.NewGlweParameters(12, 2)
	require.NoError(t, err)

	vSmall := MinimalVariance(small, 64, 128)
	vLarge := MinimalVariance(large, 64, 128)
	require.Greater(t, vSmall.Variance(), vLarge.Variance())
}

func TestMinimalVarianceIsPositive(t *testing.T) {
	g, err := parameters.NewGlweParameters(8, 1)
	require.NoError(t, err)
	v := MinimalVariance(g, 64, 128)
	require.Greater(t, v.Variance(), 0.0)
}
