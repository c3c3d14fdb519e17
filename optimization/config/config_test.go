package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/concrete-optimizer/parameters"
)

func TestDefaultSearchSpaceIsNonEmpty(t *testing.T) {
	space := DefaultSearchSpace()
	require.NotEmpty(t, space.GlweDimensions)
	require.NotEmpty(t, space.Log2PolynomialSizes)
	require.NotEmpty(t, space.InternalLweDimensions)
	require.NotEmpty(t, space.KsDecompositionPool)
	require.NotEmpty(t, space.BrDecompositionPool)
}

func TestDefaultSearchSpaceBoundsPolynomialSizeRange(t *testing.T) {
	space := DefaultSearchSpace()
	for _, n := range space.Log2PolynomialSizes {
		require.GreaterOrEqual(t, n, uint64(parameters.MinLog2PolynomialSize))
		require.Less(t, n, uint64(parameters.MaxLog2PolynomialSize))
	}
}

func TestDefaultSearchSpaceInternalDimensionsAboveMinimum(t *testing.T) {
	space := DefaultSearchSpace()
	for _, d := range space.InternalLweDimensions {
		require.Greater(t, d, uint64(parameters.MinInternalLweDimension))
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsZeroSecurityLevel(t *testing.T) {
	cfg := Default()
	cfg.SecurityLevel = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroModulus(t *testing.T) {
	cfg := Default()
	cfg.CiphertextModulusLog = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeErrorProbability(t *testing.T) {
	cfg := Default()
	cfg.NoiseBound.MaximumAcceptableErrorProbability = 0
	require.Error(t, cfg.Validate())

	cfg.NoiseBound.MaximumAcceptableErrorProbability = 1
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNilComplexityModel(t *testing.T) {
	cfg := Default()
	cfg.ComplexityModel = nil
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyDecompositionPools(t *testing.T) {
	cfg := Default()
	cfg.Space.KsDecompositionPool = nil
	require.Error(t, cfg.Validate())
}
