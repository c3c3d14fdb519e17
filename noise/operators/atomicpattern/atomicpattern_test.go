package atomicpattern

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/concrete-optimizer/parameters"
)

func pbsParamsFixture(t *testing.T, level uint64) parameters.PbsParameters {
	t.Helper()
	glwe, err := parameters.NewGlweParameters(10, 1)
	require.NoError(t, err)
	return parameters.PbsParameters{
		InternalLweDimension: 512,
		BrDecompositionParam: parameters.DecompositionParameters{Log2Base: 64 / level, Level: level},
		OutputGlweParams:     glwe,
	}
}

func TestEstimateModulusSwitchingNoiseNonDecreasingInDimension(t *testing.T) {
	low := EstimateModulusSwitchingNoiseWithBinaryKey(256, 1024, 64)
	high := EstimateModulusSwitchingNoiseWithBinaryKey(1024, 1024, 64)
	require.GreaterOrEqual(t, high.Variance(), low.Variance())
}

func TestEstimateModulusSwitchingNoiseDecreasesWithPolySize(t *testing.T) {
	small := EstimateModulusSwitchingNoiseWithBinaryKey(512, 1024, 64)
	large := EstimateModulusSwitchingNoiseWithBinaryKey(512, 4096, 64)
	require.Greater(t, small.Variance(), large.Variance())
}

func TestVarianceKeyswitchIsPositive(t *testing.T) {
	ksParams := parameters.KeyswitchParameters{
		InputLweDimension:    1024,
		OutputLweDimension:   512,
		KsDecompositionParam: parameters.DecompositionParameters{Log2Base: 4, Level: 3},
	}
	v := VarianceKeyswitch(ksParams, 64, VarianceKsk(512, 64, 128))
	require.Greater(t, v.Variance(), 0.0)
}

func TestVarianceBootstrapIsPositive(t *testing.T) {
	pbsParams := pbsParamsFixture(t, 4)
	varianceBsk := VarianceKsk(uint64(pbsParams.InternalLweDimension), 64, 128)
	v := VarianceBootstrap(pbsParams, 64, varianceBsk)
	require.Greater(t, v.Variance(), 0.0)
}

// realisticPool mirrors pareto.buildPool's own rule (base = modulus bits
// / level) well past the handful of levels the other fixtures use, the
// exact coupling under which a decomposition-term regression would slip
// past a pool that only ever grows from one side.
func realisticPool(modulusLogBits uint64, levels []uint64) []parameters.DecompositionParameters {
	pool := make([]parameters.DecompositionParameters, len(levels))
	for i, level := range levels {
		pool[i] = parameters.DecompositionParameters{Log2Base: modulusLogBits / level, Level: level}
	}
	return pool
}

func TestVarianceBootstrapDecreasesAcrossRealisticPool(t *testing.T) {
	glwe, err := parameters.NewGlweParameters(10, 1)
	require.NoError(t, err)
	varianceBsk := VarianceKsk(512, 64, 128)

	pool := realisticPool(64, []uint64{1, 2, 4, 8, 16, 32, 62})
	previous := math.Inf(1)
	for _, decomp := range pool {
		pbsParams := parameters.PbsParameters{
			InternalLweDimension: 512,
			BrDecompositionParam: decomp,
			OutputGlweParams:     glwe,
		}
		noise := VarianceBootstrap(pbsParams, 64, varianceBsk).Variance()
		require.Lessf(t, noise, previous, "level %d should be less noisy than the previous, smaller level", decomp.Level)
		previous = noise
	}
}

func TestVarianceKeyswitchDecreasesAcrossRealisticPool(t *testing.T) {
	varianceKsk := VarianceKsk(512, 64, 128)

	pool := realisticPool(64, []uint64{1, 2, 4, 8, 16, 32, 62})
	previous := math.Inf(1)
	for _, decomp := range pool {
		ksParams := parameters.KeyswitchParameters{
			InputLweDimension:    1024,
			OutputLweDimension:   512,
			KsDecompositionParam: decomp,
		}
		noise := VarianceKeyswitch(ksParams, 64, varianceKsk).Variance()
		require.Lessf(t, noise, previous, "level %d should be less noisy than the previous, smaller level", decomp.Level)
		previous = noise
	}
}

func TestMaximalNoiseIsSumOfContributions(t *testing.T) {
	glwe, err := parameters.NewGlweParameters(10, 1)
	require.NoError(t, err)
	apParams := parameters.AtomicPatternParameters{
		InputLweDimension:    1024,
		KsDecompositionParam: parameters.DecompositionParameters{Log2Base: 4, Level: 3},
		InternalLweDimension: 512,
		BrDecompositionParam: parameters.DecompositionParameters{Log2Base: 8, Level: 2},
		OutputGlweParams:     glwe,
	}
	total := MaximalNoise(100.0, apParams, 64, 128)
	require.Greater(t, total.Variance(), 100.0)
}
