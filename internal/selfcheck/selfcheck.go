// Package selfcheck implements the CHECKS-gated reference
// recomputation of §9's "sanity self-check mode": an independent,
// unoptimized recomputation of a candidate's noise and complexity from
// its parameters alone, compared against the value the cut-driven
// search path produced for it. It exists to catch a divergence between
// the combiner's incremental bookkeeping and the oracles it is built
// from; it is never on the hot path of a normal search.
package selfcheck

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/tuneinsight/concrete-optimizer/complexity"
	"github.com/tuneinsight/concrete-optimizer/dispersion"
	"github.com/tuneinsight/concrete-optimizer/internal/assert"
	"github.com/tuneinsight/concrete-optimizer/noise/operators/atomicpattern"
	"github.com/tuneinsight/concrete-optimizer/parameters"
	"github.com/tuneinsight/concrete-optimizer/security/glwe"
)

const relativeEpsilon = 1e-10
const complexityRelativeEpsilon = 1e-4

// AtomicPatternCandidate carries everything the cut-driven combiner
// already knows about one (br, ks) candidate, so the recomputation can
// be checked against it without redoing the combiner's own bookkeeping.
type AtomicPatternCandidate struct {
	NoiseOut             float64 // bootstrap noise before the squared noise-factor scaling
	ComplexityPbs        float64
	NoiseKeyswitch       float64
	ComplexityKeyswitch  float64
	NoiseMax             float64
	ComplexityMultisum   float64
	Complexity           float64
}

// AssertAtomicPattern recomputes candidate's noise and complexity from
// apParams alone and panics if either disagrees with the values the
// combiner already produced, beyond floating-point slack.
func AssertAtomicPattern(
	model complexity.Model,
	sumSize uint64,
	apParams parameters.AtomicPatternParameters,
	modulusLogBits, securityLevel uint64,
	noiseFactor float64,
	candidate AtomicPatternCandidate,
) {
	varianceBsk := glwe.MinimalVariance(apParams.OutputGlweParams, modulusLogBits, securityLevel)
	pbsParams := parameters.PbsParameters{
		InternalLweDimension: apParams.InternalLweDimension,
		BrDecompositionParam: apParams.BrDecompositionParam,
		OutputGlweParams:     apParams.OutputGlweParams,
	}
	baseNoise := atomicpattern.VarianceBootstrap(pbsParams, modulusLogBits, varianceBsk)
	noiseIn := baseNoise.Variance() * noiseFactor * noiseFactor

	complexityPbs := model.PbsComplexity(pbsParams, modulusLogBits)
	assert.True(complexityPbs == candidate.ComplexityPbs,
		"selfcheck: pbs complexity mismatch: %v != %v", complexityPbs, candidate.ComplexityPbs)
	assert.RelativelyClose(candidate.NoiseOut*noiseFactor*noiseFactor, noiseIn, relativeEpsilon,
		"selfcheck: bootstrap noise mismatch: %v != %v", candidate.NoiseOut*noiseFactor*noiseFactor, noiseIn)

	varianceKsk := atomicpattern.VarianceKsk(uint64(apParams.InternalLweDimension), modulusLogBits, securityLevel)
	ksParams := parameters.KeyswitchParameters{
		InputLweDimension:    apParams.InputLweDimension,
		OutputLweDimension:   apParams.InternalLweDimension,
		KsDecompositionParam: apParams.KsDecompositionParam,
	}
	noiseKeyswitch := atomicpattern.VarianceKeyswitch(ksParams, modulusLogBits, varianceKsk).Variance()
	complexityKeyswitch := model.KsComplexity(ksParams, modulusLogBits)

	assert.True(complexityKeyswitch == candidate.ComplexityKeyswitch,
		"selfcheck: keyswitch complexity mismatch: %v != %v", complexityKeyswitch, candidate.ComplexityKeyswitch)
	assert.True(noiseKeyswitch == candidate.NoiseKeyswitch,
		"selfcheck: keyswitch noise mismatch: %v != %v", noiseKeyswitch, candidate.NoiseKeyswitch)

	checkMaxNoise := atomicpattern.MaximalNoise(dispersion.Variance(noiseIn), apParams, modulusLogBits, securityLevel).Variance()
	assert.RelativelyClose(candidate.NoiseMax, checkMaxNoise, relativeEpsilon,
		"selfcheck: total noise mismatch: %v != %v", candidate.NoiseMax, checkMaxNoise)

	checkComplexity := complexity.AtomicPatternComplexity(model, sumSize, apParams, modulusLogBits)
	assert.RelativelyClose(candidate.Complexity, checkComplexity, complexityRelativeEpsilon,
		"selfcheck: total complexity mismatch: %v != %v", candidate.Complexity, checkComplexity)
}

// SampleMonotonicity is the statistical half of §9's sanity self-check
// mode: it scans a decomposition pool's noise values in order and
// checks, via Pearson correlation against the level index, that noise
// is predominantly decreasing as the pool's own ordering promises.
// It does not require exact pointwise monotonicity (the raw pools are
// not strictly monotone, only their Pareto-pruned subsequences are);
// it is a sanity bound against a badly-ordered or mis-generated pool.
func SampleMonotonicity(levels []float64, noises []float64) (correlation float64, err error) {
	if len(levels) != len(noises) || len(levels) < 2 {
		return 0, nil
	}
	levelSeries := make(stats.Float64Data, len(levels))
	noiseSeries := make(stats.Float64Data, len(noises))
	copy(levelSeries, levels)
	copy(noiseSeries, noises)
	return stats.Correlation(levelSeries, noiseSeries)
}

// AssertPredominantlyDecreasing panics if a pool's noise values do not
// correlate negatively enough with increasing level to be considered
// sane, mirroring the reference's informal "noise decreases with
// larger decomposition" assumption (§3) as a statistical guard rather
// than a strict per-pair check.
func AssertPredominantlyDecreasing(levels, noises []float64, minAbsCorrelation float64) {
	correlation, err := SampleMonotonicity(levels, noises)
	if err != nil || math.IsNaN(correlation) || len(levels) < 2 {
		return // too few distinct points to draw a conclusion; nothing to assert
	}
	assert.True(correlation <= -minAbsCorrelation,
		"selfcheck: decomposition pool noise does not predominantly decrease with level (correlation %v)", correlation)
}
