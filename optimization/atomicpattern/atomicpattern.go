// Package atomicpattern implements the inner combiner and outer search
// of §4.C/§4.D for a single atomic pattern (dot-product of sum_size
// terms, then key-switch, then programmable bootstrap): the Pareto
// builders for each decomposition axis, the shared combiner that walks
// both Pareto lists with the cross-Pareto cut and resumable cursor, and
// OptimizeOne, the public entry point of §4.F.
package atomicpattern

import (
	"fmt"
	"math"

	"github.com/tuneinsight/concrete-optimizer/internal/selfcheck"
	errorbound "github.com/tuneinsight/concrete-optimizer/noise/error"
	"github.com/tuneinsight/concrete-optimizer/noise/operators/atomicpattern"
	"github.com/tuneinsight/concrete-optimizer/optimization/config"
	"github.com/tuneinsight/concrete-optimizer/parameters"
	"github.com/tuneinsight/concrete-optimizer/security/glwe"
)

// cuts/paretoCuts/crossParetoCuts mirror the reference's CUTS/PARETO_CUTS/
// CROSS_PARETO_CUTS constants: all three are load-bearing for
// performance, not semantics (disabling any of them widens the scan
// without changing the best solution found), so they stay as package
// constants rather than Config fields per §9.
const (
	cuts            = true
	paretoCuts      = true
	crossParetoCuts = paretoCuts && true
)

// relEpsilonProba is the reference's REL_EPSILON_PROBA: the
// floating-point slack allowed when checking the final solution's
// p_error against the configured bound.
const relEpsilonProba = 1.0 + 1e-8

// Solution is one feasible, fully-parametrized atomic pattern, the
// best one found by OptimizeOne over its search space.
type Solution struct {
	InputLweDimension            uint64
	InternalKsOutputLweDimension uint64
	KsDecompositionLevelCount    uint64
	KsDecompositionBaseLog       uint64
	GlwePolynomialSize           uint64
	GlweDimension                uint64
	BrDecompositionLevelCount    uint64
	BrDecompositionBaseLog       uint64
	Complexity                   float64
	NoiseMax                     float64
	PError                       float64
	GlobalPError                 float64
}

// DecompositionConsts bundles everything that stays fixed across the
// whole outer search of one OptimizeOne call, mirroring the reference's
// OptimizationDecompositionsConsts.
type DecompositionConsts struct {
	Cfg                       config.Config
	Kappa                     float64
	SumSize                   uint64
	NoiseFactor               float64
	KeyswitchDecompositions   []parameters.KsDecompositionParameters
	BlindRotateDecompositions []parameters.BrDecompositionParameters
	SafeVariance              float64
}

// ComplexityNoise is one (index, complexity, noise) triple from a
// Pareto builder pass, mirroring the reference's ComplexityNoise.
type ComplexityNoise struct {
	Index      int
	Complexity float64
	Noise      float64
}

// ParetoBlindRotate scans the blind-rotate decomposition pool and
// returns the points surviving the complexity/noise cuts plus the
// dominated-current/dominated-previous Pareto pruning (§4.B).
func ParetoBlindRotate(consts *DecompositionConsts, internalDim uint64, glweParams parameters.GlweParameters, cutComplexity, cutNoise float64) []ComplexityNoise {
	return paretoCutBlindRotate(consts, internalDim, glweParams, cutComplexity, cutNoise, true)
}

// CuttedBlindRotate is ParetoBlindRotate without the Pareto-domination
// pruning (only the complexity/noise monotonicity cuts), used where a
// caller needs every surviving point rather than just the non-dominated
// ones.
func CuttedBlindRotate(consts *DecompositionConsts, internalDim uint64, glweParams parameters.GlweParameters, cutComplexity, cutNoise float64) []ComplexityNoise {
	return paretoCutBlindRotate(consts, internalDim, glweParams, cutComplexity, cutNoise, false)
}

func paretoCutBlindRotate(consts *DecompositionConsts, internalDim uint64, glweParams parameters.GlweParameters, cutComplexity, cutNoise float64, paretoCut bool) []ComplexityNoise {
	pool := consts.BlindRotateDecompositions
	quantities := make([]ComplexityNoise, len(pool))

	modulusLogBits := consts.Cfg.CiphertextModulusLog
	securityLevel := consts.Cfg.SecurityLevel
	varianceBsk := glwe.MinimalVariance(glweParams, modulusLogBits, securityLevel)

	increasingComplexity := 0.0
	decreasingVariance := math.Inf(1)
	size := 0

	for iBr, brDecomp := range pool {
		pbsParams := parameters.PbsParameters{
			InternalLweDimension: parameters.LweDimension(internalDim),
			BrDecompositionParam: brDecomp,
			OutputGlweParams:     glweParams,
		}

		complexityPbs := consts.Cfg.ComplexityModel.PbsComplexity(pbsParams, modulusLogBits)
		if cutComplexity < complexityPbs && cuts {
			break // complexity is increasing
		}

		baseNoise := atomicpattern.VarianceBootstrap(pbsParams, modulusLogBits, varianceBsk)
		noiseOut := baseNoise.Variance()
		if cutNoise < noiseOut && cuts {
			continue // noise is decreasing
		}
		if decreasingVariance < noiseOut && paretoCuts && paretoCut {
			continue // the current case is dominated
		}

		deltaComplexity := complexityPbs - increasingComplexity
		if deltaComplexity == 0 && paretoCuts && paretoCut {
			size-- // the previous case is dominated
		}
		if deltaComplexity < 0 {
			panic("atomicpattern: blind_rotate_decompositions should be by increasing complexity")
		}

		quantities[size] = ComplexityNoise{Index: iBr, Complexity: complexityPbs, Noise: noiseOut}
		increasingComplexity = complexityPbs
		decreasingVariance = noiseOut
		size++
	}

	if paretoCuts && paretoCut && size >= 64 {
		panic("atomicpattern: pruned blind-rotate pool exceeded 63 entries")
	}
	return quantities[:size]
}

// ParetoKeyswitch scans the key-switch decomposition pool the same way
// ParetoBlindRotate does, always applying the dominated-current cut:
// the key-switch Pareto builder has no "uncut" variant in the
// reference, an asymmetry carried over unchanged (§9 Open Question).
func ParetoKeyswitch(consts *DecompositionConsts, inputDim, internalDim uint64, cutComplexity, cutNoise float64) []ComplexityNoise {
	pool := consts.KeyswitchDecompositions
	quantities := make([]ComplexityNoise, len(pool))

	modulusLogBits := consts.Cfg.CiphertextModulusLog
	securityLevel := consts.Cfg.SecurityLevel
	varianceKsk := atomicpattern.VarianceKsk(internalDim, modulusLogBits, securityLevel)

	increasingComplexity := 0.0
	decreasingVariance := math.Inf(1)
	size := 0

	for iKs, ksDecomp := range pool {
		ksParams := parameters.KeyswitchParameters{
			InputLweDimension:    parameters.LweDimension(inputDim),
			OutputLweDimension:   parameters.LweDimension(internalDim),
			KsDecompositionParam: ksDecomp,
		}

		complexityKeyswitch := consts.Cfg.ComplexityModel.KsComplexity(ksParams, modulusLogBits)
		if cutComplexity < complexityKeyswitch && cuts {
			break
		}

		noiseKeyswitch := atomicpattern.VarianceKeyswitch(ksParams, modulusLogBits, varianceKsk).Variance()
		if cutNoise < noiseKeyswitch && cuts {
			continue
		}
		if decreasingVariance < noiseKeyswitch && paretoCuts {
			continue
		}

		deltaComplexity := complexityKeyswitch - increasingComplexity
		if deltaComplexity == 0 && paretoCuts {
			size--
		}
		if deltaComplexity < 0 {
			panic("atomicpattern: keyswitch_decompositions should be by increasing complexity")
		}

		quantities[size] = ComplexityNoise{Index: iKs, Complexity: complexityKeyswitch, Noise: noiseKeyswitch}
		increasingComplexity = complexityKeyswitch
		decreasingVariance = noiseKeyswitch
		size++
	}

	if paretoCuts && size >= 64 {
		panic("atomicpattern: pruned keyswitch pool exceeded 63 entries")
	}
	return quantities[:size]
}

// OptimizationState is the outer search's running best, carried across
// every (internal_dim, glwe_params) outer point.
type OptimizationState struct {
	BestSolution *Solution
	CountDomain  int
}

// minPoolMonotonicityCorrelation is the threshold passed to
// selfcheck.AssertPredominantlyDecreasing when checking a decomposition
// pool: looser than the 0.9 used by selfcheck's own unit tests, since a
// real pool's noise values span many orders of magnitude and a single
// low-level outlier can pull Pearson's r away from -1 even when every
// pair is individually ordered correctly.
const minPoolMonotonicityCorrelation = 0.5

// assertDecompositionPoolsPredominantlyDecreasing recomputes both
// decomposition pools' noise at one representative (internalDim,
// glweParams) point and checks, via selfcheck.AssertPredominantlyDecreasing,
// that noise predominantly decreases as the pool is scanned in its
// built order (increasing level, per pareto.buildPool) — the statistical
// guard the Pareto cuts in ParetoBlindRotate/ParetoKeyswitch silently
// depend on holding.
func assertDecompositionPoolsPredominantlyDecreasing(consts *DecompositionConsts, internalDim uint64, glweParams parameters.GlweParameters) {
	modulusLogBits := consts.Cfg.CiphertextModulusLog
	securityLevel := consts.Cfg.SecurityLevel

	varianceBsk := glwe.MinimalVariance(glweParams, modulusLogBits, securityLevel)
	brLevels := make([]float64, len(consts.BlindRotateDecompositions))
	brNoises := make([]float64, len(consts.BlindRotateDecompositions))
	for i, brDecomp := range consts.BlindRotateDecompositions {
		pbsParams := parameters.PbsParameters{
			InternalLweDimension: parameters.LweDimension(internalDim),
			BrDecompositionParam: brDecomp,
			OutputGlweParams:     glweParams,
		}
		brLevels[i] = float64(brDecomp.Level)
		brNoises[i] = atomicpattern.VarianceBootstrap(pbsParams, modulusLogBits, varianceBsk).Variance()
	}
	selfcheck.AssertPredominantlyDecreasing(brLevels, brNoises, minPoolMonotonicityCorrelation)

	inputLweDimension := glweParams.GlweDimension * glweParams.PolynomialSize()
	varianceKsk := atomicpattern.VarianceKsk(internalDim, modulusLogBits, securityLevel)
	ksLevels := make([]float64, len(consts.KeyswitchDecompositions))
	ksNoises := make([]float64, len(consts.KeyswitchDecompositions))
	for i, ksDecomp := range consts.KeyswitchDecompositions {
		ksParams := parameters.KeyswitchParameters{
			InputLweDimension:    parameters.LweDimension(inputLweDimension),
			OutputLweDimension:   parameters.LweDimension(internalDim),
			KsDecompositionParam: ksDecomp,
		}
		ksLevels[i] = float64(ksDecomp.Level)
		ksNoises[i] = atomicpattern.VarianceKeyswitch(ksParams, modulusLogBits, varianceKsk).Variance()
	}
	selfcheck.AssertPredominantlyDecreasing(ksLevels, ksNoises, minPoolMonotonicityCorrelation)
}

func updateStateWithBestDecompositions(state *OptimizationState, consts *DecompositionConsts, internalDim uint64, glweParams parameters.GlweParameters) {
	glwePolySize := glweParams.PolynomialSize()
	inputLweDimension := glweParams.GlweDimension * glwePolySize

	noiseModulusSwitching := atomicpattern.EstimateModulusSwitchingNoiseWithBinaryKey(
		internalDim, glwePolySize, consts.Cfg.CiphertextModulusLog).Variance()
	safeVariance := consts.SafeVariance
	if cuts && noiseModulusSwitching > safeVariance {
		return
	}

	bestComplexity := math.Inf(1)
	bestVariance := math.Inf(1)
	if state.BestSolution != nil {
		bestComplexity = state.BestSolution.Complexity
		bestVariance = state.BestSolution.NoiseMax
	}

	complexityMultisum := float64(consts.SumSize) * float64(inputLweDimension)
	cutComplexity := bestComplexity - complexityMultisum
	cutNoise := safeVariance - noiseModulusSwitching

	brQuantities := ParetoBlindRotate(consts, internalDim, glweParams, cutComplexity, cutNoise)
	if len(brQuantities) == 0 {
		return
	}
	if paretoCuts {
		cutNoise -= brQuantities[len(brQuantities)-1].Noise
		cutComplexity -= brQuantities[0].Complexity
	}

	ksQuantities := ParetoKeyswitch(consts, inputLweDimension, internalDim, cutComplexity, cutNoise)
	if len(ksQuantities) == 0 {
		return
	}

	iMaxKs := len(ksQuantities) - 1
	iCurrentMaxKs := iMaxKs
	squareNoiseFactor := consts.NoiseFactor * consts.NoiseFactor

	for _, brQuantity := range brQuantities {
		// increasing complexity, decreasing variance
		noiseIn := brQuantity.Noise * squareNoiseFactor
		noiseMax := noiseIn + noiseModulusSwitching
		if noiseMax > safeVariance && cuts {
			continue
		}
		complexityPbs := brQuantity.Complexity
		complexityBr := complexityMultisum + complexityPbs
		if complexityBr > bestComplexity {
			if paretoCuts {
				break
			} else if cuts {
				continue
			}
		}

		for iKsPareto := iCurrentMaxKs; iKsPareto >= 0; iKsPareto-- {
			// increasing variance, decreasing complexity
			ksQuantity := ksQuantities[iKsPareto]
			noiseKeyswitch := ksQuantity.Noise
			noiseMaxCandidate := noiseIn + noiseKeyswitch + noiseModulusSwitching
			complexityKeyswitch := ksQuantity.Complexity
			complexity := complexityMultisum + complexityKeyswitch + complexityPbs

			if consts.Cfg.CheckSelfConsistency {
				apParams := parameters.AtomicPatternParameters{
					InputLweDimension:    parameters.LweDimension(inputLweDimension),
					KsDecompositionParam: consts.KeyswitchDecompositions[ksQuantity.Index],
					InternalLweDimension: parameters.LweDimension(internalDim),
					BrDecompositionParam: consts.BlindRotateDecompositions[brQuantity.Index],
					OutputGlweParams:     glweParams,
				}
				selfcheck.AssertAtomicPattern(consts.Cfg.ComplexityModel, consts.SumSize, apParams,
					consts.Cfg.CiphertextModulusLog, consts.Cfg.SecurityLevel, consts.NoiseFactor,
					selfcheck.AtomicPatternCandidate{
						NoiseOut:            brQuantity.Noise,
						ComplexityPbs:       complexityPbs,
						NoiseKeyswitch:      noiseKeyswitch,
						ComplexityKeyswitch: complexityKeyswitch,
						NoiseMax:            noiseMaxCandidate,
						ComplexityMultisum:  complexityMultisum,
						Complexity:          complexity,
					})
			}

			if noiseMaxCandidate > safeVariance {
				if crossParetoCuts {
					// the pareto of 2 added pareto is scanned linearly but
					// with all cuts, precomputing => no gain
					iCurrentMaxKs = iKsPareto + 1
					if iCurrentMaxKs > iMaxKs {
						iCurrentMaxKs = iMaxKs
					}
					break // compatible with next i_br but with the worst complexity
				} else if paretoCuts {
					break // increasing variance => skip all remaining
				}
				continue
			} else if complexity > bestComplexity {
				continue
			}

			// feasible and at least as good complexity
			if complexity < bestComplexity || noiseMaxCandidate < bestVariance {
				sigma := math.Sqrt(safeVariance) * consts.Kappa
				sigmaScale := sigma / math.Sqrt(noiseMaxCandidate)
				pError := errorbound.ErrorProbabilityOfSigmaScale(sigmaScale)

				brDecomp := consts.BlindRotateDecompositions[brQuantity.Index]
				ksDecomp := consts.KeyswitchDecompositions[ksQuantity.Index]

				bestComplexity = complexity
				bestVariance = noiseMaxCandidate
				state.BestSolution = &Solution{
					InputLweDimension:           inputLweDimension,
					InternalKsOutputLweDimension: internalDim,
					KsDecompositionLevelCount:    ksDecomp.Level,
					KsDecompositionBaseLog:       ksDecomp.Log2Base,
					GlwePolynomialSize:           glweParams.PolynomialSize(),
					GlweDimension:                glweParams.GlweDimension,
					BrDecompositionLevelCount:    brDecomp.Level,
					BrDecompositionBaseLog:       brDecomp.Log2Base,
					NoiseMax:                     noiseMaxCandidate,
					Complexity:                   complexity,
					PError:                       pError,
					GlobalPError:                 math.NaN(),
				}
			}
		}
	}
}

// OptimizeOne is the public entry point of §4.F: it finds the
// lowest-complexity feasible atomic pattern for a dot-product of
// sumSize terms at the given precision, under cfg and searchSpace, and
// optionally resumes from a previous restartAt solution.
func OptimizeOne(sumSize, precision uint64, cfg config.Config, noiseFactor float64, searchSpace config.SearchSpace, restartAt *Solution) (OptimizationState, error) {
	if precision == 0 || precision > 16 {
		return OptimizationState{}, fmt.Errorf("atomicpattern: precision must be in [1, 16], got %d", precision)
	}
	if noiseFactor < 1.0 {
		return OptimizationState{}, fmt.Errorf("atomicpattern: noise_factor must be >= 1, got %v", noiseFactor)
	}
	if err := cfg.Validate(); err != nil {
		return OptimizationState{}, fmt.Errorf("atomicpattern: %w", err)
	}

	modulusLogBits := cfg.CiphertextModulusLog
	safeVariance, err := errorbound.SafeVarianceBound2PAdBits(precision, modulusLogBits, cfg.NoiseBound.MaximumAcceptableErrorProbability)
	if err != nil {
		return OptimizationState{}, fmt.Errorf("atomicpattern: %w", err)
	}
	kappa := errorbound.SigmaScaleOfErrorProbability(cfg.NoiseBound.MaximumAcceptableErrorProbability)

	consts := &DecompositionConsts{
		Cfg:                       cfg,
		Kappa:                     kappa,
		SumSize:                   sumSize,
		NoiseFactor:               noiseFactor,
		KeyswitchDecompositions:   searchSpace.KsDecompositionPool,
		BlindRotateDecompositions: searchSpace.BrDecompositionPool,
		SafeVariance:              safeVariance,
	}

	state := OptimizationState{
		CountDomain: len(searchSpace.GlweDimensions) * len(searchSpace.Log2PolynomialSizes) *
			len(searchSpace.InternalLweDimensions) * len(consts.KeyswitchDecompositions) * len(consts.BlindRotateDecompositions),
	}

	minInternalLweDimension := searchSpace.InternalLweDimensions[0]
	lowerBoundCut := func(glwePolySize uint64) bool {
		return cuts && atomicpattern.EstimateModulusSwitchingNoiseWithBinaryKey(
			minInternalLweDimension, glwePolySize, modulusLogBits).Variance() > consts.SafeVariance
	}

	skip := func(glweDim, glwePolySize uint64) bool {
		if restartAt == nil {
			return false
		}
		return glweDim < restartAt.GlweDimension && glwePolySize < restartAt.GlwePolynomialSize
	}

	selfCheckedPools := false

	for _, glweDim := range searchSpace.GlweDimensions {
		for _, glweLogPolySize := range searchSpace.Log2PolynomialSizes {
			if glweLogPolySize < parameters.MinLog2PolynomialSize || glweLogPolySize >= parameters.MaxLog2PolynomialSize {
				return OptimizationState{}, fmt.Errorf("atomicpattern: log2_polynomial_size %d out of range", glweLogPolySize)
			}
			glwePolySize := uint64(1) << glweLogPolySize
			if lowerBoundCut(glwePolySize) {
				continue
			}
			if skip(glweDim, glwePolySize) {
				continue
			}

			glweParams, err := parameters.NewGlweParameters(glweLogPolySize, glweDim)
			if err != nil {
				return OptimizationState{}, fmt.Errorf("atomicpattern: %w", err)
			}

			for _, internalDim := range searchSpace.InternalLweDimensions {
				if internalDim <= parameters.MinInternalLweDimension {
					return OptimizationState{}, fmt.Errorf("atomicpattern: internal_lwe_dimension %d too small", internalDim)
				}
				if cfg.CheckSelfConsistency && !selfCheckedPools {
					assertDecompositionPoolsPredominantlyDecreasing(consts, internalDim, glweParams)
					selfCheckedPools = true
				}
				updateStateWithBestDecompositions(&state, consts, internalDim, glweParams)
			}
		}
	}

	if sol := state.BestSolution; sol != nil {
		if sol.PError < 0 || sol.PError > 1 {
			panic("atomicpattern: p_error out of [0, 1]")
		}
		if sol.PError > cfg.NoiseBound.MaximumAcceptableErrorProbability*relEpsilonProba {
			panic("atomicpattern: best solution exceeds the configured error-probability bound")
		}
	}

	return state, nil
}
