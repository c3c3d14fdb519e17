// Package solokey reuses the atomic-pattern combiner and outer search
// of §4.C/D in DAG mode: the same Pareto-built decomposition lists are
// walked, but feasibility, peek-p_error and global-p_error are asked of
// the analyzed circuit (§4.E) instead of computed inline, and the best
// solution is kept by (complexity, p_error) lexicographic order instead
// of atomic mode's (complexity, noise_max).
package solokey

import (
	"fmt"
	"math"

	"github.com/tuneinsight/concrete-optimizer/dag"
	"github.com/tuneinsight/concrete-optimizer/dag/analyze"
	errorbound "github.com/tuneinsight/concrete-optimizer/noise/error"
	noiseap "github.com/tuneinsight/concrete-optimizer/noise/operators/atomicpattern"
	optatomicpattern "github.com/tuneinsight/concrete-optimizer/optimization/atomicpattern"
	"github.com/tuneinsight/concrete-optimizer/optimization/config"
	"github.com/tuneinsight/concrete-optimizer/parameters"
	"github.com/tuneinsight/concrete-optimizer/security/glwe"
)

const cuts = true
const paretoCuts = true
const crossParetoCuts = paretoCuts && true
const relEpsilonProba = 1.0 + 1e-8

func updateBestSolutionWithBestDecompositions(
	state *optatomicpattern.OptimizationState,
	consts *optatomicpattern.DecompositionConsts,
	circuit *analyze.OperationDag,
	internalDim uint64,
	glweParams parameters.GlweParameters,
	noiseModulusSwitching float64,
) {
	safeVariance := consts.SafeVariance
	glwePolySize := glweParams.PolynomialSize()
	inputLweDimension := glweParams.GlweDimension * glwePolySize

	bestComplexity := math.Inf(1)
	bestVariance := math.Inf(1)
	bestPError := math.Inf(1)
	if state.BestSolution != nil {
		bestComplexity = state.BestSolution.Complexity
		bestVariance = state.BestSolution.NoiseMax
		bestPError = state.BestSolution.PError
	}

	inputNoiseOut := glwe.MinimalVariance(glweParams, consts.Cfg.CiphertextModulusLog, consts.Cfg.SecurityLevel).Variance()

	noLuts := circuit.NbLuts == 0
	var cutNoise, cutComplexity float64
	if noLuts && cuts {
		cutNoise, cutComplexity = math.Inf(1), math.Inf(1)
	} else {
		cutNoise = safeVariance - noiseModulusSwitching
		cutComplexity = (bestComplexity - circuit.ComplexityCost(inputLweDimension, 0.0)) / float64(circuit.NbLuts)
	}

	if inputNoiseOut > cutNoise {
		// exact cut when HasOnlyLutsWithInputs, lower bound cut otherwise
		return
	}

	// with only one layer of luts, bootstrap noise never feeds another
	// lut, so no cut inside the blind-rotate pareto builder based on it
	brCutNoise := cutNoise
	if circuit.HasOnlyLutsWithInputs {
		brCutNoise = math.Inf(1)
	}
	brCutComplexity := cutComplexity

	brPareto := optatomicpattern.ParetoBlindRotate(consts, internalDim, glweParams, brCutComplexity, brCutNoise)
	if len(brPareto) == 0 {
		return
	}

	worstInputKsNoise := brPareto[len(brPareto)-1].Noise
	if circuit.HasOnlyLutsWithInputs {
		worstInputKsNoise = inputNoiseOut
	}
	ksCutNoise := cutNoise - worstInputKsNoise
	ksCutComplexity := cutComplexity - brPareto[0].Complexity

	ksPareto := optatomicpattern.ParetoKeyswitch(consts, inputLweDimension, internalDim, ksCutComplexity, ksCutNoise)
	if len(ksPareto) == 0 {
		return
	}

	iMaxKs := len(ksPareto) - 1
	iCurrentMaxKs := iMaxKs

	bestBrNoise, bestKsNoise := math.Inf(1), math.Inf(1)
	bestBrIndex, bestKsIndex := 0, 0
	updateBestSolution := false

	for _, brQuantity := range brPareto {
		// increasing complexity, decreasing variance
		if !circuit.Feasible(inputNoiseOut, brQuantity.Noise, 0.0, noiseModulusSwitching) && cuts {
			continue
		}
		oneLutCost := brQuantity.Complexity
		complexity := circuit.ComplexityCost(inputLweDimension, oneLutCost)
		if complexity > bestComplexity {
			if paretoCuts {
				break
			} else if cuts {
				continue
			}
		}

		for iKsPareto := iCurrentMaxKs; iKsPareto >= 0; iKsPareto-- {
			// increasing variance, decreasing complexity
			ksQuantity := ksPareto[iKsPareto]
			feasible := circuit.Feasible(inputNoiseOut, brQuantity.Noise, ksQuantity.Noise, noiseModulusSwitching)
			if !feasible {
				if crossParetoCuts {
					iCurrentMaxKs = iKsPareto + 1
					if iCurrentMaxKs > iMaxKs {
						iCurrentMaxKs = iMaxKs
					}
					break // compatible with next br quantity but with the worst complexity
				} else if paretoCuts {
					break // increasing variance => skip all remaining
				}
				continue
			}

			oneLutCost := ksQuantity.Complexity + brQuantity.Complexity
			complexity := circuit.ComplexityCost(inputLweDimension, oneLutCost)
			if complexity > bestComplexity {
				continue
			}

			peekPError, variance := circuit.PeekPError(inputNoiseOut, brQuantity.Noise, ksQuantity.Noise, noiseModulusSwitching, consts.Kappa)
			sameComplexityNoFewerErrors := complexity == bestComplexity && peekPError >= bestPError
			if sameComplexityNoFewerErrors {
				continue
			}

			// complexity is either better, or equal with fewer errors
			updateBestSolution = true
			bestComplexity = complexity
			bestPError = peekPError
			bestVariance = variance
			bestBrNoise = brQuantity.Noise
			bestKsNoise = ksQuantity.Noise
			bestBrIndex = brQuantity.Index
			bestKsIndex = ksQuantity.Index
		}
	}

	if updateBestSolution {
		brDecomp := consts.BlindRotateDecompositions[bestBrIndex]
		ksDecomp := consts.KeyswitchDecompositions[bestKsIndex]

		state.BestSolution = &optatomicpattern.Solution{
			InputLweDimension:           inputLweDimension,
			InternalKsOutputLweDimension: internalDim,
			KsDecompositionLevelCount:    ksDecomp.Level,
			KsDecompositionBaseLog:       ksDecomp.Log2Base,
			GlwePolynomialSize:           glweParams.PolynomialSize(),
			GlweDimension:                glweParams.GlweDimension,
			BrDecompositionLevelCount:    brDecomp.Level,
			BrDecompositionBaseLog:       brDecomp.Log2Base,
			Complexity:                   bestComplexity,
			PError:                       bestPError,
			GlobalPError: circuit.GlobalPError(
				inputNoiseOut, bestBrNoise, bestKsNoise, noiseModulusSwitching, consts.Kappa),
			NoiseMax: bestVariance,
		}
	}
}

// Optimize is the DAG-mode public entry point of §4.F: it finds the
// lowest-complexity feasible parametrization of the whole circuit,
// minimizing (complexity, p_error) lexicographically as DAG mode
// requires.
func Optimize(circuit *dag.OperationDag, cfg config.Config, searchSpace config.SearchSpace) (optatomicpattern.OptimizationState, error) {
	if err := cfg.Validate(); err != nil {
		return optatomicpattern.OptimizationState{}, fmt.Errorf("solokey: %w", err)
	}

	modulusLogBits := cfg.CiphertextModulusLog
	noiseConfig := analyze.NoiseBoundConfig{
		SecurityLevel:                     cfg.SecurityLevel,
		MaximumAcceptableErrorProbability: cfg.NoiseBound.MaximumAcceptableErrorProbability,
		CiphertextModulusLog:              modulusLogBits,
	}
	analyzed := analyze.Analyze(circuit, noiseConfig)

	minPrecision := analyzed.OutPrecisions[0]
	for _, p := range analyzed.OutPrecisions {
		if p < minPrecision {
			minPrecision = p
		}
	}

	safeVariance, err := errorbound.SafeVarianceBound2PAdBits(uint64(minPrecision), modulusLogBits, cfg.NoiseBound.MaximumAcceptableErrorProbability)
	if err != nil {
		return optatomicpattern.OptimizationState{}, fmt.Errorf("solokey: %w", err)
	}
	kappa := errorbound.SigmaScaleOfErrorProbability(cfg.NoiseBound.MaximumAcceptableErrorProbability)

	consts := &optatomicpattern.DecompositionConsts{
		Cfg:                       cfg,
		Kappa:                     kappa,
		SumSize:                   0,         // superseded by circuit.ComplexityCost
		NoiseFactor:               math.NaN(), // superseded by the circuit's own lut coefficients
		KeyswitchDecompositions:   searchSpace.KsDecompositionPool,
		BlindRotateDecompositions: searchSpace.BrDecompositionPool,
		SafeVariance:              safeVariance,
	}

	state := optatomicpattern.OptimizationState{
		CountDomain: len(searchSpace.GlweDimensions) * len(searchSpace.Log2PolynomialSizes) *
			len(searchSpace.InternalLweDimensions) * len(consts.KeyswitchDecompositions) * len(consts.BlindRotateDecompositions),
	}

	for _, glweDim := range searchSpace.GlweDimensions {
		for _, glweLogPolySize := range searchSpace.Log2PolynomialSizes {
			glwePolySize := uint64(1) << glweLogPolySize
			glweParams, err := parameters.NewGlweParameters(glweLogPolySize, glweDim)
			if err != nil {
				return optatomicpattern.OptimizationState{}, fmt.Errorf("solokey: %w", err)
			}

			for _, internalDim := range searchSpace.InternalLweDimensions {
				noiseModulusSwitching := noiseap.EstimateModulusSwitchingNoiseWithBinaryKey(
					internalDim, glwePolySize, modulusLogBits).Variance()
				if cuts && !analyzed.Feasible(0, 0, 0, noiseModulusSwitching) {
					// assumed non-decreasing in internal_dim (§3/§9)
					break
				}
				updateBestSolutionWithBestDecompositions(&state, consts, analyzed, internalDim, glweParams, noiseModulusSwitching)
				if analyzed.NbLuts == 0 && state.BestSolution != nil {
					return state, nil
				}
			}
		}
	}

	if sol := state.BestSolution; sol != nil {
		if sol.PError < 0 || sol.PError > 1 {
			panic("solokey: p_error out of [0, 1]")
		}
		if sol.GlobalPError < 0 || sol.GlobalPError > 1 {
			panic("solokey: global_p_error out of [0, 1]")
		}
		if sol.PError > cfg.NoiseBound.MaximumAcceptableErrorProbability*relEpsilonProba {
			panic("solokey: best solution exceeds the configured error-probability bound")
		}
		if sol.PError > sol.GlobalPError*relEpsilonProba {
			panic("solokey: p_error exceeds global_p_error")
		}
	}

	return state, nil
}

// OptimizeV0 builds the synthetic two-dot, two-LUT reference circuit
// (§4.F) and optimizes it, halving the resulting complexity to report
// the cost of a single atomic pattern rather than the two-lut synthetic
// circuit used to derive it — carried over verbatim in meaning from the
// reference's optimize_v0.
func OptimizeV0(sumSize, precision uint64, cfg config.Config, noiseFactor float64, searchSpace config.SearchSpace) (optatomicpattern.OptimizationState, error) {
	const sameScaleManp = 0.0
	outShape := dag.Number()
	complexity := dag.AdditionComplexity * dag.LevelledComplexity(sumSize)

	circuit := dag.New()
	input1 := circuit.AddInput(dag.Precision(precision), outShape)
	dot1 := circuit.AddLevelledOp([]dag.NodeID{input1}, complexity, sameScaleManp, outShape, "dot")
	lut1 := circuit.AddLut(dot1, dag.UnknownFunctionTable, dag.Precision(precision))
	// manp is the already-squared noise-growth factor (AddDot sums w²,
	// analyze.go applies it linearly once), so the atomic path's
	// noiseFactor² scaling of input-scaled-LUT noise needs noiseFactor
	// squared here too, not noiseFactor itself.
	dot2 := circuit.AddLevelledOp([]dag.NodeID{lut1}, complexity, noiseFactor*noiseFactor, outShape, "dot")
	_ = circuit.AddLut(dot2, dag.UnknownFunctionTable, dag.Precision(precision))

	state, err := Optimize(circuit, cfg, searchSpace)
	if err != nil {
		return optatomicpattern.OptimizationState{}, fmt.Errorf("solokey: %w", err)
	}
	if state.BestSolution != nil {
		state.BestSolution.Complexity /= 2.0
	}
	return state, nil
}
