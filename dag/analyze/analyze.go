// Package analyze implements the DAG analyzer adaptor of §4.E: it
// walks an unparametrized dag.OperationDag once, tracking for every
// node a symbolic noise expression (a coefficient on the raw input
// noise basis, plus a coefficient on "one bootstrap's worth of
// noise"), and exposes the oracle surface the optimizer's shared
// kernel needs to treat a whole circuit the same way it treats a
// single atomic pattern: Feasible, PeekPError, GlobalPError,
// ComplexityCost, NbLuts, HasOnlyLutsWithInputs.
//
// spec.md's non-goals exclude the real analyzer's internals; this one
// is a closed-form stand-in sufficient to drive §8's invariants and
// scenarios (it is exact, not approximate, for the additive/linear
// noise-propagation model it implements).
package analyze

import (
	"math"

	"github.com/tuneinsight/concrete-optimizer/dag"
	"github.com/tuneinsight/concrete-optimizer/dispersion"
	errorbound "github.com/tuneinsight/concrete-optimizer/noise/error"
)

// NoiseBoundConfig carries the security and error-bound parameters the
// analyzer needs to compute per-precision safe-variance bounds.
type NoiseBoundConfig struct {
	SecurityLevel                     uint64
	MaximumAcceptableErrorProbability float64
	CiphertextModulusLog              uint64
}

// constraintPoint is one place in the circuit whose accumulated noise
// must stay below a safe-variance bound: either a Lut's input or a
// circuit output.
type constraintPoint struct {
	coeffIn      float64 // multiplier on the per-candidate input noise basis
	coeffLut     float64 // multiplier on the per-candidate one-bootstrap noise basis
	multiplicity uint64  // number of independent identically-distributed lanes this point represents
	safeVariance float64 // precomputed from this point's own precision
}

// OperationDag is the parametrized adaptor: an analyzed circuit ready
// to be optimized by the shared atomic-pattern kernel (§4.C/D reused
// in DAG mode).
type OperationDag struct {
	NbLuts                uint64
	HasOnlyLutsWithInputs bool
	OutPrecisions         []dag.Precision

	totalLevelledUnits float64 // sum of per-lane levelled-op cost, independent of input_lwe_dimension
	constraints        []constraintPoint
	kappa              float64
}

// Analyze walks dag and returns its parametrized adaptor.
func Analyze(d *dag.OperationDag, cfg NoiseBoundConfig) *OperationDag {
	n := d.NodeCount()
	coeffIn := make([]float64, n)
	coeffLut := make([]float64, n)

	result := &OperationDag{HasOnlyLutsWithInputs: true}
	result.kappa = errorbound.SigmaScaleOfErrorProbability(cfg.MaximumAcceptableErrorProbability)

	safeVarianceCache := map[dag.Precision]float64{}
	safeVarianceFor := func(precision dag.Precision) float64 {
		if v, ok := safeVarianceCache[precision]; ok {
			return v
		}
		v, err := errorbound.SafeVarianceBound2PAdBits(uint64(precision), cfg.CiphertextModulusLog, cfg.MaximumAcceptableErrorProbability)
		if err != nil {
			v = math.Inf(1)
		}
		safeVarianceCache[precision] = v
		return v
	}

	for id := 0; id < n; id++ {
		view := d.Node(dag.NodeID(id))
		switch view.Kind {
		case dag.KindInput:
			coeffIn[id] = 1
			coeffLut[id] = 0

		case dag.KindLevelledOp:
			var cin, clut float64
			for _, in := range view.Inputs {
				cin += coeffIn[in]
				clut += coeffLut[in]
			}
			coeffIn[id] = view.Manp * cin
			coeffLut[id] = view.Manp * clut
			result.totalLevelledUnits += float64(view.LevelledCost) * float64(view.Shape.Size())

		case dag.KindLut:
			in := view.Inputs[0]
			result.constraints = append(result.constraints, constraintPoint{
				coeffIn:      coeffIn[in],
				coeffLut:     coeffLut[in],
				multiplicity: view.Shape.Size(),
				safeVariance: safeVarianceFor(view.Precision),
			})
			if coeffLut[in] != 0 {
				result.HasOnlyLutsWithInputs = false
			}
			result.NbLuts += view.Shape.Size()

			coeffIn[id] = 0
			coeffLut[id] = 1
		}

		if d.IsOutput(dag.NodeID(id)) {
			result.constraints = append(result.constraints, constraintPoint{
				coeffIn:      coeffIn[id],
				coeffLut:     coeffLut[id],
				multiplicity: view.Shape.Size(),
				safeVariance: safeVarianceFor(view.Precision),
			})
			result.OutPrecisions = append(result.OutPrecisions, view.Precision)
		}
	}

	if len(result.constraints) == 0 {
		// a dag with no nodes at all has nothing to constrain; make the
		// zero value harmless rather than a divide-by-zero later.
		result.constraints = []constraintPoint{{safeVariance: math.Inf(1), multiplicity: 1}}
		result.OutPrecisions = []dag.Precision{1}
	}

	return result
}

// ComplexityCost returns the total analytical complexity of the whole
// circuit given inputLweDimension (the dimension every levelled op
// operates on) and oneLutCost (the cost of a single bootstrap at the
// candidate outer point). Linear in oneLutCost, per §4.E.
func (d *OperationDag) ComplexityCost(inputLweDimension uint64, oneLutCost float64) float64 {
	return d.totalLevelledUnits*float64(inputLweDimension) + float64(d.NbLuts)*oneLutCost
}

func (d *OperationDag) pointNoise(cp constraintPoint, inNoise, lutNoise float64) float64 {
	return cp.coeffIn*inNoise + cp.coeffLut*lutNoise
}

// Feasible reports whether every constraint point in the circuit stays
// within its own safe-variance bound, given the per-candidate noise
// bases: inNoise (the encryption noise of a fresh input ciphertext),
// brNoise+ksNoise+modSwitchNoise (the noise contributed by one
// bootstrap, summed as in the atomic-pattern combiner).
func (d *OperationDag) Feasible(inNoise, brNoise, ksNoise, modSwitchNoise float64) bool {
	lutNoise := brNoise + ksNoise + modSwitchNoise
	for _, cp := range d.constraints {
		if d.pointNoise(cp, inNoise, lutNoise) > cp.safeVariance {
			return false
		}
	}
	return true
}

// PeekPError returns the local failure probability and noise variance
// of the worst (binding) constraint point in the circuit, for the
// given per-candidate noise bases and kappa. "Worst" is measured by
// p_error itself, not by raw noise: constraint points carry their own
// safeVariance (one per precision), so the point with the largest
// noise is not necessarily the point with the largest failure
// probability — a high-precision point can be binding at far lower
// noise than a low-precision one. GlobalPError below already weighs
// each point by its own safeVariance; PeekPError must agree with it.
func (d *OperationDag) PeekPError(inNoise, brNoise, ksNoise, modSwitchNoise, kappa float64) (pError, noiseMax float64) {
	lutNoise := brNoise + ksNoise + modSwitchNoise
	worstPError := -1.0
	worstNoise := 0.0
	for _, cp := range d.constraints {
		v := d.pointNoise(cp, inNoise, lutNoise)
		sigma := dispersion.Variance(cp.safeVariance).StdDev() * kappa
		sigmaScale := sigma / dispersion.Variance(v).StdDev()
		p := errorbound.ErrorProbabilityOfSigmaScale(sigmaScale)
		if p > worstPError {
			worstPError = p
			worstNoise = v
		}
	}
	return worstPError, worstNoise
}

// GlobalPError aggregates the per-constraint-point local failure
// probabilities (each raised to its lane multiplicity, since each lane
// fails independently) into the whole-circuit failure probability:
// 1 - Product(1 - p_i)^multiplicity_i.
func (d *OperationDag) GlobalPError(inNoise, brNoise, ksNoise, modSwitchNoise, kappa float64) float64 {
	lutNoise := brNoise + ksNoise + modSwitchNoise
	logSuccess := 0.0
	for _, cp := range d.constraints {
		v := d.pointNoise(cp, inNoise, lutNoise)
		sigma := dispersion.Variance(cp.safeVariance).StdDev() * kappa
		sigmaScale := sigma / dispersion.Variance(v).StdDev()
		p := errorbound.ErrorProbabilityOfSigmaScale(sigmaScale)
		success := 1 - p
		if success <= 0 {
			return 1
		}
		logSuccess += float64(cp.multiplicity) * math.Log1p(-p)
	}
	return -math.Expm1(logSuccess)
}
