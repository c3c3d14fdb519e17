// Package atomicpattern provides the noise oracles of §4.A (1-3):
// variance_bootstrap, variance_keyswitch, modulus_switching_noise, plus
// the variance_ksk helper and the maximal_noise reference recomposition
// used by the CHECKS-gated self-check pass. These are closed-form
// stand-ins exercising the required monotonicity (§9): bootstrap and
// key-switch noise decrease as their decomposition strengthens (more
// levels, smaller base — pareto.buildPool holds level*base close to the
// modulus width, so a bigger level forces a proportionally smaller base),
// and modulus-switching noise is non-decreasing in internal LWE
// dimension.
package atomicpattern

import (
	"math"

	"github.com/tuneinsight/concrete-optimizer/dispersion"
	"github.com/tuneinsight/concrete-optimizer/parameters"
	"github.com/tuneinsight/concrete-optimizer/security/lwe"
)

// VarianceBootstrap is oracle #1: the noise variance contributed by one
// programmable bootstrap under pbsParams, given the minimal GLWE
// bootstrap-key variance varianceBsk.
func VarianceBootstrap(pbsParams parameters.PbsParameters, modulusLogBits uint64, varianceBsk dispersion.Variance) dispersion.Variance {
	level := float64(pbsParams.BrDecompositionParam.Level)
	base := float64(pbsParams.BrDecompositionParam.Log2Base)
	internalDim := float64(pbsParams.InternalLweDimension)
	polySize := float64(pbsParams.OutputGlweParams.PolynomialSize())
	glweDim := float64(pbsParams.OutputGlweParams.GlweDimension)

	// modulusLogBits is unused here: the oracle only needs the per-pool
	// (base, level) pair, not the absolute modulus width.

	// Per-digit gadget decomposition amplifies the bootstrap-key noise by
	// up to B^2/12 = 2^(2*base)/12 (uniform rounding over a base-B digit),
	// summed over the level digits and the external-product's dimensions.
	// pareto.buildPool holds base*level close to the modulus width, so as
	// level climbs and base is forced down in lockstep, 2^(2*base) shrinks
	// quadratically faster than the linear level factor grows, and this
	// term dominates the total and drives it down.
	keyTerm := internalDim * (glweDim + 1) * polySize * level * math.Exp2(2*base) / 12.0 * float64(varianceBsk)

	// What level digits of base base leave unrepresented is a residual of
	// relative size 2^(-2*base*level); it only ever shrinks as the
	// decomposition's covered bit budget (base*level) grows, so it can
	// never overturn the keyTerm's monotonicity, only add a bit of floor.
	decompositionResidual := internalDim * (glweDim + 1) * polySize * math.Exp2(-2*base*level) / 12.0

	return dispersion.Variance(keyTerm + decompositionResidual)
}

// VarianceKeyswitch is oracle #2: the noise variance contributed by one
// key-switch under ksParams, given the minimal key-switch-key variance
// varianceKsk.
func VarianceKeyswitch(ksParams parameters.KeyswitchParameters, modulusLogBits uint64, varianceKsk dispersion.Variance) dispersion.Variance {
	level := float64(ksParams.KsDecompositionParam.Level)
	base := float64(ksParams.KsDecompositionParam.Log2Base)
	inputDim := float64(ksParams.InputLweDimension)

	// Same shape as VarianceBootstrap's keyTerm, one dimension instead of
	// (glweDim+1)*polySize worth of gadget rows.
	keyTerm := inputDim * level * math.Exp2(2*base) / 12.0 * float64(varianceKsk)
	decompositionResidual := inputDim * math.Exp2(-2*base*level) / 12.0

	return dispersion.Variance(keyTerm + decompositionResidual)
}

// VarianceKsk returns the minimal key-switch-key variance for a
// key-switch whose output lands on an LWE key of internalDim, at the
// given modulus width and target security level.
func VarianceKsk(internalDim, modulusLogBits, securityLevel uint64) dispersion.Variance {
	return lwe.MinimalVariance(internalDim, modulusLogBits, securityLevel)
}

// EstimateModulusSwitchingNoiseWithBinaryKey is oracle #3: the fixed
// noise incurred by rounding the ciphertext modulus before bootstrap,
// for a binary-key LWE sample of dimension internalDim being
// sample-extracted into a GLWE ring of size polySize. Non-decreasing in
// internalDim, as §3/§9 require.
func EstimateModulusSwitchingNoiseWithBinaryKey(internalDim, polySize, modulusLogBits uint64) dispersion.Variance {
	modulus := math.Ldexp(1, int(modulusLogBits))
	// Rounding error variance is ~ dimension/48 in units of (modulus/poly_size)^2,
	// the standard small-angle approximation for modulus switching.
	roundingStep := modulus / float64(polySize)
	variance := float64(internalDim) / 48.0 * roundingStep * roundingStep
	return dispersion.Variance(variance)
}

// MaximalNoise recomposes the total noise of an atomic pattern from its
// parameters alone (input noise + key-switch + modulus-switching, where
// inputNoise is the already-scaled bootstrap output noise and no separate
// bootstrap term is added), used only by the CHECKS-gated self-check to recompute an
// accepted candidate independently of the cut-driven search path.
func MaximalNoise(inputNoise dispersion.Variance, apParams parameters.AtomicPatternParameters, modulusLogBits, securityLevel uint64) dispersion.Variance {
	ksParams := parameters.KeyswitchParameters{
		InputLweDimension:    apParams.InputLweDimension,
		OutputLweDimension:   apParams.InternalLweDimension,
		KsDecompositionParam: apParams.KsDecompositionParam,
	}
	varianceKsk := VarianceKsk(uint64(apParams.InternalLweDimension), modulusLogBits, securityLevel)
	noiseKs := VarianceKeyswitch(ksParams, modulusLogBits, varianceKsk)

	noiseModSwitch := EstimateModulusSwitchingNoiseWithBinaryKey(
		uint64(apParams.InternalLweDimension),
		apParams.OutputGlweParams.PolynomialSize(),
		modulusLogBits,
	)

	return dispersion.Variance(float64(inputNoise) + float64(noiseKs) + float64(noiseModSwitch))
}
