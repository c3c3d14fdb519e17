// Package complexity provides the pluggable analytical cost model
// oracle (§4.A.5): ks_complexity and pbs_complexity, plus the
// multi-operation atomic-pattern cost used by the self-check pass.
// spec.md treats these formulas as external collaborators; CpuComplexity
// is the one concrete, closed-form model this module ships, mirroring
// the reference implementation's computing_cost::cpu::CpuComplexity.
package complexity

import "github.com/tuneinsight/concrete-optimizer/parameters"

// Model is implemented by pluggable analytical cost models. A Config
// (§6) carries one of these; the optimizer never inspects its
// internals, only calls it.
type Model interface {
	// KsComplexity returns the analytical cost of one key-switch under
	// ksParams at the given ciphertext modulus width.
	KsComplexity(ksParams parameters.KeyswitchParameters, modulusLogBits uint64) float64
	// PbsComplexity returns the analytical cost of one programmable
	// bootstrap under pbsParams at the given ciphertext modulus width.
	PbsComplexity(pbsParams parameters.PbsParameters, modulusLogBits uint64) float64
}

// CpuComplexity is a reference analytical cost model for a scalar CPU
// implementation: the key-switch cost grows with the product of input
// dimension, decomposition level count and output dimension (one
// external product term per decomposed digit); the bootstrap cost
// grows with internal dimension times level count times the GLWE
// polynomial multiplication cost (a polynomial_size*log(polynomial_size)
// NTT-style term per digit, times (glwe_dimension+1)^2 ring
// multiplications per CMUX).
type CpuComplexity struct {
	// NttCostPerCoefficient approximates the cost, in elementary
	// operations, of one coefficient's worth of a polynomial-size NTT
	// butterfly; defaults to 1 when zero (see NewCpuComplexity).
	NttCostPerCoefficient float64
}

// NewCpuComplexity returns the default CpuComplexity model, matching
// the reference's CpuComplexity::default().
func NewCpuComplexity() CpuComplexity {
	return CpuComplexity{NttCostPerCoefficient: 1}
}

func (c CpuComplexity) nttCost() float64 {
	if c.NttCostPerCoefficient == 0 {
		return 1
	}
	return c.NttCostPerCoefficient
}

// KsComplexity implements Model.
func (c CpuComplexity) KsComplexity(ksParams parameters.KeyswitchParameters, _ uint64) float64 {
	level := float64(ksParams.KsDecompositionParam.Level)
	inputDim := float64(ksParams.InputLweDimension)
	outputDim := float64(ksParams.OutputLweDimension)
	return inputDim * level * outputDim
}

// PbsComplexity implements Model.
func (c CpuComplexity) PbsComplexity(pbsParams parameters.PbsParameters, _ uint64) float64 {
	internalDim := float64(pbsParams.InternalLweDimension)
	level := float64(pbsParams.BrDecompositionParam.Level)
	polySize := float64(pbsParams.OutputGlweParams.PolynomialSize())
	glweDimPlusOne := float64(pbsParams.OutputGlweParams.GlweDimension + 1)

	nttCost := polySize * log2(polySize) * c.nttCost()
	cmuxCost := glweDimPlusOne * glweDimPlusOne * nttCost
	return internalDim * level * cmuxCost
}

func log2(x float64) float64 {
	if x <= 0 {
		return 0
	}
	n := 0.0
	for x > 1 {
		x /= 2
		n++
	}
	return n
}

// AtomicPatternComplexity returns the total complexity of one atomic
// pattern (dot-product of size sumSize, then key-switch, then
// bootstrap) under apParams, matching the reference
// atomic_pattern_complexity helper used by the CHECKS-gated
// self-check.
func AtomicPatternComplexity(model Model, sumSize uint64, apParams parameters.AtomicPatternParameters, modulusLogBits uint64) float64 {
	complexityMultisum := float64(sumSize) * float64(apParams.InputLweDimension)

	ksParams := parameters.KeyswitchParameters{
		InputLweDimension:   apParams.InputLweDimension,
		OutputLweDimension:  apParams.InternalLweDimension,
		KsDecompositionParam: apParams.KsDecompositionParam,
	}
	pbsParams := parameters.PbsParameters{
		InternalLweDimension: apParams.InternalLweDimension,
		BrDecompositionParam: apParams.BrDecompositionParam,
		OutputGlweParams:     apParams.OutputGlweParams,
	}

	return complexityMultisum + model.KsComplexity(ksParams, modulusLogBits) + model.PbsComplexity(pbsParams, modulusLogBits)
}
