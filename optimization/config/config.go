// Package config carries the search-wide settings of §6: the
// ciphertext modulus width, the target security level, the error-bound
// policy, the complexity model to use, and the decomposition pools to
// search over.
package config

import (
	"fmt"

	"github.com/tuneinsight/concrete-optimizer/complexity"
	"github.com/tuneinsight/concrete-optimizer/pareto"
	"github.com/tuneinsight/concrete-optimizer/parameters"
)

// NoiseBoundConfig is the error-bound policy of §4.A.6: the maximum
// acceptable per-pattern decryption failure probability, and the
// ciphertext modulus width the safe-variance bound is computed under.
type NoiseBoundConfig struct {
	MaximumAcceptableErrorProbability float64
	CiphertextModulusLog              uint64
}

// SearchSpace is the set of candidate values the outer search (§4.C/D)
// scans over: the GLWE polynomial-size/dimension pairs, the internal
// LWE dimensions, and the two decomposition pools.
type SearchSpace struct {
	GlweDimensions        []uint64
	Log2PolynomialSizes   []uint64
	InternalLweDimensions []uint64
	KsDecompositionPool   []parameters.DecompositionParameters
	BrDecompositionPool   []parameters.DecompositionParameters
}

// DefaultSearchSpace returns the search space the reference
// implementation scans by default: GLWE dimensions 1-2, the full
// log2_polynomial_size range of §3, internal LWE dimensions on a
// coarse grid in steps of 8 strictly above MinInternalLweDimension up to
// 2*MinInternalLweDimension, and the package-default decomposition pools.
func DefaultSearchSpace() SearchSpace {
	log2PolySizes := make([]uint64, 0, parameters.MaxLog2PolynomialSize-parameters.MinLog2PolynomialSize)
	for n := uint64(parameters.MinLog2PolynomialSize); n < parameters.MaxLog2PolynomialSize; n++ {
		log2PolySizes = append(log2PolySizes, n)
	}

	internalDims := make([]uint64, 0)
	for d := uint64(parameters.MinInternalLweDimension) + 8; d <= 2*parameters.MinInternalLweDimension; d += 8 {
		internalDims = append(internalDims, d)
	}

	return SearchSpace{
		GlweDimensions:        []uint64{1, 2},
		Log2PolynomialSizes:   log2PolySizes,
		InternalLweDimensions: internalDims,
		KsDecompositionPool:   pareto.KS_BL,
		BrDecompositionPool:   pareto.BR_BL,
	}
}

// Config is the complete search configuration of §6: every value the
// combiner and outer search need beyond the circuit itself.
type Config struct {
	SecurityLevel        uint64
	CiphertextModulusLog uint64
	NoiseBound           NoiseBoundConfig
	ComplexityModel      complexity.Model
	Space                SearchSpace

	// ProcessingUnit names the complexity model's target, informational
	// only: the optimizer does not branch on it, matching the
	// reference's ProcessingUnit being carried for the complexity
	// model's benefit alone.
	ProcessingUnit string

	// CheckSelfConsistency gates the internal/selfcheck recomputation
	// pass (§9's "sanity self-check mode"); off by default since it
	// roughly doubles the work of the search it audits.
	CheckSelfConsistency bool
}

// Validate checks the invariants Config's own fields must satisfy
// independently of any particular search run.
func (c Config) Validate() error {
	if c.SecurityLevel == 0 {
		return fmt.Errorf("config: security_level must be > 0")
	}
	if c.CiphertextModulusLog == 0 {
		return fmt.Errorf("config: ciphertext_modulus_log must be > 0")
	}
	if c.NoiseBound.MaximumAcceptableErrorProbability <= 0 || c.NoiseBound.MaximumAcceptableErrorProbability >= 1 {
		return fmt.Errorf("config: maximum_acceptable_error_probability must be in (0, 1), got %v",
			c.NoiseBound.MaximumAcceptableErrorProbability)
	}
	if c.ComplexityModel == nil {
		return fmt.Errorf("config: complexity_model must not be nil")
	}
	if len(c.Space.KsDecompositionPool) == 0 || len(c.Space.BrDecompositionPool) == 0 {
		return fmt.Errorf("config: decomposition pools must not be empty")
	}
	return nil
}

// Default returns a Config ready to drive OptimizeOne/Optimize without
// further tuning: the package default search space, the CPU complexity
// model, and a 128-bit security level.
func Default() Config {
	return Config{
		SecurityLevel:        128,
		CiphertextModulusLog: pareto.DefaultModulusLogBits,
		NoiseBound: NoiseBoundConfig{
			MaximumAcceptableErrorProbability: 1e-9,
			CiphertextModulusLog:              pareto.DefaultModulusLogBits,
		},
		ComplexityModel: complexity.NewCpuComplexity(),
		Space:           DefaultSearchSpace(),
		ProcessingUnit:  "cpu",
	}
}
