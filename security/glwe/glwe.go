// Package glwe provides the security-variance lookup the optimizer
// treats as oracle #4 of §4.A: the minimal noise variance a GLWE
// ciphertext of given parameters must carry to reach a target security
// level. spec.md explicitly scopes the real security table out ("this
// spec does not describe ... the security table lookup"); this package
// is a closed-form stand-in with the right monotonicity (larger
// dimension lowers the minimal variance; the minimal standard deviation
// is a fixed fraction of the modulus, so the variance itself grows with
// the square of the modulus) so the outer search and combiner can be
// exercised end to end.
package glwe

import (
	"math"

	"github.com/tuneinsight/concrete-optimizer/dispersion"
	"github.com/tuneinsight/concrete-optimizer/parameters"
)

// MinimalVariance returns the minimal noise variance a GLWE ciphertext
// under glweParams must carry, at the given ciphertext modulus width
// and target security level, to meet that security level. This is
// oracle #4 of §4.A (minimal_variance_glwe).
func MinimalVariance(glweParams parameters.GlweParameters, modulusLogBits, securityLevel uint64) dispersion.Variance {
	dimension := float64(glweParams.InputLweDimension())
	modulus := math.Ldexp(1, int(modulusLogBits))

	// Larger effective LWE dimension (k*N) tolerates a smaller relative
	// noise at a fixed security level; higher target security demands
	// a larger relative noise. log2(sigma/modulus) decreases (more
	// negative) as dimension grows and as securityLevel shrinks,
	// matching the real table's monotonicity without claiming
	// numerical equivalence with it (spec.md §1 non-goals).
	log2RelativeSigma := -dimension / (2.0 * float64(securityLevel))
	if log2RelativeSigma > -1 {
		log2RelativeSigma = -1
	}
	relativeSigma := math.Exp2(log2RelativeSigma)
	sigma := relativeSigma * modulus
	return dispersion.Variance(sigma * sigma)
}
