// Package lwe mirrors security/glwe for plain LWE keys: it provides
// the minimal noise variance an LWE ciphertext of a given dimension
// must carry to reach a target security level, used when deriving the
// key-switch key's own variance (the "variance_ksk" input to oracle #2).
package lwe

import (
	"math"

	"github.com/tuneinsight/concrete-optimizer/dispersion"
)

// MinimalVariance returns the minimal noise variance an LWE ciphertext
// of the given dimension, under a ciphertext modulus of width
// modulusLogBits, must carry to reach securityLevel. Same closed-form
// stand-in shape as security/glwe.MinimalVariance (spec.md §1 treats
// the real security table as an oracle); kept as a distinct, simpler
// curve in dimension alone since LWE keys carry no ring structure.
func MinimalVariance(lweDimension, modulusLogBits, securityLevel uint64) dispersion.Variance {
	modulus := math.Ldexp(1, int(modulusLogBits))

	log2RelativeSigma := -float64(lweDimension) / (2.0 * float64(securityLevel))
	if log2RelativeSigma > -1 {
		log2RelativeSigma = -1
	}
	relativeSigma := math.Exp2(log2RelativeSigma)
	sigma := relativeSigma * modulus
	return dispersion.Variance(sigma * sigma)
}
