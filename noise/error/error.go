// Package error implements the two probability-side oracles of §4.A.6:
// turning a target decryption-failure-probability bound into a
// variance bound and a sigma-scale, and turning a sigma-scale back into
// a failure probability (the Φ̄ tail). The reference implementation
// (concrete_commons / noise_estimator::error) keeps these as oracle
// calls too; only the Gaussian-tail evaluation itself is implemented
// here, via arbitrary-precision erfc, since both SafeVarianceBound and
// SigmaScaleOfErrorProbability are defined purely in terms of it.
package errorbound

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// bigPrecisionBits is the working precision for the arbitrary-precision
// erfc evaluation. p_error targets as low as 1e-12 lose most of their
// significant digits under float64 math.Erfc; ALTree/bigfloat's
// arbitrary-precision erfc keeps the tail accurate at the scales this
// optimizer searches.
const bigPrecisionBits = 128

// ErrorProbabilityOfSigmaScale returns the right tail of the standard
// normal distribution at sigmaScale standard deviations,
// Φ̄(sigmaScale) = erfc(sigmaScale / sqrt(2)) / 2. This is the oracle
// that turns a combiner candidate's sigma-scale into its p_error.
func ErrorProbabilityOfSigmaScale(sigmaScale float64) float64 {
	if sigmaScale <= 0 {
		return 1
	}
	z := new(big.Float).SetPrec(bigPrecisionBits).SetFloat64(sigmaScale / math.Sqrt2)
	tail := bigfloat.Erfc(z)
	half := new(big.Float).SetPrec(bigPrecisionBits).Quo(tail, big.NewFloat(2))
	p, _ := half.Float64()
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// SigmaScaleOfErrorProbability inverts ErrorProbabilityOfSigmaScale by
// bisection (no closed-form inverse erfc is exposed by bigfloat): it
// returns kappa such that ErrorProbabilityOfSigmaScale(kappa) ==
// pErrorBound. This is oracle #6's "kappa" (the inverse-CDF scale
// mapping a target failure probability to a number of standard
// deviations).
func SigmaScaleOfErrorProbability(pErrorBound float64) float64 {
	lo, hi := 0.0, 40.0
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if ErrorProbabilityOfSigmaScale(mid) > pErrorBound {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// SafeVarianceBound2PAdBits returns the maximum total noise variance
// at which a value encoded at the given precision (plus one padding
// bit, per the "2-padbits" encoding the reference uses), under a
// ciphertext modulus of width modulusLogBits, keeps the decryption
// failure probability at or below pErrorBound. This is oracle #6's
// safe_variance_bound.
func SafeVarianceBound2PAdBits(precision, modulusLogBits uint64, pErrorBound float64) (float64, error) {
	if precision == 0 {
		return 0, fmt.Errorf("noise/error: precision must be > 0")
	}
	if modulusLogBits < precision+2 {
		return 0, fmt.Errorf("noise/error: modulus_log_bits %d too small for precision %d", modulusLogBits, precision)
	}
	kappa := SigmaScaleOfErrorProbability(pErrorBound)
	halfInterval := math.Ldexp(1, int(modulusLogBits)-int(precision)-2)
	sigma := halfInterval / kappa
	return sigma * sigma, nil
}
