// Package dispersion provides small unit-bearing float types for the
// variances and standard deviations that flow through the optimizer's
// noise oracles.
package dispersion

import "math"

// DispersionParameter is implemented by quantities that carry a
// variance, regardless of how they are represented internally.
type DispersionParameter interface {
	Variance() float64
	StdDev() float64
}

// Variance is a positive variance expressed in the native units of the
// ciphertext modulus (not normalized). Noise oracles (noise_estimator
// in the original) return values of this type.
type Variance float64

// Variance returns v itself, satisfying DispersionParameter.
func (v Variance) Variance() float64 { return float64(v) }

// StdDev returns the standard deviation associated with v.
func (v Variance) StdDev() float64 { return math.Sqrt(float64(v)) }

// StandardDeviation is a dispersion expressed directly as a standard
// deviation rather than a variance.
type StandardDeviation float64

// Variance returns the squared standard deviation.
func (s StandardDeviation) Variance() float64 { return float64(s) * float64(s) }

// StdDev returns s itself.
func (s StandardDeviation) StdDev() float64 { return float64(s) }
