// Package pareto provides the default gadget-decomposition pools
// (key-switch and blind-rotate) consumed by the optimizer. In the
// reference implementation these are precomputed constant tables
// (crate::pareto::{KS_BL, BR_BL}); here they are generated once at
// package init from the same "one entry per level count, with the base
// log chosen to spend the available modulus bits" rule the reference
// tables embody, then validated to be sorted by increasing level count
// (the pool's complexity proxy) exactly as §3 requires of any
// externally supplied decomposition pool.
package pareto

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/tuneinsight/concrete-optimizer/parameters"
)

// MaxPoolSize is the upper bound on the number of entries in a
// decomposition pool, enforced by the Pareto builder (§4.B).
const MaxPoolSize = 63

// DefaultModulusLogBits is the ciphertext modulus bit-width the default
// pools are tuned for (matches Config.CiphertextModulusLog's common
// default of 64).
const DefaultModulusLogBits = 64

// KS_BL is the default key-switch decomposition pool, sorted by
// increasing level count (and therefore, under the complexity model,
// by increasing analytical complexity).
var KS_BL = buildPool(DefaultModulusLogBits, MaxPoolSize-1) //nolint:revive,stylecheck // matches reference table name

// BR_BL is the default blind-rotate (bootstrap) decomposition pool,
// sorted the same way as KS_BL.
var BR_BL = buildPool(DefaultModulusLogBits, MaxPoolSize-1) //nolint:revive,stylecheck // matches reference table name

func buildPool(modulusLogBits, maxLevel uint64) []parameters.DecompositionParameters {
	pool := make([]parameters.DecompositionParameters, 0, maxLevel)
	for level := uint64(1); level <= maxLevel; level++ {
		base := modulusLogBits / level
		if base < 1 {
			break // no viable base log remains for this many levels
		}
		pool = append(pool, parameters.DecompositionParameters{Log2Base: base, Level: level})
	}
	if len(pool) == 0 || len(pool) > MaxPoolSize {
		panic(fmt.Sprintf("pareto: generated pool of invalid size %d", len(pool)))
	}
	if !slices.IsSortedFunc(pool, func(a, b parameters.DecompositionParameters) bool {
		return a.Level < b.Level
	}) {
		panic("pareto: generated pool is not sorted by increasing level")
	}
	return pool
}

// NewCustomPool builds a decomposition pool for a non-default
// ciphertext modulus width, validated the same way as the package
// defaults. Callers that need a SearchSpace tuned to a non-64-bit
// modulus should use this instead of KS_BL/BR_BL directly.
func NewCustomPool(modulusLogBits uint64) ([]parameters.DecompositionParameters, error) {
	if modulusLogBits == 0 {
		return nil, fmt.Errorf("pareto: modulus_log_bits must be > 0")
	}
	maxLevel := modulusLogBits
	if maxLevel > MaxPoolSize {
		maxLevel = MaxPoolSize
	}
	return buildPool(modulusLogBits, maxLevel), nil
}
