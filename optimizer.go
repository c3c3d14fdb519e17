/*
Package optimizer selects LWE/GLWE cryptosystem parameters for a
fully homomorphic circuit under a target security level and error-
probability bound. The library features:

  - A single atomic-pattern optimizer (dot-product, key-switch,
    programmable bootstrap) driven by a Pareto-pruned search over
    decomposition parameters.
  - A DAG-mode optimizer reusing the same kernel across a whole
    circuit of levelled operators and bootstraps, minimizing
    end-to-end complexity while every bootstrap input and circuit
    output stays within the per-point failure-probability bound; the
    resulting whole-circuit failure probability is reported alongside.

The noise, complexity and security-parameter formulas themselves are
treated as external oracles (see the noise, complexity and security
packages); this package is the combinatorial search built on top of
them.
*/
package optimizer

import (
	"github.com/tuneinsight/concrete-optimizer/dag"
	"github.com/tuneinsight/concrete-optimizer/optimization/atomicpattern"
	"github.com/tuneinsight/concrete-optimizer/optimization/config"
	"github.com/tuneinsight/concrete-optimizer/optimization/dag/solokey"
)

// Solution is one feasible, fully-parametrized atomic pattern, the
// best one found by an optimization call over its search space.
type Solution = atomicpattern.Solution

// OptimizationState is the outer search's running best and the size of
// the full search domain (outer points times both decomposition pools).
type OptimizationState = atomicpattern.OptimizationState

// Config is the complete search configuration: security level,
// ciphertext modulus width, error-bound policy and complexity model.
type Config = config.Config

// SearchSpace is the set of candidate parameter values the outer
// search scans over.
type SearchSpace = config.SearchSpace

// DefaultConfig returns a ready-to-use Config: 128-bit security, the
// package default search space and a CPU complexity model.
func DefaultConfig() Config {
	return config.Default()
}

// DefaultSearchSpace returns the search space the reference
// implementation scans by default.
func DefaultSearchSpace() SearchSpace {
	return config.DefaultSearchSpace()
}

// OptimizeOne finds the lowest-complexity feasible atomic pattern for
// a single dot-product of sumSize terms at the given precision,
// optionally resuming from a previous restartAt solution.
func OptimizeOne(sumSize, precision uint64, cfg Config, noiseFactor float64, searchSpace SearchSpace, restartAt *Solution) (OptimizationState, error) {
	return atomicpattern.OptimizeOne(sumSize, precision, cfg, noiseFactor, searchSpace, restartAt)
}

// OptimizeDag finds the lowest-complexity feasible parametrization of
// a whole circuit (§4.F DAG mode). The configured failure-probability
// bound applies to each constraint point's local p_error; the
// whole-circuit GlobalPError is reported, not bounded.
func OptimizeDag(circuit *dag.OperationDag, cfg Config, searchSpace SearchSpace) (OptimizationState, error) {
	return solokey.Optimize(circuit, cfg, searchSpace)
}

// OptimizeV0 optimizes the synthetic two-bootstrap reference circuit
// used to validate the DAG-mode optimizer against the single-pattern
// optimizer above, reporting the cost of one atomic pattern.
func OptimizeV0(sumSize, precision uint64, cfg Config, noiseFactor float64, searchSpace SearchSpace) (OptimizationState, error) {
	return solokey.OptimizeV0(sumSize, precision, cfg, noiseFactor, searchSpace)
}
