// Package assert provides the panic-based invariant guards used
// throughout the optimizer for conditions that can only be violated by
// a bug in this module itself (never by caller input, which is
// rejected with an error instead): a decomposition pool that isn't
// sorted, a pareto cut that produced the wrong number of points, a
// self-check recomputation that disagrees with the cut-driven search
// path.
package assert

import "fmt"

// True panics with a formatted message if cond is false.
func True(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// RelativelyClose panics if a and b differ by more than tolerance,
// relative to b. Used by the self-check pass to compare a fast,
// cut-driven computation against its slow reference recomputation,
// which can differ in the last bits of float64 precision without
// being wrong.
func RelativelyClose(a, b, tolerance float64, format string, args ...interface{}) {
	if b == 0 {
		True(a == 0, format, args...)
		return
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	True(diff/b < tolerance, format, args...)
}
