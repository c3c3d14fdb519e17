package errorbound

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorProbabilityOfSigmaScaleBounds(t *testing.T) {
	require.Equal(t, 1.0, ErrorProbabilityOfSigmaScale(0))
	require.Equal(t, 1.0, ErrorProbabilityOfSigmaScale(-1))
	require.InDelta(t, 0.5, ErrorProbabilityOfSigmaScale(1e-9), 1e-6)
}

func TestErrorProbabilityOfSigmaScaleIsDecreasing(t *testing.T) {
	p1 := ErrorProbabilityOfSigmaScale(1)
	p2 := ErrorProbabilityOfSigmaScale(2)
	p3 := ErrorProbabilityOfSigmaScale(4)
	require.Greater(t, p1, p2)
	require.Greater(t, p2, p3)
	require.GreaterOrEqual(t, p3, 0.0)
}

func TestSigmaScaleOfErrorProbabilityRoundTrips(t *testing.T) {
	for _, target := range []float64{1e-3, 1e-6, 1e-9} {
		kappa := SigmaScaleOfErrorProbability(target)
		got := ErrorProbabilityOfSigmaScale(kappa)
		require.InDelta(t, target, got, target*1e-2)
	}
}

func TestSafeVarianceBound2PAdBitsRejectsZeroPrecision(t *testing.T) {
	_, err := SafeVarianceBound2PAdBits(0, 64, 1e-9)
	require.Error(t, err)
}

func TestSafeVarianceBound2PAdBitsRejectsTooSmallModulus(t *testing.T) {
	_, err := SafeVarianceBound2PAdBits(32, 8, 1e-9)
	require.Error(t, err)
}

func TestSafeVarianceBound2PAdBitsIsPositive(t *testing.T) {
	v, err := SafeVarianceBound2PAdBits(4, 64, 1e-9)
	require.NoError(t, err)
	require.Greater(t, v, 0.0)
	require.False(t, math.IsNaN(v))
}

func TestSafeVarianceBound2PAdBitsShrinksWithPrecision(t *testing.T) {
	vLow, err := SafeVarianceBound2PAdBits(2, 64, 1e-9)
	require.NoError(t, err)
	vHigh, err := SafeVarianceBound2PAdBits(8, 64, 1e-9)
	require.NoError(t, err)
	require.Greater(t, vLow, vHigh)
}
