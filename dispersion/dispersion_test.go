package dispersion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarianceRoundTrip(t *testing.T) {
	v := Variance(4.0)
	require.Equal(t, 4.0, v.Variance())
	require.Equal(t, 2.0, v.StdDev())
}

func TestStandardDeviationRoundTrip(t *testing.T) {
	s := StandardDeviation(3.0)
	require.Equal(t, 9.0, s.Variance())
	require.Equal(t, 3.0, s.StdDev())
}

func TestVarianceAndStandardDeviationAgree(t *testing.T) {
	var d DispersionParameter = Variance(16.0)
	require.Equal(t, 4.0, d.StdDev())

	d = StandardDeviation(4.0)
	require.Equal(t, 16.0, d.Variance())
}

func TestZeroVariance(t *testing.T) {
	v := Variance(0)
	require.Equal(t, 0.0, v.StdDev())
	require.False(t, math.IsNaN(v.StdDev()))
}
