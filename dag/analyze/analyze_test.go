package analyze

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/concrete-optimizer/dag"
)

func defaultNoiseBoundConfig() NoiseBoundConfig {
	return NoiseBoundConfig{
		SecurityLevel:                     128,
		MaximumAcceptableErrorProbability: 1e-9,
		CiphertextModulusLog:              64,
	}
}

func TestAnalyzeNoLutCircuit(t *testing.T) {
	d := dag.New()
	in := d.AddInput(8, dag.Number())
	_ = d.AddLevelledOp([]dag.NodeID{in}, dag.AdditionComplexity, 3.0, dag.Number(), "op")

	a := Analyze(d, defaultNoiseBoundConfig())
	require.Equal(t, uint64(0), a.NbLuts)
	require.True(t, a.HasOnlyLutsWithInputs)
	require.Equal(t, []dag.Precision{8}, a.OutPrecisions)
}

func TestAnalyzeSingleLutHasOnlyLutsWithInputs(t *testing.T) {
	d := dag.New()
	in := d.AddInput(8, dag.Number())
	_ = d.AddLut(in, dag.UnknownFunctionTable, 8)

	a := Analyze(d, defaultNoiseBoundConfig())
	require.Equal(t, uint64(1), a.NbLuts)
	require.True(t, a.HasOnlyLutsWithInputs)
}

func TestAnalyzeChainedLutsIsNotHasOnlyLutsWithInputs(t *testing.T) {
	d := dag.New()
	in := d.AddInput(8, dag.Number())
	lut1 := d.AddLut(in, dag.UnknownFunctionTable, 8)
	op := d.AddLevelledOp([]dag.NodeID{lut1}, dag.AdditionComplexity, 2.0, dag.Number(), "op")
	_ = d.AddLut(op, dag.UnknownFunctionTable, 8)

	a := Analyze(d, defaultNoiseBoundConfig())
	require.Equal(t, uint64(2), a.NbLuts)
	require.False(t, a.HasOnlyLutsWithInputs)
}

func TestComplexityCostIsLinearInLutCount(t *testing.T) {
	d := dag.New()
	in := d.AddInput(8, dag.Number())
	op := d.AddLevelledOp([]dag.NodeID{in}, dag.AdditionComplexity*5, 1.0, dag.Number(), "op")
	_ = d.AddLut(op, dag.UnknownFunctionTable, 8)
	_ = d.AddLut(op, dag.UnknownFunctionTable, 8)

	a := Analyze(d, defaultNoiseBoundConfig())
	require.Equal(t, uint64(2), a.NbLuts)

	cost := a.ComplexityCost(1000, 7.0)
	expected := 5.0*1000 + 2*7.0
	require.Equal(t, expected, cost)
}

func TestFeasibleRejectsNoiseAboveSafeVariance(t *testing.T) {
	d := dag.New()
	in := d.AddInput(4, dag.Number())
	_ = d.AddLut(in, dag.UnknownFunctionTable, 4)

	a := Analyze(d, defaultNoiseBoundConfig())
	require.True(t, a.Feasible(0, 0, 0, 0))
	require.False(t, a.Feasible(math.MaxFloat64, 0, 0, 0))
}

func TestPeekPErrorIncreasesWithNoise(t *testing.T) {
	d := dag.New()
	in := d.AddInput(4, dag.Number())
	_ = d.AddLut(in, dag.UnknownFunctionTable, 4)

	a := Analyze(d, defaultNoiseBoundConfig())
	lowP, _ := a.PeekPError(1e33, 0, 0, 0, 4.0)
	highP, _ := a.PeekPError(1e34, 0, 0, 0, 4.0)
	require.Less(t, lowP, highP)
}

func TestGlobalPErrorIsWithinBounds(t *testing.T) {
	d := dag.New()
	in1 := d.AddInput(4, dag.Number())
	in2 := d.AddInput(4, dag.Number())
	_ = d.AddLut(in1, dag.UnknownFunctionTable, 4)
	_ = d.AddLut(in2, dag.UnknownFunctionTable, 4)

	a := Analyze(d, defaultNoiseBoundConfig())
	p := a.GlobalPError(10.0, 1.0, 1.0, 1.0, 4.0)
	require.GreaterOrEqual(t, p, 0.0)
	require.LessOrEqual(t, p, 1.0)
}

func TestGlobalPErrorMatchesPeekForSingleConstraintPoint(t *testing.T) {
	// a bare input-to-output circuit has exactly one constraint point, so
	// the worst-point and aggregated failure probabilities coincide.
	d := dag.New()
	_ = d.AddInput(4, dag.Number())

	a := Analyze(d, defaultNoiseBoundConfig())
	peekP, _ := a.PeekPError(10.0, 0, 0, 0, 4.0)
	globalP := a.GlobalPError(10.0, 0, 0, 0, 4.0)
	require.InDelta(t, peekP, globalP, 1e-12)
}
