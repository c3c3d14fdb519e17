package dag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShapeSize(t *testing.T) {
	require.Equal(t, uint64(1), Number().Size())
	require.Equal(t, uint64(5), Vector(5).Size())
}

func TestAddInputIsOutputUntilConsumed(t *testing.T) {
	d := New()
	in := d.AddInput(8, Number())
	require.True(t, d.IsOutput(in))

	lut := d.AddLut(in, UnknownFunctionTable, 8)
	require.False(t, d.IsOutput(in))
	require.True(t, d.IsOutput(lut))
}

func TestAddLevelledOpInheritsPrecisionAndShape(t *testing.T) {
	d := New()
	in1 := d.AddInput(4, Vector(3))
	in2 := d.AddInput(4, Vector(3))
	op := d.AddLevelledOp([]NodeID{in1, in2}, AdditionComplexity*2, 2.0, Vector(3), "sum")

	view := d.Node(op)
	require.Equal(t, KindLevelledOp, view.Kind)
	require.Equal(t, Precision(4), view.Precision)
	require.Equal(t, uint64(3), view.Shape.Size())
	require.Equal(t, 2.0, view.Manp)
	require.Equal(t, []NodeID{in1, in2}, view.Inputs)
}

func TestAddDotComputesManpAsSquaredNorm(t *testing.T) {
	d := New()
	in1 := d.AddInput(4, Number())
	in2 := d.AddInput(4, Number())
	dot := d.AddDot([]NodeID{in1, in2}, Weights{1, 2})

	view := d.Node(dot)
	require.Equal(t, 5.0, view.Manp) // 1^2 + 2^2
}

func TestAddLutResetsToFreshLutNode(t *testing.T) {
	d := New()
	in := d.AddInput(4, Number())
	op := d.AddLevelledOp([]NodeID{in}, AdditionComplexity, 3.0, Number(), "op")
	lut := d.AddLut(op, UnknownFunctionTable, 6)

	view := d.Node(lut)
	require.Equal(t, KindLut, view.Kind)
	require.Equal(t, Precision(6), view.Precision)
	require.Equal(t, []NodeID{op}, view.Inputs)
}

func TestNodeCount(t *testing.T) {
	d := New()
	require.Equal(t, 0, d.NodeCount())
	d.AddInput(4, Number())
	require.Equal(t, 1, d.NodeCount())
}
