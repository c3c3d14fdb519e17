// Package dag implements the minimal DAG-construction surface needed
// to exercise §4.E and the end-to-end scenarios of §8: Input, a
// levelled (weighted-sum) operator, and a programmable-bootstrap
// (Lut) operator. spec.md's non-goals explicitly exclude a full DAG
// builder surface (multi-bit tables, automatic manp propagation,
// serialization); this is deliberately just enough to build the test
// circuits the original reference and spec.md's own scenarios require.
package dag

// Precision is the number of significant message bits a value carries.
type Precision = uint8

// Shape describes the tensor shape of a circuit value. The optimizer
// only needs the total lane count (Size), since every lane of a
// shaped value is assumed to carry the same noise distribution.
type Shape struct {
	Dimensions []uint64
}

// Number returns the shape of a scalar value (a single lane).
func Number() Shape { return Shape{} }

// Vector returns the shape of a length-d vector of independent lanes.
func Vector(d uint64) Shape { return Shape{Dimensions: []uint64{d}} }

// Size returns the total number of independent lanes in the shape.
func (s Shape) Size() uint64 {
	size := uint64(1)
	for _, d := range s.Dimensions {
		size *= d
	}
	return size
}

// Weights is a vector of linear-combination weights for AddDot, one
// per input.
type Weights []float64

// WeightsNumber returns a single-weight vector, for a dot product of
// one term.
func WeightsNumber(w float64) Weights { return Weights{w} }

// FunctionTable stands in for a programmable-bootstrap lookup table.
// Its contents are never inspected by the optimizer (the function it
// encodes is irrelevant to parameter selection); only its presence as
// a Lut operator input matters.
type FunctionTable struct{}

// UnknownFunctionTable is the placeholder table used by every Lut node
// built through this minimal surface.
var UnknownFunctionTable = FunctionTable{}

// LevelledComplexity is an analytical cost-per-element unit for a
// levelled (non-bootstrapped) operator, e.g. one addition.
type LevelledComplexity float64

// AdditionComplexity is the cost unit of one scalar addition, matching
// the reference's LevelledComplexity::ADDITION.
const AdditionComplexity LevelledComplexity = 1

// NodeKind identifies the operator kind of a node.
type NodeKind int

const (
	KindInput NodeKind = iota
	KindLevelledOp
	KindLut
)

// NodeID identifies a node within an OperationDag.
type NodeID int

type node struct {
	kind      NodeKind
	precision Precision
	shape     Shape
	inputs    []NodeID

	// levelled-op fields
	manp         float64            // same-scale noise amplification factor
	levelledCost LevelledComplexity // per-lane cost unit
	comment      string

	// lut fields
	table FunctionTable
}

// NodeView is a read-only snapshot of one node, exposed to package
// analyze without leaking the mutable internal node representation.
type NodeView struct {
	Kind         NodeKind
	Precision    Precision
	Shape        Shape
	Inputs       []NodeID
	Manp         float64
	LevelledCost LevelledComplexity
	Comment      string
}

// OperationDag is an unparametrized description of a computation as a
// DAG of Input/levelled-op/Lut nodes, built independently of any
// concrete LWE/GLWE parameters. analyze.Analyze turns it into the
// parametric adaptor consumed by the optimizer (§4.E).
type OperationDag struct {
	nodes []node
}

// New returns an empty OperationDag.
func New() *OperationDag {
	return &OperationDag{}
}

// NodeCount returns the number of nodes in the DAG.
func (d *OperationDag) NodeCount() int { return len(d.nodes) }

// Node returns a read-only view of the node identified by id.
func (d *OperationDag) Node(id NodeID) NodeView {
	n := d.nodes[id]
	return NodeView{
		Kind:         n.kind,
		Precision:    n.precision,
		Shape:        n.shape,
		Inputs:       n.inputs,
		Manp:         n.manp,
		LevelledCost: n.levelledCost,
		Comment:      n.comment,
	}
}

// IsOutput reports whether id is not consumed as an input by any other
// node in the DAG — i.e. it is a terminal value of the circuit.
func (d *OperationDag) IsOutput(id NodeID) bool {
	for _, n := range d.nodes {
		for _, in := range n.inputs {
			if in == id {
				return false
			}
		}
	}
	return true
}

// AddInput adds a fresh circuit input of the given precision and shape.
func (d *OperationDag) AddInput(precision Precision, shape Shape) NodeID {
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, node{kind: KindInput, precision: precision, shape: shape})
	return id
}

// AddLevelledOp adds a generic levelled operator over inputs, scaling
// accumulated noise uniformly by manp (the "same-scale" noise
// amplification factor) and costing complexity once per output lane
// (not multiplied by the number of inputs). The output takes the first
// input's precision and the shape given by outShape.
func (d *OperationDag) AddLevelledOp(inputs []NodeID, complexity LevelledComplexity, manp float64, outShape Shape, comment string) NodeID {
	precision := d.nodes[inputs[0]].precision
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, node{
		kind:         KindLevelledOp,
		precision:    precision,
		shape:        outShape,
		inputs:       append([]NodeID(nil), inputs...),
		manp:         manp,
		levelledCost: complexity,
		comment:      comment,
	})
	return id
}

// AddDot adds a weighted sum of inputs (a dot product against weights),
// a thin convenience over AddLevelledOp computing manp as the squared
// L2 norm of weights (the noise-growth factor of a linear combination
// with those coefficients) and complexity as one addition per term.
func (d *OperationDag) AddDot(inputs []NodeID, weights Weights) NodeID {
	manp := 0.0
	for _, w := range weights {
		manp += w * w
	}
	outShape := d.nodes[inputs[0]].shape
	return d.AddLevelledOp(inputs, AdditionComplexity*LevelledComplexity(len(inputs)), manp, outShape, "dot")
}

// AddLut adds a programmable bootstrap over input, re-encoding its
// message at outPrecision through table. The output is a fresh value:
// from the optimizer's point of view its noise resets to exactly one
// bootstrap's worth, regardless of what fed it.
func (d *OperationDag) AddLut(input NodeID, table FunctionTable, outPrecision Precision) NodeID {
	shape := d.nodes[input].shape
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, node{
		kind:      KindLut,
		precision: outPrecision,
		shape:     shape,
		inputs:    []NodeID{input},
		table:     table,
	})
	return id
}
