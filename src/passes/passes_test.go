package passes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/janus-sub005/src/passes"
	"github.com/janus-lang/janus-sub005/src/qtjir"
)

// TestNestedArithmeticFoldsToSingleConstant mirrors SPEC §8 scenario 3:
// (10 + 20) * 3 - 5, folded twice, idempotent on the second run.
func TestNestedArithmeticFoldsToSingleConstant(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)

	c10 := b.CreateConstant(int64(10))
	c20 := b.CreateConstant(int64(20))
	sum := b.CreateBinary(qtjir.Add, c10, c20)
	c3 := b.CreateConstant(int64(3))
	mul := b.CreateBinary(qtjir.Mul, sum, c3)
	c5 := b.CreateConstant(int64(5))
	sub := b.CreateBinary(qtjir.Sub, mul, c5)
	b.CreateReturn(sub)

	fold := passes.ConstantFold{}
	changed1 := fold.Run(g)
	require.True(t, changed1)

	require.Equal(t, qtjir.Constant, g.Node(sub).Op)
	require.Equal(t, int64(85), g.Node(sub).Data.Int)

	changed2 := fold.Run(g)
	require.False(t, changed2, "fully folded graph reports no further change on the second run")
}

func TestConstantFoldSkipsDivideByZero(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	a := b.CreateConstant(int64(10))
	zero := b.CreateConstant(int64(0))
	div := b.CreateBinary(qtjir.Div, a, zero)

	changed := passes.ConstantFold{}.Run(g)
	require.False(t, changed)
	require.Equal(t, qtjir.Div, g.Node(div).Op)
}

func TestDCERemovesUnreachableNodes(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	live := b.CreateConstant(int64(1))
	_ = b.CreateConstant(int64(2)) // dead: never referenced.
	b.CreateReturn(live)

	require.Equal(t, 3, g.Len())
	changed := passes.DeadCodeElimination{}.Run(g)
	require.True(t, changed)
	require.Equal(t, 2, g.Len())
	for i := range g.Nodes {
		require.Equal(t, uint32(i), g.Nodes[i].ID)
	}
}

func TestDCEKeepsCallAsSideEffectRoot(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	arg := b.CreateConstant(int64(1))
	b.CreateCall("janus_print_int", arg)
	b.CreateReturn(b.CreateConstant(int64(0)))

	before := g.Len()
	changed := passes.DeadCodeElimination{}.Run(g)
	require.False(t, changed)
	require.Equal(t, before, g.Len())
}

func TestCSERewiresDuplicateExpressions(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	x := b.CreateArgument(0)
	y := b.CreateArgument(1)
	sum1 := b.CreateBinary(qtjir.Add, x, y)
	sum2 := b.CreateBinary(qtjir.Add, x, y)
	ret := b.CreateReturn(sum2)

	changed := passes.CommonSubexpressionElimination{}.Run(g)
	require.True(t, changed)
	require.Equal(t, []uint32{sum1}, g.Node(ret).Inputs)
}

// TestMatmulReluFusion mirrors SPEC §8 scenario 4.
func TestMatmulReluFusion(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	b.SetTenancy(qtjir.NPUTensor)

	a := b.CreateConstant(int64(0))
	g.Node(a).Tensor = &qtjir.TensorMetadata{Shape: []int{2, 3}}
	bb := b.CreateConstant(int64(0))
	g.Node(bb).Tensor = &qtjir.TensorMetadata{Shape: []int{3, 4}}

	m := b.CreateTensorOp(qtjir.TensorMatmul, &qtjir.TensorMetadata{Shape: []int{2, 4}}, a, bb)
	r := b.CreateTensorOp(qtjir.TensorRelu, nil, m)

	changed := passes.MatmulReluFusion{}.Run(g)
	require.True(t, changed)
	require.Equal(t, qtjir.TensorFusedMatmulRelu, g.Node(r).Op)
	require.Equal(t, []uint32{a, bb}, g.Node(r).Inputs)
	require.Equal(t, []int{2, 4}, g.Node(r).Tensor.Shape)

	// Shape must be a deep copy, not an alias of the matmul's buffer.
	g.Node(r).Tensor.Shape[0] = 99
	require.Equal(t, 2, g.Node(m).Tensor.Shape[0])
}

// TestSelfInverseGateCancellation mirrors SPEC §8 scenario 5.
func TestSelfInverseGateCancellation(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	b.SetTenancy(qtjir.QPUQuantum)

	x := b.CreateConstant(int64(0))
	h1 := b.CreateQuantumGate(&qtjir.QuantumMetadata{GateType: qtjir.GateHadamard, Qubits: []int{0}}, x)
	h2 := b.CreateQuantumGate(&qtjir.QuantumMetadata{GateType: qtjir.GateHadamard, Qubits: []int{0}}, h1)
	use := b.CreateReturn(h2)

	changed := passes.QuantumGateCancellation{}.Run(g)
	require.True(t, changed)
	require.Equal(t, []uint32{x}, g.Node(use).Inputs)
}
