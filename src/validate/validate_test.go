package validate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/janus-sub005/src/qtjir"
	"github.com/janus-lang/janus-sub005/src/validate"
)

func TestEmptyGraphValidates(t *testing.T) {
	g := qtjir.NewGraph("main")
	r := validate.Validate(g)
	require.False(t, r.HasErrors())
}

func TestReferenceIntegrity(t *testing.T) {
	g := qtjir.NewGraph("f")
	g.Nodes = []qtjir.Node{
		{ID: 0, Op: qtjir.Return, Inputs: []uint32{5}},
	}
	r := validate.Validate(g)
	require.True(t, r.HasErrors())
}

func TestIDOrderMismatch(t *testing.T) {
	g := qtjir.NewGraph("f")
	g.Nodes = []qtjir.Node{{ID: 7, Op: qtjir.Constant}}
	r := validate.Validate(g)
	require.True(t, r.HasErrors())
}

func TestCycleDetectionReportsPath(t *testing.T) {
	g := qtjir.NewGraph("f")
	// Node 0 depends on node 1, which depends back on node 0.
	g.Nodes = []qtjir.Node{
		{ID: 0, Op: qtjir.Add, Inputs: []uint32{1}},
		{ID: 1, Op: qtjir.Add, Inputs: []uint32{0}},
	}
	r := validate.Validate(g)
	require.True(t, r.HasErrors())
	found := false
	for _, d := range r.Diagnostics {
		if d.Level == validate.Error && len(d.Related) > 0 {
			found = found || (d.Message != "")
		}
	}
	require.True(t, found)
}

func TestSelfEdgeIsDegenerateCycle(t *testing.T) {
	g := qtjir.NewGraph("f")
	g.Nodes = []qtjir.Node{{ID: 0, Op: qtjir.Add, Inputs: []uint32{0}}}
	r := validate.Validate(g)
	require.True(t, r.HasErrors())
}

func TestTenancyMismatchIsWarningNotError(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	a := b.CreateConstant(int64(1))
	b.SetTenancy(qtjir.NPUTensor)
	sum := b.CreateBinary(qtjir.Add, a, a)
	_ = sum
	r := validate.Validate(g)
	require.False(t, r.HasErrors())
	var sawWarning bool
	for _, d := range r.Diagnostics {
		if d.Level == validate.Warning {
			sawWarning = true
		}
	}
	require.True(t, sawWarning)
}

func TestMatmulShapeMismatchIsError(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	b.SetTenancy(qtjir.NPUTensor)
	a := b.CreateConstant(int64(0))
	g.Node(a).Tensor = &qtjir.TensorMetadata{Shape: []int{2, 3}}
	c := b.CreateConstant(int64(0))
	g.Node(c).Tensor = &qtjir.TensorMetadata{Shape: []int{4, 5}}
	m := b.CreateTensorOp(qtjir.TensorMatmul, nil, a, c)

	r := validate.Validate(g)
	require.True(t, r.HasErrors())
	require.Equal(t, int(m), r.Diagnostics[len(r.Diagnostics)-1].Primary)
}

func TestMatmulMissingMetadataIsWarning(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	b.SetTenancy(qtjir.NPUTensor)
	a := b.CreateConstant(int64(0))
	c := b.CreateConstant(int64(0))
	b.CreateTensorOp(qtjir.TensorMatmul, nil, a, c)

	r := validate.Validate(g)
	require.False(t, r.HasErrors())
}

func TestQuantumGateArityAndDuplicateQubits(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	b.SetTenancy(qtjir.QPUQuantum)
	q0 := b.CreateConstant(int64(0))
	g1 := b.CreateQuantumGate(&qtjir.QuantumMetadata{GateType: qtjir.GateCNOT, Qubits: []int{1, 1}}, q0)
	_ = g1

	r := validate.Validate(g)
	require.True(t, r.HasErrors())
}

func TestRotationGateRequiresFiniteParameter(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	b.SetTenancy(qtjir.QPUQuantum)
	q0 := b.CreateConstant(int64(0))
	b.CreateQuantumGate(&qtjir.QuantumMetadata{GateType: qtjir.GateRX, Qubits: []int{0}, Parameters: []float64{1.0}}, q0)
	r := validate.Validate(g)
	require.False(t, r.HasErrors())

	g2 := qtjir.NewGraph("f2")
	b2 := qtjir.NewBuilder(g2)
	b2.SetTenancy(qtjir.QPUQuantum)
	q1 := b2.CreateConstant(int64(0))
	b2.CreateQuantumGate(&qtjir.QuantumMetadata{GateType: qtjir.GateRX, Qubits: []int{0}, Parameters: []float64{math.NaN()}}, q1)
	r2 := validate.Validate(g2)
	require.True(t, r2.HasErrors())
}

func TestQuantumMeasurementRequiresQubit(t *testing.T) {
	g := qtjir.NewGraph("f")
	b := qtjir.NewBuilder(g)
	b.SetTenancy(qtjir.QPUQuantum)
	b.CreateQuantumMeasure(&qtjir.QuantumMetadata{Qubits: nil})
	r := validate.Validate(g)
	require.True(t, r.HasErrors())
}
