package qtjir

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// DataKind tags which field of Data is populated, since Go has no native
// tagged union. A Node's Data is "unused" when Kind == DataNone.
type DataKind int

const (
	DataNone DataKind = iota
	DataInt
	DataFloat
	DataBool
	DataString
)

// Data is a Node's immediate payload. Exactly one field is meaningful,
// selected by Kind. The graph owns Str exclusively: it is never a borrowed
// slice into the AST's source buffer or interner.
type Data struct {
	Kind DataKind
	Int  int64
	Flt  float64
	Bool bool
	Str  string
}

// GateType is the closed enumeration of quantum gates recognised by the
// validator and the builtin registry.
type GateType int

const (
	GateUnknown GateType = iota
	GateHadamard
	GatePauliX
	GatePauliY
	GatePauliZ
	GateRX
	GateRY
	GateRZ
	GateCNOT
	GateCZ
	GateSWAP
	GateToffoli
	GateFredkin
)

// selfInverseGates is the set of gates the gate-cancellation pass may
// collapse when applied twice in a row to the same qubits.
var selfInverseGates = map[GateType]bool{
	GateHadamard: true,
	GatePauliX:   true,
	GatePauliY:   true,
	GatePauliZ:   true,
	GateCNOT:     true,
	GateCZ:       true,
	GateSWAP:     true,
	GateToffoli:  true,
	GateFredkin:  true,
}

// IsSelfInverse reports whether g cancels itself out when chained onto the
// same qubits twice, per SPEC §4.3 "Self-inverse quantum-gate cancellation".
func (g GateType) IsSelfInverse() bool { return selfInverseGates[g] }

// GateArity returns the number of qubits a gate of kind g acts on.
func GateArity(g GateType) int {
	switch g {
	case GateCNOT, GateCZ, GateSWAP:
		return 2
	case GateToffoli, GateFredkin:
		return 3
	default:
		return 1
	}
}

// IsRotation reports whether g is a parametrised rotation gate requiring
// exactly one finite parameter.
func (g GateType) IsRotation() bool {
	return g == GateRX || g == GateRY || g == GateRZ
}

func (g GateType) String() string {
	switch g {
	case GateHadamard:
		return "Hadamard"
	case GatePauliX:
		return "PauliX"
	case GatePauliY:
		return "PauliY"
	case GatePauliZ:
		return "PauliZ"
	case GateRX:
		return "RX"
	case GateRY:
		return "RY"
	case GateRZ:
		return "RZ"
	case GateCNOT:
		return "CNOT"
	case GateCZ:
		return "CZ"
	case GateSWAP:
		return "SWAP"
	case GateToffoli:
		return "Toffoli"
	case GateFredkin:
		return "Fredkin"
	default:
		return "Unknown"
	}
}

// DType is the closed enumeration of tensor element datatypes.
type DType int

const (
	DTypeF32 DType = iota
	DTypeF64
	DTypeI32
	DTypeI64
)

// Layout is the closed enumeration of tensor memory layouts.
type Layout int

const (
	LayoutRowMajor Layout = iota
	LayoutColMajor
)

// TensorMetadata annotates tensor-tenancy nodes with shape/dtype/layout.
// Shape is owned exclusively by the node it is attached to; passes that
// copy a node must deep-copy Shape rather than alias it (SPEC §4.3 "Matmul
// + Relu fusion").
type TensorMetadata struct {
	Shape  []int
	DType  DType
	Layout Layout
}

// Clone returns a deep copy of m, so the caller never shares Shape's
// backing array with another node.
func (m *TensorMetadata) Clone() *TensorMetadata {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Shape = append([]int(nil), m.Shape...)
	return &cp
}

// QuantumMetadata annotates quantum-tenancy nodes. Qubits and Parameters
// are owned exclusively by the node.
type QuantumMetadata struct {
	GateType   GateType
	Qubits     []int
	Parameters []float64
}

// Clone returns a deep copy of m.
func (m *QuantumMetadata) Clone() *QuantumMetadata {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Qubits = append([]int(nil), m.Qubits...)
	cp.Parameters = append([]float64(nil), m.Parameters...)
	return &cp
}

// Node is a single vertex of a Graph, identified by its slot index. Inputs
// is ordered and semantically significant: operand 0 vs 1, branch true vs
// false target, and Phi argument order all depend on position, never on
// set membership.
type Node struct {
	ID       uint32
	Op       Opcode
	Level    Level
	Tenancy  Tenancy
	Inputs   []uint32
	Data     Data
	Tensor   *TensorMetadata
	Quantum  *QuantumMetadata
	ASTNode  int // backlink to the source AST node ID; -1 when absent.
}

// String renders a short human-readable summary of the node.
func (n *Node) String() string {
	if n == nil {
		return "<nil node>"
	}
	s := fmt.Sprintf("%%%d = %s", n.ID, n.Op)
	if len(n.Inputs) > 0 {
		s += fmt.Sprintf(" %v", n.Inputs)
	}
	switch n.Data.Kind {
	case DataInt:
		s += fmt.Sprintf(" #%d", n.Data.Int)
	case DataFloat:
		s += fmt.Sprintf(" #%g", n.Data.Flt)
	case DataBool:
		s += fmt.Sprintf(" #%t", n.Data.Bool)
	case DataString:
		s += fmt.Sprintf(" #%q", n.Data.Str)
	}
	s += fmt.Sprintf(" [%s/%s]", n.Level, n.Tenancy)
	return s
}
