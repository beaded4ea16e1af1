package passes

import "github.com/janus-lang/janus-sub005/src/qtjir"

// QuantumGateCancellation rewrites Quantum_Gate(g, Quantum_Gate(g, X)),
// where g is self-inverse and both gates act on the same qubit list, by
// rewiring every user of the outer gate directly to X (SPEC §4.3).
type QuantumGateCancellation struct{}

func (QuantumGateCancellation) Name() string { return "quantum-gate-cancellation" }

func (QuantumGateCancellation) Run(g *qtjir.Graph) bool {
	changed := false
	for i := range g.Nodes {
		outer := &g.Nodes[i]
		if outer.Op != qtjir.QuantumGate || outer.Quantum == nil || len(outer.Inputs) != 1 {
			continue
		}
		if !outer.Quantum.GateType.IsSelfInverse() {
			continue
		}
		inner := g.Node(outer.Inputs[0])
		if inner.Op != qtjir.QuantumGate || inner.Quantum == nil || len(inner.Inputs) != 1 {
			continue
		}
		if inner.Quantum.GateType != outer.Quantum.GateType {
			continue
		}
		if !sameQubits(outer.Quantum.Qubits, inner.Quantum.Qubits) {
			continue
		}
		x := inner.Inputs[0]
		if rewireReferences(g, uint32(i), x) {
			changed = true
		}
	}
	return changed
}

func sameQubits(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
