// Package validate checks a qtjir.Graph for the structural and domain
// invariants SPEC §4.2 names, collecting every diagnostic found rather than
// aborting on the first problem.
package validate

import (
	"fmt"
	"math"

	"github.com/janus-lang/janus-sub005/src/qtjir"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Level is the severity of a Diagnostic.
type Level int

const (
	Error Level = iota
	Warning
	Note
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem, optionally anchored to a primary node
// and a list of related nodes (e.g. the cycle path).
type Diagnostic struct {
	Level   Level
	Message string
	Primary int   // node ID, or -1 if not applicable.
	Related []int // related node IDs, e.g. a cycle's path.
}

func (d Diagnostic) String() string {
	if d.Primary < 0 {
		return fmt.Sprintf("%s: %s", d.Level, d.Message)
	}
	return fmt.Sprintf("%s: %s (node %d)", d.Level, d.Message, d.Primary)
}

// Result collects every diagnostic produced by one validation run.
type Result struct {
	Diagnostics []Diagnostic
}

// HasErrors reports whether any diagnostic has Error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Level == Error {
			return true
		}
	}
	return false
}

func (r *Result) add(level Level, primary int, format string, args ...interface{}) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Primary: primary,
	})
}

// maxQubitIndexThreshold is the tunable threshold past which a qubit index
// is flagged, per SPEC §4.2 rule 6.
const maxQubitIndexThreshold = 50

// Validate runs every structural and domain check against g and returns the
// collected diagnostics. Validate is side-effect free: it never mutates g,
// so passes may re-run it freely after rewriting (SPEC §4.2 closing note).
func Validate(g *qtjir.Graph) *Result {
	r := &Result{}
	checkReferenceIntegrity(g, r)
	checkIDOrder(g, r)
	checkAcyclic(g, r)
	checkTenancyConsistency(g, r)
	checkMatmulShapes(g, r)
	checkQuantumGates(g, r)
	checkQuantumMeasurement(g, r)
	return r
}

// checkReferenceIntegrity implements SPEC §4.2 rule 1: every input_id in
// every node must be less than the node count.
func checkReferenceIntegrity(g *qtjir.Graph, r *Result) {
	n := uint32(g.Len())
	for i := range g.Nodes {
		for _, in := range g.Nodes[i].Inputs {
			if in >= n {
				r.add(Error, int(g.Nodes[i].ID), "input %d out of range (graph has %d nodes)", in, n)
			}
		}
	}
}

// checkIDOrder implements SPEC §4.2 rule 3: node.id == index for all nodes.
func checkIDOrder(g *qtjir.Graph, r *Result) {
	for i := range g.Nodes {
		if int(g.Nodes[i].ID) != i {
			r.add(Error, i, "node ID %d does not match its position %d", g.Nodes[i].ID, i)
		}
	}
}

// visitState tracks DFS progress for cycle detection.
type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// checkAcyclic implements SPEC §4.2 rule 2: the graph must be a DAG. A back
// edge to a "visiting" node is a cycle; the path from the cycle head back
// to the re-entry point is reported. Self-edges are reported as a
// degenerate one-node cycle.
func checkAcyclic(g *qtjir.Graph, r *Result) {
	n := g.Len()
	if n == 0 {
		return
	}
	state := make([]visitState, n)
	var path []int

	var visit func(id int) bool
	visit = func(id int) bool {
		if id < 0 || id >= n {
			return false // reported already by reference-integrity check.
		}
		switch state[id] {
		case visited:
			return false
		case visiting:
			// Found a back edge: report the path from id to the end of
			// the current path (inclusive).
			cycle := cyclePathFrom(path, id)
			r.add(Error, id, "cycle detected: %v", cycle)
			r.Diagnostics[len(r.Diagnostics)-1].Related = cycle
			return true
		}
		state[id] = visiting
		path = append(path, id)
		for _, in := range g.Nodes[id].Inputs {
			if visit(int(in)) {
				state[id] = visited
				path = path[:len(path)-1]
				return false
			}
		}
		state[id] = visited
		path = path[:len(path)-1]
		return false
	}

	for i := 0; i < n; i++ {
		if state[i] == unvisited {
			visit(i)
		}
	}
}

// cyclePathFrom returns the sub-slice of path starting at the first
// occurrence of head, plus head again to close the loop.
func cyclePathFrom(path []int, head int) []int {
	for i, id := range path {
		if id == head {
			out := append([]int(nil), path[i:]...)
			return append(out, head)
		}
	}
	return []int{head, head}
}

// checkTenancyConsistency implements SPEC §4.2 rule 4: a tenancy mismatch
// between a node and one of its inputs is always a Warning, never an Error.
func checkTenancyConsistency(g *qtjir.Graph, r *Result) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		for _, in := range n.Inputs {
			if !g.Valid(in) {
				continue
			}
			if g.Nodes[in].Tenancy != n.Tenancy {
				r.add(Warning, int(n.ID), "data transfer node needed: input %d has tenancy %s, node has %s", in, g.Nodes[in].Tenancy, n.Tenancy)
			}
		}
	}
}

// checkMatmulShapes implements SPEC §4.2 rule 5.
func checkMatmulShapes(g *qtjir.Graph, r *Result) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Op != qtjir.TensorMatmul {
			continue
		}
		if len(n.Inputs) != 2 {
			r.add(Error, int(n.ID), "matmul requires exactly two operands, got %d", len(n.Inputs))
			continue
		}
		a, b := &g.Nodes[n.Inputs[0]], &g.Nodes[n.Inputs[1]]
		if a.Tensor == nil || b.Tensor == nil {
			r.add(Warning, int(n.ID), "matmul operand missing tensor metadata")
			continue
		}
		if len(a.Tensor.Shape) != 2 || len(b.Tensor.Shape) != 2 {
			r.add(Error, int(n.ID), "matmul operands must be 2-D, got ranks %d and %d", len(a.Tensor.Shape), len(b.Tensor.Shape))
			continue
		}
		if a.Tensor.Shape[1] != b.Tensor.Shape[0] {
			r.add(Error, int(n.ID), "matmul inner dimensions disagree: %d != %d", a.Tensor.Shape[1], b.Tensor.Shape[0])
		}
	}
}

// checkQuantumGates implements SPEC §4.2 rule 6.
func checkQuantumGates(g *qtjir.Graph, r *Result) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Op != qtjir.QuantumGate {
			continue
		}
		if n.Quantum == nil {
			r.add(Error, int(n.ID), "quantum gate missing quantum metadata")
			continue
		}
		qm := n.Quantum
		wantArity := qtjir.GateArity(qm.GateType)
		if len(qm.Qubits) != wantArity {
			r.add(Error, int(n.ID), "gate %s expects %d qubits, got %d", qm.GateType, wantArity, len(qm.Qubits))
		}
		seen := map[int]bool{}
		for _, q := range qm.Qubits {
			if seen[q] {
				r.add(Error, int(n.ID), "duplicate qubit index %d in gate %s", q, qm.GateType)
			}
			seen[q] = true
			if q > maxQubitIndexThreshold {
				r.add(Warning, int(n.ID), "qubit index %d exceeds threshold %d", q, maxQubitIndexThreshold)
			}
		}
		if qm.GateType.IsRotation() {
			if len(qm.Parameters) != 1 {
				r.add(Error, int(n.ID), "rotation gate %s requires exactly one parameter, got %d", qm.GateType, len(qm.Parameters))
			} else if math.IsNaN(qm.Parameters[0]) || math.IsInf(qm.Parameters[0], 0) {
				r.add(Error, int(n.ID), "rotation gate %s parameter is not finite: %v", qm.GateType, qm.Parameters[0])
			}
		} else if len(qm.Parameters) > 0 {
			r.add(Warning, int(n.ID), "non-rotation gate %s has parameters", qm.GateType)
		}
		if n.Tenancy != qtjir.QPUQuantum {
			r.add(Warning, int(n.ID), "quantum gate %s not on QPU-quantum tenancy", qm.GateType)
		}
	}
}

// checkQuantumMeasurement implements SPEC §4.2 rule 7.
func checkQuantumMeasurement(g *qtjir.Graph, r *Result) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Op != qtjir.QuantumMeasure {
			continue
		}
		if n.Quantum == nil || len(n.Quantum.Qubits) < 1 {
			r.add(Error, int(n.ID), "measurement requires at least one qubit")
		}
		if n.Tenancy != qtjir.QPUQuantum {
			r.add(Warning, int(n.ID), "quantum measurement not on QPU-quantum tenancy")
		}
	}
}
