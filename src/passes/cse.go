package passes

import "github.com/janus-lang/janus-sub005/src/qtjir"

// CommonSubexpressionElimination rewires references to later duplicate
// nodes towards the earliest equivalent node. Two nodes are equivalent when
// their Opcode matches, their input lists match in order, and — for
// Constant nodes — their payload matches. Constant, Call and Return are
// skipped (Constant is folded by ConstantFold instead; Call and Return may
// carry side effects or terminate control flow, so two syntactically
// identical occurrences are not interchangeable). Commutativity is not
// exploited (SPEC §4.3).
type CommonSubexpressionElimination struct{}

func (CommonSubexpressionElimination) Name() string { return "cse" }

func (CommonSubexpressionElimination) Run(g *qtjir.Graph) bool {
	changed := false
	n := g.Len()
	for a := 0; a < n; a++ {
		if skipCSE(g.Nodes[a].Op) {
			continue
		}
		for b := a + 1; b < n; b++ {
			if skipCSE(g.Nodes[b].Op) {
				continue
			}
			if !equivalent(&g.Nodes[a], &g.Nodes[b]) {
				continue
			}
			if rewireReferences(g, uint32(b), uint32(a)) {
				changed = true
			}
		}
	}
	return changed
}

func skipCSE(op qtjir.Opcode) bool {
	return op == qtjir.Constant || op == qtjir.Call || op == qtjir.Return
}

func equivalent(a, b *qtjir.Node) bool {
	if a.Op != b.Op {
		return false
	}
	if len(a.Inputs) != len(b.Inputs) {
		return false
	}
	for i := range a.Inputs {
		if a.Inputs[i] != b.Inputs[i] {
			return false
		}
	}
	return true
}

// rewireReferences replaces every occurrence of from as an input elsewhere
// in the graph with to. Returns true if any rewiring occurred.
func rewireReferences(g *qtjir.Graph, from, to uint32) bool {
	changed := false
	for i := range g.Nodes {
		in := g.Nodes[i].Inputs
		for j := range in {
			if in[j] == from {
				in[j] = to
				changed = true
			}
		}
	}
	return changed
}
