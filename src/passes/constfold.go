// Package passes implements the standard transform passes named by SPEC
// §4.3: constant folding, dead-code elimination, common-subexpression
// elimination, tensor matmul+relu fusion, and self-inverse quantum-gate
// cancellation. Each pass implements transform.Pass.
package passes

import "github.com/janus-lang/janus-sub005/src/qtjir"

// ConstantFold replaces binary arithmetic nodes whose both inputs are
// integer constants with a single Constant node holding the computed
// value. Division truncates towards zero; division by zero is left
// unfolded (SPEC §4.3).
type ConstantFold struct{}

func (ConstantFold) Name() string { return "constant-fold" }

func (ConstantFold) Run(g *qtjir.Graph) bool {
	changed := false
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if !isFoldableArith(n.Op) || len(n.Inputs) != 2 {
			continue
		}
		lhs, rhs := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
		if lhs.Op != qtjir.Constant || rhs.Op != qtjir.Constant {
			continue
		}
		if lhs.Data.Kind != qtjir.DataInt || rhs.Data.Kind != qtjir.DataInt {
			continue
		}
		v, ok := foldInt(n.Op, lhs.Data.Int, rhs.Data.Int)
		if !ok {
			continue // e.g. divide-by-zero: leave unfolded.
		}
		n.Op = qtjir.Constant
		n.Data = qtjir.Data{Kind: qtjir.DataInt, Int: v}
		n.Inputs = nil
		changed = true
	}
	return changed
}

func isFoldableArith(op qtjir.Opcode) bool {
	switch op {
	case qtjir.Add, qtjir.Sub, qtjir.Mul, qtjir.Div, qtjir.Mod,
		qtjir.BitAnd, qtjir.BitOr, qtjir.Xor, qtjir.Shl, qtjir.Shr:
		return true
	default:
		return false
	}
}

func foldInt(op qtjir.Opcode, a, b int64) (int64, bool) {
	switch op {
	case qtjir.Add:
		return a + b, true
	case qtjir.Sub:
		return a - b, true
	case qtjir.Mul:
		return a * b, true
	case qtjir.Div:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case qtjir.Mod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case qtjir.BitAnd:
		return a & b, true
	case qtjir.BitOr:
		return a | b, true
	case qtjir.Xor:
		return a ^ b, true
	case qtjir.Shl:
		return a << uint(b), true
	case qtjir.Shr:
		return a >> uint(b), true
	default:
		return 0, false
	}
}
