// Package transform provides the generic pattern matcher and pass manager
// that drive rewrite passes over a qtjir.Graph.
package transform

import "github.com/janus-lang/janus-sub005/src/qtjir"

// Pattern describes a node shape to match against. Absent fields (nil
// pointers, nil Inputs) are wildcards; when Inputs is non-nil the node's
// input arity must match exactly and every child Pattern must match the
// corresponding input recursively (SPEC §4.3).
type Pattern struct {
	Op      *qtjir.Opcode
	Tenancy *qtjir.Tenancy
	Inputs  []Pattern
}

// Op returns a Pattern field pinned to op, for building literal patterns
// tersely: Pattern{Op: Op(qtjir.Add)}.
func Op(op qtjir.Opcode) *qtjir.Opcode { return &op }

// TenancyOf returns a Pattern field pinned to t.
func TenancyOf(t qtjir.Tenancy) *qtjir.Tenancy { return &t }

// Matches reports whether node id in g satisfies p.
func Matches(g *qtjir.Graph, id uint32, p Pattern) bool {
	if !g.Valid(id) {
		return false
	}
	n := g.Node(id)
	if p.Op != nil && n.Op != *p.Op {
		return false
	}
	if p.Tenancy != nil && n.Tenancy != *p.Tenancy {
		return false
	}
	if p.Inputs != nil {
		if len(n.Inputs) != len(p.Inputs) {
			return false
		}
		for i, childPattern := range p.Inputs {
			if !Matches(g, n.Inputs[i], childPattern) {
				return false
			}
		}
	}
	return true
}

// FindAllMatches scans every node in g and returns the IDs of those
// matching p, in node-ID order. FindAllMatches is pure: repeated calls with
// the same graph and pattern return the same sequence (SPEC §8 "round-trip
// / idempotence").
func FindAllMatches(g *qtjir.Graph, p Pattern) []uint32 {
	var out []uint32
	for i := range g.Nodes {
		id := uint32(i)
		if Matches(g, id, p) {
			out = append(out, id)
		}
	}
	return out
}
