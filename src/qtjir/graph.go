package qtjir

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Parameter describes one declared function parameter.
type Parameter struct {
	Name     string
	TypeName string
}

// Capture describes one variable a closure captures from an enclosing
// scope. Closure opcodes are stubbed per SPEC_FULL.md §D.3, but the data
// model still carries Capture so the builder's typed helper has somewhere
// to write.
type Capture struct {
	Name           string
	ParentAllocaID uint32
	Index          int
	IsMutable      bool
}

// Graph is a sovereign, owned hyper-graph of Nodes for a single function or
// test. It is built append-only by a Builder, optionally rewritten in place
// by transform passes, and is never aliased: moving ownership means the
// previous holder must not touch it again.
type Graph struct {
	Nodes []Node

	FunctionName string
	ReturnType   string
	Parameters   []Parameter
	Captures     []Capture
}

// NewGraph returns an empty graph ready for building.
func NewGraph(functionName string) *Graph {
	return &Graph{FunctionName: functionName, ReturnType: "void"}
}

// Len returns the number of nodes currently in the graph.
func (g *Graph) Len() int { return len(g.Nodes) }

// Node returns a pointer to the node at id. Panics if id is out of range,
// matching the graph core's invariant that every live reference is to a
// node that exists (SPEC testable property 1 is a validator concern, not a
// runtime-panic concern, but out-of-range access here is always a compiler
// bug in a caller, not recoverable user input).
func (g *Graph) Node(id uint32) *Node {
	return &g.Nodes[id]
}

// Valid reports whether id addresses a live node in g.
func (g *Graph) Valid(id uint32) bool {
	return id < uint32(len(g.Nodes))
}

// Dump writes a line-per-node textual listing of the graph.
func (g *Graph) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph %s(", g.FunctionName)
	for i, p := range g.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", p.Name, p.TypeName)
	}
	fmt.Fprintf(&b, ") -> %s\n", g.ReturnType)
	for i := range g.Nodes {
		fmt.Fprintf(&b, "  %s\n", g.Nodes[i].String())
	}
	return b.String()
}

// Remap rebuilds the graph in place given a keep mask indexed by old ID,
// dropping nodes whose entry in keep is false and renumbering the rest
// through an old-ID -> new-ID table it builds itself; input references to
// dropped nodes are removed from the survivors' Inputs. It is the mechanism
// backing DCE's node removal (SPEC_FULL.md §D.2, resolving SPEC §9's open
// question in favour of physical renumbering): every surviving node's
// Inputs and ID are rewritten so "node.id == index" (SPEC testable property
//2) continues to hold after removal.
func (g *Graph) Remap(keep []bool) {
	newID := make([]uint32, len(g.Nodes))
	out := make([]Node, 0, len(g.Nodes))
	var next uint32
	for old := range g.Nodes {
		if keep[old] {
			newID[old] = next
			next++
		}
	}
	for old := range g.Nodes {
		if !keep[old] {
			continue
		}
		n := g.Nodes[old]
		n.ID = newID[old]
		remapped := make([]uint32, 0, len(n.Inputs))
		for _, in := range n.Inputs {
			if keep[in] {
				remapped = append(remapped, newID[in])
			}
		}
		n.Inputs = remapped
		out = append(out, n)
	}
	g.Nodes = out
}
