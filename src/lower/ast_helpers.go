package lower

import "github.com/janus-lang/janus-sub005/src/astsnap"

// ast_helpers.go collects small, non-semantic AST-walking utilities shared
// by lower.go, expr.go, stmt.go, lvalue.go and errcatch.go.

// firstChildOfKind returns the first direct child of astID with the given
// kind, or -1 if none exists.
func (c *Context) firstChildOfKind(astID int, kind astsnap.Kind) int {
	for _, ch := range c.children(astID) {
		if c.node(ch).Kind == kind {
			return ch
		}
	}
	return -1
}

// childrenOfKind returns every direct child of astID with the given kind,
// in order.
func (c *Context) childrenOfKind(astID int, kind astsnap.Kind) []int {
	var out []int
	for _, ch := range c.children(astID) {
		if c.node(ch).Kind == kind {
			out = append(out, ch)
		}
	}
	return out
}

// identifierName extracts the lexeme of an identifier-kinded AST node.
func (c *Context) identifierName(astID int) string {
	n := c.node(astID)
	return c.lexeme(c.Snapshot.GetToken(n.FirstToken))
}

// typeName extracts the lexeme naming a type node (primitive_type,
// optional_type, error_union_type).
func (c *Context) typeName(astID int) string {
	n := c.node(astID)
	return c.lexeme(c.Snapshot.GetToken(n.FirstToken))
}

// isTypeKind reports whether k is one of the three type-node AST kinds.
func isTypeKind(k astsnap.Kind) bool {
	switch k {
	case astsnap.KindPrimitiveType, astsnap.KindOptionalType, astsnap.KindErrorUnionType:
		return true
	default:
		return false
	}
}

// lastOp reports the opcode of the most recently appended node in the
// current graph, with ok false if the graph is empty. Used by
// currentBlockTerminated (last_node_is_terminator(), SPEC §4.4.6) to decide
// whether a fall-through jump is required.
func (c *Context) lastOp() (op int, ok bool) {
	g := c.Builder.Graph
	if g.Len() == 0 {
		return 0, false
	}
	return int(g.Nodes[g.Len()-1].Op), true
}
