package lower

import (
	"github.com/janus-lang/janus-sub005/src/astsnap"
	"github.com/janus-lang/janus-sub005/src/foreign"
	"github.com/janus-lang/janus-sub005/src/qtjir"
	"github.com/janus-lang/janus-sub005/src/registry"
)

// Result is lower_unit's return value (SPEC §4.4.2): one graph per
// func_decl/test_decl plus the extern registry they share.
type Result struct {
	Graphs  []*qtjir.Graph
	Externs *registry.Extern
}

// LowerUnit lowers every top-level declaration of unit unitID (SPEC §4.4.2)
// in two passes: first every use_zig import, then every func_decl/test_decl.
// warn receives non-fatal diagnostics (I/O or parse failures on foreign
// modules, non-constant quantum or string-length operands, an error_union
// function reaching its epilogue without a return); it may be nil.
func LowerUnit(snap astsnap.Snapshot, unitID int, sourceDir string, builtins *registry.Builtins, externs *registry.Extern, parser foreign.Parser, warn func(string)) (*Result, error) {
	if warn == nil {
		warn = func(string) {}
	}
	if externs == nil {
		externs = registry.NewExtern()
	}
	if parser == nil {
		parser = foreign.NewDeclParser()
	}
	c := NewContext(snap, unitID, sourceDir, builtins, externs, parser)

	unit := snap.GetUnit(unitID)
	_ = unit
	var topLevel []int
	// The unit's top-level node set is whatever the snapshot exposes as
	// unit_id's own children; by convention unit_id doubles as the root
	// AST node id (SPEC §6.1 leaves the exact rooting to the collaborator,
	// so the lowerer treats unit_id as the root node to stay collaborator-
	// agnostic).
	topLevel = snap.GetChildren(unitID)

	c.collectErrorDecls(topLevel)

	for _, astID := range topLevel {
		if c.node(astID).Kind == astsnap.KindUseZig {
			if err := c.ingestUseZig(astID, warn); err != nil {
				return nil, err
			}
		}
	}

	var graphs []*qtjir.Graph
	for _, astID := range topLevel {
		switch c.node(astID).Kind {
		case astsnap.KindFuncDecl:
			g, err := c.lowerFuncDecl(astID, warn)
			if err != nil {
				return nil, err
			}
			graphs = append(graphs, g)
		case astsnap.KindTestDecl:
			g, err := c.lowerTestDecl(astID, warn)
			if err != nil {
				return nil, err
			}
			graphs = append(graphs, g)
		}
	}
	return &Result{Graphs: graphs, Externs: externs}, nil
}

// collectErrorDecls scans top-level error_decl nodes so field_expr lowering
// can recognise `ErrorType.Variant` access (SPEC §4.4.4.3).
func (c *Context) collectErrorDecls(topLevel []int) {
	for _, astID := range topLevel {
		if c.node(astID).Kind != astsnap.KindErrorDecl {
			continue
		}
		nameID := c.firstChildOfKind(astID, astsnap.KindIdentifier)
		if nameID < 0 {
			continue
		}
		name := c.identifierName(nameID)
		ev := errorVariant{Variants: make(map[string]int64)}
		idx := int64(0)
		for _, variantID := range c.childrenOfKind(astID, astsnap.KindErrorVariant) {
			vNameID := c.firstChildOfKind(variantID, astsnap.KindIdentifier)
			if vNameID < 0 {
				continue
			}
			ev.Variants[c.identifierName(vNameID)] = idx
			idx++
		}
		c.errorDecls[name] = ev
	}
}

// lowerFuncDecl lowers one func_decl into a new Graph (SPEC §4.4.3).
func (c *Context) lowerFuncDecl(astID int, warn func(string)) (*qtjir.Graph, error) {
	nameID := c.firstChildOfKind(astID, astsnap.KindIdentifier)
	name := "anonymous"
	if nameID >= 0 {
		name = c.identifierName(nameID)
	}

	g := qtjir.NewGraph(name)
	b := qtjir.NewBuilder(g)
	c.resetForGraph(b)

	paramIDs := c.childrenOfKind(astID, astsnap.KindParameter)
	for i, pID := range paramIDs {
		pName, pType := c.lowerParameter(pID)
		g.Parameters = append(g.Parameters, qtjir.Parameter{Name: pName, TypeName: pType})
		argID := b.CreateArgument(i)
		allocaID := b.BuildAlloca(pName)
		b.BuildStore(argID, allocaID)
		c.Bind(pName, allocaID)
	}

	isErrorUnion := false
	for _, ch := range c.children(astID) {
		if isTypeKind(c.node(ch).Kind) {
			if c.node(ch).Kind == astsnap.KindErrorUnionType {
				isErrorUnion = true
			}
		}
	}
	if isErrorUnion {
		g.ReturnType = "error_union"
	}

	bodyID := c.firstChildOfKind(astID, astsnap.KindBlockStmt)

	c.PushScope(ScopeFunction)
	c.PushScope(ScopeBlock)

	if bodyID >= 0 {
		stmts := c.children(bodyID)
		for i, stmtID := range stmts {
			isLast := i == len(stmts)-1
			if isLast && isErrorUnion && c.node(stmtID).Kind == astsnap.KindExprStmt {
				exprKids := c.children(stmtID)
				if len(exprKids) > 0 {
					val, err := c.lowerExpression(exprKids[0], warn)
					if err != nil {
						return nil, err
					}
					wrapped := b.CreateErrorUnionConstruct(val)
					c.markErrorUnion(wrapped)
					c.EmitDefersToFunctionRoot()
					b.CreateReturn(wrapped)
					continue
				}
			}
			if err := c.lowerStatement(stmtID, warn); err != nil {
				return nil, err
			}
		}
	}

	c.PopScope() // body Block
	c.PopScope() // Function

	if !c.currentBlockTerminated() {
		if isErrorUnion {
			warn("function " + name + " reached epilogue without explicit return in an error_union function")
			zero := b.CreateConstant(int64(0))
			wrapped := b.CreateErrorUnionConstruct(zero)
			b.CreateReturn(wrapped)
		} else if g.ReturnType == "void" {
			b.CreateReturn(b.CreateConstant(int64(0)))
		} else {
			b.CreateReturn(b.CreateConstant(int64(0)))
		}
	}

	return g, nil
}

// lowerTestDecl lowers a test_decl identically to a function, except the
// graph is named "test:<literal>" and unconditionally ends in `Return 0`
// (SPEC §4.4.3).
func (c *Context) lowerTestDecl(astID int, warn func(string)) (*qtjir.Graph, error) {
	var name string
	kids := c.children(astID)
	if len(kids) > 0 {
		tok := c.node(kids[0])
		name = unquote(c.lexeme(c.Snapshot.GetToken(tok.FirstToken)))
	}

	g := qtjir.NewGraph("test:" + name)
	b := qtjir.NewBuilder(g)
	c.resetForGraph(b)

	bodyID := c.firstChildOfKind(astID, astsnap.KindBlockStmt)
	c.PushScope(ScopeFunction)
	c.PushScope(ScopeBlock)
	if bodyID >= 0 {
		for _, stmtID := range c.children(bodyID) {
			if err := c.lowerStatement(stmtID, warn); err != nil {
				return nil, err
			}
		}
	}
	c.PopScope()
	c.PopScope()

	if c.currentBlockTerminated() {
		b.CreateLabel()
	}
	b.CreateReturn(b.CreateConstant(int64(0)))
	return g, nil
}

// lowerParameter extracts {name, type_name} from a parameter AST node,
// defaulting the type to "i32" when absent (SPEC §4.4.3).
func (c *Context) lowerParameter(astID int) (string, string) {
	nameID := c.firstChildOfKind(astID, astsnap.KindIdentifier)
	name := "_"
	if nameID >= 0 {
		name = c.identifierName(nameID)
	}
	typeName := "i32"
	for _, ch := range c.children(astID) {
		if isTypeKind(c.node(ch).Kind) {
			typeName = c.typeName(ch)
			break
		}
	}
	return name, typeName
}

// currentBlockTerminated reports whether the most recently appended node in
// the current graph is a Return, Jump or Branch.
func (c *Context) currentBlockTerminated() bool {
	op, ok := c.lastOp()
	if !ok {
		return false
	}
	switch qtjir.Opcode(op) {
	case qtjir.Return, qtjir.Jump, qtjir.Branch:
		return true
	default:
		return false
	}
}
