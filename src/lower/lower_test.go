package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janus-lang/janus-sub005/src/astsnap"
	"github.com/janus-lang/janus-sub005/src/lower"
	"github.com/janus-lang/janus-sub005/src/qtjir"
	"github.com/janus-lang/janus-sub005/src/registry"
)

// addRootUnit appends root's AST children as a fresh program node and
// registers a unit whose source-array index is forced to line up with that
// node's own id, so unitID can double as the root AST node id the way
// LowerUnit's single-unit convention requires. It must be called only once
// per Builder and only after every other AddNode call.
func addRootUnit(b *astsnap.Builder, source string, topLevel ...int) int {
	root := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBlockStmt}, topLevel...)
	var unitID int
	for i := 0; i <= root; i++ {
		unitID = b.AddUnit(source)
	}
	return unitID
}

func intLit(b *astsnap.Builder, text string) int {
	tok := b.AddToken(astsnap.Token{Kind: astsnap.TokLiteral, Text: text})
	return b.AddNode(astsnap.ASTNode{Kind: astsnap.KindIntegerLit, FirstToken: tok, LastToken: tok})
}

func ident(b *astsnap.Builder, name string) int {
	tok := b.AddToken(astsnap.Token{Kind: astsnap.TokIdentifier, Text: name})
	return b.AddNode(astsnap.ASTNode{Kind: astsnap.KindIdentifier, FirstToken: tok, LastToken: tok})
}

func TestLowerUnitReturnsConstant(t *testing.T) {
	b := astsnap.NewBuilder()

	lit := intLit(b, "42")
	ret := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindReturnStmt}, lit)
	block := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBlockStmt}, ret)
	name := ident(b, "main")
	fn := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindFuncDecl}, name, block)

	unitID := addRootUnit(b, "", fn)
	snap := b.Build()

	result, err := lower.LowerUnit(snap, unitID, "", registry.NewBuiltins(), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Graphs, 1)

	g := result.Graphs[0]
	require.Equal(t, "main", g.FunctionName)

	last := g.Nodes[g.Len()-1]
	assert.Equal(t, qtjir.Return, last.Op)
	require.Len(t, last.Inputs, 1)
	operand := g.Nodes[last.Inputs[0]]
	assert.Equal(t, qtjir.Constant, operand.Op)
	assert.Equal(t, int64(42), operand.Data.Int)
}

func TestLowerUnitBinaryArithmetic(t *testing.T) {
	b := astsnap.NewBuilder()

	lhs := intLit(b, "1")
	plusTok := b.AddToken(astsnap.Token{Kind: astsnap.TokOperator, Text: "+"})
	_ = plusTok
	rhs := intLit(b, "2")
	bin := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBinaryExpr, FirstToken: plusTok, LastToken: plusTok}, lhs, rhs)
	ret := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindReturnStmt}, bin)
	block := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBlockStmt}, ret)
	name := ident(b, "add")
	fn := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindFuncDecl}, name, block)

	unitID := addRootUnit(b, "", fn)
	snap := b.Build()

	result, err := lower.LowerUnit(snap, unitID, "", registry.NewBuiltins(), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Graphs, 1)

	g := result.Graphs[0]
	last := g.Nodes[g.Len()-1]
	assert.Equal(t, qtjir.Return, last.Op)
	add := g.Nodes[last.Inputs[0]]
	assert.Equal(t, qtjir.Add, add.Op)
	require.Len(t, add.Inputs, 2)
	assert.Equal(t, int64(1), g.Nodes[add.Inputs[0]].Data.Int)
	assert.Equal(t, int64(2), g.Nodes[add.Inputs[1]].Data.Int)
}

func TestLowerUnitIfElseMerges(t *testing.T) {
	b := astsnap.NewBuilder()

	cond := func() int {
		tok := b.AddToken(astsnap.Token{Kind: astsnap.TokLiteral, Text: "true"})
		return b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBoolLit, FirstToken: tok, LastToken: tok})
	}()

	thenRet := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindReturnStmt}, intLit(b, "1"))
	thenBlock := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBlockStmt}, thenRet)
	elseRet := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindReturnStmt}, intLit(b, "2"))
	elseBlock := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBlockStmt}, elseRet)

	ifStmt := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindIfStmt}, cond, thenBlock, elseBlock)
	block := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBlockStmt}, ifStmt)
	name := ident(b, "branchy")
	fn := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindFuncDecl}, name, block)

	unitID := addRootUnit(b, "", fn)
	snap := b.Build()

	result, err := lower.LowerUnit(snap, unitID, "", registry.NewBuiltins(), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Graphs, 1)

	g := result.Graphs[0]
	var branches, returns, labels int
	for i := 0; i < g.Len(); i++ {
		switch g.Nodes[i].Op {
		case qtjir.Branch:
			branches++
		case qtjir.Return:
			returns++
		case qtjir.Label:
			labels++
		}
	}
	assert.Equal(t, 1, branches)
	assert.Equal(t, 2, returns)
	assert.GreaterOrEqual(t, labels, 3)
}

func TestLowerUnitAssertFailureBranch(t *testing.T) {
	b := astsnap.NewBuilder()

	falseTok := b.AddToken(astsnap.Token{Kind: astsnap.TokLiteral, Text: "false"})
	falseLit := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBoolLit, FirstToken: falseTok, LastToken: falseTok})

	calleeTok := b.AddToken(astsnap.Token{Kind: astsnap.TokIdentifier, Text: "assert"})
	callee := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindIdentifier, FirstToken: calleeTok, LastToken: calleeTok})
	call := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindCallExpr}, callee, falseLit)
	exprStmt := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindExprStmt}, call)
	block := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindBlockStmt}, exprStmt)
	name := ident(b, "checks")
	fn := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindFuncDecl}, name, block)

	unitID := addRootUnit(b, "", fn)
	snap := b.Build()

	result, err := lower.LowerUnit(snap, unitID, "", registry.NewBuiltins(), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Graphs, 1)

	g := result.Graphs[0]
	var returns int
	for i := 0; i < g.Len(); i++ {
		if g.Nodes[i].Op == qtjir.Return {
			returns++
		}
	}
	assert.GreaterOrEqual(t, returns, 1)
}
