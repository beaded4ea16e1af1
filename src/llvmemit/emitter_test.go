package llvmemit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janus-lang/janus-sub005/src/llvmemit"
	"github.com/janus-lang/janus-sub005/src/qtjir"
	"github.com/janus-lang/janus-sub005/src/registry"
)

// buildReturnConstant builds a function returning a fixed integer constant,
// the simplest possible graph the emitter must handle correctly.
func buildReturnConstant(name string, v int64) *qtjir.Graph {
	g := qtjir.NewGraph(name)
	g.ReturnType = "i64"
	b := qtjir.NewBuilder(g)
	c := b.CreateConstant(v)
	b.CreateReturn(c)
	return g
}

func TestEmitGraphsReturnConstant(t *testing.T) {
	g := buildReturnConstant("answer", 42)

	e := llvmemit.NewEmitter("test_mod", registry.NewBuiltins(), registry.NewExtern())
	defer e.Dispose()

	err := e.EmitGraphs([]*qtjir.Graph{g})
	require.NoError(t, err)
	require.NoError(t, e.Verify())

	ir := e.String()
	assert.Contains(t, ir, "define i64 @answer")
	assert.Contains(t, ir, "ret i64 42")
}

func TestEmitGraphsIfElseBranches(t *testing.T) {
	g := qtjir.NewGraph("branchy")
	g.ReturnType = "i64"
	b := qtjir.NewBuilder(g)

	cond := b.CreateConstant(true)
	branch := b.CreateBranch(cond, 0, 0)

	thenLabel := b.CreateLabel()
	one := b.CreateConstant(int64(1))
	b.CreateReturn(one)

	elseLabel := b.CreateLabel()
	two := b.CreateConstant(int64(2))
	b.CreateReturn(two)

	b.PatchBranchTargets(branch, thenLabel, elseLabel)

	e := llvmemit.NewEmitter("branchy_mod", registry.NewBuiltins(), registry.NewExtern())
	defer e.Dispose()

	require.NoError(t, e.EmitGraphs([]*qtjir.Graph{g}))
	require.NoError(t, e.Verify())

	ir := e.String()
	assert.True(t, strings.Contains(ir, "br i1"))
	assert.True(t, strings.Count(ir, "ret i64") >= 2)
}

func TestEmitGraphsCallsRuntimeFunction(t *testing.T) {
	g := qtjir.NewGraph("calls_out")
	g.ReturnType = "i64"
	b := qtjir.NewBuilder(g)

	lhs := b.CreateConstant(int64(2))
	rhs := b.CreateConstant(int64(7))
	call := b.CreateCall("janus_pow", lhs, rhs)
	b.CreateReturn(call)

	e := llvmemit.NewEmitter("calls_mod", registry.NewBuiltins(), registry.NewExtern())
	defer e.Dispose()

	require.NoError(t, e.EmitGraphs([]*qtjir.Graph{g}))
	require.NoError(t, e.Verify())

	ir := e.String()
	assert.Contains(t, ir, "declare i64 @janus_pow")
	assert.Contains(t, ir, "call i64 @janus_pow")
}

// TestEmitGraphsVoidBuiltinDeclaresVoidReturn pins down the bug a blanket
// i64 declaration used to hide: "print"'s registered ReturnKind is
// ReturnVoid, so its declaration and call site must say void, not i64.
func TestEmitGraphsVoidBuiltinDeclaresVoidReturn(t *testing.T) {
	g := qtjir.NewGraph("prints")
	g.ReturnType = "void"
	b := qtjir.NewBuilder(g)

	arg := b.CreateConstant(int64(7))
	b.CreateCall("janus_print", arg)
	zero := b.CreateConstant(int64(0))
	b.CreateReturn(zero)

	e := llvmemit.NewEmitter("prints_mod", registry.NewBuiltins(), registry.NewExtern())
	defer e.Dispose()

	require.NoError(t, e.EmitGraphs([]*qtjir.Graph{g}))
	require.NoError(t, e.Verify())

	ir := e.String()
	assert.Contains(t, ir, "declare void @janus_print")
	assert.Contains(t, ir, "call void @janus_print")
}

// TestEmitGraphsExternSignatureDrivesDeclarationAndCoercion exercises the
// registered extern path: the declared function uses the extern's exact
// parameter/return types, and an i64-valued argument wider than its
// declared i32 slot is coerced with a trunc rather than passed raw.
func TestEmitGraphsExternSignatureDrivesDeclarationAndCoercion(t *testing.T) {
	g := qtjir.NewGraph("extern_caller")
	g.ReturnType = "void"
	b := qtjir.NewBuilder(g)

	arg := b.CreateConstant(int64(3))
	b.CreateCall("zig_add_one", arg)
	zero := b.CreateConstant(int64(0))
	b.CreateReturn(zero)

	ext := registry.NewExtern()
	require.NoError(t, ext.Register(registry.ExternFunction{
		Name:       "zig_add_one",
		ParamTypes: []registry.ExternType{registry.TypeI32},
		ReturnType: registry.TypeI32,
		SourcePath: "/tmp/add_one.zig",
	}))

	e := llvmemit.NewEmitter("extern_mod", registry.NewBuiltins(), ext)
	defer e.Dispose()

	require.NoError(t, e.EmitGraphs([]*qtjir.Graph{g}))
	require.NoError(t, e.Verify())

	ir := e.String()
	assert.Contains(t, ir, "declare i32 @zig_add_one(i32")
	assert.Contains(t, ir, "trunc i64")
	assert.Contains(t, ir, "call i32 @zig_add_one")
}

func TestEmitGraphsTwoPassForwardReference(t *testing.T) {
	caller := qtjir.NewGraph("caller")
	caller.ReturnType = "i64"
	cb := qtjir.NewBuilder(caller)
	fnref := cb.CreateFnRef("callee")
	spawned := cb.CreateSpawn(fnref)
	cb.CreateReturn(spawned)

	callee := buildReturnConstant("callee", 9)

	e := llvmemit.NewEmitter("fwd_mod", registry.NewBuiltins(), registry.NewExtern())
	defer e.Dispose()

	require.NoError(t, e.EmitGraphs([]*qtjir.Graph{caller, callee}))
	require.NoError(t, e.Verify())
}
