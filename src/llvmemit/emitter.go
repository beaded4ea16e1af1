// Package llvmemit lowers one or more QTJIR graphs into a single LLVM
// module (SPEC §4.5, §6.3-§6.5), using tinygo.org/x/go-llvm's C-API
// bindings to walk each function's graph once and emit straight-line
// instructions into basic blocks pre-created from its label markers.
package llvmemit

import (
	"fmt"

	llvm "tinygo.org/x/go-llvm"

	"github.com/janus-lang/janus-sub005/src/qtjir"
	"github.com/janus-lang/janus-sub005/src/registry"
)

// Emitter owns one LLVM context/module/builder triple and the emission
// state shared across every graph emitted into it: the slice/optional/
// error-union struct types (SPEC §6.5), the table of lazily-declared
// extern/runtime functions, and the deduplicated string-constant pool.
type Emitter struct {
	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder

	builtins *registry.Builtins
	externs  *registry.Extern

	declaredFns map[string]llvm.Value
	strConsts   map[string]llvm.Value

	sliceTy llvm.Type
	optTy   llvm.Type
	errUnTy llvm.Type
	ptrTy   llvm.Type

	spawnCounter int
}

// NewEmitter returns an Emitter ready to emit into a fresh module named
// moduleName. builtins/externs resolve the real ABI signature of a Call
// node's callee name, when known; unresolved names fall back to a generic
// declaration taking one i64 per argument and returning i64.
func NewEmitter(moduleName string, builtins *registry.Builtins, externs *registry.Extern) *Emitter {
	ctx := llvm.NewContext()
	mod := ctx.NewModule(moduleName)
	e := &Emitter{
		ctx:         ctx,
		mod:         mod,
		builder:     ctx.NewBuilder(),
		builtins:    builtins,
		externs:     externs,
		declaredFns: make(map[string]llvm.Value),
		strConsts:   make(map[string]llvm.Value),
	}
	e.ptrTy = llvm.PointerType(ctx.Int8Type(), 0)
	e.sliceTy = ctx.StructType([]llvm.Type{e.ptrTy, ctx.Int64Type()}, false)
	e.optTy = ctx.StructType([]llvm.Type{ctx.Int8Type(), ctx.Int64Type()}, false)
	e.errUnTy = ctx.StructType([]llvm.Type{ctx.Int8Type(), ctx.Int64Type()}, false)
	return e
}

// Dispose releases the emitter's native LLVM resources. Callers that only
// need ToString's textual output should call Dispose once that string has
// been captured.
func (e *Emitter) Dispose() {
	e.builder.Dispose()
	e.mod.Dispose()
	e.ctx.Dispose()
}

// EmitGraphs emits one LLVM function per graph, in order. A graph whose
// function is later referenced by a Spawn node before it has been emitted
// still resolves correctly: function declarations are created (signature
// only) in a first pass, bodies filled in a second, using a "declare all,
// then define all" module layout.
func (e *Emitter) EmitGraphs(graphs []*qtjir.Graph) error {
	fns := make([]llvm.Value, len(graphs))
	for i, g := range graphs {
		fns[i] = e.declareFunction(g)
	}
	for i, g := range graphs {
		if err := e.emitFunctionBody(g, fns[i]); err != nil {
			return fmt.Errorf("llvmemit: function %q: %w", g.FunctionName, err)
		}
	}
	return nil
}

// Verify runs the LLVM module verifier, returning a descriptive error on
// the first structural problem found (SPEC §4.5 "module verification").
func (e *Emitter) Verify() error {
	return llvm.VerifyModule(e.mod, llvm.ReturnStatusAction)
}

// String renders the module's textual LLVM IR (SPEC §4.5 "to_string()").
func (e *Emitter) String() string {
	return e.mod.String()
}
