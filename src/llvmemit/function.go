package llvmemit

import (
	"fmt"
	"strings"

	llvm "tinygo.org/x/go-llvm"

	"github.com/janus-lang/janus-sub005/src/qtjir"
)

// fnState is the per-function emission scratch space: every node's LLVM
// value and the basic block it was produced in (the latter resolves Phi
// incoming edges once the whole function has been walked once), plus the
// label->block map built by the pre-scan and the struct-field order
// recovered for each addressable struct slot (SPEC §6.5 "Field_Access").
type fnState struct {
	g    *qtjir.Graph
	fn   llvm.Value
	cur  llvm.BasicBlock
	term bool // true once cur has received a terminator.

	blockOf      map[uint32]llvm.BasicBlock // Label node id -> its block.
	valueOf      map[uint32]llvm.Value      // any node id -> its LLVM value.
	producedIn   map[uint32]llvm.BasicBlock // any node id -> its producing block.
	allocaFields map[uint32]string          // Alloca/StructAlloca node id -> last-stored field CSV.
}

// sanitizeFunctionName replaces characters LLVM identifier syntax rejects
// unquoted, notably the "test:" prefix's colon (SPEC §4.4.3).
func sanitizeFunctionName(name string) string {
	return strings.ReplaceAll(name, ":", "_")
}

// declareFunction adds fn's signature to the module without a body, so
// forward references (e.g. a Spawn referencing a not-yet-emitted graph)
// resolve during the second pass.
func (e *Emitter) declareFunction(g *qtjir.Graph) llvm.Value {
	paramTys := make([]llvm.Type, len(g.Parameters))
	for i, p := range g.Parameters {
		paramTys[i] = e.llvmTypeForName(p.TypeName)
	}
	ft := llvm.FunctionType(e.llvmReturnType(g.ReturnType), paramTys, false)
	fn := e.mod.AddFunction(sanitizeFunctionName(g.FunctionName), ft)
	for i := range g.Parameters {
		fn.Param(i).SetName(g.Parameters[i].Name)
	}
	e.declaredFns[sanitizeFunctionName(g.FunctionName)] = fn
	return fn
}

// emitFunctionBody walks g's flat node list once, pre-creating one basic
// block per Label node and then emitting every node's instruction into the
// block active at that point in the list; it resolves Phi incoming edges
// in a second, cheap pass once every node's producing block is known
// (SPEC §4.5 "basic-block pre-scan").
func (e *Emitter) emitFunctionBody(g *qtjir.Graph, fn llvm.Value) error {
	st := &fnState{
		g:            g,
		fn:           fn,
		blockOf:      make(map[uint32]llvm.BasicBlock),
		valueOf:      make(map[uint32]llvm.Value),
		producedIn:   make(map[uint32]llvm.BasicBlock),
		allocaFields: make(map[uint32]string),
	}

	entry := e.ctx.AddBasicBlock(fn, "entry")
	for i := 0; i < g.Len(); i++ {
		if g.Nodes[i].Op == qtjir.Label {
			id := g.Nodes[i].ID
			st.blockOf[id] = e.ctx.AddBasicBlock(fn, fmt.Sprintf("L%d", id))
		}
	}

	st.cur = entry
	st.term = false
	e.builder.SetInsertPointAtEnd(st.cur)

	for i := 0; i < g.Len(); i++ {
		n := &g.Nodes[i]

		if n.Op == qtjir.Label {
			next := st.blockOf[n.ID]
			if !st.term {
				e.builder.CreateBr(next)
			}
			st.cur = next
			st.term = false
			e.builder.SetInsertPointAtEnd(st.cur)
			st.producedIn[n.ID] = st.cur
			continue
		}

		v, err := e.emitNode(st, n)
		if err != nil {
			return err
		}
		if !v.IsNil() {
			st.valueOf[n.ID] = v
		}
		st.producedIn[n.ID] = st.cur
	}

	if !st.term {
		if g.ReturnType == "void" {
			e.builder.CreateRetVoid()
		} else {
			e.builder.CreateRet(llvm.ConstInt(e.llvmReturnType(g.ReturnType), 0, false))
		}
	}

	for i := 0; i < g.Len(); i++ {
		n := &g.Nodes[i]
		if n.Op != qtjir.Phi {
			continue
		}
		phiVal, ok := st.valueOf[n.ID]
		if !ok {
			continue
		}
		vals := make([]llvm.Value, 0, len(n.Inputs))
		blocks := make([]llvm.BasicBlock, 0, len(n.Inputs))
		for _, inID := range n.Inputs {
			v, ok := st.valueOf[inID]
			if !ok {
				continue
			}
			vals = append(vals, v)
			blocks = append(blocks, st.producedIn[inID])
		}
		phiVal.AddIncoming(vals, blocks)
	}

	return nil
}

// fieldOrder recovers the comma-joined field-name order of the struct
// value or struct-alloca slot behind id, so FieldAccess/FieldStore can
// resolve a name to a position (SPEC §6.5).
func (st *fnState) fieldOrder(id uint32) ([]string, bool) {
	n := st.g.Nodes[id]
	if n.Op == qtjir.StructConstruct {
		return strings.Split(n.Data.Str, ","), true
	}
	if n.Op == qtjir.Load && len(n.Inputs) == 1 {
		if csv, ok := st.allocaFields[n.Inputs[0]]; ok {
			return strings.Split(csv, ","), true
		}
	}
	return nil, false
}
