package llvmemit

import (
	"fmt"
	"strconv"
	"strings"

	llvm "tinygo.org/x/go-llvm"

	"github.com/janus-lang/janus-sub005/src/qtjir"
)

// opcodes.go is the per-node emission dispatch (SPEC §4.5, §6.5): one case
// per Opcode, returning the node's LLVM value (the nil Value for opcodes
// with no result, e.g. FieldStore/Branch/Jump/Return).

func (e *Emitter) emitNode(st *fnState, n *qtjir.Node) (llvm.Value, error) {
	switch n.Op {
	case qtjir.Constant:
		return e.emitConstant(n), nil

	case qtjir.Argument:
		return st.fn.Param(int(n.Data.Int)), nil

	case qtjir.Alloca:
		return e.builder.CreateAlloca(e.ctx.Int64Type(), n.Data.Str), nil

	case qtjir.StructAlloca:
		return e.builder.CreateAlloca(e.genericStructTy(), n.Data.Str), nil

	case qtjir.Load:
		ptr := st.valueOf[n.Inputs[0]]
		return e.builder.CreateLoad(ptr, "load"), nil

	case qtjir.Store:
		val, ptr := st.valueOf[n.Inputs[0]], st.valueOf[n.Inputs[1]]
		if src := st.g.Nodes[n.Inputs[0]]; src.Op == qtjir.StructConstruct {
			st.allocaFields[n.Inputs[1]] = src.Data.Str
		}
		return e.builder.CreateStore(e.storeCoerce(ptr, val), ptr), nil

	case qtjir.Phi:
		return e.builder.CreatePHI(e.ctx.Int64Type(), "phi"), nil

	case qtjir.Index:
		arr := st.valueOf[n.Inputs[0]]
		idx := st.valueOf[n.Inputs[1]]
		return e.builder.CreateGEP(arr, []llvm.Value{e.coerceToI64(idx)}, "index"), nil

	case qtjir.Slice:
		return e.emitSlice(st, n), nil

	case qtjir.SliceIndex:
		slice := st.valueOf[n.Inputs[0]]
		idx := e.coerceToI64(st.valueOf[n.Inputs[1]])
		ptr := e.builder.CreateExtractValue(slice, 0, "slice.ptr")
		elem := e.builder.CreateGEP(ptr, []llvm.Value{idx}, "slice.elem")
		return e.builder.CreateLoad(elem, "slice.load"), nil

	case qtjir.SliceLen:
		slice := st.valueOf[n.Inputs[0]]
		return e.builder.CreateExtractValue(slice, 1, "slice.len"), nil

	case qtjir.Range:
		rangeTy := e.ctx.StructType([]llvm.Type{e.ctx.Int64Type(), e.ctx.Int64Type()}, false)
		agg := llvm.Undef(rangeTy)
		agg = e.builder.CreateInsertValue(agg, e.coerceToI64(st.valueOf[n.Inputs[0]]), 0, "range.start")
		agg = e.builder.CreateInsertValue(agg, e.coerceToI64(st.valueOf[n.Inputs[1]]), 1, "range.end")
		return agg, nil

	case qtjir.ArrayConstruct:
		return e.emitArrayConstruct(st, n), nil

	case qtjir.StructConstruct:
		return e.emitStructConstruct(st, n), nil

	case qtjir.FieldAccess:
		return e.emitFieldAccess(st, n)

	case qtjir.FieldStore:
		return llvm.Value{}, e.emitFieldStore(st, n)

	case qtjir.OptionalNone:
		agg := llvm.Undef(e.optTy)
		return e.builder.CreateInsertValue(agg, llvm.ConstInt(e.ctx.Int8Type(), 0, false), 0, "opt.tag"), nil

	case qtjir.OptionalSome:
		agg := llvm.Undef(e.optTy)
		agg = e.builder.CreateInsertValue(agg, llvm.ConstInt(e.ctx.Int8Type(), 1, false), 0, "opt.tag")
		return e.builder.CreateInsertValue(agg, e.coerceToI64(st.valueOf[n.Inputs[0]]), 1, "opt.val"), nil

	case qtjir.OptionalUnwrap:
		return e.builder.CreateExtractValue(st.valueOf[n.Inputs[0]], 1, "opt.unwrap"), nil

	case qtjir.OptionalIsSome:
		tag := e.builder.CreateExtractValue(st.valueOf[n.Inputs[0]], 0, "opt.tag")
		return e.builder.CreateICmp(llvm.IntNE, tag, llvm.ConstInt(e.ctx.Int8Type(), 0, false), "opt.issome"), nil

	case qtjir.ErrorUnionConstruct:
		agg := llvm.Undef(e.errUnTy)
		agg = e.builder.CreateInsertValue(agg, llvm.ConstInt(e.ctx.Int8Type(), 0, false), 0, "eu.tag")
		return e.builder.CreateInsertValue(agg, e.coerceToI64(st.valueOf[n.Inputs[0]]), 1, "eu.ok"), nil

	case qtjir.ErrorFailConstruct:
		agg := llvm.Undef(e.errUnTy)
		agg = e.builder.CreateInsertValue(agg, llvm.ConstInt(e.ctx.Int8Type(), 1, false), 0, "eu.tag")
		return e.builder.CreateInsertValue(agg, e.coerceToI64(st.valueOf[n.Inputs[0]]), 1, "eu.err"), nil

	case qtjir.ErrorUnionIsError:
		tag := e.builder.CreateExtractValue(st.valueOf[n.Inputs[0]], 0, "eu.tag")
		return e.builder.CreateICmp(llvm.IntNE, tag, llvm.ConstInt(e.ctx.Int8Type(), 0, false), "eu.iserror"), nil

	case qtjir.ErrorUnionUnwrap, qtjir.ErrorUnionGetError:
		return e.builder.CreateExtractValue(st.valueOf[n.Inputs[0]], 1, "eu.payload"), nil

	case qtjir.UnionConstruct:
		agg := llvm.Undef(e.errUnTy)
		agg = e.builder.CreateInsertValue(agg, llvm.ConstInt(e.ctx.Int8Type(), uint64(n.Data.Int), false), 0, "union.tag")
		return e.builder.CreateInsertValue(agg, e.coerceToI64(st.valueOf[n.Inputs[0]]), 1, "union.payload"), nil

	case qtjir.UnionTagCheck:
		tag := e.builder.CreateExtractValue(st.valueOf[n.Inputs[0]], 0, "union.tag")
		return e.builder.CreateICmp(llvm.IntEQ, tag, llvm.ConstInt(e.ctx.Int8Type(), uint64(n.Data.Int), false), "union.tagcheck"), nil

	case qtjir.UnionPayloadExtract:
		return e.builder.CreateExtractValue(st.valueOf[n.Inputs[0]], 1, "union.payload"), nil

	case qtjir.FnRef:
		fn, ok := e.declaredFns[sanitizeFunctionName(n.Data.Str)]
		if !ok {
			fn = e.getOrDeclareRuntimeFn(n.Data.Str, 0)
		}
		return e.builder.CreatePtrToInt(fn, e.ctx.Int64Type(), "fnref"), nil

	case qtjir.ClosureCreate:
		return e.emitClosureCreate(st, n), nil

	case qtjir.ClosureCall:
		return e.emitRuntimeCallByInputs(st, "janus_closure_call", n.Inputs), nil

	case qtjir.ClosureEnvLoad:
		return e.emitRuntimeCallByInputs(st, "janus_closure_env_load", n.Inputs), nil

	case qtjir.ClosureEnvStore:
		v := e.emitRuntimeCallByInputs(st, "janus_closure_env_store", n.Inputs)
		return v, nil

	case qtjir.Call:
		return e.emitCall(st, n)

	case qtjir.Return:
		return llvm.Value{}, e.emitReturn(st, n)

	case qtjir.Branch:
		return llvm.Value{}, e.emitBranch(st, n)

	case qtjir.Jump:
		return llvm.Value{}, e.emitJump(st, n)

	case qtjir.Add, qtjir.Sub, qtjir.Mul, qtjir.Div, qtjir.Mod,
		qtjir.Equal, qtjir.NotEqual, qtjir.Less, qtjir.LessEqual, qtjir.Greater, qtjir.GreaterEqual,
		qtjir.BitAnd, qtjir.BitOr, qtjir.Xor, qtjir.Shl, qtjir.Shr:
		return e.emitArithmetic(st, n), nil

	case qtjir.Pow:
		return e.emitRuntimeCallByInputs(st, "janus_pow", n.Inputs), nil

	case qtjir.BitNot:
		v := e.coerceToI64(st.valueOf[n.Inputs[0]])
		return e.builder.CreateXor(v, llvm.ConstInt(e.ctx.Int64Type(), ^uint64(0), false), "bitnot"), nil

	case qtjir.TensorMatmul, qtjir.TensorConv, qtjir.TensorReduce, qtjir.TensorScalarMul,
		qtjir.TensorContract, qtjir.TensorRelu, qtjir.TensorSoftmax,
		qtjir.TensorFusedMatmulRelu, qtjir.TensorFusedMatmulAdd:
		return e.emitTensorOp(st, n), nil

	case qtjir.SSMScan, qtjir.SSMSelectiveScan:
		return e.emitRuntimeCallByInputs(st, tensorRuntimeName(n.Op), n.Inputs), nil

	case qtjir.QuantumGate:
		return e.emitQuantumGate(st, n), nil

	case qtjir.QuantumMeasure:
		return e.emitQuantumMeasure(st, n), nil

	case qtjir.Await:
		return e.emitRuntimeCallByInputs(st, "janus_await", n.Inputs), nil

	case qtjir.Spawn:
		return e.emitSpawn(st, n), nil

	case qtjir.NurseryBegin:
		return e.builder.CreateCall(e.getOrDeclareRuntimeFn("janus_nursery_begin", 0), nil, "nursery"), nil

	case qtjir.NurseryEnd:
		return e.emitRuntimeCallByInputs(st, "janus_nursery_end", n.Inputs), nil

	case qtjir.AsyncCall:
		return e.emitNamedCall(st, n.Data.Str, n.Inputs), nil

	case qtjir.TraitMethodCall:
		return e.emitRuntimeCallByInputs(st, "janus_trait_call", n.Inputs), nil

	default:
		return e.emitReservedOp(st, n), nil
	}
}

func (e *Emitter) emitConstant(n *qtjir.Node) llvm.Value {
	switch n.Data.Kind {
	case qtjir.DataInt:
		return llvm.ConstInt(e.ctx.Int64Type(), uint64(n.Data.Int), true)
	case qtjir.DataFloat:
		return llvm.ConstFloat(e.ctx.DoubleType(), n.Data.Flt)
	case qtjir.DataBool:
		v := uint64(0)
		if n.Data.Bool {
			v = 1
		}
		return llvm.ConstInt(e.ctx.Int1Type(), v, false)
	case qtjir.DataString:
		return e.internString(n.Data.Str)
	default:
		return llvm.ConstInt(e.ctx.Int64Type(), 0, true)
	}
}

// internString returns a deduplicated i8* pointer to a global string
// constant for s (SPEC §6.5 "string constants").
func (e *Emitter) internString(s string) llvm.Value {
	if v, ok := e.strConsts[s]; ok {
		return v
	}
	v := e.builder.CreateGlobalStringPtr(s, "str")
	e.strConsts[s] = v
	return v
}

// genericStructTy is the fixed-capacity backing store for a var-bound
// struct local; QTJIR carries struct shape on the StructConstruct node
// that initialises a slot rather than on the slot's declared type, so the
// alloca itself is just wide enough to hold any struct this module emits.
func (e *Emitter) genericStructTy() llvm.Type {
	return llvm.ArrayType(e.ctx.Int64Type(), 16)
}

// storeCoerce widens/narrows val to ptr's pointee width where that can be
// inferred cheaply (i64 slots almost everywhere; aggregate slots store
// their own width untouched).
func (e *Emitter) storeCoerce(ptr, val llvm.Value) llvm.Value {
	slotTy := ptr.Type().ElementType()
	if slotTy.TypeKind() == llvm.IntegerTypeKind && val.Type() != slotTy {
		return e.coerceTo(val, slotTy)
	}
	return val
}

func (e *Emitter) emitSlice(st *fnState, n *qtjir.Node) llvm.Value {
	arr := st.valueOf[n.Inputs[0]]
	start := e.coerceToI64(st.valueOf[n.Inputs[1]])
	end := e.coerceToI64(st.valueOf[n.Inputs[2]])
	if arr.Type().TypeKind() != llvm.PointerTypeKind {
		arr = e.builder.CreateIntToPtr(arr, e.ptrTy, "slice.base")
	}
	ptr := e.builder.CreateGEP(arr, []llvm.Value{start}, "slice.ptr")
	length := e.builder.CreateSub(end, start, "slice.len")
	if n.Data.Kind == qtjir.DataInt && n.Data.Int == 1 {
		length = e.builder.CreateAdd(length, llvm.ConstInt(e.ctx.Int64Type(), 1, false), "slice.len.incl")
	}
	agg := llvm.Undef(e.sliceTy)
	agg = e.builder.CreateInsertValue(agg, ptr, 0, "slice.agg.ptr")
	return e.builder.CreateInsertValue(agg, length, 1, "slice.agg.len")
}

func (e *Emitter) emitArrayConstruct(st *fnState, n *qtjir.Node) llvm.Value {
	arrTy := llvm.ArrayType(e.ctx.Int64Type(), len(n.Inputs))
	slot := e.builder.CreateAlloca(arrTy, "arr")
	for i, inID := range n.Inputs {
		idx := llvm.ConstInt(e.ctx.Int32Type(), uint64(i), false)
		elemPtr := e.builder.CreateGEP(slot, []llvm.Value{llvm.ConstInt(e.ctx.Int32Type(), 0, false), idx}, "arr.elem")
		e.builder.CreateStore(e.coerceToI64(st.valueOf[inID]), elemPtr)
	}
	return e.builder.CreateBitCast(slot, e.ptrTy, "arr.ptr")
}

func (e *Emitter) emitStructConstruct(st *fnState, n *qtjir.Node) llvm.Value {
	ty := e.genericStructTy()
	agg := llvm.Undef(ty)
	for i, inID := range n.Inputs {
		agg = e.builder.CreateInsertValue(agg, e.coerceToI64(st.valueOf[inID]), i, "struct.field")
	}
	return agg
}

func (e *Emitter) emitFieldAccess(st *fnState, n *qtjir.Node) (llvm.Value, error) {
	fields, ok := st.fieldOrder(n.Inputs[0])
	if !ok {
		return llvm.Value{}, fmt.Errorf("field_access: cannot resolve field order for %q", n.Data.Str)
	}
	idx := indexOfField(fields, n.Data.Str)
	if idx < 0 {
		return llvm.Value{}, fmt.Errorf("field_access: unknown field %q", n.Data.Str)
	}
	structVal := st.valueOf[n.Inputs[0]]
	return e.builder.CreateExtractValue(structVal, idx, "field"), nil
}

func (e *Emitter) emitFieldStore(st *fnState, n *qtjir.Node) error {
	fields, ok := st.fieldOrder(n.Inputs[0])
	if !ok {
		return fmt.Errorf("field_store: cannot resolve field order for %q", n.Data.Str)
	}
	idx := indexOfField(fields, n.Data.Str)
	if idx < 0 {
		return fmt.Errorf("field_store: unknown field %q", n.Data.Str)
	}
	structAddr := st.valueOf[n.Inputs[0]]
	agg := e.builder.CreateLoad(structAddr, "struct.cur")
	updated := e.builder.CreateInsertValue(agg, e.coerceToI64(st.valueOf[n.Inputs[1]]), idx, "struct.upd")
	e.builder.CreateStore(updated, structAddr)
	return nil
}

func indexOfField(fields []string, name string) int {
	for i, f := range fields {
		if f == name {
			return i
		}
	}
	return -1
}

func (e *Emitter) emitReturn(st *fnState, n *qtjir.Node) error {
	val := st.valueOf[n.Inputs[0]]
	retTy := st.fn.Type().ElementType().ReturnType()
	if retTy.TypeKind() == llvm.VoidTypeKind {
		e.builder.CreateRetVoid()
	} else if val.Type() != retTy && retTy.TypeKind() == llvm.IntegerTypeKind {
		e.builder.CreateRet(e.coerceToI64(val))
	} else {
		e.builder.CreateRet(val)
	}
	st.term = true
	return nil
}

func (e *Emitter) emitBranch(st *fnState, n *qtjir.Node) error {
	cond := e.coerceToI1(st.valueOf[n.Inputs[0]])
	trueBB := st.blockOf[n.Inputs[1]]
	falseBB := st.blockOf[n.Inputs[2]]
	e.builder.CreateCondBr(cond, trueBB, falseBB)
	st.term = true
	return nil
}

func (e *Emitter) emitJump(st *fnState, n *qtjir.Node) error {
	target := st.blockOf[n.Inputs[0]]
	e.builder.CreateBr(target)
	st.term = true
	return nil
}

func (e *Emitter) emitArithmetic(st *fnState, n *qtjir.Node) llvm.Value {
	lhs := e.coerceToI64(st.valueOf[n.Inputs[0]])
	rhs := e.coerceToI64(st.valueOf[n.Inputs[1]])
	b := e.builder
	switch n.Op {
	case qtjir.Add:
		return b.CreateAdd(lhs, rhs, "add")
	case qtjir.Sub:
		return b.CreateSub(lhs, rhs, "sub")
	case qtjir.Mul:
		return b.CreateMul(lhs, rhs, "mul")
	case qtjir.Div:
		return b.CreateSDiv(lhs, rhs, "div")
	case qtjir.Mod:
		return b.CreateSRem(lhs, rhs, "mod")
	case qtjir.Equal:
		return b.CreateICmp(llvm.IntEQ, lhs, rhs, "eq")
	case qtjir.NotEqual:
		return b.CreateICmp(llvm.IntNE, lhs, rhs, "ne")
	case qtjir.Less:
		return b.CreateICmp(llvm.IntSLT, lhs, rhs, "lt")
	case qtjir.LessEqual:
		return b.CreateICmp(llvm.IntSLE, lhs, rhs, "le")
	case qtjir.Greater:
		return b.CreateICmp(llvm.IntSGT, lhs, rhs, "gt")
	case qtjir.GreaterEqual:
		return b.CreateICmp(llvm.IntSGE, lhs, rhs, "ge")
	case qtjir.BitAnd:
		return b.CreateAnd(lhs, rhs, "and")
	case qtjir.BitOr:
		return b.CreateOr(lhs, rhs, "or")
	case qtjir.Xor:
		return b.CreateXor(lhs, rhs, "xor")
	case qtjir.Shl:
		return b.CreateShl(lhs, rhs, "shl")
	case qtjir.Shr:
		return b.CreateAShr(lhs, rhs, "shr")
	default:
		panic("llvmemit: emitArithmetic: unreachable opcode " + n.Op.String())
	}
}

// emitCall resolves a Call node's callee against the builtin/extern ABI
// tables, falling back to a generic declaration taking one i64 per argument
// and returning i64 for anything else (SPEC §6.4 "runtime ABI symbols").
func (e *Emitter) emitCall(st *fnState, n *qtjir.Node) (llvm.Value, error) {
	return e.emitNamedCall(st, n.Data.Str, n.Inputs), nil
}

func (e *Emitter) emitNamedCall(st *fnState, name string, inputs []uint32) llvm.Value {
	fn := e.getOrDeclareRuntimeFn(name, len(inputs))
	args := make([]llvm.Value, len(inputs))
	if ext, ok := e.externs.Lookup(name); ok {
		for i, inID := range inputs {
			v := st.valueOf[inID]
			if i < len(ext.ParamTypes) {
				args[i] = e.coerceTo(v, e.externLLVMType(ext.ParamTypes[i]))
			} else {
				args[i] = e.coerceToI64(v)
			}
		}
	} else {
		for i, inID := range inputs {
			args[i] = e.coerceToI64(st.valueOf[inID])
		}
	}
	return e.builder.CreateCall(fn, args, callResultName(fn))
}

func (e *Emitter) emitRuntimeCallByInputs(st *fnState, name string, inputs []uint32) llvm.Value {
	return e.emitNamedCall(st, name, inputs)
}

func callResultName(fn llvm.Value) string {
	retTy := fn.Type().ElementType().ReturnType()
	if retTy.TypeKind() == llvm.VoidTypeKind {
		return ""
	}
	return "call"
}

// getOrDeclareRuntimeFn looks up or lazily declares an extern function,
// reusing the same declaration for every call site with the same name
// (SPEC §6.4). The declared signature comes from the extern registry's
// exact ParamTypes/ReturnType when name was registered by a foreign-module
// import, or from the builtin registry's ReturnKind when name is a known
// runtime symbol (arguments stay the generic i64 slot width, since SPEC
// §3.3's builtin rows carry no per-parameter type); anything neither
// registry knows about falls back to the generic (i64,...) -> i64 runtime
// ABI.
func (e *Emitter) getOrDeclareRuntimeFn(name string, argc int) llvm.Value {
	if fn, ok := e.declaredFns[name]; ok {
		return fn
	}
	retTy, paramTys := e.callSignature(name, argc)
	ft := llvm.FunctionType(retTy, paramTys, false)
	fn := e.mod.AddFunction(name, ft)
	e.declaredFns[name] = fn
	return fn
}

// callSignature resolves name's declared return and parameter LLVM types
// against the extern and builtin registries in that order.
func (e *Emitter) callSignature(name string, argc int) (llvm.Type, []llvm.Type) {
	if ext, ok := e.externs.Lookup(name); ok {
		paramTys := make([]llvm.Type, len(ext.ParamTypes))
		for i, t := range ext.ParamTypes {
			paramTys[i] = e.externLLVMType(t)
		}
		return e.externLLVMType(ext.ReturnType), paramTys
	}
	paramTys := make([]llvm.Type, argc)
	for i := range paramTys {
		paramTys[i] = e.ctx.Int64Type()
	}
	if entry, ok := e.builtins.LookupByRuntimeName(name); ok {
		return e.returnKindLLVMType(entry.ReturnKind), paramTys
	}
	return e.ctx.Int64Type(), paramTys
}

func (e *Emitter) emitClosureCreate(st *fnState, n *qtjir.Node) llvm.Value {
	envCount := len(n.Inputs) - 1
	ty := llvm.ArrayType(e.ctx.Int64Type(), envCount+1)
	slot := e.builder.CreateAlloca(ty, "closure")
	for i, inID := range n.Inputs {
		idx := llvm.ConstInt(e.ctx.Int32Type(), uint64(i), false)
		elemPtr := e.builder.CreateGEP(slot, []llvm.Value{llvm.ConstInt(e.ctx.Int32Type(), 0, false), idx}, "closure.slot")
		e.builder.CreateStore(e.coerceToI64(st.valueOf[inID]), elemPtr)
	}
	return e.builder.CreatePtrToInt(slot, e.ctx.Int64Type(), "closure.handle")
}

func tensorRuntimeName(op qtjir.Opcode) string {
	switch op {
	case qtjir.TensorMatmul:
		return "janus_tensor_matmul"
	case qtjir.TensorConv:
		return "janus_tensor_conv"
	case qtjir.TensorReduce:
		return "janus_tensor_reduce"
	case qtjir.TensorScalarMul:
		return "janus_tensor_scalar_mul"
	case qtjir.TensorContract:
		return "janus_tensor_contract"
	case qtjir.TensorRelu:
		return "janus_tensor_relu"
	case qtjir.TensorSoftmax:
		return "janus_tensor_softmax"
	case qtjir.TensorFusedMatmulRelu:
		return "janus_tensor_fused_matmul_relu"
	case qtjir.TensorFusedMatmulAdd:
		return "janus_tensor_fused_matmul_add"
	case qtjir.SSMScan:
		return "janus_ssm_scan"
	case qtjir.SSMSelectiveScan:
		return "janus_ssm_selective_scan"
	default:
		return "janus_tensor_op"
	}
}

func (e *Emitter) emitTensorOp(st *fnState, n *qtjir.Node) llvm.Value {
	name := tensorRuntimeName(n.Op)
	args := make([]llvm.Value, len(n.Inputs))
	for i, inID := range n.Inputs {
		args[i] = e.coerceToI64(st.valueOf[inID])
	}
	if n.Tensor != nil {
		for _, dim := range n.Tensor.Shape {
			args = append(args, llvm.ConstInt(e.ctx.Int64Type(), uint64(dim), true))
		}
		args = append(args, llvm.ConstInt(e.ctx.Int64Type(), uint64(n.Tensor.DType), false))
	}
	fn := e.getOrDeclareRuntimeFn(name, len(args))
	return e.builder.CreateCall(fn, args, "call")
}

func (e *Emitter) emitQuantumGate(st *fnState, n *qtjir.Node) llvm.Value {
	name := "janus_quantum_gate"
	args := make([]llvm.Value, 0, len(n.Inputs)+2)
	gate := int64(0)
	if n.Quantum != nil {
		gate = int64(n.Quantum.GateType)
	}
	args = append(args, llvm.ConstInt(e.ctx.Int64Type(), uint64(gate), false))
	for _, inID := range n.Inputs {
		args = append(args, e.coerceToI64(st.valueOf[inID]))
	}
	if n.Quantum != nil {
		for _, p := range n.Quantum.Parameters {
			args = append(args, e.builder.CreateFPToSI(llvm.ConstFloat(e.ctx.DoubleType(), p), e.ctx.Int64Type(), "param"))
		}
	}
	fn := e.getOrDeclareRuntimeFn(name, len(args))
	return e.builder.CreateCall(fn, args, "call")
}

func (e *Emitter) emitQuantumMeasure(st *fnState, n *qtjir.Node) llvm.Value {
	args := make([]llvm.Value, len(n.Inputs))
	for i, inID := range n.Inputs {
		args[i] = e.coerceToI64(st.valueOf[inID])
	}
	fn := e.getOrDeclareRuntimeFn("janus_quantum_measure", len(args))
	return e.builder.CreateCall(fn, args, "call")
}

func (e *Emitter) emitSpawn(st *fnState, n *qtjir.Node) llvm.Value {
	fnPtr := e.coerceToI64(st.valueOf[n.Inputs[0]])
	argVals := n.Inputs[1:]
	ty := llvm.ArrayType(e.ctx.Int64Type(), len(argVals)+1)
	e.spawnCounter++
	slot := e.builder.CreateAlloca(ty, "spawn.args."+strconv.Itoa(e.spawnCounter))
	for i, inID := range argVals {
		idx := llvm.ConstInt(e.ctx.Int32Type(), uint64(i), false)
		elemPtr := e.builder.CreateGEP(slot, []llvm.Value{llvm.ConstInt(e.ctx.Int32Type(), 0, false), idx}, "spawn.slot")
		e.builder.CreateStore(e.coerceToI64(st.valueOf[inID]), elemPtr)
	}
	argsPtr := e.builder.CreatePtrToInt(slot, e.ctx.Int64Type(), "spawn.argsptr")
	fn := e.getOrDeclareRuntimeFn("janus_spawn", 3)
	return e.builder.CreateCall(fn, []llvm.Value{fnPtr, argsPtr, llvm.ConstInt(e.ctx.Int64Type(), uint64(len(argVals)), false)}, "spawn.handle")
}

// emitReservedOp handles the channel/select/using/vtable opcodes the
// builder does not yet construct (reserved for a future concurrency
// lowering pass); it still emits a plausible runtime call rather than
// panicking, so a graph built directly against these opcodes (bypassing
// the lowerer) still produces valid IR.
func (e *Emitter) emitReservedOp(st *fnState, n *qtjir.Node) llvm.Value {
	name := "janus_" + strings.ToLower(n.Op.String())
	return e.emitRuntimeCallByInputs(st, name, n.Inputs)
}
