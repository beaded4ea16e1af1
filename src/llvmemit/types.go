package llvmemit

import (
	llvm "tinygo.org/x/go-llvm"

	"github.com/janus-lang/janus-sub005/src/registry"
)

// types.go maps QTJIR's lightweight type vocabulary (parameter type-name
// strings, Graph.ReturnType) onto concrete LLVM types, and provides the
// sext/trunc/bitcast coercions Call argument lowering needs when two
// producers disagree on width (SPEC §6.5).

// llvmTypeForName maps a lowerer type-name string to an LLVM type,
// defaulting to i64 for anything it does not recognise.
func (e *Emitter) llvmTypeForName(name string) llvm.Type {
	switch name {
	case "bool":
		return e.ctx.Int1Type()
	case "f32":
		return e.ctx.FloatType()
	case "f64":
		return e.ctx.DoubleType()
	case "i8":
		return e.ctx.Int8Type()
	case "i32":
		return e.ctx.Int32Type()
	case "string":
		return e.ptrTy
	case "slice":
		return e.sliceTy
	default:
		return e.ctx.Int64Type()
	}
}

// llvmReturnType maps Graph.ReturnType to an LLVM return type.
func (e *Emitter) llvmReturnType(graphReturnType string) llvm.Type {
	switch graphReturnType {
	case "void":
		return e.ctx.VoidType()
	case "error_union":
		return e.errUnTy
	default:
		return e.ctx.Int64Type()
	}
}

// coerceToI64 widens or truncates v to i64 for use as a generic Call
// argument slot, matching the target word size expected at call boundaries.
func (e *Emitter) coerceToI64(v llvm.Value) llvm.Value {
	t := v.Type()
	i64 := e.ctx.Int64Type()
	switch t.TypeKind() {
	case llvm.IntegerTypeKind:
		width := t.IntTypeWidth()
		switch {
		case width == 64:
			return v
		case width < 64:
			return e.builder.CreateSExt(v, i64, "sext")
		default:
			return e.builder.CreateTrunc(v, i64, "trunc")
		}
	case llvm.PointerTypeKind:
		return e.builder.CreatePtrToInt(v, i64, "ptrtoint")
	case llvm.DoubleTypeKind, llvm.FloatTypeKind:
		return e.builder.CreateFPToSI(v, i64, "fptosi")
	default:
		return v
	}
}

// coerceToI1 narrows an arbitrary integer value to i1 for use as a Branch
// condition, treating any nonzero value as true.
func (e *Emitter) coerceToI1(v llvm.Value) llvm.Value {
	t := v.Type()
	if t.TypeKind() == llvm.IntegerTypeKind && t.IntTypeWidth() == 1 {
		return v
	}
	zero := llvm.ConstInt(t, 0, false)
	return e.builder.CreateICmp(llvm.IntNE, v, zero, "tobool")
}

// coerceTo converts v to target, the general form of coerceToI64/coerceToI1
// for a registered extern parameter slot whose width or kind may not be
// i64 (SPEC §6.5 "argument-type coercion is explicit"): int<->int widens
// via sext/truncates via trunc, int<->float goes through sitofp/fptosi,
// float<->float through fpext/fptrunc, and int<->pointer through
// inttoptr/ptrtoint.
func (e *Emitter) coerceTo(v llvm.Value, target llvm.Type) llvm.Value {
	if v.Type() == target {
		return v
	}
	switch target.TypeKind() {
	case llvm.IntegerTypeKind:
		switch v.Type().TypeKind() {
		case llvm.IntegerTypeKind:
			from, to := v.Type().IntTypeWidth(), target.IntTypeWidth()
			switch {
			case from < to:
				return e.builder.CreateSExt(v, target, "sext")
			case from > to:
				return e.builder.CreateTrunc(v, target, "trunc")
			default:
				return v
			}
		case llvm.PointerTypeKind:
			return e.builder.CreatePtrToInt(v, target, "ptrtoint")
		case llvm.DoubleTypeKind, llvm.FloatTypeKind:
			return e.builder.CreateFPToSI(v, target, "fptosi")
		default:
			return v
		}
	case llvm.FloatTypeKind, llvm.DoubleTypeKind:
		switch v.Type().TypeKind() {
		case llvm.IntegerTypeKind:
			return e.builder.CreateSIToFP(v, target, "sitofp")
		case llvm.DoubleTypeKind:
			if target.TypeKind() == llvm.FloatTypeKind {
				return e.builder.CreateFPTrunc(v, target, "fptrunc")
			}
			return v
		case llvm.FloatTypeKind:
			if target.TypeKind() == llvm.DoubleTypeKind {
				return e.builder.CreateFPExt(v, target, "fpext")
			}
			return v
		default:
			return v
		}
	case llvm.PointerTypeKind:
		switch v.Type().TypeKind() {
		case llvm.IntegerTypeKind:
			return e.builder.CreateIntToPtr(v, target, "inttoptr")
		case llvm.PointerTypeKind:
			return e.builder.CreateBitCast(v, target, "ptrcast")
		default:
			return v
		}
	default:
		return v
	}
}

// externLLVMType maps a registered foreign-module parameter/return type
// string to its concrete LLVM type (SPEC §3.2, §6.2).
func (e *Emitter) externLLVMType(t registry.ExternType) llvm.Type {
	switch t {
	case registry.TypeI1:
		return e.ctx.Int1Type()
	case registry.TypeI32:
		return e.ctx.Int32Type()
	case registry.TypeI64:
		return e.ctx.Int64Type()
	case registry.TypeFloat:
		return e.ctx.FloatType()
	case registry.TypeDouble:
		return e.ctx.DoubleType()
	case registry.TypePtr:
		return e.ptrTy
	case registry.TypeVoid:
		return e.ctx.VoidType()
	default:
		return e.ctx.Int64Type()
	}
}

// returnKindLLVMType maps a builtin row's registered ReturnKind to its
// concrete LLVM type (SPEC §3.3).
func (e *Emitter) returnKindLLVMType(k registry.ReturnKind) llvm.Type {
	switch k {
	case registry.ReturnVoid:
		return e.ctx.VoidType()
	case registry.ReturnFloat:
		return e.ctx.DoubleType()
	case registry.ReturnBool:
		return e.ctx.Int1Type()
	case registry.ReturnPtr:
		return e.ptrTy
	default:
		return e.ctx.Int64Type()
	}
}
