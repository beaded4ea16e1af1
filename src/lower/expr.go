package lower

import (
	"strings"

	"github.com/janus-lang/janus-sub005/src/astsnap"
	"github.com/janus-lang/janus-sub005/src/qtjir"
	"github.com/janus-lang/janus-sub005/src/registry"
)

// lowerExpression lowers ast as an R-value, memoizing through node_map
// (SPEC §4.4.4).
func (c *Context) lowerExpression(astID int, warn func(string)) (uint32, error) {
	if id, ok := c.NodeMap[astID]; ok {
		return id, nil
	}
	id, err := c.lowerExpressionUncached(astID, warn)
	if err != nil {
		return 0, err
	}
	c.NodeMap[astID] = id
	return id, nil
}

func (c *Context) lowerExpressionUncached(astID int, warn func(string)) (uint32, error) {
	n := c.node(astID)
	b := c.Builder

	switch n.Kind {
	case astsnap.KindIntegerLit:
		v, err := parseIntegerLiteral(c.lexeme(c.Snapshot.GetToken(n.FirstToken)))
		if err != nil {
			return 0, err
		}
		return b.CreateConstant(v), nil

	case astsnap.KindFloatLit:
		v, err := parseFloatLiteral(c.lexeme(c.Snapshot.GetToken(n.FirstToken)))
		if err != nil {
			return 0, err
		}
		return b.CreateConstant(v), nil

	case astsnap.KindBoolLit:
		return b.CreateConstant(c.lexeme(c.Snapshot.GetToken(n.FirstToken)) == "true"), nil

	case astsnap.KindCharLit:
		return b.CreateConstant(decodeCharLiteral(c.lexeme(c.Snapshot.GetToken(n.FirstToken)))), nil

	case astsnap.KindStringLit:
		return b.CreateConstant(decodeStringLiteral(c.lexeme(c.Snapshot.GetToken(n.FirstToken)))), nil

	case astsnap.KindNullLit:
		return b.CreateConstant(int64(0)), nil

	case astsnap.KindIdentifier:
		name := c.identifierName(astID)
		id, ok := c.Lookup(name)
		if !ok {
			return 0, errf("undefined variable %q", name)
		}
		if c.Builder.Graph.Nodes[id].Op == qtjir.Alloca || c.Builder.Graph.Nodes[id].Op == qtjir.StructAlloca {
			return b.BuildLoad(id), nil
		}
		return id, nil

	case astsnap.KindBinaryExpr:
		return c.lowerBinaryExpr(astID, warn)

	case astsnap.KindUnaryExpr:
		return c.lowerUnaryExpr(astID, warn)

	case astsnap.KindCallExpr:
		return c.lowerCallExpr(astID, warn)

	case astsnap.KindArrayLit:
		var elems []uint32
		for _, ch := range c.children(astID) {
			v, err := c.lowerExpression(ch, warn)
			if err != nil {
				return 0, err
			}
			elems = append(elems, v)
		}
		return b.CreateArrayConstruct(elems...), nil

	case astsnap.KindIndexExpr:
		kids := c.children(astID)
		if len(kids) != 2 {
			return 0, errf("index_expr expects 2 children, got %d", len(kids))
		}
		arr, err := c.lowerExpression(kids[0], warn)
		if err != nil {
			return 0, err
		}
		idx, err := c.lowerExpression(kids[1], warn)
		if err != nil {
			return 0, err
		}
		if c.isSlice(arr) {
			id := b.CreateSliceIndex(arr, idx)
			return id, nil
		}
		addr := b.CreateIndex(arr, idx)
		return b.BuildLoad(addr), nil

	case astsnap.KindSliceInclusiveExpr, astsnap.KindSliceExclusiveExpr:
		kids := c.children(astID)
		if len(kids) != 3 {
			return 0, errf("slice expr expects 3 children, got %d", len(kids))
		}
		arr, err := c.lowerExpression(kids[0], warn)
		if err != nil {
			return 0, err
		}
		start, err := c.lowerExpression(kids[1], warn)
		if err != nil {
			return 0, err
		}
		end, err := c.lowerExpression(kids[2], warn)
		if err != nil {
			return 0, err
		}
		inclusive := n.Kind == astsnap.KindSliceInclusiveExpr
		id := b.CreateSlice(arr, start, end, inclusive)
		c.markSlice(id)
		return id, nil

	case astsnap.KindFieldExpr:
		return c.lowerFieldExpr(astID, warn)

	case astsnap.KindStructLiteral:
		return c.lowerStructLiteral(astID, warn)

	case astsnap.KindRangeInclusiveExpr, astsnap.KindRangeExclusiveExpr:
		kids := c.children(astID)
		if len(kids) != 2 {
			return 0, errf("range expr expects 2 children, got %d", len(kids))
		}
		start, err := c.lowerExpression(kids[0], warn)
		if err != nil {
			return 0, err
		}
		end, err := c.lowerExpression(kids[1], warn)
		if err != nil {
			return 0, err
		}
		return b.CreateRange(start, end, n.Kind == astsnap.KindRangeInclusiveExpr), nil

	case astsnap.KindCatchExpr:
		return c.lowerCatchExpr(astID, warn)

	case astsnap.KindTryExpr:
		return c.lowerTryExpr(astID, warn)

	default:
		return 0, errf("AST kind %v is not a valid expression", n.Kind)
	}
}

// lowerUnaryExpr lowers `-x`, `!x`/`not x`, `~x` (SPEC §4.4.4).
func (c *Context) lowerUnaryExpr(astID int, warn func(string)) (uint32, error) {
	n := c.node(astID)
	kids := c.children(astID)
	if len(kids) != 1 {
		return 0, errf("unary_expr expects 1 child, got %d", len(kids))
	}
	operand, err := c.lowerExpression(kids[0], warn)
	if err != nil {
		return 0, err
	}
	op := c.lexeme(c.Snapshot.GetToken(n.FirstToken))
	switch op {
	case "-":
		zero := c.Builder.CreateConstant(int64(0))
		return c.Builder.CreateBinary(qtjir.Sub, zero, operand), nil
	case "!", "not":
		f := c.Builder.CreateConstant(false)
		return c.Builder.CreateBinary(qtjir.Equal, operand, f), nil
	case "~":
		return c.Builder.CreateUnary(qtjir.BitNot, operand), nil
	default:
		return 0, errf("unrecognised unary operator %q", op)
	}
}

// lowerBinaryExpr dispatches assignment, compound assignment, logical
// short-circuit, matmul and plain arithmetic/compare/bitwise operators
// (SPEC §4.4.4.1).
func (c *Context) lowerBinaryExpr(astID int, warn func(string)) (uint32, error) {
	kids := c.children(astID)
	if len(kids) != 2 {
		return 0, errf("binary_expr expects 2 children, got %d", len(kids))
	}
	lhsID, rhsID := kids[0], kids[1]
	lhsLast := c.node(lhsID).LastToken
	rhsFirst := c.node(rhsID).FirstToken
	op := c.scanOperator(lhsLast, rhsFirst)
	if op == "" {
		return 0, errf("could not identify the operator between binary_expr operands")
	}

	b := c.Builder

	if op == "=" {
		lv, err := c.lowerLValue(lhsID, warn)
		if err != nil {
			return 0, err
		}
		rhs, err := c.lowerExpression(rhsID, warn)
		if err != nil {
			return 0, err
		}
		c.storeLValue(lv, rhs)
		return rhs, nil
	}

	if aop, ok := compoundOpcodes[op]; ok {
		lv, err := c.lowerLValue(lhsID, warn)
		if err != nil {
			return 0, err
		}
		cur := c.loadLValue(lv)
		rhs, err := c.lowerExpression(rhsID, warn)
		if err != nil {
			return 0, err
		}
		result := b.CreateBinary(aop, cur, rhs)
		c.storeLValue(lv, result)
		return result, nil
	}

	if isLogicalAnd(op) || isLogicalOr(op) {
		return c.lowerLogical(lhsID, rhsID, isLogicalAnd(op), warn)
	}

	if op == "@" {
		lhs, err := c.lowerExpression(lhsID, warn)
		if err != nil {
			return 0, err
		}
		rhs, err := c.lowerExpression(rhsID, warn)
		if err != nil {
			return 0, err
		}
		prev := b.SetTenancy(qtjir.NPUTensor)
		id := b.CreateTensorOp(qtjir.TensorMatmul, nil, lhs, rhs)
		b.SetTenancy(prev)
		return id, nil
	}

	if op == "**" {
		lhs, err := c.lowerExpression(lhsID, warn)
		if err != nil {
			return 0, err
		}
		rhs, err := c.lowerExpression(rhsID, warn)
		if err != nil {
			return 0, err
		}
		name := "janus_pow"
		if e, ok := c.Builtins.Lookup("pow"); ok {
			name = e.RuntimeName
		}
		return b.CreateCall(name, lhs, rhs), nil
	}

	opcode, ok := binaryOpcodes[op]
	if !ok {
		return 0, errf("unrecognised binary operator %q", op)
	}
	lhs, err := c.lowerExpression(lhsID, warn)
	if err != nil {
		return 0, err
	}
	rhs, err := c.lowerExpression(rhsID, warn)
	if err != nil {
		return 0, err
	}
	return b.CreateBinary(opcode, lhs, rhs), nil
}

// loadLValue reads the current value addressed by lv, for compound
// assignment's single read-before-write (SPEC §4.4.4.1).
func (c *Context) loadLValue(lv LValue) uint32 {
	if lv.Kind == LVField {
		return c.Builder.CreateFieldAccess(lv.StructAddr, lv.FieldName)
	}
	return c.Builder.BuildLoad(lv.AddrID)
}

// lowerLogical lowers short-circuit `and`/`or` (SPEC §4.4.4.1).
func (c *Context) lowerLogical(lhsID, rhsID int, isAnd bool, warn func(string)) (uint32, error) {
	b := c.Builder
	tmp := b.BuildAlloca("sc_tmp")

	lhs, err := c.lowerExpression(lhsID, warn)
	if err != nil {
		return 0, err
	}

	branchID := b.CreateBranch(lhs, 0, 0)

	var shortLabel, rhsLabel uint32
	var shortConst int64
	if isAnd {
		shortConst = 0
	} else {
		shortConst = 1
	}

	if isAnd {
		rhsLabel = b.CreateLabel()
		rhsVal, err := c.lowerExpression(rhsID, warn)
		if err != nil {
			return 0, err
		}
		b.BuildStore(rhsVal, tmp)
		mergeJump := b.CreateJump(0)

		shortLabel = b.CreateLabel()
		b.BuildStore(b.CreateConstant(shortConst), tmp)

		mergeLabel := b.CreateLabel()
		b.PatchJumpTarget(mergeJump, mergeLabel)
		b.PatchBranchTargets(branchID, rhsLabel, shortLabel)
	} else {
		shortLabel = b.CreateLabel()
		b.BuildStore(b.CreateConstant(shortConst), tmp)
		mergeJump := b.CreateJump(0)

		rhsLabel = b.CreateLabel()
		rhsVal, err := c.lowerExpression(rhsID, warn)
		if err != nil {
			return 0, err
		}
		b.BuildStore(rhsVal, tmp)

		mergeLabel := b.CreateLabel()
		b.PatchJumpTarget(mergeJump, mergeLabel)
		b.PatchBranchTargets(branchID, shortLabel, rhsLabel)
	}

	return b.BuildLoad(tmp), nil
}

// lowerFieldExpr lowers `field_expr` as an R-value: an error-variant
// constant when the left side names a declared error type, else a plain
// Field_Access (SPEC §4.4.4.3).
func (c *Context) lowerFieldExpr(astID int, warn func(string)) (uint32, error) {
	kids := c.children(astID)
	if len(kids) != 2 {
		return 0, errf("field_expr expects 2 children, got %d", len(kids))
	}
	if c.node(kids[0]).Kind == astsnap.KindIdentifier {
		typeName := c.identifierName(kids[0])
		if _, bound := c.Lookup(typeName); !bound {
			if ev, ok := c.errorDecls[typeName]; ok {
				variant := c.identifierName(kids[1])
				if idx, ok2 := ev.Variants[variant]; ok2 {
					return c.Builder.CreateConstant(idx), nil
				}
			}
		}
	}
	structVal, err := c.lowerExpression(kids[0], warn)
	if err != nil {
		return 0, err
	}
	field := c.identifierName(kids[1])
	return c.Builder.CreateFieldAccess(structVal, field), nil
}

// lowerStructLiteral lowers `struct_literal` (SPEC §4.4.4): interleaved
// (name, value) pairs.
func (c *Context) lowerStructLiteral(astID int, warn func(string)) (uint32, error) {
	kids := c.children(astID)
	var names []string
	var values []uint32
	for i := 0; i+1 < len(kids); i += 2 {
		names = append(names, c.identifierName(kids[i]))
		v, err := c.lowerExpression(kids[i+1], warn)
		if err != nil {
			return 0, err
		}
		values = append(values, v)
	}
	return c.Builder.CreateStructConstruct(strings.Join(names, ","), values...), nil
}

// resolveCalleeName returns the dotted callee path of a call_expr's callee
// child, e.g. "tensor.matmul", plus the final (non-dotted) component.
func (c *Context) resolveCalleeName(astID int) (dotted, final string) {
	n := c.node(astID)
	switch n.Kind {
	case astsnap.KindIdentifier:
		name := c.identifierName(astID)
		return name, name
	case astsnap.KindFieldExpr:
		kids := c.children(astID)
		if len(kids) != 2 {
			return "", ""
		}
		base, _ := c.resolveCalleeName(kids[0])
		field := c.identifierName(kids[1])
		if base == "" {
			return field, field
		}
		return base + "." + field, field
	default:
		return "", ""
	}
}

// lowerCallExpr lowers `call_expr` via the three-layer callee resolution of
// SPEC §4.4.4.2.
func (c *Context) lowerCallExpr(astID int, warn func(string)) (uint32, error) {
	kids := c.children(astID)
	if len(kids) == 0 {
		return 0, errf("call_expr has no callee child")
	}
	calleeID := kids[0]
	argIDs := kids[1:]

	dotted, final := c.resolveCalleeName(calleeID)
	if dotted == "" {
		return 0, errf("call_expr callee is not a resolvable name")
	}

	if entry, ok := c.Builtins.Lookup(dotted); ok {
		return c.lowerBuiltinCall(entry, argIDs, warn)
	}
	if entry, ok := c.Builtins.Lookup(final); ok {
		return c.lowerBuiltinCall(entry, argIDs, warn)
	}

	var args []uint32
	for _, a := range argIDs {
		v, err := c.lowerExpression(a, warn)
		if err != nil {
			return 0, err
		}
		args = append(args, v)
	}

	if _, ok := c.Externs.Lookup(final); ok {
		return c.Builder.CreateCall(final, args...), nil
	}

	return c.Builder.CreateCall(final, args...), nil
}

// lowerBuiltinCall dispatches a resolved builtin entry by category
// (SPEC §4.4.4.2).
func (c *Context) lowerBuiltinCall(entry registry.BuiltinEntry, argIDs []int, warn func(string)) (uint32, error) {
	if err := entry.CheckArity(len(argIDs)); err != nil {
		return 0, err
	}
	b := c.Builder

	switch entry.Category {
	case registry.CategoryTensor:
		var args []uint32
		for _, a := range argIDs {
			v, err := c.lowerExpression(a, warn)
			if err != nil {
				return 0, err
			}
			args = append(args, v)
		}
		prev := b.SetTenancy(qtjir.NPUTensor)
		op := tensorOpcodeFor(entry.SourceName)
		id := b.CreateTensorOp(op, nil, args...)
		b.SetTenancy(prev)
		return id, nil

	case registry.CategorySSM:
		var args []uint32
		for _, a := range argIDs {
			v, err := c.lowerExpression(a, warn)
			if err != nil {
				return 0, err
			}
			args = append(args, v)
		}
		prev := b.SetTenancy(qtjir.NPUTensor)
		op := qtjir.SSMScan
		if entry.SourceName == "ssm.selective_scan" {
			op = qtjir.SSMSelectiveScan
		}
		id := b.CreateTensorOp(op, nil, args...)
		b.SetTenancy(prev)
		return id, nil

	case registry.CategoryQuantum:
		return c.lowerQuantumCall(entry, argIDs, warn)

	case registry.CategoryAssert:
		return c.lowerAssertCall(argIDs, warn)

	case registry.CategoryStringDataIntrinsic:
		return c.lowerStringDataIntrinsic(argIDs, warn)

	case registry.CategoryStringLenIntrinsic:
		return c.lowerStringLenIntrinsic(argIDs, warn)

	default:
		var args []uint32
		for _, a := range argIDs {
			v, err := c.lowerExpression(a, warn)
			if err != nil {
				return 0, err
			}
			args = append(args, v)
		}
		return b.CreateCall(entry.RuntimeName, args...), nil
	}
}

func tensorOpcodeFor(sourceName string) qtjir.Opcode {
	switch sourceName {
	case "tensor.matmul":
		return qtjir.TensorMatmul
	case "tensor.conv":
		return qtjir.TensorConv
	case "tensor.reduce":
		return qtjir.TensorReduce
	case "tensor.scalar_mul":
		return qtjir.TensorScalarMul
	case "tensor.contract":
		return qtjir.TensorContract
	case "tensor.relu":
		return qtjir.TensorRelu
	case "tensor.softmax":
		return qtjir.TensorSoftmax
	default:
		return qtjir.TensorMatmul
	}
}

// lowerAssertCall lowers `assert(cond)` to the control-flow sequence
// `Branch(cond, ok, fail); fail: Return 1; ok: Constant 0` (SPEC §4.4.4.2).
func (c *Context) lowerAssertCall(argIDs []int, warn func(string)) (uint32, error) {
	b := c.Builder
	cond, err := c.lowerExpression(argIDs[0], warn)
	if err != nil {
		return 0, err
	}
	branchID := b.CreateBranch(cond, 0, 0)

	failLabel := b.CreateLabel()
	b.CreateReturn(b.CreateConstant(int64(1)))

	okLabel := b.CreateLabel()
	result := b.CreateConstant(int64(0))

	b.PatchBranchTargets(branchID, okLabel, failLabel)
	return result, nil
}

// lowerStringDataIntrinsic extracts the compile-time pointer operand of a
// string constant (SPEC §4.4.4.2); the pointer itself materialises at
// emission, so lowering just forwards the string Constant's id.
func (c *Context) lowerStringDataIntrinsic(argIDs []int, warn func(string)) (uint32, error) {
	return c.lowerExpression(argIDs[0], warn)
}

// lowerStringLenIntrinsic extracts the compile-time byte length of a
// string constant operand.
func (c *Context) lowerStringLenIntrinsic(argIDs []int, warn func(string)) (uint32, error) {
	id, err := c.lowerExpression(argIDs[0], warn)
	if err != nil {
		return 0, err
	}
	n := c.Builder.Graph.Nodes[id]
	if n.Op == qtjir.Constant && n.Data.Kind == qtjir.DataString {
		return c.Builder.CreateConstant(int64(len(n.Data.Str))), nil
	}
	warn("string.length_of: operand is not a compile-time string constant")
	return c.Builder.CreateConstant(int64(0)), nil
}
