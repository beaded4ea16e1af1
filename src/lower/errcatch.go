package lower

import "github.com/janus-lang/janus-sub005/src/astsnap"

// errcatch.go lowers the two error-union consumption forms of SPEC §4.4.7:
// `expr catch |err| { block }` and the postfix `expr?` (try) operator.

// lowerCatchExpr lowers `catch_expr`: children are [subject, err-binding
// identifier, handler block]. The handler block is evaluated as an
// expression (its trailing expr_stmt, if any, supplies the value); the
// unwrapped ok value and the handler's value merge through a temporary,
// exactly as lowerLogical merges its two arms.
func (c *Context) lowerCatchExpr(astID int, warn func(string)) (uint32, error) {
	kids := c.children(astID)
	if len(kids) != 3 {
		return 0, errf("catch_expr expects 3 children, got %d", len(kids))
	}
	subjectID, errParamID, blockID := kids[0], kids[1], kids[2]
	b := c.Builder

	eu, err := c.lowerExpression(subjectID, warn)
	if err != nil {
		return 0, err
	}
	tmp := b.BuildAlloca("catch_tmp")
	isErr := b.CreateErrorUnionIsError(eu)
	branchID := b.CreateBranch(isErr, 0, 0)

	errLabel := b.CreateLabel()
	c.PushScope(ScopeBlock)
	errVal := b.CreateErrorUnionGetError(eu)
	c.Bind(c.identifierName(errParamID), errVal)
	handlerVal, err := c.lowerBlockAsValue(blockID, warn)
	if err != nil {
		return 0, err
	}
	if !c.currentBlockTerminated() {
		b.BuildStore(handlerVal, tmp)
	}
	c.PopScope()
	var errJump uint32
	hasErrJump := false
	if !c.currentBlockTerminated() {
		errJump = b.CreateJump(0)
		hasErrJump = true
	}

	okLabel := b.CreateLabel()
	okVal := b.CreateErrorUnionUnwrap(eu)
	b.BuildStore(okVal, tmp)
	okJump := b.CreateJump(0)

	mergeLabel := b.CreateLabel()
	b.PatchBranchTargets(branchID, errLabel, okLabel)
	if hasErrJump {
		b.PatchJumpTarget(errJump, mergeLabel)
	}
	b.PatchJumpTarget(okJump, mergeLabel)

	return b.BuildLoad(tmp), nil
}

// lowerTryExpr lowers postfix `expr?`: on error, the caller's own defers
// fire and the same error-union value propagates up via Return; on success
// the unwrapped value is the try expression's value (SPEC §4.4.7).
func (c *Context) lowerTryExpr(astID int, warn func(string)) (uint32, error) {
	kids := c.children(astID)
	if len(kids) != 1 {
		return 0, errf("try_expr expects 1 child, got %d", len(kids))
	}
	b := c.Builder
	eu, err := c.lowerExpression(kids[0], warn)
	if err != nil {
		return 0, err
	}
	isErr := b.CreateErrorUnionIsError(eu)
	branchID := b.CreateBranch(isErr, 0, 0)

	propagateLabel := b.CreateLabel()
	c.EmitDefersToFunctionRoot()
	b.CreateReturn(eu)

	okLabel := b.CreateLabel()
	unwrapped := b.CreateErrorUnionUnwrap(eu)

	b.PatchBranchTargets(branchID, propagateLabel, okLabel)
	return unwrapped, nil
}

// lowerBlockAsValue lowers a block_stmt in expression position: every
// statement but the last lowers normally; a trailing expr_stmt supplies the
// block's value, anything else yields a 0 placeholder.
func (c *Context) lowerBlockAsValue(blockID int, warn func(string)) (uint32, error) {
	stmts := c.children(blockID)
	if len(stmts) == 0 {
		return c.Builder.CreateConstant(int64(0)), nil
	}
	for _, stmtID := range stmts[:len(stmts)-1] {
		if err := c.lowerStatement(stmtID, warn); err != nil {
			return 0, err
		}
	}
	last := stmts[len(stmts)-1]
	if c.node(last).Kind == astsnap.KindExprStmt {
		kids := c.children(last)
		if len(kids) == 0 {
			return c.Builder.CreateConstant(int64(0)), nil
		}
		return c.lowerExpression(kids[0], warn)
	}
	if err := c.lowerStatement(last, warn); err != nil {
		return 0, err
	}
	return c.Builder.CreateConstant(int64(0)), nil
}
