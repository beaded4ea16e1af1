package lower

import (
	"github.com/janus-lang/janus-sub005/src/astsnap"
	"github.com/janus-lang/janus-sub005/src/qtjir"
)

// lowerStatement dispatches one statement AST node (SPEC §4.4.6).
func (c *Context) lowerStatement(astID int, warn func(string)) error {
	n := c.node(astID)
	switch n.Kind {
	case astsnap.KindBlockStmt:
		c.PushScope(ScopeBlock)
		for _, ch := range c.children(astID) {
			if err := c.lowerStatement(ch, warn); err != nil {
				return err
			}
		}
		c.PopScope()
		return nil

	case astsnap.KindExprStmt:
		kids := c.children(astID)
		if len(kids) == 0 {
			return nil
		}
		_, err := c.lowerExpression(kids[0], warn)
		return err

	case astsnap.KindReturnStmt:
		return c.lowerReturnStmt(astID, warn)

	case astsnap.KindDeferStmt:
		return c.lowerDeferStmt(astID, warn)

	case astsnap.KindBreakStmt:
		c.EmitDefersToLoop()
		j := c.Builder.CreateJump(0)
		c.BreakPatches[c.LoopDepth] = append(c.BreakPatches[c.LoopDepth], j)
		return nil

	case astsnap.KindContinueStmt:
		c.EmitDefersToLoop()
		j := c.Builder.CreateJump(0)
		c.ContinuePatches[c.LoopDepth] = append(c.ContinuePatches[c.LoopDepth], j)
		return nil

	case astsnap.KindLetStmt, astsnap.KindVarStmt:
		return c.lowerLetVarStmt(astID, warn)

	case astsnap.KindIfStmt:
		return c.lowerIfStmt(astID, warn)

	case astsnap.KindWhileStmt:
		return c.lowerWhileStmt(astID, warn)

	case astsnap.KindForStmt:
		return c.lowerForStmt(astID, warn)

	case astsnap.KindMatchStmt:
		return c.lowerMatchStmt(astID, warn)

	case astsnap.KindPostfixWhen:
		return c.lowerPostfixWhen(astID, warn)

	case astsnap.KindFailStmt:
		return c.lowerFailStmt(astID, warn)

	default:
		return errf("AST kind %v is not a valid statement", n.Kind)
	}
}

// lowerReturnStmt lowers `return_stmt` (SPEC §4.4.5): defers from every
// scope layer fire before the Return node, innermost first.
func (c *Context) lowerReturnStmt(astID int, warn func(string)) error {
	kids := c.children(astID)
	var val uint32
	if len(kids) > 0 {
		v, err := c.lowerExpression(kids[0], warn)
		if err != nil {
			return err
		}
		val = v
	} else {
		val = c.Builder.CreateConstant(int64(0))
	}
	c.EmitDefersToFunctionRoot()
	c.Builder.CreateReturn(val)
	return nil
}

// lowerDeferStmt captures a defer's runtime name and already-lowered
// arguments into the innermost scope's LIFO defer list (SPEC §4.4.5).
func (c *Context) lowerDeferStmt(astID int, warn func(string)) error {
	kids := c.children(astID)
	if len(kids) == 0 || c.node(kids[0]).Kind != astsnap.KindCallExpr {
		return errf("defer_stmt expects a call_expr child")
	}
	callID := kids[0]
	callKids := c.children(callID)
	if len(callKids) == 0 {
		return errf("defer call_expr has no callee child")
	}
	dotted, final := c.resolveCalleeName(callKids[0])
	runtimeName := final
	if entry, ok := c.Builtins.Lookup(dotted); ok {
		runtimeName = entry.RuntimeName
	} else if entry, ok := c.Builtins.Lookup(final); ok {
		runtimeName = entry.RuntimeName
	}
	var args []uint32
	for _, a := range callKids[1:] {
		v, err := c.lowerExpression(a, warn)
		if err != nil {
			return err
		}
		args = append(args, v)
	}
	c.RegisterDefer(runtimeName, args)
	return nil
}

// lowerFailStmt lowers `fail <error-expr>` (SPEC §4.4.6).
func (c *Context) lowerFailStmt(astID int, warn func(string)) error {
	kids := c.children(astID)
	if len(kids) == 0 {
		return errf("fail_stmt expects an error-value child")
	}
	errVal, err := c.lowerExpression(kids[0], warn)
	if err != nil {
		return err
	}
	failed := c.Builder.CreateErrorFailConstruct(errVal)
	c.markErrorUnion(failed)
	c.EmitDefersToFunctionRoot()
	c.Builder.CreateReturn(failed)
	return nil
}

// lowerLetVarStmt lowers `let`/`var` declarations (SPEC §4.4.6).
func (c *Context) lowerLetVarStmt(astID int, warn func(string)) error {
	n := c.node(astID)
	kids := c.children(astID)
	if len(kids) < 2 {
		return errf("let/var statement expects at least 2 children, got %d", len(kids))
	}
	name := c.identifierName(kids[0])
	rest := kids[1:]

	var typeID, initID int = -1, -1
	if len(rest) == 2 {
		typeID, initID = rest[0], rest[1]
	} else {
		initID = rest[0]
	}

	val, err := c.lowerExpression(initID, warn)
	if err != nil {
		return err
	}

	if typeID >= 0 && c.node(typeID).Kind == astsnap.KindOptionalType {
		if c.node(initID).Kind == astsnap.KindNullLit {
			val = c.Builder.CreateOptionalNone()
		} else {
			val = c.Builder.CreateOptionalSome(val)
		}
		c.markOptional(val)
	}

	b := c.Builder
	if n.Kind == astsnap.KindVarStmt {
		var allocaID uint32
		if c.node(initID).Kind == astsnap.KindStructLiteral {
			allocaID = b.BuildStructAlloca(name)
		} else {
			allocaID = b.BuildAlloca(name)
		}
		b.BuildStore(val, allocaID)
		c.Bind(name, allocaID)
	} else {
		c.Bind(name, val)
	}
	return nil
}

// lowerIfStmt lowers `if`/`else` (SPEC §4.4.6).
func (c *Context) lowerIfStmt(astID int, warn func(string)) error {
	kids := c.children(astID)
	if len(kids) < 2 {
		return errf("if_stmt expects at least 2 children, got %d", len(kids))
	}
	condID, thenID := kids[0], kids[1]
	var elseID int = -1
	if len(kids) >= 3 {
		elseID = kids[2]
	}

	b := c.Builder
	cond, err := c.lowerExpression(condID, warn)
	if err != nil {
		return err
	}
	branchID := b.CreateBranch(cond, 0, 0)

	thenLabel := b.CreateLabel()
	if err := c.lowerStatement(thenID, warn); err != nil {
		return err
	}
	var thenJump uint32
	hasThenJump := false
	if !c.currentBlockTerminated() {
		thenJump = b.CreateJump(0)
		hasThenJump = true
	}

	elseLabel := b.CreateLabel()
	if elseID >= 0 {
		if err := c.lowerStatement(elseID, warn); err != nil {
			return err
		}
	}
	var elseJump uint32
	hasElseJump := false
	if !c.currentBlockTerminated() {
		elseJump = b.CreateJump(0)
		hasElseJump = true
	}

	mergeLabel := b.CreateLabel()
	b.PatchBranchTargets(branchID, thenLabel, elseLabel)
	if hasThenJump {
		b.PatchJumpTarget(thenJump, mergeLabel)
	}
	if hasElseJump {
		b.PatchJumpTarget(elseJump, mergeLabel)
	}
	return nil
}

// lowerLoopBody pushes a Loop scope, lowers bodyID's statements (bodyID
// must be a block_stmt), and pops the scope, emitting its defers along the
// normal per-iteration exit path (SPEC §4.4.6).
func (c *Context) lowerLoopBody(bodyID int, warn func(string)) error {
	c.PushScope(ScopeLoop)
	for _, ch := range c.children(bodyID) {
		if err := c.lowerStatement(ch, warn); err != nil {
			return err
		}
	}
	c.PopScope()
	return nil
}

// lowerWhileStmt lowers `while` (SPEC §4.4.6).
func (c *Context) lowerWhileStmt(astID int, warn func(string)) error {
	kids := c.children(astID)
	if len(kids) != 2 {
		return errf("while_stmt expects 2 children, got %d", len(kids))
	}
	condID, bodyID := kids[0], kids[1]
	b := c.Builder

	headerLabel := b.CreateLabel()
	cond, err := c.lowerExpression(condID, warn)
	if err != nil {
		return err
	}
	branchID := b.CreateBranch(cond, 0, 0)
	bodyLabel := b.CreateLabel()

	c.LoopDepth++
	depth := c.LoopDepth
	if err := c.lowerLoopBody(bodyID, warn); err != nil {
		return err
	}

	b.CreateJump(headerLabel)
	exitLabel := b.CreateLabel()
	b.PatchBranchTargets(branchID, bodyLabel, exitLabel)
	c.patchLoopExits(depth, exitLabel, headerLabel)
	c.LoopDepth--
	return nil
}

// patchLoopExits backpatches every pending break (-> exitLabel) and
// continue (-> continueTarget) jump registered at the given loop depth.
func (c *Context) patchLoopExits(depth int, exitLabel, continueTarget uint32) {
	for _, j := range c.BreakPatches[depth] {
		c.Builder.PatchJumpTarget(j, exitLabel)
	}
	delete(c.BreakPatches, depth)
	for _, j := range c.ContinuePatches[depth] {
		c.Builder.PatchJumpTarget(j, continueTarget)
	}
	delete(c.ContinuePatches, depth)
}

// lowerForStmt dispatches `for` over a range or a slice (SPEC §4.4.6).
func (c *Context) lowerForStmt(astID int, warn func(string)) error {
	kids := c.children(astID)
	if len(kids) != 3 {
		return errf("for_stmt expects 3 children, got %d", len(kids))
	}
	varID, iterID, bodyID := kids[0], kids[1], kids[2]
	varName := c.identifierName(varID)

	switch c.node(iterID).Kind {
	case astsnap.KindRangeInclusiveExpr, astsnap.KindRangeExclusiveExpr:
		return c.lowerForRange(varName, iterID, bodyID, warn)
	default:
		return c.lowerForSlice(varName, iterID, bodyID, warn)
	}
}

// lowerForRange lowers `for x in a..b`/`a..=b` (SPEC §4.4.6).
func (c *Context) lowerForRange(varName string, rangeID, bodyID int, warn func(string)) error {
	rangeKids := c.children(rangeID)
	if len(rangeKids) != 2 {
		return errf("range expr expects 2 children, got %d", len(rangeKids))
	}
	startVal, err := c.lowerExpression(rangeKids[0], warn)
	if err != nil {
		return err
	}
	endVal, err := c.lowerExpression(rangeKids[1], warn)
	if err != nil {
		return err
	}
	inclusive := c.node(rangeID).Kind == astsnap.KindRangeInclusiveExpr

	b := c.Builder
	headerLabel := b.CreateLabel()
	phiID := b.CreatePhi(startVal)
	allocaID := b.BuildAlloca(varName)
	b.BuildStore(phiID, allocaID)
	c.Bind(varName, allocaID)

	cmpOp := qtjir.Less
	if inclusive {
		cmpOp = qtjir.LessEqual
	}
	cond := b.CreateBinary(cmpOp, phiID, endVal)
	branchID := b.CreateBranch(cond, 0, 0)
	bodyLabel := b.CreateLabel()

	c.LoopDepth++
	depth := c.LoopDepth
	if err := c.lowerLoopBody(bodyID, warn); err != nil {
		return err
	}

	latchLabel := b.CreateLabel()
	incID := b.CreateBinary(qtjir.Add, phiID, b.CreateConstant(int64(1)))
	b.AppendPhiIncoming(phiID, incID)
	b.CreateJump(headerLabel)
	exitLabel := b.CreateLabel()

	b.PatchBranchTargets(branchID, bodyLabel, exitLabel)
	c.patchLoopExits(depth, exitLabel, latchLabel)
	c.LoopDepth--
	return nil
}

// lowerForSlice lowers `for x in slice` (SPEC §4.4.6).
func (c *Context) lowerForSlice(varName string, iterID, bodyID int, warn func(string)) error {
	sliceVal, err := c.lowerExpression(iterID, warn)
	if err != nil {
		return err
	}
	b := c.Builder
	lenVal := b.CreateSliceLen(sliceVal)

	headerLabel := b.CreateLabel()
	phiID := b.CreatePhi(b.CreateConstant(int64(0)))
	allocaID := b.BuildAlloca(varName)
	eltID := b.CreateSliceIndex(sliceVal, phiID)
	b.BuildStore(eltID, allocaID)
	c.Bind(varName, allocaID)

	cond := b.CreateBinary(qtjir.Less, phiID, lenVal)
	branchID := b.CreateBranch(cond, 0, 0)
	bodyLabel := b.CreateLabel()

	c.LoopDepth++
	depth := c.LoopDepth
	if err := c.lowerLoopBody(bodyID, warn); err != nil {
		return err
	}

	latchLabel := b.CreateLabel()
	incID := b.CreateBinary(qtjir.Add, phiID, b.CreateConstant(int64(1)))
	b.AppendPhiIncoming(phiID, incID)
	b.CreateJump(headerLabel)
	exitLabel := b.CreateLabel()

	b.PatchBranchTargets(branchID, bodyLabel, exitLabel)
	c.patchLoopExits(depth, exitLabel, latchLabel)
	c.LoopDepth--
	return nil
}

// lowerMatchCondition lowers one arm's pattern into an Equal/NotEqual
// comparison against the match subject, supporting the wildcard `_` and
// negated patterns (SPEC §9 resolves the canonical behaviour in favour of
// Equal/NotEqual/BitAnd).
func (c *Context) lowerMatchCondition(subjectVal uint32, patternID int, warn func(string)) (uint32, error) {
	b := c.Builder
	if c.node(patternID).Kind == astsnap.KindIdentifier && c.identifierName(patternID) == "_" {
		return b.CreateConstant(true), nil
	}
	if c.node(patternID).Kind == astsnap.KindUnaryExpr {
		op := c.lexeme(c.Snapshot.GetToken(c.node(patternID).FirstToken))
		if op == "!" || op == "not" {
			innerKids := c.children(patternID)
			if len(innerKids) == 1 {
				patVal, err := c.lowerExpression(innerKids[0], warn)
				if err != nil {
					return 0, err
				}
				return b.CreateBinary(qtjir.NotEqual, subjectVal, patVal), nil
			}
		}
	}
	patVal, err := c.lowerExpression(patternID, warn)
	if err != nil {
		return 0, err
	}
	return b.CreateBinary(qtjir.Equal, subjectVal, patVal), nil
}

// lowerMatchStmt lowers `match` (SPEC §4.4.6).
func (c *Context) lowerMatchStmt(astID int, warn func(string)) error {
	kids := c.children(astID)
	if len(kids) < 2 {
		return errf("match_stmt expects a subject and at least one arm")
	}
	subjectVal, err := c.lowerExpression(kids[0], warn)
	if err != nil {
		return err
	}
	arms := kids[1:]
	b := c.Builder

	var endJumps []uint32
	var lastNextLabel uint32
	for _, armID := range arms {
		armKids := c.children(armID)
		var patternID, guardID, bodyID int
		guardID = -1
		switch len(armKids) {
		case 2:
			patternID, bodyID = armKids[0], armKids[1]
		case 3:
			patternID, guardID, bodyID = armKids[0], armKids[1], armKids[2]
		default:
			return errf("match arm expects 2 or 3 children, got %d", len(armKids))
		}

		cond, err := c.lowerMatchCondition(subjectVal, patternID, warn)
		if err != nil {
			return err
		}
		if guardID >= 0 {
			guardVal, err := c.lowerExpression(guardID, warn)
			if err != nil {
				return err
			}
			cond = b.CreateBinary(qtjir.BitAnd, cond, guardVal)
		}

		branchID := b.CreateBranch(cond, 0, 0)
		bodyLabel := b.CreateLabel()
		if err := c.lowerStatement(bodyID, warn); err != nil {
			return err
		}
		if !c.currentBlockTerminated() {
			endJumps = append(endJumps, b.CreateJump(0))
		}
		nextLabel := b.CreateLabel()
		b.PatchBranchTargets(branchID, bodyLabel, nextLabel)
		lastNextLabel = nextLabel
	}

	for _, j := range endJumps {
		b.PatchJumpTarget(j, lastNextLabel)
	}
	return nil
}

// lowerPostfixWhen desugars `stmt when cond` to `if cond { stmt }`
// (SPEC §4.4.6).
func (c *Context) lowerPostfixWhen(astID int, warn func(string)) error {
	kids := c.children(astID)
	if len(kids) != 2 {
		return errf("postfix_when expects 2 children, got %d", len(kids))
	}
	stmtID, condID := kids[0], kids[1]
	b := c.Builder

	cond, err := c.lowerExpression(condID, warn)
	if err != nil {
		return err
	}
	branchID := b.CreateBranch(cond, 0, 0)
	thenLabel := b.CreateLabel()
	if err := c.lowerStatement(stmtID, warn); err != nil {
		return err
	}
	var thenJump uint32
	hasJump := false
	if !c.currentBlockTerminated() {
		thenJump = b.CreateJump(0)
		hasJump = true
	}
	mergeLabel := b.CreateLabel()
	b.PatchBranchTargets(branchID, thenLabel, mergeLabel)
	if hasJump {
		b.PatchJumpTarget(thenJump, mergeLabel)
	}
	return nil
}
