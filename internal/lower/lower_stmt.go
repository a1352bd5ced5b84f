package lower

import (
	"ember/internal/anvil"
	"ember/internal/ast"
)

func (fb *funcLower) lowerBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		if fb.b.CurrentTerminated() {
			// Unreachable code after a return/throw/break/continue; the
			// teacher's lowerer leaves it unlowered rather than reasoning
			// about dead blocks.
			return
		}
		fb.lowerStmt(s)
	}
}

func (fb *funcLower) lowerStmt(s *ast.Stmt) {
	switch s.Kind {
	case ast.StmtExpr:
		fb.lowerExpr(s.Expr)

	case ast.StmtLet:
		local := fb.localFor(s.Let.Slot)
		if s.Let.Value != nil {
			v := fb.lowerExpr(s.Let.Value)
			fb.emitStoreLocal(local, v, s.Span)
		}

	case ast.StmtIf:
		fb.lowerIf(s)

	case ast.StmtWhile:
		fb.lowerWhile(s)

	case ast.StmtFor:
		fb.lowerFor(s)

	case ast.StmtReturn:
		var v anvil.Value
		hasValue := s.Return.HasValue
		if hasValue {
			v = fb.lowerExpr(s.Return.Value)
		}
		fb.runCleanupsFrom(0)
		if !fb.b.CurrentTerminated() {
			fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: hasValue, Value: v}})
		}

	case ast.StmtBreak:
		if n := len(fb.loops); n > 0 {
			fb.runCleanupsFrom(fb.loops[n-1].cleanupDepth)
			if !fb.b.CurrentTerminated() {
				fb.jumpTo(fb.loops[n-1].breakBlock)
			}
		}

	case ast.StmtContinue:
		if n := len(fb.loops); n > 0 {
			fb.runCleanupsFrom(fb.loops[n-1].cleanupDepth)
			if !fb.b.CurrentTerminated() {
				fb.jumpTo(fb.loops[n-1].continueBlock)
			}
		}

	case ast.StmtThrow:
		v := fb.lowerExpr(s.Expr)
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermThrow, Throw: anvil.ThrowTerm{Value: v}})

	case ast.StmtTry:
		fb.lowerTry(s)

	case ast.StmtUsing:
		fb.lowerUsing(s)

	case ast.StmtYield:
		fb.lowerYield(s)

	case ast.StmtBlock:
		fb.lowerBlock(s.Block)
	}
}

func (fb *funcLower) lowerIf(s *ast.Stmt) {
	cond := fb.lowerExpr(s.If.Cond)
	thenBlk := fb.newBlock("if.then")
	var elseBlk anvil.BlockID
	hasElse := s.If.Else != nil
	if hasElse {
		elseBlk = fb.newBlock("if.else")
	}
	joinBlk := fb.newBlock("if.end")

	elseTarget := joinBlk
	if hasElse {
		elseTarget = elseBlk
	}
	fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermCondJump, CondJump: anvil.CondJumpTerm{Cond: cond, Then: thenBlk, Else: elseTarget}})

	fb.b.SetCurrent(thenBlk)
	fb.lowerBlock(s.If.Then)
	if !fb.b.CurrentTerminated() {
		fb.jumpTo(joinBlk)
	}

	if hasElse {
		fb.b.SetCurrent(elseBlk)
		fb.lowerBlock(s.If.Else)
		if !fb.b.CurrentTerminated() {
			fb.jumpTo(joinBlk)
		}
	}

	fb.b.SetCurrent(joinBlk)
}

func (fb *funcLower) lowerWhile(s *ast.Stmt) {
	headBlk := fb.newBlock("while.head")
	bodyBlk := fb.newBlock("while.body")
	endBlk := fb.newBlock("while.end")

	fb.jumpTo(headBlk)
	fb.b.SetCurrent(headBlk)
	cond := fb.lowerExpr(s.While.Cond)
	fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermCondJump, CondJump: anvil.CondJumpTerm{Cond: cond, Then: bodyBlk, Else: endBlk}})

	fb.loops = append(fb.loops, loopCtx{continueBlock: headBlk, breakBlock: endBlk, cleanupDepth: len(fb.cleanups)})
	fb.b.SetCurrent(bodyBlk)
	fb.lowerBlock(s.While.Body)
	if !fb.b.CurrentTerminated() {
		fb.jumpTo(headBlk)
	}
	fb.loops = fb.loops[:len(fb.loops)-1]

	fb.b.SetCurrent(endBlk)
}

