package lower

import (
	"ember/internal/anvil"
	"ember/internal/ast"
)

// lowerFor desugars `for x in iterable: body` into the iterator protocol
// (spec §4.D): `let it = iterable.iterator()`, then a head block that
// calls `it.has_next()` and a body block that binds x from `it.next()`
// before lowering the loop body.
func (fb *funcLower) lowerFor(s *ast.Stmt) {
	boolTy := fb.l.types.Builtins().I1

	recv := fb.lowerExpr(s.For.Iterable)
	// The reduced AST contract carries no distinct iterator type, so the
	// iterable's own static type stands in as the iterator value's type;
	// iterator() is expected to return something duck-typed to the same
	// has_next/next protocol regardless of concrete representation.
	iterTy := s.For.Iterable.Type
	it := fb.emitInterfaceCall(recv, s.For.Iterable.Type, "iterator", nil, iterTy, s.Span)
	itLocal := fb.b.AddLocal("_it", iterTy, s.Span)
	fb.emitStoreLocal(itLocal, it, s.Span)

	headBlk := fb.newBlock("for.head")
	bodyBlk := fb.newBlock("for.body")
	endBlk := fb.newBlock("for.end")

	fb.jumpTo(headBlk)
	fb.b.SetCurrent(headBlk)
	itVal := fb.emitLoadLocal(itLocal, iterTy, s.Span)
	hasNext := fb.emitInterfaceCall(itVal, iterTy, "has_next", nil, boolTy, s.Span)
	fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermCondJump, CondJump: anvil.CondJumpTerm{Cond: hasNext, Then: bodyBlk, Else: endBlk}})

	fb.loops = append(fb.loops, loopCtx{continueBlock: headBlk, breakBlock: endBlk, cleanupDepth: len(fb.cleanups)})
	fb.b.SetCurrent(bodyBlk)
	itVal2 := fb.emitLoadLocal(itLocal, iterTy, s.Span)
	next := fb.emitInterfaceCall(itVal2, iterTy, "next", nil, s.For.VarType, s.Span)
	varLocal := fb.localFor(s.For.VarSlot)
	fb.emitStoreLocal(varLocal, next, s.Span)
	fb.lowerBlock(s.For.Body)
	if !fb.b.CurrentTerminated() {
		fb.jumpTo(headBlk)
	}
	fb.loops = fb.loops[:len(fb.loops)-1]

	fb.b.SetCurrent(endBlk)
}
