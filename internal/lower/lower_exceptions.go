package lower

import (
	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/types"
)

// lowerTry lowers `try: body catch e: T: handler... finally: fin` into a
// try-region whose catch list names one handler block per clause, plus a
// landing block for the exceptional path if a finally clause is present.
// Normal-exit finally is duplicated into the body's and each handler's
// fall-through edge via withCleanup, rather than funnelled through the
// landing block; only an unwinding throw reaches the landing block (spec
// §4.D: finally "duplicated into each exit edge... to preserve
// deterministic execution without a nonlocal transfer opcode").
func (fb *funcLower) lowerTry(s *ast.Stmt) {
	t := &s.Try
	hasFinally := t.Finally != nil

	handlerBlocks := make([]anvil.BlockID, len(t.Catches))
	catchEntries := make([]anvil.CatchEntry, len(t.Catches))
	for i, c := range t.Catches {
		hb := fb.newBlock("try.catch")
		handlerBlocks[i] = hb
		catchEntries[i] = anvil.CatchEntry{ClassType: c.ClassType, HandlerBlock: hb}
	}

	finallyLanding := anvil.NoBlockID
	if hasFinally {
		finallyLanding = fb.newBlock("try.finally.landing")
		fb.lowerUnwindLanding(finallyLanding, t.Finally)
	}

	joinBlk := fb.newBlock("try.end")

	fb.b.OpenTryRegion(catchEntries, finallyLanding)
	bodyBlk := fb.newBlock("try.body")
	fb.jumpTo(bodyBlk)
	fb.b.SetCurrent(bodyBlk)
	fb.withCleanup(func() { fb.lowerBlock(t.Finally) }, hasFinally, t.Body)
	if !fb.b.CurrentTerminated() {
		fb.jumpTo(joinBlk)
	}
	fb.b.CloseTryRegion()

	for i, c := range t.Catches {
		fb.b.SetCurrent(handlerBlocks[i])
		// The landing pad that transferred control here (built at (E))
		// has already written the caught value into this slot.
		fb.localFor(c.VarSlot)
		fb.withCleanup(func() { fb.lowerBlock(t.Finally) }, hasFinally, c.Body)
		if !fb.b.CurrentTerminated() {
			fb.jumpTo(joinBlk)
		}
	}

	fb.b.SetCurrent(joinBlk)
}

// lowerUnwindLanding lowers block into the dedicated landing block id for
// the exceptional-unwind path, ending with a rethrow so propagation
// continues outward once the cleanup has run (spec §4.D exceptions:
// propagation is "unwind-based at the Anvil level"). The rethrown value
// is a placeholder the lower-ir unwinder replaces with the in-flight
// exception register; lowering itself never has that value in scope.
func (fb *funcLower) lowerUnwindLanding(landing anvil.BlockID, block *ast.Block) {
	cur := fb.b.Current()
	fb.b.SetCurrent(landing)
	fb.lowerBlock(block)
	if !fb.b.CurrentTerminated() {
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermThrow, Throw: anvil.ThrowTerm{Value: anvil.Value{Kind: anvil.ValConstNil, Type: types.NoTypeID}}})
	}
	fb.b.SetCurrent(cur)
}

// lowerUsing lowers `using v = e: body` to a try-region whose finally
// calls v.dispose() on every exit edge (spec §4.D resource scopes).
// dispose() is not guarded against a second call here; idempotence is the
// runtime method's own contract via a per-instance disposed flag.
func (fb *funcLower) lowerUsing(s *ast.Stmt) {
	u := &s.Using
	varLocal := fb.localFor(u.VarSlot)
	init := fb.lowerExpr(u.Init)
	fb.emitStoreLocal(varLocal, init, s.Span)

	dispose := func() {
		v := fb.emitLoadLocal(varLocal, u.VarType, s.Span)
		fb.emitInterfaceCall(v, u.VarType, "dispose", nil, fb.l.types.Builtins().Nil, s.Span)
	}

	finallyLanding := fb.newBlock("using.finally.landing")
	cur := fb.b.Current()
	fb.b.SetCurrent(finallyLanding)
	dispose()
	fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermThrow, Throw: anvil.ThrowTerm{Value: anvil.Value{Kind: anvil.ValConstNil, Type: types.NoTypeID}}})
	fb.b.SetCurrent(cur)

	joinBlk := fb.newBlock("using.end")

	fb.b.OpenTryRegion(nil, finallyLanding)
	bodyBlk := fb.newBlock("using.body")
	fb.jumpTo(bodyBlk)
	fb.b.SetCurrent(bodyBlk)
	fb.withCleanup(dispose, true, u.Body)
	if !fb.b.CurrentTerminated() {
		fb.jumpTo(joinBlk)
	}
	fb.b.CloseTryRegion()

	fb.b.SetCurrent(joinBlk)
}
