package lower

import (
	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/types"
)

// lowerMatch lowers a match expression into a decision tree of
// is_instance checks and cond_jumps, arm bodies writing a shared result
// local, in the textual top-to-bottom tie-break order the arms were
// written in. A wildcard arm (GuardClass == NoTypeID) always matches and
// needs no is_instance check.
func (fb *funcLower) lowerMatch(e *ast.Expr) anvil.Value {
	m := &e.Match
	subjectLocal := fb.b.AddLocal("_match", m.Subject.Type, e.Span)
	subject := fb.lowerExpr(m.Subject)
	fb.emitStoreLocal(subjectLocal, subject, e.Span)

	resultLocal := fb.b.AddLocal("_matchResult", e.Type, e.Span)
	joinBlk := fb.newBlock("match.end")

	for i, arm := range m.Arms {
		armBlk := fb.newBlock("match.arm")
		nextBlk := joinBlk
		isLast := i == len(m.Arms)-1
		if !isLast {
			nextBlk = fb.newBlock("match.next")
		}

		subjVal := fb.emitLoadLocal(subjectLocal, m.Subject.Type, arm.Span)
		if arm.GuardClass == types.NoTypeID {
			fb.jumpTo(armBlk)
		} else {
			dst := fb.b.NewReg(fb.l.types.Builtins().I1)
			fb.b.Emit(anvil.Instr{Kind: anvil.InstrIsInstance, Dst: dst, Type: fb.l.types.Builtins().I1, Span: arm.Span,
				IsInstance: anvil.IsInstanceInstr{Value: subjVal, Class: arm.GuardClass}})
			fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermCondJump, CondJump: anvil.CondJumpTerm{
				Cond: anvil.RegValue(dst, fb.l.types.Builtins().I1), Then: armBlk, Else: nextBlk,
			}})
		}

		fb.b.SetCurrent(armBlk)
		if arm.BindSlot != ast.NoSlot {
			bindLocal := fb.localFor(arm.BindSlot)
			bindVal := fb.emitLoadLocal(subjectLocal, m.Subject.Type, arm.Span)
			fb.emitStoreLocal(bindLocal, bindVal, arm.Span)
		}
		if arm.Guard != nil {
			guardOkBlk := fb.newBlock("match.guard.ok")
			cond := fb.lowerExpr(arm.Guard)
			fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermCondJump, CondJump: anvil.CondJumpTerm{Cond: cond, Then: guardOkBlk, Else: nextBlk}})
			fb.b.SetCurrent(guardOkBlk)
		}

		v := fb.lowerExpr(arm.Body)
		if !fb.b.CurrentTerminated() {
			fb.emitStoreLocal(resultLocal, v, arm.Span)
			fb.jumpTo(joinBlk)
		}

		fb.b.SetCurrent(nextBlk)
	}

	// No arm matched: the upstream contract guarantees a wildcard default
	// arm is always present, so falling through here means that contract
	// was violated. Trap rather than read an uninitialized result.
	fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermThrow, Throw: anvil.ThrowTerm{Value: anvil.Value{Kind: anvil.ValConstNil, Type: e.Type}}})

	fb.b.SetCurrent(joinBlk)
	return fb.emitLoadLocal(resultLocal, e.Type, e.Span)
}
