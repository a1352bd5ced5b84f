package lowir

import (
	"ember/internal/anvil"
	"ember/internal/runtimeabi"
)

// buildLandingPads translates every Anvil try-region into a LandingPad:
// the ordered catch-type list and optional finally block are recorded as
// function-level metadata (see LandingPad's doc comment), and a real
// dispatch chain of blocks is built for Handler — the chain Anvil's throw
// sites never jump to explicitly, since real unwinding routes control
// there out-of-band from ordinary control flow (spec §4.E: "exception
// lowering to landing-pad blocks with ordered catch-type dispatch and
// fallthrough-to-rethrow").
func buildLandingPads(fx *funcXlate) {
	for _, tr := range fx.af.TryRegions {
		blocks := make([]BlockID, len(tr.Blocks))
		for i, b := range tr.Blocks {
			blocks[i] = fx.blockOf[b]
		}

		catches := make([]CatchEntry, len(tr.Catches))
		for i, c := range tr.Catches {
			catches[i] = CatchEntry{
				Descriptor: fx.l.classDescriptor(c.ClassType),
				Handler:    fx.blockOf[c.HandlerBlock],
			}
		}

		finally := NoBlockID
		if tr.Finally != anvil.NoBlockID {
			finally = fx.blockOf[tr.Finally]
		}

		fx.f.LandingPads = append(fx.f.LandingPads, LandingPad{
			Blocks:  blocks,
			Catches: catches,
			Finally: finally,
			Handler: buildDispatchChain(fx, catches, finally),
		})
	}
}

// buildDispatchChain builds the ordered is_instance/cond_jump chain a
// landing pad expands into: catch value into a register, test against
// each catch type in declaration order, and fall through past the last
// miss to the finally block if one exists, or a rethrow otherwise.
func buildDispatchChain(fx *funcXlate, catches []CatchEntry, finally BlockID) BlockID {
	entry := fx.f.NewBlock("landing_pad")

	excReg := fx.f.NewReg(runtimeabi.KindWord)
	fx.f.Emit(entry, Instr{Kind: InstrCatchValue, Dst: excReg}, false)
	exc := RegValue(excReg, runtimeabi.KindWord)

	cur := entry
	for _, c := range catches {
		testReg := fx.f.NewReg(runtimeabi.KindI1)
		fx.f.Emit(cur, Instr{Kind: InstrIsInstance, Dst: testReg,
			IsInstance: IsInstanceInstr{Value: exc, Descriptor: c.Descriptor}}, false)

		next := fx.f.NewBlock("landing_pad_next")
		fx.f.SetTerm(cur, Terminator{Kind: TermCondJump, CondJump: CondJumpTerm{
			Cond: RegValue(testReg, runtimeabi.KindI1), Then: c.Handler, Else: next}})
		cur = next
	}

	if finally != NoBlockID {
		fx.f.SetTerm(cur, Terminator{Kind: TermJump, Jump: JumpTerm{Target: finally}})
	} else {
		fx.f.SetTerm(cur, Terminator{Kind: TermRethrow})
	}
	return entry
}
