package lowir

// markSafepoints flags the function prologue and every loop back-edge
// target as a GC safe point (spec §4.E: "GC safe points at function
// prologues, loop back-edges, and call-sites"); call-site safepoints are
// already recorded per instruction by lower_func.go's Emit(..., true)
// calls. A back-edge is approximated as any branch whose target block ID
// is not greater than its source block ID. This over-marks: Anvil
// creates some blocks before the code that jumps to them (a try
// statement creates its join block before its body), and the landing-pad
// and resume-dispatch blocks built here come after every translated
// block, so some branches that close no loop mark their target too.
func markSafepoints(fx *funcXlate) {
	f := fx.f
	if b := f.BlockByID(f.Entry); b != nil {
		b.Safepoint = true
	}
	for i := range f.Blocks {
		markBackEdges(f, &f.Blocks[i])
	}
}

func markBackEdges(f *Func, b *Block) {
	switch b.Term.Kind {
	case TermJump:
		markIfBackEdge(f, b.ID, b.Term.Jump.Target)
	case TermCondJump:
		markIfBackEdge(f, b.ID, b.Term.CondJump.Then)
		markIfBackEdge(f, b.ID, b.Term.CondJump.Else)
	case TermSwitch:
		for _, c := range b.Term.Switch.Cases {
			markIfBackEdge(f, b.ID, c.Target)
		}
		markIfBackEdge(f, b.ID, b.Term.Switch.Default)
	}
}

func markIfBackEdge(f *Func, from, to BlockID) {
	if to <= from {
		if tb := f.BlockByID(to); tb != nil {
			tb.Safepoint = true
		}
	}
}
