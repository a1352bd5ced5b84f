package backend

import (
	"fmt"

	"ember/internal/lowir"
)

func (e *Emitter) emitFunc(f *lowir.Func) error {
	if f == nil {
		return nil
	}
	fmt.Fprintf(&e.buf, "func f%d %s(%d params) {\n", f.ID, f.Name, f.NumParams)

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		marker := ""
		if bb.Safepoint {
			marker = " safepoint"
		}
		fmt.Fprintf(&e.buf, "  %s:%s\n", blockLabel(bb), marker)
		for j := range bb.Instrs {
			if err := e.emitInstr(&bb.Instrs[j], bb.CallSafept[j]); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
		}
		e.emitTerm(&bb.Term)
	}

	for _, lp := range f.LandingPads {
		e.emitLandingPad(&lp)
	}
	for _, rc := range f.Resume {
		fmt.Fprintf(&e.buf, "  ; resume state %d -> bb%d\n", rc.State, rc.Target)
	}

	e.buf.WriteString("}\n\n")
	return nil
}

func blockLabel(b *lowir.Block) string {
	if b.Label != "" {
		return fmt.Sprintf("bb%d.%s", b.ID, b.Label)
	}
	return fmt.Sprintf("bb%d", b.ID)
}

func (e *Emitter) emitLandingPad(lp *lowir.LandingPad) {
	e.buf.WriteString("  ; landing pad: blocks=[")
	for i, b := range lp.Blocks {
		if i > 0 {
			e.buf.WriteString(", ")
		}
		fmt.Fprintf(&e.buf, "bb%d", b)
	}
	fmt.Fprintf(&e.buf, "] handler=bb%d", lp.Handler)
	if lp.Finally != lowir.NoBlockID {
		fmt.Fprintf(&e.buf, " finally=bb%d", lp.Finally)
	}
	e.buf.WriteByte('\n')
}
