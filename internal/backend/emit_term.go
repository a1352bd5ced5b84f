package backend

import (
	"fmt"

	"ember/internal/lowir"
)

func (e *Emitter) emitTerm(t *lowir.Terminator) {
	switch t.Kind {
	case lowir.TermRet:
		if t.Ret.HasValue {
			fmt.Fprintf(&e.buf, "    ret %s\n", renderValue(t.Ret.Value))
		} else {
			e.buf.WriteString("    ret\n")
		}
	case lowir.TermJump:
		fmt.Fprintf(&e.buf, "    jump bb%d\n", t.Jump.Target)
	case lowir.TermCondJump:
		fmt.Fprintf(&e.buf, "    cond_jump %s, bb%d, bb%d\n", renderValue(t.CondJump.Cond), t.CondJump.Then, t.CondJump.Else)
	case lowir.TermSwitch:
		e.buf.WriteString("    switch " + renderValue(t.Switch.Value))
		for _, c := range t.Switch.Cases {
			fmt.Fprintf(&e.buf, ", %d->bb%d", c.Value, c.Target)
		}
		fmt.Fprintf(&e.buf, ", default->bb%d\n", t.Switch.Default)
	case lowir.TermThrow:
		fmt.Fprintf(&e.buf, "    throw %s\n", renderValue(t.Throw.Value))
	case lowir.TermRethrow:
		e.buf.WriteString("    rethrow\n")
	case lowir.TermNone:
		e.buf.WriteString("    ; unterminated\n")
	}
}
