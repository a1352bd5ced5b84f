// Package backend renders a Low IR module to a readable textual
// listing. Spec §6 hands the Low IR module to an external native
// backend as an in-memory data structure — no on-disk format is part
// of the core — so this emitter exists purely as a debug/test
// affordance, gated behind `emberc dump`, standing in for that external
// handoff rather than replacing it.
package backend

import (
	"fmt"
	"strings"

	"ember/internal/lowir"
)

// Emitter accumulates the textual listing of one Module.
type Emitter struct {
	mod *lowir.Module
	buf strings.Builder
}

// EmitModule renders every function and constant-pool entry of mod.
func EmitModule(mod *lowir.Module) (string, error) {
	if mod == nil {
		return "", fmt.Errorf("nil module")
	}
	e := &Emitter{mod: mod}
	e.emitConsts()
	for _, f := range mod.Funcs {
		if err := e.emitFunc(f); err != nil {
			return "", err
		}
	}
	return e.buf.String(), nil
}

func (e *Emitter) emitConsts() {
	if len(e.mod.Consts) == 0 {
		return
	}
	for i, c := range e.mod.Consts {
		switch c.Kind {
		case lowir.ConstString:
			fmt.Fprintf(&e.buf, "const #%d = string %q\n", i, c.Str)
		case lowir.ConstClassDescriptor:
			fmt.Fprintf(&e.buf, "const #%d = class %q size=%d align=%d vtable=%d\n",
				i, c.ClassName, c.Size, c.Align, len(c.VTable))
		case lowir.ConstFuncPointer:
			fmt.Fprintf(&e.buf, "const #%d = funcptr f%d\n", i, c.Func)
		}
	}
	e.buf.WriteByte('\n')
}
