package lowir

import (
	"ember/internal/anvil"
	"ember/internal/runtimeabi"
	"ember/internal/types"
)

// lowerNew expands `new(class)` into gc_alloc sized from the class's
// materialized layout, followed by a direct call to its "initialize"
// method when one is declared (spec §4.D: "new(class) allocates and
// runs initialize"; spec §4.E: "new(class): gc_alloc(size) ... invoke
// initializer").
func lowerNew(fx *funcXlate, lb BlockID, ai *anvil.Instr) {
	classID := fx.l.types.ErasedClass(ai.New.Class)
	desc := fx.l.classDescriptor(classID)
	lay, _ := fx.l.layout.LayoutOf(classID)

	dst := fx.newReg(ai)
	fx.f.Emit(lb, Instr{Kind: InstrGCAlloc, Dst: dst, GCAlloc: GCAllocInstr{
		Size:       Value{Form: ValConstInt, Kind: runtimeabi.KindPtr, IntVal: int64(lay.Size)},
		Descriptor: desc,
	}}, true)

	initName := fx.l.strings.Intern("initialize")
	m, ok := fx.l.types.LookupMethod(classID, initName, len(ai.New.Args))
	if !ok || m.Body == types.NoFuncRef {
		return
	}
	target, found := fx.l.funcIDFor(m.Body)
	if !found {
		return
	}

	args := make([]Value, 0, len(ai.New.Args)+1)
	args = append(args, RegValue(dst, runtimeabi.KindWord))
	for _, a := range ai.New.Args {
		args = append(args, fx.val(a))
	}
	fx.f.Emit(lb, Instr{Kind: InstrCallDirect, Dst: NoReg,
		CallDirect: CallDirectInstr{Target: target, Args: args}}, true)
}
