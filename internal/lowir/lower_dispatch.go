package lowir

import (
	"ember/internal/anvil"
	"ember/internal/runtimeabi"
)

// lowerCall expands one Anvil call instruction per its dispatch kind
// (spec §4.E): static and native resolve straight to a direct call;
// virtual dispatch loads the v-table pointer out of the object header and
// indexes it by slot; interface-like dispatch performs a runtime
// (class_id, Name, Arity) lookup behind a per-call-site monomorphic
// inline-cache slot. Both indirect forms end in the same InstrCallIndirect.
func lowerCall(fx *funcXlate, lb BlockID, ai *anvil.Instr) {
	c := ai.Call
	args := make([]Value, 0, len(c.Args)+1)
	if c.HasReceiver {
		args = append(args, fx.val(c.Receiver))
	}
	for _, a := range c.Args {
		args = append(args, fx.val(a))
	}

	dst := fx.newReg(ai)

	switch c.Kind {
	case anvil.CallStatic, anvil.CallNative:
		target, _ := fx.l.funcIDFor(c.Method)
		fx.f.Emit(lb, Instr{Kind: InstrCallDirect, Dst: dst,
			CallDirect: CallDirectInstr{Target: target, Args: args}}, true)

	case anvil.CallVirtual:
		recv := fx.val(c.Receiver)
		vt := fx.f.NewReg(runtimeabi.KindWord)
		fx.f.Emit(lb, Instr{Kind: InstrLoadVTable, Dst: vt, LoadVTable: LoadVTableInstr{Recv: recv}}, false)

		slot := fx.f.NewReg(runtimeabi.KindPtr)
		fx.f.Emit(lb, Instr{Kind: InstrVTableSlot, Dst: slot,
			VTableSlot: VTableSlotInstr{VTable: RegValue(vt, runtimeabi.KindWord), Slot: int32(c.VTableSlot)}}, false)

		fx.f.Emit(lb, Instr{Kind: InstrCallIndirect, Dst: dst,
			CallIndirect: CallIndirectInstr{Target: RegValue(slot, runtimeabi.KindPtr), Args: args}}, true)

	case anvil.CallInterfaceLike:
		recv := fx.val(c.Receiver)
		nameConst := fx.l.mod.InternString(fx.l.str(c.Name))

		slot := fx.f.NewReg(runtimeabi.KindPtr)
		cacheSlot := fx.l.nextCacheSlot
		fx.l.nextCacheSlot++
		fx.f.Emit(lb, Instr{Kind: InstrInterfaceLookup, Dst: slot,
			InterfaceLookup: InterfaceLookupInstr{Recv: recv, Name: nameConst, Arity: int32(c.Arity), CacheSlot: cacheSlot}}, true)

		fx.f.Emit(lb, Instr{Kind: InstrCallIndirect, Dst: dst,
			CallIndirect: CallIndirectInstr{Target: RegValue(slot, runtimeabi.KindPtr), Args: args}}, true)
	}
}
