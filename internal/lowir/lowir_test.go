package lowir_test

import (
	"testing"

	"ember/internal/anvil"
	"ember/internal/layout"
	"ember/internal/lowir"
	"ember/internal/source"
	"ember/internal/types"
)

func TestLower_NewAndFieldAccessExpandToAllocAndByteOffsets(t *testing.T) {
	strs := source.NewInterner()
	ti := types.NewInterner()
	i32 := ti.Builtins().I32

	pointClass := ti.RegisterClass(strs.Intern("Point"), source.Span{}, types.LayoutObject)
	ti.SetFields(pointClass, []types.FieldSlot{{Name: strs.Intern("x"), Type: i32}})

	mod := anvil.New(ti)
	b := anvil.NewFunc("make_point", source.Span{}, pointClass, 0)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	inst := b.NewReg(pointClass)
	b.Emit(anvil.Instr{Kind: anvil.InstrNew, Dst: inst, Type: pointClass,
		New: anvil.NewInstr{Class: pointClass}})

	five := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrConst, Dst: five, Type: i32,
		Const: anvil.ConstInstr{Kind: anvil.ConstInt, Value: anvil.Value{Kind: anvil.ValConstInt, Type: i32, IntVal: 5}}})

	b.Emit(anvil.Instr{Kind: anvil.InstrSetField, Dst: anvil.NoReg, Type: types.NoTypeID,
		SetField: anvil.SetFieldInstr{Class: pointClass, Recv: anvil.RegValue(inst, pointClass), Slot: 0, Value: anvil.RegValue(five, i32)}})

	x := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrGetField, Dst: x, Type: i32,
		GetField: anvil.GetFieldInstr{Class: pointClass, Recv: anvil.RegValue(inst, pointClass), Slot: 0}})

	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: anvil.RegValue(x, i32)}})
	mod.AddFunc(b.Finish())

	lowered, ok := lowir.New(mod, strs, layout.Host64, nil, nil).Lower()
	if !ok {
		t.Fatalf("expected lowering to succeed")
	}

	fn := lowered.Funcs[0]
	if len(fn.Blocks) == 0 {
		t.Fatalf("expected at least one block")
	}
	got := fn.Blocks[fn.Entry].Instrs
	wantKinds := []lowir.InstrKind{lowir.InstrGCAlloc, lowir.InstrConst, lowir.InstrStoreField, lowir.InstrLoadField}
	if len(got) != len(wantKinds) {
		t.Fatalf("expected %d instructions, got %d", len(wantKinds), len(got))
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Fatalf("instr %d: expected kind %v, got %v", i, k, got[i].Kind)
		}
	}

	var classConst *lowir.Const
	for i := range lowered.Consts {
		if lowered.Consts[i].Kind == lowir.ConstClassDescriptor {
			classConst = &lowered.Consts[i]
		}
	}
	if classConst == nil {
		t.Fatalf("expected a class descriptor constant for Point")
	}
	if classConst.Size <= 0 {
		t.Fatalf("expected a positive materialized size, got %d", classConst.Size)
	}
}

func TestLower_VirtualCallExpandsToVTableSequence(t *testing.T) {
	strs := source.NewInterner()
	ti := types.NewInterner()
	i32 := ti.Builtins().I32

	animal := ti.RegisterClass(strs.Intern("Animal"), source.Span{}, types.LayoutObject)
	ti.SetVTable(animal, []types.MethodHandle{
		{Owner: animal, Name: strs.Intern("speak"), Result: i32, Dispatch: types.DispatchVirtual, Body: types.NoFuncRef, VTableSlot: 0, Arity: 0},
	})

	mod := anvil.New(ti)
	b := anvil.NewFunc("call_speak", source.Span{}, i32, 0)
	self := b.AddParam("self", animal, source.Span{})
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	selfReg := b.NewReg(animal)
	b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: selfReg, Type: animal,
		LoadLocal: anvil.LoadLocalInstr{Local: self}})

	result := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrCall, Dst: result, Type: i32, Call: anvil.CallInstr{
		Kind: anvil.CallVirtual, HasReceiver: true, Receiver: anvil.RegValue(selfReg, animal), VTableSlot: 0, Arity: 0,
	}})

	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: anvil.RegValue(result, i32)}})
	mod.AddFunc(b.Finish())

	lowered, ok := lowir.New(mod, strs, layout.Host64, nil, nil).Lower()
	if !ok {
		t.Fatalf("expected lowering to succeed")
	}

	fn := lowered.Funcs[0]
	got := fn.Blocks[fn.Entry].Instrs
	wantKinds := []lowir.InstrKind{lowir.InstrLoadLocal, lowir.InstrLoadVTable, lowir.InstrVTableSlot, lowir.InstrCallIndirect}
	if len(got) != len(wantKinds) {
		t.Fatalf("expected %d instructions, got %d", len(wantKinds), len(got))
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Fatalf("instr %d: expected kind %v, got %v", i, k, got[i].Kind)
		}
	}
}

func TestLower_ThrowSiteBuildsLandingPadDispatchChain(t *testing.T) {
	strs := source.NewInterner()
	ti := types.NewInterner()

	boom := ti.RegisterClass(strs.Intern("Boom"), source.Span{}, types.LayoutObject)

	mod := anvil.New(ti)
	b := anvil.NewFunc("risky", source.Span{}, types.NoTypeID, 0)
	entry := b.NewBlock("entry")
	handler := b.NewBlock("handler")

	b.SetCurrent(entry)
	tr := b.OpenTryRegion([]anvil.CatchEntry{{ClassType: boom, HandlerBlock: handler}}, anvil.NoBlockID)
	b.MarkBlockInRegion(entry)

	exc := b.NewReg(boom)
	b.Emit(anvil.Instr{Kind: anvil.InstrNew, Dst: exc, Type: boom, New: anvil.NewInstr{Class: boom}})
	b.SetTerm(anvil.Terminator{Kind: anvil.TermThrow, Throw: anvil.ThrowTerm{Value: anvil.RegValue(exc, boom)}})
	b.CloseTryRegion()
	_ = tr

	b.SetCurrent(handler)
	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: false}})

	mod.AddFunc(b.Finish())

	lowered, ok := lowir.New(mod, strs, layout.Host64, nil, nil).Lower()
	if !ok {
		t.Fatalf("expected lowering to succeed")
	}

	fn := lowered.Funcs[0]
	if len(fn.LandingPads) != 1 {
		t.Fatalf("expected exactly one landing pad, got %d", len(fn.LandingPads))
	}
	lp := fn.LandingPads[0]
	if len(lp.Catches) != 1 {
		t.Fatalf("expected exactly one catch entry, got %d", len(lp.Catches))
	}

	handlerBlock := fn.BlockByID(lp.Handler)
	if handlerBlock == nil {
		t.Fatalf("expected the landing pad's Handler block to exist")
	}
	if len(handlerBlock.Instrs) < 2 {
		t.Fatalf("expected at least catch-value and is_instance instructions, got %d", len(handlerBlock.Instrs))
	}
	if handlerBlock.Instrs[0].Kind != lowir.InstrCatchValue {
		t.Fatalf("expected the first landing pad instruction to catch the in-flight value, got %v", handlerBlock.Instrs[0].Kind)
	}
	if handlerBlock.Instrs[1].Kind != lowir.InstrIsInstance {
		t.Fatalf("expected the second landing pad instruction to test the catch type, got %v", handlerBlock.Instrs[1].Kind)
	}
	if handlerBlock.Term.Kind != lowir.TermCondJump {
		t.Fatalf("expected the landing pad to branch on its is_instance test, got %v", handlerBlock.Term.Kind)
	}
	if handlerBlock.Term.CondJump.Then != lp.Catches[0].Handler {
		t.Fatalf("expected the matched branch to jump to the catch handler")
	}
}

func TestLower_GeneratorYieldBuildsResumeDispatchTable(t *testing.T) {
	strs := source.NewInterner()
	ti := types.NewInterner()
	i32 := ti.Builtins().I32

	gen := ti.RegisterClass(strs.Intern("GenState"), source.Span{}, types.LayoutObject)
	ti.SetFields(gen, []types.FieldSlot{{Name: strs.Intern("state"), Type: i32}})

	mod := anvil.New(ti)
	b := anvil.NewFunc("next", source.Span{}, i32, anvil.FuncFlagGenerator)
	this := b.AddParam("this", gen, source.Span{})
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	_ = this
	v := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrConst, Dst: v, Type: i32,
		Const: anvil.ConstInstr{Kind: anvil.ConstInt, Value: anvil.Value{Kind: anvil.ValConstInt, Type: i32, IntVal: 42}}})

	resume := b.NewBlock("resume1")
	b.SetTerm(anvil.Terminator{Kind: anvil.TermYieldSuspend, YieldSuspend: anvil.YieldSuspendTerm{
		Value: anvil.RegValue(v, i32), ResumeState: 1, ResumeBlock: resume,
	}})

	b.SetCurrent(resume)
	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: false}})

	mod.AddFunc(b.Finish())

	lowered, ok := lowir.New(mod, strs, layout.Host64, nil, nil).Lower()
	if !ok {
		t.Fatalf("expected lowering to succeed")
	}

	fn := lowered.Funcs[0]
	if len(fn.Resume) != 1 || fn.Resume[0].State != 1 {
		t.Fatalf("expected exactly one resume case for state 1, got %+v", fn.Resume)
	}

	dispatch := fn.BlockByID(fn.Entry)
	if dispatch == nil {
		t.Fatalf("expected a dispatch block at the function entry")
	}
	if len(dispatch.Instrs) != 2 || dispatch.Instrs[0].Kind != lowir.InstrLoadLocal || dispatch.Instrs[1].Kind != lowir.InstrLoadField {
		t.Fatalf("expected the dispatch block to load `this` then its state field, got %+v", dispatch.Instrs)
	}
	if dispatch.Term.Kind != lowir.TermSwitch {
		t.Fatalf("expected the dispatch block to close with a state switch, got %v", dispatch.Term.Kind)
	}
	if len(dispatch.Term.Switch.Cases) != 1 || dispatch.Term.Switch.Cases[0].Value != 1 {
		t.Fatalf("expected one switch case for state 1, got %+v", dispatch.Term.Switch.Cases)
	}
}
