package lowir

import (
	"ember/internal/anvil"
	"ember/internal/runtimeabi"
)

// funcXlate holds the per-function translation state threaded through
// lower_func.go, lower_dispatch.go, lower_alloc.go, lower_exceptions.go,
// and lower_suspend.go while one Anvil Func is being translated.
type funcXlate struct {
	l  *Lowerer
	af *anvil.Func
	f  *Func

	blockOf map[anvil.BlockID]BlockID
	localOf map[anvil.LocalID]LocalID
	regOf   map[anvil.RegID]RegID

	resumes []ResumeCase
}

// lowerFunc translates one verified Anvil function into its Low IR
// equivalent: every block and local is pre-created so forward references
// (a resume block's target, a try-region's handler) resolve regardless
// of visitation order, then instructions and terminators are translated
// block by block in Anvil's own program order.
func (l *Lowerer) lowerFunc(af *anvil.Func) *Func {
	f := &Func{Name: af.Name, NumParams: af.NumParams}
	fx := &funcXlate{
		l:       l,
		af:      af,
		f:       f,
		blockOf: make(map[anvil.BlockID]BlockID, len(af.Blocks)),
		localOf: make(map[anvil.LocalID]LocalID, len(af.Locals)),
		regOf:   make(map[anvil.RegID]RegID, len(af.RegTypes)),
	}

	for id := range af.Locals {
		fx.localOf[anvil.LocalID(id)] = f.AddLocal(machKind(l.types, af.Locals[id].Type))
	}
	for i := range af.Blocks {
		fx.blockOf[af.Blocks[i].ID] = f.NewBlock(af.Blocks[i].Label)
	}
	f.Entry = fx.blockOf[af.Entry]

	for i := range af.Blocks {
		fx.lowerBlock(&af.Blocks[i])
	}

	buildLandingPads(fx)
	finalizeSuspend(fx)
	markSafepoints(fx)

	return f
}

func (fx *funcXlate) lowerBlock(ab *anvil.Block) {
	lb := fx.blockOf[ab.ID]
	for i := range ab.Instrs {
		fx.lowerInstr(lb, &ab.Instrs[i])
	}
	fx.lowerTerm(lb, ab)
}

// newReg allocates the Low IR register an Anvil instruction's Dst maps
// to, or NoReg if the instruction produces no value.
func (fx *funcXlate) newReg(ai *anvil.Instr) RegID {
	if ai.Dst == anvil.NoReg {
		return NoReg
	}
	r := fx.f.NewReg(machKind(fx.l.types, ai.Type))
	fx.regOf[ai.Dst] = r
	return r
}

// val translates an Anvil operand into its Low IR form.
func (fx *funcXlate) val(v anvil.Value) Value {
	switch v.Kind {
	case anvil.ValReg:
		r, ok := fx.regOf[v.Reg]
		if !ok {
			return Value{}
		}
		return RegValue(r, fx.f.RegKinds[r])
	case anvil.ValConstInt:
		return Value{Form: ValConstInt, Kind: machKind(fx.l.types, v.Type), IntVal: v.IntVal}
	case anvil.ValConstFloat:
		return Value{Form: ValConstFloat, Kind: runtimeabi.KindF32, FloatVal: v.FloatVal}
	case anvil.ValConstDouble:
		return Value{Form: ValConstDouble, Kind: runtimeabi.KindF64, DoubleVal: v.DoubleVal}
	case anvil.ValConstString:
		return Value{Form: ValConstPool, Kind: runtimeabi.KindWord, Pool: fx.l.mod.InternString(fx.l.str(v.StringVal))}
	case anvil.ValConstNil:
		return NullValue()
	case anvil.ValConstBool:
		return Value{Form: ValConstBool, Kind: runtimeabi.KindI1, BoolVal: v.BoolVal}
	case anvil.ValConstClass:
		return Value{Form: ValConstPool, Kind: runtimeabi.KindWord, Pool: fx.l.classDescriptor(v.ClassVal)}
	case anvil.ValConstMethod:
		id, _ := fx.l.funcIDFor(v.MethodVal)
		return Value{Form: ValConstPool, Kind: runtimeabi.KindPtr, Pool: fx.l.mod.InternFuncPointer(id)}
	default:
		return Value{}
	}
}

// thisValue loads local 0 (every method's receiver parameter) into a
// fresh register of the function's own receiver type. lower_suspend.go
// uses it to pass the coroutine state object as a future's continuation.
func (fx *funcXlate) thisValue(lb BlockID) Value {
	kind := fx.f.Locals[0]
	r := fx.f.NewReg(kind)
	fx.f.Emit(lb, Instr{Kind: InstrLoadLocal, Dst: r, LoadLocal: LoadLocalInstr{Local: 0}}, false)
	return RegValue(r, kind)
}

func (fx *funcXlate) lowerInstr(lb BlockID, ai *anvil.Instr) {
	switch ai.Kind {
	case anvil.InstrLoadLocal:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrLoadLocal, Dst: dst,
			LoadLocal: LoadLocalInstr{Local: fx.localOf[ai.LoadLocal.Local]}}, false)

	case anvil.InstrStoreLocal:
		fx.f.Emit(lb, Instr{Kind: InstrStoreLocal, Dst: NoReg,
			StoreLocal: StoreLocalInstr{Local: fx.localOf[ai.StoreLocal.Local], Value: fx.val(ai.StoreLocal.Value)}}, false)

	case anvil.InstrConst:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrConst, Dst: dst, Const: ConstInstr{Value: fx.val(ai.Const.Value)}}, false)

	case anvil.InstrUnary:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrUnary, Dst: dst,
			Unary: UnaryInstr{Op: ai.Unary.Op, Operand: fx.val(ai.Unary.Operand)}}, false)

	case anvil.InstrBinary:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrBinary, Dst: dst,
			Binary: BinaryInstr{Op: ai.Binary.Op, Lhs: fx.val(ai.Binary.Lhs), Rhs: fx.val(ai.Binary.Rhs)}}, false)

	case anvil.InstrConvert:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrConvert, Dst: dst,
			Convert: ConvertInstr{Op: ai.Convert.Op, Value: fx.val(ai.Convert.Value)}}, false)

	case anvil.InstrBox:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrRuntimeCall, Dst: dst,
			RuntimeCall: RuntimeCallInstr{Symbol: "box_primitive", Args: []Value{fx.val(ai.Box.Value)}}}, true)

	case anvil.InstrUnbox:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrRuntimeCall, Dst: dst,
			RuntimeCall: RuntimeCallInstr{Symbol: "unbox_primitive", Args: []Value{fx.val(ai.Unbox.Value)}}}, true)

	case anvil.InstrNew:
		lowerNew(fx, lb, ai)

	case anvil.InstrGetField:
		dst := fx.newReg(ai)
		off, _ := fx.l.layout.FieldOffset(fx.l.types.ErasedClass(ai.GetField.Class), ai.GetField.Slot)
		fx.f.Emit(lb, Instr{Kind: InstrLoadField, Dst: dst,
			LoadField: LoadFieldInstr{Recv: fx.val(ai.GetField.Recv), Offset: int32(off)}}, false)

	case anvil.InstrSetField:
		off, _ := fx.l.layout.FieldOffset(fx.l.types.ErasedClass(ai.SetField.Class), ai.SetField.Slot)
		recv, val := fx.val(ai.SetField.Recv), fx.val(ai.SetField.Value)
		if ai.SetField.NeedsBarrier {
			fx.f.Emit(lb, Instr{Kind: InstrRuntimeCall, Dst: NoReg, RuntimeCall: RuntimeCallInstr{
				Symbol: "gc_write_barrier",
				Args:   []Value{recv, {Form: ValConstInt, Kind: runtimeabi.KindI32, IntVal: int64(off)}, val},
			}}, true)
		}
		fx.f.Emit(lb, Instr{Kind: InstrStoreField, Dst: NoReg,
			StoreField: StoreFieldInstr{Recv: recv, Offset: int32(off), Value: val, NeedsBarrier: ai.SetField.NeedsBarrier}}, false)

	case anvil.InstrCall:
		lowerCall(fx, lb, ai)

	case anvil.InstrArrayNew:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrArrayNew, Dst: dst,
			ArrayNew: ArrayNewInstr{Elem: machKind(fx.l.types, ai.ArrayNew.Elem), Length: fx.val(ai.ArrayNew.Length)}}, true)

	case anvil.InstrArrayLen:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrArrayLen, Dst: dst, ArrayLen: ArrayLenInstr{Recv: fx.val(ai.ArrayLen.Recv)}}, false)

	case anvil.InstrArrayGet:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrArrayGet, Dst: dst,
			ArrayGet: ArrayIndexInstr{Recv: fx.val(ai.ArrayGet.Recv), Index: fx.val(ai.ArrayGet.Index)}}, false)

	case anvil.InstrArraySet:
		fx.f.Emit(lb, Instr{Kind: InstrArraySet, Dst: NoReg,
			ArraySet: ArraySetInstr{Recv: fx.val(ai.ArraySet.Recv), Index: fx.val(ai.ArraySet.Index), Value: fx.val(ai.ArraySet.Value)}}, false)

	case anvil.InstrHashNew:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrHashNew, Dst: dst,
			HashNew: HashNewInstr{Key: machKind(fx.l.types, ai.HashNew.Key), Value: machKind(fx.l.types, ai.HashNew.Value)}}, true)

	case anvil.InstrHashGet:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrHashGet, Dst: dst,
			HashGet: HashGetInstr{Recv: fx.val(ai.HashGet.Recv), Key: fx.val(ai.HashGet.Key)}}, false)

	case anvil.InstrHashSet:
		fx.f.Emit(lb, Instr{Kind: InstrHashSet, Dst: NoReg,
			HashSet: HashSetInstr{Recv: fx.val(ai.HashSet.Recv), Key: fx.val(ai.HashSet.Key), Value: fx.val(ai.HashSet.Value)}}, false)

	case anvil.InstrHashLen:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrHashLen, Dst: dst, HashLen: HashLenInstr{Recv: fx.val(ai.HashLen.Recv)}}, false)

	case anvil.InstrRangeNew:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrRangeNew, Dst: dst, RangeNew: RangeNewInstr{
			Start: fx.val(ai.RangeNew.Start), End: fx.val(ai.RangeNew.End), Step: fx.val(ai.RangeNew.Step), Inclusive: ai.RangeNew.Inclusive}}, false)

	case anvil.InstrLoadErased:
		dst := fx.newReg(ai)
		erased := fx.l.types.ErasedClass(ai.LoadErased.Recv.Type)
		off, _ := fx.l.layout.FieldOffset(erased, ai.LoadErased.Slot)
		fx.f.Emit(lb, Instr{Kind: InstrLoadField, Dst: dst,
			LoadField: LoadFieldInstr{Recv: fx.val(ai.LoadErased.Recv), Offset: int32(off)}}, false)

	case anvil.InstrStoreErased:
		erased := fx.l.types.ErasedClass(ai.StoreErased.Recv.Type)
		off, _ := fx.l.layout.FieldOffset(erased, ai.StoreErased.Slot)
		val := fx.val(ai.StoreErased.Value)
		needsBarrier := val.Kind == runtimeabi.KindWord
		if needsBarrier {
			fx.f.Emit(lb, Instr{Kind: InstrRuntimeCall, Dst: NoReg, RuntimeCall: RuntimeCallInstr{
				Symbol: "gc_write_barrier",
				Args:   []Value{fx.val(ai.StoreErased.Recv), {Form: ValConstInt, Kind: runtimeabi.KindI32, IntVal: int64(off)}, val},
			}}, true)
		}
		fx.f.Emit(lb, Instr{Kind: InstrStoreField, Dst: NoReg,
			StoreField: StoreFieldInstr{Recv: fx.val(ai.StoreErased.Recv), Offset: int32(off), Value: val, NeedsBarrier: needsBarrier}}, false)

	case anvil.InstrIsInstance:
		dst := fx.newReg(ai)
		fx.f.Emit(lb, Instr{Kind: InstrIsInstance, Dst: dst,
			IsInstance: IsInstanceInstr{Value: fx.val(ai.IsInstance.Value), Descriptor: fx.l.classDescriptor(ai.IsInstance.Class)}}, false)

	case anvil.InstrRuntimeCall:
		dst := fx.newReg(ai)
		args := make([]Value, len(ai.RuntimeCall.Args))
		for i, a := range ai.RuntimeCall.Args {
			args[i] = fx.val(a)
		}
		fx.f.Emit(lb, Instr{Kind: InstrRuntimeCall, Dst: dst,
			RuntimeCall: RuntimeCallInstr{Symbol: runtimeSymbolName(ai.RuntimeCall.Symbol), Args: args}}, true)

	case anvil.InstrNop:
		fx.f.Emit(lb, Instr{Kind: InstrNop, Dst: NoReg}, false)
	}
}

func (fx *funcXlate) lowerTerm(lb BlockID, ab *anvil.Block) {
	switch ab.Term.Kind {
	case anvil.TermRet:
		fx.f.SetTerm(lb, Terminator{Kind: TermRet, Ret: RetTerm{HasValue: ab.Term.Ret.HasValue, Value: fx.val(ab.Term.Ret.Value)}})

	case anvil.TermJump:
		fx.f.SetTerm(lb, Terminator{Kind: TermJump, Jump: JumpTerm{Target: fx.blockOf[ab.Term.Jump.Target]}})

	case anvil.TermCondJump:
		fx.f.SetTerm(lb, Terminator{Kind: TermCondJump, CondJump: CondJumpTerm{
			Cond: fx.val(ab.Term.CondJump.Cond), Then: fx.blockOf[ab.Term.CondJump.Then], Else: fx.blockOf[ab.Term.CondJump.Else]}})

	case anvil.TermSwitch:
		cases := make([]SwitchCase, len(ab.Term.Switch.Cases))
		for i, c := range ab.Term.Switch.Cases {
			cases[i] = SwitchCase{Value: c.Value, Target: fx.blockOf[c.Target]}
		}
		fx.f.SetTerm(lb, Terminator{Kind: TermSwitch, Switch: SwitchTerm{
			Value: fx.val(ab.Term.Switch.Value), Cases: cases, Default: fx.blockOf[ab.Term.Switch.Default]}})

	case anvil.TermThrow:
		fx.f.SetTerm(lb, Terminator{Kind: TermThrow, Throw: ThrowTerm{Value: fx.val(ab.Term.Throw.Value)}})

	case anvil.TermAwaitSuspend:
		lowerAwaitSuspend(fx, lb, ab.Term.AwaitSuspend)

	case anvil.TermYieldSuspend:
		lowerYieldSuspend(fx, lb, ab.Term.YieldSuspend)
	}
}
