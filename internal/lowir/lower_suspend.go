package lowir

import (
	"ember/internal/anvil"
	"ember/internal/runtimeabi"
)

// lowerAwaitSuspend converts `await v` into a runtime registration of
// this coroutine object as the future's continuation, followed by a
// plain valueless return (spec §4.E: suspend/resume lowering via a
// state-indexed dispatch table at function entry). The terminator's
// resume state/block feed finalizeSuspend's dispatch table once every
// block in the function has been translated.
func lowerAwaitSuspend(fx *funcXlate, lb BlockID, term anvil.AwaitSuspendTerm) {
	future := fx.val(term.Future)
	this := fx.thisValue(lb)
	fx.f.Emit(lb, Instr{Kind: InstrRuntimeCall, Dst: NoReg, RuntimeCall: RuntimeCallInstr{
		Symbol: "future_register_continuation", Args: []Value{future, this}}}, true)
	fx.f.SetTerm(lb, Terminator{Kind: TermRet, Ret: RetTerm{HasValue: false}})

	fx.resumes = append(fx.resumes, ResumeCase{State: term.ResumeState, Target: fx.blockOf[term.ResumeBlock]})
}

// lowerYieldSuspend converts `yield value` into a plain value-carrying
// return; the generator's caller observes it the same way it observes an
// ordinary return, and resumes into ResumeBlock on the next next() call.
func lowerYieldSuspend(fx *funcXlate, lb BlockID, term anvil.YieldSuspendTerm) {
	fx.f.SetTerm(lb, Terminator{Kind: TermRet, Ret: RetTerm{HasValue: true, Value: fx.val(term.Value)}})

	fx.resumes = append(fx.resumes, ResumeCase{State: term.ResumeState, Target: fx.blockOf[term.ResumeBlock]})
}

// finalizeSuspend builds the resume-state dispatch table a suspend-
// capable function's every call enters through: Component D's generated
// next()/resume() body always starts execution at its original entry
// block, with no per-call dispatch of its own, so (E) reads `this.state`
// (field slot 0 of the coroutine class, spec §4.D Generators/Async) at a
// new entry block and switches on it, falling through to the original
// entry for state 0.
func finalizeSuspend(fx *funcXlate) {
	if !fx.af.Flags.Has(anvil.FuncFlagAsync) && !fx.af.Flags.Has(anvil.FuncFlagGenerator) {
		return
	}
	if len(fx.resumes) == 0 {
		return
	}
	fx.f.Resume = fx.resumes

	originalEntry := fx.f.Entry
	dispatch := fx.f.NewBlock("resume_dispatch")

	classID := fx.l.types.ErasedClass(fx.af.Locals[0].Type)
	off, _ := fx.l.layout.FieldOffset(classID, 0)

	this := fx.thisValue(dispatch)
	stateReg := fx.f.NewReg(runtimeabi.KindI32)
	fx.f.Emit(dispatch, Instr{Kind: InstrLoadField, Dst: stateReg,
		LoadField: LoadFieldInstr{Recv: this, Offset: int32(off)}}, false)

	cases := make([]SwitchCase, len(fx.resumes))
	for i, r := range fx.resumes {
		cases[i] = SwitchCase{Value: int64(r.State), Target: r.Target}
	}
	fx.f.SetTerm(dispatch, Terminator{Kind: TermSwitch, Switch: SwitchTerm{
		Value: RegValue(stateReg, runtimeabi.KindI32), Cases: cases, Default: originalEntry}})

	fx.f.Entry = dispatch
}
