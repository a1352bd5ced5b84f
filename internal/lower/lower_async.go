package lower

import (
	"fmt"

	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/resolve"
	"ember/internal/types"
)

// lowerAsync materializes an async function as a state-machine class the
// same shape lowerGenerator builds for generators (spec §4.D Async): a
// `state: i32` field plus one field per local live across a suspension,
// a `resume()` method whose body is fd's statements with every `await`
// turned into a suspend point, and an outer constructor that allocates
// the state machine, wraps it in a Future, drives it once synchronously
// via resume(), and hands the Future back to the caller.
func (l *Lowerer) lowerAsync(fd *ast.FuncDecl, receiverClass string) {
	slots := l.res.FuncByNode[fd.ID]
	classID := l.types.RegisterClass(l.strings.Intern(l.synthClassName("Async")), fd.Span, types.LayoutObject)

	resumeFields, resumeRef := l.lowerCoroMethod(classID, true, fd, slots, fd.Result, "resume")
	l.types.SetFields(classID, resumeFields)

	resumeName := l.strings.Intern("resume")
	resumeMethod := types.MethodHandle{Owner: classID, Name: resumeName, Result: fd.Result, Dispatch: types.DispatchAsync, Body: resumeRef, VTableSlot: 0, Arity: 0}
	l.types.AddMethod(classID, resumeMethod)
	l.types.SetVTable(classID, []types.MethodHandle{resumeMethod})

	l.lowerAsyncConstructor(fd, receiverClass, classID, slots, resumeMethod)
}

// lowerAsyncConstructor replaces fd's own visible body with allocation
// code: a fresh state-machine instance, state zeroed, every parameter
// copied into its matching field (same field-index-equals-slot-number
// convention lowerCoroConstructor relies on), a Future wrapping the
// instance, one synchronous resume() to drive execution to the first
// await or to completion, and the Future returned to the caller (spec
// §4.D: "Values returned by async functions are wrapped in a Future
// created at entry").
func (l *Lowerer) lowerAsyncConstructor(fd *ast.FuncDecl, receiverClass string, classID types.TypeID, slots resolve.FuncSlots, resumeMethod types.MethodHandle) {
	futureTy := l.types.RegisterFuture(fd.Result)
	b := anvil.NewFunc(funcDisplayName(receiverClass, fd.Name), fd.Span, futureTy, anvil.FuncFlags(0))

	paramLocals := make([]anvil.LocalID, len(slots.ParamSlots))
	offset := 0
	if receiverClass != "" && len(slots.ParamSlots) > 0 {
		paramLocals[0] = b.AddParam("this", slots.SlotTypes[slots.ParamSlots[0]], fd.Span)
		offset = 1
	}
	for i := offset; i < len(slots.ParamSlots); i++ {
		s := slots.ParamSlots[i]
		name := paramName(fd, i-offset)
		paramLocals[i] = b.AddParam(name, slots.SlotTypes[s], fd.Span)
	}

	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	instReg := b.NewReg(classID)
	b.Emit(anvil.Instr{Kind: anvil.InstrNew, Dst: instReg, Type: classID, Span: fd.Span, New: anvil.NewInstr{Class: classID}})
	inst := anvil.RegValue(instReg, classID)

	i32 := l.types.Builtins().I32
	zeroReg := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrConst, Dst: zeroReg, Type: i32, Span: fd.Span, Const: anvil.ConstInstr{Kind: anvil.ConstInt, Value: anvil.Value{Kind: anvil.ValConstInt, Type: i32, IntVal: 0}}})
	b.Emit(anvil.Instr{Kind: anvil.InstrSetField, Dst: anvil.NoReg, Span: fd.Span,
		SetField: anvil.SetFieldInstr{Class: classID, Recv: inst, Slot: 0, Value: anvil.RegValue(zeroReg, i32)}})

	for i, s := range slots.ParamSlots {
		ty := slots.SlotTypes[s]
		loadReg := b.NewReg(ty)
		b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: loadReg, Type: ty, Span: fd.Span, LoadLocal: anvil.LoadLocalInstr{Local: paramLocals[i]}})
		b.Emit(anvil.Instr{Kind: anvil.InstrSetField, Dst: anvil.NoReg, Span: fd.Span,
			SetField: anvil.SetFieldInstr{Class: classID, Recv: inst, Slot: int(s), Value: anvil.RegValue(loadReg, ty), NeedsBarrier: isRefType(l.types, ty)}})
	}

	futReg := b.NewReg(futureTy)
	b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: futReg, Type: futureTy, Span: fd.Span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeFutureNew, Args: []anvil.Value{inst}}})
	fut := anvil.RegValue(futReg, futureTy)

	resultReg := b.NewReg(fd.Result)
	b.Emit(anvil.Instr{Kind: anvil.InstrCall, Dst: resultReg, Type: fd.Result, Span: fd.Span, Call: anvil.CallInstr{
		Kind: anvil.CallVirtual, HasReceiver: true, Receiver: inst, Class: classID, VTableSlot: resumeMethod.VTableSlot, Name: resumeMethod.Name,
	}})

	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: fut}})

	class := types.NoTypeID
	if receiverClass != "" {
		class = l.res.ClassByName[receiverClass]
	}
	ref := l.funcRefFor(class, fd.Name, len(fd.Params))
	l.module.AddFuncWithRef(b.Finish(), ref)
}

// lowerAwaitSuspend lowers `await v` inside an async body into a suspend
// point, mirroring lowerYield's generator treatment: the awaited future
// is pinned into a dedicated ad hoc local (`_await`) so the uniform
// per-local spill/reload finalizeCoro installs carries it across
// suspension the same way it carries every other local, the current
// block terminates with await_suspend, and lowering resumes into a fresh
// block that reloads `_await` and fetches its now-ready value.
func (fb *funcLower) lowerAwaitSuspend(e *ast.Expr) anvil.Value {
	v := fb.lowerExpr(e.Await)
	if fb.awaitLocal == anvil.NoLocal {
		fb.awaitLocal = fb.b.AddLocal("_await", v.Type, e.Span)
	}
	fb.emitStoreLocal(fb.awaitLocal, v, e.Span)
	futVal := fb.emitLoadLocal(fb.awaitLocal, v.Type, e.Span)

	fb.coro.nextState++
	state := fb.coro.nextState
	resumeBlk := fb.newBlock("async.resume")
	preBlock := fb.b.Current()
	fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermAwaitSuspend, AwaitSuspend: anvil.AwaitSuspendTerm{Future: futVal, ResumeState: state, ResumeBlock: resumeBlk}})
	fb.coro.resumes = append(fb.coro.resumes, resumePoint{state: state, preBlock: preBlock, resumeBlock: resumeBlk})

	fb.b.SetCurrent(resumeBlk)
	resumedFut := fb.emitLoadLocal(fb.awaitLocal, v.Type, e.Span)
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: dst, Type: e.Type, Span: e.Span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeFutureValue, Args: []anvil.Value{resumedFut}}})
	return anvil.RegValue(dst, e.Type)
}

// paramName renders the i'th (0-based, receiver excluded) declared
// parameter's source name, or a synthetic "pN" fallback.
func paramName(fd *ast.FuncDecl, i int) string {
	if i < len(fd.Params) {
		return fd.Params[i].Name
	}
	return fmt.Sprintf("p%d", i)
}
