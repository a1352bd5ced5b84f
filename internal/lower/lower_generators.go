package lower

import (
	"fmt"

	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/resolve"
	"ember/internal/source"
	"ember/internal/types"
)

// doneState is the distinguished state value spec §4.D's generator/async
// state machines terminate in; has_next() reports false once state
// reaches it.
const doneState int32 = -1

// coroState tracks the suspend/resume bookkeeping shared by generator and
// async state-machine lowering. Every local the body declares (resolver
// slots and ad hoc locals a desugaring like `for` adds alike) is given a
// class field at the same index as its LocalID, decided the moment the
// local is created; field 0 is reserved for `state`. This lets suspend
// and resume sites spill/reload the whole local set uniformly without
// knowing in advance how many locals the body will end up declaring.
type coroState struct {
	class   types.TypeID
	isAsync bool

	nextState int32
	resumes   []resumePoint
}

// resumePoint records one yield/await suspension: preBlock is the block
// whose final instructions (spill + state store) are appended once the
// body is fully lowered and the local count is final; resumeBlock is
// where execution continues once this state is resumed into, and gets
// the matching reload code prepended.
type resumePoint struct {
	state       int32
	preBlock    anvil.BlockID
	resumeBlock anvil.BlockID
}

// lowerGenerator materializes a function whose body contains `yield` as
// a state-machine class (spec §4.D Generators): a `state: i32` field,
// one field per local live across the body, a `next()` method whose
// statements are the original body split into case arms by state, and a
// `has_next()`/`iterator()` pair completing the iteration protocol so a
// generator value can drive `for x in gen():` directly.
func (l *Lowerer) lowerGenerator(fd *ast.FuncDecl, receiverClass string) {
	slots := l.res.FuncByNode[fd.ID]
	classID := l.types.RegisterClass(l.strings.Intern(l.synthClassName("Gen")), fd.Span, types.LayoutObject)

	elemTy, ok := firstYieldType(fd.Body)
	if !ok {
		elemTy = l.types.Builtins().Nil
	}

	nextFields, nextRef := l.lowerCoroMethod(classID, false, fd, slots, elemTy, "next")
	l.types.SetFields(classID, nextFields)

	i1 := l.types.Builtins().I1
	hasNextRef := l.lowerHasNext(classID)
	iterRef := l.lowerCoroIterator(classID, fd.Result)

	nextName := l.strings.Intern("next")
	hasNextName := l.strings.Intern("has_next")
	iterName := l.strings.Intern("iterator")
	nextMethod := types.MethodHandle{Owner: classID, Name: nextName, Result: elemTy, Dispatch: types.DispatchGenerator, Body: nextRef, VTableSlot: 0, Arity: 0}
	hasNextMethod := types.MethodHandle{Owner: classID, Name: hasNextName, Result: i1, Dispatch: types.DispatchGenerator, Body: hasNextRef, VTableSlot: 1, Arity: 0}
	iterMethod := types.MethodHandle{Owner: classID, Name: iterName, Result: fd.Result, Dispatch: types.DispatchGenerator, Body: iterRef, VTableSlot: 2, Arity: 0}
	l.types.AddMethod(classID, nextMethod)
	l.types.AddMethod(classID, hasNextMethod)
	l.types.AddMethod(classID, iterMethod)
	l.types.SetVTable(classID, []types.MethodHandle{nextMethod, hasNextMethod, iterMethod})

	l.lowerCoroConstructor(fd, receiverClass, classID, slots)
}

// lowerCoroMethod builds the next()/resume() state-machine method shared
// by generators and async functions: pass 1 lowers fd.Body exactly like
// an ordinary function body except that StmtYield/ExprAwait terminate
// the current block into a fresh suspend point instead of lowering
// inline; pass 2 (finalizeCoro) then knows the final local count and
// splices in the per-local spill/reload code. Returns the class's field
// list (state plus one field per local) and the FuncRef it registered
// the built body under.
func (l *Lowerer) lowerCoroMethod(classID types.TypeID, isAsync bool, fd *ast.FuncDecl, slots resolve.FuncSlots, result types.TypeID, methodName string) ([]types.FieldSlot, types.FuncRef) {
	flags := anvil.FuncFlags(0)
	if isAsync {
		flags |= anvil.FuncFlagAsync
	} else {
		flags |= anvil.FuncFlagGenerator
	}
	b := anvil.NewFunc(l.synthClassNamePrefix(classID)+"."+methodName, fd.Span, result, flags)
	fb := &funcLower{
		l:         l,
		b:         b,
		fd:        &ast.FuncDecl{Span: fd.Span, Result: result, Body: fd.Body},
		slot:      slots,
		localOf:   make(map[ast.SlotID]anvil.LocalID, slots.NumSlots+1),
		recvClass:  classID,
		coro:       &coroState{class: classID, isAsync: isAsync},
		awaitLocal: anvil.NoLocal,
	}

	fb.localOf[closureThisSlot] = b.AddParam("this", classID, fd.Span)
	for slot := ast.SlotID(1); int(slot) <= slots.NumSlots; slot++ {
		ty := slots.SlotTypes[slot]
		fb.localOf[slot] = b.AddLocal(fmt.Sprintf("_s%d", slot), ty, fd.Span)
	}

	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	markDone := func() { fb.storeCoroState(doneState, fd.Span) }
	fb.withCleanup(markDone, true, fd.Body)
	if !fb.b.CurrentTerminated() {
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: anvil.Value{Kind: anvil.ValConstNil, Type: result}}})
	}

	fb.finalizeCoro(entry, fd.Span)

	ref := l.freshFuncRef()
	f := fb.b.Finish()
	l.module.AddFuncWithRef(f, ref)

	fields := make([]types.FieldSlot, fb.b.NumLocals())
	fields[0] = types.FieldSlot{Name: l.strings.Intern("state"), Type: l.types.Builtins().I32, Offset: -1}
	for id := anvil.LocalID(1); int(id) < fb.b.NumLocals(); id++ {
		fields[id] = types.FieldSlot{Name: l.strings.Intern(fmt.Sprintf("_f%d", id)), Type: fb.b.LocalType(id), Offset: -1}
	}
	return fields, ref
}

// storeCoroState emits `this.state = n` into the current block.
func (fb *funcLower) storeCoroState(n int32, span source.Span) {
	thisVal := fb.emitLoadLocal(fb.localOf[closureThisSlot], fb.coro.class, span)
	i32 := fb.l.types.Builtins().I32
	c := fb.emitConst(anvil.ConstInt, anvil.Value{Kind: anvil.ValConstInt, Type: i32, IntVal: int64(n)}, i32, span)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrSetField, Dst: anvil.NoReg, Span: span,
		SetField: anvil.SetFieldInstr{Class: fb.coro.class, Recv: thisVal, Slot: 0, Value: c}})
}

// finalizeCoro installs the spill-before-suspend and reload-on-resume
// code at every point fb.coro.resumes collected, plus the initial
// reload at entry (state 0's "resume point" is simply the first call).
func (fb *funcLower) finalizeCoro(entry anvil.BlockID, span source.Span) {
	for _, rp := range fb.coro.resumes {
		fb.b.SetCurrent(rp.preBlock)
		fb.storeCoroState(rp.state, span)
		fb.spillCoroLocals(span)
	}

	reload := fb.coroReloadInstrs(span)
	fb.b.PrependInstrs(entry, reload)
	for _, rp := range fb.coro.resumes {
		fb.b.PrependInstrs(rp.resumeBlock, fb.coroReloadInstrs(span))
	}
}

// spillCoroLocals appends `this._f<id> = local<id>` for every declared
// local to the current block, run immediately before a suspend
// terminator so resume can restore them.
func (fb *funcLower) spillCoroLocals(span source.Span) {
	thisVal := fb.emitLoadLocal(fb.localOf[closureThisSlot], fb.coro.class, span)
	for id := anvil.LocalID(1); int(id) < fb.b.NumLocals(); id++ {
		ty := fb.b.LocalType(id)
		v := fb.emitLoadLocal(id, ty, span)
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrSetField, Dst: anvil.NoReg, Span: span,
			SetField: anvil.SetFieldInstr{Class: fb.coro.class, Recv: thisVal, Slot: int(id), Value: v, NeedsBarrier: isRefType(fb.l.types, ty)}})
	}
}

// coroReloadInstrs builds (without touching fb.b's current block) the
// instruction sequence that reloads every local from its field; callers
// splice it onto the front of a resume block via PrependInstrs.
func (fb *funcLower) coroReloadInstrs(span source.Span) []anvil.Instr {
	var out []anvil.Instr
	thisReg := fb.b.NewReg(fb.coro.class)
	out = append(out, anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: thisReg, Type: fb.coro.class, Span: span,
		LoadLocal: anvil.LoadLocalInstr{Local: fb.localOf[closureThisSlot]}})
	thisVal := anvil.RegValue(thisReg, fb.coro.class)
	for id := anvil.LocalID(1); int(id) < fb.b.NumLocals(); id++ {
		ty := fb.b.LocalType(id)
		dst := fb.b.NewReg(ty)
		out = append(out, anvil.Instr{Kind: anvil.InstrGetField, Dst: dst, Type: ty, Span: span,
			GetField: anvil.GetFieldInstr{Class: fb.coro.class, Recv: thisVal, Slot: int(id)}})
		out = append(out, anvil.Instr{Kind: anvil.InstrStoreLocal, Dst: anvil.NoReg, Span: span,
			StoreLocal: anvil.StoreLocalInstr{Local: id, Value: anvil.RegValue(dst, ty)}})
	}
	return out
}

// lowerYield lowers `yield v` inside a generator body into a suspend
// point: the value is emitted in the current (pre-suspend) activation,
// the block terminates with yield_suspend, and lowering continues into a
// fresh block representing the resumed activation. Outside a generator
// (unreachable per ast.FuncDecl.IsGenerator's detection, kept only as a
// defensive fallback for dead code) it is a no-op return.
func (fb *funcLower) lowerYield(s *ast.Stmt) {
	if fb.coro == nil || fb.coro.isAsync {
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermRet})
		return
	}
	v := fb.lowerExpr(s.Expr)

	fb.coro.nextState++
	state := fb.coro.nextState
	resumeBlk := fb.newBlock(fmt.Sprintf("gen.resume%d", state))
	preBlock := fb.b.Current()
	fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermYieldSuspend, YieldSuspend: anvil.YieldSuspendTerm{Value: v, ResumeState: state, ResumeBlock: resumeBlk}})
	fb.coro.resumes = append(fb.coro.resumes, resumePoint{state: state, preBlock: preBlock, resumeBlock: resumeBlk})

	fb.b.SetCurrent(resumeBlk)
}

// lowerHasNext builds has_next() → state != doneState.
func (l *Lowerer) lowerHasNext(classID types.TypeID) types.FuncRef {
	i1 := l.types.Builtins().I1
	i32 := l.types.Builtins().I32
	b := anvil.NewFunc(l.synthClassNamePrefix(classID)+".has_next", source.Span{}, i1, anvil.FuncFlags(0))
	this := b.AddParam("this", classID, source.Span{})
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	thisReg := b.NewReg(classID)
	b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: thisReg, Type: classID, LoadLocal: anvil.LoadLocalInstr{Local: this}})
	thisVal := anvil.RegValue(thisReg, classID)

	stateReg := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrGetField, Dst: stateReg, Type: i32, GetField: anvil.GetFieldInstr{Class: classID, Recv: thisVal, Slot: 0}})

	doneReg := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrConst, Dst: doneReg, Type: i32, Const: anvil.ConstInstr{Kind: anvil.ConstInt, Value: anvil.Value{Kind: anvil.ValConstInt, Type: i32, IntVal: int64(doneState)}}})

	cmpReg := b.NewReg(i1)
	b.Emit(anvil.Instr{Kind: anvil.InstrBinary, Dst: cmpReg, Type: i1, Binary: anvil.BinaryInstr{Op: anvil.BinNeI32, Lhs: anvil.RegValue(stateReg, i32), Rhs: anvil.RegValue(doneReg, i32)}})

	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: anvil.RegValue(cmpReg, i1)}})

	ref := l.freshFuncRef()
	l.module.AddFuncWithRef(b.Finish(), ref)
	return ref
}

// lowerCoroIterator builds iterator() → this, satisfying the iteration
// protocol's `e.iterator()` call directly on a generator/async value.
func (l *Lowerer) lowerCoroIterator(classID types.TypeID, selfType types.TypeID) types.FuncRef {
	b := anvil.NewFunc(l.synthClassNamePrefix(classID)+".iterator", source.Span{}, selfType, anvil.FuncFlags(0))
	this := b.AddParam("this", classID, source.Span{})
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	reg := b.NewReg(selfType)
	b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: reg, Type: selfType, LoadLocal: anvil.LoadLocalInstr{Local: this}})
	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: anvil.RegValue(reg, selfType)}})

	ref := l.freshFuncRef()
	l.module.AddFuncWithRef(b.Finish(), ref)
	return ref
}

// lowerCoroConstructor replaces fd's own body with allocation code: a
// fresh state-machine instance, state initialized to 0, and every
// original parameter copied into its matching field (field index ==
// LocalID, and lowerCoroMethod declared locals 1..NumSlots in exactly
// the resolver's slot order, so a parameter's slot number is already
// its field index).
func (l *Lowerer) lowerCoroConstructor(fd *ast.FuncDecl, receiverClass string, classID types.TypeID, slots resolve.FuncSlots) {
	b := anvil.NewFunc(funcDisplayName(receiverClass, fd.Name), fd.Span, fd.Result, anvil.FuncFlags(0))
	paramLocals := make([]anvil.LocalID, len(slots.ParamSlots))
	offset := 0
	if receiverClass != "" && len(slots.ParamSlots) > 0 {
		paramLocals[0] = b.AddParam("this", slots.SlotTypes[slots.ParamSlots[0]], fd.Span)
		offset = 1
	}
	for i := offset; i < len(slots.ParamSlots); i++ {
		s := slots.ParamSlots[i]
		name := fmt.Sprintf("p%d", i-offset)
		if i-offset < len(fd.Params) {
			name = fd.Params[i-offset].Name
		}
		paramLocals[i] = b.AddParam(name, slots.SlotTypes[s], fd.Span)
	}

	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	instReg := b.NewReg(fd.Result)
	b.Emit(anvil.Instr{Kind: anvil.InstrNew, Dst: instReg, Type: fd.Result, Span: fd.Span, New: anvil.NewInstr{Class: classID}})
	inst := anvil.RegValue(instReg, fd.Result)

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

	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: inst}})

	class := types.NoTypeID
	if receiverClass != "" {
		class = l.res.ClassByName[receiverClass]
	}
	ref := l.funcRefFor(class, fd.Name, len(fd.Params))
	l.module.AddFuncWithRef(b.Finish(), ref)
}

// firstYieldType walks b looking for the first `yield` statement in
// source order and returns the type of its operand, the generator's
// inferred element type. Generators with no reachable yield (dead code
// only) fall back to Nil in lowerGenerator.
func firstYieldType(b *ast.Block) (types.TypeID, bool) {
	if b == nil {
		return types.NoTypeID, false
	}
	for _, s := range b.Stmts {
		if t, ok := yieldTypeOfStmt(s); ok {
			return t, true
		}
	}
	return types.NoTypeID, false
}

func yieldTypeOfStmt(s *ast.Stmt) (types.TypeID, bool) {
	switch s.Kind {
	case ast.StmtYield:
		if s.Expr != nil {
			return s.Expr.Type, true
		}
		return types.NoTypeID, false
	case ast.StmtIf:
		if t, ok := firstYieldType(s.If.Then); ok {
			return t, true
		}
		return firstYieldType(s.If.Else)
	case ast.StmtWhile:
		return firstYieldType(s.While.Body)
	case ast.StmtFor:
		return firstYieldType(s.For.Body)
	case ast.StmtTry:
		if t, ok := firstYieldType(s.Try.Body); ok {
			return t, true
		}
		for _, c := range s.Try.Catches {
			if t, ok := firstYieldType(c.Body); ok {
				return t, true
			}
		}
		return firstYieldType(s.Try.Finally)
	case ast.StmtUsing:
		return firstYieldType(s.Using.Body)
	case ast.StmtBlock:
		return firstYieldType(s.Block)
	default:
		return types.NoTypeID, false
	}
}
