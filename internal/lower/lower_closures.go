package lower

import (
	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/resolve"
	"ember/internal/source"
	"ember/internal/types"
)

// closureThisSlot is the local-slot key used to hold a closure call
// method's receiver. Block-literal slot numbering (assigned by
// internal/resolve's child funcResolver) starts at 1 and never declares
// a slot for "this" itself, so 0 (ast.NoSlot) is free to reuse as this
// one reserved key inside a closure's own localOf map.
const closureThisSlot = ast.NoSlot

// lowerBlockLit materializes a `do |params|: body` closure literal as a
// fresh instance of a synthetic one-field-per-capture class whose single
// virtual method `call` holds the lowered body (spec §4.D closures).
// Captures are copied into the instance's fields at creation time; a
// by-cell capture is approximated as a snapshot of its value at the
// literal site rather than a live shared cell (recorded as a design
// decision, not a faithful aliasing model).
func (fb *funcLower) lowerBlockLit(e *ast.Expr) anvil.Value {
	lit := &e.BlockLit
	info, _ := fb.l.types.BlockInfo(e.Type)

	classID := fb.l.types.RegisterClass(fb.l.strings.Intern(fb.l.synthClassName("Closure")), e.Span, types.LayoutObject)
	fields := make([]types.FieldSlot, len(lit.Captures))
	for i, c := range lit.Captures {
		fields[i] = types.FieldSlot{Name: fb.l.strings.Intern(c.Name), Type: c.Type, Offset: -1}
	}
	fb.l.types.SetFields(classID, fields)

	bodyRef := fb.l.freshFuncRef()
	callName := fb.l.strings.Intern("call")
	method := types.MethodHandle{
		Owner: classID, Name: callName, Params: info.Params, Result: info.Result,
		Dispatch: types.DispatchVirtual, Body: bodyRef, VTableSlot: 0, Arity: len(info.Params),
	}
	fb.l.types.AddMethod(classID, method)
	fb.l.types.SetVTable(classID, []types.MethodHandle{method})

	fb.l.lowerClosureCall(classID, bodyRef, "call", lit, info, e.Span)

	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrNew, Dst: dst, Type: e.Type, Span: e.Span, New: anvil.NewInstr{Class: classID}})
	inst := anvil.RegValue(dst, e.Type)
	for i, c := range lit.Captures {
		v := fb.emitLoadLocal(fb.localFor(c.Slot), c.Type, e.Span)
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrSetField, Dst: anvil.NoReg, Span: e.Span,
			SetField: anvil.SetFieldInstr{Class: classID, Recv: inst, Slot: i, Value: v, NeedsBarrier: isRefType(fb.l.types, c.Type)}})
	}
	return inst
}

// lowerClosureCall lowers a closure literal's body into its own Anvil
// function, the receiver ("this") typed to the synthetic closure class
// and every capture's inner slot pre-populated from a field read at
// entry, the same way a real parameter's local is populated from
// FuncBuilder.AddParam.
func (l *Lowerer) lowerClosureCall(classID types.TypeID, bodyRef types.FuncRef, methodName string, lit *ast.BlockLitExpr, info types.BlockInfo, span source.Span) {
	b := anvil.NewFunc(l.synthClassNamePrefix(classID)+"."+methodName, span, info.Result, anvil.FuncFlags(0))
	fb := &funcLower{
		l:         l,
		b:         b,
		fd:        &ast.FuncDecl{Span: span, Result: info.Result, Body: lit.Body},
		slot:      resolve.FuncSlots{NumSlots: lit.NumSlots, ParamSlots: lit.ParamSlots, SlotTypes: lit.SlotTypes},
		localOf:   make(map[ast.SlotID]anvil.LocalID, lit.NumSlots+len(lit.Captures)+1),
		recvClass: classID,
	}

	fb.localOf[closureThisSlot] = b.AddParam("this", classID, span)
	for i, slot := range lit.ParamSlots {
		name := "p"
		if i < len(lit.Params) {
			name = lit.Params[i].Name
		}
		fb.localOf[slot] = b.AddParam(name, lit.SlotTypes[slot], span)
	}

	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	thisVal := fb.emitLoadLocal(fb.localOf[closureThisSlot], classID, span)
	for i, c := range lit.Captures {
		dst := b.NewReg(c.Type)
		b.Emit(anvil.Instr{Kind: anvil.InstrGetField, Dst: dst, Type: c.Type, Span: span,
			GetField: anvil.GetFieldInstr{Class: classID, Recv: thisVal, Slot: i}})
		capLocal := fb.localFor(c.InnerSlot)
		fb.emitStoreLocal(capLocal, anvil.RegValue(dst, c.Type), span)
	}

	fb.lowerBlock(lit.Body)
	if !fb.b.CurrentTerminated() {
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermRet})
	}

	f := fb.b.Finish()
	l.module.AddFuncWithRef(f, bodyRef)
}

// synthClassNamePrefix renders a synthetic class's interned name back to
// a plain string for display purposes (debug listings, function names).
func (l *Lowerer) synthClassNamePrefix(classID types.TypeID) string {
	info, ok := l.types.ClassInfo(classID)
	if !ok {
		return "$Closure"
	}
	name, ok := l.strings.Lookup(info.Name)
	if !ok {
		return "$Closure"
	}
	return name
}
