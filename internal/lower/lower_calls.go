package lower

import (
	"fmt"

	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/types"
)

// funcKey identifies a callable by owner class (NoTypeID for a free
// function) and name+arity, the same key shape the resolver's method
// table uses.
type funcKey struct {
	class types.TypeID
	name  source.StringID
	arity int
}

// assignFuncRefs pre-assigns a stable FuncRef to every function and
// method before any body is lowered, so a call site can reference a
// callee that has not been lowered yet (spec §3: FuncRef is "an opaque
// reference to a lowered function body").
func (l *Lowerer) assignFuncRefs(prog *ast.Program) {
	for _, cd := range prog.Classes {
		classID := l.res.ClassByName[cd.Name]
		for _, m := range cd.Methods {
			key := funcKey{class: classID, name: l.strings.Intern(m.Name), arity: len(m.Params)}
			ref := l.freshFuncRef()
			l.refByKey[key] = ref
			if handle, ok := l.types.LookupMethod(classID, key.name, key.arity); ok {
				handle.Body = ref
				l.types.AddMethod(classID, handle)
			}
		}
		// to_json/from_json are never declared in source; pre-registering
		// their method-table entries here (rather than when
		// synthesizeSerialization builds their bodies, later in
		// LowerProgram's per-class loop) lets a call site in any class
		// processed earlier resolve them the same way it resolves a
		// source-declared method.
		if cd.Serializable == types.SerializationJSON {
			l.preRegisterJSONMethods(classID)
		}
	}
	for _, fd := range prog.Funcs {
		key := funcKey{class: types.NoTypeID, name: l.strings.Intern(fd.Name), arity: len(fd.Params)}
		l.refByKey[key] = l.freshFuncRef()
	}
}

// preRegisterJSONMethods installs to_json/from_json's method-table
// signatures (spec §4.D Serialization) ahead of body synthesis.
func (l *Lowerer) preRegisterJSONMethods(classID types.TypeID) {
	strTy := l.stringType()

	toJSONKey := funcKey{class: classID, name: l.strings.Intern("to_json"), arity: 0}
	toJSONRef := l.freshFuncRef()
	l.refByKey[toJSONKey] = toJSONRef
	l.types.AddMethod(classID, types.MethodHandle{Owner: classID, Name: toJSONKey.name, Result: strTy, Dispatch: types.DispatchStatic, Body: toJSONRef, Arity: 0})

	fromJSONKey := funcKey{class: classID, name: l.strings.Intern("from_json"), arity: 1}
	fromJSONRef := l.freshFuncRef()
	l.refByKey[fromJSONKey] = fromJSONRef
	l.types.AddMethod(classID, types.MethodHandle{Owner: classID, Name: fromJSONKey.name, Params: []types.TypeID{strTy}, Result: classID, Dispatch: types.DispatchStatic, Body: fromJSONRef, Arity: 1})
}

// stringType returns the canonical class backing the JSON text
// internal/lower itself produces (literal punctuation, per-field keys,
// encoded scalar/string text). Nothing upstream exposes a ready-made
// String TypeID to reuse — a class's own string-typed fields carry
// whatever TypeID the already-typed AST assigned them, which this
// package never needs to unify with for values it only ever produces
// and immediately concatenates or returns itself.
func (l *Lowerer) stringType() types.TypeID {
	if l.strClass == types.NoTypeID {
		l.strClass = l.types.RegisterClass(l.strings.Intern("String"), source.Span{}, types.LayoutObject)
	}
	return l.strClass
}

// freshFuncRef hands out the next FuncRef in program order, continuing
// past whatever assignFuncRefs has already claimed. Closures, generator
// state machines, async state machines, and FFI thunks all synthesize a
// body during lowering itself and need a ref no earlier pass reserved.
func (l *Lowerer) freshFuncRef() types.FuncRef {
	ref := l.nextFuncRef
	l.nextFuncRef++
	return ref
}

func (l *Lowerer) funcRefFor(class types.TypeID, name string, arity int) types.FuncRef {
	key := funcKey{class: class, name: l.strings.Intern(name), arity: arity}
	return l.refByKey[key]
}

// isAmbiguous implements spec §4.B's third fatal condition: more than
// one unrelated class offers an interface-like (name, arity) method with
// an incompatible result type, so a duck-typed call site cannot be
// statically resolved to one signature. Deferred here from
// internal/resolve, which lacks the full cross-class view this check
// needs at the time a single class's method table is built.
func (l *Lowerer) isAmbiguous(nameID source.StringID, arity int, chosen types.MethodHandle) bool {
	results := map[types.TypeID]bool{chosen.Result: true}
	for _, classID := range l.res.ClassByName {
		m, ok := l.types.LookupMethod(classID, nameID, arity)
		if !ok || m.Dispatch != types.DispatchInterfaceLike {
			continue
		}
		results[m.Result] = true
	}
	return len(results) > 1
}

// resolveCallKind disambiguates a call expression's dispatch mode,
// deferred here from internal/resolve because only lowering time has the
// full canonical method-table/class-type context needed to tell static,
// virtual, interface-like, and native calls apart (spec §4.B/§4.D).
func (fb *funcLower) resolveCallKind(call *ast.CallExpr, span source.Span) (types.TypeID, types.MethodHandle, ast.CallKind, bool) {
	nameID := fb.l.strings.Intern(call.Callee)
	arity := len(call.Args)
	if call.Receiver == nil {
		return types.NoTypeID, types.MethodHandle{}, ast.CallStatic, true
	}
	if t, ok := fb.l.types.Lookup(call.Receiver.Type); ok && t.Kind == types.KindBlock {
		// Invoking a Block value directly calls its synthetic closure
		// class's sole "call" method, installed at v-table slot 0 by
		// lowerBlockLit regardless of the call's own textual name.
		return types.NoTypeID, types.MethodHandle{VTableSlot: 0, Dispatch: types.DispatchVirtual}, ast.CallVirtual, true
	}
	erased := fb.l.types.ErasedClass(call.Receiver.Type)
	m, ok := fb.l.types.LookupMethod(erased, nameID, arity)
	if !ok {
		fb.l.fatal(diag.ContractUnresolvedIdent, span, fmt.Sprintf("no method %q/%d on receiver", call.Callee, arity))
		return types.NoTypeID, types.MethodHandle{}, ast.CallStatic, false
	}
	switch m.Dispatch {
	case types.DispatchNative:
		return erased, m, ast.CallNative, true
	case types.DispatchVirtual, types.DispatchGenerator, types.DispatchAsync:
		return erased, m, ast.CallVirtual, true
	case types.DispatchInterfaceLike:
		if fb.l.isAmbiguous(nameID, arity, m) {
			fb.l.fatal(diag.ContractAmbiguousMethod, span, fmt.Sprintf("ambiguous method resolution for %q/%d", call.Callee, arity))
			return types.NoTypeID, types.MethodHandle{}, ast.CallInterfaceLike, false
		}
		return erased, m, ast.CallInterfaceLike, true
	default:
		return erased, m, ast.CallStatic, true
	}
}

func anvilCallKind(k ast.CallKind) anvil.CallKind {
	switch k {
	case ast.CallVirtual:
		return anvil.CallVirtual
	case ast.CallInterfaceLike:
		return anvil.CallInterfaceLike
	case ast.CallNative:
		return anvil.CallNative
	default:
		return anvil.CallStatic
	}
}

// emitInterfaceCall emits a dispatched method call synthesized by the
// lowerer itself rather than sourced from an ast.CallExpr (the iterator
// protocol's `iterator()`/`has_next()`/`next()` calls, a missing
// `to_string` method's runtime fallback, and synthesized dispose()
// calls for `using`). recvType is the receiver's static type; dispatch
// kind is read off the method table the same way a real call resolves.
func (fb *funcLower) emitInterfaceCall(recv anvil.Value, recvType types.TypeID, name string, args []anvil.Value, resultType types.TypeID, span source.Span) anvil.Value {
	nameID := fb.l.strings.Intern(name)
	erased := fb.l.types.ErasedClass(recvType)
	m, ok := fb.l.types.LookupMethod(erased, nameID, len(args))

	ci := anvil.CallInstr{HasReceiver: true, Receiver: recv, Class: erased, Name: nameID, Arity: len(args), Args: args}
	if ok {
		switch m.Dispatch {
		case types.DispatchVirtual, types.DispatchGenerator, types.DispatchAsync:
			ci.Kind = anvil.CallVirtual
			ci.VTableSlot = m.VTableSlot
		case types.DispatchNative:
			ci.Kind = anvil.CallNative
			ci.Method = fb.l.funcRefFor(erased, name, len(args))
		case types.DispatchInterfaceLike:
			ci.Kind = anvil.CallInterfaceLike
		default:
			ci.Kind = anvil.CallStatic
			ci.Method = fb.l.funcRefFor(erased, name, len(args))
		}
	} else {
		ci.Kind = anvil.CallInterfaceLike
	}

	dst := fb.b.NewReg(resultType)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrCall, Dst: dst, Type: resultType, Span: span, Call: ci})
	return anvil.RegValue(dst, resultType)
}

func (fb *funcLower) lowerCall(e *ast.Expr) anvil.Value {
	call := &e.Call
	class, m, kind, ok := fb.resolveCallKind(call, e.Span)
	call.Kind = kind

	var recv anvil.Value
	hasRecv := call.Receiver != nil
	if hasRecv {
		recv = fb.lowerExpr(call.Receiver)
	}
	args := make([]anvil.Value, 0, len(call.Args))
	for _, a := range call.Args {
		args = append(args, fb.lowerExpr(a))
	}
	if !ok {
		return anvil.Value{Kind: anvil.ValConstNil, Type: e.Type}
	}

	ci := anvil.CallInstr{
		Kind: anvilCallKind(kind), HasReceiver: hasRecv, Receiver: recv,
		Class: class, Name: fb.l.strings.Intern(call.Callee), Arity: len(call.Args), Args: args,
	}
	switch kind {
	case ast.CallStatic:
		ci.Method = fb.l.funcRefFor(class, call.Callee, len(call.Args))
	case ast.CallNative:
		ci.Method = fb.l.funcRefFor(class, call.Callee, len(call.Args))
	case ast.CallVirtual:
		ci.VTableSlot = m.VTableSlot
	}

	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrCall, Dst: dst, Type: e.Type, Span: e.Span, Call: ci})
	return anvil.RegValue(dst, e.Type)
}
