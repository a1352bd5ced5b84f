package lower

import (
	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/diag"
)

// lowerFFIClass validates a NativeLibrary class declaration before any of
// its @native method thunks are built: resolve/classes.go already records
// the class's FFIBinding (library paths) on the type, but has no way to
// fatal a class declaring NativeLibrary with no paths to search, since
// that check only makes sense once lowering is about to build thunks for
// methods that would otherwise load nothing.
func (l *Lowerer) lowerFFIClass(cd *ast.ClassDecl) {
	if len(cd.LibraryPaths) == 0 {
		l.fatal(diag.InternalBadFFI, cd.Span, "native library class declares no library paths")
	}
}

// lowerNativeThunk materializes the Anvil body for an `@native` method
// declared on a NativeLibrary class (spec §4.D FFI). The method's own
// source has no Body to lower (resolve's comment on resolveFunc: native
// declarations resolve to zero locals beyond their parameters), so the
// thunk's instructions are limited to what Anvil's fixed runtime ABI
// entry points can express: loading the owning class's native library
// and resolving this method's symbol. Anvil deliberately has no "call
// through a resolved native pointer" opcode — marshaling arguments
// across a platform calling convention is backend territory, which has this function's parameter/result types and the
// owning class's FFIBinding on hand to build the real trampoline; this
// thunk's trailing return is a placeholder the backend replaces rather
// than a value any caller is meant to observe.
func (l *Lowerer) lowerNativeThunk(fd *ast.FuncDecl, receiverClass string) {
	classID := l.res.ClassByName[receiverClass]
	b := anvil.NewFunc(funcDisplayName(receiverClass, fd.Name), fd.Span, fd.Result, anvil.FuncFlagNative)
	b.AddParam("this", classID, fd.Span)
	for _, p := range fd.Params {
		b.AddParam(p.Name, p.Type, fd.Span)
	}

	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	ptrTy := l.types.Builtins().IntPtr
	libReg := b.NewReg(ptrTy)
	b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: libReg, Type: ptrTy, Span: fd.Span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeFFILoadLibrary}})

	// The symbol name is carried as a const_string keyed to IntPtr rather
	// than the Ember-level String class: this value never reaches user
	// code, it is read back by the backend as a raw C-string symbol name,
	// not boxed the way a string literal operand would be.
	nameConst := anvil.Value{Kind: anvil.ValConstString, Type: ptrTy, StringVal: l.strings.Intern(fd.Name)}
	symReg := b.NewReg(ptrTy)
	b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: symReg, Type: ptrTy, Span: fd.Span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeFFIResolve, Args: []anvil.Value{anvil.RegValue(libReg, ptrTy), nameConst}}})

	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: anvil.Value{Kind: anvil.ValConstNil, Type: fd.Result}}})

	ref := l.funcRefFor(classID, fd.Name, len(fd.Params))
	l.module.AddFuncWithRef(b.Finish(), ref)
}
