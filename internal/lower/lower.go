// Package lower implements the AST→Anvil Lowerer (spec component D):
// it consumes a typed AST plus the Symbol Resolver's output and
// produces Anvil functions, threading the current block through
// statement lowering the way the teacher's hir/mir lowerers thread a
// current-block cursor.
package lower

import (
	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/erasure"
	"ember/internal/resolve"
	"ember/internal/source"
	"ember/internal/types"
)

// Lowerer drives AST→Anvil lowering for an entire program.
type Lowerer struct {
	types   *types.Interner
	strings *source.Interner
	res     *resolve.Result
	report  diag.Reporter
	erased  *erasure.Recorder
	module  *anvil.Module

	refByKey     map[funcKey]types.FuncRef
	tupleClasses map[types.TypeID]types.TypeID
	synthSeq     int
	nextFuncRef  types.FuncRef
	strClass     types.TypeID

	ok bool
}

// New constructs a Lowerer over the Symbol Resolver's output.
func New(res *resolve.Result, report diag.Reporter) *Lowerer {
	if report == nil {
		report = diag.NopReporter{}
	}
	return &Lowerer{
		types:        res.Types,
		strings:      res.Strings,
		res:          res,
		report:       report,
		erased:       erasure.NewRecorder(),
		refByKey:     make(map[funcKey]types.FuncRef, 32),
		tupleClasses: make(map[types.TypeID]types.TypeID, 4),
		nextFuncRef:  1,
		ok:           true,
	}
}

// LowerProgram lowers every function and method of prog into a fresh
// Anvil Module. Generators, async functions, closures, FFI thunks, and
// serialization methods are all synthesized as part of this pass (spec
// §4.D); the returned Module has not yet been verified — callers should
// run anvil.Verify before handing it to internal/lowir.
func (l *Lowerer) LowerProgram(prog *ast.Program) (*anvil.Module, *erasure.Recorder, bool) {
	l.module = anvil.New(l.types)
	if prog == nil {
		return l.module, l.erased, l.ok
	}
	l.assignFuncRefs(prog)

	for _, cd := range prog.Classes {
		if cd.NativeLibrary {
			l.lowerFFIClass(cd)
		}
		for _, m := range cd.Methods {
			l.lowerFunc(m, cd.Name)
		}
		if cd.Serializable == types.SerializationJSON {
			l.synthesizeSerialization(cd)
		}
	}
	for _, fd := range prog.Funcs {
		l.lowerFunc(fd, "")
	}

	return l.module, l.erased, l.ok
}

func (l *Lowerer) fatal(code diag.Code, sp source.Span, msg string) {
	diag.Error(l.report, code, sp, msg).Emit()
	l.ok = false
}

// lowerFunc dispatches to the appropriate body-shape lowering strategy
// based on the function's computed classification (spec §4.D
// Generators/Async triggers).
func (l *Lowerer) lowerFunc(fd *ast.FuncDecl, receiverClass string) {
	switch {
	case fd.IsGenerator():
		l.lowerGenerator(fd, receiverClass)
	case fd.IsAsync():
		l.lowerAsync(fd, receiverClass)
	case fd.IsNative():
		l.lowerNativeThunk(fd, receiverClass)
	default:
		l.lowerPlainFunc(fd, receiverClass)
	}
}

func (l *Lowerer) lowerPlainFunc(fd *ast.FuncDecl, receiverClass string) *anvil.Func {
	slots := l.res.FuncByNode[fd.ID]
	fb := newFuncLower(l, fd, receiverClass, slots)
	fb.lowerBody()
	f := fb.b.Finish()
	class := types.NoTypeID
	if receiverClass != "" {
		class = l.res.ClassByName[receiverClass]
	}
	ref := l.funcRefFor(class, fd.Name, len(fd.Params))
	l.module.AddFuncWithRef(f, ref)
	return f
}
