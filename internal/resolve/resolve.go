// Package resolve implements the Symbol Resolver (spec component B): it
// walks a typed AST top-down, builds each class's ClassDescriptor (field
// layout pre-offsets, method table, v-table slot order), and computes a
// closure-capture analysis for every block literal. It reports four fatal
// error conditions: an unknown parent class, a duplicate field name, an
// incompatible override signature, and an unresolved identifier. Ambiguous
// method resolution is not checked here; internal/lower reports it when it
// lowers the call.
package resolve

import (
	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/types"
)

// FuncSlots is the per-function local-slot map produced by the resolver
// (spec §4.B: "Produces: per-function a local-slot map").
type FuncSlots struct {
	NumSlots    int
	ParamSlots  []ast.SlotID
	SlotTypes   map[ast.SlotID]types.TypeID
}

// Result is everything the resolver hands to internal/lower.
type Result struct {
	Types       *types.Interner
	Strings     *source.Interner
	ClassByName map[string]types.TypeID
	FuncByNode  map[ast.NodeID]FuncSlots
}

// Resolver drives the resolution pass.
type Resolver struct {
	types   *types.Interner
	strings *source.Interner
	report  diag.Reporter

	classByName map[string]types.TypeID
	funcByNode  map[ast.NodeID]FuncSlots
	ownMethods  map[types.TypeID][]types.MethodHandle

	ok bool
}

// New constructs a Resolver over a (possibly freshly created) type
// context and string pool.
func New(typesIn *types.Interner, strs *source.Interner, report diag.Reporter) *Resolver {
	if report == nil {
		report = diag.NopReporter{}
	}
	return &Resolver{
		types:       typesIn,
		strings:     strs,
		report:      report,
		classByName: make(map[string]types.TypeID, 16),
		funcByNode:  make(map[ast.NodeID]FuncSlots, 32),
		ownMethods:  make(map[types.TypeID][]types.MethodHandle, 16),
		ok:          true,
	}
}

// ResolveProgram runs the full resolution pass over prog. It returns
// ok=false if any fatal condition (spec §4.B) was reported.
func (r *Resolver) ResolveProgram(prog *ast.Program) (*Result, bool) {
	if prog == nil {
		return &Result{Types: r.types, Strings: r.strings, ClassByName: r.classByName, FuncByNode: r.funcByNode}, true
	}
	r.registerClasses(prog.Classes)
	r.linkParents(prog.Classes)
	r.resolveFields(prog.Classes)
	r.resolveMethodTables(prog.Classes)
	r.assignVTables(prog.Classes)

	for _, fd := range prog.Funcs {
		r.resolveFunc(fd)
	}
	for _, cd := range prog.Classes {
		for _, m := range cd.Methods {
			r.resolveFunc(m)
		}
	}

	return &Result{
		Types:       r.types,
		Strings:     r.strings,
		ClassByName: r.classByName,
		FuncByNode:  r.funcByNode,
	}, r.ok
}

func (r *Resolver) fatal(code diag.Code, sp source.Span, msg string) {
	diag.Error(r.report, code, sp, msg).Emit()
	r.ok = false
}
