// Package lowir implements the Anvil → Low IR Lowerer (spec component
// E): a mechanical, opcode-directed pass that turns a verified Anvil
// Module into a conventional SSA-ish IR in machine-level types, with
// class byte layouts materialized, dispatch resolved down to direct or
// indirect calls, allocation and exception handling expressed as
// runtime-ABI calls, and suspension points turned into a resume
// dispatch table. Its failure semantics (spec §4.E) are narrower than
// every earlier component's: an Anvil construct that failed
// verification never reaches here, so every fatal this package raises
// is an unsupported-construct or internal-invariant diagnostic, never
// an input-contract one.
package lowir

import (
	"ember/internal/anvil"
	"ember/internal/diag"
	"ember/internal/erasure"
	"ember/internal/layout"
	"ember/internal/source"
	"ember/internal/types"
)

// Lowerer drives Anvil→LowIR lowering for one Module.
type Lowerer struct {
	anvilMod *anvil.Module
	types    *types.Interner
	strings  *source.Interner
	layout   *layout.Engine
	erased   *erasure.Recorder
	report   diag.Reporter

	mod *Module

	funcIDByAnvil map[anvil.FuncID]FuncID
	classConst    map[types.TypeID]ConstID
	nextCacheSlot int32

	ok bool
}

// New constructs a Lowerer targeting target's pointer width, over the
// Anvil Module anvilMod produced by internal/lower, the program's string
// interner, and the erasure site ledger internal/lower recorded
// alongside the Module.
func New(anvilMod *anvil.Module, strings *source.Interner, target layout.Target, erased *erasure.Recorder, report diag.Reporter) *Lowerer {
	if report == nil {
		report = diag.NopReporter{}
	}
	if erased == nil {
		erased = erasure.NewRecorder()
	}
	return &Lowerer{
		anvilMod:      anvilMod,
		types:         anvilMod.Types,
		strings:       strings,
		layout:        layout.New(target, anvilMod.Types),
		erased:        erased,
		report:        report,
		funcIDByAnvil: make(map[anvil.FuncID]FuncID, len(anvilMod.Funcs)),
		classConst:    make(map[types.TypeID]ConstID, 16),
		ok:            true,
	}
}

// Lower runs every (E) phase over the Module and returns the completed
// Low IR, or ok=false if a fatal diagnostic was raised.
func (l *Lowerer) Lower() (*Module, bool) {
	l.mod = NewModule()
	l.materializeLayouts()

	for id := anvil.FuncID(0); int(id) < len(l.anvilMod.Funcs); id++ {
		af, ok := l.anvilMod.Funcs[id]
		if !ok || af == nil {
			continue
		}
		l.funcIDByAnvil[id] = FuncID(len(l.mod.Funcs))
		l.mod.AddFunc(&Func{Name: af.Name})
	}

	l.buildConstPool()

	for id := anvil.FuncID(0); int(id) < len(l.anvilMod.Funcs); id++ {
		af, ok := l.anvilMod.Funcs[id]
		if !ok || af == nil {
			continue
		}
		f := l.lowerFunc(af)
		*l.mod.Funcs[l.funcIDByAnvil[id]] = *f
	}

	return l.mod, l.ok
}

func (l *Lowerer) fatal(code diag.Code, sp source.Span, msg string) {
	diag.Error(l.report, code, sp, msg).Emit()
	l.ok = false
}

func (l *Lowerer) funcIDFor(ref types.FuncRef) (FuncID, bool) {
	af, ok := l.anvilMod.FuncByRef(ref)
	if !ok {
		return NoFuncID, false
	}
	id, ok := l.funcIDByAnvil[af.ID]
	return id, ok
}
