package anvil

import "ember/internal/types"

// Module is the in-memory container for one compilation unit's Anvil
// functions and the type/string context they reference (spec §4.C:
// "Stores functions, classes, and constants"; class/string storage
// itself lives in the shared Type Context and string Interner, which a
// Module simply points at).
type Module struct {
	Types  *types.Interner
	Funcs  map[FuncID]*Func
	ByName map[string]FuncID
	ByRef  map[types.FuncRef]FuncID
	nextID FuncID
}

// New constructs an empty Module over an already-populated Type
// Context (produced by internal/resolve).
func New(typesIn *types.Interner) *Module {
	return &Module{
		Types:  typesIn,
		Funcs:  make(map[FuncID]*Func, 32),
		ByName: make(map[string]FuncID, 32),
		ByRef:  make(map[types.FuncRef]FuncID, 32),
		nextID: 0,
	}
}

// AddFunc inserts a completed function and returns its assigned ID.
func (m *Module) AddFunc(f *Func) FuncID {
	id := m.nextID
	m.nextID++
	f.ID = id
	m.Funcs[id] = f
	m.ByName[f.Name] = id
	return id
}

// AddFuncWithRef inserts f and additionally records the FuncRef
// internal/lower pre-assigned it, so a CallInstr.Method (opaque at the
// Anvil level) can be resolved back to a concrete Func by internal/lowir.
func (m *Module) AddFuncWithRef(f *Func, ref types.FuncRef) FuncID {
	id := m.AddFunc(f)
	m.ByRef[ref] = id
	return id
}

// FuncByName looks up a previously added function.
func (m *Module) FuncByName(name string) (*Func, bool) {
	id, ok := m.ByName[name]
	if !ok {
		return nil, false
	}
	f, ok := m.Funcs[id]
	return f, ok
}

// FuncByRef looks up a previously added function by its FuncRef.
func (m *Module) FuncByRef(ref types.FuncRef) (*Func, bool) {
	id, ok := m.ByRef[ref]
	if !ok {
		return nil, false
	}
	f, ok := m.Funcs[id]
	return f, ok
}
