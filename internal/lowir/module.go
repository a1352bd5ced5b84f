package lowir

import (
	"strconv"

	"ember/internal/runtimeabi"
)

// ConstKind distinguishes the three constant-pool entry families: strings,
// class descriptors, and function pointers.
type ConstKind uint8

const (
	ConstString ConstKind = iota
	ConstClassDescriptor
	ConstFuncPointer
)

// Const is one module-level constant pool entry.
type Const struct {
	Kind ConstKind
	Str  string

	// ClassDescriptor fields.
	ClassName   string
	Size        int32
	Align       int32
	VTable      []FuncID // NoFuncID for a slot with no body (abstract)
	FieldKinds  []runtimeabi.Kind
	FieldOffset []int32

	// FuncPointer field: the closed-over method an anvil.ValConstMethod
	// value names (a bound-method literal passed as a callback/closure).
	Func FuncID
}

// Module is the completed Low IR translation unit.
type Module struct {
	Funcs  []*Func
	Consts []Const

	byConst map[string]ConstID // interns ConstString entries
}

// NewModule constructs an empty Module.
func NewModule() *Module {
	return &Module{byConst: make(map[string]ConstID, 64)}
}

// AddFunc appends f, assigning it the next FuncID.
func (m *Module) AddFunc(f *Func) FuncID {
	id := FuncID(len(m.Funcs))
	f.ID = id
	m.Funcs = append(m.Funcs, f)
	return id
}

// InternString returns the ConstID of s's ConstString entry, reusing an
// existing one if s was already interned.
func (m *Module) InternString(s string) ConstID {
	if id, ok := m.byConst[s]; ok {
		return id
	}
	id := ConstID(len(m.Consts))
	m.Consts = append(m.Consts, Const{Kind: ConstString, Str: s})
	m.byConst[s] = id
	return id
}

// AddClassDescriptor appends a ConstClassDescriptor entry and returns
// its ConstID. Unlike strings, class descriptors are never deduplicated
// by lower_constpool.go's caller across calls with the same class: each
// class is visited exactly once while walking the Type Context.
func (m *Module) AddClassDescriptor(c Const) ConstID {
	c.Kind = ConstClassDescriptor
	id := ConstID(len(m.Consts))
	m.Consts = append(m.Consts, c)
	return id
}

// InternFuncPointer returns the ConstID of a ConstFuncPointer entry
// naming target, reusing an existing one if target was already interned.
// Unlike strings, these are keyed by a synthetic prefix so a FuncID never
// collides with a string's own intern key.
func (m *Module) InternFuncPointer(target FuncID) ConstID {
	key := "\x00func:" + strconv.Itoa(int(target))
	if id, ok := m.byConst[key]; ok {
		return id
	}
	id := ConstID(len(m.Consts))
	m.Consts = append(m.Consts, Const{Kind: ConstFuncPointer, Func: target})
	m.byConst[key] = id
	return id
}

// ConstByID returns the constant-pool entry for id.
func (m *Module) ConstByID(id ConstID) (Const, bool) {
	if id < 0 || int(id) >= len(m.Consts) {
		return Const{}, false
	}
	return m.Consts[id], true
}
