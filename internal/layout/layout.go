// Package layout computes ABI byte layouts for types, implementing the
// layout rules of spec §4.A: `object` classes are GC-managed (header +
// aligned field slots), `struct` uses C-struct platform alignment,
// `packed` is 1-byte aligned, and `union` places every field at offset 0
// with size equal to the largest field.
package layout

import "ember/internal/types"

// ObjectHeaderSize is the fixed prefix of every `object`-layout
// instance: a pointer to its class descriptor plus GC mark/age bits,
// per spec §4.E ("Object classes get an object header (pointer to the
// class descriptor, GC mark/age bits)").
const ObjectHeaderSize = 16

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct/object-only:
	FieldOffsets []int

	// Union-only, for ABI queries:
	TagSize  int
	TagAlign int
}

// Engine computes and memoizes type layouts for one Target.
type Engine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

// New constructs an Engine for the given target and type universe.
func New(target Target, typesIn *types.Interner) *Engine {
	return &Engine{Target: target, Types: typesIn, cache: newCache()}
}

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

func newLayoutState() *layoutState {
	return &layoutState{index: make(map[types.TypeID]int, 32)}
}

// LayoutOf computes (and caches) the layout of t.
func (e *Engine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err
	}
	return layout, nil
}

func (e *Engine) layoutOf(t types.TypeID, state *layoutState) (TypeLayout, *Error) {
	canon := e.Types.ErasedClass(canonicalType(e.Types, t))
	key := cacheKey{Type: canon, Target: e.Target}
	if entry, ok := e.cache.get(key); ok {
		return entry.Layout, entry.Err
	}

	if idx, ok := state.index[canon]; ok {
		cycle := append([]types.TypeID(nil), state.stack[idx:]...)
		cycle = append(cycle, canon)
		err := &Error{Kind: ErrRecursiveUnsized, Type: canon, Cycle: cycle}
		e.cache.put(key, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[canon] = len(state.stack)
	state.stack = append(state.stack, canon)
	layout, err := e.computeLayout(canon, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, canon)

	e.cache.put(key, &cacheEntry{Layout: layout, Err: err})
	return layout, err
}

// SizeOf returns the size in bytes of t.
func (e *Engine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement in bytes of t.
func (e *Engine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of the given field index within a
// class's layout, materializing the class's layout (and its field
// offsets in the type context) as a side effect if not already done.
func (e *Engine) FieldOffset(classID types.TypeID, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(classID)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

func canonicalType(typesIn *types.Interner, id types.TypeID) types.TypeID {
	return id
}

func (e *Engine) ptrLayout() TypeLayout {
	return TypeLayout{Size: e.Target.PointerSize, Align: e.Target.PointerSize}
}

func scalarLayoutBytes(n int) TypeLayout {
	if n <= 0 {
		n = 1
	}
	return TypeLayout{Size: n, Align: n}
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}
