package resolve

import (
	"ember/internal/ast"
	"ember/internal/types"
)

type varInfo struct {
	slot  ast.SlotID
	typ   types.TypeID
	isMut bool
}

// funcResolver assigns local slots and resolves identifiers within a
// single function or block-literal body. A block literal gets its own
// funcResolver chained via parent, so free-variable lookups walk outward
// through enclosing scopes and build up the closure's Captures list as
// they go (spec §4.B closure-capture analysis: by-copy for immutable
// primitives, by-cell for mutables and reference types).
type funcResolver struct {
	r      *Resolver
	parent *funcResolver

	scopes    []map[string]varInfo
	slotTypes map[ast.SlotID]types.TypeID
	next      uint32
	thisSlot  ast.SlotID

	captures   []ast.Capture
	captureIdx map[string]int
}

func newFuncResolver(r *Resolver, parent *funcResolver) *funcResolver {
	return &funcResolver{
		r:          r,
		parent:     parent,
		scopes:     []map[string]varInfo{make(map[string]varInfo, 8)},
		slotTypes:  make(map[ast.SlotID]types.TypeID, 8),
		next:       1,
		thisSlot:   ast.NoSlot,
		captureIdx: make(map[string]int, 4),
	}
}

func (fr *funcResolver) pushScope() { fr.scopes = append(fr.scopes, make(map[string]varInfo, 4)) }
func (fr *funcResolver) popScope()  { fr.scopes = fr.scopes[:len(fr.scopes)-1] }

func (fr *funcResolver) declare(name string, typ types.TypeID, isMut bool) ast.SlotID {
	slot := ast.SlotID(fr.next)
	fr.next++
	fr.slotTypes[slot] = typ
	fr.scopes[len(fr.scopes)-1][name] = varInfo{slot: slot, typ: typ, isMut: isMut}
	return slot
}

// lookupLocal finds name in this funcResolver's own scope chain only,
// never delegating to an enclosing closure.
func (fr *funcResolver) lookupLocal(name string) (varInfo, bool) {
	for i := len(fr.scopes) - 1; i >= 0; i-- {
		if v, ok := fr.scopes[i][name]; ok {
			return v, true
		}
	}
	return varInfo{}, false
}

// lookup resolves name, capturing it from an enclosing funcResolver (and
// classifying the capture) the first time a nested block literal refers
// to a variable it does not itself declare.
func (fr *funcResolver) lookup(name string) (ast.SlotID, types.TypeID, bool) {
	if v, ok := fr.lookupLocal(name); ok {
		return v.slot, v.typ, true
	}
	if fr.parent == nil {
		return ast.NoSlot, types.NoTypeID, false
	}
	if idx, seen := fr.captureIdx[name]; seen {
		c := fr.captures[idx]
		return c.Slot, c.Type, true
	}
	outerSlot, outerType, ok := fr.parent.lookup(name)
	if !ok {
		return ast.NoSlot, types.NoTypeID, false
	}
	mode := ast.CaptureByCopy
	if outerVar, ok := fr.parent.lookupLocal(name); ok && outerVar.isMut {
		mode = ast.CaptureByCell
	}
	// The slot inside the closure body that refers to the captured value
	// is distinct from outerSlot, the slot it was bound to in the
	// enclosing scope.
	innerSlot := fr.declare(name, outerType, mode == ast.CaptureByCell)
	fr.captureIdx[name] = len(fr.captures)
	fr.captures = append(fr.captures, ast.Capture{Name: name, Slot: outerSlot, InnerSlot: innerSlot, Type: outerType, Mode: mode})
	return innerSlot, outerType, true
}
