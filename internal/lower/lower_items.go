package lower

import (
	"fmt"

	"ember/internal/source"
	"ember/internal/types"
)

// tupleClassFor returns the backing object-layout class for a structural
// Tuple type, synthesizing and caching one on first request. Tuples have
// no ClassDescriptor of their own at the type-context level (spec §3:
// Tuple is structural), but (C)/(E) need a concrete, addressable layout
// to allocate and GC-scan, so lowering gives every distinct tuple shape
// one synthetic class the way it gives closures and generators one.
func (l *Lowerer) tupleClassFor(tupleType types.TypeID) types.TypeID {
	if id, ok := l.tupleClasses[tupleType]; ok {
		return id
	}
	elems, _ := l.types.TupleInfo(tupleType)
	l.synthSeq++
	name := fmt.Sprintf("$Tuple%d", l.synthSeq)
	classID := l.types.RegisterClass(l.strings.Intern(name), source.Span{}, types.LayoutObject)
	fields := make([]types.FieldSlot, len(elems))
	for i, t := range elems {
		fields[i] = types.FieldSlot{Name: l.strings.Intern(fmt.Sprintf("item%d", i)), Type: t, Offset: -1}
	}
	l.types.SetFields(classID, fields)
	l.types.SetVTable(classID, nil)
	l.tupleClasses[tupleType] = classID
	return classID
}

// synthClassName allocates a fresh, collision-free synthetic class name
// for closures, generator/async state machines, and FFI thunk holders.
func (l *Lowerer) synthClassName(prefix string) string {
	l.synthSeq++
	return fmt.Sprintf("$%s%d", prefix, l.synthSeq)
}
