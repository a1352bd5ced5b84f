package lowir

import (
	"ember/internal/runtimeabi"
	"ember/internal/source"
	"ember/internal/types"
)

// buildConstPool materializes a ConstClassDescriptor entry for every
// class in the Type Context (spec §4.E: "a module-level constant pool
// for strings and class descriptors"). String entries are interned
// lazily as function bodies reference them, via Module.InternString;
// class descriptors are built eagerly here because dispatch lowering
// (gc_alloc's size argument, v-table loads, is_instance checks, catch
// chains) needs every class's ConstID resolvable before any function
// body is translated.
func (l *Lowerer) buildConstPool() {
	for _, classID := range l.collectClassIDs() {
		l.classConst[classID] = l.buildClassDescriptor(classID)
	}
}

func (l *Lowerer) buildClassDescriptor(classID types.TypeID) ConstID {
	info, ok := l.types.ClassInfo(classID)
	if !ok {
		return l.mod.AddClassDescriptor(Const{})
	}

	lay, _ := l.layout.LayoutOf(classID)

	vtable := make([]FuncID, len(info.VTable))
	for i, m := range info.VTable {
		if m.Body == types.NoFuncRef {
			vtable[i] = NoFuncID
			continue
		}
		id, found := l.funcIDFor(m.Body)
		if !found {
			id = NoFuncID
		}
		vtable[i] = id
	}

	fieldKinds := make([]runtimeabi.Kind, len(info.Fields))
	for i, f := range info.Fields {
		fieldKinds[i] = machKind(l.types, f.Type)
	}

	return l.mod.AddClassDescriptor(Const{
		ClassName:   l.str(info.Name),
		Size:        int32(lay.Size),
		Align:       int32(lay.Align),
		VTable:      vtable,
		FieldKinds:  fieldKinds,
		FieldOffset: toInt32Slice(lay.FieldOffsets),
	})
}

func toInt32Slice(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

// str resolves a source.StringID to its text via the program's string
// interner, returning "" for an invalid handle.
func (l *Lowerer) str(id source.StringID) string {
	s, _ := l.strings.Lookup(id)
	return s
}

// classDescriptor returns the ConstID of classID's descriptor, building
// one on demand for a class the eager buildConstPool pass missed.
func (l *Lowerer) classDescriptor(classID types.TypeID) ConstID {
	erased := l.types.ErasedClass(classID)
	if id, ok := l.classConst[erased]; ok {
		return id
	}
	id := l.buildClassDescriptor(erased)
	l.classConst[erased] = id
	return id
}
