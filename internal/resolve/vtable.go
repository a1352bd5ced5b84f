package resolve

import (
	"slices"

	"ember/internal/ast"
	"ember/internal/source"
	"ember/internal/types"
)

// assignVTables computes each class's stable v-table slot order (spec
// §4.B: "overrides reuse the parent index; new virtual methods append")
// and installs it via types.SetVTable. Classes are visited parent-first
// so a child can clone its parent's already-finalized v-table.
func (r *Resolver) assignVTables(classes []*ast.ClassDecl) {
	done := make(map[types.TypeID]bool, len(classes))

	var visit func(classID types.TypeID)
	visit = func(classID types.TypeID) {
		if classID == types.NoTypeID || done[classID] {
			return
		}
		info, ok := r.types.ClassInfo(classID)
		if !ok {
			return
		}

		var vtable []types.MethodHandle
		if info.Parent != types.NoTypeID {
			visit(info.Parent)
			if parent, ok := r.types.ClassInfo(info.Parent); ok {
				vtable = slices.Clone(parent.VTable)
			}
		}

		for _, m := range r.ownMethods[classID] {
			if m.Dispatch != types.DispatchVirtual && m.Dispatch != types.DispatchInterfaceLike {
				continue
			}
			if slot := vtableSlotOf(vtable, m.Name, m.Arity); slot >= 0 {
				vtable[slot] = m
			} else {
				vtable = append(vtable, m)
			}
		}

		r.types.SetVTable(classID, vtable)
		done[classID] = true
	}

	for _, cd := range classes {
		visit(r.classByName[cd.Name])
	}
}

func vtableSlotOf(vtable []types.MethodHandle, name source.StringID, arity int) int {
	for i, m := range vtable {
		if m.Name == name && m.Arity == arity {
			return i
		}
	}
	return -1
}
