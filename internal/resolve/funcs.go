package resolve

import "ember/internal/ast"

// resolveFunc assigns local slots across fd's body, resolving every
// identifier reference to a slot (spec §6) and recording the produced
// per-function local-slot map. Native/intrinsic declarations have a nil
// Body and resolve to zero locals beyond their parameters.
func (r *Resolver) resolveFunc(fd *ast.FuncDecl) {
	fr := newFuncResolver(r, nil)

	var paramSlots []ast.SlotID
	if fd.ReceiverClass != "" {
		fr.thisSlot = fr.declare("this", r.classByName[fd.ReceiverClass], false)
		paramSlots = append(paramSlots, fr.thisSlot)
	}
	for _, p := range fd.Params {
		paramSlots = append(paramSlots, fr.declare(p.Name, p.Type, p.Ownership == ast.OwnMut))
	}
	for _, p := range fd.Params {
		if p.HasDefault && p.Default != nil {
			fr.resolveExpr(p.Default)
		}
	}

	fr.resolveBlock(fd.Body)

	r.funcByNode[fd.ID] = FuncSlots{
		NumSlots:   int(fr.next) - 1,
		ParamSlots: paramSlots,
		SlotTypes:  fr.slotTypes,
	}
}
