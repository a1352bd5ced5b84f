package layout

import (
	"fmt"

	"fortio.org/safecast"

	"ember/internal/types"
)

func (e *Engine) computeLayout(id types.TypeID, state *layoutState) (TypeLayout, *Error) {
	t, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, &Error{Kind: ErrUnknownType, Type: id}
	}

	switch t.Kind {
	case types.KindNil:
		return TypeLayout{Size: 0, Align: 1}, nil
	case types.KindI1, types.KindI8:
		return scalarLayoutBytes(1), nil
	case types.KindI32, types.KindF32:
		return scalarLayoutBytes(4), nil
	case types.KindI64, types.KindF64:
		return scalarLayoutBytes(8), nil
	case types.KindIntPtr:
		return e.ptrLayout(), nil
	case types.KindFunction, types.KindChannel, types.KindFuture, types.KindBlock:
		return e.ptrLayout(), nil // handles into GC/runtime-managed objects
	case types.KindArray:
		if t.Count == types.ArrayDynamicLength {
			return e.ptrLayout(), nil // slice handle; backing store is heap-allocated
		}
		return e.fixedArrayLayout(t.Elem, t.Count, state)
	case types.KindHash:
		return e.ptrLayout(), nil // Hash<K,V> is always a heap handle
	case types.KindRange:
		// {start, end, step}: three pointer-sized integers, struct layout.
		w := e.Target.PointerSize
		return TypeLayout{Size: 3 * w, Align: w, FieldOffsets: []int{0, w, 2 * w}}, nil
	case types.KindTuple:
		return e.tupleLayout(id, state)
	case types.KindClass, types.KindGenericInstance:
		return e.classLayout(id, state)
	default:
		return TypeLayout{Size: 0, Align: 1}, &Error{Kind: ErrUnknownType, Type: id}
	}
}

func (e *Engine) fixedArrayLayout(elem types.TypeID, count uint32, state *layoutState) (TypeLayout, *Error) {
	el, err := e.layoutOf(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	stride := alignUp(el.Size, el.Align)
	n, convErr := safecast.Conv[int](count)
	if convErr != nil {
		panic(fmt.Errorf("layout: fixed array length overflow: %w", convErr))
	}
	size := stride * n
	align := el.Align
	if align < 1 {
		align = 1
	}
	return TypeLayout{Size: size, Align: align}, nil
}

func (e *Engine) tupleLayout(id types.TypeID, state *layoutState) (TypeLayout, *Error) {
	elems, ok := e.Types.TupleInfo(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	offsets := make([]int, len(elems))
	offset, maxAlign := 0, 1
	for i, elemT := range elems {
		el, err := e.layoutOf(elemT, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		offset = alignUp(offset, el.Align)
		offsets[i] = offset
		offset += el.Size
		if el.Align > maxAlign {
			maxAlign = el.Align
		}
	}
	return TypeLayout{Size: alignUp(offset, maxAlign), Align: maxAlign, FieldOffsets: offsets}, nil
}

// classLayout applies the layout rule selected by the class's LayoutKind
// (spec §4.A). Object classes get a GC header prefix; struct/packed
// layouts have none; union places every field at offset 0.
func (e *Engine) classLayout(id types.TypeID, state *layoutState) (TypeLayout, *Error) {
	erased := e.Types.ErasedClass(id)
	info, ok := e.Types.ClassInfo(erased)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, &Error{Kind: ErrUnknownType, Type: id}
	}

	fieldTypes := make([]types.TypeID, len(info.Fields))
	for i, f := range info.Fields {
		fieldTypes[i] = f.Type
	}

	var layout TypeLayout
	var err *Error
	switch info.Layout {
	case types.LayoutPacked:
		layout, err = e.packedFields(fieldTypes, state)
	case types.LayoutUnion:
		layout, err = e.unionFields(fieldTypes, state)
	case types.LayoutStruct:
		layout, err = e.structFields(fieldTypes, 0, state)
	default: // LayoutObject
		layout, err = e.structFields(fieldTypes, ObjectHeaderSize, state)
		if err == nil {
			layout.Size = alignUp(layout.Size, e.Target.PointerSize)
			if layout.Align < e.Target.PointerSize {
				layout.Align = e.Target.PointerSize
			}
		}
	}
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	e.Types.SetFieldOffsets(erased, layout.FieldOffsets)
	return layout, nil
}

func (e *Engine) structFields(fieldTypes []types.TypeID, headerSize int, state *layoutState) (TypeLayout, *Error) {
	offsets := make([]int, len(fieldTypes))
	offset, maxAlign := headerSize, 1
	for i, ft := range fieldTypes {
		fl, err := e.layoutOf(ft, state)
		if err != nil {
			return TypeLayout{}, err
		}
		offset = alignUp(offset, fl.Align)
		offsets[i] = offset
		offset += fl.Size
		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}
	}
	return TypeLayout{Size: alignUp(offset, maxAlign), Align: maxAlign, FieldOffsets: offsets}, nil
}

func (e *Engine) packedFields(fieldTypes []types.TypeID, state *layoutState) (TypeLayout, *Error) {
	offsets := make([]int, len(fieldTypes))
	offset := 0
	for i, ft := range fieldTypes {
		fl, err := e.layoutOf(ft, state)
		if err != nil {
			return TypeLayout{}, err
		}
		offsets[i] = offset
		offset += fl.Size
	}
	return TypeLayout{Size: offset, Align: 1, FieldOffsets: offsets}, nil
}

func (e *Engine) unionFields(fieldTypes []types.TypeID, state *layoutState) (TypeLayout, *Error) {
	offsets := make([]int, len(fieldTypes))
	maxSize, maxAlign := 0, 1
	for i, ft := range fieldTypes {
		fl, err := e.layoutOf(ft, state)
		if err != nil {
			return TypeLayout{}, err
		}
		offsets[i] = 0
		if fl.Size > maxSize {
			maxSize = fl.Size
		}
		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}
	}
	return TypeLayout{Size: alignUp(maxSize, maxAlign), Align: maxAlign, FieldOffsets: offsets}, nil
}
