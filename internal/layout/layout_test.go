package layout_test

import (
	"reflect"
	"testing"

	"ember/internal/layout"
	"ember/internal/source"
	"ember/internal/types"
)

func TestLayoutOf_ObjectClassGetsHeaderPrefix(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	point := ti.RegisterClass(strs.Intern("Point"), source.Span{}, types.LayoutObject)
	ti.SetFields(point, []types.FieldSlot{
		{Name: strs.Intern("x"), Type: ti.Builtins().F64, Offset: -1},
		{Name: strs.Intern("y"), Type: ti.Builtins().F64, Offset: -1},
	})

	eng := layout.New(layout.Host64, ti)
	l, err := eng.LayoutOf(point)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	if l.FieldOffsets[0] != layout.ObjectHeaderSize {
		t.Fatalf("expected first field right after the object header, got offset %d (header=%d)",
			l.FieldOffsets[0], layout.ObjectHeaderSize)
	}
	if l.FieldOffsets[1] != layout.ObjectHeaderSize+8 {
		t.Fatalf("expected second f64 field 8 bytes after the first, got %d", l.FieldOffsets[1])
	}
}

func TestLayoutOf_StructHasNoHeader(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	point := ti.RegisterClass(strs.Intern("RawPoint"), source.Span{}, types.LayoutStruct)
	ti.SetFields(point, []types.FieldSlot{
		{Name: strs.Intern("x"), Type: ti.Builtins().F64, Offset: -1},
	})

	eng := layout.New(layout.Host64, ti)
	l, err := eng.LayoutOf(point)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	if l.FieldOffsets[0] != 0 {
		t.Fatalf("expected a struct layout's first field at offset 0, got %d", l.FieldOffsets[0])
	}
}

func TestLayoutOf_UnionPlacesEveryFieldAtZero(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	u := ti.RegisterClass(strs.Intern("Variant"), source.Span{}, types.LayoutUnion)
	ti.SetFields(u, []types.FieldSlot{
		{Name: strs.Intern("asI8"), Type: ti.Builtins().I8, Offset: -1},
		{Name: strs.Intern("asI64"), Type: ti.Builtins().I64, Offset: -1},
	})

	eng := layout.New(layout.Host64, ti)
	l, err := eng.LayoutOf(u)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	for i, off := range l.FieldOffsets {
		if off != 0 {
			t.Fatalf("expected union field %d at offset 0, got %d", i, off)
		}
	}
	if l.Size != 8 {
		t.Fatalf("expected union size = max field size (8 for i64), got %d", l.Size)
	}
}

func TestLayoutOf_PackedIsByteAligned(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	p := ti.RegisterClass(strs.Intern("Packed"), source.Span{}, types.LayoutPacked)
	ti.SetFields(p, []types.FieldSlot{
		{Name: strs.Intern("a"), Type: ti.Builtins().I8, Offset: -1},
		{Name: strs.Intern("b"), Type: ti.Builtins().I64, Offset: -1},
	})

	eng := layout.New(layout.Host64, ti)
	l, err := eng.LayoutOf(p)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	if l.Align != 1 {
		t.Fatalf("expected a packed layout to have 1-byte alignment, got %d", l.Align)
	}
	if l.FieldOffsets[1] != 1 {
		t.Fatalf("expected the i64 field packed immediately after the i8 at offset 1, got %d", l.FieldOffsets[1])
	}
	if l.Size != 9 {
		t.Fatalf("expected packed size = sum of field sizes (9), got %d", l.Size)
	}
}

// TestLayoutOf_GenericInstancesAreByteIdentical is Testable Property 4:
// different instantiations of the same generic class must produce
// byte-identical layouts, since Ember performs no monomorphization
// (spec §4.D: "Invariant: no monomorphization occurs").
func TestLayoutOf_GenericInstancesAreByteIdentical(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	box := ti.RegisterClass(strs.Intern("Box"), source.Span{}, types.LayoutObject)
	ti.SetGenericParams(box, []source.StringID{strs.Intern("T")})
	ti.SetFields(box, []types.FieldSlot{
		{Name: strs.Intern("value"), Type: ti.Builtins().IntPtr, Offset: -1},
	})

	boxOfI32 := ti.RegisterGenericInstance(box, []types.TypeID{ti.Builtins().I32})
	boxOfClass := ti.RegisterGenericInstance(box, []types.TypeID{
		ti.RegisterClass(strs.Intern("Widget"), source.Span{}, types.LayoutObject),
	})

	eng := layout.New(layout.Host64, ti)
	layoutI32, err := eng.LayoutOf(boxOfI32)
	if err != nil {
		t.Fatalf("LayoutOf(Box<i32>): %v", err)
	}
	layoutClass, err := eng.LayoutOf(boxOfClass)
	if err != nil {
		t.Fatalf("LayoutOf(Box<Widget>): %v", err)
	}
	if !reflect.DeepEqual(layoutI32, layoutClass) {
		t.Fatalf("expected Box<i32> and Box<Widget> to have byte-identical layouts, got %+v vs %+v",
			layoutI32, layoutClass)
	}
}

func TestLayoutOf_RecursiveWithoutIndirectionIsAnError(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	node := ti.RegisterClass(strs.Intern("Node"), source.Span{}, types.LayoutStruct)
	ti.SetFields(node, []types.FieldSlot{
		{Name: strs.Intern("self"), Type: node, Offset: -1},
	})

	eng := layout.New(layout.Host64, ti)
	if _, err := eng.LayoutOf(node); err == nil {
		t.Fatalf("expected a direct struct self-reference to be a layout cycle error")
	}
}
