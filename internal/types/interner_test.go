package types_test

import (
	"testing"

	"ember/internal/source"
	"ember/internal/types"
)

// TestIntern_SameTypeInternsToSameHandle exercises spec §3's invariant:
// "two types are equal iff their interned handles are equal."
func TestIntern_SameTypeInternsToSameHandle(t *testing.T) {
	ti := types.NewInterner()
	a := ti.RegisterArray(ti.Builtins().I32, 4)
	b := ti.RegisterArray(ti.Builtins().I32, 4)
	if a != b {
		t.Fatalf("expected structurally identical Array types to intern to the same handle, got %d != %d", a, b)
	}

	c := ti.RegisterArray(ti.Builtins().I32, 5)
	if a == c {
		t.Fatalf("expected a different array length to intern to a different handle")
	}

	d := ti.RegisterArray(ti.Builtins().F64, 4)
	if a == d {
		t.Fatalf("expected a different element type to intern to a different handle")
	}
}

func TestIntern_TupleAndFnDeduplicate(t *testing.T) {
	ti := types.NewInterner()
	i32 := ti.Builtins().I32
	f64 := ti.Builtins().F64

	t1 := ti.RegisterTuple([]types.TypeID{i32, f64})
	t2 := ti.RegisterTuple([]types.TypeID{i32, f64})
	if t1 != t2 {
		t.Fatalf("expected identical tuples to share a handle")
	}

	fn1 := ti.RegisterFn([]types.TypeID{i32}, f64, types.Effects{})
	fn2 := ti.RegisterFn([]types.TypeID{i32}, f64, types.Effects{})
	if fn1 != fn2 {
		t.Fatalf("expected identical function signatures to share a handle")
	}
	fn3 := ti.RegisterFn([]types.TypeID{i32}, f64, types.Effects{Throws: true})
	if fn1 == fn3 {
		t.Fatalf("expected a different effects set to intern to a different handle")
	}
}

// TestSubtypeOf_PrimitivesOnlySelf covers spec §4.A: "primitives are not
// subtypes of anything except themselves".
func TestSubtypeOf_PrimitivesOnlySelf(t *testing.T) {
	ti := types.NewInterner()
	b := ti.Builtins()
	if !ti.SubtypeOf(b.I32, b.I32) {
		t.Fatalf("expected i32 to be a subtype of itself")
	}
	if ti.SubtypeOf(b.I32, b.I64) {
		t.Fatalf("expected i32 not to be a subtype of i64")
	}
	if ti.SubtypeOf(b.F64, b.F32) {
		t.Fatalf("expected f64 not to be a subtype of f32")
	}
}

// TestSubtypeOf_IntPtrNeverConvertible covers spec §4.A: "IntPtr is never
// implicitly convertible."
func TestSubtypeOf_IntPtrNeverConvertible(t *testing.T) {
	ti := types.NewInterner()
	b := ti.Builtins()
	if ti.SubtypeOf(b.IntPtr, b.I64) {
		t.Fatalf("expected IntPtr not to be a subtype of i64")
	}
	if ti.SubtypeOf(b.I64, b.IntPtr) {
		t.Fatalf("expected i64 not to be a subtype of IntPtr")
	}
	if !ti.SubtypeOf(b.IntPtr, b.IntPtr) {
		t.Fatalf("expected IntPtr to be a subtype of itself")
	}
}

// TestSubtypeOf_NilIsSubtypeOfAnyClass covers spec §4.A: "Nil is a
// subtype of any class-typed slot."
func TestSubtypeOf_NilIsSubtypeOfAnyClass(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	cls := ti.RegisterClass(strs.Intern("Widget"), source.Span{}, types.LayoutObject)
	if !ti.SubtypeOf(ti.Builtins().Nil, cls) {
		t.Fatalf("expected Nil to be a subtype of a class type")
	}
	if ti.SubtypeOf(cls, ti.Builtins().Nil) {
		t.Fatalf("expected a class type not to be a subtype of Nil")
	}
}

// TestSubtypeOf_ClassHierarchy covers nominal subtyping through
// SetParent.
func TestSubtypeOf_ClassHierarchy(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	animal := ti.RegisterClass(strs.Intern("Animal"), source.Span{}, types.LayoutObject)
	dog := ti.RegisterClass(strs.Intern("Dog"), source.Span{}, types.LayoutObject)
	cat := ti.RegisterClass(strs.Intern("Cat"), source.Span{}, types.LayoutObject)
	ti.SetParent(dog, animal)
	ti.SetParent(cat, animal)

	if !ti.SubtypeOf(dog, animal) {
		t.Fatalf("expected Dog to be a subtype of Animal")
	}
	if ti.SubtypeOf(animal, dog) {
		t.Fatalf("expected Animal not to be a subtype of Dog")
	}
	if ti.SubtypeOf(dog, cat) {
		t.Fatalf("expected Dog not to be a subtype of Cat")
	}
	if got := ti.CommonSuper(dog, cat); got != animal {
		t.Fatalf("expected CommonSuper(Dog, Cat) = Animal, got %d", got)
	}
}

// TestGenericErasure_DistinctInstantiationsShareLayoutSite is Testable
// Property 4: "For two instantiations of the same generic class with
// different type arguments, the emitted class layouts are byte-identical
// ... the only difference is at reinterpret sites." At the Type Context
// level this means both instantiations erase to the exact same class.
func TestGenericErasure_DistinctInstantiationsShareLayoutSite(t *testing.T) {
	ti := types.NewInterner()
	strs := source.NewInterner()
	box := ti.RegisterClass(strs.Intern("Box"), source.Span{}, types.LayoutObject)
	ti.SetGenericParams(box, []source.StringID{strs.Intern("T")})

	boxOfI32 := ti.RegisterGenericInstance(box, []types.TypeID{ti.Builtins().I32})
	boxOfF64 := ti.RegisterGenericInstance(box, []types.TypeID{ti.Builtins().F64})
	if boxOfI32 == boxOfF64 {
		t.Fatalf("expected distinct instantiations to have distinct TypeIDs at the call site")
	}
	if ti.ErasedClass(boxOfI32) != ti.ErasedClass(boxOfF64) {
		t.Fatalf("expected both instantiations to erase to the same class (no monomorphization)")
	}
	if ti.ErasedClass(boxOfI32) != box {
		t.Fatalf("expected erasure to recover the original generic class")
	}

	// Re-registering an instance with the same (class, args) pair must
	// dedupe to the same handle.
	boxOfI32Again := ti.RegisterGenericInstance(box, []types.TypeID{ti.Builtins().I32})
	if boxOfI32 != boxOfI32Again {
		t.Fatalf("expected re-registering the same generic instance to dedupe")
	}
}
