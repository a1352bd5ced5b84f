package types

import (
	"slices"

	"ember/internal/source"
)

// FuncRef is an opaque reference to a lowered function body. It is
// defined here (rather than imported from the anvil package) so the Type
// Context has no dependency on Anvil; internal/anvil.FuncID values are
// converted to/from FuncRef at the package boundary.
type FuncRef uint32

// NoFuncRef marks a method with no body (e.g. an abstract/interface-like
// declaration prior to lowering, or a native method bound only to an FFI
// thunk).
const NoFuncRef FuncRef = 0

// LayoutKind selects the byte-layout rule applied in internal/layout,
// per spec §4.A.
type LayoutKind uint8

const (
	LayoutObject LayoutKind = iota // GC-managed header + aligned fields
	LayoutStruct                   // C-struct layout, platform alignment
	LayoutPacked                   // 1-byte aligned
	LayoutUnion                    // all fields at offset 0
)

func (k LayoutKind) String() string {
	switch k {
	case LayoutObject:
		return "object"
	case LayoutStruct:
		return "struct"
	case LayoutPacked:
		return "packed"
	case LayoutUnion:
		return "union"
	default:
		return "object"
	}
}

// SerializationPolicy selects the synthetic (de)serialization methods
// emitted for a class in internal/lower.
type SerializationPolicy uint8

const (
	SerializationNone SerializationPolicy = iota
	SerializationJSON
)

// DispatchMode classifies how a MethodHandle is invoked, per spec §3.
type DispatchMode uint8

const (
	DispatchStatic DispatchMode = iota
	DispatchVirtual
	DispatchInterfaceLike
	DispatchNative
	DispatchGenerator
	DispatchAsync
)

func (d DispatchMode) String() string {
	switch d {
	case DispatchStatic:
		return "static"
	case DispatchVirtual:
		return "virtual"
	case DispatchInterfaceLike:
		return "interface-like"
	case DispatchNative:
		return "native"
	case DispatchGenerator:
		return "generator"
	case DispatchAsync:
		return "async"
	default:
		return "static"
	}
}

// FieldSlot is one ordered field of a class. Offset is -1 until
// internal/layout lays the class out.
type FieldSlot struct {
	Name   source.StringID
	Type   TypeID
	Offset int
}

// MethodHandle is a class method descriptor, per spec §3.
type MethodHandle struct {
	Owner      TypeID
	Name       source.StringID
	Params     []TypeID
	Result     TypeID
	Dispatch   DispatchMode
	Body       FuncRef
	ThrowsSet  []TypeID
	VTableSlot int // -1 if not virtual/interface-like
	Arity      int
}

// methodKey identifies a method-table entry by name+arity, per spec §3
// ("method table (name+arity → MethodHandle)").
type methodKey struct {
	Name  source.StringID
	Arity int
}

// FFIBinding describes the native library binding for a NativeLibrary
// class (spec §4.D FFI).
type FFIBinding struct {
	IsNativeLibrary bool
	LibraryPaths    []string // per-platform candidate paths, in order
}

// ClassInfo is the ClassDescriptor storage backing a Class(class_id)
// or GenericInstance(class_id, ...) type, per spec §3.
type ClassInfo struct {
	Name      source.StringID
	Decl      source.Span
	Parent    TypeID // NoTypeID if no parent
	Fields    []FieldSlot
	methods   map[methodKey]MethodHandle
	VTable    []MethodHandle // stable slot order; index == VTableSlot
	Layout    LayoutKind
	Serial    SerializationPolicy
	JSONNames map[source.StringID]source.StringID // field -> @json(name:) override
	FFI       FFIBinding

	// GenericParams lists the class's own generic parameters (empty for
	// non-generic classes). Erasure means every instantiation of a
	// generic class shares this ClassInfo's Fields/VTable verbatim.
	GenericParams []source.StringID
}

// RegisterClass allocates a nominal class slot and returns its TypeID.
// Classes are always nominal: two RegisterClass calls never intern to the
// same TypeID even with identical names (shadowing/duplicate detection is
// the resolver's job, per spec §4.B's "duplicate field name (fatal)").
func (in *Interner) RegisterClass(name source.StringID, decl source.Span, layout LayoutKind) TypeID {
	slot := nextSlot(len(in.classes), "class")
	in.classes = append(in.classes, ClassInfo{
		Name:    name,
		Decl:    decl,
		Parent:  NoTypeID,
		Layout:  layout,
		methods: make(map[methodKey]MethodHandle, 8),
	})
	return in.internRaw(Type{Kind: KindClass, Payload: slot})
}

// ClassInfo returns the descriptor for a Class TypeID.
func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	info := in.classInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// SetParent records the (already-registered) parent class.
func (in *Interner) SetParent(classID, parentID TypeID) {
	info := in.classInfo(classID)
	if info == nil {
		return
	}
	info.Parent = parentID
}

// SetFields stores the resolved, ordered field list (pre-layout: offsets
// are -1 until internal/layout runs).
func (in *Interner) SetFields(classID TypeID, fields []FieldSlot) {
	info := in.classInfo(classID)
	if info == nil {
		return
	}
	cloned := make([]FieldSlot, len(fields))
	for i, f := range fields {
		f.Offset = -1
		cloned[i] = f
	}
	info.Fields = cloned
}

// SetFieldOffsets is called by internal/layout once byte offsets are
// computed; it must be called with exactly len(Fields) offsets.
func (in *Interner) SetFieldOffsets(classID TypeID, offsets []int) {
	info := in.classInfo(classID)
	if info == nil || len(offsets) != len(info.Fields) {
		return
	}
	for i := range info.Fields {
		info.Fields[i].Offset = offsets[i]
	}
}

// AddMethod inserts a method into the class's method table only; it does
// not touch the v-table, which the resolver installs separately through
// SetVTable.
func (in *Interner) AddMethod(classID TypeID, m MethodHandle) {
	info := in.classInfo(classID)
	if info == nil {
		return
	}
	if info.methods == nil {
		info.methods = make(map[methodKey]MethodHandle, 8)
	}
	info.methods[methodKey{Name: m.Name, Arity: m.Arity}] = m
}

// LookupMethod finds a method by name+arity in the class's own method
// table. That table holds the class's own methods plus, once SetVTable has
// run, every v-table entry the class inherited; ancestors' non-virtual
// methods are not searched.
func (in *Interner) LookupMethod(classID TypeID, name source.StringID, arity int) (MethodHandle, bool) {
	info := in.classInfo(classID)
	if info == nil {
		return MethodHandle{}, false
	}
	m, ok := info.methods[methodKey{Name: name, Arity: arity}]
	return m, ok
}

// SetVTable installs the final, stable v-table slot order for a class.
// Per spec §4.B: "overrides reuse the parent index; new virtual methods
// append" — internal/resolve computes this order and calls SetVTable
// exactly once per class, after which it is immutable (spec §3 invariant).
func (in *Interner) SetVTable(classID TypeID, vtable []MethodHandle) {
	info := in.classInfo(classID)
	if info == nil {
		return
	}
	info.VTable = slices.Clone(vtable)
	for i := range info.VTable {
		info.VTable[i].VTableSlot = i
		key := methodKey{Name: info.VTable[i].Name, Arity: info.VTable[i].Arity}
		if info.methods == nil {
			info.methods = make(map[methodKey]MethodHandle, 8)
		}
		info.methods[key] = info.VTable[i]
	}
}

// SetSerializationPolicy records the `serializable:` class attribute and
// any `@json(name:)` per-field overrides.
func (in *Interner) SetSerializationPolicy(classID TypeID, policy SerializationPolicy, jsonNames map[source.StringID]source.StringID) {
	info := in.classInfo(classID)
	if info == nil {
		return
	}
	info.Serial = policy
	info.JSONNames = jsonNames
}

// SetFFIBinding marks a class as a NativeLibrary with the given
// per-platform library search paths.
func (in *Interner) SetFFIBinding(classID TypeID, paths []string) {
	info := in.classInfo(classID)
	if info == nil {
		return
	}
	info.FFI = FFIBinding{IsNativeLibrary: true, LibraryPaths: slices.Clone(paths)}
}

// SetGenericParams records a generic class's own type parameters.
func (in *Interner) SetGenericParams(classID TypeID, params []source.StringID) {
	info := in.classInfo(classID)
	if info == nil {
		return
	}
	info.GenericParams = slices.Clone(params)
}

// IsSubclass reports whether child descends from (or equals) ancestor by
// walking Parent links — the nominal half of subtype_of.
func (in *Interner) IsSubclass(child, ancestor TypeID) bool {
	for cur := child; cur != NoTypeID; {
		if cur == ancestor {
			return true
		}
		info := in.classInfo(cur)
		if info == nil {
			return false
		}
		cur = info.Parent
	}
	return false
}

func (in *Interner) classInfo(id TypeID) *ClassInfo {
	if in == nil || id == NoTypeID {
		return nil
	}
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindClass || t.Payload == 0 || int(t.Payload) >= len(in.classes) {
		return nil
	}
	return &in.classes[t.Payload]
}
