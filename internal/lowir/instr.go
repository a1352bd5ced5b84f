package lowir

import (
	"ember/internal/anvil"
	"ember/internal/runtimeabi"
)

// InstrKind enumerates the non-terminating Low IR opcodes. Per-primitive
// arithmetic, comparison, and conversion opcodes are untouched by
// lowering (spec §4.E only transforms the object-model, dispatch,
// allocation, exception, and suspension families), so Unary/Binary/
// Convert reuse Anvil's own per-primitive op enums verbatim rather than
// duplicating them under new names.
type InstrKind uint8

const (
	InstrLoadLocal InstrKind = iota
	InstrStoreLocal
	InstrConst
	InstrUnary
	InstrBinary
	InstrConvert

	// Object-model family, resolved from Anvil's new/get_field/set_field
	// into explicit allocation and byte-offset field access (spec §4.E).
	InstrGCAlloc
	InstrLoadField
	InstrStoreField

	// Dispatch family: CallStatic/CallNative lower straight to
	// InstrCallDirect; CallVirtual and CallInterfaceLike each expand into
	// the mechanical load/index/call sequence spec §4.E names.
	InstrCallDirect
	InstrLoadVTable
	InstrVTableSlot
	InstrInterfaceLookup
	InstrCallIndirect

	InstrRuntimeCall
	InstrIsInstance
	InstrCatchValue

	InstrArrayNew
	InstrArrayLen
	InstrArrayGet
	InstrArraySet
	InstrHashNew
	InstrHashGet
	InstrHashSet
	InstrHashLen
	InstrRangeNew

	// InstrSafepoint marks a point the collector may observe this thread
	// at rest: function prologues, call sites, and loop back-edges (spec
	// §4.E "GC safe points at function prologues, loop back-edges, and
	// call sites"). It has no operands and produces no value.
	InstrSafepoint

	InstrNop
)

// Instr is a single non-terminating Low IR opcode.
type Instr struct {
	Kind InstrKind
	Dst  RegID

	LoadLocal  LoadLocalInstr
	StoreLocal StoreLocalInstr
	Const   ConstInstr
	Unary   UnaryInstr
	Binary  BinaryInstr
	Convert ConvertInstr

	GCAlloc    GCAllocInstr
	LoadField  LoadFieldInstr
	StoreField StoreFieldInstr

	CallDirect       CallDirectInstr
	LoadVTable       LoadVTableInstr
	VTableSlot       VTableSlotInstr
	InterfaceLookup  InterfaceLookupInstr
	CallIndirect     CallIndirectInstr

	RuntimeCall RuntimeCallInstr
	IsInstance  IsInstanceInstr

	ArrayNew ArrayNewInstr
	ArrayLen ArrayLenInstr
	ArrayGet ArrayIndexInstr
	ArraySet ArraySetInstr
	HashNew  HashNewInstr
	HashGet  HashGetInstr
	HashSet  HashSetInstr
	HashLen  HashLenInstr
	RangeNew RangeNewInstr
}

// LoadLocalInstr reads a named local slot into a fresh register. Locals
// survive unchanged from Anvil (spec §4.E transforms the object-model,
// dispatch, allocation, exception, and suspension families; a function's
// own named-local frame is not one of them).
type LoadLocalInstr struct {
	Local LocalID
}

// StoreLocalInstr writes a value into a named local slot.
type StoreLocalInstr struct {
	Local LocalID
	Value Value
}

// ConstInstr materializes a constant operand into Dst. The constant
// itself already carries everything needed (Value.Form/Kind); this
// wrapper exists so a constant load is addressable as a register-
// producing instruction like every other opcode.
type ConstInstr struct {
	Value Value
}

// UnaryInstr applies Op to Operand, reusing Anvil's UnaryOp family.
type UnaryInstr struct {
	Op      anvil.UnaryOp
	Operand Value
}

// BinaryInstr applies Op to (Lhs, Rhs), reusing Anvil's BinaryOp family.
type BinaryInstr struct {
	Op  anvil.BinaryOp
	Lhs Value
	Rhs Value
}

// ConvertInstr applies Op to Value, reusing Anvil's ConvertOp family.
type ConvertInstr struct {
	Op    anvil.ConvertOp
	Value Value
}

// GCAllocInstr allocates Size bytes for an instance of the class named
// by Descriptor (spec §4.E: "new(class): gc_alloc(size) ... invoke
// initializer"). The initializer call, when present, is a separate
// InstrCallDirect emitted immediately after.
type GCAllocInstr struct {
	Size       Value
	Descriptor ConstID
}

// LoadFieldInstr reads the value at byte Offset of Recv.
type LoadFieldInstr struct {
	Recv   Value
	Offset int32
}

// StoreFieldInstr writes Value at byte Offset of Recv. NeedsBarrier
// mirrors Anvil's SetFieldInstr.NeedsBarrier and triggers an
// InstrRuntimeCall to gc_write_barrier immediately before the store.
type StoreFieldInstr struct {
	Recv         Value
	Offset       int32
	Value        Value
	NeedsBarrier bool
}

// CallDirectInstr calls a statically known function (spec §4.E "static:
// direct call"; CallNative resolves identically, per the FFI thunk
// already carrying its own indirection).
type CallDirectInstr struct {
	Target FuncID
	Args   []Value
}

// LoadVTableInstr reads the v-table/descriptor pointer out of an
// object's header (spec §4.E virtual dispatch, step 1).
type LoadVTableInstr struct {
	Recv Value
}

// VTableSlotInstr indexes a loaded v-table pointer by Slot, producing
// the function pointer to call (spec §4.E virtual dispatch, step 2).
type VTableSlotInstr struct {
	VTable Value
	Slot   int32
}

// InterfaceLookupInstr performs the runtime (class_id, Name, Arity)
// lookup spec §4.E describes for interface-like dispatch, consulting a
// per-call-site monomorphic inline-cache slot.
type InterfaceLookupInstr struct {
	Recv      Value
	Name      ConstID
	Arity     int32
	CacheSlot int32
}

// CallIndirectInstr calls through a function-pointer value produced by
// VTableSlotInstr or InterfaceLookupInstr (spec §4.E, step 3 of both
// dispatch families).
type CallIndirectInstr struct {
	Target Value
	Args   []Value
}

// RuntimeCallInstr invokes a fixed runtime ABI entry point (spec §6),
// resolved by symbol name against internal/runtimeabi.Table.
type RuntimeCallInstr struct {
	Symbol string
	Args   []Value
}

// IsInstanceInstr performs a runtime class-type test against
// Descriptor, backing `is` expressions, pattern-match guards, and the
// ordered catch-type chain a landing pad expands into.
type IsInstanceInstr struct {
	Value      Value
	Descriptor ConstID
}

// ArrayNewInstr allocates a fixed-length array of elements of machine
// kind Elem.
type ArrayNewInstr struct {
	Elem   runtimeabi.Kind
	Length Value
}

// ArrayLenInstr reads an array's length.
type ArrayLenInstr struct {
	Recv Value
}

// ArrayIndexInstr reads a bounds-checked array element (array_get); the
// write form is ArraySetInstr.
type ArrayIndexInstr struct {
	Recv  Value
	Index Value
}

// ArraySetInstr bounds-checks and writes an array element.
type ArraySetInstr struct {
	Recv  Value
	Index Value
	Value Value
}

// HashNewInstr allocates an empty hash.
type HashNewInstr struct {
	Key   runtimeabi.Kind
	Value runtimeabi.Kind
}

// HashGetInstr reads a hash entry by key.
type HashGetInstr struct {
	Recv Value
	Key  Value
}

// HashSetInstr writes a hash entry.
type HashSetInstr struct {
	Recv  Value
	Key   Value
	Value Value
}

// HashLenInstr reads the number of entries in a hash.
type HashLenInstr struct {
	Recv Value
}

// RangeNewInstr constructs a {start, end, step} range value. Ranges are
// small enough to pass by value through registers; internal/backend, not
// this package, decides whether that means three scalar registers or a
// small stack slot.
type RangeNewInstr struct {
	Start     Value
	End       Value
	Step      Value
	Inclusive bool
}
