package anvil

import (
	"ember/internal/source"
	"ember/internal/types"
)

// InstrKind enumerates the structural shape of a non-terminating Anvil
// instruction. Per-primitive arithmetic, comparison, and conversion
// opcodes (spec §4.D: "Per-primitive add/sub/mul/div/mod/neg, bitwise,
// float and integer compares... i_to_f, f_to_i, i32_to_i64, f32_to_f64")
// are not one Go type per opcode; they share InstrUnary/InstrBinary/
// InstrConvert and are distinguished by the UnaryOp/BinaryOp/ConvertOp
// enums below, mirroring how the per-primitive families collapse to a
// handful of structural shapes while still naming every opcode.
type InstrKind uint8

const (
	InstrLoadLocal InstrKind = iota
	InstrStoreLocal
	InstrConst
	InstrUnary
	InstrBinary
	InstrConvert
	InstrBox
	InstrUnbox
	InstrNew
	InstrGetField
	InstrSetField
	InstrCall
	InstrArrayNew
	InstrArrayLen
	InstrArrayGet
	InstrArraySet
	InstrHashNew
	InstrHashGet
	InstrHashSet
	InstrHashLen
	InstrRangeNew
	InstrLoadErased
	InstrStoreErased
	InstrIsInstance
	InstrRuntimeCall
	InstrNop
)

// Instr is a single non-terminating Anvil opcode. Dst is NoReg for
// opcodes with no result (store_local, set_field, runtime calls used
// for side effect only).
type Instr struct {
	Kind InstrKind
	Dst  RegID
	Type types.TypeID
	Span source.Span

	LoadLocal   LoadLocalInstr
	StoreLocal  StoreLocalInstr
	Const       ConstInstr
	Unary       UnaryInstr
	Binary      BinaryInstr
	Convert     ConvertInstr
	Box         BoxInstr
	Unbox       UnboxInstr
	New         NewInstr
	GetField    GetFieldInstr
	SetField    SetFieldInstr
	Call        CallInstr
	ArrayNew    ArrayNewInstr
	ArrayLen    ArrayLenInstr
	ArrayGet    ArrayIndexInstr
	ArraySet    ArraySetInstr
	HashNew     HashNewInstr
	HashGet     HashGetInstr
	HashSet     HashSetInstr
	HashLen     HashLenInstr
	RangeNew    RangeNewInstr
	LoadErased  LoadErasedInstr
	StoreErased StoreErasedInstr
	IsInstance  IsInstanceInstr
	RuntimeCall RuntimeCallInstr
}

// LoadLocalInstr reads a named local slot into a fresh register.
type LoadLocalInstr struct {
	Local LocalID
}

// StoreLocalInstr writes a value into a named local slot.
type StoreLocalInstr struct {
	Local LocalID
	Value Value
}

// ConstKind distinguishes the literal families of the const_* opcode
// group (spec §4.D: "const_int/float/double/string/nil", plus
// const_class/const_method from the object-model family).
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstDouble
	ConstString
	ConstNil
	ConstBool
	ConstClass
	ConstMethod
)

// ConstInstr materializes a constant of kind Kind into Dst.
type ConstInstr struct {
	Kind  ConstKind
	Value Value
}

// UnaryOp enumerates the per-primitive unary opcode family: neg for
// each numeric type, boolean not, and bitwise not for each integer
// width.
type UnaryOp uint8

const (
	UnaryNegI32 UnaryOp = iota
	UnaryNegI64
	UnaryNegF32
	UnaryNegF64
	UnaryNot
	UnaryBitNotI32
	UnaryBitNotI64
)

// UnaryInstr applies Op to Operand.
type UnaryInstr struct {
	Op      UnaryOp
	Operand Value
}

// BinaryOp enumerates the per-primitive binary opcode family: arithmetic
// (add/sub/mul/div/mod), bitwise (and/or/xor/shl/shr), and comparisons,
// each replicated per operand type per spec §4.D.
type BinaryOp uint8

const (
	BinAddI32 BinaryOp = iota
	BinSubI32
	BinMulI32
	BinDivI32
	BinModI32
	BinAddI64
	BinSubI64
	BinMulI64
	BinDivI64
	BinModI64
	BinAddF32
	BinSubF32
	BinMulF32
	BinDivF32
	BinAddF64
	BinSubF64
	BinMulF64
	BinDivF64
	BinAndI32
	BinOrI32
	BinXorI32
	BinShlI32
	BinShrI32
	BinAndI64
	BinOrI64
	BinXorI64
	BinShlI64
	BinShrI64
	BinEqI32
	BinNeI32
	BinLtI32
	BinLeI32
	BinGtI32
	BinGeI32
	BinEqI64
	BinNeI64
	BinLtI64
	BinLeI64
	BinGtI64
	BinGeI64
	BinEqF32
	BinNeF32
	BinLtF32
	BinLeF32
	BinGtF32
	BinGeF32
	BinEqF64
	BinNeF64
	BinLtF64
	BinLeF64
	BinGtF64
	BinGeF64
	BinEqRef // reference-identity equality, used for Nil/class-typed operands
	BinNeRef
)

// BinaryInstr applies Op to (Lhs, Rhs). Anvil carries no separate
// "checked div" opcode, and (E) copies div/mod through unchanged as a
// Low IR InstrBinary: neither IR emits a zero-divisor test or a
// DivisionByZeroError throw for integer div/mod.
type BinaryInstr struct {
	Op  BinaryOp
	Lhs Value
	Rhs Value
}

// ConvertOp enumerates the explicit, never-implicit conversion family
// (spec §4.D Conversions).
type ConvertOp uint8

const (
	ConvIToF ConvertOp = iota
	ConvFToI
	ConvI32ToI64
	ConvF32ToF64
)

// ConvertInstr applies Op to Value.
type ConvertInstr struct {
	Op    ConvertOp
	Value Value
}

// BoxInstr wraps a primitive value in its boxed class representation
// (spec §4.D: "explicit boxing opcodes box(primitive)").
type BoxInstr struct {
	Primitive types.TypeID
	Value     Value
}

// UnboxInstr unwraps a boxed primitive (spec §4.D: "unbox(class,
// primitive)").
type UnboxInstr struct {
	Class     types.TypeID
	Primitive types.TypeID
	Value     Value
}

// NewInstr allocates an instance of Class and runs its initializer
// (spec §4.D: "new(class) allocates and runs initialize").
type NewInstr struct {
	Class types.TypeID
	Args  []Value
}

// GetFieldInstr reads field Slot of Recv (spec §4.D get_field(class,
// slot)).
type GetFieldInstr struct {
	Class types.TypeID
	Recv  Value
	Slot  int
}

// SetFieldInstr writes Value into field Slot of Recv. NeedsBarrier is
// set by the lowerer when Slot's static type is reference-typed, per
// spec §4.D's "with write barrier"; (E) consults it to decide whether
// to emit gc_write_barrier.
type SetFieldInstr struct {
	Class        types.TypeID
	Recv         Value
	Slot         int
	Value        Value
	NeedsBarrier bool
}

// CallKind distinguishes the four dispatch opcodes of spec §4.D's
// object-model family.
type CallKind uint8

const (
	CallStatic CallKind = iota
	CallVirtual
	CallInterfaceLike
	CallNative
)

// CallInstr invokes a method per Kind:
//   - CallStatic/CallNative resolve directly via Method.
//   - CallVirtual dispatches through VTableSlot on Receiver's v-table.
//   - CallInterfaceLike performs a runtime (class_id, Name, Arity)
//     lookup (spec §4.E: "a per-call-site monomorphic inline cache slot").
type CallInstr struct {
	Kind        CallKind
	HasReceiver bool
	Receiver    Value
	Class       types.TypeID
	Method      types.FuncRef
	VTableSlot  int
	Name        source.StringID
	Arity       int
	Args        []Value
}

// ArrayNewInstr allocates a fixed-length array (spec §4.D Arrays/Hashes/
// Ranges).
type ArrayNewInstr struct {
	Elem   types.TypeID
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
	Key   types.TypeID
	Value types.TypeID
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

// RangeNewInstr constructs a Range value.
type RangeNewInstr struct {
	Start     Value
	End       Value
	Step      Value
	Inclusive bool
}

// LoadErasedInstr reads a type-erased generic field slot, reinterpreting
// the pointer-sized payload as AsType at this static site (spec §4.D
// Generic dispatch: "reads of T-typed fields emit load_erased(slot)").
type LoadErasedInstr struct {
	Recv   Value
	Slot   int
	AsType types.TypeID
}

// StoreErasedInstr writes a type-erased generic field slot.
type StoreErasedInstr struct {
	Recv  Value
	Slot  int
	Value Value
}

// IsInstanceInstr performs a runtime class-type test, backing both
// `is` expressions and pattern-match guards.
type IsInstanceInstr struct {
	Value Value
	Class types.TypeID
}

// RuntimeSymbol names a fixed runtime ABI entry point (spec §6), used
// for the handful of operations Anvil does not model as a first-class
// opcode family of its own: string construction/concatenation,
// channels, futures, threads, FFI, reflection, and JSON serialization.
type RuntimeSymbol uint8

const (
	RuntimeStringNew RuntimeSymbol = iota
	RuntimeStringConcat
	RuntimeChannelNew
	RuntimeChannelSend
	RuntimeChannelReceive
	RuntimeThreadSpawn
	RuntimeFutureNew
	RuntimeFutureRegisterContinuation
	RuntimeFutureComplete
	RuntimeFutureFail
	RuntimeFutureValue
	RuntimeFFILoadLibrary
	RuntimeFFIResolve
	RuntimeReflectFields
	RuntimeReflectGet

	// RuntimeJSONEncodeString quotes and escapes a string value into
	// JSON text; to_json embeds the result directly rather than routing
	// string fields through RuntimeStringNew's plain (unquoted) form.
	RuntimeJSONEncodeString
	// RuntimeJSONField looks up key in the JSON object text doc and
	// returns the raw JSON text of that key's value, unparsed; the
	// runtime raises SerializationError if doc is not a JSON object or
	// key is absent from a from_json call's required field set.
	RuntimeJSONField
	// RuntimeJSONScalar parses raw JSON scalar/string text into a value
	// of Instr.Type, raising SerializationError on a type mismatch.
	RuntimeJSONScalar
)

// RuntimeCallInstr invokes a fixed runtime ABI entry point.
type RuntimeCallInstr struct {
	Symbol RuntimeSymbol
	Args   []Value
}
