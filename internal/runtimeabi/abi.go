// Package runtimeabi declares the fixed runtime ABI internal/lowir
// targets (spec §6): a static table of symbol name, parameter kinds,
// and return kind for every entry point the low-level backend must
// provide. Declaring the table here, rather than inline in
// internal/lowir, keeps the ABI surface a single reviewable list
// instead of scattered call-site literals.
package runtimeabi

// Kind is a machine-level value kind, the same fixed vocabulary spec §3
// gives the Low IR itself: "pointer-sized integer, float, double, i1,
// i8, i32, i64, and opaque object-pointer".
type Kind uint8

const (
	KindVoid  Kind = iota // no value (an in/out parameter or a call with no return)
	KindNever             // the call never returns control to its caller (throw/rethrow)
	KindI1
	KindI8
	KindI32
	KindI64
	KindF32
	KindF64
	KindPtr  // pointer-sized integer (sizes, capacities, offsets)
	KindWord // opaque object-pointer or boxed machine word, call-site dependent
)

// Descriptor is one runtime ABI entry point's declared signature.
type Descriptor struct {
	Symbol string
	Params []Kind
	Result Kind
}

// Table is the fixed runtime ABI of spec §6, in declaration order.
// internal/lowir does not look entries up here; the runtime-call symbols
// it emits are all names from this list.
var Table = buildTable()

func buildTable() []Descriptor {
	decls := []Descriptor{
		{Symbol: "gc_alloc", Params: []Kind{KindPtr}, Result: KindWord},
		{Symbol: "gc_write_barrier", Params: []Kind{KindWord, KindI32, KindWord}, Result: KindVoid},
		{Symbol: "array_new", Params: []Kind{KindI32, KindPtr}, Result: KindWord},
		{Symbol: "hash_new", Params: []Kind{KindI32, KindI32}, Result: KindWord},
		{Symbol: "string_new", Params: []Kind{KindPtr, KindPtr}, Result: KindWord},
		{Symbol: "string_concat", Params: []Kind{KindWord, KindWord}, Result: KindWord},
		{Symbol: "throw", Params: []Kind{KindWord}, Result: KindNever},
		{Symbol: "rethrow", Params: nil, Result: KindNever},
		{Symbol: "future_new", Params: []Kind{KindWord}, Result: KindWord},
		{Symbol: "future_register_continuation", Params: []Kind{KindWord, KindWord}, Result: KindVoid},
		{Symbol: "future_complete", Params: []Kind{KindWord, KindWord}, Result: KindVoid},
		{Symbol: "future_fail", Params: []Kind{KindWord, KindWord}, Result: KindVoid},
		{Symbol: "future_value", Params: []Kind{KindWord}, Result: KindWord},
		{Symbol: "channel_new", Params: []Kind{KindI32}, Result: KindWord},
		{Symbol: "channel_send", Params: []Kind{KindWord, KindWord}, Result: KindVoid},
		{Symbol: "channel_receive", Params: []Kind{KindWord}, Result: KindWord},
		{Symbol: "thread_spawn", Params: []Kind{KindWord}, Result: KindVoid},
		{Symbol: "ffi_load_library", Params: []Kind{KindPtr}, Result: KindPtr},
		{Symbol: "ffi_resolve", Params: []Kind{KindPtr, KindPtr}, Result: KindPtr},
		{Symbol: "reflect_fields", Params: []Kind{KindPtr}, Result: KindWord},
		{Symbol: "reflect_get", Params: []Kind{KindWord, KindPtr}, Result: KindWord},

		// Boxing ABI, added alongside internal/lowir's box(primitive)/
		// unbox(class, primitive) lowering (spec §4.D Conversions); there
		// is no user-visible boxed-class descriptor in the Type Context
		// (boxing is a pure runtime representation concern), so these
		// carry the primitive's raw bits at pointer width rather than
		// through a class constant.
		{Symbol: "box_primitive", Params: []Kind{KindPtr}, Result: KindWord},
		{Symbol: "unbox_primitive", Params: []Kind{KindWord}, Result: KindPtr},

		// JSON serialization ABI, added alongside internal/lower's
		// to_json/from_json synthesis (spec §4.D Serialization); these
		// carry text as KindWord (a String object), matching how every
		// other object-returning entry point above is typed.
		{Symbol: "json_encode_string", Params: []Kind{KindWord}, Result: KindWord},
		{Symbol: "json_field", Params: []Kind{KindWord, KindWord}, Result: KindWord},
		{Symbol: "json_scalar", Params: []Kind{KindWord}, Result: KindWord},
	}
	return decls
}

// bySymbol is built once from Table rather than hand-duplicated, the
// same two-step decls-then-map shape the teacher's runtimeSigMap uses
// over its own builtinDecl list.
var bySymbol = indexTable(Table)

func indexTable(decls []Descriptor) map[string]Descriptor {
	m := make(map[string]Descriptor, len(decls))
	for _, d := range decls {
		m[d.Symbol] = d
	}
	return m
}

// Lookup finds a runtime entry point's declared signature by symbol
// name.
func Lookup(symbol string) (Descriptor, bool) {
	d, ok := bySymbol[symbol]
	return d, ok
}
