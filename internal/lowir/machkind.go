package lowir

import (
	"ember/internal/runtimeabi"
	"ember/internal/types"
)

// machKind maps a Type Context TypeID to its machine-level
// representation. Every nominal or structural kind that is not a
// primitive or a raw pointer-sized integer is an opaque object-pointer
// at the machine level (spec §3: "object-pointer" is the catch-all for
// anything GC- or runtime-managed).
func machKind(ti *types.Interner, t types.TypeID) runtimeabi.Kind {
	ty, ok := ti.Lookup(t)
	if !ok {
		return runtimeabi.KindWord
	}
	switch ty.Kind {
	case types.KindI1:
		return runtimeabi.KindI1
	case types.KindI8:
		return runtimeabi.KindI8
	case types.KindI32:
		return runtimeabi.KindI32
	case types.KindI64:
		return runtimeabi.KindI64
	case types.KindF32:
		return runtimeabi.KindF32
	case types.KindF64:
		return runtimeabi.KindF64
	case types.KindIntPtr:
		return runtimeabi.KindPtr
	default:
		// Nil, Class, GenericInstance, Function, Array, Hash, Range,
		// Tuple, Block, Channel, Future: all opaque object-pointers or
		// runtime handles at the machine level.
		return runtimeabi.KindWord
	}
}
