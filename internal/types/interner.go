package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for every Primitive(kind) variant, interned
// once at construction so every pass can reference them without a lookup.
type Builtins struct {
	Invalid TypeID
	I1      TypeID
	I8      TypeID
	I32     TypeID
	I64     TypeID
	F32     TypeID
	F64     TypeID
	Nil     TypeID
	IntPtr  TypeID
}

// Interner owns every Type value reachable in a compilation unit and
// assigns each a stable TypeID. It also owns the side tables for the
// kinds whose metadata does not fit in Type (classes, generic instances,
// functions, tuples, blocks); arrays, hashes, channels and futures keep
// theirs inline in Elem and Count.
type Interner struct {
	types []Type
	index map[typeKey]TypeID

	builtins Builtins

	classes   []ClassInfo
	instances []GenericInstanceInfo
	fns       []FnInfo
	tuples    []TupleInfo
	blocks    []BlockInfo
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Payload uint32
}

// NewInterner builds an interner pre-seeded with every primitive type.
func NewInterner() *Interner {
	in := &Interner{index: make(map[typeKey]TypeID, 64)}
	// Reserve slot 0 of every side table as an invalid sentinel, mirroring
	// the TypeID 0 = NoTypeID convention.
	in.classes = append(in.classes, ClassInfo{})
	in.instances = append(in.instances, GenericInstanceInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.blocks = append(in.blocks, BlockInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.I1 = in.Intern(Type{Kind: KindI1})
	in.builtins.I8 = in.Intern(Type{Kind: KindI8})
	in.builtins.I32 = in.Intern(Type{Kind: KindI32})
	in.builtins.I64 = in.Intern(Type{Kind: KindI64})
	in.builtins.F32 = in.Intern(Type{Kind: KindF32})
	in.builtins.F64 = in.Intern(Type{Kind: KindF64})
	in.builtins.Nil = in.Intern(Type{Kind: KindNil})
	in.builtins.IntPtr = in.Intern(Type{Kind: KindIntPtr})
	return in
}

// Builtins returns the TypeIDs of every primitive type.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern returns the stable TypeID for t, allocating one on first sight.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics on an invalid TypeID; used where the handle is known
// to have come from this interner.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// Len reports how many distinct types have been interned.
func (in *Interner) Len() int {
	if in == nil {
		return 0
	}
	return len(in.types)
}

func nextSlot(tableLen int, label string) uint32 {
	n, err := safecast.Conv[uint32](tableLen)
	if err != nil {
		panic(fmt.Errorf("types: %s table overflow: %w", label, err))
	}
	return n
}
