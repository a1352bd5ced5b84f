package types

import (
	"slices"
)

// TupleInfo records the element types of a Tuple([Type]).
type TupleInfo struct {
	Elems []TypeID
}

// RegisterTuple interns Tuple(elems), deduplicating by structural
// equality of the element list (tuples are structural, not nominal).
func (in *Interner) RegisterTuple(elems []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		t := in.types[id]
		if t.Kind != KindTuple || int(t.Payload) >= len(in.tuples) {
			continue
		}
		if slices.Equal(in.tuples[t.Payload].Elems, elems) {
			return id
		}
	}
	slot := nextSlot(len(in.tuples), "tuple")
	in.tuples = append(in.tuples, TupleInfo{Elems: cloneTypeIDs(elems)})
	return in.internRaw(Type{Kind: KindTuple, Payload: slot})
}

// TupleInfo retrieves the element-type list for a Tuple([Type]).
func (in *Interner) TupleInfo(id TypeID) ([]TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTuple || int(t.Payload) >= len(in.tuples) {
		return nil, false
	}
	return cloneTypeIDs(in.tuples[t.Payload].Elems), true
}

func cloneTypeIDs(ids []TypeID) []TypeID {
	if len(ids) == 0 {
		return nil
	}
	return slices.Clone(ids)
}

