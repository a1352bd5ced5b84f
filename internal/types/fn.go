package types

import "slices"

// Effects captures the optional effect annotations on a Function type:
// `throws?` and `async?` from spec §3.
type Effects struct {
	Throws bool
	Async  bool
}

// FnInfo records the signature of a Function(params, ret, effects).
type FnInfo struct {
	Params  []TypeID
	Result  TypeID
	Effects Effects
}

// RegisterFn interns Function(params, ret, effects), deduplicating by
// structural signature equality.
func (in *Interner) RegisterFn(params []TypeID, result TypeID, effects Effects) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		t := in.types[id]
		if t.Kind != KindFunction || int(t.Payload) >= len(in.fns) {
			continue
		}
		info := in.fns[t.Payload]
		if info.Result == result && info.Effects == effects && slices.Equal(info.Params, params) {
			return id
		}
	}
	slot := nextSlot(len(in.fns), "fn")
	in.fns = append(in.fns, FnInfo{Params: cloneTypeIDs(params), Result: result, Effects: effects})
	return in.internRaw(Type{Kind: KindFunction, Payload: slot})
}

// FnInfo retrieves the signature of a Function type.
func (in *Interner) FnInfo(id TypeID) (FnInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFunction || int(t.Payload) >= len(in.fns) {
		return FnInfo{}, false
	}
	info := in.fns[t.Payload]
	return FnInfo{Params: cloneTypeIDs(info.Params), Result: info.Result, Effects: info.Effects}, true
}
