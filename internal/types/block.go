package types

import "slices"

// BlockInfo records the signature of a Block(params, ret, capture_shape).
// CaptureShape is an opaque per-literal-site tag assigned by the resolver
// (spec §4.B closure-capture analysis); it is not free-variable content,
// only a handle that keeps two textually distinct block literals from
// interning to the same Block type even when their parameter/return
// shapes coincide.
type BlockInfo struct {
	Params       []TypeID
	Result       TypeID
	CaptureShape uint32
}

// RegisterBlock interns Block(params, ret, captureShape).
func (in *Interner) RegisterBlock(params []TypeID, result TypeID, captureShape uint32) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		t := in.types[id]
		if t.Kind != KindBlock || int(t.Payload) >= len(in.blocks) {
			continue
		}
		info := in.blocks[t.Payload]
		if info.Result == result && info.CaptureShape == captureShape && slices.Equal(info.Params, params) {
			return id
		}
	}
	slot := nextSlot(len(in.blocks), "block")
	in.blocks = append(in.blocks, BlockInfo{Params: cloneTypeIDs(params), Result: result, CaptureShape: captureShape})
	return in.internRaw(Type{Kind: KindBlock, Payload: slot})
}

// BlockInfo retrieves the signature of a Block type.
func (in *Interner) BlockInfo(id TypeID) (BlockInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindBlock || int(t.Payload) >= len(in.blocks) {
		return BlockInfo{}, false
	}
	info := in.blocks[t.Payload]
	return BlockInfo{Params: cloneTypeIDs(info.Params), Result: info.Result, CaptureShape: info.CaptureShape}, true
}
