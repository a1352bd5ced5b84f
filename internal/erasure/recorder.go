// Package erasure implements the bookkeeping spec §4.D requires for
// type-erased generics: "an instance of Box<T> lowers to the same
// layout regardless of T; reads of T-typed fields emit load_erased(slot)
// ... Invariant: no monomorphization occurs." Unlike a monomorphizer,
// this package never clones a function body or generates a
// per-instantiation layout — it only remembers, at each reinterpret
// site, which static type argument a load_erased/store_erased should
// recover. The Anvil register already carries that type (spec §3 Anvil
// Value); this map exists for diagnostics and for internal/lowir to
// double-check reinterpret sites it compiles against.
package erasure

import (
	"ember/internal/source"
	"ember/internal/types"
)

// SiteKind distinguishes a generic erasure reinterpret site.
type SiteKind uint8

const (
	SiteLoad SiteKind = iota
	SiteStore
	SiteBoxAtConstruction
	SiteUnboxAtRead
)

// Site is one reinterpret site recorded during lowering.
type Site struct {
	Kind     SiteKind
	Class    types.TypeID // the erased (generic) class
	Instance types.TypeID // the GenericInstance(class, args) at this call site
	Slot     int
	ArgType  types.TypeID // the type argument to reinterpret the slot as
	Span     source.Span
}

// Recorder accumulates reinterpret sites across a lowering run. It
// performs no cloning, substitution, or dead-code elimination — the
// machinery a monomorphizer would need and that erasure semantics make
// unnecessary.
type Recorder struct {
	Sites []Site
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordLoad records a load_erased reinterpret site.
func (r *Recorder) RecordLoad(instance types.TypeID, class types.TypeID, slot int, argType types.TypeID, span source.Span) {
	r.Sites = append(r.Sites, Site{Kind: SiteLoad, Class: class, Instance: instance, Slot: slot, ArgType: argType, Span: span})
}

// RecordStore records a store_erased reinterpret site.
func (r *Recorder) RecordStore(instance types.TypeID, class types.TypeID, slot int, argType types.TypeID, span source.Span) {
	r.Sites = append(r.Sites, Site{Kind: SiteStore, Class: class, Instance: instance, Slot: slot, ArgType: argType, Span: span})
}

// RecordBox records a primitive boxed at a generic construction site
// (spec §4.D: "Primitive T is automatically boxed at generic
// construction").
func (r *Recorder) RecordBox(instance types.TypeID, class types.TypeID, slot int, argType types.TypeID, span source.Span) {
	r.Sites = append(r.Sites, Site{Kind: SiteBoxAtConstruction, Class: class, Instance: instance, Slot: slot, ArgType: argType, Span: span})
}

// RecordUnbox records a primitive unboxed at a generic read site.
func (r *Recorder) RecordUnbox(instance types.TypeID, class types.TypeID, slot int, argType types.TypeID, span source.Span) {
	r.Sites = append(r.Sites, Site{Kind: SiteUnboxAtRead, Class: class, Instance: instance, Slot: slot, ArgType: argType, Span: span})
}
