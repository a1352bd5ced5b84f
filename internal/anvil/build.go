package anvil

import (
	"fmt"

	"fortio.org/safecast"

	"ember/internal/source"
	"ember/internal/types"
)

// FuncBuilder incrementally constructs a Func. internal/lower drives one
// FuncBuilder per source function/method/closure/generator-state-machine
// method, threading the "current block" through statement lowering the
// way the teacher's funcLowerer threads a current local/block pair.
type FuncBuilder struct {
	f *Func

	cur      BlockID
	tryStack []TryRegionID
	nextTry  TryRegionID
}

// NewFunc starts building a function with the given name/signature.
func NewFunc(name string, span source.Span, result types.TypeID, flags FuncFlags) *FuncBuilder {
	b := &FuncBuilder{
		f: &Func{
			Name:   name,
			Span:   span,
			Flags:  flags,
			Result: result,
			Entry:  NoBlockID,
		},
		cur:     NoBlockID,
		nextTry: 0,
	}
	return b
}

// AddParam declares a parameter local; parameters must all be added
// before any non-parameter local.
func (b *FuncBuilder) AddParam(name string, t types.TypeID, span source.Span) LocalID {
	id := LocalID(nextSlot(len(b.f.Locals), "local"))
	b.f.Locals = append(b.f.Locals, Local{Name: name, Type: t, Span: span})
	b.f.NumParams++
	return id
}

// AddLocal declares a non-parameter local slot.
func (b *FuncBuilder) AddLocal(name string, t types.TypeID, span source.Span) LocalID {
	id := LocalID(nextSlot(len(b.f.Locals), "local"))
	b.f.Locals = append(b.f.Locals, Local{Name: name, Type: t, Span: span})
	return id
}

// NewReg allocates a fresh typed virtual register.
func (b *FuncBuilder) NewReg(t types.TypeID) RegID {
	id := RegID(nextSlot(len(b.f.RegTypes), "register"))
	b.f.RegTypes = append(b.f.RegTypes, t)
	return id
}

// nextSlot converts a growing table's length into the int32 ID space
// Anvil's handles use, panicking (a compiler-internal error, spec §7)
// on overflow rather than silently truncating a slot index.
func nextSlot(tableLen int, label string) int32 {
	n, err := safecast.Conv[int32](tableLen)
	if err != nil {
		panic(fmt.Errorf("anvil: %s table overflow: %w", label, err))
	}
	return n
}

// NumLocals reports how many locals (parameters included) have been
// declared so far. Generator/async lowering calls this only after a
// state-machine body is fully lowered, once every local it will ever
// need (including ones a nested `for` loop's iterator protocol adds
// ad hoc) has been created.
func (b *FuncBuilder) NumLocals() int { return len(b.f.Locals) }

// LocalType returns the declared type of a previously added local.
func (b *FuncBuilder) LocalType(id LocalID) types.TypeID { return b.f.Locals[id].Type }

// PrependInstrs splices instrs onto the front of block's instruction
// list. Generator/async lowering uses this to install field-reload code
// at a resume point after the fact, once the full set of locals needing
// a field is known (spec §4.D Generators/Async: "one slot per live
// local" materialized on resume before the original body resumes).
func (b *FuncBuilder) PrependInstrs(block BlockID, instrs []Instr) {
	blk := b.f.BlockByID(block)
	if blk == nil || len(instrs) == 0 {
		return
	}
	blk.Instrs = append(append([]Instr{}, instrs...), blk.Instrs...)
}

// NewBlock appends a fresh, unterminated block and returns its ID. The
// first block created becomes the function's entry.
func (b *FuncBuilder) NewBlock(label string) BlockID {
	id := BlockID(nextSlot(len(b.f.Blocks), "block"))
	b.f.Blocks = append(b.f.Blocks, Block{ID: id, Label: label})
	if b.f.Entry == NoBlockID {
		b.f.Entry = id
	}
	return id
}

// SetCurrent selects the block subsequent Emit/SetTerm calls target.
func (b *FuncBuilder) SetCurrent(id BlockID) { b.cur = id }

// Current returns the block subsequent Emit/SetTerm calls target.
func (b *FuncBuilder) Current() BlockID { return b.cur }

// CurrentTerminated reports whether the current block already has a
// terminator, letting callers skip a redundant SetTerm after lowering
// code that may have already closed the block (a return inside an if/else
// arm, for instance).
func (b *FuncBuilder) CurrentTerminated() bool {
	blk := b.f.BlockByID(b.cur)
	return blk == nil || blk.Terminated()
}

// Emit appends instr to the current block.
func (b *FuncBuilder) Emit(instr Instr) {
	blk := b.f.BlockByID(b.cur)
	if blk == nil {
		return
	}
	blk.Instrs = append(blk.Instrs, instr)
}

// SetTerm closes the current block with term, if it is not already
// closed (a block lowered from unreachable code after an earlier
// terminator is left alone, matching dead-code discipline in the
// teacher's block lowering).
func (b *FuncBuilder) SetTerm(term Terminator) {
	blk := b.f.BlockByID(b.cur)
	if blk == nil || blk.Terminated() {
		return
	}
	blk.Term = term
}

// OpenTryRegion starts a new try-region, nested inside whatever region
// is currently open (if any), and pushes it onto the active stack.
func (b *FuncBuilder) OpenTryRegion(catches []CatchEntry, finally BlockID) TryRegionID {
	id := b.nextTry
	b.nextTry++
	parent := NoTryRegion
	if len(b.tryStack) > 0 {
		parent = b.tryStack[len(b.tryStack)-1]
	}
	b.f.TryRegions = append(b.f.TryRegions, TryRegion{
		ID:      id,
		Catches: catches,
		Finally: finally,
		Parent:  parent,
	})
	b.tryStack = append(b.tryStack, id)
	return id
}

// CloseTryRegion pops the innermost active try-region.
func (b *FuncBuilder) CloseTryRegion() {
	if len(b.tryStack) == 0 {
		return
	}
	b.tryStack = b.tryStack[:len(b.tryStack)-1]
}

// MarkBlockInRegion records that block belongs to the innermost active
// try-region, if any.
func (b *FuncBuilder) MarkBlockInRegion(block BlockID) {
	if len(b.tryStack) == 0 {
		return
	}
	active := b.tryStack[len(b.tryStack)-1]
	for i := range b.f.TryRegions {
		if b.f.TryRegions[i].ID == active {
			b.f.TryRegions[i].Blocks = append(b.f.TryRegions[i].Blocks, block)
			return
		}
	}
}

// Finish returns the completed function. The caller is responsible for
// ensuring every block was terminated before calling Finish; the
// verifier (Verify) is the authority on that invariant.
func (b *FuncBuilder) Finish() *Func {
	return b.f
}
