package lower

import (
	"fmt"

	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/resolve"
	"ember/internal/source"
	"ember/internal/types"
)

// loopCtx records the break/continue targets of one enclosing loop, plus
// the cleanup-stack depth at the point the loop was entered so a break
// or continue only unwinds the try/using cleanups opened since (spec
// §4.D: `using` resource scopes and try/finally both register a cleanup
// that must run on every exit edge of their own body, not on a break
// that merely exits an inner loop).
type loopCtx struct {
	continueBlock anvil.BlockID
	breakBlock    anvil.BlockID
	cleanupDepth  int
}

// funcLower holds the per-function lowering state: the FuncBuilder being
// filled in, the resolver's slot map, and the slot->LocalID mapping built
// up lazily as locals are declared, the way the teacher's funcLowerer
// threads a current-block cursor through one function body at a time.
type funcLower struct {
	l    *Lowerer
	b    *anvil.FuncBuilder
	fd   *ast.FuncDecl
	slot resolve.FuncSlots

	localOf   map[ast.SlotID]anvil.LocalID
	loops     []loopCtx
	cleanups  []func()
	recvClass types.TypeID

	// coro is non-nil only while lowering a generator's next()/has_next()
	// or an async function's resume() method, set up by lowerCoroMethod.
	coro *coroState

	// awaitLocal holds the ad hoc local pinning an awaited future across
	// suspension, lazily created by the first lowerAwaitSuspend in this
	// body; anvil.NoLocal until then.
	awaitLocal anvil.LocalID
}

// runCleanupsFrom invokes every registered try/using cleanup from the
// innermost (top of stack) down to index depth, inclusive, lowering each
// one's code into the current block. Called before an explicit return,
// break, or continue leaves a protected region, since only exceptional
// unwinding is handled by the try-region's Finally block at runtime
// (spec §4.D: finally/dispose run on every exit edge, not only on throw).
func (fb *funcLower) runCleanupsFrom(depth int) {
	for i := len(fb.cleanups) - 1; i >= depth; i-- {
		fb.cleanups[i]()
	}
}

// withCleanup lowers body with action registered as the innermost active
// cleanup (run by runCleanupsFrom on an early return/break/continue), then
// runs action once more inline if body completed normally, mirroring the
// "duplicated into every exit edge" treatment of try/finally and
// using/dispose. hasAction lets a callsite with no finally/dispose skip
// the bookkeeping entirely.
func (fb *funcLower) withCleanup(action func(), hasAction bool, body *ast.Block) {
	if hasAction {
		fb.cleanups = append(fb.cleanups, action)
	}
	fb.lowerBlock(body)
	if hasAction {
		if !fb.b.CurrentTerminated() {
			action()
		}
		fb.cleanups = fb.cleanups[:len(fb.cleanups)-1]
	}
}

func newFuncLower(l *Lowerer, fd *ast.FuncDecl, receiverClassName string, slots resolve.FuncSlots) *funcLower {
	var recvClass types.TypeID
	if receiverClassName != "" {
		recvClass = l.res.ClassByName[receiverClassName]
	}

	flags := anvil.FuncFlags(0)
	if fd.Flags.Has(ast.FuncEntrypoint) {
		flags |= anvil.FuncFlagEntrypoint
	}

	b := anvil.NewFunc(funcDisplayName(receiverClassName, fd.Name), fd.Span, fd.Result, flags)
	fb := &funcLower{
		l:         l,
		b:         b,
		fd:        fd,
		slot:      slots,
		localOf:   make(map[ast.SlotID]anvil.LocalID, len(slots.SlotTypes)+4),
		recvClass: recvClass,
	}

	offset := 0
	if receiverClassName != "" && len(slots.ParamSlots) > 0 {
		s := slots.ParamSlots[0]
		fb.localOf[s] = b.AddParam("this", slots.SlotTypes[s], fd.Span)
		offset = 1
	}
	for i := offset; i < len(slots.ParamSlots); i++ {
		s := slots.ParamSlots[i]
		name := fmt.Sprintf("p%d", i-offset)
		if i-offset < len(fd.Params) {
			name = fd.Params[i-offset].Name
		}
		fb.localOf[s] = b.AddParam(name, slots.SlotTypes[s], fd.Span)
	}
	return fb
}

// funcDisplayName renders the Anvil function name: "Class.method" for
// methods, bare name for free functions.
func funcDisplayName(receiverClass, name string) string {
	if receiverClass == "" {
		return name
	}
	return receiverClass + "." + name
}

// localFor returns the LocalID backing slot, declaring it on first use.
func (fb *funcLower) localFor(slot ast.SlotID) anvil.LocalID {
	if id, ok := fb.localOf[slot]; ok {
		return id
	}
	t := fb.slot.SlotTypes[slot]
	id := fb.b.AddLocal(fmt.Sprintf("_s%d", slot), t, fb.fd.Span)
	fb.localOf[slot] = id
	return id
}

// newBlock creates a fresh block and, if a try-region is currently open,
// marks it as belonging to that region (spec §4.C: every block inside a
// protected span is attributed to its try-region).
func (fb *funcLower) newBlock(label string) anvil.BlockID {
	id := fb.b.NewBlock(label)
	fb.b.MarkBlockInRegion(id)
	return id
}

func (fb *funcLower) jumpTo(target anvil.BlockID) {
	fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermJump, Jump: anvil.JumpTerm{Target: target}})
}

func (fb *funcLower) emitLoadLocal(local anvil.LocalID, t types.TypeID, span source.Span) anvil.Value {
	dst := fb.b.NewReg(t)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: dst, Type: t, Span: span, LoadLocal: anvil.LoadLocalInstr{Local: local}})
	return anvil.RegValue(dst, t)
}

func (fb *funcLower) emitStoreLocal(local anvil.LocalID, v anvil.Value, span source.Span) {
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrStoreLocal, Dst: anvil.NoReg, Span: span, StoreLocal: anvil.StoreLocalInstr{Local: local, Value: v}})
}

// lowerBody lowers fd's statement body into fb.b's entry block and
// verifies every control path leaves the current block terminated
// (return-less function bodies fall through to an implicit void/nil
// return, per the teacher's "every block is terminated by construction"
// discipline).
func (fb *funcLower) lowerBody() {
	entry := fb.b.NewBlock("entry")
	fb.b.SetCurrent(entry)
	if fb.fd.Body == nil {
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermRet})
		return
	}
	fb.lowerBlock(fb.fd.Body)
	if !fb.b.CurrentTerminated() {
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermRet})
	}
}
