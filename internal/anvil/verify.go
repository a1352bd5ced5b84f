package anvil

import (
	"errors"
	"fmt"

	"ember/internal/types"
)

// Verify checks every function in m against the invariants of spec
// §4.C. Verification is mandatory between (D) and (E): a module that
// fails Verify must never reach internal/lowir.
func Verify(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := verifyFunc(f, m.Types); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func verifyFunc(f *Func, typesIn *types.Interner) error {
	var errs []error
	if err := verifyTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := verifyBlockTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := verifyRegisterDiscipline(f); err != nil {
		errs = append(errs, err)
	}
	if err := verifySuspendPlacement(f); err != nil {
		errs = append(errs, err)
	}
	if err := verifyTryRegions(f); err != nil {
		errs = append(errs, err)
	}
	if err := verifyDispatch(f, typesIn); err != nil {
		errs = append(errs, err)
	}
	if err := verifyFFI(f, typesIn); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// verifyTerminated checks that every block ends with a real terminator.
func verifyTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

func blockExists(f *Func, id BlockID) bool {
	return id >= 0 && int(id) < len(f.Blocks)
}

// verifyBlockTargets checks that every terminator's branch targets a
// real block, and that every switch's int cases are distinct.
func verifyBlockTargets(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		switch bb.Term.Kind {
		case TermJump:
			if !blockExists(f, bb.Term.Jump.Target) {
				errs = append(errs, fmt.Errorf("bb%d: jump target bb%d does not exist", i, bb.Term.Jump.Target))
			}
		case TermCondJump:
			if !blockExists(f, bb.Term.CondJump.Then) {
				errs = append(errs, fmt.Errorf("bb%d: cond_jump then-target bb%d does not exist", i, bb.Term.CondJump.Then))
			}
			if !blockExists(f, bb.Term.CondJump.Else) {
				errs = append(errs, fmt.Errorf("bb%d: cond_jump else-target bb%d does not exist", i, bb.Term.CondJump.Else))
			}
		case TermSwitch:
			seen := make(map[int64]bool, len(bb.Term.Switch.Cases))
			for _, c := range bb.Term.Switch.Cases {
				if seen[c.Value] {
					errs = append(errs, fmt.Errorf("bb%d: switch has duplicate case %d", i, c.Value))
				}
				seen[c.Value] = true
				if !blockExists(f, c.Target) {
					errs = append(errs, fmt.Errorf("bb%d: switch case %d target bb%d does not exist", i, c.Value, c.Target))
				}
			}
			if !blockExists(f, bb.Term.Switch.Default) {
				errs = append(errs, fmt.Errorf("bb%d: switch default bb%d does not exist", i, bb.Term.Switch.Default))
			}
		case TermAwaitSuspend:
			if !blockExists(f, bb.Term.AwaitSuspend.ResumeBlock) {
				errs = append(errs, fmt.Errorf("bb%d: await_suspend resume bb%d does not exist", i, bb.Term.AwaitSuspend.ResumeBlock))
			}
		case TermYieldSuspend:
			if !blockExists(f, bb.Term.YieldSuspend.ResumeBlock) {
				errs = append(errs, fmt.Errorf("bb%d: yield_suspend resume bb%d does not exist", i, bb.Term.YieldSuspend.ResumeBlock))
			}
		}
	}
	return errors.Join(errs...)
}

// verifyRegisterDiscipline checks that every register operand refers to
// a register already recorded in the function's register table (a weak
// stand-in for full dominance checking, which requires the CFG
// structure the lowerer already guarantees by construction) and that
// the type recorded at the use site matches the type recorded at
// definition — the type-preservation property of spec §8.1.
func verifyRegisterDiscipline(f *Func) error {
	var errs []error
	checkValue := func(v Value, ctx string) {
		if v.Kind != ValReg {
			return
		}
		defType, ok := f.RegType(v.Reg)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: register r%d has no definition", ctx, v.Reg))
			return
		}
		if v.Type != types.NoTypeID && defType != v.Type {
			errs = append(errs, fmt.Errorf("%s: register r%d used at type %v, defined at type %v", ctx, v.Reg, v.Type, defType))
		}
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			ctx := fmt.Sprintf("bb%d instr %d", i, j)
			walkInstrValues(ins, func(v Value) { checkValue(v, ctx) })
			if ins.Dst != NoReg {
				if int(ins.Dst) >= len(f.RegTypes) {
					errs = append(errs, fmt.Errorf("%s: dst register r%d exceeds register table", ctx, ins.Dst))
				}
			}
		}
		ctx := fmt.Sprintf("bb%d terminator", i)
		walkTermValues(&bb.Term, func(v Value) { checkValue(v, ctx) })
	}
	return errors.Join(errs...)
}

func walkInstrValues(ins *Instr, visit func(Value)) {
	switch ins.Kind {
	case InstrStoreLocal:
		visit(ins.StoreLocal.Value)
	case InstrUnary:
		visit(ins.Unary.Operand)
	case InstrBinary:
		visit(ins.Binary.Lhs)
		visit(ins.Binary.Rhs)
	case InstrConvert:
		visit(ins.Convert.Value)
	case InstrBox:
		visit(ins.Box.Value)
	case InstrUnbox:
		visit(ins.Unbox.Value)
	case InstrNew:
		for _, a := range ins.New.Args {
			visit(a)
		}
	case InstrGetField:
		visit(ins.GetField.Recv)
	case InstrSetField:
		visit(ins.SetField.Recv)
		visit(ins.SetField.Value)
	case InstrCall:
		if ins.Call.HasReceiver {
			visit(ins.Call.Receiver)
		}
		for _, a := range ins.Call.Args {
			visit(a)
		}
	case InstrArrayNew:
		visit(ins.ArrayNew.Length)
	case InstrArrayLen:
		visit(ins.ArrayLen.Recv)
	case InstrArrayGet:
		visit(ins.ArrayGet.Recv)
		visit(ins.ArrayGet.Index)
	case InstrArraySet:
		visit(ins.ArraySet.Recv)
		visit(ins.ArraySet.Index)
		visit(ins.ArraySet.Value)
	case InstrHashGet:
		visit(ins.HashGet.Recv)
		visit(ins.HashGet.Key)
	case InstrHashSet:
		visit(ins.HashSet.Recv)
		visit(ins.HashSet.Key)
		visit(ins.HashSet.Value)
	case InstrHashLen:
		visit(ins.HashLen.Recv)
	case InstrRangeNew:
		visit(ins.RangeNew.Start)
		visit(ins.RangeNew.End)
		visit(ins.RangeNew.Step)
	case InstrLoadErased:
		visit(ins.LoadErased.Recv)
	case InstrStoreErased:
		visit(ins.StoreErased.Recv)
		visit(ins.StoreErased.Value)
	case InstrIsInstance:
		visit(ins.IsInstance.Value)
	case InstrRuntimeCall:
		for _, a := range ins.RuntimeCall.Args {
			visit(a)
		}
	}
}

func walkTermValues(t *Terminator, visit func(Value)) {
	switch t.Kind {
	case TermRet:
		if t.Ret.HasValue {
			visit(t.Ret.Value)
		}
	case TermCondJump:
		visit(t.CondJump.Cond)
	case TermSwitch:
		visit(t.Switch.Value)
	case TermThrow:
		visit(t.Throw.Value)
	case TermAwaitSuspend:
		visit(t.AwaitSuspend.Future)
	case TermYieldSuspend:
		visit(t.YieldSuspend.Value)
	}
}

// verifySuspendPlacement checks that await_suspend/yield_suspend appear
// only in functions flagged async/generator, per spec §4.C.
func verifySuspendPlacement(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		switch f.Blocks[i].Term.Kind {
		case TermAwaitSuspend:
			if !f.Flags.Has(FuncFlagAsync) {
				errs = append(errs, fmt.Errorf("bb%d: await_suspend in non-async function", i))
			}
		case TermYieldSuspend:
			if !f.Flags.Has(FuncFlagGenerator) {
				errs = append(errs, fmt.Errorf("bb%d: yield_suspend in non-generator function", i))
			}
		}
	}
	return errors.Join(errs...)
}

// verifyTryRegions checks that try-regions form a properly nested
// forest and that every throw inside a region has at least one catch
// type somewhere in its ancestor chain.
func verifyTryRegions(f *Func) error {
	var errs []error

	byID := make(map[TryRegionID]TryRegion, len(f.TryRegions))
	for _, tr := range f.TryRegions {
		byID[tr.ID] = tr
	}
	blockRegion := make(map[BlockID]TryRegionID, len(f.Blocks))
	for _, tr := range f.TryRegions {
		for _, b := range tr.Blocks {
			if existing, ok := blockRegion[b]; ok {
				// A block may belong to more than one region only if one
				// is an ancestor of the other (proper nesting). The region
				// later in the table is recorded; since a child region is
				// always opened after its parent, that is the inner one.
				if !isAncestor(byID, existing, tr.ID) && !isAncestor(byID, tr.ID, existing) {
					errs = append(errs, fmt.Errorf("bb%d: belongs to non-nested try-regions %d and %d", b, existing, tr.ID))
				}
			}
			blockRegion[b] = tr.ID
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if bb.Term.Kind != TermThrow {
			continue
		}
		region, ok := blockRegion[bb.ID]
		if !ok {
			continue // uncaught throw at top level: valid, propagates out of the function
		}
		if !hasCatchInChain(byID, region) {
			errs = append(errs, fmt.Errorf("bb%d: throw inside try-region %d has no catch type in its chain", i, region))
		}
	}
	return errors.Join(errs...)
}

func isAncestor(byID map[TryRegionID]TryRegion, ancestor, child TryRegionID) bool {
	for cur := child; cur != NoTryRegion; {
		if cur == ancestor {
			return true
		}
		cur = byID[cur].Parent
	}
	return false
}

func hasCatchInChain(byID map[TryRegionID]TryRegion, region TryRegionID) bool {
	for cur := region; cur != NoTryRegion; cur = byID[cur].Parent {
		if len(byID[cur].Catches) > 0 {
			return true
		}
	}
	return false
}

// verifyDispatch checks that every virtual call's receiver is typed to
// a class that actually owns the named v-table slot.
func verifyDispatch(f *Func, typesIn *types.Interner) error {
	if typesIn == nil {
		return nil
	}
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			if ins.Kind != InstrCall || ins.Call.Kind != CallVirtual {
				continue
			}
			recvType := ins.Call.Receiver.Type
			erased := typesIn.ErasedClass(recvType)
			info, ok := typesIn.ClassInfo(erased)
			if !ok {
				errs = append(errs, fmt.Errorf("bb%d instr %d: call_virtual receiver is not a class type", i, j))
				continue
			}
			if ins.Call.VTableSlot < 0 || ins.Call.VTableSlot >= len(info.VTable) {
				errs = append(errs, fmt.Errorf("bb%d instr %d: call_virtual slot %d out of range for class", i, j, ins.Call.VTableSlot))
			}
		}
	}
	return errors.Join(errs...)
}

// verifyFFI checks that call_native targets only methods whose owning
// class is a NativeLibrary (spec §4.C).
func verifyFFI(f *Func, typesIn *types.Interner) error {
	if typesIn == nil {
		return nil
	}
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			if ins.Kind != InstrCall || ins.Call.Kind != CallNative {
				continue
			}
			info, ok := typesIn.ClassInfo(ins.Call.Class)
			if !ok {
				errs = append(errs, fmt.Errorf("bb%d instr %d: call_native on unknown class", i, j))
				continue
			}
			if !info.FFI.IsNativeLibrary {
				errs = append(errs, fmt.Errorf("bb%d instr %d: call_native targets a class that is not a NativeLibrary", i, j))
			}
		}
	}
	return errors.Join(errs...)
}
