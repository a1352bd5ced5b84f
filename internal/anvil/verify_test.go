package anvil_test

import (
	"strings"
	"testing"

	"ember/internal/anvil"
	"ember/internal/source"
	"ember/internal/types"
)

func newModule() (*anvil.Module, *types.Interner) {
	ti := types.NewInterner()
	return anvil.New(ti), ti
}

// add(a, b) -> i32 { return a + b }
func buildAdd(ti *types.Interner) *anvil.Func {
	i32 := ti.Builtins().I32
	b := anvil.NewFunc("add", source.Span{}, i32, 0)
	b.AddParam("a", i32, source.Span{})
	b.AddParam("b", i32, source.Span{})
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	ra := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: ra, Type: i32, LoadLocal: anvil.LoadLocalInstr{Local: 0}})
	rb := b.NewReg(i32)
	b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: rb, Type: i32, LoadLocal: anvil.LoadLocalInstr{Local: 1}})
	rsum := b.NewReg(i32)
	b.Emit(anvil.Instr{
		Kind: anvil.InstrBinary, Dst: rsum, Type: i32,
		Binary: anvil.BinaryInstr{Op: anvil.BinAddI32, Lhs: anvil.RegValue(ra, i32), Rhs: anvil.RegValue(rb, i32)},
	})
	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: anvil.RegValue(rsum, i32)}})
	return b.Finish()
}

func TestVerify_ValidFunctionPasses(t *testing.T) {
	m, ti := newModule()
	m.AddFunc(buildAdd(ti))
	if err := anvil.Verify(m); err != nil {
		t.Fatalf("expected valid function to verify, got: %v", err)
	}
}

func TestVerify_UnterminatedBlockFails(t *testing.T) {
	m, ti := newModule()
	i32 := ti.Builtins().I32
	b := anvil.NewFunc("broken", source.Span{}, i32, 0)
	b.NewBlock("entry")
	m.AddFunc(b.Finish())

	err := anvil.Verify(m)
	if err == nil || !strings.Contains(err.Error(), "unterminated block") {
		t.Fatalf("expected unterminated block error, got: %v", err)
	}
}

func TestVerify_BadJumpTargetFails(t *testing.T) {
	m, ti := newModule()
	i32 := ti.Builtins().I32
	b := anvil.NewFunc("badjump", source.Span{}, i32, 0)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	b.SetTerm(anvil.Terminator{Kind: anvil.TermJump, Jump: anvil.JumpTerm{Target: 7}})
	m.AddFunc(b.Finish())

	err := anvil.Verify(m)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing jump target error, got: %v", err)
	}
}

func TestVerify_AwaitSuspendOutsideAsyncFails(t *testing.T) {
	m, ti := newModule()
	i32 := ti.Builtins().I32
	b := anvil.NewFunc("notasync", source.Span{}, i32, 0)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	resume := b.NewBlock("resume")
	b.SetCurrent(entry)
	b.SetTerm(anvil.Terminator{
		Kind:         anvil.TermAwaitSuspend,
		AwaitSuspend: anvil.AwaitSuspendTerm{Future: anvil.Value{Kind: anvil.ValConstNil}, ResumeState: 1, ResumeBlock: resume},
	})
	b.SetCurrent(resume)
	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet})
	m.AddFunc(b.Finish())

	err := anvil.Verify(m)
	if err == nil || !strings.Contains(err.Error(), "await_suspend in non-async function") {
		t.Fatalf("expected await_suspend placement error, got: %v", err)
	}
}

func TestVerify_ThrowInsideTryRegionWithoutCatchFails(t *testing.T) {
	m, ti := newModule()
	i32 := ti.Builtins().I32
	b := anvil.NewFunc("throws", source.Span{}, i32, 0)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	b.OpenTryRegion(nil, anvil.NoBlockID) // no catches: misuse, should be flagged
	b.MarkBlockInRegion(entry)
	b.SetTerm(anvil.Terminator{Kind: anvil.TermThrow, Throw: anvil.ThrowTerm{Value: anvil.Value{Kind: anvil.ValConstNil}}})
	m.AddFunc(b.Finish())

	err := anvil.Verify(m)
	if err == nil || !strings.Contains(err.Error(), "no catch type in its chain") {
		t.Fatalf("expected missing-catch error, got: %v", err)
	}
}
