package backend_test

import (
	"strings"
	"testing"

	"ember/internal/backend"
	"ember/internal/lowir"
	"ember/internal/runtimeabi"
)

func TestEmitModule_RendersFunctionsAndConsts(t *testing.T) {
	mod := lowir.NewModule()
	mod.InternString("hello")

	f := &lowir.Func{Name: "main", NumParams: 0}
	entry := f.NewBlock("entry")
	r := f.NewReg(runtimeabi.KindI32)
	f.Emit(entry, lowir.Instr{Kind: lowir.InstrConst, Dst: r,
		Const: lowir.ConstInstr{Value: lowir.Value{Form: lowir.ValConstInt, Kind: runtimeabi.KindI32, IntVal: 7}}}, false)
	f.SetTerm(entry, lowir.Terminator{Kind: lowir.TermRet, Ret: lowir.RetTerm{HasValue: true, Value: lowir.RegValue(r, runtimeabi.KindI32)}})
	f.Entry = entry
	mod.AddFunc(f)

	out, err := backend.EmitModule(mod)
	if err != nil {
		t.Fatalf("EmitModule failed: %v", err)
	}
	if !strings.Contains(out, `const #0 = string "hello"`) {
		t.Errorf("expected a rendered string constant, got:\n%s", out)
	}
	if !strings.Contains(out, "func f0 main") {
		t.Errorf("expected a rendered function header, got:\n%s", out)
	}
	if !strings.Contains(out, "r0 = const 7") {
		t.Errorf("expected a rendered const instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "ret r0") {
		t.Errorf("expected a rendered return terminator, got:\n%s", out)
	}
}

func TestEmitModule_NilModuleErrors(t *testing.T) {
	if _, err := backend.EmitModule(nil); err == nil {
		t.Fatalf("expected an error for a nil module")
	}
}
