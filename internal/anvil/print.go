package anvil

import (
	"fmt"
	"io"
	"sort"

	"ember/internal/types"
)

// Dump writes the deterministic, stable textual listing described by
// spec §6: "a header line per function with signature, one line per
// basic block with its label, indented opcode lines with typed
// operands."
func Dump(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	names := make([]string, 0, len(m.ByName))
	for name := range m.ByName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := m.FuncByName(name)
		if !ok {
			continue
		}
		if err := dumpFunc(w, f, m.Types); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, typesIn *types.Interner) error {
	fmt.Fprintf(w, "fn %s(", f.Name)
	for i := 0; i < f.NumParams; i++ {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s: %s", f.Locals[i].Name, typeStr(typesIn, f.Locals[i].Type))
	}
	fmt.Fprintf(w, ") -> %s\n", typeStr(typesIn, f.Result))

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		label := bb.Label
		if label == "" {
			label = fmt.Sprintf("bb%d", i)
		}
		fmt.Fprintf(w, "  %s:\n", label)
		for j := range bb.Instrs {
			fmt.Fprintf(w, "    %s\n", formatInstr(&bb.Instrs[j], typesIn))
		}
		fmt.Fprintf(w, "    %s\n", formatTerm(&bb.Term))
	}
	return nil
}

func typeStr(typesIn *types.Interner, id types.TypeID) string {
	if typesIn == nil || id == types.NoTypeID {
		return "?"
	}
	t, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	return t.Kind.String()
}

func formatInstr(ins *Instr, typesIn *types.Interner) string {
	dst := ""
	if ins.Dst != NoReg {
		dst = fmt.Sprintf("r%d = ", ins.Dst)
	}
	switch ins.Kind {
	case InstrLoadLocal:
		return fmt.Sprintf("%sload_local L%d", dst, ins.LoadLocal.Local)
	case InstrStoreLocal:
		return fmt.Sprintf("store_local L%d, %s", ins.StoreLocal.Local, formatValue(ins.StoreLocal.Value))
	case InstrConst:
		return fmt.Sprintf("%sconst %s", dst, formatValue(ins.Const.Value))
	case InstrUnary:
		return fmt.Sprintf("%sunop %d %s", dst, ins.Unary.Op, formatValue(ins.Unary.Operand))
	case InstrBinary:
		return fmt.Sprintf("%sbinop %d %s, %s", dst, ins.Binary.Op, formatValue(ins.Binary.Lhs), formatValue(ins.Binary.Rhs))
	case InstrConvert:
		return fmt.Sprintf("%sconvert %d %s", dst, ins.Convert.Op, formatValue(ins.Convert.Value))
	case InstrBox:
		return fmt.Sprintf("%sbox %s", dst, formatValue(ins.Box.Value))
	case InstrUnbox:
		return fmt.Sprintf("%sunbox %s", dst, formatValue(ins.Unbox.Value))
	case InstrNew:
		return fmt.Sprintf("%snew %s(%d args)", dst, typeStr(typesIn, ins.New.Class), len(ins.New.Args))
	case InstrGetField:
		return fmt.Sprintf("%sget_field %s.%d", dst, formatValue(ins.GetField.Recv), ins.GetField.Slot)
	case InstrSetField:
		return fmt.Sprintf("set_field %s.%d = %s", formatValue(ins.SetField.Recv), ins.SetField.Slot, formatValue(ins.SetField.Value))
	case InstrCall:
		return fmt.Sprintf("%scall[%d] (%d args)", dst, ins.Call.Kind, len(ins.Call.Args))
	case InstrArrayNew:
		return fmt.Sprintf("%sarray_new %s", dst, formatValue(ins.ArrayNew.Length))
	case InstrArrayLen:
		return fmt.Sprintf("%sarray_len %s", dst, formatValue(ins.ArrayLen.Recv))
	case InstrArrayGet:
		return fmt.Sprintf("%sarray_get %s[%s]", dst, formatValue(ins.ArrayGet.Recv), formatValue(ins.ArrayGet.Index))
	case InstrArraySet:
		return fmt.Sprintf("array_set %s[%s] = %s", formatValue(ins.ArraySet.Recv), formatValue(ins.ArraySet.Index), formatValue(ins.ArraySet.Value))
	case InstrHashNew:
		return fmt.Sprintf("%shash_new", dst)
	case InstrHashGet:
		return fmt.Sprintf("%shash_get %s[%s]", dst, formatValue(ins.HashGet.Recv), formatValue(ins.HashGet.Key))
	case InstrHashSet:
		return fmt.Sprintf("hash_set %s[%s] = %s", formatValue(ins.HashSet.Recv), formatValue(ins.HashSet.Key), formatValue(ins.HashSet.Value))
	case InstrHashLen:
		return fmt.Sprintf("%shash_len %s", dst, formatValue(ins.HashLen.Recv))
	case InstrRangeNew:
		return fmt.Sprintf("%srange_new %s..%s", dst, formatValue(ins.RangeNew.Start), formatValue(ins.RangeNew.End))
	case InstrLoadErased:
		return fmt.Sprintf("%sload_erased %s.%d as %s", dst, formatValue(ins.LoadErased.Recv), ins.LoadErased.Slot, typeStr(typesIn, ins.LoadErased.AsType))
	case InstrStoreErased:
		return fmt.Sprintf("store_erased %s.%d = %s", formatValue(ins.StoreErased.Recv), ins.StoreErased.Slot, formatValue(ins.StoreErased.Value))
	case InstrIsInstance:
		return fmt.Sprintf("%sis_instance %s : %s", dst, formatValue(ins.IsInstance.Value), typeStr(typesIn, ins.IsInstance.Class))
	case InstrRuntimeCall:
		return fmt.Sprintf("%sruntime_call[%d] (%d args)", dst, ins.RuntimeCall.Symbol, len(ins.RuntimeCall.Args))
	case InstrNop:
		return "nop"
	default:
		return "?instr"
	}
}

func formatValue(v Value) string {
	switch v.Kind {
	case ValReg:
		return fmt.Sprintf("r%d", v.Reg)
	case ValConstInt:
		return fmt.Sprintf("%d", v.IntVal)
	case ValConstFloat:
		return fmt.Sprintf("%gf32", v.FloatVal)
	case ValConstDouble:
		return fmt.Sprintf("%gf64", v.DoubleVal)
	case ValConstString:
		return fmt.Sprintf("str#%d", v.StringVal)
	case ValConstNil:
		return "nil"
	case ValConstBool:
		return fmt.Sprintf("%t", v.BoolVal)
	case ValConstClass:
		return fmt.Sprintf("class#%d", v.ClassVal)
	case ValConstMethod:
		return fmt.Sprintf("method#%d", v.MethodVal)
	default:
		return "?"
	}
}

func formatTerm(t *Terminator) string {
	switch t.Kind {
	case TermRet:
		if t.Ret.HasValue {
			return fmt.Sprintf("ret %s", formatValue(t.Ret.Value))
		}
		return "ret"
	case TermJump:
		return fmt.Sprintf("jump bb%d", t.Jump.Target)
	case TermCondJump:
		return fmt.Sprintf("cond_jump %s, bb%d, bb%d", formatValue(t.CondJump.Cond), t.CondJump.Then, t.CondJump.Else)
	case TermSwitch:
		return fmt.Sprintf("switch %s (%d cases), default bb%d", formatValue(t.Switch.Value), len(t.Switch.Cases), t.Switch.Default)
	case TermThrow:
		return fmt.Sprintf("throw %s", formatValue(t.Throw.Value))
	case TermAwaitSuspend:
		return fmt.Sprintf("await_suspend %s, resume bb%d", formatValue(t.AwaitSuspend.Future), t.AwaitSuspend.ResumeBlock)
	case TermYieldSuspend:
		return fmt.Sprintf("yield_suspend %s, resume bb%d", formatValue(t.YieldSuspend.Value), t.YieldSuspend.ResumeBlock)
	default:
		return "?term"
	}
}
