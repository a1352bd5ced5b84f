package backend

import (
	"fmt"

	"ember/internal/lowir"
)

func (e *Emitter) emitInstr(in *lowir.Instr, callSite bool) error {
	line, err := renderInstr(in)
	if err != nil {
		return err
	}
	suffix := ""
	if callSite {
		suffix = " safepoint"
	}
	dst := ""
	if in.Dst != lowir.NoReg {
		dst = fmt.Sprintf("r%d = ", in.Dst)
	}
	fmt.Fprintf(&e.buf, "    %s%s%s\n", dst, line, suffix)
	return nil
}

func renderInstr(in *lowir.Instr) (string, error) {
	switch in.Kind {
	case lowir.InstrLoadLocal:
		return fmt.Sprintf("load_local l%d", in.LoadLocal.Local), nil
	case lowir.InstrStoreLocal:
		return fmt.Sprintf("store_local l%d, %s", in.StoreLocal.Local, renderValue(in.StoreLocal.Value)), nil
	case lowir.InstrConst:
		return fmt.Sprintf("const %s", renderValue(in.Const.Value)), nil
	case lowir.InstrUnary:
		return fmt.Sprintf("unary %v %s", in.Unary.Op, renderValue(in.Unary.Operand)), nil
	case lowir.InstrBinary:
		return fmt.Sprintf("binary %v %s, %s", in.Binary.Op, renderValue(in.Binary.Lhs), renderValue(in.Binary.Rhs)), nil
	case lowir.InstrConvert:
		return fmt.Sprintf("convert %v %s", in.Convert.Op, renderValue(in.Convert.Value)), nil
	case lowir.InstrGCAlloc:
		return fmt.Sprintf("gc_alloc size=%s class=#%d", renderValue(in.GCAlloc.Size), in.GCAlloc.Descriptor), nil
	case lowir.InstrLoadField:
		return fmt.Sprintf("load_field %s[+%d]", renderValue(in.LoadField.Recv), in.LoadField.Offset), nil
	case lowir.InstrStoreField:
		barrier := ""
		if in.StoreField.NeedsBarrier {
			barrier = " (barriered)"
		}
		return fmt.Sprintf("store_field %s[+%d], %s%s", renderValue(in.StoreField.Recv), in.StoreField.Offset, renderValue(in.StoreField.Value), barrier), nil
	case lowir.InstrCallDirect:
		return fmt.Sprintf("call_direct f%d(%s)", in.CallDirect.Target, renderArgs(in.CallDirect.Args)), nil
	case lowir.InstrLoadVTable:
		return fmt.Sprintf("load_vtable %s", renderValue(in.LoadVTable.Recv)), nil
	case lowir.InstrVTableSlot:
		return fmt.Sprintf("vtable_slot %s[%d]", renderValue(in.VTableSlot.VTable), in.VTableSlot.Slot), nil
	case lowir.InstrInterfaceLookup:
		return fmt.Sprintf("interface_lookup %s, #%d, arity=%d, cache=%d",
			renderValue(in.InterfaceLookup.Recv), in.InterfaceLookup.Name, in.InterfaceLookup.Arity, in.InterfaceLookup.CacheSlot), nil
	case lowir.InstrCallIndirect:
		return fmt.Sprintf("call_indirect %s(%s)", renderValue(in.CallIndirect.Target), renderArgs(in.CallIndirect.Args)), nil
	case lowir.InstrRuntimeCall:
		return fmt.Sprintf("runtime_call %s(%s)", in.RuntimeCall.Symbol, renderArgs(in.RuntimeCall.Args)), nil
	case lowir.InstrIsInstance:
		return fmt.Sprintf("is_instance %s, #%d", renderValue(in.IsInstance.Value), in.IsInstance.Descriptor), nil
	case lowir.InstrCatchValue:
		return "catch_value", nil
	case lowir.InstrArrayNew:
		return fmt.Sprintf("array_new %v, %s", in.ArrayNew.Elem, renderValue(in.ArrayNew.Length)), nil
	case lowir.InstrArrayLen:
		return fmt.Sprintf("array_len %s", renderValue(in.ArrayLen.Recv)), nil
	case lowir.InstrArrayGet:
		return fmt.Sprintf("array_get %s[%s]", renderValue(in.ArrayGet.Recv), renderValue(in.ArrayGet.Index)), nil
	case lowir.InstrArraySet:
		return fmt.Sprintf("array_set %s[%s], %s", renderValue(in.ArraySet.Recv), renderValue(in.ArraySet.Index), renderValue(in.ArraySet.Value)), nil
	case lowir.InstrHashNew:
		return fmt.Sprintf("hash_new %v, %v", in.HashNew.Key, in.HashNew.Value), nil
	case lowir.InstrHashGet:
		return fmt.Sprintf("hash_get %s[%s]", renderValue(in.HashGet.Recv), renderValue(in.HashGet.Key)), nil
	case lowir.InstrHashSet:
		return fmt.Sprintf("hash_set %s[%s], %s", renderValue(in.HashSet.Recv), renderValue(in.HashSet.Key), renderValue(in.HashSet.Value)), nil
	case lowir.InstrHashLen:
		return fmt.Sprintf("hash_len %s", renderValue(in.HashLen.Recv)), nil
	case lowir.InstrRangeNew:
		incl := ""
		if in.RangeNew.Inclusive {
			incl = " inclusive"
		}
		return fmt.Sprintf("range_new %s, %s, %s%s", renderValue(in.RangeNew.Start), renderValue(in.RangeNew.End), renderValue(in.RangeNew.Step), incl), nil
	case lowir.InstrSafepoint:
		return "safepoint", nil
	case lowir.InstrNop:
		return "nop", nil
	default:
		return "", fmt.Errorf("unknown instruction kind %d", in.Kind)
	}
}

func renderArgs(args []lowir.Value) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += renderValue(a)
	}
	return s
}

func renderValue(v lowir.Value) string {
	switch v.Form {
	case lowir.ValReg:
		return fmt.Sprintf("r%d", v.Reg)
	case lowir.ValConstInt:
		return fmt.Sprintf("%d", v.IntVal)
	case lowir.ValConstFloat:
		return fmt.Sprintf("%gf", v.FloatVal)
	case lowir.ValConstDouble:
		return fmt.Sprintf("%g", v.DoubleVal)
	case lowir.ValConstBool:
		return fmt.Sprintf("%t", v.BoolVal)
	case lowir.ValConstPool:
		return fmt.Sprintf("#%d", v.Pool)
	case lowir.ValConstNull:
		return "null"
	default:
		return "?"
	}
}
