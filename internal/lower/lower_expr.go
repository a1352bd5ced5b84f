package lower

import (
	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/source"
	"ember/internal/types"
)

// lowerExpr lowers e into the current block and returns the Value
// holding its result.
func (fb *funcLower) lowerExpr(e *ast.Expr) anvil.Value {
	if e == nil {
		return anvil.Value{Kind: anvil.ValConstNil}
	}
	switch e.Kind {
	case ast.ExprIntLit:
		return fb.emitConst(anvil.ConstInt, anvil.Value{Kind: anvil.ValConstInt, Type: e.Type, IntVal: e.IntVal}, e.Type, e.Span)
	case ast.ExprFloatLit:
		bi := fb.l.types.Builtins()
		if e.Type == bi.F64 {
			return fb.emitConst(anvil.ConstDouble, anvil.Value{Kind: anvil.ValConstDouble, Type: e.Type, DoubleVal: e.FloatVal}, e.Type, e.Span)
		}
		return fb.emitConst(anvil.ConstFloat, anvil.Value{Kind: anvil.ValConstFloat, Type: e.Type, FloatVal: float32(e.FloatVal)}, e.Type, e.Span)
	case ast.ExprBoolLit:
		return fb.emitConst(anvil.ConstBool, anvil.Value{Kind: anvil.ValConstBool, Type: e.Type, BoolVal: e.BoolVal}, e.Type, e.Span)
	case ast.ExprNilLit:
		return fb.emitConst(anvil.ConstNil, anvil.Value{Kind: anvil.ValConstNil, Type: e.Type}, e.Type, e.Span)
	case ast.ExprStringLit:
		return fb.lowerStringLit(e)
	case ast.ExprIdent, ast.ExprThis:
		local := fb.localFor(e.Ident.Slot)
		return fb.emitLoadLocal(local, e.Type, e.Span)
	case ast.ExprBinOp:
		return fb.lowerBinOp(e)
	case ast.ExprUnOp:
		return fb.lowerUnOp(e)
	case ast.ExprAssign:
		return fb.lowerAssign(e)
	case ast.ExprCall:
		return fb.lowerCall(e)
	case ast.ExprNew:
		return fb.lowerNew(e)
	case ast.ExprFieldGet:
		return fb.lowerFieldGet(e)
	case ast.ExprFieldSet:
		return fb.lowerFieldSet(e)
	case ast.ExprIndexGet:
		return fb.lowerIndexGet(e)
	case ast.ExprIndexSet:
		return fb.lowerIndexSet(e)
	case ast.ExprArrayLit:
		return fb.lowerArrayLit(e)
	case ast.ExprHashLit:
		return fb.lowerHashLit(e)
	case ast.ExprTupleLit:
		return fb.lowerTupleLit(e)
	case ast.ExprRangeLit:
		return fb.lowerRangeLit(e)
	case ast.ExprBlockLit:
		return fb.lowerBlockLit(e)
	case ast.ExprAwait:
		if fb.coro != nil && fb.coro.isAsync {
			return fb.lowerAwaitSuspend(e)
		}
		return fb.lowerAwaitSync(e)
	case ast.ExprCast:
		return fb.lowerCast(e)
	case ast.ExprBox:
		return fb.lowerBox(e)
	case ast.ExprUnbox:
		return fb.lowerUnbox(e)
	case ast.ExprIsInstance:
		return fb.lowerIsInstance(e)
	case ast.ExprMatch:
		return fb.lowerMatch(e)
	default:
		return anvil.Value{Kind: anvil.ValConstNil, Type: e.Type}
	}
}

func (fb *funcLower) emitConst(kind anvil.ConstKind, v anvil.Value, t types.TypeID, span source.Span) anvil.Value {
	dst := fb.b.NewReg(t)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrConst, Dst: dst, Type: t, Span: span, Const: anvil.ConstInstr{Kind: kind, Value: v}})
	return anvil.RegValue(dst, t)
}

func (fb *funcLower) lowerUnOp(e *ast.Expr) anvil.Value {
	operand := fb.lowerExpr(e.Lhs)
	bi := fb.l.types.Builtins()
	var op anvil.UnaryOp
	switch e.UnOp {
	case ast.OpNeg:
		switch e.Type {
		case bi.I32:
			op = anvil.UnaryNegI32
		case bi.I64:
			op = anvil.UnaryNegI64
		case bi.F32:
			op = anvil.UnaryNegF32
		default:
			op = anvil.UnaryNegF64
		}
	case ast.OpNot:
		op = anvil.UnaryNot
	case ast.OpBitNot:
		if e.Type == bi.I64 {
			op = anvil.UnaryBitNotI64
		} else {
			op = anvil.UnaryBitNotI32
		}
	}
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrUnary, Dst: dst, Type: e.Type, Span: e.Span, Unary: anvil.UnaryInstr{Op: op, Operand: operand}})
	return anvil.RegValue(dst, e.Type)
}

func (fb *funcLower) lowerBinOp(e *ast.Expr) anvil.Value {
	if e.BinOp == ast.OpAnd || e.BinOp == ast.OpOr {
		return fb.lowerShortCircuit(e)
	}
	lhs := fb.lowerExpr(e.Lhs)
	rhs := fb.lowerExpr(e.Rhs)
	op := fb.binaryOpFor(e.BinOp, e.Lhs.Type)
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrBinary, Dst: dst, Type: e.Type, Span: e.Span, Binary: anvil.BinaryInstr{Op: op, Lhs: lhs, Rhs: rhs}})
	return anvil.RegValue(dst, e.Type)
}

func (fb *funcLower) binaryOpFor(op ast.BinOp, operandType types.TypeID) anvil.BinaryOp {
	bi := fb.l.types.Builtins()
	isRef := operandType != bi.I32 && operandType != bi.I64 && operandType != bi.F32 && operandType != bi.F64
	if isRef {
		switch op {
		case ast.OpNe:
			return anvil.BinNeRef
		default:
			return anvil.BinEqRef
		}
	}
	switch operandType {
	case bi.I32:
		switch op {
		case ast.OpAdd:
			return anvil.BinAddI32
		case ast.OpSub:
			return anvil.BinSubI32
		case ast.OpMul:
			return anvil.BinMulI32
		case ast.OpDiv:
			return anvil.BinDivI32
		case ast.OpMod:
			return anvil.BinModI32
		case ast.OpBitAnd:
			return anvil.BinAndI32
		case ast.OpBitOr:
			return anvil.BinOrI32
		case ast.OpBitXor:
			return anvil.BinXorI32
		case ast.OpShl:
			return anvil.BinShlI32
		case ast.OpShr:
			return anvil.BinShrI32
		case ast.OpEq:
			return anvil.BinEqI32
		case ast.OpNe:
			return anvil.BinNeI32
		case ast.OpLt:
			return anvil.BinLtI32
		case ast.OpLe:
			return anvil.BinLeI32
		case ast.OpGt:
			return anvil.BinGtI32
		default:
			return anvil.BinGeI32
		}
	case bi.I64:
		switch op {
		case ast.OpAdd:
			return anvil.BinAddI64
		case ast.OpSub:
			return anvil.BinSubI64
		case ast.OpMul:
			return anvil.BinMulI64
		case ast.OpDiv:
			return anvil.BinDivI64
		case ast.OpMod:
			return anvil.BinModI64
		case ast.OpBitAnd:
			return anvil.BinAndI64
		case ast.OpBitOr:
			return anvil.BinOrI64
		case ast.OpBitXor:
			return anvil.BinXorI64
		case ast.OpShl:
			return anvil.BinShlI64
		case ast.OpShr:
			return anvil.BinShrI64
		case ast.OpEq:
			return anvil.BinEqI64
		case ast.OpNe:
			return anvil.BinNeI64
		case ast.OpLt:
			return anvil.BinLtI64
		case ast.OpLe:
			return anvil.BinLeI64
		case ast.OpGt:
			return anvil.BinGtI64
		default:
			return anvil.BinGeI64
		}
	case bi.F32:
		switch op {
		case ast.OpAdd:
			return anvil.BinAddF32
		case ast.OpSub:
			return anvil.BinSubF32
		case ast.OpMul:
			return anvil.BinMulF32
		case ast.OpDiv:
			return anvil.BinDivF32
		case ast.OpEq:
			return anvil.BinEqF32
		case ast.OpNe:
			return anvil.BinNeF32
		case ast.OpLt:
			return anvil.BinLtF32
		case ast.OpLe:
			return anvil.BinLeF32
		case ast.OpGt:
			return anvil.BinGtF32
		default:
			return anvil.BinGeF32
		}
	default: // F64
		switch op {
		case ast.OpAdd:
			return anvil.BinAddF64
		case ast.OpSub:
			return anvil.BinSubF64
		case ast.OpMul:
			return anvil.BinMulF64
		case ast.OpDiv:
			return anvil.BinDivF64
		case ast.OpEq:
			return anvil.BinEqF64
		case ast.OpNe:
			return anvil.BinNeF64
		case ast.OpLt:
			return anvil.BinLtF64
		case ast.OpLe:
			return anvil.BinLeF64
		case ast.OpGt:
			return anvil.BinGtF64
		default:
			return anvil.BinGeF64
		}
	}
}

// lowerShortCircuit lowers && / || to cond_jump with join blocks
// producing a boolean result via a synthetic local, since Anvil has no
// phi instruction of its own (spec §4.D: "Short-circuit and/or lower to
// cond_jump with join blocks producing a boolean phi").
func (fb *funcLower) lowerShortCircuit(e *ast.Expr) anvil.Value {
	result := fb.b.AddLocal("_sc", e.Type, e.Span)
	lhs := fb.lowerExpr(e.Lhs)

	rhsBlk := fb.newBlock("sc.rhs")
	shortBlk := fb.newBlock("sc.short")
	joinBlk := fb.newBlock("sc.join")

	if e.BinOp == ast.OpAnd {
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermCondJump, CondJump: anvil.CondJumpTerm{Cond: lhs, Then: rhsBlk, Else: shortBlk}})
	} else {
		fb.b.SetTerm(anvil.Terminator{Kind: anvil.TermCondJump, CondJump: anvil.CondJumpTerm{Cond: lhs, Then: shortBlk, Else: rhsBlk}})
	}

	fb.b.SetCurrent(shortBlk)
	fb.emitStoreLocal(result, anvil.Value{Kind: anvil.ValConstBool, Type: e.Type, BoolVal: e.BinOp == ast.OpOr}, e.Span)
	fb.jumpTo(joinBlk)

	fb.b.SetCurrent(rhsBlk)
	rhs := fb.lowerExpr(e.Rhs)
	fb.emitStoreLocal(result, rhs, e.Span)
	fb.jumpTo(joinBlk)

	fb.b.SetCurrent(joinBlk)
	return fb.emitLoadLocal(result, e.Type, e.Span)
}

func (fb *funcLower) lowerAssign(e *ast.Expr) anvil.Value {
	v := fb.lowerExpr(e.Assign.Value)
	switch e.Assign.Target.Kind {
	case ast.ExprIdent:
		fb.emitStoreLocal(fb.localFor(e.Assign.Target.Ident.Slot), v, e.Span)
	case ast.ExprFieldGet:
		fg := e.Assign.Target.FieldGet
		recv := fb.lowerExpr(fg.Recv)
		fb.emitSetField(fg.Recv.Type, recv, fg.FieldIdx, v, e.Span)
	case ast.ExprIndexGet:
		ig := e.Assign.Target.IndexGet
		recv := fb.lowerExpr(ig.Recv)
		idx := fb.lowerExpr(ig.Index)
		fb.emitIndexSet(ig.Recv.Type, recv, idx, v, e.Span)
	}
	return v
}

func (fb *funcLower) emitSetField(recvType types.TypeID, recv anvil.Value, slot int, v anvil.Value, span source.Span) {
	class := fb.l.types.ErasedClass(recvType)
	fb.b.Emit(anvil.Instr{
		Kind: anvil.InstrSetField, Dst: anvil.NoReg, Span: span,
		SetField: anvil.SetFieldInstr{Class: class, Recv: recv, Slot: slot, Value: v, NeedsBarrier: isRefType(fb.l.types, v.Type)},
	})
}

func isRefType(ti *types.Interner, t types.TypeID) bool {
	bi := ti.Builtins()
	switch t {
	case bi.I1, bi.I8, bi.I32, bi.I64, bi.F32, bi.F64, bi.Nil, bi.IntPtr:
		return false
	default:
		return true
	}
}

func (fb *funcLower) lowerFieldGet(e *ast.Expr) anvil.Value {
	recv := fb.lowerExpr(e.FieldGet.Recv)
	class := fb.l.types.ErasedClass(e.FieldGet.Recv.Type)
	if gi, ok := fb.l.types.GenericInstanceInfo(e.FieldGet.Recv.Type); ok {
		fb.l.erased.RecordLoad(e.FieldGet.Recv.Type, gi.Class, e.FieldGet.FieldIdx, e.Type, e.Span)
		dst := fb.b.NewReg(e.Type)
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrLoadErased, Dst: dst, Type: e.Type, Span: e.Span,
			LoadErased: anvil.LoadErasedInstr{Recv: recv, Slot: e.FieldGet.FieldIdx, AsType: e.Type}})
		return anvil.RegValue(dst, e.Type)
	}
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrGetField, Dst: dst, Type: e.Type, Span: e.Span,
		GetField: anvil.GetFieldInstr{Class: class, Recv: recv, Slot: e.FieldGet.FieldIdx}})
	return anvil.RegValue(dst, e.Type)
}

func (fb *funcLower) lowerFieldSet(e *ast.Expr) anvil.Value {
	recv := fb.lowerExpr(e.FieldSet.Recv)
	v := fb.lowerExpr(e.FieldSet.Value)
	if gi, ok := fb.l.types.GenericInstanceInfo(e.FieldSet.Recv.Type); ok {
		fb.l.erased.RecordStore(e.FieldSet.Recv.Type, gi.Class, e.FieldSet.FieldIdx, e.FieldSet.Value.Type, e.Span)
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrStoreErased, Span: e.Span,
			StoreErased: anvil.StoreErasedInstr{Recv: recv, Slot: e.FieldSet.FieldIdx, Value: v}})
		return v
	}
	fb.emitSetField(e.FieldSet.Recv.Type, recv, e.FieldSet.FieldIdx, v, e.Span)
	return v
}

func (fb *funcLower) lowerIndexGet(e *ast.Expr) anvil.Value {
	recv := fb.lowerExpr(e.IndexGet.Recv)
	idx := fb.lowerExpr(e.IndexGet.Index)
	if _, _, ok := fb.l.types.ArrayInfo(e.IndexGet.Recv.Type); ok {
		dst := fb.b.NewReg(e.Type)
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrArrayGet, Dst: dst, Type: e.Type, Span: e.Span, ArrayGet: anvil.ArrayIndexInstr{Recv: recv, Index: idx}})
		return anvil.RegValue(dst, e.Type)
	}
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrHashGet, Dst: dst, Type: e.Type, Span: e.Span, HashGet: anvil.HashGetInstr{Recv: recv, Key: idx}})
	return anvil.RegValue(dst, e.Type)
}

func (fb *funcLower) emitIndexSet(recvType types.TypeID, recv, idx, v anvil.Value, span source.Span) {
	if _, _, ok := fb.l.types.ArrayInfo(recvType); ok {
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrArraySet, Span: span, ArraySet: anvil.ArraySetInstr{Recv: recv, Index: idx, Value: v}})
		return
	}
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrHashSet, Span: span, HashSet: anvil.HashSetInstr{Recv: recv, Key: idx, Value: v}})
}

func (fb *funcLower) lowerIndexSet(e *ast.Expr) anvil.Value {
	recv := fb.lowerExpr(e.IndexSet.Recv)
	idx := fb.lowerExpr(e.IndexSet.Index)
	v := fb.lowerExpr(e.IndexSet.Value)
	fb.emitIndexSet(e.IndexSet.Recv.Type, recv, idx, v, e.Span)
	return v
}

func (fb *funcLower) lowerArrayLit(e *ast.Expr) anvil.Value {
	elem, _, _ := fb.l.types.ArrayInfo(e.Type)
	length := anvil.Value{Kind: anvil.ValConstInt, Type: fb.l.types.Builtins().I32, IntVal: int64(len(e.Elems))}
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrArrayNew, Dst: dst, Type: e.Type, Span: e.Span, ArrayNew: anvil.ArrayNewInstr{Elem: elem, Length: length}})
	arr := anvil.RegValue(dst, e.Type)
	for i, el := range e.Elems {
		v := fb.lowerExpr(el)
		idx := anvil.Value{Kind: anvil.ValConstInt, Type: fb.l.types.Builtins().I32, IntVal: int64(i)}
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrArraySet, Span: e.Span, ArraySet: anvil.ArraySetInstr{Recv: arr, Index: idx, Value: v}})
	}
	return arr
}

func (fb *funcLower) lowerHashLit(e *ast.Expr) anvil.Value {
	key, val, _ := fb.l.types.HashInfo(e.Type)
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrHashNew, Dst: dst, Type: e.Type, Span: e.Span, HashNew: anvil.HashNewInstr{Key: key, Value: val}})
	h := anvil.RegValue(dst, e.Type)
	for _, entry := range e.Hash {
		k := fb.lowerExpr(entry.Key)
		v := fb.lowerExpr(entry.Value)
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrHashSet, Span: e.Span, HashSet: anvil.HashSetInstr{Recv: h, Key: k, Value: v}})
	}
	return h
}

func (fb *funcLower) lowerTupleLit(e *ast.Expr) anvil.Value {
	// Tuples have no dedicated allocation opcode; they lower to an
	// object-layout class instance the same way a class literal would
	// (spec §3 Tuple is structural, but needs concrete storage at (C)).
	args := make([]anvil.Value, len(e.Elems))
	for i, el := range e.Elems {
		args[i] = fb.lowerExpr(el)
	}
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrNew, Dst: dst, Type: e.Type, Span: e.Span, New: anvil.NewInstr{Class: fb.l.tupleClassFor(e.Type), Args: args}})
	return anvil.RegValue(dst, e.Type)
}

func (fb *funcLower) lowerRangeLit(e *ast.Expr) anvil.Value {
	start := fb.lowerExpr(e.RangeLit.Start)
	end := fb.lowerExpr(e.RangeLit.End)
	var step anvil.Value
	if e.RangeLit.Step != nil {
		step = fb.lowerExpr(e.RangeLit.Step)
	} else {
		step = anvil.Value{Kind: anvil.ValConstInt, Type: fb.l.types.Builtins().I32, IntVal: 1}
	}
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrRangeNew, Dst: dst, Type: e.Type, Span: e.Span,
		RangeNew: anvil.RangeNewInstr{Start: start, End: end, Step: step, Inclusive: e.RangeLit.Inclusive}})
	return anvil.RegValue(dst, e.Type)
}

func (fb *funcLower) lowerCast(e *ast.Expr) anvil.Value {
	v := fb.lowerExpr(e.Cast.Value)
	bi := fb.l.types.Builtins()
	var op anvil.ConvertOp
	switch {
	case e.Cast.Value.Type == bi.I32 && e.Cast.ToType == bi.F32, e.Cast.Value.Type == bi.I64 && e.Cast.ToType == bi.F64:
		op = anvil.ConvIToF
	case e.Cast.Value.Type == bi.F32 && e.Cast.ToType == bi.I32, e.Cast.Value.Type == bi.F64 && e.Cast.ToType == bi.I64:
		op = anvil.ConvFToI
	case e.Cast.Value.Type == bi.I32 && e.Cast.ToType == bi.I64:
		op = anvil.ConvI32ToI64
	default:
		op = anvil.ConvF32ToF64
	}
	dst := fb.b.NewReg(e.Cast.ToType)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrConvert, Dst: dst, Type: e.Cast.ToType, Span: e.Span, Convert: anvil.ConvertInstr{Op: op, Value: v}})
	return anvil.RegValue(dst, e.Cast.ToType)
}

func (fb *funcLower) lowerBox(e *ast.Expr) anvil.Value {
	v := fb.lowerExpr(e.Box)
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrBox, Dst: dst, Type: e.Type, Span: e.Span, Box: anvil.BoxInstr{Primitive: e.Box.Type, Value: v}})
	return anvil.RegValue(dst, e.Type)
}

func (fb *funcLower) lowerUnbox(e *ast.Expr) anvil.Value {
	v := fb.lowerExpr(e.Unbox.Value)
	dst := fb.b.NewReg(e.Unbox.Primitive)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrUnbox, Dst: dst, Type: e.Unbox.Primitive, Span: e.Span,
		Unbox: anvil.UnboxInstr{Class: e.Unbox.Class, Primitive: e.Unbox.Primitive, Value: v}})
	return anvil.RegValue(dst, e.Unbox.Primitive)
}

func (fb *funcLower) lowerIsInstance(e *ast.Expr) anvil.Value {
	v := fb.lowerExpr(e.IsInstance.Value)
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrIsInstance, Dst: dst, Type: e.Type, Span: e.Span,
		IsInstance: anvil.IsInstanceInstr{Value: v, Class: e.IsInstance.Class}})
	return anvil.RegValue(dst, e.Type)
}

func (fb *funcLower) lowerNew(e *ast.Expr) anvil.Value {
	args := make([]anvil.Value, len(e.New.Args))
	for i, a := range e.New.Args {
		args[i] = fb.lowerExpr(a)
	}
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrNew, Dst: dst, Type: e.Type, Span: e.Span, New: anvil.NewInstr{Class: e.New.Class, Args: args}})
	return anvil.RegValue(dst, e.Type)
}

// lowerStringLit lowers a (possibly interpolated) string literal:
// literal segments become const_string, embedded expressions are
// stringified via a virtual to_string call, and every segment is
// concatenated left to right via runtime_call(string_concat) (spec
// §4.D string interpolation).
func (fb *funcLower) lowerStringLit(e *ast.Expr) anvil.Value {
	if len(e.Interp) == 0 {
		return fb.emitConst(anvil.ConstString, anvil.Value{Kind: anvil.ValConstString, Type: e.Type, StringVal: fb.l.strings.Intern(e.StringVal)}, e.Type, e.Span)
	}
	var acc anvil.Value
	for i, seg := range e.Interp {
		var part anvil.Value
		if seg.Expr == nil {
			part = fb.emitConst(anvil.ConstString, anvil.Value{Kind: anvil.ValConstString, Type: e.Type, StringVal: fb.l.strings.Intern(seg.Literal)}, e.Type, e.Span)
		} else {
			part = fb.lowerToString(seg.Expr, e.Type)
		}
		if i == 0 {
			acc = part
			continue
		}
		dst := fb.b.NewReg(e.Type)
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: dst, Type: e.Type, Span: e.Span,
			RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeStringConcat, Args: []anvil.Value{acc, part}}})
		acc = anvil.RegValue(dst, e.Type)
	}
	return acc
}

// lowerToString lowers the to_string virtual-call conversion of a single
// interpolation segment. stringTy is the enclosing string literal's
// canonical type, reused so every concatenated segment shares one Type.
func (fb *funcLower) lowerToString(e *ast.Expr, stringTy types.TypeID) anvil.Value {
	v := fb.lowerExpr(e)
	class := fb.l.types.ErasedClass(e.Type)
	nameID := fb.l.strings.Intern("to_string")
	if m, ok := fb.l.types.LookupMethod(class, nameID, 0); ok {
		dst := fb.b.NewReg(stringTy)
		fb.b.Emit(anvil.Instr{Kind: anvil.InstrCall, Dst: dst, Type: stringTy, Span: e.Span, Call: anvil.CallInstr{
			Kind: anvil.CallVirtual, HasReceiver: true, Receiver: v, Class: class, VTableSlot: m.VTableSlot, Name: nameID,
		}})
		return anvil.RegValue(dst, stringTy)
	}
	dst := fb.b.NewReg(stringTy)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: dst, Type: stringTy, Span: e.Span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeStringNew, Args: []anvil.Value{v}}})
	return anvil.RegValue(dst, stringTy)
}

func (fb *funcLower) lowerAwaitSync(e *ast.Expr) anvil.Value {
	// Reached only when `await` appears outside an async function body
	// (inside one, lowerExpr routes ExprAwait to lowerAwaitSuspend
	// instead); lowered as a direct blocking runtime_call(future_value).
	v := fb.lowerExpr(e.Await)
	dst := fb.b.NewReg(e.Type)
	fb.b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: dst, Type: e.Type, Span: e.Span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeFutureValue, Args: []anvil.Value{v}}})
	return anvil.RegValue(dst, e.Type)
}
