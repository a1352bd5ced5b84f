package lower

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/source"
	"ember/internal/types"
)

// synthesizeSerialization builds to_json/from_json for a class declared
// `serializable: json` (spec §4.D Serialization): "Classes with the
// serializable: json policy get two synthetic methods in (D)". The
// method-table entries themselves were already installed by
// preRegisterJSONMethods during assignFuncRefs, so a call site processed
// earlier in program order could already resolve them; this pass only
// fills in their bodies.
func (l *Lowerer) synthesizeSerialization(cd *ast.ClassDecl) {
	classID := l.res.ClassByName[cd.Name]
	info, ok := l.types.ClassInfo(classID)
	if !ok {
		return
	}
	strTy := l.stringType()
	l.lowerToJSON(cd, classID, info, strTy)
	l.lowerFromJSON(cd, classID, info, strTy)
}

// jsonKey renders field's JSON object key: the @json(name:) override if
// one was declared, else the field's own name, NFC-normalized so a
// composed and a decomposed spelling of the same identifier round-trip
// through to_json/from_json identically.
func jsonKey(l *Lowerer, info *types.ClassInfo, field types.FieldSlot) string {
	name := field.Name
	if override, ok := info.JSONNames[field.Name]; ok {
		name = override
	}
	return norm.NFC.String(l.strings.MustLookup(name))
}

// lowerToJSON builds `to_json(self) -> String`: fields are traversed in
// declaration order (spec §4.D), each rendered as `"key":value` and
// joined with commas between `{` and `}`. Nested serializable-class
// fields recurse through their own to_json; string fields are quoted
// via RuntimeJSONEncodeString; everything else falls back to the same
// to_string-or-RuntimeStringNew strategy string interpolation uses.
func (l *Lowerer) lowerToJSON(cd *ast.ClassDecl, classID types.TypeID, info *types.ClassInfo, strTy types.TypeID) {
	b := anvil.NewFunc(funcDisplayName(cd.Name, "to_json"), cd.Span, strTy, anvil.FuncFlags(0))
	this := b.AddParam("this", classID, cd.Span)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	thisReg := b.NewReg(classID)
	b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: thisReg, Type: classID, Span: cd.Span, LoadLocal: anvil.LoadLocalInstr{Local: this}})
	thisVal := anvil.RegValue(thisReg, classID)

	acc := l.constStringVal(b, strTy, "{", cd.Span)
	for i, field := range info.Fields {
		prefix := fmt.Sprintf(`"%s":`, jsonKey(l, info, field))
		if i > 0 {
			prefix = "," + prefix
		}
		acc = concatString(b, strTy, acc, l.constStringVal(b, strTy, prefix, cd.Span), cd.Span)

		fieldReg := b.NewReg(field.Type)
		b.Emit(anvil.Instr{Kind: anvil.InstrGetField, Dst: fieldReg, Type: field.Type, Span: cd.Span,
			GetField: anvil.GetFieldInstr{Class: classID, Recv: thisVal, Slot: i}})
		fieldVal := anvil.RegValue(fieldReg, field.Type)

		acc = concatString(b, strTy, acc, l.encodeJSONValue(b, fieldVal, strTy, cd.Span), cd.Span)
	}
	acc = concatString(b, strTy, acc, l.constStringVal(b, strTy, "}", cd.Span), cd.Span)

	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: acc}})

	ref := l.funcRefFor(classID, "to_json", 0)
	l.module.AddFuncWithRef(b.Finish(), ref)
}

// encodeJSONValue renders one field's runtime value as JSON text:
// recursing into a nested serializable class's own to_json, quoting a
// string field, or falling back to the same to_string-or-RuntimeStringNew
// strategy lowerToString uses for an interpolated primitive.
func (l *Lowerer) encodeJSONValue(b *anvil.FuncBuilder, v anvil.Value, strTy types.TypeID, span source.Span) anvil.Value {
	erased := l.types.ErasedClass(v.Type)
	if erased == l.strClass {
		dst := b.NewReg(strTy)
		b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: dst, Type: strTy, Span: span,
			RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeJSONEncodeString, Args: []anvil.Value{v}}})
		return anvil.RegValue(dst, strTy)
	}
	if toJSON, ok := l.types.LookupMethod(erased, l.strings.Intern("to_json"), 0); ok {
		dst := b.NewReg(strTy)
		b.Emit(anvil.Instr{Kind: anvil.InstrCall, Dst: dst, Type: strTy, Span: span, Call: anvil.CallInstr{
			Kind: anvil.CallStatic, HasReceiver: true, Receiver: v, Class: erased, Method: toJSON.Body, Name: toJSON.Name,
		}})
		return anvil.RegValue(dst, strTy)
	}
	nameID := l.strings.Intern("to_string")
	if toString, ok := l.types.LookupMethod(erased, nameID, 0); ok {
		dst := b.NewReg(strTy)
		b.Emit(anvil.Instr{Kind: anvil.InstrCall, Dst: dst, Type: strTy, Span: span, Call: anvil.CallInstr{
			Kind: anvil.CallVirtual, HasReceiver: true, Receiver: v, Class: erased, VTableSlot: toString.VTableSlot, Name: nameID,
		}})
		return anvil.RegValue(dst, strTy)
	}
	dst := b.NewReg(strTy)
	b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: dst, Type: strTy, Span: span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeStringNew, Args: []anvil.Value{v}}})
	return anvil.RegValue(dst, strTy)
}

// lowerFromJSON builds `from_json(s: String) -> Self`: a fresh instance
// is allocated, each field's raw JSON text is fetched by key via
// RuntimeJSONField (which itself raises SerializationError on a missing
// key or non-object document, per spec §4.D), and decoded either by
// recursing into a nested class's from_json or by RuntimeJSONScalar.
func (l *Lowerer) lowerFromJSON(cd *ast.ClassDecl, classID types.TypeID, info *types.ClassInfo, strTy types.TypeID) {
	b := anvil.NewFunc(funcDisplayName(cd.Name, "from_json"), cd.Span, classID, anvil.FuncFlags(0))
	s := b.AddParam("s", strTy, cd.Span)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)

	sReg := b.NewReg(strTy)
	b.Emit(anvil.Instr{Kind: anvil.InstrLoadLocal, Dst: sReg, Type: strTy, Span: cd.Span, LoadLocal: anvil.LoadLocalInstr{Local: s}})
	sVal := anvil.RegValue(sReg, strTy)

	instReg := b.NewReg(classID)
	b.Emit(anvil.Instr{Kind: anvil.InstrNew, Dst: instReg, Type: classID, Span: cd.Span, New: anvil.NewInstr{Class: classID}})
	inst := anvil.RegValue(instReg, classID)

	for i, field := range info.Fields {
		key := l.constStringVal(b, strTy, jsonKey(l, info, field), cd.Span)
		rawReg := b.NewReg(strTy)
		b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: rawReg, Type: strTy, Span: cd.Span,
			RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeJSONField, Args: []anvil.Value{sVal, key}}})
		raw := anvil.RegValue(rawReg, strTy)

		fieldVal := l.decodeJSONValue(b, raw, field.Type, cd.Span)
		b.Emit(anvil.Instr{Kind: anvil.InstrSetField, Dst: anvil.NoReg, Span: cd.Span,
			SetField: anvil.SetFieldInstr{Class: classID, Recv: inst, Slot: i, Value: fieldVal, NeedsBarrier: isRefType(l.types, field.Type)}})
	}

	b.SetTerm(anvil.Terminator{Kind: anvil.TermRet, Ret: anvil.RetTerm{HasValue: true, Value: inst}})

	ref := l.funcRefFor(classID, "from_json", 1)
	l.module.AddFuncWithRef(b.Finish(), ref)
}

// decodeJSONValue parses raw, a field's still-unparsed JSON text, into a
// value of fieldType: recursing into a nested serializable class's own
// from_json, or else parsing the scalar directly via RuntimeJSONScalar.
func (l *Lowerer) decodeJSONValue(b *anvil.FuncBuilder, raw anvil.Value, fieldType types.TypeID, span source.Span) anvil.Value {
	erased := l.types.ErasedClass(fieldType)
	if fromJSON, ok := l.types.LookupMethod(erased, l.strings.Intern("from_json"), 1); ok {
		dst := b.NewReg(fieldType)
		b.Emit(anvil.Instr{Kind: anvil.InstrCall, Dst: dst, Type: fieldType, Span: span, Call: anvil.CallInstr{
			Kind: anvil.CallStatic, Method: fromJSON.Body, Name: fromJSON.Name, Args: []anvil.Value{raw},
		}})
		return anvil.RegValue(dst, fieldType)
	}
	dst := b.NewReg(fieldType)
	b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: dst, Type: fieldType, Span: span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeJSONScalar, Args: []anvil.Value{raw}}})
	return anvil.RegValue(dst, fieldType)
}

func (l *Lowerer) constStringVal(b *anvil.FuncBuilder, strTy types.TypeID, s string, span source.Span) anvil.Value {
	dst := b.NewReg(strTy)
	b.Emit(anvil.Instr{Kind: anvil.InstrConst, Dst: dst, Type: strTy, Span: span,
		Const: anvil.ConstInstr{Kind: anvil.ConstString, Value: anvil.Value{Kind: anvil.ValConstString, Type: strTy, StringVal: l.strings.Intern(s)}}})
	return anvil.RegValue(dst, strTy)
}

func concatString(b *anvil.FuncBuilder, strTy types.TypeID, lhs, rhs anvil.Value, span source.Span) anvil.Value {
	dst := b.NewReg(strTy)
	b.Emit(anvil.Instr{Kind: anvil.InstrRuntimeCall, Dst: dst, Type: strTy, Span: span,
		RuntimeCall: anvil.RuntimeCallInstr{Symbol: anvil.RuntimeStringConcat, Args: []anvil.Value{lhs, rhs}}})
	return anvil.RegValue(dst, strTy)
}
