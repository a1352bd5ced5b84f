package anvil

import (
	"ember/internal/source"
	"ember/internal/types"
)

// ValueKind distinguishes an operand that reads a register from one of
// the constant forms enumerated in spec §3 ("Also: constants (int,
// float, string interned index, nil), class handle constants, method
// handle constants").
type ValueKind uint8

const (
	ValReg ValueKind = iota
	ValConstInt
	ValConstFloat
	ValConstDouble
	ValConstString
	ValConstNil
	ValConstBool
	ValConstClass
	ValConstMethod
)

// Value is an Anvil operand: a reference to a previously defined
// register, or one of the constant forms. Type is always populated,
// supporting the type-preservation testable property (spec §8.1).
type Value struct {
	Kind ValueKind
	Type types.TypeID

	Reg RegID

	IntVal    int64
	FloatVal  float32
	DoubleVal float64
	BoolVal   bool
	StringVal source.StringID

	ClassVal  types.TypeID
	MethodVal types.FuncRef
}

// RegValue builds an operand referencing register r of type t.
func RegValue(r RegID, t types.TypeID) Value {
	return Value{Kind: ValReg, Type: t, Reg: r}
}
