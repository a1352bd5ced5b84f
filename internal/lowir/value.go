package lowir

import "ember/internal/runtimeabi"

// ValueForm distinguishes an operand that reads a register from the
// constant forms that survive Anvil's richer constant vocabulary once
// classes/strings are flattened into constant-pool references.
type ValueForm uint8

const (
	ValReg ValueForm = iota
	ValConstInt
	ValConstFloat
	ValConstDouble
	ValConstBool
	ValConstPool // a string, class-descriptor or function-pointer entry, by ConstID
	ValConstNull
)

// Value is a Low IR operand: a register read, or one of the constant
// forms above. Kind is always populated with the operand's machine-level
// type, the same vocabulary internal/runtimeabi declares for runtime ABI
// signatures (spec §3: "pointer-sized integer, float, double, i1, i8,
// i32, i64, and opaque object-pointer").
type Value struct {
	Form ValueForm
	Kind runtimeabi.Kind

	Reg RegID

	IntVal    int64
	FloatVal  float32
	DoubleVal float64
	BoolVal   bool
	Pool      ConstID
}

// RegValue builds an operand referencing register r of machine kind k.
func RegValue(r RegID, k runtimeabi.Kind) Value {
	return Value{Form: ValReg, Kind: k, Reg: r}
}

// NullValue builds the null/nil opaque-pointer constant.
func NullValue() Value {
	return Value{Form: ValConstNull, Kind: runtimeabi.KindWord}
}
