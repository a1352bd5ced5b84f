package ast

import (
	"ember/internal/source"
	"ember/internal/types"
)

// ExprKind enumerates every expression shape the middle end must lower.
type ExprKind uint8

const (
	ExprIntLit ExprKind = iota
	ExprFloatLit
	ExprStringLit     // may carry Interp segments for "${...}" interpolation
	ExprBoolLit
	ExprNilLit
	ExprIdent         // resolved by internal/resolve to a Slot
	ExprBinOp
	ExprUnOp
	ExprAssign
	ExprCall          // static/virtual/interface-like/native, disambiguated by resolve
	ExprNew           // `ClassName.new(args)`
	ExprFieldGet
	ExprFieldSet
	ExprIndexGet
	ExprIndexSet
	ExprArrayLit
	ExprHashLit
	ExprTupleLit
	ExprRangeLit
	ExprBlockLit      // closure / `do |x|: ...` literal
	ExprAwait
	ExprCast          // explicit conversion: i_to_f, f_to_i, i32_to_i64, f32_to_f64
	ExprBox
	ExprUnbox
	ExprIsInstance    // runtime `is` type test, used by match/cast guards
	ExprMatch         // pattern-match expression
	ExprThis
)

// BinOp enumerates binary operators. Per spec §4.D, arithmetic/comparison
// opcodes are selected per the canonical Type of the operands; BinOp here
// names the source-level operator, and internal/lower picks the
// primitive-specific Anvil opcode.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd // short-circuit &&
	OpOr  // short-circuit ||
)

// UnOp enumerates unary operators.
type UnOp uint8

const (
	OpNeg UnOp = iota
	OpNot
	OpBitNot
)

// CallKind distinguishes the call forms the resolver disambiguates into
// (spec §4.D object-model opcodes).
type CallKind uint8

const (
	CallStatic CallKind = iota
	CallVirtual
	CallInterfaceLike
	CallNative
)

// InterpSegment is one piece of a `"…${e}…"` interpolated string literal
// (spec §4.D string interpolation): either literal text or an embedded
// expression to be `to_string`-ed, in left-to-right evaluation order.
type InterpSegment struct {
	Literal string // used when Expr == nil
	Expr    *Expr  // used when non-nil; Literal is ignored
}

// CatchClause is one `catch e: T:` arm of a try statement (spec §4.D
// exceptions).
type CatchClause struct {
	VarName   string
	VarSlot   SlotID
	ClassType types.TypeID
	Body      *Block
	Span      source.Span
}

// MatchArm is one arm of a `match` expression/statement. GuardClass is
// the pattern's class type (NoTypeID for a wildcard/default arm); Guard
// is an optional boolean condition expression.
type MatchArm struct {
	GuardClass types.TypeID
	BindName   string
	BindSlot   SlotID
	Guard      *Expr
	Body       *Expr
	Span       source.Span
}

// Expr is a single typed expression node. Every node carries its
// canonical Type, per spec §6's input-contract requirement. The payload
// fields mirror the teacher's kind-tagged-union discipline (one struct
// field per Kind, only the selected one populated).
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span

	IntVal    int64
	FloatVal  float64
	StringVal string
	BoolVal   bool
	Interp    []InterpSegment

	Ident Ident

	BinOp    BinOp
	UnOp     UnOp
	Lhs, Rhs *Expr // BinOp/Assign operands; Rhs nil for UnOp/Cast/Box/Unbox/Await

	Assign AssignExpr
	Call   CallExpr
	New    NewExpr

	FieldGet FieldGetExpr
	FieldSet FieldSetExpr
	IndexGet IndexGetExpr
	IndexSet IndexSetExpr

	Elems []*Expr // ArrayLit/TupleLit elements
	Hash  []HashEntry

	RangeLit RangeLitExpr
	BlockLit BlockLitExpr

	Await *Expr
	Cast  CastExpr
	Box   *Expr
	Unbox UnboxExpr

	IsInstance IsInstanceExpr
	Match      MatchExpr
}

// Ident is a resolved identifier reference. Slot is assigned by
// internal/resolve (spec §6: "every identifier reference points to a
// resolver-assigned slot").
type Ident struct {
	Name string
	Slot SlotID
}

// SlotID identifies a resolver-assigned local/parameter/capture-cell
// slot. Defined here (not in internal/resolve) so ast has no dependency
// on the resolver package; internal/resolve is the only writer.
type SlotID uint32

// NoSlot marks an identifier not yet resolved to a slot.
const NoSlot SlotID = 0

// AssignExpr is `target = value`.
type AssignExpr struct {
	Target *Expr
	Value  *Expr
}

// CallExpr is a function/method invocation. Kind is filled in by
// internal/resolve once it knows the callee's DispatchMode.
type CallExpr struct {
	Kind      CallKind
	Receiver  *Expr // nil for free-function/static calls
	Callee    string
	CalleeRef types.FuncRef // resolved body reference, once known
	Args      []*Expr
}

// NewExpr is `ClassName.new(args)`.
type NewExpr struct {
	Class types.TypeID
	Args  []*Expr
}

// FieldGetExpr is `recv.field`.
type FieldGetExpr struct {
	Recv      *Expr
	FieldName string
	FieldIdx  int // resolved slot index, -1 until resolve runs
}

// FieldSetExpr is `recv.field = value`.
type FieldSetExpr struct {
	Recv      *Expr
	FieldName string
	FieldIdx  int
	Value     *Expr
}

// IndexGetExpr is `arr[idx]` / `hash[key]`.
type IndexGetExpr struct {
	Recv  *Expr
	Index *Expr
}

// IndexSetExpr is `arr[idx] = value` / `hash[key] = value`.
type IndexSetExpr struct {
	Recv  *Expr
	Index *Expr
	Value *Expr
}

// HashEntry is one `key: value` pair of a hash literal.
type HashEntry struct {
	Key   *Expr
	Value *Expr
}

// RangeLitExpr is `start..end` (optionally `..=` inclusive, or stepped).
type RangeLitExpr struct {
	Start     *Expr
	End       *Expr
	Step      *Expr // nil for default step 1
	Inclusive bool
}

// BlockLitExpr is a closure / `do |x|: ...` literal (spec §4.D closures).
// Captures, ParamSlots, and SlotTypes are populated by internal/resolve's
// closure-capture analysis; the block literal's body has its own local-slot
// numbering space, separate from its enclosing function's, so it carries
// its own slot map rather than sharing one keyed by NodeID.
type BlockLitExpr struct {
	Params     []ParamDecl
	Body       *Block
	Captures   []Capture
	ParamSlots []SlotID
	NumSlots   int
	SlotTypes  map[SlotID]types.TypeID
}

// Capture is one free variable closed over by a block literal, with its
// resolver-assigned classification (spec §4.B: by-copy for immutable
// primitives, by-cell for mutables and reference types). Slot is where the
// value lives in the *enclosing* function; InnerSlot is the separate slot
// the block literal's own body reads it through.
type Capture struct {
	Name      string
	Slot      SlotID
	InnerSlot SlotID
	Type      types.TypeID
	Mode      CaptureMode
}

// CaptureMode classifies how a captured variable is represented.
type CaptureMode uint8

const (
	CaptureByCopy CaptureMode = iota
	CaptureByCell
)

// CastExpr is an explicit, never-implicit conversion (spec §4.D
// Conversions): i_to_f, f_to_i (truncating), i32_to_i64 (sign-extended),
// f32_to_f64. ToType determines which opcode internal/lower selects.
type CastExpr struct {
	Value  *Expr
	ToType types.TypeID
}

// UnboxExpr is `unbox(class, primitive)`.
type UnboxExpr struct {
	Value     *Expr
	Class     types.TypeID
	Primitive types.TypeID
}

// IsInstanceExpr is a runtime class-type test.
type IsInstanceExpr struct {
	Value *Expr
	Class types.TypeID
}

// MatchExpr is a `match` expression; lowering to a decision tree of
// `switch`/`cond_jump` is internal/lower's job (spec §4.D pattern
// matching, top-to-bottom textual tie-break order).
type MatchExpr struct {
	Subject *Expr
	Arms    []MatchArm
}
