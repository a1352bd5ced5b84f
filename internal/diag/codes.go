package diag

import "fmt"

// Code identifies the precise diagnostic kind. Ranges group by the
// compiler error kinds from spec §7: 1000s are input-contract violations,
// 2000s are unsupported-construct diagnostics, 3000s are internal
// invariant violations (verifier failures), 4000s are runtime error
// descriptors reflected into the IR for documentation purposes.
type Code uint16

const (
	UnknownCode Code = 0

	// Input-contract violations (ill-typed AST handed to the middle end).
	ContractInfo              Code = 1000
	ContractMissingType       Code = 1001
	ContractUnresolvedIdent   Code = 1002
	ContractDuplicateField    Code = 1003
	ContractIncompatibleOverride Code = 1004
	ContractAmbiguousMethod   Code = 1005
	ContractBadClassHierarchy Code = 1006

	// Unsupported language constructs (valid AST, not-yet-lowerable).
	UnsupportedInfo    Code = 2000
	UnsupportedConstruct Code = 2001
	UnsupportedOpcode  Code = 2002

	// Internal invariant violations (verifier failures / compiler bugs).
	InternalInfo         Code = 3000
	InternalBadTerminator Code = 3001
	InternalUseBeforeDef  Code = 3002
	InternalBadTryRegion  Code = 3003
	InternalBadSuspend    Code = 3004
	InternalBadDispatch   Code = 3005
	InternalBadFFI        Code = 3006
	InternalTypeMismatch  Code = 3007

	// Runtime error descriptors reflected into the IR (documentation only;
	// the middle end emits traps/throws for these, it never evaluates them).
	RuntimeDivisionByZero  Code = 4000
	RuntimeIndexOutOfBounds Code = 4001
	RuntimeNullReference    Code = 4002
	RuntimeMatchError       Code = 4003
	RuntimeSerializationError Code = 4004
)

// String renders a short machine-stable label, e.g. "E3001".
func (c Code) String() string {
	switch {
	case c == UnknownCode:
		return "E0000"
	case c < 2000:
		return fmt.Sprintf("E%04d", c)
	default:
		return fmt.Sprintf("E%04d", c)
	}
}
