package layout

import (
	"fmt"
	"strings"

	"ember/internal/types"
)

// ErrorKind classifies a layout computation failure.
type ErrorKind uint8

const (
	ErrRecursiveUnsized ErrorKind = iota
	ErrUnknownType
)

// Error reports a layout failure, including the cycle of types involved
// for ErrRecursiveUnsized (an `object` field cycle through `struct`,
// `packed`, or `union` layout kinds with no indirection to break it).
type Error struct {
	Kind  ErrorKind
	Type  types.TypeID
	Cycle []types.TypeID
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrRecursiveUnsized:
		parts := make([]string, len(e.Cycle))
		for i, t := range e.Cycle {
			parts[i] = fmt.Sprintf("#%d", t)
		}
		return fmt.Sprintf("layout: recursive unsized type cycle: %s", strings.Join(parts, " -> "))
	default:
		return fmt.Sprintf("layout: unknown type #%d", e.Type)
	}
}
