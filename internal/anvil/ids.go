// Package anvil implements the Anvil Module (spec component C): the
// in-memory container for Anvil functions, class constants, and the
// string pool, together with the verifier that must pass between the
// AST→Anvil lowerer and the Anvil→LowIR lowerer.
package anvil

// FuncID identifies an Anvil function within a Module.
type FuncID int32

// NoFuncID marks the absence of a function reference.
const NoFuncID FuncID = -1

// BlockID identifies a basic block within a Func.
type BlockID int32

// NoBlockID marks the absence of a block reference.
const NoBlockID BlockID = -1

// RegID identifies a typed virtual register within a Func (spec §3
// Anvil Value: "a typed virtual register produced by an opcode").
type RegID int32

// NoReg marks an instruction that produces no value.
const NoReg RegID = -1

// LocalID identifies a named local slot within a Func, distinct from a
// RegID: locals are read/written by load_local/store_local, while
// registers are the SSA-like values those and other opcodes produce.
type LocalID int32

// NoLocal marks the absence of a local reference.
const NoLocal LocalID = -1

// TryRegionID identifies a try-region within a Func's exception handler
// table.
type TryRegionID int32

// NoTryRegion marks a block that is not inside any try-region.
const NoTryRegion TryRegionID = -1
