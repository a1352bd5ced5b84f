package lowir

// FuncID identifies a function within a Module.
type FuncID int32

// NoFuncID marks the absence of a function reference.
const NoFuncID FuncID = -1

// BlockID identifies a basic block within a Func.
type BlockID int32

// NoBlockID marks the absence of a block reference.
const NoBlockID BlockID = -1

// RegID identifies a virtual register within a Func.
type RegID int32

// NoReg marks an instruction that produces no value.
const NoReg RegID = -1

// LocalID identifies a named local slot within a Func, carried over
// unchanged from Anvil's own Local/LocalID split between named frame
// slots and SSA-like registers.
type LocalID int32

// NoLocal marks the absence of a local reference.
const NoLocal LocalID = -1

// ConstID identifies an entry of the module-level constant pool (spec
// §4.E: "a module-level constant pool for strings and class
// descriptors").
type ConstID int32

// NoConstID marks the absence of a constant-pool reference.
const NoConstID ConstID = -1
