package ast

import (
	"ember/internal/source"
	"ember/internal/types"
)

// Program is the root of one compilation unit's typed AST (spec §1:
// "consumes a single source file").
type Program struct {
	File    FileID
	Classes []*ClassDecl
	Funcs   []*FuncDecl
	Globals []*VarDecl
}

// ClassDecl is a fully elaborated class hierarchy node (spec §6). Field
// and method types are already canonical TypeIDs; inheritance is
// expressed by ParentName, resolved to a TypeID by internal/resolve.
type ClassDecl struct {
	ID            NodeID
	Name          string
	ParentName    string // "" if no parent
	GenericParams []string
	Fields        []FieldDecl
	Methods       []*FuncDecl
	Layout        types.LayoutKind
	Serializable  types.SerializationPolicy
	JSONNames     map[string]string // field name -> @json(name:) override
	NativeLibrary bool
	LibraryPaths  []string // per-platform paths, only if NativeLibrary
	Span          source.Span
}

// FieldDecl is one field of a class, with its canonical type already
// attached.
type FieldDecl struct {
	Name string
	Type types.TypeID
	Span source.Span
}

// ParamDecl is one function parameter.
type ParamDecl struct {
	Name       string
	Type       types.TypeID
	Ownership  Ownership
	HasDefault bool
	Default    *Expr
	Span       source.Span
}

// Ownership mirrors spec §4.D ownership qualifiers consulted by the
// closure-capture analysis (by-copy for immutable primitives, by-cell for
// mutables and reference types).
type Ownership uint8

const (
	OwnDefault Ownership = iota
	OwnMut
	OwnOwn
	OwnRef
)

// GenericParam is one generic type parameter with its contract/trait
// bounds already resolved to TypeIDs.
type GenericParam struct {
	Name   string
	Bounds []types.TypeID
	Span   source.Span
}

// FuncFlags are function modifiers, mirrored from spec §4.D's lowering
// contracts: async, native/FFI, entrypoint, intrinsic, and override.
// There is no generator flag; generators are inferred from a `yield` in
// Body (see IsGenerator).
type FuncFlags uint32

const (
	FuncAsync FuncFlags = 1 << iota
	FuncNative
	FuncEntrypoint
	FuncIntrinsic
	FuncOverride
)

func (f FuncFlags) Has(flag FuncFlags) bool { return f&flag != 0 }

// FuncDecl is a fully typed function or method declaration.
type FuncDecl struct {
	ID            NodeID
	Name          string
	ReceiverClass string // "" for free functions
	GenericParams []GenericParam
	Params        []ParamDecl
	Result        types.TypeID
	ThrowsSet     []types.TypeID
	Flags         FuncFlags
	Body          *Block // nil for intrinsics/native declarations
	Span          source.Span
}

// IsAsync reports whether f is declared async.
func (f *FuncDecl) IsAsync() bool { return f.Flags.Has(FuncAsync) }

// IsNative reports whether f is an `@native` FFI method.
func (f *FuncDecl) IsNative() bool { return f.Flags.Has(FuncNative) }

// IsGeneric reports whether f declares its own generic parameters.
func (f *FuncDecl) IsGeneric() bool { return len(f.GenericParams) > 0 }

// IsGenerator reports whether f's body contains a `yield`, per spec
// §4.D's generator-lowering trigger (computed, not flagged, since the
// source language has no separate generator keyword).
func (f *FuncDecl) IsGenerator() bool {
	return f.Body != nil && blockContainsYield(f.Body)
}

// VarDecl is a top-level `let` binding.
type VarDecl struct {
	Name  string
	Type  types.TypeID
	Value *Expr // nil if uninitialized
	IsMut bool
	Span  source.Span
}
