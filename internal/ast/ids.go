// Package ast defines the typed-AST input contract the middle end
// consumes (spec §6): "a typed AST with explicit types on every
// expression node, resolved names, and fully elaborated class
// hierarchies." The lexer, parser, and semantic analyzer that produce
// this tree are out-of-scope external collaborators (spec §1); this
// package only shapes the contract they satisfy, closely modeled on the
// teacher's own AST/HIR node shapes so the middle end can be driven by
// hand-built fixtures and tests without them.
package ast

import "ember/internal/source"

// NodeID uniquely identifies a declaration node (class, function,
// parameter, local) across the tree, independent of the resolver's
// SlotID/ClassID handles assigned later.
type NodeID uint32

// NoNodeID marks the absence of a node reference.
const NoNodeID NodeID = 0

// FileID links a Program back to the source file it was parsed from.
type FileID = source.FileID
