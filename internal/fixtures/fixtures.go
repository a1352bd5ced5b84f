// Package fixtures builds small hand-written typed-AST programs, playing
// the part of the lexer/parser/semantic analyzer that a real ember.toml
// project would normally front the middle end with (those stages are
// out-of-scope external collaborators). emberc's build/dump/verify
// commands select one of these by name so the pipeline can be exercised
// end to end without a text frontend.
package fixtures

import (
	"fmt"
	"sort"

	"ember/internal/ast"
	"ember/internal/source"
	"ember/internal/types"
)

// Program bundles a fixture's AST with the Type Context and string pool
// it was built against, since TypeIDs are only meaningful relative to
// the interner that minted them.
type Program struct {
	Name    string
	AST     *ast.Program
	Types   *types.Interner
	Strings *source.Interner
}

type builderFunc func() Program

var registry = map[string]builderFunc{
	"add":   buildAdd,
	"point": buildPoint,
}

// Names returns every registered fixture name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the named fixture, or an error naming every valid
// choice if name is unknown.
func Build(name string) (Program, error) {
	fn, ok := registry[name]
	if !ok {
		return Program{}, fmt.Errorf("unknown fixture %q (available: %v)", name, Names())
	}
	return fn(), nil
}

func ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdent, Ident: ast.Ident{Name: name}}
}

// buildAdd is a single top-level function: add(a, b) -> f64 { return a + b }
func buildAdd() Program {
	ti := types.NewInterner()
	f64 := ti.Builtins().F64

	fd := &ast.FuncDecl{
		Name:   "add",
		Params: []ast.ParamDecl{{Name: "a", Type: f64}, {Name: "b", Type: f64}},
		Result: f64,
		Body: &ast.Block{Stmts: []*ast.Stmt{
			{Kind: ast.StmtReturn, Return: ast.ReturnStmt{HasValue: true, Value: &ast.Expr{
				Kind: ast.ExprBinOp, Type: f64, BinOp: ast.OpAdd, Lhs: ident("a"), Rhs: ident("b"),
			}}},
		}},
	}
	return Program{
		Name:    "add",
		AST:     &ast.Program{Funcs: []*ast.FuncDecl{fd}},
		Types:   ti,
		Strings: source.NewInterner(),
	}
}

// buildPoint is a JSON-serializable class with two f64 fields, exercising
// class layout and the synthesized to_json/from_json methods. Resolver
// assigns Point's TypeID as part of ResolveProgram, so this fixture
// (unlike buildAdd) has nothing that needs to reference it by TypeID
// ahead of time.
func buildPoint() Program {
	ti := types.NewInterner()
	f64 := ti.Builtins().F64

	cd := &ast.ClassDecl{
		Name: "Point",
		Fields: []ast.FieldDecl{
			{Name: "x", Type: f64},
			{Name: "y", Type: f64},
		},
		Layout:       types.LayoutObject,
		Serializable: types.SerializationJSON,
	}

	return Program{
		Name:    "point",
		AST:     &ast.Program{Classes: []*ast.ClassDecl{cd}},
		Types:   ti,
		Strings: source.NewInterner(),
	}
}
