package lower_test

import (
	"testing"

	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/lower"
	"ember/internal/resolve"
	"ember/internal/source"
	"ember/internal/types"
)

func newFixture() (*types.Interner, *source.Interner) {
	return types.NewInterner(), source.NewInterner()
}

func resolveAndLower(t *testing.T, prog *ast.Program, ti *types.Interner, strs *source.Interner) *anvil.Module {
	t.Helper()
	res, ok := resolve.New(ti, strs, nil).ResolveProgram(prog)
	if !ok {
		t.Fatalf("resolve reported a fatal error")
	}
	mod, _, ok := lower.New(res, nil).LowerProgram(prog)
	if !ok {
		t.Fatalf("lower reported a fatal error")
	}
	if err := anvil.Verify(mod); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	return mod
}

func ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdent, Ident: ast.Ident{Name: name}}
}

// add(a, b) -> f64 { return a + b }
func TestLowerProgram_PlainFunctionAddsAndReturns(t *testing.T) {
	ti, strs := newFixture()
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
	prog := &ast.Program{Funcs: []*ast.FuncDecl{fd}}

	mod := resolveAndLower(t, prog, ti, strs)
	if _, ok := mod.FuncByName("add"); !ok {
		t.Fatalf("expected a lowered function named %q", "add")
	}
}

// Point{x, y: f64}, serializable: json. Checks to_json/from_json are
// synthesized, registered under the right arity, and verify cleanly.
func TestLowerProgram_JSONSerializationSynthesizesRoundTripMethods(t *testing.T) {
	ti, strs := newFixture()
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
	prog := &ast.Program{Classes: []*ast.ClassDecl{cd}}

	mod := resolveAndLower(t, prog, ti, strs)
	if _, ok := mod.FuncByName("Point.to_json"); !ok {
		t.Fatalf("expected a synthesized Point.to_json")
	}
	if _, ok := mod.FuncByName("Point.from_json"); !ok {
		t.Fatalf("expected a synthesized Point.from_json")
	}
}

// A @json(name:) override on a field does not stop the serialization
// methods from being synthesized.
func TestLowerProgram_JSONNameOverrideDoesNotPreventSynthesis(t *testing.T) {
	ti, strs := newFixture()
	f64 := ti.Builtins().F64

	cd := &ast.ClassDecl{
		Name:         "Point",
		Fields:       []ast.FieldDecl{{Name: "x", Type: f64}},
		JSONNames:    map[string]string{"x": "x_coord"},
		Layout:       types.LayoutObject,
		Serializable: types.SerializationJSON,
	}
	prog := &ast.Program{Classes: []*ast.ClassDecl{cd}}

	mod := resolveAndLower(t, prog, ti, strs)
	if _, ok := mod.FuncByName("Point.to_json"); !ok {
		t.Fatalf("expected Point.to_json to exist with a @json(name:) override in play")
	}
}

// fetch() async -> i32 { return 1 } wraps its result in a Future and
// builds a resume() state machine driven once at entry.
func TestLowerProgram_AsyncFunctionWrapsResultInFuture(t *testing.T) {
	ti, strs := newFixture()
	i32 := ti.Builtins().I32

	fd := &ast.FuncDecl{
		Name:   "fetch",
		Result: i32,
		Flags:  ast.FuncAsync,
		Body: &ast.Block{Stmts: []*ast.Stmt{
			{Kind: ast.StmtReturn, Return: ast.ReturnStmt{HasValue: true, Value: &ast.Expr{
				Kind: ast.ExprIntLit, Type: i32, IntVal: 1,
			}}},
		}},
	}
	prog := &ast.Program{Funcs: []*ast.FuncDecl{fd}}

	mod := resolveAndLower(t, prog, ti, strs)
	f, ok := mod.FuncByName("fetch")
	if !ok {
		t.Fatalf("expected a lowered outer function named %q", "fetch")
	}
	futureTy := ti.RegisterFuture(i32)
	if f.Result != futureTy {
		t.Fatalf("expected fetch's result to be Future<i32>, got %v", f.Result)
	}
}

// An @native method on a NativeLibrary class lowers to a thunk that
// loads the library and resolves its own symbol.
func TestLowerProgram_NativeMethodLowersToFFIThunk(t *testing.T) {
	ti, strs := newFixture()
	i32 := ti.Builtins().I32

	cd := &ast.ClassDecl{
		Name:          "Libc",
		Layout:        types.LayoutObject,
		NativeLibrary: true,
		LibraryPaths:  []string{"libc.so.6"},
		Methods: []*ast.FuncDecl{
			{Name: "getpid", ReceiverClass: "Libc", Result: i32, Flags: ast.FuncNative},
		},
	}
	prog := &ast.Program{Classes: []*ast.ClassDecl{cd}}

	mod := resolveAndLower(t, prog, ti, strs)
	f, ok := mod.FuncByName("Libc.getpid")
	if !ok {
		t.Fatalf("expected a lowered native thunk named %q", "Libc.getpid")
	}
	if f.Flags&anvil.FuncFlagNative == 0 {
		t.Fatalf("expected the thunk to carry FuncFlagNative")
	}
}

// A NativeLibrary class declaring no library paths is a fatal error
// (lowerFFIClass's own validation, distinct from resolve's FFI binding
// bookkeeping).
func TestLowerProgram_NativeLibraryWithNoPathsFails(t *testing.T) {
	ti, strs := newFixture()

	cd := &ast.ClassDecl{
		Name:          "Empty",
		Layout:        types.LayoutObject,
		NativeLibrary: true,
	}
	prog := &ast.Program{Classes: []*ast.ClassDecl{cd}}

	res, ok := resolve.New(ti, strs, nil).ResolveProgram(prog)
	if !ok {
		t.Fatalf("resolve reported a fatal error")
	}
	_, _, ok = lower.New(res, nil).LowerProgram(prog)
	if ok {
		t.Fatalf("expected lowering to report a fatal error for an empty library path list")
	}
}
