package resolve_test

import (
	"testing"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/resolve"
	"ember/internal/source"
	"ember/internal/types"
)

func method(name, receiver string, params []ast.ParamDecl, result types.TypeID) *ast.FuncDecl {
	return &ast.FuncDecl{Name: name, ReceiverClass: receiver, Params: params, Result: result}
}

// TestResolveProgram_DispatchStability is Testable Property 3: "For any
// class C and method m, the v-table slot of m in C equals its slot in
// every subclass that does not redeclare m." Animal declares speak() and
// eat(); Dog overrides speak() and adds bark(); Puppy adds nothing new.
func TestResolveProgram_DispatchStability(t *testing.T) {
	ti := types.NewInterner()
	i32 := ti.Builtins().I32

	animal := &ast.ClassDecl{
		Name: "Animal",
		Methods: []*ast.FuncDecl{
			method("speak", "Animal", nil, i32),
			method("eat", "Animal", nil, i32),
		},
	}
	dog := &ast.ClassDecl{
		Name:       "Dog",
		ParentName: "Animal",
		Methods: []*ast.FuncDecl{
			method("speak", "Dog", nil, i32),
			method("bark", "Dog", nil, i32),
		},
	}
	puppy := &ast.ClassDecl{
		Name:       "Puppy",
		ParentName: "Dog",
	}

	prog := &ast.Program{Classes: []*ast.ClassDecl{animal, dog, puppy}}

	strs := source.NewInterner()
	res, ok := resolve.New(ti, strs, diag.NopReporter{}).ResolveProgram(prog)
	if !ok {
		t.Fatalf("expected resolution to succeed")
	}

	animalID := res.ClassByName["Animal"]
	dogID := res.ClassByName["Dog"]
	puppyID := res.ClassByName["Puppy"]

	speakName := strs.Intern("speak")
	eatName := strs.Intern("eat")
	barkName := strs.Intern("bark")

	animalSpeak, ok := ti.LookupMethod(animalID, speakName, 0)
	if !ok {
		t.Fatalf("Animal.speak not found")
	}
	dogSpeak, ok := ti.LookupMethod(dogID, speakName, 0)
	if !ok {
		t.Fatalf("Dog.speak not found")
	}
	if animalSpeak.VTableSlot != dogSpeak.VTableSlot {
		t.Fatalf("speak v-table slot changed across override: Animal=%d Dog=%d",
			animalSpeak.VTableSlot, dogSpeak.VTableSlot)
	}

	animalEat, ok := ti.LookupMethod(animalID, eatName, 0)
	if !ok {
		t.Fatalf("Animal.eat not found")
	}
	dogEat, ok := ti.LookupMethod(dogID, eatName, 0)
	if !ok {
		t.Fatalf("Dog.eat (inherited) not found")
	}
	if animalEat.VTableSlot != dogEat.VTableSlot {
		t.Fatalf("eat v-table slot changed when not overridden: Animal=%d Dog=%d",
			animalEat.VTableSlot, dogEat.VTableSlot)
	}

	dogBark, ok := ti.LookupMethod(dogID, barkName, 0)
	if !ok {
		t.Fatalf("Dog.bark not found")
	}
	if dogBark.VTableSlot <= dogSpeak.VTableSlot && dogBark.VTableSlot <= dogEat.VTableSlot {
		t.Fatalf("bark should append a new slot past the inherited ones, got %d (speak=%d eat=%d)",
			dogBark.VTableSlot, dogSpeak.VTableSlot, dogEat.VTableSlot)
	}

	// Puppy redeclares nothing: every slot must match Dog's exactly.
	puppySpeak, ok := ti.LookupMethod(puppyID, speakName, 0)
	if !ok || puppySpeak.VTableSlot != dogSpeak.VTableSlot {
		t.Fatalf("Puppy.speak slot drifted from Dog.speak")
	}
	puppyBark, ok := ti.LookupMethod(puppyID, barkName, 0)
	if !ok || puppyBark.VTableSlot != dogBark.VTableSlot {
		t.Fatalf("Puppy.bark slot drifted from Dog.bark")
	}
}

func TestResolveProgram_DuplicateFieldIsFatal(t *testing.T) {
	ti := types.NewInterner()
	i32 := ti.Builtins().I32
	cd := &ast.ClassDecl{
		Name: "Box",
		Fields: []ast.FieldDecl{
			{Name: "value", Type: i32},
			{Name: "value", Type: i32},
		},
	}
	prog := &ast.Program{Classes: []*ast.ClassDecl{cd}}

	bag := diag.NewBag()
	_, ok := resolve.New(ti, source.NewInterner(), bag).ResolveProgram(prog)
	if ok {
		t.Fatalf("expected resolution to fail on a duplicate field name")
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a fatal diagnostic to be reported")
	}
}

func TestResolveProgram_IncompatibleOverrideIsFatal(t *testing.T) {
	ti := types.NewInterner()
	i32 := ti.Builtins().I32
	f64 := ti.Builtins().F64

	base := &ast.ClassDecl{
		Name:    "Shape",
		Methods: []*ast.FuncDecl{method("area", "Shape", nil, i32)},
	}
	derived := &ast.ClassDecl{
		Name:       "Circle",
		ParentName: "Shape",
		// area() returns f64 here, incompatible with Shape.area's i32.
		Methods: []*ast.FuncDecl{method("area", "Circle", nil, f64)},
	}
	prog := &ast.Program{Classes: []*ast.ClassDecl{base, derived}}

	bag := diag.NewBag()
	_, ok := resolve.New(ti, source.NewInterner(), bag).ResolveProgram(prog)
	if ok {
		t.Fatalf("expected resolution to fail on an incompatible override")
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a fatal diagnostic to be reported")
	}
}

func TestResolveProgram_UnknownParentIsFatal(t *testing.T) {
	ti := types.NewInterner()
	cd := &ast.ClassDecl{Name: "Orphan", ParentName: "DoesNotExist"}
	prog := &ast.Program{Classes: []*ast.ClassDecl{cd}}

	bag := diag.NewBag()
	_, ok := resolve.New(ti, source.NewInterner(), bag).ResolveProgram(prog)
	if ok {
		t.Fatalf("expected resolution to fail on an unknown parent class")
	}
}
