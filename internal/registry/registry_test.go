package registry

import (
	"testing"

	"github.com/udonc/udonc/internal/ast"
)

func classDecl(name, base string, methods ...*ast.FunctionDecl) *ast.ClassDecl {
	return &ast.ClassDecl{Name: name, BaseClass: base, Methods: methods}
}

func TestHierarchyWalksToRoot(t *testing.T) {
	r := NewClassRegistry()
	r.Register(classDecl("Animal", ""))
	r.Register(classDecl("Dog", "Animal"))
	r.Register(classDecl("Puppy", "Dog"))

	chain := r.Hierarchy("Puppy")
	if len(chain) != 3 {
		t.Fatalf("expected 3-entry chain, got %d", len(chain))
	}
	if chain[0].Decl.Name != "Puppy" || chain[1].Decl.Name != "Dog" || chain[2].Decl.Name != "Animal" {
		t.Fatalf("unexpected chain order: %v", chain)
	}
}

func TestHierarchyStopsAtUnregisteredBase(t *testing.T) {
	r := NewClassRegistry()
	r.Register(classDecl("Greeter", "UdonSharpBehaviour"))

	chain := r.Hierarchy("Greeter")
	if len(chain) != 1 {
		t.Fatalf("expected chain to stop at unregistered base, got %d entries", len(chain))
	}
}

func TestIsDescendantOf(t *testing.T) {
	r := NewClassRegistry()
	r.Register(classDecl("Animal", ""))
	r.Register(classDecl("Dog", "Animal"))

	if !r.IsDescendantOf("Dog", "Animal") {
		t.Fatalf("expected Dog to descend from Animal")
	}
	if !r.IsDescendantOf("Dog", "Dog") {
		t.Fatalf("expected a class to be its own descendant")
	}
	if r.IsDescendantOf("Animal", "Dog") {
		t.Fatalf("did not expect Animal to descend from Dog")
	}
}

func TestHierarchyBreaksCycle(t *testing.T) {
	r := NewClassRegistry()
	r.Register(classDecl("A", "B"))
	r.Register(classDecl("B", "A"))

	chain := r.Hierarchy("A")
	if len(chain) != 2 {
		t.Fatalf("expected cycle detection to stop after both entries, got %d", len(chain))
	}
}

func TestMergedMethodsDerivedOverridesBase(t *testing.T) {
	r := NewClassRegistry()
	r.Register(classDecl("Animal", "", &ast.FunctionDecl{Name: "speak"}, &ast.FunctionDecl{Name: "eat"}))
	derivedSpeak := &ast.FunctionDecl{Name: "speak", IsPublic: true}
	r.Register(classDecl("Dog", "Animal", derivedSpeak))

	merged := r.MergedMethods("Dog")
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged methods, got %d", len(merged))
	}
	if merged["speak"] != derivedSpeak {
		t.Fatalf("expected derived class's override to win")
	}
	if _, ok := merged["eat"]; !ok {
		t.Fatalf("expected inherited method to survive merge")
	}
}

func TestMergedMethodNamesPreservesBaseDeclarationOrder(t *testing.T) {
	r := NewClassRegistry()
	r.Register(classDecl("Animal", "",
		&ast.FunctionDecl{Name: "eat"},
		&ast.FunctionDecl{Name: "speak"},
	))
	r.Register(classDecl("Dog", "Animal",
		&ast.FunctionDecl{Name: "speak"}, // override; must not move in the order
		&ast.FunctionDecl{Name: "fetch"}, // new method; appended
	))

	order := r.MergedMethodNames("Dog")
	want := []string{"eat", "speak", "fetch"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestRegistryPopulateAndLookup(t *testing.T) {
	reg := New()
	program := &ast.Program{Statements: []ast.Statement{
		classDecl("Player", "UdonSharpBehaviour"),
		&ast.InterfaceDecl{Name: "Damageable"},
		&ast.EnumDecl{Name: "Team"},
		&ast.ConstDecl{Name: "MAX_HP", File: "a.uts"},
	}}
	if errs := reg.Populate(program); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if !reg.HasClass("Player") || !reg.HasInterface("Damageable") || !reg.HasEnum("Team") {
		t.Fatalf("expected all declarations to be registered")
	}
	if _, ok := reg.Constants["MAX_HP"]; !ok {
		t.Fatalf("expected constant to be registered")
	}
}

func TestIsEntryPointByDecoratorOrLifecycleHook(t *testing.T) {
	reg := New()
	decorated := &ast.ClassDecl{Name: "Decorated", Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}}}
	byHook := &ast.ClassDecl{Name: "ByHook", Methods: []*ast.FunctionDecl{{Name: "Start"}}}
	plain := &ast.ClassDecl{Name: "Plain", Methods: []*ast.FunctionDecl{{Name: "helper"}}}

	if !reg.IsEntryPoint(decorated) {
		t.Fatalf("expected @UdonBehaviour class to be an entry point")
	}
	if !reg.IsEntryPoint(byHook) {
		t.Fatalf("expected a class defining Start to be an entry point")
	}
	if reg.IsEntryPoint(plain) {
		t.Fatalf("did not expect a plain helper class to be an entry point")
	}
}

func TestEventRegistryLookup(t *testing.T) {
	events := NewEventRegistry()
	hook, ok := events.Lookup("OnPlayerJoined")
	if !ok {
		t.Fatalf("expected OnPlayerJoined to be a recognized lifecycle hook")
	}
	if hook.ExportName != "_onPlayerJoined" || len(hook.ParameterNames) != 1 || hook.ParameterNames[0] != "player" {
		t.Fatalf("unexpected hook mapping: %+v", hook)
	}
	if events.IsLifecycleHook("notAHook") {
		t.Fatalf("did not expect an arbitrary method name to match")
	}
}

func TestRegisterConstantRejectsCrossFileDuplicate(t *testing.T) {
	reg := New()
	if err := reg.RegisterConstant(&ast.ConstDecl{Name: "MAX_HP", File: "a.uts"}); err != nil {
		t.Fatalf("unexpected error on first registration: %v", err)
	}
	if err := reg.RegisterConstant(&ast.ConstDecl{Name: "MAX_HP", File: "b.uts"}); err == nil {
		t.Fatalf("expected error registering duplicate constant from a different file")
	}
}
