package analysis

import (
	"strings"
	"testing"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/registry"
)

func buildRegistry(t *testing.T, classes []*ast.ClassDecl, ifaces []*ast.InterfaceDecl) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, c := range classes {
		reg.Classes.Register(c)
	}
	for _, i := range ifaces {
		reg.Interfaces.Register(i)
	}
	return reg
}

func TestValidateInheritanceAcceptsCompliantChain(t *testing.T) {
	iface := &ast.InterfaceDecl{Name: "IDamageable", Methods: []*ast.FunctionDecl{{Name: "takeDamage"}}}
	player := &ast.ClassDecl{
		Name: "Player", BaseClass: "UdonSharpBehaviour",
		Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}},
		Interfaces: []string{"IDamageable"},
		Methods:    []*ast.FunctionDecl{{Name: "takeDamage"}},
	}
	reg := buildRegistry(t, []*ast.ClassDecl{player}, []*ast.InterfaceDecl{iface})

	if diags := ValidateInheritance(reg); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestValidateInheritanceRejectsMissingInterfaceMethod(t *testing.T) {
	iface := &ast.InterfaceDecl{Name: "IDamageable", Methods: []*ast.FunctionDecl{{Name: "takeDamage"}, {Name: "heal"}}}
	player := &ast.ClassDecl{
		Name: "Player", BaseClass: "UdonSharpBehaviour",
		Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}},
		Interfaces: []string{"IDamageable"},
		Methods:    []*ast.FunctionDecl{{Name: "takeDamage"}},
	}
	reg := buildRegistry(t, []*ast.ClassDecl{player}, []*ast.InterfaceDecl{iface})

	diags := ValidateInheritance(reg)
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic for the missing 'heal' method, got %d: %v", len(diags), diags)
	}
}

func TestValidateInheritanceDetectsCycle(t *testing.T) {
	a := &ast.ClassDecl{Name: "A", BaseClass: "B", Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}}}
	b := &ast.ClassDecl{Name: "B", BaseClass: "A", Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}}}
	reg := buildRegistry(t, []*ast.ClassDecl{a, b}, nil)

	diags := ValidateInheritance(reg)
	if len(diags) == 0 {
		t.Fatalf("expected a cycle diagnostic")
	}
}

func TestValidateInheritanceRejectsUnreachableRoot(t *testing.T) {
	orphan := &ast.ClassDecl{Name: "Orphan", BaseClass: "SomeUnregisteredBase", Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}}}
	reg := buildRegistry(t, []*ast.ClassDecl{orphan}, nil)

	diags := ValidateInheritance(reg)
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic for an unknown base class, got %d", len(diags))
	}
}

func TestValidateInterfaceExclusivity(t *testing.T) {
	iface := &ast.InterfaceDecl{Name: "IShared", Methods: nil}
	entryImpl := &ast.ClassDecl{
		Name: "EntryImpl", BaseClass: "UdonSharpBehaviour",
		Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}},
		Interfaces: []string{"IShared"},
	}
	plainImpl := &ast.ClassDecl{
		Name: "PlainImpl", Interfaces: []string{"IShared"},
	}
	reg := buildRegistry(t, []*ast.ClassDecl{entryImpl, plainImpl}, []*ast.InterfaceDecl{iface})

	diags := ValidateInheritance(reg)
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "PlainImpl") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a diagnostic rejecting PlainImpl's non-UdonBehaviour implementation of IShared, got %v", diags)
	}
}
