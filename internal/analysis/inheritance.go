// Package analysis implements the frontend passes that run after parsing
// and registration but before AST→TAC lowering: inheritance validation and
// the method-usage (tree-shaking) reachability analyzer.
package analysis

import (
	"fmt"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/compileerr"
	"github.com/udonc/udonc/internal/registry"
)

// RootClassName is the built-in base every entry class must ultimately
// derive from.
const RootClassName = "UdonSharpBehaviour"

// ValidateInheritance walks every entry class's chain up to RootClassName
// and checks interface conformance, per spec.md §4.1. It returns every
// violation found; callers decide whether to halt (compileerr.TypeError
// is always fatal).
func ValidateInheritance(reg *registry.Registry) []*compileerr.Diagnostic {
	var diags []*compileerr.Diagnostic

	for _, name := range reg.Classes.Names() {
		entry, _ := reg.Classes.Lookup(name)
		if reg.IsStub(entry.Decl) {
			continue
		}
		if !reg.IsEntryPoint(entry.Decl) {
			continue
		}
		diags = append(diags, validateChain(reg, entry.Decl)...)
		diags = append(diags, validateInterfaceConformance(reg, entry.Decl)...)
	}

	diags = append(diags, validateInterfaceExclusivity(reg)...)
	return diags
}

func validateChain(reg *registry.Registry, decl *ast.ClassDecl) []*compileerr.Diagnostic {
	var diags []*compileerr.Diagnostic

	seen := map[string]bool{decl.Name: true}
	current := decl
	for {
		if current.BaseClass == "" {
			if current.Name != RootClassName {
				diags = append(diags, compileerr.New(compileerr.TypeError, decl.Pos(), decl.File,
					fmt.Sprintf("class %q does not reach %s: %q has no base class", decl.Name, RootClassName, current.Name)))
			}
			return diags
		}
		if current.BaseClass == RootClassName {
			return diags
		}
		if seen[current.BaseClass] {
			diags = append(diags, compileerr.New(compileerr.TypeError, decl.Pos(), decl.File,
				fmt.Sprintf("class %q has a cyclic inheritance chain through %q", decl.Name, current.BaseClass)))
			return diags
		}
		baseEntry, ok := reg.Classes.Lookup(current.BaseClass)
		if !ok {
			diags = append(diags, compileerr.New(compileerr.TypeError, decl.Pos(), decl.File,
				fmt.Sprintf("class %q extends unknown base class %q", current.Name, current.BaseClass)))
			return diags
		}
		seen[current.BaseClass] = true
		current = baseEntry.Decl
	}
}

func validateInterfaceConformance(reg *registry.Registry, decl *ast.ClassDecl) []*compileerr.Diagnostic {
	var diags []*compileerr.Diagnostic
	methods := reg.Classes.MergedMethods(decl.Name)
	properties := reg.Classes.MergedProperties(decl.Name)

	for _, ifaceName := range decl.Interfaces {
		iface, ok := reg.Interfaces.Lookup(ifaceName)
		if !ok {
			diags = append(diags, compileerr.New(compileerr.TypeError, decl.Pos(), decl.File,
				fmt.Sprintf("class %q implements unknown interface %q", decl.Name, ifaceName)))
			continue
		}
		for _, m := range iface.Methods {
			if _, ok := methods[m.Name]; !ok {
				diags = append(diags, compileerr.New(compileerr.TypeError, decl.Pos(), decl.File,
					fmt.Sprintf("class %q does not implement method %q required by interface %q", decl.Name, m.Name, ifaceName)))
			}
		}
		for _, p := range iface.Properties {
			if _, ok := properties[p.Name]; !ok {
				diags = append(diags, compileerr.New(compileerr.TypeError, decl.Pos(), decl.File,
					fmt.Sprintf("class %q does not implement property %q required by interface %q", decl.Name, p.Name, ifaceName)))
			}
		}
	}
	return diags
}

// validateInterfaceExclusivity rejects a non-entry class implementing an
// interface that some entry class also implements (spec.md §4.1: "A
// separate check rejects any non-UdonBehaviour class implementing a
// UdonBehaviour interface"). An interface becomes a "UdonBehaviour
// interface" the moment any entry class implements it, since its export
// names are then fixed for cross-assembly dispatch (spec.md §3).
func validateInterfaceExclusivity(reg *registry.Registry) []*compileerr.Diagnostic {
	var diags []*compileerr.Diagnostic

	implementors := make(map[string][]*ast.ClassDecl)
	for _, name := range reg.Classes.Names() {
		entry, _ := reg.Classes.Lookup(name)
		if reg.IsStub(entry.Decl) {
			continue
		}
		for _, ifaceName := range entry.Decl.Interfaces {
			implementors[ifaceName] = append(implementors[ifaceName], entry.Decl)
		}
	}

	for ifaceName, classes := range implementors {
		isUdonBehaviourInterface := false
		for _, c := range classes {
			if reg.IsEntryPoint(c) {
				isUdonBehaviourInterface = true
				break
			}
		}
		if !isUdonBehaviourInterface {
			continue
		}
		for _, c := range classes {
			if !reg.IsEntryPoint(c) {
				diags = append(diags, compileerr.New(compileerr.TypeError, c.Pos(), c.File,
					fmt.Sprintf("class %q implements %q, a UdonBehaviour interface, without itself being a UdonBehaviour", c.Name, ifaceName)))
			}
		}
	}
	return diags
}
