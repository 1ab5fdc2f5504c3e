// Package registry collects every class, interface, and enum declared
// across a compilation unit's source files into name-keyed tables that
// support inheritance-hierarchy queries, merged method/property lookup,
// and per-file declaration listings for diagnostics.
package registry

import (
	"fmt"

	"github.com/udonc/udonc/internal/ast"
)

// ClassEntry wraps one registered class with its resolved parent link.
type ClassEntry struct {
	Decl       *ast.ClassDecl
	ParentName string // "" for a root class
}

// ClassRegistry indexes every class declaration by name, case-sensitively
// (the surface language is TypeScript-like, not Pascal-like), and
// supports walking the inheritance chain.
type ClassRegistry struct {
	classes map[string]*ClassEntry
	order   []string // declaration order, for deterministic iteration
}

// NewClassRegistry creates an empty registry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: make(map[string]*ClassEntry)}
}

// Register adds a class declaration, replacing any prior entry of the
// same name (the last file processed wins — callers are expected to have
// already rejected duplicate-class-name as a diagnostic upstream).
func (r *ClassRegistry) Register(decl *ast.ClassDecl) {
	if _, exists := r.classes[decl.Name]; !exists {
		r.order = append(r.order, decl.Name)
	}
	r.classes[decl.Name] = &ClassEntry{Decl: decl, ParentName: decl.BaseClass}
}

// Lookup returns the class entry for name, if registered.
func (r *ClassRegistry) Lookup(name string) (*ClassEntry, bool) {
	e, ok := r.classes[name]
	return e, ok
}

// HasClass reports whether name is a registered class.
func (r *ClassRegistry) HasClass(name string) bool {
	_, ok := r.classes[name]
	return ok
}

// Names returns every registered class name in declaration order.
func (r *ClassRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Hierarchy returns every class in name's inheritance chain, most specific
// first, ending at the root (a class with no base, or whose base isn't
// itself registered — e.g. UdonSharpBehaviour).
func (r *ClassRegistry) Hierarchy(name string) []*ClassEntry {
	entry, ok := r.classes[name]
	if !ok {
		return nil
	}
	chain := []*ClassEntry{entry}
	seen := map[string]bool{name: true}
	parent := entry.ParentName
	for parent != "" {
		if seen[parent] {
			break // inheritance cycle; internal/analysis reports this as a diagnostic
		}
		next, ok := r.classes[parent]
		if !ok {
			break
		}
		chain = append(chain, next)
		seen[parent] = true
		parent = next.ParentName
	}
	return chain
}

// IsDescendantOf reports whether descendant inherits from ancestor,
// directly or indirectly. A class is considered its own descendant.
func (r *ClassRegistry) IsDescendantOf(descendant, ancestor string) bool {
	if descendant == ancestor {
		return true
	}
	for _, entry := range r.Hierarchy(descendant) {
		if entry.Decl.Name == ancestor {
			return true
		}
	}
	return false
}

// MergedMethods returns every method reachable on name, base-to-derived,
// so a derived class's override replaces its base's method of the same
// name (last writer wins, walking root→leaf).
func (r *ClassRegistry) MergedMethods(name string) map[string]*ast.FunctionDecl {
	chain := r.Hierarchy(name)
	methods := make(map[string]*ast.FunctionDecl)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, m := range chain[i].Decl.Methods {
			methods[m.Name] = m
		}
	}
	return methods
}

// MergedMethodNames returns every method name reachable on name, in a
// stable declaration order: root-to-leaf, each name taking the position
// of its first (most-base) declaration even when a derived class
// overrides it. Callers that assign collision-free per-class export
// names (internal/layout) rely on this order being stable across
// compiler runs for the same source.
func (r *ClassRegistry) MergedMethodNames(name string) []string {
	chain := r.Hierarchy(name)
	var order []string
	seen := make(map[string]bool)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, m := range chain[i].Decl.Methods {
			if !seen[m.Name] {
				seen[m.Name] = true
				order = append(order, m.Name)
			}
		}
	}
	return order
}

// MergedFields returns every field reachable on name, base-to-derived.
func (r *ClassRegistry) MergedFields(name string) map[string]*ast.FieldDecl {
	chain := r.Hierarchy(name)
	fields := make(map[string]*ast.FieldDecl)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Decl.Fields {
			fields[f.Name] = f
		}
	}
	return fields
}

// MergedProperties returns every synced property reachable on name,
// base-to-derived.
func (r *ClassRegistry) MergedProperties(name string) map[string]*ast.PropertyDecl {
	chain := r.Hierarchy(name)
	props := make(map[string]*ast.PropertyDecl)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, p := range chain[i].Decl.Properties {
			props[p.Name] = p
		}
	}
	return props
}

// InterfaceRegistry indexes interface declarations by name.
type InterfaceRegistry struct {
	ifaces map[string]*ast.InterfaceDecl
	order  []string
}

// NewInterfaceRegistry creates an empty registry.
func NewInterfaceRegistry() *InterfaceRegistry {
	return &InterfaceRegistry{ifaces: make(map[string]*ast.InterfaceDecl)}
}

// Register adds an interface declaration.
func (r *InterfaceRegistry) Register(decl *ast.InterfaceDecl) {
	if _, exists := r.ifaces[decl.Name]; !exists {
		r.order = append(r.order, decl.Name)
	}
	r.ifaces[decl.Name] = decl
}

// Lookup returns the interface declaration for name, if registered.
func (r *InterfaceRegistry) Lookup(name string) (*ast.InterfaceDecl, bool) {
	d, ok := r.ifaces[name]
	return d, ok
}

// HasInterface reports whether name is a registered interface.
func (r *InterfaceRegistry) HasInterface(name string) bool {
	_, ok := r.ifaces[name]
	return ok
}

// Names returns every registered interface name in declaration order.
func (r *InterfaceRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// EnumRegistry indexes enum declarations by name.
type EnumRegistry struct {
	enums map[string]*ast.EnumDecl
	order []string
}

// NewEnumRegistry creates an empty registry.
func NewEnumRegistry() *EnumRegistry {
	return &EnumRegistry{enums: make(map[string]*ast.EnumDecl)}
}

// Register adds an enum declaration.
func (r *EnumRegistry) Register(decl *ast.EnumDecl) {
	if _, exists := r.enums[decl.Name]; !exists {
		r.order = append(r.order, decl.Name)
	}
	r.enums[decl.Name] = decl
}

// Lookup returns the enum declaration for name, if registered.
func (r *EnumRegistry) Lookup(name string) (*ast.EnumDecl, bool) {
	d, ok := r.enums[name]
	return d, ok
}

// HasEnum reports whether name is a registered enum.
func (r *EnumRegistry) HasEnum(name string) bool {
	_, ok := r.enums[name]
	return ok
}

// Names returns every registered enum name in declaration order.
func (r *EnumRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Registry aggregates the three category registries and the top-level
// constants gathered across every source file in a compilation unit. It
// implements udontype.Lookup so the type resolver can consult it without
// this package depending back on udontype's resolution logic.
type Registry struct {
	Classes    *ClassRegistry
	Interfaces *InterfaceRegistry
	Enums      *EnumRegistry
	Events     *EventRegistry
	Constants  map[string]*ast.ConstDecl
	constOrder []string
}

// New creates an empty aggregate registry.
func New() *Registry {
	return &Registry{
		Classes:    NewClassRegistry(),
		Interfaces: NewInterfaceRegistry(),
		Enums:      NewEnumRegistry(),
		Events:     NewEventRegistry(),
		Constants:  make(map[string]*ast.ConstDecl),
	}
}

// IsEntryPoint reports whether a class is its own target assembly: it
// bears the UdonBehaviour decorator, or defines a method matching a known
// lifecycle hook (spec.md §3, "A class is an entry point iff...").
func (r *Registry) IsEntryPoint(decl *ast.ClassDecl) bool {
	if decl.HasDecorator("UdonBehaviour") {
		return true
	}
	for _, m := range decl.Methods {
		if r.Events.IsLifecycleHook(m.Name) {
			return true
		}
	}
	return false
}

// IsStub reports whether a class is suppressed from method merging,
// treated as an opaque external (spec.md §3, "A UdonStub decorator...").
func (r *Registry) IsStub(decl *ast.ClassDecl) bool {
	return decl.HasDecorator("UdonStub")
}

func (r *Registry) HasClass(name string) bool     { return r.Classes.HasClass(name) }
func (r *Registry) HasInterface(name string) bool { return r.Interfaces.HasInterface(name) }
func (r *Registry) HasEnum(name string) bool      { return r.Enums.HasEnum(name) }

// RegisterConstant adds a top-level constant, returning an error if a
// constant of that name was already declared in a different file.
func (r *Registry) RegisterConstant(decl *ast.ConstDecl) error {
	if existing, ok := r.Constants[decl.Name]; ok && existing.File != decl.File {
		return fmt.Errorf("constant %q already declared in %s", decl.Name, existing.File)
	}
	if _, exists := r.Constants[decl.Name]; !exists {
		r.constOrder = append(r.constOrder, decl.Name)
	}
	r.Constants[decl.Name] = decl
	return nil
}

// ConstantNames returns every registered top-level constant name in
// declaration order.
func (r *Registry) ConstantNames() []string {
	out := make([]string, len(r.constOrder))
	copy(out, r.constOrder)
	return out
}

// Populate walks every top-level statement of program and registers the
// class/interface/enum/const declarations it finds.
func (r *Registry) Populate(program *ast.Program) []error {
	var errs []error
	for _, stmt := range program.Statements {
		switch decl := stmt.(type) {
		case *ast.ClassDecl:
			r.Classes.Register(decl)
		case *ast.InterfaceDecl:
			r.Interfaces.Register(decl)
		case *ast.EnumDecl:
			r.Enums.Register(decl)
		case *ast.ConstDecl:
			if err := r.RegisterConstant(decl); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}
