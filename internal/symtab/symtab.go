// Package symtab implements the lexically-scoped symbol table used during
// semantic analysis and AST→TAC lowering: one SymbolTable per block scope,
// chained to its enclosing scope, resolving names outward.
package symtab

import "github.com/udonc/udonc/internal/udontype"

// Symbol is one declared name: a parameter, a local, a field, or a
// top-level constant.
type Symbol struct {
	Name          string
	Type          *udontype.Type
	IsParameter   bool
	IsConstant    bool
	InitialValue  interface{} // non-nil only for compile-time-constant initializers
	IsLiteralInit bool        // true when InitialValue is a literal the compiler can inline
}

// Table is one lexical scope. The surface language is case-sensitive,
// unlike the Pascal-derived languages this pipeline's idioms were learned
// from, so lookups key on the name exactly as written.
type Table struct {
	symbols map[string]*Symbol
	outer   *Table
}

// New creates a top-level (global) symbol table.
func New() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// NewEnclosed creates a scope nested inside outer.
func NewEnclosed(outer *Table) *Table {
	return &Table{symbols: make(map[string]*Symbol), outer: outer}
}

// Outer returns the enclosing scope, or nil at the top level.
func (t *Table) Outer() *Table { return t.outer }

// Define adds a plain local or field symbol to the current scope,
// overwriting any existing symbol of the same name in this scope only
// (shadowing an outer-scope symbol of the same name is legal).
func (t *Table) Define(name string, typ *udontype.Type) *Symbol {
	sym := &Symbol{Name: name, Type: typ}
	t.symbols[name] = sym
	return sym
}

// DefineParameter adds a function/method parameter symbol.
func (t *Table) DefineParameter(name string, typ *udontype.Type) *Symbol {
	sym := &Symbol{Name: name, Type: typ, IsParameter: true}
	t.symbols[name] = sym
	return sym
}

// DefineConstant adds a named constant, optionally carrying a compile-time
// literal value the optimizer can fold at every use site.
func (t *Table) DefineConstant(name string, typ *udontype.Type, value interface{}, isLiteral bool) *Symbol {
	sym := &Symbol{Name: name, Type: typ, IsConstant: true, InitialValue: value, IsLiteralInit: isLiteral}
	t.symbols[name] = sym
	return sym
}

// Resolve looks up name in this scope, then each enclosing scope in turn.
func (t *Table) Resolve(name string) (*Symbol, bool) {
	if sym, ok := t.symbols[name]; ok {
		return sym, true
	}
	if t.outer != nil {
		return t.outer.Resolve(name)
	}
	return nil, false
}

// IsDeclaredLocally reports whether name is defined in this exact scope,
// ignoring any outer scope — used to reject duplicate local declarations.
func (t *Table) IsDeclaredLocally(name string) bool {
	_, ok := t.symbols[name]
	return ok
}

// Names returns every name declared directly in this scope. The order
// is that of map iteration: it is neither sorted nor declaration order,
// and it can differ between calls.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.symbols))
	for n := range t.symbols {
		names = append(names, n)
	}
	return names
}
