package ast

import (
	"strings"

	"github.com/udonc/udonc/internal/lexer"
)

// ParamDecl is one formal parameter of a function or method.
type ParamDecl struct {
	Token   lexer.Token
	Name    string
	Type    *TypeExpression
	Default Expression
}

func (p *ParamDecl) TokenLiteral() string { return p.Token.Literal }
func (p *ParamDecl) Pos() lexer.Position  { return p.Token.Pos }
func (p *ParamDecl) String() string {
	s := p.Name + ": " + p.Type.String()
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

// FunctionDecl is a top-level function or a class method body.
type FunctionDecl struct {
	Token       lexer.Token
	Name        string
	Params      []*ParamDecl
	ReturnType  *TypeExpression
	Body        *BlockStatement
	Decorators  []*Decorator
	IsStatic    bool
	IsPublic    bool
	IsPrivate   bool
	IsProtected bool
}

func (f *FunctionDecl) statementNode()     {}
func (f *FunctionDecl) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionDecl) Pos() lexer.Position  { return f.Token.Pos }
func (f *FunctionDecl) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return f.Name + "(" + strings.Join(params, ", ") + "): " + f.ReturnType.String() + " " + f.Body.String()
}

// HasDecorator reports whether the function carries a decorator by name.
func (f *FunctionDecl) HasDecorator(name string) bool {
	for _, d := range f.Decorators {
		if strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}

// FieldDecl is a class field (property-backing storage).
type FieldDecl struct {
	Token      lexer.Token
	Name       string
	Type       *TypeExpression
	Init       Expression
	Decorators []*Decorator
	IsStatic   bool
	IsReadonly bool
}

func (f *FieldDecl) statementNode()      {}
func (f *FieldDecl) TokenLiteral() string { return f.Token.Literal }
func (f *FieldDecl) Pos() lexer.Position  { return f.Token.Pos }
func (f *FieldDecl) String() string {
	s := f.Name + ": " + f.Type.String()
	if f.Init != nil {
		s += " = " + f.Init.String()
	}
	return s
}

// HasDecorator reports whether the field carries a decorator by name.
func (f *FieldDecl) HasDecorator(name string) bool {
	for _, d := range f.Decorators {
		if strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}

// Decorator returns the named decorator, or nil.
func (f *FieldDecl) Decorator(name string) *Decorator {
	for _, d := range f.Decorators {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}

// ClassDecl is a user class: either a UdonBehaviour entry class or an
// inline helper class, distinguished by decorators/lifecycle hooks during
// registration (see internal/registry).
type ClassDecl struct {
	Token       lexer.Token
	Name        string
	BaseClass   string // "" if none
	Interfaces  []string
	Decorators  []*Decorator
	Fields      []*FieldDecl
	Methods     []*FunctionDecl
	Properties  []*PropertyDecl
	Constructor *FunctionDecl // nil if implicit parameterless
	File        string
}

func (c *ClassDecl) statementNode()      {}
func (c *ClassDecl) TokenLiteral() string { return c.Token.Literal }
func (c *ClassDecl) Pos() lexer.Position  { return c.Token.Pos }
func (c *ClassDecl) String() string       { return "class " + c.Name }

// HasDecorator reports whether the class carries a decorator by name.
func (c *ClassDecl) HasDecorator(name string) bool {
	for _, d := range c.Decorators {
		if strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}

// Decorator returns the named decorator attached to the class, or nil.
func (c *ClassDecl) Decorator(name string) *Decorator {
	for _, d := range c.Decorators {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}

// PropertyDecl is a field additionally carrying sync/change-callback
// metadata (spec.md §3, "Properties carry optional syncMode...").
type PropertyDecl struct {
	Token               lexer.Token
	Name                string
	Type                *TypeExpression
	SyncMode            string // "None" | "Linear" | "Smooth" | ""
	FieldChangeCallback string // method name, or ""
	IsSerializeField    bool
}

func (p *PropertyDecl) statementNode()      {}
func (p *PropertyDecl) TokenLiteral() string { return p.Token.Literal }
func (p *PropertyDecl) Pos() lexer.Position  { return p.Token.Pos }
func (p *PropertyDecl) String() string       { return p.Name + ": " + p.Type.String() }

// InterfaceDecl declares a named method/property contract.
type InterfaceDecl struct {
	Token      lexer.Token
	Name       string
	Methods    []*FunctionDecl // bodies are nil; only signatures matter
	Properties []*PropertyDecl
	File       string
}

func (i *InterfaceDecl) statementNode()      {}
func (i *InterfaceDecl) TokenLiteral() string { return i.Token.Literal }
func (i *InterfaceDecl) Pos() lexer.Position  { return i.Token.Pos }
func (i *InterfaceDecl) String() string       { return "interface " + i.Name }

// EnumMember is one `Name` or `Name = value` entry of an EnumDecl.
type EnumMember struct {
	Name  string
	Value Expression // nil for auto-numbered numeric members
}

// EnumDecl declares an all-numeric or all-string enum (spec.md §6).
type EnumDecl struct {
	Token   lexer.Token
	Name    string
	Members []EnumMember
	File    string
}

func (e *EnumDecl) statementNode()      {}
func (e *EnumDecl) TokenLiteral() string { return e.Token.Literal }
func (e *EnumDecl) Pos() lexer.Position  { return e.Token.Pos }
func (e *EnumDecl) String() string       { return "enum " + e.Name }

// ConstDecl is a top-level constant (spec.md §4.3 "Top-level constants").
type ConstDecl struct {
	Token lexer.Token
	Name  string
	Type  *TypeExpression
	Value Expression
	File  string
}

func (c *ConstDecl) statementNode()      {}
func (c *ConstDecl) TokenLiteral() string { return c.Token.Literal }
func (c *ConstDecl) Pos() lexer.Position  { return c.Token.Pos }
func (c *ConstDecl) String() string       { return "const " + c.Name + " = " + c.Value.String() }

// VarDecl is a `let`-declared local variable.
type VarDecl struct {
	Token lexer.Token
	Name  string
	Type  *TypeExpression
	Value Expression
}

func (v *VarDecl) statementNode()      {}
func (v *VarDecl) TokenLiteral() string { return v.Token.Literal }
func (v *VarDecl) Pos() lexer.Position  { return v.Token.Pos }
func (v *VarDecl) String() string {
	s := "let " + v.Name + ": " + v.Type.String()
	if v.Value != nil {
		s += " = " + v.Value.String()
	}
	return s
}
