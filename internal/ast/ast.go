// Package ast defines the reduced, source-language-agnostic syntax tree
// produced by the parser and consumed by the registries, the analyzers,
// and the AST→TAC lowering pass. The node set is a closed tagged union:
// every concrete type implements exactly one of Expression or Statement
// (Declarations implement Statement so they can appear at block scope),
// and visitors are expected to exhaustively switch over them.
package ast

import (
	"bytes"
	"strings"

	"github.com/udonc/udonc/internal/lexer"
)

// Node is the base of every AST element: every node can report the source
// token it began at, its position, and a debug string form.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is any node that yields a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action (declarations included).
type Statement interface {
	Node
	statementNode()
}

// Program is the root of one parsed source file.
type Program struct {
	Statements []Statement
	File       string
}

func (p *Program) statementNode()      {}
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}
func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

// Identifier is a bare name reference — a variable, parameter, type, or
// member name depending on context.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Pos() lexer.Position  { return i.Token.Pos }

// Decorator represents a single `@Name(args...)` annotation attached to a
// class, method, field, or parameter declaration.
type Decorator struct {
	Token lexer.Token
	Name  string
	Args  []Expression
}

func (d *Decorator) String() string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(d.Name)
	if len(d.Args) > 0 {
		sb.WriteString("(")
		parts := make([]string, len(d.Args))
		for i, a := range d.Args {
			parts[i] = a.String()
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}
func (d *Decorator) TokenLiteral() string { return d.Token.Literal }
func (d *Decorator) Pos() lexer.Position  { return d.Token.Pos }

// TypeExpression is the surface-syntax spelling of a type annotation,
// resolved to a udontype.Type during semantic analysis.
type TypeExpression struct {
	Token      lexer.Token
	Name       string // "number", "string", "MyClass", "Array", "List", ...
	ElemType   *TypeExpression
	TypeArgs   []*TypeExpression // generic collection key/value types
	ArrayDims  int
}

func (t *TypeExpression) TokenLiteral() string { return t.Token.Literal }
func (t *TypeExpression) Pos() lexer.Position  { return t.Token.Pos }
func (t *TypeExpression) String() string {
	s := t.Name
	for i := 0; i < t.ArrayDims; i++ {
		s += "[]"
	}
	if t.ElemType != nil {
		s += "<" + t.ElemType.String() + ">"
	}
	return s
}
