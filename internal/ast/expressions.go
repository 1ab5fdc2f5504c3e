package ast

import (
	"strings"

	"github.com/udonc/udonc/internal/lexer"
)

// Literal kinds recognized by the reduced AST.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitBoolean
	LitNull
	LitBigInt
)

// Literal is a compile-time constant scalar.
type Literal struct {
	Token lexer.Token
	Kind  LiteralKind
	Value string // canonical textual form; parsed by the consumer per Kind
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Literal }
func (l *Literal) Pos() lexer.Position  { return l.Token.Pos }
func (l *Literal) String() string       { return l.Value }

// TemplatePart is one chunk of a template literal: either literal text or
// an embedded expression (spec.md §4.3, "Template literals").
type TemplatePart struct {
	Text string     // valid when Expr == nil
	Expr Expression // valid when Text == ""
}

// TemplateLiteral is a backtick-delimited string with `${expr}` splices.
type TemplateLiteral struct {
	Token lexer.Token
	Parts []TemplatePart
}

func (t *TemplateLiteral) expressionNode()      {}
func (t *TemplateLiteral) TokenLiteral() string { return t.Token.Literal }
func (t *TemplateLiteral) Pos() lexer.Position  { return t.Token.Pos }
func (t *TemplateLiteral) String() string {
	var sb strings.Builder
	sb.WriteString("`")
	for _, p := range t.Parts {
		if p.Expr != nil {
			sb.WriteString("${" + p.Expr.String() + "}")
		} else {
			sb.WriteString(p.Text)
		}
	}
	sb.WriteString("`")
	return sb.String()
}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Token lexer.Token
	Left  Expression
	Op    string
	Right Expression
}

func (b *BinaryExpr) expressionNode()      {}
func (b *BinaryExpr) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpr) Pos() lexer.Position  { return b.Token.Pos }
func (b *BinaryExpr) String() string       { return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")" }

// LogicalExpr is `left && right` or `left || right` (short-circuit).
type LogicalExpr struct {
	Token lexer.Token
	Left  Expression
	Op    string // "&&" | "||"
	Right Expression
}

func (b *LogicalExpr) expressionNode()      {}
func (b *LogicalExpr) TokenLiteral() string { return b.Token.Literal }
func (b *LogicalExpr) Pos() lexer.Position  { return b.Token.Pos }
func (b *LogicalExpr) String() string       { return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")" }

// UnaryExpr is a prefix operator applied to an operand.
type UnaryExpr struct {
	Token   lexer.Token
	Op      string
	Operand Expression
}

func (u *UnaryExpr) expressionNode()      {}
func (u *UnaryExpr) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryExpr) Pos() lexer.Position  { return u.Token.Pos }
func (u *UnaryExpr) String() string       { return "(" + u.Op + u.Operand.String() + ")" }

// TernaryExpr is `cond ? then : alt`.
type TernaryExpr struct {
	Token     lexer.Token
	Condition Expression
	Then      Expression
	Else      Expression
}

func (t *TernaryExpr) expressionNode()      {}
func (t *TernaryExpr) TokenLiteral() string { return t.Token.Literal }
func (t *TernaryExpr) Pos() lexer.Position  { return t.Token.Pos }
func (t *TernaryExpr) String() string {
	return "(" + t.Condition.String() + " ? " + t.Then.String() + " : " + t.Else.String() + ")"
}

// NullCoalesceExpr is `left ?? right`.
type NullCoalesceExpr struct {
	Token lexer.Token
	Left  Expression
	Right Expression
}

func (n *NullCoalesceExpr) expressionNode()      {}
func (n *NullCoalesceExpr) TokenLiteral() string { return n.Token.Literal }
func (n *NullCoalesceExpr) Pos() lexer.Position  { return n.Token.Pos }
func (n *NullCoalesceExpr) String() string       { return "(" + n.Left.String() + " ?? " + n.Right.String() + ")" }

// CallExpr is `callee(args...)`. Callee is usually an Identifier or a
// MemberExpr; Optional marks an `?.()` call.
type CallExpr struct {
	Token    lexer.Token
	Callee   Expression
	Args     []Expression
	Optional bool
}

func (c *CallExpr) expressionNode()      {}
func (c *CallExpr) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpr) Pos() lexer.Position  { return c.Token.Pos }
func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

// NewExpr is `new ClassName(args...)`.
type NewExpr struct {
	Token     lexer.Token
	ClassName string
	Args      []Expression
}

func (n *NewExpr) expressionNode()      {}
func (n *NewExpr) TokenLiteral() string { return n.Token.Literal }
func (n *NewExpr) Pos() lexer.Position  { return n.Token.Pos }
func (n *NewExpr) String() string       { return "new " + n.ClassName + "(...)" }

// MemberExpr is `receiver.property` or, when Optional, `receiver?.property`.
type MemberExpr struct {
	Token    lexer.Token
	Receiver Expression
	Property string
	Optional bool
}

func (m *MemberExpr) expressionNode()      {}
func (m *MemberExpr) TokenLiteral() string { return m.Token.Literal }
func (m *MemberExpr) Pos() lexer.Position  { return m.Token.Pos }
func (m *MemberExpr) String() string {
	op := "."
	if m.Optional {
		op = "?."
	}
	return m.Receiver.String() + op + m.Property
}

// IndexExpr is `array[index]`.
type IndexExpr struct {
	Token lexer.Token
	Array Expression
	Index Expression
}

func (i *IndexExpr) expressionNode()      {}
func (i *IndexExpr) TokenLiteral() string { return i.Token.Literal }
func (i *IndexExpr) Pos() lexer.Position  { return i.Token.Pos }
func (i *IndexExpr) String() string       { return i.Array.String() + "[" + i.Index.String() + "]" }

// ArrayLiteralElement is one entry of an ArrayLiteral: either an ordinary
// expression, or a `...expr` spread.
type ArrayLiteralElement struct {
	Expr     Expression
	IsSpread bool
}

// ArrayLiteral is `[e1, ...e2, e3]`.
type ArrayLiteral struct {
	Token    lexer.Token
	Elements []ArrayLiteralElement
}

func (a *ArrayLiteral) expressionNode()      {}
func (a *ArrayLiteral) TokenLiteral() string { return a.Token.Literal }
func (a *ArrayLiteral) Pos() lexer.Position  { return a.Token.Pos }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if e.IsSpread {
			parts[i] = "..." + e.Expr.String()
		} else {
			parts[i] = e.Expr.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectProperty is one `key: value` entry, or a `...expr` spread when
// IsSpread is set (Key/Value unused in that case).
type ObjectProperty struct {
	Key      string
	Value    Expression
	IsSpread bool
	Spread   Expression
}

// ObjectLiteral is `{ k1: v1, ...rest }`.
type ObjectLiteral struct {
	Token      lexer.Token
	Properties []ObjectProperty
}

func (o *ObjectLiteral) expressionNode()      {}
func (o *ObjectLiteral) TokenLiteral() string { return o.Token.Literal }
func (o *ObjectLiteral) Pos() lexer.Position  { return o.Token.Pos }
func (o *ObjectLiteral) String() string       { return "{...}" }

// ThisExpr is the `this` receiver reference.
type ThisExpr struct{ Token lexer.Token }

func (t *ThisExpr) expressionNode()      {}
func (t *ThisExpr) TokenLiteral() string { return t.Token.Literal }
func (t *ThisExpr) Pos() lexer.Position  { return t.Token.Pos }
func (t *ThisExpr) String() string       { return "this" }

// SuperExpr is the `super` base-class reference, only valid as a call
// receiver (`super.m(...)`).
type SuperExpr struct{ Token lexer.Token }

func (s *SuperExpr) expressionNode()      {}
func (s *SuperExpr) TokenLiteral() string { return s.Token.Literal }
func (s *SuperExpr) Pos() lexer.Position  { return s.Token.Pos }
func (s *SuperExpr) String() string       { return "super" }

// InstanceOfExpr is `expr instanceof TypeName`; it always lowers to the
// constant `false` per spec.md §4.3 ("no runtime type test").
type InstanceOfExpr struct {
	Token    lexer.Token
	Operand  Expression
	TypeName string
}

func (i *InstanceOfExpr) expressionNode()      {}
func (i *InstanceOfExpr) TokenLiteral() string { return i.Token.Literal }
func (i *InstanceOfExpr) Pos() lexer.Position  { return i.Token.Pos }
func (i *InstanceOfExpr) String() string {
	return i.Operand.String() + " instanceof " + i.TypeName
}

// TypeOfExpr is `typeof expr`, lowered to a constant type-name string.
type TypeOfExpr struct {
	Token   lexer.Token
	Operand Expression
}

func (t *TypeOfExpr) expressionNode()      {}
func (t *TypeOfExpr) TokenLiteral() string { return t.Token.Literal }
func (t *TypeOfExpr) Pos() lexer.Position  { return t.Token.Pos }
func (t *TypeOfExpr) String() string       { return "typeof " + t.Operand.String() }

// DeleteExpr is `delete target`, where target is a MemberExpr or IndexExpr
// (spec.md §4.3, "delete on a dictionary property...").
type DeleteExpr struct {
	Token  lexer.Token
	Target Expression
}

func (d *DeleteExpr) expressionNode()      {}
func (d *DeleteExpr) TokenLiteral() string { return d.Token.Literal }
func (d *DeleteExpr) Pos() lexer.Position  { return d.Token.Pos }
func (d *DeleteExpr) String() string       { return "delete " + d.Target.String() }

// InExpr is `key in dictionary`, lowering to a ContainsKey extern call.
type InExpr struct {
	Token lexer.Token
	Key   Expression
	Dict  Expression
}

func (i *InExpr) expressionNode()      {}
func (i *InExpr) TokenLiteral() string { return i.Token.Literal }
func (i *InExpr) Pos() lexer.Position  { return i.Token.Pos }
func (i *InExpr) String() string       { return i.Key.String() + " in " + i.Dict.String() }
