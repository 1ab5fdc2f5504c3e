package ast

import (
	"bytes"
	"strings"

	"github.com/udonc/udonc/internal/lexer"
)

// BlockStatement is a `{ ... }` sequence of statements introducing a scope.
type BlockStatement struct {
	Token      lexer.Token
	Statements []Statement
}

func (b *BlockStatement) statementNode()      {}
func (b *BlockStatement) TokenLiteral() string { return b.Token.Literal }
func (b *BlockStatement) Pos() lexer.Position  { return b.Token.Pos }
func (b *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range b.Statements {
		out.WriteString("  " + s.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// ExpressionStatement wraps an expression evaluated for its side effects.
type ExpressionStatement struct {
	Token lexer.Token
	Expr  Expression
}

func (e *ExpressionStatement) statementNode()      {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Token.Literal }
func (e *ExpressionStatement) Pos() lexer.Position  { return e.Token.Pos }
func (e *ExpressionStatement) String() string       { return e.Expr.String() + ";" }

// AssignmentStatement is `target op= value` for op in {"", "+", "-", "*", "/"}.
type AssignmentStatement struct {
	Token  lexer.Token
	Target Expression
	Op     string
	Value  Expression
}

func (a *AssignmentStatement) statementNode()      {}
func (a *AssignmentStatement) TokenLiteral() string { return a.Token.Literal }
func (a *AssignmentStatement) Pos() lexer.Position  { return a.Token.Pos }
func (a *AssignmentStatement) String() string {
	return a.Target.String() + " " + a.Op + "= " + a.Value.String()
}

// IfStatement is `if (cond) then [else alt]`.
type IfStatement struct {
	Token     lexer.Token
	Condition Expression
	Then      *BlockStatement
	Else      Statement // *BlockStatement or *IfStatement, or nil
}

func (s *IfStatement) statementNode()      {}
func (s *IfStatement) TokenLiteral() string { return s.Token.Literal }
func (s *IfStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *IfStatement) String() string {
	out := "if (" + s.Condition.String() + ") " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

// WhileStatement is `while (cond) body`.
type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      *BlockStatement
}

func (s *WhileStatement) statementNode()      {}
func (s *WhileStatement) TokenLiteral() string { return s.Token.Literal }
func (s *WhileStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *WhileStatement) String() string       { return "while (" + s.Condition.String() + ") " + s.Body.String() }

// DoWhileStatement is `do body while (cond);`.
type DoWhileStatement struct {
	Token     lexer.Token
	Body      *BlockStatement
	Condition Expression
}

func (s *DoWhileStatement) statementNode()      {}
func (s *DoWhileStatement) TokenLiteral() string { return s.Token.Literal }
func (s *DoWhileStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *DoWhileStatement) String() string {
	return "do " + s.Body.String() + " while (" + s.Condition.String() + ")"
}

// ForStatement is the classic C-style `for (init; cond; post) body`.
type ForStatement struct {
	Token     lexer.Token
	Init      Statement
	Condition Expression
	Post      Statement
	Body      *BlockStatement
}

func (s *ForStatement) statementNode()      {}
func (s *ForStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ForStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *ForStatement) String() string       { return "for (...) " + s.Body.String() }

// ForOfStatement is `for (let x of iterable) body`, over an array or
// DataList (spec.md §4.3).
type ForOfStatement struct {
	Token       lexer.Token
	VarName     string
	VarType     *TypeExpression
	Iterable    Expression
	Destructure []string // non-empty when VarName binds a destructured record
	Body        *BlockStatement
}

func (s *ForOfStatement) statementNode()      {}
func (s *ForOfStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ForOfStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *ForOfStatement) String() string {
	return "for (let " + s.VarName + " of " + s.Iterable.String() + ") " + s.Body.String()
}

// SwitchCase is one `case expr:` or the `default:` arm of a SwitchStatement.
type SwitchCase struct {
	Values    []Expression // empty slice marks the default case
	Body      []Statement
	IsDefault bool
}

// SwitchStatement is `switch (scrutinee) { case ...: ... }`, preserving
// fall-through semantics when a case body omits `break` (spec.md §4.3).
type SwitchStatement struct {
	Token     lexer.Token
	Scrutinee Expression
	Cases     []SwitchCase
}

func (s *SwitchStatement) statementNode()      {}
func (s *SwitchStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SwitchStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *SwitchStatement) String() string       { return "switch (" + s.Scrutinee.String() + ") {...}" }

// BreakStatement exits the nearest enclosing loop or switch.
type BreakStatement struct{ Token lexer.Token }

func (s *BreakStatement) statementNode()      {}
func (s *BreakStatement) TokenLiteral() string { return s.Token.Literal }
func (s *BreakStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *BreakStatement) String() string       { return "break;" }

// ContinueStatement jumps to the next iteration of the nearest loop.
type ContinueStatement struct{ Token lexer.Token }

func (s *ContinueStatement) statementNode()      {}
func (s *ContinueStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ContinueStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *ContinueStatement) String() string       { return "continue;" }

// ReturnStatement exits the current function, optionally with a value.
type ReturnStatement struct {
	Token lexer.Token
	Value Expression // nil for bare `return;`
}

func (s *ReturnStatement) statementNode()      {}
func (s *ReturnStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ReturnStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *ReturnStatement) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}

// CatchClause binds a caught value (optionally typed) to body.
type CatchClause struct {
	VarName string
	VarType *TypeExpression
	Body    *BlockStatement
}

// TryStatement is `try { } catch (e) { } finally { }` (finally optional).
type TryStatement struct {
	Token   lexer.Token
	Body    *BlockStatement
	Catch   *CatchClause
	Finally *BlockStatement
}

func (s *TryStatement) statementNode()      {}
func (s *TryStatement) TokenLiteral() string { return s.Token.Literal }
func (s *TryStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *TryStatement) String() string       { return "try " + s.Body.String() }

// ThrowStatement raises a value as an exception.
type ThrowStatement struct {
	Token lexer.Token
	Value Expression
}

func (s *ThrowStatement) statementNode()      {}
func (s *ThrowStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ThrowStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *ThrowStatement) String() string       { return "throw " + s.Value.String() + ";" }

// DestructureTarget names the fields bound by an array/object destructuring
// pattern used in a VarDecl or ForOfStatement.
type DestructureTarget struct {
	Fields []string
}

func (d *DestructureTarget) String() string { return "{" + strings.Join(d.Fields, ", ") + "}" }
