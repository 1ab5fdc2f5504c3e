package backend

import (
	"fmt"

	"github.com/udonc/udonc/internal/externs"
	"github.com/udonc/udonc/internal/udontype"
)

// comparisonOps always return Boolean regardless of operand type
// (spec.md §4.5: "comparison operators return Boolean").
var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

var binaryOpNames = map[string]string{
	"+": "Add", "-": "Subtraction", "*": "Multiplication", "/": "Division", "%": "Remainder",
	"&": "BitwiseAnd", "|": "BitwiseOr", "^": "ExclusiveOr", "<<": "LeftShift", ">>": "RightShift",
	"&&": "LogicalAnd", "||": "LogicalOr",
	"==": "Equality", "!=": "Inequality",
	"<": "LessThan", "<=": "LessThanOrEqual", ">": "GreaterThan", ">=": "GreaterThanOrEqual",
}

var unaryOpNames = map[string]string{
	"-": "UnaryMinus", "!": "UnaryNegation", "~": "BitwiseComplement", "+": "UnaryPlus",
}

// binaryReturnType is the result type a BinaryOp produces on the
// backend's stack: Boolean for every comparison operator, otherwise the
// operand type lowering already unified both sides to.
func binaryReturnType(op string, left *udontype.Type) *udontype.Type {
	if comparisonOps[op] {
		return udontype.Primitive(udontype.Boolean)
	}
	return left
}

// unaryReturnType forces Boolean for logical negation (spec.md §4.5:
// "! forces Boolean"), otherwise keeps the operand's own type.
func unaryReturnType(op string, operand *udontype.Type) *udontype.Type {
	if op == "!" {
		return udontype.Primitive(udontype.Boolean)
	}
	return operand
}

// binarySignature resolves (or synthesizes) the extern symbol a
// BinaryOp lowers to, keyed by the operator's Udon-side name rather
// than its surface-language symbol.
func (g *generator) binarySignature(op string, left, right, ret *udontype.Type) string {
	name, ok := binaryOpNames[op]
	if !ok {
		name = "Op" + op
	}
	if sig, found := g.resolver.ResolveExternSignature("Operator", name, externs.KindBinaryOp,
		[]*udontype.Type{left, right}, ret); found {
		return string(sig)
	}
	return fmt.Sprintf("Operator.op_%s__%s_%s__%s", name,
		udontype.UdonTypeName(left), udontype.UdonTypeName(right), udontype.UdonTypeName(ret))
}

func (g *generator) unarySignature(op string, operand, ret *udontype.Type) string {
	name, ok := unaryOpNames[op]
	if !ok {
		name = "Op" + op
	}
	if sig, found := g.resolver.ResolveExternSignature("Operator", name, externs.KindUnaryOp,
		[]*udontype.Type{operand}, ret); found {
		return string(sig)
	}
	return fmt.Sprintf("Operator.op_%s__%s__%s", name, udontype.UdonTypeName(operand), udontype.UdonTypeName(ret))
}
