package backend

import (
	"github.com/udonc/udonc/internal/externs"
	"github.com/udonc/udonc/internal/udontype"
)

var floatPrimitives = map[string]bool{udontype.Single: true, udontype.Double: true}

var integerPrimitives = map[string]bool{
	udontype.Int8: true, udontype.Int16: true, udontype.Int32: true, udontype.Int64: true,
	udontype.UInt8: true, udontype.UInt16: true, udontype.UInt32: true, udontype.UInt64: true,
	udontype.BigInt: true,
}

func isFloatPrimitive(t *udontype.Type) bool {
	return t != nil && t.Kind == udontype.KindPrimitive && floatPrimitives[t.PrimitiveName]
}

func isIntegerPrimitive(t *udontype.Type) bool {
	return t != nil && t.Kind == udontype.KindPrimitive && integerPrimitives[t.PrimitiveName]
}

// convertSignature resolves (or synthesizes) the SystemConvert.ToXxx
// extern a plain scalar conversion lowers to.
func (g *generator) convertSignature(from, to *udontype.Type) string {
	name := "To" + convertSuffix(to)
	if sig, found := g.resolver.ResolveExternSignature("SystemConvert", name, externs.KindCast,
		[]*udontype.Type{from}, to); found {
		return string(sig)
	}
	return "SystemConvert." + name + "__" + udontype.UdonTypeName(from)
}

func convertSuffix(t *udontype.Type) string {
	if t == nil || t.Kind != udontype.KindPrimitive {
		return "Object"
	}
	switch t.PrimitiveName {
	case udontype.Int8:
		return "SByte"
	case udontype.Int16:
		return "Int16"
	case udontype.Int32:
		return "Int32"
	case udontype.Int64, udontype.BigInt:
		return "Int64"
	case udontype.UInt8:
		return "Byte"
	case udontype.UInt16:
		return "UInt16"
	case udontype.UInt32:
		return "UInt32"
	case udontype.UInt64:
		return "UInt64"
	case udontype.Single:
		return "Single"
	case udontype.Double:
		return "Double"
	case udontype.Boolean:
		return "Boolean"
	case udontype.String:
		return "String"
	default:
		return "Object"
	}
}

// lowerCast emits the instruction sequence for one tac.Cast (spec.md
// §4.5): a no-op Copy when source and target coincide, a
// Double->Truncate->target chain for float-to-integer narrowing (Udon's
// own SystemConvert.ToInt32 etc. round rather than truncate, so a plain
// single-extern conversion would silently change rounding behavior),
// and a single SystemConvert extern otherwise.
func (g *generator) lowerCast(srcName string, srcType, dstType *udontype.Type, dstName string) {
	if srcType.Equal(dstType) {
		g.emitCopy(srcName, dstName)
		return
	}
	if isFloatPrimitive(srcType) && isIntegerPrimitive(dstType) {
		doubleType := udontype.Primitive(udontype.Double)
		asDouble := srcName
		if srcType.PrimitiveName != udontype.Double {
			asDouble = g.heap.nameForSynthetic("cast")
			g.emitExtern(g.convertSignature(srcType, doubleType), []string{srcName}, asDouble)
		}
		truncated := g.heap.nameForSynthetic("cast")
		truncSig := "SystemMath.Truncate__SystemDouble"
		if sig, found := g.resolver.ResolveExternSignature("SystemMath", "Truncate", externs.KindCall,
			[]*udontype.Type{doubleType}, doubleType); found {
			truncSig = string(sig)
		}
		g.emitExtern(truncSig, []string{asDouble}, truncated)
		g.emitExtern(g.convertSignature(doubleType, dstType), []string{truncated}, dstName)
		return
	}
	g.emitExtern(g.convertSignature(srcType, dstType), []string{srcName}, dstName)
}
