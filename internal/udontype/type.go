// Package udontype models the compiler's static type system: the closed
// set of primitive, array, collection, class, interface, and extern-opaque
// types a surface-language expression can carry, plus each type's mapping
// onto the handful of categories the Udon heap actually distinguishes.
package udontype

import "fmt"

// Kind discriminates the concrete shape of a Type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindCollection
	KindDataList
	KindClass
	KindInterface
	KindEnum
	KindGenericParam
	KindExternOpaque
	KindVoid
)

// Primitive names understood directly by the type system.
const (
	Int8    = "int8"
	Int16   = "int16"
	Int32   = "int32"
	Int64   = "int64"
	UInt8   = "uint8"
	UInt16  = "uint16"
	UInt32  = "uint32"
	UInt64  = "uint64"
	Single  = "single"
	Double  = "double"
	Boolean = "boolean"
	String  = "string"
	BigInt  = "bigint"
)

var primitiveNames = map[string]bool{
	Int8: true, Int16: true, Int32: true, Int64: true,
	UInt8: true, UInt16: true, UInt32: true, UInt64: true,
	Single: true, Double: true, Boolean: true, String: true, BigInt: true,
}

// IsPrimitiveName reports whether name is one of the built-in scalar types.
func IsPrimitiveName(name string) bool { return primitiveNames[name] }

// Type is the closed tagged union of everything a value can be typed as.
// Exactly one of the kind-specific fields is meaningful for a given Kind.
type Type struct {
	Kind Kind

	// KindPrimitive
	PrimitiveName string

	// KindArray
	Element   *Type
	Dimension int

	// KindCollection (List<T>, Dictionary<K,V>, HashSet<T>, Queue<T>, Stack<T>)
	CollectionName string
	KeyType        *Type // nil unless CollectionName is a map-shaped collection
	ValueType      *Type

	// KindDataList
	DataListElement *Type

	// KindClass, KindInterface, KindEnum
	Name string

	// KindGenericParam
	ParamName string

	// KindExternOpaque — a host-provided type with no surface-language body
	// (e.g. Transform, GameObject, VRCPlayerApi).
	ExternName string
}

// Void is the singleton type for methods with no return value.
var Void = &Type{Kind: KindVoid}

// Primitive returns the canonical Type for a primitive name. Panics on an
// unrecognized name since callers are expected to have validated it
// against IsPrimitiveName already.
func Primitive(name string) *Type {
	if !IsPrimitiveName(name) {
		panic(fmt.Sprintf("udontype: not a primitive name: %q", name))
	}
	return &Type{Kind: KindPrimitive, PrimitiveName: name}
}

// ArrayOf builds an N-dimensional array type over element.
func ArrayOf(element *Type, dims int) *Type {
	return &Type{Kind: KindArray, Element: element, Dimension: dims}
}

// Collection builds a generic collection type.
func Collection(name string, key, value *Type) *Type {
	return &Type{Kind: KindCollection, CollectionName: name, KeyType: key, ValueType: value}
}

// DataList builds a DataList<T> type (Udon's native resizable list).
func DataList(element *Type) *Type {
	return &Type{Kind: KindDataList, DataListElement: element}
}

// Class builds a reference to a user-defined class by name.
func Class(name string) *Type { return &Type{Kind: KindClass, Name: name} }

// Interface builds a reference to a user-defined interface by name.
func Interface(name string) *Type { return &Type{Kind: KindInterface, Name: name} }

// Enum builds a reference to a user-defined enum by name.
func Enum(name string) *Type { return &Type{Kind: KindEnum, Name: name} }

// GenericParam builds an unresolved generic type parameter placeholder.
func GenericParam(name string) *Type { return &Type{Kind: KindGenericParam, ParamName: name} }

// ExternOpaque builds a reference to a host type with no surface-language
// definition.
func ExternOpaque(name string) *Type { return &Type{Kind: KindExternOpaque, ExternName: name} }

// String renders the type the way error messages should display it.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindPrimitive:
		return t.PrimitiveName
	case KindArray:
		s := t.Element.String()
		for i := 0; i < t.Dimension; i++ {
			s += "[]"
		}
		return s
	case KindCollection:
		if t.KeyType != nil {
			return fmt.Sprintf("%s<%s, %s>", t.CollectionName, t.KeyType, t.ValueType)
		}
		return fmt.Sprintf("%s<%s>", t.CollectionName, t.ValueType)
	case KindDataList:
		return fmt.Sprintf("DataList<%s>", t.DataListElement)
	case KindClass, KindInterface, KindEnum:
		return t.Name
	case KindGenericParam:
		return t.ParamName
	case KindExternOpaque:
		return t.ExternName
	default:
		return "?"
	}
}

// Equal reports deep structural equality between two types.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindPrimitive:
		return t.PrimitiveName == other.PrimitiveName
	case KindArray:
		return t.Dimension == other.Dimension && t.Element.Equal(other.Element)
	case KindCollection:
		return t.CollectionName == other.CollectionName &&
			t.KeyType.Equal(other.KeyType) && t.ValueType.Equal(other.ValueType)
	case KindDataList:
		return t.DataListElement.Equal(other.DataListElement)
	case KindClass, KindInterface, KindEnum:
		return t.Name == other.Name
	case KindGenericParam:
		return t.ParamName == other.ParamName
	case KindExternOpaque:
		return t.ExternName == other.ExternName
	default:
		return true // both KindVoid
	}
}

// HeapCategory is the coarse grouping the Udon heap allocator and the
// assembly backend actually care about: a handful of System.* boxes plus
// "reference" for anything else.
type HeapCategory int

const (
	HeapNumeric HeapCategory = iota
	HeapBoolean
	HeapString
	HeapReference // classes, interfaces, arrays, collections, externs
)

// HeapCategoryOf classifies t for heap-address naming (spec.md §4.6,
// "SystemX" constant suffixes) and for the heap-budget accountant.
func HeapCategoryOf(t *Type) HeapCategory {
	if t == nil || t.Kind != KindPrimitive {
		return HeapReference
	}
	switch t.PrimitiveName {
	case Boolean:
		return HeapBoolean
	case String:
		return HeapString
	default:
		return HeapNumeric
	}
}

// UdonTypeName renders the target-level Udon type name used in `.uasm`
// data-section declarations (e.g. "SystemInt32", "SystemString",
// "SystemObjectArray").
func UdonTypeName(t *Type) string {
	switch t.Kind {
	case KindVoid:
		return "SystemVoid"
	case KindPrimitive:
		return "System" + primitiveUdonSuffix(t.PrimitiveName)
	case KindArray:
		return UdonTypeName(t.Element) + "Array"
	case KindDataList:
		return "VRCDataList"
	case KindCollection:
		return udonCollectionSuffix(t.CollectionName)
	case KindClass, KindInterface:
		return "SystemObject"
	case KindEnum:
		return "SystemInt32"
	case KindExternOpaque:
		return t.ExternName
	default:
		return "SystemObject"
	}
}

func primitiveUdonSuffix(name string) string {
	switch name {
	case Int8:
		return "SByte"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt8:
		return "Byte"
	case UInt16:
		return "UInt16"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case Single:
		return "Single"
	case Double:
		return "Double"
	case Boolean:
		return "Boolean"
	case String:
		return "String"
	case BigInt:
		return "Int64"
	default:
		return "Object"
	}
}

func udonCollectionSuffix(name string) string {
	switch name {
	case "List":
		return "ObjectList"
	case "Dictionary":
		return "ObjectDictionary"
	case "HashSet":
		return "ObjectHashSet"
	case "Queue":
		return "ObjectQueue"
	case "Stack":
		return "ObjectStack"
	default:
		return "Object"
	}
}
