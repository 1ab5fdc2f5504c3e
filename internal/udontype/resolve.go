package udontype

import "github.com/udonc/udonc/internal/ast"

// Lookup resolves a bare type name to a class, interface, or enum Type.
// Implemented by internal/registry so this package stays free of a
// dependency on the registries it is itself used to build.
type Lookup interface {
	HasClass(name string) bool
	HasInterface(name string) bool
	HasEnum(name string) bool
}

var collectionNames = map[string]bool{
	"List": true, "Dictionary": true, "HashSet": true, "Queue": true, "Stack": true,
}

// Resolve converts a surface TypeExpression into a static Type, consulting
// lookup for user-defined class/interface/enum names. Unknown bare names
// default to ExternOpaque (an as-yet-unregistered host type), deferring
// the "undefined type" diagnostic to the caller, which has source position
// context this package does not.
func Resolve(te *ast.TypeExpression, lookup Lookup) *Type {
	if te == nil {
		return Void
	}
	base := resolveBase(te, lookup)
	if te.ArrayDims > 0 {
		return ArrayOf(base, te.ArrayDims)
	}
	return base
}

func resolveBase(te *ast.TypeExpression, lookup Lookup) *Type {
	name := te.Name

	if name == "void" {
		return Void
	}
	if IsPrimitiveName(name) {
		return Primitive(name)
	}
	if name == "DataList" {
		var elem *Type = Primitive(String)
		if te.ElemType != nil {
			elem = Resolve(te.ElemType, lookup)
		}
		return DataList(elem)
	}
	if collectionNames[name] {
		if name == "Dictionary" && len(te.TypeArgs) == 2 {
			return Collection(name, Resolve(te.TypeArgs[0], lookup), Resolve(te.TypeArgs[1], lookup))
		}
		if len(te.TypeArgs) == 1 {
			return Collection(name, nil, Resolve(te.TypeArgs[0], lookup))
		}
		return Collection(name, nil, Primitive(String))
	}

	if lookup != nil {
		switch {
		case lookup.HasClass(name):
			return Class(name)
		case lookup.HasInterface(name):
			return Interface(name)
		case lookup.HasEnum(name):
			return Enum(name)
		}
	}
	return ExternOpaque(name)
}
