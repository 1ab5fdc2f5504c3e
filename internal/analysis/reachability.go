package analysis

import (
	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/registry"
)

// sendCustomEventNames are the four cross-assembly dispatch calls whose
// first argument names the method to invoke (spec.md §4.2).
var sendCustomEventNames = map[string]bool{
	"SendCustomEvent":               true,
	"SendCustomEventDelayedSeconds": true,
	"SendCustomEventDelayedFrames":  true,
	"SendCustomNetworkEvent":        true,
}

// IsSendCustomEventName reports whether name is one of the four
// "send custom event" cross-assembly dispatch calls, exported so
// internal/lower can route them to the backend's RPC lowering instead of
// an ordinary MethodCall (spec.md §4.6).
func IsSendCustomEventName(name string) bool {
	return sendCustomEventNames[name]
}

// MethodRef names one method owned by one class.
type MethodRef struct {
	Class  string
	Method string
}

// Reachable is the conservative reachable set the tree-shaker prunes
// against: Reachable[class][method] is present iff method survives.
type Reachable map[string]map[string]bool

// Add marks {class, method} reachable.
func (r Reachable) Add(class, method string) {
	if r[class] == nil {
		r[class] = make(map[string]bool)
	}
	r[class][method] = true
}

// Has reports whether {class, method} was found reachable.
func (r Reachable) Has(class, method string) bool {
	return r[class] != nil && r[class][method]
}

// ComputeReachable runs the method-usage (tree-shaking) analysis of
// spec.md §4.2: starting from every method of every UdonBehaviour entry
// class, it walks call sites to build a conservative reachable set.
func ComputeReachable(reg *registry.Registry) Reachable {
	ownersByName := make(map[string][]string)
	for _, name := range reg.Classes.Names() {
		entry, _ := reg.Classes.Lookup(name)
		if reg.IsStub(entry.Decl) {
			continue
		}
		for methodName := range reg.Classes.MergedMethods(name) {
			ownersByName[methodName] = append(ownersByName[methodName], name)
		}
	}

	result := make(Reachable)
	visited := make(map[MethodRef]bool)
	var queue []MethodRef

	enqueue := func(ref MethodRef) {
		if visited[ref] {
			return
		}
		visited[ref] = true
		result.Add(ref.Class, ref.Method)
		queue = append(queue, ref)
	}

	for _, name := range reg.Classes.Names() {
		entry, _ := reg.Classes.Lookup(name)
		if reg.IsStub(entry.Decl) || !reg.IsEntryPoint(entry.Decl) {
			continue
		}
		for methodName := range reg.Classes.MergedMethods(name) {
			enqueue(MethodRef{Class: name, Method: methodName})
		}
	}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		visitMethodBody(reg, ref, ownersByName, enqueue)
	}

	return result
}

func visitMethodBody(reg *registry.Registry, ref MethodRef, ownersByName map[string][]string, enqueue func(MethodRef)) {
	entry, ok := reg.Classes.Lookup(ref.Class)
	if !ok || reg.IsStub(entry.Decl) {
		return
	}

	if ref.Method == "constructor" {
		collect := collector(reg, ref.Class, ownersByName, enqueue)
		for _, field := range reg.Classes.MergedFields(ref.Class) {
			walkExpression(field.Init, collect)
		}
		if entry.Decl.Constructor != nil {
			walkBlock(entry.Decl.Constructor.Body, collect)
		}
		return
	}

	method, ok := reg.Classes.MergedMethods(ref.Class)[ref.Method]
	if !ok || method.Body == nil {
		return
	}
	walkBlock(method.Body, collector(reg, ref.Class, ownersByName, enqueue))
}

func collector(reg *registry.Registry, currentClass string, ownersByName map[string][]string, enqueue func(MethodRef)) func(ast.Expression) {
	return func(e ast.Expression) {
		switch expr := e.(type) {
		case *ast.NewExpr:
			enqueue(MethodRef{Class: expr.ClassName, Method: "constructor"})

		case *ast.CallExpr:
			switch callee := expr.Callee.(type) {
			case *ast.MemberExpr:
				if sendCustomEventNames[callee.Property] {
					eventName, ok := literalStringArg(expr.Args)
					if !ok {
						return
					}
					if _, isThis := callee.Receiver.(*ast.ThisExpr); isThis {
						enqueue(MethodRef{Class: currentClass, Method: eventName})
						return
					}
					for _, owner := range ownersByName[eventName] {
						ownerEntry, ok := reg.Classes.Lookup(owner)
						if ok && reg.IsEntryPoint(ownerEntry.Decl) {
							enqueue(MethodRef{Class: owner, Method: eventName})
						}
					}
					return
				}
				switch receiver := callee.Receiver.(type) {
				case *ast.ThisExpr:
					enqueue(MethodRef{Class: currentClass, Method: callee.Property})
				case *ast.SuperExpr:
					if entry, ok := reg.Classes.Lookup(currentClass); ok {
						enqueue(MethodRef{Class: entry.ParentName, Method: callee.Property})
					}
				case *ast.Identifier:
					if reg.Classes.HasClass(receiver.Value) {
						enqueue(MethodRef{Class: receiver.Value, Method: callee.Property})
					}
				}

			case *ast.Identifier:
				if _, ok := reg.Classes.MergedMethods(currentClass)[callee.Value]; ok {
					enqueue(MethodRef{Class: currentClass, Method: callee.Value})
					return
				}
				for _, owner := range ownersByName[callee.Value] {
					enqueue(MethodRef{Class: owner, Method: callee.Value})
				}
			}
		}
	}
}

func literalStringArg(args []ast.Expression) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	lit, ok := args[0].(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return "", false
	}
	return lit.Value, true
}
