// Package layout assigns the stable UdonBehaviour export names every
// entry class's methods are compiled against: the wire vocabulary the
// backend's SetProgramVariable/SendCustomEvent/GetProgramVariable calls
// and the VM's own event dispatcher agree on (spec.md §3, §4.6).
package layout

import (
	"fmt"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/registry"
	"github.com/udonc/udonc/internal/udontype"
)

// MethodLayout is the export surface of one method, keyed by its source
// name within ClassLayout.Methods.
type MethodLayout struct {
	ExportMethodName     string
	ReturnExportName     string // "" when ReturnType is void
	ParameterExportNames []string
	ParameterTypes       []*udontype.Type
	ReturnType           *udontype.Type
	IsPublic             bool
	IsInterfaceMethod    bool
	IsLifecycleHook      bool
}

// ClassLayout is the full export surface of one entry class.
type ClassLayout struct {
	ClassName string
	Methods   map[string]*MethodLayout
}

// Build assigns layouts to every non-stub entry class in reg. Interface
// methods across every implementor are assigned identically (spec.md
// §8, "Interface dispatch unification"); lifecycle hooks take their
// fixed export name/parameters from reg.Events; everything else gets a
// collision-free per-class name from a monotonic counter over
// registry.MergedMethodNames's stable order.
func Build(reg *registry.Registry) map[string]*ClassLayout {
	result := make(map[string]*ClassLayout)

	for _, name := range reg.Classes.Names() {
		entry, _ := reg.Classes.Lookup(name)
		if reg.IsStub(entry.Decl) || !reg.IsEntryPoint(entry.Decl) {
			continue
		}
		result[name] = buildClassLayout(reg, entry.Decl)
	}
	return result
}

func buildClassLayout(reg *registry.Registry, decl *ast.ClassDecl) *ClassLayout {
	cl := &ClassLayout{ClassName: decl.Name, Methods: make(map[string]*MethodLayout)}
	methods := reg.Classes.MergedMethods(decl.Name)
	counter := 0

	for _, methodName := range reg.Classes.MergedMethodNames(decl.Name) {
		method := methods[methodName]

		if hook, ok := reg.Events.Lookup(methodName); ok {
			cl.Methods[methodName] = lifecycleLayout(reg, method, hook)
			continue
		}

		if ifaceName, ifaceMethod, ok := implementedInterfaceMethod(reg, decl, methodName); ok {
			cl.Methods[methodName] = interfaceLayout(reg, ifaceName, ifaceMethod)
			continue
		}

		counter++
		cl.Methods[methodName] = perClassLayout(reg, decl.Name, method, counter)
	}
	return cl
}

func lifecycleLayout(reg *registry.Registry, method *ast.FunctionDecl, hook registry.LifecycleHook) *MethodLayout {
	paramNames := hook.ParameterNames
	if paramNames == nil {
		paramNames = []string{}
	}
	return &MethodLayout{
		ExportMethodName:     hook.ExportName,
		ParameterExportNames: paramNames,
		ParameterTypes:       resolveParamTypes(reg, method),
		ReturnType:           udontype.Resolve(method.ReturnType, reg),
		IsPublic:             true,
		IsLifecycleHook:      true,
	}
}

func interfaceLayout(reg *registry.Registry, ifaceName string, method *ast.FunctionDecl) *MethodLayout {
	exportName := ifaceName + "_" + method.Name
	paramNames := make([]string, len(method.Params))
	for i := range method.Params {
		paramNames[i] = fmt.Sprintf("%s__param_%d", exportName, i)
	}
	returnType := udontype.Resolve(method.ReturnType, reg)
	returnExport := ""
	if returnType.Kind != udontype.KindVoid {
		returnExport = exportName + "__ret"
	}
	return &MethodLayout{
		ExportMethodName:     exportName,
		ReturnExportName:     returnExport,
		ParameterExportNames: paramNames,
		ParameterTypes:       resolveParamTypes(reg, method),
		ReturnType:           returnType,
		IsPublic:             true,
		IsInterfaceMethod:    true,
	}
}

func perClassLayout(reg *registry.Registry, className string, method *ast.FunctionDecl, counter int) *MethodLayout {
	exportName := fmt.Sprintf("_%s_m%d", className, counter)
	paramNames := make([]string, len(method.Params))
	for i := range method.Params {
		paramNames[i] = fmt.Sprintf("%s__param_%d", exportName, i)
	}
	returnType := udontype.Resolve(method.ReturnType, reg)
	returnExport := ""
	if returnType.Kind != udontype.KindVoid {
		returnExport = exportName + "__ret"
	}
	return &MethodLayout{
		ExportMethodName:     exportName,
		ReturnExportName:     returnExport,
		ParameterExportNames: paramNames,
		ParameterTypes:       resolveParamTypes(reg, method),
		ReturnType:           returnType,
		IsPublic:             method.IsPublic,
	}
}

func resolveParamTypes(reg *registry.Registry, method *ast.FunctionDecl) []*udontype.Type {
	types := make([]*udontype.Type, len(method.Params))
	for i, p := range method.Params {
		types[i] = udontype.Resolve(p.Type, reg)
	}
	return types
}

// implementedInterfaceMethod reports the first interface decl implements
// that declares a method named methodName, along with that interface's
// own method signature (the one export names must be derived from, not
// the implementor's possibly-differently-typed override).
func implementedInterfaceMethod(reg *registry.Registry, decl *ast.ClassDecl, methodName string) (string, *ast.FunctionDecl, bool) {
	for _, ifaceName := range decl.Interfaces {
		iface, ok := reg.Interfaces.Lookup(ifaceName)
		if !ok {
			continue
		}
		for _, m := range iface.Methods {
			if m.Name == methodName {
				return ifaceName, m, true
			}
		}
	}
	return "", nil, false
}
