package backend

import (
	"fmt"

	"github.com/udonc/udonc/internal/layout"
	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// methodLayoutFor resolves the export surface a surviving MethodCall
// dispatches to (spec.md §4.6). A call reaches the backend, rather than
// being inlined away, only when its receiver is the entry class itself
// (a same-assembly call to another exported method) or an interface
// (cross-assembly, implementor-agnostic by construction): both cases
// are already covered by the layout builder, so this never needs to
// fabricate an export name of its own.
func methodLayoutFor(layouts map[string]*layout.ClassLayout, receiverType *udontype.Type, methodName string, argCount int, hasReturn bool) *layout.MethodLayout {
	switch receiverType.Kind {
	case udontype.KindInterface:
		exportName := receiverType.Name + "_" + methodName
		params := make([]string, argCount)
		for i := range params {
			params[i] = fmt.Sprintf("%s__param_%d", exportName, i)
		}
		returnExport := ""
		if hasReturn {
			returnExport = exportName + "__ret"
		}
		return &layout.MethodLayout{
			ExportMethodName:     exportName,
			ReturnExportName:     returnExport,
			ParameterExportNames: params,
			IsInterfaceMethod:    true,
		}
	case udontype.KindClass:
		if cl, ok := layouts[receiverType.Name]; ok {
			if ml, ok := cl.Methods[methodName]; ok {
				return ml
			}
		}
	}
	return nil
}

// lowerMethodCall emits the cross-assembly RPC sequence spec.md §4.6
// mandates: a SetProgramVariable per parameter, a SendCustomEvent to
// dispatch, and a GetProgramVariable to retrieve the return value when
// the method produces one. The receiver is pushed as the target program
// reference for every call — including a same-assembly self-call, where
// Udon's own runtime treats SendCustomEvent against `this` identically
// to any other UdonBehaviour reference.
func (g *generator) lowerMethodCall(m *tac.MethodCall) {
	hasReturn := m.Dest != nil && m.Dest.Type() != nil && m.Dest.Type().Kind != udontype.KindVoid
	receiverType := m.Receiver.Type()
	ml := methodLayoutFor(g.layouts, receiverType, m.MethodName, len(m.Args), hasReturn)
	if ml == nil {
		g.internalf("MethodCall %s.%s has no resolvable export layout", receiverType, m.MethodName)
		return
	}

	receiverName := g.nameFor(m.Receiver)
	for i, arg := range m.Args {
		if i >= len(ml.ParameterExportNames) {
			break
		}
		g.emitSetProgramVariable(receiverName, ml.ParameterExportNames[i], g.nameFor(arg))
	}
	g.emitSendCustomEvent(receiverName, ml.ExportMethodName)
	if hasReturn && ml.ReturnExportName != "" {
		g.emitGetProgramVariable(receiverName, ml.ReturnExportName, g.nameFor(m.Dest))
	}
}

func (g *generator) emitSetProgramVariable(receiver, paramName, valueName string) {
	nameSlot := g.heap.nameForLiteralString(paramName)
	sig := g.externSignature("UdonBehaviour", "SetProgramVariable")
	g.emitExtern(sig, []string{receiver, nameSlot, valueName}, "")
}

func (g *generator) emitSendCustomEvent(receiver, eventName string) {
	nameSlot := g.heap.nameForLiteralString(eventName)
	sig := g.externSignature("UdonBehaviour", "SendCustomEvent")
	g.emitExtern(sig, []string{receiver, nameSlot}, "")
}

func (g *generator) emitGetProgramVariable(receiver, varName, destName string) {
	nameSlot := g.heap.nameForLiteralString(varName)
	sig := g.externSignature("UdonBehaviour", "GetProgramVariable")
	g.emitExtern(sig, []string{receiver, nameSlot}, destName)
}
