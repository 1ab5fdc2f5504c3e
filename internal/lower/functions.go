package lower

import (
	"fmt"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/layout"
	"github.com/udonc/udonc/internal/registry"
	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// lowerClass builds one tac.Function per reachable method of decl, plus
// the synthesized `_start` entry (spec.md §6). `Start`, when present, is
// folded into `_start` rather than exported on its own, since `_start`'s
// tail is defined to run the user's Start body last.
func (l *Lowerer) lowerClass(decl *ast.ClassDecl, methods map[string]bool) []*tac.Function {
	funcs := []*tac.Function{l.synthesizeStart(decl)}

	methodDecls := l.reg.Classes.MergedMethods(decl.Name)
	for _, name := range l.reg.Classes.MergedMethodNames(decl.Name) {
		if name == "Start" {
			continue
		}
		if !methods[name] {
			continue
		}
		md := methodDecls[name]
		if md == nil || md.Body == nil {
			continue
		}
		funcs = append(funcs, l.lowerMethod(decl.Name, name, md))
	}
	return funcs
}

// fieldOrder returns every field name reachable on className in stable
// base-to-derived declaration order, the same shape as
// registry.MergedMethodNames but for fields (registry exposes no such
// helper since only internal/lower needs field emission order).
func fieldOrder(reg *registry.Registry, className string) []string {
	chain := reg.Classes.Hierarchy(className)
	var order []string
	seen := make(map[string]bool)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Decl.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				order = append(order, f.Name)
			}
		}
	}
	return order
}

// synthesizeStart builds the entry class's `_start` body: top-level
// non-literal constant initializers, then property (field) initializers,
// then the constructor body, then the user's own Start body if declared
// (spec.md §6). Literal-initialized constants never materialize here —
// lowerIdentifier inlines them directly at each reference, per the
// root-scope constants LowerProgram registers before lowering begins.
func (l *Lowerer) synthesizeStart(decl *ast.ClassDecl) *tac.Function {
	l.class = decl.Name
	l.method = "_start"
	l.instancePrefix = ""
	l.thisOverride = nil
	l.fn = &tac.Function{Name: decl.Name + "._start", Exported: true, ExportLabel: "_start"}

	l.pushScope()

	for _, name := range l.reg.ConstantNames() {
		if sym, ok := l.scope.Resolve(name); ok && sym.IsLiteralInit {
			continue
		}
		cdecl := l.reg.Constants[name]
		typ := udontype.Resolve(cdecl.Type, l.reg)
		val := l.lowerExpression(cdecl.Value)
		dest := &tac.Variable{Name: name, Typ: typ, Flags: tac.VariableFlags{IsExported: true}}
		l.emit(&tac.Assignment{Dest: dest, Src: val})
	}

	fields := l.reg.Classes.MergedFields(decl.Name)
	for _, fname := range fieldOrder(l.reg, decl.Name) {
		f := fields[fname]
		if f.IsStatic || f.Init == nil {
			continue
		}
		val := l.lowerExpression(f.Init)
		l.emit(&tac.Assignment{Dest: l.fieldVariable(fname, udontype.Resolve(f.Type, l.reg)), Src: val})
	}

	entry, _ := l.reg.Classes.Lookup(decl.Name)
	if entry.Decl.Constructor != nil {
		if len(entry.Decl.Constructor.Params) > 0 {
			l.errorf(entry.Decl.Constructor, "entry class %q constructor must be parameterless", decl.Name)
		}
		for _, stmt := range entry.Decl.Constructor.Body.Statements {
			l.lowerStatement(stmt)
		}
	}

	if start, ok := l.reg.Classes.MergedMethods(decl.Name)["Start"]; ok && start.Body != nil {
		for _, stmt := range start.Body.Statements {
			l.lowerStatement(stmt)
		}
	}

	l.popScope()
	l.emit(&tac.Return{})
	return l.fn
}

// lowerMethod lowers one reachable method into its own tac.Function,
// exported under the name internal/layout assigned it. A method carrying
// the recursive-method decorator gets an explicit shadow-stack
// prologue/epilogue instead of relying on the VM to preserve locals
// across self-recursion (spec.md §4.3, "Recursive methods").
func (l *Lowerer) lowerMethod(className, methodName string, decl *ast.FunctionDecl) *tac.Function {
	l.class = className
	l.method = methodName
	l.instancePrefix = ""
	l.thisOverride = nil
	l.fn = &tac.Function{Name: className + "." + methodName}

	var ml *layout.MethodLayout
	if cl, ok := l.layouts[className]; ok {
		if m, ok := cl.Methods[methodName]; ok {
			ml = m
			l.fn.Exported = true
			l.fn.ExportLabel = m.ExportMethodName
		}
	}

	returnType := udontype.Resolve(decl.ReturnType, l.reg)
	recursive := decl.HasDecorator(recursiveMethodDecorator)

	l.pushScope()
	for i, p := range decl.Params {
		typ := udontype.Resolve(p.Type, l.reg)
		l.scope.DefineParameter(p.Name, typ)
		if ml != nil && i < len(ml.ParameterExportNames) {
			src := &tac.Variable{Name: ml.ParameterExportNames[i], Typ: typ, Flags: tac.VariableFlags{IsExported: true}}
			dest := &tac.Variable{Name: p.Name, Typ: typ, Flags: tac.VariableFlags{IsParameter: true}}
			l.emit(&tac.Copy{Dest: dest, Src: src})
		}
	}

	var epilogueLbl *tac.Label
	var savedReturnLbl *tac.Label
	var savedReturnVar *tac.Variable
	var recurseReturnVar *tac.Variable
	var savedRecClass, savedRecMethod string
	var savedRecDecl *ast.FunctionDecl
	if recursive {
		l.emitRecursivePrologue(className, decl)
		epilogueLbl = l.newLabel("recurse_exit")
		savedReturnLbl, savedReturnVar = l.inlineReturnLabel, l.inlineReturnVar
		l.inlineReturnLabel = epilogueLbl
		if returnType != nil && returnType.Kind != udontype.KindVoid {
			recurseReturnVar = &tac.Variable{Name: className + "__" + methodName + "__ret", Typ: returnType, Flags: tac.VariableFlags{IsExported: true}}
		}
		l.inlineReturnVar = recurseReturnVar

		savedRecClass, savedRecMethod, savedRecDecl = l.recursiveClass, l.recursiveMethod, l.recursiveDecl
		l.recursiveClass, l.recursiveMethod, l.recursiveDecl = className, methodName, decl
	}

	for _, stmt := range decl.Body.Statements {
		l.lowerStatement(stmt)
	}

	if recursive {
		l.recursiveClass, l.recursiveMethod, l.recursiveDecl = savedRecClass, savedRecMethod, savedRecDecl
		l.emit(&tac.LabelDef{Label: epilogueLbl})
		l.emitRecursiveEpilogue(className, decl)
		l.inlineReturnLabel, l.inlineReturnVar = savedReturnLbl, savedReturnVar
		if recurseReturnVar != nil {
			l.emit(&tac.Return{Value: recurseReturnVar, ReturnVarName: l.currentReturnVarName()})
		} else {
			l.emit(&tac.Return{})
		}
	}

	l.popScope()

	if len(l.fn.Instructions) == 0 {
		l.emit(&tac.Return{})
	} else if _, ok := l.fn.Instructions[len(l.fn.Instructions)-1].(*tac.Return); !ok {
		l.emit(&tac.Return{})
	}

	return l.fn
}

func (l *Lowerer) shadowArrayVar(className, methodName, paramName string, elemType *udontype.Type) *tac.Variable {
	return &tac.Variable{
		Name:  fmt.Sprintf("__shadow_%s_%s_%s", className, methodName, paramName),
		Typ:   udontype.DataList(elemType),
		Flags: tac.VariableFlags{IsExported: true},
	}
}

// emitRecursivePrologue pushes each parameter's incoming value onto its
// shadow array, one array per parameter, so a self-recursive call below
// this frame cannot clobber it (spec.md §4.3, §8 scenario 6: the push is
// an ArrayAssignment against the shadow array at its current length).
func (l *Lowerer) emitRecursivePrologue(className string, decl *ast.FunctionDecl) {
	for _, p := range decl.Params {
		typ := udontype.Resolve(p.Type, l.reg)
		shadow := l.shadowArrayVar(className, decl.Name, p.Name, typ)
		current := &tac.Variable{Name: p.Name, Typ: typ, Flags: tac.VariableFlags{IsParameter: true}}

		count := l.newTemp(udontype.Primitive(udontype.Int32))
		l.emit(&tac.Call{Dest: count, ExternOwner: "VRCDataList", ExternName: "Count", Args: []tac.Operand{shadow}})
		l.emit(&tac.ArrayAssignment{Array: shadow, Index: count, Value: current})
	}
}

// peekRecursiveShadowTop reads a parameter's current shadow-array top
// back into its local variable without removing it, returning the index
// the value was read from so a caller that does want to shrink the
// array (emitRecursiveEpilogue) can do so with one extra instruction.
func (l *Lowerer) peekRecursiveShadowTop(shadow *tac.Variable, paramName string, typ *udontype.Type) tac.Operand {
	count := l.newTemp(udontype.Primitive(udontype.Int32))
	l.emit(&tac.Call{Dest: count, ExternOwner: "VRCDataList", ExternName: "Count", Args: []tac.Operand{shadow}})
	lastIdx := l.newTemp(udontype.Primitive(udontype.Int32))
	one := tac.IntConstant("1", udontype.Primitive(udontype.Int32))
	l.emit(&tac.BinaryOp{Dest: lastIdx, Left: count, Op: "-", Right: one})

	restored := l.newTemp(typ)
	l.emit(&tac.ArrayAccess{Dest: restored, Array: shadow, Index: lastIdx})
	l.emit(&tac.Copy{Dest: &tac.Variable{Name: paramName, Typ: typ, Flags: tac.VariableFlags{IsParameter: true}}, Src: restored})
	return lastIdx
}

// emitRecursiveEpilogue pops this frame's slot back off each parameter's
// shadow array, restoring the caller's value before returning (spec.md
// §8 scenario 6: the pop reads through an ArrayAccess before the slot is
// removed).
func (l *Lowerer) emitRecursiveEpilogue(className string, decl *ast.FunctionDecl) {
	for _, p := range decl.Params {
		typ := udontype.Resolve(p.Type, l.reg)
		shadow := l.shadowArrayVar(className, decl.Name, p.Name, typ)
		lastIdx := l.peekRecursiveShadowTop(shadow, p.Name, typ)
		l.emit(&tac.Call{ExternOwner: "VRCDataList", ExternName: "RemoveAt", Args: []tac.Operand{shadow, lastIdx}})
	}
}

// maybeRestoreRecursiveShadow restores a recursive method's own parameter
// locals immediately after a self-recursive call returns, before the
// rest of the expression that made the call consumes them. The nested
// call's own prologue overwrote the same heap slot this frame is still
// reading (every invocation of a method shares one global address per
// parameter, not a per-call stack frame), and its epilogue only unwinds
// its own push — this frame's value is left sitting one slot down in
// the shadow array until it's peeked back out here (spec.md §4.3,
// "Recursive methods").
func (l *Lowerer) maybeRestoreRecursiveShadow(targetClass, methodName string) {
	if l.recursiveDecl == nil || targetClass != l.recursiveClass || methodName != l.recursiveMethod {
		return
	}
	for _, p := range l.recursiveDecl.Params {
		typ := udontype.Resolve(p.Type, l.reg)
		shadow := l.shadowArrayVar(l.recursiveClass, l.recursiveMethod, p.Name, typ)
		l.peekRecursiveShadowTop(shadow, p.Name, typ)
	}
}

// tryInlineCall inlines a call to a non-UdonBehaviour (helper) class's
// method: UdonBehaviour entry classes keep real cross-assembly dispatch
// (spec.md §4.6), and a call found already on the inline chain falls back
// to a real MethodCall instead of inlining, breaking infinite recursion
// at lowering time (spec.md §4.3, "Inlining").
//
// Inlining requires the receiver to resolve to a concrete named
// variable — the instance prefix `new` reserved, or the enclosing
// method's own `this` — since field accesses inside the inlined body
// rewrite to `<prefix>_<field>`. A receiver that isn't a plain variable
// (a temporary produced by a chained expression, say) is left as an
// ordinary MethodCall.
func (l *Lowerer) tryInlineCall(targetClass, methodName string, receiver tac.Operand, args []tac.Operand) (tac.Operand, bool) {
	if targetClass == "" {
		return nil, false
	}
	entry, ok := l.reg.Classes.Lookup(targetClass)
	if !ok || l.reg.IsEntryPoint(entry.Decl) {
		return nil, false
	}
	receiverVar, ok := receiver.(*tac.Variable)
	if !ok {
		return nil, false
	}

	chainKey := targetClass + "." + methodName
	for _, c := range l.inlineChain {
		if c == chainKey {
			return nil, false
		}
	}

	method := l.reg.Classes.MergedMethods(targetClass)[methodName]
	if method == nil || method.Body == nil {
		return nil, false
	}

	savedClass, savedMethod := l.class, l.method
	savedPrefix, savedOverride := l.instancePrefix, l.thisOverride
	savedReturnLbl, savedReturnVar := l.inlineReturnLabel, l.inlineReturnVar

	l.inlineChain = append(l.inlineChain, chainKey)
	l.class = targetClass
	l.method = methodName
	l.instancePrefix = receiverVar.Name
	l.thisOverride = receiverVar

	l.pushScope()
	for i, p := range method.Params {
		typ := udontype.Resolve(p.Type, l.reg)
		l.scope.DefineParameter(p.Name, typ)
		if i < len(args) {
			l.emit(&tac.Copy{Dest: &tac.Variable{Name: p.Name, Typ: typ, Flags: tac.VariableFlags{IsLocal: true}}, Src: args[i]})
		}
	}

	returnType := udontype.Resolve(method.ReturnType, l.reg)
	var resultVar *tac.Variable
	endLbl := l.newLabel("inline_end")
	l.inlineReturnLabel = endLbl
	if returnType != nil && returnType.Kind != udontype.KindVoid {
		resultVar = &tac.Variable{Name: receiverVar.Name + "__" + methodName + "__ret", Typ: returnType, Flags: tac.VariableFlags{IsLocal: true}}
	}
	l.inlineReturnVar = resultVar

	for _, stmt := range method.Body.Statements {
		l.lowerStatement(stmt)
	}
	l.emit(&tac.LabelDef{Label: endLbl})

	l.popScope()
	l.class, l.method = savedClass, savedMethod
	l.instancePrefix, l.thisOverride = savedPrefix, savedOverride
	l.inlineReturnLabel, l.inlineReturnVar = savedReturnLbl, savedReturnVar
	l.inlineChain = l.inlineChain[:len(l.inlineChain)-1]

	if resultVar != nil {
		return resultVar, true
	}
	return tac.NullConstant(), true
}

// initializeInlineInstance runs a helper class's field initializers and
// constructor body against a fresh inline instance prefix, the
// construction-time counterpart to tryInlineCall (spec.md §4.3, §4.4).
func (l *Lowerer) initializeInlineInstance(className, prefix string, args []tac.Operand) {
	entry, ok := l.reg.Classes.Lookup(className)
	if !ok {
		return
	}

	savedClass, savedMethod := l.class, l.method
	savedPrefix, savedOverride := l.instancePrefix, l.thisOverride
	l.class = className
	l.method = "constructor"
	l.instancePrefix = prefix
	l.thisOverride = &tac.Variable{Name: prefix, Typ: udontype.Class(className)}

	l.pushScope()
	fields := l.reg.Classes.MergedFields(className)
	for _, fname := range fieldOrder(l.reg, className) {
		f := fields[fname]
		if f.IsStatic || f.Init == nil {
			continue
		}
		val := l.lowerExpression(f.Init)
		l.emit(&tac.Assignment{Dest: l.fieldVariable(fname, udontype.Resolve(f.Type, l.reg)), Src: val})
	}

	if entry.Decl.Constructor != nil {
		for i, p := range entry.Decl.Constructor.Params {
			typ := udontype.Resolve(p.Type, l.reg)
			l.scope.DefineParameter(p.Name, typ)
			if i < len(args) {
				l.emit(&tac.Copy{Dest: &tac.Variable{Name: p.Name, Typ: typ, Flags: tac.VariableFlags{IsLocal: true}}, Src: args[i]})
			}
		}
		for _, stmt := range entry.Decl.Constructor.Body.Statements {
			l.lowerStatement(stmt)
		}
	}
	l.popScope()

	l.class, l.method = savedClass, savedMethod
	l.instancePrefix, l.thisOverride = savedPrefix, savedOverride
}
