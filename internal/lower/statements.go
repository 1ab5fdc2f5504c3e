package lower

import (
	"fmt"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// lowerStatement dispatches on the concrete statement type, appending
// instructions to the function currently being built.
func (l *Lowerer) lowerStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		l.lowerBlock(s)
	case *ast.ExpressionStatement:
		l.lowerExpression(s.Expr)
	case *ast.VarDecl:
		l.lowerVarDecl(s)
	case *ast.AssignmentStatement:
		l.lowerAssignment(s)
	case *ast.IfStatement:
		l.lowerIf(s)
	case *ast.WhileStatement:
		l.lowerWhile(s)
	case *ast.DoWhileStatement:
		l.lowerDoWhile(s)
	case *ast.ForStatement:
		l.lowerFor(s)
	case *ast.ForOfStatement:
		l.lowerForOf(s)
	case *ast.SwitchStatement:
		l.lowerSwitch(s)
	case *ast.BreakStatement:
		l.lowerBreak(s)
	case *ast.ContinueStatement:
		l.lowerContinue(s)
	case *ast.ReturnStatement:
		l.lowerReturn(s)
	case *ast.TryStatement:
		l.lowerTry(s)
	case *ast.ThrowStatement:
		l.lowerThrow(s)
	default:
		l.errorf(stmt, "unsupported statement %T", stmt)
	}
}

func (l *Lowerer) lowerBlock(b *ast.BlockStatement) {
	if b == nil {
		return
	}
	l.pushScope()
	for _, stmt := range b.Statements {
		l.lowerStatement(stmt)
	}
	l.popScope()
}

func (l *Lowerer) lowerVarDecl(v *ast.VarDecl) {
	typ := udontype.Resolve(v.Type, l.reg)
	l.scope.Define(v.Name, typ)
	if v.Value == nil {
		return
	}
	val := l.lowerExpression(v.Value)
	dest := &tac.Variable{Name: v.Name, Typ: typ, Flags: tac.VariableFlags{IsLocal: true}}
	l.emit(&tac.Assignment{Dest: dest, Src: val})
}

func (l *Lowerer) lvalueVariable(id *ast.Identifier) *tac.Variable {
	if sym, ok := l.scope.Resolve(id.Value); ok {
		return &tac.Variable{Name: id.Value, Typ: sym.Type, Flags: tac.VariableFlags{
			IsLocal:     !sym.IsParameter,
			IsParameter: sym.IsParameter,
		}}
	}
	fields := l.reg.Classes.MergedFields(l.class)
	if f, ok := fields[id.Value]; ok {
		return l.fieldVariable(id.Value, udontype.Resolve(f.Type, l.reg))
	}
	l.errorf(id, "undefined assignment target %q", id.Value)
	return &tac.Variable{Name: id.Value}
}

// computeAssignValue evaluates the right-hand side and, for a compound
// assignment operator, combines it with the current value read via get.
func (l *Lowerer) computeAssignValue(op string, get func() tac.Operand, valueExpr ast.Expression) tac.Operand {
	newVal := l.lowerExpression(valueExpr)
	if op == "" {
		return newVal
	}
	current := get()
	dest := l.newTemp(current.Type())
	l.emit(&tac.BinaryOp{Dest: dest, Left: current, Op: op, Right: newVal})
	return dest
}

func (l *Lowerer) lowerAssignment(s *ast.AssignmentStatement) {
	switch target := s.Target.(type) {
	case *ast.Identifier:
		variable := l.lvalueVariable(target)
		value := l.computeAssignValue(s.Op, func() tac.Operand { return variable }, s.Value)
		l.emit(&tac.Assignment{Dest: variable, Src: value})

	case *ast.MemberExpr:
		receiver := l.lowerExpression(target.Receiver)
		propType := l.memberType(target)
		get := func() tac.Operand {
			t := l.newTemp(propType)
			l.emit(&tac.PropertyGet{Dest: t, Receiver: receiver, Prop: target.Property})
			return t
		}
		value := l.computeAssignValue(s.Op, get, s.Value)
		l.emit(&tac.PropertySet{Receiver: receiver, Prop: target.Property, Value: value})

	case *ast.IndexExpr:
		array := l.lowerExpression(target.Array)
		index := l.lowerExpression(target.Index)
		var elemType *udontype.Type
		if t := array.Type(); t != nil && t.Kind == udontype.KindArray {
			elemType = t.Element
		}
		get := func() tac.Operand {
			t := l.newTemp(elemType)
			l.emit(&tac.ArrayAccess{Dest: t, Array: array, Index: index})
			return t
		}
		value := l.computeAssignValue(s.Op, get, s.Value)
		l.emit(&tac.ArrayAssignment{Array: array, Index: index, Value: value})

	default:
		l.errorf(s, "unsupported assignment target %T", s.Target)
	}
}

func (l *Lowerer) lowerIf(s *ast.IfStatement) {
	elseLbl := l.newLabel("if_else")
	cond := l.lowerExpression(s.Condition)
	l.emit(&tac.ConditionalJump{Cond: cond, Target: elseLbl})
	l.lowerBlock(s.Then)

	if s.Else == nil {
		l.emit(&tac.LabelDef{Label: elseLbl})
		return
	}
	end := l.newLabel("if_end")
	l.emit(&tac.UnconditionalJump{Target: end})
	l.emit(&tac.LabelDef{Label: elseLbl})
	l.lowerStatement(s.Else)
	l.emit(&tac.LabelDef{Label: end})
}

func (l *Lowerer) lowerWhile(s *ast.WhileStatement) {
	start := l.newLabel("while_start")
	end := l.newLabel("while_end")
	l.loopStack = append(l.loopStack, loopLabels{breakLabel: end, continueLabel: start})

	l.emit(&tac.LabelDef{Label: start})
	cond := l.lowerExpression(s.Condition)
	l.emit(&tac.ConditionalJump{Cond: cond, Target: end})
	l.lowerBlock(s.Body)
	l.emit(&tac.UnconditionalJump{Target: start})
	l.emit(&tac.LabelDef{Label: end})

	l.loopStack = l.loopStack[:len(l.loopStack)-1]
}

func (l *Lowerer) lowerDoWhile(s *ast.DoWhileStatement) {
	bodyStart := l.newLabel("do_body")
	condLbl := l.newLabel("do_cond")
	end := l.newLabel("do_end")
	l.loopStack = append(l.loopStack, loopLabels{breakLabel: end, continueLabel: condLbl})

	l.emit(&tac.LabelDef{Label: bodyStart})
	l.lowerBlock(s.Body)
	l.emit(&tac.LabelDef{Label: condLbl})
	cond := l.lowerExpression(s.Condition)
	l.emit(&tac.ConditionalJump{Cond: cond, Target: end})
	l.emit(&tac.UnconditionalJump{Target: bodyStart})
	l.emit(&tac.LabelDef{Label: end})

	l.loopStack = l.loopStack[:len(l.loopStack)-1]
}

func (l *Lowerer) lowerFor(s *ast.ForStatement) {
	l.pushScope()
	if s.Init != nil {
		l.lowerStatement(s.Init)
	}

	condLbl := l.newLabel("for_cond")
	postLbl := l.newLabel("for_post")
	end := l.newLabel("for_end")
	l.loopStack = append(l.loopStack, loopLabels{breakLabel: end, continueLabel: postLbl})

	l.emit(&tac.LabelDef{Label: condLbl})
	if s.Condition != nil {
		cond := l.lowerExpression(s.Condition)
		l.emit(&tac.ConditionalJump{Cond: cond, Target: end})
	}
	l.lowerBlock(s.Body)
	l.emit(&tac.LabelDef{Label: postLbl})
	if s.Post != nil {
		l.lowerStatement(s.Post)
	}
	l.emit(&tac.UnconditionalJump{Target: condLbl})
	l.emit(&tac.LabelDef{Label: end})

	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	l.popScope()
}

// lowerForOf handles both shapes spec.md §4.3 distinguishes: an array
// source uses ArrayAccess directly; a DataList source calls get_Item.
// Destructuring binds the element into a fresh temporary and projects
// named fields out of it into their own locals.
func (l *Lowerer) lowerForOf(s *ast.ForOfStatement) {
	l.pushScope()
	iterable := l.lowerExpression(s.Iterable)
	isArray := false
	if t := iterable.Type(); t != nil && t.Kind == udontype.KindArray {
		isArray = true
	}

	idx := l.newTemp(udontype.Primitive(udontype.Int32))
	l.emit(&tac.Copy{Dest: idx, Src: tac.IntConstant("0", udontype.Primitive(udontype.Int32))})
	count := l.newTemp(udontype.Primitive(udontype.Int32))
	countName := "Count"
	if isArray {
		countName = "Length"
	}
	l.emit(&tac.Call{Dest: count, ExternOwner: "VRCDataList", ExternName: countName, Args: []tac.Operand{iterable}})

	condLbl := l.newLabel("forof_cond")
	contLbl := l.newLabel("forof_cont")
	end := l.newLabel("forof_end")
	l.loopStack = append(l.loopStack, loopLabels{breakLabel: end, continueLabel: contLbl})

	l.emit(&tac.LabelDef{Label: condLbl})
	cond := l.newTemp(udontype.Primitive(udontype.Boolean))
	l.emit(&tac.BinaryOp{Dest: cond, Left: idx, Op: "<", Right: count})
	l.emit(&tac.ConditionalJump{Cond: cond, Target: end})

	var elemType *udontype.Type
	if t := iterable.Type(); t != nil {
		if t.Kind == udontype.KindArray {
			elemType = t.Element
		} else if t.Kind == udontype.KindDataList {
			elemType = t.DataListElement
		}
	}
	elem := l.newTemp(elemType)
	if isArray {
		l.emit(&tac.ArrayAccess{Dest: elem, Array: iterable, Index: idx})
	} else {
		l.emit(&tac.Call{Dest: elem, ExternOwner: "VRCDataList", ExternName: "get_Item", Args: []tac.Operand{iterable, idx}})
	}

	l.pushScope()
	if len(s.Destructure) == 0 {
		l.scope.Define(s.VarName, elemType)
		l.emit(&tac.Copy{Dest: &tac.Variable{Name: s.VarName, Typ: elemType, Flags: tac.VariableFlags{IsLocal: true}}, Src: elem})
	} else {
		for _, field := range s.Destructure {
			fieldVal := l.newTemp(nil)
			l.emit(&tac.PropertyGet{Dest: fieldVal, Receiver: elem, Prop: field})
			l.scope.Define(field, nil)
			l.emit(&tac.Copy{Dest: &tac.Variable{Name: field, Flags: tac.VariableFlags{IsLocal: true}}, Src: fieldVal})
		}
	}
	for _, stmt := range s.Body.Statements {
		l.lowerStatement(stmt)
	}
	l.popScope()

	l.emit(&tac.LabelDef{Label: contLbl})
	one := tac.IntConstant("1", udontype.Primitive(udontype.Int32))
	l.emit(&tac.BinaryOp{Dest: idx, Left: idx, Op: "+", Right: one})
	l.emit(&tac.UnconditionalJump{Target: condLbl})
	l.emit(&tac.LabelDef{Label: end})

	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	l.popScope()
}

// lowerSwitch emits a cascaded-equality-check decision tree: a `break`
// inside any arm jumps past the whole construct; an arm with no `break`
// falls into the next arm's body in source order, preserving fall-through
// (spec.md §4.3).
func (l *Lowerer) lowerSwitch(s *ast.SwitchStatement) {
	scrutinee := l.lowerExpression(s.Scrutinee)
	end := l.newLabel("switch_end")

	bodyLbl := make([]*tac.Label, len(s.Cases))
	for i := range s.Cases {
		bodyLbl[i] = l.newLabel(fmt.Sprintf("case_%d", i))
	}

	defaultIdx := -1
	for i, c := range s.Cases {
		if c.IsDefault {
			defaultIdx = i
			continue
		}
		for _, v := range c.Values {
			val := l.lowerExpression(v)
			match := l.newTemp(udontype.Primitive(udontype.Boolean))
			l.emit(&tac.BinaryOp{Dest: match, Left: scrutinee, Op: "==", Right: val})
			fall := l.newLabel("switch_test")
			l.emit(&tac.ConditionalJump{Cond: match, Target: fall})
			l.emit(&tac.UnconditionalJump{Target: bodyLbl[i]})
			l.emit(&tac.LabelDef{Label: fall})
		}
	}
	if defaultIdx >= 0 {
		l.emit(&tac.UnconditionalJump{Target: bodyLbl[defaultIdx]})
	} else {
		l.emit(&tac.UnconditionalJump{Target: end})
	}

	l.loopStack = append(l.loopStack, loopLabels{breakLabel: end})
	l.pushScope()
	for i, c := range s.Cases {
		l.emit(&tac.LabelDef{Label: bodyLbl[i]})
		for _, stmt := range c.Body {
			l.lowerStatement(stmt)
		}
	}
	l.popScope()
	l.loopStack = l.loopStack[:len(l.loopStack)-1]

	l.emit(&tac.LabelDef{Label: end})
}

func (l *Lowerer) lowerBreak(s *ast.BreakStatement) {
	if len(l.loopStack) == 0 {
		l.errorf(s, "break outside loop or switch")
		return
	}
	top := l.loopStack[len(l.loopStack)-1]
	l.emit(&tac.UnconditionalJump{Target: top.breakLabel})
}

// lowerContinue walks the loop-context stack from the innermost frame
// outward, skipping switch frames (whose continueLabel is nil), so
// `continue` inside a `switch` nested in a loop still targets the loop.
func (l *Lowerer) lowerContinue(s *ast.ContinueStatement) {
	for i := len(l.loopStack) - 1; i >= 0; i-- {
		if l.loopStack[i].continueLabel != nil {
			l.emit(&tac.UnconditionalJump{Target: l.loopStack[i].continueLabel})
			return
		}
	}
	l.errorf(s, "continue outside loop")
}

func (l *Lowerer) lowerReturn(s *ast.ReturnStatement) {
	if l.inlineReturnLabel != nil {
		if s.Value != nil {
			val := l.lowerExpression(s.Value)
			l.emit(&tac.Copy{Dest: l.inlineReturnVar, Src: val})
		}
		l.emit(&tac.UnconditionalJump{Target: l.inlineReturnLabel})
		return
	}
	if s.Value == nil {
		l.emit(&tac.Return{})
		return
	}
	val := l.lowerExpression(s.Value)
	l.emit(&tac.Return{Value: val, ReturnVarName: l.currentReturnVarName()})
}

func (l *Lowerer) currentReturnVarName() string {
	cl, ok := l.layouts[l.class]
	if !ok {
		return ""
	}
	m, ok := cl.Methods[l.method]
	if !ok {
		return ""
	}
	return m.ReturnExportName
}

// emitErrorCheck follows every Call/MethodCall emitted while a try body
// is active with a conditional jump to the enclosing catch label when
// the error flag was set (spec.md §4.3). Invoked from emit, not by
// statement visitors directly, so it applies uniformly regardless of
// which expression buried the call.
func (l *Lowerer) emitErrorCheck() {
	if len(l.tryStack) == 0 {
		return
	}
	ctx := l.tryStack[len(l.tryStack)-1]
	notError := l.newTemp(udontype.Primitive(udontype.Boolean))
	l.fn.Instructions = append(l.fn.Instructions, &tac.UnaryOp{Dest: notError, Op: "!", Operand: ctx.flagVar})
	cont := l.newLabel("try_cont")
	l.fn.Instructions = append(l.fn.Instructions, &tac.ConditionalJump{Cond: notError, Target: cont})
	l.fn.Instructions = append(l.fn.Instructions, &tac.UnconditionalJump{Target: ctx.catchLbl})
	l.fn.Instructions = append(l.fn.Instructions, &tac.LabelDef{Label: cont})
}

// lowerTry installs an error-flag/value variable pair and a catch label,
// then lowers the body so every call site inside checks the flag
// (spec.md §4.3). The flag starts false; `throw` (lowerThrow) sets it.
func (l *Lowerer) lowerTry(s *ast.TryStatement) {
	l.tempSeq++
	id := l.tempSeq
	flagVar := &tac.Variable{Name: fmt.Sprintf("__err_flag_%d", id), Typ: udontype.Primitive(udontype.Boolean), Flags: tac.VariableFlags{IsLocal: true}}
	valueVar := &tac.Variable{Name: fmt.Sprintf("__err_value_%d", id), Typ: udontype.ExternOpaque("SystemException"), Flags: tac.VariableFlags{IsLocal: true}}
	catchLbl := l.newLabel("catch")
	end := l.newLabel("try_end")

	postTry := end
	var finallyLbl *tac.Label
	if s.Finally != nil {
		finallyLbl = l.newLabel("finally")
		postTry = finallyLbl
	}

	l.emit(&tac.Copy{Dest: flagVar, Src: tac.BoolConstant(false)})

	l.tryStack = append(l.tryStack, tryContext{flagVar: flagVar, valueVar: valueVar, catchLbl: catchLbl})
	l.lowerBlock(s.Body)
	l.tryStack = l.tryStack[:len(l.tryStack)-1]

	l.emit(&tac.UnconditionalJump{Target: postTry})
	l.emit(&tac.LabelDef{Label: catchLbl})
	if s.Catch != nil {
		l.pushScope()
		catchVar := &tac.Variable{Name: s.Catch.VarName, Typ: valueVar.Typ, Flags: tac.VariableFlags{IsLocal: true}}
		l.scope.Define(s.Catch.VarName, valueVar.Typ)
		l.emit(&tac.Copy{Dest: catchVar, Src: valueVar})
		for _, stmt := range s.Catch.Body.Statements {
			l.lowerStatement(stmt)
		}
		l.popScope()
	}

	if s.Finally != nil {
		l.emit(&tac.LabelDef{Label: finallyLbl})
		l.lowerBlock(s.Finally)
	}
	l.emit(&tac.LabelDef{Label: end})
}

// lowerThrow sets the nearest enclosing try's error flag/value and jumps
// to its catch label (spec.md §4.3).
func (l *Lowerer) lowerThrow(s *ast.ThrowStatement) {
	val := l.lowerExpression(s.Value)
	if len(l.tryStack) == 0 {
		l.errorf(s, "throw outside try")
		return
	}
	ctx := l.tryStack[len(l.tryStack)-1]
	l.emit(&tac.Copy{Dest: ctx.flagVar, Src: tac.BoolConstant(true)})
	l.emit(&tac.Copy{Dest: ctx.valueVar, Src: val})
	l.emit(&tac.UnconditionalJump{Target: ctx.catchLbl})
}
