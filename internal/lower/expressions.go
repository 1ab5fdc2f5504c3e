package lower

import (
	"fmt"
	"strconv"

	"github.com/udonc/udonc/internal/analysis"
	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// stringBuilderThreshold is the concat-chain length (spec.md §4.3) at or
// above which a concatenation lowers to the builder pattern instead of
// chained Concat extern calls. Lowering does not read internal/config;
// the configured threshold governs only the backend's collapse pass.
const stringBuilderThreshold = 6

// lowerExpression dispatches on the concrete expression type and returns
// the operand the caller should read the value from, appending whatever
// instructions were needed to compute it. Every expression lowers to an
// operand rather than a stack push, since TAC is register-like.
func (l *Lowerer) lowerExpression(expr ast.Expression) tac.Operand {
	switch e := expr.(type) {
	case *ast.Literal:
		return l.lowerLiteral(e)
	case *ast.TemplateLiteral:
		return l.lowerTemplateLiteral(e)
	case *ast.Identifier:
		return l.lowerIdentifier(e)
	case *ast.ThisExpr:
		return l.thisOperand()
	case *ast.SuperExpr:
		return l.thisOperand()
	case *ast.BinaryExpr:
		return l.lowerBinary(e)
	case *ast.LogicalExpr:
		return l.lowerLogical(e)
	case *ast.UnaryExpr:
		return l.lowerUnary(e)
	case *ast.TernaryExpr:
		return l.lowerTernary(e)
	case *ast.NullCoalesceExpr:
		return l.lowerNullCoalesce(e)
	case *ast.CallExpr:
		return l.lowerCall(e)
	case *ast.NewExpr:
		return l.lowerNew(e)
	case *ast.MemberExpr:
		return l.lowerMember(e)
	case *ast.IndexExpr:
		return l.lowerIndex(e)
	case *ast.ArrayLiteral:
		return l.lowerArrayLiteral(e)
	case *ast.ObjectLiteral:
		return l.lowerObjectLiteral(e)
	case *ast.InstanceOfExpr:
		return tac.BoolConstant(false)
	case *ast.TypeOfExpr:
		return l.lowerTypeOf(e)
	case *ast.DeleteExpr:
		return l.lowerDelete(e)
	case *ast.InExpr:
		return l.lowerIn(e)
	default:
		l.errorf(expr, "unsupported expression %T", expr)
		return tac.NullConstant()
	}
}

func (l *Lowerer) lowerLiteral(lit *ast.Literal) tac.Operand {
	switch lit.Kind {
	case ast.LitNumber:
		if _, err := strconv.ParseInt(lit.Value, 10, 64); err == nil {
			return tac.IntConstant(lit.Value, udontype.Primitive(udontype.Int32))
		}
		return tac.FloatConstant(lit.Value, udontype.Primitive(udontype.Double))
	case ast.LitBigInt:
		return tac.IntConstant(lit.Value, udontype.Primitive(udontype.BigInt))
	case ast.LitString:
		return tac.StringConstant(lit.Value)
	case ast.LitBoolean:
		return tac.BoolConstant(lit.Value == "true")
	case ast.LitNull:
		return tac.NullConstant()
	default:
		l.errorf(lit, "unsupported literal kind %d", lit.Kind)
		return tac.NullConstant()
	}
}

func (l *Lowerer) lowerIdentifier(id *ast.Identifier) tac.Operand {
	if sym, ok := l.scope.Resolve(id.Value); ok {
		if sym.IsConstant && sym.IsLiteralInit {
			return sym.InitialValue.(tac.Operand)
		}
		return &tac.Variable{Name: id.Value, Typ: sym.Type, Flags: tac.VariableFlags{
			IsLocal:     !sym.IsParameter,
			IsParameter: sym.IsParameter,
		}}
	}
	// Not a local: either a field of the current class/instance, or a
	// non-literal top-level constant materialized at `_start`.
	if _, ok := l.reg.Constants[id.Value]; ok {
		return &tac.Variable{Name: id.Value, Typ: udontype.Resolve(nil, l.reg), Flags: tac.VariableFlags{IsExported: true}}
	}
	fields := l.reg.Classes.MergedFields(l.class)
	if f, ok := fields[id.Value]; ok {
		return l.fieldVariable(id.Value, udontype.Resolve(f.Type, l.reg))
	}
	l.errorf(id, "undefined name %q", id.Value)
	return tac.NullConstant()
}

// inferType approximates the static type of expr using only information
// already resolvable during lowering (symbol table, class fields, literal
// kind): best-effort, falling through to nil when the type can't be
// determined without a full separate checking pass.
func (l *Lowerer) inferType(expr ast.Expression) *udontype.Type {
	switch e := expr.(type) {
	case *ast.Literal:
		switch e.Kind {
		case ast.LitNumber:
			if _, err := strconv.ParseInt(e.Value, 10, 64); err == nil {
				return udontype.Primitive(udontype.Int32)
			}
			return udontype.Primitive(udontype.Double)
		case ast.LitBigInt:
			return udontype.Primitive(udontype.BigInt)
		case ast.LitString:
			return udontype.Primitive(udontype.String)
		case ast.LitBoolean:
			return udontype.Primitive(udontype.Boolean)
		default:
			return nil
		}
	case *ast.TemplateLiteral:
		return udontype.Primitive(udontype.String)
	case *ast.Identifier:
		if sym, ok := l.scope.Resolve(e.Value); ok {
			return sym.Type
		}
		fields := l.reg.Classes.MergedFields(l.class)
		if f, ok := fields[e.Value]; ok {
			return udontype.Resolve(f.Type, l.reg)
		}
		return nil
	case *ast.BinaryExpr:
		if isComparisonOp(e.Op) {
			return udontype.Primitive(udontype.Boolean)
		}
		if t := l.inferType(e.Left); t != nil {
			return t
		}
		return l.inferType(e.Right)
	default:
		return nil
	}
}

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "===", "!==", "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

func isStringTyped(t *udontype.Type) bool {
	return t != nil && t.Kind == udontype.KindPrimitive && t.PrimitiveName == udontype.String
}

// lowerBinary implements the contracts of spec.md §4.3's "Expressions"
// paragraph: `===`/`!==` fold to `==`/`!=`, `**` lowers to a Pow extern,
// `in` is handled by lowerIn before ever reaching here, comparisons are
// typed boolean, and a string-typed `+` chain is flattened and handed to
// lowerStringConcat instead of emitting a single BinaryOp.
func (l *Lowerer) lowerBinary(e *ast.BinaryExpr) tac.Operand {
	op := e.Op
	if op == "===" {
		op = "=="
	} else if op == "!==" {
		op = "!="
	}

	if op == "**" {
		left := l.lowerExpression(e.Left)
		right := l.lowerExpression(e.Right)
		dest := l.newTemp(udontype.Primitive(udontype.Double))
		l.emit(&tac.Call{Dest: dest, ExternOwner: "UnityEngineMathf", ExternName: "Pow", Args: []tac.Operand{left, right}})
		return dest
	}

	if op == "+" {
		if parts, ok := l.collectConcatChain(e); ok {
			return l.lowerStringConcat(parts)
		}
	}

	left := l.lowerExpression(e.Left)
	right := l.lowerExpression(e.Right)

	resultType := udontype.Primitive(udontype.Boolean)
	if !isComparisonOp(op) {
		resultType = l.inferType(e)
		if resultType == nil {
			resultType = left.Type()
		}
		if resultType == nil {
			resultType = right.Type()
		}
	}

	dest := l.newTemp(resultType)
	l.emit(&tac.BinaryOp{Dest: dest, Left: left, Op: op, Right: right})
	return dest
}

// collectConcatChain flattens a left-leaning `+` chain into its leaves
// when any leaf is string-typed, per spec.md §4.3 ("String-concatenation
// chains... are flattened").
func (l *Lowerer) collectConcatChain(e *ast.BinaryExpr) ([]ast.Expression, bool) {
	var parts []ast.Expression
	var anyString bool
	var walk func(expr ast.Expression)
	walk = func(expr ast.Expression) {
		if b, ok := expr.(*ast.BinaryExpr); ok && b.Op == "+" {
			walk(b.Left)
			walk(b.Right)
			return
		}
		if isStringTyped(l.inferType(expr)) {
			anyString = true
		}
		parts = append(parts, expr)
	}
	walk(e)
	return parts, anyString
}

// lowerStringConcat lowers a flattened concatenation chain: short chains
// become nested Concat extern calls, chains meeting stringBuilderThreshold
// lower to the builder pattern (spec.md §4.3).
func (l *Lowerer) lowerStringConcat(parts []ast.Expression) tac.Operand {
	operands := make([]tac.Operand, len(parts))
	for i, p := range parts {
		operands[i] = l.lowerExpression(p)
	}

	if len(operands) < stringBuilderThreshold {
		acc := operands[0]
		for _, next := range operands[1:] {
			dest := l.newTemp(udontype.Primitive(udontype.String))
			l.emit(&tac.Call{Dest: dest, ExternOwner: "SystemString", ExternName: "Concat", Args: []tac.Operand{acc, next}})
			acc = dest
		}
		return acc
	}

	builder := l.newTemp(udontype.ExternOpaque("SystemTextStringBuilder"))
	l.emit(&tac.Call{Dest: builder, ExternOwner: "SystemTextStringBuilder", ExternName: "__new"})
	for _, operand := range operands {
		l.emit(&tac.Call{ExternOwner: "SystemTextStringBuilder", ExternName: "Append", Args: []tac.Operand{builder, operand}})
	}
	result := l.newTemp(udontype.Primitive(udontype.String))
	l.emit(&tac.Call{Dest: result, ExternOwner: "SystemTextStringBuilder", ExternName: "ToString", Args: []tac.Operand{builder}})
	return result
}

// lowerTemplateLiteral merges adjacent text parts, then folds the whole
// literal to one string constant when every expression part is itself a
// compile-time constant; otherwise it falls back to the same
// threshold/builder rule as an ordinary concatenation (spec.md §4.3).
func (l *Lowerer) lowerTemplateLiteral(t *ast.TemplateLiteral) tac.Operand {
	allConstant := true
	var folded string
	var parts []ast.Expression
	for _, p := range t.Parts {
		if p.Expr == nil {
			folded += p.Text
			parts = append(parts, &ast.Literal{Token: t.Token, Kind: ast.LitString, Value: p.Text})
			continue
		}
		lit, ok := p.Expr.(*ast.Literal)
		if ok && lit.Kind == ast.LitString {
			folded += lit.Value
		} else if ok && lit.Kind == ast.LitNumber {
			folded += lit.Value
		} else {
			allConstant = false
		}
		parts = append(parts, p.Expr)
	}
	if allConstant {
		return tac.StringConstant(folded)
	}
	return l.lowerStringConcat(parts)
}

// lowerLogical short-circuits `&&`/`||` via a fresh label pair and
// boolean materialization (spec.md §4.3).
func (l *Lowerer) lowerLogical(e *ast.LogicalExpr) tac.Operand {
	dest := l.newTemp(udontype.Primitive(udontype.Boolean))
	left := l.lowerExpression(e.Left)
	l.emit(&tac.Copy{Dest: dest, Src: left})

	end := l.newLabel("logic_end")
	if e.Op == "&&" {
		l.emit(&tac.ConditionalJump{Cond: dest, Target: end})
	} else {
		shortCircuit := l.newLabel("logic_sc")
		l.emit(&tac.ConditionalJump{Cond: dest, Target: shortCircuit})
		l.emit(&tac.UnconditionalJump{Target: end})
		l.emit(&tac.LabelDef{Label: shortCircuit})
	}

	right := l.lowerExpression(e.Right)
	l.emit(&tac.Copy{Dest: dest, Src: right})
	l.emit(&tac.LabelDef{Label: end})
	return dest
}

func (l *Lowerer) lowerUnary(e *ast.UnaryExpr) tac.Operand {
	operand := l.lowerExpression(e.Operand)
	dest := l.newTemp(operand.Type())
	l.emit(&tac.UnaryOp{Dest: dest, Op: e.Op, Operand: operand})
	return dest
}

// lowerTernary emits the standard diamond: evaluate the condition, jump
// to the else branch when false, otherwise fall into the then branch and
// jump past it (spec.md §4.3).
func (l *Lowerer) lowerTernary(e *ast.TernaryExpr) tac.Operand {
	cond := l.lowerExpression(e.Condition)
	elseLbl := l.newLabel("tern_else")
	endLbl := l.newLabel("tern_end")
	l.emit(&tac.ConditionalJump{Cond: cond, Target: elseLbl})

	dest := l.newTemp(l.inferType(e.Then))
	thenVal := l.lowerExpression(e.Then)
	l.emit(&tac.Copy{Dest: dest, Src: thenVal})
	l.emit(&tac.UnconditionalJump{Target: endLbl})

	l.emit(&tac.LabelDef{Label: elseLbl})
	elseVal := l.lowerExpression(e.Else)
	l.emit(&tac.Copy{Dest: dest, Src: elseVal})
	l.emit(&tac.LabelDef{Label: endLbl})
	return dest
}

// lowerNullCoalesce yields the left operand unless it equals the null
// constant, in which case it evaluates and yields the right operand, per
// spec.md §4.3.
func (l *Lowerer) lowerNullCoalesce(e *ast.NullCoalesceExpr) tac.Operand {
	left := l.lowerExpression(e.Left)
	notNull := l.newTemp(udontype.Primitive(udontype.Boolean))
	l.emit(&tac.BinaryOp{Dest: notNull, Left: left, Op: "!=", Right: tac.NullConstant()})

	dest := l.newTemp(left.Type())
	l.emit(&tac.Copy{Dest: dest, Src: left})

	end := l.newLabel("coalesce_end")
	useRight := l.newLabel("coalesce_right")
	l.emit(&tac.ConditionalJump{Cond: notNull, Target: useRight})
	l.emit(&tac.UnconditionalJump{Target: end})

	l.emit(&tac.LabelDef{Label: useRight})
	right := l.lowerExpression(e.Right)
	l.emit(&tac.Copy{Dest: dest, Src: right})
	l.emit(&tac.LabelDef{Label: end})
	return dest
}

// lowerCall distinguishes a SendCustomEvent-family call (left untouched
// for the backend's cross-assembly RPC lowering, spec.md §4.6) from an
// ordinary call, which either inlines (spec.md §4.3 "Inlining") or
// becomes a MethodCall/Call instruction.
func (l *Lowerer) lowerCall(e *ast.CallExpr) tac.Operand {
	if member, ok := e.Callee.(*ast.MemberExpr); ok {
		if analysis.IsSendCustomEventName(member.Property) {
			return l.lowerExternLikeCall(member, e.Args)
		}
		return l.lowerMethodCall(member, e.Args)
	}
	if id, ok := e.Callee.(*ast.Identifier); ok {
		return l.lowerUnqualifiedCall(id, e.Args)
	}
	l.errorf(e, "unsupported call target %T", e.Callee)
	return tac.NullConstant()
}

func (l *Lowerer) lowerExternLikeCall(member *ast.MemberExpr, args []ast.Expression) tac.Operand {
	receiver := l.lowerExpression(member.Receiver)
	lowered := make([]tac.Operand, len(args))
	for i, a := range args {
		lowered[i] = l.lowerExpression(a)
	}
	dest := l.newTemp(udontype.Void)
	allArgs := append([]tac.Operand{receiver}, lowered...)
	l.emit(&tac.Call{Dest: dest, ExternOwner: "UdonBehaviour", ExternName: member.Property, Args: allArgs})
	return dest
}

func (l *Lowerer) lowerMethodCall(member *ast.MemberExpr, args []ast.Expression) tac.Operand {
	receiver := l.lowerExpression(member.Receiver)
	lowered := make([]tac.Operand, len(args))
	for i, a := range args {
		lowered[i] = l.lowerExpression(a)
	}

	targetClass := l.resolveReceiverClass(member.Receiver)
	if targetClass != "" {
		if inlined, ok := l.tryInlineCall(targetClass, member.Property, receiver, lowered); ok {
			return inlined
		}
	}

	dest := l.newTemp(l.methodReturnType(targetClass, member.Property))
	l.emit(&tac.MethodCall{Dest: dest, Receiver: receiver, MethodName: member.Property, Args: lowered})
	l.maybeRestoreRecursiveShadow(targetClass, member.Property)
	return dest
}

func (l *Lowerer) lowerUnqualifiedCall(id *ast.Identifier, args []ast.Expression) tac.Operand {
	lowered := make([]tac.Operand, len(args))
	for i, a := range args {
		lowered[i] = l.lowerExpression(a)
	}
	receiver := l.thisOperand()
	if inlined, ok := l.tryInlineCall(l.class, id.Value, receiver, lowered); ok {
		return inlined
	}
	dest := l.newTemp(l.methodReturnType(l.class, id.Value))
	l.emit(&tac.MethodCall{Dest: dest, Receiver: receiver, MethodName: id.Value, Args: lowered})
	l.maybeRestoreRecursiveShadow(l.class, id.Value)
	return dest
}

func (l *Lowerer) methodReturnType(className, methodName string) *udontype.Type {
	if className == "" {
		return udontype.Void
	}
	methods := l.reg.Classes.MergedMethods(className)
	m, ok := methods[methodName]
	if !ok {
		return udontype.Void
	}
	return udontype.Resolve(m.ReturnType, l.reg)
}

// resolveReceiverClass reports the static class name of a call receiver
// expression when it is syntactically known (`this`, `super`, or an
// identifier/field whose declared type names a registered class) — the
// same qualification rule internal/analysis uses for reachability.
func (l *Lowerer) resolveReceiverClass(receiver ast.Expression) string {
	switch r := receiver.(type) {
	case *ast.ThisExpr:
		return l.class
	case *ast.SuperExpr:
		if entry, ok := l.reg.Classes.Lookup(l.class); ok {
			return entry.ParentName
		}
		return ""
	default:
		t := l.inferType(r)
		if t != nil && t.Kind == udontype.KindClass {
			return t.Name
		}
		return ""
	}
}

// lowerNew allocates a class instance. Entry classes cannot be
// constructed at runtime (spec.md §3: Udon programs are their own
// assembly), so only a helper class's `new` reaches here, and it always
// inlines (spec.md §4.3: "Entry-point classes must have a parameterless
// constructor; violating this is a hard error" implies the converse —
// non-entry classes are the ones `new` targets, and they always inline).
func (l *Lowerer) lowerNew(e *ast.NewExpr) tac.Operand {
	lowered := make([]tac.Operand, len(e.Args))
	for i, a := range e.Args {
		lowered[i] = l.lowerExpression(a)
	}
	prefix := l.reserveInstancePrefix(e.ClassName)
	l.initializeInlineInstance(e.ClassName, prefix, lowered)
	return &tac.Variable{Name: prefix, Typ: udontype.Class(e.ClassName), Flags: tac.VariableFlags{IsLocal: true}}
}

func (l *Lowerer) reserveInstancePrefix(className string) string {
	l.instanceCounters[className]++
	return fmt.Sprintf("__inst_%s_%d", className, l.instanceCounters[className])
}

func (l *Lowerer) lowerMember(e *ast.MemberExpr) tac.Operand {
	receiver := l.lowerExpression(e.Receiver)
	propType := l.memberType(e)
	dest := l.newTemp(propType)
	l.emit(&tac.PropertyGet{Dest: dest, Receiver: receiver, Prop: e.Property})
	return dest
}

func (l *Lowerer) memberType(e *ast.MemberExpr) *udontype.Type {
	className := l.resolveReceiverClass(e.Receiver)
	if className == "" {
		return nil
	}
	fields := l.reg.Classes.MergedFields(className)
	if f, ok := fields[e.Property]; ok {
		return udontype.Resolve(f.Type, l.reg)
	}
	props := l.reg.Classes.MergedProperties(className)
	if p, ok := props[e.Property]; ok {
		return udontype.Resolve(p.Type, l.reg)
	}
	return nil
}

func (l *Lowerer) lowerIndex(e *ast.IndexExpr) tac.Operand {
	array := l.lowerExpression(e.Array)
	index := l.lowerExpression(e.Index)
	var elemType *udontype.Type
	if t := array.Type(); t != nil && t.Kind == udontype.KindArray {
		elemType = t.Element
	}
	dest := l.newTemp(elemType)
	l.emit(&tac.ArrayAccess{Dest: dest, Array: array, Index: index})
	return dest
}

// lowerArrayLiteral builds a fresh DataList and appends each element;
// spread elements loop over their source, appending one token at a time
// (spec.md §4.3).
func (l *Lowerer) lowerArrayLiteral(a *ast.ArrayLiteral) tac.Operand {
	list := l.newTemp(udontype.DataList(udontype.ExternOpaque("SystemObject")))
	l.emit(&tac.Call{Dest: list, ExternOwner: "VRCDataList", ExternName: "__new"})
	for _, elem := range a.Elements {
		if !elem.IsSpread {
			val := l.lowerExpression(elem.Expr)
			l.emit(&tac.Call{ExternOwner: "VRCDataList", ExternName: "Add", Args: []tac.Operand{list, val}})
			continue
		}
		l.lowerArraySpreadInto(list, elem.Expr)
	}
	return list
}

func (l *Lowerer) lowerArraySpreadInto(list tac.Operand, source ast.Expression) {
	src := l.lowerExpression(source)
	idx := l.newTemp(udontype.Primitive(udontype.Int32))
	l.emit(&tac.Copy{Dest: idx, Src: tac.IntConstant("0", udontype.Primitive(udontype.Int32))})
	count := l.newTemp(udontype.Primitive(udontype.Int32))
	getCountName := "Count"
	if t := src.Type(); t != nil && t.Kind == udontype.KindArray {
		getCountName = "Length"
	}
	l.emit(&tac.Call{Dest: count, ExternOwner: "VRCDataList", ExternName: getCountName, Args: []tac.Operand{src}})

	loop := l.newLabel("spread_loop")
	end := l.newLabel("spread_end")
	cond := l.newTemp(udontype.Primitive(udontype.Boolean))
	l.emit(&tac.LabelDef{Label: loop})
	l.emit(&tac.BinaryOp{Dest: cond, Left: idx, Op: "<", Right: count})
	l.emit(&tac.ConditionalJump{Cond: cond, Target: end})

	elem := l.newTemp(nil)
	l.emit(&tac.ArrayAccess{Dest: elem, Array: src, Index: idx})
	l.emit(&tac.Call{ExternOwner: "VRCDataList", ExternName: "Add", Args: []tac.Operand{list, elem}})
	one := tac.IntConstant("1", udontype.Primitive(udontype.Int32))
	l.emit(&tac.BinaryOp{Dest: idx, Left: idx, Op: "+", Right: one})
	l.emit(&tac.UnconditionalJump{Target: loop})
	l.emit(&tac.LabelDef{Label: end})
}

// lowerObjectLiteral emits a dictionary built from its properties when
// there is no spread, or a list-of-dictionaries `Merge` call when there
// is (spec.md §4.3).
func (l *Lowerer) lowerObjectLiteral(o *ast.ObjectLiteral) tac.Operand {
	hasSpread := false
	for _, p := range o.Properties {
		if p.IsSpread {
			hasSpread = true
			break
		}
	}

	dict := l.newTemp(udontype.Collection("Dictionary", udontype.Primitive(udontype.String), udontype.ExternOpaque("SystemObject")))
	l.emit(&tac.Call{Dest: dict, ExternOwner: "SystemCollectionsGenericDictionary", ExternName: "__new"})
	for _, p := range o.Properties {
		if p.IsSpread {
			continue
		}
		val := l.lowerExpression(p.Value)
		l.emit(&tac.Call{ExternOwner: "SystemCollectionsGenericDictionary", ExternName: "Add", Args: []tac.Operand{dict, tac.StringConstant(p.Key), val}})
	}
	if !hasSpread {
		return dict
	}

	for _, p := range o.Properties {
		if !p.IsSpread {
			continue
		}
		spread := l.lowerExpression(p.Spread)
		l.emit(&tac.Call{ExternOwner: "SystemCollectionsGenericDictionary", ExternName: "Merge", Args: []tac.Operand{dict, spread}})
	}
	return dict
}

func (l *Lowerer) lowerTypeOf(e *ast.TypeOfExpr) tac.Operand {
	t := l.inferType(e.Operand)
	return tac.StringConstant(udontype.UdonTypeName(t))
}

// lowerDelete dispatches on the target shape per spec.md §4.3: a
// dictionary property removal, an array/object-index null assignment, or
// (for an UdonBehaviour's own exported field) a SetProgramVariable extern.
func (l *Lowerer) lowerDelete(d *ast.DeleteExpr) tac.Operand {
	switch target := d.Target.(type) {
	case *ast.IndexExpr:
		array := l.lowerExpression(target.Array)
		index := l.lowerExpression(target.Index)
		if t := array.Type(); t != nil && t.Kind == udontype.KindCollection {
			l.emit(&tac.Call{ExternOwner: "SystemCollectionsGenericDictionary", ExternName: "Remove", Args: []tac.Operand{array, index}})
			return tac.BoolConstant(true)
		}
		l.emit(&tac.ArrayAssignment{Array: array, Index: index, Value: tac.NullConstant()})
		return tac.BoolConstant(true)
	case *ast.MemberExpr:
		className := l.resolveReceiverClass(target.Receiver)
		if className != "" {
			if _, isThis := target.Receiver.(*ast.ThisExpr); isThis && className == l.class {
				l.emit(&tac.Call{ExternOwner: "UdonBehaviour", ExternName: "SetProgramVariable", Args: []tac.Operand{tac.StringConstant(target.Property), tac.NullConstant()}})
				return tac.BoolConstant(true)
			}
		}
		receiver := l.lowerExpression(target.Receiver)
		l.emit(&tac.PropertySet{Receiver: receiver, Prop: target.Property, Value: tac.NullConstant()})
		return tac.BoolConstant(true)
	default:
		l.errorf(d, "unsupported delete target %T", d.Target)
		return tac.BoolConstant(false)
	}
}

// lowerIn lowers `key in dictionary` to a ContainsKey extern call
// (spec.md §4.3).
func (l *Lowerer) lowerIn(e *ast.InExpr) tac.Operand {
	key := l.lowerExpression(e.Key)
	dict := l.lowerExpression(e.Dict)
	dest := l.newTemp(udontype.Primitive(udontype.Boolean))
	l.emit(&tac.Call{Dest: dest, ExternOwner: "SystemCollectionsGenericDictionary", ExternName: "ContainsKey", Args: []tac.Operand{dict, key}})
	return dest
}
