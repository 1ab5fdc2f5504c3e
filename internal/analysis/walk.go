package analysis

import "github.com/udonc/udonc/internal/ast"

// walkStatement visits every expression reachable from s, recursing into
// nested statements and block bodies. visit is called once per expression
// node encountered, parent before children.
func walkStatement(s ast.Statement, visit func(ast.Expression)) {
	if s == nil {
		return
	}
	switch st := s.(type) {
	case *ast.BlockStatement:
		for _, inner := range st.Statements {
			walkStatement(inner, visit)
		}
	case *ast.ExpressionStatement:
		walkExpression(st.Expr, visit)
	case *ast.AssignmentStatement:
		walkExpression(st.Target, visit)
		walkExpression(st.Value, visit)
	case *ast.IfStatement:
		walkExpression(st.Condition, visit)
		walkBlock(st.Then, visit)
		walkStatement(st.Else, visit)
	case *ast.WhileStatement:
		walkExpression(st.Condition, visit)
		walkBlock(st.Body, visit)
	case *ast.DoWhileStatement:
		walkBlock(st.Body, visit)
		walkExpression(st.Condition, visit)
	case *ast.ForStatement:
		walkStatement(st.Init, visit)
		walkExpression(st.Condition, visit)
		walkStatement(st.Post, visit)
		walkBlock(st.Body, visit)
	case *ast.ForOfStatement:
		walkExpression(st.Iterable, visit)
		walkBlock(st.Body, visit)
	case *ast.SwitchStatement:
		walkExpression(st.Scrutinee, visit)
		for _, c := range st.Cases {
			for _, v := range c.Values {
				walkExpression(v, visit)
			}
			for _, inner := range c.Body {
				walkStatement(inner, visit)
			}
		}
	case *ast.ReturnStatement:
		walkExpression(st.Value, visit)
	case *ast.TryStatement:
		walkBlock(st.Body, visit)
		if st.Catch != nil {
			walkBlock(st.Catch.Body, visit)
		}
		walkBlock(st.Finally, visit)
	case *ast.ThrowStatement:
		walkExpression(st.Value, visit)
	case *ast.VarDecl:
		walkExpression(st.Value, visit)
	case *ast.ConstDecl:
		walkExpression(st.Value, visit)
	case *ast.FieldDecl:
		walkExpression(st.Init, visit)
	case *ast.FunctionDecl:
		walkBlock(st.Body, visit)
	}
}

// walkBlock walks b, tolerating a nil block (an interface method's
// signature-only declaration, or an omitted finally clause).
func walkBlock(b *ast.BlockStatement, visit func(ast.Expression)) {
	if b == nil {
		return
	}
	for _, inner := range b.Statements {
		walkStatement(inner, visit)
	}
}

// walkExpression visits e and every sub-expression reachable from it.
func walkExpression(e ast.Expression, visit func(ast.Expression)) {
	if e == nil {
		return
	}
	visit(e)
	switch ex := e.(type) {
	case *ast.TemplateLiteral:
		for _, p := range ex.Parts {
			walkExpression(p.Expr, visit)
		}
	case *ast.BinaryExpr:
		walkExpression(ex.Left, visit)
		walkExpression(ex.Right, visit)
	case *ast.LogicalExpr:
		walkExpression(ex.Left, visit)
		walkExpression(ex.Right, visit)
	case *ast.UnaryExpr:
		walkExpression(ex.Operand, visit)
	case *ast.TernaryExpr:
		walkExpression(ex.Condition, visit)
		walkExpression(ex.Then, visit)
		walkExpression(ex.Else, visit)
	case *ast.NullCoalesceExpr:
		walkExpression(ex.Left, visit)
		walkExpression(ex.Right, visit)
	case *ast.CallExpr:
		walkExpression(ex.Callee, visit)
		for _, a := range ex.Args {
			walkExpression(a, visit)
		}
	case *ast.NewExpr:
		for _, a := range ex.Args {
			walkExpression(a, visit)
		}
	case *ast.MemberExpr:
		walkExpression(ex.Receiver, visit)
	case *ast.IndexExpr:
		walkExpression(ex.Array, visit)
		walkExpression(ex.Index, visit)
	case *ast.ArrayLiteral:
		for _, el := range ex.Elements {
			walkExpression(el.Expr, visit)
		}
	case *ast.ObjectLiteral:
		for _, p := range ex.Properties {
			if p.IsSpread {
				walkExpression(p.Spread, visit)
			} else {
				walkExpression(p.Value, visit)
			}
		}
	case *ast.InstanceOfExpr:
		walkExpression(ex.Operand, visit)
	case *ast.TypeOfExpr:
		walkExpression(ex.Operand, visit)
	case *ast.DeleteExpr:
		walkExpression(ex.Target, visit)
	case *ast.InExpr:
		walkExpression(ex.Key, visit)
		walkExpression(ex.Dict, visit)
	}
}
