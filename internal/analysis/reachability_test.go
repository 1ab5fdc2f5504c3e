package analysis

import (
	"testing"

	"github.com/udonc/udonc/internal/ast"
)

func callStmt(callee ast.Expression, args ...ast.Expression) ast.Statement {
	return &ast.ExpressionStatement{Expr: &ast.CallExpr{Callee: callee, Args: args}}
}

func memberCall(receiver ast.Expression, property string, args ...ast.Expression) ast.Statement {
	return callStmt(&ast.MemberExpr{Receiver: receiver, Property: property}, args...)
}

func block(stmts ...ast.Statement) *ast.BlockStatement {
	return &ast.BlockStatement{Statements: stmts}
}

func TestComputeReachablePrunesUnusedMethods(t *testing.T) {
	game := &ast.ClassDecl{
		Name: "Game", BaseClass: "UdonSharpBehaviour",
		Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}},
		Methods: []*ast.FunctionDecl{
			{Name: "Start", Body: block(memberCall(&ast.ThisExpr{}, "helper"))},
			{Name: "helper", Body: block(memberCall(&ast.Identifier{Value: "Util"}, "run"))},
		},
	}
	util := &ast.ClassDecl{
		Name: "Util",
		Methods: []*ast.FunctionDecl{
			{Name: "run", Body: block()},
			{Name: "deadCode", Body: block()},
		},
	}
	reg := buildRegistry(t, []*ast.ClassDecl{game, util}, nil)

	reachable := ComputeReachable(reg)

	if !reachable.Has("Game", "Start") || !reachable.Has("Game", "helper") {
		t.Fatalf("expected both Game methods reachable, got %v", reachable)
	}
	if !reachable.Has("Util", "run") {
		t.Fatalf("expected Util.run reachable via the qualified call, got %v", reachable)
	}
	if reachable.Has("Util", "deadCode") {
		t.Fatalf("expected Util.deadCode to be pruned as unreachable")
	}
}

func TestComputeReachableFollowsConstructorAndSendCustomEvent(t *testing.T) {
	spawner := &ast.ClassDecl{
		Name: "Spawner", BaseClass: "UdonSharpBehaviour",
		Decorators: []*ast.Decorator{{Name: "UdonBehaviour"}},
		Methods: []*ast.FunctionDecl{
			{Name: "Start", Body: block(
				&ast.ExpressionStatement{Expr: &ast.NewExpr{ClassName: "Pooled"}},
				memberCall(&ast.ThisExpr{}, "SendCustomEvent", &ast.Literal{Kind: ast.LitString, Value: "OnSpawn"}),
			)},
			{Name: "OnSpawn", Body: block()},
		},
	}
	pooled := &ast.ClassDecl{
		Name: "Pooled",
		Fields: []*ast.FieldDecl{
			{Name: "id", Init: &ast.CallExpr{Callee: &ast.Identifier{Value: "allocate"}}},
		},
		Methods: []*ast.FunctionDecl{
			{Name: "allocate", Body: block()},
		},
	}
	reg := buildRegistry(t, []*ast.ClassDecl{spawner, pooled}, nil)

	reachable := ComputeReachable(reg)

	if !reachable.Has("Pooled", "constructor") {
		t.Fatalf("expected Pooled's constructor reachable via `new Pooled()`")
	}
	if !reachable.Has("Pooled", "allocate") {
		t.Fatalf("expected the field initializer's call to be traversed from the constructor, got %v", reachable)
	}
	if !reachable.Has("Spawner", "OnSpawn") {
		t.Fatalf("expected OnSpawn reachable via this.SendCustomEvent(\"OnSpawn\")")
	}
}
