package parser

import (
	"testing"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input), "test.ts")
	prog := p.ParseProgram()
	for _, e := range p.Errors() {
		t.Errorf("parser error: %s", e.Error())
	}
	return prog
}

func TestParseSimpleClass(t *testing.T) {
	input := `
@UdonBehaviour
class Greeter extends UdonSharpBehaviour {
  @UdonSynced("Linear")
  count: number = 0;

  greet(name: string): string {
    return "hi " + name;
  }
}
`
	prog := parseProgram(t, input)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(prog.Statements))
	}
	class, ok := prog.Statements[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("statement is not *ast.ClassDecl, got %T", prog.Statements[0])
	}
	if class.Name != "Greeter" {
		t.Errorf("class name = %q, want Greeter", class.Name)
	}
	if class.BaseClass != "UdonSharpBehaviour" {
		t.Errorf("base class = %q, want UdonSharpBehaviour", class.BaseClass)
	}
	if !class.HasDecorator("UdonBehaviour") {
		t.Errorf("expected class decorator UdonBehaviour")
	}
	if len(class.Properties) != 1 {
		t.Fatalf("expected 1 synced property, got %d", len(class.Properties))
	}
	if class.Properties[0].SyncMode != "Linear" {
		t.Errorf("sync mode = %q, want Linear", class.Properties[0].SyncMode)
	}
	if len(class.Methods) != 1 || class.Methods[0].Name != "greet" {
		t.Fatalf("expected method greet, got %+v", class.Methods)
	}
}

func TestParseInterfaceAndEnum(t *testing.T) {
	input := `
interface Damageable {
  takeDamage(amount: number): void;
}
enum Team {
  Red,
  Blue,
}
`
	prog := parseProgram(t, input)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	iface, ok := prog.Statements[0].(*ast.InterfaceDecl)
	if !ok || iface.Name != "Damageable" {
		t.Fatalf("expected interface Damageable, got %#v", prog.Statements[0])
	}
	if len(iface.Methods) != 1 || iface.Methods[0].Name != "takeDamage" {
		t.Fatalf("expected method takeDamage, got %+v", iface.Methods)
	}
	enum, ok := prog.Statements[1].(*ast.EnumDecl)
	if !ok || enum.Name != "Team" || len(enum.Members) != 2 {
		t.Fatalf("expected enum Team with 2 members, got %#v", prog.Statements[1])
	}
}

func TestParseControlFlowAndExpressions(t *testing.T) {
	input := `
class C {
  run(): void {
    let total: number = 0;
    for (let i = 0; i < 10; i = i + 1) {
      if (i % 2 === 0) {
        total += i;
      } else {
        continue;
      }
    }
    const msg = "total was ${total}!";
    return;
  }
}
`
	prog := parseProgram(t, input)
	class := prog.Statements[0].(*ast.ClassDecl)
	body := class.Methods[0].Body
	if len(body.Statements) != 4 {
		t.Fatalf("expected 4 statements in method body, got %d", len(body.Statements))
	}
	if _, ok := body.Statements[1].(*ast.ForStatement); !ok {
		t.Fatalf("statement[1] is not *ast.ForStatement, got %T", body.Statements[1])
	}
}

func TestParseArrayAndObjectLiterals(t *testing.T) {
	input := `
class C {
  m(): void {
    let xs = [1, 2, ...rest];
    let obj = { a: 1, ...other };
  }
}
`
	prog := parseProgram(t, input)
	class := prog.Statements[0].(*ast.ClassDecl)
	body := class.Methods[0].Body
	v0 := body.Statements[0].(*ast.VarDecl)
	arr, ok := v0.Value.(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 3 || !arr.Elements[2].IsSpread {
		t.Fatalf("expected 3-element array literal with trailing spread, got %#v", v0.Value)
	}
	v1 := body.Statements[1].(*ast.VarDecl)
	obj, ok := v1.Value.(*ast.ObjectLiteral)
	if !ok || len(obj.Properties) != 2 || !obj.Properties[1].IsSpread {
		t.Fatalf("expected 2-property object literal with trailing spread, got %#v", v1.Value)
	}
}

func TestParseNewMemberAndCallChains(t *testing.T) {
	input := `
class C {
  m(): void {
    let x = new Foo(1, 2).bar?.baz(3);
  }
}
`
	prog := parseProgram(t, input)
	class := prog.Statements[0].(*ast.ClassDecl)
	v := class.Methods[0].Body.Statements[0].(*ast.VarDecl)
	call, ok := v.Value.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected call expression, got %T", v.Value)
	}
	member, ok := call.Callee.(*ast.MemberExpr)
	if !ok || member.Property != "baz" || !member.Optional {
		t.Fatalf("expected optional member .baz, got %#v", call.Callee)
	}
}

func TestParseTernaryAndNullCoalesce(t *testing.T) {
	input := `
class C {
  m(): void {
    let a = (x === null) ? y ?? 0 : z;
  }
}
`
	prog := parseProgram(t, input)
	class := prog.Statements[0].(*ast.ClassDecl)
	v := class.Methods[0].Body.Statements[0].(*ast.VarDecl)
	tern, ok := v.Value.(*ast.TernaryExpr)
	if !ok {
		t.Fatalf("expected ternary expression, got %T", v.Value)
	}
	if _, ok := tern.Then.(*ast.NullCoalesceExpr); !ok {
		t.Fatalf("expected null-coalesce as ternary then-branch, got %T", tern.Then)
	}
}
