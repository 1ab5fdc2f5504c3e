package lower

import (
	"testing"

	"github.com/udonc/udonc/internal/analysis"
	"github.com/udonc/udonc/internal/layout"
	"github.com/udonc/udonc/internal/lexer"
	"github.com/udonc/udonc/internal/parser"
	"github.com/udonc/udonc/internal/registry"
	"github.com/udonc/udonc/internal/tac"
)

// lowerSource runs one source string through lex/parse/register/layout/
// reachability and returns the resulting unit, the way internal/lower's
// own callers (pkg/udon) assemble the stages around it; a package-level
// test helper standing in for those stages keeps each test focused on
// what LowerProgram itself produces.
func lowerSource(t *testing.T, source string) *tac.Unit {
	t.Helper()

	l := lexer.New(source)
	p := parser.New(l, "test.uts")
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}

	reg := registry.New()
	if errs := reg.Populate(program); len(errs) > 0 {
		t.Fatalf("registry errors: %v", errs)
	}
	if diags := analysis.ValidateInheritance(reg); len(diags) > 0 {
		t.Fatalf("inheritance errors: %v", diags)
	}

	layouts := layout.Build(reg)
	reachable := analysis.ComputeReachable(reg)

	lowerer := New(reg, layouts)
	unit, diags := lowerer.LowerProgram(program, reachable)
	if diags.HasFatal() {
		t.Fatalf("lowering errors: %v", diags.All())
	}
	return unit
}

func functionNamed(t *testing.T, unit *tac.Unit, name string) *tac.Function {
	t.Helper()
	for _, fn := range unit.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("no function named %q among %d functions", name, len(unit.Functions))
	return nil
}

func hasArrayAssignment(fn *tac.Function) bool {
	for _, instr := range fn.Instructions {
		if _, ok := instr.(*tac.ArrayAssignment); ok {
			return true
		}
	}
	return false
}

func hasArrayAccess(fn *tac.Function) bool {
	for _, instr := range fn.Instructions {
		if _, ok := instr.(*tac.ArrayAccess); ok {
			return true
		}
	}
	return false
}

func hasConditionalJump(fn *tac.Function) bool {
	for _, instr := range fn.Instructions {
		if _, ok := instr.(*tac.ConditionalJump); ok {
			return true
		}
	}
	return false
}

func TestLiteralTopLevelConstantInlinesAtEveryReference(t *testing.T) {
	unit := lowerSource(t, `
const MAX = 100;

class T {
  Start(): void {
    let x: number = MAX;
  }
}
`)
	fn := functionNamed(t, unit, "T._start")
	for _, instr := range fn.Instructions {
		var dest tac.Operand
		switch in := instr.(type) {
		case *tac.Copy:
			dest = in.Dest
		case *tac.Assignment:
			dest = in.Dest
		}
		if v, ok := dest.(*tac.Variable); ok && v.Name == "MAX" {
			t.Fatalf("expected MAX to never appear as an assignment target, found %v", instr)
		}
	}
}

func TestNonLiteralTopLevelConstantKeepsItsOwnInitializer(t *testing.T) {
	unit := lowerSource(t, `
const FACTOR = 2 + 3;

class T {
  Start(): void {
    let y: number = FACTOR;
  }
}
`)
	fn := functionNamed(t, unit, "T._start")
	found := false
	for _, instr := range fn.Instructions {
		if assign, ok := instr.(*tac.Assignment); ok {
			if v, ok := assign.Dest.(*tac.Variable); ok && v.Name == "FACTOR" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected FACTOR's non-literal initializer to be lowered as its own assignment")
	}
}

func TestRecursiveMethodGetsShadowStackPushAndPop(t *testing.T) {
	unit := lowerSource(t, `
@UdonBehaviour
class Calculator extends UdonSharpBehaviour {
  @RecursiveMethod
  factorial(n: number): number {
    if (n <= 1) {
      return 1;
    }
    return n * this.factorial(n - 1);
  }
}
`)
	fn := functionNamed(t, unit, "Calculator.factorial")
	if !hasArrayAssignment(fn) {
		t.Fatalf("expected an ArrayAssignment pushing onto the shadow stack")
	}
	if !hasArrayAccess(fn) {
		t.Fatalf("expected an ArrayAccess popping off the shadow stack")
	}
}

func TestNonRecursiveMethodHasNoShadowStack(t *testing.T) {
	unit := lowerSource(t, `
@UdonBehaviour
class Calculator extends UdonSharpBehaviour {
  square(n: number): number {
    return n * n;
  }
}
`)
	fn := functionNamed(t, unit, "Calculator.square")
	if hasArrayAssignment(fn) {
		t.Fatalf("expected no shadow-stack ArrayAssignment on a non-recursive method")
	}
}

func TestHelperClassMethodInlinesIntoTheEntryClass(t *testing.T) {
	unit := lowerSource(t, `
class Vector2 {
  x: number = 0;
  y: number = 0;

  length(): number {
    return this.x + this.y;
  }
}

@UdonBehaviour
class Demo extends UdonSharpBehaviour {
  Start(): void {
    let v: Vector2 = new Vector2();
    let total: number = v.length();
  }
}
`)
	for _, fn := range unit.Functions {
		if fn.Name == "Vector2.length" {
			t.Fatalf("expected Vector2's method to be inlined, not lowered as its own function")
		}
	}
	fn := functionNamed(t, unit, "Demo._start")
	if len(fn.Instructions) == 0 {
		t.Fatalf("expected Demo._start to contain the inlined body")
	}
}

func TestStartMethodFoldsIntoSynthesizedStart(t *testing.T) {
	unit := lowerSource(t, `
@UdonBehaviour
class Demo extends UdonSharpBehaviour {
  Start(): void {
    let x: number = 1;
  }
}
`)
	for _, fn := range unit.Functions {
		if fn.Name == "Demo.Start" {
			t.Fatalf("expected Start to fold into _start rather than being its own function")
		}
	}
	fn := functionNamed(t, unit, "Demo._start")
	if len(fn.Instructions) == 0 {
		t.Fatalf("expected _start's tail to contain Start's body")
	}
}

func TestTryCatchRedirectsCallErrorsToCatchLabel(t *testing.T) {
	unit := lowerSource(t, `
@UdonBehaviour
class Demo extends UdonSharpBehaviour {
  helper(): void {}

  Start(): void {
    try {
      this.helper();
    } catch (e) {
      let x: number = 1;
    }
  }
}
`)
	fn := functionNamed(t, unit, "Demo._start")
	if !hasConditionalJump(fn) {
		t.Fatalf("expected the try body's call to be followed by a conditional jump to the catch label")
	}
}
