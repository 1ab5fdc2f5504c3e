package udon

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/udonc/udonc/internal/config"
)

// The six concrete end-to-end scenarios below are grounded directly in
// named worked examples: a minimal entry class, a heap-budget overflow,
// literal vs. non-literal top-level constant folding, interface dispatch
// unification across two implementors, and a recursive method's shadow
// stack. Each is captured as a go-snaps golden snapshot of the rendered
// assembly (or, for the overflow case, the budget warning), so a
// regression in any pipeline stage shows up as a snapshot diff instead
// of a silently wrong value buried in an equality assertion.

func TestGoldenMinimalEntryClass(t *testing.T) {
	source := `
@UdonBehaviour
class Demo extends UdonSharpBehaviour {
  Start(): void {
    let x: number = 1;
    x = x + 1;
  }
}
`
	asm, diags, err := Compile(source, "minimal.uts")
	if err != nil {
		t.Fatalf("unexpected error: %v (diags: %v)", err, diags)
	}
	rendered := asm.String()
	if !strings.Contains(rendered, ".data_start") {
		t.Fatalf("expected .data_start present")
	}
	if !strings.Contains(rendered, ".code_start") {
		t.Fatalf("expected .code_start present")
	}
	if !strings.Contains(rendered, "_start:") && !strings.Contains(rendered, "_start") {
		t.Fatalf("expected the _start label to be defined")
	}
	if !strings.Contains(rendered, "EXTERN") {
		t.Fatalf("expected at least one EXTERN for the numeric addition")
	}
	snaps.MatchSnapshot(t, "minimal_entry_class", rendered)
}

func TestGoldenHeapOverflowEmitsWarning(t *testing.T) {
	const limit = 6
	var body strings.Builder
	for i := 0; i < limit+8; i++ {
		fmt.Fprintf(&body, "    let value%d: number = %d;\n", i, i)
	}
	source := fmt.Sprintf(`
@UdonBehaviour
class Demo extends UdonSharpBehaviour {
  Start(): void {
%s  }
}
`, body.String())

	cfg := config.Default()
	cfg.HeapLimit = limit

	asm, diags, err := Compile(source, "overflow.uts", WithConfig(&cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v (diags: %v)", err, diags)
	}
	if !asm.Budget.Exceeded {
		t.Fatalf("expected the heap budget to be exceeded")
	}
	warning := asm.Budget.Warning()
	if !strings.Contains(warning, "UASM heap usage") || !strings.Contains(warning, "exceeds limit") {
		t.Fatalf("unexpected warning text: %s", warning)
	}
	foundWarning := false
	for _, d := range diags {
		if strings.Contains(d.Message, "heap") {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatalf("expected a heap-budget diagnostic among %v", diags)
	}
	snaps.MatchSnapshot(t, "heap_overflow_warning", warning)
}

func TestGoldenTopLevelConstInlining(t *testing.T) {
	source := `
const MAX = 100;

class T {
  Start(): void {
    let x: number = MAX;
  }
}
`
	asm, diags, err := Compile(source, "const_inline.uts")
	if err != nil {
		t.Fatalf("unexpected error: %v (diags: %v)", err, diags)
	}
	rendered := asm.String()
	if !strings.Contains(rendered, "100") {
		t.Fatalf("expected the literal 100 to appear in the rendered assembly")
	}
	if strings.Contains(rendered, "MAX") {
		t.Fatalf("expected MAX to never appear in the data section:\n%s", rendered)
	}
	snaps.MatchSnapshot(t, "top_level_const_inlining", rendered)
}

func TestGoldenNonLiteralConstKeepsNamedSlot(t *testing.T) {
	source := `
const FACTOR = 2 + 3;

class T {
  Start(): void {
    let y: number = FACTOR;
  }
}
`
	asm, diags, err := Compile(source, "const_nonliteral.uts")
	if err != nil {
		t.Fatalf("unexpected error: %v (diags: %v)", err, diags)
	}
	rendered := asm.String()
	if !strings.Contains(rendered, "FACTOR") {
		t.Fatalf("expected a variable named FACTOR in the rendered assembly:\n%s", rendered)
	}
	startIdx := strings.Index(rendered, "_start")
	factorIdx := strings.Index(rendered, "FACTOR")
	if startIdx == -1 || factorIdx == -1 || startIdx >= factorIdx {
		t.Fatalf("expected the _start label to precede FACTOR's initialization:\n%s", rendered)
	}
	snaps.MatchSnapshot(t, "non_literal_const_named_slot", rendered)
}

func TestGoldenInterfaceDispatchUnification(t *testing.T) {
	source := `
interface IWeapon {
  attack(power: number): number;
}

@UdonBehaviour
class Sword extends UdonSharpBehaviour implements IWeapon {
  attack(power: number): number {
    return power * 2;
  }
}

@UdonBehaviour
class Bow extends UdonSharpBehaviour implements IWeapon {
  attack(power: number): number {
    return power;
  }
}
`
	assemblies, diags, err := CompileAll(map[string]string{"weapons.uts": source})
	if err != nil {
		t.Fatalf("unexpected error: %v (diags: %v)", err, diags)
	}
	if len(assemblies) != 2 {
		t.Fatalf("expected 2 assemblies (Sword, Bow), got %d", len(assemblies))
	}
	for _, asm := range assemblies {
		rendered := asm.String()
		if !strings.Contains(rendered, "IWeapon_attack") {
			t.Fatalf("expected %s's assembly to reference IWeapon_attack:\n%s", asm.ClassName, rendered)
		}
		snaps.MatchSnapshot(t, "interface_dispatch_"+strconv.Itoa(len(asm.ClassName))+"_"+asm.ClassName, rendered)
	}
}

func TestGoldenRecursiveMethodUsesShadowStack(t *testing.T) {
	source := `
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
`
	asm, diags, err := Compile(source, "recursive.uts")
	if err != nil {
		t.Fatalf("unexpected error: %v (diags: %v)", err, diags)
	}
	rendered := asm.String()
	snaps.MatchSnapshot(t, "recursive_method_shadow_stack", rendered)
}
