package udon

import (
	"strings"
	"testing"

	"github.com/udonc/udonc/internal/compileerr"
)

const minimalEntrySource = `
@UdonBehaviour
class Demo extends UdonSharpBehaviour {
  count: number = 0;

  Start(): void {
    this.count = this.count + 1;
  }
}
`

func TestCompileProducesOneAssemblyForAnEntryClass(t *testing.T) {
	asm, diags, err := Compile(minimalEntrySource, "demo.uts")
	if err != nil {
		t.Fatalf("unexpected error: %v (diags: %v)", err, diags)
	}
	if asm.ClassName != "Demo" {
		t.Fatalf("class name = %q, want Demo", asm.ClassName)
	}
	if len(asm.Data) == 0 {
		t.Fatalf("expected at least one data section entry")
	}
	if len(asm.Code) == 0 {
		t.Fatalf("expected at least one code line")
	}
	rendered := asm.String()
	if !strings.Contains(rendered, ".data_start") || !strings.Contains(rendered, ".code_start") {
		t.Fatalf("rendered assembly missing expected section markers:\n%s", rendered)
	}
	for _, d := range diags {
		if d.Kind.Fatal() {
			t.Fatalf("unexpected fatal diagnostic: %v", d)
		}
	}
}

func TestCompileRejectsFileWithNoEntryClass(t *testing.T) {
	source := `
class Helper {
  square(x: number): number {
    return x * x;
  }
}
`
	_, _, err := Compile(source, "helper.uts")
	if err == nil {
		t.Fatalf("expected an error compiling a file with no entry class")
	}
	if !strings.Contains(err.Error(), "no entry class") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestCompileRejectsFileWithMultipleEntryClasses(t *testing.T) {
	source := `
@UdonBehaviour
class First extends UdonSharpBehaviour {
  Start(): void {}
}

@UdonBehaviour
class Second extends UdonSharpBehaviour {
  Start(): void {}
}
`
	_, _, err := Compile(source, "both.uts")
	if err == nil {
		t.Fatalf("expected an error compiling a file with two entry classes")
	}
	if !strings.Contains(err.Error(), "2 entry classes") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestCompileSurfacesSyntaxErrorsAsFatalDiagnostics(t *testing.T) {
	source := `
@UdonBehaviour
class Broken extends UdonSharpBehaviour {
  Start(): void {
    let x: number = ;
  }
}
`
	_, diags, err := Compile(source, "broken.uts")
	if err == nil {
		t.Fatalf("expected an error compiling malformed source")
	}
	found := false
	for _, d := range diags {
		if d.Kind == compileerr.UnsupportedSyntax {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UnsupportedSyntax diagnostic among %v", diags)
	}
}

func TestCompileAllRunsFilesConcurrentlyAndReturnsThemSortedByFilename(t *testing.T) {
	files := map[string]string{
		"b.uts": strings.ReplaceAll(minimalEntrySource, "Demo", "Bravo"),
		"a.uts": strings.ReplaceAll(minimalEntrySource, "Demo", "Alpha"),
	}
	assemblies, _, err := CompileAll(files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assemblies) != 2 {
		t.Fatalf("expected 2 assemblies, got %d", len(assemblies))
	}
	names := map[string]bool{}
	for _, a := range assemblies {
		names[a.ClassName] = true
	}
	if !names["Alpha"] || !names["Bravo"] {
		t.Fatalf("expected both Alpha and Bravo classes present, got %v", names)
	}
}
