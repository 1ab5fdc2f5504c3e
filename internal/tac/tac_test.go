package tac

import (
	"testing"

	"github.com/udonc/udonc/internal/udontype"
)

func TestConstantKeyIsStructural(t *testing.T) {
	a := IntConstant("1", udontype.Primitive(udontype.Int32))
	b := IntConstant("1", udontype.Primitive(udontype.Int32))
	c := IntConstant("2", udontype.Primitive(udontype.Int32))

	if a.Key() != b.Key() {
		t.Fatalf("expected equal constants to share a key: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Fatalf("expected distinct constants to have distinct keys")
	}
}

func TestFunctionLabelsAndJumps(t *testing.T) {
	lElse := &Label{Name: "Lelse"}
	lEnd := &Label{Name: "Lend"}
	fn := &Function{Instructions: []Instruction{
		&ConditionalJump{Cond: BoolConstant(true), Target: lElse},
		&UnconditionalJump{Target: lEnd},
		&LabelDef{Label: lElse},
		&LabelDef{Label: lEnd},
	}}

	labels := fn.Labels()
	if len(labels) != 2 || labels[0] != "Lelse" || labels[1] != "Lend" {
		t.Fatalf("unexpected labels: %v", labels)
	}
	jumps := fn.Jumps()
	if len(jumps) != 2 || jumps[0] != "Lelse" || jumps[1] != "Lend" {
		t.Fatalf("unexpected jumps: %v", jumps)
	}
}

func TestConditionalJumpSemanticsDocumentedByString(t *testing.T) {
	j := &ConditionalJump{Cond: BoolConstant(false), Target: &Label{Name: "L1"}}
	if j.String() != "ifFalse false goto L1" {
		t.Fatalf("unexpected rendering: %s", j.String())
	}
}
