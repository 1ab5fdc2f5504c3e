package optimize

import (
	"testing"

	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

func numberType() *udontype.Type { return udontype.Primitive(udontype.Int32) }

func localVar(name string) *tac.Variable {
	return &tac.Variable{Name: name, Typ: numberType(), Flags: tac.VariableFlags{IsLocal: true}}
}

func TestFoldConstantsReducesABinaryOpToAnAssignment(t *testing.T) {
	fn := &tac.Function{
		Name: "T._start",
		Instructions: []tac.Instruction{
			&tac.BinaryOp{Dest: localVar("x"), Left: tac.IntConstant("1", numberType()), Op: "+", Right: tac.IntConstant("1", numberType())},
		},
	}
	unit := &tac.Unit{Functions: []*tac.Function{fn}}
	Optimize(unit, DefaultConfig())

	if len(fn.Instructions) != 1 {
		t.Fatalf("expected 1 instruction after folding, got %d", len(fn.Instructions))
	}
	assign, ok := fn.Instructions[0].(*tac.Assignment)
	if !ok {
		t.Fatalf("expected the BinaryOp to fold to an Assignment, got %T", fn.Instructions[0])
	}
	c, ok := assign.Src.(*tac.Constant)
	if !ok || c.Value != "2" {
		t.Fatalf("expected the folded constant to be 2, got %v", assign.Src)
	}
}

func TestWithPassDisablesConstantFolding(t *testing.T) {
	fn := &tac.Function{
		Name: "T._start",
		Instructions: []tac.Instruction{
			&tac.BinaryOp{Dest: localVar("x"), Left: tac.IntConstant("1", numberType()), Op: "+", Right: tac.IntConstant("1", numberType())},
		},
	}
	unit := &tac.Unit{Functions: []*tac.Function{fn}}
	cfg := DefaultConfig()
	WithPass(PassConstantFold, false)(&cfg)
	Optimize(unit, cfg)

	if _, ok := fn.Instructions[0].(*tac.BinaryOp); !ok {
		t.Fatalf("expected the BinaryOp to survive with constant folding disabled, got %T", fn.Instructions[0])
	}
}

func TestDeadStoreEliminationRemovesAnUnreadTemporary(t *testing.T) {
	unused := &tac.Temporary{ID: 1, Typ: numberType()}
	used := &tac.Temporary{ID: 2, Typ: numberType()}
	fn := &tac.Function{
		Name: "T._start",
		Instructions: []tac.Instruction{
			&tac.Assignment{Dest: unused, Src: tac.IntConstant("5", numberType())},
			&tac.Assignment{Dest: used, Src: tac.IntConstant("7", numberType())},
			&tac.Return{Value: used},
		},
	}
	unit := &tac.Unit{Functions: []*tac.Function{fn}}
	Optimize(unit, DefaultConfig())

	for _, instr := range fn.Instructions {
		if a, ok := instr.(*tac.Assignment); ok {
			if t2, ok := a.Dest.(*tac.Temporary); ok && t2.ID == unused.ID {
				t.Fatalf("expected the dead store to temporary %d to be eliminated", t2.ID)
			}
		}
	}
}

func TestUnreachablePruneDropsCodeAfterAReturn(t *testing.T) {
	fn := &tac.Function{
		Name: "T._start",
		Instructions: []tac.Instruction{
			&tac.Return{},
			&tac.Assignment{Dest: localVar("x"), Src: tac.IntConstant("1", numberType())},
		},
	}
	unit := &tac.Unit{Functions: []*tac.Function{fn}}
	Optimize(unit, DefaultConfig())

	for _, instr := range fn.Instructions {
		if a, ok := instr.(*tac.Assignment); ok {
			if v, ok := a.Dest.(*tac.Variable); ok && v.Name == "x" {
				t.Fatalf("expected the unreachable assignment to %q to be pruned", v.Name)
			}
		}
	}
}

func TestLabelIntegrityFlagsAJumpToAnUndefinedLabel(t *testing.T) {
	fn := &tac.Function{
		Name: "T._start",
		Instructions: []tac.Instruction{
			&tac.ConditionalJump{Cond: localVar("flag"), Target: &tac.Label{Name: "Lmissing"}},
			&tac.Return{},
		},
	}
	unit := &tac.Unit{Functions: []*tac.Function{fn}}
	warnings := Optimize(unit, DefaultConfig())

	if len(warnings) == 0 {
		t.Fatalf("expected a label-integrity warning for a jump to an undefined label")
	}
}

func TestLabelIntegrityFlagsALabelGuardingOnlyABareReturn(t *testing.T) {
	stale := &tac.Label{Name: "Lstale"}
	fn := &tac.Function{
		Name: "T._start",
		Instructions: []tac.Instruction{
			&tac.ConditionalJump{Cond: localVar("flag"), Target: stale},
			&tac.Assignment{Dest: localVar("x"), Src: tac.IntConstant("1", numberType())},
			&tac.LabelDef{Label: stale},
			&tac.Return{},
		},
	}
	unit := &tac.Unit{Functions: []*tac.Function{fn}}
	warnings := Optimize(unit, DefaultConfig())

	if len(warnings) == 0 {
		t.Fatalf("expected a warning for a label guarding nothing but a bare return")
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	build := func() *tac.Unit {
		return &tac.Unit{Functions: []*tac.Function{{
			Name: "T._start",
			Instructions: []tac.Instruction{
				&tac.BinaryOp{Dest: localVar("x"), Left: tac.IntConstant("2", numberType()), Op: "*", Right: tac.IntConstant("3", numberType())},
				&tac.Assignment{Dest: localVar("unused"), Src: tac.IntConstant("9", numberType())},
				&tac.Return{Value: localVar("x")},
			},
		}}}
	}

	once := build()
	Optimize(once, DefaultConfig())
	onceRendered := renderFunctions(once)

	twice := build()
	Optimize(twice, DefaultConfig())
	Optimize(twice, DefaultConfig())
	twiceRendered := renderFunctions(twice)

	if onceRendered != twiceRendered {
		t.Fatalf("expected Optimize(Optimize(p)) == Optimize(p):\nfirst:  %s\nsecond: %s", onceRendered, twiceRendered)
	}
}

func renderFunctions(unit *tac.Unit) string {
	var out string
	for _, fn := range unit.Functions {
		for _, instr := range fn.Instructions {
			out += instr.String() + "\n"
		}
	}
	return out
}
