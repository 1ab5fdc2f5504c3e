package backend

import (
	"strings"
	"testing"

	"github.com/udonc/udonc/internal/config"
	"github.com/udonc/udonc/internal/layout"
	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

func intType() *udontype.Type    { return udontype.Primitive(udontype.Int32) }
func stringType() *udontype.Type { return udontype.Primitive(udontype.String) }
func boolType() *udontype.Type   { return udontype.Primitive(udontype.Boolean) }

func localVar(name string, typ *udontype.Type) *tac.Variable {
	return &tac.Variable{Name: name, Typ: typ, Flags: tac.VariableFlags{IsLocal: true}}
}

func TestHeapAllocatesAddressesInFirstSeenOrder(t *testing.T) {
	h := newHeap("Player")
	a := h.nameForVariable(localVar("x", intType()))
	b := h.nameForVariable(localVar("y", intType()))
	again := h.nameForVariable(localVar("x", intType()))

	if a != "x" || b != "y" {
		t.Fatalf("expected variable names preserved, got %q, %q", a, b)
	}
	if again != a {
		t.Fatalf("expected repeat allocation to reuse the same slot, got %q", again)
	}
	if len(h.data) != 2 {
		t.Fatalf("expected exactly 2 data rows for 2 distinct names, got %d", len(h.data))
	}
}

func TestHeapRewritesThisToReservedName(t *testing.T) {
	h := newHeap("Player")
	name := h.nameForVariable(localVar("this", udontype.Class("Player")))
	if name != "__this" {
		t.Fatalf("expected this to rewrite to __this, got %q", name)
	}
}

func TestHeapConstantsDedupByStructuralKey(t *testing.T) {
	h := newHeap("Player")
	c1 := tac.IntConstant("1", intType())
	c2 := tac.IntConstant("1", intType())
	n1 := h.nameForConstant(c1)
	n2 := h.nameForConstant(c2)
	if n1 != n2 {
		t.Fatalf("expected two constants with the same type/value to share one slot, got %q and %q", n1, n2)
	}
	if !strings.HasPrefix(n1, "__const_") {
		t.Fatalf("expected constant slot name to carry the __const_ prefix, got %q", n1)
	}
}

func TestHeapInlineInstanceChargesItsOwnClass(t *testing.T) {
	h := newHeap("Player")
	h.nameForVariable(localVar("__inst_Weapon_1_damage", intType()))
	h.nameForVariable(localVar("score", intType()))

	if h.budget["Weapon"] != 1 {
		t.Fatalf("expected the inlined instance field to charge Weapon, got budget %v", h.budget)
	}
	if h.budget["Player"] != 1 {
		t.Fatalf("expected the bare field to charge the entry class Player, got budget %v", h.budget)
	}
}

func TestCheckBudgetOrdersEntryClassFirstThenNatural(t *testing.T) {
	h := newHeap("Player")
	h.allocate("a", "SystemInt32", "", "Weapon10")
	h.allocate("b", "SystemInt32", "", "Weapon2")
	h.allocate("c", "SystemInt32", "", "Player")

	report := CheckBudget(h, 0)
	if report.Exceeded {
		t.Fatalf("expected no overflow with a zero (unbounded) limit")
	}
	if report.Breakdown[0].Class != "Player" {
		t.Fatalf("expected the entry class to lead the breakdown, got %q", report.Breakdown[0].Class)
	}
	if report.Breakdown[1].Class != "Weapon2" || report.Breakdown[2].Class != "Weapon10" {
		t.Fatalf("expected natural sort Weapon2 before Weapon10, got %v", report.Breakdown)
	}
}

func TestCheckBudgetFlagsOverflow(t *testing.T) {
	h := newHeap("Player")
	for i := 0; i < 5; i++ {
		h.allocate(strings.Repeat("x", i+1), "SystemInt32", "", "Player")
	}
	report := CheckBudget(h, 3)
	if !report.Exceeded {
		t.Fatalf("expected 5 slots against a limit of 3 to be flagged as exceeded")
	}
	if !strings.Contains(report.Warning(), "exceeds limit 3") {
		t.Fatalf("expected the warning text to name the configured limit, got: %s", report.Warning())
	}
}

func newTestGenerator(className string) *generator {
	return &generator{
		heap:      newHeap(className),
		resolver:  noResolver{},
		layouts:   map[string]*layout.ClassLayout{},
		className: className,
		cfg:       func() *config.Config { c := config.Default(); return &c }(),
	}
}

func TestEmitCopyOrdersPushSrcThenPushDestThenCopy(t *testing.T) {
	g := newTestGenerator("Player")
	g.emitCopy("src", "dest")

	if len(g.code) != 3 {
		t.Fatalf("expected exactly 3 code lines (push, push, copy), got %d", len(g.code))
	}
	if g.code[0].Op != OpPush || g.code[0].Operand != "src" {
		t.Fatalf("expected first line to push the source, got %+v", g.code[0])
	}
	if g.code[1].Op != OpPush || g.code[1].Operand != "dest" {
		t.Fatalf("expected second line to push the destination, got %+v", g.code[1])
	}
	if g.code[2].Op != OpCopy {
		t.Fatalf("expected the third line to be COPY, got %+v", g.code[2])
	}
}

func TestEmitCopyIsNoOpWhenSrcEqualsDest(t *testing.T) {
	g := newTestGenerator("Player")
	g.emitCopy("same", "same")
	if len(g.code) != 0 {
		t.Fatalf("expected a self-copy to emit nothing, got %d lines", len(g.code))
	}
}

func TestEmitExternPushesArgsThenInternsSignatureThenCopiesResult(t *testing.T) {
	g := newTestGenerator("Player")
	g.emitExtern("Operator.op_Addition", []string{"a", "b"}, "dest")

	if g.code[0] != (CodeLine{Op: OpPush, Operand: "a"}) {
		t.Fatalf("expected first arg pushed first, got %+v", g.code[0])
	}
	if g.code[1] != (CodeLine{Op: OpPush, Operand: "b"}) {
		t.Fatalf("expected second arg pushed second, got %+v", g.code[1])
	}
	if g.code[2].Op != OpExtern {
		t.Fatalf("expected an EXTERN line after the args, got %+v", g.code[2])
	}
	if g.code[3].Op != OpPush || g.code[3].Operand != "dest" || g.code[4].Op != OpCopy {
		t.Fatalf("expected a trailing push-dest/copy pair, got %+v %+v", g.code[3], g.code[4])
	}
}

func TestEmitExternOmitsTrailingCopyWithNoDestination(t *testing.T) {
	g := newTestGenerator("Player")
	g.emitExtern("UdonBehaviour.SendCustomEvent", []string{"this", "name"}, "")
	if len(g.code) != 3 {
		t.Fatalf("expected push, push, extern with no trailing copy, got %d lines", len(g.code))
	}
}

func TestLowerCastNoOpWhenTypesEqual(t *testing.T) {
	g := newTestGenerator("Player")
	g.lowerCast("src", intType(), intType(), "dest")
	if len(g.code) != 3 || g.code[2].Op != OpCopy {
		t.Fatalf("expected a no-op cast to degrade to a plain copy, got %+v", g.code)
	}
}

func TestLowerCastFloatToIntTruncatesThroughDouble(t *testing.T) {
	g := newTestGenerator("Player")
	g.lowerCast("src", udontype.Primitive(udontype.Single), intType(), "dest")

	var externs int
	for _, line := range g.code {
		if line.Op == OpExtern {
			externs++
		}
	}
	if externs != 3 {
		t.Fatalf("expected 3 externs (ToDouble, Truncate, ToInt32) for a single->int32 cast, got %d in %+v", externs, g.code)
	}
}

func TestLowerCastOtherwiseEmitsOneConvertExtern(t *testing.T) {
	g := newTestGenerator("Player")
	g.lowerCast("src", intType(), stringType(), "dest")

	var externs int
	for _, line := range g.code {
		if line.Op == OpExtern {
			externs++
		}
	}
	if externs != 1 {
		t.Fatalf("expected exactly one SystemConvert extern for int->string, got %d", externs)
	}
}

func TestLowerBinaryOpComparisonReturnsBoolean(t *testing.T) {
	if rt := binaryReturnType("<", intType()); rt.Kind != udontype.KindPrimitive || rt.PrimitiveName != udontype.Boolean {
		t.Fatalf("expected a comparison operator to report Boolean, got %v", rt)
	}
	if rt := binaryReturnType("+", intType()); rt.PrimitiveName != udontype.Int32 {
		t.Fatalf("expected a non-comparison operator to keep the operand type, got %v", rt)
	}
}

func TestUnaryNegationForcesBoolean(t *testing.T) {
	if rt := unaryReturnType("!", intType()); rt.PrimitiveName != udontype.Boolean {
		t.Fatalf("expected ! to force Boolean regardless of operand type, got %v", rt)
	}
}

func TestLowerMethodCallSameAssemblySelfCallUsesRPCSequence(t *testing.T) {
	playerType := udontype.Class("Player")
	layouts := map[string]*layout.ClassLayout{
		"Player": {
			ClassName: "Player",
			Methods: map[string]*layout.MethodLayout{
				"Heal": {
					ExportMethodName:     "_Player_m1",
					ReturnExportName:     "_Player_m1__ret",
					ParameterExportNames: []string{"_Player_m1__param_0"},
					ReturnType:           intType(),
				},
			},
		},
	}
	g := newTestGenerator("Player")
	g.layouts = layouts

	dest := &tac.Temporary{ID: 0, Typ: intType()}
	call := &tac.MethodCall{
		Dest:       dest,
		Receiver:   localVar("this", playerType),
		MethodName: "Heal",
		Args:       []tac.Operand{tac.IntConstant("5", intType())},
	}
	g.lowerMethodCall(call)

	var externNames []string
	for _, d := range g.heap.data {
		if strings.HasPrefix(d.Name, "__extern_") {
			externNames = append(externNames, d.Value)
		}
	}
	wantSubstrings := []string{"SetProgramVariable", "SendCustomEvent", "GetProgramVariable"}
	for _, want := range wantSubstrings {
		found := false
		for _, v := range externNames {
			if strings.Contains(v, want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected interned extern signatures to include %q, got %v", want, externNames)
		}
	}
}

func TestGenerateProducesDataAndCodeSections(t *testing.T) {
	fn := &tac.Function{
		Name:     "_start",
		Exported: true,
		Instructions: []tac.Instruction{
			&tac.Assignment{Dest: localVar("score", intType()), Src: tac.IntConstant("0", intType())},
			&tac.Return{},
		},
	}
	unit := &tac.Unit{Functions: []*tac.Function{fn}}
	cfg := config.Default()

	asm, diags := Generate(unit, "Player", nil, nil, &cfg)
	if diags.HasFatal() {
		t.Fatalf("expected no fatal diagnostics, got %v", diags.All())
	}
	text := asm.String()
	if !strings.Contains(text, ".data_start") || !strings.Contains(text, ".data_end") {
		t.Fatalf("expected a data section, got: %s", text)
	}
	if !strings.Contains(text, ".code_start") || !strings.Contains(text, ".code_end") {
		t.Fatalf("expected a code section, got: %s", text)
	}
	if !strings.Contains(text, ReturnAddress) {
		t.Fatalf("expected the return sentinel jump in the code section, got: %s", text)
	}
}

func TestGenerateReflectModeAddsMetadataEntries(t *testing.T) {
	unit := &tac.Unit{Functions: []*tac.Function{{Name: "_start"}}}
	cfg := config.Default()
	cfg.Reflect = true

	asm, _ := Generate(unit, "Player", nil, nil, &cfg)
	var names []string
	for _, d := range asm.Data {
		names = append(names, d.Name)
	}
	for _, want := range []string{"__refl_typeid", "__refl_typename", "__refl_typeids"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected reflect mode to add %q, got %v", want, names)
		}
	}
}

func TestGenerateFlagsPhiAsInternalError(t *testing.T) {
	fn := &tac.Function{
		Name: "_start",
		Instructions: []tac.Instruction{
			&tac.Phi{Dest: &tac.Temporary{ID: 0, Typ: boolType()}, Operands: map[string]tac.Operand{}},
		},
	}
	unit := &tac.Unit{Functions: []*tac.Function{fn}}
	cfg := config.Default()

	_, diags := Generate(unit, "Player", nil, nil, &cfg)
	if !diags.HasFatal() {
		t.Fatalf("expected a stray Phi to raise a fatal Internal diagnostic")
	}
}

func TestCollapseStringConcatChainsLeavesShortChainsAlone(t *testing.T) {
	t0 := &tac.Temporary{ID: 0, Typ: stringType()}
	instrs := []tac.Instruction{
		&tac.BinaryOp{Dest: t0, Left: tac.StringConstant("a"), Op: "+", Right: tac.StringConstant("b")},
	}
	out := collapseStringConcatChains(instrs, 4)
	if len(out) != 1 {
		t.Fatalf("expected a below-threshold chain to be left untouched, got %d instructions", len(out))
	}
}

func TestCollapseStringConcatChainsRewritesLongChains(t *testing.T) {
	t0 := &tac.Temporary{ID: 0, Typ: stringType()}
	t1 := &tac.Temporary{ID: 1, Typ: stringType()}
	t2 := &tac.Temporary{ID: 2, Typ: stringType()}
	t3 := &tac.Temporary{ID: 3, Typ: stringType()}
	instrs := []tac.Instruction{
		&tac.BinaryOp{Dest: t0, Left: tac.StringConstant("a"), Op: "+", Right: tac.StringConstant("b")},
		&tac.BinaryOp{Dest: t1, Left: t0, Op: "+", Right: tac.StringConstant("c")},
		&tac.BinaryOp{Dest: t2, Left: t1, Op: "+", Right: tac.StringConstant("d")},
		&tac.BinaryOp{Dest: t3, Left: t2, Op: "+", Right: tac.StringConstant("e")},
	}
	out := collapseStringConcatChains(instrs, 4)

	var ctor, appends, toString int
	for _, instr := range out {
		call, ok := instr.(*tac.Call)
		if !ok {
			continue
		}
		switch call.ExternName {
		case "ctor":
			ctor++
		case "Append":
			appends++
		case "ToString":
			toString++
		}
	}
	if ctor != 1 || toString != 1 || appends != 5 {
		t.Fatalf("expected 1 ctor, 5 appends (one per operand a..e), 1 ToString, got ctor=%d appends=%d toString=%d", ctor, appends, toString)
	}
}
