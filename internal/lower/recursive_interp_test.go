package lower

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/udonc/udonc/internal/analysis"
	"github.com/udonc/udonc/internal/layout"
	"github.com/udonc/udonc/internal/lexer"
	"github.com/udonc/udonc/internal/parser"
	"github.com/udonc/udonc/internal/registry"
	"github.com/udonc/udonc/internal/tac"
)

// lowerSourceWithLayouts is lowerSource plus the layout map, for tests
// that need a MethodLayout's export names to drive a self-call the way
// the backend's SetProgramVariable/GetProgramVariable bridge would.
func lowerSourceWithLayouts(t *testing.T, source string) (*tac.Unit, map[string]*layout.ClassLayout) {
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
	return unit, layouts
}

// tacInterp walks one tac.Function's instructions against a single
// shared heap map, modeling the VM's one-global-address-per-name
// semantics: a self-recursive MethodCall re-enters run() against the
// same fn and the same heap, so a parameter's storage slot really is
// clobbered across recursion depths exactly as it would be on-device,
// and the test lives or dies on whether the lowered code copes with
// that sharing.
type tacInterp struct {
	fn  *tac.Function
	ml  *layout.MethodLayout
	lay *layout.ClassLayout

	className  string
	methodName string

	heap       map[string]int64
	arrayStore map[string][]int64
}

func heapKey(op tac.Operand) string {
	switch o := op.(type) {
	case *tac.Variable:
		return "v:" + o.Name
	case *tac.Temporary:
		return "t:" + fmt.Sprintf("%d", o.ID)
	default:
		panic(fmt.Sprintf("heapKey: unsupported operand %T", op))
	}
}

func (in *tacInterp) eval(op tac.Operand) int64 {
	switch o := op.(type) {
	case *tac.Constant:
		switch o.Value {
		case "true":
			return 1
		case "false":
			return 0
		}
		n, err := strconv.ParseInt(o.Value, 10, 64)
		if err != nil {
			panic(fmt.Sprintf("eval: unparsable constant %q", o.Value))
		}
		return n
	default:
		return in.heap[heapKey(op)]
	}
}

func (in *tacInterp) store(dest tac.Operand, val int64) {
	if dest == nil {
		return
	}
	in.heap[heapKey(dest)] = val
}

func evalBinary(op string, l, r int64) int64 {
	switch op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		return l / r
	case "<=":
		return boolToInt(l <= r)
	case "<":
		return boolToInt(l < r)
	case ">=":
		return boolToInt(l >= r)
	case ">":
		return boolToInt(l > r)
	case "==":
		return boolToInt(l == r)
	case "!=":
		return boolToInt(l != r)
	default:
		panic(fmt.Sprintf("evalBinary: unsupported op %q", op))
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// arrayKey names the []int64 backing one shadow array's heap slot,
// distinct from the scalar keys heapKey produces for the same Variable
// so a push/pop pair and an ordinary read/write of the count can't
// collide.
func arrayKey(op tac.Operand) string {
	return "arr:" + heapKey(op)
}

func (in *tacInterp) arrays() map[string][]int64 {
	if in.arrayStore == nil {
		in.arrayStore = make(map[string][]int64)
	}
	return in.arrayStore
}

// execExternCall implements just enough of VRCDataList's surface for
// the recursive shadow-stack prologue/epilogue to run against: Count
// and RemoveAt, the only externs emitRecursivePrologue/Epilogue emit.
func (in *tacInterp) execExternCall(c *tac.Call) {
	key := arrayKey(c.Args[0])
	switch c.ExternName {
	case "Count":
		in.store(c.Dest, int64(len(in.arrays()[key])))
	case "RemoveAt":
		idx := in.eval(c.Args[1])
		vals := in.arrays()[key]
		in.arrays()[key] = append(vals[:idx], vals[idx+1:]...)
	default:
		panic(fmt.Sprintf("execExternCall: unsupported extern %s.%s", c.ExternOwner, c.ExternName))
	}
}

func (in *tacInterp) arrayAssign(a *tac.ArrayAssignment) {
	key := arrayKey(a.Array)
	idx := int(in.eval(a.Index))
	vals := in.arrays()[key]
	for len(vals) <= idx {
		vals = append(vals, 0)
	}
	vals[idx] = in.eval(a.Value)
	in.arrays()[key] = vals
}

func (in *tacInterp) arrayAccess(a *tac.ArrayAccess) {
	key := arrayKey(a.Array)
	idx := int(in.eval(a.Index))
	in.store(a.Dest, in.arrays()[key][idx])
}

// callSelf bridges m's arguments into the callee's exported parameter
// slots (the SetProgramVariable step), re-enters run against this same
// function and heap (the SendCustomEvent step, since a self-call
// re-dispatches into the same shared storage rather than a fresh
// frame), then reads back the exported return slot (GetProgramVariable).
func (in *tacInterp) callSelf(m *tac.MethodCall) int64 {
	for i, arg := range m.Args {
		if i >= len(in.ml.ParameterExportNames) {
			break
		}
		in.heap["v:"+in.ml.ParameterExportNames[i]] = in.eval(arg)
	}
	in.run()
	if in.ml.ReturnExportName == "" {
		return 0
	}
	return in.heap["v:"+in.ml.ReturnExportName]
}

// run executes fn's instructions against the interpreter's shared heap
// and returns the value of the first Return it hits.
func (in *tacInterp) run() int64 {
	labels := make(map[string]int)
	for i, instr := range in.fn.Instructions {
		if ld, ok := instr.(*tac.LabelDef); ok {
			labels[ld.Label.Name] = i
		}
	}

	pc := 0
	for pc < len(in.fn.Instructions) {
		instr := in.fn.Instructions[pc]
		switch ins := instr.(type) {
		case *tac.LabelDef:
			// no-op
		case *tac.Copy:
			in.store(ins.Dest, in.eval(ins.Src))
		case *tac.Assignment:
			in.store(ins.Dest, in.eval(ins.Src))
		case *tac.BinaryOp:
			in.store(ins.Dest, evalBinary(ins.Op, in.eval(ins.Left), in.eval(ins.Right)))
		case *tac.UnaryOp:
			v := in.eval(ins.Operand)
			if ins.Op == "-" {
				in.store(ins.Dest, -v)
			} else {
				in.store(ins.Dest, boolToInt(v == 0))
			}
		case *tac.ConditionalJump:
			if in.eval(ins.Cond) == 0 {
				pc = labels[ins.Target.Name]
				continue
			}
		case *tac.UnconditionalJump:
			pc = labels[ins.Target.Name]
			continue
		case *tac.Call:
			in.execExternCall(ins)
		case *tac.ArrayAssignment:
			in.arrayAssign(ins)
		case *tac.ArrayAccess:
			in.arrayAccess(ins)
		case *tac.MethodCall:
			result := in.callSelf(ins)
			in.store(ins.Dest, result)
		case *tac.Return:
			if ins.Value == nil {
				return 0
			}
			v := in.eval(ins.Value)
			if ins.ReturnVarName != "" {
				in.heap["v:"+ins.ReturnVarName] = v
			}
			return v
		default:
			panic(fmt.Sprintf("run: unsupported instruction %T", instr))
		}
		pc++
	}
	return 0
}

func TestRecursiveMethodComputesCorrectFactorial(t *testing.T) {
	unit, layouts := lowerSourceWithLayouts(t, `
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
	ml := layouts["Calculator"].Methods["factorial"]
	if ml == nil {
		t.Fatalf("expected a method layout for Calculator.factorial")
	}

	cases := []struct {
		n    int64
		want int64
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 6},
		{4, 24},
		{5, 120},
	}
	for _, tc := range cases {
		in := &tacInterp{
			fn:         fn,
			ml:         ml,
			className:  "Calculator",
			methodName: "factorial",
			heap:       make(map[string]int64),
			arrayStore: make(map[string][]int64),
		}
		in.heap["v:"+ml.ParameterExportNames[0]] = tc.n
		got := in.callSelf(&tac.MethodCall{})
		if got != tc.want {
			t.Fatalf("factorial(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}
