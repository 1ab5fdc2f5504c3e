package optimize

import (
	"strconv"

	"github.com/udonc/udonc/internal/tac"
)

// forEachOperand visits every operand an instruction reads or writes,
// Dest included. It exists so passes that only need to observe operands
// (renumbering, read-set computation) don't need their own exhaustive
// type switch; passes that rewrite operands keep their own switch since
// Go gives no generic addressable-field access across struct types.
func forEachOperand(instr tac.Instruction, visit func(tac.Operand)) {
	visitIf := func(op tac.Operand) {
		if op != nil {
			visit(op)
		}
	}
	switch in := instr.(type) {
	case *tac.Assignment:
		visitIf(in.Dest)
		visitIf(in.Src)
	case *tac.Copy:
		visitIf(in.Dest)
		visitIf(in.Src)
	case *tac.BinaryOp:
		visitIf(in.Dest)
		visitIf(in.Left)
		visitIf(in.Right)
	case *tac.UnaryOp:
		visitIf(in.Dest)
		visitIf(in.Operand)
	case *tac.Cast:
		visitIf(in.Dest)
		visitIf(in.Src)
	case *tac.ConditionalJump:
		visitIf(in.Cond)
	case *tac.UnconditionalJump:
		// no value operands, only a label target
	case *tac.LabelDef:
		// no value operands
	case *tac.Call:
		visitIf(in.Dest)
		for _, a := range in.Args {
			visitIf(a)
		}
	case *tac.MethodCall:
		visitIf(in.Dest)
		visitIf(in.Receiver)
		for _, a := range in.Args {
			visitIf(a)
		}
	case *tac.PropertyGet:
		visitIf(in.Dest)
		visitIf(in.Receiver)
	case *tac.PropertySet:
		visitIf(in.Receiver)
		visitIf(in.Value)
	case *tac.ArrayAccess:
		visitIf(in.Dest)
		visitIf(in.Array)
		visitIf(in.Index)
	case *tac.ArrayAssignment:
		visitIf(in.Array)
		visitIf(in.Index)
		visitIf(in.Value)
	case *tac.Return:
		visitIf(in.Value)
	case *tac.Phi:
		visitIf(in.Dest)
		for _, v := range in.Operands {
			visitIf(v)
		}
	}
}

// destOf returns the instruction's write target, if it has exactly one,
// and whether it has one at all (Calls/MethodCalls may have a nil Dest).
func destOf(instr tac.Instruction) (tac.Operand, bool) {
	switch in := instr.(type) {
	case *tac.Assignment:
		return in.Dest, true
	case *tac.Copy:
		return in.Dest, true
	case *tac.BinaryOp:
		return in.Dest, true
	case *tac.UnaryOp:
		return in.Dest, true
	case *tac.Cast:
		return in.Dest, true
	case *tac.Call:
		return in.Dest, in.Dest != nil
	case *tac.MethodCall:
		return in.Dest, in.Dest != nil
	case *tac.PropertyGet:
		return in.Dest, true
	case *tac.ArrayAccess:
		return in.Dest, true
	case *tac.Phi:
		return in.Dest, true
	}
	return nil, false
}

func isTerminator(instr tac.Instruction) bool {
	switch instr.(type) {
	case *tac.Return, *tac.UnconditionalJump:
		return true
	}
	return false
}

func isSideEffecting(instr tac.Instruction) bool {
	switch instr.(type) {
	case *tac.Call, *tac.MethodCall, *tac.PropertySet, *tac.ArrayAssignment, *tac.Return,
		*tac.ConditionalJump, *tac.UnconditionalJump, *tac.LabelDef:
		return true
	}
	return false
}

func operandKey(op tac.Operand) string {
	switch o := op.(type) {
	case *tac.Constant:
		return "c:" + o.Key()
	case *tac.Temporary:
		return "t:" + strconv.Itoa(o.ID)
	case *tac.Variable:
		return "v:" + o.Name
	case *tac.Label:
		return "l:" + o.Name
	default:
		return ""
	}
}
