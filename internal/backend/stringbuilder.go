package backend

import (
	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// collapseStringConcatChains rewrites a run of chained string `+`
// BinaryOps — `t1 = a + b; t2 = t1 + c; t3 = t2 + d; ...` — into a
// SystemText.StringBuilder construct/Append*/ToString sequence once the
// chain is at least threshold concatenations long, per the
// `useStringBuilder`/`stringBuilderThreshold` configuration (spec.md
// §6). A chain shorter than the threshold, or any standalone `+`,
// is left as an ordinary BinaryOp for the main lowering loop to turn
// into one operator extern per `+` — StringBuilder only pays for
// itself past a handful of concatenations, the same tradeoff the
// threshold exists to let a project tune.
func collapseStringConcatChains(instrs []tac.Instruction, threshold int) []tac.Instruction {
	if threshold <= 0 {
		return instrs
	}
	nextID := maxTemporaryID(instrs) + 1
	out := make([]tac.Instruction, 0, len(instrs))
	i := 0
	for i < len(instrs) {
		chain, consumed := detectConcatChain(instrs, i)
		if consumed < threshold {
			out = append(out, instrs[i])
			i++
			continue
		}
		out = append(out, stringBuilderSequence(chain, nextID)...)
		nextID++
		i += consumed
	}
	return out
}

func maxTemporaryID(instrs []tac.Instruction) int {
	max := -1
	forEachInstrOperand := func(instr tac.Instruction) {
		forEachOperand(instr, func(op tac.Operand) {
			if t, ok := op.(*tac.Temporary); ok && t.ID > max {
				max = t.ID
			}
		})
	}
	for _, instr := range instrs {
		forEachInstrOperand(instr)
	}
	return max
}

// detectConcatChain returns the operands of a maximal string `+` chain
// starting at instrs[start] (in left-to-right operand order) and how
// many instructions it consumed, or consumed==1 if instrs[start] isn't
// the start of one.
func detectConcatChain(instrs []tac.Instruction, start int) ([]tac.Operand, int) {
	first, ok := instrs[start].(*tac.BinaryOp)
	if !ok || first.Op != "+" || !isStringType(first.Left.Type()) {
		return nil, 1
	}
	operands := []tac.Operand{first.Left, first.Right}
	lastDest := first.Dest
	count := 1
	j := start + 1
	for j < len(instrs) {
		next, ok := instrs[j].(*tac.BinaryOp)
		if !ok || next.Op != "+" {
			break
		}
		nextLeft, ok := next.Left.(*tac.Temporary)
		if !ok {
			break
		}
		lastTemp, ok := lastDest.(*tac.Temporary)
		if !ok || nextLeft.ID != lastTemp.ID {
			break
		}
		operands = append(operands, next.Right)
		lastDest = next.Dest
		count++
		j++
	}
	return append(operands, lastDest), count
}

func isStringType(t *udontype.Type) bool {
	return t != nil && t.Kind == udontype.KindPrimitive && t.PrimitiveName == udontype.String
}

// stringBuilderSequence lowers a detected chain into plain tac.Call
// instructions the ordinary per-instruction backend loop already knows
// how to turn into EXTERN sequences: construct once (into a temporary
// numbered past every id lowering already assigned, so it cannot alias
// a real value), Append each operand, ToString into the chain's final
// destination.
func stringBuilderSequence(chain []tac.Operand, builderTempID int) []tac.Instruction {
	dest := chain[len(chain)-1]
	operands := chain[:len(chain)-1]

	sb := &tac.Temporary{ID: builderTempID, Typ: udontype.ExternOpaque("SystemTextStringBuilder")}

	var out []tac.Instruction
	out = append(out, &tac.Call{Dest: sb, ExternOwner: "SystemTextStringBuilder", ExternName: "ctor"})
	for _, operand := range operands {
		out = append(out, &tac.Call{Dest: sb, ExternOwner: "SystemTextStringBuilder", ExternName: "Append", Args: []tac.Operand{sb, operand}})
	}
	out = append(out, &tac.Call{Dest: dest, ExternOwner: "SystemTextStringBuilder", ExternName: "ToString", Args: []tac.Operand{sb}})
	return out
}
