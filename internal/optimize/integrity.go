package optimize

import "github.com/udonc/udonc/internal/tac"

// checkLabelIntegrity checks spec.md §8's universal label-integrity
// invariant — every jump's target label is defined somewhere in the
// function — and also warns about a label that is only ever reachable to
// fall straight into a Return with nothing else between it and the next
// label or end of function. eliminateUnusedLabels has already removed
// every label no jump references, so a label flagged here is still a
// jump target; the warning points at that jump rather than failing the
// compile.
func checkLabelIntegrity(fn *tac.Function) []string {
	var warnings []string

	defined := make(map[string]bool)
	for _, name := range fn.Labels() {
		defined[name] = true
	}
	for _, target := range fn.Jumps() {
		if !defined[target] {
			warnings = append(warnings, "optimize: "+fn.Name+": jump targets undefined label "+target)
		}
	}

	for i, instr := range fn.Instructions {
		ld, ok := instr.(*tac.LabelDef)
		if !ok {
			continue
		}
		if i+1 >= len(fn.Instructions) {
			continue
		}
		if _, isReturn := fn.Instructions[i+1].(*tac.Return); !isReturn {
			continue
		}
		if i+2 < len(fn.Instructions) {
			if _, isLabel := fn.Instructions[i+2].(*tac.LabelDef); !isLabel {
				continue
			}
		}
		warnings = append(warnings, "optimize: "+fn.Name+": label "+ld.Label.Name+" guards nothing but a bare return; check for a stale jump target")
	}
	return warnings
}
