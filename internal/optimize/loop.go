package optimize

import (
	"strconv"

	"github.com/udonc/udonc/internal/tac"
)

// loopRegion is one detected `header: ifFalse cond goto end; body...; goto
// header; end:` span, the canonical shape internal/lower's lowerWhile/
// lowerFor/lowerDoWhile emit. bodyEnd is the index of the backedge
// UnconditionalJump itself (exclusive upper bound of the body).
type loopRegion struct {
	headerLabel string
	headerIdx   int
	bodyStart   int
	bodyEnd     int
}

func detectLoops(fn *tac.Function) []loopRegion {
	labelIdx := make(map[string]int)
	for i, instr := range fn.Instructions {
		if ld, ok := instr.(*tac.LabelDef); ok {
			labelIdx[ld.Label.Name] = i
		}
	}
	var regions []loopRegion
	for j, instr := range fn.Instructions {
		uj, ok := instr.(*tac.UnconditionalJump)
		if !ok {
			continue
		}
		hi, ok := labelIdx[uj.Target.Name]
		if !ok || hi >= j {
			continue
		}
		regions = append(regions, loopRegion{headerLabel: uj.Target.Name, headerIdx: hi, bodyStart: hi + 1, bodyEnd: j})
	}
	return regions
}

func writtenVariables(fn *tac.Function, start, end int) map[string]bool {
	written := make(map[string]bool)
	for i := start; i < end; i++ {
		if dest, ok := destOf(fn.Instructions[i]); ok {
			if v, ok := dest.(*tac.Variable); ok {
				written[v.Name] = true
			}
		}
	}
	return written
}

func operandsInvariant(written map[string]bool, ops ...tac.Operand) bool {
	for _, op := range ops {
		if v, ok := op.(*tac.Variable); ok && written[v.Name] {
			return false
		}
	}
	return true
}

func isLoopInvariantPure(instr tac.Instruction, written map[string]bool) bool {
	switch in := instr.(type) {
	case *tac.BinaryOp:
		_, isTemp := in.Dest.(*tac.Temporary)
		return isTemp && operandsInvariant(written, in.Left, in.Right)
	case *tac.UnaryOp:
		_, isTemp := in.Dest.(*tac.Temporary)
		return isTemp && operandsInvariant(written, in.Operand)
	case *tac.Cast:
		_, isTemp := in.Dest.(*tac.Temporary)
		return isTemp && operandsInvariant(written, in.Src)
	}
	return false
}

// runLICM hoists a pure, loop-invariant computation out of every
// detected loop region: a "compute once, reuse" pass applied per-loop
// to non-constant but still invariant expressions, the loop-scoped
// counterpart to foldConstants' whole-function constant folding.
func runLICM(fn *tac.Function) bool {
	regions := detectLoops(fn)
	if len(regions) == 0 {
		return false
	}
	hoistSet := make(map[int]bool)
	hoistedFor := make(map[string][]tac.Instruction)
	changed := false
	for _, r := range regions {
		written := writtenVariables(fn, r.bodyStart, r.bodyEnd)
		for i := r.bodyStart; i < r.bodyEnd; i++ {
			if hoistSet[i] {
				continue
			}
			if isLoopInvariantPure(fn.Instructions[i], written) {
				hoistSet[i] = true
				hoistedFor[r.headerLabel] = append(hoistedFor[r.headerLabel], fn.Instructions[i])
				changed = true
			}
		}
	}
	if !changed {
		return false
	}
	var out []tac.Instruction
	for i, instr := range fn.Instructions {
		if hoistSet[i] {
			continue
		}
		if ld, ok := instr.(*tac.LabelDef); ok {
			if hoisted, ok := hoistedFor[ld.Label.Name]; ok {
				out = append(out, hoisted...)
			}
		}
		out = append(out, instr)
	}
	fn.Instructions = out
	return true
}

// runSSAWindow value-numbers pure computations inside each loop region
// using generation-tagged variable keys (a write to a Variable bumps its
// generation, so two reads separated by a write never alias): an
// occurrence of an already-seen (op, operand-generation) combination is
// replaced by a Copy of the first result. This stands in for a literal
// Phi-based SSA form — this IR has no separate basic-block objects for a
// Phi to join against — while still answering the same question a real
// GVN pass would (is this value already available under every path that
// reaches here), scoped down to the single straight-through path within
// one loop body.
func runSSAWindow(fn *tac.Function) bool {
	regions := detectLoops(fn)
	if len(regions) == 0 {
		return false
	}
	changed := false
	for _, r := range regions {
		gen := make(map[string]int)
		keyOf := func(op tac.Operand) string {
			switch o := op.(type) {
			case *tac.Variable:
				return "v:" + o.Name + "@" + itoaGen(gen[o.Name])
			default:
				return operandKey(op)
			}
		}
		valueNum := make(map[string]tac.Operand)
		for i := r.bodyStart; i < r.bodyEnd; i++ {
			instr := fn.Instructions[i]
			var vnKey string
			var dest tac.Operand
			switch in := instr.(type) {
			case *tac.BinaryOp:
				vnKey = in.Op + "|" + keyOf(in.Left) + "|" + keyOf(in.Right)
				dest = in.Dest
			case *tac.UnaryOp:
				vnKey = "u" + in.Op + "|" + keyOf(in.Operand)
				dest = in.Dest
			case *tac.Cast:
				vnKey = "cast|" + keyOf(in.Src)
				dest = in.Dest
			case *tac.PropertyGet:
				vnKey = "prop|" + keyOf(in.Receiver) + "|" + in.Prop
				dest = in.Dest
			}
			if vnKey != "" {
				if existing, ok := valueNum[vnKey]; ok {
					fn.Instructions[i] = &tac.Copy{Dest: dest, Src: existing}
					changed = true
				} else {
					valueNum[vnKey] = dest
				}
			}
			if d, ok := destOf(instr); ok {
				if v, ok := d.(*tac.Variable); ok {
					gen[v.Name]++
				}
			}
		}
	}
	return changed
}

func itoaGen(n int) string { return strconv.Itoa(n) }

// simplifyInductionVars normalizes step expressions across the whole
// function: `x = y - (-C)` folds to `x = y + C` (letting constant-fold/GVN
// see a canonical form), and a no-op step on one variable (`i = i + 0`,
// `i = i - 0`, `i = i * 1`) is dropped outright. Real induction-variable strength reduction (e.g.
// replacing a multiply-by-counter with a running sum) needs dominance
// and use-def chains this pass doesn't build; this is intentionally the
// narrow, safe slice of that pass.
func simplifyInductionVars(fn *tac.Function) bool {
	changed := false
	var out []tac.Instruction
	for _, instr := range fn.Instructions {
		if b, ok := instr.(*tac.BinaryOp); ok {
			if c, ok := b.Right.(*tac.Constant); ok && c.Kind == tac.ConstInt {
				dv, dok := b.Dest.(*tac.Variable)
				lv, lok := b.Left.(*tac.Variable)
				selfStep := dok && lok && dv.Name == lv.Name
				if selfStep && (b.Op == "+" || b.Op == "-") && c.Value == "0" {
					changed = true
					continue
				}
				if selfStep && b.Op == "*" && c.Value == "1" {
					changed = true
					continue
				}
				if b.Op == "-" && len(c.Value) > 1 && c.Value[0] == '-' {
					b.Op = "+"
					b.Right = tac.IntConstant(c.Value[1:], c.Typ)
					changed = true
				}
			}
		}
		out = append(out, instr)
	}
	if changed {
		fn.Instructions = out
	}
	return changed
}

// unswitchLoops hoists a loop's own exit test above the loop when its
// condition cannot change across iterations (no write inside the body
// touches a Variable it reads, and it isn't already a Temporary computed
// inside the body). One evaluation decides whether the loop is entered
// at all; the per-iteration re-test inside the body is then redundant
// and removed, since an invariant condition true on entry stays true.
// True unswitching also duplicates the loop body per branch of an
// *internal* invariant `if`; that requires safely renaming duplicated
// labels and is not attempted here — this pass only covers the loop's
// own header test.
func unswitchLoops(fn *tac.Function) bool {
	regions := detectLoops(fn)
	changed := false
	for _, r := range regions {
		if r.bodyStart >= len(fn.Instructions) {
			continue
		}
		test, ok := fn.Instructions[r.bodyStart].(*tac.ConditionalJump)
		if !ok {
			continue
		}
		labelPos := make(map[string]int)
		for i, instr := range fn.Instructions {
			if ld, ok := instr.(*tac.LabelDef); ok {
				labelPos[ld.Label.Name] = i
			}
		}
		exitPos, ok := labelPos[test.Target.Name]
		if !ok || exitPos <= r.bodyEnd {
			continue // not the loop's own exit label
		}
		if !conditionInvariant(fn, r, test.Cond) {
			continue
		}
		// Insert a pre-check before the header and drop the per-iteration test.
		pre := &tac.ConditionalJump{Cond: test.Cond, Target: test.Target}
		var out []tac.Instruction
		for i, instr := range fn.Instructions {
			if i == r.headerIdx {
				out = append(out, pre)
			}
			if i == r.bodyStart {
				continue // drop the now-redundant per-iteration test
			}
			out = append(out, instr)
		}
		fn.Instructions = out
		changed = true
		return changed // indices are now stale; remaining regions revisit next round
	}
	return changed
}

func conditionInvariant(fn *tac.Function, r loopRegion, cond tac.Operand) bool {
	switch c := cond.(type) {
	case *tac.Constant:
		return false // already handled by simplifyBooleans
	case *tac.Variable:
		return !writtenVariables(fn, r.bodyStart, r.bodyEnd)[c.Name]
	case *tac.Temporary:
		for i := r.bodyStart; i < r.bodyEnd; i++ {
			if d, ok := destOf(fn.Instructions[i]); ok {
				if t, ok := d.(*tac.Temporary); ok && t.ID == c.ID {
					return false // recomputed inside the body, not provably invariant here
				}
			}
		}
		return true
	}
	return false
}

// unrollLoops fully unrolls a loop whose trip count is known at compile
// time (constant init/step/bound) and whose body contains no internal
// control flow of its own — no label, no jump — so duplicating it needs
// no label renaming. Bodies with nested if/break/switch are left to the
// other passes; they would need a real block-duplication engine to
// unroll safely.
func unrollLoops(fn *tac.Function) bool {
	const maxTripCount = 8
	regions := detectLoops(fn)
	for _, r := range regions {
		if r.bodyStart >= len(fn.Instructions) {
			continue
		}
		test, ok := fn.Instructions[r.bodyStart].(*tac.ConditionalJump)
		if !ok {
			continue
		}
		cmp, ok := findDef(fn, test.Cond)
		if !ok {
			continue
		}
		loopVar, bound, ok := counterComparison(cmp)
		if !ok {
			continue
		}
		initIdx, initVal, ok := findPrecedingAssignment(fn, r.headerIdx, loopVar.Name)
		if !ok {
			continue
		}
		stepConst, stepIdx, ok := findStep(fn, r, loopVar.Name)
		if !ok {
			continue
		}
		if bodyHasControlFlow(fn, r.bodyStart+1, stepIdx) {
			continue
		}
		trip, ok := tripCount(initVal, bound, stepConst)
		if !ok || trip <= 0 || trip > maxTripCount {
			continue
		}

		var unrolled []tac.Instruction
		cur := initVal
		for iter := 0; iter < trip; iter++ {
			for i := r.bodyStart + 1; i < stepIdx; i++ {
				unrolled = append(unrolled, substituteVariable(fn.Instructions[i], loopVar.Name, cur))
			}
			cur = stepConstant(cur, stepConst)
		}

		var out []tac.Instruction
		out = append(out, fn.Instructions[:initIdx]...)
		out = append(out, unrolled...)
		out = append(out, fn.Instructions[r.bodyEnd+1:]...)
		fn.Instructions = out
		return true
	}
	return false
}

func findDef(fn *tac.Function, op tac.Operand) (*tac.BinaryOp, bool) {
	t, ok := op.(*tac.Temporary)
	if !ok {
		return nil, false
	}
	for _, instr := range fn.Instructions {
		if b, ok := instr.(*tac.BinaryOp); ok {
			if dt, ok := b.Dest.(*tac.Temporary); ok && dt.ID == t.ID {
				return b, true
			}
		}
	}
	return nil, false
}

func counterComparison(b *tac.BinaryOp) (*tac.Variable, *tac.Constant, bool) {
	if b.Op != "<" && b.Op != "<=" {
		return nil, nil, false
	}
	v, ok := b.Left.(*tac.Variable)
	if !ok {
		return nil, nil, false
	}
	c, ok := b.Right.(*tac.Constant)
	if !ok || c.Kind != tac.ConstInt {
		return nil, nil, false
	}
	if b.Op == "<=" {
		n, err := strconv.ParseInt(c.Value, 10, 64)
		if err != nil {
			return nil, nil, false
		}
		c = tac.IntConstant(strconv.FormatInt(n+1, 10), c.Typ)
	}
	return v, c, true
}

func findPrecedingAssignment(fn *tac.Function, before int, name string) (int, *tac.Constant, bool) {
	for i := before - 1; i >= 0; i-- {
		if a, ok := fn.Instructions[i].(*tac.Assignment); ok {
			if v, ok := a.Dest.(*tac.Variable); ok && v.Name == name {
				if c, ok := a.Src.(*tac.Constant); ok && c.Kind == tac.ConstInt {
					return i, c, true
				}
				return 0, nil, false
			}
		}
	}
	return 0, nil, false
}

func findStep(fn *tac.Function, r loopRegion, name string) (*tac.Constant, int, bool) {
	for i := r.bodyEnd - 1; i > r.bodyStart; i-- {
		if a, ok := fn.Instructions[i].(*tac.Assignment); ok {
			if v, ok := a.Dest.(*tac.Variable); ok && v.Name == name {
				if b, ok := findDef(fn, a.Src); ok && b.Op == "+" {
					if bv, ok := b.Left.(*tac.Variable); ok && bv.Name == name {
						if c, ok := b.Right.(*tac.Constant); ok && c.Kind == tac.ConstInt {
							return c, i, true
						}
					}
				}
				return nil, 0, false
			}
		}
	}
	return nil, 0, false
}

func bodyHasControlFlow(fn *tac.Function, start, end int) bool {
	for i := start; i < end; i++ {
		switch fn.Instructions[i].(type) {
		case *tac.LabelDef, *tac.ConditionalJump, *tac.UnconditionalJump:
			return true
		}
	}
	return false
}

func tripCount(init, bound, step *tac.Constant) (int, bool) {
	i, err1 := parseIntConst(init)
	b, err2 := parseIntConst(bound)
	s, err3 := parseIntConst(step)
	if err1 != nil || err2 != nil || err3 != nil || s <= 0 {
		return 0, false
	}
	if i >= b {
		return 0, true
	}
	return int((b-i+s-1)/s), true
}

func parseIntConst(c *tac.Constant) (int64, error) {
	return strconv.ParseInt(c.Value, 10, 64)
}

func stepConstant(cur, step *tac.Constant) *tac.Constant {
	ci, _ := parseIntConst(cur)
	si, _ := parseIntConst(step)
	return tac.IntConstant(strconv.FormatInt(ci+si, 10), cur.Typ)
}

func substituteVariable(instr tac.Instruction, name string, value *tac.Constant) tac.Instruction {
	sub := func(op tac.Operand) tac.Operand {
		if v, ok := op.(*tac.Variable); ok && v.Name == name {
			return value
		}
		return op
	}
	switch in := instr.(type) {
	case *tac.Assignment:
		return &tac.Assignment{Dest: in.Dest, Src: sub(in.Src)}
	case *tac.Copy:
		return &tac.Copy{Dest: in.Dest, Src: sub(in.Src)}
	case *tac.MethodCall:
		args := make([]tac.Operand, len(in.Args))
		for i, a := range in.Args {
			args[i] = sub(a)
		}
		return &tac.MethodCall{Dest: in.Dest, Receiver: sub(in.Receiver), MethodName: in.MethodName, Args: args}
	case *tac.BinaryOp:
		return &tac.BinaryOp{Dest: in.Dest, Left: sub(in.Left), Op: in.Op, Right: sub(in.Right)}
	case *tac.UnaryOp:
		return &tac.UnaryOp{Dest: in.Dest, Op: in.Op, Operand: sub(in.Operand)}
	case *tac.Cast:
		return &tac.Cast{Dest: in.Dest, Src: sub(in.Src)}
	case *tac.ArrayAccess:
		return &tac.ArrayAccess{Dest: in.Dest, Array: sub(in.Array), Index: sub(in.Index)}
	case *tac.ArrayAssignment:
		return &tac.ArrayAssignment{Array: sub(in.Array), Index: sub(in.Index), Value: sub(in.Value)}
	case *tac.PropertyGet:
		return &tac.PropertyGet{Dest: in.Dest, Receiver: sub(in.Receiver), Prop: in.Prop}
	case *tac.PropertySet:
		return &tac.PropertySet{Receiver: sub(in.Receiver), Prop: in.Prop, Value: sub(in.Value)}
	case *tac.Call:
		args := make([]tac.Operand, len(in.Args))
		for i, a := range in.Args {
			args[i] = sub(a)
		}
		return &tac.Call{Dest: in.Dest, ExternOwner: in.ExternOwner, ExternName: in.ExternName, Args: args}
	}
	return instr
}

// foldVectorSwizzles eliminates a redundant component reload: reading
// the same receiver.prop pair twice in a row with nothing writing the
// receiver in between (the shape a chain like v.x, v.y, v.x produces)
// collapses the second read to a Copy of the first. Named for the Udon
// Vector2/3/4 swizzle-access pattern that triggers it most often; folding
// an actual swizzle *construction* call would need the extern signature
// catalogue, not yet consulted by the optimizer.
func foldVectorSwizzles(fn *tac.Function) bool {
	changed := false
	last := make(map[string]tac.Operand)
	for i, instr := range fn.Instructions {
		switch in := instr.(type) {
		case *tac.LabelDef, *tac.ConditionalJump, *tac.UnconditionalJump, *tac.Call, *tac.MethodCall:
			last = make(map[string]tac.Operand)
			continue
		case *tac.PropertySet:
			delete(last, operandKey(in.Receiver))
			continue
		case *tac.ArrayAssignment:
			last = make(map[string]tac.Operand)
			continue
		case *tac.PropertyGet:
			key := operandKey(in.Receiver) + "." + in.Prop
			if prev, ok := last[key]; ok {
				fn.Instructions[i] = &tac.Copy{Dest: in.Dest, Src: prev}
				changed = true
			} else {
				last[key] = in.Dest
			}
		}
	}
	return changed
}

// optimizeTailCalls collapses `goto L` where L is a label immediately
// followed by nothing but a Return into a direct Return at the jump
// site. True self-tail-call-to-loop conversion would need to prove a
// MethodCall's target is the enclosing function itself; nothing in this
// IR records that identity (internal/layout's export-name table is the
// closest source of truth and isn't consulted by the optimizer), so that
// stronger transform is left undone rather than guessed at.
func optimizeTailCalls(fn *tac.Function) bool {
	labelPos := make(map[string]int)
	for i, instr := range fn.Instructions {
		if ld, ok := instr.(*tac.LabelDef); ok {
			labelPos[ld.Label.Name] = i
		}
	}
	changed := false
	for i, instr := range fn.Instructions {
		uj, ok := instr.(*tac.UnconditionalJump)
		if !ok {
			continue
		}
		pos, ok := labelPos[uj.Target.Name]
		if !ok || pos+1 >= len(fn.Instructions) {
			continue
		}
		ret, ok := fn.Instructions[pos+1].(*tac.Return)
		if !ok {
			continue
		}
		fn.Instructions[i] = &tac.Return{Value: ret.Value, ReturnVarName: ret.ReturnVarName}
		changed = true
	}
	return changed
}

// sinkCode moves a pure, single-use computation down to sit directly
// before its one use, as long as nothing between the two positions could
// observe a difference (no label, jump, call, or property/array write).
func sinkCode(fn *tac.Function) bool {
	changed := false
	for trySinkOne(fn) {
		changed = true
	}
	return changed
}

func trySinkOne(fn *tac.Function) bool {
	uses := make(map[int][]int)
	for i, instr := range fn.Instructions {
		dest, hasDest := destOf(instr)
		forEachOperand(instr, func(op tac.Operand) {
			if hasDest && op == dest {
				return
			}
			if t, ok := op.(*tac.Temporary); ok {
				uses[t.ID] = append(uses[t.ID], i)
			}
		})
	}
	for idx, instr := range fn.Instructions {
		if !isPureComputation(instr) {
			continue
		}
		dest, ok := destOf(instr)
		if !ok {
			continue
		}
		t, ok := dest.(*tac.Temporary)
		if !ok {
			continue
		}
		useList := uses[t.ID]
		if len(useList) != 1 || useList[0] <= idx+1 {
			continue
		}
		useIdx := useList[0]
		safe := true
		for k := idx + 1; k < useIdx; k++ {
			if !sinkBarrierFree(fn.Instructions[k]) {
				safe = false
				break
			}
		}
		if !safe {
			continue
		}
		var out []tac.Instruction
		out = append(out, fn.Instructions[:idx]...)
		out = append(out, fn.Instructions[idx+1:useIdx]...)
		out = append(out, instr)
		out = append(out, fn.Instructions[useIdx:]...)
		fn.Instructions = out
		return true
	}
	return false
}

func isPureComputation(instr tac.Instruction) bool {
	switch instr.(type) {
	case *tac.BinaryOp, *tac.UnaryOp, *tac.Cast, *tac.Copy, *tac.Assignment:
		return true
	}
	return false
}

func sinkBarrierFree(instr tac.Instruction) bool {
	switch instr.(type) {
	case *tac.BinaryOp, *tac.UnaryOp, *tac.Cast, *tac.Copy, *tac.Assignment:
		return true
	}
	return false
}
