package optimize

import (
	"strconv"

	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// foldConstants replaces any BinaryOp/UnaryOp/Cast whose operands are all
// compile-time constants with a plain Assignment of the folded value.
func foldConstants(fn *tac.Function) bool {
	changed := false
	for i, instr := range fn.Instructions {
		switch in := instr.(type) {
		case *tac.BinaryOp:
			l, lok := in.Left.(*tac.Constant)
			r, rok := in.Right.(*tac.Constant)
			if !lok || !rok {
				continue
			}
			if folded, ok := evalBinary(in.Op, l, r); ok {
				fn.Instructions[i] = &tac.Assignment{Dest: in.Dest, Src: folded}
				changed = true
			}
		case *tac.UnaryOp:
			v, ok := in.Operand.(*tac.Constant)
			if !ok {
				continue
			}
			if folded, ok := evalUnary(in.Op, v); ok {
				fn.Instructions[i] = &tac.Assignment{Dest: in.Dest, Src: folded}
				changed = true
			}
		case *tac.Cast:
			v, ok := in.Src.(*tac.Constant)
			if !ok {
				continue
			}
			if folded, ok := evalCast(v, in.Dest.Type()); ok {
				fn.Instructions[i] = &tac.Assignment{Dest: in.Dest, Src: folded}
				changed = true
			}
		}
	}
	return changed
}

func evalBinary(op string, l, r *tac.Constant) (*tac.Constant, bool) {
	switch {
	case l.Kind == tac.ConstInt && r.Kind == tac.ConstInt:
		return evalIntBinary(op, l, r)
	case (l.Kind == tac.ConstInt || l.Kind == tac.ConstFloat) && (r.Kind == tac.ConstInt || r.Kind == tac.ConstFloat):
		return evalFloatBinary(op, l, r)
	case l.Kind == tac.ConstBool && r.Kind == tac.ConstBool:
		return evalBoolBinary(op, l, r)
	case l.Kind == tac.ConstString && r.Kind == tac.ConstString:
		return evalStringBinary(op, l, r)
	}
	return nil, false
}

func evalIntBinary(op string, l, r *tac.Constant) (*tac.Constant, bool) {
	li, err1 := strconv.ParseInt(l.Value, 10, 64)
	ri, err2 := strconv.ParseInt(r.Value, 10, 64)
	if err1 != nil || err2 != nil {
		return nil, false
	}
	switch op {
	case "+":
		return tac.IntConstant(strconv.FormatInt(li+ri, 10), l.Typ), true
	case "-":
		return tac.IntConstant(strconv.FormatInt(li-ri, 10), l.Typ), true
	case "*":
		return tac.IntConstant(strconv.FormatInt(li*ri, 10), l.Typ), true
	case "/":
		if ri == 0 {
			return nil, false
		}
		return tac.IntConstant(strconv.FormatInt(li/ri, 10), l.Typ), true
	case "%":
		if ri == 0 {
			return nil, false
		}
		return tac.IntConstant(strconv.FormatInt(li%ri, 10), l.Typ), true
	case "&":
		return tac.IntConstant(strconv.FormatInt(li&ri, 10), l.Typ), true
	case "|":
		return tac.IntConstant(strconv.FormatInt(li|ri, 10), l.Typ), true
	case "^":
		return tac.IntConstant(strconv.FormatInt(li^ri, 10), l.Typ), true
	case "<<":
		return tac.IntConstant(strconv.FormatInt(li<<uint(ri), 10), l.Typ), true
	case ">>":
		return tac.IntConstant(strconv.FormatInt(li>>uint(ri), 10), l.Typ), true
	case "==":
		return tac.BoolConstant(li == ri), true
	case "!=":
		return tac.BoolConstant(li != ri), true
	case "<":
		return tac.BoolConstant(li < ri), true
	case "<=":
		return tac.BoolConstant(li <= ri), true
	case ">":
		return tac.BoolConstant(li > ri), true
	case ">=":
		return tac.BoolConstant(li >= ri), true
	}
	return nil, false
}

func evalFloatBinary(op string, l, r *tac.Constant) (*tac.Constant, bool) {
	lf, err1 := strconv.ParseFloat(l.Value, 64)
	rf, err2 := strconv.ParseFloat(r.Value, 64)
	if err1 != nil || err2 != nil {
		return nil, false
	}
	resultType := l.Typ
	if l.Kind == tac.ConstInt {
		resultType = r.Typ
	}
	switch op {
	case "+":
		return tac.FloatConstant(strconv.FormatFloat(lf+rf, 'g', -1, 64), resultType), true
	case "-":
		return tac.FloatConstant(strconv.FormatFloat(lf-rf, 'g', -1, 64), resultType), true
	case "*":
		return tac.FloatConstant(strconv.FormatFloat(lf*rf, 'g', -1, 64), resultType), true
	case "/":
		if rf == 0 {
			return nil, false
		}
		return tac.FloatConstant(strconv.FormatFloat(lf/rf, 'g', -1, 64), resultType), true
	case "==":
		return tac.BoolConstant(lf == rf), true
	case "!=":
		return tac.BoolConstant(lf != rf), true
	case "<":
		return tac.BoolConstant(lf < rf), true
	case "<=":
		return tac.BoolConstant(lf <= rf), true
	case ">":
		return tac.BoolConstant(lf > rf), true
	case ">=":
		return tac.BoolConstant(lf >= rf), true
	}
	return nil, false
}

func evalBoolBinary(op string, l, r *tac.Constant) (*tac.Constant, bool) {
	lb, rb := l.Value == "true", r.Value == "true"
	switch op {
	case "==":
		return tac.BoolConstant(lb == rb), true
	case "!=":
		return tac.BoolConstant(lb != rb), true
	case "&&":
		return tac.BoolConstant(lb && rb), true
	case "||":
		return tac.BoolConstant(lb || rb), true
	}
	return nil, false
}

func evalStringBinary(op string, l, r *tac.Constant) (*tac.Constant, bool) {
	switch op {
	case "==":
		return tac.BoolConstant(l.Value == r.Value), true
	case "!=":
		return tac.BoolConstant(l.Value != r.Value), true
	}
	return nil, false
}

func evalUnary(op string, v *tac.Constant) (*tac.Constant, bool) {
	switch op {
	case "-":
		switch v.Kind {
		case tac.ConstInt:
			n, err := strconv.ParseInt(v.Value, 10, 64)
			if err != nil {
				return nil, false
			}
			return tac.IntConstant(strconv.FormatInt(-n, 10), v.Typ), true
		case tac.ConstFloat:
			f, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return nil, false
			}
			return tac.FloatConstant(strconv.FormatFloat(-f, 'g', -1, 64), v.Typ), true
		}
	case "!":
		if v.Kind == tac.ConstBool {
			return tac.BoolConstant(v.Value != "true"), true
		}
	case "+":
		return v, true
	}
	return nil, false
}

// evalCast folds a constant cast when the source and target are both
// scalar numeric/boolean kinds; string/object casts are left for the
// backend, which resolves them against the real Udon type table.
func evalCast(v *tac.Constant, target *udontype.Type) (*tac.Constant, bool) {
	if target == nil || target.Kind != udontype.KindPrimitive {
		return nil, false
	}
	switch target.PrimitiveName {
	case udontype.Int8, udontype.Int16, udontype.Int32, udontype.Int64,
		udontype.UInt8, udontype.UInt16, udontype.UInt32, udontype.UInt64:
		switch v.Kind {
		case tac.ConstInt:
			return tac.IntConstant(v.Value, target), true
		case tac.ConstFloat:
			f, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return nil, false
			}
			return tac.IntConstant(strconv.FormatInt(int64(f), 10), target), true
		}
	case udontype.Single, udontype.Double:
		switch v.Kind {
		case tac.ConstInt:
			n, err := strconv.ParseInt(v.Value, 10, 64)
			if err != nil {
				return nil, false
			}
			return tac.FloatConstant(strconv.FormatFloat(float64(n), 'g', -1, 64), target), true
		case tac.ConstFloat:
			return tac.FloatConstant(v.Value, target), true
		}
	}
	return nil, false
}

// simplifyBooleans collapses double negation within one straight-line
// run and resolves a ConditionalJump whose condition already folded to a
// literal boolean.
func simplifyBooleans(fn *tac.Function) bool {
	changed := false
	negSrc := make(map[int]tac.Operand) // temporary ID -> operand it negates

	var out []tac.Instruction
	for _, instr := range fn.Instructions {
		switch in := instr.(type) {
		case *tac.LabelDef:
			negSrc = make(map[int]tac.Operand)
			out = append(out, instr)
			continue
		case *tac.UnaryOp:
			if in.Op == "!" {
				if t, ok := in.Operand.(*tac.Temporary); ok {
					if src, ok := negSrc[t.ID]; ok {
						out = append(out, &tac.Copy{Dest: in.Dest, Src: src})
						changed = true
						continue
					}
				}
				if dt, ok := in.Dest.(*tac.Temporary); ok {
					negSrc[dt.ID] = in.Operand
				}
			}
			out = append(out, instr)
			continue
		case *tac.ConditionalJump:
			if c, ok := in.Cond.(*tac.Constant); ok && c.Kind == tac.ConstBool {
				if c.Value == "false" {
					out = append(out, &tac.UnconditionalJump{Target: in.Target})
				}
				// cond true: ConditionalJump never fires, falls through as a no-op; drop it.
				changed = true
				continue
			}
		}
		out = append(out, instr)
	}
	if changed {
		fn.Instructions = out
	}
	return changed
}

// propagateCopies substitutes a Copy/Assignment's source for later reads
// of its destination within one straight-line run, reset at any join
// point (label) or instruction that could observe aliased state (call,
// jump).
func propagateCopies(fn *tac.Function) bool {
	changed := false
	subst := make(map[string]tac.Operand)

	resolve := func(op tac.Operand) (tac.Operand, bool) {
		key := operandKey(op)
		if key == "" {
			return op, false
		}
		if repl, ok := subst[key]; ok && repl != op {
			return repl, true
		}
		return op, false
	}

	invalidateWritesTo := func(dest tac.Operand) {
		v, ok := dest.(*tac.Variable)
		if !ok {
			return
		}
		for k, val := range subst {
			if rv, ok := val.(*tac.Variable); ok && rv.Name == v.Name {
				delete(subst, k)
			}
		}
		delete(subst, operandKey(dest))
	}

	rewrite := func(instr tac.Instruction) {
		switch in := instr.(type) {
		case *tac.BinaryOp:
			if v, ok := resolve(in.Left); ok {
				in.Left = v
				changed = true
			}
			if v, ok := resolve(in.Right); ok {
				in.Right = v
				changed = true
			}
		case *tac.UnaryOp:
			if v, ok := resolve(in.Operand); ok {
				in.Operand = v
				changed = true
			}
		case *tac.Cast:
			if v, ok := resolve(in.Src); ok {
				in.Src = v
				changed = true
			}
		case *tac.Assignment:
			if v, ok := resolve(in.Src); ok {
				in.Src = v
				changed = true
			}
		case *tac.Copy:
			if v, ok := resolve(in.Src); ok {
				in.Src = v
				changed = true
			}
		case *tac.ConditionalJump:
			if v, ok := resolve(in.Cond); ok {
				in.Cond = v
				changed = true
			}
		case *tac.Call:
			for i, a := range in.Args {
				if v, ok := resolve(a); ok {
					in.Args[i] = v
					changed = true
				}
			}
		case *tac.MethodCall:
			if v, ok := resolve(in.Receiver); ok {
				in.Receiver = v
				changed = true
			}
			for i, a := range in.Args {
				if v, ok := resolve(a); ok {
					in.Args[i] = v
					changed = true
				}
			}
		case *tac.PropertyGet:
			if v, ok := resolve(in.Receiver); ok {
				in.Receiver = v
				changed = true
			}
		case *tac.PropertySet:
			if v, ok := resolve(in.Receiver); ok {
				in.Receiver = v
				changed = true
			}
			if v, ok := resolve(in.Value); ok {
				in.Value = v
				changed = true
			}
		case *tac.ArrayAccess:
			if v, ok := resolve(in.Array); ok {
				in.Array = v
				changed = true
			}
			if v, ok := resolve(in.Index); ok {
				in.Index = v
				changed = true
			}
		case *tac.ArrayAssignment:
			if v, ok := resolve(in.Array); ok {
				in.Array = v
				changed = true
			}
			if v, ok := resolve(in.Index); ok {
				in.Index = v
				changed = true
			}
			if v, ok := resolve(in.Value); ok {
				in.Value = v
				changed = true
			}
		case *tac.Return:
			if in.Value != nil {
				if v, ok := resolve(in.Value); ok {
					in.Value = v
					changed = true
				}
			}
		}
	}

	for _, instr := range fn.Instructions {
		rewrite(instr)

		switch instr.(type) {
		case *tac.LabelDef, *tac.ConditionalJump, *tac.UnconditionalJump, *tac.Call, *tac.MethodCall:
			subst = make(map[string]tac.Operand)
			continue
		}

		if dest, ok := destOf(instr); ok && dest != nil {
			invalidateWritesTo(dest)
			switch in := instr.(type) {
			case *tac.Copy:
				if key := operandKey(dest); key != "" {
					subst[key] = in.Src
				}
			case *tac.Assignment:
				if key := operandKey(dest); key != "" {
					subst[key] = in.Src
				}
			}
		}
	}
	return changed
}

// eliminateDeadStores drops a pure instruction whose Temporary dest is
// never read anywhere in the function, and nils the Dest of an
// otherwise-kept side-effecting call whose result is unused.
func eliminateDeadStores(fn *tac.Function) bool {
	read := make(map[int]bool)
	for _, instr := range fn.Instructions {
		dest, hasDest := destOf(instr)
		forEachOperand(instr, func(op tac.Operand) {
			if op == dest && hasDest {
				return
			}
			if t, ok := op.(*tac.Temporary); ok {
				read[t.ID] = true
			}
		})
	}

	changed := false
	var out []tac.Instruction
	for _, instr := range fn.Instructions {
		dest, hasDest := destOf(instr)
		t, isTemp := dest.(*tac.Temporary)
		if hasDest && isTemp && !read[t.ID] {
			if isSideEffecting(instr) {
				switch in := instr.(type) {
				case *tac.Call:
					in.Dest = nil
					changed = true
				case *tac.MethodCall:
					in.Dest = nil
					changed = true
				}
			} else {
				changed = true
				continue
			}
		}
		out = append(out, instr)
	}
	if changed {
		fn.Instructions = out
	}
	return changed
}

// pruneUnreachable drops instructions between a terminator and the next
// label definition: straight-line code no jump can ever reach.
func pruneUnreachable(fn *tac.Function) bool {
	changed := false
	var out []tac.Instruction
	dead := false
	for _, instr := range fn.Instructions {
		if _, ok := instr.(*tac.LabelDef); ok {
			dead = false
		}
		if dead {
			changed = true
			continue
		}
		out = append(out, instr)
		if isTerminator(instr) {
			dead = true
		}
	}
	if changed {
		fn.Instructions = out
	}
	return changed
}

// threadJumps collapses a jump-to-jump chain into a direct jump to the
// final target, and drops an unconditional jump that targets the very
// next instruction (a pure fallthrough).
func threadJumps(fn *tac.Function) bool {
	labelPos := make(map[string]int)
	for i, instr := range fn.Instructions {
		if ld, ok := instr.(*tac.LabelDef); ok {
			labelPos[ld.Label.Name] = i
		}
	}

	finalTarget := func(start *tac.Label) *tac.Label {
		cur := start
		for hop := 0; hop < 8; hop++ {
			pos, ok := labelPos[cur.Name]
			next := pos + 1
			if !ok || next >= len(fn.Instructions) {
				return cur
			}
			uj, ok := fn.Instructions[next].(*tac.UnconditionalJump)
			if !ok || uj.Target.Name == cur.Name {
				return cur
			}
			cur = uj.Target
		}
		return cur
	}

	changed := false
	for _, instr := range fn.Instructions {
		switch in := instr.(type) {
		case *tac.ConditionalJump:
			if t := finalTarget(in.Target); t.Name != in.Target.Name {
				in.Target = t
				changed = true
			}
		case *tac.UnconditionalJump:
			if t := finalTarget(in.Target); t.Name != in.Target.Name {
				in.Target = t
				changed = true
			}
		}
	}

	var out []tac.Instruction
	for i, instr := range fn.Instructions {
		if uj, ok := instr.(*tac.UnconditionalJump); ok {
			if i+1 < len(fn.Instructions) {
				if ld, ok := fn.Instructions[i+1].(*tac.LabelDef); ok && ld.Label.Name == uj.Target.Name {
					changed = true
					continue
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

// dedupeConstants canonicalizes structurally-equal Constant operands to
// one shared pointer, the same effect a bytecode compiler gets from a
// deduplicated constant pool.
func dedupeConstants(fn *tac.Function) bool {
	canon := make(map[string]*tac.Constant)
	changed := false

	replace := func(op tac.Operand) tac.Operand {
		c, ok := op.(*tac.Constant)
		if !ok {
			return op
		}
		key := c.Key()
		if existing, ok := canon[key]; ok {
			if existing != c {
				changed = true
			}
			return existing
		}
		canon[key] = c
		return c
	}

	for _, instr := range fn.Instructions {
		switch in := instr.(type) {
		case *tac.Assignment:
			in.Src = replace(in.Src)
		case *tac.BinaryOp:
			in.Left, in.Right = replace(in.Left), replace(in.Right)
		case *tac.UnaryOp:
			in.Operand = replace(in.Operand)
		case *tac.Cast:
			in.Src = replace(in.Src)
		case *tac.ConditionalJump:
			in.Cond = replace(in.Cond)
		case *tac.Call:
			for i, a := range in.Args {
				in.Args[i] = replace(a)
			}
		case *tac.MethodCall:
			in.Receiver = replace(in.Receiver)
			for i, a := range in.Args {
				in.Args[i] = replace(a)
			}
		case *tac.PropertySet:
			in.Value = replace(in.Value)
		case *tac.ArrayAssignment:
			in.Index, in.Value = replace(in.Index), replace(in.Value)
		case *tac.ArrayAccess:
			in.Index = replace(in.Index)
		case *tac.Return:
			if in.Value != nil {
				in.Value = replace(in.Value)
			}
		}
	}
	return changed
}

// eliminateUnusedLabels drops a LabelDef no jump targets anymore, e.g.
// after threadJumps rerouted every reference away from it.
func eliminateUnusedLabels(fn *tac.Function) bool {
	referenced := make(map[string]bool)
	for _, name := range fn.Jumps() {
		referenced[name] = true
	}

	changed := false
	var out []tac.Instruction
	for _, instr := range fn.Instructions {
		if ld, ok := instr.(*tac.LabelDef); ok && !referenced[ld.Label.Name] {
			changed = true
			continue
		}
		out = append(out, instr)
	}
	if changed {
		fn.Instructions = out
	}
	return changed
}

// renumberTemporaries compacts temporary IDs to a dense sequence in
// first-definition order. Lowering always reuses the same *tac.Temporary
// pointer for every read of one value, so mutating ID in place is
// enough; this IR's temporary space is unbounded rather than a fixed
// register file, so renumbering matters only for the tidiness of the
// emitted names, not for correctness.
func renumberTemporaries(fn *tac.Function) {
	next := 1
	seen := make(map[*tac.Temporary]bool)
	for _, instr := range fn.Instructions {
		forEachOperand(instr, func(op tac.Operand) {
			if t, ok := op.(*tac.Temporary); ok && !seen[t] {
				seen[t] = true
				t.ID = next
				next++
			}
		})
	}
}
