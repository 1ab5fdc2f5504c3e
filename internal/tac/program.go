package tac

// Function is one lowered method or top-level `_start` body: a flat
// instruction list the optimizer and backend both operate on linearly
// (the loop passes find loop regions from its jumps; no separate CFG is
// built).
type Function struct {
	Name         string
	Instructions []Instruction
	Exported     bool   // true when the backend must keep its entry label
	ExportLabel  string // the label exposed to the VM dispatcher, if Exported
}

// Labels returns every label name this function defines, in order.
func (f *Function) Labels() []string {
	var out []string
	for _, instr := range f.Instructions {
		if ld, ok := instr.(*LabelDef); ok {
			out = append(out, ld.Label.Name)
		}
	}
	return out
}

// Jumps returns the target label of every jump instruction in the
// function, used by the label-integrity check (spec.md §4.4).
func (f *Function) Jumps() []string {
	var out []string
	for _, instr := range f.Instructions {
		switch j := instr.(type) {
		case *ConditionalJump:
			out = append(out, j.Target.Name)
		case *UnconditionalJump:
			out = append(out, j.Target.Name)
		}
	}
	return out
}

// Unit is the whole compiled program's TAC: one Function per entry-class
// method (post tree-shaking) plus the synthesized `_start` bodies.
type Unit struct {
	Functions []*Function
}
