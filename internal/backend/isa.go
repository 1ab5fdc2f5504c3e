// Package backend walks a lowered, optimized TAC function list and
// materializes the textual stack-machine assembly spec.md §4.5 and §6
// describe: a `.data_start`/`.data_end` section of named heap slots and
// a `.code_start`/`.code_end` section of labeled PUSH/COPY/EXTERN/JUMP
// instructions, plus the `.export` directives the layout builder's
// method surface requires.
package backend

import "fmt"

// Op names the stack-machine opcodes spec.md §4.5 declares sufficient
// for this backend: PUSH, COPY, EXTERN, JUMP, JUMP_IF_FALSE. POP exists
// in the real VM ISA but is never emitted directly by this walk (it is
// the assembler's own bookkeeping op, per spec.md), so it has no
// constant here.
type Op string

const (
	OpPush        Op = "PUSH"
	OpCopy        Op = "COPY"
	OpExtern      Op = "EXTERN"
	OpJump        Op = "JUMP"
	OpJumpIfFalse Op = "JUMP_IF_FALSE"
)

// ReturnAddress is the reserved jump target meaning "return to caller"
// (spec.md §4.5, §6).
const ReturnAddress = "0xFFFFFFFC"

// CodeLine is one line of the `.code_start` section: either a bare
// label definition (Label set, Op empty) or an instruction (Op set).
// String renders only the instruction when Op is set, so a label always
// takes a line of its own.
type CodeLine struct {
	Label   string // "" unless this line defines a label
	Op      Op     // "" when Label is the whole line
	Operand string // address name, label name, or extern symbol name
}

func (c CodeLine) String() string {
	switch {
	case c.Label != "" && c.Op == "":
		return c.Label + ":"
	case c.Operand == "":
		return string(c.Op)
	default:
		return fmt.Sprintf("%s, %s", c.Op, c.Operand)
	}
}

// DataEntry is one line of the `.data_start` section: `name addr type
// value?`. Addr is filled in at String-rendering time from its position
// in Assembly.Data, deriving the display offset from slice position
// rather than storing it redundantly alongside each entry.
type DataEntry struct {
	Name  string
	Type  string
	Value string // "" for an entry with no compile-time initializer
}
