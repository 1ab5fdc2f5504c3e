package tac

import "strings"

// Instruction is any TAC operation. Function.Jumps and Function.Labels
// collect a function's jump targets and label definitions from its
// instructions, for use by the label-integrity check.
type Instruction interface {
	instructionNode()
	String() string
}

// Assignment is `dest = src` where src is computed once (distinguished
// from Copy only by intent at lowering time; both behave identically).
type Assignment struct {
	Dest Operand
	Src  Operand
}

func (a *Assignment) instructionNode() {}
func (a *Assignment) String() string   { return a.Dest.String() + " = " + a.Src.String() }

// Copy is a plain operand-to-operand move.
type Copy struct {
	Dest Operand
	Src  Operand
}

func (c *Copy) instructionNode() {}
func (c *Copy) String() string   { return c.Dest.String() + " := " + c.Src.String() }

// BinaryOp is `dest = left op right`.
type BinaryOp struct {
	Dest  Operand
	Left  Operand
	Op    string
	Right Operand
}

func (b *BinaryOp) instructionNode() {}
func (b *BinaryOp) String() string {
	return b.Dest.String() + " = " + b.Left.String() + " " + b.Op + " " + b.Right.String()
}

// UnaryOp is `dest = op operand`.
type UnaryOp struct {
	Dest    Operand
	Op      string
	Operand Operand
}

func (u *UnaryOp) instructionNode() {}
func (u *UnaryOp) String() string   { return u.Dest.String() + " = " + u.Op + u.Operand.String() }

// Cast is `dest = (type)src`, type carried on Dest's operand type.
type Cast struct {
	Dest Operand
	Src  Operand
}

func (c *Cast) instructionNode() {}
func (c *Cast) String() string   { return c.Dest.String() + " = cast(" + c.Src.String() + ")" }

// ConditionalJump transfers control to Target when Cond evaluates to the
// boolean false (spec.md §4.3: the sole conditional-jump convention used
// through the pipeline). The backend emits this as JUMP_IF_FALSE.
type ConditionalJump struct {
	Cond   Operand
	Target *Label
}

func (j *ConditionalJump) instructionNode() {}
func (j *ConditionalJump) String() string   { return "ifFalse " + j.Cond.String() + " goto " + j.Target.Name }

// UnconditionalJump always transfers control to Target.
type UnconditionalJump struct {
	Target *Label
}

func (j *UnconditionalJump) instructionNode() {}
func (j *UnconditionalJump) String() string   { return "goto " + j.Target.Name }

// LabelDef marks a jump target's position in the instruction stream.
type LabelDef struct {
	Label *Label
}

func (l *LabelDef) instructionNode() {}
func (l *LabelDef) String() string   { return l.Label.Name + ":" }

// Call invokes an extern signature (a host-provided function the backend
// resolves via internal/externs). Dest is nil for a call made for effect.
type Call struct {
	Dest        Operand
	ExternOwner string
	ExternName  string
	Args        []Operand
}

func (c *Call) instructionNode() {}
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	prefix := ""
	if c.Dest != nil {
		prefix = c.Dest.String() + " = "
	}
	return prefix + c.ExternOwner + "." + c.ExternName + "(" + strings.Join(args, ", ") + ")"
}

// MethodCall invokes a user method, either inlined already (lowering
// replaces it with a direct body) or surviving as a cross-assembly RPC
// lowered further by the backend into SetProgramVariable/SendCustomEvent/
// GetProgramVariable per spec.md §4.6.
type MethodCall struct {
	Dest       Operand
	Receiver   Operand
	MethodName string
	Args       []Operand
}

func (m *MethodCall) instructionNode() {}
func (m *MethodCall) String() string {
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		args[i] = a.String()
	}
	prefix := ""
	if m.Dest != nil {
		prefix = m.Dest.String() + " = "
	}
	return prefix + m.Receiver.String() + "." + m.MethodName + "(" + strings.Join(args, ", ") + ")"
}

// PropertyGet is `dest = receiver.prop`.
type PropertyGet struct {
	Dest     Operand
	Receiver Operand
	Prop     string
}

func (p *PropertyGet) instructionNode() {}
func (p *PropertyGet) String() string   { return p.Dest.String() + " = " + p.Receiver.String() + "." + p.Prop }

// PropertySet is `receiver.prop = value`.
type PropertySet struct {
	Receiver Operand
	Prop     string
	Value    Operand
}

func (p *PropertySet) instructionNode() {}
func (p *PropertySet) String() string   { return p.Receiver.String() + "." + p.Prop + " = " + p.Value.String() }

// ArrayAccess is `dest = array[index]`.
type ArrayAccess struct {
	Dest  Operand
	Array Operand
	Index Operand
}

func (a *ArrayAccess) instructionNode() {}
func (a *ArrayAccess) String() string {
	return a.Dest.String() + " = " + a.Array.String() + "[" + a.Index.String() + "]"
}

// ArrayAssignment is `array[index] = value`.
type ArrayAssignment struct {
	Array Operand
	Index Operand
	Value Operand
}

func (a *ArrayAssignment) instructionNode() {}
func (a *ArrayAssignment) String() string {
	return a.Array.String() + "[" + a.Index.String() + "] = " + a.Value.String()
}

// Return exits the current method. Value is nil for a bare return;
// ReturnVarName, when set, is the dedicated return-slot variable the
// layout builder assigned, which the backend writes before jumping to
// the reserved exit address.
type Return struct {
	Value         Operand
	ReturnVarName string
}

func (r *Return) instructionNode() {}
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// Phi is an SSA-only join-point instruction: Dest takes the value
// associated with whichever predecessor block control arrived from.
// Neither lowering nor the optimizer emits one (the optimizer's SSA
// window value-numbers without Phi nodes); the backend reports a Phi
// that reaches it as an Internal diagnostic.
type Phi struct {
	Dest     Operand
	Operands map[string]Operand // predecessor block label name -> value
}

func (p *Phi) instructionNode() {}
func (p *Phi) String() string   { return p.Dest.String() + " = phi(...)" }
