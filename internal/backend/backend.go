package backend

import (
	"fmt"
	"hash/fnv"

	"github.com/udonc/udonc/internal/compileerr"
	"github.com/udonc/udonc/internal/config"
	"github.com/udonc/udonc/internal/externs"
	"github.com/udonc/udonc/internal/layout"
	"github.com/udonc/udonc/internal/lexer"
	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// Assembly is the textual stack-machine program generated for one entry
// class (spec.md §6): a data section of named heap slots, a code section
// of labeled instructions, and the export directives the VM's dispatcher
// keys off of.
type Assembly struct {
	ClassName string
	Data      []DataEntry
	Code      []CodeLine
	Exports   []string
	Budget    BudgetReport
}

// String renders the assembly the way spec.md §6 lays it out:
// `.data_start`/`.data_end`, `.code_start`/`.code_end`, then one
// `.export` line per entry point, addresses derived from slice position
// so the data section never stores an address redundantly.
func (a *Assembly) String() string {
	var out string
	out += ".data_start\n"
	for addr, d := range a.Data {
		if d.Value != "" {
			out += fmt.Sprintf("  %s %d %s %s\n", d.Name, addr, d.Type, d.Value)
		} else {
			out += fmt.Sprintf("  %s %d %s\n", d.Name, addr, d.Type)
		}
	}
	out += ".data_end\n"
	out += ".code_start\n"
	for _, line := range a.Code {
		out += "  " + line.String() + "\n"
	}
	out += ".code_end\n"
	for _, e := range a.Exports {
		out += ".export " + e + "\n"
	}
	return out
}

// generator holds the per-compilation-unit state threaded through every
// TAC instruction lowering in this package: the heap namer/budget
// tracker, the export-surface lookup, and the extern resolver every
// operator/cast/dispatch rule consults before falling back to a
// synthesized signature.
type generator struct {
	heap      *heap
	resolver  externs.Resolver
	layouts   map[string]*layout.ClassLayout
	className string
	cfg       *config.Config

	code       []CodeLine
	exports    []string
	diagnostic *compileerr.Collector
}

// Generate lowers one compiled unit's functions into the assembly for
// className, the entry class that owns this compilation (spec.md §4.5,
// §6). layouts supplies every class's export surface, needed both for
// this class's own `.export` directives and for resolving cross-class
// MethodCalls reaching the backend un-inlined (spec.md §4.6). resolver
// supplies concrete extern signatures; a nil resolver falls back to the
// synthesized signature scheme everywhere a concrete one would apply.
func Generate(unit *tac.Unit, className string, layouts map[string]*layout.ClassLayout, resolver externs.Resolver, cfg *config.Config) (*Assembly, *compileerr.Collector) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if resolver == nil {
		resolver = noResolver{}
	}

	g := &generator{
		heap:       newHeap(className),
		resolver:   resolver,
		layouts:    layouts,
		className:  className,
		cfg:        cfg,
		diagnostic: compileerr.NewCollector(),
	}

	if cfg.Reflect {
		g.emitReflectionMetadata(className)
	}

	for _, fn := range unit.Functions {
		g.lowerFunction(fn)
	}

	report := CheckBudget(g.heap, cfg.HeapLimit)
	if report.Exceeded {
		g.diagnostic.Add(compileerr.New(compileerr.HeapBudgetExceeded, lexer.Position{}, "",
			report.Warning()))
	}

	asm := &Assembly{
		ClassName: className,
		Data:      g.heap.data,
		Code:      g.code,
		Exports:   g.exports,
		Budget:    report,
	}
	return asm, g.diagnostic
}

// noResolver is the zero-value externs.Resolver: every lookup misses, so
// every call site falls back to its own synthesized signature.
type noResolver struct{}

func (noResolver) ResolveExternSignature(string, string, externs.Kind, []*udontype.Type, *udontype.Type) (externs.Signature, bool) {
	return "", false
}

func (g *generator) lowerFunction(fn *tac.Function) {
	instrs := fn.Instructions
	if g.cfg.UseStringBuilder {
		instrs = collapseStringConcatChains(instrs, g.cfg.StringBuilderThreshold)
	}
	if fn.Exported && fn.ExportLabel != "" {
		g.exports = append(g.exports, fn.ExportLabel)
	}
	for _, instr := range instrs {
		g.lowerInstruction(instr)
	}
}

func (g *generator) lowerInstruction(instr tac.Instruction) {
	switch in := instr.(type) {
	case *tac.Assignment:
		g.emitCopy(g.nameFor(in.Src), g.nameFor(in.Dest))
	case *tac.Copy:
		g.emitCopy(g.nameFor(in.Src), g.nameFor(in.Dest))
	case *tac.BinaryOp:
		g.lowerBinaryOp(in)
	case *tac.UnaryOp:
		g.lowerUnaryOp(in)
	case *tac.Cast:
		g.lowerCast(g.nameFor(in.Src), in.Src.Type(), in.Dest.Type(), g.nameFor(in.Dest))
	case *tac.ConditionalJump:
		g.emitPush(g.nameFor(in.Cond))
		g.code = append(g.code, CodeLine{Op: OpJumpIfFalse, Operand: in.Target.Name})
	case *tac.UnconditionalJump:
		g.code = append(g.code, CodeLine{Op: OpJump, Operand: in.Target.Name})
	case *tac.LabelDef:
		g.code = append(g.code, CodeLine{Label: in.Label.Name})
	case *tac.Call:
		g.lowerCall(in)
	case *tac.MethodCall:
		g.lowerMethodCall(in)
	case *tac.PropertyGet:
		g.lowerPropertyGet(in)
	case *tac.PropertySet:
		g.lowerPropertySet(in)
	case *tac.ArrayAccess:
		g.lowerArrayAccess(in)
	case *tac.ArrayAssignment:
		g.lowerArrayAssignment(in)
	case *tac.Return:
		g.lowerReturn(in)
	case *tac.Phi:
		g.internalf("unexpected phi instruction %s reached the backend, SSA deconstruction should have removed it", in.Dest)
	default:
		g.internalf("unhandled instruction type %T", instr)
	}
}

func (g *generator) lowerBinaryOp(b *tac.BinaryOp) {
	ret := binaryReturnType(b.Op, b.Left.Type())
	sig := g.binarySignature(b.Op, b.Left.Type(), b.Right.Type(), ret)
	g.emitExtern(sig, []string{g.nameFor(b.Left), g.nameFor(b.Right)}, g.nameFor(b.Dest))
}

func (g *generator) lowerUnaryOp(u *tac.UnaryOp) {
	ret := unaryReturnType(u.Op, u.Operand.Type())
	sig := g.unarySignature(u.Op, u.Operand.Type(), ret)
	g.emitExtern(sig, []string{g.nameFor(u.Operand)}, g.nameFor(u.Dest))
}

func (g *generator) lowerCall(c *tac.Call) {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = g.nameFor(a)
	}
	sig := g.resolveCallSignature(c)
	destName := ""
	if c.Dest != nil {
		destName = g.nameFor(c.Dest)
	}
	g.emitExtern(sig, args, destName)
}

// resolveCallSignature resolves the extern signature for a plain Call,
// falling back to a deterministic synthetic signature keyed on the
// owner/name pair and argument types when the resolver has no entry for
// it (spec.md §4.5: "falling back to a deterministic synthetic signature
// on miss").
func (g *generator) resolveCallSignature(c *tac.Call) string {
	paramTypes := make([]*udontype.Type, len(c.Args))
	for i, a := range c.Args {
		paramTypes[i] = a.Type()
	}
	var retType *udontype.Type
	if c.Dest != nil {
		retType = c.Dest.Type()
	} else {
		retType = udontype.Void
	}
	if sig, found := g.resolver.ResolveExternSignature(c.ExternOwner, c.ExternName, externs.KindCall, paramTypes, retType); found {
		return string(sig)
	}
	return g.synthesizeSignature(c.ExternOwner, c.ExternName, paramTypes, retType)
}

func (g *generator) synthesizeSignature(owner, name string, paramTypes []*udontype.Type, retType *udontype.Type) string {
	sig := owner + "." + name + "__"
	for _, p := range paramTypes {
		sig += udontype.UdonTypeName(p) + "_"
	}
	sig += udontype.UdonTypeName(retType)
	return sig
}

func (g *generator) lowerPropertyGet(p *tac.PropertyGet) {
	sig := g.externSignatureFor("__Get__"+p.Prop, p.Receiver.Type(), nil, p.Dest.Type())
	g.emitExtern(sig, []string{g.nameFor(p.Receiver)}, g.nameFor(p.Dest))
}

func (g *generator) lowerPropertySet(p *tac.PropertySet) {
	sig := g.externSignatureFor("__Set__"+p.Prop, p.Receiver.Type(), []*udontype.Type{p.Value.Type()}, udontype.Void)
	g.emitExtern(sig, []string{g.nameFor(p.Receiver), g.nameFor(p.Value)}, "")
}

// lowerArrayAccess and lowerArrayAssignment use the fixed SystemArray
// extern family spec.md §4.5 names directly, rather than going through
// the resolver: indexers have a single, owner-fixed shape regardless of
// project-specific extern catalogues.
func (g *generator) lowerArrayAccess(a *tac.ArrayAccess) {
	elemType := a.Dest.Type()
	sig := fmt.Sprintf("SystemArray.__Get__SystemInt32__%s", udontype.UdonTypeName(elemType))
	g.emitExtern(sig, []string{g.nameFor(a.Array), g.nameFor(a.Index)}, g.nameFor(a.Dest))
}

func (g *generator) lowerArrayAssignment(a *tac.ArrayAssignment) {
	elemType := a.Value.Type()
	sig := fmt.Sprintf("SystemArray.__Set__SystemInt32_%s__SystemVoid", udontype.UdonTypeName(elemType))
	g.emitExtern(sig, []string{g.nameFor(a.Array), g.nameFor(a.Index), g.nameFor(a.Value)}, "")
}

func (g *generator) lowerReturn(r *tac.Return) {
	if r.Value != nil && r.ReturnVarName != "" {
		slot := g.heap.nameForReturnSlot(r.ReturnVarName, r.Value.Type())
		g.emitCopy(g.nameFor(r.Value), slot)
	}
	g.code = append(g.code, CodeLine{Op: OpJump, Operand: ReturnAddress})
}

// externSignatureFor resolves a property accessor's extern signature
// through the resolver, falling back to a synthetic owner-qualified
// signature derived from the receiver's class/interface name.
func (g *generator) externSignatureFor(name string, receiverType *udontype.Type, extraParams []*udontype.Type, retType *udontype.Type) string {
	owner := udontype.UdonTypeName(receiverType)
	params := append([]*udontype.Type{receiverType}, extraParams...)
	if sig, found := g.resolver.ResolveExternSignature(owner, name, externs.KindPropertyGet, params, retType); found {
		return string(sig)
	}
	return g.synthesizeSignature(owner, name, extraParams, retType)
}

// externSignature resolves a fixed, argument-shape-independent extern
// (the UdonBehaviour SetProgramVariable/SendCustomEvent/GetProgramVariable
// trio dispatch.go uses), falling back to the VM's own well-known
// signature text when no project catalogue overrides it.
func (g *generator) externSignature(owner, name string) string {
	if sig, found := g.resolver.ResolveExternSignature(owner, name, externs.KindCall, nil, nil); found {
		return string(sig)
	}
	return owner + "." + name
}

// nameFor dispatches an operand to its heap slot name, allocating one on
// first use via the heap's own naming rules.
func (g *generator) nameFor(op tac.Operand) string {
	switch v := op.(type) {
	case *tac.Constant:
		return g.heap.nameForConstant(v)
	case *tac.Temporary:
		return g.heap.nameForTemporary(v)
	case *tac.Variable:
		return g.heap.nameForVariable(v)
	case *tac.Label:
		return v.Name
	default:
		g.internalf("unhandled operand type %T", op)
		return ""
	}
}

// emitPush appends one PUSH instruction for the named heap slot.
func (g *generator) emitPush(name string) {
	g.code = append(g.code, CodeLine{Op: OpPush, Operand: name})
}

// emitCopy lowers an operand-to-operand move to the push-src-then-
// push-dest-then-COPY sequence spec.md §4.5 mandates (COPY pops dest,
// then src, and stores src into dest; the emission order is therefore
// src first).
func (g *generator) emitCopy(srcName, destName string) {
	if srcName == destName {
		return
	}
	g.emitPush(srcName)
	g.emitPush(destName)
	g.code = append(g.code, CodeLine{Op: OpCopy})
}

// emitExtern lowers one extern invocation: push every argument in order,
// EXTERN the interned signature (the VM itself pops arguments
// right-to-left at dispatch time), then push the destination slot and
// COPY the pushed result into it when the call produces a value.
func (g *generator) emitExtern(signature string, argNames []string, destName string) {
	for _, a := range argNames {
		g.emitPush(a)
	}
	slot := g.heap.nameForExtern(signature)
	g.code = append(g.code, CodeLine{Op: OpExtern, Operand: slot})
	if destName != "" {
		g.emitPush(destName)
		g.code = append(g.code, CodeLine{Op: OpCopy})
	}
}

// internalf records an Internal diagnostic for a situation that should
// be unreachable given a well-formed TAC unit (an optimizer or lowering
// invariant broken upstream), rather than panicking: the caller surfaces
// it through the ordinary compileerr pipeline like any other fatal error.
func (g *generator) internalf(format string, args ...interface{}) {
	g.diagnostic.Addf(compileerr.Internal, lexer.Position{}, "", format, args...)
}

// emitReflectionMetadata adds the three reflect-mode data entries
// spec.md §4.8 names when a project opts in: a deterministic type id
// hashed from the class name, the class name itself, and a
// (currently self-only) array of implemented type ids.
func (g *generator) emitReflectionMetadata(className string) {
	typeID := reflectTypeID(className)
	g.heap.allocate("__refl_typeid", "SystemInt64", fmt.Sprintf("%d", typeID), className)
	g.heap.allocate("__refl_typename", "SystemString", className, className)
	g.heap.allocate("__refl_typeids", "SystemInt64Array", fmt.Sprintf("[%d]", typeID), className)
}

// forEachOperand visits every operand an instruction reads or writes,
// used by the string-builder pass to find the largest temporary id used
// in a function (fresh ids start one past it) without needing its own
// parallel instruction walk.
func forEachOperand(instr tac.Instruction, visit func(tac.Operand)) {
	switch in := instr.(type) {
	case *tac.Assignment:
		visit(in.Dest)
		visit(in.Src)
	case *tac.Copy:
		visit(in.Dest)
		visit(in.Src)
	case *tac.BinaryOp:
		visit(in.Dest)
		visit(in.Left)
		visit(in.Right)
	case *tac.UnaryOp:
		visit(in.Dest)
		visit(in.Operand)
	case *tac.Cast:
		visit(in.Dest)
		visit(in.Src)
	case *tac.ConditionalJump:
		visit(in.Cond)
	case *tac.Call:
		if in.Dest != nil {
			visit(in.Dest)
		}
		for _, a := range in.Args {
			visit(a)
		}
	case *tac.MethodCall:
		if in.Dest != nil {
			visit(in.Dest)
		}
		visit(in.Receiver)
		for _, a := range in.Args {
			visit(a)
		}
	case *tac.PropertyGet:
		visit(in.Dest)
		visit(in.Receiver)
	case *tac.PropertySet:
		visit(in.Receiver)
		visit(in.Value)
	case *tac.ArrayAccess:
		visit(in.Dest)
		visit(in.Array)
		visit(in.Index)
	case *tac.ArrayAssignment:
		visit(in.Array)
		visit(in.Index)
		visit(in.Value)
	case *tac.Return:
		if in.Value != nil {
			visit(in.Value)
		}
	case *tac.Phi:
		visit(in.Dest)
		for _, v := range in.Operands {
			visit(v)
		}
	}
}

// reflectTypeID hashes a class name into the deterministic 64-bit type
// id reflect-mode metadata exposes, deriving a stable id from the name
// itself rather than assigning one by registration order — two
// compilations of the same class must agree on its id even if other
// classes in the assembly changed.
func reflectTypeID(className string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(className))
	return h.Sum64()
}
