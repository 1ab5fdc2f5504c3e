// Package lower implements the AST→TAC lowering pass: a recursive visitor
// that walks one entry class's reachable methods (as pruned by
// internal/analysis) and emits internal/tac instructions.
package lower

import (
	"fmt"

	"github.com/udonc/udonc/internal/analysis"
	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/compileerr"
	"github.com/udonc/udonc/internal/layout"
	"github.com/udonc/udonc/internal/registry"
	"github.com/udonc/udonc/internal/symtab"
	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// recursiveMethodDecorator marks a method that must carry an explicit
// shadow stack because the target VM does not preserve locals across
// self-recursion.
const recursiveMethodDecorator = "RecursiveMethod"

// loopLabels is one loop-context stack entry: the targets break/continue
// jump to.
type loopLabels struct {
	breakLabel    *tac.Label
	continueLabel *tac.Label
}

// tryContext is one try-stack entry: the error-flag/value variables and
// catch label every call site inside the try body must check against.
type tryContext struct {
	flagVar  *tac.Variable
	valueVar *tac.Variable
	catchLbl *tac.Label
}

// Lowerer holds all state threaded through one compilation unit's worth
// of lowering: the registries needed to resolve types and call targets,
// a monotonic label/temporary counter shared across every method in the
// unit (spec.md §4.3: "fresh labels from a per-unit counter"; tac.Temporary
// IDs are likewise unit-wide), and the handful of context stacks the
// visitor pushes and pops as it descends into blocks, loops, try bodies,
// and inlined method calls.
type Lowerer struct {
	reg     *registry.Registry
	layouts map[string]*layout.ClassLayout
	diags   *compileerr.Collector

	labelSeq int
	tempSeq  int

	scope *symtab.Table

	class          string
	method         string
	instancePrefix string      // "" unless lowering an inlined instance's body
	thisOverride   tac.Operand // non-nil when instancePrefix != ""

	inlineChain       []string // "Class.Method" entries currently being inlined, for recursion detection
	instanceCounters  map[string]int
	inlineReturnLabel *tac.Label
	inlineReturnVar   *tac.Variable

	// recursiveClass/recursiveMethod/recursiveDecl identify the
	// recursive-method frame currently being lowered, so a self-call
	// found inside its own body can restore its shadowed parameters
	// right at the call site (see maybeRestoreRecursiveShadow).
	// recursiveMethod is "" outside such a frame.
	recursiveClass  string
	recursiveMethod string
	recursiveDecl   *ast.FunctionDecl

	loopStack []loopLabels
	tryStack  []tryContext

	fn *tac.Function
}

// New creates a Lowerer over a populated registry and the export layouts
// internal/layout assigned to its entry classes.
func New(reg *registry.Registry, layouts map[string]*layout.ClassLayout) *Lowerer {
	return &Lowerer{
		reg:              reg,
		layouts:          layouts,
		diags:            compileerr.NewCollector(),
		scope:            symtab.New(),
		instanceCounters: make(map[string]int),
	}
}

// LowerProgram lowers every reachable method of every entry class named
// in reachable into one tac.Unit, plus a synthesized `_start` function per
// entry class (spec.md §6). Classes absent from reachable, or present with
// an empty method set, contribute nothing.
func (l *Lowerer) LowerProgram(program *ast.Program, reachable analysis.Reachable) (*tac.Unit, *compileerr.Collector) {
	unit := &tac.Unit{}

	for _, name := range l.reg.ConstantNames() {
		cdecl := l.reg.Constants[name]
		lit, ok := cdecl.Value.(*ast.Literal)
		if !ok {
			continue
		}
		typ := udontype.Resolve(cdecl.Type, l.reg)
		l.scope.DefineConstant(name, typ, l.lowerLiteral(lit), true)
	}

	for _, stmt := range program.Statements {
		decl, ok := stmt.(*ast.ClassDecl)
		if !ok || !l.reg.IsEntryPoint(decl) || l.reg.IsStub(decl) {
			continue
		}
		methods, ok := reachable[decl.Name]
		if !ok {
			continue
		}
		unit.Functions = append(unit.Functions, l.lowerClass(decl, methods)...)
	}

	return unit, l.diags
}

func (l *Lowerer) newLabel(prefix string) *tac.Label {
	l.labelSeq++
	return &tac.Label{Name: fmt.Sprintf("L%s_%d", prefix, l.labelSeq)}
}

func (l *Lowerer) newTemp(typ *udontype.Type) *tac.Temporary {
	l.tempSeq++
	return &tac.Temporary{ID: l.tempSeq, Typ: typ}
}

func (l *Lowerer) emit(instr tac.Instruction) {
	l.fn.Instructions = append(l.fn.Instructions, instr)
	switch instr.(type) {
	case *tac.Call, *tac.MethodCall:
		l.emitErrorCheck()
	}
}

func (l *Lowerer) pushScope() {
	l.scope = symtab.NewEnclosed(l.scope)
}

func (l *Lowerer) popScope() {
	if outer := l.scope.Outer(); outer != nil {
		l.scope = outer
	}
}

func (l *Lowerer) errorf(n ast.Node, format string, args ...interface{}) {
	l.diags.Addf(compileerr.UnsupportedSyntax, n.Pos(), l.currentFile(), format, args...)
}

func (l *Lowerer) currentFile() string {
	entry, ok := l.reg.Classes.Lookup(l.class)
	if !ok {
		return ""
	}
	return entry.Decl.File
}

// thisOperand returns the operand `this` resolves to in the current
// context: the reserved `this` variable normally, or the override an
// inlined call installed (spec.md §4.3, "Inlining").
func (l *Lowerer) thisOperand() tac.Operand {
	if l.thisOverride != nil {
		return l.thisOverride
	}
	return &tac.Variable{Name: "this", Typ: udontype.Class(l.class)}
}

// fieldVariable names the storage location for a field of the class
// currently being lowered: a plain class-field name at top level, or a
// `<prefix>_<field>` name inside an inlined instance (spec.md §4.4).
func (l *Lowerer) fieldVariable(name string, typ *udontype.Type) *tac.Variable {
	if l.instancePrefix != "" {
		return &tac.Variable{Name: l.instancePrefix + "_" + name, Typ: typ, Flags: tac.VariableFlags{IsLocal: true}}
	}
	return &tac.Variable{Name: name, Typ: typ, Flags: tac.VariableFlags{IsExported: true}}
}
