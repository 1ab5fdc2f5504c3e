// Package udon is the public facade over the whole compilation pipeline:
// lex -> parse -> register -> validate -> prune -> lower -> optimize ->
// backend. A caller never touches internal/lexer, internal/ast, or any
// other pipeline stage directly; Compile and CompileAll are the only
// entry points.
package udon

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/udonc/udonc/internal/analysis"
	"github.com/udonc/udonc/internal/backend"
	"github.com/udonc/udonc/internal/compileerr"
	"github.com/udonc/udonc/internal/config"
	"github.com/udonc/udonc/internal/externs"
	"github.com/udonc/udonc/internal/layout"
	"github.com/udonc/udonc/internal/lexer"
	"github.com/udonc/udonc/internal/lower"
	"github.com/udonc/udonc/internal/optimize"
	"github.com/udonc/udonc/internal/parser"
	"github.com/udonc/udonc/internal/registry"
	"github.com/udonc/udonc/internal/tac"
)

// Assembly is one entry class's generated program, reused directly from
// internal/backend rather than wrapped, since its shape already matches
// the public surface this facade promises: ClassName, Data, Code,
// Exports, plus String().
type Assembly = backend.Assembly

// DataEntry and CodeLine are the two slice element types Assembly.Data
// and Assembly.Code carry, re-exported so a caller never needs to import
// internal/backend directly to name them.
type DataEntry = backend.DataEntry
type CodeLine = backend.CodeLine

type options struct {
	cfg      *config.Config
	resolver externs.Resolver
}

// Option configures one Compile or CompileAll call.
type Option func(*options)

// WithConfig overrides the default Config (spec.md §6's optimize/reflect/
// useStringBuilder/stringBuilderThreshold/heapLimit knobs).
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithExternResolver supplies the extern signature catalogue the backend
// consults before falling back to a synthesized signature (spec.md
// §4.5/§4.9). Omitting this option compiles against synthesized
// signatures only.
func WithExternResolver(r externs.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

func resolveOptions(opts []Option) *options {
	def := config.Default()
	o := &options{cfg: &def}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Compile compiles one source file end to end and returns the assembly
// for its entry class. A file is expected to declare exactly one entry
// (UdonBehaviour-rooted) class, the common one-behaviour-per-file shape
// this compiler's target ecosystem uses; a file declaring zero or more
// than one is an error here — compile each as its own file through
// CompileAll instead, or split the file.
func Compile(source, filename string, opts ...Option) (*Assembly, []compileerr.Diagnostic, error) {
	o := resolveOptions(opts)
	assemblies, diags, err := compileSource(source, filename, o)
	if err != nil {
		return nil, diags, err
	}
	switch len(assemblies) {
	case 0:
		return nil, diags, fmt.Errorf("udon: %s declares no entry class", filename)
	case 1:
		return assemblies[0], diags, nil
	default:
		names := make([]string, len(assemblies))
		for i, a := range assemblies {
			names[i] = a.ClassName
		}
		return nil, diags, fmt.Errorf("udon: %s declares %d entry classes (%s); use CompileAll with one file per entry class",
			filename, len(assemblies), strings.Join(names, ", "))
	}
}

// compileJob is one unit of work CompileAll's worker pool consumes: a
// named source file to run through the full pipeline.
type compileJob struct {
	filename string
	source   string
}

type compileResult struct {
	index       int
	assemblies  []*Assembly
	diagnostics []compileerr.Diagnostic
	err         error
}

// maxConcurrentCompiles bounds CompileAll's worker pool (spec.md §5):
// enough parallelism to overlap file I/O-free, CPU-bound compilation
// work across cores without unbounded goroutine fan-out on a large
// batch.
const maxConcurrentCompiles = 8

// CompileAll compiles a batch of named source files concurrently with a
// bounded worker pool (spec.md §5), returning every entry class's
// assembly across every file and every diagnostic collected, in a
// deterministic filename-sorted order regardless of completion order.
func CompileAll(files map[string]string, opts ...Option) ([]*Assembly, []compileerr.Diagnostic, error) {
	o := resolveOptions(opts)

	filenames := make([]string, 0, len(files))
	for name := range files {
		filenames = append(filenames, name)
	}
	sort.Strings(filenames)

	jobs := make(chan compileJob)
	results := make([]compileResult, len(filenames))

	var wg sync.WaitGroup
	workers := maxConcurrentCompiles
	if workers > len(filenames) {
		workers = len(filenames)
	}
	indices := make(map[string]int, len(filenames))
	for i, name := range filenames {
		indices[name] = i
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				assemblies, diags, err := compileSource(job.source, job.filename, o)
				results[indices[job.filename]] = compileResult{assemblies: assemblies, diagnostics: diags, err: err}
			}
		}()
	}
	for _, name := range filenames {
		jobs <- compileJob{filename: name, source: files[name]}
	}
	close(jobs)
	wg.Wait()

	var allAssemblies []*Assembly
	var allDiagnostics []compileerr.Diagnostic
	var firstErr error
	for _, r := range results {
		allAssemblies = append(allAssemblies, r.assemblies...)
		allDiagnostics = append(allDiagnostics, r.diagnostics...)
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
	}
	return allAssemblies, allDiagnostics, firstErr
}

// compileSource runs the full pipeline for one source file and returns
// one Assembly per entry class it declares (spec.md §4.1-§4.6, §6): lex,
// parse, register, validate inheritance, prune to reachable methods,
// lower to TAC, optimize, then generate assembly per entry class.
func compileSource(source, filename string, o *options) ([]*Assembly, []compileerr.Diagnostic, error) {
	diags := compileerr.NewCollector()

	l := lexer.New(source)
	p := parser.New(l, filename)
	program := p.ParseProgram()

	for _, le := range l.Errors() {
		diags.Addf(compileerr.UnsupportedSyntax, le.Pos, filename, "%s", le.Message)
	}
	for _, pe := range p.Errors() {
		diags.Addf(compileerr.UnsupportedSyntax, pe.Pos, filename, "%s", pe.Message)
	}
	if diags.HasFatal() {
		return nil, toPublicDiagnostics(diags), diags.Err()
	}

	reg := registry.New()
	for _, err := range reg.Populate(program) {
		diags.Addf(compileerr.NameError, lexer.Position{}, filename, "%s", err.Error())
	}
	if diags.HasFatal() {
		return nil, toPublicDiagnostics(diags), diags.Err()
	}

	for _, d := range analysis.ValidateInheritance(reg) {
		diags.Add(d)
	}
	if diags.HasFatal() {
		return nil, toPublicDiagnostics(diags), diags.Err()
	}

	layouts := layout.Build(reg)
	reachable := analysis.ComputeReachable(reg)

	lowerer := lower.New(reg, layouts)
	unit, lowerDiags := lowerer.LowerProgram(program, reachable)
	for _, d := range lowerDiags.All() {
		diags.Add(d)
	}
	if diags.HasFatal() {
		return nil, toPublicDiagnostics(diags), diags.Err()
	}

	if o.cfg.Optimize {
		optimize.Optimize(unit, optimize.DefaultConfig())
	}

	assemblies := generatePerClass(unit, layouts, o, diags)
	if diags.HasFatal() {
		return nil, toPublicDiagnostics(diags), diags.Err()
	}
	return assemblies, toPublicDiagnostics(diags), nil
}

// generatePerClass splits a whole-program tac.Unit's functions back out
// by entry class (internal/lower names every Function "<Class>.<method>"
// or "<Class>._start", tac.Unit itself carries no class field) and runs
// internal/backend.Generate once per class, in the registry's own class
// declaration order so output is deterministic across runs of the same
// source. Every diagnostic Generate collects, fatal or not, is folded
// into diags so a caller sees heap-budget warnings and backend-internal
// errors alongside the rest of the pipeline's own diagnostics.
func generatePerClass(unit *tac.Unit, layouts map[string]*layout.ClassLayout, o *options, diags *compileerr.Collector) []*Assembly {
	byClass := make(map[string][]*tac.Function)
	var order []string
	for _, fn := range unit.Functions {
		class := fn.Name
		if i := strings.IndexByte(fn.Name, '.'); i >= 0 {
			class = fn.Name[:i]
		}
		if _, seen := byClass[class]; !seen {
			order = append(order, class)
		}
		byClass[class] = append(byClass[class], fn)
	}

	var out []*Assembly
	for _, class := range order {
		classUnit := &tac.Unit{Functions: byClass[class]}
		asm, genDiags := backend.Generate(classUnit, class, layouts, o.resolver, o.cfg)
		for _, d := range genDiags.All() {
			diags.Add(d)
		}
		out = append(out, asm)
	}
	return out
}

func toPublicDiagnostics(c *compileerr.Collector) []compileerr.Diagnostic {
	all := c.All()
	out := make([]compileerr.Diagnostic, len(all))
	for i, d := range all {
		out[i] = *d
	}
	return out
}
