// Package compileerr defines the compiler's diagnostic taxonomy and a
// per-run collector that accumulates errors across a pipeline stage before
// the caller decides whether to halt.
package compileerr

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"

	"github.com/udonc/udonc/internal/lexer"
)

// Kind classifies a diagnostic (spec.md §7's abstract error kinds, not the
// Go type names — every Diagnostic carries one, regardless of which stage
// raised it).
type Kind string

const (
	UnsupportedSyntax  Kind = "unsupported-syntax"
	TypeError          Kind = "type-error"
	NameError          Kind = "name-error"
	ConfigurationError Kind = "configuration-error"
	HeapBudgetExceeded Kind = "heap-budget-exceeded"
	Internal           Kind = "internal"
)

// Fatal reports whether a diagnostic of this kind halts the pipeline.
// HeapBudgetExceeded is the sole non-fatal kind (spec.md §7: "non-fatal
// warning with a tree-shaped usage breakdown"); every other kind halts the
// pipeline before the next stage runs, even when several of the same kind
// are collected and reported together (e.g. TypeError).
func (k Kind) Fatal() bool {
	return k != HeapBudgetExceeded
}

// Diagnostic is one compiler error or warning, carrying enough source
// context to render a precise message without a second lookup pass.
type Diagnostic struct {
	Kind    Kind
	Message string
	Pos     lexer.Position
	File    string
	Hint    string // remediation suggestion; shown on its own line when set
}

// New creates a Diagnostic of the given kind.
func New(kind Kind, pos lexer.Position, file, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message, Pos: pos, File: file}
}

// WithHint attaches a remediation hint and returns the receiver, for
// chaining at the call site.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hint = hint
	return d
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	if d.File != "" {
		fmt.Fprintf(&sb, "%s: %s:%d:%d: %s", d.Kind, d.File, d.Pos.Line, d.Pos.Column, d.Message)
	} else {
		fmt.Fprintf(&sb, "%s: %d:%d: %s", d.Kind, d.Pos.Line, d.Pos.Column, d.Message)
	}
	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}
	return sb.String()
}

// Collector accumulates diagnostics across a pipeline stage. Frontend
// phases append into one Collector per run and decide, after each stage,
// whether any fatal diagnostic requires halting before the next stage.
type Collector struct {
	diagnostics []*Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector { return &Collector{} }

// Add appends a diagnostic.
func (c *Collector) Add(d *Diagnostic) { c.diagnostics = append(c.diagnostics, d) }

// Addf is a convenience for constructing and appending in one call.
func (c *Collector) Addf(kind Kind, pos lexer.Position, file, format string, args ...interface{}) {
	c.Add(New(kind, pos, file, fmt.Sprintf(format, args...)))
}

// HasFatal reports whether any collected diagnostic is fatal.
func (c *Collector) HasFatal() bool {
	for _, d := range c.diagnostics {
		if d.Kind.Fatal() {
			return true
		}
	}
	return false
}

// Empty reports whether nothing has been collected.
func (c *Collector) Empty() bool { return len(c.diagnostics) == 0 }

// All returns every collected diagnostic, in collection order.
func (c *Collector) All() []*Diagnostic {
	out := make([]*Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Warnings returns every non-fatal diagnostic (e.g. HeapBudgetExceeded).
func (c *Collector) Warnings() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range c.diagnostics {
		if !d.Kind.Fatal() {
			out = append(out, d)
		}
	}
	return out
}

// Err returns an aggregate error over every fatal diagnostic collected, or
// nil if there are none. Call after each stage to decide whether to halt.
func (c *Collector) Err() error {
	var fatal []*Diagnostic
	for _, d := range c.diagnostics {
		if d.Kind.Fatal() {
			fatal = append(fatal, d)
		}
	}
	if len(fatal) == 0 {
		return nil
	}
	return &AggregateError{Diagnostics: fatal}
}

// AggregateError bundles every fatal diagnostic from one collector run.
type AggregateError struct {
	Diagnostics []*Diagnostic
}

func (e *AggregateError) Error() string {
	if len(e.Diagnostics) == 1 {
		return e.Diagnostics[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "compilation failed with %d error(s):\n", len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, d.Error())
	}
	return sb.String()
}

// DebugDump renders every diagnostic's fields Go-syntax style via
// kr/pretty, for --verbose CLI output and test failure messages where
// Error()'s one-line rendering doesn't show which field is off.
func DebugDump(diags []Diagnostic) string {
	return pretty.Sprint(diags)
}
