// Package optimize runs the fixed-point TAC optimizer: a battery of
// small, independently-togglable passes over one internal/tac.Function at
// a time, repeated until a full round leaves the function unchanged.
package optimize

import "github.com/udonc/udonc/internal/tac"

// Pass names one optimizer pass as a string enum, so callers can toggle
// passes by name through Config. internal/config has no per-pass
// toggles; its Optimize flag switches the whole optimizer on or off.
type Pass string

const (
	PassConstantFold         Pass = "constant-fold"
	PassBooleanSimplify      Pass = "boolean-simplify"
	PassCopyPropagation      Pass = "copy-propagation"
	PassDeadStoreElim        Pass = "dead-store-elim"
	PassUnreachablePrune     Pass = "unreachable-prune"
	PassJumpThreading        Pass = "jump-threading"
	PassConstantDedup        Pass = "constant-dedup"
	PassUnusedLabelElim      Pass = "unused-label-elim"
	PassLICM                 Pass = "loop-invariant-code-motion"
	PassSSAWindow            Pass = "ssa-window"
	PassInductionVarSimplify Pass = "induction-var-simplify"
	PassLoopUnswitch         Pass = "loop-unswitch"
	PassLoopUnroll           Pass = "loop-unroll"
	PassVectorSwizzleFold    Pass = "vector-swizzle-fold"
	PassTailCallOptimize     Pass = "tail-call-optimize"
	PassCodeSinking          Pass = "code-sinking"
	PassTemporaryRenumber    Pass = "temporary-renumber"
)

// Config toggles individual passes; an absent entry defaults to enabled,
// so a nil Config (the zero value) runs every pass.
type Config struct {
	enabled map[Pass]bool
}

// DefaultConfig enables every pass.
func DefaultConfig() Config {
	return Config{}
}

// Option mutates a Config via the functional-option pattern.
type Option func(*Config)

// WithPass enables or disables one named pass.
func WithPass(pass Pass, enabled bool) Option {
	return func(cfg *Config) {
		if cfg.enabled == nil {
			cfg.enabled = make(map[Pass]bool)
		}
		cfg.enabled[pass] = enabled
	}
}

func (c Config) isEnabled(pass Pass) bool {
	if c.enabled == nil {
		return true
	}
	enabled, ok := c.enabled[pass]
	if !ok {
		return true
	}
	return enabled
}

// maxFixedPointIterations bounds the iterative core's round count, a
// safety backstop against a pass pair that could otherwise oscillate
// forever; every pass here is individually monotonic, so in practice the
// loop converges in a handful of rounds.
const maxFixedPointIterations = 25

type functionPass struct {
	id  Pass
	run func(*tac.Function) bool
}

// iterativePasses re-run every round until none of them reports a
// change: cheap, purely-local cleanups that can unlock each other
// (constant folding exposes a dead branch, pruning that branch frees a
// temporary, freeing the temporary exposes a dead store, and so on).
var iterativePasses = []functionPass{
	{PassConstantFold, foldConstants},
	{PassBooleanSimplify, simplifyBooleans},
	{PassCopyPropagation, propagateCopies},
	{PassDeadStoreElim, eliminateDeadStores},
	{PassUnreachablePrune, pruneUnreachable},
	{PassJumpThreading, threadJumps},
	{PassConstantDedup, dedupeConstants},
	{PassUnusedLabelElim, eliminateUnusedLabels},
}

// structuralPasses run once, on the first fixed-point round only: each
// needs a stable view of the function's loop structure to operate
// safely, and re-running them against output they themselves already
// normalized has no further effect.
var structuralPasses = []functionPass{
	{PassLICM, runLICM},
	{PassSSAWindow, runSSAWindow},
	{PassInductionVarSimplify, simplifyInductionVars},
	{PassLoopUnswitch, unswitchLoops},
	{PassLoopUnroll, unrollLoops},
	{PassVectorSwizzleFold, foldVectorSwizzles},
	{PassTailCallOptimize, optimizeTailCalls},
	{PassCodeSinking, sinkCode},
}

// Optimize runs every enabled pass over every function in unit in place,
// and returns the label-integrity warnings spec.md §4.4 calls for (a
// stub label with nothing but a Return reachable from it is suspicious,
// not fatal).
func Optimize(unit *tac.Unit, cfg Config) []string {
	var warnings []string
	for _, fn := range unit.Functions {
		warnings = append(warnings, optimizeFunction(fn, cfg)...)
	}
	return warnings
}

func optimizeFunction(fn *tac.Function, cfg Config) []string {
	runRound := func(passes []functionPass) bool {
		changed := false
		for _, p := range passes {
			if !cfg.isEnabled(p.id) {
				continue
			}
			if p.run(fn) {
				changed = true
			}
		}
		return changed
	}

	for i := 0; i < maxFixedPointIterations; i++ {
		if !runRound(iterativePasses) {
			break
		}
	}

	for _, p := range structuralPasses {
		if cfg.isEnabled(p.id) && p.run(fn) {
			for i := 0; i < maxFixedPointIterations; i++ {
				if !runRound(iterativePasses) {
					break
				}
			}
		}
	}

	if cfg.isEnabled(PassTemporaryRenumber) {
		renumberTemporaries(fn)
	}

	return checkLabelIntegrity(fn)
}
