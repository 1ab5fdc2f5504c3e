// Package externs supplies the curated catalogue of host-VM built-in
// signatures the backend resolves its operator, cast, call, property and
// dispatch sites against (spec.md §4.5); ArrayAccess/ArrayAssignment use
// fixed SystemArray signatures instead. The catalogue itself is an external
// collaborator: callers may plug in any Resolver, with JSONCatalogue
// below as the default.
package externs

import "github.com/udonc/udonc/internal/udontype"

// Kind discriminates the TAC shape a signature lookup is resolving for,
// since the same owner/name pair can mean different things depending on
// whether it reached the resolver from an operator, a call, or a member
// access.
type Kind int

const (
	KindBinaryOp Kind = iota
	KindUnaryOp
	KindCast
	KindCall
	KindMethodCall
	KindPropertyGet
	KindPropertySet
	KindArrayGet
	KindArraySet
)

// Signature is the literal symbol the backend emits after `EXTERN`,
// interned into the data section as a `__extern_<n>` string constant.
type Signature string

// Resolver looks up the host-VM built-in signature for one TAC
// operation. A miss (found == false) tells the backend to fall back to
// a deterministic synthetic signature built from the TAC types
// themselves (spec.md §4.5).
type Resolver interface {
	ResolveExternSignature(owner, name string, kind Kind, paramTypes []*udontype.Type, returnType *udontype.Type) (Signature, bool)
}
