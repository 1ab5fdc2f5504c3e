package symtab

import (
	"testing"

	"github.com/udonc/udonc/internal/udontype"
)

func TestResolveWalksOuterScopes(t *testing.T) {
	global := New()
	global.Define("score", udontype.Primitive(udontype.Int32))

	local := NewEnclosed(global)
	local.DefineParameter("amount", udontype.Primitive(udontype.Int32))

	if _, ok := local.Resolve("amount"); !ok {
		t.Fatalf("expected to resolve local parameter")
	}
	if _, ok := local.Resolve("score"); !ok {
		t.Fatalf("expected to resolve outer-scope symbol from local scope")
	}
	if _, ok := global.Resolve("amount"); ok {
		t.Fatalf("did not expect outer scope to see inner scope's symbol")
	}
}

func TestCaseSensitiveLookup(t *testing.T) {
	table := New()
	table.Define("Score", udontype.Primitive(udontype.Int32))
	if _, ok := table.Resolve("score"); ok {
		t.Fatalf("surface language is case-sensitive; lowercase lookup must not match")
	}
	if _, ok := table.Resolve("Score"); !ok {
		t.Fatalf("expected exact-case lookup to succeed")
	}
}

func TestShadowingInNestedScope(t *testing.T) {
	outer := New()
	outer.Define("x", udontype.Primitive(udontype.Int32))
	inner := NewEnclosed(outer)
	inner.Define("x", udontype.Primitive(udontype.String))

	sym, _ := inner.Resolve("x")
	if sym.Type.PrimitiveName != udontype.String {
		t.Fatalf("expected inner scope's shadowing declaration to win, got %v", sym.Type)
	}
	outerSym, _ := outer.Resolve("x")
	if outerSym.Type.PrimitiveName != udontype.Int32 {
		t.Fatalf("expected outer scope's declaration to be unaffected by inner shadow")
	}
}
