package externs

import "testing"

func TestJSONCatalogueResolvesRegisteredEntries(t *testing.T) {
	cat := NewBuilder().
		Set("Operator", "op_Addition", "Operator.op_Addition__SystemInt32_SystemInt32__SystemInt32").
		Set("SystemConvert", "ToInt32", "SystemConvert.ToInt32__SystemDouble").
		MustBuild()

	sig, ok := cat.ResolveExternSignature("Operator", "op_Addition", KindBinaryOp, nil, nil)
	if !ok {
		t.Fatalf("expected a registered owner/name pair to resolve")
	}
	if sig != "Operator.op_Addition__SystemInt32_SystemInt32__SystemInt32" {
		t.Fatalf("unexpected signature: %s", sig)
	}
}

func TestJSONCatalogueMissesUnregisteredEntries(t *testing.T) {
	cat := NewBuilder().Set("Operator", "op_Addition", "whatever").MustBuild()

	if _, ok := cat.ResolveExternSignature("Operator", "op_Subtraction", KindBinaryOp, nil, nil); ok {
		t.Fatalf("expected an unregistered owner/name pair to miss")
	}
}

func TestNilCatalogueAlwaysMisses(t *testing.T) {
	var cat *JSONCatalogue
	if _, ok := cat.ResolveExternSignature("Operator", "op_Addition", KindBinaryOp, nil, nil); ok {
		t.Fatalf("expected a nil catalogue to always miss")
	}
}

func TestBuilderChainsMultipleSetsIntoOneDocument(t *testing.T) {
	cat := NewBuilder().
		Set("Operator", "op_Addition", "sig-add").
		Set("Operator", "op_Subtraction", "sig-sub").
		Set("SystemMath", "Truncate", "sig-truncate").
		MustBuild()

	for _, tc := range []struct{ owner, name, want string }{
		{"Operator", "op_Addition", "sig-add"},
		{"Operator", "op_Subtraction", "sig-sub"},
		{"SystemMath", "Truncate", "sig-truncate"},
	} {
		sig, ok := cat.ResolveExternSignature(tc.owner, tc.name, KindCall, nil, nil)
		if !ok || string(sig) != tc.want {
			t.Fatalf("expected %s.%s to resolve to %q, got %q (ok=%v)", tc.owner, tc.name, tc.want, sig, ok)
		}
	}
}
