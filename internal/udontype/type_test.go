package udontype

import "testing"

func TestTypeStringRendering(t *testing.T) {
	tests := []struct {
		name string
		typ  *Type
		want string
	}{
		{"primitive", Primitive(Int32), "int32"},
		{"array", ArrayOf(Primitive(Double), 1), "double[]"},
		{"nested array", ArrayOf(ArrayOf(Primitive(String), 1), 1), "string[][]"},
		{"list", Collection("List", nil, Primitive(Int32)), "List<int32>"},
		{"dictionary", Collection("Dictionary", Primitive(String), Primitive(Int32)), "Dictionary<string, int32>"},
		{"class", Class("Player"), "Player"},
		{"void", Void, "void"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeEqual(t *testing.T) {
	a := ArrayOf(Primitive(Int32), 1)
	b := ArrayOf(Primitive(Int32), 1)
	c := ArrayOf(Primitive(Int64), 1)
	if !a.Equal(b) {
		t.Errorf("expected equal array types")
	}
	if a.Equal(c) {
		t.Errorf("expected unequal array types (different element)")
	}
}

func TestHeapCategoryOf(t *testing.T) {
	if HeapCategoryOf(Primitive(Boolean)) != HeapBoolean {
		t.Errorf("expected boolean heap category")
	}
	if HeapCategoryOf(Primitive(String)) != HeapString {
		t.Errorf("expected string heap category")
	}
	if HeapCategoryOf(Primitive(Int32)) != HeapNumeric {
		t.Errorf("expected numeric heap category")
	}
	if HeapCategoryOf(Class("Player")) != HeapReference {
		t.Errorf("expected reference heap category for class")
	}
}

func TestUdonTypeName(t *testing.T) {
	if got := UdonTypeName(Primitive(Int32)); got != "SystemInt32" {
		t.Errorf("UdonTypeName(int32) = %q, want SystemInt32", got)
	}
	if got := UdonTypeName(ArrayOf(Primitive(Int32), 1)); got != "SystemInt32Array" {
		t.Errorf("UdonTypeName(int32[]) = %q, want SystemInt32Array", got)
	}
	if got := UdonTypeName(Class("Player")); got != "SystemObject" {
		t.Errorf("UdonTypeName(class) = %q, want SystemObject", got)
	}
}
