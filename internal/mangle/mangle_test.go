package mangle_test

import (
	"regexp"
	"testing"

	"mirc/internal/mangle"
	"mirc/internal/types"
)

var cIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func TestSymbolDeterministic(t *testing.T) {
	build := func() types.Path {
		self := types.Named(types.BindingStruct, types.NewPath("alloc", "vec", "Vec").Generic(types.Prim(types.U8)))
		return types.Path{
			Kind:  types.PathUfcsKnown,
			Self:  &self,
			Trait: types.NewPath("core", "clone", "Clone").Generic(),
			Item:  "clone",
		}
	}
	a, b := mangle.Symbol(build()), mangle.Symbol(build())
	if a != b {
		t.Fatalf("mangling not deterministic: %q vs %q", a, b)
	}
	if !cIdent.MatchString(a) {
		t.Fatalf("not a C identifier: %q", a)
	}
}

func TestDistinctInputsDistinctNames(t *testing.T) {
	inputs := []types.TypeRef{
		types.Tuple(types.Prim(types.I32), types.Prim(types.Bool)),
		types.Tuple(types.Prim(types.Bool), types.Prim(types.I32)),
		types.Tuple(types.Tuple(types.Prim(types.I32)), types.Prim(types.Bool)),
		types.Ref(types.Slice(types.Prim(types.U8))),
		types.RefMut(types.Slice(types.Prim(types.U8))),
		types.Ptr(types.Prim(types.U8), false),
		types.Array(types.Prim(types.U8), 12),
		types.Array(types.Prim(types.U8), 1),
		types.Named(types.BindingStruct, types.NewPath("a", "b_c").Generic()),
		types.Named(types.BindingStruct, types.NewPath("a", "b", "c").Generic()),
		types.Named(types.BindingStruct, types.NewPath("a", "b__c").Generic()),
		types.Fn([]types.TypeRef{types.Prim(types.U8)}, types.Unit()),
		types.Fn(nil, types.Never()),
	}
	seen := make(map[string]int)
	for i, in := range inputs {
		name := mangle.Type(in)
		if j, dup := seen[name]; dup {
			t.Fatalf("inputs %d (%s) and %d (%s) collide on %q", j, inputs[j], i, in, name)
		}
		seen[name] = i
	}
}

func TestIdentNormalizesNFC(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if mangle.Ident(composed) != mangle.Ident(decomposed) {
		t.Fatalf("NFC forms differ: %q vs %q", mangle.Ident(composed), mangle.Ident(decomposed))
	}
	if got := mangle.Ident(composed); got != "caf_ue9_" {
		t.Fatalf("got %q", got)
	}
}

func TestTupleName(t *testing.T) {
	got := mangle.TupleName([]types.TypeRef{types.Prim(types.I32), types.Prim(types.Bool)})
	if got != "TUP_2_Ci_Cb" {
		t.Fatalf("got %q", got)
	}
	if s := mangle.StructName(types.NewPath("demo", "Point").Generic()); s != "s_N4demo5PointE" {
		t.Fatalf("got %q", s)
	}
}
