package mono_test

import (
	"errors"
	"testing"

	"mirc/internal/mono"
	"mirc/internal/types"
)

func vecOf(t types.TypeRef) types.TypeRef {
	return types.Named(types.BindingStruct, types.NewPath("alloc", "vec", "Vec").Generic(t))
}

func TestMonomorphSubstitutesGroups(t *testing.T) {
	tParam := types.Generic("T", types.GroupImpl, 0)
	uParam := types.Generic("U", types.GroupMethod, 0)
	in := types.Tuple(types.Ref(vecOf(tParam)), types.Array(uParam, 3))

	p := mono.Params{
		Impl:   []types.TypeRef{types.Prim(types.U8)},
		Method: []types.TypeRef{types.Prim(types.Bool)},
	}
	got, err := p.Monomorph(in)
	if err != nil {
		t.Fatalf("monomorph: %v", err)
	}
	if want := "(&alloc::vec::Vec<u8>, [bool; 3])"; got.String() != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if mono.NeedsMonomorph(got) {
		t.Fatalf("result still generic: %s", got)
	}
}

func TestMonomorphNeverMutatesInput(t *testing.T) {
	tParam := types.Generic("T", types.GroupImpl, 0)
	in := types.Ref(vecOf(tParam))
	before := in.String()

	p := mono.Params{Impl: []types.TypeRef{types.Prim(types.I64)}}
	out, err := p.Monomorph(in)
	if err != nil {
		t.Fatalf("monomorph: %v", err)
	}
	if in.String() != before {
		t.Fatalf("input changed: %s -> %s", before, in)
	}
	out.Inner.Path.Params[0] = types.Prim(types.U8)
	if in.String() != before {
		t.Fatalf("output shares storage with input")
	}
}

func TestMonomorphMissingArgument(t *testing.T) {
	p := mono.Params{}
	_, err := p.Monomorph(types.Generic("T", types.GroupMethod, 1))
	var ue *mono.UnresolvedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnresolvedError, got %v", err)
	}
	if ue.Generic.Name != "T" {
		t.Fatalf("unexpected generic %+v", ue.Generic)
	}
}

func TestForPathUfcs(t *testing.T) {
	self := vecOf(types.Prim(types.U16))
	path := types.Path{
		Kind:   types.PathUfcsInherent,
		Self:   &self,
		Item:   "push",
		Params: []types.TypeRef{types.Prim(types.Char)},
	}
	p := mono.ForPath(path)
	got, err := p.Monomorph(types.Tuple(
		types.Generic("T", types.GroupImpl, 0),
		types.Generic("U", types.GroupMethod, 0),
		types.Generic("Self", types.GroupSelf, 0),
	))
	if err != nil {
		t.Fatalf("monomorph: %v", err)
	}
	if want := "(u16, char, alloc::vec::Vec<u16>)"; got.String() != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
