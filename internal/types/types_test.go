package types

import "testing"

func TestTypeRefString(t *testing.T) {
	opt := NewPath("core", "option", "Option")
	cases := []struct {
		ty   TypeRef
		want string
	}{
		{Prim(U32), "u32"},
		{Unit(), "()"},
		{Tuple(Prim(I32)), "(i32,)"},
		{Tuple(Prim(I32), Prim(Bool)), "(i32, bool)"},
		{Ref(Slice(Prim(U8))), "&[u8]"},
		{RefMut(Prim(Str)), "&mut str"},
		{Ptr(Array(Prim(U16), 4), false), "*const [u16; 4]"},
		{Named(BindingEnum, opt.Generic(Prim(Char))), "core::option::Option<char>"},
		{Fn([]TypeRef{Prim(U8)}, Unit()), "fn(u8)"},
		{Fn(nil, Never()), "fn() -> !"},
		{Ref(Dyn(NewPath("core", "fmt", "Debug").Generic())), "&dyn core::fmt::Debug"},
		{Generic("T", GroupImpl, 0), "T"},
	}
	for _, tc := range cases {
		if got := tc.ty.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Ref(Tuple(Prim(I32), Named(BindingStruct, NewPath("c", "S").Generic(Prim(U8)))))
	cp := orig.Clone()
	cp.Inner.Elems[0] = Prim(I64)
	cp.Inner.Elems[1].Path.Params[0] = Prim(U64)
	if orig.String() != "&(i32, c::S<u8>)" {
		t.Fatalf("clone mutated original: %s", orig)
	}
	if cp.String() != "&(i64, c::S<u64>)" {
		t.Fatalf("unexpected clone: %s", cp)
	}
}

func TestPathItemKey(t *testing.T) {
	vec := NewPath("alloc", "vec", "Vec")
	self := Named(BindingStruct, vec.Generic(Prim(U8)))
	inherent := Path{Kind: PathUfcsInherent, Self: &self, Item: "len"}
	if got := inherent.String(); got != "<alloc::vec::Vec<u8>>::len" {
		t.Fatalf("String() = %q", got)
	}
	if got := inherent.ItemKey(); got != "<alloc::vec::Vec>::len" {
		t.Fatalf("ItemKey() = %q", got)
	}
	known := Path{Kind: PathUfcsKnown, Self: &self, Trait: NewPath("core", "clone", "Clone").Generic(), Item: "clone"}
	if got := known.ItemKey(); got != "<alloc::vec::Vec as core::clone::Clone>::clone" {
		t.Fatalf("ItemKey() = %q", got)
	}
	plain := ItemPath(NewPath("app", "main").Generic())
	if plain.ItemKey() != "app::main" || plain.String() != "app::main" {
		t.Fatalf("unexpected plain path %q / %q", plain.ItemKey(), plain.String())
	}
}
