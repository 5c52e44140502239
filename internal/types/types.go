package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates all kinds of type descriptors.
type Kind uint8

const (
	// KindInfer is an inference hole; it must never reach the backend.
	KindInfer Kind = iota
	KindDiverge
	KindPrimitive
	KindPath
	// KindGeneric is a generic placeholder; monomorphization removes it.
	KindGeneric
	KindTraitObject
	// KindErased is an opaque `impl Trait` return type.
	KindErased
	KindArray
	KindSlice
	KindTuple
	KindBorrow
	KindPointer
	KindFunction
	KindClosure
)

func (k Kind) String() string {
	switch k {
	case KindInfer:
		return "infer"
	case KindDiverge:
		return "diverge"
	case KindPrimitive:
		return "primitive"
	case KindPath:
		return "path"
	case KindGeneric:
		return "generic"
	case KindTraitObject:
		return "trait-object"
	case KindErased:
		return "erased"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindTuple:
		return "tuple"
	case KindBorrow:
		return "borrow"
	case KindPointer:
		return "pointer"
	case KindFunction:
		return "function"
	case KindClosure:
		return "closure"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// CoreType enumerates primitive scalar types.
type CoreType uint8

const (
	Usize CoreType = iota + 1
	Isize
	U8
	I8
	U16
	I16
	U32
	I32
	U64
	I64
	U128
	I128
	F32
	F64
	Bool
	Char
	// Str is the unsized text type; it only appears behind a reference.
	Str
)

var coreNames = [...]string{
	Usize: "usize",
	Isize: "isize",
	U8:    "u8",
	I8:    "i8",
	U16:   "u16",
	I16:   "i16",
	U32:   "u32",
	I32:   "i32",
	U64:   "u64",
	I64:   "i64",
	U128:  "u128",
	I128:  "i128",
	F32:   "f32",
	F64:   "f64",
	Bool:  "bool",
	Char:  "char",
	Str:   "str",
}

func (c CoreType) String() string {
	if int(c) < len(coreNames) && coreNames[c] != "" {
		return coreNames[c]
	}
	return fmt.Sprintf("CoreType(%d)", c)
}

// IsSigned reports whether c is a signed integer type.
func (c CoreType) IsSigned() bool {
	switch c {
	case Isize, I8, I16, I32, I64, I128:
		return true
	}
	return false
}

// IsInteger reports whether c is an integer type of either signedness.
func (c CoreType) IsInteger() bool {
	switch c {
	case Usize, Isize, U8, I8, U16, I16, U32, I32, U64, I64, U128, I128:
		return true
	}
	return false
}

// IsFloat reports whether c is a floating-point type.
func (c CoreType) IsFloat() bool {
	return c == F32 || c == F64
}

// Binding records what a path type resolved to upstream.
type Binding uint8

const (
	BindingUnbound Binding = iota
	BindingOpaque
	BindingStruct
	BindingUnion
	BindingEnum
)

func (b Binding) String() string {
	switch b {
	case BindingUnbound:
		return "unbound"
	case BindingOpaque:
		return "opaque"
	case BindingStruct:
		return "struct"
	case BindingUnion:
		return "union"
	case BindingEnum:
		return "enum"
	default:
		return fmt.Sprintf("Binding(%d)", b)
	}
}

// GenericGroup says which parameter list a generic placeholder indexes.
type GenericGroup uint8

const (
	// GroupImpl indexes the parameters of the enclosing type or impl block.
	GroupImpl GenericGroup = iota
	// GroupMethod indexes the parameters of the function itself.
	GroupMethod
	// GroupSelf is the `Self` type of a trait or impl.
	GroupSelf
)

// GenericRef names a generic placeholder.
type GenericRef struct {
	Name  string
	Group GenericGroup
	Index int
}

// TraitObject describes `dyn Trait + Markers`.
type TraitObject struct {
	Trait   GenericPath
	Markers []GenericPath
}

// FnType describes a function pointer type.
type FnType struct {
	Unsafe bool
	ABI    string
	Args   []TypeRef
	Ret    TypeRef
}

// TypeRef is the type descriptor. Kind selects which payload fields are
// meaningful:
//
//	KindPrimitive   Core
//	KindPath        Path, Binding
//	KindGeneric     Generic
//	KindTraitObject Trait
//	KindArray       Inner, Size
//	KindSlice       Inner
//	KindTuple       Elems
//	KindBorrow      Inner, Mutable
//	KindPointer     Inner, Mutable
//	KindFunction    Fn
//	KindErased      Name
//	KindClosure     Name
type TypeRef struct {
	Kind    Kind
	Core    CoreType
	Path    GenericPath
	Binding Binding
	Generic GenericRef
	Trait   TraitObject
	Inner   *TypeRef
	Size    uint64
	Mutable bool
	Elems   []TypeRef
	Fn      *FnType
	Name    string
}

// Prim returns a primitive type.
func Prim(c CoreType) TypeRef { return TypeRef{Kind: KindPrimitive, Core: c} }

// Never returns the diverging type `!`.
func Never() TypeRef { return TypeRef{Kind: KindDiverge} }

// Unit returns the empty tuple.
func Unit() TypeRef { return TypeRef{Kind: KindTuple} }

// Tuple returns a tuple of elems.
func Tuple(elems ...TypeRef) TypeRef {
	return TypeRef{Kind: KindTuple, Elems: append([]TypeRef(nil), elems...)}
}

// Array returns `[elem; n]`.
func Array(elem TypeRef, n uint64) TypeRef {
	return TypeRef{Kind: KindArray, Inner: &elem, Size: n}
}

// Slice returns `[elem]`.
func Slice(elem TypeRef) TypeRef {
	return TypeRef{Kind: KindSlice, Inner: &elem}
}

// Ref returns `&inner`.
func Ref(inner TypeRef) TypeRef {
	return TypeRef{Kind: KindBorrow, Inner: &inner}
}

// RefMut returns `&mut inner`.
func RefMut(inner TypeRef) TypeRef {
	return TypeRef{Kind: KindBorrow, Inner: &inner, Mutable: true}
}

// Ptr returns `*const inner` or `*mut inner`.
func Ptr(inner TypeRef, mutable bool) TypeRef {
	return TypeRef{Kind: KindPointer, Inner: &inner, Mutable: mutable}
}

// Fn returns a function pointer type.
func Fn(args []TypeRef, ret TypeRef) TypeRef {
	return TypeRef{Kind: KindFunction, Fn: &FnType{Args: append([]TypeRef(nil), args...), Ret: ret}}
}

// Named returns a path type with the given binding.
func Named(binding Binding, path GenericPath) TypeRef {
	return TypeRef{Kind: KindPath, Binding: binding, Path: path}
}

// Generic returns a generic placeholder.
func Generic(name string, group GenericGroup, index int) TypeRef {
	return TypeRef{Kind: KindGeneric, Generic: GenericRef{Name: name, Group: group, Index: index}}
}

// Dyn returns a trait object type.
func Dyn(trait GenericPath, markers ...GenericPath) TypeRef {
	return TypeRef{Kind: KindTraitObject, Trait: TraitObject{Trait: trait, Markers: markers}}
}

// IsUnit reports whether t is the empty tuple.
func (t TypeRef) IsUnit() bool {
	return t.Kind == KindTuple && len(t.Elems) == 0
}

// IsCore reports whether t is the primitive c.
func (t TypeRef) IsCore(c CoreType) bool {
	return t.Kind == KindPrimitive && t.Core == c
}

// IsPointerLike reports whether t is a borrow or raw pointer.
func (t TypeRef) IsPointerLike() bool {
	return (t.Kind == KindBorrow || t.Kind == KindPointer) && t.Inner != nil
}

// Clone returns a deep copy of t that shares no storage with it.
func (t TypeRef) Clone() TypeRef {
	out := t
	out.Path = t.Path.Clone()
	out.Trait = TraitObject{Trait: t.Trait.Trait.Clone()}
	if len(t.Trait.Markers) > 0 {
		out.Trait.Markers = make([]GenericPath, len(t.Trait.Markers))
		for i := range t.Trait.Markers {
			out.Trait.Markers[i] = t.Trait.Markers[i].Clone()
		}
	}
	if t.Inner != nil {
		inner := t.Inner.Clone()
		out.Inner = &inner
	}
	out.Elems = cloneTypes(t.Elems)
	if t.Fn != nil {
		fn := *t.Fn
		fn.Args = cloneTypes(t.Fn.Args)
		fn.Ret = t.Fn.Ret.Clone()
		out.Fn = &fn
	}
	return out
}

func cloneTypes(in []TypeRef) []TypeRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]TypeRef, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// String renders t in source-language syntax.
func (t TypeRef) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t TypeRef) write(sb *strings.Builder) {
	switch t.Kind {
	case KindInfer:
		sb.WriteString("_")
	case KindDiverge:
		sb.WriteString("!")
	case KindPrimitive:
		sb.WriteString(t.Core.String())
	case KindPath:
		sb.WriteString(t.Path.String())
	case KindGeneric:
		sb.WriteString(t.Generic.Name)
	case KindTraitObject:
		sb.WriteString("dyn ")
		sb.WriteString(t.Trait.Trait.String())
		for _, m := range t.Trait.Markers {
			sb.WriteString(" + ")
			sb.WriteString(m.String())
		}
	case KindErased:
		sb.WriteString("impl ")
		sb.WriteString(t.Name)
	case KindArray:
		sb.WriteString("[")
		t.innerOrHole().write(sb)
		sb.WriteString("; ")
		sb.WriteString(strconv.FormatUint(t.Size, 10))
		sb.WriteString("]")
	case KindSlice:
		sb.WriteString("[")
		t.innerOrHole().write(sb)
		sb.WriteString("]")
	case KindTuple:
		sb.WriteString("(")
		for i, e := range t.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.write(sb)
		}
		if len(t.Elems) == 1 {
			sb.WriteString(",")
		}
		sb.WriteString(")")
	case KindBorrow:
		sb.WriteString("&")
		if t.Mutable {
			sb.WriteString("mut ")
		}
		t.innerOrHole().write(sb)
	case KindPointer:
		if t.Mutable {
			sb.WriteString("*mut ")
		} else {
			sb.WriteString("*const ")
		}
		t.innerOrHole().write(sb)
	case KindFunction:
		if t.Fn == nil {
			sb.WriteString("fn(?)")
			return
		}
		if t.Fn.Unsafe {
			sb.WriteString("unsafe ")
		}
		if t.Fn.ABI != "" && t.Fn.ABI != "Rust" {
			sb.WriteString("extern ")
			sb.WriteString(strconv.Quote(t.Fn.ABI))
			sb.WriteString(" ")
		}
		sb.WriteString("fn(")
		for i, a := range t.Fn.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.write(sb)
		}
		sb.WriteString(")")
		if !t.Fn.Ret.IsUnit() {
			sb.WriteString(" -> ")
			t.Fn.Ret.write(sb)
		}
	case KindClosure:
		sb.WriteString("closure#")
		sb.WriteString(t.Name)
	default:
		fmt.Fprintf(sb, "<%s>", t.Kind)
	}
}

func (t TypeRef) innerOrHole() TypeRef {
	if t.Inner == nil {
		return TypeRef{Kind: KindInfer}
	}
	return *t.Inner
}
