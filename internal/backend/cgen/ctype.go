package cgen

import (
	"mirc/internal/diag"
	"mirc/internal/layout"
	"mirc/internal/mangle"
	"mirc/internal/types"
)

var coreCTypes = map[types.CoreType]string{
	types.Usize: "uintptr_t",
	types.Isize: "intptr_t",
	types.U8:    "uint8_t",
	types.I8:    "int8_t",
	types.U16:   "uint16_t",
	types.I16:   "int16_t",
	types.U32:   "uint32_t",
	types.I32:   "int32_t",
	types.U64:   "uint64_t",
	types.I64:   "int64_t",
	types.U128:  "unsigned __int128",
	types.I128:  "__int128",
	types.F32:   "float",
	types.F64:   "double",
	types.Bool:  "bool",
	types.Char:  "CHAR",
}

// ctype renders a C declaration of d with type ty. Types that must have been
// eliminated before this stage are reported as BUG.
func (e *Emitter) ctype(ty types.TypeRef, d declarator) (string, error) {
	switch ty.Kind {
	case types.KindPrimitive:
		if ty.Core == types.Str {
			return "", diag.Bug(ty, "raw str")
		}
		name, ok := coreCTypes[ty.Core]
		if !ok {
			return "", diag.Bug(ty, "unknown primitive")
		}
		return declare(name, d), nil

	case types.KindDiverge:
		return declare("tBANG", d), nil

	case types.KindPath:
		switch ty.Binding {
		case types.BindingStruct:
			return declare("struct "+mangle.StructName(ty.Path), d), nil
		case types.BindingUnion:
			return declare("union "+mangle.UnionName(ty.Path), d), nil
		case types.BindingEnum:
			return declare("struct "+mangle.EnumName(ty.Path), d), nil
		case types.BindingUnbound:
			return "", diag.Bug(ty, "unbound path in trans")
		case types.BindingOpaque:
			return "", diag.Bug(ty, "opaque path in trans")
		}
		return "", diag.Bug(ty, "unknown path binding %d", ty.Binding)

	case types.KindTuple:
		if len(ty.Elems) == 0 {
			return declare("tUNIT", d), nil
		}
		return declare(mangle.TupleName(ty.Elems), d), nil

	case types.KindArray:
		if ty.Inner == nil {
			return "", diag.Bug(ty, "array without element type")
		}
		return e.ctype(*ty.Inner, d.array(ty.Size))

	case types.KindBorrow, types.KindPointer:
		if ty.Inner == nil {
			return "", diag.Bug(ty, "reference without pointee")
		}
		return e.ctypePtr(*ty.Inner, d)

	case types.KindFunction:
		return declare(mangle.FnTypeName(ty), d), nil

	case types.KindGeneric:
		return "", diag.Bug(ty, "generic in trans")
	case types.KindInfer:
		return "", diag.Bug(ty, "inference hole in trans")
	case types.KindTraitObject:
		return "", diag.Bug(ty, "raw trait object")
	case types.KindSlice:
		return "", diag.Bug(ty, "raw slice object")
	case types.KindErased:
		return "", diag.Bug(ty, "erased type in trans")
	case types.KindClosure:
		return "", diag.Bug(ty, "closure during trans")
	}
	return "", diag.Bug(ty, "unknown type kind %s", ty.Kind)
}

func (e *Emitter) ctypePtr(inner types.TypeRef, d declarator) (string, error) {
	repr, err := e.policy.PointerRepr(inner)
	if err != nil {
		return "", err
	}
	switch repr {
	case layout.ReprWideStr, layout.ReprWideSlice, layout.ReprWideTraitObject:
		return declare(repr.CName(), d), nil
	}
	return e.ctype(inner, d.pointer())
}

// ctypeName renders ty with no declarator, as used by casts.
func (e *Emitter) ctypeName(ty types.TypeRef) (string, error) {
	return e.ctype(ty, abstract())
}

// fieldDecl renders an aggregate field. A slice or str field becomes a
// flexible array of its element type.
func (e *Emitter) fieldDecl(ty types.TypeRef, name string) (string, error) {
	switch {
	case ty.Kind == types.KindSlice && ty.Inner != nil:
		return e.ctype(*ty.Inner, named(name).flexible())
	case ty.IsCore(types.Str):
		return declare("uint8_t", named(name).flexible()), nil
	}
	return e.ctype(ty, named(name))
}
