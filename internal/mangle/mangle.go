// Package mangle turns paths and types into C identifiers.
//
// The encoding is self-delimiting: identifiers are length-prefixed, generic
// argument lists are bracketed by I..E and every type code has a fixed
// shape, so equal inputs always give equal names and distinct inputs never
// collide. Identifiers are NFC-normalised before encoding.
package mangle

import (
	"strconv"
	"strings"

	"mirc/internal/types"
)

// Symbol mangles a value path (function, static or constant).
func Symbol(p types.Path) string {
	var sb strings.Builder
	sb.WriteString("ZR")
	switch p.Kind {
	case types.PathGeneric:
		sb.WriteString("G")
		writeGeneric(&sb, p.Generic)
	case types.PathUfcsInherent, types.PathUfcsKnown:
		if p.Kind == types.PathUfcsInherent {
			sb.WriteString("I")
		} else {
			sb.WriteString("K")
		}
		if p.Self != nil {
			writeType(&sb, *p.Self)
		} else {
			sb.WriteString("_")
		}
		if p.Kind == types.PathUfcsKnown {
			writeGeneric(&sb, p.Trait)
		}
		writeIdent(&sb, p.Item)
		writeArgs(&sb, p.Params)
	}
	return sb.String()
}

// Path mangles a generic item path; it is the suffix of s_, e_ and u_ names.
func Path(gp types.GenericPath) string {
	var sb strings.Builder
	writeGeneric(&sb, gp)
	return sb.String()
}

// Type mangles a type descriptor.
func Type(t types.TypeRef) string {
	var sb strings.Builder
	writeType(&sb, t)
	return sb.String()
}

// StructName is the C tag of a struct.
func StructName(gp types.GenericPath) string { return "s_" + Path(gp) }

// EnumName is the C tag of an enum.
func EnumName(gp types.GenericPath) string { return "e_" + Path(gp) }

// UnionName is the C tag of a union.
func UnionName(gp types.GenericPath) string { return "u_" + Path(gp) }

// TupleName is the typedef name of a non-empty tuple.
func TupleName(elems []types.TypeRef) string {
	var sb strings.Builder
	sb.WriteString("TUP_")
	sb.WriteString(strconv.Itoa(len(elems)))
	for _, e := range elems {
		sb.WriteString("_")
		writeType(&sb, e)
	}
	return sb.String()
}

// FnTypeName is the typedef name of a function pointer type.
func FnTypeName(t types.TypeRef) string { return "t_" + Type(t) }

func writeSimple(sb *strings.Builder, p types.SimplePath) {
	sb.WriteString("N")
	writeIdent(sb, p.Crate)
	for _, c := range p.Components {
		writeIdent(sb, c)
	}
	sb.WriteString("E")
}

func writeGeneric(sb *strings.Builder, gp types.GenericPath) {
	writeSimple(sb, gp.Path)
	writeArgs(sb, gp.Params)
}

func writeArgs(sb *strings.Builder, params []types.TypeRef) {
	if len(params) == 0 {
		return
	}
	sb.WriteString("I")
	for _, t := range params {
		writeType(sb, t)
	}
	sb.WriteString("E")
}

var coreCodes = map[types.CoreType]string{
	types.U8:    "Ch",
	types.I8:    "Ca",
	types.U16:   "Ct",
	types.I16:   "Cs",
	types.U32:   "Cj",
	types.I32:   "Ci",
	types.U64:   "Cm",
	types.I64:   "Cl",
	types.U128:  "Co",
	types.I128:  "Cn",
	types.Usize: "Cy",
	types.Isize: "Cx",
	types.F32:   "Cf",
	types.F64:   "Cd",
	types.Bool:  "Cb",
	types.Char:  "Cw",
	types.Str:   "Ce",
}

func writeType(sb *strings.Builder, t types.TypeRef) {
	switch t.Kind {
	case types.KindPrimitive:
		if code, ok := coreCodes[t.Core]; ok {
			sb.WriteString(code)
		} else {
			sb.WriteString("C_")
		}
	case types.KindDiverge:
		sb.WriteString("X")
	case types.KindPath:
		writeGeneric(sb, t.Path)
	case types.KindTuple:
		sb.WriteString("T")
		sb.WriteString(strconv.Itoa(len(t.Elems)))
		sb.WriteString("_")
		for _, e := range t.Elems {
			writeType(sb, e)
		}
	case types.KindArray:
		sb.WriteString("A")
		sb.WriteString(strconv.FormatUint(t.Size, 10))
		sb.WriteString("_")
		writeInner(sb, t)
	case types.KindSlice:
		sb.WriteString("S")
		writeInner(sb, t)
	case types.KindBorrow:
		if t.Mutable {
			sb.WriteString("Q")
		} else {
			sb.WriteString("R")
		}
		writeInner(sb, t)
	case types.KindPointer:
		if t.Mutable {
			sb.WriteString("M")
		} else {
			sb.WriteString("P")
		}
		writeInner(sb, t)
	case types.KindFunction:
		sb.WriteString("F")
		if t.Fn == nil {
			sb.WriteString("0_X")
			return
		}
		if t.Fn.Unsafe {
			sb.WriteString("U")
		}
		if t.Fn.ABI != "" && t.Fn.ABI != "Rust" {
			sb.WriteString("B")
			writeIdent(sb, t.Fn.ABI)
		}
		sb.WriteString(strconv.Itoa(len(t.Fn.Args)))
		sb.WriteString("_")
		for _, a := range t.Fn.Args {
			writeType(sb, a)
		}
		writeType(sb, t.Fn.Ret)
	case types.KindTraitObject:
		sb.WriteString("D")
		writeGeneric(sb, t.Trait.Trait)
		sb.WriteString(strconv.Itoa(len(t.Trait.Markers)))
		sb.WriteString("_")
		for _, m := range t.Trait.Markers {
			writeGeneric(sb, m)
		}
	case types.KindGeneric:
		sb.WriteString("G")
		writeIdent(sb, t.Generic.Name)
	case types.KindErased:
		sb.WriteString("O")
		writeIdent(sb, t.Name)
	case types.KindClosure:
		sb.WriteString("L")
		writeIdent(sb, t.Name)
	default:
		sb.WriteString("_")
	}
}

func writeInner(sb *strings.Builder, t types.TypeRef) {
	if t.Inner == nil {
		sb.WriteString("_")
		return
	}
	writeType(sb, *t.Inner)
}
