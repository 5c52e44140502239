package cgen

import (
	"fmt"
	"strings"

	"mirc/internal/diag"
	"mirc/internal/hir"
	"mirc/internal/mangle"
	"mirc/internal/types"
)

const boilerplate = `#include <stddef.h>
#include <stdint.h>
#include <stdbool.h>
#include <stdlib.h>
#include <stdio.h>
#include <math.h>

typedef uint32_t CHAR;
typedef struct { } tUNIT;
typedef struct { } tBANG;
typedef struct { char* PTR; size_t META; } STR_PTR;
typedef struct { void* PTR; size_t META; } SLICE_PTR;
typedef struct { void* PTR; void* META; } TRAITOBJ_PTR;

#define OVERFLOW_PANIC(op) do { fprintf(stderr, "arithmetic overflow in %s\n", op); abort(); } while(0)
extern void _Unwind_Resume(void);

`

// EmitBoilerplate writes the fixed prelude: headers, primitive and
// wide-pointer typedefs and the runtime hooks lowered code calls.
func (e *Emitter) EmitBoilerplate() error {
	return e.write(boilerplate)
}

// EmitForwardDecl declares the tag of an aggregate so later definitions and
// pointers can name it before it is defined. Other types need nothing.
func (e *Emitter) EmitForwardDecl(ty types.TypeRef) error {
	switch ty.Kind {
	case types.KindTuple:
		if len(ty.Elems) == 0 {
			return nil
		}
		name := mangle.TupleName(ty.Elems)
		return e.write(fmt.Sprintf("typedef struct %s %s;\n", name, name))
	case types.KindPath:
		switch ty.Binding {
		case types.BindingStruct:
			return e.write(fmt.Sprintf("struct %s;\n", mangle.StructName(ty.Path)))
		case types.BindingEnum:
			return e.write(fmt.Sprintf("struct %s;\n", mangle.EnumName(ty.Path)))
		case types.BindingUnion:
			return e.write(fmt.Sprintf("union %s;\n", mangle.UnionName(ty.Path)))
		}
	}
	return nil
}

// EmitType defines a structural type: a tuple struct or a function pointer
// typedef.
func (e *Emitter) EmitType(ty types.TypeRef) error {
	var sb strings.Builder
	switch ty.Kind {
	case types.KindTuple:
		if len(ty.Elems) == 0 {
			return nil
		}
		e.writeDefComment(&sb, ty.String(), ty)
		fmt.Fprintf(&sb, "struct %s {\n", mangle.TupleName(ty.Elems))
		for i, el := range ty.Elems {
			decl, err := e.fieldDecl(el, fmt.Sprintf("_%d", i))
			if err != nil {
				return diag.At(err, "tuple "+ty.String())
			}
			fmt.Fprintf(&sb, "\t%s;\n", decl)
		}
		sb.WriteString("};\n")
	case types.KindFunction:
		if ty.Fn == nil {
			return diag.Bug(ty, "function type without signature")
		}
		params, err := e.paramTypes(ty.Fn.Args)
		if err != nil {
			return diag.At(err, "fn type "+ty.String())
		}
		decl, err := e.ctype(ty.Fn.Ret, named(mangle.FnTypeName(ty)).pointer().call(params))
		if err != nil {
			return diag.At(err, "fn type "+ty.String())
		}
		e.writeDefComment(&sb, ty.String(), types.TypeRef{})
		fmt.Fprintf(&sb, "typedef %s;\n", decl)
	default:
		return nil
	}
	return e.writeBuilder(&sb)
}

func (e *Emitter) paramTypes(args []types.TypeRef) (string, error) {
	if len(args) == 0 {
		return "void", nil
	}
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := e.ctypeName(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

// EmitStruct defines struct gp with its fields monomorphized for gp's
// arguments.
func (e *Emitter) EmitStruct(gp types.GenericPath) error {
	s, ok := e.crate.Struct(gp.Path)
	if !ok {
		return diag.Bug(gp, "unknown struct")
	}
	fields, err := e.crate.StructFieldTypes(gp)
	if err != nil {
		return diag.WithSpan(err, s.Span)
	}
	var sb strings.Builder
	e.writeDefComment(&sb, "struct "+gp.String(), types.Named(types.BindingStruct, gp))
	fmt.Fprintf(&sb, "struct %s {\n", mangle.StructName(gp))
	for i, ft := range fields {
		decl, err := e.fieldDecl(ft, fmt.Sprintf("_%d", i))
		if err != nil {
			return diag.WithSpan(diag.At(err, "struct "+gp.String()), s.Span)
		}
		if s.Kind == hir.StructNamed && i < len(s.Fields) && s.Fields[i].Name != "" {
			fmt.Fprintf(&sb, "\t%s;\t// %s\n", decl, s.Fields[i].Name)
			continue
		}
		fmt.Fprintf(&sb, "\t%s;\n", decl)
	}
	sb.WriteString("};\n")
	return e.writeBuilder(&sb)
}

// EmitEnum defines enum gp as a tag plus a union of per-variant payload
// structs. Value variants carry no payload and get no union member.
func (e *Emitter) EmitEnum(gp types.GenericPath) error {
	en, ok := e.crate.Enum(gp.Path)
	if !ok {
		return diag.Bug(gp, "unknown enum")
	}
	kinds, payloads, err := e.crate.EnumPayloads(gp)
	if err != nil {
		return diag.WithSpan(err, en.Span)
	}
	var sb strings.Builder
	e.writeDefComment(&sb, "enum "+gp.String(), types.Named(types.BindingEnum, gp))
	fmt.Fprintf(&sb, "struct %s {\n", mangle.EnumName(gp))
	sb.WriteString("\tuint32_t TAG;\n")

	var union strings.Builder
	members := 0
	for i := range payloads {
		if kinds[i] == hir.VariantValue {
			continue
		}
		members++
		union.WriteString("\t\tstruct {\n")
		for j, ft := range payloads[i] {
			decl, err := e.fieldDecl(ft, fmt.Sprintf("_%d", j))
			if err != nil {
				return diag.WithSpan(diag.At(err, fmt.Sprintf("enum %s variant %d", gp, i)), en.Span)
			}
			fmt.Fprintf(&union, "\t\t\t%s;\n", decl)
		}
		fmt.Fprintf(&union, "\t\t} var_%d;\t// %s\n", i, en.Variants[i].Name)
	}
	if members > 0 {
		sb.WriteString("\tunion {\n")
		sb.WriteString(union.String())
		sb.WriteString("\t} DATA;\n")
	}
	sb.WriteString("};\n")
	return e.writeBuilder(&sb)
}

// EmitUnion is not lowered yet.
func (e *Emitter) EmitUnion(gp types.GenericPath) error {
	if u, ok := e.crate.Union(gp.Path); ok {
		return diag.WithSpan(diag.Todo(gp, "union definitions"), u.Span)
	}
	return diag.Todo(gp, "union definitions")
}

// writeDefComment writes the block comment that precedes a definition. The
// size and alignment are included when layoutOf is a concrete type the
// engine can lay out.
func (e *Emitter) writeDefComment(sb *strings.Builder, title string, layoutOf types.TypeRef) {
	if layoutOf.Kind == types.KindInfer {
		fmt.Fprintf(sb, "\n/* %s */\n", title)
		return
	}
	l, err := e.engine.LayoutOf(layoutOf)
	if err != nil {
		fmt.Fprintf(sb, "\n/* %s */\n", title)
		return
	}
	fmt.Fprintf(sb, "\n/* %s: size %d, align %d */\n", title, l.Size, l.Align)
}
