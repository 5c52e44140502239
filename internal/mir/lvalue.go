package mir

import (
	"strconv"
	"strings"

	"mirc/internal/types"
)

// LValueKind distinguishes address expressions.
type LValueKind uint8

const (
	LVariable LValueKind = iota
	LTemporary
	LArgument
	LReturn
	LStatic
	LField
	LDeref
	LIndex
	LDowncast
)

// LValue denotes where a value lives. Index is the slot number for
// Variable/Temporary/Argument, the field number for Field and the variant
// number for Downcast. Base is the parent of Field/Deref/Index/Downcast, and
// IndexVal holds the index of an Index projection.
type LValue struct {
	Kind     LValueKind
	Index    int
	Static   types.Path
	Base     *LValue
	IndexVal *LValue
}

// Var refers to named variable i.
func Var(i int) LValue { return LValue{Kind: LVariable, Index: i} }

// Temp refers to temporary i.
func Temp(i int) LValue { return LValue{Kind: LTemporary, Index: i} }

// Arg refers to argument i.
func Arg(i int) LValue { return LValue{Kind: LArgument, Index: i} }

// Ret refers to the return slot.
func Ret() LValue { return LValue{Kind: LReturn} }

// StaticRef refers to a static item.
func StaticRef(p types.Path) LValue { return LValue{Kind: LStatic, Static: p} }

// Field projects field i of lv.
func (lv LValue) Field(i int) LValue {
	base := lv
	return LValue{Kind: LField, Index: i, Base: &base}
}

// Deref dereferences lv.
func (lv LValue) Deref() LValue {
	base := lv
	return LValue{Kind: LDeref, Base: &base}
}

// At indexes lv by idx.
func (lv LValue) At(idx LValue) LValue {
	base := lv
	return LValue{Kind: LIndex, Base: &base, IndexVal: &idx}
}

// Downcast views lv as the payload of variant v.
func (lv LValue) Downcast(v int) LValue {
	base := lv
	return LValue{Kind: LDowncast, Index: v, Base: &base}
}

// IsDeref reports whether lv is a dereference projection.
func (lv LValue) IsDeref() bool {
	return lv.Kind == LDeref && lv.Base != nil
}

func (lv LValue) String() string {
	var sb strings.Builder
	lv.write(&sb)
	return sb.String()
}

func (lv LValue) write(sb *strings.Builder) {
	switch lv.Kind {
	case LVariable:
		sb.WriteString("var")
		sb.WriteString(strconv.Itoa(lv.Index))
	case LTemporary:
		sb.WriteString("tmp")
		sb.WriteString(strconv.Itoa(lv.Index))
	case LArgument:
		sb.WriteString("arg")
		sb.WriteString(strconv.Itoa(lv.Index))
	case LReturn:
		sb.WriteString("RETURN")
	case LStatic:
		sb.WriteString(lv.Static.String())
	case LField:
		lv.writeBase(sb)
		sb.WriteString(".")
		sb.WriteString(strconv.Itoa(lv.Index))
	case LDeref:
		sb.WriteString("(*")
		lv.writeBase(sb)
		sb.WriteString(")")
	case LIndex:
		lv.writeBase(sb)
		sb.WriteString("[")
		if lv.IndexVal != nil {
			lv.IndexVal.write(sb)
		}
		sb.WriteString("]")
	case LDowncast:
		sb.WriteString("(")
		lv.writeBase(sb)
		sb.WriteString(" as #")
		sb.WriteString(strconv.Itoa(lv.Index))
		sb.WriteString(")")
	default:
		sb.WriteString("?lvalue")
	}
}

func (lv LValue) writeBase(sb *strings.Builder) {
	if lv.Base == nil {
		sb.WriteString("?")
		return
	}
	lv.Base.write(sb)
}
