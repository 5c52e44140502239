package cgen

import (
	"strconv"
	"strings"

	"mirc/internal/diag"
	"mirc/internal/mangle"
	"mirc/internal/mir"
	"mirc/internal/types"
)

// lvalue renders the C address expression for lv.
func (fe *funcEmitter) lvalue(lv mir.LValue) (string, error) {
	var sb strings.Builder
	if err := fe.writeLValue(&sb, lv); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (fe *funcEmitter) writeLValue(sb *strings.Builder, lv mir.LValue) error {
	switch lv.Kind {
	case mir.LVariable:
		sb.WriteString("var")
		sb.WriteString(strconv.Itoa(lv.Index))
	case mir.LTemporary:
		sb.WriteString("tmp")
		sb.WriteString(strconv.Itoa(lv.Index))
	case mir.LArgument:
		sb.WriteString("arg")
		sb.WriteString(strconv.Itoa(lv.Index))
	case mir.LReturn:
		sb.WriteString("rv")
	case mir.LStatic:
		sb.WriteString(mangle.Symbol(lv.Static))

	case mir.LField:
		if lv.Base == nil {
			return diag.Bug(lv, "field projection without base")
		}
		if err := fe.writeLValue(sb, *lv.Base); err != nil {
			return err
		}
		sb.WriteString("._")
		sb.WriteString(strconv.Itoa(lv.Index))

	case mir.LDeref:
		if lv.Base == nil {
			return diag.Bug(lv, "deref without base")
		}
		return fe.writeDeref(sb, lv)

	case mir.LDowncast:
		if lv.Base == nil {
			return diag.Bug(lv, "downcast without base")
		}
		if err := fe.writeLValue(sb, *lv.Base); err != nil {
			return err
		}
		sb.WriteString(".DATA.var_")
		sb.WriteString(strconv.Itoa(lv.Index))

	case mir.LIndex:
		return fe.writeIndex(sb, lv)

	default:
		return diag.Bug(lv, "unknown lvalue kind %d", lv.Kind)
	}
	return nil
}

// writeDeref renders a dereference. A reference to a struct with an
// unsized tail is wide, so the struct is reached through its data pointer.
func (fe *funcEmitter) writeDeref(sb *strings.Builder, lv mir.LValue) error {
	baseTy, err := fe.res.LValueType(*lv.Base)
	if err != nil {
		return err
	}
	if baseTy.IsPointerLike() && baseTy.Inner != nil && baseTy.Inner.Kind == types.KindPath {
		wide, err := fe.e.policy.IsWideRef(baseTy)
		if err != nil {
			return err
		}
		if wide {
			ptr, err := fe.e.ctype(*baseTy.Inner, abstract().pointer())
			if err != nil {
				return err
			}
			sb.WriteString("(*(")
			sb.WriteString(ptr)
			sb.WriteString(")")
			if err := fe.writeLValue(sb, *lv.Base); err != nil {
				return err
			}
			sb.WriteString(".PTR)")
			return nil
		}
	}
	sb.WriteString("(*")
	if err := fe.writeLValue(sb, *lv.Base); err != nil {
		return err
	}
	sb.WriteString(")")
	return nil
}

// writeIndex renders an index projection. A slice is only reachable behind
// a wide reference, so its elements are addressed through the reference's
// data pointer cast to the element type.
func (fe *funcEmitter) writeIndex(sb *strings.Builder, lv mir.LValue) error {
	if lv.Base == nil || lv.IndexVal == nil {
		return diag.Bug(lv, "index projection without base or index")
	}
	baseTy, err := fe.res.LValueType(*lv.Base)
	if err != nil {
		return err
	}
	idx, err := fe.lvalue(*lv.IndexVal)
	if err != nil {
		return err
	}
	switch baseTy.Kind {
	case types.KindSlice:
		if !lv.Base.IsDeref() {
			return diag.Bug(lv, "slice index not reached through a deref")
		}
		elemPtr, err := fe.e.ctype(*baseTy.Inner, abstract().pointer())
		if err != nil {
			return err
		}
		wide, err := fe.lvalue(*lv.Base.Base)
		if err != nil {
			return err
		}
		sb.WriteString("((")
		sb.WriteString(elemPtr)
		sb.WriteString(")")
		sb.WriteString(wide)
		sb.WriteString(".PTR)[")
		sb.WriteString(idx)
		sb.WriteString("]")
	case types.KindArray:
		if err := fe.writeLValue(sb, *lv.Base); err != nil {
			return err
		}
		sb.WriteString("[")
		sb.WriteString(idx)
		sb.WriteString("]")
	default:
		return diag.Bug(baseTy, "index into non-array %s", lv)
	}
	return nil
}
