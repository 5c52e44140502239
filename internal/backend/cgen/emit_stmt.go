package cgen

import (
	"fmt"
	"strconv"
	"strings"

	"mirc/internal/diag"
	"mirc/internal/hir"
	"mirc/internal/mir"
	"mirc/internal/types"
)

var binOpC = map[mir.BinOpKind]string{
	mir.BinAdd:    "+",
	mir.BinSub:    "-",
	mir.BinMul:    "*",
	mir.BinDiv:    "/",
	mir.BinMod:    "%",
	mir.BinBitOr:  "|",
	mir.BinBitAnd: "&",
	mir.BinBitXor: "^",
	mir.BinShl:    "<<",
	mir.BinShr:    ">>",
	mir.BinEq:     "==",
	mir.BinNe:     "!=",
	mir.BinGt:     ">",
	mir.BinGe:     ">=",
	mir.BinLt:     "<",
	mir.BinLe:     "<=",
}

func (fe *funcEmitter) emitStatement(stmt *mir.Statement) error {
	switch stmt.Kind {
	case mir.StmtDrop:
		if fe.e.opts.Comments {
			fmt.Fprintf(&fe.buf, "\t// drop %s\n", stmt.Drop.Slot)
		}
		return nil
	case mir.StmtAssign:
		parts, err := fe.assign(stmt.Assign.Dst, stmt.Assign.Src)
		if err != nil {
			return err
		}
		var line string
		if len(parts) > 0 {
			line = strings.Join(parts, ";\n\t") + ";"
		}
		if fe.e.opts.Comments {
			if line != "" {
				line += "\t"
			}
			line += fmt.Sprintf("// %s = %s", stmt.Assign.Dst, stmt.Assign.Src)
		}
		if line != "" {
			fe.buf.WriteString("\t" + line + "\n")
		}
		return nil
	}
	return diag.Bug(stmt, "unknown statement kind %d", stmt.Kind)
}

// assign lowers one assignment into C statements without their terminating
// semicolons. Multi-field values become one store per field, in source
// order.
func (fe *funcEmitter) assign(dstLV mir.LValue, src mir.RValue) ([]string, error) {
	dst, err := fe.lvalue(dstLV)
	if err != nil {
		return nil, err
	}

	switch src.Kind {
	case mir.RUse:
		v, err := fe.lvalue(src.Use)
		if err != nil {
			return nil, err
		}
		return []string{dst + " = " + v}, nil

	case mir.RConstant:
		dstTy, err := fe.res.LValueType(dstLV)
		if err != nil {
			return nil, err
		}
		return fe.constant(dst, dstTy, src.Constant)

	case mir.RSizedArray:
		if src.SizedArray.Count == 0 {
			return nil, nil
		}
		v, err := fe.lvalue(src.SizedArray.Val)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("for(size_t i = 0; i < %d; i++) %s[i] = %s", src.SizedArray.Count, dst, v)}, nil

	case mir.RBorrow:
		return fe.borrow(dst, src.Borrow)

	case mir.RCast:
		return fe.cast(dst, src.Cast)

	case mir.RBinOp:
		return fe.binOp(dst, src.BinOp)

	case mir.RUniOp:
		v, err := fe.lvalue(src.UniOp.Val)
		if err != nil {
			return nil, err
		}
		switch src.UniOp.Op {
		case mir.UniNeg:
			return []string{dst + " = -" + v}, nil
		case mir.UniInv:
			ty, err := fe.res.LValueType(src.UniOp.Val)
			if err != nil {
				return nil, err
			}
			if ty.IsCore(types.Bool) {
				return []string{dst + " = !" + v}, nil
			}
			return []string{dst + " = ~" + v}, nil
		}
		return nil, diag.Bug(src, "unknown unary operator %d", src.UniOp.Op)

	case mir.RDstMeta:
		v, err := fe.lvalue(src.DstMeta)
		if err != nil {
			return nil, err
		}
		return []string{dst + " = " + v + ".META"}, nil

	case mir.RDstPtr:
		v, err := fe.lvalue(src.DstPtr)
		if err != nil {
			return nil, err
		}
		return []string{dst + " = " + v + ".PTR"}, nil

	case mir.RMakeDst:
		ptr, err := fe.lvalue(src.MakeDst.Ptr)
		if err != nil {
			return nil, err
		}
		meta, err := fe.lvalue(src.MakeDst.Meta)
		if err != nil {
			return nil, err
		}
		return []string{dst + ".PTR = " + ptr, dst + ".META = " + meta}, nil

	case mir.RTuple:
		return fe.fieldStores(dst+"._", src.Tuple, "")

	case mir.RArray:
		return fe.fieldStores(dst+"[", src.Array, "]")

	case mir.RVariant:
		return fe.variant(dst, src.Variant)

	case mir.RStruct:
		lit := src.Struct
		if lit.Variant == mir.NoVariant {
			return fe.fieldStores(dst+"._", lit.Vals, "")
		}
		parts := []string{dst + ".TAG = " + strconv.Itoa(lit.Variant)}
		stores, err := fe.fieldStores(fmt.Sprintf("%s.DATA.var_%d._", dst, lit.Variant), lit.Vals, "")
		if err != nil {
			return nil, err
		}
		return append(parts, stores...), nil
	}
	return nil, diag.Bug(src, "unknown rvalue kind %d", src.Kind)
}

// fieldStores writes vals[j] into prefix+j+suffix for every j.
func (fe *funcEmitter) fieldStores(prefix string, vals []mir.LValue, suffix string) ([]string, error) {
	parts := make([]string, 0, len(vals))
	for j, val := range vals {
		v, err := fe.lvalue(val)
		if err != nil {
			return nil, err
		}
		parts = append(parts, prefix+strconv.Itoa(j)+suffix+" = "+v)
	}
	return parts, nil
}

// borrow takes the address of b.Val. Borrowing through a wide reference
// copies that reference instead of wrapping it again.
func (fe *funcEmitter) borrow(dst string, b mir.Borrow) ([]string, error) {
	if b.Val.IsDeref() || fieldRoot(b.Val).IsDeref() {
		ty, err := fe.res.LValueType(b.Val)
		if err != nil {
			return nil, err
		}
		sized, err := fe.e.policy.IsSized(ty)
		if err != nil {
			return nil, err
		}
		if !sized {
			return fe.borrowUnsized(dst, b.Val)
		}
	}
	v, err := fe.lvalue(b.Val)
	if err != nil {
		return nil, err
	}
	return []string{dst + " = &" + v}, nil
}

// fieldRoot strips field projections from lv.
func fieldRoot(lv mir.LValue) mir.LValue {
	for lv.Kind == mir.LField && lv.Base != nil {
		lv = *lv.Base
	}
	return lv
}

// borrowUnsized reborrows an unsized place. The metadata comes from the wide
// reference the place was reached through, since only the last field of a
// struct may be unsized.
func (fe *funcEmitter) borrowUnsized(dst string, val mir.LValue) ([]string, error) {
	if val.IsDeref() {
		inner, err := fe.lvalue(*val.Base)
		if err != nil {
			return nil, err
		}
		return []string{dst + " = " + inner}, nil
	}
	root := fieldRoot(val)
	if !root.IsDeref() {
		return nil, diag.Bug(val, "unsized field not reached through a deref")
	}
	wide, err := fe.lvalue(*root.Base)
	if err != nil {
		return nil, err
	}
	v, err := fe.lvalue(val)
	if err != nil {
		return nil, err
	}
	return []string{dst + ".PTR = &" + v, dst + ".META = " + wide + ".META"}, nil
}

func (fe *funcEmitter) cast(dst string, c mir.Cast) ([]string, error) {
	v, err := fe.lvalue(c.Val)
	if err != nil {
		return nil, err
	}
	if c.Type, err = fe.monoType(c.Type); err != nil {
		return nil, err
	}
	srcTy, err := fe.res.LValueType(c.Val)
	if err != nil {
		return nil, err
	}
	srcWide, err := fe.e.policy.IsWideRef(srcTy)
	if err != nil {
		return nil, err
	}
	dstWide, err := fe.e.policy.IsWideRef(c.Type)
	if err != nil {
		return nil, err
	}

	switch {
	case srcWide && dstWide:
		srcMeta, err := fe.e.policy.Metadata(*srcTy.Inner)
		if err != nil {
			return nil, err
		}
		dstMeta, err := fe.e.policy.Metadata(*c.Type.Inner)
		if err != nil {
			return nil, err
		}
		if srcMeta != dstMeta {
			return nil, diag.Bug(c.Type, "cast between wide references with %s and %s metadata", srcMeta, dstMeta)
		}
		return []string{dst + ".PTR = " + v + ".PTR", dst + ".META = " + v + ".META"}, nil
	case dstWide:
		return nil, diag.Bug(c.Type, "cast from narrow %s to wide reference", srcTy)
	}

	target, err := fe.e.ctypeName(c.Type)
	if err != nil {
		return nil, err
	}
	if srcTy.Kind == types.KindPath && srcTy.Binding == types.BindingEnum {
		disc, err := fe.discriminant(srcTy, v+".TAG")
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%s = (%s)%s", dst, target, disc)}, nil
	}
	if srcWide {
		if !c.Type.IsPointerLike() {
			return nil, diag.Bug(c.Type, "cast of wide reference to non-pointer")
		}
		return []string{fmt.Sprintf("%s = (%s)%s.PTR", dst, target, v)}, nil
	}
	return []string{fmt.Sprintf("%s = (%s)%s", dst, target, v)}, nil
}

func (fe *funcEmitter) binOp(dst string, op mir.BinOp) ([]string, error) {
	l, err := fe.lvalue(op.Left)
	if err != nil {
		return nil, err
	}
	r, err := fe.lvalue(op.Right)
	if err != nil {
		return nil, err
	}
	if op.Op.IsOverflowChecked() {
		return fe.overflowChecked(dst, op, l, r)
	}
	if op.Op == mir.BinMod {
		ty, err := fe.res.LValueType(op.Left)
		if err != nil {
			return nil, err
		}
		switch {
		case ty.IsCore(types.F32):
			return []string{fmt.Sprintf("%s = fmodf(%s, %s)", dst, l, r)}, nil
		case ty.IsCore(types.F64):
			return []string{fmt.Sprintf("%s = fmod(%s, %s)", dst, l, r)}, nil
		}
	}
	sym, ok := binOpC[op.Op]
	if !ok {
		return nil, diag.Bug(op.Left, "unknown binary operator %s", op.Op)
	}
	return []string{fmt.Sprintf("%s = %s %s %s", dst, l, sym, r)}, nil
}

// discriminant maps the tag of a payload-free enum to its declared value.
// A variant without an explicit value takes its predecessor's plus one.
func (fe *funcEmitter) discriminant(ty types.TypeRef, tag string) (string, error) {
	en, ok := fe.e.crate.Enum(ty.Path.Path)
	if !ok {
		return "", diag.Bug(ty, "cast of unknown enum")
	}
	if len(en.Variants) == 0 {
		return "", diag.Bug(ty, "cast of empty enum")
	}
	values := make([]int64, len(en.Variants))
	identity := true
	next := int64(0)
	for i, v := range en.Variants {
		switch v.Kind {
		case hir.VariantValue:
			next = v.Value
		case hir.VariantUnit:
		default:
			return "", diag.WithSpan(diag.Bug(ty, "cast of enum with %s variant %s", v.Kind, v.Name), en.Span)
		}
		values[i] = next
		identity = identity && next == int64(i)
		next++
	}
	if identity {
		return tag, nil
	}
	var sb strings.Builder
	sb.WriteString("(")
	last := len(values) - 1
	for i := 0; i < last; i++ {
		fmt.Fprintf(&sb, "%s == %d ? %d : ", tag, i, values[i])
	}
	fmt.Fprintf(&sb, "%d)", values[last])
	return sb.String(), nil
}

// variant builds enum variant v.Index from a single payload value.
func (fe *funcEmitter) variant(dst string, v mir.Variant) ([]string, error) {
	crate := fe.e.crate
	if u, ok := crate.Union(v.Path.Path); ok {
		return nil, diag.WithSpan(diag.Todo(v.Path, "union variant construction"), u.Span)
	}
	en, ok := crate.Enum(v.Path.Path)
	if !ok {
		return nil, diag.Bug(v.Path, "variant of unknown type")
	}
	if v.Index < 0 || v.Index >= len(en.Variants) {
		return nil, diag.Bug(v.Path, "variant %d out of range", v.Index)
	}
	parts := []string{dst + ".TAG = " + strconv.Itoa(v.Index)}
	if en.Variants[v.Index].Kind == hir.VariantValue {
		return parts, nil
	}
	fields, err := crate.VariantFieldTypes(v.Path, v.Index)
	if err != nil {
		return nil, err
	}
	switch len(fields) {
	case 0:
		return parts, nil
	case 1:
		val, err := fe.lvalue(v.Val)
		if err != nil {
			return nil, err
		}
		return append(parts, fmt.Sprintf("%s.DATA.var_%d._0 = %s", dst, v.Index, val)), nil
	}
	return nil, diag.WithSpan(diag.Todo(v.Path, "multi-field variant from single value"), en.Span)
}
