package mir

import (
	"errors"
	"fmt"
)

// Validate checks structural invariants of a body with argCount arguments:
// every block target exists, every slot reference is in range and every
// switch has at least one target.
// Returns the joined list of violations, or nil.
func Validate(b *Body, argCount int) error {
	if b == nil {
		return nil
	}
	var errs []error
	if len(b.Blocks) == 0 {
		errs = append(errs, errors.New("body has no blocks"))
	}
	v := validator{body: b, args: argCount}
	for i := range b.Blocks {
		bb := &b.Blocks[i]
		for j := range bb.Statements {
			ctx := fmt.Sprintf("bb%d stmt %d", i, j)
			st := &bb.Statements[j]
			switch st.Kind {
			case StmtAssign:
				errs = append(errs, v.lvalue(st.Assign.Dst, ctx)...)
				errs = append(errs, v.rvalue(st.Assign.Src, ctx)...)
			case StmtDrop:
				errs = append(errs, v.lvalue(st.Drop.Slot, ctx)...)
			default:
				errs = append(errs, fmt.Errorf("%s: unknown statement kind %d", ctx, st.Kind))
			}
		}
		errs = append(errs, v.terminator(bb.Term, fmt.Sprintf("bb%d term", i))...)
	}
	return errors.Join(errs...)
}

type validator struct {
	body *Body
	args int
}

func (v validator) block(id BlockID, what, ctx string) error {
	if id < 0 || int(id) >= len(v.body.Blocks) {
		return fmt.Errorf("%s: %s target bb%d does not exist", ctx, what, id)
	}
	return nil
}

func (v validator) lvalue(lv LValue, ctx string) []error {
	var errs []error
	slot := func(what string, n int) {
		if lv.Index < 0 || lv.Index >= n {
			errs = append(errs, fmt.Errorf("%s: %s%d out of range (%d slots)", ctx, what, lv.Index, n))
		}
	}
	switch lv.Kind {
	case LVariable:
		slot("var", len(v.body.Vars))
	case LTemporary:
		slot("tmp", len(v.body.Temps))
	case LArgument:
		slot("arg", v.args)
	case LReturn, LStatic:
	case LField, LDeref, LDowncast:
		if lv.Base == nil {
			return []error{fmt.Errorf("%s: projection without base", ctx)}
		}
		if lv.Kind != LDeref && lv.Index < 0 {
			errs = append(errs, fmt.Errorf("%s: negative projection index %d", ctx, lv.Index))
		}
		errs = append(errs, v.lvalue(*lv.Base, ctx)...)
	case LIndex:
		if lv.Base == nil || lv.IndexVal == nil {
			return []error{fmt.Errorf("%s: index projection missing operand", ctx)}
		}
		errs = append(errs, v.lvalue(*lv.Base, ctx)...)
		errs = append(errs, v.lvalue(*lv.IndexVal, ctx)...)
	default:
		errs = append(errs, fmt.Errorf("%s: unknown lvalue kind %d", ctx, lv.Kind))
	}
	return errs
}

func (v validator) rvalue(rv RValue, ctx string) []error {
	var errs []error
	use := func(lvs ...LValue) {
		for _, lv := range lvs {
			errs = append(errs, v.lvalue(lv, ctx)...)
		}
	}
	switch rv.Kind {
	case RUse:
		use(rv.Use)
	case RConstant:
	case RSizedArray:
		use(rv.SizedArray.Val)
	case RBorrow:
		use(rv.Borrow.Val)
	case RCast:
		use(rv.Cast.Val)
	case RBinOp:
		use(rv.BinOp.Left, rv.BinOp.Right)
	case RUniOp:
		use(rv.UniOp.Val)
	case RDstMeta:
		use(rv.DstMeta)
	case RDstPtr:
		use(rv.DstPtr)
	case RMakeDst:
		use(rv.MakeDst.Ptr, rv.MakeDst.Meta)
	case RTuple:
		use(rv.Tuple...)
	case RArray:
		use(rv.Array...)
	case RVariant:
		if rv.Variant.Index < 0 {
			errs = append(errs, fmt.Errorf("%s: negative variant index %d", ctx, rv.Variant.Index))
		}
		use(rv.Variant.Val)
	case RStruct:
		if rv.Struct.Variant < NoVariant {
			errs = append(errs, fmt.Errorf("%s: invalid variant index %d", ctx, rv.Struct.Variant))
		}
		use(rv.Struct.Vals...)
	default:
		errs = append(errs, fmt.Errorf("%s: unknown rvalue kind %d", ctx, rv.Kind))
	}
	return errs
}

func (v validator) terminator(t Terminator, ctx string) []error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	switch t.Kind {
	case TermIncomplete, TermReturn, TermDiverge:
	case TermGoto:
		add(v.block(t.Goto, "goto", ctx))
	case TermPanic:
		add(v.block(t.Panic, "panic", ctx))
	case TermIf:
		errs = append(errs, v.lvalue(t.If.Cond, ctx)...)
		add(v.block(t.If.Then, "if then", ctx))
		add(v.block(t.If.Else, "if else", ctx))
	case TermSwitch:
		if len(t.Switch.Targets) == 0 {
			errs = append(errs, fmt.Errorf("%s: switch without targets", ctx))
		}
		errs = append(errs, v.lvalue(t.Switch.Val, ctx)...)
		for j, bb := range t.Switch.Targets {
			add(v.block(bb, fmt.Sprintf("switch case %d", j), ctx))
		}
	case TermCallPath, TermCallValue:
		errs = append(errs, v.lvalue(t.Call.Ret, ctx)...)
		if t.Kind == TermCallValue {
			errs = append(errs, v.lvalue(t.Call.FnValue, ctx)...)
		}
		for _, a := range t.Call.Args {
			errs = append(errs, v.lvalue(a, ctx)...)
		}
		add(v.block(t.Call.RetBlock, "call return", ctx))
		if t.Call.PanicBlock != NoBlockID {
			add(v.block(t.Call.PanicBlock, "call panic", ctx))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unknown terminator kind %d", ctx, t.Kind))
	}
	return errs
}
