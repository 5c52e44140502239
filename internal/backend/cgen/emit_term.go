package cgen

import (
	"fmt"
	"strings"

	"mirc/internal/diag"
	"mirc/internal/mangle"
	"mirc/internal/mir"
	"mirc/internal/types"
)

// emitTerminator lowers the block terminator. Every successor is an explicit
// goto; nothing falls through into the next label.
func (fe *funcEmitter) emitTerminator(t *mir.Terminator) error {
	b := &fe.buf
	switch t.Kind {
	case mir.TermIncomplete:
		b.WriteString("\tabort();\n")
	case mir.TermReturn:
		b.WriteString("\treturn rv;\n")
	case mir.TermDiverge:
		b.WriteString("\t_Unwind_Resume();\n")
	case mir.TermGoto:
		fmt.Fprintf(b, "\tgoto bb%d;\n", t.Goto)
	case mir.TermPanic:
		fmt.Fprintf(b, "\tgoto bb%d; /* panic */\n", t.Panic)

	case mir.TermIf:
		cond, err := fe.lvalue(t.If.Cond)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tif(%s) goto bb%d; else goto bb%d;\n", cond, t.If.Then, t.If.Else)

	case mir.TermSwitch:
		ty, err := fe.res.LValueType(t.Switch.Val)
		if err != nil {
			return err
		}
		if ty.Kind != types.KindPath || ty.Binding != types.BindingEnum {
			return diag.Bug(ty, "switch over non-enum %s", t.Switch.Val)
		}
		val, err := fe.lvalue(t.Switch.Val)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tswitch(%s.TAG) {\n", val)
		for tag, bb := range t.Switch.Targets {
			fmt.Fprintf(b, "\t\tcase %d: goto bb%d;\n", tag, bb)
		}
		b.WriteString("\t\tdefault: abort();\n\t}\n")

	case mir.TermCallPath, mir.TermCallValue:
		return fe.emitCall(t)

	default:
		return diag.Bug(t, "unknown terminator kind %d", t.Kind)
	}
	return nil
}

func (fe *funcEmitter) emitCall(t *mir.Terminator) error {
	ret, err := fe.lvalue(t.Call.Ret)
	if err != nil {
		return err
	}
	var callee string
	if t.Kind == mir.TermCallPath {
		fn, err := fe.monoPath(t.Call.FnPath)
		if err != nil {
			return err
		}
		callee = mangle.Symbol(fn)
	} else {
		fn, err := fe.lvalue(t.Call.FnValue)
		if err != nil {
			return err
		}
		callee = "(" + fn + ")"
	}
	args := make([]string, len(t.Call.Args))
	for i, a := range t.Call.Args {
		s, err := fe.lvalue(a)
		if err != nil {
			return diag.At(err, fmt.Sprintf("call argument %d", i))
		}
		args[i] = s
	}
	fmt.Fprintf(&fe.buf, "\t%s = %s(%s);\n", ret, callee, strings.Join(args, ", "))
	fmt.Fprintf(&fe.buf, "\tgoto bb%d;\n", t.Call.RetBlock)
	return nil
}
