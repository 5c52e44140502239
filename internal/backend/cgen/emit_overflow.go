package cgen

import (
	"fmt"

	"mirc/internal/diag"
	"mirc/internal/mir"
	"mirc/internal/types"
)

var signedMin = map[types.CoreType]string{
	types.I8:    "INT8_MIN",
	types.I16:   "INT16_MIN",
	types.I32:   "INT32_MIN",
	types.I64:   "INT64_MIN",
	types.Isize: "INTPTR_MIN",
	types.I128:  "(-(__int128)(((unsigned __int128)1 << 127) - 1) - 1)",
}

// overflowChecked lowers ADD_OV, SUB_OV, MUL_OV and DIV_OV. The result is
// computed into dst and the program aborts through OVERFLOW_PANIC when it
// does not fit.
func (fe *funcEmitter) overflowChecked(dst string, op mir.BinOp, left, right string) ([]string, error) {
	ty, err := fe.res.LValueType(op.Left)
	if err != nil {
		return nil, err
	}
	if ty.Kind != types.KindPrimitive || !ty.Core.IsInteger() {
		return nil, diag.Bug(ty, "%s on non-integer", op.Op)
	}
	panicCall := fmt.Sprintf("OVERFLOW_PANIC(%q)", op.Op.String())

	switch op.Op {
	case mir.BinAddOv, mir.BinSubOv, mir.BinMulOv:
		builtin := map[mir.BinOpKind]string{
			mir.BinAddOv: "__builtin_add_overflow",
			mir.BinSubOv: "__builtin_sub_overflow",
			mir.BinMulOv: "__builtin_mul_overflow",
		}[op.Op]
		return []string{
			fmt.Sprintf("if(%s(%s, %s, &%s)) %s", builtin, left, right, dst, panicCall),
		}, nil
	case mir.BinDivOv:
		parts := []string{fmt.Sprintf("if(%s == 0) %s", right, panicCall)}
		if ty.Core.IsSigned() {
			parts = append(parts, fmt.Sprintf("if(%s == %s && %s == -1) %s", left, signedMin[ty.Core], right, panicCall))
		}
		return append(parts, fmt.Sprintf("%s = %s / %s", dst, left, right)), nil
	}
	return nil, diag.Bug(op.Left, "%s is not overflow-checked", op.Op)
}
