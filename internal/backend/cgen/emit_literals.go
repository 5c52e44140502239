package cgen

import (
	"math"
	"strconv"
	"strings"

	"mirc/internal/diag"
	"mirc/internal/layout"
	"mirc/internal/mangle"
	"mirc/internal/mir"
	"mirc/internal/types"
)

// constant lowers a literal stored into dst, whose type is dstTy.
func (fe *funcEmitter) constant(dst string, dstTy types.TypeRef, c mir.Constant) ([]string, error) {
	switch c.Kind {
	case mir.ConstInt:
		return []string{dst + " = " + intLiteral(c.Int)}, nil
	case mir.ConstUint:
		return []string{dst + " = 0x" + strconv.FormatUint(c.Uint, 16)}, nil
	case mir.ConstFloat:
		return []string{dst + " = " + floatLiteral(c.Float)}, nil
	case mir.ConstBool:
		return []string{dst + " = " + strconv.FormatBool(c.Bool)}, nil
	case mir.ConstBytes:
		return fe.byteString(dst, dstTy, c.Bytes)
	case mir.ConstStaticString:
		return fe.byteString(dst, dstTy, []byte(c.Text))
	case mir.ConstConst, mir.ConstItemAddr:
		p, err := fe.monoPath(c.Path)
		if err != nil {
			return nil, err
		}
		if c.Kind == mir.ConstItemAddr {
			return []string{dst + " = &" + mangle.Symbol(p)}, nil
		}
		return []string{dst + " = " + mangle.Symbol(p)}, nil
	}
	return nil, diag.Bug(c, "unknown constant kind %d", c.Kind)
}

// byteString stores a byte or text literal. A wide destination gets the data
// pointer and the true byte count; a pointer to a fixed-size array only gets
// the data pointer.
func (fe *funcEmitter) byteString(dst string, dstTy types.TypeRef, b []byte) ([]string, error) {
	lit := cString(b)
	if !dstTy.IsPointerLike() {
		return nil, diag.Bug(dstTy, "byte literal stored into non-reference")
	}
	repr, err := fe.e.policy.PointerRepr(*dstTy.Inner)
	if err != nil {
		return nil, err
	}
	switch repr {
	case layout.ReprWideStr, layout.ReprWideSlice:
		return []string{
			dst + ".PTR = " + lit,
			dst + ".META = " + strconv.Itoa(len(b)),
		}, nil
	case layout.ReprNarrowArray, layout.ReprNarrow:
		return []string{dst + " = (void *)" + lit}, nil
	}
	return nil, diag.Bug(dstTy, "byte literal stored into %s", repr.CName())
}

func intLiteral(v int64) string {
	if v == math.MinInt64 {
		return "INT64_MIN"
	}
	return strconv.FormatInt(v, 10)
}

func floatLiteral(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INFINITY"
	case math.IsInf(f, -1):
		return "-INFINITY"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// cString quotes b as a C string literal. Printable ASCII passes through
// except quote and backslash; everything else is a three-digit octal escape
// so a following digit can never extend it. A '?' directly after another
// '?' is escaped to rule out trigraphs.
func cString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 2)
	sb.WriteByte('"')
	prevQuestion := false
	for _, c := range b {
		switch {
		case c == '?' && prevQuestion:
			writeOctal(&sb, c)
			prevQuestion = false
			continue
		case c == '"' || c == '\\' || c < 0x20 || c > 0x7e:
			writeOctal(&sb, c)
		default:
			sb.WriteByte(c)
		}
		prevQuestion = c == '?'
	}
	sb.WriteByte('"')
	return sb.String()
}

func writeOctal(sb *strings.Builder, c byte) {
	sb.WriteByte('\\')
	sb.WriteByte('0' + c>>6)
	sb.WriteByte('0' + (c>>3)&7)
	sb.WriteByte('0' + c&7)
}
