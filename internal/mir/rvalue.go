package mir

import (
	"fmt"
	"strconv"
	"strings"

	"mirc/internal/types"
)

// ConstantKind distinguishes literal constants.
type ConstantKind uint8

const (
	ConstInt ConstantKind = iota
	ConstUint
	ConstFloat
	ConstBool
	// ConstBytes is a byte string literal.
	ConstBytes
	// ConstStaticString is a UTF-8 text literal.
	ConstStaticString
	// ConstConst refers to another constant item.
	ConstConst
	// ConstItemAddr takes the address of an item.
	ConstItemAddr
)

// Constant is a literal operand.
type Constant struct {
	Kind  ConstantKind
	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	Bytes []byte
	Text  string
	Path  types.Path
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstUint:
		return "0x" + strconv.FormatUint(c.Uint, 16)
	case ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstBytes:
		return "b" + strconv.QuoteToASCII(string(c.Bytes))
	case ConstStaticString:
		return strconv.QuoteToASCII(c.Text)
	case ConstConst:
		return "const " + c.Path.String()
	case ConstItemAddr:
		return "addr " + c.Path.String()
	default:
		return "?const"
	}
}

// BinOpKind enumerates binary operators.
type BinOpKind uint8

const (
	BinAdd BinOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	// BinAddOv and friends are overflow-checked variants.
	BinAddOv
	BinSubOv
	BinMulOv
	BinDivOv
	BinBitOr
	BinBitAnd
	BinBitXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinGt
	BinGe
	BinLt
	BinLe
)

var binOpNames = [...]string{
	BinAdd:    "ADD",
	BinSub:    "SUB",
	BinMul:    "MUL",
	BinDiv:    "DIV",
	BinMod:    "MOD",
	BinAddOv:  "ADD_OV",
	BinSubOv:  "SUB_OV",
	BinMulOv:  "MUL_OV",
	BinDivOv:  "DIV_OV",
	BinBitOr:  "BIT_OR",
	BinBitAnd: "BIT_AND",
	BinBitXor: "BIT_XOR",
	BinShl:    "BIT_SHL",
	BinShr:    "BIT_SHR",
	BinEq:     "EQ",
	BinNe:     "NE",
	BinGt:     "GT",
	BinGe:     "GE",
	BinLt:     "LT",
	BinLe:     "LE",
}

func (op BinOpKind) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("BinOp(%d)", op)
}

// IsOverflowChecked reports whether op must trap on overflow.
func (op BinOpKind) IsOverflowChecked() bool {
	switch op {
	case BinAddOv, BinSubOv, BinMulOv, BinDivOv:
		return true
	}
	return false
}

// UniOpKind enumerates unary operators.
type UniOpKind uint8

const (
	UniNeg UniOpKind = iota
	// UniInv is bitwise NOT on integers and logical NOT on bool.
	UniInv
)

func (op UniOpKind) String() string {
	switch op {
	case UniNeg:
		return "NEG"
	case UniInv:
		return "INV"
	}
	return fmt.Sprintf("UniOp(%d)", op)
}

// BorrowKind distinguishes borrow flavours.
type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	BorrowUnique
	BorrowOwned
)

// RValueKind distinguishes value-producing operations.
type RValueKind uint8

const (
	RUse RValueKind = iota
	RConstant
	RSizedArray
	RBorrow
	RCast
	RBinOp
	RUniOp
	RDstMeta
	RDstPtr
	RMakeDst
	RTuple
	RArray
	RVariant
	RStruct
)

// NoVariant marks a struct construction that selects no enum variant.
const NoVariant = -1

// RValue is the right-hand side of an assignment. Kind selects the payload.
type RValue struct {
	Kind RValueKind

	Use        LValue
	Constant   Constant
	SizedArray SizedArray
	Borrow     Borrow
	Cast       Cast
	BinOp      BinOp
	UniOp      UniOp
	DstMeta    LValue
	DstPtr     LValue
	MakeDst    MakeDst
	Tuple      []LValue
	Array      []LValue
	Variant    Variant
	Struct     StructLit
}

// SizedArray repeats Val Count times.
type SizedArray struct {
	Val   LValue
	Count uint64
}

// Borrow takes a reference to Val.
type Borrow struct {
	Kind BorrowKind
	Val  LValue
}

// Cast converts Val to Type.
type Cast struct {
	Val  LValue
	Type types.TypeRef
}

// BinOp applies Op to Left and Right.
type BinOp struct {
	Op    BinOpKind
	Left  LValue
	Right LValue
}

// UniOp applies Op to Val.
type UniOp struct {
	Op  UniOpKind
	Val LValue
}

// MakeDst assembles a wide reference from its halves.
type MakeDst struct {
	Ptr  LValue
	Meta LValue
}

// Variant builds enum variant Index of Path from a single payload value.
type Variant struct {
	Path  types.GenericPath
	Index int
	Val   LValue
}

// StructLit builds a struct, or an enum variant when Variant != NoVariant.
type StructLit struct {
	Path    types.GenericPath
	Variant int
	Vals    []LValue
}

// Use copies lv.
func Use(lv LValue) RValue { return RValue{Kind: RUse, Use: lv} }

// Const wraps a constant.
func Const(c Constant) RValue { return RValue{Kind: RConstant, Constant: c} }

// IntConst is a signed integer literal.
func IntConst(v int64) RValue { return Const(Constant{Kind: ConstInt, Int: v}) }

// UintConst is an unsigned integer literal.
func UintConst(v uint64) RValue { return Const(Constant{Kind: ConstUint, Uint: v}) }

// BoolConst is a boolean literal.
func BoolConst(v bool) RValue { return Const(Constant{Kind: ConstBool, Bool: v}) }

// BytesConst is a byte string literal.
func BytesConst(b []byte) RValue {
	return Const(Constant{Kind: ConstBytes, Bytes: append([]byte(nil), b...)})
}

// StringConst is a text literal.
func StringConst(s string) RValue { return Const(Constant{Kind: ConstStaticString, Text: s}) }

// BorrowOf borrows lv.
func BorrowOf(kind BorrowKind, lv LValue) RValue {
	return RValue{Kind: RBorrow, Borrow: Borrow{Kind: kind, Val: lv}}
}

// CastTo casts lv to ty.
func CastTo(lv LValue, ty types.TypeRef) RValue {
	return RValue{Kind: RCast, Cast: Cast{Val: lv, Type: ty}}
}

// Binary applies op.
func Binary(op BinOpKind, l, r LValue) RValue {
	return RValue{Kind: RBinOp, BinOp: BinOp{Op: op, Left: l, Right: r}}
}

// Unary applies op.
func Unary(op UniOpKind, lv LValue) RValue {
	return RValue{Kind: RUniOp, UniOp: UniOp{Op: op, Val: lv}}
}

// TupleOf builds a tuple.
func TupleOf(vals ...LValue) RValue { return RValue{Kind: RTuple, Tuple: vals} }

// ArrayOf builds an array.
func ArrayOf(vals ...LValue) RValue { return RValue{Kind: RArray, Array: vals} }

// StructOf builds a struct value.
func StructOf(p types.GenericPath, vals ...LValue) RValue {
	return RValue{Kind: RStruct, Struct: StructLit{Path: p, Variant: NoVariant, Vals: vals}}
}

// EnumVariantOf builds variant v of enum p from its fields.
func EnumVariantOf(p types.GenericPath, v int, vals ...LValue) RValue {
	return RValue{Kind: RStruct, Struct: StructLit{Path: p, Variant: v, Vals: vals}}
}

func (rv RValue) String() string {
	var sb strings.Builder
	switch rv.Kind {
	case RUse:
		rv.Use.write(&sb)
	case RConstant:
		sb.WriteString(rv.Constant.String())
	case RSizedArray:
		fmt.Fprintf(&sb, "[%s; %d]", rv.SizedArray.Val, rv.SizedArray.Count)
	case RBorrow:
		sb.WriteString("&")
		switch rv.Borrow.Kind {
		case BorrowUnique:
			sb.WriteString("mut ")
		case BorrowOwned:
			sb.WriteString("move ")
		}
		rv.Borrow.Val.write(&sb)
	case RCast:
		fmt.Fprintf(&sb, "%s as %s", rv.Cast.Val, rv.Cast.Type)
	case RBinOp:
		fmt.Fprintf(&sb, "%s %s %s", rv.BinOp.Left, rv.BinOp.Op, rv.BinOp.Right)
	case RUniOp:
		fmt.Fprintf(&sb, "%s %s", rv.UniOp.Op, rv.UniOp.Val)
	case RDstMeta:
		fmt.Fprintf(&sb, "META(%s)", rv.DstMeta)
	case RDstPtr:
		fmt.Fprintf(&sb, "PTR(%s)", rv.DstPtr)
	case RMakeDst:
		fmt.Fprintf(&sb, "DST(%s, %s)", rv.MakeDst.Ptr, rv.MakeDst.Meta)
	case RTuple:
		sb.WriteString("(")
		writeList(&sb, rv.Tuple)
		sb.WriteString(")")
	case RArray:
		sb.WriteString("[")
		writeList(&sb, rv.Array)
		sb.WriteString("]")
	case RVariant:
		fmt.Fprintf(&sb, "%s #%d (%s)", rv.Variant.Path, rv.Variant.Index, rv.Variant.Val)
	case RStruct:
		sb.WriteString(rv.Struct.Path.String())
		if rv.Struct.Variant != NoVariant {
			fmt.Fprintf(&sb, " #%d", rv.Struct.Variant)
		}
		sb.WriteString(" { ")
		writeList(&sb, rv.Struct.Vals)
		sb.WriteString(" }")
	default:
		sb.WriteString("?rvalue")
	}
	return sb.String()
}

func writeList(sb *strings.Builder, vals []LValue) {
	for i, v := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		v.write(sb)
	}
}
