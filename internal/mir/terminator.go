package mir

import (
	"fmt"
	"strings"

	"mirc/internal/types"
)

// TermKind distinguishes block terminators.
type TermKind uint8

const (
	// TermIncomplete marks a block that must never execute.
	TermIncomplete TermKind = iota
	TermReturn
	// TermDiverge resumes unwinding out of the current frame.
	TermDiverge
	TermGoto
	// TermPanic transfers to a cleanup block.
	TermPanic
	TermIf
	// TermSwitch dispatches on an enum tag; Targets[i] handles tag i.
	TermSwitch
	TermCallValue
	TermCallPath
)

func (k TermKind) String() string {
	switch k {
	case TermIncomplete:
		return "Incomplete"
	case TermReturn:
		return "Return"
	case TermDiverge:
		return "Diverge"
	case TermGoto:
		return "Goto"
	case TermPanic:
		return "Panic"
	case TermIf:
		return "If"
	case TermSwitch:
		return "Switch"
	case TermCallValue:
		return "CallValue"
	case TermCallPath:
		return "CallPath"
	default:
		return fmt.Sprintf("TermKind(%d)", k)
	}
}

// Terminator closes a basic block.
type Terminator struct {
	Kind TermKind

	Goto   BlockID
	Panic  BlockID
	If     IfTerm
	Switch SwitchTerm
	Call   CallTerm
}

// IfTerm branches on a boolean lvalue.
type IfTerm struct {
	Cond LValue
	Then BlockID
	Else BlockID
}

// SwitchTerm dispatches on the tag of Val.
type SwitchTerm struct {
	Val     LValue
	Targets []BlockID
}

// CallTerm calls FnPath (TermCallPath) or FnValue (TermCallValue), stores the
// result in Ret and continues at RetBlock. PanicBlock is the unwind target.
type CallTerm struct {
	Ret        LValue
	FnPath     types.Path
	FnValue    LValue
	Args       []LValue
	RetBlock   BlockID
	PanicBlock BlockID
}

// Return builds a return terminator.
func Return() Terminator { return Terminator{Kind: TermReturn} }

// Diverge builds a diverge terminator.
func Diverge() Terminator { return Terminator{Kind: TermDiverge} }

// Incomplete builds an unreachable marker.
func Incomplete() Terminator { return Terminator{Kind: TermIncomplete} }

// Goto builds an unconditional jump.
func Goto(bb BlockID) Terminator { return Terminator{Kind: TermGoto, Goto: bb} }

// Panic builds a panic transfer to cleanup.
func Panic(cleanup BlockID) Terminator { return Terminator{Kind: TermPanic, Panic: cleanup} }

// If builds a two-way branch.
func If(cond LValue, then, els BlockID) Terminator {
	return Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: then, Else: els}}
}

// Switch builds a tag dispatch.
func Switch(val LValue, targets ...BlockID) Terminator {
	return Terminator{Kind: TermSwitch, Switch: SwitchTerm{Val: val, Targets: targets}}
}

// CallPath builds a direct call.
func CallPath(ret LValue, fn types.Path, args []LValue, resume, cleanup BlockID) Terminator {
	return Terminator{Kind: TermCallPath, Call: CallTerm{
		Ret: ret, FnPath: fn, Args: args, RetBlock: resume, PanicBlock: cleanup,
	}}
}

// CallValue builds an indirect call through a function pointer.
func CallValue(ret LValue, fn LValue, args []LValue, resume, cleanup BlockID) Terminator {
	return Terminator{Kind: TermCallValue, Call: CallTerm{
		Ret: ret, FnValue: fn, Args: args, RetBlock: resume, PanicBlock: cleanup,
	}}
}

// Successors lists the blocks control may reach from t.
func (t Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermGoto:
		return []BlockID{t.Goto}
	case TermPanic:
		return []BlockID{t.Panic}
	case TermIf:
		return []BlockID{t.If.Then, t.If.Else}
	case TermSwitch:
		return append([]BlockID(nil), t.Switch.Targets...)
	case TermCallPath, TermCallValue:
		if t.Call.PanicBlock != NoBlockID {
			return []BlockID{t.Call.RetBlock, t.Call.PanicBlock}
		}
		return []BlockID{t.Call.RetBlock}
	}
	return nil
}

func (t Terminator) String() string {
	switch t.Kind {
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto)
	case TermPanic:
		return fmt.Sprintf("panic bb%d", t.Panic)
	case TermIf:
		return fmt.Sprintf("if %s goto bb%d else bb%d", t.If.Cond, t.If.Then, t.If.Else)
	case TermSwitch:
		parts := make([]string, len(t.Switch.Targets))
		for i, bb := range t.Switch.Targets {
			parts[i] = fmt.Sprintf("bb%d", bb)
		}
		return fmt.Sprintf("switch %s {%s}", t.Switch.Val, strings.Join(parts, ", "))
	case TermCallPath, TermCallValue:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s = ", t.Call.Ret)
		if t.Kind == TermCallPath {
			sb.WriteString(t.Call.FnPath.String())
		} else {
			sb.WriteString("(")
			t.Call.FnValue.write(&sb)
			sb.WriteString(")")
		}
		sb.WriteString("(")
		writeList(&sb, t.Call.Args)
		fmt.Fprintf(&sb, ") goto bb%d", t.Call.RetBlock)
		if t.Call.PanicBlock != NoBlockID {
			fmt.Fprintf(&sb, " else bb%d", t.Call.PanicBlock)
		}
		return sb.String()
	}
	return t.Kind.String()
}
