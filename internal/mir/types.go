package mir

import "mirc/internal/types"

// BlockID indexes Body.Blocks; block 0 is the entry.
type BlockID int32

const (
	// EntryBlock is where every body starts executing.
	EntryBlock BlockID = 0
	// NoBlockID marks an absent block reference.
	NoBlockID BlockID = -1
)

// Local is a surface-visible variable slot.
type Local struct {
	Name string
	Type types.TypeRef
}

// Body is the control-flow graph of one function.
type Body struct {
	Vars   []Local
	Temps  []types.TypeRef
	Blocks []Block
}

// Block is a basic block: statements closed by exactly one terminator.
type Block struct {
	Statements []Statement
	Term       Terminator
}

// StatementKind distinguishes statement kinds.
type StatementKind uint8

const (
	// StmtAssign writes an rvalue into an lvalue.
	StmtAssign StatementKind = iota
	// StmtDrop releases a slot; destructor order was fixed upstream.
	StmtDrop
)

// DropKind distinguishes drop flavours.
type DropKind uint8

const (
	DropDeep DropKind = iota
	DropShallow
)

// Statement is one step of a basic block.
type Statement struct {
	Kind   StatementKind
	Assign Assign
	Drop   Drop
}

// Assign stores Src into Dst.
type Assign struct {
	Dst LValue
	Src RValue
}

// Drop releases Slot.
type Drop struct {
	Kind DropKind
	Slot LValue
}

// AssignStmt builds an assignment statement.
func AssignStmt(dst LValue, src RValue) Statement {
	return Statement{Kind: StmtAssign, Assign: Assign{Dst: dst, Src: src}}
}

// DropStmt builds a drop statement.
func DropStmt(kind DropKind, slot LValue) Statement {
	return Statement{Kind: StmtDrop, Drop: Drop{Kind: kind, Slot: slot}}
}
