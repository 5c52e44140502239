package mir

import (
	"fmt"
	"io"
)

// DumpBody writes a human-readable listing of b, headed by name.
func DumpBody(w io.Writer, name string, b *Body) error {
	if w == nil || b == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "fn %s:\n", name); err != nil {
		return err
	}
	if len(b.Vars) > 0 {
		fmt.Fprintf(w, "  vars:\n")
		for i, l := range b.Vars {
			label := l.Name
			if label == "" {
				label = "_"
			}
			fmt.Fprintf(w, "    var%d: %s name=%s\n", i, l.Type, label)
		}
	}
	if len(b.Temps) > 0 {
		fmt.Fprintf(w, "  temps:\n")
		for i, t := range b.Temps {
			fmt.Fprintf(w, "    tmp%d: %s\n", i, t)
		}
	}
	for i := range b.Blocks {
		bb := &b.Blocks[i]
		fmt.Fprintf(w, "  bb%d:\n", i)
		for j := range bb.Statements {
			fmt.Fprintf(w, "    %s;\n", bb.Statements[j])
		}
		if _, err := fmt.Fprintf(w, "    %s;\n", bb.Term); err != nil {
			return err
		}
	}
	return nil
}

func (s Statement) String() string {
	switch s.Kind {
	case StmtAssign:
		return fmt.Sprintf("%s = %s", s.Assign.Dst, s.Assign.Src)
	case StmtDrop:
		if s.Drop.Kind == DropShallow {
			return fmt.Sprintf("drop shallow %s", s.Drop.Slot)
		}
		return fmt.Sprintf("drop %s", s.Drop.Slot)
	}
	return "?stmt"
}
