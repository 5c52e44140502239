package mir_test

import (
	"strings"
	"testing"

	"mirc/internal/mir"
	"mirc/internal/types"
)

func sampleBody() *mir.Body {
	return &mir.Body{
		Vars:  []mir.Local{{Name: "x", Type: types.Prim(types.I32)}},
		Temps: []types.TypeRef{types.Prim(types.Bool)},
		Blocks: []mir.Block{
			{
				Statements: []mir.Statement{
					mir.AssignStmt(mir.Var(0), mir.Use(mir.Arg(0))),
					mir.AssignStmt(mir.Temp(0), mir.Binary(mir.BinLt, mir.Var(0), mir.Arg(0))),
				},
				Term: mir.If(mir.Temp(0), 1, 2),
			},
			{Term: mir.Return()},
			{Term: mir.Incomplete()},
		},
	}
}

func TestValidate_ValidBody(t *testing.T) {
	if err := mir.Validate(sampleBody(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *mir.Body)
		want   string
	}{
		{
			name:   "goto_out_of_range",
			mutate: func(b *mir.Body) { b.Blocks[1].Term = mir.Goto(7) },
			want:   "goto target bb7 does not exist",
		},
		{
			name: "temp_out_of_range",
			mutate: func(b *mir.Body) {
				b.Blocks[1].Statements = append(b.Blocks[1].Statements, mir.AssignStmt(mir.Temp(3), mir.BoolConst(true)))
			},
			want: "tmp3 out of range",
		},
		{
			name:   "empty_switch",
			mutate: func(b *mir.Body) { b.Blocks[2].Term = mir.Switch(mir.Var(0)) },
			want:   "switch without targets",
		},
		{
			name: "call_panic_target",
			mutate: func(b *mir.Body) {
				callee := types.ItemPath(types.NewPath("crate", "f").Generic())
				b.Blocks[2].Term = mir.CallPath(mir.Ret(), callee, nil, 1, 9)
			},
			want: "call panic target bb9 does not exist",
		},
		{
			name:   "argument_out_of_range",
			mutate: func(b *mir.Body) { b.Blocks[0].Statements[0] = mir.AssignStmt(mir.Var(0), mir.Use(mir.Arg(2))) },
			want:   "arg2 out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleBody()
			tt.mutate(b)
			err := mir.Validate(b, 1)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDumpBody(t *testing.T) {
	var sb strings.Builder
	if err := mir.DumpBody(&sb, "crate::f", sampleBody()); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"fn crate::f:",
		"var0: i32 name=x",
		"tmp0: bool",
		"var0 = arg0;",
		"tmp0 = var0 LT arg0;",
		"if tmp0 goto bb1 else bb2;",
		"Return;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestLValueString(t *testing.T) {
	lv := mir.Var(1).Deref().Field(2).At(mir.Temp(0))
	if got, want := lv.String(), "(*var1).2[tmp0]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := mir.Arg(0).Downcast(1).Field(0).String(), "(arg0 as #1).0"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
