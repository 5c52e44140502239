package irfile_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mirc/internal/hir"
	"mirc/internal/irfile"
	"mirc/internal/mir"
	"mirc/internal/trans"
	"mirc/internal/types"
)

func sampleBundle() *irfile.Bundle {
	c := hir.NewCrate("demo")
	u32 := types.Prim(types.U32)
	c.AddStruct(&hir.Struct{
		Path:   types.NewPath("demo", "Holder"),
		Kind:   hir.StructNamed,
		Fields: []hir.Field{{Name: "items", Type: types.Ref(types.Slice(u32))}},
	})
	p := types.ItemPath(types.NewPath("demo", "first").Generic())
	c.AddFunction(&hir.Function{
		Path:   p,
		Args:   []hir.Arg{{Name: "h", Type: types.Ref(types.Named(types.BindingStruct, types.NewPath("demo", "Holder").Generic()))}},
		Return: u32,
		Body: &mir.Body{
			Temps: []types.TypeRef{types.Prim(types.Usize)},
			Blocks: []mir.Block{{
				Statements: []mir.Statement{
					mir.AssignStmt(mir.Temp(0), mir.UintConst(0)),
					mir.AssignStmt(mir.Ret(), mir.Use(mir.Arg(0).Deref().Field(0).Deref().At(mir.Temp(0)))),
				},
				Term: mir.Return(),
			}},
		},
	})
	return irfile.New(c, trans.Unit{Name: "lib", Functions: []trans.FnRequest{{Path: p}}})
}

func dump(t *testing.T, b *irfile.Bundle) string {
	t.Helper()
	var sb strings.Builder
	for _, u := range b.Units {
		for _, req := range u.Functions {
			fn, ok := b.Crate.Function(req.Path)
			if !ok {
				t.Fatalf("function %s missing", req.Path)
			}
			if err := mir.DumpBody(&sb, req.Path.String(), fn.Body); err != nil {
				t.Fatalf("dump: %v", err)
			}
		}
	}
	return sb.String()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	want := sampleBundle()
	path := filepath.Join(t.TempDir(), "nested", "demo.mirb")
	if err := irfile.Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := irfile.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Crate.Name != "demo" {
		t.Fatalf("crate name = %q", got.Crate.Name)
	}
	if _, ok := got.Unit("lib"); !ok {
		t.Fatal("unit lib missing after load")
	}
	if a, b := dump(t, want), dump(t, got); a != b {
		t.Fatalf("bodies differ:\n%s\nvs\n%s", a, b)
	}
	fields, err := got.Crate.StructFieldTypes(types.NewPath("demo", "Holder").Generic())
	if err != nil {
		t.Fatalf("field types: %v", err)
	}
	if len(fields) != 1 || fields[0].String() != "&[u32]" {
		t.Fatalf("fields = %v", fields)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	b := sampleBundle()
	b.Schema = irfile.SchemaVersion + 1
	var buf bytes.Buffer
	if err := irfile.Encode(&buf, b); err != nil {
		t.Fatal(err)
	}
	if _, err := irfile.Decode(&buf); !errors.Is(err, irfile.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		units []string
		ok    bool
	}{
		{name: "distinct", units: []string{"a", "b"}, ok: true},
		{name: "duplicate", units: []string{"a", "a"}},
		{name: "empty", units: []string{""}},
		{name: "separator", units: []string{"x/y"}},
		{name: "parent", units: []string{".."}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := irfile.New(hir.NewCrate("demo"))
			for _, n := range tc.units {
				b.Units = append(b.Units, trans.Unit{Name: n})
			}
			if err := b.Check(); (err == nil) != tc.ok {
				t.Fatalf("Check() = %v, ok want %v", err, tc.ok)
			}
		})
	}
	if err := (&irfile.Bundle{Schema: irfile.SchemaVersion}).Check(); err == nil {
		t.Fatal("bundle without crate accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := irfile.Load(filepath.Join(t.TempDir(), "absent.mirb"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
