package buildpipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mirc/internal/buildpipeline"
	"mirc/internal/diag"
	"mirc/internal/hir"
	"mirc/internal/irfile"
	"mirc/internal/mir"
	"mirc/internal/trans"
	"mirc/internal/types"
)

func unitBundle() *irfile.Bundle {
	c := hir.NewCrate("demo")
	u32 := types.Prim(types.U32)
	add := types.ItemPath(types.NewPath("demo", "add").Generic())
	c.AddFunction(&hir.Function{
		Path:   add,
		Args:   []hir.Arg{{Name: "a", Type: u32}, {Name: "b", Type: u32}},
		Return: u32,
		Body: &mir.Body{Blocks: []mir.Block{{
			Statements: []mir.Statement{mir.AssignStmt(mir.Ret(), mir.Binary(mir.BinAdd, mir.Arg(0), mir.Arg(1)))},
			Term:       mir.Return(),
		}}},
	})
	hollow := types.ItemPath(types.NewPath("demo", "hollow").Generic())
	c.AddFunction(&hir.Function{Path: hollow, Return: u32})

	return irfile.New(c,
		trans.Unit{Name: "math", Functions: []trans.FnRequest{{Path: add}}},
		trans.Unit{Name: "broken", Functions: []trans.FnRequest{{Path: hollow}}},
	)
}

func TestBuildWritesOneFilePerUnit(t *testing.T) {
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "in.mirb")
	if err := irfile.Save(bundlePath, unitBundle()); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")
	var rec buildpipeline.Recorder
	res, err := buildpipeline.Build(context.Background(), &buildpipeline.Request{
		BundlePath: bundlePath,
		OutDir:     out,
		Jobs:       2,
		Comments:   true,
		Progress:   &rec,
	})
	if err == nil {
		t.Fatal("expected the broken unit to fail the build")
	}
	if !diag.IsBug(err) {
		t.Errorf("expected a BUG error, got %v", err)
	}
	if len(res.Units) != 2 {
		t.Fatalf("units = %v", res.Units)
	}

	data, readErr := os.ReadFile(buildpipeline.OutputPath(out, "math"))
	if readErr != nil {
		t.Fatalf("math output: %v", readErr)
	}
	if !strings.Contains(string(data), "rv = arg0 + arg1;") {
		t.Errorf("unexpected math output:\n%s", data)
	}
	if _, statErr := os.Stat(buildpipeline.OutputPath(out, "broken")); !os.IsNotExist(statErr) {
		t.Errorf("failed unit left output behind: %v", statErr)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 1 {
		t.Errorf("output dir holds %d entries, want 1", len(entries))
	}

	final := map[string]buildpipeline.Status{}
	for _, ev := range rec.Events() {
		if ev.Unit != "" && ev.Stage == buildpipeline.StageTranslate {
			final[ev.Unit] = ev.Status
		}
	}
	if final["math"] != buildpipeline.StatusDone || final["broken"] != buildpipeline.StatusError {
		t.Errorf("final statuses = %v", final)
	}
	if !res.Timings.Has(buildpipeline.StageLoad) || !res.Timings.Has(buildpipeline.StageTranslate) {
		t.Error("stage timings missing")
	}
	if len(res.Report.Phases) != 3 {
		t.Errorf("timer phases = %v", res.Report.Phases)
	}
}

func TestBuildSelectedUnits(t *testing.T) {
	out := t.TempDir()
	res, err := buildpipeline.Build(context.Background(), &buildpipeline.Request{
		Bundle: unitBundle(),
		OutDir: out,
		Units:  []string{"math"},
		Target: "i686",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(res.Units) != 1 || res.Units[0].Output != buildpipeline.OutputPath(out, "math") {
		t.Fatalf("units = %+v", res.Units)
	}

	if _, err := buildpipeline.Build(context.Background(), &buildpipeline.Request{
		Bundle: unitBundle(),
		OutDir: out,
		Units:  []string{"absent"},
	}); err == nil {
		t.Fatal("unknown unit accepted")
	}
}

func TestBuildRejectsBadRequests(t *testing.T) {
	if _, err := buildpipeline.Build(context.Background(), nil); err == nil {
		t.Fatal("nil request accepted")
	}
	if _, err := buildpipeline.Build(context.Background(), &buildpipeline.Request{OutDir: t.TempDir()}); err == nil {
		t.Fatal("request without bundle accepted")
	}
	if _, err := buildpipeline.Build(context.Background(), &buildpipeline.Request{
		Bundle: unitBundle(),
		OutDir: t.TempDir(),
		Target: "pdp11",
	}); err == nil {
		t.Fatal("unknown target accepted")
	}
}
