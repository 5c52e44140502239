package cgen_test

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"mirc/internal/hir"
	"mirc/internal/mangle"
	"mirc/internal/mir"
	"mirc/internal/types"
)

// scenarioSpec is one entry of testdata/scenarios.yaml. Expectations may
// use {sym} for the mangled name of the lowered function.
type scenarioSpec struct {
	Name         string   `yaml:"name"`
	Fixture      string   `yaml:"fixture"`
	Expect       []string `yaml:"expect"`
	ExpectOrder  []string `yaml:"expect_order"`
	ExpectUnique []string `yaml:"expect_unique"`
	ExpectNot    []string `yaml:"expect_not"`
	Skip         string   `yaml:"skip,omitempty"`
}

type scenarioFile struct {
	Scenarios []scenarioSpec `yaml:"scenarios"`
}

// fixtures register one function in the crate and return its path.
var fixtures = map[string]func(c *hir.Crate) types.Path{
	"shape_tuple_variant": func(c *hir.Crate) types.Path {
		return addFn(c, "make_shape", shapeType(), nil, &mir.Body{
			Temps: []types.TypeRef{i32},
			Blocks: []mir.Block{block(mir.Return(),
				mir.AssignStmt(mir.Temp(0), mir.IntConst(5)),
				mir.AssignStmt(mir.Ret(), mir.EnumVariantOf(shapePath(), 1, mir.Temp(0))),
			)},
		})
	},
	"add_u32": func(c *hir.Crate) types.Path {
		return addFn(c, "add", u32, []types.TypeRef{u32, u32}, &mir.Body{
			Blocks: []mir.Block{block(mir.Return(),
				mir.AssignStmt(mir.Ret(), mir.Binary(mir.BinAdd, mir.Arg(0), mir.Arg(1))),
			)},
		})
	},
	"slice_field_index": func(c *hir.Crate) types.Path {
		holder := types.Named(types.BindingStruct, holderPath())
		return addFn(c, "get", u32, []types.TypeRef{types.Ref(holder), usz}, &mir.Body{
			Blocks: []mir.Block{block(mir.Return(),
				mir.AssignStmt(mir.Ret(), mir.Use(mir.Arg(0).Deref().Field(0).Deref().At(mir.Arg(1)))),
			)},
		})
	},
	"switch_partial_targets": func(c *hir.Crate) types.Path {
		return addFn(c, "classify", u32, []types.TypeRef{shapeType()}, &mir.Body{
			Blocks: []mir.Block{
				block(mir.Switch(mir.Arg(0), 1, 2)),
				block(mir.Return(), mir.AssignStmt(mir.Ret(), mir.UintConst(0))),
				block(mir.Return(), mir.AssignStmt(mir.Ret(), mir.UintConst(1))),
			},
		})
	},
	"downcast_read": func(c *hir.Crate) types.Path {
		return addFn(c, "payload", i32, []types.TypeRef{types.Ref(shapeType())}, &mir.Body{
			Blocks: []mir.Block{block(mir.Return(),
				mir.AssignStmt(mir.Ret(), mir.Use(mir.Arg(0).Deref().Downcast(1).Field(0))),
			)},
		})
	},
	"byte_literal": func(c *hir.Crate) types.Path {
		return addFn(c, "bytes", types.Ref(types.Slice(u8)), nil, &mir.Body{
			Blocks: []mir.Block{block(mir.Return(),
				mir.AssignStmt(mir.Ret(), mir.BytesConst([]byte{0, '"', '\\', 0xff, 'z'})),
			)},
		})
	},
	"static_and_const": func(c *hir.Crate) types.Path {
		counter := types.ItemPath(types.NewPath("demo", "COUNTER").Generic())
		limit := types.ItemPath(types.NewPath("demo", "LIMIT").Generic())
		return addFn(c, "bump", types.Unit(), nil, &mir.Body{
			Vars: []mir.Local{{Name: "l", Type: u32}, {Name: "f", Type: types.Fn(nil, types.Unit())}},
			Blocks: []mir.Block{block(mir.Return(),
				mir.AssignStmt(mir.StaticRef(counter), mir.UintConst(1)),
				mir.AssignStmt(mir.Var(0), mir.Const(mir.Constant{Kind: mir.ConstConst, Path: limit})),
				mir.AssignStmt(mir.Var(1), mir.Const(mir.Constant{Kind: mir.ConstItemAddr, Path: fnPath("bump")})),
			)},
		})
	},
}

func TestScenarios(t *testing.T) {
	data, err := os.ReadFile("testdata/scenarios.yaml")
	if err != nil {
		t.Fatalf("read scenarios: %v", err)
	}
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		t.Fatalf("parse scenarios: %v", err)
	}
	if len(file.Scenarios) == 0 {
		t.Fatal("no scenarios")
	}

	for _, sc := range file.Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			if sc.Skip != "" {
				t.Skip(sc.Skip)
			}
			build, ok := fixtures[sc.Fixture]
			if !ok {
				t.Fatalf("unknown fixture %q", sc.Fixture)
			}
			c := demoCrate()
			p := build(c)
			out := lower(t, c, p)
			expand := func(s string) string {
				return strings.ReplaceAll(s, "{sym}", mangle.Symbol(p))
			}

			for _, exp := range sc.Expect {
				if !strings.Contains(out, expand(exp)) {
					t.Errorf("expected %q in output:\n%s", expand(exp), out)
				}
			}
			last := -1
			for _, exp := range sc.ExpectOrder {
				at := strings.Index(out, expand(exp))
				if at <= last {
					t.Errorf("expected %q after position %d in output:\n%s", expand(exp), last, out)
					break
				}
				last = at
			}
			for _, exp := range sc.ExpectUnique {
				if n := strings.Count(out, expand(exp)); n != 1 {
					t.Errorf("expected %q exactly once, found %d times:\n%s", expand(exp), n, out)
				}
			}
			for _, exp := range sc.ExpectNot {
				if strings.Contains(out, expand(exp)) {
					t.Errorf("unexpected %q in output:\n%s", expand(exp), out)
				}
			}
		})
	}
}
