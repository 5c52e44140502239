package trans_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"mirc/internal/backend/cgen"
	"mirc/internal/diag"
	"mirc/internal/hir"
	"mirc/internal/mangle"
	"mirc/internal/mir"
	"mirc/internal/trans"
	"mirc/internal/types"
)

var (
	u32     = types.Prim(types.U32)
	i32     = types.Prim(types.I32)
	boolean = types.Prim(types.Bool)
	pair    = types.Tuple(i32, boolean)
)

func structType(name string) types.TypeRef {
	return types.Named(types.BindingStruct, types.NewPath("demo", name).Generic())
}

func fnPath(name string, params ...types.TypeRef) types.Path {
	return types.ItemPath(types.NewPath("demo", name).Generic(params...))
}

// linkedCrate has Outer{inner: Inner, pair: (i32, bool), next: &Outer} and
// Inner{a: u32, pair: (i32, bool)}.
func linkedCrate() *hir.Crate {
	c := hir.NewCrate("demo")
	c.AddStruct(&hir.Struct{
		Path: types.NewPath("demo", "Inner"),
		Kind: hir.StructNamed,
		Fields: []hir.Field{
			{Name: "a", Type: u32},
			{Name: "pair", Type: pair},
		},
	})
	c.AddStruct(&hir.Struct{
		Path: types.NewPath("demo", "Outer"),
		Kind: hir.StructNamed,
		Fields: []hir.Field{
			{Name: "inner", Type: structType("Inner")},
			{Name: "pair", Type: pair},
			{Name: "next", Type: types.Ref(structType("Outer"))},
		},
	})
	c.AddStatic(&hir.Static{Path: types.NewPath("demo", "COUNTER"), Type: u32, Mutable: true})
	c.AddConstant(&hir.Constant{Path: types.NewPath("demo", "LIMIT"), Type: u32})
	return c
}

func addFn(c *hir.Crate, name string, ret types.TypeRef, args []types.TypeRef, body *mir.Body) types.Path {
	p := fnPath(name)
	fn := &hir.Function{Path: p, Return: ret, Body: body, External: body == nil}
	for i, a := range args {
		fn.Args = append(fn.Args, hir.Arg{Name: fmt.Sprintf("a%d", i), Type: a})
	}
	c.AddFunction(fn)
	return p
}

func returnsZero() *mir.Body {
	return &mir.Body{Blocks: []mir.Block{{
		Statements: []mir.Statement{mir.AssignStmt(mir.Ret(), mir.UintConst(0))},
		Term:       mir.Return(),
	}}}
}

// recorder logs every generator call in order.
type recorder struct {
	calls []string
}

func (r *recorder) log(format string, args ...any) error {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	return nil
}

func (r *recorder) EmitBoilerplate() error {
	return r.log("boilerplate")
}
func (r *recorder) EmitForwardDecl(ty types.TypeRef) error {
	return r.log("fwd %s", ty)
}
func (r *recorder) EmitType(ty types.TypeRef) error {
	return r.log("type %s", ty)
}
func (r *recorder) EmitStruct(gp types.GenericPath) error {
	return r.log("struct %s", gp)
}
func (r *recorder) EmitUnion(gp types.GenericPath) error {
	return r.log("union %s", gp)
}
func (r *recorder) EmitEnum(gp types.GenericPath) error {
	return r.log("enum %s", gp)
}
func (r *recorder) EmitStaticExt(p types.Path) error {
	return r.log("static %s", p)
}
func (r *recorder) EmitConstantExt(p types.Path) error {
	return r.log("const %s", p)
}
func (r *recorder) EmitFunctionExt(p types.Path, _ *hir.Function) error {
	return r.log("ext %s", p)
}
func (r *recorder) EmitFunctionProto(p types.Path, _ *hir.Function) error {
	return r.log("proto %s", p)
}
func (r *recorder) EmitFunctionCode(_ context.Context, p types.Path, _ *hir.Function) error {
	return r.log("code %s", p)
}
func (r *recorder) Finalise() error {
	return r.log("finalise")
}

func TestTranslateOrder(t *testing.T) {
	c := linkedCrate()
	size := addFn(c, "size", u32, []types.TypeRef{types.Ref(structType("Outer"))}, returnsZero())

	var r recorder
	if err := trans.Translate(context.Background(), c, trans.Unit{Name: "lib", Functions: []trans.FnRequest{{Path: size}}}, &r); err != nil {
		t.Fatalf("translate: %v", err)
	}
	want := []string{
		"boilerplate",
		"fwd (i32, bool)",
		"fwd demo::Inner",
		"fwd demo::Outer",
		"type (i32, bool)",
		"struct demo::Inner",
		"struct demo::Outer",
		"proto demo::size",
		"code demo::size",
		"finalise",
	}
	if got := strings.Join(r.calls, "\n"); got != strings.Join(want, "\n") {
		t.Fatalf("calls:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
}

func TestPrepareCollectsItemsAndCallees(t *testing.T) {
	c := linkedCrate()
	helper := addFn(c, "helper", u32, []types.TypeRef{u32}, nil)
	counter := types.ItemPath(types.NewPath("demo", "COUNTER").Generic())
	limit := types.ItemPath(types.NewPath("demo", "LIMIT").Generic())
	caller := addFn(c, "caller", u32, nil, &mir.Body{
		Temps: []types.TypeRef{u32},
		Blocks: []mir.Block{
			{
				Statements: []mir.Statement{
					mir.AssignStmt(mir.Temp(0), mir.Const(mir.Constant{Kind: mir.ConstConst, Path: limit})),
					mir.AssignStmt(mir.StaticRef(counter), mir.Use(mir.Temp(0))),
				},
				Term: mir.CallPath(mir.Ret(), helper, []mir.LValue{mir.StaticRef(counter)}, 1, mir.NoBlockID),
			},
			{Term: mir.Return()},
		},
	})

	plan, err := trans.Prepare(c, trans.Unit{Functions: []trans.FnRequest{{Path: caller}}})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(plan.Statics) != 1 || plan.Statics[0].String() != "demo::COUNTER" {
		t.Errorf("statics = %v", plan.Statics)
	}
	if len(plan.Constants) != 1 || plan.Constants[0].String() != "demo::LIMIT" {
		t.Errorf("constants = %v", plan.Constants)
	}
	if len(plan.Externs) != 1 || plan.Externs[0].Path.String() != "demo::helper" {
		t.Errorf("externs = %v", plan.Externs)
	}
	if len(plan.Bodies) != 1 {
		t.Errorf("bodies = %v", plan.Bodies)
	}
}

func TestSelfCallIsNotExtern(t *testing.T) {
	c := linkedCrate()
	p := fnPath("spin")
	c.AddFunction(&hir.Function{Path: p, Return: u32, Body: &mir.Body{Blocks: []mir.Block{
		{Term: mir.CallPath(mir.Ret(), p, nil, 1, mir.NoBlockID)},
		{Term: mir.Return()},
	}}})
	plan, err := trans.Prepare(c, trans.Unit{Functions: []trans.FnRequest{{Path: p}, {Path: p}}})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(plan.Externs) != 0 {
		t.Errorf("externs = %v", plan.Externs)
	}
	if len(plan.Bodies) != 1 {
		t.Errorf("duplicate request produced %d bodies", len(plan.Bodies))
	}
}

func TestGenericInstanceTypes(t *testing.T) {
	c := hir.NewCrate("demo")
	c.AddStruct(&hir.Struct{
		Path:   types.NewPath("demo", "Wrap"),
		Params: []string{"T"},
		Kind:   hir.StructTuple,
		Fields: []hir.Field{{Type: types.Generic("T", types.GroupImpl, 0)}},
	})
	tParam := types.Generic("T", types.GroupMethod, 0)
	wrapT := types.Named(types.BindingStruct, types.NewPath("demo", "Wrap").Generic(tParam))
	c.AddFunction(&hir.Function{
		Path:   fnPath("wrap"),
		Params: []string{"T"},
		Args:   []hir.Arg{{Name: "v", Type: tParam}},
		Return: wrapT,
		Body: &mir.Body{Blocks: []mir.Block{{
			Statements: []mir.Statement{mir.AssignStmt(mir.Ret(), mir.StructOf(wrapT.Path, mir.Arg(0)))},
			Term:       mir.Return(),
		}}},
	})

	inst := fnPath("wrap", pair)
	plan, err := trans.Prepare(c, trans.Unit{Functions: []trans.FnRequest{{Path: inst}}})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	var got []string
	for _, ty := range plan.Types {
		got = append(got, ty.String())
	}
	if want := "(i32, bool)|demo::Wrap<(i32, bool)>"; strings.Join(got, "|") != want {
		t.Fatalf("types = %q, want %q", strings.Join(got, "|"), want)
	}
}

func TestTranslateThroughCEmitter(t *testing.T) {
	c := linkedCrate()
	size := addFn(c, "size", u32, []types.TypeRef{types.Ref(structType("Outer"))}, returnsZero())

	var buf bytes.Buffer
	gen := cgen.New(&buf, c, cgen.DefaultOptions())
	if err := trans.Translate(context.Background(), c, trans.Unit{Name: "lib", Functions: []trans.FnRequest{{Path: size}}}, gen); err != nil {
		t.Fatalf("translate: %v", err)
	}
	out := buf.String()
	tup := mangle.TupleName(pair.Elems)
	if n := strings.Count(out, "struct "+tup+" {"); n != 1 {
		t.Errorf("tuple defined %d times:\n%s", n, out)
	}
	inner := "struct " + mangle.StructName(structType("Inner").Path) + " {"
	outer := "struct " + mangle.StructName(structType("Outer").Path) + " {"
	sym := mangle.Symbol(size)
	order := []string{"typedef struct " + tup, "struct " + tup + " {", inner, outer, sym + "(", "\n{\n"}
	last := -1
	for _, s := range order {
		at := strings.Index(out, s)
		if at <= last {
			t.Fatalf("%q out of order in:\n%s", s, out)
		}
		last = at
	}
}

func TestPrepareFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *hir.Crate) types.Path
		bug   bool
	}{
		{
			name:  "unknown function",
			setup: func(c *hir.Crate) types.Path { return fnPath("missing") },
			bug:   true,
		},
		{
			name: "no body",
			setup: func(c *hir.Crate) types.Path {
				p := fnPath("hollow")
				c.AddFunction(&hir.Function{Path: p, Return: u32})
				return p
			},
			bug: true,
		},
		{
			name: "recursive by value",
			setup: func(c *hir.Crate) types.Path {
				c.AddStruct(&hir.Struct{
					Path:   types.NewPath("demo", "Loop"),
					Kind:   hir.StructTuple,
					Fields: []hir.Field{{Type: structType("Loop")}},
				})
				return addFn(c, "loop", u32, []types.TypeRef{structType("Loop")}, returnsZero())
			},
			bug: true,
		},
		{
			name: "call to unknown function",
			setup: func(c *hir.Crate) types.Path {
				return addFn(c, "dangling", u32, nil, &mir.Body{Blocks: []mir.Block{
					{Term: mir.CallPath(mir.Ret(), fnPath("nowhere"), nil, 1, mir.NoBlockID)},
					{Term: mir.Return()},
				}})
			},
			bug: true,
		},
		{
			name: "invalid body",
			setup: func(c *hir.Crate) types.Path {
				return addFn(c, "broken", u32, nil, &mir.Body{Blocks: []mir.Block{{Term: mir.Goto(4)}}})
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := linkedCrate()
			p := tc.setup(c)
			var r recorder
			err := trans.Translate(context.Background(), c, trans.Unit{Name: "bad", Functions: []trans.FnRequest{{Path: p}}}, &r)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.bug && !diag.IsBug(err) {
				t.Errorf("expected BUG, got %v", err)
			}
			if len(r.calls) != 0 {
				t.Errorf("generator called on failure: %v", r.calls)
			}
		})
	}
}
