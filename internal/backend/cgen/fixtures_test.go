package cgen_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"mirc/internal/backend/cgen"
	"mirc/internal/hir"
	"mirc/internal/mir"
	"mirc/internal/types"
)

var (
	u32     = types.Prim(types.U32)
	i32     = types.Prim(types.I32)
	u8      = types.Prim(types.U8)
	boolean = types.Prim(types.Bool)
	usz     = types.Prim(types.Usize)
)

func shapePath() types.GenericPath  { return types.NewPath("demo", "Shape").Generic() }
func holderPath() types.GenericPath { return types.NewPath("demo", "Holder").Generic() }
func bufPath() types.GenericPath    { return types.NewPath("demo", "Buf").Generic() }
func pairPath() types.GenericPath   { return types.NewPath("demo", "Pair").Generic() }

func shapeType() types.TypeRef { return types.Named(types.BindingEnum, shapePath()) }

func fnPath(name string, params ...types.TypeRef) types.Path {
	return types.ItemPath(types.NewPath("demo", name).Generic(params...))
}

// demoCrate holds the aggregates most tests lower against.
func demoCrate() *hir.Crate {
	c := hir.NewCrate("demo")
	c.AddEnum(&hir.Enum{
		Path: shapePath().Path,
		Variants: []hir.Variant{
			{Name: "Unit", Kind: hir.VariantUnit},
			{Name: "Tuple", Kind: hir.VariantTuple, Fields: []hir.Field{{Type: i32}}},
			{Name: "Struct", Kind: hir.VariantStruct, Fields: []hir.Field{{Name: "x", Type: boolean}}},
		},
	})
	c.AddStruct(&hir.Struct{
		Path:   holderPath().Path,
		Kind:   hir.StructNamed,
		Fields: []hir.Field{{Name: "items", Type: types.Ref(types.Slice(u32))}},
	})
	c.AddStruct(&hir.Struct{
		Path:   bufPath().Path,
		Kind:   hir.StructNamed,
		Fields: []hir.Field{{Name: "len", Type: u32}, {Name: "data", Type: types.Slice(u8)}},
	})
	c.AddStruct(&hir.Struct{
		Path:   pairPath().Path,
		Params: []string{"T"},
		Kind:   hir.StructTuple,
		Fields: []hir.Field{
			{Type: types.Generic("T", types.GroupImpl, 0)},
			{Type: types.Tuple(i32, boolean)},
		},
	})
	c.AddUnion(&hir.Union{
		Path:   types.NewPath("demo", "Raw"),
		Fields: []hir.Field{{Name: "i", Type: u32}, {Name: "f", Type: types.Prim(types.F32)}},
	})
	c.AddEnum(&hir.Enum{
		Path: types.NewPath("demo", "Two"),
		Variants: []hir.Variant{
			{Name: "A", Kind: hir.VariantTuple, Fields: []hir.Field{{Type: i32}, {Type: i32}}},
		},
	})
	c.AddStatic(&hir.Static{Path: types.NewPath("demo", "COUNTER"), Type: usz, Mutable: true})
	c.AddConstant(&hir.Constant{Path: types.NewPath("demo", "LIMIT"), Type: u32})
	return c
}

// addFn registers a non-generic function with the given signature and body.
func addFn(c *hir.Crate, name string, ret types.TypeRef, args []types.TypeRef, body *mir.Body) types.Path {
	p := fnPath(name)
	fn := &hir.Function{Path: p, Return: ret, Body: body}
	for i, a := range args {
		fn.Args = append(fn.Args, hir.Arg{Name: fmt.Sprintf("a%d", i), Type: a})
	}
	c.AddFunction(fn)
	return p
}

func block(term mir.Terminator, stmts ...mir.Statement) mir.Block {
	return mir.Block{Statements: stmts, Term: term}
}

// lower emits the definition of p and returns the text.
func lower(t *testing.T, c *hir.Crate, p types.Path) string {
	t.Helper()
	out, err := tryLower(c, p, cgen.DefaultOptions())
	if err != nil {
		t.Fatalf("lower %s: %v", p, err)
	}
	return out
}

func tryLower(c *hir.Crate, p types.Path, opts cgen.Options) (string, error) {
	fn, ok := c.Function(p)
	if !ok {
		return "", fmt.Errorf("no function %s", p)
	}
	var buf bytes.Buffer
	e := cgen.New(&buf, c, opts)
	if err := e.EmitFunctionCode(context.Background(), p, fn); err != nil {
		return buf.String(), err
	}
	if err := e.Finalise(); err != nil {
		return buf.String(), err
	}
	return buf.String(), nil
}

// emitWith runs fn against a fresh emitter and returns the flushed text.
func emitWith(t *testing.T, c *hir.Crate, fn func(e *cgen.Emitter) error) string {
	t.Helper()
	var buf bytes.Buffer
	e := cgen.New(&buf, c, cgen.DefaultOptions())
	if err := fn(e); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := e.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	return buf.String()
}
