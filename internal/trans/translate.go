package trans

import (
	"context"
	"fmt"
	"strconv"

	"mirc/internal/diag"
	"mirc/internal/hir"
	"mirc/internal/mangle"
	"mirc/internal/mir"
	"mirc/internal/trace"
	"mirc/internal/types"
)

// Instance is one function instance of a plan.
type Instance struct {
	Path types.Path
	Fn   *hir.Function
}

// Plan is everything a unit emits, in emission order.
type Plan struct {
	// Types are in definition order: by-value contents precede their owner.
	Types     []types.TypeRef
	Statics   []types.Path
	Constants []types.Path
	// Externs are declared but not defined in this unit.
	Externs []Instance
	// Bodies are defined in this unit.
	Bodies []Instance
}

// Prepare resolves and validates the unit's requests and collects the
// definitions they reach.
func Prepare(crate *hir.Crate, unit Unit) (*Plan, error) {
	plan := &Plan{}
	c := newCollector(crate)
	defined := make(map[string]bool)

	for _, req := range unit.Functions {
		fn, ok := crate.Function(req.Path)
		if !ok {
			return nil, diag.Bug(req.Path, "requested function not in crate")
		}
		switch {
		case fn.External:
			plan.Externs = append(plan.Externs, Instance{Path: req.Path, Fn: fn})
		case fn.Body == nil:
			return nil, diag.WithSpan(diag.Bug(req.Path, "function has no body"), fn.Span)
		default:
			sym := mangle.Symbol(req.Path)
			if defined[sym] {
				continue
			}
			defined[sym] = true
			if err := mir.Validate(fn.Body, len(fn.Args)); err != nil {
				return nil, fmt.Errorf("%s: %w", req.Path, err)
			}
			plan.Bodies = append(plan.Bodies, Instance{Path: req.Path, Fn: fn})
		}
		if err := c.signature(req.Path); err != nil {
			return nil, diag.At(err, "fn "+req.Path.String())
		}
	}
	for _, inst := range plan.Bodies {
		if err := c.body(inst.Path, inst.Fn.Body); err != nil {
			return nil, diag.WithSpan(diag.At(err, "fn "+inst.Path.String()), inst.Fn.Span)
		}
	}

	declared := make(map[string]bool)
	for _, inst := range plan.Externs {
		declared[mangle.Symbol(inst.Path)] = true
	}
	for _, p := range c.callees {
		sym := mangle.Symbol(p)
		if defined[sym] || declared[sym] {
			continue
		}
		declared[sym] = true
		fn, _ := crate.Function(p)
		plan.Externs = append(plan.Externs, Instance{Path: p, Fn: fn})
	}

	plan.Types = c.types
	plan.Statics = c.statics
	plan.Constants = c.constants
	return plan, nil
}

// Translate lowers unit through gen: boilerplate, forward declarations,
// type definitions, item declarations, prototypes and finally the bodies.
func Translate(ctx context.Context, crate *hir.Crate, unit Unit, gen CodeGenerator) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "translate "+unit.Name, trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	plan, err := Prepare(crate, unit)
	if err != nil {
		return fmt.Errorf("unit %s: %w", unit.Name, err)
	}
	span.WithExtra("types", strconv.Itoa(len(plan.Types))).
		WithExtra("bodies", strconv.Itoa(len(plan.Bodies)))

	if err := Emit(ctx, plan, gen); err != nil {
		return fmt.Errorf("unit %s: %w", unit.Name, err)
	}
	return nil
}

// Emit feeds a prepared plan to gen.
func Emit(ctx context.Context, plan *Plan, gen CodeGenerator) error {
	if err := gen.EmitBoilerplate(); err != nil {
		return err
	}
	for _, ty := range plan.Types {
		if err := gen.EmitForwardDecl(ty); err != nil {
			return err
		}
	}
	for _, ty := range plan.Types {
		if err := emitDefinition(gen, ty); err != nil {
			return err
		}
	}
	for _, p := range plan.Statics {
		if err := gen.EmitStaticExt(p); err != nil {
			return err
		}
	}
	for _, p := range plan.Constants {
		if err := gen.EmitConstantExt(p); err != nil {
			return err
		}
	}
	for _, inst := range plan.Externs {
		if err := gen.EmitFunctionExt(inst.Path, inst.Fn); err != nil {
			return err
		}
	}
	for _, inst := range plan.Bodies {
		if err := gen.EmitFunctionProto(inst.Path, inst.Fn); err != nil {
			return err
		}
	}
	for _, inst := range plan.Bodies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := gen.EmitFunctionCode(ctx, inst.Path, inst.Fn); err != nil {
			return err
		}
	}
	return gen.Finalise()
}

func emitDefinition(gen CodeGenerator, ty types.TypeRef) error {
	if ty.Kind != types.KindPath {
		return gen.EmitType(ty)
	}
	switch ty.Binding {
	case types.BindingStruct:
		return gen.EmitStruct(ty.Path)
	case types.BindingEnum:
		return gen.EmitEnum(ty.Path)
	case types.BindingUnion:
		return gen.EmitUnion(ty.Path)
	}
	return diag.Bug(ty, "no definition for %s path", ty.Binding)
}
