package cgen

import (
	"context"
	"fmt"
	"strings"

	"mirc/internal/diag"
	"mirc/internal/hir"
	"mirc/internal/mangle"
	"mirc/internal/mir"
	"mirc/internal/mono"
	"mirc/internal/trace"
	"mirc/internal/types"
)

// signature returns the monomorphized return and argument types of fn as
// instantiated by path p.
func signature(p types.Path, fn *hir.Function) (types.TypeRef, []types.TypeRef, error) {
	params := mono.ForPath(p)
	ret, err := params.Monomorph(fn.Return)
	if err != nil {
		return types.TypeRef{}, nil, diag.WithSpan(diag.Bug(p, "return type: %v", err), fn.Span)
	}
	args, err := params.MonomorphAll(fn.ArgTypes())
	if err != nil {
		return types.TypeRef{}, nil, diag.WithSpan(diag.Bug(p, "argument types: %v", err), fn.Span)
	}
	return ret, args, nil
}

// functionHeader renders `R name(T0 arg0, T1 arg1)`, or `R name(void)`.
func (e *Emitter) functionHeader(p types.Path, ret types.TypeRef, args []types.TypeRef) (string, error) {
	var params string
	if len(args) == 0 {
		params = "void"
	} else {
		parts := make([]string, len(args))
		for i, a := range args {
			decl, err := e.ctype(a, named(fmt.Sprintf("arg%d", i)))
			if err != nil {
				return "", diag.At(err, fmt.Sprintf("arg%d", i))
			}
			parts[i] = decl
		}
		params = strings.Join(parts, ", ")
	}
	header, err := e.ctype(ret, named(mangle.Symbol(p)).call(params))
	if err != nil {
		return "", diag.At(err, "return type")
	}
	return header, nil
}

func (e *Emitter) header(p types.Path, fn *hir.Function) (string, error) {
	if fn == nil {
		return "", diag.Bug(p, "missing function definition")
	}
	ret, args, err := signature(p, fn)
	if err != nil {
		return "", err
	}
	h, err := e.functionHeader(p, ret, args)
	if err != nil {
		return "", diag.WithSpan(diag.At(err, "fn "+p.String()), fn.Span)
	}
	return h, nil
}

// EmitFunctionExt declares a function defined outside this program.
func (e *Emitter) EmitFunctionExt(p types.Path, fn *hir.Function) error {
	h, err := e.header(p, fn)
	if err != nil {
		return err
	}
	return e.write("extern " + h + ";\n")
}

// EmitFunctionProto declares a function defined elsewhere in the program.
func (e *Emitter) EmitFunctionProto(p types.Path, fn *hir.Function) error {
	h, err := e.header(p, fn)
	if err != nil {
		return err
	}
	return e.write(h + ";\n")
}

// EmitStaticExt declares a static item.
func (e *Emitter) EmitStaticExt(p types.Path) error {
	ty, err := e.crate.StaticType(p)
	if err != nil {
		return err
	}
	decl, err := e.ctype(ty, named(mangle.Symbol(p)))
	if err != nil {
		return diag.At(err, "static "+p.String())
	}
	return e.write("extern " + decl + ";\n")
}

// EmitConstantExt declares a constant item.
func (e *Emitter) EmitConstantExt(p types.Path) error {
	k, ok := e.crate.Constant(p)
	if !ok {
		return diag.Bug(p, "unknown constant")
	}
	decl, err := e.ctype(k.Type, named(mangle.Symbol(p)))
	if err != nil {
		return diag.WithSpan(diag.At(err, "constant "+p.String()), k.Span)
	}
	return e.write("extern const " + decl + ";\n")
}

// EmitFunctionCode defines fn as instantiated by p: locals, one label per
// block, statements and terminators. Nothing is written unless the whole
// body lowers, and the stream is flushed afterwards.
func (e *Emitter) EmitFunctionCode(ctx context.Context, p types.Path, fn *hir.Function) error {
	if fn == nil || fn.Body == nil {
		return diag.Bug(p, "function has no body")
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, "lower "+p.String(), trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	fe, err := e.newFuncEmitter(p, fn)
	if err != nil {
		return err
	}
	fe.tracer, fe.spanID = trace.FromContext(ctx), span.ID()
	if err := fe.emitBody(); err != nil {
		return diag.WithSpan(diag.At(err, "fn "+p.String()), fn.Span)
	}
	span.WithExtra("blocks", fmt.Sprint(len(fn.Body.Blocks)))
	if err := e.writeBuilder(&fe.buf); err != nil {
		return err
	}
	return e.Flush()
}

// funcEmitter lowers one function body. It carries the per-function type
// resolution context explicitly instead of stashing it on the Emitter.
type funcEmitter struct {
	e      *Emitter
	path   types.Path
	fn     *hir.Function
	body   *mir.Body
	res    *mir.Resolver
	params mono.Params // instantiates types and paths named inside the body
	ret    types.TypeRef
	args   []types.TypeRef
	buf    strings.Builder

	tracer trace.Tracer
	spanID uint64
}

func (e *Emitter) newFuncEmitter(p types.Path, fn *hir.Function) (*funcEmitter, error) {
	ret, args, err := signature(p, fn)
	if err != nil {
		return nil, err
	}
	params := mono.ForPath(p)
	vars := make([]types.TypeRef, len(fn.Body.Vars))
	for i := range fn.Body.Vars {
		t, err := params.Monomorph(fn.Body.Vars[i].Type)
		if err != nil {
			return nil, diag.WithSpan(diag.Bug(p, "var%d type: %v", i, err), fn.Span)
		}
		vars[i] = t
	}
	temps, err := params.MonomorphAll(fn.Body.Temps)
	if err != nil {
		return nil, diag.WithSpan(diag.Bug(p, "temporary types: %v", err), fn.Span)
	}
	return &funcEmitter{
		e:      e,
		path:   p,
		fn:     fn,
		body:   fn.Body,
		res:    mir.NewResolver(e.crate, ret, args, vars, temps),
		params: params,
		ret:    ret,
		args:   args,
	}, nil
}

// monoType instantiates a type named inside the body. Concrete types are
// returned as is.
func (fe *funcEmitter) monoType(ty types.TypeRef) (types.TypeRef, error) {
	if !mono.NeedsMonomorph(ty) {
		return ty, nil
	}
	out, err := fe.params.Monomorph(ty)
	if err != nil {
		return types.TypeRef{}, diag.Bug(ty, "%v", err)
	}
	return out, nil
}

// monoPath instantiates a value path named inside the body.
func (fe *funcEmitter) monoPath(p types.Path) (types.Path, error) {
	out, err := fe.params.MonomorphPath(p)
	if err != nil {
		return types.Path{}, diag.Bug(p, "%v", err)
	}
	return out, nil
}

func (fe *funcEmitter) emitBody() error {
	e := fe.e
	header, err := e.functionHeader(fe.path, fe.ret, fe.args)
	if err != nil {
		return err
	}
	fmt.Fprintf(&fe.buf, "\n// %s\n", fe.path)
	fe.buf.WriteString(header)
	fe.buf.WriteString("\n{\n")

	if err := fe.emitLocal(fe.ret, "rv", "return"); err != nil {
		return err
	}
	for i, t := range fe.res.Vars {
		label := fmt.Sprintf("var%d", i)
		if err := fe.emitLocal(t, label, t.String()); err != nil {
			return diag.At(err, label)
		}
	}
	for i, t := range fe.res.Temps {
		label := fmt.Sprintf("tmp%d", i)
		if err := fe.emitLocal(t, label, t.String()); err != nil {
			return diag.At(err, label)
		}
	}

	for i := range fe.body.Blocks {
		bb := &fe.body.Blocks[i]
		trace.Point(fe.tracer, trace.ScopeNode, fmt.Sprintf("bb%d", i), bb.Term.Kind.String(), fe.spanID)
		fmt.Fprintf(&fe.buf, "bb%d:\n", i)
		for j := range bb.Statements {
			if err := fe.emitStatement(&bb.Statements[j]); err != nil {
				return diag.At(diag.At(err, fmt.Sprintf("stmt %d", j)), fmt.Sprintf("bb%d", i))
			}
		}
		if err := fe.emitTerminator(&bb.Term); err != nil {
			return diag.At(diag.At(err, "terminator"), fmt.Sprintf("bb%d", i))
		}
	}
	fe.buf.WriteString("}\n")
	return nil
}

func (fe *funcEmitter) emitLocal(ty types.TypeRef, name, note string) error {
	decl, err := fe.e.ctype(ty, named(name))
	if err != nil {
		return err
	}
	if fe.e.opts.Comments {
		fmt.Fprintf(&fe.buf, "\t%s;\t// %s\n", decl, note)
		return nil
	}
	fmt.Fprintf(&fe.buf, "\t%s;\n", decl)
	return nil
}
