// Package trans drives the lowering of one translation unit: it validates
// the requested bodies, discovers every type and item they reference and
// hands them to a CodeGenerator in dependency order.
package trans

import (
	"context"

	"mirc/internal/hir"
	"mirc/internal/types"
)

// FnRequest asks for one function instance. Path carries the generic
// arguments of the instance.
type FnRequest struct {
	Path types.Path
}

// Unit is one compilation request. Each unit owns its output stream, so
// units can be translated in parallel against the same catalog.
type Unit struct {
	Name      string
	Functions []FnRequest
}

// CodeGenerator receives the unit in emission order. cgen.Emitter is the
// C implementation.
type CodeGenerator interface {
	EmitBoilerplate() error
	EmitForwardDecl(ty types.TypeRef) error
	EmitType(ty types.TypeRef) error
	EmitStruct(gp types.GenericPath) error
	EmitUnion(gp types.GenericPath) error
	EmitEnum(gp types.GenericPath) error
	EmitStaticExt(p types.Path) error
	EmitConstantExt(p types.Path) error
	EmitFunctionExt(p types.Path, fn *hir.Function) error
	EmitFunctionProto(p types.Path, fn *hir.Function) error
	EmitFunctionCode(ctx context.Context, p types.Path, fn *hir.Function) error
	Finalise() error
}
