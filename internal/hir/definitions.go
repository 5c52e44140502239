package hir

import (
	"mirc/internal/diag"
	"mirc/internal/mir"
	"mirc/internal/mono"
	"mirc/internal/types"
)

var _ mir.Definitions = (*Crate)(nil)

// StructFieldType returns field idx of struct p with p's arguments
// substituted.
func (c *Crate) StructFieldType(p types.GenericPath, idx int) (types.TypeRef, error) {
	s, ok := c.Struct(p.Path)
	if !ok {
		return types.TypeRef{}, diag.Bug(p, "unknown struct")
	}
	if idx < 0 || idx >= len(s.Fields) {
		return types.TypeRef{}, diag.WithSpan(diag.Bug(p, "field %d out of range (%d fields)", idx, len(s.Fields)), s.Span)
	}
	return c.subst(p, s.Fields[idx].Type)
}

// StructFieldTypes returns every field type of struct p, substituted.
func (c *Crate) StructFieldTypes(p types.GenericPath) ([]types.TypeRef, error) {
	s, ok := c.Struct(p.Path)
	if !ok {
		return nil, diag.Bug(p, "unknown struct")
	}
	return c.substFields(p, s.Fields)
}

// VariantFieldTypes returns the payload field types of variant idx of enum p,
// substituted. Unit and value variants have none.
func (c *Crate) VariantFieldTypes(p types.GenericPath, idx int) ([]types.TypeRef, error) {
	e, ok := c.Enum(p.Path)
	if !ok {
		return nil, diag.Bug(p, "unknown enum")
	}
	if idx < 0 || idx >= len(e.Variants) {
		return nil, diag.WithSpan(diag.Bug(p, "variant %d out of range (%d variants)", idx, len(e.Variants)), e.Span)
	}
	return c.substFields(p, e.Variants[idx].Fields)
}

// StaticType returns the declared type of a static.
func (c *Crate) StaticType(p types.Path) (types.TypeRef, error) {
	s, ok := c.Static(p)
	if !ok {
		return types.TypeRef{}, diag.Bug(p, "unknown static")
	}
	return s.Type.Clone(), nil
}

// Signature returns the return and argument types of the function at p,
// substituted for the generic arguments p carries.
func (c *Crate) Signature(p types.Path) (types.TypeRef, []types.TypeRef, error) {
	fn, ok := c.Function(p)
	if !ok {
		return types.TypeRef{}, nil, diag.Bug(p, "unknown function")
	}
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

func (c *Crate) subst(p types.GenericPath, ty types.TypeRef) (types.TypeRef, error) {
	out, err := mono.ForType(p).Monomorph(ty)
	if err != nil {
		return types.TypeRef{}, diag.Bug(p, "field type: %v", err)
	}
	return out, nil
}

func (c *Crate) substFields(p types.GenericPath, fields []Field) ([]types.TypeRef, error) {
	out := make([]types.TypeRef, len(fields))
	for i := range fields {
		t, err := c.subst(p, fields[i].Type)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// EnumPayloads returns the substituted payload field types of every variant
// of enum p, in tag order, together with each variant's kind.
func (c *Crate) EnumPayloads(p types.GenericPath) ([]VariantKind, [][]types.TypeRef, error) {
	e, ok := c.Enum(p.Path)
	if !ok {
		return nil, nil, diag.Bug(p, "unknown enum")
	}
	kinds := make([]VariantKind, len(e.Variants))
	payloads := make([][]types.TypeRef, len(e.Variants))
	for i := range e.Variants {
		kinds[i] = e.Variants[i].Kind
		fields, err := c.substFields(p, e.Variants[i].Fields)
		if err != nil {
			return nil, nil, diag.At(err, "variant "+e.Variants[i].Name)
		}
		payloads[i] = fields
	}
	return kinds, payloads, nil
}

// UnionFieldTypes returns every field type of union p, substituted.
func (c *Crate) UnionFieldTypes(p types.GenericPath) ([]types.TypeRef, error) {
	u, ok := c.Union(p.Path)
	if !ok {
		return nil, diag.Bug(p, "unknown union")
	}
	return c.substFields(p, u.Fields)
}
