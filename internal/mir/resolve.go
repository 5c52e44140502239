package mir

import (
	"mirc/internal/diag"
	"mirc/internal/types"
)

// Definitions answers field and item type queries against the crate
// catalog. Every returned type is already substituted for the generic
// arguments carried by the path.
type Definitions interface {
	StructFieldType(p types.GenericPath, idx int) (types.TypeRef, error)
	VariantFieldTypes(p types.GenericPath, variant int) ([]types.TypeRef, error)
	StaticType(p types.Path) (types.TypeRef, error)
}

// Resolver computes the type of any lvalue in one function body. Slot types
// must already be monomorphized.
type Resolver struct {
	Ret   types.TypeRef
	Args  []types.TypeRef
	Vars  []types.TypeRef
	Temps []types.TypeRef
	Defs  Definitions
}

// NewResolver builds a resolver for body b with monomorphized signature and
// slot types.
func NewResolver(defs Definitions, ret types.TypeRef, args, vars, temps []types.TypeRef) *Resolver {
	return &Resolver{Ret: ret, Args: args, Vars: vars, Temps: temps, Defs: defs}
}

// LValueType returns the type of the place lv denotes. A downcast yields a
// tuple of the variant's field types.
func (r *Resolver) LValueType(lv LValue) (types.TypeRef, error) {
	slot := func(list []types.TypeRef, what string) (types.TypeRef, error) {
		if lv.Index < 0 || lv.Index >= len(list) {
			return types.TypeRef{}, diag.Bug(lv, "%s index out of range", what)
		}
		return list[lv.Index], nil
	}
	switch lv.Kind {
	case LVariable:
		return slot(r.Vars, "variable")
	case LTemporary:
		return slot(r.Temps, "temporary")
	case LArgument:
		return slot(r.Args, "argument")
	case LReturn:
		return r.Ret, nil
	case LStatic:
		if r.Defs == nil {
			return types.TypeRef{}, diag.Bug(lv, "no catalog for static lookup")
		}
		return r.Defs.StaticType(lv.Static)
	case LField:
		base, err := r.base(lv)
		if err != nil {
			return types.TypeRef{}, err
		}
		return r.fieldType(lv, base)
	case LDeref:
		base, err := r.base(lv)
		if err != nil {
			return types.TypeRef{}, err
		}
		if !base.IsPointerLike() {
			return types.TypeRef{}, diag.Bug(base, "deref of non-pointer %s", lv)
		}
		return *base.Inner, nil
	case LIndex:
		base, err := r.base(lv)
		if err != nil {
			return types.TypeRef{}, err
		}
		if (base.Kind != types.KindArray && base.Kind != types.KindSlice) || base.Inner == nil {
			return types.TypeRef{}, diag.Bug(base, "index into non-array %s", lv)
		}
		return *base.Inner, nil
	case LDowncast:
		base, err := r.base(lv)
		if err != nil {
			return types.TypeRef{}, err
		}
		if base.Kind != types.KindPath || base.Binding != types.BindingEnum {
			return types.TypeRef{}, diag.Bug(base, "downcast of non-enum %s", lv)
		}
		if r.Defs == nil {
			return types.TypeRef{}, diag.Bug(base, "no catalog for variant lookup")
		}
		fields, err := r.Defs.VariantFieldTypes(base.Path, lv.Index)
		if err != nil {
			return types.TypeRef{}, err
		}
		return types.Tuple(fields...), nil
	}
	return types.TypeRef{}, diag.Bug(lv, "unknown lvalue kind %d", lv.Kind)
}

func (r *Resolver) base(lv LValue) (types.TypeRef, error) {
	if lv.Base == nil {
		return types.TypeRef{}, diag.Bug(lv, "projection without base")
	}
	return r.LValueType(*lv.Base)
}

func (r *Resolver) fieldType(lv LValue, base types.TypeRef) (types.TypeRef, error) {
	switch base.Kind {
	case types.KindTuple:
		if lv.Index < 0 || lv.Index >= len(base.Elems) {
			return types.TypeRef{}, diag.Bug(base, "tuple field %d out of range", lv.Index)
		}
		return base.Elems[lv.Index], nil
	case types.KindPath:
		switch base.Binding {
		case types.BindingStruct:
			if r.Defs == nil {
				return types.TypeRef{}, diag.Bug(base, "no catalog for field lookup")
			}
			return r.Defs.StructFieldType(base.Path, lv.Index)
		case types.BindingUnion:
			return types.TypeRef{}, diag.Todo(base, "field access on union")
		}
	}
	return types.TypeRef{}, diag.Bug(base, "field %d of non-aggregate", lv.Index)
}
