// Package mono substitutes concrete types for generic placeholders. Every
// result is a private copy: inputs are never modified, so catalog
// definitions can be shared across concurrent translation units.
package mono

import (
	"fmt"

	"mirc/internal/types"
)

// Params is one substitution: Impl fills GroupImpl placeholders, Method fills
// GroupMethod placeholders and Self fills GroupSelf.
type Params struct {
	Impl   []types.TypeRef
	Method []types.TypeRef
	Self   *types.TypeRef
}

// ForPath derives the substitution implied by a value path: the generic
// arguments of a free function fill the method group; a UFCS path takes its
// impl arguments from the Self type and its method arguments from the path.
func ForPath(p types.Path) Params {
	switch p.Kind {
	case types.PathGeneric:
		return Params{Method: p.Generic.Params}
	default:
		var out Params
		if p.Self != nil {
			self := *p.Self
			out.Self = &self
			if self.Kind == types.KindPath {
				out.Impl = self.Path.Params
			}
		}
		out.Method = p.Params
		return out
	}
}

// ForType derives the substitution for the fields of a path type.
func ForType(gp types.GenericPath) Params {
	return Params{Impl: gp.Params}
}

// IsEmpty reports whether p substitutes nothing.
func (p Params) IsEmpty() bool {
	return len(p.Impl) == 0 && len(p.Method) == 0 && p.Self == nil
}

// UnresolvedError reports a placeholder the substitution cannot fill.
type UnresolvedError struct {
	Generic types.GenericRef
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("mono: no argument for generic %s (group %d, index %d)",
		e.Generic.Name, e.Generic.Group, e.Generic.Index)
}

// Monomorph returns a fully substituted copy of ty. Types that contain no
// placeholder come back as a plain clone.
func (p Params) Monomorph(ty types.TypeRef) (types.TypeRef, error) {
	if !NeedsMonomorph(ty) {
		return ty.Clone(), nil
	}
	return p.subst(ty)
}

// MonomorphAll substitutes every type in list.
func (p Params) MonomorphAll(list []types.TypeRef) ([]types.TypeRef, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]types.TypeRef, len(list))
	for i := range list {
		t, err := p.Monomorph(list[i])
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// MonomorphPath substitutes the generic arguments carried by a value path.
func (p Params) MonomorphPath(in types.Path) (types.Path, error) {
	out := in
	var err error
	if out.Generic, err = p.genericPath(in.Generic); err != nil {
		return types.Path{}, err
	}
	if out.Trait, err = p.genericPath(in.Trait); err != nil {
		return types.Path{}, err
	}
	if in.Self != nil {
		self, err := p.Monomorph(*in.Self)
		if err != nil {
			return types.Path{}, err
		}
		out.Self = &self
	}
	if out.Params, err = p.MonomorphAll(in.Params); err != nil {
		return types.Path{}, err
	}
	return out, nil
}

func (p Params) genericPath(gp types.GenericPath) (types.GenericPath, error) {
	out := gp.Clone()
	params, err := p.MonomorphAll(gp.Params)
	if err != nil {
		return types.GenericPath{}, err
	}
	out.Params = params
	return out, nil
}

func (p Params) subst(ty types.TypeRef) (types.TypeRef, error) {
	switch ty.Kind {
	case types.KindGeneric:
		return p.lookup(ty.Generic)
	case types.KindPath:
		gp, err := p.genericPath(ty.Path)
		if err != nil {
			return types.TypeRef{}, err
		}
		out := ty
		out.Path = gp
		return out, nil
	case types.KindTraitObject:
		out := ty.Clone()
		trait, err := p.genericPath(ty.Trait.Trait)
		if err != nil {
			return types.TypeRef{}, err
		}
		out.Trait.Trait = trait
		return out, nil
	case types.KindArray, types.KindSlice, types.KindBorrow, types.KindPointer:
		out := ty
		if ty.Inner != nil {
			inner, err := p.Monomorph(*ty.Inner)
			if err != nil {
				return types.TypeRef{}, err
			}
			out.Inner = &inner
		}
		return out, nil
	case types.KindTuple:
		elems, err := p.MonomorphAll(ty.Elems)
		if err != nil {
			return types.TypeRef{}, err
		}
		out := ty
		out.Elems = elems
		return out, nil
	case types.KindFunction:
		if ty.Fn == nil {
			return ty, nil
		}
		args, err := p.MonomorphAll(ty.Fn.Args)
		if err != nil {
			return types.TypeRef{}, err
		}
		ret, err := p.Monomorph(ty.Fn.Ret)
		if err != nil {
			return types.TypeRef{}, err
		}
		fn := *ty.Fn
		fn.Args = args
		fn.Ret = ret
		out := ty
		out.Fn = &fn
		return out, nil
	}
	return ty.Clone(), nil
}

func (p Params) lookup(g types.GenericRef) (types.TypeRef, error) {
	var list []types.TypeRef
	switch g.Group {
	case types.GroupSelf:
		if p.Self == nil {
			return types.TypeRef{}, &UnresolvedError{Generic: g}
		}
		return p.Self.Clone(), nil
	case types.GroupImpl:
		list = p.Impl
	case types.GroupMethod:
		list = p.Method
	}
	if g.Index < 0 || g.Index >= len(list) {
		return types.TypeRef{}, &UnresolvedError{Generic: g}
	}
	// Arguments must be concrete.
	if NeedsMonomorph(list[g.Index]) {
		return types.TypeRef{}, &UnresolvedError{Generic: g}
	}
	return list[g.Index].Clone(), nil
}

// NeedsMonomorph reports whether ty mentions any generic placeholder.
func NeedsMonomorph(ty types.TypeRef) bool {
	switch ty.Kind {
	case types.KindGeneric:
		return true
	case types.KindPath:
		return anyNeeds(ty.Path.Params)
	case types.KindTraitObject:
		return anyNeeds(ty.Trait.Trait.Params)
	case types.KindArray, types.KindSlice, types.KindBorrow, types.KindPointer:
		return ty.Inner != nil && NeedsMonomorph(*ty.Inner)
	case types.KindTuple:
		return anyNeeds(ty.Elems)
	case types.KindFunction:
		return ty.Fn != nil && (anyNeeds(ty.Fn.Args) || NeedsMonomorph(ty.Fn.Ret))
	}
	return false
}

func anyNeeds(list []types.TypeRef) bool {
	for i := range list {
		if NeedsMonomorph(list[i]) {
			return true
		}
	}
	return false
}
