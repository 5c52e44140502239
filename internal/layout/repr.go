package layout

import (
	"mirc/internal/diag"
	"mirc/internal/hir"
	"mirc/internal/types"
)

// MetaKind is the metadata a reference to a type must carry.
type MetaKind uint8

const (
	// MetaNone marks a sized type: references are one plain pointer.
	MetaNone MetaKind = iota
	// MetaLength marks str, slices and structs with such a tail.
	MetaLength
	// MetaVTable marks trait objects and structs with such a tail.
	MetaVTable
)

func (m MetaKind) String() string {
	switch m {
	case MetaNone:
		return "none"
	case MetaLength:
		return "length"
	case MetaVTable:
		return "vtable"
	}
	return "unknown"
}

// PtrRepr is the C shape of a reference or raw pointer.
type PtrRepr uint8

const (
	// ReprNarrow is a plain `T*`.
	ReprNarrow PtrRepr = iota
	// ReprNarrowArray is a plain pointer to an array, `T (*)[N]`.
	ReprNarrowArray
	// ReprWideStr is STR_PTR.
	ReprWideStr
	// ReprWideSlice is SLICE_PTR.
	ReprWideSlice
	// ReprWideTraitObject is TRAITOBJ_PTR.
	ReprWideTraitObject
)

// IsWide reports whether the representation carries metadata.
func (r PtrRepr) IsWide() bool {
	return r == ReprWideStr || r == ReprWideSlice || r == ReprWideTraitObject
}

// CName is the boilerplate typedef of a wide representation.
func (r PtrRepr) CName() string {
	switch r {
	case ReprWideStr:
		return "STR_PTR"
	case ReprWideSlice:
		return "SLICE_PTR"
	case ReprWideTraitObject:
		return "TRAITOBJ_PTR"
	}
	return ""
}

// Policy decides how values and references are represented. It is the only
// place that knows which types are dynamically sized.
type Policy struct {
	Crate *hir.Crate
}

// NewPolicy returns a policy backed by crate.
func NewPolicy(crate *hir.Crate) *Policy {
	return &Policy{Crate: crate}
}

// Metadata returns the metadata a reference to ty carries. A struct whose
// last field is dynamically sized inherits that field's metadata.
func (p *Policy) Metadata(ty types.TypeRef) (MetaKind, error) {
	return p.metadata(ty, 0)
}

const maxTailDepth = 64

func (p *Policy) metadata(ty types.TypeRef, depth int) (MetaKind, error) {
	switch ty.Kind {
	case types.KindPrimitive:
		if ty.Core == types.Str {
			return MetaLength, nil
		}
		return MetaNone, nil
	case types.KindSlice:
		return MetaLength, nil
	case types.KindTraitObject:
		return MetaVTable, nil
	case types.KindPath:
		if ty.Binding != types.BindingStruct || p == nil || p.Crate == nil {
			return MetaNone, nil
		}
		if depth > maxTailDepth {
			return MetaNone, diag.Bug(ty, "struct tail nesting too deep")
		}
		fields, err := p.Crate.StructFieldTypes(ty.Path)
		if err != nil {
			return MetaNone, err
		}
		if len(fields) == 0 {
			return MetaNone, nil
		}
		return p.metadata(fields[len(fields)-1], depth+1)
	}
	return MetaNone, nil
}

// IsSized reports whether ty has a static size.
func (p *Policy) IsSized(ty types.TypeRef) (bool, error) {
	m, err := p.Metadata(ty)
	return m == MetaNone, err
}

// PointerRepr returns the representation of a reference to inner.
func (p *Policy) PointerRepr(inner types.TypeRef) (PtrRepr, error) {
	if inner.Kind == types.KindPrimitive && inner.Core == types.Str {
		return ReprWideStr, nil
	}
	if inner.Kind == types.KindArray {
		return ReprNarrowArray, nil
	}
	m, err := p.Metadata(inner)
	if err != nil {
		return ReprNarrow, err
	}
	switch m {
	case MetaLength:
		return ReprWideSlice, nil
	case MetaVTable:
		return ReprWideTraitObject, nil
	}
	return ReprNarrow, nil
}

// IsWideRef reports whether ty is a reference or pointer carrying metadata.
func (p *Policy) IsWideRef(ty types.TypeRef) (bool, error) {
	if !ty.IsPointerLike() {
		return false, nil
	}
	r, err := p.PointerRepr(*ty.Inner)
	return r.IsWide(), err
}
