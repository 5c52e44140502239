package layout

import (
	"fortio.org/safecast"

	"mirc/internal/hir"
	"mirc/internal/types"
)

func (e *LayoutEngine) computeLayout(t types.TypeRef, state *layoutState) (TypeLayout, *LayoutError) {
	switch t.Kind {
	case types.KindPrimitive:
		return e.scalarLayout(t)

	case types.KindDiverge:
		return TypeLayout{Size: 0, Align: 1}, nil

	case types.KindBorrow, types.KindPointer:
		if t.Inner == nil {
			return e.ptrLayout(), nil
		}
		repr, err := e.Policy.PointerRepr(*t.Inner)
		if err != nil {
			return zeroLayout(), unresolved(t, err)
		}
		if repr.IsWide() {
			ptr := e.ptrLayout()
			return TypeLayout{
				Size:         2 * ptr.Size,
				Align:        ptr.Align,
				FieldOffsets: []int{0, ptr.Size},
				FieldAligns:  []int{ptr.Align, ptr.Align},
			}, nil
		}
		return e.ptrLayout(), nil

	case types.KindFunction:
		return e.ptrLayout(), nil

	case types.KindSlice, types.KindTraitObject:
		return zeroLayout(), &LayoutError{Kind: LayoutErrUnsized, Type: t.String()}

	case types.KindArray:
		if t.Inner == nil {
			return zeroLayout(), unresolved(t, nil)
		}
		return e.arrayFixedLayout(t, *t.Inner, t.Size, state)

	case types.KindTuple:
		return e.structLayout(t, t.Elems, state)

	case types.KindPath:
		return e.pathLayout(t, state)
	}
	return zeroLayout(), unresolved(t, nil)
}

func (e *LayoutEngine) pathLayout(t types.TypeRef, state *layoutState) (TypeLayout, *LayoutError) {
	if e.Crate == nil {
		return zeroLayout(), unresolved(t, nil)
	}
	switch t.Binding {
	case types.BindingStruct:
		fields, err := e.Crate.StructFieldTypes(t.Path)
		if err != nil {
			return zeroLayout(), unresolved(t, err)
		}
		return e.structLayout(t, fields, state)
	case types.BindingUnion:
		fields, err := e.Crate.UnionFieldTypes(t.Path)
		if err != nil {
			return zeroLayout(), unresolved(t, err)
		}
		return e.unionLayout(fields, state)
	case types.BindingEnum:
		kinds, payloads, err := e.Crate.EnumPayloads(t.Path)
		if err != nil {
			return zeroLayout(), unresolved(t, err)
		}
		return e.enumLayout(t, kinds, payloads, state)
	}
	return zeroLayout(), unresolved(t, nil)
}

func (e *LayoutEngine) scalarLayout(t types.TypeRef) (TypeLayout, *LayoutError) {
	switch t.Core {
	case types.Usize, types.Isize:
		return e.ptrLayout(), nil
	case types.U8, types.I8, types.Bool:
		return scalarLayoutBytes(1, 1), nil
	case types.U16, types.I16:
		return scalarLayoutBytes(2, 2), nil
	case types.U32, types.I32, types.F32, types.Char:
		return scalarLayoutBytes(4, 4), nil
	case types.U64, types.I64, types.F64:
		return scalarLayoutBytes(8, e.Target.Int64Align), nil
	case types.U128, types.I128:
		return scalarLayoutBytes(16, e.Target.Int128Align), nil
	case types.Str:
		return zeroLayout(), &LayoutError{Kind: LayoutErrUnsized, Type: t.String()}
	}
	return zeroLayout(), unresolved(t, nil)
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func zeroLayout() TypeLayout {
	return TypeLayout{Size: 0, Align: 1}
}

func scalarLayoutBytes(size, align int) TypeLayout {
	if size <= 0 {
		return zeroLayout()
	}
	if align <= 0 {
		align = size
	}
	return TypeLayout{Size: size, Align: align}
}

func unresolved(t types.TypeRef, err error) *LayoutError {
	return &LayoutError{Kind: LayoutErrUnresolved, Type: t.String(), Err: err}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *LayoutEngine) arrayFixedLayout(t, elem types.TypeRef, length uint64, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(elem, state)
	if err != nil {
		return zeroLayout(), err
	}
	elemAlign := max(elemLayout.Align, 1)
	stride := roundUp(elemLayout.Size, elemAlign)
	n, convErr := safecast.Conv[int](length)
	if convErr != nil {
		return zeroLayout(), &LayoutError{Kind: LayoutErrLengthConversion, Type: t.String(), Err: convErr}
	}
	return TypeLayout{
		Size:  stride * n,
		Align: elemAlign,
	}, nil
}

// structLayout lays fields out in declaration order with C padding rules. A
// trailing slice or str field becomes a flexible array member.
func (e *LayoutEngine) structLayout(t types.TypeRef, fields []types.TypeRef, state *layoutState) (TypeLayout, *LayoutError) {
	if len(fields) == 0 {
		return zeroLayout(), nil
	}
	offsets := make([]int, len(fields))
	aligns := make([]int, len(fields))
	size := 0
	align := 1
	flexible := false
	for i := range fields {
		ft := fields[i]
		last := i == len(fields)-1
		if elem, ok := flexibleElem(ft); ok {
			if !last {
				return zeroLayout(), &LayoutError{Kind: LayoutErrUnsized, Type: t.String()}
			}
			el, err := e.layoutOf(elem, state)
			if err != nil {
				return zeroLayout(), err
			}
			fAlign := max(el.Align, 1)
			size = roundUp(size, fAlign)
			offsets[i] = size
			aligns[i] = fAlign
			align = max(align, fAlign)
			flexible = true
			continue
		}
		fl, err := e.layoutOf(ft, state)
		if err != nil {
			return zeroLayout(), err
		}
		fAlign := max(fl.Align, 1)
		size = roundUp(size, fAlign)
		offsets[i] = size
		aligns[i] = fAlign
		size += fl.Size
		align = max(align, fAlign)
	}
	size = roundUp(size, align)
	return TypeLayout{
		Size:         size,
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
		Flexible:     flexible,
	}, nil
}

func flexibleElem(t types.TypeRef) (types.TypeRef, bool) {
	switch {
	case t.Kind == types.KindSlice && t.Inner != nil:
		return *t.Inner, true
	case t.Kind == types.KindPrimitive && t.Core == types.Str:
		return types.Prim(types.U8), true
	}
	return types.TypeRef{}, false
}

func (e *LayoutEngine) unionLayout(fields []types.TypeRef, state *layoutState) (TypeLayout, *LayoutError) {
	size := 0
	align := 1
	for _, f := range fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return zeroLayout(), err
		}
		size = max(size, fl.Size)
		align = max(align, fl.Align)
	}
	return TypeLayout{Size: roundUp(size, align), Align: align}, nil
}

// enumLayout mirrors the emitted shape: a uint32_t tag followed by a union of
// one struct per payload-carrying variant.
func (e *LayoutEngine) enumLayout(t types.TypeRef, kinds []hir.VariantKind, payloads [][]types.TypeRef, state *layoutState) (TypeLayout, *LayoutError) {
	const tagSize = 4
	maxPayloadSize := 0
	payloadAlign := 1
	hasPayload := false
	for i := range payloads {
		if kinds[i] == hir.VariantValue {
			continue
		}
		hasPayload = true
		pl, err := e.structLayout(t, payloads[i], state)
		if err != nil {
			return zeroLayout(), err
		}
		maxPayloadSize = max(maxPayloadSize, pl.Size)
		payloadAlign = max(payloadAlign, pl.Align)
	}
	if !hasPayload {
		return TypeLayout{Size: tagSize, Align: tagSize, TagSize: tagSize}, nil
	}
	payloadOffset := roundUp(tagSize, payloadAlign)
	overallAlign := max(tagSize, payloadAlign)
	return TypeLayout{
		Size:          roundUp(payloadOffset+maxPayloadSize, overallAlign),
		Align:         overallAlign,
		FieldOffsets:  []int{0, payloadOffset},
		FieldAligns:   []int{tagSize, payloadAlign},
		TagSize:       tagSize,
		PayloadOffset: payloadOffset,
	}, nil
}
