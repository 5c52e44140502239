package layout

import (
	"mirc/internal/hir"
	"mirc/internal/mangle"
	"mirc/internal/types"
)

// TypeLayout is the C layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Aggregate-only:
	FieldOffsets []int
	FieldAligns  []int

	// Enum-only.
	TagSize       int
	PayloadOffset int

	// Flexible is set when the last field is a flexible array member whose
	// elements are not counted in Size.
	Flexible bool
}

// LayoutEngine computes memory layout for types. An engine is owned by one
// translation unit; its cache is not synchronised.
type LayoutEngine struct {
	Target Target
	Crate  *hir.Crate
	Policy *Policy

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, crate *hir.Crate) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Crate:  crate,
		Policy: NewPolicy(crate),
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []string
	index map[string]int
	names map[string]string
}

func newLayoutState() *layoutState {
	return &layoutState{
		index: make(map[string]int, 32),
		names: make(map[string]string, 32),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t types.TypeRef) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	if e.Policy == nil {
		e.Policy = NewPolicy(e.Crate)
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err
	}
	return layout, nil
}

func (e *LayoutEngine) layoutOf(t types.TypeRef, state *layoutState) (TypeLayout, *LayoutError) {
	key := mangle.Type(t)
	if cached, ok := e.cache.get(key); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[key]; ok {
		cycle := make([]string, 0, len(state.stack)-idx+1)
		for _, k := range state.stack[idx:] {
			cycle = append(cycle, state.names[k])
		}
		cycle = append(cycle, t.String())
		err := &LayoutError{
			Kind:  LayoutErrRecursiveUnsized,
			Type:  t.String(),
			Cycle: cycle,
		}
		e.cache.put(key, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[key] = len(state.stack)
	state.names[key] = t.String()
	state.stack = append(state.stack, key)
	layout, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, key)

	e.cache.put(key, &cacheEntry{Layout: layout, Err: err})
	return layout, err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeRef) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeRef) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of an aggregate field.
func (e *LayoutEngine) FieldOffset(t types.TypeRef, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(t)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}
