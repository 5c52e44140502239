// Package hir holds the read-only crate catalog the backend lowers from:
// aggregate, function, static and constant definitions indexed by path.
// Definitions keep their generic placeholders; callers substitute into
// private copies through package mono and never modify the catalog.
package hir

import (
	"mirc/internal/mir"
	"mirc/internal/source"
	"mirc/internal/types"
)

// Crate is the catalog of one crate. Maps are keyed by SimplePath.Key for
// items and by types.Path.ItemKey for functions.
type Crate struct {
	Name      string
	Structs   map[string]*Struct
	Enums     map[string]*Enum
	Unions    map[string]*Union
	Functions map[string]*Function
	Statics   map[string]*Static
	Constants map[string]*Constant
}

// NewCrate returns an empty catalog.
func NewCrate(name string) *Crate {
	return &Crate{
		Name:      name,
		Structs:   make(map[string]*Struct),
		Enums:     make(map[string]*Enum),
		Unions:    make(map[string]*Union),
		Functions: make(map[string]*Function),
		Statics:   make(map[string]*Static),
		Constants: make(map[string]*Constant),
	}
}

// Field is a struct, union or variant field. Name is empty for positional
// fields.
type Field struct {
	Name string
	Type types.TypeRef
}

// StructKind says how a struct spells its fields.
type StructKind uint8

const (
	StructUnit StructKind = iota
	StructTuple
	StructNamed
)

// Struct is a struct definition.
type Struct struct {
	Path   types.SimplePath
	Params []string
	Kind   StructKind
	Fields []Field
	Span   source.Span
}

// VariantKind distinguishes enum variant shapes.
type VariantKind uint8

const (
	VariantUnit VariantKind = iota
	// VariantValue carries an explicit discriminant and no payload.
	VariantValue
	VariantTuple
	VariantStruct
)

func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "unit"
	case VariantValue:
		return "value"
	case VariantTuple:
		return "tuple"
	case VariantStruct:
		return "struct"
	}
	return "unknown"
}

// Variant is one enum alternative.
type Variant struct {
	Name   string
	Kind   VariantKind
	Value  int64
	Fields []Field
}

// Enum is an enum definition.
type Enum struct {
	Path     types.SimplePath
	Params   []string
	Variants []Variant
	Span     source.Span
}

// Union is an untagged union definition.
type Union struct {
	Path   types.SimplePath
	Params []string
	Fields []Field
	Span   source.Span
}

// Arg is a function parameter.
type Arg struct {
	Name string
	Type types.TypeRef
}

// Function is a function signature plus optional body. Return and argument
// types may mention ImplParams and Params placeholders.
type Function struct {
	Path       types.Path
	ImplParams []string
	Params     []string
	Args       []Arg
	Return     types.TypeRef
	// External functions are defined outside the program; Body stays nil.
	External bool
	Body     *mir.Body
	Span     source.Span
}

// ArgTypes lists the declared argument types.
func (f *Function) ArgTypes() []types.TypeRef {
	out := make([]types.TypeRef, len(f.Args))
	for i := range f.Args {
		out[i] = f.Args[i].Type
	}
	return out
}

// Static is a static item.
type Static struct {
	Path    types.SimplePath
	Type    types.TypeRef
	Mutable bool
	Span    source.Span
}

// Constant is a constant item.
type Constant struct {
	Path types.SimplePath
	Type types.TypeRef
	Span source.Span
}

// AddStruct registers s.
func (c *Crate) AddStruct(s *Struct) { c.Structs[s.Path.Key()] = s }

// AddEnum registers e.
func (c *Crate) AddEnum(e *Enum) { c.Enums[e.Path.Key()] = e }

// AddUnion registers u.
func (c *Crate) AddUnion(u *Union) { c.Unions[u.Path.Key()] = u }

// AddFunction registers f.
func (c *Crate) AddFunction(f *Function) { c.Functions[f.Path.ItemKey()] = f }

// AddStatic registers s.
func (c *Crate) AddStatic(s *Static) { c.Statics[s.Path.Key()] = s }

// AddConstant registers k.
func (c *Crate) AddConstant(k *Constant) { c.Constants[k.Path.Key()] = k }

// Struct looks up a struct by path.
func (c *Crate) Struct(p types.SimplePath) (*Struct, bool) {
	s, ok := c.Structs[p.Key()]
	return s, ok
}

// Enum looks up an enum by path.
func (c *Crate) Enum(p types.SimplePath) (*Enum, bool) {
	e, ok := c.Enums[p.Key()]
	return e, ok
}

// Union looks up a union by path.
func (c *Crate) Union(p types.SimplePath) (*Union, bool) {
	u, ok := c.Unions[p.Key()]
	return u, ok
}

// Function looks up the definition a value path refers to.
func (c *Crate) Function(p types.Path) (*Function, bool) {
	f, ok := c.Functions[p.ItemKey()]
	return f, ok
}

// Static looks up a static item.
func (c *Crate) Static(p types.Path) (*Static, bool) {
	s, ok := c.Statics[p.ItemKey()]
	return s, ok
}

// Constant looks up a constant item.
func (c *Crate) Constant(p types.Path) (*Constant, bool) {
	k, ok := c.Constants[p.ItemKey()]
	return k, ok
}
