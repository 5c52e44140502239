package types

import "strings"

// SimplePath is an absolute item path without generic arguments.
type SimplePath struct {
	Crate      string
	Components []string
}

// NewPath builds a SimplePath from a crate name and components.
func NewPath(crate string, components ...string) SimplePath {
	return SimplePath{Crate: crate, Components: append([]string(nil), components...)}
}

func (p SimplePath) String() string {
	var sb strings.Builder
	sb.WriteString(p.Crate)
	for _, c := range p.Components {
		sb.WriteString("::")
		sb.WriteString(c)
	}
	return sb.String()
}

// Key is the catalog index key of the path.
func (p SimplePath) Key() string {
	return p.String()
}

// Last returns the final path component, or the crate name for a crate root.
func (p SimplePath) Last() string {
	if len(p.Components) == 0 {
		return p.Crate
	}
	return p.Components[len(p.Components)-1]
}

// Child returns p extended by one component.
func (p SimplePath) Child(name string) SimplePath {
	comps := make([]string, 0, len(p.Components)+1)
	comps = append(comps, p.Components...)
	comps = append(comps, name)
	return SimplePath{Crate: p.Crate, Components: comps}
}

// GenericPath is a path plus its generic arguments.
type GenericPath struct {
	Path   SimplePath
	Params []TypeRef
}

// Generic attaches params to p.
func (p SimplePath) Generic(params ...TypeRef) GenericPath {
	return GenericPath{Path: p, Params: append([]TypeRef(nil), params...)}
}

func (p GenericPath) String() string {
	var sb strings.Builder
	sb.WriteString(p.Path.String())
	writeParams(&sb, p.Params)
	return sb.String()
}

// Clone returns a deep copy of p.
func (p GenericPath) Clone() GenericPath {
	return GenericPath{
		Path:   SimplePath{Crate: p.Path.Crate, Components: append([]string(nil), p.Path.Components...)},
		Params: cloneTypes(p.Params),
	}
}

func writeParams(sb *strings.Builder, params []TypeRef) {
	if len(params) == 0 {
		return
	}
	sb.WriteString("<")
	for i, t := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		t.write(sb)
	}
	sb.WriteString(">")
}

// PathKind distinguishes item paths from associated-item paths.
type PathKind uint8

const (
	// PathGeneric is a plain item path `a::b<T>`.
	PathGeneric PathKind = iota
	// PathUfcsInherent is an inherent associated item `<T>::item<U>`.
	PathUfcsInherent
	// PathUfcsKnown is a trait associated item `<T as Trait>::item<U>`.
	PathUfcsKnown
)

// Path names a value item such as a function, static or constant.
type Path struct {
	Kind    PathKind
	Generic GenericPath // PathGeneric
	Self    *TypeRef    // UFCS
	Trait   GenericPath // PathUfcsKnown
	Item    string      // UFCS
	Params  []TypeRef   // UFCS method parameters
}

// ItemPath returns a plain item path.
func ItemPath(p GenericPath) Path {
	return Path{Kind: PathGeneric, Generic: p}
}

func (p Path) String() string {
	var sb strings.Builder
	switch p.Kind {
	case PathGeneric:
		return p.Generic.String()
	case PathUfcsInherent, PathUfcsKnown:
		sb.WriteString("<")
		if p.Self != nil {
			p.Self.write(&sb)
		} else {
			sb.WriteString("_")
		}
		if p.Kind == PathUfcsKnown {
			sb.WriteString(" as ")
			sb.WriteString(p.Trait.String())
		}
		sb.WriteString(">::")
		sb.WriteString(p.Item)
		writeParams(&sb, p.Params)
	}
	return sb.String()
}

// ItemKey is the catalog key of the item p refers to. Generic arguments are
// dropped; a UFCS path keys on the head of its Self type so every
// instantiation of one method shares a definition.
func (p Path) ItemKey() string {
	if p.Kind == PathGeneric {
		return p.Generic.Path.Key()
	}
	var sb strings.Builder
	sb.WriteString("<")
	if p.Self != nil {
		sb.WriteString(selfHead(*p.Self))
	}
	if p.Kind == PathUfcsKnown {
		sb.WriteString(" as ")
		sb.WriteString(p.Trait.Path.Key())
	}
	sb.WriteString(">::")
	sb.WriteString(p.Item)
	return sb.String()
}

func selfHead(t TypeRef) string {
	if t.Kind == KindPath {
		return t.Path.Path.Key()
	}
	return t.String()
}
