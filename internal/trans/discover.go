package trans

import (
	"mirc/internal/diag"
	"mirc/internal/hir"
	"mirc/internal/mangle"
	"mirc/internal/mir"
	"mirc/internal/mono"
	"mirc/internal/types"
)

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

// collector discovers the definitions a unit needs. Types are recorded
// after everything they contain by value, so the recorded order is a valid
// definition order. Pointees only need a forward declaration at the point of
// use and are queued instead, which breaks cycles through references.
type collector struct {
	crate   *hir.Crate
	types   []types.TypeRef
	state   map[string]visitState
	pending []types.TypeRef

	statics   []types.Path
	constants []types.Path
	callees   []types.Path
	seenItems map[string]bool
}

func newCollector(crate *hir.Crate) *collector {
	return &collector{
		crate:     crate,
		state:     make(map[string]visitState),
		seenItems: make(map[string]bool),
	}
}

// definable reports whether ty gets its own definition in the output.
func definable(ty types.TypeRef) bool {
	switch ty.Kind {
	case types.KindTuple:
		return len(ty.Elems) > 0
	case types.KindPath, types.KindFunction:
		return true
	}
	return false
}

// use records ty and drains everything reachable from it.
func (c *collector) use(ty types.TypeRef) error {
	if err := c.visit(ty); err != nil {
		return err
	}
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		if err := c.visit(next); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) visit(ty types.TypeRef) error {
	switch ty.Kind {
	case types.KindPrimitive, types.KindDiverge, types.KindTraitObject:
		return nil
	case types.KindArray, types.KindSlice:
		if ty.Inner == nil {
			return diag.Bug(ty, "element type missing")
		}
		return c.visit(*ty.Inner)
	case types.KindBorrow, types.KindPointer:
		if ty.Inner == nil {
			return diag.Bug(ty, "reference without pointee")
		}
		// Function types have no forward declaration.
		if ty.Inner.Kind == types.KindFunction {
			return c.visit(*ty.Inner)
		}
		c.pending = append(c.pending, *ty.Inner)
		return nil
	case types.KindGeneric, types.KindInfer, types.KindErased, types.KindClosure:
		return diag.Bug(ty, "%s type reached translation", ty.Kind)
	}
	if !definable(ty) {
		return nil
	}

	key := mangle.Type(ty)
	switch c.state[key] {
	case visited:
		return nil
	case visiting:
		return diag.Bug(ty, "type contains itself by value")
	}
	c.state[key] = visiting
	if err := c.visitContents(ty); err != nil {
		return err
	}
	c.state[key] = visited
	c.types = append(c.types, ty)
	return nil
}

func (c *collector) visitContents(ty types.TypeRef) error {
	switch ty.Kind {
	case types.KindTuple:
		return c.visitAll(ty.Elems)
	case types.KindFunction:
		if ty.Fn == nil {
			return diag.Bug(ty, "function type without signature")
		}
		// Prototypes accept incomplete parameter types.
		c.pending = append(c.pending, ty.Fn.Args...)
		c.pending = append(c.pending, ty.Fn.Ret)
		return nil
	}

	switch ty.Binding {
	case types.BindingStruct:
		fields, err := c.crate.StructFieldTypes(ty.Path)
		if err != nil {
			return err
		}
		return c.visitAll(fields)
	case types.BindingEnum:
		_, payloads, err := c.crate.EnumPayloads(ty.Path)
		if err != nil {
			return err
		}
		for _, fields := range payloads {
			if err := c.visitAll(fields); err != nil {
				return err
			}
		}
		return nil
	case types.BindingUnion:
		fields, err := c.crate.UnionFieldTypes(ty.Path)
		if err != nil {
			return err
		}
		return c.visitAll(fields)
	}
	return diag.Bug(ty, "%s path reached translation", ty.Binding)
}

func (c *collector) visitAll(list []types.TypeRef) error {
	for _, t := range list {
		if err := c.visit(t); err != nil {
			return err
		}
	}
	return nil
}

// signature records the types of p's instantiated signature.
func (c *collector) signature(p types.Path) error {
	ret, args, err := c.crate.Signature(p)
	if err != nil {
		return err
	}
	if err := c.use(ret); err != nil {
		return err
	}
	for _, a := range args {
		if err := c.use(a); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) addItem(list *[]types.Path, p types.Path) bool {
	key := mangle.Symbol(p)
	if c.seenItems[key] {
		return false
	}
	c.seenItems[key] = true
	*list = append(*list, p)
	return true
}

func (c *collector) static(p types.Path) error {
	if !c.addItem(&c.statics, p) {
		return nil
	}
	ty, err := c.crate.StaticType(p)
	if err != nil {
		return err
	}
	return c.use(ty)
}

func (c *collector) constant(p types.Path) error {
	if !c.addItem(&c.constants, p) {
		return nil
	}
	k, ok := c.crate.Constant(p)
	if !ok {
		return diag.Bug(p, "unknown constant")
	}
	return c.use(k.Type)
}

func (c *collector) callee(p types.Path) error {
	if !c.addItem(&c.callees, p) {
		return nil
	}
	if _, ok := c.crate.Function(p); !ok {
		return diag.Bug(p, "call to unknown function")
	}
	return c.signature(p)
}

// body walks one function instance: local types, every type and item named
// by its statements, and its callees.
func (c *collector) body(p types.Path, b *mir.Body) error {
	params := mono.ForPath(p)
	for i := range b.Vars {
		t, err := params.Monomorph(b.Vars[i].Type)
		if err != nil {
			return diag.Bug(p, "var%d type: %v", i, err)
		}
		if err := c.use(t); err != nil {
			return err
		}
	}
	for i, tt := range b.Temps {
		t, err := params.Monomorph(tt)
		if err != nil {
			return diag.Bug(p, "tmp%d type: %v", i, err)
		}
		if err := c.use(t); err != nil {
			return err
		}
	}

	w := bodyWalker{c: c, params: params}
	for i := range b.Blocks {
		bb := &b.Blocks[i]
		for j := range bb.Statements {
			if err := w.statement(&bb.Statements[j]); err != nil {
				return err
			}
		}
		if err := w.terminator(&bb.Term); err != nil {
			return err
		}
	}
	return nil
}

type bodyWalker struct {
	c      *collector
	params mono.Params
}

func (w bodyWalker) lvalue(lv mir.LValue) error {
	switch lv.Kind {
	case mir.LStatic:
		return w.c.static(lv.Static)
	case mir.LIndex:
		if lv.IndexVal != nil {
			if err := w.lvalue(*lv.IndexVal); err != nil {
				return err
			}
		}
	}
	if lv.Base != nil {
		return w.lvalue(*lv.Base)
	}
	return nil
}

func (w bodyWalker) lvalues(list []mir.LValue) error {
	for _, lv := range list {
		if err := w.lvalue(lv); err != nil {
			return err
		}
	}
	return nil
}

func (w bodyWalker) path(p types.Path) (types.Path, error) {
	out, err := w.params.MonomorphPath(p)
	if err != nil {
		return types.Path{}, diag.Bug(p, "%v", err)
	}
	return out, nil
}

// aggregate resolves a literal's path to the type it builds.
func (w bodyWalker) aggregate(gp types.GenericPath) error {
	var binding types.Binding
	switch {
	case w.hasStruct(gp):
		binding = types.BindingStruct
	case w.hasEnum(gp):
		binding = types.BindingEnum
	case w.hasUnion(gp):
		binding = types.BindingUnion
	default:
		return diag.Bug(gp, "literal of unknown type")
	}
	ty, err := w.params.Monomorph(types.Named(binding, gp))
	if err != nil {
		return diag.Bug(gp, "%v", err)
	}
	return w.c.use(ty)
}

func (w bodyWalker) hasStruct(gp types.GenericPath) bool {
	_, ok := w.c.crate.Struct(gp.Path)
	return ok
}

func (w bodyWalker) hasEnum(gp types.GenericPath) bool {
	_, ok := w.c.crate.Enum(gp.Path)
	return ok
}

func (w bodyWalker) hasUnion(gp types.GenericPath) bool {
	_, ok := w.c.crate.Union(gp.Path)
	return ok
}

func (w bodyWalker) statement(s *mir.Statement) error {
	if s.Kind == mir.StmtDrop {
		return w.lvalue(s.Drop.Slot)
	}
	if err := w.lvalue(s.Assign.Dst); err != nil {
		return err
	}
	src := s.Assign.Src
	switch src.Kind {
	case mir.RUse:
		return w.lvalue(src.Use)
	case mir.RConstant:
		return w.constant(src.Constant)
	case mir.RSizedArray:
		return w.lvalue(src.SizedArray.Val)
	case mir.RBorrow:
		return w.lvalue(src.Borrow.Val)
	case mir.RCast:
		ty, err := w.params.Monomorph(src.Cast.Type)
		if err != nil {
			return diag.Bug(src.Cast.Type, "%v", err)
		}
		if err := w.c.use(ty); err != nil {
			return err
		}
		return w.lvalue(src.Cast.Val)
	case mir.RBinOp:
		return w.lvalues([]mir.LValue{src.BinOp.Left, src.BinOp.Right})
	case mir.RUniOp:
		return w.lvalue(src.UniOp.Val)
	case mir.RDstMeta:
		return w.lvalue(src.DstMeta)
	case mir.RDstPtr:
		return w.lvalue(src.DstPtr)
	case mir.RMakeDst:
		return w.lvalues([]mir.LValue{src.MakeDst.Ptr, src.MakeDst.Meta})
	case mir.RTuple:
		return w.lvalues(src.Tuple)
	case mir.RArray:
		return w.lvalues(src.Array)
	case mir.RVariant:
		if err := w.aggregate(src.Variant.Path); err != nil {
			return err
		}
		return w.lvalue(src.Variant.Val)
	case mir.RStruct:
		if err := w.aggregate(src.Struct.Path); err != nil {
			return err
		}
		return w.lvalues(src.Struct.Vals)
	}
	return diag.Bug(src, "unknown rvalue kind %d", src.Kind)
}

func (w bodyWalker) constant(k mir.Constant) error {
	switch k.Kind {
	case mir.ConstConst:
		p, err := w.path(k.Path)
		if err != nil {
			return err
		}
		return w.c.constant(p)
	case mir.ConstItemAddr:
		p, err := w.path(k.Path)
		if err != nil {
			return err
		}
		if _, ok := w.c.crate.Function(p); ok {
			return w.c.callee(p)
		}
		if _, ok := w.c.crate.Static(p); ok {
			return w.c.static(p)
		}
		return diag.Bug(p, "address of unknown item")
	}
	return nil
}

func (w bodyWalker) terminator(t *mir.Terminator) error {
	switch t.Kind {
	case mir.TermIf:
		return w.lvalue(t.If.Cond)
	case mir.TermSwitch:
		return w.lvalue(t.Switch.Val)
	case mir.TermCallPath, mir.TermCallValue:
		if err := w.lvalue(t.Call.Ret); err != nil {
			return err
		}
		if err := w.lvalues(t.Call.Args); err != nil {
			return err
		}
		if t.Kind == mir.TermCallValue {
			return w.lvalue(t.Call.FnValue)
		}
		p, err := w.path(t.Call.FnPath)
		if err != nil {
			return err
		}
		return w.c.callee(p)
	}
	return nil
}
