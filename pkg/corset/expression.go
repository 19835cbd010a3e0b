package corset

import "github.com/OmegaTymbJIep/corset/pkg/field"

// Node carries a reduced Expression together with a lazily-cached Type.
// Nodes are produced exclusively by the reducer and, once constructed, are
// never mutated except by EditSymbol backfilling a Composite column's body
// (see scope.go) and by assignColumnIDs (compiler.go) stamping dense ids
// onto column handles.
type Node struct {
	Expr Expression
	typ  *Type
}

// NewNode wraps an expression, computing and caching its type immediately.
func NewNode(expr Expression) *Node {
	t := expr.typeOf()
	return &Node{expr, &t}
}

// Type returns the (cached) type of this node.
func (n *Node) Type() Type {
	if n.typ == nil {
		t := n.Expr.typeOf()
		n.typ = &t
	}

	return *n.typ
}

// Expression is the sum type of all lowered expression forms.
type Expression interface {
	// typeOf computes this expression's type from its subterms.
	typeOf() Type
	// isExpression is a marker method restricting implementations to this
	// package.
	isExpression()
}

// ============================================================================
// Const
// ============================================================================

// Const is an integer literal.  Field is populated only when the integer
// fits within the prime field; constants outside the field are rejected by
// the reducer before a Const node is ever constructed, so Field is always
// present on a well-formed tree — the pointer exists purely to mirror the
// source's own optional representation during construction.
type Const struct {
	Integer *BigIntValue
	Field   *field.Element
}

// NewConst constructs a constant node, classifying it as Scalar(Boolean)
// when its value is 0 or 1, else Scalar(Integer).
func NewConst(v *BigIntValue, f field.Element) *Node {
	c := &Const{v, &f}
	return &Node{c, typePtr(NewScalarType(v.IsZeroOrOne()))}
}

func (*Const) isExpression() {}
func (c *Const) typeOf() Type {
	return NewScalarType(c.Integer.IsZeroOrOne())
}

func typePtr(t Type) *Type { return &t }

// ============================================================================
// Column
// ============================================================================

// ColumnRef refers to a single named column, resolved against the symbol
// table.  Handle is what the evaluator uses to look up the underlying
// Column.  Kind records how the referenced column's value is produced; it
// starts as Atomic/Phantom/Interleaved at declaration time, or — for a
// Composite column — is mutated in place once the reducer has reduced the
// column's defining body (see backfillComposites in reducer.go), mirroring
// the source's own "declare now, attach body later" treatment of
// defcolumns.
type ColumnRef struct {
	Handle Handle
	Bool   bool
	Kind   Kind
}

func (*ColumnRef) isExpression() {}
func (c *ColumnRef) typeOf() Type {
	if c.Bool {
		return ColumnBool
	}

	return ColumnInt
}

// NewColumnRef constructs a resolved reference to a scalar column.
func NewColumnRef(h Handle, boolean bool, kind Kind) *Node {
	return NewNode(&ColumnRef{h, boolean, kind})
}

// Kind is the tagged union of ways a column's value is produced; see §3.3.
type Kind interface {
	isKind()
}

// AtomicColumn values are supplied directly by the trace.
type AtomicColumn struct{}

func (AtomicColumn) isKind() {}

// PhantomColumn values are declared but produced by a computation
// elsewhere (e.g. one side of a defpermutation).
type PhantomColumn struct{}

func (PhantomColumn) isKind() {}

// CompositeColumn values are a pure function, Expr, of other columns. Expr
// is nil until the reducer backfills it.
type CompositeColumn struct {
	Expr *Node
}

func (*CompositeColumn) isKind() {}

// InterleavedColumn values are produced by round-robin interleaving of
// Sources.
type InterleavedColumn struct {
	Sources []Handle
}

func (*InterleavedColumn) isKind() {}

// ============================================================================
// ArrayColumn
// ============================================================================

// ArrayColumnRef refers to an indexable family of columns sharing a common
// base name, with a valid index range [0,Count).  It is only ever consumed
// by "nth", which lowers it to a ColumnRef before any Node containing it
// survives past reduction.
type ArrayColumnRef struct {
	Handle Handle
	Count  uint
	Bool   bool
}

func (*ArrayColumnRef) isExpression() {}
func (c *ArrayColumnRef) typeOf() Type {
	if c.Bool {
		return ColumnBool
	}

	return ColumnInt
}

// NewArrayColumnRef constructs a resolved reference to an array column.
func NewArrayColumnRef(h Handle, count uint, boolean bool) *Node {
	return NewNode(&ArrayColumnRef{h, count, boolean})
}

// ============================================================================
// List
// ============================================================================

// ListExpr is a sequence of sub-expressions whose value, when used in a
// constraint position, is "first non-zero, else zero".  It also doubles as
// the representation of a for-loop's unrolled body and of "begin"'s
// flattened arguments.
type ListExpr struct {
	Nodes []*Node
}

func (*ListExpr) isExpression() {}
func (l *ListExpr) typeOf() Type {
	if len(l.Nodes) == 0 {
		return VoidType
	}

	t := l.Nodes[0].Type()
	for _, n := range l.Nodes[1:] {
		t = t.Join(n.Type())
	}

	return Type{ListScale, t.Magma}
}

// NewList constructs a list node, typed as the join of its elements (or
// Void, if empty).
func NewList(nodes []*Node) *Node {
	return NewNode(&ListExpr{nodes})
}

// ============================================================================
// Funcall
// ============================================================================

// Funcall applies a primitive Builtin to zero or more reduced argument
// nodes.  By the time a Funcall is constructed, arities and argument types
// have already been checked and all syntactic sugar (not, eq, nth, begin)
// has been rewritten away; what remains are the irreducible primitives
// listed in builtin.go.
type Funcall struct {
	Builtin Builtin
	Args    []*Node
}

func (*Funcall) isExpression() {}
func (f *Funcall) typeOf() Type {
	return f.Builtin.Typing(f.Args)
}

// NewFuncall constructs a primitive application, typed via Builtin.Typing.
func NewFuncall(b Builtin, args []*Node) *Node {
	return NewNode(&Funcall{b, args})
}

// ============================================================================
// Void
// ============================================================================

// VoidExpr carries no value; it is the result of reducing a pure
// declaration form (one whose effect is entirely recorded in the
// definitions pass).
type VoidExpr struct{}

func (*VoidExpr) isExpression() {}
func (*VoidExpr) typeOf() Type  { return VoidType }

// TheVoid is the unique instance of VoidExpr.
var TheVoid = NewNode(&VoidExpr{})
