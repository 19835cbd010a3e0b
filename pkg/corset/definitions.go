package corset

import (
	"fmt"

	"github.com/OmegaTymbJIep/corset/pkg/sexp"
)

// ColumnSpec is the definitions pass's declarative record of one column:
// enough to build a schema.Column once the reducer has filled in any
// Composite body, but carrying no row data itself.  Kind lives on Node's
// *ColumnRef (§3.3); ColumnSpec just keeps the Node reachable by declaration
// order for downstream passes (id assignment, schema construction).
type ColumnSpec struct {
	Handle Handle
	Type   Type
	Node   *Node
}

// Kind returns the Kind carried by a column's resolved ColumnRef node, or
// AtomicColumn for the meta-entry representing an array column itself
// (array columns are never read directly — only their per-index scalar
// children, which each carry their own Kind).
func (s *ColumnSpec) Kind() Kind {
	if cr, ok := s.Node.Expr.(*ColumnRef); ok {
		return cr.Kind
	}

	return AtomicColumn{}
}

// Program is the output of compiling a Circuit: every column declared,
// every constraint derived, and the computation table relating derived
// columns to the computations which produce them.
type Program struct {
	Columns     []*ColumnSpec
	Constraints []Constraint
	Comps       *ComputationTable
}

// pendingComposite remembers a Composite column's unreduced body so the
// reducer pass can fill it in after every declaration in the module has
// been registered (mirroring the source's own two-step "declare, then
// backfill" treatment of defcolumns).
type pendingComposite struct {
	scope int
	name  string
	spec  *ColumnSpec
	body  sexp.SExp
}

// definitionsPass walks a Circuit's declarations, populating a Scopes tree
// and a flat list of ColumnSpec / pending composite bodies.  It performs no
// expression reduction itself beyond what is needed to resolve column
// references made by defpermutation/definterleaved at declaration time.
type definitionsPass struct {
	scopes  *Scopes
	columns []*ColumnSpec
	pending []pendingComposite
	errors  []error
}

func newDefinitionsPass(scopes *Scopes) *definitionsPass {
	return &definitionsPass{scopes: scopes}
}

func (p *definitionsPass) fail(err error) {
	p.errors = append(p.errors, err)
}

// Run processes every module and root-level declaration in the circuit.
func (p *definitionsPass) Run(c *Circuit) {
	p.declareIn(p.scopes.Root(), c.Declarations)

	for _, m := range c.Modules {
		scope := p.scopes.Derived(p.scopes.Root(), m.Name, m.Name, false)
		p.declareIn(scope, m.Declarations)
	}
}

func (p *definitionsPass) declareIn(scope int, decls []Declaration) {
	for _, d := range decls {
		switch decl := d.(type) {
		case *DefColumns:
			p.declareColumns(scope, decl)
		case *DefAlias:
			p.declareAliases(scope, decl)
		case *DefFunAlias:
			p.declareFunAliases(scope, decl)
		case *DefConst:
			p.declareConsts(scope, decl)
		case *DefFun:
			p.declareFun(scope, decl)
		case *DefPermutation:
			p.declarePermutation(scope, decl)
		case *DefConstraint:
			p.reserveConstraint(scope, decl.Handle)
		case *DefLookup:
			p.reserveConstraint(scope, decl.Handle)
		case *DefInRange:
			// anonymous; nothing to reserve
		default:
			p.fail(fmt.Errorf("unsupported declaration %T", d))
		}
	}
}

func (p *definitionsPass) declareColumns(scope int, decl *DefColumns) {
	module := p.scopes.Name(scope)

	for _, col := range decl.Columns {
		magma := Integer
		if col.Boolean {
			magma = Boolean
		}

		handle := NewHandle(module, col.Name)

		var kind Kind

		switch computed := col.Computed.(type) {
		case nil:
			kind = AtomicColumn{}
		case *ComputedComposite:
			kind = &CompositeColumn{Expr: nil}
		case *ComputedInterleaved:
			handles := make([]Handle, len(computed.Sources))

			for i, src := range computed.Sources {
				if _, err := p.scopes.ResolveSymbol(scope, src); err != nil {
					p.fail(fmt.Errorf("interleaved column %q: %w", col.Name, err))
				}

				handles[i] = NewHandle(module, src)
			}

			kind = &InterleavedColumn{Sources: handles}

			if err := p.scopes.Comps.Add(&Interleaved{Target: handle, Froms: handles}); err != nil {
				p.fail(err)
			}
		}

		var node *Node
		if col.Count > 1 {
			node = NewArrayColumnRef(handle, col.Count, col.Boolean)
		} else {
			node = NewColumnRef(handle, col.Boolean, kind)
		}

		spec := &ColumnSpec{Handle: handle, Type: Type{ColumnScale, magma}, Node: node}
		p.columns = append(p.columns, spec)

		if composite, ok := col.Computed.(*ComputedComposite); ok {
			p.pending = append(p.pending, pendingComposite{scope, col.Name, spec, composite.Body})
		}

		if err := p.scopes.InsertSymbol(scope, col.Name, node); err != nil {
			p.fail(err)
		}

		// An array column also exposes each index as an ordinary scalar
		// column, so that "nth" resolves to a real declared handle rather
		// than a synthetic one.
		if col.Count > 1 {
			for i := uint(0); i < col.Count; i++ {
				elemName := fmt.Sprintf("%s_%d", col.Name, i)
				elemHandle := NewHandle(module, elemName)
				elemNode := NewColumnRef(elemHandle, col.Boolean, AtomicColumn{})
				elemSpec := &ColumnSpec{Handle: elemHandle, Type: Type{ColumnScale, magma}, Node: elemNode}
				p.columns = append(p.columns, elemSpec)

				if err := p.scopes.InsertSymbol(scope, elemName, elemNode); err != nil {
					p.fail(err)
				}
			}
		}
	}
}

func (p *definitionsPass) declareAliases(scope int, decl *DefAlias) {
	for _, pair := range decl.Pairs {
		if err := p.scopes.InsertAlias(scope, pair[0], pair[1]); err != nil {
			p.fail(err)
		}
	}
}

func (p *definitionsPass) declareFunAliases(scope int, decl *DefFunAlias) {
	for _, pair := range decl.Pairs {
		if err := p.scopes.InsertFunAlias(scope, pair[0], pair[1]); err != nil {
			p.fail(err)
		}
	}
}

func (p *definitionsPass) declareConsts(scope int, decl *DefConst) {
	for _, c := range decl.Constants {
		if err := p.scopes.InsertConstant(scope, c.Name, c.Value); err != nil {
			p.fail(err)
		}
	}
}

func (p *definitionsPass) declareFun(scope int, decl *DefFun) {
	handle := NewHandle(p.scopes.Name(scope), decl.Name)
	fn := &UserDefined{handle, decl.Params, decl.Body, decl.Pure}

	if err := p.scopes.InsertFunction(scope, decl.Name, fn); err != nil {
		p.fail(err)
	}
}

func (p *definitionsPass) declarePermutation(scope int, decl *DefPermutation) {
	if len(decl.Tos) != len(decl.Froms) {
		p.fail(NewScopedCompileError(ArityMismatch, "defpermutation requires |tos| = |froms|", p.scopes.nodes[scope].pretty))
		return
	}

	module := p.scopes.Name(scope)
	froms := make([]Handle, len(decl.Froms))

	for i, from := range decl.Froms {
		if _, err := p.scopes.ResolveSymbol(scope, from); err != nil {
			p.fail(err)
		}

		froms[i] = NewHandle(module, from)
	}

	tos := make([]Handle, len(decl.Tos))

	for i, to := range decl.Tos {
		handle := NewHandle(module, to)
		tos[i] = handle

		node := NewColumnRef(handle, false, PhantomColumn{})
		spec := &ColumnSpec{Handle: handle, Type: Type{ColumnScale, Integer}, Node: node}
		p.columns = append(p.columns, spec)

		if err := p.scopes.InsertSymbol(scope, to, node); err != nil {
			p.fail(err)
		}
	}

	if err := p.scopes.Comps.Add(&Sorted{froms, tos}); err != nil {
		p.fail(err)
	}

	p.reserveConstraint(scope, decl.Handle)
}

func (p *definitionsPass) reserveConstraint(scope int, name string) {
	if err := p.scopes.ReserveConstraintName(scope, name); err != nil {
		p.fail(err)
	}
}
