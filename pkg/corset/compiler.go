package corset

// Compile lowers a parsed Circuit into a Program: every column declared,
// every constraint derived, and the computation table relating derived
// columns to the computations which produce them.  Compile runs the three
// passes of §4 in order — definitions, reduction, id assignment — stopping
// after any pass which reports errors, since later passes assume the
// invariants the earlier ones establish (every symbol resolves, every
// Composite body is reduced).
func Compile(circuit *Circuit, debug bool) (*Program, []error) {
	scopes := NewRoot()

	dp := newDefinitionsPass(scopes)
	dp.Run(circuit)

	if len(dp.errors) > 0 {
		return nil, dp.errors
	}

	red := newReducer(scopes, debug)
	constraints := red.Run(circuit, dp.pending)

	if len(red.errors) > 0 {
		return nil, red.errors
	}

	ids := assignColumnIDs(dp.columns)
	rewriteComputationHandles(scopes.Comps, ids)
	rewriteConstraintHandles(constraints, ids)
	rewriteInterleavedSources(dp.columns, ids)

	return &Program{Columns: dp.columns, Constraints: constraints, Comps: scopes.Comps}, nil
}

// assignColumnIDs assigns each declared column a dense id, in declaration
// order, and stamps it onto both the ColumnSpec and the ColumnRef (or
// ArrayColumnRef) node shared by every expression that refers to the
// column by symbol.  Because symbol resolution hands out that same *Node
// pointer wherever the symbol is used (see Scopes.resolveLocal), stamping
// it once here is enough to propagate the id into every constraint and
// computation which references the column through an expression tree;
// only the handles copied by value (computation targets/sources,
// permutation pairs, interleaving sources) need a separate rewrite pass,
// below.
func assignColumnIDs(columns []*ColumnSpec) map[handleKey]uint {
	ids := make(map[handleKey]uint, len(columns))

	for i, c := range columns {
		ids[keyOf(c.Handle)] = uint(i)
	}

	for _, c := range columns {
		id := ids[keyOf(c.Handle)]
		c.Handle = c.Handle.WithID(id)

		switch e := c.Node.Expr.(type) {
		case *ColumnRef:
			e.Handle = e.Handle.WithID(id)
		case *ArrayColumnRef:
			e.Handle = e.Handle.WithID(id)
		}
	}

	return ids
}

func rewriteHandle(h Handle, ids map[handleKey]uint) Handle {
	if id, ok := ids[keyOf(h)]; ok {
		return h.WithID(id)
	}

	return h
}

func rewriteComputationHandles(comps *ComputationTable, ids map[handleKey]uint) {
	for _, comp := range comps.All() {
		switch c := comp.(type) {
		case *Composite:
			c.Target = rewriteHandle(c.Target, ids)
		case *Interleaved:
			c.Target = rewriteHandle(c.Target, ids)
			for i := range c.Froms {
				c.Froms[i] = rewriteHandle(c.Froms[i], ids)
			}
		case *Sorted:
			for i := range c.Froms {
				c.Froms[i] = rewriteHandle(c.Froms[i], ids)
			}

			for i := range c.Tos {
				c.Tos[i] = rewriteHandle(c.Tos[i], ids)
			}
		}
	}
}

func rewriteConstraintHandles(constraints []Constraint, ids map[handleKey]uint) {
	for _, c := range constraints {
		if p, ok := c.(*Permutation); ok {
			for i := range p.Froms {
				p.Froms[i] = rewriteHandle(p.Froms[i], ids)
			}

			for i := range p.Tos {
				p.Tos[i] = rewriteHandle(p.Tos[i], ids)
			}
		}
		// Vanishes, Plookup and InRange reference columns only through the
		// shared *Node pointers already stamped by assignColumnIDs.
	}
}

func rewriteInterleavedSources(columns []*ColumnSpec, ids map[handleKey]uint) {
	for _, c := range columns {
		cr, ok := c.Node.Expr.(*ColumnRef)
		if !ok {
			continue
		}

		ic, ok := cr.Kind.(*InterleavedColumn)
		if !ok {
			continue
		}

		for i := range ic.Sources {
			ic.Sources[i] = rewriteHandle(ic.Sources[i], ids)
		}
	}
}
