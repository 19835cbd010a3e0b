package eval

import (
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/schema"
)

// Evaluator fills a schema.ColumnSet's derived columns from a Program's
// computation table, pulling in dependencies lazily (§4.5.2). Computations
// are entered sequentially (§5): only the per-row work within a single
// computation is parallelised.
type Evaluator struct {
	columns *schema.ColumnSet
	comps   *corset.ComputationTable
}

// NewEvaluator constructs an Evaluator over an already-built ColumnSet and
// the computation table of the Program it was built from.
func NewEvaluator(columns *schema.ColumnSet, comps *corset.ComputationTable) *Evaluator {
	return &Evaluator{columns: columns, comps: comps}
}

// Get implements Getter against this evaluator's column set, wrapping row i
// modulo the column's raw length when wrap is requested and the column has
// been computed.
func (e *Evaluator) Get(handle corset.Handle, i int, wrap bool) (field.Element, bool) {
	col, ok := e.columns.Lookup(handle.Module(), handle.Name())
	if !ok || !col.Computed() {
		return field.Element{}, false
	}

	n := col.Len()
	if n == 0 {
		return field.Element{}, false
	}

	if i < 0 || i >= n {
		if !wrap {
			return field.Element{}, false
		}

		i = ((i % n) + n) % n
	}

	return col.Get(i)
}

// ComputeColumn ensures target's value is installed, recursively computing
// whatever computation produces it (§4.5.2, step 1-2).
func (e *Evaluator) ComputeColumn(target corset.Handle) error {
	col, ok := e.columns.Lookup(target.Module(), target.Name())
	if !ok {
		return fmt.Errorf("unknown column %s", target.QualifiedName())
	}

	if col.Computed() {
		return nil
	}

	comp, ok := e.comps.Lookup(target)
	if !ok {
		return fmt.Errorf("computation missing for column %s", target.QualifiedName())
	}

	switch c := comp.(type) {
	case *corset.Composite:
		return e.computeComposite(c)
	case *corset.Interleaved:
		return e.computeInterleaved(c)
	case *corset.Sorted:
		return e.computeSorted(c)
	default:
		return fmt.Errorf("unsupported computation kind for %s", target.QualifiedName())
	}
}

// ComputeAll iterates the computation table, filling every target it
// names; per §5, computations run sequentially in table order while
// dependencies are pulled in lazily, so later entries whose dependencies
// were already produced are no-ops. A failing computation is logged and
// does not halt the remaining ones (§7), so downstream checks can still
// report as many failures as possible.
func (e *Evaluator) ComputeAll() []error {
	var errs []error

	for _, comp := range e.comps.All() {
		for _, target := range comp.Targets() {
			if err := e.ComputeColumn(target); err != nil {
				log.WithField("column", target.QualifiedName()).Warn(err)

				errs = append(errs, err)
			}
		}
	}

	return errs
}

func (e *Evaluator) computeComposite(c *corset.Composite) error {
	deps := dependenciesOf(c.Expr)
	for _, dep := range deps {
		if err := e.ComputeColumn(dep); err != nil {
			return err
		}
	}

	module := c.Target.Module()

	length := uint(0)
	for _, dep := range deps {
		if col, ok := e.columns.Lookup(dep.Module(), dep.Name()); ok {
			if n := uint(col.Len()); n > length {
				length = n
			}
		}
	}

	spilling := e.spillingOf(module)
	total := int(spilling) + int(length)
	values := make([]field.Element, total)

	type rowResult struct {
		idx int
		v   field.Element
	}

	results := make(chan rowResult, total)

	var wg sync.WaitGroup

	for row := -int(spilling); row < int(length); row++ {
		wg.Add(1)

		go func(row int) {
			defer wg.Done()

			cache := NewInverseCache()

			v, ok := EvalRow(c.Expr, row, false, e.Get, cache)
			if !ok {
				v = field.Zero()
			}

			results <- rowResult{row + int(spilling), v}
		}(row)
	}

	wg.Wait()
	close(results)

	for r := range results {
		values[r.idx] = r.v
	}

	target, ok := e.columns.Lookup(module, c.Target.Name())
	if !ok {
		return fmt.Errorf("unknown column %s", c.Target.QualifiedName())
	}

	target.SetRaw(values, spilling)

	return nil
}

func (e *Evaluator) computeInterleaved(c *corset.Interleaved) error {
	for _, from := range c.Froms {
		if err := e.ComputeColumn(from); err != nil {
			return err
		}
	}

	cols := make([]*schema.Column, len(c.Froms))

	for i, from := range c.Froms {
		col, ok := e.columns.Lookup(from.Module(), from.Name())
		if !ok {
			return fmt.Errorf("unknown column %s", from.QualifiedName())
		}

		cols[i] = col
	}

	n := cols[0].Len()
	for _, col := range cols[1:] {
		if col.Len() != n {
			return fmt.Errorf("incoherent lengths interleaving into %s", c.Target.QualifiedName())
		}
	}

	count := len(cols)
	values := make([]field.Element, n*count)

	for i := 0; i < n; i++ {
		for j, col := range cols {
			v, _ := col.Get(i)
			values[i*count+j] = v
		}
	}

	target, ok := e.columns.Lookup(c.Target.Module(), c.Target.Name())
	if !ok {
		return fmt.Errorf("unknown column %s", c.Target.QualifiedName())
	}

	target.SetRaw(values, 0)

	return nil
}

func (e *Evaluator) computeSorted(c *corset.Sorted) error {
	for _, from := range c.Froms {
		if err := e.ComputeColumn(from); err != nil {
			return err
		}
	}

	cols := make([]*schema.Column, len(c.Froms))

	for i, from := range c.Froms {
		col, ok := e.columns.Lookup(from.Module(), from.Name())
		if !ok {
			return fmt.Errorf("unknown column %s", from.QualifiedName())
		}

		cols[i] = col
	}

	n := cols[0].Len()
	for _, col := range cols[1:] {
		if col.Len() != n {
			return fmt.Errorf("incoherent lengths sorting into %s", c.Froms[0].QualifiedName())
		}
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	sort.SliceStable(perm, func(a, b int) bool {
		for _, col := range cols {
			va, _ := col.Get(perm[a])
			vb, _ := col.Get(perm[b])

			if c := va.Cmp(vb); c != 0 {
				return c < 0
			}
		}

		return false
	})

	spilling := e.spillingOf(c.Froms[0].Module())

	for k, to := range c.Tos {
		values := make([]field.Element, int(spilling)+n)

		for i := 0; i < n; i++ {
			v, _ := cols[k].Get(perm[i])
			values[int(spilling)+i] = v
		}

		target, ok := e.columns.Lookup(to.Module(), to.Name())
		if !ok {
			return fmt.Errorf("unknown column %s", to.QualifiedName())
		}

		target.SetRaw(values, spilling)
	}

	return nil
}

// spillingOf reads back the spilling already computed for module at
// ColumnSet.Build time, as the largest Spilling among its columns: atomic
// columns installed from a trace carry spilling 0, while computed columns
// keep the Build-time value.
func (e *Evaluator) spillingOf(module string) uint {
	var max uint

	for _, col := range e.columns.Columns() {
		if col.Handle.Module() == module && col.Spilling > max {
			max = col.Spilling
		}
	}

	return max
}

// dependenciesOf collects the distinct column handles expr reads, in
// first-occurrence order, so a Composite's prerequisites can be computed
// before its own row evaluation begins.
func dependenciesOf(expr *corset.Node) []corset.Handle {
	var (
		order []corset.Handle
		seen  = make(map[corset.Handle]bool)
	)

	var walk func(n *corset.Node)

	walk = func(n *corset.Node) {
		switch e := n.Expr.(type) {
		case *corset.ColumnRef:
			if !seen[e.Handle] {
				seen[e.Handle] = true

				order = append(order, e.Handle)
			}
		case *corset.Funcall:
			for _, arg := range e.Args {
				walk(arg)
			}
		case *corset.ListExpr:
			for _, el := range e.Nodes {
				walk(el)
			}
		}
	}

	walk(expr)

	return order
}
