package eval

import (
	"fmt"

	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/schema"
)

// Violation records a single constraint failing on a single row.
type Violation struct {
	Constraint string
	Row        int
	Message    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at row %d: %s", v.Constraint, v.Row, v.Message)
}

// Check evaluates every constraint over its module's rows (having first
// filled every derived column with ComputeAll), returning one Violation per
// failing row. A failing constraint does not stop evaluation of the
// others, mirroring the non-fatal evaluator error policy of §7.
func (e *Evaluator) Check(constraints []corset.Constraint) []Violation {
	var violations []Violation

	for _, c := range constraints {
		switch cc := c.(type) {
		case *corset.Vanishes:
			violations = append(violations, e.checkVanishes(cc)...)
		case *corset.InRange:
			violations = append(violations, e.checkInRange(cc)...)
		case *corset.Plookup:
			violations = append(violations, e.checkPlookup(cc)...)
		case *corset.Permutation:
			violations = append(violations, e.checkPermutation(cc)...)
		}
	}

	return violations
}

func (e *Evaluator) rowsOf(module string, domain *corset.Domain) []int {
	if domain != nil {
		return domain.Rows
	}

	n := int(e.columns.RawLength(module))

	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	return rows
}

func (e *Evaluator) checkVanishes(c *corset.Vanishes) []Violation {
	var violations []Violation

	cache := NewInverseCache()

	for _, row := range e.rowsOf(c.Handle.Module(), c.Domain) {
		if c.Guard != nil {
			g, ok := EvalRow(c.Guard, row, true, e.Get, cache)
			if !ok || g.IsZero() {
				continue
			}
		}

		v, ok := EvalRow(c.Expr, row, true, e.Get, cache)
		if !ok {
			continue
		}

		if !v.IsZero() {
			violations = append(violations, Violation{c.Name(), row, fmt.Sprintf("expected 0, got %s", v)})
		}
	}

	return violations
}

func (e *Evaluator) checkInRange(c *corset.InRange) []Violation {
	var violations []Violation

	cache := NewInverseCache()
	bound := field.FromUint64(c.Bound)

	for row := 0; row < int(e.columns.RawLength(c.Handle.Module())); row++ {
		v, ok := EvalRow(c.Expr, row, true, e.Get, cache)
		if !ok {
			continue
		}

		if v.Cmp(bound) >= 0 {
			violations = append(violations, Violation{c.Name(), row, fmt.Sprintf("%s not in [0,%d)", v, c.Bound)})
		}
	}

	return violations
}

// checkPlookup requires that every row-wise tuple of Children appears among
// the tuples of Parents.
func (e *Evaluator) checkPlookup(c *corset.Plookup) []Violation {
	parentRows := tupleLength(c.Parents, e)
	parentSet := make(map[string]bool, parentRows)

	for row := 0; row < parentRows; row++ {
		parentSet[e.tupleKey(c.Parents, row)] = true
	}

	var violations []Violation

	childRows := tupleLength(c.Children, e)
	for row := 0; row < childRows; row++ {
		key := e.tupleKey(c.Children, row)
		if !parentSet[key] {
			violations = append(violations, Violation{c.Name(), row, "child tuple absent from parent table"})
		}
	}

	return violations
}

func tupleLength(nodes []*corset.Node, e *Evaluator) int {
	max := 0

	for _, n := range nodes {
		if cr, ok := n.Expr.(*corset.ColumnRef); ok {
			if col, ok := e.columns.Lookup(cr.Handle.Module(), cr.Handle.Name()); ok {
				if n := col.Len(); n > max {
					max = n
				}
			}
		}
	}

	return max
}

func (e *Evaluator) tupleKey(nodes []*corset.Node, row int) string {
	key := ""

	for _, n := range nodes {
		v, ok := EvalRow(n, row, true, e.Get, nil)
		if !ok {
			v = field.Zero()
		}

		key += v.Hex() + "|"
	}

	return key
}

// checkPermutation verifies that each Tos[k] is a multiset permutation of
// Froms[k] and that the rows of Froms, reordered to produce Tos, are
// lexicographically non-decreasing — the same invariant the Sorted
// computation that fills Tos is responsible for establishing.
func (e *Evaluator) checkPermutation(c *corset.Permutation) []Violation {
	var violations []Violation

	if len(c.Froms) == 0 {
		return nil
	}

	if len(c.Froms) != len(c.Tos) {
		violations = append(violations, Violation{c.Name(), 0, "incoherent column counts"})
		return violations
	}

	froms := make([]*schema.Column, len(c.Froms))
	tos := make([]*schema.Column, len(c.Tos))

	for k := range c.Froms {
		from, ok := e.columns.Lookup(c.Froms[k].Module(), c.Froms[k].Name())
		to, ok2 := e.columns.Lookup(c.Tos[k].Module(), c.Tos[k].Name())

		if !ok || !ok2 || from.Len() != to.Len() {
			violations = append(violations, Violation{c.Name(), 0, "incoherent lengths"})
			return violations
		}

		froms[k] = from
		tos[k] = to
	}

	rows := froms[0].Len()
	fromTuples := make([]string, rows)
	toTuples := make([]string, rows)

	for i := 0; i < rows; i++ {
		fromTuples[i] = columnTupleKey(froms, i)
		toTuples[i] = columnTupleKey(tos, i)
	}

	if !sameMultisetKeys(fromTuples, toTuples) {
		violations = append(violations, Violation{c.Name(), 0, "permutation output is not a multiset permutation of its input"})
	}

	for i := 1; i < len(toTuples); i++ {
		if lessTuple(toTuples[i], toTuples[i-1]) {
			violations = append(violations, Violation{c.Name(), i, "permutation output not sorted"})
		}
	}

	return violations
}

// columnTupleKey builds a composite key for row i across cols, mirroring
// tupleKey's per-row concatenation of fixed-width hex element renderings —
// here over raw column storage rather than expression nodes, since a
// Permutation's Froms/Tos are column handles, not expressions.
func columnTupleKey(cols []*schema.Column, row int) string {
	key := ""

	for _, col := range cols {
		v, ok := col.Get(row)
		if !ok {
			v = field.Zero()
		}

		key += v.Hex() + "|"
	}

	return key
}

// lessTuple compares two composite keys built by columnTupleKey. Each
// component is a fixed-width "0x"-prefixed lower-case hex numeral, so
// per-component numeric order coincides with byte-wise string order, and
// tuple components are compared left to right exactly as field.Element.Cmp
// would compare them one column at a time.
func lessTuple(a, b string) bool {
	return a < b
}

// sameMultisetKeys checks that a and b contain the same composite row keys
// with the same multiplicities.
func sameMultisetKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	counts := make(map[string]int, len(a))

	for _, k := range a {
		counts[k]++
	}

	for _, k := range b {
		counts[k]--
	}

	for _, n := range counts {
		if n != 0 {
			return false
		}
	}

	return true
}
