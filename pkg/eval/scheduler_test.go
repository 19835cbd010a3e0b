package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/schema"
)

func buildSet(columns []*corset.ColumnSpec, comps *corset.ComputationTable) *schema.ColumnSet {
	return schema.Build(&corset.Program{Columns: columns, Comps: comps})
}

func rawColumn(module, name string, id uint) *corset.ColumnSpec {
	h := corset.NewHandle(module, name).WithID(id)
	return &corset.ColumnSpec{
		Handle: h,
		Type:   corset.ColumnInt,
		Node:   corset.NewColumnRef(h, false, &corset.AtomicColumn{}),
	}
}

func fillRaw(t *testing.T, cs *schema.ColumnSet, module, name string, rows []int64) {
	t.Helper()

	col, ok := cs.Lookup(module, name)
	assert.True(t, ok)

	values := make([]field.Element, len(rows))
	for i, r := range rows {
		values[i] = field.FromUint64(uint64(r))
	}

	col.SetRaw(values, 0)
}

// S4: sorting [3,1,2] produces the permutation [1,2,0] and the output
// [1,2,3].
func TestComputeSortedSingleColumn(t *testing.T) {
	fromH := corset.NewHandle("m", "a").WithID(0)
	toH := corset.NewHandle("m", "a_sorted").WithID(1)

	from := rawColumn("m", "a", 0)
	to := &corset.ColumnSpec{
		Handle: toH,
		Type:   corset.ColumnInt,
		Node:   corset.NewColumnRef(toH, false, &corset.PhantomColumn{}),
	}

	comps := corset.NewComputationTable()
	assert.NoError(t, comps.Add(&corset.Sorted{Froms: []corset.Handle{fromH}, Tos: []corset.Handle{toH}}))

	cs := buildSet([]*corset.ColumnSpec{from, to}, comps)
	fillRaw(t, cs, "m", "a", []int64{3, 1, 2})

	ev := NewEvaluator(cs, comps)
	assert.NoError(t, ev.ComputeColumn(toH))

	sorted, ok := cs.Lookup("m", "a_sorted")
	assert.True(t, ok)

	for i, want := range []int64{1, 2, 3} {
		v, ok := sorted.Get(i)
		assert.True(t, ok)
		assert.True(t, v.Equals(field.FromUint64(uint64(want))))
	}
}

// S4 (tie-break): two columns sort lexicographically, the second column
// breaking ties in the first.
func TestComputeSortedTieBreaksOnSecondColumn(t *testing.T) {
	aH := corset.NewHandle("m", "a").WithID(0)
	bH := corset.NewHandle("m", "b").WithID(1)
	toAH := corset.NewHandle("m", "ta").WithID(2)
	toBH := corset.NewHandle("m", "tb").WithID(3)

	a := rawColumn("m", "a", 0)
	b := rawColumn("m", "b", 1)
	toA := &corset.ColumnSpec{Handle: toAH, Type: corset.ColumnInt, Node: corset.NewColumnRef(toAH, false, &corset.PhantomColumn{})}
	toB := &corset.ColumnSpec{Handle: toBH, Type: corset.ColumnInt, Node: corset.NewColumnRef(toBH, false, &corset.PhantomColumn{})}

	comps := corset.NewComputationTable()
	assert.NoError(t, comps.Add(&corset.Sorted{
		Froms: []corset.Handle{aH, bH},
		Tos:   []corset.Handle{toAH, toBH},
	}))

	cs := buildSet([]*corset.ColumnSpec{a, b, toA, toB}, comps)
	fillRaw(t, cs, "m", "a", []int64{1, 1, 0})
	fillRaw(t, cs, "m", "b", []int64{5, 2, 9})

	ev := NewEvaluator(cs, comps)
	assert.NoError(t, ev.ComputeColumn(toAH))

	ta, _ := cs.Lookup("m", "ta")
	tb, _ := cs.Lookup("m", "tb")

	wantA := []int64{0, 1, 1}
	wantB := []int64{9, 2, 5}

	for i := range wantA {
		va, _ := ta.Get(i)
		vb, _ := tb.Get(i)
		assert.True(t, va.Equals(field.FromUint64(uint64(wantA[i]))), "row %d of ta", i)
		assert.True(t, vb.Equals(field.FromUint64(uint64(wantB[i]))), "row %d of tb", i)
	}
}

// S5: interleaving [1,2] and [3,4] produces [1,3,2,4].
func TestComputeInterleaved(t *testing.T) {
	aH := corset.NewHandle("m", "a").WithID(0)
	bH := corset.NewHandle("m", "b").WithID(1)
	targetH := corset.NewHandle("m", "c").WithID(2)

	a := rawColumn("m", "a", 0)
	b := rawColumn("m", "b", 1)
	target := &corset.ColumnSpec{
		Handle: targetH,
		Type:   corset.ColumnInt,
		Node:   corset.NewColumnRef(targetH, false, &corset.InterleavedColumn{Sources: []corset.Handle{aH, bH}}),
	}

	comps := corset.NewComputationTable()
	assert.NoError(t, comps.Add(&corset.Interleaved{Target: targetH, Froms: []corset.Handle{aH, bH}}))

	cs := buildSet([]*corset.ColumnSpec{a, b, target}, comps)
	fillRaw(t, cs, "m", "a", []int64{1, 2})
	fillRaw(t, cs, "m", "b", []int64{3, 4})

	ev := NewEvaluator(cs, comps)
	assert.NoError(t, ev.ComputeColumn(targetH))

	col, _ := cs.Lookup("m", "c")

	for i, want := range []int64{1, 3, 2, 4} {
		v, ok := col.Get(i)
		assert.True(t, ok)
		assert.True(t, v.Equals(field.FromUint64(uint64(want))), "row %d", i)
	}
}

// A Composite column's value is computed row by row as its expression
// evaluated over already-computed dependencies, with dependencies pulled
// in lazily.
func TestComputeCompositeSumOfTwoColumns(t *testing.T) {
	aH := corset.NewHandle("m", "a").WithID(0)
	bH := corset.NewHandle("m", "b").WithID(1)
	kH := corset.NewHandle("m", "k").WithID(2)

	a := rawColumn("m", "a", 0)
	b := rawColumn("m", "b", 1)

	expr := corset.NewFuncall(corset.Add, []*corset.Node{
		corset.NewColumnRef(aH, false, &corset.AtomicColumn{}),
		corset.NewColumnRef(bH, false, &corset.AtomicColumn{}),
	})

	k := &corset.ColumnSpec{
		Handle: kH,
		Type:   corset.ColumnInt,
		Node:   corset.NewColumnRef(kH, false, &corset.CompositeColumn{Expr: expr}),
	}

	comps := corset.NewComputationTable()
	assert.NoError(t, comps.Add(&corset.Composite{Target: kH, Expr: expr}))

	cs := buildSet([]*corset.ColumnSpec{a, b, k}, comps)
	fillRaw(t, cs, "m", "a", []int64{1, 2, 3})
	fillRaw(t, cs, "m", "b", []int64{10, 20, 30})

	ev := NewEvaluator(cs, comps)
	assert.NoError(t, ev.ComputeColumn(kH))

	col, _ := cs.Lookup("m", "k")

	for i, want := range []int64{11, 22, 33} {
		v, ok := col.Get(i)
		assert.True(t, ok)
		assert.True(t, v.Equals(field.FromUint64(uint64(want))), "row %d", i)
	}
}

func TestComputeColumnMissingComputationFails(t *testing.T) {
	h := corset.NewHandle("m", "orphan").WithID(0)
	spec := &corset.ColumnSpec{
		Handle: h,
		Type:   corset.ColumnInt,
		Node:   corset.NewColumnRef(h, false, &corset.PhantomColumn{}),
	}

	comps := corset.NewComputationTable()
	cs := buildSet([]*corset.ColumnSpec{spec}, comps)

	ev := NewEvaluator(cs, comps)
	assert.Error(t, ev.ComputeColumn(h))
}
