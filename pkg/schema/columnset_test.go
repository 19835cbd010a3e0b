package schema

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
)

func atomicSpec(module, name string, id uint) *corset.ColumnSpec {
	h := corset.NewHandle(module, name).WithID(id)

	return &corset.ColumnSpec{
		Handle: h,
		Type:   corset.ColumnInt,
		Node:   corset.NewColumnRef(h, false, &corset.AtomicColumn{}),
	}
}

func TestColumnSetBuildAndLookup(t *testing.T) {
	a := atomicSpec("m", "a", 0)
	b := atomicSpec("m", "b", 1)

	prog := &corset.Program{
		Columns: []*corset.ColumnSpec{a, b},
		Comps:   corset.NewComputationTable(),
	}

	cs := Build(prog)

	col, ok := cs.Lookup("m", "a")
	assert.True(t, ok)
	assert.Equal(t, "a", col.Handle.Name())

	_, ok = cs.Lookup("m", "nope")
	assert.False(t, ok)

	assert.Equal(t, 2, len(cs.Columns()))
	assert.Equal(t, []string{"m"}, cs.Modules())
}

func TestColumnSetMarkAndIsComputed(t *testing.T) {
	a := atomicSpec("m", "a", 0)

	prog := &corset.Program{
		Columns: []*corset.ColumnSpec{a},
		Comps:   corset.NewComputationTable(),
	}

	cs := Build(prog)

	assert.False(t, cs.IsComputed(0))
	cs.MarkComputed(0)
	assert.True(t, cs.IsComputed(0))
}

func TestColumnSetRawLength(t *testing.T) {
	a := atomicSpec("m", "a", 0)
	b := atomicSpec("m", "b", 1)

	prog := &corset.Program{
		Columns: []*corset.ColumnSpec{a, b},
		Comps:   corset.NewComputationTable(),
	}

	cs := Build(prog)

	colA, _ := cs.Lookup("m", "a")
	colB, _ := cs.Lookup("m", "b")

	colA.SetRaw(make([]field.Element, 4), 0)
	colB.SetRaw(make([]field.Element, 7), 0)

	assert.Equal(t, uint(7), cs.RawLength("m"))
}

// spillingByModule must pick up the largest magnitude shift offset, in
// either direction, across every Composite computation in a module.
func TestSpillingByModuleTracksLargestShift(t *testing.T) {
	target := corset.NewHandle("m", "k").WithID(0)
	dep := corset.NewHandle("m", "a").WithID(1)

	depRef := corset.NewColumnRef(dep, false, &corset.AtomicColumn{})

	shiftConst := func(k int64) *corset.Node {
		v, _ := field.FromBigInt(big.NewInt(k))
		return corset.NewConst(corset.NewBigIntValue(big.NewInt(k)), v)
	}

	shiftPast := corset.NewFuncall(corset.Shift, []*corset.Node{depRef, shiftConst(-3)})
	shiftFuture := corset.NewFuncall(corset.Shift, []*corset.Node{depRef, shiftConst(2)})
	expr := corset.NewFuncall(corset.Add, []*corset.Node{shiftPast, shiftFuture})

	composite := &corset.Composite{Target: target, Expr: expr}

	comps := corset.NewComputationTable()
	assert.NoError(t, comps.Add(composite))

	spilling := spillingByModule(comps)
	assert.Equal(t, uint(3), spilling["m"])
}
