package eval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
)

func constNode(v int64) *corset.Node {
	e, _ := field.FromBigInt(big.NewInt(v))
	return corset.NewConst(corset.NewBigIntValue(big.NewInt(v)), e)
}

func colRef(module, name string) *corset.Node {
	return corset.NewColumnRef(corset.NewHandle(module, name), false, &corset.AtomicColumn{})
}

// fakeTrace is a minimal Getter backed by a map, for exercising EvalRow in
// isolation from schema.ColumnSet.
type fakeTrace map[corset.Handle][]int64

func (ft fakeTrace) get(h corset.Handle, i int, wrap bool) (field.Element, bool) {
	rows, ok := ft[h]
	if !ok {
		return field.Element{}, false
	}

	n := len(rows)
	if i < 0 || i >= n {
		if !wrap {
			return field.Element{}, false
		}

		i = ((i % n) + n) % n
	}

	v, _ := field.FromBigInt(big.NewInt(rows[i]))

	return v, true
}

func TestEvalRowArithmetic(t *testing.T) {
	add := corset.NewFuncall(corset.Add, []*corset.Node{constNode(2), constNode(3)})
	v, ok := EvalRow(add, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(5)))

	sub := corset.NewFuncall(corset.Sub, []*corset.Node{constNode(5), constNode(3)})
	v, ok = EvalRow(sub, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(2)))

	mul := corset.NewFuncall(corset.Mul, []*corset.Node{constNode(5), constNode(3)})
	v, ok = EvalRow(mul, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(15)))

	neg := corset.NewFuncall(corset.Neg, []*corset.Node{constNode(5)})
	v, ok = EvalRow(neg, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(5).Neg()))
}

func TestEvalRowInvUsesCache(t *testing.T) {
	cache := NewInverseCache()

	inv := corset.NewFuncall(corset.Inv, []*corset.Node{constNode(7)})

	v1, ok := EvalRow(inv, 0, false, fakeTrace{}.get, cache)
	assert.True(t, ok)

	v2, ok := EvalRow(inv, 0, false, fakeTrace{}.get, cache)
	assert.True(t, ok)
	assert.True(t, v1.Equals(v2))

	seven := field.FromUint64(7)
	assert.True(t, v1.Mul(seven).Equals(field.One()))
}

func TestEvalRowInvOfZeroIsZero(t *testing.T) {
	inv := corset.NewFuncall(corset.Inv, []*corset.Node{constNode(0)})
	v, ok := EvalRow(inv, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.IsZero())
}

func TestEvalRowPow(t *testing.T) {
	pow := corset.NewFuncall(corset.Pow, []*corset.Node{constNode(3), constNode(4)})
	v, ok := EvalRow(pow, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(81)))
}

func TestEvalRowShiftIgnoresWrapOfOuterCall(t *testing.T) {
	h := corset.NewHandle("m", "a")
	trace := fakeTrace{h: {10, 20, 30}}

	ref := corset.NewColumnRef(h, false, &corset.AtomicColumn{})
	shift := corset.NewFuncall(corset.Shift, []*corset.Node{ref, constNode(1)})

	v, ok := EvalRow(shift, 0, true, trace.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(20)))

	// Shifting past the end with wrap=true at the outer call still fails,
	// because evalShift always reads the inner column with wrap forced off.
	_, ok = EvalRow(shift, 2, true, trace.get, nil)
	assert.False(t, ok)
}

func TestEvalRowBoolMulIsPlainMultiplication(t *testing.T) {
	boolMul := corset.NewFuncall(corset.BoolMul, []*corset.Node{constNode(1), constNode(1)})
	v, ok := EvalRow(boolMul, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.IsOne())

	boolMul = corset.NewFuncall(corset.BoolMul, []*corset.Node{constNode(1), constNode(0)})
	v, ok = EvalRow(boolMul, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.IsZero())
}

func TestEvalRowIfZeroAndIfNotZero(t *testing.T) {
	ifZero := corset.NewFuncall(corset.IfZero, []*corset.Node{constNode(0), constNode(9), constNode(8)})
	v, ok := EvalRow(ifZero, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(9)))

	ifZero = corset.NewFuncall(corset.IfZero, []*corset.Node{constNode(1), constNode(9), constNode(8)})
	v, ok = EvalRow(ifZero, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(8)))

	ifNotZero := corset.NewFuncall(corset.IfNotZero, []*corset.Node{constNode(1), constNode(9)})
	v, ok = EvalRow(ifNotZero, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(9)))

	// Missing else-branch defaults to zero.
	ifNotZero = corset.NewFuncall(corset.IfNotZero, []*corset.Node{constNode(0), constNode(9)})
	v, ok = EvalRow(ifNotZero, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.IsZero())
}

func TestEvalRowListIsFirstNonZeroElseZero(t *testing.T) {
	list := corset.NewList([]*corset.Node{constNode(0), constNode(0), constNode(7), constNode(9)})
	v, ok := EvalRow(list, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(7)))

	allZero := corset.NewList([]*corset.Node{constNode(0), constNode(0)})
	v, ok = EvalRow(allZero, 0, false, fakeTrace{}.get, nil)
	assert.True(t, ok)
	assert.True(t, v.IsZero())
}

func TestEvalRowColumnRefOutOfRangeWithoutWrapFails(t *testing.T) {
	h := corset.NewHandle("m", "a")
	trace := fakeTrace{h: {1, 2, 3}}

	ref := corset.NewColumnRef(h, false, &corset.AtomicColumn{})

	_, ok := EvalRow(ref, 5, false, trace.get, nil)
	assert.False(t, ok)

	v, ok := EvalRow(ref, 5, true, trace.get, nil)
	assert.True(t, ok)
	assert.True(t, v.Equals(field.FromUint64(3))) // 5 % 3 == 2 -> rows[2] == 3
}
