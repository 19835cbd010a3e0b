package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementArithmetic(t *testing.T) {
	one := One()
	zero := Zero()

	assert.True(t, zero.IsZero())
	assert.True(t, one.IsOne())
	assert.True(t, one.Sub(one).IsZero())
	assert.True(t, one.Add(zero).Equals(one))
	assert.True(t, zero.Inverse().IsZero())
	assert.True(t, FromUint64(7).Mul(FromUint64(7).Inverse()).IsOne())
}

func TestElementFromBigInt(t *testing.T) {
	modulus := Modulus()

	_, ok := FromBigInt(modulus)
	assert.False(t, ok, "value equal to the modulus does not fit")

	_, ok = FromBigInt(big.NewInt(-1))
	assert.False(t, ok, "negative values do not fit")

	e, ok := FromBigInt(big.NewInt(42))
	assert.True(t, ok)
	assert.Equal(t, big.NewInt(42), e.BigInt())
}

func TestElementDecimalParsing(t *testing.T) {
	e, ok := FromDecimalString("123456789")
	assert.True(t, ok)
	assert.Equal(t, "123456789", e.String())

	_, ok = FromDecimalString("not-a-number")
	assert.False(t, ok)
}

func TestElementOrdering(t *testing.T) {
	a := FromUint64(3)
	b := FromUint64(5)

	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestElementExp(t *testing.T) {
	two := FromUint64(2)
	assert.True(t, two.Exp(10).Equals(FromUint64(1024)))
	assert.True(t, two.Exp(0).IsOne())
}
