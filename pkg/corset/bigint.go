package corset

import "math/big"

// BigIntValue wraps an arbitrary-precision integer literal as written in
// the source, prior to any field-membership check.  Keeping the original
// big.Int (rather than only the reduced field element) lets the reducer
// report a precise "value not in field" error for out-of-range literals.
type BigIntValue struct {
	inner *big.Int
}

// NewBigIntValue wraps v.
func NewBigIntValue(v *big.Int) *BigIntValue {
	return &BigIntValue{v}
}

// Int returns the underlying big.Int.
func (b *BigIntValue) Int() *big.Int {
	return b.inner
}

// IsZeroOrOne checks whether this literal is exactly 0 or 1, the rule used
// to classify integer literals and named constants as Boolean.
func (b *BigIntValue) IsZeroOrOne() bool {
	return b.inner.Cmp(big.NewInt(0)) == 0 || b.inner.Cmp(big.NewInt(1)) == 0
}

// String renders the literal in decimal.
func (b *BigIntValue) String() string {
	return b.inner.String()
}
