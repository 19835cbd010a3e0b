// Package field provides prime-field arithmetic for the scalar field of the
// BN254 curve, as used throughout the constraint system.  All arithmetic
// saturates modulo the field's characteristic; there is no overflow.
package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Element is a single value in the BN254 scalar field.  The zero value of
// Element is the field's additive identity.
type Element struct {
	inner fr.Element
}

// Zero returns the additive identity of the field.
func Zero() Element {
	return Element{}
}

// One returns the multiplicative identity of the field.
func One() Element {
	var e fr.Element

	e.SetOne()

	return Element{e}
}

// Modulus returns the field's characteristic.
func Modulus() *big.Int {
	return fr.Modulus()
}

// FromUint64 constructs an element from a small unsigned integer.
func FromUint64(v uint64) Element {
	var e fr.Element

	e.SetUint64(v)

	return Element{e}
}

// FromBigInt constructs an element from an arbitrary-precision integer.  The
// second return value is false when the value does not fit within the field
// (i.e. it is negative, or greater-or-equal to the modulus), in which case
// the returned Element is meaningless.
func FromBigInt(v *big.Int) (Element, bool) {
	if v.Sign() < 0 || v.CmpAbs(Modulus()) >= 0 {
		return Element{}, false
	}

	var e fr.Element

	e.SetBigInt(v)

	return Element{e}, true
}

// FromDecimalString parses a (non-negative) decimal numeral into a field
// element.  Returns false if the string is not a valid decimal numeral, or
// the value it denotes does not fit within the field.
func FromDecimalString(s string) (Element, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Element{}, false
	}

	return FromBigInt(v)
}

// Add computes x+y in the field.
func (x Element) Add(y Element) Element {
	var z fr.Element

	z.Add(&x.inner, &y.inner)

	return Element{z}
}

// Sub computes x-y in the field.
func (x Element) Sub(y Element) Element {
	var z fr.Element

	z.Sub(&x.inner, &y.inner)

	return Element{z}
}

// Mul computes x*y in the field.
func (x Element) Mul(y Element) Element {
	var z fr.Element

	z.Mul(&x.inner, &y.inner)

	return Element{z}
}

// Neg computes -x in the field.
func (x Element) Neg() Element {
	var z fr.Element

	z.Neg(&x.inner)

	return Element{z}
}

// Inverse computes x⁻¹, or returns zero when x is zero.
func (x Element) Inverse() Element {
	if x.IsZero() {
		return Element{}
	}

	var z fr.Element

	z.Inverse(&x.inner)

	return Element{z}
}

// Exp computes x^k using repeated multiplication.  Exponents in this
// language are always small compile-time constants, so a naive approach
// (rather than square-and-multiply) matches the source's own strategy and
// keeps the implementation trivially auditable.
func (x Element) Exp(k uint64) Element {
	acc := One()

	for i := uint64(0); i < k; i++ {
		acc = acc.Mul(x)
	}

	return acc
}

// IsZero checks whether this element is the additive identity.
func (x Element) IsZero() bool {
	return x.inner.IsZero()
}

// IsOne checks whether this element is the multiplicative identity.
func (x Element) IsOne() bool {
	return x.inner.IsOne()
}

// Equals checks two elements for equality.
func (x Element) Equals(y Element) bool {
	return x.inner.Equal(&y.inner)
}

// Cmp orders two elements lexicographically on their canonical
// representation.  Returns -1, 0 or 1.
func (x Element) Cmp(y Element) int {
	return x.inner.Cmp(&y.inner)
}

// BigInt returns the canonical (non-negative) representative of this
// element.
func (x Element) BigInt() *big.Int {
	var v big.Int
	return x.inner.BigInt(&v)
}

// Hex renders the canonical representation of this element as a fixed-width,
// zero-padded, lower-case hexadecimal string prefixed with "0x".  This is the
// "plain" rendering; see package trace/json for the compact form used in
// serialised traces.
func (x Element) Hex() string {
	bytes := x.inner.Bytes()
	return fmt.Sprintf("0x%x", bytes)
}

// String implements fmt.Stringer, rendering the element in decimal.
func (x Element) String() string {
	return x.inner.String()
}
